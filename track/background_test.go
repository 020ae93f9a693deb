package track

import (
	"testing"

	"github.com/cyclopcam/thermal/pkg/geom"
	"github.com/stretchr/testify/require"
)

func TestStatisticalBackgroundIgnoresLateArrival(t *testing.T) {
	// A blob that shows up after the first few frames must not leak into
	// the low-percentile background estimate.
	clip := makeBlobClip(20, blobPath{x: 40, y: 40, size: 6, firstFrame: 4})
	cfg := DefaultConfig()

	background, analysis := analyseBackground(clip.Frames, &cfg)

	require.Equal(t, float64(testBackground), background.At(42, 42))
	require.Equal(t, float64(testBackground), background.At(10, 10))
	require.True(t, analysis.IsStatic)
	require.Equal(t, float64(testBackground), analysis.MinTemp)
	require.Equal(t, float64(testBlobTemp), analysis.MaxTemp)
	// 16 of 20 frames carry a 36 pixel blob at +400.
	require.InDelta(t, 1000.6, analysis.MeanTemp, 0.01)
	require.Greater(t, analysis.AverageDelta, 0.0)

	// The blob residuals push the adaptive threshold past the upper clamp.
	require.Equal(t, cfg.MaxThreshold, analysis.Threshold)
}

func TestThresholdClampsUpFromEmptyClip(t *testing.T) {
	clip := makeBlobClip(12)
	cfg := DefaultConfig()

	_, analysis := analyseBackground(clip.Frames, &cfg)

	require.Equal(t, cfg.MinThreshold, analysis.Threshold)
	require.Equal(t, 0.0, analysis.BackgroundDeviation)
	require.True(t, analysis.IsStatic)
}

func TestNonStaticDetection(t *testing.T) {
	// Half the frame flickers by 50 on every other frame: well past the
	// static-background deviation limit.
	clip := &Clip{}
	for n := 0; n < 12; n++ {
		f := uniformFrame(n, testBackground)
		if n%2 == 1 {
			paintBlob(f, geom.Rect{X: 0, Y: 0, Width: testWidth / 2, Height: testHeight}, testBackground+50)
		}
		clip.Frames = append(clip.Frames, f)
	}
	cfg := DefaultConfig()

	_, analysis := analyseBackground(clip.Frames, &cfg)

	require.Greater(t, analysis.BackgroundDeviation, cfg.StaticBackgroundThreshold)
	require.False(t, analysis.IsStatic)
}

func TestCalculatePreview(t *testing.T) {
	clip := &Clip{}
	clip.Frames = append(clip.Frames, uniformFrame(0, 1000))
	clip.Frames = append(clip.Frames, uniformFrame(1, 990))
	clip.Frames = append(clip.Frames, uniformFrame(2, 2000))

	// Per-pixel minimum over the two-frame calibration window; the hot
	// third frame sits outside it.
	background, mean := calculatePreview(clip.Frames, 2)
	require.Equal(t, 990.0, background.At(80, 60))
	require.Equal(t, 990.0, mean)

	// A degenerate window falls back to the whole clip.
	background, _ = calculatePreview(clip.Frames, 0)
	require.Equal(t, 990.0, background.At(80, 60))
}
