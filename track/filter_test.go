package track

import (
	"testing"

	"github.com/cyclopcam/thermal/pkg/frames"
	"github.com/cyclopcam/thermal/pkg/geom"
	"github.com/stretchr/testify/require"
)

func uniformImage(value float64) *frames.Image {
	img := frames.NewImage(testWidth, testHeight)
	for i := range img.Pix {
		img.Pix[i] = value
	}
	return img
}

func blobThermal() *frames.Image {
	f := uniformFrame(0, testBackground)
	paintBlob(f, geom.Rect{X: 40, Y: 40, Width: 6, Height: 6}, testBlobTemp)
	return f.Float()
}

func requireNonNegative(t *testing.T, img *frames.Image) {
	for _, v := range img.Pix {
		require.GreaterOrEqual(t, v, 0.0)
	}
}

func TestFilterNone(t *testing.T) {
	// Median of the frame is the background level, plus the fixed bias.
	filter := frameFilter{mode: filterModeNone}
	filtered := filter.apply(blobThermal())

	require.Equal(t, float64(testBlobTemp-testBackground-noBackgroundBias), filtered.At(42, 42))
	require.Equal(t, 0.0, filtered.At(10, 10))
	requireNonNegative(t, filtered)
}

func TestFilterStatistical(t *testing.T) {
	filter := frameFilter{
		mode:       filterModeStatistical,
		background: uniformImage(testBackground),
	}
	filtered := filter.apply(blobThermal())

	// Residual median is zero, so the blob keeps its full contrast.
	require.Equal(t, 400.0, filtered.At(42, 42))
	require.Equal(t, 0.0, filtered.At(10, 10))
	requireNonNegative(t, filtered)
}

func TestFilterPreview(t *testing.T) {
	filter := frameFilter{
		mode:           filterModePreview,
		background:     uniformImage(testBackground),
		backgroundMean: testBackground,
		tempThresh:     1200,
	}
	filtered := filter.apply(blobThermal())

	// The blob lifts the frame mean by 0.75, which rounds to an offset
	// correction of 1.
	require.Equal(t, 399.0, filtered.At(42, 42))
	// Background pixels sit below tempThresh and are zeroed before the
	// subtraction, then clamped.
	require.Equal(t, 0.0, filtered.At(10, 10))
	requireNonNegative(t, filtered)
}

func TestFilterInputUntouched(t *testing.T) {
	thermal := blobThermal()
	filter := frameFilter{mode: filterModeStatistical, background: uniformImage(testBackground)}
	filter.apply(thermal)
	require.Equal(t, float64(testBlobTemp), thermal.At(42, 42))
	require.Equal(t, float64(testBackground), thermal.At(10, 10))
}
