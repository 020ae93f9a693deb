package track

import (
	"testing"

	"github.com/cyclopcam/thermal/pkg/frames"
	"github.com/cyclopcam/thermal/pkg/geom"
	"github.com/stretchr/testify/require"
)

func paintImage(img *frames.Image, r geom.Rect, value float64) {
	for y := r.Y; y < r.Y2(); y++ {
		for x := r.X; x < r.X2(); x++ {
			img.Set(x, y, value)
		}
	}
}

func TestDetectSingleBlob(t *testing.T) {
	cfg := DefaultConfig()
	d := newRegionDetector(&cfg, testWidth, testHeight)

	filtered := frames.NewImage(testWidth, testHeight)
	paintImage(filtered, geom.Rect{X: 40, Y: 40, Width: 6, Height: 6}, 400)

	regions, mask := d.detect(filtered, nil, 50, 7)
	require.Len(t, regions, 1)
	r := regions[0]

	// The blur grows the 6x6 blob by one pixel per side (minus corners),
	// and the detector pads the box by FramePadding-DilationPixels.
	require.Equal(t, geom.Rect{X: 37, Y: 37, Width: 12, Height: 12}, r.Rect)
	require.Equal(t, 60, r.Mass)
	require.Equal(t, 1, r.ComponentID)
	require.Equal(t, 7, r.FrameNumber)
	require.False(t, r.WasCropped)
	// No previous frame, so no delta to score variance from.
	require.Equal(t, 0.0, r.PixelVariance)

	require.Equal(t, testWidth, mask.Width)
	require.Equal(t, testHeight, mask.Height)
	require.Equal(t, int32(1), mask.At(42, 42))
	require.Equal(t, int32(0), mask.At(10, 10))
}

func TestDetectVarianceFromDelta(t *testing.T) {
	cfg := DefaultConfig()
	d := newRegionDetector(&cfg, testWidth, testHeight)

	filtered := frames.NewImage(testWidth, testHeight)
	paintImage(filtered, geom.Rect{X: 40, Y: 40, Width: 6, Height: 6}, 400)
	prev := frames.NewImage(testWidth, testHeight)

	regions, _ := d.detect(filtered, prev, 50, 1)
	require.Len(t, regions, 1)
	require.Greater(t, regions[0].PixelVariance, cfg.AOIPixelVariance)
}

func TestDetectMergesNearbyFragments(t *testing.T) {
	cfg := DefaultConfig()
	d := newRegionDetector(&cfg, testWidth, testHeight)

	// Two fragments three pixels apart: the dilation bridges the gap, and
	// the merged region's mass counts both pre-dilation fragments.
	filtered := frames.NewImage(testWidth, testHeight)
	paintImage(filtered, geom.Rect{X: 40, Y: 40, Width: 6, Height: 6}, 400)
	paintImage(filtered, geom.Rect{X: 49, Y: 40, Width: 6, Height: 6}, 400)

	regions, _ := d.detect(filtered, nil, 50, 0)
	require.Len(t, regions, 1)
	require.Equal(t, 120, regions[0].Mass)

	// The same fragments far apart stay separate components.
	filtered = frames.NewImage(testWidth, testHeight)
	paintImage(filtered, geom.Rect{X: 40, Y: 40, Width: 6, Height: 6}, 400)
	paintImage(filtered, geom.Rect{X: 80, Y: 40, Width: 6, Height: 6}, 400)

	regions, _ = d.detect(filtered, nil, 50, 0)
	require.Len(t, regions, 2)
	require.Equal(t, 60, regions[0].Mass)
	require.Equal(t, 60, regions[1].Mass)
}

func TestDetectRejectsWeakSpeck(t *testing.T) {
	cfg := DefaultConfig()
	d := newRegionDetector(&cfg, testWidth, testHeight)

	// A lone pixel survives the blur with barely a component's worth of
	// signal: too little mass and no variance means noise.
	filtered := frames.NewImage(testWidth, testHeight)
	filtered.Set(50, 50, 400)

	regions, _ := d.detect(filtered, nil, 50, 0)
	require.Empty(t, regions)
}

func TestCroppedRegionStrategies(t *testing.T) {
	filtered := frames.NewImage(testWidth, testHeight)
	paintImage(filtered, geom.Rect{X: 0, Y: 40, Width: 6, Height: 6}, 400)

	// Wide padding pushes the box well past the frame border, so the clip
	// removes more than a quarter of its width.
	cfg := DefaultConfig()
	cfg.FramePadding = 10

	cfg.CroppedRegionsStrategy = CroppedRegionsAll
	regions, _ := newRegionDetector(&cfg, testWidth, testHeight).detect(filtered, nil, 50, 0)
	require.Len(t, regions, 1)
	require.True(t, regions[0].WasCropped)

	cfg.CroppedRegionsStrategy = CroppedRegionsCautious
	regions, _ = newRegionDetector(&cfg, testWidth, testHeight).detect(filtered, nil, 50, 0)
	require.Empty(t, regions)

	cfg.CroppedRegionsStrategy = CroppedRegionsNone
	regions, _ = newRegionDetector(&cfg, testWidth, testHeight).detect(filtered, nil, 50, 0)
	require.Empty(t, regions)

	// With the default padding the clip is mild and cautious keeps it.
	cfg = DefaultConfig()
	cfg.CroppedRegionsStrategy = CroppedRegionsCautious
	regions, _ = newRegionDetector(&cfg, testWidth, testHeight).detect(filtered, nil, 50, 0)
	require.Len(t, regions, 1)
	require.True(t, regions[0].WasCropped)
}
