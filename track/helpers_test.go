package track

import (
	"github.com/cyclopcam/thermal/pkg/frames"
	"github.com/cyclopcam/thermal/pkg/geom"
)

const (
	testWidth      = 160
	testHeight     = 120
	testBackground = 1000
	testBlobTemp   = 1400
)

// uniformFrame returns a frame filled with a constant intensity.
func uniformFrame(number int, value uint16) *frames.Frame {
	f := frames.NewFrame(number, testWidth, testHeight)
	for i := range f.Pix {
		f.Pix[i] = value
	}
	return f
}

// paintBlob fills r with the given intensity.
func paintBlob(f *frames.Frame, r geom.Rect, value uint16) {
	for y := r.Y; y < r.Y2(); y++ {
		for x := r.X; x < r.X2(); x++ {
			f.Set(x, y, value)
		}
	}
}

// blobPath describes a square blob moving at constant velocity.
type blobPath struct {
	x, y       int // position at frame 0
	vx, vy     int // pixels per frame
	size       int
	firstFrame int // blob is absent before this frame
}

// makeBlobClip renders a clip of numFrames uniform-background frames with
// the given blobs painted in.
func makeBlobClip(numFrames int, blobs ...blobPath) *Clip {
	clip := &Clip{FPS: FramesPerSecond}
	for n := 0; n < numFrames; n++ {
		f := uniformFrame(n, testBackground)
		for _, b := range blobs {
			if n < b.firstFrame {
				continue
			}
			paintBlob(f, geom.Rect{
				X:      b.x + n*b.vx,
				Y:      b.y + n*b.vy,
				Width:  b.size,
				Height: b.size,
			}, testBlobTemp)
		}
		clip.Frames = append(clip.Frames, f)
	}
	return clip
}

// testConfig returns the default tuning, loosened so that short synthetic
// clips survive the duration filter.
func testConfig() Config {
	cfg := DefaultConfig()
	cfg.MinDurationSecs = 1
	return cfg
}

// makeRegion builds a bare region for matcher tests.
func makeRegion(x, y, size, mass, frameNumber int) Region {
	return Region{
		Rect:        geom.Rect{X: x, Y: y, Width: size, Height: size},
		Mass:        mass,
		FrameNumber: frameNumber,
	}
}
