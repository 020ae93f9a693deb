package track

import (
	"github.com/cyclopcam/thermal/pkg/frames"
)

// Clip is a fully resident, ordered sequence of thermal frames.
// Decoding a container format into a Clip is the caller's problem.
type Clip struct {
	Frames      []*frames.Frame
	FPS         float64 // Capture rate. Zero means FramesPerSecond.
	PreviewSecs float64 // Length of the object-free calibration window at the start of the clip
}

// FrameRate returns the clip's capture rate, defaulting to FramesPerSecond.
func (c *Clip) FrameRate() float64 {
	if c.FPS > 0 {
		return c.FPS
	}
	return FramesPerSecond
}

// FrameStat holds the raw temperature statistics of one frame.
type FrameStat struct {
	Min    float64
	Max    float64
	Median float64
	Mean   float64
}

// FrameBuffer accumulates the raw, filtered and label-mask frames of one
// extraction run. It exists for downstream exporters (preview rendering,
// track cropping); the pipeline itself only appends to it.
type FrameBuffer struct {
	Thermal  []*frames.Frame
	Filtered []*frames.Image
	Mask     []*frames.Mask
}

func (b *FrameBuffer) AddFrame(thermal *frames.Frame, filtered *frames.Image, mask *frames.Mask) {
	b.Thermal = append(b.Thermal, thermal)
	b.Filtered = append(b.Filtered, filtered)
	b.Mask = append(b.Mask, mask)
}

func (b *FrameBuffer) FrameCount() int {
	return len(b.Thermal)
}
