package track

import (
	"math"

	"github.com/cyclopcam/thermal/pkg/frames"
)

// filterMode selects the foreground isolation strategy. The mode is a
// one-time decision per clip; the three strategies are mutually exclusive.
type filterMode int

const (
	// filterModeNone: no usable background (non-static scene). The frame's
	// own median plus a fixed bias is the baseline.
	filterModeNone filterMode = iota
	// filterModePreview: background from the object-free calibration
	// window, with a running mean-offset correction.
	filterModePreview
	// filterModeStatistical: background from the whole-clip percentile
	// estimate, re-centered by the residual's own median.
	filterModeStatistical
)

// Bias subtracted on top of the median in the no-background mode, so that
// ambient flicker around the median doesn't read as foreground.
const noBackgroundBias = 40

// frameFilter isolates foreground signal in a thermal frame. Immutable
// after construction; apply is called once per frame in frame order.
type frameFilter struct {
	mode           filterMode
	background     *frames.Image // nil in filterModeNone
	backgroundMean float64       // calibration window mean (preview mode only)
	tempThresh     float64       // absolute intensity floor (preview mode only)
}

// apply returns the filtered (foreground-only) frame. The input image is
// not modified. Output pixels are always >= 0.
func (f *frameFilter) apply(thermal *frames.Image) *frames.Image {
	switch f.mode {
	case filterModeNone:
		filtered := thermal.Clone()
		filtered.SubScalar(frames.Median(thermal) + noBackgroundBias)
		filtered.ClampZero()
		return filtered

	case filterModePreview:
		avgChange := math.Round(frames.Mean(thermal) - f.backgroundMean)
		filtered := thermal.Clone()
		for i, v := range filtered.Pix {
			if v < f.tempThresh {
				filtered.Pix[i] = 0
			}
		}
		filtered.Sub(f.background)
		filtered.SubScalar(avgChange)
		filtered.ClampZero()
		return filtered

	case filterModeStatistical:
		filtered := thermal.Clone()
		filtered.Sub(f.background)
		filtered.ClampZero()
		filtered.SubScalar(frames.Median(filtered))
		filtered.ClampZero()
		return filtered
	}
	panic("unknown filter mode")
}
