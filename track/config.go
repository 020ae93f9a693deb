package track

import (
	"fmt"
)

// BackgroundCalc selects how the clip background is estimated.
type BackgroundCalc string

const (
	// BackgroundCalcStatistical estimates the background from a percentile
	// over the entire clip.
	BackgroundCalcStatistical BackgroundCalc = "statistical"
	// BackgroundCalcPreview uses a per-pixel minimum over the clip's
	// object-free calibration window.
	BackgroundCalcPreview BackgroundCalc = "preview"
)

// CroppedRegionsStrategy controls what happens to regions that had to be
// clipped against the frame border.
type CroppedRegionsStrategy string

const (
	// CroppedRegionsAll keeps every region.
	CroppedRegionsAll CroppedRegionsStrategy = "all"
	// CroppedRegionsCautious discards regions cropped by more than 25%
	// in width or height.
	CroppedRegionsCautious CroppedRegionsStrategy = "cautious"
	// CroppedRegionsNone discards any cropped region.
	CroppedRegionsNone CroppedRegionsStrategy = "none"
)

// Config holds every tunable of the track extraction pipeline.
// The zero value is not usable; start from DefaultConfig.
type Config struct {
	// Frame filtering / background
	EdgePixels                   int            // Width of the frame border to ignore (spurious sensor values)
	DilationPixels               int            // Dilation radius used to merge fragments of one object
	FramePadding                 int            // Padding added around each detected region
	TempThresh                   float64        // Absolute intensity floor for the preview background mode
	DynamicThresh                bool           // Lower TempThresh to the clip's mean temperature when the clip is colder
	DeltaThresh                  float64        // Region threshold used in preview background mode
	BackgroundCalc               BackgroundCalc // preview or statistical
	IgnoreFrames                 int            // Frames dropped from the end of the calibration window
	StaticBackgroundThreshold    float64        // Background deviation below which the background counts as static
	RejectNonStaticClips         bool           // Reject the whole clip when the background is not static
	MaxMeanTemperatureThreshold  float64        // Reject the clip when its mean temperature exceeds this (0 disables)
	MaxTemperatureRangeThreshold float64        // Reject the clip when max-min temperature exceeds this (0 disables)
	ThresholdPercentile          float64        // Residual percentile (0..100] feeding the adaptive threshold
	MinThreshold                 float64        // Lower clamp for the adaptive threshold
	MaxThreshold                 float64        // Upper clamp for the adaptive threshold

	// Region detection
	CroppedRegionsStrategy CroppedRegionsStrategy
	AOIPixelVariance       float64 // Regions with variance below this AND mass below AOIMinMass are noise
	AOIMinMass             int     // See AOIPixelVariance

	// Matching
	MovingVelThresh        float64 // Speed (px/frame) above which a track's velocity extrapolates its expected position
	RemoveTrackAfterFrames int     // Misses before a track leaves the active set

	// Track filtering
	TrackOverlapRatio float64 // Maximum tolerated overlap with any other track
	MinDurationSecs   float64 // Minimum track duration
	TrackMinOffset    float64 // Minimum distance (px) a track must move from its start
	TrackMinDelta     float64 // Minimum clarity (mean per-frame RMS pixel delta)
	TrackMinMass      float64 // Minimum average region mass
	MaxTracks         int     // Keep only the N best tracks (0 = unlimited)
	TrackSmoothing    bool    // Smooth accepted track boxes with a moving average

	Verbose bool // Per-track diagnostics on the extractor's logger
}

// DefaultConfig returns the tuning used for 160x120 thermal clips at 9 fps.
func DefaultConfig() Config {
	return Config{
		EdgePixels:                   1,
		DilationPixels:               2,
		FramePadding:                 4,
		TempThresh:                   2900,
		DeltaThresh:                  20,
		BackgroundCalc:               BackgroundCalcStatistical,
		IgnoreFrames:                 2,
		StaticBackgroundThreshold:    4.0,
		MaxMeanTemperatureThreshold:  0,
		MaxTemperatureRangeThreshold: 0,
		ThresholdPercentile:          99.9,
		MinThreshold:                 30,
		MaxThreshold:                 50,
		CroppedRegionsStrategy:       CroppedRegionsCautious,
		AOIPixelVariance:             2.0,
		AOIMinMass:                   4,
		MovingVelThresh:              4,
		RemoveTrackAfterFrames:       9,
		TrackOverlapRatio:            0.5,
		MinDurationSecs:              3,
		TrackMinOffset:               4.0,
		TrackMinDelta:                1.0,
		TrackMinMass:                 2.0,
		MaxTracks:                    10,
	}
}

// Validate returns an error describing the first invalid option. All
// validation errors are fatal: the extractor refuses to run with a broken
// configuration rather than producing silently wrong tracks.
func (c *Config) Validate() error {
	switch c.CroppedRegionsStrategy {
	case CroppedRegionsAll, CroppedRegionsCautious, CroppedRegionsNone:
	default:
		return fmt.Errorf("invalid CroppedRegionsStrategy, expected one of [all, cautious, none] but found '%v'", c.CroppedRegionsStrategy)
	}
	switch c.BackgroundCalc {
	case BackgroundCalcPreview, BackgroundCalcStatistical:
	default:
		return fmt.Errorf("invalid BackgroundCalc, expected one of [preview, statistical] but found '%v'", c.BackgroundCalc)
	}
	if c.EdgePixels < 0 {
		return fmt.Errorf("EdgePixels must not be negative (%v)", c.EdgePixels)
	}
	if c.DilationPixels < 0 {
		return fmt.Errorf("DilationPixels must not be negative (%v)", c.DilationPixels)
	}
	if c.ThresholdPercentile <= 0 || c.ThresholdPercentile > 100 {
		return fmt.Errorf("ThresholdPercentile must be in (0, 100] (%v)", c.ThresholdPercentile)
	}
	if c.MinThreshold > c.MaxThreshold {
		return fmt.Errorf("MinThreshold (%v) must not exceed MaxThreshold (%v)", c.MinThreshold, c.MaxThreshold)
	}
	if c.RemoveTrackAfterFrames < 1 {
		return fmt.Errorf("RemoveTrackAfterFrames must be at least 1 (%v)", c.RemoveTrackAfterFrames)
	}
	if c.MaxTracks < 0 {
		return fmt.Errorf("MaxTracks must not be negative (%v)", c.MaxTracks)
	}
	return nil
}
