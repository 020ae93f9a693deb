// Package track extracts object tracks from a clip of single-channel
// thermal intensity frames: a background warm-up pass, per-frame
// foreground isolation and region detection, greedy online matching of
// regions to tracks, and a final accept/reject pass over the completed
// track list.
package track

import (
	"fmt"

	"github.com/cyclopcam/logs"
	"github.com/cyclopcam/thermal/pkg/frames"
	"github.com/cyclopcam/thermal/pkg/geom"
)

// FramesPerSecond is the default capture rate of thermal clips.
const FramesPerSecond = 9

// Clips at or below this frame count carry too little information to
// track anything.
const minClipFrames = 9

// ClipStats aggregates the per-clip statistics exposed to collaborators.
type ClipStats struct {
	BackgroundAnalysis
	TempThresh float64     // Effective intensity floor after dynamic adjustment
	FrameStats []FrameStat // Per-frame raw temperature statistics, in frame order
}

// ClipResult is everything one extraction run produces.
type ClipResult struct {
	Tracks       []*Track        // Accepted tracks, best score first
	Rejected     []RejectedTrack // Rejected tracks with reasons
	Stats        ClipStats
	RejectReason string // Non-empty when the whole clip was rejected; Tracks is empty then
	Buffer       *FrameBuffer
}

// TrackExtractor runs one clip through the pipeline. State is owned
// exclusively by the run; create a fresh extractor per clip (track ids
// restart at 1 with every run).
type TrackExtractor struct {
	Log logs.Log

	cfg          Config
	frameRate    float64
	threshold    float64
	frameOn      int
	prevFiltered *frames.Image
	filter       *frameFilter
	detector     *regionDetector
	matcher      *trackMatcher
	buffer       *FrameBuffer
	frameStats   []FrameStat
}

// NewTrackExtractor validates the configuration and returns an extractor
// ready to process one clip. Configuration errors are fatal.
func NewTrackExtractor(logger logs.Log, cfg Config) (*TrackExtractor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("track extractor config: %w", err)
	}
	return &TrackExtractor{
		Log: logger,
		cfg: cfg,
	}, nil
}

// ExtractTracks runs the full pipeline over a clip: background warm-up,
// clip-level sanity checks, the per-frame tracking pass, and the final
// track filter. Whole-clip rejection is a normal outcome reported in
// ClipResult.RejectReason, not an error.
func (e *TrackExtractor) ExtractTracks(clip *Clip) (*ClipResult, error) {
	if len(clip.Frames) <= minClipFrames {
		return &ClipResult{
			RejectReason: fmt.Sprintf("clip too short (%v frames)", len(clip.Frames)),
			Buffer:       &FrameBuffer{},
		}, nil
	}
	e.frameRate = clip.FrameRate()
	first := clip.Frames[0]

	// Warm-up: the statistical background needs the whole clip before the
	// per-frame state machine starts.
	background, analysis := analyseBackground(clip.Frames, &e.cfg)

	stats := ClipStats{BackgroundAnalysis: analysis, TempThresh: e.cfg.TempThresh}
	if e.cfg.DynamicThresh && analysis.MeanTemp < stats.TempThresh {
		stats.TempThresh = analysis.MeanTemp
	}

	result := &ClipResult{Stats: stats, Buffer: &FrameBuffer{}}
	if reason := e.clipRejectReason(&analysis); reason != "" {
		result.RejectReason = reason
		e.Log.Infof("Clip rejected: %v", reason)
		return result, nil
	}

	// Pick the filtering mode, once per clip.
	e.filter = &frameFilter{mode: filterModeStatistical, background: background}
	e.threshold = analysis.Threshold
	if !analysis.IsStatic {
		// The scene itself moves; background subtraction would smear.
		e.filter = &frameFilter{mode: filterModeNone}
	}
	if e.cfg.BackgroundCalc == BackgroundCalcPreview {
		if clip.PreviewSecs > 0 {
			previewFrames := int(clip.PreviewSecs*e.frameRate) - e.cfg.IgnoreFrames
			previewBackground, previewMean := calculatePreview(clip.Frames, previewFrames)
			e.filter = &frameFilter{
				mode:           filterModePreview,
				background:     previewBackground,
				backgroundMean: previewMean,
				tempThresh:     stats.TempThresh,
			}
			e.threshold = e.cfg.DeltaThresh
		} else {
			e.Log.Infof("No preview window in clip - using statistical background measurement")
		}
	}

	e.detector = newRegionDetector(&e.cfg, first.Width, first.Height)
	e.matcher = newTrackMatcher(&e.cfg)
	e.buffer = result.Buffer
	e.frameOn = 0
	e.prevFiltered = nil
	e.frameStats = e.frameStats[:0]

	for _, frame := range clip.Frames {
		e.trackFrame(frame)
	}
	result.Stats.FrameStats = e.frameStats

	result.Tracks, result.Rejected = filterTracks(e.matcher.Tracks(), &e.cfg, e.frameRate, e.Log)

	if e.cfg.TrackSmoothing {
		frameRect := geom.Rect{Width: first.Width, Height: first.Height}
		for _, t := range result.Tracks {
			t.Smooth(frameRect)
		}
	}

	if e.cfg.Verbose {
		e.Log.Infof("Kept %v of %v tracks", len(result.Tracks), len(e.matcher.Tracks()))
	}
	return result, nil
}

// clipRejectReason applies the whole-clip sanity checks. An empty string
// means the clip is fit for tracking.
func (e *TrackExtractor) clipRejectReason(analysis *BackgroundAnalysis) string {
	if e.cfg.RejectNonStaticClips && !analysis.IsStatic {
		return fmt.Sprintf("non-static background (deviation %.1f)", analysis.BackgroundDeviation)
	}
	if e.cfg.MaxMeanTemperatureThreshold > 0 && analysis.MeanTemp > e.cfg.MaxMeanTemperatureThreshold {
		return fmt.Sprintf("mean temperature too high (%.1f)", analysis.MeanTemp)
	}
	if e.cfg.MaxTemperatureRangeThreshold > 0 && analysis.MaxTemp-analysis.MinTemp > e.cfg.MaxTemperatureRangeThreshold {
		return fmt.Sprintf("temperature range too wide (%.1f)", analysis.MaxTemp-analysis.MinTemp)
	}
	return ""
}

// trackFrame advances the per-frame state machine by exactly one frame.
// Frame order is mandatory: both region variance and track continuity
// depend on strictly increasing frame numbers.
func (e *TrackExtractor) trackFrame(frame *frames.Frame) {
	thermal := frame.Float()
	lo, hi := frames.MinMax(thermal)
	e.frameStats = append(e.frameStats, FrameStat{
		Min:    lo,
		Max:    hi,
		Median: frames.Median(thermal),
		Mean:   frames.Mean(thermal),
	})

	filtered := e.filter.apply(thermal)
	regions, mask := e.detector.detect(filtered, e.prevFiltered, e.threshold, e.frameOn)
	e.buffer.AddFrame(frame, filtered, mask)
	e.matcher.step(regions, e.frameOn)
	e.prevFiltered = filtered
	e.frameOn++
}

// StartLive prepares the extractor for incremental single-frame use with
// an externally supplied background (live capture, where a full
// statistical pass over the clip is unavailable). The background is
// treated as a calibration-window estimate.
func (e *TrackExtractor) StartLive(width, height int, frameRate float64, background *frames.Image) {
	if frameRate <= 0 {
		frameRate = FramesPerSecond
	}
	e.frameRate = frameRate
	e.filter = &frameFilter{
		mode:           filterModePreview,
		background:     background,
		backgroundMean: frames.Mean(background),
		tempThresh:     e.cfg.TempThresh,
	}
	e.threshold = e.cfg.DeltaThresh
	e.detector = newRegionDetector(&e.cfg, width, height)
	e.matcher = newTrackMatcher(&e.cfg)
	e.buffer = &FrameBuffer{}
	e.frameOn = 0
	e.prevFiltered = nil
	e.frameStats = nil
}

// TrackFrame feeds one live frame through the pipeline. Frames must
// arrive in capture order. Call StartLive first.
func (e *TrackExtractor) TrackFrame(frame *frames.Frame) {
	e.trackFrame(frame)
}

// ActiveTracks returns the tracks currently being matched, valid at any
// frame boundary of a live run.
func (e *TrackExtractor) ActiveTracks() []*Track {
	return e.matcher.ActiveTracks()
}

// FinishLive ends a live run: the completed track list goes through the
// same final filter as a clip run.
func (e *TrackExtractor) FinishLive() *ClipResult {
	result := &ClipResult{
		Stats:  ClipStats{TempThresh: e.cfg.TempThresh, FrameStats: e.frameStats},
		Buffer: e.buffer,
	}
	result.Tracks, result.Rejected = filterTracks(e.matcher.Tracks(), &e.cfg, e.frameRate, e.Log)
	return result
}
