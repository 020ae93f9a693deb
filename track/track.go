package track

import (
	"fmt"
	"math"

	"github.com/bmharper/ringbuffer"
	"github.com/chewxy/math32"
	"github.com/cyclopcam/thermal/pkg/gen"
	"github.com/cyclopcam/thermal/pkg/geom"
	"gonum.org/v1/gonum/stat"
)

// Number of recent centre positions kept for velocity estimation.
// Must be a power of 2 (ring buffer requirement).
const positionHistorySize = 8

// Track is a temporally ordered sequence of Regions believed to depict one
// moving physical object. A track owns its region history exclusively;
// frame numbers in the history are strictly increasing with no duplicates
// (missed frames hold blank placeholders).
type Track struct {
	ID                    int // Stable id, unique within one extraction run, starting at 1
	StartFrame            int
	FramesSinceTargetSeen int // Consecutive misses; reset on every match

	history []Region
	bounds  geom.Rect // most recent non-blank box
	mass    int       // most recent non-blank mass
	recent  ringbuffer.RingP[geom.Point]
	velX    float32 // px/frame, from the recent centre history
	velY    float32
}

func newTrack(id int) *Track {
	return &Track{
		ID:     id,
		recent: ringbuffer.NewRingP[geom.Point](positionHistorySize),
	}
}

func (t *Track) Len() int {
	return len(t.history)
}

// Regions returns the track's region history, blanks included. The slice
// is owned by the track; callers must treat it as read-only.
func (t *Track) Regions() []Region {
	return t.history
}

// Bounds is a snapshot of the most recent non-blank box.
func (t *Track) Bounds() geom.Rect {
	return t.bounds
}

func (t *Track) Mass() int {
	return t.mass
}

// LastFrame returns the frame number of the most recent history entry.
func (t *Track) LastFrame() int {
	return t.history[len(t.history)-1].FrameNumber
}

// EndFrame returns one past the last frame of the track.
func (t *Track) EndFrame() int {
	return t.LastFrame() + 1
}

// AddRegion appends a matched region and resets the miss counter.
func (t *Track) AddRegion(region Region) {
	if len(t.history) == 0 {
		t.StartFrame = region.FrameNumber
	} else if region.FrameNumber <= t.LastFrame() {
		panic(fmt.Sprintf("track %v: frame %v added out of order (last %v)", t.ID, region.FrameNumber, t.LastFrame()))
	}
	t.history = append(t.history, region)
	t.FramesSinceTargetSeen = 0

	center := region.Center()
	if t.recent.Len() > 0 {
		prev := t.recent.Peek(t.recent.Len() - 1)
		t.velX = float32(center.X - prev.X)
		t.velY = float32(center.Y - prev.Y)
	}
	t.recent.Add(center)
	t.bounds = region.Rect
	t.mass = region.Mass
}

// AddBlank appends a placeholder for a frame where no region matched.
// The placeholder carries the last known box so exporters can still crop
// a sensible window.
func (t *Track) AddBlank(frameNumber int) {
	if len(t.history) == 0 || frameNumber <= t.LastFrame() {
		panic(fmt.Sprintf("track %v: blank frame %v added out of order", t.ID, frameNumber))
	}
	t.history = append(t.history, Region{
		Rect:        t.bounds,
		FrameNumber: frameNumber,
		Blank:       true,
	})
}

// Speed is the magnitude of the track's frame-to-frame velocity, px/frame.
func (t *Track) Speed() float32 {
	return math32.Hypot(t.velX, t.velY)
}

// regionScore scores a candidate region against this track: the distance
// from the track's expected position to the region's centre, and the mass
// change relative to the last matched region. When the track is moving
// faster than movingVelThresh, the expected position extrapolates along
// the track's velocity.
func (t *Track) regionScore(region *Region, movingVelThresh float64) (distance float32, sizeChange int) {
	expected := t.bounds.Center()
	if t.Speed() > float32(movingVelThresh) {
		expected.X += int(t.velX)
		expected.Y += int(t.velY)
	}
	distance = expected.Distance(region.Center())
	sizeChange = gen.Abs(region.Mass - t.mass)
	return distance, sizeChange
}

// Trim removes leading and trailing blank placeholders. Interior blanks
// stay, so frame numbers remain contiguous.
func (t *Track) Trim() {
	start := 0
	for start < len(t.history) && t.history[start].Blank {
		start++
	}
	end := len(t.history)
	for end > start && t.history[end-1].Blank {
		end--
	}
	t.history = t.history[start:end]
	if len(t.history) > 0 {
		t.StartFrame = t.history[0].FrameNumber
	}
}

// regionAt returns the track's region at the given clip frame number.
func (t *Track) regionAt(frameNumber int) (Region, bool) {
	i := frameNumber - t.StartFrame
	if i < 0 || i >= len(t.history) {
		return Region{}, false
	}
	return t.history[i], true
}

// TrackStats summarizes a completed track for the accept/reject pass.
type TrackStats struct {
	DurationFrames int
	MaxOffset      float64 // Largest distance (px) from the track's starting position
	DeltaStd       float64 // Clarity: mean per-frame RMS pixel delta
	AverageMass    float64
	Score          float64 // Ranking score for the max-tracks cap
}

// Stats computes the track's summary statistics. Call after Trim.
func (t *Track) Stats() TrackStats {
	s := TrackStats{DurationFrames: len(t.history)}
	masses := []float64{}
	deltas := []float64{}
	var origin geom.Point
	first := true
	for _, r := range t.history {
		if r.Blank {
			continue
		}
		if first {
			origin = r.Center()
			first = false
		}
		offset := float64(origin.Distance(r.Center()))
		s.MaxOffset = max(s.MaxOffset, offset)
		masses = append(masses, float64(r.Mass))
		deltas = append(deltas, math.Sqrt(r.PixelVariance))
	}
	if len(masses) > 0 {
		s.AverageMass = stat.Mean(masses, nil)
		// Mean, not spread: an object moving at constant velocity leaves the
		// same delta footprint every frame, and it must still count as clear.
		s.DeltaStd = stat.Mean(deltas, nil)
	}
	s.Score = s.MaxOffset + s.AverageMass
	return s
}

// StartSecs is the track's start offset within the clip, in seconds.
func (t *Track) StartSecs(frameRate float64) float64 {
	return float64(t.StartFrame) / frameRate
}

// EndSecs is the track's end offset within the clip, in seconds.
func (t *Track) EndSecs(frameRate float64) float64 {
	return float64(t.EndFrame()) / frameRate
}

// overlapRatio is the largest per-frame overlap between this track's
// boxes and other's, over the frames the two tracks share. Overlap is
// measured as a fraction of this track's own box area.
func (t *Track) overlapRatio(other *Track) float64 {
	highest := 0.0
	start := max(t.StartFrame, other.StartFrame)
	end := min(t.LastFrame(), other.LastFrame())
	for frame := start; frame <= end; frame++ {
		mine, ok1 := t.regionAt(frame)
		theirs, ok2 := other.regionAt(frame)
		if !ok1 || !ok2 || mine.Blank || theirs.Blank || mine.Area() == 0 {
			continue
		}
		ratio := float64(mine.OverlapArea(theirs.Rect)) / float64(mine.Area())
		highest = max(highest, ratio)
	}
	return highest
}

// Smooth applies a 3-frame moving average to the track's boxes, clipped
// into the frame rectangle. Blank placeholders are left untouched.
func (t *Track) Smooth(frameRect geom.Rect) {
	if len(t.history) < 3 {
		return
	}
	smoothed := make([]Region, len(t.history))
	copy(smoothed, t.history)
	for i := 1; i < len(t.history)-1; i++ {
		if t.history[i].Blank {
			continue
		}
		a, b, c := t.history[i-1].Rect, t.history[i].Rect, t.history[i+1].Rect
		r := geom.Rect{
			X:      (a.X + b.X + c.X) / 3,
			Y:      (a.Y + b.Y + c.Y) / 3,
			Width:  (a.Width + b.Width + c.Width) / 3,
			Height: (a.Height + b.Height + c.Height) / 3,
		}
		r.Clip(frameRect)
		smoothed[i].Rect = r
	}
	t.history = smoothed
}
