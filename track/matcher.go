package track

import (
	"sort"

	"github.com/bmharper/flatbush-go"
	"github.com/chewxy/math32"
	"github.com/cyclopcam/thermal/pkg/gen"
)

// A fragment of an already tracked object (e.g. a tail) may detach into
// its own region. Don't spawn a new track for a region whose overlap with
// an active track exceeds this fraction of the region's own area.
const newTrackMaxOverlap = 0.25

// trackMatcher owns the per-clip track state: the active set matched
// frame by frame, and the full track list handed to the final filter.
// Track ids restart at 1 for every matcher instance; state is never
// shared across runs.
type trackMatcher struct {
	cfg    *Config
	nextID int
	active []*Track
	all    []*Track
}

func newTrackMatcher(cfg *Config) *trackMatcher {
	return &trackMatcher{
		cfg:    cfg,
		nextID: 1,
	}
}

// Tracks returns every track created during the run, retired ones included.
func (m *trackMatcher) Tracks() []*Track {
	return m.all
}

// ActiveTracks returns the tracks still eligible for matching.
func (m *trackMatcher) ActiveTracks() []*Track {
	return m.active
}

type matchCandidate struct {
	distance float32
	track    int // index into active
	region   int // index into regions
}

// step consumes one frame's regions, in frame order. Matching is greedy
// nearest-first: all admissible pairs sorted ascending by distance, then
// committed in order, skipping tracks and regions already consumed. The
// sort is stable, so identical inputs always yield identical assignments.
func (m *trackMatcher) step(regions []Region, frameNumber int) {
	candidates := []matchCandidate{}
	for ti, t := range m.active {
		// Heavier objects cover more ground between frames, so give
		// heavier tracks more positional slack, within reason.
		maxDistance := gen.Clamp(7*math32.Sqrt(float32(t.mass)), 30, 95)
		maxSizeChange := gen.Clamp(t.mass, 50, 500)
		for ri := range regions {
			distance, sizeChange := t.regionScore(&regions[ri], m.cfg.MovingVelThresh)
			if distance > maxDistance {
				continue
			}
			if sizeChange > maxSizeChange {
				continue
			}
			candidates = append(candidates, matchCandidate{distance: distance, track: ti, region: ri})
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].distance < candidates[j].distance
	})

	matchedTrack := make([]bool, len(m.active))
	usedRegion := make([]bool, len(regions))
	for _, c := range candidates {
		if matchedTrack[c.track] || usedRegion[c.region] {
			continue
		}
		m.active[c.track].AddRegion(regions[c.region])
		matchedTrack[c.track] = true
		usedRegion[c.region] = true
	}

	// Spatial index over the active tracks' latest boxes, for the overlap
	// guard on new-track creation.
	fb := flatbush.NewFlatbush[int32]()
	fb.Reserve(len(m.active))
	for _, t := range m.active {
		b := t.bounds
		fb.Add(int32(b.X), int32(b.Y), int32(b.X2()), int32(b.Y2()))
	}
	fb.Finish()

	firstNew := len(m.active)
	nearby := []int{}
	for ri := range regions {
		if usedRegion[ri] {
			continue
		}
		region := &regions[ri]
		maxOverlap := 0
		nearby = fb.SearchFast(int32(region.X), int32(region.Y), int32(region.X2()), int32(region.Y2()), nearby)
		for _, j := range nearby {
			maxOverlap = max(maxOverlap, m.active[j].bounds.OverlapArea(region.Rect))
		}
		// Tracks born earlier in this same frame guard as well.
		for _, t := range m.active[firstNew:] {
			maxOverlap = max(maxOverlap, t.bounds.OverlapArea(region.Rect))
		}
		if float64(maxOverlap) > newTrackMaxOverlap*float64(region.Area()) {
			continue
		}

		t := newTrack(m.nextID)
		m.nextID++
		t.AddRegion(*region)
		m.active = append(m.active, t)
		m.all = append(m.all, t)
	}

	// Tracks that found no region this frame get a blank placeholder and
	// a bumped miss counter.
	for i, t := range m.active[:firstNew] {
		if !matchedTrack[i] {
			t.FramesSinceTargetSeen++
			t.AddBlank(frameNumber)
		}
	}

	// Retire tracks that haven't seen their target in a while. They stay
	// in the full track list for the final filter.
	remaining := m.active[:0:0]
	for _, t := range m.active {
		if t.FramesSinceTargetSeen < m.cfg.RemoveTrackAfterFrames {
			remaining = append(remaining, t)
		}
	}
	m.active = remaining
}
