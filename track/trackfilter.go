package track

import (
	"fmt"
	"sort"

	"github.com/cyclopcam/logs"
)

// RejectedTrack pairs a rejected track with a human-readable reason, for
// diagnostics and downstream review tooling.
type RejectedTrack struct {
	Track  *Track
	Reason string
}

// filterTracks is the one-shot post-pass over the completed track list:
// trim blank padding, drop tracks that are statistically indistinguishable
// from noise or duplicate another track, and cap the retained count.
// Only meaningful once the entire clip has been processed.
func filterTracks(tracks []*Track, cfg *Config, frameRate float64, log logs.Log) (kept []*Track, rejected []RejectedTrack) {
	for _, t := range tracks {
		t.Trim()
	}

	stats := make([]TrackStats, len(tracks))
	order := make([]int, len(tracks))
	for i, t := range tracks {
		stats[i] = t.Stats()
		order[i] = i
	}
	// Best score first. Stable, so equal scores keep creation order.
	sort.SliceStable(order, func(a, b int) bool {
		return stats[order[a]].Score > stats[order[b]].Score
	})

	if cfg.Verbose {
		for _, i := range order {
			t, s := tracks[i], stats[i]
			log.Infof("Track %v: duration %.1fs (%v frames), offset %.1fpx, delta %.1f, mass %.1fpx",
				t.ID, float64(s.DurationFrames)/frameRate, s.DurationFrames, s.MaxOffset, s.DeltaStd, s.AverageMass)
		}
	}

	// Highest overlap of each track against any other. A high value
	// normally means two tracks latched onto one object.
	highestOverlap := make([]float64, len(tracks))
	for i, t := range tracks {
		for j, other := range tracks {
			if i == j || t.Len() == 0 || other.Len() == 0 {
				continue
			}
			highestOverlap[i] = max(highestOverlap[i], t.overlapRatio(other))
		}
	}

	minDurationFrames := cfg.MinDurationSecs * frameRate

	reject := func(t *Track, reason string) {
		if cfg.Verbose {
			log.Infof("Track %v filtered: %v", t.ID, reason)
		}
		rejected = append(rejected, RejectedTrack{Track: t, Reason: reason})
	}

	for _, i := range order {
		t, s := tracks[i], stats[i]
		switch {
		case highestOverlap[i] > cfg.TrackOverlapRatio:
			reject(t, fmt.Sprintf("too much overlap with another track (%.2f)", highestOverlap[i]))
		case float64(s.DurationFrames) < minDurationFrames:
			reject(t, fmt.Sprintf("too short (%v frames)", s.DurationFrames))
		case s.MaxOffset < cfg.TrackMinOffset:
			reject(t, fmt.Sprintf("didn't move (offset %.1fpx)", s.MaxOffset))
		case s.DeltaStd < cfg.TrackMinDelta:
			reject(t, fmt.Sprintf("too static (delta %.1f)", s.DeltaStd))
		case s.AverageMass < cfg.TrackMinMass:
			reject(t, fmt.Sprintf("mass too small (%.1fpx)", s.AverageMass))
		default:
			kept = append(kept, t)
		}
	}

	// kept is already ordered best-first; the cap keeps the top N.
	if cfg.MaxTracks > 0 && len(kept) > cfg.MaxTracks {
		log.Warnf("Using only %v tracks out of %v", cfg.MaxTracks, len(kept))
		for _, t := range kept[cfg.MaxTracks:] {
			rejected = append(rejected, RejectedTrack{Track: t, Reason: "too many tracks"})
		}
		kept = kept[:cfg.MaxTracks]
	}

	return kept, rejected
}
