package track

import (
	"sort"

	"github.com/cyclopcam/thermal/pkg/frames"
	"github.com/cyclopcam/thermal/pkg/gen"
	"gonum.org/v1/gonum/stat"
)

// Per-pixel percentile used as the background estimate. Low enough that a
// moving object's brief presence at a pixel doesn't pull the baseline up.
const backgroundPercentile = 0.10

// BackgroundAnalysis holds the clip-global statistics derived during the
// background warm-up phase.
type BackgroundAnalysis struct {
	Threshold           float64 // Adaptive region threshold, clamped to [MinThreshold, MaxThreshold]
	AverageDelta        float64 // Mean absolute inter-frame pixel delta
	MinTemp             float64
	MaxTemp             float64
	MeanTemp            float64
	BackgroundDeviation float64 // Mean absolute residual against the background estimate
	IsStatic            bool
}

// analyseBackground runs over the complete frame sequence and estimates
// the scene background plus the clip-global statistics. This requires
// every frame up front, which is why the extractor treats it as an
// explicit warm-up step before the per-frame state machine starts.
func analyseBackground(clipFrames []*frames.Frame, cfg *Config) (*frames.Image, BackgroundAnalysis) {
	width := clipFrames[0].Width
	height := clipFrames[0].Height
	n := len(clipFrames)

	// Per-pixel low percentile over the whole clip.
	background := frames.NewImage(width, height)
	samples := make([]float64, n)
	for p := 0; p < width*height; p++ {
		for i, f := range clipFrames {
			samples[i] = float64(f.Pix[p])
		}
		sort.Float64s(samples)
		background.Pix[p] = stat.Quantile(backgroundPercentile, stat.Empirical, samples, nil)
	}

	analysis := BackgroundAnalysis{MinTemp: float64(clipFrames[0].Pix[0]), MaxTemp: float64(clipFrames[0].Pix[0])}

	// Residual of each frame against the background, filtered the same way
	// the statistical frame filter will do it. The flattened residual
	// distribution feeds the adaptive threshold.
	residuals := make([]float64, 0, n*width*height)
	filter := frameFilter{mode: filterModeStatistical, background: background}
	deviationSum := 0.0
	tempSum := 0.0
	for _, f := range clipFrames {
		thermal := f.Float()
		lo, hi := frames.MinMax(thermal)
		analysis.MinTemp = min(analysis.MinTemp, lo)
		analysis.MaxTemp = max(analysis.MaxTemp, hi)
		tempSum += frames.Mean(thermal)

		filtered := filter.apply(thermal)
		deviationSum += frames.MeanAbs(filtered)
		residuals = append(residuals, filtered.Pix...)
	}
	analysis.MeanTemp = tempSum / float64(n)
	analysis.BackgroundDeviation = deviationSum / float64(n)

	// Mean absolute frame-to-frame delta.
	if n > 1 {
		deltaSum := 0.0
		for i := 1; i < n; i++ {
			prev, cur := clipFrames[i-1], clipFrames[i]
			for p := range cur.Pix {
				deltaSum += gen.Abs(float64(cur.Pix[p]) - float64(prev.Pix[p]))
			}
		}
		analysis.AverageDelta = deltaSum / float64((n-1)*width*height)
	}

	// Half the high percentile of the residual distribution, capped to
	// something reasonable.
	threshold := frames.Quantile(residuals, cfg.ThresholdPercentile/100) / 2
	analysis.Threshold = gen.Clamp(threshold, cfg.MinThreshold, cfg.MaxThreshold)

	analysis.IsStatic = analysis.BackgroundDeviation < cfg.StaticBackgroundThreshold

	return background, analysis
}

// calculatePreview estimates the background as the per-pixel minimum over
// the clip's initial calibration window, which is assumed object-free.
// Also returns the window's mean intensity, used for per-frame offset
// correction during filtering.
func calculatePreview(clipFrames []*frames.Frame, previewFrames int) (*frames.Image, float64) {
	if previewFrames > len(clipFrames) || previewFrames < 1 {
		previewFrames = len(clipFrames)
	}
	width := clipFrames[0].Width
	height := clipFrames[0].Height
	background := frames.NewImage(width, height)
	for p := 0; p < width*height; p++ {
		lo := clipFrames[0].Pix[p]
		for _, f := range clipFrames[1:previewFrames] {
			if f.Pix[p] < lo {
				lo = f.Pix[p]
			}
		}
		background.Pix[p] = float64(lo)
	}
	return background, frames.Mean(background)
}
