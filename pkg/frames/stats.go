package frames

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Median returns the median pixel value of img.
func Median(img *Image) float64 {
	return Quantile(img.Pix, 0.5)
}

// Quantile returns the q'th quantile (0..1) of the samples.
// The input slice is not modified.
func Quantile(samples []float64, q float64) float64 {
	tmp := append([]float64(nil), samples...)
	sort.Float64s(tmp)
	return stat.Quantile(q, stat.Empirical, tmp, nil)
}

// Mean returns the mean pixel value of img.
func Mean(img *Image) float64 {
	return stat.Mean(img.Pix, nil)
}

// MeanAbs returns the mean of |pixel| over img.
func MeanAbs(img *Image) float64 {
	sum := 0.0
	for _, v := range img.Pix {
		if v < 0 {
			v = -v
		}
		sum += v
	}
	return sum / float64(len(img.Pix))
}

// MinMax returns the smallest and largest pixel values of img.
func MinMax(img *Image) (float64, float64) {
	lo, hi := img.Pix[0], img.Pix[0]
	for _, v := range img.Pix {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}
