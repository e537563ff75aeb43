package stats

import (
	"math"
	"sort"

	mstats "github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"
)

func popMeanVariance(x []float64) (float64, float64) {
	if len(x) == 0 {
		return math.NaN(), math.NaN()
	}
	mean := stat.Mean(x, nil)
	var ss float64
	for _, v := range x {
		d := v - mean
		ss += d * d
	}
	return mean, ss / float64(len(x))
}

// Standardize centres x on 0 with unit population standard deviation.
// NaN values are kept and ignored for the moments. A constant column maps
// to zeros.
func Standardize(x []float64) []float64 {
	mean, variance := popMeanVariance(present(x))
	std := math.Sqrt(variance)
	out := make([]float64, len(x))
	for i, v := range x {
		switch {
		case math.IsNaN(v):
			out[i] = v
		case std == 0 || math.IsNaN(std):
			out[i] = 0
		default:
			out[i] = (v - mean) / std
		}
	}
	return out
}

// MinMax rescales x into [0, 1]. NaN values are kept; a constant column
// maps to zeros.
func MinMax(x []float64) []float64 {
	vals := present(x)
	out := make([]float64, len(x))
	if len(vals) == 0 {
		copy(out, x)
		return out
	}
	lo, _ := mstats.Min(vals)
	hi, _ := mstats.Max(vals)
	for i, v := range x {
		switch {
		case math.IsNaN(v):
			out[i] = v
		case hi == lo:
			out[i] = 0
		default:
			out[i] = (v - lo) / (hi - lo)
		}
	}
	return out
}

// Skew is the biased Fisher-Pearson skewness m3/m2^1.5 of the present
// values, from population central moments.
func Skew(x []float64) float64 {
	vals := present(x)
	if len(vals) < 3 {
		return math.NaN()
	}
	return stat.Moment(3, vals, nil) / math.Pow(stat.Moment(2, vals, nil), 1.5)
}

// NumericSummary is the five-number summary plus the mean.
type NumericSummary struct {
	Min    float64
	Q1     float64
	Median float64
	Mean   float64
	Q3     float64
	Max    float64
}

// Summarize describes the present values of x. All fields are NaN when no
// value is present.
func Summarize(x []float64) NumericSummary {
	vals := present(x)
	if len(vals) == 0 {
		nan := math.NaN()
		return NumericSummary{nan, nan, nan, nan, nan, nan}
	}
	data := mstats.Float64Data(vals)
	var s NumericSummary
	s.Min, _ = data.Min()
	s.Max, _ = data.Max()
	s.Mean, _ = data.Mean()
	s.Median, _ = data.Median()
	s.Q1 = quantile(vals, 0.25)
	s.Q3 = quantile(vals, 0.75)
	return s
}

// quantile interpolates linearly between order statistics, the way numpy's
// default percentile does.
func quantile(x []float64, p float64) float64 {
	sorted := append([]float64(nil), x...)
	sort.Float64s(sorted)
	pos := p * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	return sorted[lo] + (pos-float64(lo))*(sorted[hi]-sorted[lo])
}

func present(x []float64) []float64 {
	out := make([]float64, 0, len(x))
	for _, v := range x {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}
