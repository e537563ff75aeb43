package dataset

import (
	"log/slog"
	"math"
	"sort"

	"github.com/go-gota/gota/series"
	"github.com/pkg/errors"

	"github.com/vandoorenxander/dataprep/internal/stats"
)

// DefaultNeighbors is the neighbourhood size of Outliers and
// FeaturesImportance.
const DefaultNeighbors = 20

// Outliers returns the rows flagged by the Local Outlier Factor over the
// numerical features, in ascending order.
func (d *Dataset) Outliers(nNeighbors int) ([]int, error) {
	if nNeighbors <= 0 {
		nNeighbors = DefaultNeighbors
	}
	rows, err := d.numericalRows(d.meta.Numerical)
	if err != nil {
		return nil, err
	}
	out := []int{}
	for i, v := range stats.LOF(rows, nNeighbors) {
		if v > stats.LOFThreshold {
			out = append(out, i)
		}
	}
	d.logger.Debug("Outliers detected", slog.Int("neighbors", nNeighbors), slog.Int("outliers", len(out)))
	return out, nil
}

// numericalRows returns the named numerical features row by row.
func (d *Dataset) numericalRows(names []string) ([][]float64, error) {
	if len(names) == 0 {
		return nil, ErrNoNumerical
	}
	cols := make([][]float64, len(names))
	for j, n := range names {
		s := d.features.Col(n)
		if countNA(s) > 0 {
			return nil, errors.Wrapf(ErrMissingValues, "%q", n)
		}
		cols[j] = s.Float()
	}
	rows := make([][]float64, d.NumSamples())
	for i := range rows {
		rows[i] = make([]float64, len(names))
		for j := range names {
			rows[i][j] = cols[j][i]
		}
	}
	return rows, nil
}

// ScaleMethod names a scaler.
type ScaleMethod string

const (
	// ScaleStandard removes the mean and divides by the population
	// standard deviation.
	ScaleStandard ScaleMethod = "standard"
	// ScaleMinMax maps values onto [0, 1].
	ScaleMinMax ScaleMethod = "minmax"
)

// Scale rescales, in place, the numerical features of a subset.
func (d *Dataset) Scale(sel Selector, method ScaleMethod) error {
	var scale func([]float64) []float64
	switch method {
	case ScaleStandard, "":
		scale = stats.Standardize
	case ScaleMinMax:
		scale = stats.MinMax
	default:
		return errors.Wrapf(ErrInvalidArgument, "unknown scaler %q", method)
	}
	names, err := d.Names(sel)
	if err != nil {
		return err
	}
	var cols []series.Series
	for _, n := range names {
		if contains(d.meta.Numerical, n) {
			cols = append(cols, floatSeries(n, scale(floats(d.features.Col(n)))))
		}
	}
	if len(cols) == 0 {
		return errors.Wrapf(ErrNoNumerical, "nothing to scale in %q", sel)
	}
	return d.setColumns(cols)
}

// FixSkewness applies a Yeo-Johnson transform with maximum likelihood
// lambda to the named numerical features (all of them when none is named),
// then standardises them. Missing values are left as they are.
func (d *Dataset) FixSkewness(names ...string) error {
	if len(names) == 0 {
		if len(d.meta.Numerical) == 0 {
			return errors.Wrap(ErrNoNumerical, "nothing to fix")
		}
		names = d.meta.Numerical
	}
	for _, n := range names {
		if !contains(d.meta.Numerical, n) {
			return errors.Wrapf(ErrNotNumerical, "%q", n)
		}
	}
	cols := make([]series.Series, 0, len(names))
	for _, n := range names {
		vals := floats(d.features.Col(n))
		var idx []int
		var x []float64
		for i, v := range vals {
			if !math.IsNaN(v) {
				idx = append(idx, i)
				x = append(x, v)
			}
		}
		if len(x) == 0 {
			continue
		}
		normed, lambda, err := stats.YeoJohnson(x)
		if err != nil {
			return errors.Wrapf(err, "fix skewness of %q", n)
		}
		for j, i := range idx {
			vals[i] = normed[j]
		}
		cols = append(cols, floatSeries(n, vals))
		d.logger.Debug("Skewness fixed", slog.String("feature", n), slog.Float64("lambda", lambda))
	}
	return d.setColumns(cols)
}

// Skewness is the sample skewness of a feature.
type Skewness struct {
	Feature string
	Value   float64
}

// DefaultSkewThreshold is the |skewness| above which SkewedFeatures fixes
// a feature.
const DefaultSkewThreshold = 0.75

// SkewedFeatures returns the skewness of every numerical feature, highest
// first. With fix, the features whose |skewness| exceeds threshold are
// replaced by boxcox1p(x, lambda), lambda being the Box-Cox maximum
// likelihood estimate on x+1. Features with values <= -1 are left alone.
func (d *Dataset) SkewedFeatures(threshold float64, fix bool) ([]Skewness, error) {
	if len(d.meta.Numerical) == 0 {
		return nil, ErrNoNumerical
	}
	out := make([]Skewness, 0, len(d.meta.Numerical))
	for _, n := range d.meta.Numerical {
		out = append(out, Skewness{Feature: n, Value: stats.Skew(floats(d.features.Col(n)))})
	}
	sort.SliceStable(out, func(i, j int) bool { return greater(out[i].Value, out[j].Value) })
	if !fix {
		return out, nil
	}

	var cols []series.Series
	for _, sk := range out {
		if math.IsNaN(sk.Value) || math.Abs(sk.Value) <= threshold {
			continue
		}
		vals := floats(d.features.Col(sk.Feature))
		shifted := make([]float64, 0, len(vals))
		for _, v := range vals {
			if !math.IsNaN(v) {
				shifted = append(shifted, v+1)
			}
		}
		lambda, err := stats.BoxCoxLambda(shifted)
		if err != nil {
			d.logger.Warn("Skewed feature not fixed", slog.String("feature", sk.Feature), slog.String("error", err.Error()))
			continue
		}
		for i, v := range vals {
			if !math.IsNaN(v) {
				vals[i] = stats.BoxCox1p(v, lambda)
			}
		}
		cols = append(cols, floatSeries(sk.Feature, vals))
		d.logger.Debug("Skewed feature fixed", slog.String("feature", sk.Feature), slog.Float64("lambda", lambda))
	}
	if err := d.setColumns(cols); err != nil {
		return nil, err
	}
	return out, nil
}

// greater orders descending with NaN last.
func greater(a, b float64) bool {
	if math.IsNaN(b) {
		return !math.IsNaN(a)
	}
	return a > b
}
