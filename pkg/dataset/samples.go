package dataset

import (
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/go-gota/gota/series"
	"github.com/pkg/errors"

	"github.com/vandoorenxander/dataprep/internal/stats"
)

// SamplesMatching returns the indices of the rows whose feature equals
// value. With an empty feature the target is matched. Numerical columns
// compare numerically, the rest by string representation.
//
//	ds.SamplesMatching("red", "")        // target == "red"
//	ds.SamplesMatching(75, "column_3")  // column_3 == 75
func (d *Dataset) SamplesMatching(value interface{}, feature string) ([]int, error) {
	if value == nil {
		return nil, errors.Wrap(ErrInvalidArgument, "a value must be provided")
	}
	var s series.Series
	if feature == "" {
		if d.target == nil {
			return nil, ErrNoTarget
		}
		s = *d.target
	} else {
		var err error
		if s, err = d.column(feature); err != nil {
			return nil, err
		}
	}

	matches := []int{}
	if isNumerical(s.Type()) {
		want, err := toFloat(value)
		if err != nil {
			return nil, err
		}
		for i, v := range floats(s) {
			if v == want {
				matches = append(matches, i)
			}
		}
		return matches, nil
	}
	want := fmt.Sprint(value)
	for i, v := range labels(s) {
		if !isNA(s, i) && v == want {
			matches = append(matches, i)
		}
	}
	return matches, nil
}

// DropSamples removes rows from the features and the target.
func (d *Dataset) DropSamples(indices ...int) error {
	n := d.NumSamples()
	drop := make(map[int]bool, len(indices))
	for _, i := range indices {
		if i < 0 || i >= n {
			return errors.Wrapf(ErrInvalidArgument, "sample %d out of range [0, %d)", i, n)
		}
		drop[i] = true
	}
	keep := make([]int, 0, n)
	for i := 0; i < n; i++ {
		if !drop[i] {
			keep = append(keep, i)
		}
	}
	return d.keepRows(keep)
}

func (d *Dataset) keepRows(keep []int) error {
	if len(keep) == d.NumSamples() {
		return nil
	}
	if len(keep) == 0 {
		return errors.Wrap(ErrEmptyDataset, "every sample would be dropped")
	}
	if d.features.Ncol() > 0 {
		df := d.features.Subset(keep)
		if df.Err != nil {
			return errors.Wrap(df.Err, "drop samples")
		}
		d.features = df
	}
	if d.target != nil {
		t := d.target.Subset(keep)
		if t.Err != nil {
			return errors.Wrap(t.Err, "drop samples")
		}
		d.target = &t
	}
	d.update()
	return nil
}

// NAs lists the numerical then categorical features with missing values.
func (d *Dataset) NAs() []string {
	out := append([]string(nil), d.meta.NumericalNA...)
	return append(out, d.meta.CategoricalNA...)
}

// ReplaceNA fills the missing values of the named columns (every
// incomplete feature when none is named) with value.
func (d *Dataset) ReplaceNA(value interface{}, names ...string) error {
	if len(names) == 0 {
		names = d.NAs()
	}
	cols := make([]series.Series, 0, len(names))
	for _, n := range names {
		s, err := d.column(n)
		if err != nil {
			return err
		}
		filled, err := fill(s, value)
		if err != nil {
			return err
		}
		cols = append(cols, filled)
	}
	return d.setColumns(cols)
}

func fill(s series.Series, value interface{}) (series.Series, error) {
	mask := naMask(s)
	if isNumerical(s.Type()) {
		v, err := toFloat(value)
		if err != nil {
			return series.Series{}, errors.Wrapf(err, "fill %q", s.Name)
		}
		vals := floats(s)
		for i := range vals {
			if mask[i] {
				vals[i] = v
			}
		}
		out := floatSeries(s.Name, vals)
		if s.Type() == series.Int && v == math.Trunc(v) {
			return parseNumerical(series.New(out.Records(), series.String, s.Name))
		}
		return out, nil
	}
	vals := labels(s)
	for i := range vals {
		if mask[i] {
			vals[i] = fmt.Sprint(value)
		}
	}
	return series.New(vals, s.Type(), s.Name), nil
}

// ImputeStrategy picks the statistic used to fill missing values.
type ImputeStrategy string

const (
	ImputeMean   ImputeStrategy = "mean"
	ImputeMedian ImputeStrategy = "median"
	ImputeMode   ImputeStrategy = "mode"
)

// Impute fills missing values of the named columns (every incomplete
// feature when none is named) with a statistic of the present values.
// Mean and median apply to numerical columns only.
func (d *Dataset) Impute(strategy ImputeStrategy, names ...string) error {
	if len(names) == 0 {
		names = d.NAs()
	}
	for _, n := range names {
		s, err := d.column(n)
		if err != nil {
			return err
		}
		var value interface{}
		switch strategy {
		case ImputeMean, ImputeMedian:
			if !isNumerical(s.Type()) {
				return errors.Wrapf(ErrNotNumerical, "%s of %q", strategy, n)
			}
			sum := stats.Summarize(floats(s))
			value = sum.Mean
			if strategy == ImputeMedian {
				value = sum.Median
			}
		case ImputeMode:
			var present []string
			for i, l := range labels(s) {
				if !isNA(s, i) {
					present = append(present, l)
				}
			}
			counts := stats.ValueCounts(present)
			if len(counts) == 0 {
				continue
			}
			value = counts[0].Value
		default:
			return errors.Wrapf(ErrInvalidArgument, "unknown strategy %q", strategy)
		}
		if f, ok := value.(float64); ok && math.IsNaN(f) {
			continue
		}
		if err := d.ReplaceNA(value, n); err != nil {
			return err
		}
		d.logger.Debug("Imputed", slog.String("column", n), slog.String("strategy", string(strategy)), slog.Any("value", value))
	}
	return nil
}

// DropNA removes every sample with a missing or infinite feature value.
func (d *Dataset) DropNA() error {
	n := d.NumSamples()
	bad := make([]bool, n)
	for _, name := range d.meta.Features {
		s := d.features.Col(name)
		numerical := isNumerical(s.Type())
		for i := 0; i < n; i++ {
			if isNA(s, i) || (numerical && math.IsInf(s.Elem(i).Float(), 0)) {
				bad[i] = true
			}
		}
	}
	keep := make([]int, 0, n)
	for i, b := range bad {
		if !b {
			keep = append(keep, i)
		}
	}
	dropped := n - len(keep)
	if err := d.keepRows(keep); err != nil {
		return err
	}
	if dropped > 0 {
		d.logger.Info("Samples with missing values dropped", slog.Int("dropped", dropped), slog.Int("remaining", len(keep)))
	}
	return nil
}

// completeRows lists the rows where none of the given columns is NA.
func completeRows(cols ...series.Series) []int {
	if len(cols) == 0 {
		return nil
	}
	var rows []int
	for i := 0; i < cols[0].Len(); i++ {
		ok := true
		for _, s := range cols {
			if isNA(s, i) {
				ok = false
				break
			}
		}
		if ok {
			rows = append(rows, i)
		}
	}
	sort.Ints(rows)
	return rows
}
