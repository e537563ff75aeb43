package dataset

import (
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/pkg/errors"
)

// DropColumns removes the named features. Unknown names are ignored.
func (d *Dataset) DropColumns(names ...string) error {
	var drop []string
	for _, n := range names {
		if d.isFeature(n) && !contains(drop, n) {
			drop = append(drop, n)
		}
	}
	if len(drop) == 0 {
		return nil
	}
	df := d.features.Drop(drop)
	if df.Err != nil {
		return errors.Wrap(df.Err, "drop columns")
	}
	d.features = df
	d.update()
	d.logger.Debug("Columns dropped", slog.Any("columns", drop))
	return nil
}

// KeepColumns drops every feature not named.
func (d *Dataset) KeepColumns(names ...string) error {
	var drop []string
	for _, n := range d.meta.Features {
		if !contains(names, n) {
			drop = append(drop, n)
		}
	}
	return d.DropColumns(drop...)
}

// AddColumns appends series as new features. Unnamed series are called
// xf{n} with n the feature count after insertion.
func (d *Dataset) AddColumns(cols ...series.Series) error {
	for _, s := range cols {
		if s.Err != nil {
			return errors.Wrap(s.Err, "add column")
		}
		if s.Name == "" {
			s.Name = fmt.Sprintf("xf%d", d.NumFeatures()+1)
		}
		if d.isFeature(s.Name) || d.isTarget(s.Name) {
			return errors.Wrapf(ErrDuplicateColumn, "%q", s.Name)
		}
		if n := d.NumSamples(); s.Len() != n {
			return errors.Wrapf(ErrInvalidArgument, "column %q has %d rows, dataset has %d", s.Name, s.Len(), n)
		}
		if err := d.setColumn(s); err != nil {
			return err
		}
		d.update()
	}
	return nil
}

// AddFrame appends every column of df as a feature.
func (d *Dataset) AddFrame(df dataframe.DataFrame) error {
	if df.Err != nil {
		return errors.Wrap(df.Err, "add frame")
	}
	cols := make([]series.Series, 0, df.Ncol())
	for _, n := range df.Names() {
		cols = append(cols, df.Col(n))
	}
	return d.AddColumns(cols...)
}

// AggregateOp is a row-wise operation over several numerical columns.
type AggregateOp string

const (
	AggregateSum  AggregateOp = "sum"
	AggregateMean AggregateOp = "mean"
	AggregateMax  AggregateOp = "max"
	AggregateMin  AggregateOp = "min"
	AggregateProd AggregateOp = "prod"
	// AggregateDiff subtracts the remaining columns from the first one.
	AggregateDiff AggregateOp = "diff"
)

// Aggregate stores op applied to every row of cols in newName, then
// optionally drops cols. Missing values are skipped.
func (d *Dataset) Aggregate(cols []string, newName string, op AggregateOp, drop bool) error {
	if len(cols) == 0 || newName == "" {
		return errors.Wrap(ErrInvalidArgument, "aggregate needs columns and a name")
	}
	if d.isTarget(newName) {
		return errors.Wrapf(ErrDuplicateColumn, "%q is the target", newName)
	}
	vals := make([][]float64, len(cols))
	for i, c := range cols {
		if !d.isFeature(c) {
			return errors.Wrapf(ErrUnknownColumn, "%q", c)
		}
		s := d.features.Col(c)
		if !isNumerical(s.Type()) {
			return errors.Wrapf(ErrNotNumerical, "%q", c)
		}
		vals[i] = floats(s)
	}

	out := make([]float64, d.NumSamples())
	row := make([]float64, 0, len(cols))
	for r := range out {
		row = row[:0]
		for i := range cols {
			row = append(row, vals[i][r])
		}
		v, err := aggregate(op, row)
		if err != nil {
			return err
		}
		out[r] = v
	}

	if err := d.setColumn(floatSeries(newName, out)); err != nil {
		return err
	}
	d.update()
	if !drop {
		return nil
	}
	var rest []string
	for _, c := range cols {
		if c != newName {
			rest = append(rest, c)
		}
	}
	return d.DropColumns(rest...)
}

func aggregate(op AggregateOp, row []float64) (float64, error) {
	var present []float64
	for _, v := range row {
		if !math.IsNaN(v) {
			present = append(present, v)
		}
	}
	switch op {
	case AggregateSum:
		var s float64
		for _, v := range present {
			s += v
		}
		return s, nil
	case AggregateProd:
		p := 1.0
		for _, v := range present {
			p *= v
		}
		return p, nil
	case AggregateMean:
		if len(present) == 0 {
			return math.NaN(), nil
		}
		var s float64
		for _, v := range present {
			s += v
		}
		return s / float64(len(present)), nil
	case AggregateMax, AggregateMin:
		if len(present) == 0 {
			return math.NaN(), nil
		}
		m := present[0]
		for _, v := range present[1:] {
			if (op == AggregateMax && v > m) || (op == AggregateMin && v < m) {
				m = v
			}
		}
		return m, nil
	case AggregateDiff:
		if math.IsNaN(row[0]) {
			return math.NaN(), nil
		}
		v := row[0]
		for _, x := range row[1:] {
			if !math.IsNaN(x) {
				v -= x
			}
		}
		return v, nil
	default:
		return 0, errors.Wrapf(ErrInvalidArgument, "unknown aggregate %q", op)
	}
}

// Bin is the half-open interval (Lo, Hi].
type Bin struct {
	Lo, Hi float64
}

func (b Bin) contains(v float64) bool { return v > b.Lo && v <= b.Hi }

// Discretize turns a numerical feature into a categorical one by binning.
// names default to "1".."len(bins)". Values outside every bin become NA.
//
//	// number of children 0..8 into four ranges
//	ds.Discretize("x3", []dataset.Bin{{0, 2}, {2, 4}, {4, 6}, {6, 8}}, nil)
func (d *Dataset) Discretize(column string, bins []Bin, names []string) error {
	if !contains(d.meta.Numerical, column) {
		return errors.Wrapf(ErrNotNumerical, "%q cannot be discretized", column)
	}
	if len(bins) == 0 {
		return errors.Wrap(ErrInvalidArgument, "no bins")
	}
	for _, b := range bins {
		if !(b.Lo < b.Hi) {
			return errors.Wrapf(ErrInvalidArgument, "bin (%v, %v]", b.Lo, b.Hi)
		}
	}
	if len(names) == 0 {
		names = make([]string, len(bins))
		for i := range bins {
			names[i] = fmt.Sprint(i + 1)
		}
	} else if len(names) != len(bins) {
		return errors.Wrapf(ErrInvalidArgument, "%d names for %d bins", len(names), len(bins))
	}

	vals := floats(d.features.Col(column))
	out := make([]string, len(vals))
	for i, v := range vals {
		out[i] = "NaN"
		if math.IsNaN(v) {
			continue
		}
		for j, b := range bins {
			if b.contains(v) {
				out[i] = names[j]
				break
			}
		}
	}
	if err := d.setColumn(series.New(out, series.String, column)); err != nil {
		return err
	}
	d.update()
	return nil
}

// OnehotEncode replaces categorical features by float indicator columns
// named column_value, one per category in sorted order. With no names
// every categorical feature is encoded. Encoded columns are appended after
// the untouched features. A missing value yields a row of zeros.
func (d *Dataset) OnehotEncode(names ...string) error {
	if len(names) == 0 {
		names = d.CategoricalFeatures()
	}
	for _, n := range names {
		if !d.isFeature(n) {
			return errors.Wrapf(ErrUnknownColumn, "%q cannot be encoded", n)
		}
	}
	if len(names) == 0 {
		return nil
	}

	var cols []series.Series
	taken := make(map[string]bool)
	for _, n := range d.meta.Features {
		if !contains(names, n) {
			cols = append(cols, d.features.Col(n))
			taken[n] = true
		}
	}
	for _, n := range names {
		s := d.features.Col(n)
		vals := labels(s)
		mask := naMask(s)
		var cats []string
		seen := make(map[string]bool)
		for i, v := range vals {
			if !mask[i] && !seen[v] {
				seen[v] = true
				cats = append(cats, v)
			}
		}
		sort.Strings(cats)
		for _, c := range cats {
			name := n + "_" + c
			if taken[name] || d.isTarget(name) {
				return errors.Wrapf(ErrDuplicateColumn, "%q", name)
			}
			taken[name] = true
			ind := make([]float64, len(vals))
			for i, v := range vals {
				if !mask[i] && v == c {
					ind[i] = 1
				}
			}
			cols = append(cols, series.New(ind, series.Float, name))
		}
	}
	df := dataframe.New(cols...)
	if df.Err != nil {
		return errors.Wrap(df.Err, "onehot encode")
	}
	d.features = df
	d.update()
	d.logger.Debug("Features encoded", slog.Any("columns", names), slog.Int("features", d.NumFeatures()))
	return nil
}

// MergeCategories replaces every value of old in a categorical feature by
// newValue.
func (d *Dataset) MergeCategories(column string, old []string, newValue string) error {
	if !contains(d.meta.Categorical, column) {
		return errors.Wrapf(ErrNotCategorical, "%q", column)
	}
	if len(old) < 2 {
		return errors.Wrap(ErrInvalidArgument, "merge needs more than one value")
	}
	s := d.features.Col(column)
	vals := labels(s)
	mask := naMask(s)
	for i, v := range vals {
		if !mask[i] && contains(old, v) {
			vals[i] = newValue
		}
	}
	if err := d.setColumn(series.New(vals, series.String, column)); err != nil {
		return err
	}
	d.update()
	return nil
}

// MergeValues is MergeCategories for numerical features.
func (d *Dataset) MergeValues(column string, old []float64, newValue float64) error {
	if !contains(d.meta.Numerical, column) {
		return errors.Wrapf(ErrNotNumerical, "%q", column)
	}
	if len(old) < 2 {
		return errors.Wrap(ErrInvalidArgument, "merge needs more than one value")
	}
	vals := floats(d.features.Col(column))
	for i, v := range vals {
		for _, o := range old {
			if v == o {
				vals[i] = newValue
				break
			}
		}
	}
	if err := d.setColumn(floatSeries(column, vals)); err != nil {
		return err
	}
	d.update()
	return nil
}
