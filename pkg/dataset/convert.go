package dataset

import (
	"math"
	"strconv"

	"github.com/go-gota/gota/series"
	"github.com/pkg/errors"
)

// ToNumerical parses the named features or target as numbers. Columns
// holding only integers become Int, the rest Float. Bool columns map to
// 1 and 0.
func (d *Dataset) ToNumerical(names ...string) error {
	cols := make([]series.Series, 0, len(names))
	for _, n := range names {
		s, err := d.column(n)
		if err != nil {
			return err
		}
		conv, err := parseNumerical(s)
		if err != nil {
			return err
		}
		cols = append(cols, conv)
	}
	return d.setColumns(cols)
}

func parseNumerical(s series.Series) (series.Series, error) {
	if isNumerical(s.Type()) {
		return s, nil
	}
	if s.Type() == series.Bool {
		return floatSeries(s.Name, floats(s)), nil
	}
	mask := naMask(s)
	recs := s.Records()
	integral := true
	for i, r := range recs {
		if mask[i] {
			recs[i] = "NaN"
			continue
		}
		if _, err := strconv.ParseInt(r, 10, 64); err == nil {
			continue
		}
		integral = false
		if _, err := strconv.ParseFloat(r, 64); err != nil {
			return series.Series{}, errors.Wrapf(ErrNotNumerical, "%q: value %q", s.Name, r)
		}
	}
	if integral {
		return series.New(recs, series.Int, s.Name), nil
	}
	return series.New(recs, series.Float, s.Name), nil
}

// numericalNames resolves the columns for ToFloat and ToInt: every
// numerical feature when none are named, otherwise the named ones, which
// must be numerical features or a numerical target.
func (d *Dataset) numericalNames(names []string) ([]string, error) {
	if len(names) == 0 {
		return d.NumericalFeatures(), nil
	}
	for _, n := range names {
		s, err := d.column(n)
		if err != nil {
			return nil, err
		}
		if !isNumerical(s.Type()) {
			return nil, errors.Wrapf(ErrNotNumerical, "%q", n)
		}
	}
	return names, nil
}

// ToFloat converts numerical columns to Float.
func (d *Dataset) ToFloat(names ...string) error {
	names, err := d.numericalNames(names)
	if err != nil {
		return err
	}
	var cols []series.Series
	for _, n := range names {
		s, _ := d.column(n)
		if s.Type() != series.Float {
			cols = append(cols, floatSeries(n, floats(s)))
		}
	}
	return d.setColumns(cols)
}

// ToInt converts numerical columns to Int, truncating decimals.
func (d *Dataset) ToInt(names ...string) error {
	names, err := d.numericalNames(names)
	if err != nil {
		return err
	}
	cols := make([]series.Series, 0, len(names))
	for _, n := range names {
		s, _ := d.column(n)
		vals := floats(s)
		recs := make([]string, len(vals))
		for i, v := range vals {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				recs[i] = "NaN"
				continue
			}
			recs[i] = strconv.FormatInt(int64(v), 10)
		}
		cols = append(cols, series.New(recs, series.Int, n))
	}
	return d.setColumns(cols)
}

// ToCategorical converts the named features or target to strings.
func (d *Dataset) ToCategorical(names ...string) error {
	cols := make([]series.Series, 0, len(names))
	for _, n := range names {
		s, err := d.column(n)
		if err != nil {
			return err
		}
		if s.Type() != series.String {
			cols = append(cols, series.New(labels(s), series.String, n))
		}
	}
	return d.setColumns(cols)
}
