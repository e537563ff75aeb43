// Package dataset wraps a gota DataFrame with the usual data preparation
// steps of a modelling exercise: picking the target variable, inspecting
// the health of every column, fixing missing values, transforming and
// encoding features, finding redundant or weak features, and splitting
// the samples for training.
//
//	ds, err := dataset.Load(ctx, "houses.csv", loader.Options{})
//	if err != nil {
//		return err
//	}
//	if err := ds.SetTarget("SalePrice"); err != nil {
//		return err
//	}
//	ds.DescribeDataset(os.Stdout)
//	x, y, err := ds.Split(dataset.SplitOptions{})
//
// A Dataset is not safe for concurrent use.
package dataset

import (
	"context"
	"log/slog"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/vandoorenxander/dataprep/pkg/loader"
)

// Selector names a subset of columns tracked in the dataset meta.
type Selector string

const (
	SelectAll           Selector = "all"
	SelectNumerical     Selector = "numerical"
	SelectCategorical   Selector = "categorical"
	SelectComplete      Selector = "complete"
	SelectNumericalNA   Selector = "numerical_na"
	SelectCategoricalNA Selector = "categorical_na"
	SelectFeatures      Selector = "features"
	SelectTarget        Selector = "target"
)

// Selectors lists every valid Selector.
var Selectors = []Selector{
	SelectAll, SelectNumerical, SelectCategorical, SelectComplete,
	SelectNumericalNA, SelectCategoricalNA, SelectFeatures, SelectTarget,
}

// ParseSelector validates a selector name.
func ParseSelector(s string) (Selector, error) {
	for _, sel := range Selectors {
		if string(sel) == s {
			return sel, nil
		}
	}
	return "", errors.Wrapf(ErrInvalidArgument, "unknown selector %q", s)
}

// ColumnInfo is the type and missing-value count of a feature.
type ColumnInfo struct {
	Name string
	Type series.Type
	NAs  int
}

// Meta is rebuilt after every change to the dataset.
type Meta struct {
	All           []string
	Features      []string
	Target        string
	Numerical     []string
	Categorical   []string
	NumericalNA   []string
	CategoricalNA []string
	// Complete lists the columns of All, target included, without NA.
	Complete    []string
	Description []ColumnInfo
}

// Dataset holds the features and, once set, the target variable.
type Dataset struct {
	features dataframe.DataFrame
	target   *series.Series
	meta     Meta
	logger   *slog.Logger
}

// Option configures a Dataset.
type Option func(*Dataset)

// WithLogger sets the logger used for progress and warnings.
func WithLogger(l *slog.Logger) Option {
	return func(d *Dataset) {
		if l != nil {
			d.logger = l
		}
	}
}

// New wraps a copy of df. Numerical columns are converted to float.
func New(df dataframe.DataFrame, opts ...Option) (*Dataset, error) {
	if df.Err != nil {
		return nil, errors.Wrap(df.Err, "invalid frame")
	}
	if df.Ncol() == 0 || df.Nrow() == 0 {
		return nil, ErrEmptyDataset
	}
	d := &Dataset{features: df.Copy(), logger: slog.Default()}
	for _, opt := range opts {
		opt(d)
	}
	d.update()
	if err := d.ToFloat(); err != nil {
		return nil, err
	}
	return d, nil
}

// Load reads location (path or URL) with the loader and wraps the result.
func Load(ctx context.Context, location string, lopts loader.Options, opts ...Option) (*Dataset, error) {
	df, err := loader.Read(ctx, location, lopts)
	if err != nil {
		return nil, errors.Wrapf(err, "load %s", location)
	}
	d, err := New(df, opts...)
	if err != nil {
		return nil, err
	}
	d.logger.Info("Dataset loaded",
		slog.String("location", location),
		slog.Int("features", d.NumFeatures()),
		slog.Int("samples", d.NumSamples()))
	return d, nil
}

// LoadQuery runs query on db through the loader and wraps the result.
func LoadQuery(ctx context.Context, db *sqlx.DB, query string, opts ...Option) (*Dataset, error) {
	df, err := loader.Query(ctx, db, query)
	if err != nil {
		return nil, err
	}
	d, err := New(df, opts...)
	if err != nil {
		return nil, err
	}
	d.logger.Info("Dataset loaded from query",
		slog.Int("features", d.NumFeatures()),
		slog.Int("samples", d.NumSamples()))
	return d, nil
}

// update rebuilds the meta information after a change.
func (d *Dataset) update() {
	names := d.features.Names()
	m := Meta{Features: append([]string(nil), names...)}
	for _, name := range names {
		s := d.features.Col(name)
		info := ColumnInfo{Name: name, Type: s.Type(), NAs: countNA(s)}
		m.Description = append(m.Description, info)
		if isNumerical(info.Type) {
			m.Numerical = append(m.Numerical, name)
			if info.NAs > 0 {
				m.NumericalNA = append(m.NumericalNA, name)
			}
		} else {
			m.Categorical = append(m.Categorical, name)
			if info.NAs > 0 {
				m.CategoricalNA = append(m.CategoricalNA, name)
			}
		}
		if info.NAs == 0 {
			m.Complete = append(m.Complete, name)
		}
	}
	m.All = append([]string(nil), names...)
	if d.target != nil {
		m.Target = d.target.Name
		m.All = append(m.All, d.target.Name)
		if countNA(*d.target) == 0 {
			m.Complete = append(m.Complete, d.target.Name)
		}
	}
	d.meta = m
}

// Meta returns a snapshot of the meta information.
func (d *Dataset) Meta() Meta {
	m := d.meta
	m.Description = append([]ColumnInfo(nil), d.meta.Description...)
	return m
}

// Features returns a copy of the feature columns.
func (d *Dataset) Features() dataframe.DataFrame { return d.features.Copy() }

// All returns the features followed by the target, when set.
func (d *Dataset) All() dataframe.DataFrame {
	if d.target == nil {
		return d.features.Copy()
	}
	return d.features.Mutate(d.target.Copy())
}

// Names returns the column names of a subset.
func (d *Dataset) Names(sel Selector) ([]string, error) {
	var names []string
	switch sel {
	case SelectAll:
		names = d.meta.All
	case SelectNumerical:
		names = d.meta.Numerical
	case SelectCategorical:
		names = d.meta.Categorical
	case SelectComplete:
		names = d.meta.Complete
	case SelectNumericalNA:
		names = d.meta.NumericalNA
	case SelectCategoricalNA:
		names = d.meta.CategoricalNA
	case SelectFeatures:
		names = d.meta.Features
	case SelectTarget:
		if d.meta.Target != "" {
			names = []string{d.meta.Target}
		}
	default:
		return nil, errors.Wrapf(ErrInvalidArgument, "unknown selector %q", sel)
	}
	return append([]string(nil), names...), nil
}

// Select returns the columns of a subset. Subsets that may contain the
// target are taken from All.
func (d *Dataset) Select(sel Selector) (dataframe.DataFrame, error) {
	names, err := d.Names(sel)
	if err != nil {
		return dataframe.DataFrame{}, err
	}
	src := d.features
	if sel == SelectAll || sel == SelectComplete || sel == SelectTarget {
		src = d.All()
	}
	return selectNames(src, names), nil
}

// SelectColumns returns the named feature or target columns.
func (d *Dataset) SelectColumns(names ...string) (dataframe.DataFrame, error) {
	all := d.meta.All
	for _, n := range names {
		if !contains(all, n) {
			return dataframe.DataFrame{}, errors.Wrapf(ErrUnknownColumn, "%q", n)
		}
	}
	return selectNames(d.All(), names), nil
}

func selectNames(df dataframe.DataFrame, names []string) dataframe.DataFrame {
	cols := make([]series.Series, 0, len(names))
	for _, n := range names {
		cols = append(cols, df.Col(n))
	}
	return dataframe.New(cols...)
}

// NumericalFeatures lists the numerical features.
func (d *Dataset) NumericalFeatures() []string { return append([]string(nil), d.meta.Numerical...) }

// CategoricalFeatures lists the categorical features.
func (d *Dataset) CategoricalFeatures() []string {
	return append([]string(nil), d.meta.Categorical...)
}

// IncompleteFeatures lists categorical then numerical features with NA.
func (d *Dataset) IncompleteFeatures() []string {
	out := append([]string(nil), d.meta.CategoricalNA...)
	return append(out, d.meta.NumericalNA...)
}

// NumFeatures is the number of features, target excluded.
func (d *Dataset) NumFeatures() int { return d.features.Ncol() }

// NumSamples is the number of rows.
func (d *Dataset) NumSamples() int {
	if d.features.Ncol() == 0 && d.target != nil {
		return d.target.Len()
	}
	return d.features.Nrow()
}

func (d *Dataset) isFeature(name string) bool { return contains(d.meta.Features, name) }

func (d *Dataset) isTarget(name string) bool { return d.target != nil && d.target.Name == name }

// column returns a feature or the target by name.
func (d *Dataset) column(name string) (series.Series, error) {
	if d.isTarget(name) {
		return d.target.Copy(), nil
	}
	if !d.isFeature(name) {
		return series.Series{}, errors.Wrapf(ErrUnknownColumn, "%q", name)
	}
	return d.features.Col(name), nil
}

// setColumn replaces a feature or the target with s, keyed by s.Name.
func (d *Dataset) setColumn(s series.Series) error {
	if d.isTarget(s.Name) {
		d.target = &s
		return nil
	}
	df := d.features.Mutate(s)
	if df.Err != nil {
		return errors.Wrapf(df.Err, "set column %q", s.Name)
	}
	d.features = df
	return nil
}

// setColumns replaces every column of cols and refreshes the meta, even
// when a replacement fails halfway.
func (d *Dataset) setColumns(cols []series.Series) error {
	defer d.update()
	for _, s := range cols {
		if err := d.setColumn(s); err != nil {
			return err
		}
	}
	return nil
}
