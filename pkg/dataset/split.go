package dataset

import (
	"log/slog"
	"math"
	"math/rand"
	"sort"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/pkg/errors"
	"gorgonia.org/tensor"
)

const (
	DefaultSeed     = 1024
	DefaultTestSize = 0.2
)

// SplitOptions controls Split. Zero values select the defaults.
type SplitOptions struct {
	Seed     int64
	TestSize float64
	// Validation splits the training part again with the same TestSize.
	Validation bool
}

// Split holds the parts of a train/test(/validation) split.
type Split struct {
	Train         dataframe.DataFrame
	Test          dataframe.DataFrame
	Validation    dataframe.DataFrame
	HasValidation bool
}

// Split shuffles the samples with a seeded source and splits the features
// (x) and the target (y) in the same way.
func (d *Dataset) Split(opts SplitOptions) (x, y Split, err error) {
	if d.target == nil {
		return x, y, ErrNoTarget
	}
	if opts.Seed == 0 {
		opts.Seed = DefaultSeed
	}
	if opts.TestSize == 0 {
		opts.TestSize = DefaultTestSize
	}
	if opts.TestSize <= 0 || opts.TestSize >= 1 {
		return x, y, errors.Wrapf(ErrInvalidArgument, "test size %v not in (0, 1)", opts.TestSize)
	}
	if d.features.Ncol() == 0 {
		return x, y, errors.Wrap(ErrEmptyDataset, "no features to split")
	}

	rng := rand.New(rand.NewSource(opts.Seed))
	rows := make([]int, d.NumSamples())
	for i := range rows {
		rows[i] = i
	}
	train, test, err := splitRows(rng, rows, opts.TestSize)
	if err != nil {
		return x, y, err
	}
	var val []int
	if opts.Validation {
		if train, val, err = splitRows(rng, train, opts.TestSize); err != nil {
			return x, y, err
		}
		x.HasValidation, y.HasValidation = true, true
	}

	target := dataframe.New(d.target.Copy())
	x.Train, y.Train = d.features.Subset(train), target.Subset(train)
	x.Test, y.Test = d.features.Subset(test), target.Subset(test)
	if opts.Validation {
		x.Validation, y.Validation = d.features.Subset(val), target.Subset(val)
	}
	for _, df := range []dataframe.DataFrame{x.Train, x.Test, x.Validation, y.Train, y.Test, y.Validation} {
		if df.Err != nil {
			return Split{}, Split{}, errors.Wrap(df.Err, "split")
		}
	}
	d.logger.Debug("Dataset split",
		slog.Int("train", len(train)),
		slog.Int("test", len(test)),
		slog.Int("validation", len(val)))
	return x, y, nil
}

// splitRows shuffles rows and takes ceil(size*n) of them as the test part.
func splitRows(rng *rand.Rand, rows []int, size float64) (train, test []int, err error) {
	n := len(rows)
	nTest := int(math.Ceil(size * float64(n)))
	if nTest == 0 || nTest >= n {
		return nil, nil, errors.Wrapf(ErrInvalidArgument, "test size %v leaves an empty part of %d samples", size, n)
	}
	perm := rng.Perm(n)
	test = make([]int, nTest)
	for i, p := range perm[:nTest] {
		test[i] = rows[p]
	}
	train = make([]int, 0, n-nTest)
	for _, p := range perm[nTest:] {
		train = append(train, rows[p])
	}
	return train, test, nil
}

// ToTensor copies the numerical frame df into a rows x cols dense tensor of
// the given dtype (Float64 or Float32).
func ToTensor(df dataframe.DataFrame, dt tensor.Dtype) (*tensor.Dense, error) {
	if df.Err != nil {
		return nil, errors.Wrap(df.Err, "invalid frame")
	}
	rows, cols := df.Nrow(), df.Ncol()
	if rows == 0 || cols == 0 {
		return nil, ErrEmptyDataset
	}
	data := make([][]float64, cols)
	for j, name := range df.Names() {
		s := df.Col(name)
		if !isNumerical(s.Type()) {
			return nil, errors.Wrapf(ErrNotNumerical, "%q cannot be exported", name)
		}
		if countNA(s) > 0 {
			return nil, errors.Wrapf(ErrMissingValues, "%q cannot be exported", name)
		}
		data[j] = s.Float()
	}

	var backing interface{}
	switch dt {
	case tensor.Float64:
		b := make([]float64, 0, rows*cols)
		for i := 0; i < rows; i++ {
			for j := 0; j < cols; j++ {
				b = append(b, data[j][i])
			}
		}
		backing = b
	case tensor.Float32:
		b := make([]float32, 0, rows*cols)
		for i := 0; i < rows; i++ {
			for j := 0; j < cols; j++ {
				b = append(b, float32(data[j][i]))
			}
		}
		backing = b
	default:
		return nil, errors.Errorf("unsupported dtype %v", dt)
	}
	return tensor.New(tensor.WithShape(rows, cols), tensor.WithBacking(backing)), nil
}

// LabelsTensor one-hot encodes a categorical target into a rows x classes
// Float64 tensor. The classes are returned in column order.
func LabelsTensor(s series.Series) (*tensor.Dense, []string, error) {
	if s.Len() == 0 {
		return nil, nil, ErrEmptyDataset
	}
	if countNA(s) > 0 {
		return nil, nil, errors.Wrapf(ErrMissingValues, "%q cannot be exported", s.Name)
	}
	vals := labels(s)
	index := make(map[string]int)
	var classes []string
	for _, v := range vals {
		if _, ok := index[v]; !ok {
			index[v] = 0
			classes = append(classes, v)
		}
	}
	sort.Strings(classes)
	for i, c := range classes {
		index[c] = i
	}
	b := make([]float64, len(vals)*len(classes))
	for i, v := range vals {
		b[i*len(classes)+index[v]] = 1
	}
	return tensor.New(tensor.WithShape(len(vals), len(classes)), tensor.WithBacking(b)), classes, nil
}
