package dataset

import (
	"io"
	"log/slog"
	"math"
	"sort"

	"github.com/pkg/errors"
	pb "gopkg.in/cheggaaa/pb.v1"

	"github.com/vandoorenxander/dataprep/internal/stats"
)

// DefaultUnderRepresented is the default limit of UnderRepresentedFeatures.
const DefaultUnderRepresented = 0.98

// UnderRepresentedFeatures lists the categorical features whose most
// frequent value (missing values included) covers more than threshold of
// the samples.
func (d *Dataset) UnderRepresentedFeatures(threshold float64) []string {
	out := []string{}
	n := float64(d.NumSamples())
	for _, name := range d.meta.Categorical {
		counts := stats.ValueCounts(labels(d.features.Col(name)))
		if len(counts) > 0 && float64(counts[0].Count)/n > threshold {
			out = append(out, name)
		}
	}
	return out
}

// IG is the information gain of the target given a categorical feature,
// computed over the samples where neither is missing.
func (d *Dataset) IG(name string) (float64, error) {
	if d.target == nil {
		return 0, ErrNoTarget
	}
	if !contains(d.meta.Categorical, name) {
		return 0, errors.Wrapf(ErrNotCategorical, "%q", name)
	}
	s := d.features.Col(name)
	x, t := labels(s), labels(*d.target)
	var xs, ts []string
	for _, r := range completeRows(s, *d.target) {
		xs = append(xs, x[r])
		ts = append(ts, t[r])
	}
	return stats.InformationGain(xs, ts), nil
}

// InformationGain computes IG for every categorical feature.
func (d *Dataset) InformationGain() (map[string]float64, error) {
	if d.target == nil {
		return nil, ErrNoTarget
	}
	out := make(map[string]float64, len(d.meta.Categorical))
	for _, name := range d.meta.Categorical {
		ig, err := d.IG(name)
		if err != nil {
			return nil, err
		}
		out[name] = ig
	}
	return out, nil
}

// StepwiseOptions controls StepwiseSelection.
type StepwiseOptions struct {
	// Initial features to start with.
	Initial []string
	// A feature is included when its p-value is below ThresholdIn.
	ThresholdIn float64
	// An included feature is excluded when its p-value exceeds ThresholdOut.
	ThresholdOut float64
	// Verbose logs every inclusion and exclusion at info level.
	Verbose bool
}

const (
	DefaultThresholdIn  = 0.01
	DefaultThresholdOut = 0.05
	maxStepwiseRounds   = 1000
)

// StepwiseSelection runs a forward/backward feature selection over the
// numerical features, based on the p-values of an OLS fit of the target.
// It returns the selected features in order of inclusion.
func (d *Dataset) StepwiseSelection(opts StepwiseOptions) ([]string, error) {
	if opts.ThresholdIn == 0 {
		opts.ThresholdIn = DefaultThresholdIn
	}
	if opts.ThresholdOut == 0 {
		opts.ThresholdOut = DefaultThresholdOut
	}
	if opts.ThresholdIn >= opts.ThresholdOut {
		return nil, errors.Wrapf(ErrInvalidArgument, "threshold in (%v) must be lower than threshold out (%v)", opts.ThresholdIn, opts.ThresholdOut)
	}
	if d.target == nil {
		return nil, ErrNoTarget
	}
	if !isNumerical(d.target.Type()) {
		return nil, errors.Wrapf(ErrNotNumerical, "target %q", d.target.Name)
	}
	if countNA(*d.target) > 0 {
		return nil, errors.Wrapf(ErrMissingValues, "target %q", d.target.Name)
	}
	if len(d.meta.Numerical) == 0 {
		return nil, ErrNoNumerical
	}
	if len(d.meta.Categorical) > 0 {
		d.logger.Info("Considering only numerical features", slog.Int("ignored", len(d.meta.Categorical)))
	}
	for _, n := range opts.Initial {
		if !contains(d.meta.Numerical, n) {
			return nil, errors.Wrapf(ErrNotNumerical, "initial feature %q", n)
		}
	}
	cols := make(map[string][]float64, len(d.meta.Numerical))
	for _, n := range d.meta.Numerical {
		s := d.features.Col(n)
		if countNA(s) > 0 {
			return nil, errors.Wrapf(ErrMissingValues, "%q", n)
		}
		cols[n] = s.Float()
	}
	y := d.target.Float()
	fit := func(names []string) (*stats.OLSResult, error) {
		x := make([][]float64, len(names))
		for i, n := range names {
			x[i] = cols[n]
		}
		return stats.OLS(y, x)
	}

	included := append([]string(nil), opts.Initial...)
	for round := 0; ; round++ {
		if round == maxStepwiseRounds {
			d.logger.Warn("Stepwise selection stopped without converging", slog.Int("rounds", round))
			break
		}
		changed := false

		best, bestP := "", math.Inf(1)
		for _, n := range d.meta.Numerical {
			if contains(included, n) {
				continue
			}
			res, err := fit(append(append([]string(nil), included...), n))
			if err != nil {
				continue
			}
			if p := res.PValues[len(res.PValues)-1]; p < bestP {
				best, bestP = n, p
			}
		}
		if bestP < opts.ThresholdIn {
			included = append(included, best)
			changed = true
			if opts.Verbose {
				d.logger.Info("Add", slog.String("feature", best), slog.Float64("p_value", bestP))
			}
		}

		if len(included) > 0 {
			res, err := fit(included)
			if err != nil {
				return nil, errors.Wrap(err, "stepwise selection")
			}
			worst, worstP := -1, math.Inf(-1)
			for i, p := range res.PValues[1:] {
				if p > worstP {
					worst, worstP = i, p
				}
			}
			if worstP > opts.ThresholdOut {
				name := included[worst]
				included = append(included[:worst], included[worst+1:]...)
				changed = true
				if opts.Verbose {
					d.logger.Info("Drop", slog.String("feature", name), slog.Float64("p_value", worstP))
				}
			}
		}
		if !changed {
			break
		}
	}
	return included, nil
}

// ImportanceOptions controls FeaturesImportance.
type ImportanceOptions struct {
	// NumFeatures limits the result. Zero returns every numerical feature.
	NumFeatures int
	// NumNeighbors defaults to DefaultNeighbors.
	NumNeighbors int
	// Abs ranks by absolute importance.
	Abs bool
	// Progress, when set, receives a progress bar.
	Progress io.Writer
}

// Importance is the ReliefF score of a feature.
type Importance struct {
	Feature string
	Score   float64
}

// FeaturesImportance scores the numerical features against the target with
// ReliefF and returns the most important ones first.
func (d *Dataset) FeaturesImportance(opts ImportanceOptions) ([]Importance, error) {
	if d.target == nil {
		return nil, ErrNoTarget
	}
	numerical := d.meta.Numerical
	if opts.NumFeatures == 0 {
		opts.NumFeatures = len(numerical)
	}
	if opts.NumNeighbors == 0 {
		opts.NumNeighbors = DefaultNeighbors
	}
	if opts.NumFeatures < 0 || opts.NumFeatures > len(numerical) {
		return nil, errors.Wrapf(ErrInvalidArgument, "%d features requested, %d available", opts.NumFeatures, len(numerical))
	}
	n := d.NumSamples()
	if opts.NumNeighbors < 0 || opts.NumNeighbors > n {
		return nil, errors.Wrapf(ErrInvalidArgument, "%d neighbors for %d samples", opts.NumNeighbors, n)
	}
	if countNA(*d.target) > 0 {
		return nil, errors.Wrapf(ErrMissingValues, "target %q", d.target.Name)
	}
	rows, err := d.numericalRows(numerical)
	if err != nil {
		return nil, err
	}

	var tick func()
	if opts.Progress != nil {
		bar := pb.New(n)
		bar.Output = opts.Progress
		bar.ShowTimeLeft = false
		bar.Start()
		defer bar.Finish()
		tick = func() { bar.Increment() }
	}
	scores := stats.ReliefF(rows, labels(*d.target), opts.NumNeighbors, tick)

	out := make([]Importance, len(numerical))
	for i, name := range numerical {
		s := scores[i]
		if opts.Abs {
			s = math.Abs(s)
		}
		out[i] = Importance{Feature: name, Score: s}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out[:opts.NumFeatures], nil
}
