package dataset

import (
	"math"
	"sort"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/vandoorenxander/dataprep/internal/stats"
)

// DefaultCorrelationThreshold is the default limit of Correlated.
const DefaultCorrelationThreshold = 0.9

// Correlation is the association between features A and B.
type Correlation struct {
	A, B  string
	Value float64
}

// CorrelationMatrix is a square matrix indexed by Names.
type CorrelationMatrix struct {
	Names  []string
	Values [][]float64
}

// Correlated returns the categorical then numerical feature pairs whose
// association exceeds threshold.
func (d *Dataset) Correlated(threshold float64) []Correlation {
	return append(d.CategoricalCorrelated(threshold), d.NumericalCorrelated(threshold)...)
}

// NumericalCorrelated returns the numerical feature pairs whose absolute
// Spearman correlation exceeds threshold, highest first.
func (d *Dataset) NumericalCorrelated(threshold float64) []Correlation {
	return topCorrelations(d.SpearmanMatrix(), threshold)
}

// CategoricalCorrelated returns the categorical feature pairs whose bias
// corrected Cramér's V exceeds threshold, highest first.
func (d *Dataset) CategoricalCorrelated(threshold float64) []Correlation {
	return topCorrelations(d.CramersVMatrix(), threshold)
}

// SpearmanMatrix is the absolute Spearman correlation between every pair
// of numerical features, over pairwise complete samples.
func (d *Dataset) SpearmanMatrix() CorrelationMatrix {
	names := d.NumericalFeatures()
	cols := make([][]float64, len(names))
	for i, n := range names {
		cols[i] = floats(d.features.Col(n))
	}
	return buildMatrix(names, func(i, j int) float64 {
		return math.Abs(stats.Spearman(cols[i], cols[j]))
	})
}

// CramersVMatrix is the Cramér's V between every pair of categorical
// features, over pairwise complete samples.
func (d *Dataset) CramersVMatrix() CorrelationMatrix {
	names := d.CategoricalFeatures()
	return buildMatrix(names, func(i, j int) float64 {
		a, b := d.features.Col(names[i]), d.features.Col(names[j])
		la, lb := labels(a), labels(b)
		var x, y []string
		for _, r := range completeRows(a, b) {
			x = append(x, la[r])
			y = append(y, lb[r])
		}
		return stats.CramersV(x, y)
	})
}

func buildMatrix(names []string, corr func(i, j int) float64) CorrelationMatrix {
	m := CorrelationMatrix{Names: names, Values: make([][]float64, len(names))}
	for i := range names {
		m.Values[i] = make([]float64, len(names))
		m.Values[i][i] = 1
	}
	for i := range names {
		for j := i + 1; j < len(names); j++ {
			v := corr(i, j)
			m.Values[i][j], m.Values[j][i] = v, v
		}
	}
	return m
}

// topCorrelations keeps the upper triangle pairs above threshold. NaN
// entries never qualify.
func topCorrelations(m CorrelationMatrix, threshold float64) []Correlation {
	out := []Correlation{}
	for i := range m.Names {
		for j := i + 1; j < len(m.Names); j++ {
			if v := m.Values[i][j]; v > threshold {
				out = append(out, Correlation{A: m.Names[i], B: m.Names[j], Value: v})
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Value > out[j].Value })
	return out
}

// CovarianceMatrix returns the covariance of the standardised numerical
// features. Features are reordered by the Ward clustering of the
// covariance rows so that related features sit next to each other.
func (d *Dataset) CovarianceMatrix() (CorrelationMatrix, error) {
	names := d.NumericalFeatures()
	rows, err := d.numericalRows(names)
	if err != nil {
		return CorrelationMatrix{}, err
	}
	n, p := len(rows), len(names)
	if n < 2 {
		return CorrelationMatrix{}, errors.Wrap(ErrInvalidArgument, "covariance needs two samples")
	}
	x := mat.NewDense(n, p, nil)
	col := make([]float64, n)
	for j := range names {
		for i := range rows {
			col[i] = rows[i][j]
		}
		x.SetCol(j, stats.Standardize(col))
	}
	var cov mat.SymDense
	stat.CovarianceMatrix(&cov, x, nil)

	full := make([][]float64, p)
	for i := range full {
		full[i] = make([]float64, p)
		for j := range full[i] {
			full[i][j] = cov.At(i, j)
		}
	}
	order := stats.WardOrder(full)
	m := CorrelationMatrix{Names: make([]string, p), Values: make([][]float64, p)}
	for i, oi := range order {
		m.Names[i] = names[oi]
		m.Values[i] = make([]float64, p)
		for j, oj := range order {
			m.Values[i][j] = full[oi][oj]
		}
	}
	return m, nil
}
