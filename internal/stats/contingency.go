package stats

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Crosstab is a contingency table between two categorical variables.
type Crosstab struct {
	Rows   []string
	Cols   []string
	Counts [][]float64
}

// NewCrosstab counts the co-occurrences of x and y. Row and column labels
// are sorted.
func NewCrosstab(x, y []string) Crosstab {
	rows, cols := uniqueSorted(x), uniqueSorted(y)
	ri, ci := indexOf(rows), indexOf(cols)
	counts := make([][]float64, len(rows))
	for i := range counts {
		counts[i] = make([]float64, len(cols))
	}
	for i := range x {
		counts[ri[x[i]]][ci[y[i]]]++
	}
	return Crosstab{Rows: rows, Cols: cols, Counts: counts}
}

// ChiSquare returns Pearson's chi-square statistic of the table. As in
// scipy's chi2_contingency, Yates' continuity correction is applied when
// the table has a single degree of freedom.
func (c Crosstab) ChiSquare() float64 {
	r, k := len(c.Rows), len(c.Cols)
	if r == 0 || k == 0 {
		return 0
	}
	rowSum := make([]float64, r)
	colSum := make([]float64, k)
	var n float64
	for i := 0; i < r; i++ {
		for j := 0; j < k; j++ {
			rowSum[i] += c.Counts[i][j]
			colSum[j] += c.Counts[i][j]
			n += c.Counts[i][j]
		}
	}
	yates := (r-1)*(k-1) == 1
	var chi2 float64
	for i := 0; i < r; i++ {
		for j := 0; j < k; j++ {
			expected := rowSum[i] * colSum[j] / n
			if expected == 0 {
				continue
			}
			diff := c.Counts[i][j] - expected
			if yates {
				diff = math.Max(math.Abs(diff)-0.5, 0)
			}
			chi2 += diff * diff / expected
		}
	}
	return chi2
}

// CramersV is the bias corrected Cramér's V of Bergsma and Wicher
// (Journal of the Korean Statistical Society 42, 2013). It is symmetric and
// 0 when the correction leaves no association or the table is degenerate.
func CramersV(x, y []string) float64 {
	n := float64(len(x))
	if n < 2 {
		return 0
	}
	xt := NewCrosstab(x, y)
	r, k := float64(len(xt.Rows)), float64(len(xt.Cols))
	phi2 := xt.ChiSquare() / n
	phi2corr := math.Max(0, phi2-((k-1)*(r-1))/(n-1))
	rcorr := r - ((r-1)*(r-1))/(n-1)
	kcorr := k - ((k-1)*(k-1))/(n-1)
	denom := math.Min(kcorr-1, rcorr-1)
	if denom <= 0 {
		return 0
	}
	return math.Sqrt(phi2corr / denom)
}

// Entropy is the Shannon entropy, in bits, of a distribution given as
// counts or probabilities.
func Entropy(dist []float64) float64 {
	total := floats.Sum(dist)
	if total == 0 {
		return 0
	}
	p := make([]float64, len(dist))
	floats.ScaleTo(p, 1/total, dist)
	return stat.Entropy(p) / math.Ln2
}

// InformationGain returns H(target) - H(target | x).
func InformationGain(x, target []string) float64 {
	n := float64(len(target))
	if n == 0 {
		return 0
	}
	xt := NewCrosstab(x, target)
	dist := make([]float64, len(xt.Cols))
	var cond float64
	for i := range xt.Rows {
		floats.Add(dist, xt.Counts[i])
		cond += floats.Sum(xt.Counts[i]) / n * Entropy(xt.Counts[i])
	}
	return Entropy(dist) - cond
}

// ValueCount is the frequency of a single category.
type ValueCount struct {
	Value string
	Count int
}

// ValueCounts counts categories, most frequent first. Ties keep the order
// of first appearance.
func ValueCounts(x []string) []ValueCount {
	pos := make(map[string]int)
	var out []ValueCount
	for _, v := range x {
		if i, ok := pos[v]; ok {
			out[i].Count++
			continue
		}
		pos[v] = len(out)
		out = append(out, ValueCount{Value: v, Count: 1})
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].Count > out[b].Count })
	return out
}

func uniqueSorted(x []string) []string {
	seen := make(map[string]struct{}, len(x))
	var out []string
	for _, v := range x {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

func indexOf(labels []string) map[string]int {
	m := make(map[string]int, len(labels))
	for i, l := range labels {
		m[l] = i
	}
	return m
}
