package stats

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRanks(t *testing.T) {
	tests := []struct {
		name string
		in   []float64
		want []float64
	}{
		{"distinct", []float64{3, 1, 2}, []float64{3, 1, 2}},
		{"ties averaged", []float64{10, 20, 20, 5}, []float64{2, 3.5, 3.5, 1}},
		{"all equal", []float64{7, 7, 7}, []float64{2, 2, 2}},
		{"empty", nil, []float64{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, Ranks(tt.in)); diff != "" {
				t.Errorf("Ranks() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSpearman(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5}
	assert.InDelta(t, 1.0, Spearman(x, []float64{2, 4, 8, 16, 32}), 1e-12)
	assert.InDelta(t, -1.0, Spearman(x, []float64{5, 4, 3, 2, 1}), 1e-12)

	withNaN := []float64{1, math.NaN(), 3, 4, 5}
	assert.InDelta(t, 1.0, Spearman(withNaN, []float64{1, 100, 3, 4, 5}), 1e-12)
	assert.True(t, math.IsNaN(Spearman([]float64{1}, []float64{1})))
}

func TestEntropy(t *testing.T) {
	assert.InDelta(t, 1.0, Entropy([]float64{5, 5}), 1e-12)
	assert.InDelta(t, 0.0, Entropy([]float64{10, 0}), 1e-12)
	assert.InDelta(t, 2.0, Entropy([]float64{0.25, 0.25, 0.25, 0.25}), 1e-12)
	assert.Equal(t, 0.0, Entropy(nil))
}

func TestInformationGain(t *testing.T) {
	sex := []string{"f", "m", "m", "m", "m", "f", "m", "f", "m", "m"}
	pulse := []string{"100", "25", "100", "25", "50", "75", "100", "75", "75", "100"}
	assert.InDelta(t, 0.2812908992306927, InformationGain(pulse, sex), 1e-12)

	// A feature identical to the target carries all of its entropy.
	assert.InDelta(t, Entropy([]float64{3, 7}), InformationGain(sex, sex), 1e-12)
}

func TestCramersV(t *testing.T) {
	a := []string{"x", "y", "z", "x", "y", "z", "x", "y", "z", "x", "y", "z"}
	assert.InDelta(t, 1.0, CramersV(a, a), 1e-9)

	b := []string{"p", "p", "p", "q", "q", "q", "p", "p", "p", "q", "q", "q"}
	v := CramersV(a, b)
	assert.GreaterOrEqual(t, v, 0.0)
	assert.Less(t, v, 0.5)
	assert.InDelta(t, v, CramersV(b, a), 1e-12)
	assert.Equal(t, 0.0, CramersV([]string{"a"}, []string{"b"}))
}

func TestChiSquareYates(t *testing.T) {
	xt := NewCrosstab(
		[]string{"a", "a", "b", "b"},
		[]string{"u", "v", "u", "v"},
	)
	// Perfectly balanced 2x2: corrected statistic clamps to zero.
	assert.Equal(t, 0.0, xt.ChiSquare())
	assert.Equal(t, []string{"a", "b"}, xt.Rows)
	assert.Equal(t, []string{"u", "v"}, xt.Cols)
}

func TestValueCounts(t *testing.T) {
	got := ValueCounts([]string{"b", "a", "a", "c", "b", "a"})
	want := []ValueCount{{"a", 3}, {"b", 2}, {"c", 1}}
	assert.Equal(t, want, got)
}

func TestOLS(t *testing.T) {
	x1 := []float64{1, 2, 3, 4, 5, 6, 7, 8}
	noise := []float64{0.1, -0.2, 0.15, -0.05, 0.0, 0.2, -0.1, -0.1}
	y := make([]float64, len(x1))
	for i := range x1 {
		y[i] = 3 + 2*x1[i] + noise[i]
	}
	res, err := OLS(y, [][]float64{x1})
	require.NoError(t, err)
	assert.InDelta(t, 3.0, res.Coef[0], 0.3)
	assert.InDelta(t, 2.0, res.Coef[1], 0.1)
	assert.Less(t, res.PValues[1], 1e-6)
	assert.Equal(t, 6, res.DF)

	_, err = OLS([]float64{1, 2}, [][]float64{{1, 2}})
	assert.Error(t, err)

	_, err = OLS(y, [][]float64{x1, x1})
	assert.Error(t, err, "collinear regressors must be rejected")
}

func TestLOF(t *testing.T) {
	rows := [][]float64{
		{0, 0}, {0, 1}, {1, 0}, {1, 1}, {0.5, 0.5},
		{0.2, 0.8}, {0.8, 0.2}, {10, 10},
	}
	scores := LOF(rows, 3)
	require.Len(t, scores, len(rows))
	for i, s := range scores[:len(rows)-1] {
		assert.Less(t, s, LOFThreshold, "row %d", i)
	}
	assert.Greater(t, scores[len(rows)-1], LOFThreshold)
}

func TestReliefF(t *testing.T) {
	// Column 0 separates the classes, column 1 is noise.
	rows := [][]float64{
		{0.0, 0.3}, {0.1, 0.9}, {0.2, 0.1}, {0.1, 0.5},
		{1.0, 0.4}, {0.9, 0.8}, {0.8, 0.2}, {0.95, 0.6},
	}
	labels := []string{"a", "a", "a", "a", "b", "b", "b", "b"}
	ticks := 0
	w := ReliefF(rows, labels, 2, func() { ticks++ })
	require.Len(t, w, 2)
	assert.Greater(t, w[0], w[1])
	assert.Greater(t, w[0], 0.0)
	assert.Equal(t, len(rows), ticks)
}

func TestReliefFStable(t *testing.T) {
	rows := [][]float64{
		{0.0, 0.3}, {0.1, 0.9}, {0.2, 0.1},
		{1.0, 0.4}, {0.9, 0.8}, {0.8, 0.2},
		{2.0, 0.7}, {2.1, 0.5}, {1.9, 0.6},
	}
	labels := []string{"a", "a", "a", "b", "b", "b", "c", "c", "c"}
	want := ReliefF(rows, labels, 2, nil)
	for i := 0; i < 100; i++ {
		require.Equal(t, want, ReliefF(rows, labels, 2, nil))
	}

	x := []string{"u", "v", "w", "u", "v", "w", "u", "u", "v"}
	ig := InformationGain(x, labels)
	for i := 0; i < 100; i++ {
		require.Equal(t, ig, InformationGain(x, labels))
	}
}

func TestSkew(t *testing.T) {
	// scipy.stats.skew([1, 2, 3, 4, 10])
	assert.InDelta(t, 1.1384199576606167, Skew([]float64{1, 2, 3, 4, 10}), 1e-12)
	assert.InDelta(t, 1.1384199576606167, Skew([]float64{1, math.NaN(), 2, 3, 4, 10}), 1e-12)
	assert.InDelta(t, 0.0, Skew([]float64{1, 2, 3}), 1e-12)
	assert.True(t, math.IsNaN(Skew([]float64{1, 2})))
}

func TestYeoJohnson(t *testing.T) {
	assert.InDelta(t, 3.0, YeoJohnsonValue(3, 1), 1e-12)
	assert.InDelta(t, -3.0, YeoJohnsonValue(-3, 1), 1e-12)
	assert.InDelta(t, math.Log1p(3), YeoJohnsonValue(3, 0), 1e-12)
	assert.InDelta(t, -math.Log1p(3), YeoJohnsonValue(-3, 2), 1e-12)

	skewed := []float64{1, 1, 2, 2, 2, 3, 3, 4, 6, 9, 15, 30, 60}
	out, lambda, err := YeoJohnson(skewed)
	require.NoError(t, err)
	assert.Less(t, lambda, 1.0)
	assert.Less(t, math.Abs(Skew(out)), math.Abs(Skew(skewed)))
}

func TestLambdaSearchUnbounded(t *testing.T) {
	lambda, err := maximize(func(l float64) float64 { return -(l - 5) * (l - 5) })
	require.NoError(t, err)
	assert.InDelta(t, 5.0, lambda, 1e-3)

	lambda, err = maximize(func(l float64) float64 { return -(l + 3.5) * (l + 3.5) })
	require.NoError(t, err)
	assert.InDelta(t, -3.5, lambda, 1e-3)
}

func TestBoxCox(t *testing.T) {
	assert.InDelta(t, math.Log1p(2), BoxCox1p(2, 0), 1e-12)
	assert.InDelta(t, 2.0, BoxCox1p(2, 1), 1e-12)

	_, err := BoxCoxLambda([]float64{1, 0, 2})
	assert.Error(t, err)

	lambda, err := BoxCoxLambda([]float64{1, 2, 3, 5, 8, 13, 21, 34, 55, 89})
	require.NoError(t, err)
	assert.Less(t, lambda, 1.0)
}

func TestStandardizeAndMinMax(t *testing.T) {
	z := Standardize([]float64{1, 2, 3, math.NaN()})
	assert.InDelta(t, -1.224744871, z[0], 1e-9)
	assert.InDelta(t, 0.0, z[1], 1e-12)
	assert.True(t, math.IsNaN(z[3]))
	assert.Equal(t, []float64{0, 0}, Standardize([]float64{4, 4}))

	mm := MinMax([]float64{2, 4, 6})
	assert.Equal(t, []float64{0, 0.5, 1}, mm)
	assert.Equal(t, []float64{0, 0}, MinMax([]float64{5, 5}))
}

func TestSummarize(t *testing.T) {
	s := Summarize([]float64{4, 1, 3, 2, math.NaN()})
	assert.Equal(t, 1.0, s.Min)
	assert.Equal(t, 4.0, s.Max)
	assert.Equal(t, 2.5, s.Mean)
	assert.Equal(t, 2.5, s.Median)
	assert.Equal(t, 1.75, s.Q1)
	assert.Equal(t, 3.25, s.Q3)

	empty := Summarize(nil)
	assert.True(t, math.IsNaN(empty.Mean))
}
