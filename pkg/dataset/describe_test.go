package dataset

import (
	"bytes"
	"strings"
	"testing"

	"github.com/go-gota/gota/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescribeDataset(t *testing.T) {
	ds := newSample(t)
	var buf bytes.Buffer
	require.NoError(t, ds.DescribeDataset(&buf))
	out := buf.String()
	assert.Contains(t, out, "3 Features. 10 Samples")
	assert.Contains(t, out, "  · 2 categorical features")
	assert.Contains(t, out, "  · 3 Complete features")
	assert.Contains(t, out, "Target: Not set")

	require.NoError(t, ds.SetTarget("col3"))
	buf.Reset()
	require.NoError(t, ds.DescribeDataset(&buf))
	assert.Contains(t, buf.String(), "Target: col3 (string)")
	assert.Contains(t, buf.String(), "  · '1': 6 (0.6000)")
}

func TestDescribe(t *testing.T) {
	ds := newSample(t)
	var buf bytes.Buffer
	require.NoError(t, ds.Describe(&buf, "col1"))
	assert.Equal(t, strings.Join([]string{
		"'col1'",
		"  · Min.: 1.0000",
		"  · 1stQ: 1.2500",
		"  · Med.: 2.0000",
		"  · Mean: 1.9000",
		"  · 3rdQ: 2.0000",
		"  · Max.: 3.0000",
		"",
	}, "\n"), buf.String())

	assert.ErrorIs(t, ds.Describe(&buf, "nope"), ErrUnknownColumn)

	line, err := ds.DescribeInline("col1")
	require.NoError(t, err)
	assert.Equal(t, "Min.(1) 1stQ(1.25) Med.(2) Mean(1.9) 3rdQ(2) Max.(3)", line)

	line, err = ds.DescribeInline("col2")
	require.NoError(t, err)
	assert.Equal(t, "3 categs. 'a'(6, 0.6000) 'b'(3, 0.3000) 'c'(1, 0.1000)", line)

	many := mustNew(t, series.New([]string{"a", "b", "c", "d", "e", "a"}, series.String, "many"))
	line, err = many.DescribeInline("many")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(line, "5 categs. 'a'(2, 0.3333) 'b'(1, 0.1667)"))
	assert.True(t, strings.HasSuffix(line, "..."))
}

func TestSummaryAndExport(t *testing.T) {
	ds := newSample(t)
	var buf bytes.Buffer
	require.NoError(t, ds.Summary(&buf, SelectAll))
	out := buf.String()
	assert.Contains(t, out, "Features Summary (all):")
	assert.Contains(t, out, "'col1'")
	assert.Contains(t, out, "Min.(1)")

	buf.Reset()
	require.NoError(t, ds.ExportSummary(&buf, SelectCategorical))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "name,type,na,unique,description", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "col2,string,0,3,"))
}

func TestTable(t *testing.T) {
	ds := newSample(t)
	var buf bytes.Buffer
	require.NoError(t, ds.Table(&buf, SelectAll, 10))
	assert.Equal(t, "---------\ncol1 col2 \ncol3 \n---------\n", buf.String())

	buf.Reset()
	require.NoError(t, ds.Table(&buf, SelectNumericalNA, 80))
	assert.Empty(t, buf.String())
}

func TestPlots(t *testing.T) {
	ds := newSample(t)
	var buf bytes.Buffer
	assert.ErrorIs(t, ds.PlotHistogram(&buf, "col1", "", PlotOptions{}), ErrNoTarget)
	assert.ErrorIs(t, ds.PlotHistogram(&buf, "col2", "col3", PlotOptions{}), ErrNotNumerical)

	require.NoError(t, ds.PlotHistogram(&buf, "col1", "col2", PlotOptions{Height: 5, Bins: 4}))
	assert.Contains(t, buf.String(), "col1 | col2 = a (6 samples)")
	assert.Contains(t, buf.String(), "col1 | col2 = c (1 samples)")

	require.NoError(t, ds.SetTarget("col3"))
	buf.Reset()
	require.NoError(t, ds.PlotDensity(&buf, "col1", "", PlotOptions{Height: 5, Width: 30}))
	assert.Contains(t, buf.String(), "col1 | col3 = 1 (6 samples)")
	assert.Contains(t, buf.String(), "col1 | col3 = 0 (4 samples)")

	buf.Reset()
	require.NoError(t, ds.PlotCorrelationMatrix(&buf))
	assert.Contains(t, buf.String(), "col1")
}

func TestDensity(t *testing.T) {
	d := density([]float64{0, 0, 0}, -1, 1, 3)
	assert.Greater(t, d[1], d[0])
	assert.InDelta(t, d[0], d[2], 1e-12)

	assert.Len(t, density([]float64{0, 1}, 0, 1, 1), 2)
	assert.Len(t, density([]float64{0, 1}, 0, 1, 0), 2)
}

func TestHistogram(t *testing.T) {
	tests := []struct {
		name   string
		vals   []float64
		lo, hi float64
		bins   int
		want   []float64
	}{
		{"maximum in last bin", []float64{0, 1, 2, 3, 4}, 0, 4, 2, []float64{2, 3}},
		{"unsorted", []float64{4, 0, 3, 1, 2}, 0, 4, 4, []float64{1, 1, 1, 2}},
		{"constant", []float64{7, 7, 7}, 7, 7, 3, []float64{0, 0, 3}},
		{"empty", nil, 0, 1, 2, []float64{0, 0}},
		{"single bin", []float64{0.5, 1, 3}, 0.5, 3, 1, []float64{3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, histogram(tt.vals, tt.lo, tt.hi, tt.bins))
		})
	}
}

func TestPlotNarrowDensity(t *testing.T) {
	ds := newSample(t)
	var buf bytes.Buffer
	require.NoError(t, ds.PlotDensity(&buf, "col1", "col2", PlotOptions{Height: 3, Width: 1}))
	assert.Contains(t, buf.String(), "col1 | col2 = a (6 samples)")
}

func TestPlotCovariance(t *testing.T) {
	ds := mustNew(t,
		series.New([]float64{1, 2, 3, 4, 5, 6}, series.Float, "a"),
		series.New([]float64{6, 1, 5, 2, 4, 3}, series.Float, "noise"),
		series.New([]float64{2, 4, 6, 8, 10, 12.5}, series.Float, "b"),
		series.New([]string{"x", "y", "x", "y", "x", "y"}, series.String, "c"))

	m, err := ds.CovarianceMatrix()
	require.NoError(t, err)
	require.Len(t, m.Names, 3)
	pos := make(map[string]int)
	for i, n := range m.Names {
		pos[n] = i
	}
	diff := pos["a"] - pos["b"]
	assert.True(t, diff == 1 || diff == -1, "related features sit together: %v", m.Names)
	for i := range m.Names {
		// standardised columns, sample covariance: n/(n-1) on the diagonal
		assert.InDelta(t, 6.0/5, m.Values[i][i], 1e-9)
		for j := range m.Names {
			assert.InDelta(t, m.Values[i][j], m.Values[j][i], 1e-12)
		}
	}

	var buf bytes.Buffer
	require.NoError(t, ds.PlotCovariance(&buf))
	assert.Contains(t, buf.String(), "Covariance Matrix for numerical features")
	assert.Contains(t, buf.String(), "1.20")

	cat := mustNew(t, series.New([]string{"p", "q"}, series.String, "c"))
	assert.ErrorIs(t, cat.PlotCovariance(&buf), ErrNoNumerical)
	na, err := New(incompleteFrame())
	require.NoError(t, err)
	assert.ErrorIs(t, na.PlotCovariance(&buf), ErrMissingValues)
}

func TestPlotImportance(t *testing.T) {
	ds := mustNew(t,
		series.New([]float64{0.0, 0.1, 0.2, 0.1, 1.0, 0.9, 0.8, 0.95}, series.Float, "signal"),
		series.New([]float64{0.3, 0.9, 0.1, 0.5, 0.4, 0.8, 0.2, 0.6}, series.Float, "noise"),
		series.New([]string{"a", "a", "a", "a", "b", "b", "b", "b"}, series.String, "class"))
	require.NoError(t, ds.SetTarget("class"))
	var buf bytes.Buffer
	require.NoError(t, ds.PlotImportance(&buf, ImportanceOptions{NumNeighbors: 2}))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[1], "signal "))
	assert.Contains(t, lines[1], strings.Repeat("█", 40))
}
