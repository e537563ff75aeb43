package dataset

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/go-gota/gota/series"
	"github.com/guptarohit/asciigraph"
	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"
	gfloats "gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/vandoorenxander/dataprep/internal/stats"
)

// PlotOptions sizes the text charts.
type PlotOptions struct {
	Height int
	Width  int
	Bins   int
}

func (o PlotOptions) withDefaults() PlotOptions {
	if o.Height <= 0 {
		o.Height = 10
	}
	switch {
	case o.Width <= 0:
		o.Width = 60
	case o.Width == 1:
		o.Width = 2
	}
	if o.Bins <= 0 {
		o.Bins = 20
	}
	return o
}

// PlotHistogram draws, for every value of category (the target when
// empty), the histogram of a numerical feature over that value's samples.
func (d *Dataset) PlotHistogram(w io.Writer, feature, category string, opts PlotOptions) error {
	opts = opts.withDefaults()
	return d.plotByCategory(w, feature, category, opts, func(vals []float64, lo, hi float64) []float64 {
		return histogram(vals, lo, hi, opts.Bins)
	})
}

// PlotDensity is PlotHistogram with a Gaussian kernel density estimate.
func (d *Dataset) PlotDensity(w io.Writer, feature, category string, opts PlotOptions) error {
	opts = opts.withDefaults()
	return d.plotByCategory(w, feature, category, opts, func(vals []float64, lo, hi float64) []float64 {
		return density(vals, lo, hi, opts.Width)
	})
}

func (d *Dataset) plotByCategory(w io.Writer, feature, category string, opts PlotOptions, curve func(vals []float64, lo, hi float64) []float64) error {
	if !contains(d.meta.Numerical, feature) {
		return errors.Wrapf(ErrNotNumerical, "%q cannot be plotted", feature)
	}
	cats, err := d.categorySeries(category)
	if err != nil {
		return err
	}
	vals := floats(d.features.Col(feature))
	present := make([]float64, 0, len(vals))
	for _, v := range vals {
		if !math.IsNaN(v) {
			present = append(present, v)
		}
	}
	if len(present) == 0 {
		return errors.Wrapf(ErrMissingValues, "%q has no values", feature)
	}
	sum := stats.Summarize(present)

	groups := make(map[string][]float64)
	var order []string
	for i, c := range labels(cats) {
		if isNA(cats, i) || math.IsNaN(vals[i]) {
			continue
		}
		if _, ok := groups[c]; !ok {
			order = append(order, c)
		}
		groups[c] = append(groups[c], vals[i])
	}
	for _, c := range order {
		data := curve(groups[c], sum.Min, sum.Max)
		chart := asciigraph.Plot(data,
			asciigraph.Height(opts.Height),
			asciigraph.Width(opts.Width),
			asciigraph.Caption(fmt.Sprintf("%s | %s = %s (%d samples)", feature, cats.Name, c, len(groups[c]))))
		if _, err := fmt.Fprintf(w, "%s\n\n", chart); err != nil {
			return err
		}
	}
	return nil
}

// categorySeries resolves the grouping column: the target when name is
// empty, a categorical feature or the target otherwise.
func (d *Dataset) categorySeries(name string) (series.Series, error) {
	if name == "" {
		if d.target == nil {
			return series.Series{}, errors.Wrap(ErrNoTarget, "set the target or name a categorical feature")
		}
		return *d.target, nil
	}
	if d.isTarget(name) {
		return *d.target, nil
	}
	if !contains(d.meta.Categorical, name) {
		return series.Series{}, errors.Wrapf(ErrNotCategorical, "%q", name)
	}
	return d.features.Col(name), nil
}

func histogram(vals []float64, lo, hi float64, bins int) []float64 {
	counts := make([]float64, bins)
	if len(vals) == 0 {
		return counts
	}
	if hi <= lo {
		counts[bins-1] = float64(len(vals))
		return counts
	}
	dividers := gfloats.Span(make([]float64, bins+1), lo, hi)
	// The maximum belongs to the last bin.
	dividers[bins] = math.Nextafter(hi, math.Inf(1))
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	return stat.Histogram(counts, dividers, sorted, nil)
}

// density evaluates a Gaussian KDE with Silverman's bandwidth on points
// evenly spread over [lo, hi].
func density(vals []float64, lo, hi float64, points int) []float64 {
	if points < 2 {
		points = 2
	}
	out := make([]float64, points)
	n := float64(len(vals))
	if n == 0 {
		return out
	}
	_, std := stat.PopMeanStdDev(vals, nil)
	bw := 1.06 * std * math.Pow(n, -0.2)
	if bw == 0 {
		bw = 1
	}
	step := (hi - lo) / float64(points-1)
	for i := range out {
		x := lo + float64(i)*step
		var s float64
		for _, v := range vals {
			s += distuv.UnitNormal.Prob((x - v) / bw)
		}
		out[i] = s / (n * bw)
	}
	return out
}

// PlotImportance draws the ReliefF importances as horizontal bars.
func (d *Dataset) PlotImportance(w io.Writer, opts ImportanceOptions) error {
	imp, err := d.FeaturesImportance(opts)
	if err != nil {
		return err
	}
	const barWidth = 40
	longest, top := 0, 0.0
	for _, i := range imp {
		if len(i.Feature) > longest {
			longest = len(i.Feature)
		}
		top = math.Max(top, math.Abs(i.Score))
	}
	fmt.Fprintln(w, "Numerical Features importance (ReliefF)")
	for _, i := range imp {
		n := 0
		if top > 0 {
			n = int(math.Round(math.Abs(i.Score) / top * barWidth))
		}
		bar := strings.Repeat("█", n)
		if i.Score < 0 {
			bar = strings.Repeat("░", n)
		}
		bar += strings.Repeat(" ", barWidth-n)
		if _, err := fmt.Fprintf(w, "%-*s %s %.4f\n", longest, i.Feature, bar, i.Score); err != nil {
			return err
		}
	}
	return nil
}

// PlotCorrelationMatrix prints the lower triangle of the Spearman matrix of
// the numerical features.
func (d *Dataset) PlotCorrelationMatrix(w io.Writer) error {
	m := d.SpearmanMatrix()
	if len(m.Names) == 0 {
		return ErrNoNumerical
	}
	renderMatrix(w, m, true)
	return nil
}

// PlotCovariance prints the clustered covariance matrix of the
// standardised numerical features.
func (d *Dataset) PlotCovariance(w io.Writer) error {
	m, err := d.CovarianceMatrix()
	if err != nil {
		return err
	}
	fmt.Fprintln(w, "Covariance Matrix for numerical features")
	renderMatrix(w, m, false)
	return nil
}

func renderMatrix(w io.Writer, m CorrelationMatrix, lower bool) {
	table := tablewriter.NewWriter(w)
	table.SetHeader(append([]string{""}, m.Names...))
	table.SetAutoFormatHeaders(false)
	for i, n := range m.Names {
		row := make([]string, len(m.Names)+1)
		row[0] = n
		for j := range m.Names {
			if lower && j >= i {
				break
			}
			row[j+1] = fmt.Sprintf("%.2f", m.Values[i][j])
		}
		table.Append(row)
	}
	table.Render()
}
