package dataset

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/go-gota/gota/series"
	"github.com/gocarina/gocsv"
	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"

	"github.com/vandoorenxander/dataprep/internal/stats"
)

// DescribeDataset prints the counts kept in the meta information and a
// description of the target.
func (d *Dataset) DescribeDataset(w io.Writer) error {
	m := d.meta
	var types []string
	for _, info := range m.Description {
		if t := typeName(info.Type); !contains(types, t) {
			types = append(types, t)
		}
	}
	fmt.Fprintf(w, "%d Features. %d Samples\n", len(m.Features), d.NumSamples())
	fmt.Fprintf(w, "Available types: %s\n", strings.Join(types, ", "))
	fmt.Fprintf(w, "  · %d categorical features\n", len(m.Categorical))
	fmt.Fprintf(w, "  · %d numerical features\n", len(m.Numerical))
	fmt.Fprintf(w, "  · %d categorical features with NAs\n", len(m.CategoricalNA))
	fmt.Fprintf(w, "  · %d numerical features with NAs\n", len(m.NumericalNA))
	fmt.Fprintf(w, "  · %d Complete features\n", len(m.Complete))
	fmt.Fprintln(w, "--")
	if d.target == nil {
		_, err := fmt.Fprintln(w, "Target: Not set")
		return err
	}
	fmt.Fprintf(w, "Target: %s (%s)\n", d.target.Name, typeName(d.target.Type()))
	return describe(w, *d.target)
}

// Describe prints the categories of a categorical column with their counts
// and proportions, or the quartiles of a numerical one.
func (d *Dataset) Describe(w io.Writer, name string) error {
	s, err := d.column(name)
	if err != nil {
		return err
	}
	return describe(w, s)
}

func describe(w io.Writer, s series.Series) error {
	if isNumerical(s.Type()) {
		sum := stats.Summarize(floats(s))
		fmt.Fprintf(w, "'%s'\n", s.Name)
		for _, kv := range summaryFields(sum) {
			fmt.Fprintf(w, "  · %-4s: %.4f\n", kv.key, kv.value)
		}
		return nil
	}
	counts, total := categoryCounts(s)
	fmt.Fprintf(w, "'%s' (%s)\n", s.Name, typeName(s.Type()))
	fmt.Fprintf(w, "  %d categories\n", len(counts))
	for _, c := range counts {
		fmt.Fprintf(w, "  · '%s': %d (%.4f)\n", c.Value, c.Count, float64(c.Count)/total)
	}
	return nil
}

// DescribeInline is the one line description used by Summary.
//
//	Min.(1) 1stQ(1.75) Med.(2.5) Mean(2.5) 3rdQ(3.25) Max.(4)
//	2 categs. 'a'(3, 0.7500) 'b'(1, 0.2500)
func (d *Dataset) DescribeInline(name string) (string, error) {
	s, err := d.column(name)
	if err != nil {
		return "", err
	}
	return describeInline(s), nil
}

func describeInline(s series.Series) string {
	var b strings.Builder
	if isNumerical(s.Type()) {
		for i, kv := range summaryFields(stats.Summarize(floats(s))) {
			if i > 0 {
				b.WriteByte(' ')
			}
			fmt.Fprintf(&b, "%s(%.4g)", kv.key, kv.value)
		}
		return b.String()
	}
	counts, total := categoryCounts(s)
	fmt.Fprintf(&b, "%d categs. ", len(counts))
	shown := counts
	if len(shown) > 4 {
		shown = shown[:4]
	}
	for _, c := range shown {
		fmt.Fprintf(&b, "'%s'(%d, %.4f) ", c.Value, c.Count, float64(c.Count)/total)
	}
	if len(counts) > 4 {
		b.WriteString("...")
	}
	return strings.TrimRight(b.String(), " ")
}

type field struct {
	key   string
	value float64
}

func summaryFields(s stats.NumericSummary) []field {
	return []field{
		{"Min.", s.Min}, {"1stQ", s.Q1}, {"Med.", s.Median},
		{"Mean", s.Mean}, {"3rdQ", s.Q3}, {"Max.", s.Max},
	}
}

// categoryCounts counts the present values of s, most frequent first.
func categoryCounts(s series.Series) ([]stats.ValueCount, float64) {
	var present []string
	for i, l := range labels(s) {
		if !isNA(s, i) {
			present = append(present, l)
		}
	}
	return stats.ValueCounts(present), float64(len(present))
}

// Summary prints one row per column of the subset: name, type and inline
// description.
func (d *Dataset) Summary(w io.Writer, sel Selector) error {
	names, err := d.Names(sel)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Features Summary (%s):\n", sel)
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Feature", "Type", "Description"})
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	for _, n := range names {
		s, _ := d.column(n)
		table.Append([]string{"'" + n + "'", typeName(s.Type()), describeInline(s)})
	}
	table.Render()
	return nil
}

// Table prints the names of a subset in a grid no wider than maxWidth.
func (d *Dataset) Table(w io.Writer, sel Selector, maxWidth int) error {
	names, err := d.Names(sel)
	if err != nil {
		return err
	}
	if len(names) == 0 {
		return nil
	}
	if maxWidth <= 0 {
		maxWidth = 80
	}
	longest := 0
	for _, n := range names {
		if len(n) > longest {
			longest = len(n)
		}
	}
	perRow := maxWidth / (longest + 1)
	if perRow < 1 {
		perRow = 1
	}
	rule := strings.Repeat("-", perRow*longest+perRow-1)
	fmt.Fprintln(w, rule)
	for start := 0; start < len(names); start += perRow {
		end := int(math.Min(float64(start+perRow), float64(len(names))))
		var line strings.Builder
		for _, n := range names[start:end] {
			fmt.Fprintf(&line, "%-*s", longest+1, n)
		}
		fmt.Fprintln(w, line.String())
	}
	_, err = fmt.Fprintln(w, rule)
	return err
}

// ColumnSummary is a CSV row written by ExportSummary.
type ColumnSummary struct {
	Name        string `csv:"name"`
	Type        string `csv:"type"`
	NAs         int    `csv:"na"`
	Unique      int    `csv:"unique"`
	Description string `csv:"description"`
}

// ColumnSummaries describes every column of a subset.
func (d *Dataset) ColumnSummaries(sel Selector) ([]ColumnSummary, error) {
	names, err := d.Names(sel)
	if err != nil {
		return nil, err
	}
	out := make([]ColumnSummary, 0, len(names))
	for _, n := range names {
		s, _ := d.column(n)
		counts, _ := categoryCounts(s)
		out = append(out, ColumnSummary{
			Name:        n,
			Type:        typeName(s.Type()),
			NAs:         countNA(s),
			Unique:      len(counts),
			Description: describeInline(s),
		})
	}
	return out, nil
}

// ExportSummary writes ColumnSummaries as CSV.
func (d *Dataset) ExportSummary(w io.Writer, sel Selector) error {
	rows, err := d.ColumnSummaries(sel)
	if err != nil {
		return err
	}
	return errors.Wrap(gocsv.Marshal(&rows, w), "export summary")
}
