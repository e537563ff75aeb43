package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-gota/gota/dataframe"
	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"
	"gorgonia.org/tensor"

	"github.com/vandoorenxander/dataprep/internal/config"
	"github.com/vandoorenxander/dataprep/pkg/dataset"
	"github.com/vandoorenxander/dataprep/pkg/loader"
)

// env is shared by every command.
type env struct {
	cfg    *config.Config
	out    io.Writer
	errOut io.Writer
	logger *slog.Logger
}

type command struct {
	help string
	run  func(ctx context.Context, e *env, args []string) error
}

var commands = map[string]command{
	"describe":   {"describe the dataset or one column", runDescribe},
	"summary":    {"one line summary per column", runSummary},
	"table":      {"column names of a subset in a grid", runTable},
	"export":     {"per column summary as CSV", runExport},
	"correlated": {"highly correlated feature pairs", runCorrelated},
	"skewed":     {"skewness of the numerical features", runSkewed},
	"outliers":   {"rows flagged by the local outlier factor", runOutliers},
	"underrep":   {"categorical features dominated by one value", runUnderRep},
	"ig":         {"information gain of the categorical features", runIG},
	"stepwise":   {"forward/backward OLS feature selection", runStepwise},
	"importance": {"ReliefF importance of the numerical features", runImportance},
	"split":      {"train/test(/validation) split written as CSV", runSplit},
	"plot":       {"text charts: hist, density, corr, cov, importance", runPlot},
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	global := flag.NewFlagSet("dataprep", flag.ContinueOnError)
	global.SetOutput(stderr)
	configFile := global.String("config", os.Getenv("DATAPREP_CONFIG"), "YAML configuration file")
	global.Usage = func() { usage(stderr) }
	if err := global.Parse(args); err != nil {
		return err
	}
	if global.NArg() == 0 {
		usage(stderr)
		return errors.New("missing command")
	}
	name := global.Arg(0)
	cmd, ok := commands[name]
	if !ok {
		usage(stderr)
		return errors.Errorf("unknown command %q", name)
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		return err
	}
	logger := cfg.Logging.Logger(stderr)
	slog.SetDefault(logger)

	return cmd.run(ctx, &env{cfg: cfg, out: stdout, errOut: stderr, logger: logger}, global.Args()[1:])
}

// source holds the flags every command shares to load and prepare data.
type source struct {
	target      string
	format      string
	noHeader    bool
	delimiter   string
	sheet       string
	driver      string
	dsn         string
	query       string
	drop        string
	categorical string
	dropNA      bool
	onehot      bool
}

func newFlagSet(e *env, name string) (*flag.FlagSet, *source) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(e.errOut)
	s := &source{}
	fs.StringVar(&s.target, "target", "", "target variable")
	fs.StringVar(&s.format, "format", "", "csv, tsv, xlsx, json or jsonl (default from extension)")
	fs.BoolVar(&s.noHeader, "no-header", false, "first row is data; columns are named x0..xN")
	fs.StringVar(&s.delimiter, "delimiter", e.cfg.Loader.Delimiter, "CSV field separator")
	fs.StringVar(&s.sheet, "sheet", e.cfg.Loader.Sheet, "spreadsheet sheet name")
	fs.StringVar(&s.driver, "driver", e.cfg.SQL.Driver, "SQL driver: postgres or sqlite")
	fs.StringVar(&s.dsn, "dsn", e.cfg.SQL.DSN, "SQL data source name")
	fs.StringVar(&s.query, "query", "", "SQL query used instead of a file")
	fs.StringVar(&s.drop, "drop", "", "comma separated features to drop")
	fs.StringVar(&s.categorical, "categorical", "", "comma separated columns to treat as categorical")
	fs.BoolVar(&s.dropNA, "dropna", false, "drop samples with missing values")
	fs.BoolVar(&s.onehot, "onehot", false, "one-hot encode the categorical features")
	return fs, s
}

func (s *source) load(ctx context.Context, e *env, args []string) (*dataset.Dataset, error) {
	var (
		ds  *dataset.Dataset
		err error
	)
	switch {
	case s.query != "":
		if s.driver == "" || s.dsn == "" {
			return nil, errors.New("-query needs -driver and -dsn")
		}
		db, cerr := loader.Connect(ctx, s.driver, s.dsn)
		if cerr != nil {
			return nil, cerr
		}
		defer db.Close()
		ds, err = dataset.LoadQuery(ctx, db, s.query, dataset.WithLogger(e.logger))
	case len(args) == 1:
		opts := loader.Options{
			Format:     loader.Format(strings.ToLower(s.format)),
			NoHeader:   s.noHeader,
			Sheet:      s.sheet,
			NAValues:   e.cfg.Loader.NAValues,
			HTTPClient: &http.Client{Timeout: e.cfg.Loader.HTTPTimeout},
		}
		if s.delimiter != "" {
			r, _ := utf8.DecodeRuneInString(s.delimiter)
			opts.Delimiter = r
		}
		ds, err = dataset.Load(ctx, args[0], opts, dataset.WithLogger(e.logger))
	default:
		return nil, errors.New("expected exactly one source path or URL, or -query")
	}
	if err != nil {
		return nil, err
	}

	if s.drop != "" {
		if err := ds.DropColumns(splitList(s.drop)...); err != nil {
			return nil, err
		}
	}
	if s.categorical != "" {
		if err := ds.ToCategorical(splitList(s.categorical)...); err != nil {
			return nil, err
		}
	}
	if s.target != "" {
		if err := ds.SetTarget(s.target); err != nil {
			return nil, err
		}
	}
	if s.dropNA {
		if err := ds.DropNA(); err != nil {
			return nil, err
		}
	}
	if s.onehot {
		if err := ds.OnehotEncode(); err != nil {
			return nil, err
		}
	}
	return ds, nil
}

func splitList(s string) []string {
	var out []string
	for _, v := range strings.Split(s, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// parse parses args and loads the source.
func parse(ctx context.Context, e *env, fs *flag.FlagSet, s *source, args []string) (*dataset.Dataset, error) {
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return s.load(ctx, e, fs.Args())
}

func runDescribe(ctx context.Context, e *env, args []string) error {
	fs, src := newFlagSet(e, "describe")
	column := fs.String("column", "", "column to describe instead of the dataset")
	ds, err := parse(ctx, e, fs, src, args)
	if err != nil {
		return err
	}
	if *column != "" {
		return ds.Describe(e.out, *column)
	}
	return ds.DescribeDataset(e.out)
}

func selectorFlag(fs *flag.FlagSet) *string {
	return fs.String("select", string(dataset.SelectAll), "subset: all, numerical, categorical, complete, numerical_na, categorical_na, features, target")
}

func runSummary(ctx context.Context, e *env, args []string) error {
	fs, src := newFlagSet(e, "summary")
	sel := selectorFlag(fs)
	ds, err := parse(ctx, e, fs, src, args)
	if err != nil {
		return err
	}
	s, err := dataset.ParseSelector(*sel)
	if err != nil {
		return err
	}
	return ds.Summary(e.out, s)
}

func runTable(ctx context.Context, e *env, args []string) error {
	fs, src := newFlagSet(e, "table")
	sel := selectorFlag(fs)
	width := fs.Int("width", e.cfg.Output.MaxWidth, "maximum line width")
	ds, err := parse(ctx, e, fs, src, args)
	if err != nil {
		return err
	}
	s, err := dataset.ParseSelector(*sel)
	if err != nil {
		return err
	}
	return ds.Table(e.out, s, *width)
}

func runExport(ctx context.Context, e *env, args []string) error {
	fs, src := newFlagSet(e, "export")
	sel := selectorFlag(fs)
	ds, err := parse(ctx, e, fs, src, args)
	if err != nil {
		return err
	}
	s, err := dataset.ParseSelector(*sel)
	if err != nil {
		return err
	}
	return ds.ExportSummary(e.out, s)
}

func newTable(w io.Writer, header ...string) *tablewriter.Table {
	t := tablewriter.NewWriter(w)
	t.SetHeader(header)
	t.SetAutoFormatHeaders(false)
	return t
}

func formatScore(v float64) string { return strconv.FormatFloat(v, 'f', 4, 64) }

func runCorrelated(ctx context.Context, e *env, args []string) error {
	fs, src := newFlagSet(e, "correlated")
	threshold := fs.Float64("threshold", e.cfg.Analysis.CorrelationThreshold, "correlation limit")
	kind := fs.String("kind", "all", "all, numerical or categorical")
	ds, err := parse(ctx, e, fs, src, args)
	if err != nil {
		return err
	}
	var pairs []dataset.Correlation
	switch *kind {
	case "all":
		pairs = ds.Correlated(*threshold)
	case "numerical":
		pairs = ds.NumericalCorrelated(*threshold)
	case "categorical":
		pairs = ds.CategoricalCorrelated(*threshold)
	default:
		return errors.Errorf("unknown kind %q", *kind)
	}
	t := newTable(e.out, "Feature", "Feature", "Correlation")
	for _, p := range pairs {
		t.Append([]string{p.A, p.B, formatScore(p.Value)})
	}
	t.Render()
	return nil
}

func runSkewed(ctx context.Context, e *env, args []string) error {
	fs, src := newFlagSet(e, "skewed")
	threshold := fs.Float64("threshold", e.cfg.Analysis.SkewThreshold, "skewness limit")
	fix := fs.Bool("fix", false, "apply boxcox1p to the features above the limit and print the new skewness")
	ds, err := parse(ctx, e, fs, src, args)
	if err != nil {
		return err
	}
	sk, err := ds.SkewedFeatures(*threshold, *fix)
	if err != nil {
		return err
	}
	if *fix {
		if sk, err = ds.SkewedFeatures(*threshold, false); err != nil {
			return err
		}
	}
	t := newTable(e.out, "Feature", "Skewness")
	for _, s := range sk {
		t.Append([]string{s.Feature, formatScore(s.Value)})
	}
	t.Render()
	return nil
}

func runOutliers(ctx context.Context, e *env, args []string) error {
	fs, src := newFlagSet(e, "outliers")
	neighbors := fs.Int("neighbors", e.cfg.Analysis.Neighbors, "neighbourhood size")
	ds, err := parse(ctx, e, fs, src, args)
	if err != nil {
		return err
	}
	rows, err := ds.Outliers(*neighbors)
	if err != nil {
		return err
	}
	fmt.Fprintf(e.out, "%d outliers\n", len(rows))
	for _, r := range rows {
		fmt.Fprintln(e.out, r)
	}
	return nil
}

func runUnderRep(ctx context.Context, e *env, args []string) error {
	fs, src := newFlagSet(e, "underrep")
	threshold := fs.Float64("threshold", e.cfg.Analysis.UnderRepresented, "share of the most frequent value")
	ds, err := parse(ctx, e, fs, src, args)
	if err != nil {
		return err
	}
	for _, f := range ds.UnderRepresentedFeatures(*threshold) {
		fmt.Fprintln(e.out, f)
	}
	return nil
}

func runIG(ctx context.Context, e *env, args []string) error {
	fs, src := newFlagSet(e, "ig")
	ds, err := parse(ctx, e, fs, src, args)
	if err != nil {
		return err
	}
	ig, err := ds.InformationGain()
	if err != nil {
		return err
	}
	names := make([]string, 0, len(ig))
	for n := range ig {
		names = append(names, n)
	}
	sort.Strings(names)
	t := newTable(e.out, "Feature", "IG")
	for _, n := range names {
		t.Append([]string{n, formatScore(ig[n])})
	}
	t.Render()
	return nil
}

func runStepwise(ctx context.Context, e *env, args []string) error {
	fs, src := newFlagSet(e, "stepwise")
	in := fs.Float64("in", e.cfg.Analysis.ThresholdIn, "include a feature when its p-value is below")
	out := fs.Float64("out", e.cfg.Analysis.ThresholdOut, "exclude a feature when its p-value is above")
	initial := fs.String("initial", "", "comma separated features to start with")
	verbose := fs.Bool("verbose", false, "log every step")
	ds, err := parse(ctx, e, fs, src, args)
	if err != nil {
		return err
	}
	selected, err := ds.StepwiseSelection(dataset.StepwiseOptions{
		Initial:      splitList(*initial),
		ThresholdIn:  *in,
		ThresholdOut: *out,
		Verbose:      *verbose,
	})
	if err != nil {
		return err
	}
	for _, f := range selected {
		fmt.Fprintln(e.out, f)
	}
	return nil
}

func importanceFlags(fs *flag.FlagSet, e *env) *dataset.ImportanceOptions {
	opts := &dataset.ImportanceOptions{}
	fs.IntVar(&opts.NumFeatures, "n", 0, "number of features to report (default all)")
	fs.IntVar(&opts.NumNeighbors, "neighbors", e.cfg.Analysis.Neighbors, "ReliefF neighbours")
	fs.BoolVar(&opts.Abs, "abs", false, "rank by absolute importance")
	return opts
}

func runImportance(ctx context.Context, e *env, args []string) error {
	fs, src := newFlagSet(e, "importance")
	opts := importanceFlags(fs, e)
	progress := fs.Bool("progress", false, "show a progress bar")
	ds, err := parse(ctx, e, fs, src, args)
	if err != nil {
		return err
	}
	if *progress {
		opts.Progress = e.errOut
	}
	imp, err := ds.FeaturesImportance(*opts)
	if err != nil {
		return err
	}
	t := newTable(e.out, "Feature", "Importance")
	for _, i := range imp {
		t.Append([]string{i.Feature, formatScore(i.Score)})
	}
	t.Render()
	return nil
}

func runSplit(ctx context.Context, e *env, args []string) error {
	fs, src := newFlagSet(e, "split")
	testSize := fs.Float64("test-size", e.cfg.Analysis.TestSize, "fraction of samples in the test part")
	seed := fs.Int64("seed", e.cfg.Analysis.Seed, "shuffle seed")
	validation := fs.Bool("validation", false, "also split a validation part out of the training part")
	outDir := fs.String("out", ".", "directory receiving the CSV files")
	ds, err := parse(ctx, e, fs, src, args)
	if err != nil {
		return err
	}
	x, y, err := ds.Split(dataset.SplitOptions{Seed: *seed, TestSize: *testSize, Validation: *validation})
	if err != nil {
		return err
	}
	parts := map[string]dataframe.DataFrame{
		"x_train": x.Train, "x_test": x.Test,
		"y_train": y.Train, "y_test": y.Test,
	}
	if x.HasValidation {
		parts["x_val"], parts["y_val"] = x.Validation, y.Validation
	}
	names := make([]string, 0, len(parts))
	for n := range parts {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		df := parts[n]
		path := filepath.Join(*outDir, n+".csv")
		if err := writeCSV(path, df); err != nil {
			return err
		}
		shape := fmt.Sprintf("%dx%d", df.Nrow(), df.Ncol())
		if ts, err := dataset.ToTensor(df, tensor.Float64); err == nil {
			shape = fmt.Sprintf("%v", ts.Shape())
		}
		fmt.Fprintf(e.out, "%s %s\n", path, shape)
	}
	return nil
}

func writeCSV(path string, df dataframe.DataFrame) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create split file")
	}
	if err := df.WriteCSV(f); err != nil {
		f.Close()
		return errors.Wrapf(err, "write %s", path)
	}
	return f.Close()
}

func runPlot(ctx context.Context, e *env, args []string) error {
	fs, src := newFlagSet(e, "plot")
	kind := fs.String("kind", "hist", "hist, density, corr, cov or importance")
	feature := fs.String("feature", "", "numerical feature (default every numerical feature)")
	category := fs.String("category", "", "categorical feature grouping the samples (default the target)")
	popts := dataset.PlotOptions{}
	fs.IntVar(&popts.Height, "height", e.cfg.Output.PlotHeight, "chart height")
	fs.IntVar(&popts.Width, "width", e.cfg.Output.PlotWidth, "chart width")
	fs.IntVar(&popts.Bins, "bins", 20, "histogram bins")
	iopts := importanceFlags(fs, e)
	ds, err := parse(ctx, e, fs, src, args)
	if err != nil {
		return err
	}

	switch *kind {
	case "corr":
		return ds.PlotCorrelationMatrix(e.out)
	case "cov":
		return ds.PlotCovariance(e.out)
	case "importance":
		return ds.PlotImportance(e.out, *iopts)
	case "hist", "density":
	default:
		return errors.Errorf("unknown plot kind %q", *kind)
	}
	features := ds.NumericalFeatures()
	if *feature != "" {
		features = []string{*feature}
	}
	for _, f := range features {
		if *kind == "hist" {
			err = ds.PlotHistogram(e.out, f, *category, popts)
		} else {
			err = ds.PlotDensity(e.out, f, *category, popts)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
