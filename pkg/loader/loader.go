// Package loader reads tabular sources into gota DataFrames.
//
// Local paths and HTTP(S) URLs are supported. The format is taken from
// Options.Format or, when empty, from the file extension:
//
//	.csv            comma separated values (default)
//	.tsv, .tab      tab separated values
//	.xlsx, .xlsm    spreadsheet, first sheet unless Options.Sheet is set
//	.json           array of records
//	.jsonl, .ndjson one record per line
//
// SQL sources go through Query.
package loader

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/pkg/errors"
)

// Format names a supported source format.
type Format string

const (
	FormatAuto  Format = ""
	FormatCSV   Format = "csv"
	FormatTSV   Format = "tsv"
	FormatXLSX  Format = "xlsx"
	FormatJSON  Format = "json"
	FormatJSONL Format = "jsonl"
)

// DefaultNAValues are the tokens read as missing values.
var DefaultNAValues = []string{"", "NA", "NaN", "<nil>", "null", "NULL"}

// ErrEmpty is returned when a source yields no rows.
var ErrEmpty = errors.New("source has no rows")

// Options controls how a source is read.
type Options struct {
	Format Format
	// NoHeader treats the first row as data. Columns are then named x0..xN.
	NoHeader bool
	// Delimiter overrides the CSV separator.
	Delimiter rune
	// Sheet selects a spreadsheet sheet by name.
	Sheet string
	// NAValues replaces DefaultNAValues when non-empty.
	NAValues []string
	// HTTPClient is used for URLs; http.DefaultClient when nil.
	HTTPClient *http.Client
}

func (o Options) naValues() []string {
	if len(o.NAValues) > 0 {
		return o.NAValues
	}
	return DefaultNAValues
}

func (o Options) loadOptions() []dataframe.LoadOption {
	return []dataframe.LoadOption{
		dataframe.HasHeader(!o.NoHeader),
		dataframe.DetectTypes(true),
		dataframe.NaNValues(o.naValues()),
	}
}

// Read loads the source at location, a file path or an HTTP(S) URL.
func Read(ctx context.Context, location string, opts Options) (dataframe.DataFrame, error) {
	if opts.Format == FormatAuto {
		opts.Format = DetectFormat(location)
	}
	data, err := fetch(ctx, location, opts.HTTPClient)
	if err != nil {
		return dataframe.DataFrame{}, err
	}
	slog.Debug("Read source",
		slog.String("location", location),
		slog.String("format", string(opts.Format)),
		slog.Int("bytes", len(data)))
	return decode(ctx, data, opts)
}

// ReadFrom loads an already opened source. opts.Format must be set;
// FormatAuto is read as CSV.
func ReadFrom(ctx context.Context, r io.Reader, opts Options) (dataframe.DataFrame, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return dataframe.DataFrame{}, errors.Wrap(err, "read source")
	}
	return decode(ctx, data, opts)
}

func decode(ctx context.Context, data []byte, opts Options) (dataframe.DataFrame, error) {
	var (
		df  dataframe.DataFrame
		err error
	)
	if opts.Format == FormatJSON || opts.Format == FormatJSONL {
		// Records carry their own keys.
		opts.NoHeader = false
	}
	switch opts.Format {
	case FormatAuto, FormatCSV:
		df, err = readCSV(data, opts)
	case FormatTSV:
		if opts.Delimiter == 0 {
			opts.Delimiter = '\t'
		}
		df, err = readCSV(data, opts)
	case FormatXLSX:
		df, err = readXLSX(data, opts)
	case FormatJSON:
		df, err = readJSON(data, opts)
	case FormatJSONL:
		df, err = readJSONL(ctx, data, opts)
	default:
		return dataframe.DataFrame{}, errors.Errorf("unsupported format %q", opts.Format)
	}
	if err != nil {
		return dataframe.DataFrame{}, err
	}
	if df.Err != nil {
		return dataframe.DataFrame{}, errors.Wrap(df.Err, "build frame")
	}
	if df.Nrow() == 0 {
		return dataframe.DataFrame{}, ErrEmpty
	}
	if opts.NoHeader {
		df = positionalNames(df)
	}
	return df, nil
}

// DetectFormat guesses the format from the extension of a path or URL.
func DetectFormat(location string) Format {
	p := location
	if u, err := url.Parse(location); err == nil && u.Scheme != "" && u.Host != "" {
		p = u.Path
	}
	switch strings.ToLower(path.Ext(p)) {
	case ".tsv", ".tab":
		return FormatTSV
	case ".xlsx", ".xlsm":
		return FormatXLSX
	case ".json":
		return FormatJSON
	case ".jsonl", ".ndjson":
		return FormatJSONL
	default:
		return FormatCSV
	}
}

func fetch(ctx context.Context, location string, client *http.Client) ([]byte, error) {
	if !strings.HasPrefix(location, "http://") && !strings.HasPrefix(location, "https://") {
		data, err := os.ReadFile(location)
		if err != nil {
			return nil, errors.Wrapf(err, "open %s", location)
		}
		return data, nil
	}
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "request %s", location)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "fetch %s", location)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("fetch %s: %s", location, resp.Status)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, resp.Body); err != nil {
		return nil, errors.Wrapf(err, "fetch %s", location)
	}
	return buf.Bytes(), nil
}

// fromRecords builds a frame from a header row followed by data rows,
// padding short rows with missing values.
func fromRecords(records [][]string, opts Options) (dataframe.DataFrame, error) {
	if len(records) == 0 || (!opts.NoHeader && len(records) == 1) {
		return dataframe.DataFrame{}, ErrEmpty
	}
	width := 0
	for _, r := range records {
		if len(r) > width {
			width = len(r)
		}
	}
	for i, r := range records {
		for len(r) < width {
			r = append(r, "")
		}
		records[i] = r
	}
	return dataframe.LoadRecords(records, opts.loadOptions()...), nil
}

func positionalNames(df dataframe.DataFrame) dataframe.DataFrame {
	cols := make([]series.Series, 0, df.Ncol())
	for i, name := range df.Names() {
		s := df.Col(name)
		s.Name = fmt.Sprintf("x%d", i)
		cols = append(cols, s)
	}
	return dataframe.New(cols...)
}
