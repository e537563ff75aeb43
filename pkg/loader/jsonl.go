package loader

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/pkg/errors"
	"github.com/rocketlaunchr/dataframe-go/imports"
)

// readJSONL decodes line delimited records with dataframe-go. Nested
// objects are flattened by dataframe-go into dotted column names.
func readJSONL(ctx context.Context, data []byte, opts Options) (dataframe.DataFrame, error) {
	df, err := imports.LoadFromJSON(ctx, bytes.NewReader(data))
	if err != nil {
		return dataframe.DataFrame{}, errors.Wrap(err, "decode jsonl")
	}
	nrows := df.NRows()
	if nrows == 0 || len(df.Series) == 0 {
		return dataframe.DataFrame{}, ErrEmpty
	}

	records := make([][]string, 0, nrows+1)
	header := make([]string, len(df.Series))
	for c, s := range df.Series {
		header[c] = s.Name()
	}
	records = append(records, header)
	for r := 0; r < nrows; r++ {
		row := make([]string, len(df.Series))
		for c, s := range df.Series {
			row[c] = cell(s.Value(r))
		}
		records = append(records, row)
	}
	return fromRecords(records, opts)
}

// cell renders a scanned value the way the CSV reader would see it.
func cell(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return "NaN"
	case string:
		return x
	case []byte:
		return string(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case int64:
		return strconv.FormatInt(x, 10)
	case int:
		return strconv.Itoa(x)
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		return x.Format(time.RFC3339)
	case *time.Time:
		if x == nil {
			return "NaN"
		}
		return x.Format(time.RFC3339)
	default:
		return fmt.Sprint(x)
	}
}
