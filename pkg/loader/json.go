package loader

import (
	"bytes"

	"github.com/go-gota/gota/dataframe"
	"github.com/pkg/errors"
	"github.com/tobgu/qframe"
)

// readJSON decodes either an array of records or an object of columns
// with qframe, then hands the columns to gota through CSV so that type
// detection and NA handling match the other formats.
func readJSON(data []byte, opts Options) (dataframe.DataFrame, error) {
	qf := qframe.ReadJSON(bytes.NewReader(data))
	if qf.Err != nil {
		return dataframe.DataFrame{}, errors.Wrap(qf.Err, "decode json")
	}
	if qf.Len() == 0 {
		return dataframe.DataFrame{}, ErrEmpty
	}
	var buf bytes.Buffer
	if err := qf.ToCSV(&buf); err != nil {
		return dataframe.DataFrame{}, errors.Wrap(err, "convert json")
	}
	opts.NoHeader = false
	opts.Delimiter = 0
	return readCSV(buf.Bytes(), opts)
}
