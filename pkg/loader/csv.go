package loader

import (
	"bytes"

	"github.com/go-gota/gota/dataframe"
)

func readCSV(data []byte, opts Options) (dataframe.DataFrame, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return dataframe.DataFrame{}, ErrEmpty
	}
	lo := opts.loadOptions()
	if opts.Delimiter != 0 {
		lo = append(lo, dataframe.WithDelimiter(opts.Delimiter))
	}
	return dataframe.ReadCSV(bytes.NewReader(data), lo...), nil
}
