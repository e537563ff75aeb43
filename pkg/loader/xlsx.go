package loader

import (
	"bytes"
	"log/slog"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
)

func readXLSX(data []byte, opts Options) (dataframe.DataFrame, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return dataframe.DataFrame{}, errors.Wrap(err, "open spreadsheet")
	}
	defer f.Close()

	sheet := opts.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return dataframe.DataFrame{}, ErrEmpty
		}
		sheet = sheets[0]
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return dataframe.DataFrame{}, errors.Wrapf(err, "read sheet %q", sheet)
	}

	// Trailing blank rows are formatting leftovers.
	last := len(rows) - 1
	for last >= 0 && strings.TrimSpace(strings.Join(rows[last], "")) == "" {
		last--
	}
	rows = rows[:last+1]

	slog.Debug("Read spreadsheet", slog.String("sheet", sheet), slog.Int("rows", len(rows)))
	return fromRecords(rows, opts)
}
