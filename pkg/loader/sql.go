package loader

import (
	"context"
	"log/slog"

	"github.com/go-gota/gota/dataframe"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

// Connect opens and pings a database. The driver must be registered by
// the caller, e.g. "postgres" (github.com/lib/pq) or "sqlite"
// (modernc.org/sqlite).
func Connect(ctx context.Context, driver, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, driver, dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "connect %s", driver)
	}
	return db, nil
}

// Query runs query and loads the result set. Only NULL becomes a missing
// value; column types are detected from the rendered values as for CSV.
func Query(ctx context.Context, db *sqlx.DB, query string, args ...interface{}) (dataframe.DataFrame, error) {
	rows, err := db.QueryxContext(ctx, query, args...)
	if err != nil {
		return dataframe.DataFrame{}, errors.Wrap(err, "run query")
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return dataframe.DataFrame{}, errors.Wrap(err, "read columns")
	}
	records := [][]string{cols}
	for rows.Next() {
		vals, err := rows.SliceScan()
		if err != nil {
			return dataframe.DataFrame{}, errors.Wrap(err, "scan row")
		}
		row := make([]string, len(vals))
		for i, v := range vals {
			row[i] = cell(v)
		}
		records = append(records, row)
	}
	if err := rows.Err(); err != nil {
		return dataframe.DataFrame{}, errors.Wrap(err, "iterate rows")
	}
	slog.Debug("Loaded query result", slog.Int("rows", len(records)-1), slog.Int("columns", len(cols)))

	// cell renders NULL as "NaN"; text such as "" or "NA" stays a value.
	df, err := fromRecords(records, Options{NAValues: []string{"NaN"}})
	if err != nil {
		return dataframe.DataFrame{}, err
	}
	if df.Err != nil {
		return dataframe.DataFrame{}, errors.Wrap(df.Err, "build frame")
	}
	return df, nil
}
