package loader

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-gota/gota/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	_ "modernc.org/sqlite"
)

const sampleCSV = "age,color,height\n25,red,1.70\n31,,1.82\n47,blue,1.65\n"

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		location string
		want     Format
	}{
		{"data/train.csv", FormatCSV},
		{"data/train.TSV", FormatTSV},
		{"book.xlsx", FormatXLSX},
		{"records.json", FormatJSON},
		{"events.ndjson", FormatJSONL},
		{"https://example.com/files/data.jsonl?raw=1", FormatJSONL},
		{"no-extension", FormatCSV},
	}
	for _, tt := range tests {
		t.Run(tt.location, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectFormat(tt.location))
		})
	}
}

func TestReadCSV(t *testing.T) {
	p := writeFile(t, "people.csv", sampleCSV)

	df, err := Read(context.Background(), p, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"age", "color", "height"}, df.Names())
	assert.Equal(t, 3, df.Nrow())
	assert.Equal(t, series.Int, df.Col("age").Type())
	assert.Equal(t, series.String, df.Col("color").Type())
	assert.Equal(t, series.Float, df.Col("height").Type())
	assert.True(t, df.Col("color").Elem(1).IsNA())
}

func TestReadNoHeader(t *testing.T) {
	p := writeFile(t, "raw.csv", "1,2,a\n3,4,b\n")

	df, err := Read(context.Background(), p, Options{NoHeader: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"x0", "x1", "x2"}, df.Names())
	assert.Equal(t, 2, df.Nrow())
}

func TestReadTSV(t *testing.T) {
	p := writeFile(t, "people.tsv", strings.ReplaceAll(sampleCSV, ",", "\t"))

	df, err := Read(context.Background(), p, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"age", "color", "height"}, df.Names())
}

func TestReadMissingFile(t *testing.T) {
	_, err := Read(context.Background(), filepath.Join(t.TempDir(), "nope.csv"), Options{})
	assert.Error(t, err)
}

func TestReadURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/people.csv" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(sampleCSV))
	}))
	defer srv.Close()

	df, err := Read(context.Background(), srv.URL+"/people.csv", Options{HTTPClient: srv.Client()})
	require.NoError(t, err)
	assert.Equal(t, 3, df.Nrow())

	_, err = Read(context.Background(), srv.URL+"/missing.csv", Options{HTTPClient: srv.Client()})
	assert.Error(t, err)
}

func TestReadXLSX(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	cells := map[string]interface{}{
		"A1": "age", "B1": "color",
		"A2": 25, "B2": "red",
		"A3": 31, "B3": "green",
	}
	for cell, v := range cells {
		require.NoError(t, f.SetCellValue("Sheet1", cell, v))
	}
	p := filepath.Join(t.TempDir(), "book.xlsx")
	require.NoError(t, f.SaveAs(p))

	df, err := Read(context.Background(), p, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"age", "color"}, df.Names())
	assert.Equal(t, 2, df.Nrow())
	assert.Equal(t, []float64{25, 31}, df.Col("age").Float())

	_, err = Read(context.Background(), p, Options{Sheet: "Missing"})
	assert.Error(t, err)
}

func TestReadJSON(t *testing.T) {
	p := writeFile(t, "records.json", `[{"age": 25, "color": "red"}, {"age": 31, "color": "green"}]`)

	df, err := Read(context.Background(), p, Options{})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"age", "color"}, df.Names())
	assert.Equal(t, 2, df.Nrow())
	assert.Equal(t, []string{"red", "green"}, df.Col("color").Records())
}

func TestReadJSONL(t *testing.T) {
	p := writeFile(t, "records.jsonl", "{\"age\": 25, \"color\": \"red\"}\n{\"age\": 31, \"color\": \"green\"}\n")

	df, err := Read(context.Background(), p, Options{})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"age", "color"}, df.Names())
	assert.Equal(t, 2, df.Nrow())
	assert.Equal(t, []float64{25, 31}, df.Col("age").Float())
}

func TestReadFromUnsupported(t *testing.T) {
	_, err := ReadFrom(context.Background(), strings.NewReader("x"), Options{Format: "parquet"})
	assert.Error(t, err)
}

func TestQuery(t *testing.T) {
	ctx := context.Background()
	db, err := Connect(ctx, "sqlite", ":memory:")
	require.NoError(t, err)
	defer db.Close()
	db.SetMaxOpenConns(1)

	db.MustExecContext(ctx, `CREATE TABLE houses (rooms INTEGER, area REAL, zone TEXT)`)
	db.MustExecContext(ctx, `INSERT INTO houses VALUES (3, 80.5, 'north'), (4, NULL, 'south'), (2, 55.0, NULL)`)

	df, err := Query(ctx, db, `SELECT rooms, area, zone FROM houses WHERE rooms > ? ORDER BY rooms`, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"rooms", "area", "zone"}, df.Names())
	assert.Equal(t, 3, df.Nrow())
	assert.Equal(t, []float64{2, 3, 4}, df.Col("rooms").Float())
	assert.True(t, df.Col("area").Elem(2).IsNA())
	assert.True(t, df.Col("zone").Elem(0).IsNA())

	_, err = Query(ctx, db, `SELECT * FROM houses WHERE rooms > 10`)
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestQueryTextTokens(t *testing.T) {
	ctx := context.Background()
	db, err := Connect(ctx, "sqlite", ":memory:")
	require.NoError(t, err)
	defer db.Close()
	db.SetMaxOpenConns(1)

	db.MustExecContext(ctx, `CREATE TABLE codes (id INTEGER, code TEXT)`)
	db.MustExecContext(ctx, `INSERT INTO codes VALUES (1, ''), (2, 'NA'), (3, 'null'), (4, NULL)`)

	df, err := Query(ctx, db, `SELECT id, code FROM codes ORDER BY id`)
	require.NoError(t, err)
	code := df.Col("code")
	for i, want := range []string{"", "NA", "null"} {
		assert.False(t, code.Elem(i).IsNA(), "row %d", i)
		assert.Equal(t, want, code.Elem(i).String())
	}
	assert.True(t, code.Elem(3).IsNA())
}
