package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pulses = `sex,pulse,weight
f,100,61.5
m,25,80.1
m,100,77.3
m,25,90.0
m,50,85.2
f,75,58.4
m,100,79.9
f,75,55.0
m,75,88.8
m,100,83.3
`

func setup(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	chdir(t, dir)
	path := filepath.Join(dir, "pulses.csv")
	require.NoError(t, os.WriteFile(path, []byte(pulses), 0o600))
	return path
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	err := run(context.Background(), args, &out, &errOut)
	return out.String(), err
}

func TestRunErrors(t *testing.T) {
	setup(t)
	_, err := runCLI(t)
	assert.Error(t, err)
	_, err = runCLI(t, "nope")
	assert.Error(t, err)
	_, err = runCLI(t, "describe")
	assert.Error(t, err, "a source is required")
	_, err = runCLI(t, "describe", "-query", "SELECT 1")
	assert.Error(t, err, "a query needs a driver")
}

func TestDescribeCommand(t *testing.T) {
	path := setup(t)
	out, err := runCLI(t, "describe", "-target", "sex", path)
	require.NoError(t, err)
	assert.Contains(t, out, "2 Features. 10 Samples")
	assert.Contains(t, out, "Target: sex (string)")

	out, err = runCLI(t, "describe", "-column", "weight", path)
	require.NoError(t, err)
	assert.Contains(t, out, "'weight'")
}

func TestAnalysisCommands(t *testing.T) {
	path := setup(t)

	out, err := runCLI(t, "ig", "-target", "sex", "-categorical", "pulse", "-drop", "weight", "-format", "csv", path)
	require.NoError(t, err)
	assert.Contains(t, out, "0.2813")

	out, err = runCLI(t, "table", "-width", "20", path)
	require.NoError(t, err)
	assert.Contains(t, out, "pulse")

	out, err = runCLI(t, "export", "-select", "numerical", path)
	require.NoError(t, err)
	assert.Contains(t, out, "name,type,na,unique,description")

	_, err = runCLI(t, "summary", "-select", "bogus", path)
	assert.Error(t, err)

	out, err = runCLI(t, "importance", "-target", "sex", "-neighbors", "3", path)
	require.NoError(t, err)
	assert.Contains(t, out, "weight")

	out, err = runCLI(t, "plot", "-kind", "hist", "-category", "sex", "-height", "4", path)
	require.NoError(t, err)
	assert.Contains(t, out, "sex = f")

	out, err = runCLI(t, "plot", "-kind", "cov", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Covariance Matrix for numerical features")
	assert.Contains(t, out, "weight")
}

func TestSplitCommand(t *testing.T) {
	path := setup(t)
	dir := t.TempDir()
	out, err := runCLI(t, "split", "-target", "sex", "-drop", "pulse", "-out", dir, "-validation", path)
	require.NoError(t, err)
	for _, name := range []string{"x_train", "x_test", "x_val", "y_train", "y_test", "y_val"} {
		assert.FileExists(t, filepath.Join(dir, name+".csv"))
	}
	assert.Contains(t, out, filepath.Join(dir, "x_test.csv"))
}

func TestQuerySource(t *testing.T) {
	setup(t)
	dsn := filepath.Join(t.TempDir(), "data.db")
	db, err := sqlx.Open("sqlite", dsn)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE t (a REAL, b TEXT)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO t VALUES (1.5, 'x'), (2.5, 'y'), (NULL, 'x')`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	out, err := runCLI(t, "describe", "-driver", "sqlite", "-dsn", dsn, "-query", "SELECT a, b FROM t")
	require.NoError(t, err)
	assert.Contains(t, out, "2 Features. 3 Samples")
	assert.Contains(t, out, "1 numerical features with NAs")
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent of testing.T.Chdir for Go < 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatal(err)
		}
	})
}
