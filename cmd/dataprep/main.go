// Command dataprep loads a dataset from a file, a URL or a SQL query and
// prints the data preparation analyses of package dataset.
//
//	dataprep describe -target SalePrice houses.csv
//	dataprep correlated -threshold 0.8 https://example.org/iris.csv
//	dataprep outliers -driver sqlite -dsn file:data.db -query "SELECT * FROM t"
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"syscall"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		slog.Error("dataprep failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "usage: dataprep <command> [flags] [source]")
	fmt.Fprintln(w, "\ncommands:")
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %-15s %s\n", name, commands[name].help)
	}
	fmt.Fprintln(w, "\nrun 'dataprep <command> -h' for the flags of a command")
}
