// Command import-parcels loads a CSV or shapefile parcel table into a parcel
// database (SQLite by default, or a postgres:// / oracle:// URL) so the API can
// read it through parceldb.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"irea.valuation/internal/logging"
	"irea.valuation/internal/parcels"
	"irea.valuation/parceldb"
)

func main() {
	in := flag.String("in", "", "Parcel table to import (.csv or .shp)")
	out := flag.String("out", "models/parcels.db", "Target SQLite file or database URL")
	table := flag.String("table", parceldb.DefaultTable, "Target table name")
	columns := flag.String("columns", "", "Comma separated columns to keep (default all)")
	verbose := flag.Bool("verbose", false, "Log import progress")
	flag.Parse()

	logger := logging.NewLogger(os.Stderr, slog.LevelInfo)

	if *in == "" {
		fmt.Fprintln(os.Stderr, "usage: import-parcels -in parcels.csv [-out models/parcels.db]")
		os.Exit(2)
	}

	if err := run(context.Background(), logger, *in, *out, *table, splitColumns(*columns), *verbose); err != nil {
		logging.LogError(logger, "import failed", err, slog.String("in", *in))
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger, in, out, tableName string, columns []string, verbose bool) error {
	start := time.Now()

	var (
		table *parcels.Table
		err   error
	)
	switch strings.ToLower(filepath.Ext(in)) {
	case ".csv":
		table, err = parcels.LoadCSV(in, columns)
	case ".shp":
		table, err = parcels.LoadShapefile(in, columns)
	default:
		return fmt.Errorf("unsupported input format %q", filepath.Ext(in))
	}
	if err != nil {
		return err
	}

	rows := make([]map[string]any, table.Len())
	for i := range rows {
		rows[i] = table.Row(i)
	}

	config := parceldb.ConfigForSource(out, verbose)
	config.Table = tableName
	client, err := parceldb.NewClient(config)
	if err != nil {
		return err
	}
	client.WithLogger(logger)
	defer logging.SafeCloseWithLogging(client, logger, "parcel_database")

	n, err := client.ImportRows(ctx, table.Columns(), rows)
	if err != nil {
		return err
	}

	logging.LogStage(logger, "parcels_imported", start,
		slog.Int("rows", n),
		slog.Int("dropped", table.Dropped()),
		slog.String("table", tableName))
	return nil
}

func splitColumns(s string) []string {
	var out []string
	for _, c := range strings.Split(s, ",") {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	return out
}
