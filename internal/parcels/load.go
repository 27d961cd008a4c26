package parcels

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"irea.valuation/internal/apperr"
	"irea.valuation/parceldb"
)

// Columns the loader never keeps: they are filled per request.
var requestOnlyColumns = []string{"sale_year", "sale_month"}

// SelectColumns returns the sorted set of columns to load: the identifier and
// coordinates, every model feature, and any extra columns (assess candidates,
// trend fields), minus the sale timing columns.
func SelectColumns(featureLists [][]string, extra ...string) []string {
	set := map[string]struct{}{
		ColumnPID:       {},
		ColumnLatitude:  {},
		ColumnLongitude: {},
	}
	for _, list := range featureLists {
		for _, name := range list {
			set[name] = struct{}{}
		}
	}
	for _, name := range extra {
		set[name] = struct{}{}
	}
	for _, name := range requestOnlyColumns {
		delete(set, name)
	}

	out := make([]string, 0, len(set))
	for name := range set {
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}

// Load reads a parcel table from source and builds a Table. The source kind is
// chosen from its scheme or extension: postgres:// and oracle:// URLs and
// .db/.sqlite files go through parceldb, .csv files through LoadCSV and .shp
// files through LoadShapefile. A missing file fails with apperr.ErrNotFound.
func Load(ctx context.Context, source string, columns []string) (*Table, error) {
	lower := strings.ToLower(source)
	if strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://") || strings.HasPrefix(lower, "oracle://") {
		return loadDatabase(ctx, source, columns)
	}

	if _, err := os.Stat(source); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("parcel table %s: %w", source, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("parcel table %s: %w", source, err)
	}

	switch filepath.Ext(lower) {
	case ".csv":
		return LoadCSV(source, columns)
	case ".shp":
		return LoadShapefile(source, columns)
	case ".db", ".sqlite", ".sqlite3":
		return loadDatabase(ctx, source, columns)
	default:
		return nil, fmt.Errorf("unsupported parcel table format: %s", source)
	}
}

func loadDatabase(ctx context.Context, source string, columns []string) (*Table, error) {
	client, err := parceldb.NewClient(parceldb.ConfigForSource(source, false))
	if err != nil {
		return nil, err
	}
	defer client.Close() // nolint:errcheck

	rows, selected, err := client.LoadRows(ctx, columns)
	if err != nil {
		return nil, err
	}

	records := make([]Record, len(rows))
	for i, row := range rows {
		records[i] = Record(row)
	}
	return NewTable(records, selected), nil
}
