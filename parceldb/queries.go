package parceldb

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"
)

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (c *Client) placeholder(n int) string {
	switch c.config.Driver {
	case DriverPostgres:
		return "$" + strconv.Itoa(n)
	case DriverOracle:
		return ":" + strconv.Itoa(n)
	default:
		return "?"
	}
}

func (c *Client) textType() string {
	if c.config.Driver == DriverOracle {
		return "VARCHAR2(4000)"
	}
	return "TEXT"
}

// Columns lists the columns of the parcel table.
func (c *Client) Columns(ctx context.Context) ([]string, error) {
	rows, err := c.DB.QueryContext(ctx, "SELECT * FROM "+quoteIdent(c.config.table())+" WHERE 1 = 0")
	if err != nil {
		return nil, fmt.Errorf("error reading parcel table columns: %w", err)
	}
	defer rows.Close() // nolint:errcheck

	return rows.Columns()
}

// LoadRows reads every parcel row. When columns is non-empty only the columns
// that exist in the table are selected; unknown names are skipped. It returns
// the rows and the column names actually read.
func (c *Client) LoadRows(ctx context.Context, columns []string) ([]map[string]any, []string, error) {
	available, err := c.Columns(ctx)
	if err != nil {
		return nil, nil, err
	}

	selected := available
	if len(columns) > 0 {
		selected = make([]string, 0, len(columns))
		for _, col := range columns {
			if slices.Contains(available, col) {
				selected = append(selected, col)
			}
		}
	}
	if len(selected) == 0 {
		return nil, nil, fmt.Errorf("parcel table %q has none of the requested columns", c.config.table())
	}

	quoted := make([]string, len(selected))
	for i, col := range selected {
		quoted[i] = quoteIdent(col)
	}
	query := "SELECT " + strings.Join(quoted, ", ") + " FROM " + quoteIdent(c.config.table())

	start := time.Now()
	rows, err := c.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, nil, fmt.Errorf("error querying parcel table: %w", err)
	}
	defer rows.Close() // nolint:errcheck

	var out []map[string]any
	values := make([]any, len(selected))
	ptrs := make([]any, len(selected))
	for i := range values {
		ptrs[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, fmt.Errorf("error scanning parcel row: %w", err)
		}
		row := make(map[string]any, len(selected))
		for i, col := range selected {
			row[col] = normalizeValue(values[i])
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating parcel rows: %w", err)
	}

	if c.config.verbose {
		c.logger.Info("parcel rows loaded",
			"rows", len(out),
			"columns", len(selected),
			"duration", time.Since(start).String())
	}

	return out, selected, nil
}

func normalizeValue(v any) any {
	switch x := v.(type) {
	case []byte:
		return string(x)
	case time.Time:
		return x.Format(time.RFC3339)
	case sql.RawBytes:
		return string(x)
	default:
		return x
	}
}
