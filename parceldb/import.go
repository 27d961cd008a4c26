package parceldb

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"irea.valuation/internal/logging"
)

const insertBatchSize = 500

// ImportRows (re)creates the parcel table with the given columns and inserts
// rows in batched transactions. Values are stored as text; nil stays NULL.
func (c *Client) ImportRows(ctx context.Context, columns []string, rows []map[string]any) (n int, err error) {
	if len(columns) == 0 {
		return 0, fmt.Errorf("no columns to import")
	}

	start := time.Now()
	defer func() {
		if err == nil && c.config.verbose {
			logging.LogOperation(c.logger, "parcel_table_imported",
				slog.Int("rows", n),
				slog.Duration("duration", time.Since(start)))
		}
	}()

	if err := c.createTable(ctx, columns); err != nil {
		return 0, err
	}

	quoted := make([]string, len(columns))
	marks := make([]string, len(columns))
	for i, col := range columns {
		quoted[i] = quoteIdent(col)
		marks[i] = c.placeholder(i + 1)
	}
	insert := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteIdent(c.config.table()), strings.Join(quoted, ", "), strings.Join(marks, ", "))

	for batchStart := 0; batchStart < len(rows); batchStart += insertBatchSize {
		batchEnd := min(batchStart+insertBatchSize, len(rows))
		if err := c.insertBatch(ctx, insert, columns, rows[batchStart:batchEnd]); err != nil {
			return n, err
		}
		n += batchEnd - batchStart
	}

	return n, nil
}

func (c *Client) createTable(ctx context.Context, columns []string) error {
	table := quoteIdent(c.config.table())

	if c.config.Driver == DriverOracle {
		// Oracle has no DROP TABLE IF EXISTS; a missing table is fine here.
		_, _ = c.DB.ExecContext(ctx, "DROP TABLE "+table)
	} else if _, err := c.DB.ExecContext(ctx, "DROP TABLE IF EXISTS "+table); err != nil {
		return fmt.Errorf("error dropping parcel table: %w", err)
	}

	defs := make([]string, len(columns))
	for i, col := range columns {
		defs[i] = quoteIdent(col) + " " + c.textType()
	}
	stmt := fmt.Sprintf("CREATE TABLE %s (%s)", table, strings.Join(defs, ", "))
	if _, err := c.DB.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("error creating parcel table: %w", err)
	}
	return nil
}

func (c *Client) insertBatch(ctx context.Context, insert string, columns []string, rows []map[string]any) (err error) {
	tx, err := c.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer logging.SafeRollbackWithLogging(tx, c.logger, "parcel_import")

	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		return fmt.Errorf("error preparing statement: %w", err)
	}
	defer logging.HandleDeferredError(&err, stmt.Close, c.logger, "close_insert_statement")

	args := make([]any, len(columns))
	for _, row := range rows {
		for i, col := range columns {
			args[i] = textValue(row[col])
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("error inserting parcel: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error committing transaction: %w", err)
	}
	return nil
}

func textValue(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}
