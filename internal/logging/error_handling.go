package logging

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// cleanupFailed logs an error from a deferred cleanup that has nowhere to be returned.
func cleanupFailed(logger *slog.Logger, step, operation, component string, err error) {
	LogError(logger, step+" failed", err,
		slog.String("operation", operation),
		slog.String("component", component))
}

// SafeCloseWithLogging closes c for use in a defer. Closing twice is not an error.
func SafeCloseWithLogging(c io.Closer, logger *slog.Logger, operation string) {
	if c == nil {
		return
	}
	if err := c.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
		cleanupFailed(logger, "close", operation, "cleanup", err)
	}
}

// SafeRollbackWithLogging rolls tx back for use in a defer ahead of Commit;
// a committed transaction reports sql.ErrTxDone, which is ignored.
func SafeRollbackWithLogging(tx interface{ Rollback() error }, logger *slog.Logger, operation string) {
	if tx == nil {
		return
	}
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		cleanupFailed(logger, "rollback", operation, "parcel_store", err)
	}
}

// HandleDeferredError runs cleanup and, if it fails while *result is still
// nil, reports the failure through *result.
func HandleDeferredError(result *error, cleanup func() error, logger *slog.Logger, operation string) {
	if cleanup == nil {
		return
	}
	err := cleanup()
	if err == nil {
		return
	}

	cleanupFailed(logger, "deferred cleanup", operation, "cleanup", err)
	if result != nil && *result == nil {
		*result = fmt.Errorf("%s: %w", operation, err)
	}
}
