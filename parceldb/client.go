// Package parceldb stores and reads the parcel table through database/sql.
// SQLite is the default backend; Postgres and Oracle are supported for
// deployments that keep parcel data in a shared database.
package parceldb

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // Postgres driver "pgx"
	_ "github.com/sijms/go-ora/v2"     // Oracle driver "oracle"
	_ "modernc.org/sqlite"             // Pure Go SQLite driver
)

// Client is the main entry point for the library
type Client struct {
	config Config
	DB     *sql.DB
	logger *slog.Logger
}

// NewClient opens the database described by config and verifies the connection.
func NewClient(config Config) (*Client, error) {
	db, err := sql.Open(config.Driver, config.DSN)
	if err != nil {
		return nil, fmt.Errorf("error opening %s database: %w", config.Driver, err)
	}

	if config.Driver == DriverSQLite && config.DSN == ":memory:" {
		// every pooled connection would otherwise see its own empty database
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("error connecting to %s database: %w", config.Driver, err)
	}

	return &Client{
		config: config,
		DB:     db,
		logger: slog.Default().With(slog.String("component", "parceldb")),
	}, nil
}

// WithLogger replaces the client's logger.
func (c *Client) WithLogger(logger *slog.Logger) *Client {
	if logger != nil {
		c.logger = logger.With(slog.String("component", "parceldb"))
	}
	return c
}

func (c *Client) Close() error {
	return c.DB.Close()
}
