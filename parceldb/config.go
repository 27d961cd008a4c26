package parceldb

import "strings"

// Supported database/sql driver names.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "pgx"
	DriverOracle   = "oracle"
)

// DefaultTable is the table parcels are imported into and read from.
const DefaultTable = "parcels"

// Config holds configuration options for the Client
type Config struct {
	Driver  string // database/sql driver name
	DSN     string // file path for sqlite, connection URL otherwise
	Table   string // parcel table name
	verbose bool   // Verbose logging
}

func NewConfig(driver, dsn string, verbose bool) Config {
	return Config{
		Driver:  driver,
		DSN:     dsn,
		Table:   DefaultTable,
		verbose: verbose,
	}
}

// ConfigForSource derives a Config from a parcel source string: postgres:// and
// postgresql:// URLs use pgx, oracle:// URLs use go-ora, anything else is a
// SQLite file path.
func ConfigForSource(source string, verbose bool) Config {
	lower := strings.ToLower(source)
	switch {
	case strings.HasPrefix(lower, "postgres://"), strings.HasPrefix(lower, "postgresql://"):
		return NewConfig(DriverPostgres, source, verbose)
	case strings.HasPrefix(lower, "oracle://"):
		return NewConfig(DriverOracle, source, verbose)
	default:
		return NewConfig(DriverSQLite, source, verbose)
	}
}

func (c Config) table() string {
	if c.Table == "" {
		return DefaultTable
	}
	return c.Table
}
