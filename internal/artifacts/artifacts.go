// Package artifacts makes model files and parcel tables available on local
// disk before they are loaded, whether they live in a local directory or in
// an S3 bucket.
package artifacts

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"irea.valuation/internal/apperr"
	"irea.valuation/internal/logging"
)

// Store opens named artifacts.
type Store interface {
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}

// Kinds of store.
const (
	KindLocal = "local"
	KindS3    = "s3"
)

// Config selects and configures a Store.
type Config struct {
	Kind      string
	Dir       string // local directory, also the download target for remote stores
	Bucket    string
	Prefix    string
	Region    string
	AccessKey string
	SecretKey string
}

// NewStore builds the store described by cfg.
func NewStore(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Kind {
	case KindLocal, "":
		return NewLocalStore(cfg.Dir), nil
	case KindS3:
		return NewS3Store(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown artifact store: %s", cfg.Kind)
	}
}

// IsRemoteSource reports whether source names a database rather than a file.
func IsRemoteSource(source string) bool {
	lower := strings.ToLower(source)
	return strings.HasPrefix(lower, "postgres://") ||
		strings.HasPrefix(lower, "postgresql://") ||
		strings.HasPrefix(lower, "oracle://")
}

// Materialize returns a local path for each name, downloading it into dir
// first when store is not local. Empty names and database URLs are returned
// unchanged. A shapefile brings its .dbf attribute file along.
func Materialize(ctx context.Context, store Store, dir string, names ...string) ([]string, error) {
	paths := make([]string, len(names))
	for i, name := range names {
		if name == "" || IsRemoteSource(name) {
			paths[i] = name
			continue
		}
		if local, ok := store.(*LocalStore); ok {
			paths[i] = local.Path(name)
			continue
		}

		dest := filepath.Join(dir, filepath.Base(name))
		if err := Fetch(ctx, store, name, dest); err != nil {
			return nil, err
		}
		if ext := filepath.Ext(name); strings.EqualFold(ext, ".shp") {
			sidecar := strings.TrimSuffix(name, ext) + ".dbf"
			if err := Fetch(ctx, store, sidecar, strings.TrimSuffix(dest, ext)+".dbf"); err != nil {
				return nil, err
			}
		}
		paths[i] = dest
	}
	return paths, nil
}

// Fetch copies the named artifact to dest. The file appears atomically: a
// partial download never replaces an existing file.
func Fetch(ctx context.Context, store Store, name, dest string) (err error) {
	start := time.Now()
	logger := logging.FromContext(ctx).With(slog.String("component", "artifacts"))

	src, err := store.Open(ctx, name)
	if err != nil {
		return err
	}
	defer logging.SafeCloseWithLogging(src, logger, "artifact_source")

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("failed to create artifact directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(dest), "."+filepath.Base(dest)+".*")
	if err != nil {
		return fmt.Errorf("failed to create artifact file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	n, err := io.Copy(tmp, src)
	if err != nil {
		return fmt.Errorf("failed to download %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", dest, err)
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		return fmt.Errorf("failed to move %s into place: %w", dest, err)
	}

	logging.LogOperation(logger, "artifact_fetched",
		slog.String("name", name),
		slog.String("path", dest),
		slog.Int64("bytes", n),
		slog.Duration("duration", time.Since(start)))
	return nil
}

// LocalStore reads artifacts from a directory.
type LocalStore struct {
	dir string
}

func NewLocalStore(dir string) *LocalStore {
	return &LocalStore{dir: dir}
}

// Path resolves name against the store directory. Absolute names, and names
// that already exist relative to the working directory, are used as given.
func (s *LocalStore) Path(name string) string {
	if filepath.IsAbs(name) || s.dir == "" {
		return name
	}
	if _, err := os.Stat(name); err == nil {
		return name
	}
	return filepath.Join(s.dir, name)
}

func (s *LocalStore) Open(_ context.Context, name string) (io.ReadCloser, error) {
	f, err := os.Open(s.Path(name))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", name, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open artifact %s: %w", name, err)
	}
	return f, nil
}
