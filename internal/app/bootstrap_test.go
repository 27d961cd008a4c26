package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"irea.valuation/internal/appconf"
	"irea.valuation/internal/apperr"
)

func TestNewFailsOnMissingArtifacts(t *testing.T) {
	dir := t.TempDir()
	manifest := filepath.Join(dir, "manifest.yaml")
	require.NoError(t, os.WriteFile(manifest, []byte("version: v9\nbaseline:\n  path: nowhere.txt\n"), 0o644))

	tests := []struct {
		name   string
		mutate func(*appconf.Config)
	}{
		{"missing baseline model", func(c *appconf.Config) {}},
		{"missing manifest", func(c *appconf.Config) { c.ModelManifest = filepath.Join(dir, "absent.yaml") }},
		{"manifest names a missing model", func(c *appconf.Config) { c.ModelManifest = manifest }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := appconf.Defaults()
			cfg.ArtifactDir = dir
			cfg.BaselineModel = "baseline_lgb.txt"
			cfg.ResidualModel = "residual_lgb.txt"
			tt.mutate(&cfg)

			_, err := New(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
			require.Error(t, err)
			assert.True(t, errors.Is(err, apperr.ErrNotFound), err.Error())
		})
	}
}

func TestNewRejectsUnknownArtifactStore(t *testing.T) {
	cfg := appconf.Defaults()
	cfg.ArtifactStore = "ftp"

	_, err := New(context.Background(), cfg, nil)
	assert.ErrorContains(t, err, "unknown artifact store")
}
