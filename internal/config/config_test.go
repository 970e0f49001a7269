package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 1337, cfg.Server.Port)
	assert.Equal(t, "https://api.themoviedb.org/3", cfg.Metadata.TMDB.BaseURL)
	assert.Equal(t, 14*24*time.Hour, cfg.Cache.MovieMaxAge)
	assert.Equal(t, 24*time.Hour, cfg.Cache.OngoingSeriesMaxAge)
	assert.Equal(t, 20, cfg.Catalog.Years)
	assert.Equal(t, 2*time.Second, cfg.Metadata.RPDB.ProbeTimeout())
	assert.Equal(t, 10*time.Minute, cfg.Scheduler.CacheSweepInterval)
	assert.Equal(t, time.Hour, cfg.Scheduler.OptionsRefreshInterval)
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte(`
server:
  port: 9000
cache:
  ongoing_series_max_age: 6h
metadata:
  tmdb:
    api_key: from-file
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))

	t.Setenv("TMDBCAT_METADATA_TMDB_API_KEY", "from-env")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, 6*time.Hour, cfg.Cache.OngoingSeriesMaxAge)
	assert.Equal(t, "from-env", cfg.Metadata.TMDB.APIKey)
	assert.Equal(t, "0.0.0.0:9000", cfg.Server.Address())
}
