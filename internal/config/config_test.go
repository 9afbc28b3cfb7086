package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"warren/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "warren.db", cfg.DSN)
	assert.Equal(t, 25, cfg.FeedLimit)
	assert.Empty(t, cfg.SessionKey)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	yaml := "addr: \":9090\"\ndsn: \"test.db\"\nsession_key: \"k\"\nfeed_limit: 7\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	cfg, err := config.Load(dir)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, "test.db", cfg.DSN)
	assert.Equal(t, "k", cfg.SessionKey)
	assert.Equal(t, 7, cfg.FeedLimit)
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("addr: \":9090\"\n"), 0o644))
	t.Setenv("WARREN_ADDR", ":7070")

	cfg, err := config.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.Addr)
}
