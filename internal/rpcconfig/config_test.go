package rpcconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("RPCTYPING_REALM", "")
	cfg, err := Load("")
	require.NoError(t, err)
	require.Contains(t, cfg.SearchPaths, DefaultSearchPath)
	require.Equal(t, 4096, cfg.InstanceCacheSize)
	require.Equal(t, "info", cfg.LogLevel)
	require.False(t, cfg.AllowIDLDownload)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("instance_cache_size: 128\nallow_idl_download: true\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 128, cfg.InstanceCacheSize)
	require.True(t, cfg.AllowIDLDownload)
}

func TestLoadAlwaysAppendsDefaultSearchPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("search_paths: [\"/opt/idl\"]\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Contains(t, cfg.SearchPaths, "/opt/idl")
	require.Contains(t, cfg.SearchPaths, DefaultSearchPath)
}
