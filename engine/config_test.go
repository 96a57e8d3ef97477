package engine

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	config, err := LoadConfig(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), config)
	assert.True(t, config.VSync)
	assert.True(t, config.Validation)
	assert.Equal(t, "assets", config.AssetDir)
}

func TestLoadConfigOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
name = "Testbed"
start_width = 640
start_height = 480
asset_workers = 2
asset_dir = "content"
vsync = false
validation = false
log_level = "info"
`), 0o644))

	config, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "Testbed", config.Name)
	assert.Equal(t, uint32(640), config.StartWidth)
	assert.Equal(t, uint32(480), config.StartHeight)
	assert.Equal(t, 2, config.AssetWorkers)
	assert.Equal(t, "content", config.AssetDir)
	assert.False(t, config.VSync)
	assert.False(t, config.Validation)
	assert.Equal(t, "info", config.LogLevel)
	// Unspecified fields keep their defaults.
	assert.Equal(t, uint32(100), config.StartPosX)
}

func TestLoadConfigRejectsZeroSize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("start_width = 0\n"), 0o644))

	_, err := LoadConfig(path)
	assert.ErrorIs(t, err, errInvalidWindowSize)
}

func TestLoadConfigMalformedToml(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("not [valid"), 0o644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestConfigClampsWorkerCount(t *testing.T) {
	config := DefaultConfig()
	config.AssetWorkers = -3
	require.NoError(t, config.validate())
	assert.Equal(t, 1, config.AssetWorkers)
}

func TestConfigEmptyAssetDirFallsBack(t *testing.T) {
	config := DefaultConfig()
	config.AssetDir = ""
	require.NoError(t, config.validate())
	assert.Equal(t, "assets", config.AssetDir)
}
