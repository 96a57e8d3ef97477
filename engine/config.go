package engine

import (
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/spaghettifunk/aero-boar/engine/core"
)

type ApplicationConfig struct {
	// The application name used in windowing.
	Name string `toml:"name"`
	// Window starting position x axis, if applicable.
	StartPosX uint32 `toml:"start_pos_x"`
	// Window starting position y axis, if applicable.
	StartPosY uint32 `toml:"start_pos_y"`
	// Window starting width.
	StartWidth uint32 `toml:"start_width"`
	// Window starting height.
	StartHeight uint32 `toml:"start_height"`
	// Number of goroutines loading assets.
	AssetWorkers int `toml:"asset_workers"`
	// Root directory for models, textures and compiled shaders.
	AssetDir string `toml:"asset_dir"`
	// Present with vertical sync. Turning it off lets the swapchain pick
	// mailbox presentation when the device offers it.
	VSync bool `toml:"vsync"`
	// Enable the Vulkan validation layer and debug callback.
	Validation bool `toml:"validation"`
	// One of debug, info, warn, error.
	LogLevel string `toml:"log_level"`
}

func DefaultConfig() *ApplicationConfig {
	return &ApplicationConfig{
		Name:         "Aero Boar Engine",
		StartPosX:    100,
		StartPosY:    100,
		StartWidth:   1280,
		StartHeight:  720,
		AssetWorkers: 4,
		AssetDir:     "assets",
		VSync:        true,
		Validation:   true,
		LogLevel:     "debug",
	}
}

// LoadConfig reads a TOML config file and overlays it on the defaults. A
// missing file is not an error; the defaults are returned as is.
func LoadConfig(path string) (*ApplicationConfig, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			core.LogDebug("no config file at %s, using defaults", path)
			return config, nil
		}
		core.LogError("failed to read config %s: %s", path, err)
		return nil, err
	}

	if err := toml.Unmarshal(data, config); err != nil {
		core.LogError("failed to parse config %s: %s", path, err)
		return nil, err
	}

	if err := config.validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *ApplicationConfig) validate() error {
	if c.StartWidth == 0 || c.StartHeight == 0 {
		return errInvalidWindowSize
	}
	if c.AssetWorkers < 1 {
		c.AssetWorkers = 1
	}
	if c.AssetDir == "" {
		c.AssetDir = "assets"
	}
	return nil
}
