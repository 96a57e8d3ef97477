package engine

import (
	"github.com/cockroachdb/errors"

	"github.com/spaghettifunk/aero-boar/engine/assets"
	"github.com/spaghettifunk/aero-boar/engine/core"
	"github.com/spaghettifunk/aero-boar/engine/resources"
)

var errInvalidWindowSize = errors.New("window size must be non-zero")

// Game is the application hosted by the engine. The engine owns the loop and
// the subsystems; the game fills in behavior through the Fn callbacks and
// reports the models it wants drawn each frame.
type Game struct {
	ApplicationConfig *ApplicationConfig
	Loader            *assets.ModelLoader
	Input             *core.InputState
	State             interface{}

	FnInitialize Initialize
	FnUpdate     Update
	FnOnResize   OnResize
	FnShutdown   Shutdown
}

type Initialize func() error

// Update advances game state and returns the models to render this frame.
type Update func(deltaTime float64) ([]*resources.Model, error)

type OnResize func(width uint32, height uint32) error
type Shutdown func() error
