package testbed

import (
	"os"
	"path/filepath"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/spaghettifunk/aero-boar/engine"
	"github.com/spaghettifunk/aero-boar/engine/assets"
	"github.com/spaghettifunk/aero-boar/engine/core"
	"github.com/spaghettifunk/aero-boar/engine/resources"
)

const demoModelFile = "models/boar.glb"

type TestGame struct {
	*engine.Game
}

type gameState struct {
	cube *resources.Model

	modelFuture *assets.Future
	demoModel   *resources.Model

	rotation    float32
	width       uint32
	height      uint32
	statsTicker float64
}

func NewTestGame(configPath string) (*TestGame, error) {
	config, err := engine.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	tg := &TestGame{
		Game: &engine.Game{
			ApplicationConfig: config,
			State:             &gameState{},
		},
	}

	tg.FnInitialize = tg.Initialize
	tg.FnUpdate = tg.Update
	tg.FnOnResize = tg.OnResize
	tg.FnShutdown = tg.Shutdown

	return tg, nil
}

func (g *TestGame) Initialize() error {
	state := g.State.(*gameState)

	cube, err := g.Loader.CreateCubeModel()
	if err != nil {
		return err
	}
	state.cube = cube

	// Kick off a background load so the cube spins while the glTF model
	// streams in.
	demoPath := filepath.Join(g.ApplicationConfig.AssetDir, demoModelFile)
	if _, err := os.Stat(demoPath); err == nil {
		future, err := g.Loader.LoadModelAsync(demoPath)
		if err != nil {
			core.LogError("failed to queue demo model: %s", err)
		} else {
			state.modelFuture = future
		}
	} else {
		core.LogInfo("no demo model at %s, rendering the cube only", demoPath)
	}

	return nil
}

func (g *TestGame) Update(deltaTime float64) ([]*resources.Model, error) {
	state := g.State.(*gameState)

	if state.modelFuture != nil {
		if result, done := state.modelFuture.Poll(); done {
			state.modelFuture = nil
			if result.Success {
				core.LogInfo("demo model loaded")
				state.demoModel = result.Model
				// Off to the side of the cube.
				state.demoModel.RootNode.Transform = mgl32.Translate3D(1.5, 0, 0)
			} else {
				core.LogError("demo model load failed: %s", result.ErrorMessage)
			}
		}
	}

	state.rotation += float32(0.5 * deltaTime)
	state.cube.RootNode.Transform = mgl32.HomogRotate3D(state.rotation, mgl32.Vec3{0, 1, 0})

	state.statsTicker += deltaTime
	if state.statsTicker > 1.0 {
		state.statsTicker = 0
		fps, frameTime := core.MetricsFrame()
		core.LogDebug("fps: %5.1f frame: %4.1fms", fps, frameTime)
	}

	models := []*resources.Model{state.cube}
	if state.demoModel != nil {
		models = append(models, state.demoModel)
	}
	return models, nil
}

func (g *TestGame) OnResize(width uint32, height uint32) error {
	state := g.State.(*gameState)
	state.width = width
	state.height = height
	return nil
}

func (g *TestGame) Shutdown() error {
	// Models are owned by the loader and destroyed with it.
	return nil
}
