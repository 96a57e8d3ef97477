package engine

import (
	"sync"
	"sync/atomic"

	"github.com/spaghettifunk/aero-boar/engine/assets"
	"github.com/spaghettifunk/aero-boar/engine/core"
	"github.com/spaghettifunk/aero-boar/engine/platform"
	"github.com/spaghettifunk/aero-boar/engine/renderer"
)

type Stage uint8

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized Stage = iota
	// Engine is currently initializing
	EngineStageInitializing
	// Engine initialization is complete
	EngineStageInitialized
	// Engine is currently running
	EngineStageRunning
	// Engine is in the process of shutting down
	EngineStageShuttingDown
)

type Engine struct {
	currentStage Stage
	gameInstance *Game

	events   *core.EventQueue
	input    *core.InputState
	platform *platform.Platform
	renderer *renderer.Renderer
	loader   *assets.ModelLoader

	isRunning   atomic.Bool
	isSuspended bool
	width       uint32
	height      uint32

	clock    *core.Clock
	lastTime float64

	shutdownOnce sync.Once
}

func New(g *Game) (*Engine, error) {
	if g.ApplicationConfig == nil {
		g.ApplicationConfig = DefaultConfig()
	}
	if err := g.ApplicationConfig.validate(); err != nil {
		core.LogError(err.Error())
		return nil, err
	}
	core.SetLogLevel(g.ApplicationConfig.LogLevel)

	events := core.NewEventQueue()
	p, err := platform.New(events)
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}

	r, err := renderer.New(p, renderer.Options{
		VSync:      g.ApplicationConfig.VSync,
		Validation: g.ApplicationConfig.Validation,
		AssetDir:   g.ApplicationConfig.AssetDir,
	})
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}

	e := &Engine{
		currentStage: EngineStageUninitialized,
		gameInstance: g,
		events:       events,
		input:        core.NewInputState(),
		platform:     p,
		renderer:     r,
		clock:        core.NewClock(),
		width:        g.ApplicationConfig.StartWidth,
		height:       g.ApplicationConfig.StartHeight,
	}
	e.isRunning.Store(true)
	return e, nil
}

func (e *Engine) Initialize() error {
	e.currentStage = EngineStageInitializing

	if err := core.MetricsInitialize(); err != nil {
		return err
	}

	config := e.gameInstance.ApplicationConfig
	if err := e.platform.Startup(config.Name,
		config.StartPosX,
		config.StartPosY,
		config.StartWidth,
		config.StartHeight); err != nil {
		return err
	}

	// The window may have opened at a different framebuffer size than
	// requested (HiDPI scaling).
	fbWidth, fbHeight := e.platform.FramebufferSize()
	e.width = fbWidth
	e.height = fbHeight

	if err := e.renderer.Initialize(config.Name, fbWidth, fbHeight); err != nil {
		return err
	}

	loader, err := assets.NewModelLoader(e.renderer.Transfer(), config.AssetWorkers)
	if err != nil {
		return err
	}
	e.loader = loader

	e.gameInstance.Loader = loader
	e.gameInstance.Input = e.input

	if e.gameInstance.FnInitialize != nil {
		if err := e.gameInstance.FnInitialize(); err != nil {
			return err
		}
	}
	if e.gameInstance.FnOnResize != nil {
		if err := e.gameInstance.FnOnResize(e.width, e.height); err != nil {
			return err
		}
	}

	e.currentStage = EngineStageInitialized
	return nil
}

func (e *Engine) Run() error {
	e.currentStage = EngineStageRunning
	e.clock.Start()
	e.clock.Update()
	e.lastTime = e.clock.Elapsed()

	for e.isRunning.Load() {
		if !e.platform.PumpMessages() {
			e.isRunning.Store(false)
		}

		e.processEvents()

		if e.isSuspended {
			// Nothing to draw at zero size; block until the window changes.
			e.platform.WaitMessages()
			continue
		}

		core.MetricsFrameBegin()

		e.clock.Update()
		currentTime := e.clock.Elapsed()
		delta := currentTime - e.lastTime

		models, err := e.gameInstance.FnUpdate(delta)
		if err != nil {
			core.LogError("game update failed, shutting down: %s", err)
			e.isRunning.Store(false)
			break
		}

		packet := &renderer.RenderPacket{
			DeltaTime: delta,
			Models:    models,
		}
		if err := e.renderer.DrawFrame(packet); err != nil {
			core.LogError("draw frame failed, shutting down: %s", err)
			e.isRunning.Store(false)
			break
		}

		core.MetricsFrameEnd()
		e.lastTime = currentTime
	}

	return e.Shutdown()
}

// Stop requests the run loop to exit after the current frame. Safe to call
// from any goroutine.
func (e *Engine) Stop() {
	e.isRunning.Store(false)
	e.platform.PostEmptyEvent()
}

func (e *Engine) processEvents() {
	e.input.BeginFrame()

	for _, event := range e.events.Drain() {
		e.input.Apply(event)

		switch ev := event.(type) {
		case core.QuitEvent:
			core.LogInfo("quit requested, shutting down")
			e.isRunning.Store(false)
		case core.ResizedEvent:
			e.onResized(ev.Width, ev.Height)
		case core.KeyEvent:
			if ev.Pressed && ev.Key == core.KEY_ESCAPE {
				e.events.Push(core.QuitEvent{})
			}
		}
	}
}

func (e *Engine) onResized(width, height uint32) {
	if width == e.width && height == e.height {
		return
	}
	e.width = width
	e.height = height
	core.LogDebug("window resize: %d, %d", width, height)

	if width == 0 || height == 0 {
		core.LogInfo("window minimized, suspending engine")
		e.isSuspended = true
	} else if e.isSuspended {
		core.LogInfo("window restored, resuming engine")
		e.isSuspended = false
	}

	// The renderer tracks its own suspend state from the same values.
	if err := e.renderer.OnResized(width, height); err != nil {
		core.LogError(err.Error())
	}
	if e.gameInstance.FnOnResize != nil && width > 0 && height > 0 {
		if err := e.gameInstance.FnOnResize(width, height); err != nil {
			core.LogError(err.Error())
		}
	}
}

// Shutdown tears everything down exactly once: game, then assets, then the
// renderer, then the window. Models must be destroyed while the transfer
// engine is still alive.
func (e *Engine) Shutdown() error {
	var firstErr error
	e.shutdownOnce.Do(func() {
		e.currentStage = EngineStageShuttingDown
		core.LogInfo("engine shutting down")

		if e.gameInstance.FnShutdown != nil {
			if err := e.gameInstance.FnShutdown(); err != nil {
				core.LogError(err.Error())
				firstErr = err
			}
		}
		if e.loader != nil {
			if err := e.loader.Shutdown(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		if err := e.renderer.Shutdown(); err != nil && firstErr == nil {
			firstErr = err
		}
		if err := e.platform.Shutdown(); err != nil && firstErr == nil {
			firstErr = err
		}
	})
	return firstErr
}
