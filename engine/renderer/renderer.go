package renderer

import (
	"github.com/cockroachdb/errors"

	"github.com/spaghettifunk/aero-boar/engine/assets"
	"github.com/spaghettifunk/aero-boar/engine/core"
	"github.com/spaghettifunk/aero-boar/engine/platform"
	"github.com/spaghettifunk/aero-boar/engine/renderer/vulkan"
)

// Renderer is the frontend the engine talks to. It tracks window visibility,
// hides recoverable swapchain rebuilds from the caller and owns the backend's
// lifetime.
type Renderer struct {
	backend RendererBackend

	suspended   bool
	frameNumber uint64
}

// Options selects backend behavior the application configures.
type Options struct {
	// VSync forces FIFO presentation; off prefers mailbox when available.
	VSync bool
	// Validation enables the validation layer and debug callback.
	Validation bool
	// AssetDir is the directory compiled shaders are read from.
	AssetDir string
}

// New creates a renderer backed by Vulkan on the given platform window.
func New(p *platform.Platform, opts Options) (*Renderer, error) {
	backend, err := vulkan.New(p, &vulkan.Config{
		VSync:      opts.VSync,
		Validation: opts.Validation,
		AssetDir:   opts.AssetDir,
	})
	if err != nil {
		return nil, err
	}
	return newWithBackend(backend), nil
}

func newWithBackend(backend RendererBackend) *Renderer {
	return &Renderer{backend: backend}
}

func (r *Renderer) Initialize(appName string, width, height uint32) error {
	if err := r.backend.Initialize(appName, width, height); err != nil {
		core.LogError(err.Error())
		return err
	}
	return nil
}

// Transfer exposes the backend's upload path so the asset pipeline can be
// built on top of it.
func (r *Renderer) Transfer() assets.Transfer {
	return r.backend.Transfer()
}

// OnResized reacts to a framebuffer size change. A zero-area framebuffer
// suspends drawing until a non-zero size arrives.
func (r *Renderer) OnResized(width, height uint32) error {
	if width == 0 || height == 0 {
		core.LogInfo("window minimized, suspending rendering")
		r.suspended = true
		return nil
	}
	if r.suspended {
		core.LogInfo("window restored, resuming rendering")
		r.suspended = false
	}
	return r.backend.Resized(width, height)
}

// DrawFrame runs one frame. Skipped frames, either while suspended or while
// the swapchain rebuilds, succeed without drawing.
func (r *Renderer) DrawFrame(packet *RenderPacket) error {
	if r.suspended {
		return nil
	}

	if err := r.backend.BeginFrame(packet.DeltaTime); err != nil {
		if errors.Is(err, core.ErrSwapchainBooting) {
			core.LogDebug("skipping frame %d, swapchain not ready", r.frameNumber)
			return nil
		}
		err = errors.Wrap(err, "begin frame")
		core.LogError(err.Error())
		return err
	}

	if err := r.backend.Render(packet.Models, packet.DeltaTime); err != nil {
		err = errors.Wrap(err, "render")
		core.LogError(err.Error())
		return err
	}

	if err := r.backend.EndFrame(packet.DeltaTime); err != nil {
		if errors.Is(err, core.ErrSwapchainBooting) {
			core.LogDebug("swapchain stale at present, rebuilt")
			r.frameNumber++
			return nil
		}
		err = errors.Wrap(err, "end frame")
		core.LogError(err.Error())
		return err
	}

	r.frameNumber++
	return nil
}

func (r *Renderer) Shutdown() error {
	return r.backend.Shutdown()
}
