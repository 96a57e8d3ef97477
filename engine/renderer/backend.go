package renderer

import (
	"github.com/spaghettifunk/aero-boar/engine/assets"
	"github.com/spaghettifunk/aero-boar/engine/resources"
)

// RenderPacket carries everything the renderer needs for one frame.
type RenderPacket struct {
	DeltaTime float64
	Models    []*resources.Model
}

// RendererBackend is the device-facing half of the renderer. BeginFrame and
// EndFrame return core.ErrSwapchainBooting when the frame must be skipped
// because the swapchain is being rebuilt; the frontend turns that into a
// silent no-op.
type RendererBackend interface {
	Initialize(appName string, width, height uint32) error
	Shutdown() error

	// Resized rebuilds the swapchain for the new framebuffer size.
	Resized(width, height uint32) error

	BeginFrame(deltaTime float64) error
	Render(models []*resources.Model, deltaTime float64) error
	EndFrame(deltaTime float64) error

	// Transfer returns the backend's upload path for the asset pipeline.
	Transfer() assets.Transfer
}
