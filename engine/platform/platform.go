package platform

import (
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/aero-boar/engine/core"
)

func init() {
	// GLFW event handling must run on the main OS thread
	runtime.LockOSThread()
}

// Platform owns the window and translates GLFW callbacks into typed events on
// the engine's queue. It never calls back into engine code directly.
type Platform struct {
	Window *glfw.Window
	events *core.EventQueue
}

func New(events *core.EventQueue) (*Platform, error) {
	return &Platform{
		events: events,
	}, nil
}

func (p *Platform) Startup(applicationName string, x uint32, y uint32, width uint32, height uint32) error {
	if err := glfw.Init(); err != nil {
		core.LogError("failed to initialize glfw: %s", err)
		return err
	}

	glfw.WindowHint(glfw.Visible, glfw.False)
	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI) // Required for Vulkan.

	window, err := glfw.CreateWindow(int(width), int(height), applicationName, nil, nil)
	if err != nil {
		core.LogError("failed to create window: %s", err)
		return err
	}
	p.Window = window

	p.Window.SetKeyCallback(p.onKey)
	p.Window.SetMouseButtonCallback(p.onMouseButton)
	p.Window.SetCursorPosCallback(p.onCursorPos)
	p.Window.SetScrollCallback(p.onScroll)
	p.Window.SetFramebufferSizeCallback(p.onFramebufferSize)
	p.Window.SetCloseCallback(p.onClose)
	p.Window.SetPos(int(x), int(y))
	p.Window.Show()

	return nil
}

func (p *Platform) Shutdown() error {
	if p.Window != nil {
		p.Window.Destroy()
		p.Window = nil
	}
	glfw.Terminate()
	return nil
}

// PumpMessages polls window events. Returns false once the window wants to
// close.
func (p *Platform) PumpMessages() bool {
	glfw.PollEvents()
	return !p.Window.ShouldClose()
}

// WaitMessages blocks until at least one event arrives. Used while the window
// is minimized so the loop does not spin at zero size.
func (p *Platform) WaitMessages() {
	glfw.WaitEvents()
}

// PostEmptyEvent wakes a WaitMessages call from another goroutine.
func (p *Platform) PostEmptyEvent() {
	glfw.PostEmptyEvent()
}

// FramebufferSize returns the current framebuffer dimensions in pixels.
func (p *Platform) FramebufferSize() (uint32, uint32) {
	w, h := p.Window.GetFramebufferSize()
	return uint32(w), uint32(h)
}

// GetRequiredExtensionNames returns the instance extensions the window system
// needs for surface creation.
func (p *Platform) GetRequiredExtensionNames() []string {
	return p.Window.GetRequiredInstanceExtensions()
}

// CreateWindowSurface creates a Vulkan surface for the window.
func (p *Platform) CreateWindowSurface(instance vk.Instance) (uintptr, error) {
	return p.Window.CreateWindowSurface(instance, nil)
}

func (p *Platform) onKey(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
	if action == glfw.Repeat {
		return
	}
	p.events.Push(core.KeyEvent{
		Key:     translateKey(key),
		Pressed: action == glfw.Press,
	})
}

func (p *Platform) onMouseButton(w *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
	p.events.Push(core.MouseButtonEvent{
		Button:  translateButton(button),
		Pressed: action == glfw.Press,
	})
}

func (p *Platform) onCursorPos(w *glfw.Window, xpos, ypos float64) {
	p.events.Push(core.CursorMovedEvent{X: xpos, Y: ypos})
}

func (p *Platform) onScroll(w *glfw.Window, xoff, yoff float64) {
	p.events.Push(core.ScrollEvent{XOffset: xoff, YOffset: yoff})
}

func (p *Platform) onFramebufferSize(w *glfw.Window, width, height int) {
	p.events.Push(core.ResizedEvent{Width: uint32(width), Height: uint32(height)})
}

func (p *Platform) onClose(w *glfw.Window) {
	p.events.Push(core.QuitEvent{})
}

func translateKey(key glfw.Key) core.KeyCode {
	switch key {
	case glfw.KeyEscape:
		return core.KEY_ESCAPE
	case glfw.KeySpace:
		return core.KEY_SPACE
	case glfw.KeyW:
		return core.KEY_W
	case glfw.KeyA:
		return core.KEY_A
	case glfw.KeyS:
		return core.KEY_S
	case glfw.KeyD:
		return core.KEY_D
	default:
		return core.KEY_UNKNOWN
	}
}

func translateButton(button glfw.MouseButton) core.MouseButton {
	switch button {
	case glfw.MouseButtonRight:
		return core.BUTTON_RIGHT
	case glfw.MouseButtonMiddle:
		return core.BUTTON_MIDDLE
	default:
		return core.BUTTON_LEFT
	}
}
