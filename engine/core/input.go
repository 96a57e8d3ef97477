package core

// InputState tracks the keyboard and mouse state for the current and previous
// frame. It is fed from drained events on the engine goroutine only, so no
// locking is needed.
type InputState struct {
	keys         map[KeyCode]bool
	keysPrev     map[KeyCode]bool
	buttons      map[MouseButton]bool
	buttonsPrev  map[MouseButton]bool
	cursorX      float64
	cursorY      float64
	scrollDeltaY float64
}

func NewInputState() *InputState {
	return &InputState{
		keys:        make(map[KeyCode]bool),
		keysPrev:    make(map[KeyCode]bool),
		buttons:     make(map[MouseButton]bool),
		buttonsPrev: make(map[MouseButton]bool),
	}
}

// BeginFrame snapshots the previous frame's state and clears per-frame deltas.
// Call before applying this frame's events.
func (in *InputState) BeginFrame() {
	for k, v := range in.keys {
		in.keysPrev[k] = v
	}
	for b, v := range in.buttons {
		in.buttonsPrev[b] = v
	}
	in.scrollDeltaY = 0
}

// Apply folds a drained event into the state. Non-input events are ignored.
func (in *InputState) Apply(e Event) {
	switch ev := e.(type) {
	case KeyEvent:
		in.keys[ev.Key] = ev.Pressed
	case MouseButtonEvent:
		in.buttons[ev.Button] = ev.Pressed
	case CursorMovedEvent:
		in.cursorX = ev.X
		in.cursorY = ev.Y
	case ScrollEvent:
		in.scrollDeltaY += ev.YOffset
	}
}

func (in *InputState) IsKeyDown(key KeyCode) bool {
	return in.keys[key]
}

// WasKeyPressed reports a down edge since the previous frame.
func (in *InputState) WasKeyPressed(key KeyCode) bool {
	return in.keys[key] && !in.keysPrev[key]
}

func (in *InputState) IsButtonDown(button MouseButton) bool {
	return in.buttons[button]
}

func (in *InputState) CursorPosition() (float64, float64) {
	return in.cursorX, in.cursorY
}

func (in *InputState) ScrollDelta() float64 {
	return in.scrollDeltaY
}
