package core

import (
	"sync"

	"github.com/spaghettifunk/aero-boar/engine/containers"
)

// Events carry typed payloads through a queue the engine drains once per loop
// iteration. The window layer is a producer only; it never calls back into the
// engine directly.

type KeyCode int

const (
	KEY_UNKNOWN KeyCode = iota
	KEY_ESCAPE
	KEY_SPACE
	KEY_W
	KEY_A
	KEY_S
	KEY_D
)

type MouseButton int

const (
	BUTTON_LEFT MouseButton = iota
	BUTTON_RIGHT
	BUTTON_MIDDLE
)

type Event interface {
	isEvent()
}

// QuitEvent shuts the application down on the next frame.
type QuitEvent struct{}

// ResizedEvent reports the new framebuffer size. Either dimension may be zero
// when the window is minimized.
type ResizedEvent struct {
	Width  uint32
	Height uint32
}

type KeyEvent struct {
	Key     KeyCode
	Pressed bool
}

type MouseButtonEvent struct {
	Button  MouseButton
	Pressed bool
}

type CursorMovedEvent struct {
	X float64
	Y float64
}

type ScrollEvent struct {
	XOffset float64
	YOffset float64
}

func (QuitEvent) isEvent()        {}
func (ResizedEvent) isEvent()     {}
func (KeyEvent) isEvent()         {}
func (MouseButtonEvent) isEvent() {}
func (CursorMovedEvent) isEvent() {}
func (ScrollEvent) isEvent()      {}

const maxQueuedEvents = 1024

type EventQueue struct {
	mu    sync.Mutex
	queue *containers.RingQueue[Event]
}

func NewEventQueue() *EventQueue {
	return &EventQueue{
		queue: containers.NewRingQueue[Event](maxQueuedEvents),
	}
}

// Push enqueues an event. If the queue is full the event is dropped with a
// warning; input starvation is preferable to blocking the window callbacks.
func (eq *EventQueue) Push(e Event) {
	eq.mu.Lock()
	defer eq.mu.Unlock()
	if err := eq.queue.Enqueue(e); err != nil {
		LogWarn("event queue full, dropping %T", e)
	}
}

// Drain removes and returns every queued event in FIFO order.
func (eq *EventQueue) Drain() []Event {
	eq.mu.Lock()
	defer eq.mu.Unlock()
	if eq.queue.IsEmpty() {
		return nil
	}
	events := make([]Event, 0, eq.queue.Len())
	for {
		e, err := eq.queue.Dequeue()
		if err != nil {
			break
		}
		events = append(events, e)
	}
	return events
}
