package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventQueueDrainOrder(t *testing.T) {
	eq := NewEventQueue()

	eq.Push(KeyEvent{Key: KEY_W, Pressed: true})
	eq.Push(ResizedEvent{Width: 800, Height: 600})
	eq.Push(QuitEvent{})

	events := eq.Drain()
	require.Len(t, events, 3)
	assert.Equal(t, KeyEvent{Key: KEY_W, Pressed: true}, events[0])
	assert.Equal(t, ResizedEvent{Width: 800, Height: 600}, events[1])
	assert.Equal(t, QuitEvent{}, events[2])

	// Drained queue is empty.
	assert.Nil(t, eq.Drain())
}

func TestEventQueueOverflowDrops(t *testing.T) {
	eq := NewEventQueue()

	for i := 0; i < maxQueuedEvents+10; i++ {
		eq.Push(CursorMovedEvent{X: float64(i)})
	}

	events := eq.Drain()
	assert.Len(t, events, maxQueuedEvents)
	// Oldest events survive; the overflow is dropped at the tail.
	assert.Equal(t, CursorMovedEvent{X: 0}, events[0])
}

func TestInputStateKeyEdges(t *testing.T) {
	in := NewInputState()

	in.BeginFrame()
	in.Apply(KeyEvent{Key: KEY_SPACE, Pressed: true})
	assert.True(t, in.IsKeyDown(KEY_SPACE))
	assert.True(t, in.WasKeyPressed(KEY_SPACE))

	// Held across a frame boundary is no longer an edge.
	in.BeginFrame()
	assert.True(t, in.IsKeyDown(KEY_SPACE))
	assert.False(t, in.WasKeyPressed(KEY_SPACE))

	in.Apply(KeyEvent{Key: KEY_SPACE, Pressed: false})
	assert.False(t, in.IsKeyDown(KEY_SPACE))
}

func TestInputStateScrollAccumulates(t *testing.T) {
	in := NewInputState()

	in.BeginFrame()
	in.Apply(ScrollEvent{YOffset: 1})
	in.Apply(ScrollEvent{YOffset: 2})
	assert.Equal(t, 3.0, in.ScrollDelta())

	// Reset on the next frame.
	in.BeginFrame()
	assert.Equal(t, 0.0, in.ScrollDelta())
}

func TestInputStateCursor(t *testing.T) {
	in := NewInputState()

	in.Apply(CursorMovedEvent{X: 12, Y: 34})
	x, y := in.CursorPosition()
	assert.Equal(t, 12.0, x)
	assert.Equal(t, 34.0, y)
}
