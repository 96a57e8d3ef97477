package renderer

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/aero-boar/engine/assets"
	"github.com/spaghettifunk/aero-boar/engine/core"
	"github.com/spaghettifunk/aero-boar/engine/resources"
)

type fakeBackend struct {
	beginErr error
	endErr   error

	begins   int
	renders  int
	ends     int
	resizes  int
	shutdown bool

	lastWidth  uint32
	lastHeight uint32
}

func (f *fakeBackend) Initialize(appName string, width, height uint32) error { return nil }
func (f *fakeBackend) Shutdown() error {
	f.shutdown = true
	return nil
}
func (f *fakeBackend) Resized(width, height uint32) error {
	f.resizes++
	f.lastWidth, f.lastHeight = width, height
	return nil
}
func (f *fakeBackend) BeginFrame(deltaTime float64) error {
	f.begins++
	return f.beginErr
}
func (f *fakeBackend) Render(models []*resources.Model, deltaTime float64) error {
	f.renders++
	return nil
}
func (f *fakeBackend) EndFrame(deltaTime float64) error {
	f.ends++
	return f.endErr
}
func (f *fakeBackend) Transfer() assets.Transfer { return nil }

func TestDrawFrame(t *testing.T) {
	b := &fakeBackend{}
	r := newWithBackend(b)

	require.NoError(t, r.DrawFrame(&RenderPacket{DeltaTime: 0.016}))
	assert.Equal(t, 1, b.begins)
	assert.Equal(t, 1, b.renders)
	assert.Equal(t, 1, b.ends)
	assert.Equal(t, uint64(1), r.frameNumber)
}

func TestSuspendedSkipsDrawing(t *testing.T) {
	b := &fakeBackend{}
	r := newWithBackend(b)

	require.NoError(t, r.OnResized(0, 0))
	assert.Equal(t, 0, b.resizes, "zero size must not reach the backend")

	require.NoError(t, r.DrawFrame(&RenderPacket{}))
	assert.Equal(t, 0, b.begins)

	require.NoError(t, r.OnResized(800, 600))
	assert.Equal(t, 1, b.resizes)
	assert.Equal(t, uint32(800), b.lastWidth)

	require.NoError(t, r.DrawFrame(&RenderPacket{}))
	assert.Equal(t, 1, b.begins)
}

func TestSwapchainBootingIsSilent(t *testing.T) {
	b := &fakeBackend{beginErr: core.ErrSwapchainBooting}
	r := newWithBackend(b)

	require.NoError(t, r.DrawFrame(&RenderPacket{}))
	assert.Equal(t, 0, b.renders, "skipped frame must not render")
	assert.Equal(t, uint64(0), r.frameNumber)

	b.beginErr = nil
	require.NoError(t, r.DrawFrame(&RenderPacket{}))
	assert.Equal(t, 1, b.renders)
}

func TestStalePresentStillCounts(t *testing.T) {
	b := &fakeBackend{endErr: core.ErrSwapchainBooting}
	r := newWithBackend(b)

	// The frame was submitted before present noticed the stale swapchain.
	require.NoError(t, r.DrawFrame(&RenderPacket{}))
	assert.Equal(t, 1, b.renders)
	assert.Equal(t, uint64(1), r.frameNumber)
}

func TestDrawFramePropagatesFatalErrors(t *testing.T) {
	b := &fakeBackend{beginErr: errors.New("device lost")}
	r := newWithBackend(b)

	err := r.DrawFrame(&RenderPacket{})
	require.Error(t, err)
	assert.Equal(t, 0, b.renders)
}

func TestShutdown(t *testing.T) {
	b := &fakeBackend{}
	r := newWithBackend(b)
	require.NoError(t, r.Shutdown())
	assert.True(t, b.shutdown)
}
