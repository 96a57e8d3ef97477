package vulkan

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecreateExtent(t *testing.T) {
	// A pending resize wins over the current size.
	w, h := recreateExtent(1920, 1080, 1280, 720)
	assert.Equal(t, uint32(1920), w)
	assert.Equal(t, uint32(1080), h)

	// An out-of-date swapchain with no resize event rebuilds at the current
	// size instead of skipping frames forever.
	w, h = recreateExtent(0, 0, 1280, 720)
	assert.Equal(t, uint32(1280), w)
	assert.Equal(t, uint32(720), h)

	// Nothing usable at all still reports zero so the caller can boot.
	w, h = recreateExtent(0, 0, 0, 0)
	assert.Zero(t, w)
	assert.Zero(t, h)
}
