package vulkan

import (
	"testing"

	vk "github.com/goki/vulkan"
	"github.com/stretchr/testify/assert"
)

func TestChoosePresentMode(t *testing.T) {
	modes := []vk.PresentMode{vk.PresentModeImmediate, vk.PresentModeMailbox, vk.PresentModeFifo}

	// Vsync on always presents FIFO, even with mailbox available.
	assert.Equal(t, vk.PresentModeFifo, choosePresentMode(modes, true))

	// Vsync off takes mailbox when the device offers it.
	assert.Equal(t, vk.PresentModeMailbox, choosePresentMode(modes, false))

	// Without mailbox there is nothing better than FIFO.
	fifoOnly := []vk.PresentMode{vk.PresentModeFifo}
	assert.Equal(t, vk.PresentModeFifo, choosePresentMode(fifoOnly, false))
	assert.Equal(t, vk.PresentModeFifo, choosePresentMode(nil, false))
}
