package vulkan

import (
	"fmt"
	"sync"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/aero-boar/engine/assets"
	"github.com/spaghettifunk/aero-boar/engine/core"
	"github.com/spaghettifunk/aero-boar/engine/resources"
)

// TransferEngine moves asset data onto the device. It owns a single fence and
// records single-use command buffers on the transfer queue; a mutex
// serializes the whole submit-and-wait path so concurrent load workers can
// call it safely. Each upload blocks its caller until the device owns the
// data, which keeps staging buffer lifetimes trivial.
type TransferEngine struct {
	context *VulkanContext

	mu    sync.Mutex
	fence *VulkanFence

	shutdownOnce sync.Once
}

// compile-time interface check
var _ assets.Transfer = (*TransferEngine)(nil)

func NewTransferEngine(context *VulkanContext) (*TransferEngine, error) {
	fence, err := NewFence(context, false)
	if err != nil {
		return nil, err
	}
	core.LogInfo("transfer engine initialized on queue family %d", context.Device.TransferQueueIndex)
	return &TransferEngine{
		context: context,
		fence:   fence,
	}, nil
}

// CreateBuffer creates a host-visible vertex or index buffer. Host-visible
// keeps UploadBufferData a plain map and copy.
func (te *TransferEngine) CreateBuffer(size uint64, usage assets.BufferUsage) (*resources.GPUBuffer, error) {
	var usageFlags vk.BufferUsageFlags
	switch usage {
	case assets.BufferUsageVertex:
		usageFlags = vk.BufferUsageFlags(vk.BufferUsageVertexBufferBit)
	case assets.BufferUsageIndex:
		usageFlags = vk.BufferUsageFlags(vk.BufferUsageIndexBufferBit)
	default:
		err := fmt.Errorf("unknown buffer usage %d", usage)
		core.LogError(err.Error())
		return nil, err
	}

	buffer, err := NewVulkanBuffer(
		te.context,
		size,
		usageFlags,
		vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit))
	if err != nil {
		return nil, err
	}

	return &resources.GPUBuffer{
		Size:         size,
		InternalData: buffer,
	}, nil
}

func (te *TransferEngine) UploadBufferData(buffer *resources.GPUBuffer, offset uint64, data []byte) error {
	internal, ok := buffer.InternalData.(*VulkanBuffer)
	if !ok {
		err := fmt.Errorf("buffer has no device allocation")
		core.LogError(err.Error())
		return err
	}
	te.mu.Lock()
	defer te.mu.Unlock()
	return internal.LoadData(te.context, offset, data)
}

func (te *TransferEngine) DestroyBuffer(buffer *resources.GPUBuffer) error {
	internal, ok := buffer.InternalData.(*VulkanBuffer)
	if !ok {
		return nil
	}
	te.mu.Lock()
	defer te.mu.Unlock()
	internal.Destroy(te.context)
	buffer.InternalData = nil
	return nil
}

// CreateImage creates a sampled RGBA8 image with a view and a linear repeat
// sampler.
func (te *TransferEngine) CreateImage(width, height uint32) (*resources.GPUImage, error) {
	image, err := ImageCreate(
		te.context,
		vk.ImageType2d,
		width,
		height,
		vk.FormatR8g8b8a8Unorm,
		vk.ImageTilingOptimal,
		vk.ImageUsageFlags(vk.ImageUsageTransferDstBit|vk.ImageUsageSampledBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit),
		true,
		vk.ImageAspectFlags(vk.ImageAspectColorBit))
	if err != nil {
		return nil, err
	}
	if err := image.SamplerCreate(te.context); err != nil {
		image.ImageDestroy(te.context)
		return nil, err
	}

	return &resources.GPUImage{
		Width:        width,
		Height:       height,
		InternalData: image,
	}, nil
}

// UploadImageData stages the pixels, copies them into the image on the
// transfer queue and leaves the image in the shader read layout. Blocks until
// the copy has completed on the device.
func (te *TransferEngine) UploadImageData(image *resources.GPUImage, pixels []byte) error {
	internal, ok := image.InternalData.(*VulkanImage)
	if !ok {
		err := fmt.Errorf("image has no device allocation")
		core.LogError(err.Error())
		return err
	}
	expected := uint64(image.Width) * uint64(image.Height) * 4
	if uint64(len(pixels)) < expected {
		err := fmt.Errorf("image upload needs %d bytes, got %d", expected, len(pixels))
		core.LogError(err.Error())
		return err
	}

	te.mu.Lock()
	defer te.mu.Unlock()

	staging, err := NewVulkanBuffer(
		te.context,
		expected,
		vk.BufferUsageFlags(vk.BufferUsageTransferSrcBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit))
	if err != nil {
		return err
	}
	defer staging.Destroy(te.context)

	if err := staging.LoadData(te.context, 0, pixels[:expected]); err != nil {
		return err
	}

	cb, err := AllocateAndBeginSingleUse(te.context, te.context.Device.TransferCommandPool)
	if err != nil {
		return err
	}

	if err := internal.TransitionLayout(cb, vk.ImageLayoutUndefined, vk.ImageLayoutTransferDstOptimal); err != nil {
		return err
	}
	internal.CopyFromBuffer(cb, staging)
	if err := internal.TransitionLayout(cb, vk.ImageLayoutTransferDstOptimal, vk.ImageLayoutShaderReadOnlyOptimal); err != nil {
		return err
	}

	return cb.EndSingleUse(te.context, te.context.Device.TransferCommandPool, te.context.Device.TransferQueue, te.fence)
}

func (te *TransferEngine) DestroyImage(image *resources.GPUImage) error {
	internal, ok := image.InternalData.(*VulkanImage)
	if !ok {
		return nil
	}
	te.mu.Lock()
	defer te.mu.Unlock()
	internal.ImageDestroy(te.context)
	image.InternalData = nil
	return nil
}

// Shutdown waits for in-flight transfers and releases the fence. Buffers and
// images created through the engine are owned by their models and must be
// destroyed before this is called.
func (te *TransferEngine) Shutdown() error {
	te.shutdownOnce.Do(func() {
		te.mu.Lock()
		defer te.mu.Unlock()
		vk.QueueWaitIdle(te.context.Device.TransferQueue)
		te.fence.FenceDestroy(te.context)
		core.LogInfo("transfer engine shut down")
	})
	return nil
}
