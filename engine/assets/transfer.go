package assets

import "github.com/spaghettifunk/aero-boar/engine/resources"

// BufferUsage selects which kind of device buffer a transfer creates.
type BufferUsage int

const (
	BufferUsageVertex BufferUsage = iota
	BufferUsageIndex
)

// Transfer moves asset data onto the device. The pipeline only ever sees this
// interface; the Vulkan backend provides the real implementation and tests
// substitute an in-memory one.
//
// Implementations must be safe for concurrent use, since load tasks running on
// the pool call these from worker goroutines.
type Transfer interface {
	// CreateBuffer creates a device buffer of the given size.
	CreateBuffer(size uint64, usage BufferUsage) (*resources.GPUBuffer, error)
	// UploadBufferData copies data into buffer at offset. Blocks until the
	// device owns the data.
	UploadBufferData(buffer *resources.GPUBuffer, offset uint64, data []byte) error
	// DestroyBuffer releases the buffer. Callers must guarantee the device is
	// no longer using it.
	DestroyBuffer(buffer *resources.GPUBuffer) error

	// CreateImage creates a sampled 2D RGBA8 image with a view and sampler.
	CreateImage(width, height uint32) (*resources.GPUImage, error)
	// UploadImageData stages pixels, copies them into the image and
	// transitions it to shader read. Blocks until the copy completes.
	UploadImageData(image *resources.GPUImage, pixels []byte) error
	// DestroyImage releases the image, its view and its sampler.
	DestroyImage(image *resources.GPUImage) error

	// Shutdown releases the transfer's own resources. Safe to call more than
	// once.
	Shutdown() error
}
