package vulkan

import (
	"fmt"
	"math"
	"path/filepath"
	"runtime"
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"
	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/aero-boar/engine/assets"
	"github.com/spaghettifunk/aero-boar/engine/core"
	"github.com/spaghettifunk/aero-boar/engine/platform"
	"github.com/spaghettifunk/aero-boar/engine/resources"
)

const (
	vertexShaderFile   = "shaders/builtin.vert.spv"
	fragmentShaderFile = "shaders/builtin.frag.spv"
)

// pushConstantBlock is the per-draw data handed to the shaders. 80 bytes,
// within the guaranteed 128 byte push constant budget.
type pushConstantBlock struct {
	MVP       mgl32.Mat4
	BaseColor mgl32.Vec4
}

// Config selects backend behavior the application configures.
type Config struct {
	VSync      bool
	Validation bool
	AssetDir   string
}

type VulkanRenderer struct {
	platform *platform.Platform
	context  *VulkanContext

	cachedFramebufferWidth  uint32
	cachedFramebufferHeight uint32

	transfer *TransferEngine
	pipeline *VulkanPipeline

	assetDir string
	debug    bool
}

func New(p *platform.Platform, cfg *Config) (*VulkanRenderer, error) {
	assetDir := cfg.AssetDir
	if assetDir == "" {
		assetDir = "assets"
	}
	return &VulkanRenderer{
		platform: p,
		context: &VulkanContext{
			VSync: cfg.VSync,
			Device: &VulkanDevice{
				SwapchainSupport:   &VulkanSwapchainSupportInfo{},
				GraphicsQueueIndex: -1,
				PresentQueueIndex:  -1,
				TransferQueueIndex: -1,
			},
		},
		assetDir: assetDir,
		debug:    cfg.Validation,
	}, nil
}

func (vr *VulkanRenderer) Initialize(appName string, appWidth, appHeight uint32) error {
	procAddr := glfw.GetVulkanGetInstanceProcAddress()
	if procAddr == nil {
		err := fmt.Errorf("GetInstanceProcAddress is nil")
		core.LogError(err.Error())
		return err
	}
	vk.SetGetInstanceProcAddr(procAddr)

	if err := vk.Init(); err != nil {
		core.LogError("failed to initialize vulkan: %s", err)
		return err
	}

	vr.context.FramebufferWidth = appWidth
	vr.context.FramebufferHeight = appHeight

	appInfo := &vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		ApiVersion:         uint32(vk.MakeVersion(1, 0, 0)),
		ApplicationVersion: uint32(vk.MakeVersion(1, 0, 0)),
		PApplicationName:   VulkanSafeString(appName),
		PEngineName:        VulkanSafeString("Aero Boar Engine"),
	}

	createInfo := vk.InstanceCreateInfo{
		SType:            vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo: appInfo,
	}

	requiredExtensions := []string{"VK_KHR_surface"}
	requiredExtensions = append(requiredExtensions, vr.platform.GetRequiredExtensionNames()...)
	if runtime.GOOS == "darwin" {
		requiredExtensions = append(requiredExtensions,
			"VK_KHR_portability_enumeration",
			"VK_KHR_get_physical_device_properties2",
		)
		createInfo.Flags |= 1
	}
	if vr.debug {
		requiredExtensions = append(requiredExtensions, vk.ExtDebugReportExtensionName)
	}
	createInfo.EnabledExtensionCount = uint32(len(requiredExtensions))
	createInfo.PpEnabledExtensionNames = VulkanSafeStrings(requiredExtensions)

	var validationLayers []string
	if vr.debug {
		validationLayers = vr.availableValidationLayers()
	}
	createInfo.EnabledLayerCount = uint32(len(validationLayers))
	createInfo.PpEnabledLayerNames = VulkanSafeStrings(validationLayers)

	if res := vk.CreateInstance(&createInfo, vr.context.Allocator, &vr.context.Instance); res != vk.Success {
		err := fmt.Errorf("failed to create vulkan instance: %s", VulkanResultString(res))
		core.LogError(err.Error())
		return err
	}
	if err := vk.InitInstance(vr.context.Instance); err != nil {
		core.LogError(err.Error())
		return err
	}
	core.LogInfo("vulkan instance created")

	if vr.debug {
		debugCreateInfo := vk.DebugReportCallbackCreateInfo{
			SType:       vk.StructureTypeDebugReportCallbackCreateInfo,
			Flags:       vk.DebugReportFlags(vk.DebugReportErrorBit | vk.DebugReportWarningBit),
			PfnCallback: dbgCallbackFunc,
		}
		var dbg vk.DebugReportCallback
		if res := vk.CreateDebugReportCallback(vr.context.Instance, &debugCreateInfo, nil, &dbg); res != vk.Success {
			core.LogWarn("failed to create debug callback: %s", VulkanResultString(res))
		} else {
			vr.context.debugMessenger = dbg
		}
	}

	surface, err := vr.platform.CreateWindowSurface(vr.context.Instance)
	if err != nil {
		core.LogError("vulkan surface creation failed: %s", err)
		return err
	}
	vr.context.Surface = vk.SurfaceFromPointer(surface)
	core.LogDebug("vulkan surface created")

	if err := DeviceCreate(vr.context); err != nil {
		return err
	}

	sc, err := SwapchainCreate(vr.context, vr.context.FramebufferWidth, vr.context.FramebufferHeight)
	if err != nil {
		return err
	}
	vr.context.Swapchain = sc

	rp, err := RenderpassCreate(
		vr.context,
		0, 0, float32(vr.context.FramebufferWidth), float32(vr.context.FramebufferHeight),
		0.0, 0.0, 0.2, 1.0,
		1.0,
		0)
	if err != nil {
		return err
	}
	vr.context.MainRenderpass = rp

	vr.context.Swapchain.Framebuffers = make([]*VulkanFramebuffer, vr.context.Swapchain.ImageCount)
	if err := vr.regenerateFramebuffers(); err != nil {
		return err
	}

	if err := vr.createCommandBuffers(); err != nil {
		return err
	}

	// Per-frame sync objects. The render-finished semaphores are per image
	// and live with the swapchain.
	maxFrames := int(vr.context.Swapchain.MaxFramesInFlight)
	vr.context.ImageAvailableSemaphores = make([]vk.Semaphore, maxFrames)
	vr.context.InFlightFences = make([]*VulkanFence, maxFrames)
	for i := 0; i < maxFrames; i++ {
		semaphoreCreateInfo := vk.SemaphoreCreateInfo{
			SType: vk.StructureTypeSemaphoreCreateInfo,
		}
		if res := vk.CreateSemaphore(vr.context.Device.LogicalDevice, &semaphoreCreateInfo, vr.context.Allocator, &vr.context.ImageAvailableSemaphores[i]); res != vk.Success {
			err := fmt.Errorf("failed to create image available semaphore: %s", VulkanResultString(res))
			core.LogError(err.Error())
			return err
		}

		// Created signaled so the first frame does not wait on work that was
		// never submitted.
		f, err := NewFence(vr.context, true)
		if err != nil {
			return err
		}
		vr.context.InFlightFences[i] = f
	}

	// Weak per-image fence refs, nil while the image is not in flight.
	vr.context.ImagesInFlight = make([]*VulkanFence, vr.context.Swapchain.ImageCount)

	vr.transfer, err = NewTransferEngine(vr.context)
	if err != nil {
		return err
	}

	// Drawing is optional until compiled shaders are available; the frame
	// loop still clears and presents without them.
	if err := vr.createPipeline(); err != nil {
		core.LogWarn("shader pipeline unavailable, geometry will not draw: %s", err)
	}

	core.LogInfo("vulkan renderer initialized")
	return nil
}

func (vr *VulkanRenderer) Transfer() assets.Transfer {
	return vr.transfer
}

func (vr *VulkanRenderer) Shutdown() error {
	vk.DeviceWaitIdle(vr.context.Device.LogicalDevice)

	// Destroy in the opposite order of creation.
	if vr.transfer != nil {
		vr.transfer.Shutdown()
	}

	if vr.pipeline != nil {
		vr.pipeline.Destroy(vr.context)
		vr.pipeline = nil
	}

	for i := range vr.context.ImageAvailableSemaphores {
		if vr.context.ImageAvailableSemaphores[i] != vk.NullSemaphore {
			vk.DestroySemaphore(vr.context.Device.LogicalDevice, vr.context.ImageAvailableSemaphores[i], vr.context.Allocator)
		}
		vr.context.InFlightFences[i].FenceDestroy(vr.context)
	}
	vr.context.ImageAvailableSemaphores = nil
	vr.context.InFlightFences = nil
	vr.context.ImagesInFlight = nil

	for i := range vr.context.GraphicsCommandBuffers {
		if vr.context.GraphicsCommandBuffers[i] != nil && vr.context.GraphicsCommandBuffers[i].Handle != nil {
			vr.context.GraphicsCommandBuffers[i].Free(vr.context, vr.context.Device.GraphicsCommandPool)
		}
	}
	vr.context.GraphicsCommandBuffers = nil

	for i := range vr.context.Swapchain.Framebuffers {
		vr.context.Swapchain.Framebuffers[i].Destroy(vr.context)
	}

	vr.context.MainRenderpass.RenderpassDestroy(vr.context)
	vr.context.Swapchain.SwapchainDestroy(vr.context)

	core.LogDebug("destroying vulkan device")
	DeviceDestroy(vr.context)

	core.LogDebug("destroying vulkan surface")
	if vr.context.Surface != vk.NullSurface {
		vk.DestroySurface(vr.context.Instance, vr.context.Surface, vr.context.Allocator)
		vr.context.Surface = vk.NullSurface
	}

	if vr.debug && vr.context.debugMessenger != vk.NullDebugReportCallback {
		vk.DestroyDebugReportCallback(vr.context.Instance, vr.context.debugMessenger, vr.context.Allocator)
	}

	core.LogDebug("destroying vulkan instance")
	vk.DestroyInstance(vr.context.Instance, vr.context.Allocator)
	return nil
}

// Resized only records the new size. The swapchain rebuild happens at the
// start of the next frame so it never races in-flight work.
func (vr *VulkanRenderer) Resized(width, height uint32) error {
	vr.cachedFramebufferWidth = width
	vr.cachedFramebufferHeight = height
	vr.context.FramebufferSizeGeneration++

	core.LogInfo("vulkan backend resized: w/h/gen: %d/%d/%d", width, height, vr.context.FramebufferSizeGeneration)
	return nil
}

func (vr *VulkanRenderer) BeginFrame(deltaTime float64) error {
	device := vr.context.Device

	// Booting out while a recreation is underway.
	if vr.context.RecreatingSwapchain {
		if result := vk.DeviceWaitIdle(device.LogicalDevice); !VulkanResultIsSuccess(result) {
			err := fmt.Errorf("begin frame device wait idle failed: %s", VulkanResultString(result))
			core.LogError(err.Error())
			return err
		}
		return core.ErrSwapchainBooting
	}

	// A resize happened since the swapchain was last built.
	if vr.context.FramebufferSizeGeneration != vr.context.FramebufferSizeLastGeneration {
		if result := vk.DeviceWaitIdle(device.LogicalDevice); !VulkanResultIsSuccess(result) {
			err := fmt.Errorf("begin frame device wait idle failed: %s", VulkanResultString(result))
			core.LogError(err.Error())
			return err
		}
		// Recreation fails while the window is minimized; either way this
		// frame is skipped.
		vr.recreateSwapchain()
		return core.ErrSwapchainBooting
	}

	// Wait for the frame that used this slot two frames ago.
	if !vr.context.InFlightFences[vr.context.CurrentFrame].FenceWait(vr.context, math.MaxUint64) {
		err := fmt.Errorf("in-flight fence wait failure")
		core.LogError(err.Error())
		return err
	}

	imageIndex, err := vr.context.Swapchain.SwapchainAcquireNextImageIndex(
		vr.context,
		math.MaxUint64,
		vr.context.ImageAvailableSemaphores[vr.context.CurrentFrame],
		vk.NullFence)
	if err != nil {
		if errors.Is(err, core.ErrSwapchainBooting) {
			vr.recreateSwapchain()
			return core.ErrSwapchainBooting
		}
		return err
	}
	vr.context.ImageIndex = imageIndex

	commandBuffer := vr.context.GraphicsCommandBuffers[vr.context.ImageIndex]
	commandBuffer.Reset()
	if err := commandBuffer.Begin(false, false, false); err != nil {
		return err
	}

	viewport := vk.Viewport{
		X:        0.0,
		Y:        0.0,
		Width:    float32(vr.context.FramebufferWidth),
		Height:   float32(vr.context.FramebufferHeight),
		MinDepth: 0.0,
		MaxDepth: 1.0,
	}
	scissor := vk.Rect2D{
		Extent: vk.Extent2D{
			Width:  vr.context.FramebufferWidth,
			Height: vr.context.FramebufferHeight,
		},
	}
	vk.CmdSetViewport(commandBuffer.Handle, 0, 1, []vk.Viewport{viewport})
	vk.CmdSetScissor(commandBuffer.Handle, 0, 1, []vk.Rect2D{scissor})

	vr.context.MainRenderpass.W = float32(vr.context.FramebufferWidth)
	vr.context.MainRenderpass.H = float32(vr.context.FramebufferHeight)
	vr.context.MainRenderpass.RenderpassBegin(commandBuffer, vr.context.Swapchain.Framebuffers[vr.context.ImageIndex].Handle)

	return nil
}

func (vr *VulkanRenderer) Render(models []*resources.Model, deltaTime float64) error {
	if vr.pipeline == nil || len(models) == 0 {
		return nil
	}
	commandBuffer := vr.context.GraphicsCommandBuffers[vr.context.ImageIndex]
	vr.pipeline.Bind(commandBuffer, vk.PipelineBindPointGraphics)

	aspect := float32(vr.context.FramebufferWidth) / float32(vr.context.FramebufferHeight)
	projection := mgl32.Perspective(mgl32.DegToRad(45), aspect, 0.1, 1000.0)
	// Vulkan clip space has an inverted Y relative to OpenGL.
	projection[5] *= -1
	view := mgl32.LookAtV(
		mgl32.Vec3{0, 2, 4},
		mgl32.Vec3{0, 0, 0},
		mgl32.Vec3{0, 1, 0})
	viewProjection := projection.Mul4(view)

	for _, model := range models {
		if model == nil || !model.IsLoaded || model.RootNode == nil {
			continue
		}
		vr.drawNode(commandBuffer, model, model.RootNode, mgl32.Ident4(), viewProjection)
	}
	return nil
}

func (vr *VulkanRenderer) drawNode(commandBuffer *VulkanCommandBuffer, model *resources.Model, node *resources.Node, parentTransform, viewProjection mgl32.Mat4) {
	worldTransform := parentTransform.Mul4(node.Transform)

	for _, meshIndex := range node.MeshIndices {
		if int(meshIndex) >= len(model.Meshes) {
			continue
		}
		mesh := &model.Meshes[meshIndex]
		vb, vbOK := meshBuffer(mesh.VertexBuffer)
		ib, ibOK := meshBuffer(mesh.IndexBuffer)
		if !vbOK || !ibOK {
			continue
		}

		block := pushConstantBlock{
			MVP:       viewProjection.Mul4(worldTransform),
			BaseColor: mgl32.Vec4{1, 1, 1, 1},
		}
		if int(mesh.MaterialIndex) < len(model.Materials) {
			block.BaseColor = model.Materials[mesh.MaterialIndex].BaseColorFactor
		}

		vk.CmdPushConstants(
			commandBuffer.Handle,
			vr.pipeline.PipelineLayout,
			vk.ShaderStageFlags(vk.ShaderStageVertexBit)|vk.ShaderStageFlags(vk.ShaderStageFragmentBit),
			0,
			uint32(unsafe.Sizeof(block)),
			unsafe.Pointer(&block))

		vk.CmdBindVertexBuffers(commandBuffer.Handle, 0, 1, []vk.Buffer{vb.Handle}, []vk.DeviceSize{0})
		vk.CmdBindIndexBuffer(commandBuffer.Handle, ib.Handle, 0, vk.IndexTypeUint32)
		vk.CmdDrawIndexed(commandBuffer.Handle, uint32(len(mesh.Indices)), 1, 0, 0, 0)
	}

	for _, child := range node.Children {
		vr.drawNode(commandBuffer, model, child, worldTransform, viewProjection)
	}
}

func meshBuffer(buffer *resources.GPUBuffer) (*VulkanBuffer, bool) {
	if buffer == nil {
		return nil, false
	}
	internal, ok := buffer.InternalData.(*VulkanBuffer)
	return internal, ok
}

func (vr *VulkanRenderer) EndFrame(deltaTime float64) error {
	commandBuffer := vr.context.GraphicsCommandBuffers[vr.context.ImageIndex]

	vr.context.MainRenderpass.RenderpassEnd(commandBuffer)
	if err := commandBuffer.End(); err != nil {
		return err
	}

	// Make sure the previous frame is not still using this image.
	if vr.context.ImagesInFlight[vr.context.ImageIndex] != nil {
		vr.context.ImagesInFlight[vr.context.ImageIndex].FenceWait(vr.context, math.MaxUint64)
	}

	// Mark the image as in use by this frame.
	vr.context.ImagesInFlight[vr.context.ImageIndex] = vr.context.InFlightFences[vr.context.CurrentFrame]

	if err := vr.context.InFlightFences[vr.context.CurrentFrame].FenceReset(vr.context); err != nil {
		return err
	}

	// Wait for the image before color writes, signal the image's own
	// render-finished semaphore for present.
	submitInfo := vk.SubmitInfo{
		SType:                vk.StructureTypeSubmitInfo,
		CommandBufferCount:   1,
		PCommandBuffers:      []vk.CommandBuffer{commandBuffer.Handle},
		WaitSemaphoreCount:   1,
		PWaitSemaphores:      []vk.Semaphore{vr.context.ImageAvailableSemaphores[vr.context.CurrentFrame]},
		PWaitDstStageMask:    []vk.PipelineStageFlags{vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit)},
		SignalSemaphoreCount: 1,
		PSignalSemaphores:    []vk.Semaphore{vr.context.Swapchain.RenderFinishedSemaphores[vr.context.ImageIndex]},
	}

	if result := vk.QueueSubmit(vr.context.Device.GraphicsQueue, 1, []vk.SubmitInfo{submitInfo}, vr.context.InFlightFences[vr.context.CurrentFrame].Handle); result != vk.Success {
		err := fmt.Errorf("queue submit failed: %s", VulkanResultString(result))
		core.LogError(err.Error())
		return err
	}
	commandBuffer.UpdateSubmitted()

	err := vr.context.Swapchain.SwapchainPresent(
		vr.context,
		vr.context.Device.PresentQueue,
		vr.context.Swapchain.RenderFinishedSemaphores[vr.context.ImageIndex],
		vr.context.ImageIndex)
	if err != nil {
		if errors.Is(err, core.ErrSwapchainBooting) {
			vr.recreateSwapchain()
			return core.ErrSwapchainBooting
		}
		return err
	}
	return nil
}

func (vr *VulkanRenderer) createCommandBuffers() error {
	vr.context.GraphicsCommandBuffers = make([]*VulkanCommandBuffer, vr.context.Swapchain.ImageCount)
	for i := 0; i < int(vr.context.Swapchain.ImageCount); i++ {
		cb, err := NewVulkanCommandBuffer(vr.context, vr.context.Device.GraphicsCommandPool, true)
		if err != nil {
			return err
		}
		vr.context.GraphicsCommandBuffers[i] = cb
	}
	core.LogDebug("vulkan command buffers created")
	return nil
}

func (vr *VulkanRenderer) regenerateFramebuffers() error {
	swapchain := vr.context.Swapchain
	for i := 0; i < int(swapchain.ImageCount); i++ {
		attachments := []vk.ImageView{
			swapchain.Views[i],
			swapchain.DepthAttachment.View,
		}
		fb, err := FramebufferCreate(vr.context, vr.context.MainRenderpass, vr.context.FramebufferWidth, vr.context.FramebufferHeight, attachments)
		if err != nil {
			return err
		}
		swapchain.Framebuffers[i] = fb
	}
	return nil
}

func (vr *VulkanRenderer) recreateSwapchain() bool {
	if vr.context.RecreatingSwapchain {
		core.LogDebug("recreateSwapchain called while already recreating, booting")
		return false
	}
	width, height := recreateExtent(
		vr.cachedFramebufferWidth, vr.cachedFramebufferHeight,
		vr.context.FramebufferWidth, vr.context.FramebufferHeight)
	if width == 0 || height == 0 {
		core.LogDebug("recreateSwapchain called with a zero dimension, booting")
		return false
	}

	vr.context.RecreatingSwapchain = true
	vk.DeviceWaitIdle(vr.context.Device.LogicalDevice)

	// Release everything sized by the old image count before the count can
	// change.
	for i := range vr.context.ImagesInFlight {
		vr.context.ImagesInFlight[i] = nil
	}
	for i := range vr.context.GraphicsCommandBuffers {
		vr.context.GraphicsCommandBuffers[i].Free(vr.context, vr.context.Device.GraphicsCommandPool)
	}
	for i := range vr.context.Swapchain.Framebuffers {
		vr.context.Swapchain.Framebuffers[i].Destroy(vr.context)
	}

	DeviceQuerySwapchainSupport(vr.context.Device.PhysicalDevice, vr.context.Surface, vr.context.Device.SwapchainSupport)
	DeviceDetectDepthFormat(vr.context.Device)

	sc, err := vr.context.Swapchain.SwapchainRecreate(vr.context, width, height)
	if err != nil {
		vr.context.RecreatingSwapchain = false
		return false
	}
	vr.context.Swapchain = sc

	vr.context.FramebufferWidth = width
	vr.context.FramebufferHeight = height
	vr.cachedFramebufferWidth = 0
	vr.cachedFramebufferHeight = 0
	vr.context.FramebufferSizeLastGeneration = vr.context.FramebufferSizeGeneration

	vr.context.MainRenderpass.X = 0
	vr.context.MainRenderpass.Y = 0
	vr.context.MainRenderpass.W = float32(vr.context.FramebufferWidth)
	vr.context.MainRenderpass.H = float32(vr.context.FramebufferHeight)

	// The new swapchain may have a different image count; resize everything
	// indexed by image.
	vr.context.ImagesInFlight = make([]*VulkanFence, sc.ImageCount)
	sc.Framebuffers = make([]*VulkanFramebuffer, sc.ImageCount)
	if err := vr.regenerateFramebuffers(); err != nil {
		vr.context.RecreatingSwapchain = false
		return false
	}
	if err := vr.createCommandBuffers(); err != nil {
		vr.context.RecreatingSwapchain = false
		return false
	}

	vr.context.RecreatingSwapchain = false
	core.LogInfo("swapchain recreated: %dx%d, %d images", vr.context.FramebufferWidth, vr.context.FramebufferHeight, sc.ImageCount)
	return true
}

// recreateExtent picks the size for a swapchain rebuild. A pending resize
// wins; without one, as with an out-of-date result after a display change,
// the current size is reused.
func recreateExtent(cachedWidth, cachedHeight, currentWidth, currentHeight uint32) (uint32, uint32) {
	if cachedWidth != 0 && cachedHeight != 0 {
		return cachedWidth, cachedHeight
	}
	return currentWidth, currentHeight
}

func (vr *VulkanRenderer) createPipeline() error {
	vert, err := NewShaderModule(vr.context, filepath.Join(vr.assetDir, vertexShaderFile), vk.ShaderStageVertexBit)
	if err != nil {
		return err
	}
	defer vert.Destroy(vr.context)

	frag, err := NewShaderModule(vr.context, filepath.Join(vr.assetDir, fragmentShaderFile), vk.ShaderStageFragmentBit)
	if err != nil {
		return err
	}
	defer frag.Destroy(vr.context)

	// Matches the interleaved vertex layout: position, normal, texcoord,
	// color.
	attributes := []vk.VertexInputAttributeDescription{
		{Location: 0, Binding: 0, Format: vk.FormatR32g32b32Sfloat, Offset: 0},
		{Location: 1, Binding: 0, Format: vk.FormatR32g32b32Sfloat, Offset: 12},
		{Location: 2, Binding: 0, Format: vk.FormatR32g32Sfloat, Offset: 24},
		{Location: 3, Binding: 0, Format: vk.FormatR32g32b32a32Sfloat, Offset: 32},
	}

	pipeline, err := NewGraphicsPipeline(vr.context, &VulkanPipelineConfig{
		Renderpass: vr.context.MainRenderpass,
		Stride:     resources.VertexSize,
		Attributes: attributes,
		Stages: []vk.PipelineShaderStageCreateInfo{
			vert.ShaderStageCreateInfo,
			frag.ShaderStageCreateInfo,
		},
		Viewport: vk.Viewport{
			Width:    float32(vr.context.FramebufferWidth),
			Height:   float32(vr.context.FramebufferHeight),
			MaxDepth: 1.0,
		},
		Scissor: vk.Rect2D{
			Extent: vk.Extent2D{
				Width:  vr.context.FramebufferWidth,
				Height: vr.context.FramebufferHeight,
			},
		},
		PushConstantSize: uint32(unsafe.Sizeof(pushConstantBlock{})),
	})
	if err != nil {
		return err
	}
	vr.pipeline = pipeline
	return nil
}

func (vr *VulkanRenderer) availableValidationLayers() []string {
	required := []string{"VK_LAYER_KHRONOS_validation"}

	var availableLayerCount uint32
	if res := vk.EnumerateInstanceLayerProperties(&availableLayerCount, nil); res != vk.Success {
		return nil
	}
	availableLayers := make([]vk.LayerProperties, availableLayerCount)
	if res := vk.EnumerateInstanceLayerProperties(&availableLayerCount, availableLayers); res != vk.Success {
		return nil
	}

	for _, want := range required {
		found := false
		for j := range availableLayers {
			availableLayers[j].Deref()
			end := FindFirstZeroInByteArray(availableLayers[j].LayerName[:])
			if want == string(availableLayers[j].LayerName[:end]) {
				found = true
				break
			}
		}
		if !found {
			core.LogWarn("validation layer %s not present, running without validation", want)
			return nil
		}
	}
	return required
}

func dbgCallbackFunc(flags vk.DebugReportFlags, objectType vk.DebugReportObjectType, object uint64, location uint64, messageCode int32, pLayerPrefix string, pMessage string, pUserData unsafe.Pointer) vk.Bool32 {
	switch {
	case flags&vk.DebugReportFlags(vk.DebugReportErrorBit) != 0:
		core.LogError("[%s] %d: %s", pLayerPrefix, messageCode, pMessage)
	case flags&vk.DebugReportFlags(vk.DebugReportWarningBit) != 0:
		core.LogWarn("[%s] %d: %s", pLayerPrefix, messageCode, pMessage)
	default:
		core.LogInfo("[%s] %d: %s", pLayerPrefix, messageCode, pMessage)
	}
	return vk.Bool32(vk.False)
}
