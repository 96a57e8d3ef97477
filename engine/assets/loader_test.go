package assets

import (
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/aero-boar/engine/resources"
)

// fakeTransfer satisfies Transfer with in-memory bookkeeping so loads run
// without a device.
type fakeTransfer struct {
	mu               sync.Mutex
	buffersCreated   int
	buffersDestroyed int
	imagesCreated    int
	imagesDestroyed  int
	bufferData       map[*resources.GPUBuffer][]byte
}

func newFakeTransfer() *fakeTransfer {
	return &fakeTransfer{bufferData: make(map[*resources.GPUBuffer][]byte)}
}

func (f *fakeTransfer) CreateBuffer(size uint64, usage BufferUsage) (*resources.GPUBuffer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.buffersCreated++
	b := &resources.GPUBuffer{Size: size, InternalData: struct{}{}}
	f.bufferData[b] = make([]byte, size)
	return b, nil
}

func (f *fakeTransfer) UploadBufferData(buffer *resources.GPUBuffer, offset uint64, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copy(f.bufferData[buffer][offset:], data)
	return nil
}

func (f *fakeTransfer) DestroyBuffer(buffer *resources.GPUBuffer) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.buffersDestroyed++
	delete(f.bufferData, buffer)
	return nil
}

func (f *fakeTransfer) CreateImage(width, height uint32) (*resources.GPUImage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.imagesCreated++
	return &resources.GPUImage{Width: width, Height: height, InternalData: struct{}{}}, nil
}

func (f *fakeTransfer) UploadImageData(image *resources.GPUImage, pixels []byte) error {
	return nil
}

func (f *fakeTransfer) DestroyImage(image *resources.GPUImage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.imagesDestroyed++
	return nil
}

func (f *fakeTransfer) Shutdown() error { return nil }

// writeTriangleGLTF writes a one-triangle document with a data URI buffer and
// returns its path.
func writeTriangleGLTF(t *testing.T, dir string) string {
	t.Helper()

	var payload []byte
	for _, p := range []float32{0, 0, 0, 1, 0, 0, 0, 1, 0} {
		payload = binary.LittleEndian.AppendUint32(payload, math.Float32bits(p))
	}
	posLen := len(payload)
	for _, i := range []uint16{0, 1, 2} {
		payload = binary.LittleEndian.AppendUint16(payload, i)
	}
	uri := "data:application/octet-stream;base64," + base64.StdEncoding.EncodeToString(payload)

	doc := fmt.Sprintf(`{
		"asset": {"version": "2.0"},
		"buffers": [{"uri": %q, "byteLength": %d}],
		"bufferViews": [
			{"buffer": 0, "byteOffset": 0, "byteLength": %d},
			{"buffer": 0, "byteOffset": %d, "byteLength": 6}
		],
		"accessors": [
			{"bufferView": 0, "componentType": 5126, "count": 3, "type": "VEC3"},
			{"bufferView": 1, "componentType": 5123, "count": 3, "type": "SCALAR"}
		],
		"materials": [{"pbrMetallicRoughness": {"baseColorFactor": [0.1, 0.2, 0.3, 1.0]}}],
		"meshes": [{"primitives": [{"attributes": {"POSITION": 0}, "indices": 1, "material": 0}]}],
		"nodes": [{"mesh": 0, "name": "tri"}],
		"scenes": [{"nodes": [0]}],
		"scene": 0
	}`, uri, len(payload), posLen, posLen)

	path := filepath.Join(dir, "tri.gltf")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))
	return path
}

func newTestLoader(t *testing.T) (*ModelLoader, *fakeTransfer) {
	t.Helper()
	ft := newFakeTransfer()
	l, err := NewModelLoader(ft, 2)
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.Shutdown() })
	return l, ft
}

func TestLoadModel(t *testing.T) {
	l, ft := newTestLoader(t)
	path := writeTriangleGLTF(t, t.TempDir())

	model, err := l.LoadModel(path)
	require.NoError(t, err)
	require.Len(t, model.Meshes, 1)
	assert.Len(t, model.Meshes[0].Vertices, 3)
	assert.Equal(t, []uint32{0, 1, 2}, model.Meshes[0].Indices)
	assert.NotNil(t, model.Meshes[0].VertexBuffer)
	assert.NotNil(t, model.Meshes[0].IndexBuffer)

	require.Len(t, model.Materials, 1)
	assert.InDelta(t, 0.2, model.Materials[0].BaseColorFactor.Y(), 1e-6)

	require.NotNil(t, model.RootNode)
	require.Len(t, model.RootNode.Children, 1)
	assert.Equal(t, "tri", model.RootNode.Children[0].Name)
	assert.Equal(t, mgl32.Ident4(), model.RootNode.Children[0].Transform)

	assert.True(t, l.IsModelLoaded(path))
	assert.Same(t, model, l.GetModel(path))
	assert.Equal(t, 2, ft.buffersCreated)

	// The uploaded bytes are exactly the interleaved vertex and index data.
	mesh := &model.Meshes[0]
	assert.Equal(t, resources.VertexBytes(mesh.Vertices), ft.bufferData[mesh.VertexBuffer])
	assert.Equal(t, resources.IndexBytes(mesh.Indices), ft.bufferData[mesh.IndexBuffer])
}

// writePartialFailureGLTF writes a document whose first mesh uploads fine and
// whose second mesh has an unsupported primitive mode. The material references
// a sourceless texture, so one placeholder image is uploaded before any mesh.
func writePartialFailureGLTF(t *testing.T, dir string) string {
	t.Helper()

	var payload []byte
	for _, p := range []float32{0, 0, 0, 1, 0, 0, 0, 1, 0} {
		payload = binary.LittleEndian.AppendUint32(payload, math.Float32bits(p))
	}
	posLen := len(payload)
	for _, i := range []uint16{0, 1, 2} {
		payload = binary.LittleEndian.AppendUint16(payload, i)
	}
	uri := "data:application/octet-stream;base64," + base64.StdEncoding.EncodeToString(payload)

	doc := fmt.Sprintf(`{
		"asset": {"version": "2.0"},
		"buffers": [{"uri": %q, "byteLength": %d}],
		"bufferViews": [
			{"buffer": 0, "byteOffset": 0, "byteLength": %d},
			{"buffer": 0, "byteOffset": %d, "byteLength": 6}
		],
		"accessors": [
			{"bufferView": 0, "componentType": 5126, "count": 3, "type": "VEC3"},
			{"bufferView": 1, "componentType": 5123, "count": 3, "type": "SCALAR"}
		],
		"textures": [{}],
		"materials": [{"pbrMetallicRoughness": {"baseColorTexture": {"index": 0}}}],
		"meshes": [
			{"primitives": [{"attributes": {"POSITION": 0}, "indices": 1, "material": 0}]},
			{"primitives": [{"attributes": {"POSITION": 0}, "mode": 1}]}
		],
		"nodes": [{"mesh": 0}],
		"scenes": [{"nodes": [0]}],
		"scene": 0
	}`, uri, len(payload), posLen, posLen)

	path := filepath.Join(dir, "partial.gltf")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))
	return path
}

func TestLoadModelPartialFailureReleasesUploads(t *testing.T) {
	l, ft := newTestLoader(t)
	path := writePartialFailureGLTF(t, t.TempDir())

	_, err := l.LoadModel(path)
	require.Error(t, err)
	assert.False(t, l.IsModelLoaded(path))

	// The placeholder texture and the first mesh's buffers went up before the
	// second mesh failed; all of them must come back down.
	assert.Equal(t, 1, ft.imagesCreated)
	assert.Equal(t, ft.imagesCreated, ft.imagesDestroyed)
	assert.Equal(t, 2, ft.buffersCreated)
	assert.Equal(t, ft.buffersCreated, ft.buffersDestroyed)
}

func TestLoadModelMissingFile(t *testing.T) {
	l, _ := newTestLoader(t)
	_, err := l.LoadModel(filepath.Join(t.TempDir(), "nope.gltf"))
	assert.Error(t, err)
	assert.False(t, l.IsModelLoaded("nope.gltf"))
}

func TestLoadModelMalformed(t *testing.T) {
	l, ft := newTestLoader(t)
	path := filepath.Join(t.TempDir(), "broken.gltf")
	require.NoError(t, os.WriteFile(path, []byte(`{"asset": {"version": "2.0"`), 0o644))

	f, err := l.LoadModelAsync(path)
	require.NoError(t, err)
	result := f.Wait()
	assert.False(t, result.Success)
	assert.NotEmpty(t, result.ErrorMessage)
	assert.Nil(t, result.Model)
	assert.False(t, l.IsModelLoaded(path))
	assert.Equal(t, 0, ft.buffersCreated)
}

func TestLoadModelAsync(t *testing.T) {
	l, _ := newTestLoader(t)
	path := writeTriangleGLTF(t, t.TempDir())

	f, err := l.LoadModelAsync(path)
	require.NoError(t, err)
	result := f.Wait()
	require.True(t, result.Success, result.ErrorMessage)
	assert.True(t, result.Model.IsLoaded)
}

func TestConcurrentLoadsShareOneUpload(t *testing.T) {
	l, ft := newTestLoader(t)
	path := writeTriangleGLTF(t, t.TempDir())

	const callers = 16
	models := make([]*resources.Model, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			m, err := l.LoadModel(path)
			assert.NoError(t, err)
			models[i] = m
		}(i)
	}
	wg.Wait()

	for i := 1; i < callers; i++ {
		assert.Same(t, models[0], models[i])
	}
	// One vertex buffer and one index buffer, no matter how many callers.
	assert.Equal(t, 2, ft.buffersCreated)
}

func TestCreateCubeModel(t *testing.T) {
	l, ft := newTestLoader(t)

	cube, err := l.CreateCubeModel()
	require.NoError(t, err)
	require.Len(t, cube.Meshes, 1)
	assert.Len(t, cube.Meshes[0].Vertices, 8)
	assert.Len(t, cube.Meshes[0].Indices, 36)
	assert.InDelta(t, 0.8, cube.Materials[0].BaseColorFactor.X(), 1e-6)
	assert.Equal(t, float32(0.5), cube.Materials[0].RoughnessFactor)

	again, err := l.CreateCubeModel()
	require.NoError(t, err)
	assert.Same(t, cube, again)
	assert.Equal(t, 2, ft.buffersCreated)

	assert.Same(t, cube, l.GetModel(CubeModelName))
}

func TestUnloadModel(t *testing.T) {
	l, ft := newTestLoader(t)
	path := writeTriangleGLTF(t, t.TempDir())

	_, err := l.LoadModel(path)
	require.NoError(t, err)
	require.NoError(t, l.UnloadModel(path))

	assert.Nil(t, l.GetModel(path))
	assert.Equal(t, ft.buffersCreated, ft.buffersDestroyed)

	// Unloading an unknown name is a no-op.
	assert.NoError(t, l.UnloadModel("missing"))
}

func TestShutdownDestroysModels(t *testing.T) {
	ft := newFakeTransfer()
	l, err := NewModelLoader(ft, 1)
	require.NoError(t, err)

	path := writeTriangleGLTF(t, t.TempDir())
	_, err = l.LoadModel(path)
	require.NoError(t, err)
	_, err = l.CreateCubeModel()
	require.NoError(t, err)

	require.NoError(t, l.Shutdown())
	assert.Equal(t, ft.buffersCreated, ft.buffersDestroyed)
	assert.Nil(t, l.GetModel(path))

	// Async loads fail once the pool is gone.
	_, err = l.LoadModelAsync(path)
	assert.ErrorIs(t, err, ErrPoolStopped)

	require.NoError(t, l.Shutdown())
}
