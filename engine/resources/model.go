package resources

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Vertex is the interleaved CPU-side layout uploaded to vertex buffers:
// position, normal, texcoord, color. 48 bytes.
type Vertex struct {
	Position mgl32.Vec3
	Normal   mgl32.Vec3
	TexCoord mgl32.Vec2
	Color    mgl32.Vec4
}

// VertexSize is the byte stride of one Vertex in a GPU buffer.
const VertexSize = 48

// GPUBuffer is an opaque handle to a device buffer. InternalData is owned by
// whichever transfer backend created it; it stays nil until upload succeeds.
type GPUBuffer struct {
	Size         uint64
	InternalData interface{}
}

// GPUImage is an opaque handle to a device image plus its view and sampler.
type GPUImage struct {
	Width        uint32
	Height       uint32
	InternalData interface{}
}

type Mesh struct {
	Vertices []Vertex
	Indices  []uint32

	VertexBuffer *GPUBuffer
	IndexBuffer  *GPUBuffer

	MaterialIndex uint32
}

type Material struct {
	BaseColorFactor mgl32.Vec4
	MetallicFactor  float32
	RoughnessFactor float32

	// Nil when the material has no texture or the upload has not completed.
	BaseColorTexture *GPUImage
}

type Node struct {
	Name        string
	Transform   mgl32.Mat4
	MeshIndices []uint32
	Children    []*Node
}

// Model owns its meshes, materials and node tree. Instances are shared between
// the asset pipeline cache and callers; destruction goes through the pipeline,
// never through the model itself.
type Model struct {
	Name      string
	Meshes    []Mesh
	Materials []Material
	RootNode  *Node

	// IsLoaded becomes true only after every mesh and material upload in the
	// model has completed.
	IsLoaded bool
}

// AssetLoadResult is the transient value a load task resolves to.
type AssetLoadResult struct {
	Model        *Model
	Success      bool
	ErrorMessage string
}

// DefaultMaterial is used when a mesh references no material.
func DefaultMaterial() Material {
	return Material{
		BaseColorFactor: mgl32.Vec4{1, 1, 1, 1},
		MetallicFactor:  0,
		RoughnessFactor: 1,
	}
}

// VertexBytes serializes vertices into the little-endian interleaved layout
// the vertex buffers use.
func VertexBytes(vertices []Vertex) []byte {
	out := make([]byte, 0, len(vertices)*VertexSize)
	put := func(f float32) {
		out = binary.LittleEndian.AppendUint32(out, math.Float32bits(f))
	}
	for i := range vertices {
		v := &vertices[i]
		put(v.Position[0])
		put(v.Position[1])
		put(v.Position[2])
		put(v.Normal[0])
		put(v.Normal[1])
		put(v.Normal[2])
		put(v.TexCoord[0])
		put(v.TexCoord[1])
		put(v.Color[0])
		put(v.Color[1])
		put(v.Color[2])
		put(v.Color[3])
	}
	return out
}

// IndexBytes serializes indices as little-endian uint32.
func IndexBytes(indices []uint32) []byte {
	out := make([]byte, 0, len(indices)*4)
	for _, idx := range indices {
		out = binary.LittleEndian.AppendUint32(out, idx)
	}
	return out
}
