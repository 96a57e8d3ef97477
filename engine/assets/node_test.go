package assets

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/aero-boar/engine/assets/gltf"
)

func TestNodeTransformMatrix(t *testing.T) {
	// Column-major translation by (1, 2, 3).
	node := &gltf.Node{
		Matrix: []float64{
			1, 0, 0, 0,
			0, 1, 0, 0,
			0, 0, 1, 0,
			1, 2, 3, 1,
		},
	}

	got := nodeTransform(node)
	assert.Equal(t, mgl32.Translate3D(1, 2, 3), got)
}

func TestNodeTransformTRS(t *testing.T) {
	node := &gltf.Node{
		Translation: []float64{1, 0, 0},
		Scale:       []float64{2, 2, 2},
	}

	got := nodeTransform(node)
	want := mgl32.Translate3D(1, 0, 0).Mul4(mgl32.Scale3D(2, 2, 2))
	assert.Equal(t, want, got)

	// Translation applies after scale: origin maps to (1, 0, 0).
	p := got.Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	assert.InDelta(t, 1.0, float64(p.X()), 1e-6)
}

func TestNodeTransformQuaternionReorder(t *testing.T) {
	// glTF x,y,z,w for a 90 degree rotation around Y.
	s := float32(0.70710678)
	node := &gltf.Node{
		Rotation: []float64{0, float64(s), 0, float64(s)},
	}

	got := nodeTransform(node)
	want := mgl32.QuatRotate(mgl32.DegToRad(90), mgl32.Vec3{0, 1, 0}).Mat4()
	for i := range want {
		assert.InDelta(t, float64(want[i]), float64(got[i]), 1e-5)
	}
}

func TestBuildNodeTreeDefaultScene(t *testing.T) {
	scene := 0
	mesh := 0
	doc := &gltf.Document{
		Scene:  &scene,
		Scenes: []gltf.Scene{{Nodes: []int{0}}},
		Nodes: []gltf.Node{
			{Name: "parent", Children: []int{1}},
			{Name: "child", Mesh: &mesh},
		},
	}

	root := buildNodeTree(doc)
	require.NotNil(t, root)
	assert.Equal(t, "root", root.Name)
	assert.Equal(t, mgl32.Ident4(), root.Transform)

	require.Len(t, root.Children, 1)
	parent := root.Children[0]
	assert.Equal(t, "parent", parent.Name)
	require.Len(t, parent.Children, 1)
	assert.Equal(t, []uint32{0}, parent.Children[0].MeshIndices)
}

func TestBuildNodeTreeWithoutScenes(t *testing.T) {
	doc := &gltf.Document{
		Nodes: []gltf.Node{
			{Name: "a", Children: []int{1}},
			{Name: "b"},
			{Name: "c"},
		},
	}

	root := buildNodeTree(doc)
	// Only unparented nodes hang off the synthetic root.
	require.Len(t, root.Children, 2)
	assert.Equal(t, "a", root.Children[0].Name)
	assert.Equal(t, "c", root.Children[1].Name)
}
