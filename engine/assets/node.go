package assets

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/spaghettifunk/aero-boar/engine/assets/gltf"
	"github.com/spaghettifunk/aero-boar/engine/resources"
)

// buildNodeTree converts the document's default scene into a node hierarchy
// under a synthetic identity root. Without a scene, every unparented node
// becomes a child of the root.
func buildNodeTree(doc *gltf.Document) *resources.Node {
	root := &resources.Node{
		Name:      "root",
		Transform: mgl32.Ident4(),
	}

	var roots []int
	switch {
	case doc.Scene != nil && *doc.Scene < len(doc.Scenes):
		roots = doc.Scenes[*doc.Scene].Nodes
	case len(doc.Scenes) > 0:
		roots = doc.Scenes[0].Nodes
	default:
		parented := make(map[int]bool)
		for i := range doc.Nodes {
			for _, c := range doc.Nodes[i].Children {
				parented[c] = true
			}
		}
		for i := range doc.Nodes {
			if !parented[i] {
				roots = append(roots, i)
			}
		}
	}

	for _, idx := range roots {
		if child := buildNode(doc, idx); child != nil {
			root.Children = append(root.Children, child)
		}
	}
	return root
}

func buildNode(doc *gltf.Document, idx int) *resources.Node {
	if idx < 0 || idx >= len(doc.Nodes) {
		return nil
	}
	src := &doc.Nodes[idx]
	node := &resources.Node{
		Name:      src.Name,
		Transform: nodeTransform(src),
	}
	if src.Mesh != nil {
		node.MeshIndices = []uint32{uint32(*src.Mesh)}
	}
	for _, c := range src.Children {
		if child := buildNode(doc, c); child != nil {
			node.Children = append(node.Children, child)
		}
	}
	return node
}

// nodeTransform returns the node's local transform, either its explicit
// column-major matrix or translation * rotation * scale.
func nodeTransform(n *gltf.Node) mgl32.Mat4 {
	if len(n.Matrix) == 16 {
		var m mgl32.Mat4
		for i, v := range n.Matrix {
			m[i] = float32(v)
		}
		return m
	}

	t := mgl32.Ident4()
	if len(n.Translation) == 3 {
		t = mgl32.Translate3D(
			float32(n.Translation[0]),
			float32(n.Translation[1]),
			float32(n.Translation[2]),
		)
	}
	r := mgl32.Ident4()
	if len(n.Rotation) == 4 {
		// glTF stores quaternions x,y,z,w.
		q := mgl32.Quat{
			W: float32(n.Rotation[3]),
			V: mgl32.Vec3{
				float32(n.Rotation[0]),
				float32(n.Rotation[1]),
				float32(n.Rotation[2]),
			},
		}
		r = q.Normalize().Mat4()
	}
	s := mgl32.Ident4()
	if len(n.Scale) == 3 {
		s = mgl32.Scale3D(
			float32(n.Scale[0]),
			float32(n.Scale[1]),
			float32(n.Scale[2]),
		)
	}
	return t.Mul4(r).Mul4(s)
}
