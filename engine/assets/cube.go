package assets

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/spaghettifunk/aero-boar/engine/core"
	"github.com/spaghettifunk/aero-boar/engine/resources"
)

// CubeModelName is the cache key of the built-in test cube.
const CubeModelName = "cube"

// CreateCubeModel builds, uploads and caches a unit cube with a flat red
// material. Useful as first renderable content and as a fallback asset.
// Repeated calls return the cached instance.
func (l *ModelLoader) CreateCubeModel() (*resources.Model, error) {
	v, err, _ := l.group.Do(CubeModelName, func() (interface{}, error) {
		if m := l.GetModel(CubeModelName); m != nil && m.IsLoaded {
			return m, nil
		}
		model, err := l.buildCube()
		if err != nil {
			return nil, err
		}
		l.cache(CubeModelName, model)
		return model, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*resources.Model), nil
}

func (l *ModelLoader) buildCube() (*resources.Model, error) {
	core.LogInfo("creating built-in cube model")

	// Eight shared corners, half extent 0.5, normals pointing out of the
	// corners.
	corners := [8]mgl32.Vec3{
		{-0.5, -0.5, -0.5},
		{0.5, -0.5, -0.5},
		{0.5, 0.5, -0.5},
		{-0.5, 0.5, -0.5},
		{-0.5, -0.5, 0.5},
		{0.5, -0.5, 0.5},
		{0.5, 0.5, 0.5},
		{-0.5, 0.5, 0.5},
	}
	vertices := make([]resources.Vertex, len(corners))
	for i, c := range corners {
		vertices[i] = resources.Vertex{
			Position: c,
			Normal:   c.Normalize(),
			TexCoord: mgl32.Vec2{c.X() + 0.5, c.Y() + 0.5},
			Color:    mgl32.Vec4{1, 1, 1, 1},
		}
	}
	indices := []uint32{
		0, 1, 2, 2, 3, 0, // back
		4, 6, 5, 6, 4, 7, // front
		4, 0, 3, 3, 7, 4, // left
		1, 5, 6, 6, 2, 1, // right
		3, 2, 6, 6, 7, 3, // top
		4, 5, 1, 1, 0, 4, // bottom
	}

	mesh := resources.Mesh{
		Vertices:      vertices,
		Indices:       indices,
		MaterialIndex: 0,
	}
	if err := l.uploadMesh(&mesh); err != nil {
		return nil, err
	}

	model := &resources.Model{
		Name:   CubeModelName,
		Meshes: []resources.Mesh{mesh},
		Materials: []resources.Material{{
			BaseColorFactor: mgl32.Vec4{0.8, 0.2, 0.2, 1},
			MetallicFactor:  0,
			RoughnessFactor: 0.5,
		}},
		RootNode: &resources.Node{
			Name:        "cube",
			Transform:   mgl32.Ident4(),
			MeshIndices: []uint32{0},
		},
		IsLoaded: true,
	}
	return model, nil
}
