package assets

import (
	"bytes"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"path/filepath"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"
	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/image/draw"
	"golang.org/x/sync/singleflight"

	"github.com/spaghettifunk/aero-boar/engine/assets/gltf"
	"github.com/spaghettifunk/aero-boar/engine/core"
	"github.com/spaghettifunk/aero-boar/engine/resources"
)

// ModelLoader parses glTF files, uploads their geometry and textures through
// the transfer and caches the resulting models by name. Loads for the same
// name are coalesced so a model is parsed and uploaded at most once no matter
// how many callers race for it.
type ModelLoader struct {
	transfer Transfer
	pool     *Pool

	mu     sync.RWMutex
	models map[string]*resources.Model

	group   singleflight.Group
	watcher *fsnotify.Watcher

	// watched maps an absolute file path back to the cache key it reloads.
	watchedMu sync.Mutex
	watched   map[string]string

	shutdownOnce sync.Once
}

// NewModelLoader creates a loader backed by the given transfer and worker
// count. A file watcher reloads models whose source files change on disk.
func NewModelLoader(transfer Transfer, workers int) (*ModelLoader, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		err = errors.Wrap(err, "creating asset watcher")
		core.LogError(err.Error())
		return nil, err
	}
	l := &ModelLoader{
		transfer: transfer,
		pool:     NewPool(workers),
		models:   make(map[string]*resources.Model),
		watcher:  watcher,
		watched:  make(map[string]string),
	}
	go l.watchLoop()
	return l, nil
}

// LoadModel loads the glTF file at path, uploads it and caches it under its
// path. Concurrent calls for the same path share one load.
func (l *ModelLoader) LoadModel(path string) (*resources.Model, error) {
	return l.load(path, path, false)
}

// LoadModelAsync schedules the load on the pool and returns a future.
func (l *ModelLoader) LoadModelAsync(path string) (*Future, error) {
	return l.pool.Submit(func() resources.AssetLoadResult {
		model, err := l.load(path, path, false)
		if err != nil {
			return resources.AssetLoadResult{ErrorMessage: err.Error()}
		}
		return resources.AssetLoadResult{Model: model, Success: true}
	})
}

// GetModel returns the cached model for name, or nil.
func (l *ModelLoader) GetModel(name string) *resources.Model {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.models[name]
}

// IsModelLoaded reports whether name is cached and fully uploaded.
func (l *ModelLoader) IsModelLoaded(name string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	m, ok := l.models[name]
	return ok && m.IsLoaded
}

// UnloadModel removes name from the cache and destroys its device resources.
// The caller must guarantee the device is no longer drawing the model.
func (l *ModelLoader) UnloadModel(name string) error {
	l.mu.Lock()
	model, ok := l.models[name]
	delete(l.models, name)
	l.mu.Unlock()
	if !ok {
		return nil
	}
	return l.destroyModel(model)
}

// Shutdown unloads every cached model and stops the pool and watcher. The
// transfer itself is owned by the caller and stays alive, since destroying
// models flows through it.
func (l *ModelLoader) Shutdown() error {
	var err error
	l.shutdownOnce.Do(func() {
		l.pool.Shutdown()
		if werr := l.watcher.Close(); werr != nil {
			core.LogWarn("closing asset watcher: %s", werr)
		}

		l.mu.Lock()
		models := l.models
		l.models = make(map[string]*resources.Model)
		l.mu.Unlock()

		for name, model := range models {
			if derr := l.destroyModel(model); derr != nil {
				core.LogError("unloading model %s: %s", name, derr)
				err = derr
			}
		}
	})
	return err
}

// load coalesces concurrent loads of the same name and consults the cache
// unless force is set, which rereads the file for hot reload.
func (l *ModelLoader) load(name, path string, force bool) (*resources.Model, error) {
	v, err, _ := l.group.Do(name, func() (interface{}, error) {
		if m := l.GetModel(name); m != nil && m.IsLoaded && !force {
			return m, nil
		}
		model, err := l.loadFromFile(name, path)
		if err != nil {
			return nil, err
		}
		l.cache(name, model)
		l.watch(path, name)
		return model, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*resources.Model), nil
}

func (l *ModelLoader) cache(name string, model *resources.Model) {
	l.mu.Lock()
	old := l.models[name]
	l.models[name] = model
	l.mu.Unlock()
	if old != nil && old != model {
		if err := l.destroyModel(old); err != nil {
			core.LogWarn("destroying replaced model %s: %s", name, err)
		}
	}
}

func (l *ModelLoader) loadFromFile(name, path string) (*resources.Model, error) {
	core.LogInfo("loading model %s from %s", name, path)
	file, err := gltf.Open(path)
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}

	model := &resources.Model{Name: name}
	err = l.processMaterials(file, model)
	if err == nil {
		err = l.processMeshes(file, model)
	}
	if err != nil {
		// Textures and buffers uploaded before the failure must not leak.
		if derr := l.destroyModel(model); derr != nil {
			core.LogWarn("releasing partial model %s: %s", name, derr)
		}
		return nil, err
	}
	model.RootNode = buildNodeTree(file.Doc)
	model.IsLoaded = true
	core.LogInfo("model %s loaded: %d meshes, %d materials", name, len(model.Meshes), len(model.Materials))
	return model, nil
}

func (l *ModelLoader) processMeshes(file *gltf.File, model *resources.Model) error {
	for mi := range file.Doc.Meshes {
		src := &file.Doc.Meshes[mi]
		if len(src.Primitives) == 0 {
			continue
		}
		// Only the first primitive of each mesh is consumed.
		prim := &src.Primitives[0]
		if prim.Mode != nil && *prim.Mode != gltf.TRIANGLES {
			return errors.Newf("mesh %d: only triangle primitives are supported", mi)
		}

		mesh, err := buildMesh(file, prim)
		if err != nil {
			return errors.Wrapf(err, "mesh %d", mi)
		}
		if err := l.uploadMesh(&mesh); err != nil {
			return errors.Wrapf(err, "uploading mesh %d", mi)
		}
		model.Meshes = append(model.Meshes, mesh)
	}
	return nil
}

func buildMesh(file *gltf.File, prim *gltf.Primitive) (resources.Mesh, error) {
	posAcc, ok := prim.Attributes["POSITION"]
	if !ok {
		return resources.Mesh{}, errors.New("primitive has no POSITION attribute")
	}
	positions, err := file.ReadFloats(posAcc)
	if err != nil {
		return resources.Mesh{}, err
	}
	count := len(positions) / 3

	var normals, texCoords, colors []float32
	if acc, ok := prim.Attributes["NORMAL"]; ok {
		if normals, err = file.ReadFloats(acc); err != nil {
			return resources.Mesh{}, err
		}
	}
	if acc, ok := prim.Attributes["TEXCOORD_0"]; ok {
		if texCoords, err = file.ReadFloats(acc); err != nil {
			return resources.Mesh{}, err
		}
	}
	if acc, ok := prim.Attributes["COLOR_0"]; ok && file.Doc.Accessors[acc].ComponentType == gltf.FLOAT {
		if colors, err = file.ReadFloats(acc); err != nil {
			return resources.Mesh{}, err
		}
		if file.Components(acc) == 3 {
			// Widen vec3 colors with opaque alpha.
			wide := make([]float32, 0, count*4)
			for i := 0; i < count; i++ {
				wide = append(wide, colors[i*3], colors[i*3+1], colors[i*3+2], 1)
			}
			colors = wide
		}
	}

	vertices := make([]resources.Vertex, count)
	for i := 0; i < count; i++ {
		v := &vertices[i]
		v.Position = mgl32.Vec3{positions[i*3], positions[i*3+1], positions[i*3+2]}
		v.Normal = mgl32.Vec3{0, 0, 1}
		if normals != nil {
			v.Normal = mgl32.Vec3{normals[i*3], normals[i*3+1], normals[i*3+2]}
		}
		if texCoords != nil {
			v.TexCoord = mgl32.Vec2{texCoords[i*2], texCoords[i*2+1]}
		}
		v.Color = mgl32.Vec4{1, 1, 1, 1}
		if colors != nil {
			v.Color = mgl32.Vec4{colors[i*4], colors[i*4+1], colors[i*4+2], colors[i*4+3]}
		}
	}

	mesh := resources.Mesh{Vertices: vertices}
	if prim.Indices != nil {
		if mesh.Indices, err = file.ReadIndices(*prim.Indices); err != nil {
			return resources.Mesh{}, err
		}
	} else {
		// Non-indexed geometry draws with a trivial index list.
		mesh.Indices = make([]uint32, count)
		for i := range mesh.Indices {
			mesh.Indices[i] = uint32(i)
		}
	}
	if prim.Material != nil {
		mesh.MaterialIndex = uint32(*prim.Material)
	}
	return mesh, nil
}

func (l *ModelLoader) uploadMesh(mesh *resources.Mesh) error {
	vertexData := resources.VertexBytes(mesh.Vertices)
	vb, err := l.transfer.CreateBuffer(uint64(len(vertexData)), BufferUsageVertex)
	if err != nil {
		return err
	}
	if err := l.transfer.UploadBufferData(vb, 0, vertexData); err != nil {
		return err
	}
	mesh.VertexBuffer = vb

	indexData := resources.IndexBytes(mesh.Indices)
	ib, err := l.transfer.CreateBuffer(uint64(len(indexData)), BufferUsageIndex)
	if err != nil {
		return err
	}
	if err := l.transfer.UploadBufferData(ib, 0, indexData); err != nil {
		return err
	}
	mesh.IndexBuffer = ib
	return nil
}

func (l *ModelLoader) processMaterials(file *gltf.File, model *resources.Model) error {
	if len(file.Doc.Materials) == 0 {
		model.Materials = []resources.Material{resources.DefaultMaterial()}
		return nil
	}
	for mi := range file.Doc.Materials {
		src := &file.Doc.Materials[mi]
		mat := resources.DefaultMaterial()
		pbr := &src.PBRMetallicRoughness
		if len(pbr.BaseColorFactor) == 4 {
			mat.BaseColorFactor = mgl32.Vec4{
				float32(pbr.BaseColorFactor[0]),
				float32(pbr.BaseColorFactor[1]),
				float32(pbr.BaseColorFactor[2]),
				float32(pbr.BaseColorFactor[3]),
			}
		}
		if pbr.MetallicFactor != nil {
			mat.MetallicFactor = float32(*pbr.MetallicFactor)
		} else {
			mat.MetallicFactor = 1
		}
		if pbr.RoughnessFactor != nil {
			mat.RoughnessFactor = float32(*pbr.RoughnessFactor)
		}
		if pbr.BaseColorTexture != nil {
			tex, err := l.loadTexture(file, pbr.BaseColorTexture.Index)
			if err != nil {
				return errors.Wrapf(err, "material %d", mi)
			}
			mat.BaseColorTexture = tex
		}
		model.Materials = append(model.Materials, mat)
	}
	return nil
}

func (l *ModelLoader) loadTexture(file *gltf.File, textureIndex int) (*resources.GPUImage, error) {
	if textureIndex < 0 || textureIndex >= len(file.Doc.Textures) {
		return nil, errors.Newf("texture index %d out of range", textureIndex)
	}
	tex := &file.Doc.Textures[textureIndex]
	if tex.Source == nil {
		// Untextured source, fall back to a flat white pixel.
		return l.placeholderTexture()
	}
	encoded, err := file.ImageBytes(*tex.Source)
	if err != nil {
		return nil, err
	}
	src, _, err := image.Decode(bytes.NewReader(encoded))
	if err != nil {
		return nil, errors.Wrapf(err, "decoding texture %d", textureIndex)
	}

	bounds := src.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(rgba, rgba.Bounds(), src, bounds.Min, draw.Src)

	return l.uploadTexture(uint32(bounds.Dx()), uint32(bounds.Dy()), rgba.Pix)
}

// placeholderTexture uploads a 1x1 opaque white image. Used when a material
// references a texture without a source.
func (l *ModelLoader) placeholderTexture() (*resources.GPUImage, error) {
	return l.uploadTexture(1, 1, []byte{255, 255, 255, 255})
}

func (l *ModelLoader) uploadTexture(width, height uint32, pixels []byte) (*resources.GPUImage, error) {
	img, err := l.transfer.CreateImage(width, height)
	if err != nil {
		return nil, err
	}
	if err := l.transfer.UploadImageData(img, pixels); err != nil {
		return nil, err
	}
	return img, nil
}

func (l *ModelLoader) destroyModel(model *resources.Model) error {
	var first error
	for i := range model.Meshes {
		mesh := &model.Meshes[i]
		if mesh.VertexBuffer != nil {
			if err := l.transfer.DestroyBuffer(mesh.VertexBuffer); err != nil && first == nil {
				first = err
			}
			mesh.VertexBuffer = nil
		}
		if mesh.IndexBuffer != nil {
			if err := l.transfer.DestroyBuffer(mesh.IndexBuffer); err != nil && first == nil {
				first = err
			}
			mesh.IndexBuffer = nil
		}
	}
	for i := range model.Materials {
		mat := &model.Materials[i]
		if mat.BaseColorTexture != nil {
			if err := l.transfer.DestroyImage(mat.BaseColorTexture); err != nil && first == nil {
				first = err
			}
			mat.BaseColorTexture = nil
		}
	}
	model.IsLoaded = false
	return first
}

func (l *ModelLoader) watch(path, name string) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return
	}
	l.watchedMu.Lock()
	_, already := l.watched[abs]
	l.watched[abs] = name
	l.watchedMu.Unlock()
	if already {
		return
	}
	// Watch the directory so editors that replace the file keep triggering.
	if err := l.watcher.Add(filepath.Dir(abs)); err != nil {
		core.LogWarn("watching %s: %s", path, err)
	}
}

func (l *ModelLoader) watchLoop() {
	for {
		select {
		case event, ok := <-l.watcher.Events:
			if !ok {
				return
			}
			if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) {
				continue
			}
			abs, err := filepath.Abs(event.Name)
			if err != nil {
				continue
			}
			l.watchedMu.Lock()
			name, ok := l.watched[abs]
			l.watchedMu.Unlock()
			if !ok {
				continue
			}
			core.LogInfo("model %s changed on disk, reloading", name)
			_, err = l.pool.Submit(func() resources.AssetLoadResult {
				if _, lerr := l.load(name, abs, true); lerr != nil {
					return resources.AssetLoadResult{ErrorMessage: lerr.Error()}
				}
				return resources.AssetLoadResult{Success: true}
			})
			if err != nil {
				core.LogWarn("reloading %s: %s", name, err)
			}
		case err, ok := <-l.watcher.Errors:
			if !ok {
				return
			}
			core.LogWarn("asset watcher: %s", err)
		}
	}
}
