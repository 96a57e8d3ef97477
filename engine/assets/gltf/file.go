package gltf

import (
	"bytes"
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
)

// File is a decoded document together with its resolved buffer payloads.
type File struct {
	Doc *Document

	// bin[i] holds the payload of Doc.Buffers[i].
	bin [][]byte
	dir string
}

// Open decodes a .gltf or .glb file and resolves every buffer it references:
// GLB binary chunks, data URIs and external files relative to the document.
func Open(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "gltf: opening %s", path)
	}

	var embedded []byte
	jsonChunk := data
	if IsGLB(data) {
		jsonChunk, embedded, err = DecodeGLB(data)
		if err != nil {
			return nil, err
		}
	}

	doc, err := Decode(bytes.NewReader(jsonChunk))
	if err != nil {
		return nil, err
	}

	f := &File{
		Doc: doc,
		bin: make([][]byte, len(doc.Buffers)),
		dir: filepath.Dir(path),
	}
	for i := range doc.Buffers {
		payload, err := f.resolveBuffer(i, embedded)
		if err != nil {
			return nil, err
		}
		f.bin[i] = payload
	}
	return f, nil
}

func (f *File) resolveBuffer(i int, embedded []byte) ([]byte, error) {
	buf := &f.Doc.Buffers[i]
	switch {
	case buf.URI == "":
		// The GLB binary chunk backs the URI-less buffer (buffer 0).
		if embedded == nil {
			return nil, errors.Newf("gltf: buffer %d has no uri and no glb chunk", i)
		}
		if len(embedded) < buf.ByteLength {
			return nil, errors.Newf("gltf: glb chunk shorter than buffer %d", i)
		}
		return embedded[:buf.ByteLength], nil
	case strings.HasPrefix(buf.URI, "data:"):
		idx := strings.Index(buf.URI, ";base64,")
		if idx < 0 {
			return nil, errors.Newf("gltf: buffer %d has unsupported data uri", i)
		}
		payload, err := base64.StdEncoding.DecodeString(buf.URI[idx+len(";base64,"):])
		if err != nil {
			return nil, errors.Wrapf(err, "gltf: decoding buffer %d data uri", i)
		}
		return payload, nil
	default:
		payload, err := os.ReadFile(filepath.Join(f.dir, buf.URI))
		if err != nil {
			return nil, errors.Wrapf(err, "gltf: reading buffer %d", i)
		}
		return payload, nil
	}
}

// ImageBytes returns the encoded payload of image idx, either from its buffer
// view or from the file it references.
func (f *File) ImageBytes(idx int) ([]byte, error) {
	if idx < 0 || idx >= len(f.Doc.Images) {
		return nil, errors.Newf("gltf: image index %d out of range", idx)
	}
	img := &f.Doc.Images[idx]
	switch {
	case img.BufferView != nil:
		return f.viewBytes(*img.BufferView)
	case strings.HasPrefix(img.URI, "data:"):
		i := strings.Index(img.URI, ";base64,")
		if i < 0 {
			return nil, errors.Newf("gltf: image %d has unsupported data uri", idx)
		}
		payload, err := base64.StdEncoding.DecodeString(img.URI[i+len(";base64,"):])
		if err != nil {
			return nil, errors.Wrapf(err, "gltf: decoding image %d data uri", idx)
		}
		return payload, nil
	case img.URI != "":
		payload, err := os.ReadFile(filepath.Join(f.dir, img.URI))
		if err != nil {
			return nil, errors.Wrapf(err, "gltf: reading image %d", idx)
		}
		return payload, nil
	default:
		return nil, errors.Newf("gltf: image %d has no source", idx)
	}
}

func (f *File) viewBytes(idx int) ([]byte, error) {
	if idx < 0 || idx >= len(f.Doc.BufferViews) {
		return nil, errors.Newf("gltf: buffer view index %d out of range", idx)
	}
	view := &f.Doc.BufferViews[idx]
	if view.Buffer < 0 || view.Buffer >= len(f.bin) {
		return nil, errors.Newf("gltf: buffer index %d out of range", view.Buffer)
	}
	payload := f.bin[view.Buffer]
	end := view.ByteOffset + view.ByteLength
	if end > len(payload) {
		return nil, errors.Newf("gltf: buffer view %d exceeds buffer", idx)
	}
	return payload[view.ByteOffset:end], nil
}
