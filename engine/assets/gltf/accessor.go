package gltf

import (
	"encoding/binary"
	"math"

	"github.com/cockroachdb/errors"
)

func componentSize(componentType int) int {
	switch componentType {
	case BYTE, UNSIGNED_BYTE:
		return 1
	case SHORT, UNSIGNED_SHORT:
		return 2
	case UNSIGNED_INT, FLOAT:
		return 4
	default:
		return 0
	}
}

func typeComponents(accessorType string) int {
	switch accessorType {
	case SCALAR:
		return 1
	case VEC2:
		return 2
	case VEC3:
		return 3
	case VEC4:
		return 4
	case MAT4:
		return 16
	default:
		return 0
	}
}

// accessorBytes returns the raw bytes of accessor idx along with its element
// stride. Sparse accessors are not supported.
func (f *File) accessorBytes(idx int) (data []byte, stride int, err error) {
	if idx < 0 || idx >= len(f.Doc.Accessors) {
		return nil, 0, errors.Newf("gltf: accessor index %d out of range", idx)
	}
	acc := &f.Doc.Accessors[idx]
	if acc.BufferView == nil {
		return nil, 0, errors.Newf("gltf: accessor %d has no buffer view", idx)
	}
	csize := componentSize(acc.ComponentType)
	ncomp := typeComponents(acc.Type)
	if csize == 0 || ncomp == 0 {
		return nil, 0, errors.Newf("gltf: accessor %d has unsupported type %s/%d", idx, acc.Type, acc.ComponentType)
	}

	view := &f.Doc.BufferViews[*acc.BufferView]
	stride = csize * ncomp
	if view.ByteStride != nil && *view.ByteStride != 0 {
		stride = *view.ByteStride
	}

	payload, err := f.viewBytes(*acc.BufferView)
	if err != nil {
		return nil, 0, err
	}
	need := acc.ByteOffset + (acc.Count-1)*stride + csize*ncomp
	if acc.Count > 0 && need > len(payload) {
		return nil, 0, errors.Newf("gltf: accessor %d exceeds buffer view", idx)
	}
	return payload[acc.ByteOffset:], stride, nil
}

// ReadIndices reads a scalar index accessor, widening 8 and 16 bit indices to
// uint32.
func (f *File) ReadIndices(idx int) ([]uint32, error) {
	acc := &f.Doc.Accessors[idx]
	if acc.Type != SCALAR {
		return nil, errors.Newf("gltf: index accessor %d is not scalar", idx)
	}
	data, stride, err := f.accessorBytes(idx)
	if err != nil {
		return nil, err
	}
	out := make([]uint32, acc.Count)
	switch acc.ComponentType {
	case UNSIGNED_BYTE:
		for i := 0; i < acc.Count; i++ {
			out[i] = uint32(data[i*stride])
		}
	case UNSIGNED_SHORT:
		for i := 0; i < acc.Count; i++ {
			out[i] = uint32(binary.LittleEndian.Uint16(data[i*stride:]))
		}
	case UNSIGNED_INT:
		for i := 0; i < acc.Count; i++ {
			out[i] = binary.LittleEndian.Uint32(data[i*stride:])
		}
	default:
		return nil, errors.Newf("gltf: index accessor %d has component type %d", idx, acc.ComponentType)
	}
	return out, nil
}

// ReadFloats reads a float accessor into a flat slice of count*components
// values, honoring interleaved strides.
func (f *File) ReadFloats(idx int) ([]float32, error) {
	acc := &f.Doc.Accessors[idx]
	if acc.ComponentType != FLOAT {
		return nil, errors.Newf("gltf: accessor %d is not float", idx)
	}
	data, stride, err := f.accessorBytes(idx)
	if err != nil {
		return nil, err
	}
	ncomp := typeComponents(acc.Type)
	out := make([]float32, 0, acc.Count*ncomp)
	for i := 0; i < acc.Count; i++ {
		base := i * stride
		for c := 0; c < ncomp; c++ {
			bits := binary.LittleEndian.Uint32(data[base+c*4:])
			out = append(out, math.Float32frombits(bits))
		}
	}
	return out, nil
}

// Components returns how many components one element of accessor idx has.
func (f *File) Components(idx int) int {
	if idx < 0 || idx >= len(f.Doc.Accessors) {
		return 0
	}
	return typeComponents(f.Doc.Accessors[idx].Type)
}
