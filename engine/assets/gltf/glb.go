package gltf

import (
	"encoding/binary"
	"io"

	"github.com/cockroachdb/errors"
)

// Binary glTF container constants.
const (
	glbMagic     = 0x46546c67 // "glTF"
	glbVersion   = 2
	glbChunkJSON = 0x4e4f534a // "JSON"
	glbChunkBIN  = 0x004e4942 // "BIN\0"
)

// IsGLB reports whether data starts with the binary glTF magic.
func IsGLB(data []byte) bool {
	return len(data) >= 4 && binary.LittleEndian.Uint32(data) == glbMagic
}

// DecodeGLB splits a binary glTF container into its JSON chunk and optional
// BIN chunk. bin is nil when the container has no binary chunk.
func DecodeGLB(data []byte) (jsonChunk, bin []byte, err error) {
	if len(data) < 12 {
		return nil, nil, errors.New("gltf: glb header truncated")
	}
	if binary.LittleEndian.Uint32(data) != glbMagic {
		return nil, nil, errors.New("gltf: bad glb magic")
	}
	if v := binary.LittleEndian.Uint32(data[4:]); v != glbVersion {
		return nil, nil, errors.Newf("gltf: unsupported glb version %d", v)
	}
	total := binary.LittleEndian.Uint32(data[8:])
	if int(total) > len(data) {
		return nil, nil, errors.New("gltf: glb length exceeds data")
	}

	off := 12
	for off+8 <= int(total) {
		clen := int(binary.LittleEndian.Uint32(data[off:]))
		ctype := binary.LittleEndian.Uint32(data[off+4:])
		off += 8
		if off+clen > int(total) {
			return nil, nil, errors.New("gltf: glb chunk truncated")
		}
		switch ctype {
		case glbChunkJSON:
			jsonChunk = data[off : off+clen]
		case glbChunkBIN:
			bin = data[off : off+clen]
		}
		// Chunks are 4-byte aligned.
		off += (clen + 3) &^ 3
	}
	if jsonChunk == nil {
		return nil, nil, errors.New("gltf: glb has no JSON chunk")
	}
	return jsonChunk, bin, nil
}

// ReadGLB reads an entire binary glTF stream and splits it.
func ReadGLB(r io.Reader) (jsonChunk, bin []byte, err error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, errors.Wrap(err, "gltf: reading glb")
	}
	return DecodeGLB(data)
}
