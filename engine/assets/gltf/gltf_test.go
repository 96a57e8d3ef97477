package gltf

import (
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// quadPayload builds the binary payload for a unit quad: four vec3 positions
// followed by six uint16 indices.
func quadPayload() ([]byte, int, int) {
	positions := []float32{
		0, 0, 0,
		1, 0, 0,
		1, 1, 0,
		0, 1, 0,
	}
	indices := []uint16{0, 1, 2, 2, 3, 0}

	var buf []byte
	for _, p := range positions {
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(p))
	}
	posLen := len(buf)
	for _, i := range indices {
		buf = binary.LittleEndian.AppendUint16(buf, i)
	}
	return buf, posLen, len(buf) - posLen
}

func quadJSON(bufferURI string, bufferLen, posLen, idxLen int) string {
	return fmt.Sprintf(`{
		"asset": {"version": "2.0"},
		"buffers": [{"uri": %q, "byteLength": %d}],
		"bufferViews": [
			{"buffer": 0, "byteOffset": 0, "byteLength": %d},
			{"buffer": 0, "byteOffset": %d, "byteLength": %d}
		],
		"accessors": [
			{"bufferView": 0, "componentType": 5126, "count": 4, "type": "VEC3"},
			{"bufferView": 1, "componentType": 5123, "count": 6, "type": "SCALAR"}
		],
		"meshes": [{"primitives": [{"attributes": {"POSITION": 0}, "indices": 1}]}],
		"nodes": [{"mesh": 0, "name": "quad"}],
		"scenes": [{"nodes": [0]}],
		"scene": 0
	}`, bufferURI, bufferLen, posLen, posLen, idxLen)
}

func writeQuadGLTF(t *testing.T) string {
	t.Helper()
	payload, posLen, idxLen := quadPayload()
	uri := "data:application/octet-stream;base64," + base64.StdEncoding.EncodeToString(payload)

	path := filepath.Join(t.TempDir(), "quad.gltf")
	err := os.WriteFile(path, []byte(quadJSON(uri, len(payload), posLen, idxLen)), 0o644)
	require.NoError(t, err)
	return path
}

func TestDecodeRejectsMissingVersion(t *testing.T) {
	_, err := Decode(strings.NewReader(`{"asset": {}}`))
	assert.Error(t, err)
}

func TestOpenDataURI(t *testing.T) {
	f, err := Open(writeQuadGLTF(t))
	require.NoError(t, err)

	require.Len(t, f.Doc.Meshes, 1)
	prim := f.Doc.Meshes[0].Primitives[0]
	posAcc, ok := prim.Attributes["POSITION"]
	require.True(t, ok)

	floats, err := f.ReadFloats(posAcc)
	require.NoError(t, err)
	assert.Len(t, floats, 12)
	assert.Equal(t, float32(1), floats[3])

	require.NotNil(t, prim.Indices)
	indices, err := f.ReadIndices(*prim.Indices)
	require.NoError(t, err)
	assert.Equal(t, []uint32{0, 1, 2, 2, 3, 0}, indices)
}

func TestOpenExternalBuffer(t *testing.T) {
	payload, posLen, idxLen := quadPayload()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "quad.bin"), payload, 0o644))

	path := filepath.Join(dir, "quad.gltf")
	require.NoError(t, os.WriteFile(path, []byte(quadJSON("quad.bin", len(payload), posLen, idxLen)), 0o644))

	f, err := Open(path)
	require.NoError(t, err)
	indices, err := f.ReadIndices(1)
	require.NoError(t, err)
	assert.Len(t, indices, 6)
}

func TestOpenGLB(t *testing.T) {
	payload, posLen, idxLen := quadPayload()
	jsonChunk := []byte(quadJSON("", len(payload), posLen, idxLen))
	// The URI-less buffer resolves against the BIN chunk.
	jsonChunk = []byte(strings.Replace(string(jsonChunk), `"uri": "",`, "", 1))

	pad := func(b []byte, fill byte) []byte {
		for len(b)%4 != 0 {
			b = append(b, fill)
		}
		return b
	}
	jsonChunk = pad(jsonChunk, ' ')
	binChunk := pad(append([]byte(nil), payload...), 0)

	var glb []byte
	glb = binary.LittleEndian.AppendUint32(glb, glbMagic)
	glb = binary.LittleEndian.AppendUint32(glb, glbVersion)
	glb = binary.LittleEndian.AppendUint32(glb, uint32(12+8+len(jsonChunk)+8+len(binChunk)))
	glb = binary.LittleEndian.AppendUint32(glb, uint32(len(jsonChunk)))
	glb = binary.LittleEndian.AppendUint32(glb, glbChunkJSON)
	glb = append(glb, jsonChunk...)
	glb = binary.LittleEndian.AppendUint32(glb, uint32(len(binChunk)))
	glb = binary.LittleEndian.AppendUint32(glb, glbChunkBIN)
	glb = append(glb, binChunk...)

	require.True(t, IsGLB(glb))

	path := filepath.Join(t.TempDir(), "quad.glb")
	require.NoError(t, os.WriteFile(path, glb, 0o644))

	f, err := Open(path)
	require.NoError(t, err)
	indices, err := f.ReadIndices(1)
	require.NoError(t, err)
	assert.Equal(t, []uint32{0, 1, 2, 2, 3, 0}, indices)
}

func TestIndexWidening(t *testing.T) {
	// u8 indices widen to uint32 without sign issues.
	payload := []byte{0, 1, 2, 255}
	uri := "data:application/octet-stream;base64," + base64.StdEncoding.EncodeToString(payload)
	doc := fmt.Sprintf(`{
		"asset": {"version": "2.0"},
		"buffers": [{"uri": %q, "byteLength": 4}],
		"bufferViews": [{"buffer": 0, "byteLength": 4}],
		"accessors": [{"bufferView": 0, "componentType": 5121, "count": 4, "type": "SCALAR"}]
	}`, uri)

	path := filepath.Join(t.TempDir(), "idx.gltf")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	f, err := Open(path)
	require.NoError(t, err)
	indices, err := f.ReadIndices(0)
	require.NoError(t, err)
	assert.Equal(t, []uint32{0, 1, 2, 255}, indices)
}
