package animator

import (
	"encoding/binary"
	"math"
	"unsafe"
)

// GPUJointMatrix is the GPU-aligned representation of a single skinning matrix.
// Size: 64 bytes (mat4x4<f32>, std430 aligned).
type GPUJointMatrix struct {
	Matrix [16]float32 // offset 0, size 64 (mat4x4<f32>, column-major)
}

// Size returns the size of the GPUJointMatrix struct in bytes.
//
// Returns:
//   - int: The size of the struct in bytes.
func (g *GPUJointMatrix) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUJointMatrix struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 64-byte buffer ready for GPU upload.
func (g *GPUJointMatrix) Marshal() []byte {
	buf := make([]byte, 64)
	for i := range 16 {
		binary.LittleEndian.PutUint32(buf[i*4:(i+1)*4], math.Float32bits(g.Matrix[i]))
	}
	return buf
}

// GPUJointPalette is the GPU-aligned representation of an animator's full
// joint-matrix palette: a tightly packed array of mat4x4<f32>, one matrix per
// joint in skeleton joint order.
// Size: 64 bytes per joint (std430 aligned, no padding between matrices).
type GPUJointPalette struct {
	Matrices []float32 // column-major matrices, 16 floats per joint
}

// Size returns the size of the marshaled palette in bytes.
//
// Returns:
//   - int: The size of the palette in bytes (64 per joint).
func (g *GPUJointPalette) Size() int {
	return len(g.Matrices) * 4
}

// Marshal serializes the palette into a byte buffer suitable for GPU upload.
// Byte order is explicit little-endian; on trusted little-endian hosts
// common.SliceToBytes views the same data without copying.
//
// Returns:
//   - []byte: Size() bytes ready for GPU upload.
func (g *GPUJointPalette) Marshal() []byte {
	buf := make([]byte, g.Size())
	for i, f := range g.Matrices {
		binary.LittleEndian.PutUint32(buf[i*4:(i+1)*4], math.Float32bits(f))
	}
	return buf
}
