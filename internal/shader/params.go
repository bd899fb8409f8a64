package shader

import (
	"encoding/binary"
	"math"
)

// ParamsSize is the size in bytes of the DenoiseParams uniform block.
const ParamsSize = 64

// Named fields of the parameter block, addressable by host code.
const (
	FieldOutputTargetSize = "_OutputTargetSize"
	FieldFilterRadius     = "_DenoiserFilterRadius"
)

// Params mirrors the DenoiseParams uniform struct of both kernels.
type Params struct {
	OutputSize  [2]uint32
	GBufferSize [2]uint32
	InputSize   [2]uint32
	NoiseSize   [2]uint32

	Radius          float32
	NormalThreshold float32
	DepthThreshold  float32
	MaxPixelRadius  float32
	ProjectionScale float32
	FrameJitter     float32
	TapCount        uint32
}

// fieldOffsets maps named fields to their byte offsets in the block.
var fieldOffsets = map[string]int{
	FieldOutputTargetSize: 0,
	FieldFilterRadius:     32,
}

// FieldOffset returns the byte offset of a named parameter field.
func FieldOffset(name string) (int, bool) {
	off, ok := fieldOffsets[name]
	return off, ok
}

// Encode lays the parameters out as the WGSL uniform block (little-endian).
func (p *Params) Encode() []byte {
	buf := make([]byte, ParamsSize)
	le := binary.LittleEndian

	putSize := func(off int, v [2]uint32) {
		le.PutUint32(buf[off:], v[0])
		le.PutUint32(buf[off+4:], v[1])
	}
	putSize(fieldOffsets[FieldOutputTargetSize], p.OutputSize)
	putSize(8, p.GBufferSize)
	putSize(16, p.InputSize)
	putSize(24, p.NoiseSize)

	le.PutUint32(buf[fieldOffsets[FieldFilterRadius]:], math.Float32bits(p.Radius))
	le.PutUint32(buf[36:], math.Float32bits(p.NormalThreshold))
	le.PutUint32(buf[40:], math.Float32bits(p.DepthThreshold))
	le.PutUint32(buf[44:], math.Float32bits(p.MaxPixelRadius))
	le.PutUint32(buf[48:], math.Float32bits(p.ProjectionScale))
	le.PutUint32(buf[52:], math.Float32bits(p.FrameJitter))
	le.PutUint32(buf[56:], p.TapCount)
	return buf
}
