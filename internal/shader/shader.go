// Package shader holds the WGSL compute kernels of the denoiser, their
// semantic binding tables, and SPIR-V compilation through naga.
//
// The CPU kernels in internal/filter implement the same math; the WGSL
// sources are provided for hosts that own a real GPU device. The WGSL side
// reads every texture as array<f32>, so R16Float textures are uploaded
// widened to 32 bits per value.
package shader

import (
	_ "embed"
	"fmt"
	"sync"

	"github.com/gogpu/naga"
)

//go:embed shaders/bilateral_filter.wgsl
var bilateralFilterSource string

//go:embed shaders/gather.wgsl
var gatherSource string

// Kernel identifies one compute kernel of the denoiser.
type Kernel int

const (
	// KernelBilateralFilter blurs the noisy AO buffer guided by the G-buffer.
	KernelBilateralFilter Kernel = iota

	// KernelGather resolves the filtered buffer to the output resolution.
	KernelGather

	kernelCount
)

// Kernels lists all kernels in dispatch order.
var Kernels = []Kernel{KernelBilateralFilter, KernelGather}

// String returns the kernel name used in labels and logs.
func (k Kernel) String() string {
	switch k {
	case KernelBilateralFilter:
		return "bilateral_filter"
	case KernelGather:
		return "gather"
	default:
		return fmt.Sprintf("Kernel(%d)", int(k))
	}
}

// EntryPoint returns the WGSL entry point of the kernel.
func (Kernel) EntryPoint() string { return "main" }

// WorkgroupSize returns the kernel's @workgroup_size.
func (Kernel) WorkgroupSize() (x, y, z uint32) { return 8, 8, 1 }

// Valid reports whether k names a known kernel.
func (k Kernel) Valid() bool { return k >= 0 && k < kernelCount }

// Source returns the WGSL source of the kernel, or "" for unknown kernels.
func Source(k Kernel) string {
	switch k {
	case KernelBilateralFilter:
		return bilateralFilterSource
	case KernelGather:
		return gatherSource
	default:
		return ""
	}
}

type compiled struct {
	once  sync.Once
	spirv []uint32
	err   error
}

var spirvCache [kernelCount]compiled

// SPIRV compiles the kernel to SPIR-V on first use and caches the result.
func SPIRV(k Kernel) ([]uint32, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("shader: unknown kernel %v", k)
	}
	c := &spirvCache[k]
	c.once.Do(func() {
		c.spirv, c.err = compileSPIRV(Source(k))
		if c.err != nil {
			c.err = fmt.Errorf("shader: compile %s: %w", k, c.err)
		}
	})
	return c.spirv, c.err
}

// compileSPIRV turns WGSL into little-endian SPIR-V words.
func compileSPIRV(source string) ([]uint32, error) {
	code, err := naga.Compile(source)
	if err != nil {
		return nil, err
	}
	words := make([]uint32, len(code)/4)
	for i := range words {
		words[i] = uint32(code[i*4]) |
			uint32(code[i*4+1])<<8 |
			uint32(code[i*4+2])<<16 |
			uint32(code[i*4+3])<<24
	}
	return words, nil
}
