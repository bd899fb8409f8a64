package shader

import (
	"errors"
	"fmt"
	"slices"

	"github.com/gogpu/gputypes"
)

// Semantic binding names shared by the kernels.
const (
	NameParams       = "_DenoiseParams"
	NameGBuffer      = "_GBuffer"
	NameNoiseTexture = "_NoiseTexture"
	NameInput        = "_DenoiseInput"
	NameOutput       = "_DenoiseOutputRW"
)

// ErrUnknownBinding is returned when a name is not declared by a kernel.
var ErrUnknownBinding = errors.New("shader: unknown binding")

// Access describes how a kernel uses a binding.
type Access int

const (
	// AccessUniform is the constant parameter block.
	AccessUniform Access = iota
	// AccessRead is a read-only storage buffer.
	AccessRead
	// AccessReadWrite is a writable storage buffer.
	AccessReadWrite
)

func (a Access) String() string {
	switch a {
	case AccessUniform:
		return "uniform"
	case AccessRead:
		return "read"
	case AccessReadWrite:
		return "read_write"
	default:
		return fmt.Sprintf("Access(%d)", int(a))
	}
}

// Binding declares one resource slot of a kernel.
type Binding struct {
	Name   string
	Slot   uint32
	Access Access

	// Channels is the number of floats per texel expected in the buffer;
	// 0 for the uniform block.
	Channels int
}

var kernelBindings = [kernelCount][]Binding{
	KernelBilateralFilter: {
		{Name: NameParams, Slot: 0, Access: AccessUniform},
		{Name: NameGBuffer, Slot: 1, Access: AccessRead, Channels: 4},
		{Name: NameNoiseTexture, Slot: 2, Access: AccessRead, Channels: 1},
		{Name: NameInput, Slot: 3, Access: AccessRead, Channels: 1},
		{Name: NameOutput, Slot: 4, Access: AccessReadWrite, Channels: 1},
	},
	KernelGather: {
		{Name: NameParams, Slot: 0, Access: AccessUniform},
		{Name: NameInput, Slot: 1, Access: AccessRead, Channels: 1},
		{Name: NameOutput, Slot: 2, Access: AccessReadWrite, Channels: 1},
	},
}

// Bindings returns the kernel's bindings ordered by slot.
func Bindings(k Kernel) []Binding {
	if !k.Valid() {
		return nil
	}
	return slices.Clone(kernelBindings[k])
}

// LayoutEntries returns the bind group layout of the kernel.
//
// Every texture binding is a storage buffer of f32 values in row-major order,
// four per texel for the G-buffer and one per texel otherwise. R16Float
// textures hold half floats on the host, so they must be widened before
// upload (texture.Texture.Download returns float32 values ready to copy).
func LayoutEntries(k Kernel) []gputypes.BindGroupLayoutEntry {
	bindings := Bindings(k)
	entries := make([]gputypes.BindGroupLayoutEntry, len(bindings))
	for i, b := range bindings {
		var typ gputypes.BufferBindingType
		switch b.Access {
		case AccessUniform:
			typ = gputypes.BufferBindingTypeUniform
		case AccessRead:
			typ = gputypes.BufferBindingTypeReadOnlyStorage
		default:
			typ = gputypes.BufferBindingTypeStorage
		}
		entries[i] = gputypes.BindGroupLayoutEntry{
			Binding:    b.Slot,
			Visibility: gputypes.ShaderStageCompute,
			Buffer:     &gputypes.BufferBindingLayout{Type: typ},
		}
	}
	return entries
}

// Table resolves semantic binding names of one kernel to slots.
// A Table is immutable and safe for concurrent use.
type Table struct {
	kernel Kernel
	byName map[string]Binding
}

// BuildTable builds the name lookup for kernel k.
func BuildTable(k Kernel) *Table {
	t := &Table{kernel: k, byName: make(map[string]Binding)}
	for _, b := range Bindings(k) {
		t.byName[b.Name] = b
	}
	return t
}

// Kernel returns the kernel the table describes.
func (t *Table) Kernel() Kernel { return t.kernel }

// Len returns the number of bindings.
func (t *Table) Len() int { return len(t.byName) }

// Lookup returns the binding declared under name.
func (t *Table) Lookup(name string) (Binding, error) {
	b, ok := t.byName[name]
	if !ok {
		return Binding{}, fmt.Errorf("%w: %q in %s", ErrUnknownBinding, name, t.kernel)
	}
	return b, nil
}

// Resources returns the non-uniform bindings ordered by slot.
func (t *Table) Resources() []Binding {
	out := make([]Binding, 0, len(t.byName))
	for _, b := range Bindings(t.kernel) {
		if b.Access != AccessUniform {
			out = append(out, b)
		}
	}
	return out
}
