package rtao

import (
	"fmt"

	"github.com/gogpu/rtao/internal/shader"
	"github.com/gogpu/rtao/texture"
)

// Kernel identifies a built-in compute kernel.
type Kernel = shader.Kernel

// Built-in kernels.
const (
	KernelBilateralFilter = shader.KernelBilateralFilter
	KernelGather          = shader.KernelGather
)

// BindGroup binds textures and constants to the resources of one kernel by
// semantic name. Names are resolved through the kernel's binding table,
// which is built once per kernel.
type BindGroup struct {
	table    *shader.Table
	textures map[string]*texture.Texture

	// Params is the kernel's uniform block.
	Params shader.Params
}

// NewBindGroup returns an empty bind group for the kernel table t.
func NewBindGroup(t *shader.Table) *BindGroup {
	return &BindGroup{
		table:    t,
		textures: make(map[string]*texture.Texture, t.Len()),
	}
}

// Kernel returns the kernel the group binds.
func (b *BindGroup) Kernel() Kernel { return b.table.Kernel() }

// Bind attaches tex to the binding declared under name. It fails for names
// the kernel does not declare and for the uniform block, which is set
// through Params.
func (b *BindGroup) Bind(name string, tex *texture.Texture) error {
	binding, err := b.table.Lookup(name)
	if err != nil {
		return err
	}
	if binding.Access == shader.AccessUniform {
		return fmt.Errorf("rtao: %s is the uniform block of %s", name, b.Kernel())
	}
	b.textures[name] = tex
	return nil
}

// Texture returns the texture bound under name, or nil.
func (b *BindGroup) Texture(name string) *texture.Texture {
	return b.textures[name]
}

// Uniforms returns the encoded uniform block.
func (b *BindGroup) Uniforms() []byte {
	return b.Params.Encode()
}

// validate checks every resource binding is bound to a live texture with
// the expected channel count.
func (b *BindGroup) validate() error {
	for _, binding := range b.table.Resources() {
		tex := b.textures[binding.Name]
		switch {
		case tex == nil:
			return fmt.Errorf("%w: %s of %s", ErrMissingBinding, binding.Name, b.Kernel())
		case !tex.Valid():
			return fmt.Errorf("%s of %s: %w", binding.Name, b.Kernel(), texture.ErrReleased)
		case tex.Channels() != binding.Channels:
			return fmt.Errorf("%w: %s of %s wants %d channels, %s has %d",
				ErrFormatMismatch, binding.Name, b.Kernel(), binding.Channels, tex.Label(), tex.Channels())
		}
	}
	return nil
}

// snapshot retains the bound resources in slot order. On failure nothing
// stays retained.
func (b *BindGroup) snapshot() (map[string]*texture.Texture, []*texture.Texture, error) {
	if err := b.validate(); err != nil {
		return nil, nil, err
	}
	resources := b.table.Resources()
	bound := make(map[string]*texture.Texture, len(resources))
	held := make([]*texture.Texture, 0, len(resources))
	for _, binding := range resources {
		tex := b.textures[binding.Name]
		if err := tex.Retain(); err != nil {
			releaseAll(held)
			return nil, nil, fmt.Errorf("%s of %s: %w", binding.Name, b.Kernel(), err)
		}
		bound[binding.Name] = tex
		held = append(held, tex)
	}
	return bound, held, nil
}

func releaseAll(texs []*texture.Texture) {
	for _, t := range texs {
		t.Release()
	}
}
