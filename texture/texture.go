// Package texture provides managed GPU-style buffers for the AO denoiser.
//
// A Texture is an owning handle over a 2D array of float texels. Handles are
// reference counted: the allocating owner holds one reference, and every
// in-flight command that binds the texture holds another. Backing storage is
// returned to its Arena only when the last reference is released, so an owner
// may drop a texture (for example on camera resize) while a previously
// submitted frame is still reading it.
//
// Half-precision formats (R16Float, RGBA16Float) store IEEE 754 binary16 bits
// and convert on Load/Store.
//
// Thread safety: Load and Store on distinct texels are safe for concurrent
// use. Retain and Release are safe for concurrent use.
package texture

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/gogpu/gputypes"
	"github.com/x448/float16"
)

// Common errors for texture operations.
var (
	// ErrInvalidDimensions is returned when width or height is non-positive.
	ErrInvalidDimensions = errors.New("texture: invalid dimensions")

	// ErrUnsupportedFormat is returned for formats outside the supported set.
	ErrUnsupportedFormat = errors.New("texture: unsupported format")

	// ErrReleased is returned when a released texture is used.
	ErrReleased = errors.New("texture: use of released texture")

	// ErrOutOfBounds is returned by checked accessors for coordinates outside the texture.
	ErrOutOfBounds = errors.New("texture: coordinates out of bounds")

	// ErrSizeMismatch is returned when uploaded data does not match the texture size.
	ErrSizeMismatch = errors.New("texture: size mismatch")
)

// Texture is a reference-counted 2D float buffer.
type Texture struct {
	label  string
	width  int
	height int
	format gputypes.TextureFormat
	info   FormatInfo

	store storage
	refs  atomic.Int32
	arena *Arena
}

// storage holds the backing slice for one texture; exactly one field is set.
type storage struct {
	f32 []float32
	f16 []uint16
}

func (s storage) len() int {
	if s.f16 != nil {
		return len(s.f16)
	}
	return len(s.f32)
}

// New allocates a texture outside any arena. The caller owns one reference.
func New(label string, width, height int, format gputypes.TextureFormat) (*Texture, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	info, ok := Info(format)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	return newTexture(label, width, height, format, info, makeStorage(width*height*info.Channels, info.Half), nil), nil
}

func newTexture(label string, width, height int, format gputypes.TextureFormat, info FormatInfo, s storage, arena *Arena) *Texture {
	t := &Texture{
		label:  label,
		width:  width,
		height: height,
		format: format,
		info:   info,
		store:  s,
		arena:  arena,
	}
	t.refs.Store(1)
	return t
}

func makeStorage(n int, half bool) storage {
	if half {
		return storage{f16: make([]uint16, n)}
	}
	return storage{f32: make([]float32, n)}
}

// Label returns the debug name given at allocation.
func (t *Texture) Label() string { return t.label }

// Width returns the width in texels.
func (t *Texture) Width() int { return t.width }

// Height returns the height in texels.
func (t *Texture) Height() int { return t.height }

// Format returns the texel format.
func (t *Texture) Format() gputypes.TextureFormat { return t.format }

// Channels returns the number of float channels per texel.
func (t *Texture) Channels() int { return t.info.Channels }

// Size returns the texture extent in GPU terms.
func (t *Texture) Size() gputypes.Extent3D {
	return gputypes.Extent3D{
		Width:              uint32(t.width),  //nolint:gosec // dimensions validated positive at allocation
		Height:             uint32(t.height), //nolint:gosec // dimensions validated positive at allocation
		DepthOrArrayLayers: 1,
	}
}

// Valid reports whether the texture still holds at least one reference.
func (t *Texture) Valid() bool {
	return t != nil && t.refs.Load() > 0
}

// Refs returns the current reference count.
func (t *Texture) Refs() int32 {
	return t.refs.Load()
}

// Retain adds a reference. It fails with ErrReleased if the texture has
// already dropped to zero references; a released texture is never revived.
func (t *Texture) Retain() error {
	for {
		n := t.refs.Load()
		if n <= 0 {
			return fmt.Errorf("%w: %s", ErrReleased, t.label)
		}
		if t.refs.CompareAndSwap(n, n+1) {
			return nil
		}
	}
}

// Release drops a reference. When the count reaches zero the storage is
// handed back to the arena (if any) and the handle becomes invalid.
// Releasing an already released texture is a no-op.
func (t *Texture) Release() {
	if t == nil {
		return
	}
	for {
		n := t.refs.Load()
		if n <= 0 {
			return
		}
		if t.refs.CompareAndSwap(n, n-1) {
			if n == 1 {
				s := t.store
				t.store = storage{}
				if t.arena != nil {
					t.arena.reclaim(t.format, s)
				}
			}
			return
		}
	}
}

// index returns the slice offset of channel 0 of texel (x, y), clamping the
// coordinates to the texture edge.
func (t *Texture) index(x, y int) int {
	if x < 0 {
		x = 0
	} else if x >= t.width {
		x = t.width - 1
	}
	if y < 0 {
		y = 0
	} else if y >= t.height {
		y = t.height - 1
	}
	return (y*t.width + x) * t.info.Channels
}

// Load returns channel 0 of texel (x, y). Coordinates outside the texture are
// clamped to the nearest edge texel.
func (t *Texture) Load(x, y int) float32 {
	i := t.index(x, y)
	if t.info.Half {
		return float16.Frombits(t.store.f16[i]).Float32()
	}
	return t.store.f32[i]
}

// LoadTexel returns all channels of texel (x, y); unused channels are zero.
// Coordinates are clamped like Load.
func (t *Texture) LoadTexel(x, y int) [4]float32 {
	var out [4]float32
	i := t.index(x, y)
	for c := 0; c < t.info.Channels; c++ {
		if t.info.Half {
			out[c] = float16.Frombits(t.store.f16[i+c]).Float32()
		} else {
			out[c] = t.store.f32[i+c]
		}
	}
	return out
}

// At returns channel 0 of texel (x, y) without clamping.
func (t *Texture) At(x, y int) (float32, error) {
	if x < 0 || x >= t.width || y < 0 || y >= t.height {
		return 0, fmt.Errorf("%w: (%d,%d) in %dx%d", ErrOutOfBounds, x, y, t.width, t.height)
	}
	return t.Load(x, y), nil
}

// Store writes v to channel 0 of texel (x, y).
// Out-of-bounds writes are ignored.
func (t *Texture) Store(x, y int, v float32) {
	if x < 0 || x >= t.width || y < 0 || y >= t.height {
		return
	}
	i := (y*t.width + x) * t.info.Channels
	if t.info.Half {
		t.store.f16[i] = float16.Fromfloat32(v).Bits()
		return
	}
	t.store.f32[i] = v
}

// StoreTexel writes the first Channels() components of v to texel (x, y).
// Out-of-bounds writes are ignored.
func (t *Texture) StoreTexel(x, y int, v [4]float32) {
	if x < 0 || x >= t.width || y < 0 || y >= t.height {
		return
	}
	i := (y*t.width + x) * t.info.Channels
	for c := 0; c < t.info.Channels; c++ {
		if t.info.Half {
			t.store.f16[i+c] = float16.Fromfloat32(v[c]).Bits()
		} else {
			t.store.f32[i+c] = v[c]
		}
	}
}

// Fill sets every channel of every texel to v.
func (t *Texture) Fill(v float32) {
	if t.info.Half {
		bits := float16.Fromfloat32(v).Bits()
		for i := range t.store.f16 {
			t.store.f16[i] = bits
		}
		return
	}
	for i := range t.store.f32 {
		t.store.f32[i] = v
	}
}

// Clear zeroes all texels.
func (t *Texture) Clear() {
	clear(t.store.f16)
	clear(t.store.f32)
}

// Upload replaces the texture contents with data, laid out row-major with
// Channels() floats per texel.
func (t *Texture) Upload(data []float32) error {
	if !t.Valid() {
		return fmt.Errorf("%w: %s", ErrReleased, t.label)
	}
	if len(data) != t.store.len() {
		return fmt.Errorf("%w: got %d floats, want %d", ErrSizeMismatch, len(data), t.store.len())
	}
	if t.info.Half {
		for i, v := range data {
			t.store.f16[i] = float16.Fromfloat32(v).Bits()
		}
		return nil
	}
	copy(t.store.f32, data)
	return nil
}

// Download returns a copy of the texture contents as float32, row-major.
func (t *Texture) Download() []float32 {
	out := make([]float32, t.store.len())
	if t.info.Half {
		for i, b := range t.store.f16 {
			out[i] = float16.Frombits(b).Float32()
		}
		return out
	}
	copy(out, t.store.f32)
	return out
}

// String returns a short description for logs.
func (t *Texture) String() string {
	return fmt.Sprintf("%s(%dx%d %s)", t.label, t.width, t.height, t.format)
}
