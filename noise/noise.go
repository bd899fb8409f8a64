// Package noise provides the static low-discrepancy noise tile that rotates
// the denoiser's filter taps per pixel.
//
// The tile is read-only after construction and indexed with wrap-around, so
// any pixel coordinate (including negative ones) maps into it.
package noise

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/png" // register PNG decoder
	"io"
	"os"
	"path/filepath"

	"github.com/gogpu/gputypes"
	_ "golang.org/x/image/bmp"  // register BMP decoder
	_ "golang.org/x/image/tiff" // register TIFF decoder

	"github.com/gogpu/rtao/texture"
)

// DefaultSize is the edge length of the procedural tile.
const DefaultSize = 64

// plastic is the plastic constant, the generator of the R2 sequence.
const plastic = 1.32471795724474602596

var (
	// ErrInvalidSize is returned for non-positive tile dimensions.
	ErrInvalidSize = errors.New("noise: invalid tile size")

	// ErrEmptyImage is returned when a decoded image has no pixels.
	ErrEmptyImage = errors.New("noise: empty image")
)

// Tile is an immutable 2D array of scalar values in [0, 1).
type Tile struct {
	width  int
	height int
	values []float32
}

// NewTile wraps values (row-major, width*height entries) as a tile.
// The slice is copied.
func NewTile(width, height int, values []float32) (*Tile, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	if len(values) != width*height {
		return nil, fmt.Errorf("%w: %d values for %dx%d", ErrInvalidSize, len(values), width, height)
	}
	v := make([]float32, len(values))
	copy(v, values)
	return &Tile{width: width, height: height, values: v}, nil
}

// Generate builds a size x size tile from the R2 low-discrepancy sequence.
// Neighbouring texels receive well separated values, which spreads the tap
// rotation evenly across any small pixel neighbourhood.
func Generate(size int) (*Tile, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}
	const a1 = 1.0 / plastic
	const a2 = 1.0 / (plastic * plastic)

	values := make([]float32, size*size)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			v := 0.5 + a1*float64(x) + a2*float64(y)
			values[y*size+x] = float32(v - float64(int64(v)))
		}
	}
	return &Tile{width: size, height: size, values: values}, nil
}

// Width returns the tile width.
func (t *Tile) Width() int { return t.width }

// Height returns the tile height.
func (t *Tile) Height() int { return t.height }

// At returns the value at (x mod width, y mod height).
func (t *Tile) At(x, y int) float32 {
	x %= t.width
	if x < 0 {
		x += t.width
	}
	y %= t.height
	if y < 0 {
		y += t.height
	}
	return t.values[y*t.width+x]
}

// Decode reads an image (PNG, BMP or TIFF) and converts it to a tile using
// the 16-bit luminance of each pixel, mapped to [0, 1).
func Decode(r io.Reader) (*Tile, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("noise: decode: %w", err)
	}
	return FromImage(img)
}

// FromImage converts any image to a tile using its luminance.
func FromImage(img image.Image) (*Tile, error) {
	b := img.Bounds()
	if b.Empty() {
		return nil, ErrEmptyImage
	}
	w, h := b.Dx(), b.Dy()
	values := make([]float32, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.Gray16Model.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.Gray16)
			values[y*w+x] = float32(c.Y) / 65536
		}
	}
	return &Tile{width: w, height: h, values: values}, nil
}

// Load decodes the tile stored at path.
func Load(path string) (*Tile, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("noise: open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return Decode(f)
}

// Texture uploads the tile into a new R32Float texture allocated from arena.
// The caller owns the returned texture.
func (t *Tile) Texture(arena *texture.Arena) (*texture.Texture, error) {
	tex, err := arena.Alloc("NoiseTexture", t.width, t.height, gputypes.TextureFormatR32Float)
	if err != nil {
		return nil, err
	}
	if err := tex.Upload(t.values); err != nil {
		tex.Release()
		return nil, err
	}
	return tex, nil
}
