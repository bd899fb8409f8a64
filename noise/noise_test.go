package noise

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/gogpu/gputypes"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"github.com/gogpu/rtao/texture"
)

func TestGenerate(t *testing.T) {
	tile, err := Generate(DefaultSize)
	if err != nil {
		t.Fatal(err)
	}
	if tile.Width() != DefaultSize || tile.Height() != DefaultSize {
		t.Fatalf("size = %dx%d", tile.Width(), tile.Height())
	}

	var sum float64
	for y := 0; y < DefaultSize; y++ {
		for x := 0; x < DefaultSize; x++ {
			v := tile.At(x, y)
			if v < 0 || v >= 1 {
				t.Fatalf("At(%d,%d) = %v outside [0,1)", x, y, v)
			}
			sum += float64(v)
		}
	}
	mean := sum / (DefaultSize * DefaultSize)
	if mean < 0.45 || mean > 0.55 {
		t.Errorf("mean = %v, want about 0.5", mean)
	}

	// Horizontal neighbours differ by 1/plastic mod 1, about 0.755.
	d := tile.At(1, 0) - tile.At(0, 0)
	if d < 0 {
		d += 1
	}
	if d < 0.7 || d > 0.8 {
		t.Errorf("neighbour step = %v", d)
	}
}

func TestGenerate_InvalidSize(t *testing.T) {
	if _, err := Generate(0); !errors.Is(err, ErrInvalidSize) {
		t.Errorf("Generate(0) error = %v, want ErrInvalidSize", err)
	}
}

func TestTile_AtWraps(t *testing.T) {
	tile, err := NewTile(2, 3, []float32{0, 0.1, 0.2, 0.3, 0.4, 0.5})
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		x, y int
		want float32
	}{
		{0, 0, 0},
		{1, 2, 0.5},
		{2, 0, 0},
		{3, 4, 0.3},
		{-1, 0, 0.1},
		{-2, -1, 0.4},
		{-7, -7, 0.5},
	}
	for _, tt := range tests {
		if got := tile.At(tt.x, tt.y); got != tt.want {
			t.Errorf("At(%d,%d) = %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestNewTile_Errors(t *testing.T) {
	if _, err := NewTile(0, 1, nil); !errors.Is(err, ErrInvalidSize) {
		t.Errorf("error = %v", err)
	}
	if _, err := NewTile(2, 2, []float32{1}); !errors.Is(err, ErrInvalidSize) {
		t.Errorf("error = %v", err)
	}
}

func grayImage() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, 4, 2))
	for i := range img.Pix {
		img.Pix[i] = uint8(i * 32)
	}
	return img
}

func TestDecode(t *testing.T) {
	src := grayImage()
	encoders := map[string]func(*bytes.Buffer) error{
		"png":  func(b *bytes.Buffer) error { return png.Encode(b, src) },
		"bmp":  func(b *bytes.Buffer) error { return bmp.Encode(b, src) },
		"tiff": func(b *bytes.Buffer) error { return tiff.Encode(b, src, nil) },
	}
	for name, encode := range encoders {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := encode(&buf); err != nil {
				t.Fatal(err)
			}
			tile, err := Decode(&buf)
			if err != nil {
				t.Fatalf("Decode() error: %v", err)
			}
			if tile.Width() != 4 || tile.Height() != 2 {
				t.Fatalf("size = %dx%d", tile.Width(), tile.Height())
			}
			for y := 0; y < 2; y++ {
				for x := 0; x < 4; x++ {
					want := float32(src.GrayAt(x, y).Y) * 257 / 65536
					if got := tile.At(x, y); got != want {
						t.Errorf("At(%d,%d) = %v, want %v", x, y, got, want)
					}
				}
			}
		})
	}
}

func TestDecode_Garbage(t *testing.T) {
	if _, err := Decode(bytes.NewReader([]byte("not an image"))); err == nil {
		t.Error("Decode of garbage succeeded")
	}
}

func TestFromImage_Empty(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 0, 0))
	if _, err := FromImage(img); !errors.Is(err, ErrEmptyImage) {
		t.Errorf("error = %v, want ErrEmptyImage", err)
	}
}

func TestFromImage_Offset(t *testing.T) {
	img := image.NewGray(image.Rect(5, 5, 7, 6))
	img.SetGray(6, 5, color.Gray{Y: 255})
	tile, err := FromImage(img)
	if err != nil {
		t.Fatal(err)
	}
	if tile.At(0, 0) != 0 || tile.At(1, 0) == 0 {
		t.Errorf("offset bounds not honoured: %v %v", tile.At(0, 0), tile.At(1, 0))
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "noise.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, grayImage()); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	tile, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if tile.Width() != 4 {
		t.Errorf("Width() = %d", tile.Width())
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.png")); err == nil {
		t.Error("Load of missing file succeeded")
	}
}

func TestTile_Texture(t *testing.T) {
	tile, err := Generate(8)
	if err != nil {
		t.Fatal(err)
	}
	arena := texture.NewArena(0)
	tex, err := tile.Texture(arena)
	if err != nil {
		t.Fatal(err)
	}
	defer tex.Release()
	if tex.Format() != gputypes.TextureFormatR32Float {
		t.Errorf("Format() = %v", tex.Format())
	}
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			if tex.Load(x, y) != tile.At(x, y) {
				t.Fatalf("texel (%d,%d) mismatch", x, y)
			}
		}
	}
}
