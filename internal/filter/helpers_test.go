package filter

import (
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/rtao/internal/parallel"
	"github.com/gogpu/rtao/noise"
	"github.com/gogpu/rtao/texture"
)

// Test helpers shared across filter tests.

type surfaceFunc func(x, y int) (n [3]float32, depth float32)

func flatSurface(x, y int) ([3]float32, float32) {
	return [3]float32{0, 0, 1}, 2
}

func newGBuffer(t testing.TB, w, h int, fn surfaceFunc) *texture.Texture {
	t.Helper()
	tex, err := texture.New("GBuffer", w, h, gputypes.TextureFormatRGBA32Float)
	if err != nil {
		t.Fatal(err)
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			n, d := fn(x, y)
			tex.StoreTexel(x, y, [4]float32{n[0], n[1], n[2], d})
		}
	}
	return tex
}

func newScalar(t testing.TB, w, h int, format gputypes.TextureFormat, fn func(x, y int) float32) *texture.Texture {
	t.Helper()
	tex, err := texture.New("scalar", w, h, format)
	if err != nil {
		t.Fatal(err)
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			tex.Store(x, y, fn(x, y))
		}
	}
	return tex
}

func constant(v float32) func(x, y int) float32 {
	return func(int, int) float32 { return v }
}

func newNoise(t testing.TB) *texture.Texture {
	t.Helper()
	tile, err := noise.Generate(noise.DefaultSize)
	if err != nil {
		t.Fatal(err)
	}
	tex, err := tile.Texture(texture.NewArena(0))
	if err != nil {
		t.Fatal(err)
	}
	return tex
}

func testParams(height int) Params {
	return Params{
		Radius:          0.2,
		NormalThreshold: 0.9,
		DepthThreshold:  0.1,
		MaxPixelRadius:  16,
		ProjectionScale: ProjectionScale(height, 1.0471976), // 60 degrees
		TapCount:        16,
	}
}

func runBilateral(in *BilateralInputs) {
	parallel.NewGrid(in.Output.Width(), in.Output.Height()).ForEach(func(g parallel.Group) {
		Bilateral(in, g)
	})
}

func runGather(src, dst *texture.Texture) {
	parallel.NewGrid(dst.Width(), dst.Height()).ForEach(func(g parallel.Group) {
		Gather(src, dst, g)
	})
}

func absf32(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
