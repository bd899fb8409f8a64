package rtao

import (
	"context"
	"testing"
	"time"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/rtao/texture"
)

func newTestDevice(t testing.TB) *Device {
	t.Helper()
	d := NewDevice(WithWorkers(4))
	t.Cleanup(d.Close)
	return d
}

func newTestDenoiser(t testing.TB, opts ...DenoiserOption) *Denoiser {
	t.Helper()
	d, err := NewDenoiser(opts...)
	if err != nil {
		t.Fatalf("NewDenoiser() error = %v", err)
	}
	t.Cleanup(d.Close)
	return d
}

func testContext(t testing.TB) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func gameCamera(id CameraID, w, h int) Camera {
	return Camera{ID: id, Kind: CameraGame, Width: w, Height: h}
}

func newTex(t testing.TB, w, h int, format gputypes.TextureFormat) *texture.Texture {
	t.Helper()
	tex, err := texture.New("test", w, h, format)
	if err != nil {
		t.Fatalf("texture.New(%d, %d) error = %v", w, h, err)
	}
	t.Cleanup(tex.Release)
	return tex
}

// fillFlat writes a camera-facing plane at depth into a G-buffer.
func fillFlat(tex *texture.Texture, depth float32) {
	for y := range tex.Height() {
		for x := range tex.Width() {
			tex.StoreTexel(x, y, [4]float32{0, 0, 1, depth})
		}
	}
}

// flatInputs returns a flat G-buffer and a noisy AO buffer filled with ao.
func flatInputs(t testing.TB, w, h int, ao float32) (gbuf, noisy *texture.Texture) {
	t.Helper()
	gbuf = newTex(t, w, h, GBufferFormat)
	fillFlat(gbuf, 5)
	noisy = newTex(t, w, h, AOFormat)
	noisy.Fill(ao)
	return gbuf, noisy
}

func assertAll(t *testing.T, tex *texture.Texture, want, tol float32) {
	t.Helper()
	for i, v := range tex.Download() {
		if d := v - want; d > tol || d < -tol {
			t.Fatalf("%s texel %d (%d,%d) = %v, want %v ±%v",
				tex.Label(), i, i%tex.Width(), i/tex.Width(), v, want, tol)
		}
	}
}
