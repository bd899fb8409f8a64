package filter

import (
	"github.com/chewxy/math32"

	"github.com/gogpu/rtao/internal/parallel"
	"github.com/gogpu/rtao/texture"
)

// BilateralInputs binds the textures of one bilateral dispatch.
//
// GBuffer holds the view-space normal in xyz and linear depth in w. Noisy is
// the raw AO signal. Noise is a scalar tile addressed with wrap-around. Output
// is written at its own resolution; the other textures are sampled at the
// output pixel's scaled coordinate, so they may differ in size.
type BilateralInputs struct {
	GBuffer *texture.Texture
	Noisy   *texture.Texture
	Noise   *texture.Texture
	Output  *texture.Texture
	Params  Params
}

// Bilateral filters the pixels of group g into in.Output.
func Bilateral(in *BilateralInputs, g parallel.Group) {
	taps := CachedTaps(in.Params.TapCount)
	for y := g.MinY; y < g.MaxY; y++ {
		for x := g.MinX; x < g.MaxX; x++ {
			in.Output.Store(x, y, bilateralPixel(in, taps, x, y))
		}
	}
}

func bilateralPixel(in *BilateralInputs, taps []Tap, x, y int) float32 {
	ow, oh := in.Output.Width(), in.Output.Height()
	gw, gh := in.GBuffer.Width(), in.GBuffer.Height()
	nw, nh := in.Noisy.Width(), in.Noisy.Height()

	center := in.Noisy.Load(ScaleCoord(x, ow, nw), ScaleCoord(y, oh, nh))
	gp := in.GBuffer.LoadTexel(ScaleCoord(x, ow, gw), ScaleCoord(y, oh, gh))
	dp := gp[3]
	if dp <= 0 {
		return center
	}
	np := [3]float32{gp[0], gp[1], gp[2]}

	xi := fract(in.Noise.Load(wrap(x, in.Noise.Width()), wrap(y, in.Noise.Height())) + in.Params.FrameJitter)
	sin, cos := math32.Sincos(2 * math32.Pi * xi)
	r := PixelRadius(in.Params, dp)

	var sumW, sumV float32
	for _, t := range taps {
		ox := (t.X*cos - t.Y*sin) * r
		oy := (t.X*sin + t.Y*cos) * r
		qx := clampInt(x+roundInt(ox), 0, ow-1)
		qy := clampInt(y+roundInt(oy), 0, oh-1)

		gq := in.GBuffer.LoadTexel(ScaleCoord(qx, ow, gw), ScaleCoord(qy, oh, gh))
		wn := NormalWeight(np, [3]float32{gq[0], gq[1], gq[2]}, in.Params.NormalThreshold)
		if wn == 0 {
			continue
		}
		wd := DepthWeight(dp, gq[3], in.Params.DepthThreshold)
		if wd == 0 {
			continue
		}
		w := t.Weight * wn * wd
		sumW += w
		sumV += w * in.Noisy.Load(ScaleCoord(qx, ow, nw), ScaleCoord(qy, oh, nh))
	}
	if sumW <= 0 {
		return center
	}
	return sumV / sumW
}

// ScaleCoord maps pixel x of an axis of size dst onto an axis of size src by
// nearest sampling at the pixel center. Equal sizes map to identity.
func ScaleCoord(x, dst, src int) int {
	if dst == src {
		return x
	}
	return min((2*x+1)*src/(2*dst), src-1)
}

func wrap(x, n int) int {
	x %= n
	if x < 0 {
		x += n
	}
	return x
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func roundInt(v float32) int {
	return int(math32.Floor(v + 0.5))
}
