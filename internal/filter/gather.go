package filter

import (
	"github.com/chewxy/math32"

	"github.com/gogpu/rtao/internal/parallel"
	"github.com/gogpu/rtao/texture"
)

// Gather resolves src into the pixels of group g of dst.
//
// When dst is no larger than src along both axes every output pixel is the
// box average of the source texels its footprint covers; equal sizes copy.
// Otherwise src is sampled bilinearly at the output pixel center.
func Gather(src, dst *texture.Texture, g parallel.Group) {
	sw, sh := src.Width(), src.Height()
	dw, dh := dst.Width(), dst.Height()
	shrink := dw <= sw && dh <= sh

	for y := g.MinY; y < g.MaxY; y++ {
		for x := g.MinX; x < g.MaxX; x++ {
			if shrink {
				dst.Store(x, y, boxSample(src, x, y, sw, sh, dw, dh))
			} else {
				dst.Store(x, y, bilinearSample(src, x, y, sw, sh, dw, dh))
			}
		}
	}
}

// footprint returns the source span [lo, hi) covered by pixel x when an axis
// of size src shrinks to dst. The span is never empty.
func footprint(x, dst, src int) (lo, hi int) {
	lo = x * src / dst
	hi = ((x+1)*src + dst - 1) / dst
	if hi <= lo {
		hi = lo + 1
	}
	return lo, min(hi, src)
}

func boxSample(src *texture.Texture, x, y, sw, sh, dw, dh int) float32 {
	x0, x1 := footprint(x, dw, sw)
	y0, y1 := footprint(y, dh, sh)
	var sum float32
	for sy := y0; sy < y1; sy++ {
		for sx := x0; sx < x1; sx++ {
			sum += src.Load(sx, sy)
		}
	}
	return sum / float32((x1-x0)*(y1-y0))
}

func bilinearSample(src *texture.Texture, x, y, sw, sh, dw, dh int) float32 {
	u := (float32(x)+0.5)*float32(sw)/float32(dw) - 0.5
	v := (float32(y)+0.5)*float32(sh)/float32(dh) - 0.5
	u = math32.Max(u, 0)
	v = math32.Max(v, 0)

	x0 := int(math32.Floor(u))
	y0 := int(math32.Floor(v))
	fx := u - float32(x0)
	fy := v - float32(y0)

	// Load clamps x0+1/y0+1 at the far edge.
	a := src.Load(x0, y0)
	b := src.Load(x0+1, y0)
	c := src.Load(x0, y0+1)
	d := src.Load(x0+1, y0+1)

	top := a + (b-a)*fx
	bottom := c + (d-c)*fx
	return top + (bottom-top)*fy
}
