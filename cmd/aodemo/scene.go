package main

import (
	"github.com/chewxy/math32"

	"github.com/gogpu/rtao"
	"github.com/gogpu/rtao/texture"
)

type vec3 [3]float32

func (a vec3) add(b vec3) vec3      { return vec3{a[0] + b[0], a[1] + b[1], a[2] + b[2]} }
func (a vec3) sub(b vec3) vec3      { return vec3{a[0] - b[0], a[1] - b[1], a[2] - b[2]} }
func (a vec3) scale(s float32) vec3 { return vec3{a[0] * s, a[1] * s, a[2] * s} }
func (a vec3) dot(b vec3) float32   { return a[0]*b[0] + a[1]*b[1] + a[2]*b[2] }

func (a vec3) cross(b vec3) vec3 {
	return vec3{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

func (a vec3) normalize() vec3 {
	l := math32.Sqrt(a.dot(a))
	if l == 0 {
		return a
	}
	return a.scale(1 / l)
}

type sphere struct {
	center vec3
	radius float32
}

type hit struct {
	t float32
	n vec3
}

// scene is a few spheres resting on a ground plane, in view space: the
// camera sits at the origin looking down -z.
type scene struct {
	spheres []sphere
	groundY float32
}

func newScene() *scene {
	return &scene{
		spheres: []sphere{
			{center: vec3{0, 0, -4}, radius: 1},
			{center: vec3{-1.8, -0.5, -5}, radius: 0.5},
			{center: vec3{1.6, -0.7, -3.4}, radius: 0.3},
		},
		groundY: -1,
	}
}

// intersect returns the closest hit along o + t*d with 0 < t < tMax.
func (s *scene) intersect(o, d vec3, tMax float32) (hit, bool) {
	best := hit{t: tMax}
	found := false

	if d[1] < 0 {
		if t := (s.groundY - o[1]) / d[1]; t > 0 && t < best.t {
			best = hit{t: t, n: vec3{0, 1, 0}}
			found = true
		}
	}
	for _, sp := range s.spheres {
		oc := o.sub(sp.center)
		b := oc.dot(d)
		c := oc.dot(oc) - sp.radius*sp.radius
		disc := b*b - c
		if disc < 0 {
			continue
		}
		t := -b - math32.Sqrt(disc)
		if t <= 0 || t >= best.t {
			continue
		}
		p := o.add(d.scale(t))
		best = hit{t: t, n: p.sub(sp.center).scale(1 / sp.radius)}
		found = true
	}
	return best, found
}

// hash32 is the lowbias32 integer hash.
func hash32(x uint32) uint32 {
	x ^= x >> 16
	x *= 0x7feb352d
	x ^= x >> 15
	x *= 0x846ca68b
	x ^= x >> 16
	return x
}

func rand01(seed uint32) float32 {
	return float32(hash32(seed)>>8) / (1 << 24)
}

// tracer fills the G-buffer and the noisy AO estimate for one camera.
type tracer struct {
	scene   *scene
	samples int
	aoRange float32
}

func (tr *tracer) primaryRay(cam rtao.Camera, x, y int) vec3 {
	tanHalf := math32.Tan(cam.FOV() / 2)
	aspect := float32(cam.Width) / float32(cam.Height)
	u := (2*(float32(x)+0.5)/float32(cam.Width) - 1) * aspect * tanHalf
	v := (1 - 2*(float32(y)+0.5)/float32(cam.Height)) * tanHalf
	return vec3{u, v, -1}.normalize()
}

// trace renders group g. Pixels without geometry get depth 0 and AO 1.
func (tr *tracer) trace(cam rtao.Camera, frame uint64, gbuf, noisy *texture.Texture, g rtao.Group) {
	for y := g.MinY; y < g.MaxY; y++ {
		for x := g.MinX; x < g.MaxX; x++ {
			d := tr.primaryRay(cam, x, y)
			h, ok := tr.scene.intersect(vec3{}, d, 1e4)
			if !ok {
				gbuf.StoreTexel(x, y, [4]float32{0, 0, 0, 0})
				noisy.Store(x, y, 1)
				continue
			}
			p := d.scale(h.t)
			gbuf.StoreTexel(x, y, [4]float32{h.n[0], h.n[1], h.n[2], -p[2]})

			seed := uint32(y*cam.Width+x)*9781 + uint32(frame)*6271
			noisy.Store(x, y, tr.visibility(p, h.n, seed))
		}
	}
}

// visibility is the unoccluded fraction of cosine-weighted hemisphere rays.
func (tr *tracer) visibility(p, n vec3, seed uint32) float32 {
	t, b := basis(n)
	origin := p.add(n.scale(1e-3))
	open := 0
	for i := range tr.samples {
		s := seed + uint32(i)*0x9e3779b9
		r1, r2 := rand01(s), rand01(s^0x68bc21eb)
		r := math32.Sqrt(r1)
		sin, cos := math32.Sincos(2 * math32.Pi * r2)
		dir := t.scale(r * cos).add(b.scale(r * sin)).add(n.scale(math32.Sqrt(1 - r1)))
		if _, blocked := tr.scene.intersect(origin, dir.normalize(), tr.aoRange); !blocked {
			open++
		}
	}
	return float32(open) / float32(tr.samples)
}

// basis returns two unit vectors orthogonal to n and each other.
func basis(n vec3) (vec3, vec3) {
	up := vec3{0, 1, 0}
	if math32.Abs(n[1]) > 0.9 {
		up = vec3{1, 0, 0}
	}
	t := up.cross(n).normalize()
	return t, n.cross(t)
}
