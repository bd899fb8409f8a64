package filter

import (
	"math"

	"github.com/chewxy/math32"
)

// Params are the per-dispatch constants of the bilateral kernel.
type Params struct {
	// Radius is the filter radius in view-space units.
	Radius float32

	// NormalThreshold is the minimum cosine between normals for a tap to
	// contribute.
	NormalThreshold float32

	// DepthThreshold is the maximum relative depth difference for a tap to
	// contribute.
	DepthThreshold float32

	// MaxPixelRadius caps the projected footprint.
	MaxPixelRadius float32

	// ProjectionScale converts view-space size at unit depth into pixels of
	// the filtered target: height / (2 * tan(fov/2)).
	ProjectionScale float32

	// FrameJitter is added to the noise value before it becomes an angle,
	// decorrelating the rotation between frames.
	FrameJitter float32

	// TapCount is the number of Vogel taps.
	TapCount int
}

// ProjectionScale returns height / (2 * tan(fov/2)) for a vertical field of
// view in radians. Non-positive or degenerate angles return 0.
func ProjectionScale(height int, fov float32) float32 {
	if height <= 0 || fov <= 0 || fov >= math32.Pi {
		return 0
	}
	return float32(height) / (2 * math32.Tan(fov/2))
}

// PixelRadius projects the view-space radius at depth into pixels and clamps
// it to [1, MaxPixelRadius].
func PixelRadius(p Params, depth float32) float32 {
	maxR := math32.Max(p.MaxPixelRadius, 1)
	if depth <= 0 {
		return 1
	}
	r := p.Radius * p.ProjectionScale / depth
	if r < 1 {
		return 1
	}
	if r > maxR {
		return maxR
	}
	return r
}

// NormalWeight is 0 when the normals diverge past threshold (cosine), else
// their dot product clamped to [0, 1]. Opposing normals never contribute,
// whatever the threshold.
func NormalWeight(np, nq [3]float32, threshold float32) float32 {
	d := np[0]*nq[0] + np[1]*nq[1] + np[2]*nq[2]
	if !(d >= threshold) || d <= 0 {
		return 0
	}
	return min(d, 1)
}

// DepthWeight is 0 for background taps or when the relative depth difference
// exceeds threshold, and falls off linearly from 1 otherwise.
func DepthWeight(dp, dq, threshold float32) float32 {
	if dq <= 0 || dp <= 0 {
		return 0
	}
	rel := math32.Abs(dq-dp) / dp
	if threshold <= 0 {
		if rel == 0 {
			return 1
		}
		return 0
	}
	if rel > threshold {
		return 0
	}
	return 1 - rel/threshold
}

// fract returns x - floor(x).
func fract(x float32) float32 {
	return x - math32.Floor(x)
}

// FrameJitter returns fract(frame * golden ratio conjugate).
func FrameJitter(frame uint64) float32 {
	const phi = 0.6180339887498949
	v := float64(frame%1_000_000) * phi
	return float32(v - math.Floor(v))
}
