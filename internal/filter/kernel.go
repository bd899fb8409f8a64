package filter

import (
	"math"
	"sync"
)

// goldenAngle is pi * (3 - sqrt(5)), the angular step of a Vogel spiral.
const goldenAngle = 2.39996322972865332

// Tap is one sample of the bilateral footprint.
//
// X, Y is the offset on the unit disk; it is rotated per pixel and scaled by
// the pixel radius at filter time. Weight is the spatial Gaussian term for a
// sigma of half the footprint radius: exp(-|o|^2 / (2 sigma^2)) = exp(-2 r^2).
type Tap struct {
	X, Y   float32
	Weight float32
}

// VogelTaps returns n taps distributed on a Vogel (golden angle) disk.
// Tap i lies at radius sqrt((i+0.5)/n) and angle i*goldenAngle.
// For n <= 0 it returns nil.
func VogelTaps(n int) []Tap {
	if n <= 0 {
		return nil
	}
	taps := make([]Tap, n)
	for i := range taps {
		r := math.Sqrt((float64(i) + 0.5) / float64(n))
		theta := float64(i) * goldenAngle
		sin, cos := math.Sincos(theta)
		taps[i] = Tap{
			X:      float32(r * cos),
			Y:      float32(r * sin),
			Weight: float32(math.Exp(-2 * r * r)),
		}
	}
	return taps
}

// tapCache caches tap tables by tap count.
type tapCache struct {
	mu     sync.RWMutex
	tables map[int][]Tap
}

var defaultTapCache = &tapCache{tables: make(map[int][]Tap)}

func (c *tapCache) get(n int) []Tap {
	c.mu.RLock()
	taps, ok := c.tables[n]
	c.mu.RUnlock()
	if ok {
		return taps
	}

	taps = VogelTaps(n)

	c.mu.Lock()
	if cached, ok := c.tables[n]; ok {
		taps = cached
	} else {
		c.tables[n] = taps
	}
	c.mu.Unlock()
	return taps
}

// CachedTaps returns the shared, read-only tap table for n taps.
func CachedTaps(n int) []Tap {
	return defaultTapCache.get(n)
}
