package texture

import (
	"fmt"
	"sync"

	"github.com/gogpu/gputypes"
)

// Arena allocates textures and recycles their backing storage.
//
// Storage is bucketed by format and element count. When the last reference to
// a texture is released its storage goes back to the matching bucket; the next
// Alloc of the same shape reuses it after clearing. Only storage is recycled,
// never the *Texture handle, so a stale handle cannot observe a new owner's data.
//
// Thread safety: All methods are safe for concurrent use.
type Arena struct {
	mu      sync.Mutex
	buckets map[arenaKey][]storage
	maxSize int // max retained slices per bucket

	allocs   int
	reuses   int
	reclaims int
	live     int
}

type arenaKey struct {
	format gputypes.TextureFormat
	n      int
}

// ArenaStats is a snapshot of arena counters.
type ArenaStats struct {
	// Allocs counts fresh storage allocations.
	Allocs int
	// Reuses counts allocations served from a bucket.
	Reuses int
	// Reclaims counts storage returned by released textures.
	Reclaims int
	// Live is the number of textures allocated and not yet fully released.
	Live int
	// Pooled is the number of slices waiting for reuse.
	Pooled int
}

// NewArena creates an arena retaining at most maxPerBucket slices per
// format/size bucket. A maxPerBucket of 0 means unlimited.
func NewArena(maxPerBucket int) *Arena {
	return &Arena{
		buckets: make(map[arenaKey][]storage),
		maxSize: maxPerBucket,
	}
}

// Alloc returns a zeroed texture owned by the caller (one reference).
func (a *Arena) Alloc(label string, width, height int, format gputypes.TextureFormat) (*Texture, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %s %dx%d", ErrInvalidDimensions, label, width, height)
	}
	info, ok := Info(format)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	key := arenaKey{format: format, n: width * height * info.Channels}

	a.mu.Lock()
	a.live++
	bucket := a.buckets[key]
	if len(bucket) > 0 {
		s := bucket[len(bucket)-1]
		a.buckets[key] = bucket[:len(bucket)-1]
		a.reuses++
		a.mu.Unlock()

		clear(s.f16)
		clear(s.f32)
		return newTexture(label, width, height, format, info, s, a), nil
	}
	a.allocs++
	a.mu.Unlock()

	return newTexture(label, width, height, format, info, makeStorage(key.n, info.Half), a), nil
}

// reclaim is called by Texture.Release when the last reference is dropped.
func (a *Arena) reclaim(format gputypes.TextureFormat, s storage) {
	n := s.len()
	if n == 0 {
		return
	}
	key := arenaKey{format: format, n: n}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.live--
	a.reclaims++
	if a.maxSize > 0 && len(a.buckets[key]) >= a.maxSize {
		return
	}
	a.buckets[key] = append(a.buckets[key], s)
}

// Stats returns a snapshot of the arena counters.
func (a *Arena) Stats() ArenaStats {
	a.mu.Lock()
	defer a.mu.Unlock()
	pooled := 0
	for _, b := range a.buckets {
		pooled += len(b)
	}
	return ArenaStats{
		Allocs:   a.allocs,
		Reuses:   a.reuses,
		Reclaims: a.reclaims,
		Live:     a.live,
		Pooled:   pooled,
	}
}

// Trim drops all pooled storage.
func (a *Arena) Trim() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.buckets = make(map[arenaKey][]storage)
}
