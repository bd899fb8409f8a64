// Package cache provides a generic LRU cache with eviction callbacks.
//
// The denoiser keys per-camera state by camera identity and relies on the
// callback to release GPU buffers when an entry is evicted, replaced,
// deleted or cleared.
//
//	c := cache.New[int, *State](16, func(id int, s *State) { s.Release() })
//	s, err := c.GetOrCreate(id, newState)
//
// Cache is safe for concurrent use and must not be copied after creation.
package cache
