package cache

import (
	"strconv"
	"testing"
)

func BenchmarkCacheGet(b *testing.B) {
	c := New[string, int](1000, nil)
	for i := 0; i < 100; i++ {
		c.Set(strconv.Itoa(i), i)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Get("50")
	}
}

func BenchmarkCacheSet(b *testing.B) {
	c := New[string, int](1000, nil)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Set(strconv.Itoa(i%100), i)
	}
}

func BenchmarkCacheGetOrCreateEvicting(b *testing.B) {
	c := New[int, int](16, func(int, int) {})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = c.GetOrCreate(i%32, func() (int, error) {
			return i, nil
		})
	}
}
