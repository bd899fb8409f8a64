package texture

import (
	"errors"
	"testing"

	"github.com/gogpu/gputypes"
)

func TestArena_ReuseClears(t *testing.T) {
	a := NewArena(4)

	tex1, err := a.Alloc("ao", 16, 16, gputypes.TextureFormatR16Float)
	if err != nil {
		t.Fatal(err)
	}
	tex1.Fill(1)
	tex1.Release()

	tex2, err := a.Alloc("ao", 16, 16, gputypes.TextureFormatR16Float)
	if err != nil {
		t.Fatal(err)
	}
	for i, v := range tex2.Download() {
		if v != 0 {
			t.Fatalf("reused storage not cleared at %d: %v", i, v)
		}
	}

	st := a.Stats()
	if st.Allocs != 1 || st.Reuses != 1 || st.Reclaims != 1 || st.Live != 1 {
		t.Errorf("Stats() = %+v", st)
	}
	if tex1 == tex2 {
		t.Error("arena must hand out a fresh handle")
	}
	if tex1.Valid() {
		t.Error("released handle became valid again")
	}
}

func TestArena_BucketsByShape(t *testing.T) {
	a := NewArena(0)

	small, _ := a.Alloc("a", 8, 8, gputypes.TextureFormatR16Float)
	small.Release()

	// Same element count, different format: no reuse.
	other, _ := a.Alloc("b", 8, 8, gputypes.TextureFormatR32Float)
	// Different size: no reuse.
	big, _ := a.Alloc("c", 16, 16, gputypes.TextureFormatR16Float)
	// Transposed extent with the same element count: reuse.
	tall, _ := a.Alloc("d", 4, 16, gputypes.TextureFormatR16Float)

	st := a.Stats()
	if st.Allocs != 3 || st.Reuses != 1 {
		t.Errorf("Stats() = %+v, want 3 allocs and 1 reuse", st)
	}
	if tall.Width() != 4 || tall.Height() != 16 {
		t.Errorf("reused texture size = %dx%d", tall.Width(), tall.Height())
	}
	other.Release()
	big.Release()
	tall.Release()
	if st := a.Stats(); st.Live != 0 || st.Pooled != 3 {
		t.Errorf("after release Stats() = %+v", st)
	}
}

func TestArena_MaxPerBucket(t *testing.T) {
	a := NewArena(1)
	t1, _ := a.Alloc("a", 2, 2, gputypes.TextureFormatR16Float)
	t2, _ := a.Alloc("b", 2, 2, gputypes.TextureFormatR16Float)
	t1.Release()
	t2.Release()
	if st := a.Stats(); st.Pooled != 1 || st.Live != 0 {
		t.Errorf("Stats() = %+v, want 1 pooled", st)
	}
	a.Trim()
	if st := a.Stats(); st.Pooled != 0 {
		t.Errorf("Trim left %d pooled", st.Pooled)
	}
}

func TestArena_InFlightReference(t *testing.T) {
	a := NewArena(0)
	tex, _ := a.Alloc("out", 4, 4, gputypes.TextureFormatR16Float)
	tex.Fill(0.5)

	// A recorded command holds a reference while the owner reallocates.
	if err := tex.Retain(); err != nil {
		t.Fatal(err)
	}
	tex.Release()

	if st := a.Stats(); st.Reclaims != 0 {
		t.Fatalf("storage reclaimed while referenced: %+v", st)
	}
	if got := tex.Load(3, 3); got != 0.5 {
		t.Errorf("in-flight reader saw %v, want 0.5", got)
	}
	tex.Release()
	if st := a.Stats(); st.Reclaims != 1 {
		t.Errorf("Stats() = %+v, want 1 reclaim", st)
	}
}

func TestArena_AllocErrors(t *testing.T) {
	a := NewArena(0)
	if _, err := a.Alloc("x", 0, 1, gputypes.TextureFormatR16Float); !errors.Is(err, ErrInvalidDimensions) {
		t.Errorf("error = %v, want ErrInvalidDimensions", err)
	}
	if _, err := a.Alloc("x", 1, 1, gputypes.TextureFormatRGBA8Unorm); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("error = %v, want ErrUnsupportedFormat", err)
	}
	if st := a.Stats(); st.Live != 0 {
		t.Errorf("failed allocs counted as live: %+v", st)
	}
}

func BenchmarkArena_AllocRelease(b *testing.B) {
	a := NewArena(4)
	for i := 0; i < b.N; i++ {
		tex, err := a.Alloc("bench", 256, 256, gputypes.TextureFormatR16Float)
		if err != nil {
			b.Fatal(err)
		}
		tex.Release()
	}
}
