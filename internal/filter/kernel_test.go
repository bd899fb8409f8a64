package filter

import (
	"math"
	"testing"
)

func TestVogelTaps(t *testing.T) {
	for _, n := range []int{1, 8, 16, 32} {
		taps := VogelTaps(n)
		if len(taps) != n {
			t.Fatalf("VogelTaps(%d) len = %d", n, len(taps))
		}
		minW := float32(math.Exp(-2))
		for i, tap := range taps {
			r := math.Hypot(float64(tap.X), float64(tap.Y))
			if r > 1+1e-6 {
				t.Errorf("n=%d tap %d outside unit disk: r=%v", n, i, r)
			}
			if tap.Weight < minW || tap.Weight > 1 {
				t.Errorf("n=%d tap %d weight %v outside [e^-2, 1]", n, i, tap.Weight)
			}
		}
		// Radii grow monotonically and weights shrink with them.
		for i := 1; i < n; i++ {
			if taps[i].Weight > taps[i-1].Weight {
				t.Errorf("n=%d weight increases at tap %d", n, i)
			}
		}
	}
}

func TestVogelTaps_Empty(t *testing.T) {
	if taps := VogelTaps(0); taps != nil {
		t.Errorf("VogelTaps(0) = %v, want nil", taps)
	}
	if taps := VogelTaps(-3); taps != nil {
		t.Errorf("VogelTaps(-3) = %v, want nil", taps)
	}
}

func TestVogelTaps_Balanced(t *testing.T) {
	// Golden-angle spirals place taps evenly around the origin.
	var cx, cy float64
	taps := VogelTaps(64)
	for _, tap := range taps {
		cx += float64(tap.X)
		cy += float64(tap.Y)
	}
	cx /= 64
	cy /= 64
	if math.Hypot(cx, cy) > 0.05 {
		t.Errorf("tap centroid = (%v, %v), want near origin", cx, cy)
	}
}

func TestCachedTaps(t *testing.T) {
	a := CachedTaps(16)
	b := CachedTaps(16)
	if &a[0] != &b[0] {
		t.Error("CachedTaps should return the shared table")
	}
	want := VogelTaps(16)
	for i := range want {
		if a[i] != want[i] {
			t.Fatalf("cached tap %d = %+v, want %+v", i, a[i], want[i])
		}
	}
}

func BenchmarkVogelTaps(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_ = VogelTaps(16)
	}
}
