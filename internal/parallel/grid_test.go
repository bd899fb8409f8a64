package parallel

import "testing"

func TestNewGrid(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		wantX, wantY  int
		wantLastW     int
		wantLastH     int
	}{
		{"1x1", 1, 1, 1, 1, 1, 1},
		{"3x3", 3, 3, 1, 1, 3, 3},
		{"exact 16x8", 16, 8, 2, 1, 8, 8},
		{"13x21", 13, 21, 2, 3, 5, 5},
		{"256x256", 256, 256, 32, 32, 8, 8},
		{"1920x1080", 1920, 1080, 240, 135, 8, 8},
		{"1919x1079", 1919, 1079, 240, 135, 7, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGrid(tt.width, tt.height)
			if g.GroupsX() != tt.wantX || g.GroupsY() != tt.wantY {
				t.Fatalf("groups = %dx%d, want %dx%d", g.GroupsX(), g.GroupsY(), tt.wantX, tt.wantY)
			}
			last := g.Group(g.GroupsX()-1, g.GroupsY()-1)
			if last.MaxX-last.MinX != tt.wantLastW || last.MaxY-last.MinY != tt.wantLastH {
				t.Errorf("last group = %+v, want %dx%d", last, tt.wantLastW, tt.wantLastH)
			}
			if last.MaxX != tt.width || last.MaxY != tt.height {
				t.Errorf("last group does not reach the extent edge: %+v", last)
			}
		})
	}
}

func TestNewGrid_Empty(t *testing.T) {
	for _, ext := range [][2]int{{0, 0}, {0, 5}, {5, 0}, {-1, 4}} {
		g := NewGrid(ext[0], ext[1])
		if g.GroupCount() != 0 || len(g.Groups()) != 0 {
			t.Errorf("NewGrid(%d,%d) has %d groups", ext[0], ext[1], g.GroupCount())
		}
	}
}

func TestGrid_CoversEveryPixelOnce(t *testing.T) {
	for _, ext := range [][2]int{{1, 1}, {3, 3}, {8, 8}, {9, 7}, {13, 21}, {64, 33}} {
		w, h := ext[0], ext[1]
		hits := make([]int, w*h)
		NewGrid(w, h).ForEach(func(g Group) {
			for y := g.MinY; y < g.MaxY; y++ {
				for x := g.MinX; x < g.MaxX; x++ {
					if x < 0 || x >= w || y < 0 || y >= h {
						t.Fatalf("%dx%d: group %+v out of bounds", w, h, g)
					}
					hits[y*w+x]++
				}
			}
		})
		for i, n := range hits {
			if n != 1 {
				t.Fatalf("%dx%d: pixel %d visited %d times", w, h, i, n)
			}
		}
	}
}

func TestGroup_Pixels(t *testing.T) {
	g := NewGrid(13, 21)
	total := 0
	for _, grp := range g.Groups() {
		total += grp.Pixels()
	}
	if total != 13*21 {
		t.Errorf("sum of group pixels = %d, want %d", total, 13*21)
	}
}

func TestDivCeil(t *testing.T) {
	tests := []struct{ n, d, want int }{
		{1, 8, 1}, {8, 8, 1}, {9, 8, 2}, {0, 8, 0}, {255, 8, 32}, {256, 8, 32},
	}
	for _, tt := range tests {
		if got := DivCeil(tt.n, tt.d); got != tt.want {
			t.Errorf("DivCeil(%d,%d) = %d, want %d", tt.n, tt.d, got, tt.want)
		}
	}
}
