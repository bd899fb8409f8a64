// Package parallel provides the compute-dispatch model used by the denoiser
// kernels: an extent is split into 8x8 thread groups, and groups are executed
// concurrently on a work-stealing worker pool.
package parallel

// GroupSize is the edge length of one thread group in pixels.
// It matches @workgroup_size(8, 8) of the WGSL kernels.
const GroupSize = 8

// Group is one thread group of a dispatch.
//
// MinX/MinY are inclusive, MaxX/MaxY exclusive. Groups on the right and bottom
// edge of a grid are clipped to the extent, so every pixel a group covers is
// inside the target.
type Group struct {
	// X, Y are the group coordinates in the grid.
	X, Y int

	// MinX, MinY, MaxX, MaxY are the clipped pixel bounds.
	MinX, MinY, MaxX, MaxY int
}

// Pixels returns the number of in-bounds pixels covered by the group.
func (g Group) Pixels() int {
	return (g.MaxX - g.MinX) * (g.MaxY - g.MinY)
}

// Grid covers a width x height extent with ceil(w/8) x ceil(h/8) groups.
//
// A zero or negative extent yields an empty grid.
type Grid struct {
	width   int
	height  int
	groupsX int
	groupsY int
}

// NewGrid creates the dispatch grid for the given extent.
func NewGrid(width, height int) Grid {
	if width <= 0 || height <= 0 {
		return Grid{}
	}
	return Grid{
		width:   width,
		height:  height,
		groupsX: DivCeil(width, GroupSize),
		groupsY: DivCeil(height, GroupSize),
	}
}

// DivCeil returns ceil(n/d) for positive d.
func DivCeil(n, d int) int {
	return (n + d - 1) / d
}

// Width returns the extent width in pixels.
func (g Grid) Width() int { return g.width }

// Height returns the extent height in pixels.
func (g Grid) Height() int { return g.height }

// GroupsX returns the number of groups along x.
func (g Grid) GroupsX() int { return g.groupsX }

// GroupsY returns the number of groups along y.
func (g Grid) GroupsY() int { return g.groupsY }

// GroupCount returns the total number of groups.
func (g Grid) GroupCount() int { return g.groupsX * g.groupsY }

// Group returns the group at grid coordinates (gx, gy), clipped to the extent.
func (g Grid) Group(gx, gy int) Group {
	minX := gx * GroupSize
	minY := gy * GroupSize
	return Group{
		X:    gx,
		Y:    gy,
		MinX: minX,
		MinY: minY,
		MaxX: min(minX+GroupSize, g.width),
		MaxY: min(minY+GroupSize, g.height),
	}
}

// Groups returns all groups in row-major order.
func (g Grid) Groups() []Group {
	groups := make([]Group, 0, g.GroupCount())
	for gy := range g.groupsY {
		for gx := range g.groupsX {
			groups = append(groups, g.Group(gx, gy))
		}
	}
	return groups
}

// ForEach calls fn for every group serially in row-major order.
func (g Grid) ForEach(fn func(Group)) {
	for gy := range g.groupsY {
		for gx := range g.groupsX {
			fn(g.Group(gx, gy))
		}
	}
}
