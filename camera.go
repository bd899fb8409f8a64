package rtao

import (
	"fmt"

	"github.com/chewxy/math32"
)

// DefaultFieldOfView is the vertical field of view used when a Camera
// leaves FieldOfView at zero (60 degrees).
const DefaultFieldOfView = math32.Pi / 3

// CameraKind classifies what a camera renders for.
type CameraKind int

const (
	// CameraGame renders the final image.
	CameraGame CameraKind = iota
	// CameraSceneView is an editor viewport.
	CameraSceneView
	// CameraPreview renders thumbnails and material previews.
	CameraPreview
)

// String returns the camera kind name.
func (k CameraKind) String() string {
	switch k {
	case CameraGame:
		return "Game"
	case CameraSceneView:
		return "SceneView"
	case CameraPreview:
		return "Preview"
	default:
		return fmt.Sprintf("CameraKind(%d)", int(k))
	}
}

// CameraID identifies a camera across frames. Per-camera buffers are keyed
// by it, so a camera that changes resolution keeps its identity.
type CameraID uint64

// Camera describes one view rendered in a frame.
type Camera struct {
	ID   CameraID
	Name string
	Kind CameraKind

	// Width and Height are the render target size in pixels.
	Width, Height int

	// FieldOfView is the vertical field of view in radians.
	// Zero selects DefaultFieldOfView.
	FieldOfView float32

	// Depth orders cameras within a frame; lower renders first.
	Depth float32
}

// Validate reports whether the camera can be rendered.
func (c Camera) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("%w: %d has size %dx%d", ErrInvalidCamera, c.ID, c.Width, c.Height)
	}
	if c.FieldOfView < 0 || c.FieldOfView >= math32.Pi {
		return fmt.Errorf("%w: %d has field of view %g", ErrInvalidCamera, c.ID, c.FieldOfView)
	}
	return nil
}

// FOV returns the effective vertical field of view.
func (c Camera) FOV() float32 {
	if c.FieldOfView == 0 {
		return DefaultFieldOfView
	}
	return c.FieldOfView
}

func (c Camera) String() string {
	if c.Name != "" {
		return fmt.Sprintf("%s#%d(%s %dx%d)", c.Name, c.ID, c.Kind, c.Width, c.Height)
	}
	return fmt.Sprintf("camera#%d(%s %dx%d)", c.ID, c.Kind, c.Width, c.Height)
}

// Scale selects the resolution of a denoiser buffer relative to the camera.
type Scale int

const (
	// ScaleFull matches the camera resolution.
	ScaleFull Scale = iota
	// ScaleHalf halves both axes.
	ScaleHalf
)

// String returns the scale name.
func (s Scale) String() string {
	switch s {
	case ScaleFull:
		return "Full"
	case ScaleHalf:
		return "Half"
	default:
		return fmt.Sprintf("Scale(%d)", int(s))
	}
}

// Apply scales a pixel size. Each axis is at least one pixel.
func (s Scale) Apply(width, height int) (int, int) {
	if s == ScaleHalf {
		width, height = width/2, height/2
	}
	return max(width, 1), max(height, 1)
}
