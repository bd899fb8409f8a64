package rtao

import "slices"

// Stage is one effect of the render pipeline.
//
// For every camera of a frame the pipeline calls RequireBuffers on each
// stage and then Render on each stage, in registration order. Because all
// buffers exist before any stage records, a host stage may write into
// buffers another stage owns. RequireBuffers allocates or
// resizes whatever the stage owns for the camera; Render records the
// stage's dispatches into the frame's command list. Neither may wait for
// execution.
type Stage interface {
	Name() string
	RequireBuffers(cam Camera) error
	Render(fc *FrameContext) error
}

// CameraFilter is implemented by stages that only run for some kinds of
// camera. Stages without it run for every camera.
type CameraFilter interface {
	Accepts(kind CameraKind) bool
}

// FuncStage adapts plain functions to Stage. It is the usual way to plug
// host work (G-buffer fill, ray sampling, composite) around the denoiser.
//
// Example:
//
//	composite := &rtao.FuncStage{
//	    Label: "Composite",
//	    Kinds: []rtao.CameraKind{rtao.CameraGame},
//	    RenderFunc: func(fc *rtao.FrameContext) error {
//	        return fc.Commands.DispatchFunc("composite", w, h, blend, ao)
//	    },
//	}
type FuncStage struct {
	Label string

	// Kinds restricts the stage to these camera kinds; empty accepts all.
	Kinds []CameraKind

	// Require is optional.
	Require func(cam Camera) error

	RenderFunc func(fc *FrameContext) error
}

// Name returns the stage label.
func (s *FuncStage) Name() string { return s.Label }

// Accepts reports whether the stage runs for kind.
func (s *FuncStage) Accepts(kind CameraKind) bool {
	return len(s.Kinds) == 0 || slices.Contains(s.Kinds, kind)
}

// RequireBuffers calls Require if set.
func (s *FuncStage) RequireBuffers(cam Camera) error {
	if s.Require == nil {
		return nil
	}
	return s.Require(cam)
}

// Render calls RenderFunc if set.
func (s *FuncStage) Render(fc *FrameContext) error {
	if s.RenderFunc == nil {
		return nil
	}
	return s.RenderFunc(fc)
}

func accepts(s Stage, kind CameraKind) bool {
	if f, ok := s.(CameraFilter); ok {
		return f.Accepts(kind)
	}
	return true
}
