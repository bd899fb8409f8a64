package rtao

import "context"

// FrameContext is what a Stage records one camera's work into.
type FrameContext struct {
	ctx context.Context

	// Camera is the camera being rendered.
	Camera Camera

	// FrameIndex increases by one per rendered frame. It drives the
	// temporal rotation of the filter taps.
	FrameIndex uint64

	// Commands receives the frame's dispatches in execution order.
	Commands *CommandList
}

// NewFrameContext returns a frame context recording into cl.
func NewFrameContext(ctx context.Context, cam Camera, frame uint64, cl *CommandList) *FrameContext {
	if ctx == nil {
		ctx = context.Background()
	}
	return &FrameContext{ctx: ctx, Camera: cam, FrameIndex: frame, Commands: cl}
}

// Context returns the context the frame is rendered under.
func (fc *FrameContext) Context() context.Context {
	if fc.ctx == nil {
		return context.Background()
	}
	return fc.ctx
}
