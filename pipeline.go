package rtao

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"
)

// Pipeline renders frames through an ordered list of stages and submits
// each frame as one command list.
type Pipeline struct {
	device *Device

	mu     sync.RWMutex
	stages []Stage
}

// NewPipeline returns a pipeline submitting to dev.
//
// Example:
//
//	p := rtao.NewPipeline(dev, gbufferPass, aoTrace, denoiser, composite)
//	sub, err := p.RenderFrame(ctx, cameras, frame)
func NewPipeline(dev *Device, stages ...Stage) *Pipeline {
	return &Pipeline{device: dev, stages: slices.Clone(stages)}
}

// Device returns the device frames are submitted to.
func (p *Pipeline) Device() *Device { return p.device }

// Add appends a stage. It takes effect from the next frame.
func (p *Pipeline) Add(s Stage) {
	p.mu.Lock()
	p.stages = append(p.stages, s)
	p.mu.Unlock()
}

// Stages returns the stages in execution order.
func (p *Pipeline) Stages() []Stage {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return slices.Clone(p.stages)
}

// RenderFrame records one frame and submits it without waiting.
//
// Cameras render in ascending Depth order (stable for equal depths). For
// each camera, every stage that accepts the camera's kind first gets
// RequireBuffers, so all buffers of the camera exist, and then each gets
// Render in registration order. If any stage fails the frame is
// abandoned: the recorded commands are discarded, nothing is submitted and
// the error is returned.
func (p *Pipeline) RenderFrame(ctx context.Context, cams []Camera, frame uint64) (*Submission, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	stages := p.Stages()

	ordered := slices.Clone(cams)
	slices.SortStableFunc(ordered, func(a, b Camera) int {
		return cmp.Compare(a.Depth, b.Depth)
	})

	cl := NewCommandList(fmt.Sprintf("frame %d", frame))
	for _, cam := range ordered {
		if err := cam.Validate(); err != nil {
			cl.Discard()
			return nil, fmt.Errorf("rtao: frame %d: %w", frame, err)
		}
		active := make([]Stage, 0, len(stages))
		for _, s := range stages {
			if accepts(s, cam.Kind) {
				active = append(active, s)
			}
		}
		for _, s := range active {
			if err := s.RequireBuffers(cam); err != nil {
				cl.Discard()
				return nil, fmt.Errorf("rtao: frame %d: %s buffers for %s: %w", frame, s.Name(), cam, err)
			}
		}
		fc := NewFrameContext(ctx, cam, frame, cl)
		for _, s := range active {
			if err := s.Render(fc); err != nil {
				cl.Discard()
				return nil, fmt.Errorf("rtao: frame %d: %s on %s: %w", frame, s.Name(), cam, err)
			}
		}
	}

	sub, err := p.device.Submit(cl)
	if err != nil {
		cl.Discard()
		return nil, fmt.Errorf("rtao: frame %d: %w", frame, err)
	}
	return sub, nil
}
