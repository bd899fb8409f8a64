package rtao

import (
	"fmt"
	"log/slog"

	"github.com/gogpu/rtao/internal/filter"
	"github.com/gogpu/rtao/internal/parallel"
	"github.com/gogpu/rtao/internal/shader"
	"github.com/gogpu/rtao/texture"
)

// GroupSize is the edge length of a dispatch group in pixels.
const GroupSize = parallel.GroupSize

// Group is the pixel rectangle of one 8x8 dispatch group, clipped to the
// dispatch extent.
type Group = parallel.Group

// command is one recorded dispatch.
type command struct {
	label         string
	width, height int
	run           func(Group)
	held          []*texture.Texture
}

// CommandList records dispatches for ordered execution on a Device.
//
// Recording retains every texture a command uses; the references are
// dropped once the command has executed (or the list is discarded), so a
// texture released by its owner mid-frame stays alive for in-flight work.
//
// A CommandList is not safe for concurrent use. Once submitted it cannot be
// recorded into again.
type CommandList struct {
	label     string
	cmds      []command
	submitted bool
}

// NewCommandList returns an empty command list.
func NewCommandList(label string) *CommandList {
	return &CommandList{label: label}
}

// Label returns the list label.
func (cl *CommandList) Label() string { return cl.label }

// Len returns the number of recorded commands.
func (cl *CommandList) Len() int { return len(cl.cmds) }

// Labels returns the command labels in recording order.
func (cl *CommandList) Labels() []string {
	out := make([]string, len(cl.cmds))
	for i, c := range cl.cmds {
		out[i] = c.label
	}
	return out
}

// Dispatch records a built-in kernel over the extent of the texture bound
// as its output. Every resource binding must be bound to a live texture;
// otherwise nothing is recorded and the error wraps ErrMissingBinding,
// ErrFormatMismatch or texture.ErrReleased.
//
// The bind group is captured by value: rebinding it afterwards does not
// change the recorded command. Image sizes in the uniform block are taken
// from the bound textures.
func (cl *CommandList) Dispatch(bg *BindGroup) error {
	if cl.submitted {
		return ErrSubmitted
	}
	bound, held, err := bg.snapshot()
	if err != nil {
		return err
	}

	params := bg.Params
	out := bound[shader.NameOutput]
	params.OutputSize = extent(out)
	params.InputSize = extent(bound[shader.NameInput])

	var run func(Group)
	switch bg.Kernel() {
	case shader.KernelBilateralFilter:
		params.GBufferSize = extent(bound[shader.NameGBuffer])
		params.NoiseSize = extent(bound[shader.NameNoiseTexture])
		in := &filter.BilateralInputs{
			GBuffer: bound[shader.NameGBuffer],
			Noisy:   bound[shader.NameInput],
			Noise:   bound[shader.NameNoiseTexture],
			Output:  out,
			Params:  kernelParams(&params),
		}
		run = func(g Group) { filter.Bilateral(in, g) }
	case shader.KernelGather:
		src := bound[shader.NameInput]
		run = func(g Group) { filter.Gather(src, out, g) }
	default:
		releaseAll(held)
		return fmt.Errorf("rtao: no executor for kernel %s", bg.Kernel())
	}
	bg.Params = params

	cl.cmds = append(cl.cmds, command{
		label:  bg.Kernel().String(),
		width:  out.Width(),
		height: out.Height(),
		run:    run,
		held:   held,
	})
	return nil
}

// DispatchFunc records host work run once per 8x8 group of a width x height
// extent. The given textures are retained until the command has executed.
func (cl *CommandList) DispatchFunc(label string, width, height int, fn func(Group), textures ...*texture.Texture) error {
	if cl.submitted {
		return ErrSubmitted
	}
	if fn == nil {
		return fmt.Errorf("rtao: dispatch %q has no function", label)
	}
	held := make([]*texture.Texture, 0, len(textures))
	for _, t := range textures {
		if t == nil {
			releaseAll(held)
			return fmt.Errorf("%w: dispatch %q", ErrMissingBinding, label)
		}
		if err := t.Retain(); err != nil {
			releaseAll(held)
			return fmt.Errorf("dispatch %q: %w", label, err)
		}
		held = append(held, t)
	}
	cl.cmds = append(cl.cmds, command{
		label:  label,
		width:  width,
		height: height,
		run:    fn,
		held:   held,
	})
	return nil
}

// Discard drops every recorded command and the references it holds.
// Discarding a submitted list is a no-op.
func (cl *CommandList) Discard() {
	if cl.submitted {
		return
	}
	for _, c := range cl.cmds {
		releaseAll(c.held)
	}
	cl.cmds = nil
}

// execute runs the commands in order on pool, releasing each command's
// references as soon as it completes.
func (cl *CommandList) execute(pool *parallel.WorkerPool, log *slog.Logger) {
	for i := range cl.cmds {
		c := &cl.cmds[i]
		grid := parallel.NewGrid(c.width, c.height)
		log.Debug("rtao: dispatch",
			"list", cl.label,
			"command", c.label,
			"width", c.width,
			"height", c.height,
			"groups", grid.GroupCount())
		pool.Dispatch(grid, c.run)
		releaseAll(c.held)
		c.held = nil
	}
}

func extent(t *texture.Texture) [2]uint32 {
	if t == nil {
		return [2]uint32{}
	}
	return [2]uint32{uint32(t.Width()), uint32(t.Height())}
}

// kernelParams converts the uniform block into CPU kernel constants.
func kernelParams(p *shader.Params) filter.Params {
	return filter.Params{
		Radius:          p.Radius,
		NormalThreshold: p.NormalThreshold,
		DepthThreshold:  p.DepthThreshold,
		MaxPixelRadius:  p.MaxPixelRadius,
		ProjectionScale: p.ProjectionScale,
		FrameJitter:     p.FrameJitter,
		TapCount:        int(p.TapCount),
	}
}
