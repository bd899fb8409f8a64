package rtao

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/rtao/internal/cache"
	"github.com/gogpu/rtao/internal/filter"
	"github.com/gogpu/rtao/internal/shader"
	"github.com/gogpu/rtao/noise"
	"github.com/gogpu/rtao/texture"
)

// DenoiserName is the stage name of the denoiser.
const DenoiserName = "AmbientOcclusionDenoise"

// Buffer formats used by the denoiser.
const (
	GBufferFormat = gputypes.TextureFormatRGBA32Float
	AOFormat      = gputypes.TextureFormatR16Float
)

// Targets are the buffers a Denoiser owns for one camera. They are sized
// from the camera when first required and replaced as a whole when the
// camera's pixel size changes.
type Targets struct {
	// Width and Height are the camera size the buffers were allocated for.
	Width, Height int

	// GBuffer holds view-space normal (xyz) and linear depth (w) at camera
	// size. Host stages fill it before the denoiser runs.
	GBuffer *texture.Texture

	// NoisyAO is the raw ray-traced occlusion at camera size, filled by the
	// host sampling stage.
	NoisyAO *texture.Texture

	// Intermediate is written by the bilateral pass.
	Intermediate *texture.Texture

	// Output is the denoised AO handed to composite.
	Output *texture.Texture
}

func (t *Targets) textures() []*texture.Texture {
	return []*texture.Texture{t.GBuffer, t.NoisyAO, t.Intermediate, t.Output}
}

// release drops the denoiser's references and reports how many buffers
// are still held by recorded or executing commands.
func (t *Targets) release() (inFlight int) {
	for _, tex := range t.textures() {
		if tex.Refs() > 1 {
			inFlight++
		}
		tex.Release()
	}
	return inFlight
}

// Denoiser is the ray-traced AO denoising stage: a bilateral filter guided
// by the G-buffer followed by a gather pass into the output resolution.
//
// A Denoiser is safe for concurrent use.
type Denoiser struct {
	opts  denoiserOptions
	arena *texture.Arena
	noise *texture.Texture

	bilateral *shader.Table
	gather    *shader.Table

	// mu serializes buffer (re)allocation with recording so a recorded
	// dispatch never observes a half-replaced set of targets.
	mu      sync.Mutex
	targets *cache.Cache[CameraID, *Targets]

	closed  atomic.Bool
	closing atomic.Bool
}

// NewDenoiser creates a denoiser and uploads its noise tile.
//
// Example:
//
//	d, err := rtao.NewDenoiser(rtao.WithRadius(0.25))
//	if err != nil {
//	    return err
//	}
//	defer d.Close()
func NewDenoiser(opts ...DenoiserOption) (*Denoiser, error) {
	o := defaultDenoiserOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.params.Validate(); err != nil {
		return nil, err
	}
	for _, s := range []Scale{o.intermediateScale, o.outputScale} {
		if s != ScaleFull && s != ScaleHalf {
			return nil, fmt.Errorf("rtao: unsupported buffer scale %s", s)
		}
	}

	d := &Denoiser{
		opts:      o,
		arena:     o.arena,
		bilateral: shader.BuildTable(shader.KernelBilateralFilter),
		gather:    shader.BuildTable(shader.KernelGather),
	}
	if d.arena == nil {
		d.arena = texture.NewArena(4)
	}

	tile := o.noise
	if tile == nil {
		var err error
		if tile, err = noise.Generate(noise.DefaultSize); err != nil {
			return nil, err
		}
	}
	tex, err := tile.Texture(d.arena)
	if err != nil {
		return nil, fmt.Errorf("rtao: upload noise tile: %w", err)
	}
	d.noise = tex

	d.targets = cache.New[CameraID, *Targets](o.maxCameras, d.evict)
	return d, nil
}

// Name returns DenoiserName.
func (d *Denoiser) Name() string { return DenoiserName }

// Accepts reports whether the denoiser runs for kind. Only game cameras
// are denoised.
func (d *Denoiser) Accepts(kind CameraKind) bool { return kind == CameraGame }

// Parameters returns the filter parameters.
func (d *Denoiser) Parameters() FilterParameters { return d.opts.params }

// Arena returns the arena the denoiser allocates from.
func (d *Denoiser) Arena() *texture.Arena { return d.arena }

// Cameras returns the number of cameras with allocated buffers.
func (d *Denoiser) Cameras() int { return d.targets.Len() }

// RequireBuffers makes sure the camera's buffers exist at its current size.
// The first call for a camera allocates them. A call with a different pixel
// size releases the old set and allocates a new one; commands already
// recorded against the old buffers keep them alive until they execute.
// Repeated calls at the same size are no-ops.
func (d *Denoiser) RequireBuffers(cam Camera) error {
	if d.closed.Load() {
		return ErrDenoiserClosed
	}
	if err := cam.Validate(); err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	old, ok := d.targets.Get(cam.ID)
	if ok && old.Width == cam.Width && old.Height == cam.Height {
		return nil
	}
	if ok {
		Logger().Debug("rtao: reallocating denoiser buffers",
			"camera", cam.String(),
			"from", fmt.Sprintf("%dx%d", old.Width, old.Height),
			"to", fmt.Sprintf("%dx%d", cam.Width, cam.Height))
		// Old storage returns to the arena before the new set is allocated.
		d.targets.Delete(cam.ID)
	}

	t, err := d.allocTargets(cam)
	if err != nil {
		return err
	}
	Logger().Debug("rtao: allocated denoiser buffers",
		"camera", cam.String(),
		"intermediate", fmt.Sprintf("%dx%d", t.Intermediate.Width(), t.Intermediate.Height()),
		"output", fmt.Sprintf("%dx%d", t.Output.Width(), t.Output.Height()))
	d.targets.Set(cam.ID, t)
	return nil
}

func (d *Denoiser) allocTargets(cam Camera) (*Targets, error) {
	suffix := cam.Name
	if suffix == "" {
		suffix = strconv.FormatUint(uint64(cam.ID), 10)
	}
	iw, ih := d.opts.intermediateScale.Apply(cam.Width, cam.Height)
	ow, oh := d.opts.outputScale.Apply(cam.Width, cam.Height)

	specs := []struct {
		name   string
		w, h   int
		format gputypes.TextureFormat
	}{
		{"NormalDepthBuffer", cam.Width, cam.Height, GBufferFormat},
		{"NoisyAO", cam.Width, cam.Height, AOFormat},
		{"IntermediateBuffer", iw, ih, AOFormat},
		{"AOTexture", ow, oh, AOFormat},
	}
	texs := make([]*texture.Texture, 0, len(specs))
	for _, s := range specs {
		tex, err := d.arena.Alloc(s.name+"_"+suffix, s.w, s.h, s.format)
		if err != nil {
			releaseAll(texs)
			return nil, fmt.Errorf("rtao: allocate %s for %s: %w", s.name, cam, err)
		}
		texs = append(texs, tex)
	}
	return &Targets{
		Width:        cam.Width,
		Height:       cam.Height,
		GBuffer:      texs[0],
		NoisyAO:      texs[1],
		Intermediate: texs[2],
		Output:       texs[3],
	}, nil
}

// evict is the cache callback for replaced, evicted and deleted targets.
func (d *Denoiser) evict(id CameraID, t *Targets) {
	inFlight := t.release()
	if inFlight > 0 && d.closing.Load() {
		Logger().Warn("rtao: denoiser closed with buffers in flight",
			"camera", id, "buffers", inFlight)
		return
	}
	Logger().Debug("rtao: released denoiser buffers",
		"camera", id, "size", fmt.Sprintf("%dx%d", t.Width, t.Height), "inFlight", inFlight)
}

// Targets returns the buffers currently allocated for a camera.
func (d *Denoiser) Targets(id CameraID) (*Targets, bool) {
	return d.targets.Peek(id)
}

// ReleaseCamera drops a camera's buffers. It reports whether the camera
// had any.
func (d *Denoiser) ReleaseCamera(id CameraID) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.targets.Delete(id)
}

// Render records the denoiser for the frame's camera using the camera's
// own G-buffer and noisy AO targets, which earlier stages of the frame
// fill.
func (d *Denoiser) Render(fc *FrameContext) error {
	t, ok := d.targets.Peek(fc.Camera.ID)
	if !ok {
		return fmt.Errorf("%w: no buffers for %s", ErrMissingBinding, fc.Camera)
	}
	_, err := d.Record(fc.Commands, fc.Camera, fc.FrameIndex, t.GBuffer, t.NoisyAO)
	return err
}

// Record appends the bilateral and gather dispatches for cam to cl and
// returns the camera's output buffer, which holds the result once cl has
// executed. gbuf and noisy may be any live textures of the G-buffer and AO
// formats; they are sampled at the intermediate resolution.
//
// RequireBuffers must have been called for cam at its current size. On
// error cl may hold a partial frame and should be discarded.
func (d *Denoiser) Record(cl *CommandList, cam Camera, frame uint64, gbuf, noisy *texture.Texture) (*texture.Texture, error) {
	if d.closed.Load() {
		return nil, ErrDenoiserClosed
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	t, ok := d.targets.Get(cam.ID)
	if !ok || t.Width != cam.Width || t.Height != cam.Height {
		return nil, fmt.Errorf("%w: buffers for %s not allocated at its size", ErrMissingBinding, cam)
	}
	params := d.uniforms(cam, t, frame)

	filterGroup := NewBindGroup(d.bilateral)
	if err := bindAll(filterGroup, map[string]*texture.Texture{
		shader.NameGBuffer:      gbuf,
		shader.NameNoiseTexture: d.noise,
		shader.NameInput:        noisy,
		shader.NameOutput:       t.Intermediate,
	}); err != nil {
		return nil, err
	}
	filterGroup.Params = params
	if err := cl.Dispatch(filterGroup); err != nil {
		return nil, fmt.Errorf("rtao: %s bilateral pass: %w", cam, err)
	}

	gatherGroup := NewBindGroup(d.gather)
	if err := bindAll(gatherGroup, map[string]*texture.Texture{
		shader.NameInput:  t.Intermediate,
		shader.NameOutput: t.Output,
	}); err != nil {
		return nil, err
	}
	gatherGroup.Params = params
	if err := cl.Dispatch(gatherGroup); err != nil {
		return nil, fmt.Errorf("rtao: %s gather pass: %w", cam, err)
	}
	return t.Output, nil
}

func bindAll(bg *BindGroup, bindings map[string]*texture.Texture) error {
	for name, tex := range bindings {
		if err := bg.Bind(name, tex); err != nil {
			return err
		}
	}
	return nil
}

func (d *Denoiser) uniforms(cam Camera, t *Targets, frame uint64) shader.Params {
	p := d.opts.params
	return shader.Params{
		Radius:          p.Radius,
		NormalThreshold: p.NormalThreshold,
		DepthThreshold:  p.DepthThreshold,
		MaxPixelRadius:  p.MaxPixelRadius,
		ProjectionScale: filter.ProjectionScale(t.Intermediate.Height(), cam.FOV()),
		FrameJitter:     filter.FrameJitter(frame),
		TapCount:        uint32(p.TapCount),
	}
}

// Denoise runs both passes for one camera on dev and waits for them.
// The returned texture is the camera's output buffer with one extra
// reference owned by the caller, who must Release it.
func (d *Denoiser) Denoise(ctx context.Context, dev *Device, cam Camera, frame uint64, gbuf, noisy *texture.Texture) (*texture.Texture, error) {
	if err := d.RequireBuffers(cam); err != nil {
		return nil, err
	}
	cl := NewCommandList("denoise " + cam.String())
	out, err := d.Record(cl, cam, frame, gbuf, noisy)
	if err != nil {
		cl.Discard()
		return nil, err
	}
	if err := out.Retain(); err != nil {
		cl.Discard()
		return nil, err
	}
	sub, err := dev.Submit(cl)
	if err != nil {
		cl.Discard()
		out.Release()
		return nil, err
	}
	if err := sub.Wait(ctx); err != nil {
		out.Release()
		return nil, err
	}
	return out, nil
}

// Close releases every camera's buffers and the noise tile. Buffers still
// referenced by submitted work are freed when that work completes. Close
// is idempotent.
func (d *Denoiser) Close() {
	if !d.closed.CompareAndSwap(false, true) {
		return
	}
	d.closing.Store(true)
	d.mu.Lock()
	d.targets.Clear()
	d.mu.Unlock()
	d.noise.Release()
}
