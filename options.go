package rtao

import (
	"github.com/gogpu/rtao/noise"
	"github.com/gogpu/rtao/texture"
)

// DenoiserOption configures a Denoiser during creation.
//
// Example:
//
//	// Defaults: radius 0.2, full-resolution filtering, half-resolution output
//	d, err := rtao.NewDenoiser()
//
//	// Wider filter written at full resolution
//	d, err := rtao.NewDenoiser(
//	    rtao.WithRadius(0.35),
//	    rtao.WithOutputScale(rtao.ScaleFull))
type DenoiserOption func(*denoiserOptions)

// denoiserOptions holds optional configuration for Denoiser creation.
type denoiserOptions struct {
	params            FilterParameters
	intermediateScale Scale
	outputScale       Scale
	noise             *noise.Tile
	arena             *texture.Arena
	maxCameras        int
}

// defaultDenoiserOptions returns the default denoiser options.
func defaultDenoiserOptions() denoiserOptions {
	return denoiserOptions{
		params:            DefaultFilterParameters(),
		intermediateScale: ScaleFull,
		outputScale:       ScaleHalf,
		noise:             nil, // generated when nil
		arena:             nil, // private arena when nil
		maxCameras:        8,
	}
}

// WithFilterParameters replaces all filter parameters.
//
// Example:
//
//	d, err := rtao.NewDenoiser(rtao.WithFilterParameters(rtao.FilterParametersFromEnv()))
func WithFilterParameters(p FilterParameters) DenoiserOption {
	return func(o *denoiserOptions) {
		o.params = p
	}
}

// WithRadius sets only the view-space filter radius.
func WithRadius(r float32) DenoiserOption {
	return func(o *denoiserOptions) {
		o.params.Radius = r
	}
}

// WithIntermediateScale sets the resolution the bilateral pass writes at.
func WithIntermediateScale(s Scale) DenoiserOption {
	return func(o *denoiserOptions) {
		o.intermediateScale = s
	}
}

// WithOutputScale sets the resolution of the denoised AO buffer.
func WithOutputScale(s Scale) DenoiserOption {
	return func(o *denoiserOptions) {
		o.outputScale = s
	}
}

// WithNoiseTile sets the static noise tile. The tile is uploaded once when
// the denoiser is created.
//
// Example:
//
//	tile, err := noise.Load("textures/bluenoise64.png")
//	if err != nil {
//	    return err
//	}
//	d, err := rtao.NewDenoiser(rtao.WithNoiseTile(tile))
func WithNoiseTile(t *noise.Tile) DenoiserOption {
	return func(o *denoiserOptions) {
		o.noise = t
	}
}

// WithArena shares a texture arena between denoisers so released buffers
// are recycled across them.
func WithArena(a *texture.Arena) DenoiserOption {
	return func(o *denoiserOptions) {
		o.arena = a
	}
}

// WithMaxCameras bounds the number of cameras whose buffers are kept.
// The least recently rendered camera is released first. Zero keeps all.
func WithMaxCameras(n int) DenoiserOption {
	return func(o *denoiserOptions) {
		o.maxCameras = n
	}
}

// DeviceOption configures a Device during creation.
type DeviceOption func(*deviceOptions)

type deviceOptions struct {
	workers int
}

// WithWorkers sets the number of workers executing dispatch groups.
// Zero or negative uses GOMAXPROCS.
func WithWorkers(n int) DeviceOption {
	return func(o *deviceOptions) {
		o.workers = n
	}
}
