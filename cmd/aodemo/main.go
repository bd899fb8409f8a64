// Command aodemo ray traces ambient occlusion for a small synthetic scene,
// denoises it and writes the noisy and denoised results side by side.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"golang.org/x/image/draw"

	"github.com/gogpu/rtao"
	"github.com/gogpu/rtao/noise"
)

type config struct {
	width, height int
	radius        float64
	samples       int
	frames        int
	output        string
	noisePath     string
}

func main() {
	var (
		width   = flag.Int("width", 640, "image width")
		height  = flag.Int("height", 360, "image height")
		radius  = flag.Float64("radius", 0, "filter radius in view-space units (0 uses RTAO_DENOISE_RADIUS or 0.2)")
		spp     = flag.Int("spp", 2, "AO rays per pixel")
		frames  = flag.Int("frames", 4, "frames to render")
		output  = flag.String("out", "ao.png", "output file")
		noiseIn = flag.String("noise", "", "noise tile image (PNG, BMP or TIFF); empty generates one")
		verbose = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	if *verbose {
		rtao.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg := config{
		width:     *width,
		height:    *height,
		radius:    *radius,
		samples:   *spp,
		frames:    *frames,
		output:    *output,
		noisePath: *noiseIn,
	}
	if err := run(ctx, cfg); err != nil {
		log.Fatalf("aodemo: %v", err)
	}
}

func run(ctx context.Context, cfg config) error {
	if cfg.width <= 0 || cfg.height <= 0 || cfg.samples <= 0 || cfg.frames <= 0 {
		return errors.New("width, height, spp and frames must be positive")
	}

	params := rtao.FilterParametersFromEnv()
	if cfg.radius > 0 {
		params.Radius = float32(cfg.radius)
	}
	opts := []rtao.DenoiserOption{rtao.WithFilterParameters(params)}
	if cfg.noisePath != "" {
		tile, err := noise.Load(cfg.noisePath)
		if err != nil {
			return err
		}
		opts = append(opts, rtao.WithNoiseTile(tile))
	}

	dev := rtao.NewDevice()
	defer dev.Close()

	d, err := rtao.NewDenoiser(opts...)
	if err != nil {
		return err
	}
	defer d.Close()

	cam := rtao.Camera{ID: 1, Name: "Main", Kind: rtao.CameraGame, Width: cfg.width, Height: cfg.height}
	tr := &tracer{scene: newScene(), samples: cfg.samples, aoRange: 2}

	trace := &rtao.FuncStage{
		Label: "RayTracedAO",
		Kinds: []rtao.CameraKind{rtao.CameraGame},
		RenderFunc: func(fc *rtao.FrameContext) error {
			tg, ok := d.Targets(fc.Camera.ID)
			if !ok {
				return fmt.Errorf("no denoiser buffers for %s", fc.Camera)
			}
			cam, frame := fc.Camera, fc.FrameIndex
			return fc.Commands.DispatchFunc("trace", tg.Width, tg.Height, func(g rtao.Group) {
				tr.trace(cam, frame, tg.GBuffer, tg.NoisyAO, g)
			}, tg.GBuffer, tg.NoisyAO)
		},
	}

	var result frameResult
	capture := &rtao.FuncStage{
		Label: "Composite",
		Kinds: []rtao.CameraKind{rtao.CameraGame},
		RenderFunc: func(fc *rtao.FrameContext) error {
			tg, ok := d.Targets(fc.Camera.ID)
			if !ok {
				return fmt.Errorf("no denoiser buffers for %s", fc.Camera)
			}
			return fc.Commands.DispatchFunc("capture", 1, 1, func(rtao.Group) {
				result = frameResult{
					width:     tg.Width,
					height:    tg.Height,
					noisy:     tg.NoisyAO.Download(),
					outWidth:  tg.Output.Width(),
					outHeight: tg.Output.Height(),
					denoised:  tg.Output.Download(),
				}
			}, tg.NoisyAO, tg.Output)
		},
	}

	p := rtao.NewPipeline(dev, trace, d, capture)
	start := time.Now()
	var last *rtao.Submission
	for f := range cfg.frames {
		sub, err := p.RenderFrame(ctx, []rtao.Camera{cam}, uint64(f))
		if err != nil {
			return err
		}
		last = sub
	}
	if err := last.Wait(ctx); err != nil {
		return err
	}
	log.Printf("Rendered %d frames of %dx%d in %v (%d workers)\n",
		cfg.frames, cfg.width, cfg.height, time.Since(start).Round(time.Millisecond), dev.Workers())

	if err := savePNG(cfg.output, result.composite()); err != nil {
		return err
	}
	log.Printf("Result saved to %s\n", cfg.output)
	return nil
}

// frameResult is what the capture stage copies out of the last frame.
type frameResult struct {
	width, height       int
	noisy               []float32
	outWidth, outHeight int
	denoised            []float32
}

// composite puts the noisy AO on the left and the denoised AO, upscaled
// to camera size, on the right.
func (r frameResult) composite() image.Image {
	img := image.NewGray(image.Rect(0, 0, 2*r.width, r.height))
	draw.Draw(img, image.Rect(0, 0, r.width, r.height), toGray(r.noisy, r.width, r.height), image.Point{}, draw.Src)

	den := toGray(r.denoised, r.outWidth, r.outHeight)
	draw.BiLinear.Scale(img, image.Rect(r.width, 0, 2*r.width, r.height), den, den.Bounds(), draw.Src, nil)
	return img
}

func toGray(values []float32, w, h int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i, v := range values {
		v = min(max(v, 0), 1)
		img.SetGray(i%w, i/w, color.Gray{Y: uint8(v*255 + 0.5)})
	}
	return img
}

func savePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
