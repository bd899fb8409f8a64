// Package rtao denoises ray-traced ambient occlusion.
//
// # Overview
//
// A ray-traced AO pass with one or two rays per pixel produces a noisy
// occlusion estimate. rtao turns it into a stable per-pixel term with two
// compute passes:
//
//   - a bilateral filter that averages the noisy AO over a small disk of
//     taps, rejecting taps whose normal or depth differ from the center
//     pixel so occlusion never bleeds across silhouettes;
//   - a gather pass that resolves the filtered buffer into the resolution
//     the composite stage asks for.
//
// # Quick Start
//
//	dev := rtao.NewDevice()
//	defer dev.Close()
//
//	d, err := rtao.NewDenoiser()
//	if err != nil {
//	    return err
//	}
//	defer d.Close()
//
//	cam := rtao.Camera{ID: 1, Kind: rtao.CameraGame, Width: 1280, Height: 720}
//	ao, err := d.Denoise(ctx, dev, cam, frame, gbuffer, noisyAO)
//	if err != nil {
//	    return err
//	}
//	defer ao.Release()
//
// # Pipeline
//
// In a renderer the denoiser is one Stage among others. A Pipeline renders
// every camera of a frame through its stages, records all work into one
// CommandList and submits it to a Device, which executes lists strictly in
// submission order:
//
//	p := rtao.NewPipeline(dev, gbufferPass, aoTrace, d, composite)
//	sub, err := p.RenderFrame(ctx, cameras, frame)
//
// The denoiser owns four buffers per camera (see Targets). They are sized
// on first use and reallocated when the camera's pixel size changes.
//
// # Buffers
//
// Buffers are texture.Texture handles with reference counts. Recording a
// dispatch retains its textures until the dispatch has executed, so
// reallocation never frees memory an in-flight frame still reads.
//
// # Logging
//
// rtao is silent by default. See SetLogger.
package rtao
