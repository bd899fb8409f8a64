// Package filter implements the denoiser kernels on the CPU.
//
// Two kernels are provided, both written per thread group so they can be
// dispatched over an 8x8 grid exactly like their WGSL counterparts:
//   - Bilateral: edge-aware blur of a noisy AO buffer guided by a
//     normal+depth G-buffer, with per-pixel tap rotation from a noise tile
//   - Gather: resolve of the filtered buffer to the output resolution
//     (box average when shrinking, bilinear when enlarging)
//
// Kernels only read their inputs and write the texels of their own group, so
// groups of one dispatch may run concurrently.
package filter
