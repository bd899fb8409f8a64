package rtao

import (
	"fmt"
	"os"
	"strconv"
	"sync"
)

// Environment variables read by FilterParametersFromEnv.
const (
	EnvRadius          = "RTAO_DENOISE_RADIUS"
	EnvTapCount        = "RTAO_DENOISE_TAPS"
	EnvNormalThreshold = "RTAO_DENOISE_NORMAL_THRESHOLD"
	EnvDepthThreshold  = "RTAO_DENOISE_DEPTH_THRESHOLD"
)

// maxTapCount bounds TapCount so a misconfigured filter cannot stall a frame.
const maxTapCount = 256

// FilterParameters tune the bilateral pass. They are constant for the
// lifetime of a Denoiser.
type FilterParameters struct {
	// Radius is the filter extent in view-space units. It is projected
	// through the camera to a per-pixel footprint, so distant surfaces are
	// filtered over fewer pixels.
	Radius float32

	// NormalThreshold is the minimum cosine between the center normal and
	// a tap normal for the tap to contribute.
	NormalThreshold float32

	// DepthThreshold is the maximum relative depth difference for a tap to
	// contribute.
	DepthThreshold float32

	// TapCount is the number of samples taken per pixel.
	TapCount int

	// MaxPixelRadius caps the projected footprint in pixels.
	MaxPixelRadius float32
}

// DefaultFilterParameters returns the parameters the denoiser uses when
// none are configured.
func DefaultFilterParameters() FilterParameters {
	return FilterParameters{
		Radius:          0.2,
		NormalThreshold: 0.9,
		DepthThreshold:  0.1,
		TapCount:        16,
		MaxPixelRadius:  16,
	}
}

// Validate reports whether every parameter is in range.
func (p FilterParameters) Validate() error {
	switch {
	case !(p.Radius > 0):
		return fmt.Errorf("%w: radius %g must be positive", ErrInvalidParameters, p.Radius)
	case !(p.NormalThreshold >= 0 && p.NormalThreshold <= 1):
		return fmt.Errorf("%w: normal threshold %g outside [0, 1]", ErrInvalidParameters, p.NormalThreshold)
	case !(p.DepthThreshold > 0):
		return fmt.Errorf("%w: depth threshold %g must be positive", ErrInvalidParameters, p.DepthThreshold)
	case p.TapCount < 1 || p.TapCount > maxTapCount:
		return fmt.Errorf("%w: tap count %d outside [1, %d]", ErrInvalidParameters, p.TapCount, maxTapCount)
	case !(p.MaxPixelRadius >= 1):
		return fmt.Errorf("%w: max pixel radius %g below 1", ErrInvalidParameters, p.MaxPixelRadius)
	}
	return nil
}

var (
	envParamsOnce sync.Once
	envParams     FilterParameters
)

// FilterParametersFromEnv returns DefaultFilterParameters overridden by the
// RTAO_DENOISE_* environment variables. The environment is read once;
// unparsable or out-of-range values are ignored.
func FilterParametersFromEnv() FilterParameters {
	envParamsOnce.Do(func() {
		envParams = parametersFromLookup(os.LookupEnv)
	})
	return envParams
}

func parametersFromLookup(lookup func(string) (string, bool)) FilterParameters {
	p := DefaultFilterParameters()

	if v, ok := lookupFloat(lookup, EnvRadius); ok && v > 0 {
		p.Radius = v
	}
	if v, ok := lookup(EnvTapCount); ok {
		if n, err := strconv.Atoi(v); err == nil && n >= 1 && n <= maxTapCount {
			p.TapCount = n
		}
	}
	if v, ok := lookupFloat(lookup, EnvNormalThreshold); ok && v >= 0 && v <= 1 {
		p.NormalThreshold = v
	}
	if v, ok := lookupFloat(lookup, EnvDepthThreshold); ok && v > 0 {
		p.DepthThreshold = v
	}
	return p
}

func lookupFloat(lookup func(string) (string, bool), key string) (float32, bool) {
	s, ok := lookup(key)
	if !ok || s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 32)
	if err != nil {
		return 0, false
	}
	return float32(f), true
}
