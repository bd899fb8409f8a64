package texture

import "github.com/gogpu/gputypes"

// FormatInfo contains storage metadata about a supported texture format.
type FormatInfo struct {
	// BytesPerTexel is the GPU-side size of one texel.
	BytesPerTexel int

	// Channels is the number of float channels per texel.
	Channels int

	// Half indicates 16-bit float storage.
	Half bool
}

// formatInfoTable lists the formats the denoiser works with.
// Everything else is rejected with ErrUnsupportedFormat.
var formatInfoTable = map[gputypes.TextureFormat]FormatInfo{
	gputypes.TextureFormatR16Float: {
		BytesPerTexel: 2,
		Channels:      1,
		Half:          true,
	},
	gputypes.TextureFormatR32Float: {
		BytesPerTexel: 4,
		Channels:      1,
	},
	gputypes.TextureFormatRGBA16Float: {
		BytesPerTexel: 8,
		Channels:      4,
		Half:          true,
	},
	gputypes.TextureFormatRGBA32Float: {
		BytesPerTexel: 16,
		Channels:      4,
	},
}

// Info returns the FormatInfo for format and whether the format is supported.
func Info(format gputypes.TextureFormat) (FormatInfo, bool) {
	info, ok := formatInfoTable[format]
	return info, ok
}

// Supported reports whether textures of the given format can be allocated.
func Supported(format gputypes.TextureFormat) bool {
	_, ok := formatInfoTable[format]
	return ok
}

// ByteSize returns the GPU-side size of a width x height texture in format.
// Returns 0 for unsupported formats.
func ByteSize(width, height int, format gputypes.TextureFormat) int {
	info, ok := formatInfoTable[format]
	if !ok {
		return 0
	}
	return width * height * info.BytesPerTexel
}
