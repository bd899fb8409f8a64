package rtao

import "errors"

var (
	// ErrMissingBinding is returned when a dispatch is recorded with a
	// kernel resource left unbound.
	ErrMissingBinding = errors.New("rtao: missing binding")

	// ErrFormatMismatch is returned when a bound texture does not have the
	// channel count its binding expects.
	ErrFormatMismatch = errors.New("rtao: texture format does not match binding")

	// ErrDeviceClosed is returned when work is submitted to a closed Device.
	ErrDeviceClosed = errors.New("rtao: device closed")

	// ErrDenoiserClosed is returned by a Denoiser after Close.
	ErrDenoiserClosed = errors.New("rtao: denoiser closed")

	// ErrInvalidCamera is returned for cameras without a positive pixel size
	// or with an unusable field of view.
	ErrInvalidCamera = errors.New("rtao: invalid camera")

	// ErrInvalidParameters is returned for out-of-range filter parameters.
	ErrInvalidParameters = errors.New("rtao: invalid filter parameters")

	// ErrSubmitted is returned when a command list is recorded into or
	// submitted after it was already submitted.
	ErrSubmitted = errors.New("rtao: command list already submitted")
)
