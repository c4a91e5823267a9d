package wavdac

import "errors"

var (
	// ErrIO indicates that the input could not be opened or read.
	ErrIO = errors.New("i/o error")
	// ErrUnsupportedFormat is returned for anything but 8 or 16-bit PCM with
	// one or two channels.
	ErrUnsupportedFormat = errors.New("unsupported format")
	// ErrResourceExhausted is returned when the audio block can't be allocated.
	ErrResourceExhausted = errors.New("resource exhausted")
	// ErrBusInit is returned when the DAC bus can't be initialized or configured.
	ErrBusInit = errors.New("bus initialization failed")
	// ErrTransfer wraps failures of a single bus transfer.
	ErrTransfer = errors.New("bus transfer failed")
	// ErrConfig indicates an invalid configuration value.
	ErrConfig = errors.New("invalid configuration")
)

const (
	wavFormatPCM = 1

	// HeaderSize is the size of the canonical RIFF/WAVE header the player reads.
	HeaderSize = 44
)

func bytesPerSample(bitDepth int) int {
	return (bitDepth-1)/8 + 1
}
