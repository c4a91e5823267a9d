package wavdac

import (
	"fmt"
	"math/bits"
)

// MCP4921 command nibble, sent in the top 4 bits of every 16-bit word.
const (
	// CmdDACB selects DAC B on dual-channel parts (ignored by the MCP4921).
	CmdDACB uint16 = 0x8000
	// CmdBuffered enables the VREF input buffer.
	CmdBuffered uint16 = 0x4000
	// CmdGain1x selects 1x output gain instead of 2x.
	CmdGain1x uint16 = 0x2000
	// CmdActive keeps the output stage on (clear means shutdown).
	CmdActive uint16 = 0x1000

	// ChannelSelectA loads DAC A with 2x gain, unbuffered, output active.
	ChannelSelectA = CmdActive

	codeMask = 0x0FFF
)

// Frame is one 16-bit DAC word in the order it goes on the wire.
type Frame [2]byte

// Uint16 returns the frame as the host value it was built from.
func (f Frame) Uint16() uint16 {
	return uint16(f[0])<<8 | uint16(f[1])
}

// Command builds the channel A command nibble.
func Command(buffered, gain1x bool) uint16 {
	cmd := ChannelSelectA
	if buffered {
		cmd |= CmdBuffered
	}

	if gain1x {
		cmd |= CmdGain1x
	}

	return cmd
}

// Code16 maps a signed little endian 16-bit sample to a 12-bit DAC code.
func Code16(lo, hi byte) uint16 {
	s := int16(uint16(lo) | uint16(hi)<<8)
	return (uint16(s) + 0x8000) >> 4 & codeMask
}

// Code8 maps an unsigned 8-bit sample to a DAC code. The byte lands in bits
// 4-11 without the offset applied on the 16-bit path.
func Code8(b byte) uint16 {
	return uint16(b) << 4 & codeMask
}

// Swap16 swaps the two bytes of v.
func Swap16(v uint16) uint16 {
	return bits.ReverseBytes16(v)
}

// EncodeFrame adds the command nibble to a 12-bit code and returns the word
// most significant byte first. The code's top nibble is always zero so the
// addition never carries into the command.
func EncodeFrame(code, cmd uint16) Frame {
	w := code + cmd
	return Frame{byte(w >> 8), byte(w)}
}

// frameEncodeFunc returns a function turning the first channel bytes of one
// sample into a frame for the given bit depth.
func frameEncodeFunc(bitsPerSample int, cmd uint16) (func(sample []byte) Frame, error) {
	switch bitsPerSample {
	case 8:
		return func(sample []byte) Frame {
			return EncodeFrame(Code8(sample[0]), cmd)
		}, nil
	case 16:
		return func(sample []byte) Frame {
			return EncodeFrame(Code16(sample[0], sample[1]), cmd)
		}, nil
	default:
		return nil, fmt.Errorf("%w: %d sample bits", ErrUnsupportedFormat, bitsPerSample)
	}
}
