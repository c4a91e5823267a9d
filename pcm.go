package wavdac

import (
	"fmt"
	"math"

	"github.com/go-audio/audio"
)

const (
	maxPCMInt8Unsigned = 255
	scalePCMInt16      = 32768.0
	floatPCM8Scale     = 127.5
	maxPCMInt16        = 32767
	pcm8Offset         = 128
)

func clampFloat32(value, min, max float32) float32 {
	if value < min {
		return min
	}

	if value > max {
		return max
	}

	return value
}

func float32ToPCMUint8(value float32) uint8 {
	value = clampFloat32(value, -1, 1)

	scaled := int(math.Round(float64((value + 1.0) * floatPCM8Scale)))
	if scaled < 0 {
		return 0
	}

	if scaled > maxPCMInt8Unsigned {
		return maxPCMInt8Unsigned
	}

	return uint8(scaled)
}

func float32ToPCMInt16(value float32) int16 {
	value = clampFloat32(value, -1, 1)

	sample := min(int64(math.Round(float64(value)*scalePCMInt16)), maxPCMInt16)
	if sample < -scalePCMInt16 {
		sample = -scalePCMInt16
	}

	return int16(sample)
}

// PCMFromFloat converts a sample in [-1, 1] to its stored WAV value: unsigned
// for 8 bits, signed for 16 bits. Other depths return 0.
func PCMFromFloat(value float32, bitDepth int) int {
	switch bitDepth {
	case 8:
		return int(float32ToPCMUint8(value))
	case 16:
		return int(float32ToPCMInt16(value))
	default:
		return 0
	}
}

// rescale moves a signed sample from one bit depth to another.
func rescale(v, from, to int) int {
	switch {
	case from > to:
		return v >> (from - to)
	case from < to:
		return v << (to - from)
	default:
		return v
	}
}

// Reduce converts a buffer of signed samples (as returned by LoadPCM) into
// the stored representation of a bitDepth WAV the player accepts: unsigned
// 8-bit or signed 16-bit. With downmix every frame is averaged into one
// channel, otherwise anything past the second channel is dropped.
func Reduce(buf *audio.IntBuffer, bitDepth int, downmix bool) (*audio.IntBuffer, error) {
	if buf == nil || buf.Format == nil {
		return nil, audio.ErrInvalidBuffer
	}

	if bitDepth != 8 && bitDepth != 16 {
		return nil, fmt.Errorf("%w: %d sample bits", ErrUnsupportedFormat, bitDepth)
	}

	srcBits := buf.SourceBitDepth
	if srcBits <= 0 || srcBits > 32 {
		return nil, fmt.Errorf("%w: source depth %d", ErrUnsupportedFormat, srcBits)
	}

	inChans := buf.Format.NumChannels
	if inChans < 1 {
		return nil, fmt.Errorf("%w: %d channels", ErrUnsupportedFormat, inChans)
	}

	outChans := min(inChans, 2)
	if downmix {
		outChans = 1
	}

	frames := len(buf.Data) / inChans
	out := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: outChans,
			SampleRate:  buf.Format.SampleRate,
		},
		SourceBitDepth: bitDepth,
		Data:           make([]int, 0, frames*outChans),
	}

	for i := range frames {
		frame := buf.Data[i*inChans : (i+1)*inChans]

		if downmix {
			sum := 0
			for _, v := range frame {
				sum += v
			}

			out.Data = append(out.Data, storedSample(sum/inChans, srcBits, bitDepth))

			continue
		}

		for _, v := range frame[:outChans] {
			out.Data = append(out.Data, storedSample(v, srcBits, bitDepth))
		}
	}

	return out, nil
}

func storedSample(v, from, to int) int {
	s := rescale(v, from, to)
	if to == 8 {
		return s + pcm8Offset
	}

	return s
}
