package wavdac

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCode16MatchesFormula(t *testing.T) {
	var prev uint16

	for s := math.MinInt16; s <= math.MaxInt16; s++ {
		var b [2]byte
		binary.LittleEndian.PutUint16(b[:], uint16(int16(s)))

		got := Code16(b[0], b[1])
		want := uint16(((s + 0x8000) >> 4) & 0x0FFF)

		if got != want {
			t.Fatalf("Code16(%d)=%#03x, want %#03x", s, got, want)
		}

		if s > math.MinInt16 && got < prev {
			t.Fatalf("Code16 not monotonic at %d: %#03x < %#03x", s, got, prev)
		}

		prev = got
	}
}

func TestCode16Extremes(t *testing.T) {
	require.Equal(t, uint16(0x000), Code16(0x00, 0x80)) // -32768
	require.Equal(t, uint16(0x800), Code16(0x00, 0x00)) // 0
	require.Equal(t, uint16(0xFFF), Code16(0xFF, 0x7F)) // 32767
}

func TestCode8Exhaustive(t *testing.T) {
	cmds := []uint16{ChannelSelectA, Command(true, false), Command(false, true), Command(true, true)}

	for b := 0; b <= 255; b++ {
		code := Code8(byte(b))
		if code != uint16(b<<4)&0x0FFF {
			t.Fatalf("Code8(%d)=%#03x", b, code)
		}

		for _, cmd := range cmds {
			w := EncodeFrame(code, cmd).Uint16()
			if w&0xF000 != cmd || w&0x0FFF != code {
				t.Fatalf("Code8(%d)+%#04x overflowed into the command nibble: %#04x", b, cmd, w)
			}
		}
	}
}

func TestSwap16RoundTrip(t *testing.T) {
	for v := 0; v <= math.MaxUint16; v++ {
		if got := Swap16(Swap16(uint16(v))); got != uint16(v) {
			t.Fatalf("Swap16(Swap16(%#04x))=%#04x", v, got)
		}
	}

	require.Equal(t, uint16(0x3412), Swap16(0x1234))
}

func TestEncodeFrameWireOrder(t *testing.T) {
	code := Code16(0x00, 0x00)
	frame := EncodeFrame(code, ChannelSelectA)

	require.Equal(t, Frame{0x18, 0x00}, frame)
	require.Equal(t, uint16(0x1800), frame.Uint16())
	// the frame is the swapped word as it sits in little endian memory
	require.Equal(t, Swap16(code+ChannelSelectA), binary.LittleEndian.Uint16(frame[:]))
}

func TestCommand(t *testing.T) {
	tests := []struct {
		name     string
		buffered bool
		gain1x   bool
		want     uint16
	}{
		{"default", false, false, 0x1000},
		{"buffered", true, false, 0x5000},
		{"gain 1x", false, true, 0x3000},
		{"both", true, true, 0x7000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Command(tt.buffered, tt.gain1x))
		})
	}
}

func TestFrameEncodeFunc(t *testing.T) {
	enc8, err := frameEncodeFunc(8, ChannelSelectA)
	require.NoError(t, err)
	require.Equal(t, Frame{0x1F, 0xF0}, enc8([]byte{0xFF}))

	enc16, err := frameEncodeFunc(16, ChannelSelectA)
	require.NoError(t, err)
	require.Equal(t, Frame{0x1F, 0xFF}, enc16([]byte{0xFF, 0x7F}))

	_, err = frameEncodeFunc(24, ChannelSelectA)
	require.ErrorIs(t, err, ErrUnsupportedFormat)
}
