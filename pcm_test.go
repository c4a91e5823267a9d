package wavdac

import (
	"testing"

	"github.com/go-audio/audio"
	"github.com/stretchr/testify/require"
)

func TestPCMFromFloat(t *testing.T) {
	tests := []struct {
		name  string
		value float32
		bits  int
		want  int
	}{
		{"8bit min", -1, 8, 0},
		{"8bit mid", 0, 8, 128},
		{"8bit max", 1, 8, 255},
		{"8bit clamp", 3, 8, 255},
		{"16bit min", -1, 16, -32768},
		{"16bit mid", 0, 16, 0},
		{"16bit max", 1, 16, 32767},
		{"16bit clamp", -2, 16, -32768},
		{"16bit half", 0.5, 16, 16384},
		{"24bit", 0.5, 24, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, PCMFromFloat(tt.value, tt.bits))
		})
	}
}

func TestReduce(t *testing.T) {
	tests := []struct {
		name    string
		in      *audio.IntBuffer
		bits    int
		downmix bool
		want    []int
		chans   int
	}{
		{
			name:  "24 to 16 mono",
			in:    &audio.IntBuffer{Format: &audio.Format{NumChannels: 1, SampleRate: 48000}, SourceBitDepth: 24, Data: []int{0x7FFFFF, -0x800000, 256}},
			bits:  16,
			want:  []int{32767, -32768, 1},
			chans: 1,
		},
		{
			name:  "16 to 8 keeps two channels",
			in:    &audio.IntBuffer{Format: &audio.Format{NumChannels: 2, SampleRate: 8000}, SourceBitDepth: 16, Data: []int{32767, -32768, 0, 256}},
			bits:  8,
			want:  []int{255, 0, 128, 129},
			chans: 2,
		},
		{
			name:  "drops channels past the second",
			in:    &audio.IntBuffer{Format: &audio.Format{NumChannels: 3, SampleRate: 8000}, SourceBitDepth: 16, Data: []int{1, 2, 3, 4, 5, 6}},
			bits:  16,
			want:  []int{1, 2, 4, 5},
			chans: 2,
		},
		{
			name:    "downmix averages",
			in:      &audio.IntBuffer{Format: &audio.Format{NumChannels: 2, SampleRate: 8000}, SourceBitDepth: 16, Data: []int{1000, 3000, -2000, 0}},
			bits:    16,
			downmix: true,
			want:    []int{2000, -1000},
			chans:   1,
		},
		{
			name:  "8 to 16 widens",
			in:    &audio.IntBuffer{Format: &audio.Format{NumChannels: 1, SampleRate: 8000}, SourceBitDepth: 8, Data: []int{-128, 127}},
			bits:  16,
			want:  []int{-32768, 32512},
			chans: 1,
		},
		{
			name:  "drops partial frame",
			in:    &audio.IntBuffer{Format: &audio.Format{NumChannels: 2, SampleRate: 8000}, SourceBitDepth: 16, Data: []int{1, 2, 3}},
			bits:  16,
			want:  []int{1, 2},
			chans: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Reduce(tt.in, tt.bits, tt.downmix)
			require.NoError(t, err)
			require.Equal(t, tt.want, out.Data)
			require.Equal(t, tt.chans, out.Format.NumChannels)
			require.Equal(t, tt.in.Format.SampleRate, out.Format.SampleRate)
			require.Equal(t, tt.bits, out.SourceBitDepth)
		})
	}
}

func TestReduceErrors(t *testing.T) {
	mono := &audio.Format{NumChannels: 1, SampleRate: 8000}

	_, err := Reduce(nil, 16, false)
	require.ErrorIs(t, err, audio.ErrInvalidBuffer)

	_, err = Reduce(&audio.IntBuffer{}, 16, false)
	require.ErrorIs(t, err, audio.ErrInvalidBuffer)

	_, err = Reduce(&audio.IntBuffer{Format: mono, SourceBitDepth: 16}, 24, false)
	require.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = Reduce(&audio.IntBuffer{Format: mono, SourceBitDepth: 0}, 16, false)
	require.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = Reduce(&audio.IntBuffer{Format: &audio.Format{SampleRate: 8000}, SourceBitDepth: 16}, 16, false)
	require.ErrorIs(t, err, ErrUnsupportedFormat)
}
