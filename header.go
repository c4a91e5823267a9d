package wavdac

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/riff"
)

// Header is the canonical 44 byte RIFF/WAVE header, one field per entry in
// the on-disk layout.
type Header struct {
	ChunkID   [4]byte
	ChunkSize uint32
	WaveID    [4]byte

	FmtID         [4]byte
	FmtSize       uint32
	AudioFormat   uint16
	NumChannels   uint16
	SampleRate    uint32
	ByteRate      uint32
	BlockAlign    uint16
	BitsPerSample uint16

	DataID   [4]byte
	DataSize uint32
}

// NewHeader returns a canonical PCM header for the given layout.
func NewHeader(sampleRate, bitDepth, numChans int, dataSize uint32) *Header {
	blockAlign := numChans * bytesPerSample(bitDepth)

	return &Header{
		ChunkID:       riff.RiffID,
		ChunkSize:     HeaderSize - 8 + dataSize,
		WaveID:        riff.WavFormatID,
		FmtID:         riff.FmtID,
		FmtSize:       16,
		AudioFormat:   wavFormatPCM,
		NumChannels:   uint16(numChans),
		SampleRate:    uint32(sampleRate),
		ByteRate:      uint32(sampleRate * blockAlign),
		BlockAlign:    uint16(blockAlign),
		BitsPerSample: uint16(bitDepth),
		DataID:        riff.DataFormatID,
		DataSize:      dataSize,
	}
}

// ReadHeader consumes exactly HeaderSize bytes from r and validates them.
// The returned header always describes 8 or 16-bit PCM with one or two
// channels and a non zero sample rate.
func ReadHeader(r io.Reader) (*Header, error) {
	var raw [HeaderSize]byte

	_, err := io.ReadFull(r, raw[:])
	if err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}

		return nil, fmt.Errorf("%w: failed to read wav header: %w", ErrIO, err)
	}

	h := &Header{}

	err = h.UnmarshalBinary(raw[:])
	if err != nil {
		return nil, err
	}

	err = h.Validate()
	if err != nil {
		return nil, err
	}

	return h, nil
}

// UnmarshalBinary decodes the little endian header fields without validating
// them.
func (h *Header) UnmarshalBinary(data []byte) error {
	if len(data) < HeaderSize {
		return fmt.Errorf("%w: header needs %d bytes, got %d", ErrIO, HeaderSize, len(data))
	}

	le := binary.LittleEndian

	copy(h.ChunkID[:], data[0:4])
	h.ChunkSize = le.Uint32(data[4:8])
	copy(h.WaveID[:], data[8:12])
	copy(h.FmtID[:], data[12:16])
	h.FmtSize = le.Uint32(data[16:20])
	h.AudioFormat = le.Uint16(data[20:22])
	h.NumChannels = le.Uint16(data[22:24])
	h.SampleRate = le.Uint32(data[24:28])
	h.ByteRate = le.Uint32(data[28:32])
	h.BlockAlign = le.Uint16(data[32:34])
	h.BitsPerSample = le.Uint16(data[34:36])
	copy(h.DataID[:], data[36:40])
	h.DataSize = le.Uint32(data[40:44])

	return nil
}

// MarshalBinary encodes the header in its 44 byte on-disk form.
func (h *Header) MarshalBinary() ([]byte, error) {
	out := make([]byte, HeaderSize)
	le := binary.LittleEndian

	copy(out[0:4], h.ChunkID[:])
	le.PutUint32(out[4:8], h.ChunkSize)
	copy(out[8:12], h.WaveID[:])
	copy(out[12:16], h.FmtID[:])
	le.PutUint32(out[16:20], h.FmtSize)
	le.PutUint16(out[20:22], h.AudioFormat)
	le.PutUint16(out[22:24], h.NumChannels)
	le.PutUint32(out[24:28], h.SampleRate)
	le.PutUint32(out[28:32], h.ByteRate)
	le.PutUint16(out[32:34], h.BlockAlign)
	le.PutUint16(out[34:36], h.BitsPerSample)
	copy(out[36:40], h.DataID[:])
	le.PutUint32(out[40:44], h.DataSize)

	return out, nil
}

// Validate checks that the header describes something the DAC can play.
// The channel count is derived from the byte rate, not from NumChannels.
func (h *Header) Validate() error {
	if h.ChunkID != riff.RiffID || h.WaveID != riff.WavFormatID {
		return fmt.Errorf("%w: %q/%q - %w", ErrUnsupportedFormat, h.ChunkID[:], h.WaveID[:], riff.ErrFmtNotSupported)
	}

	if h.AudioFormat != wavFormatPCM {
		return fmt.Errorf("%w: format tag %d is not PCM", ErrUnsupportedFormat, h.AudioFormat)
	}

	if h.SampleRate == 0 {
		return fmt.Errorf("%w: sample rate is 0", ErrUnsupportedFormat)
	}

	if h.BitsPerSample != 8 && h.BitsPerSample != 16 {
		return fmt.Errorf("%w: %d sample bits", ErrUnsupportedFormat, h.BitsPerSample)
	}

	chn := h.Channels()
	if chn < 1 || chn > 2 {
		return fmt.Errorf("%w: %d channels", ErrUnsupportedFormat, chn)
	}

	return nil
}

// BytesPerSample returns the storage size of one sample of one channel.
func (h *Header) BytesPerSample() int {
	return int(h.BitsPerSample) / 8
}

// Channels returns the channel count derived from the byte rate.
func (h *Header) Channels() int {
	bps := h.BytesPerSample()
	if h.SampleRate == 0 || bps == 0 {
		return 0
	}

	return int(h.ByteRate / h.SampleRate / uint32(bps))
}

// Stride is the number of bytes between two consecutive first-channel
// samples.
func (h *Header) Stride() int {
	return h.Channels() * h.BytesPerSample()
}

// Interval is the time between two samples, truncated to whole microseconds.
func (h *Header) Interval() time.Duration {
	if h.SampleRate == 0 {
		return 0
	}

	return time.Duration(1_000_000/h.SampleRate) * time.Microsecond
}

// Duration returns the playback length declared by the data chunk size.
func (h *Header) Duration() time.Duration {
	if h.ByteRate == 0 {
		return 0
	}

	return time.Duration(float64(h.DataSize) / float64(h.ByteRate) * float64(time.Second))
}

// Canonical reports whether the fmt and data chunks sit at their canonical
// offsets. When they don't, the bytes after the header are not guaranteed to
// be sample data.
func (h *Header) Canonical() bool {
	return h.FmtID == riff.FmtID && h.FmtSize == 16 && h.DataID == riff.DataFormatID
}

// Format returns the audio format described by the header.
func (h *Header) Format() *audio.Format {
	if h == nil {
		return nil
	}

	return &audio.Format{
		NumChannels: h.Channels(),
		SampleRate:  int(h.SampleRate),
	}
}

// String implements the Stringer interface.
func (h *Header) String() string {
	return fmt.Sprintf("%d Hz @ %d bits, %d channel(s), %d avg bytes/sec, duration: %s",
		h.SampleRate, h.BitsPerSample, h.Channels(), h.ByteRate, h.Duration())
}
