package wavdac

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/go-audio/aiff"
	"github.com/go-audio/audio"
	"github.com/go-audio/riff"
)

var (
	// ErrPCMChunkNotFound indicates a wav file without data chunk.
	ErrPCMChunkNotFound = errors.New("PCM chunk not found in audio file")
	errFmtChunkNotFound = errors.New("fmt chunk not found in audio file")

	aiffFormID = [4]byte{'F', 'O', 'R', 'M'}
)

// LoadPCM reads a whole PCM WAV (any chunk layout) or AIFF file. Samples are
// returned signed, whatever the container's convention, with SourceBitDepth
// set to the sample storage size in bits.
func LoadPCM(r io.ReadSeeker) (*audio.IntBuffer, error) {
	var id [4]byte

	_, err := io.ReadFull(r, id[:])
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read container id: %w", ErrIO, err)
	}

	_, err = r.Seek(0, io.SeekStart)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to rewind: %w", ErrIO, err)
	}

	switch id {
	case riff.RiffID:
		return loadWav(r)
	case aiffFormID:
		return loadAiff(r)
	default:
		return nil, fmt.Errorf("%w: %q - %w", ErrUnsupportedFormat, id[:], riff.ErrFmtNotSupported)
	}
}

func loadAiff(r io.ReadSeeker) (*audio.IntBuffer, error) {
	d := aiff.NewDecoder(r)

	buf, err := d.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decode aiff: %w", ErrIO, err)
	}

	if d.NumChans == 0 || d.BitDepth == 0 {
		return nil, fmt.Errorf("%w: invalid aiff file", ErrUnsupportedFormat)
	}

	buf.Format = &audio.Format{
		NumChannels: int(d.NumChans),
		SampleRate:  int(d.SampleRate),
	}
	buf.SourceBitDepth = int(d.BitDepth)

	return buf, nil
}

func loadWav(r io.Reader) (*audio.IntBuffer, error) {
	parser := riff.New(r)

	err := parser.ParseHeaders()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedFormat, err)
	}

	if parser.Format != riff.WavFormatID {
		return nil, fmt.Errorf("%w: %q - %w", ErrUnsupportedFormat, parser.Format[:], riff.ErrFmtNotSupported)
	}

	var (
		gotFmt bool
		data   []byte
	)

	for data == nil || !gotFmt {
		chunk, err := nextChunk(parser, r)
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrIO, err)
		}

		switch chunk.ID {
		case riff.FmtID:
			err = chunk.DecodeWavHeader(parser)
			if err != nil {
				return nil, fmt.Errorf("%w: failed to decode fmt chunk: %w", ErrIO, err)
			}

			gotFmt = true
		case riff.DataFormatID:
			data, err = io.ReadAll(chunk)
			if err != nil {
				return nil, fmt.Errorf("%w: failed to read PCM data: %w", ErrIO, err)
			}
		}

		chunk.Drain()
		skipPadding(r, chunk)
	}

	if !gotFmt {
		return nil, errFmtChunkNotFound
	}

	if data == nil {
		return nil, ErrPCMChunkNotFound
	}

	if parser.WavAudioFormat != wavFormatPCM {
		return nil, fmt.Errorf("%w: format tag %d is not PCM", ErrUnsupportedFormat, parser.WavAudioFormat)
	}

	return decodeSamples(data, int(parser.BitsPerSample), &audio.Format{
		NumChannels: int(parser.NumChannels),
		SampleRate:  int(parser.SampleRate),
	})
}

// nextChunk reads the next chunk header without the padding adjustment
// riff.Parser.NextChunk applies, so the data chunk keeps its declared size.
func nextChunk(parser *riff.Parser, r io.Reader) (*riff.Chunk, error) {
	id, size, err := parser.IDnSize()
	if err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, io.EOF
		}

		return nil, err
	}

	return &riff.Chunk{
		ID:   id,
		Size: int(size),
		R:    io.LimitReader(r, int64(size)),
	}, nil
}

// all RIFF chunks are word aligned, odd sized ones are followed by a pad byte.
func skipPadding(r io.Reader, chunk *riff.Chunk) {
	if chunk.Size%2 == 1 {
		var pad [1]byte
		io.ReadFull(r, pad[:])
	}
}

func decodeSamples(data []byte, bitDepth int, format *audio.Format) (*audio.IntBuffer, error) {
	decodeF, err := sampleDecodeFunc(bitDepth)
	if err != nil {
		return nil, err
	}

	bps := bytesPerSample(bitDepth)
	buf := &audio.IntBuffer{
		Format:         format,
		SourceBitDepth: bps * 8,
		Data:           make([]int, 0, len(data)/bps),
	}

	for i := 0; i+bps <= len(data); i += bps {
		buf.Data = append(buf.Data, decodeF(data[i:i+bps]))
	}

	return buf, nil
}

// sampleDecodeFunc returns a function converting the little endian bytes of
// one sample into a signed int. 8-bit wav samples are unsigned on disk and
// get re-centered around 0.
func sampleDecodeFunc(bitsPerSample int) (func([]byte) int, error) {
	switch {
	case bitsPerSample == 8:
		return func(b []byte) int {
			return int(b[0]) - pcm8Offset
		}, nil
	case bitsPerSample > 8 && bitsPerSample <= 16:
		return func(b []byte) int {
			return int(int16(binary.LittleEndian.Uint16(b)))
		}, nil
	case bitsPerSample > 16 && bitsPerSample <= 24:
		return func(b []byte) int {
			return int(audio.Int24LETo32(b))
		}, nil
	case bitsPerSample > 24 && bitsPerSample <= 32:
		return func(b []byte) int {
			return int(int32(binary.LittleEndian.Uint32(b)))
		}, nil
	default:
		return nil, fmt.Errorf("%w: %d sample bits", ErrUnsupportedFormat, bitsPerSample)
	}
}
