package wavdac

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-audio/audio"
)

var (
	errNilBuffer       = errors.New("can't add a nil buffer")
	errAlreadyWroteHdr = errors.New("already wrote header")
	errNilWriter       = errors.New("can't write to a nil writer")
)

// Encoder writes 8 or 16-bit PCM into a wav container with the canonical 44
// byte header, the only layout the player reads.
type Encoder struct {
	w   io.WriteSeeker
	buf *bytes.Buffer

	SampleRate int
	BitDepth   int
	NumChans   int

	WrittenBytes int
	samples      int
	wroteHeader  bool
}

// NewEncoder creates a new encoder. Samples are given in their stored form:
// unsigned for 8 bits, signed for 16 bits.
func NewEncoder(w io.WriteSeeker, sampleRate, bitDepth, numChans int) *Encoder {
	return &Encoder{
		w:          w,
		buf:        &bytes.Buffer{},
		SampleRate: sampleRate,
		BitDepth:   bitDepth,
		NumChans:   numChans,
	}
}

// AddLE serializes and adds the passed value using little endian.
func (e *Encoder) AddLE(src any) error {
	e.WrittenBytes += binary.Size(src)

	err := binary.Write(e.w, binary.LittleEndian, src)
	if err != nil {
		return fmt.Errorf("failed to write little endian: %w", err)
	}

	return nil
}

func (e *Encoder) header() *Header {
	return NewHeader(e.SampleRate, e.BitDepth, e.NumChans, uint32(e.samples*bytesPerSample(e.BitDepth)))
}

func (e *Encoder) writeHeader() error {
	if e.wroteHeader {
		return errAlreadyWroteHdr
	}

	if e.w == nil {
		return errNilWriter
	}

	err := e.header().Validate()
	if err != nil {
		return err
	}

	e.wroteHeader = true

	// sizes are patched by Close
	raw, err := e.header().MarshalBinary()
	if err != nil {
		return err
	}

	return e.AddLE(raw)
}

func (e *Encoder) addSample(dst *bytes.Buffer, v int) error {
	switch e.BitDepth {
	case 8:
		return dst.WriteByte(uint8(v))
	case 16:
		return binary.Write(dst, binary.LittleEndian, int16(v))
	default:
		return fmt.Errorf("%w: %d sample bits", ErrUnsupportedFormat, e.BitDepth)
	}
}

// Write encodes and writes the passed buffer to the underlying writer.
// Don't forget to Close() the encoder or the file won't be valid.
func (e *Encoder) Write(buf *audio.IntBuffer) error {
	if buf == nil {
		return errNilBuffer
	}

	if !e.wroteHeader {
		err := e.writeHeader()
		if err != nil {
			return err
		}
	}

	for _, v := range buf.Data {
		err := e.addSample(e.buf, v)
		if err != nil {
			return err
		}
	}

	n, err := e.w.Write(e.buf.Bytes())
	e.WrittenBytes += n

	if err != nil {
		return fmt.Errorf("failed to write buffer: %w", err)
	}

	e.samples += len(buf.Data)
	e.buf.Reset()

	return nil
}

// WriteFrame writes a single sample to the underlying writer.
func (e *Encoder) WriteFrame(value int) error {
	if !e.wroteHeader {
		err := e.writeHeader()
		if err != nil {
			return err
		}
	}

	err := e.addSample(e.buf, value)
	if err != nil {
		return err
	}

	e.samples++

	return e.AddLE(e.buf.Next(e.buf.Len()))
}

// Close rewrites the header with the final sizes.
// Note that the underlying writer is NOT being closed.
func (e *Encoder) Close() error {
	if e == nil || e.w == nil {
		return nil
	}

	if !e.wroteHeader {
		err := e.writeHeader()
		if err != nil {
			return err
		}
	}

	if _, err := e.w.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("failed to seek to header: %w", err)
	}

	raw, err := e.header().MarshalBinary()
	if err != nil {
		return err
	}

	_, err = e.w.Write(raw)
	if err != nil {
		return fmt.Errorf("%w when rewriting the header", err)
	}

	if _, err := e.w.Seek(0, io.SeekEnd); err != nil {
		return fmt.Errorf("failed to seek to end of file: %w", err)
	}

	if f, ok := e.w.(*os.File); ok {
		return f.Sync()
	}

	return nil
}
