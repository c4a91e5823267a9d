package wavdac

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	// DefaultBlockSize is the size of the audio block refilled from the input.
	DefaultBlockSize = 4 * 1024 * 1024
	// MaxBlockSize caps the audio block allocation.
	MaxBlockSize = 256 * 1024 * 1024
)

// State is the playback state.
type State int

const (
	AwaitHeader State = iota
	Streaming
	Drained
	Failed
)

func (s State) String() string {
	switch s {
	case AwaitHeader:
		return "await-header"
	case Streaming:
		return "streaming"
	case Drained:
		return "drained"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Stats describes a finished (or aborted) playback.
type Stats struct {
	State  State
	Header *Header
	// Frames is the number of frames sent to the bus.
	Frames int
	// Blocks is the number of audio block refills.
	Blocks    int
	BytesRead int64
	// DroppedBytes counts trailing bytes that didn't make a full sample frame.
	DroppedBytes int
	Elapsed      time.Duration
}

// Player streams a WAV file to the DAC, one frame per sample of the first
// channel, paced at the file's sample rate.
type Player struct {
	Bus    Bus
	Waiter Waiter
	// BlockSize is the capacity of the audio block, rounded down to a whole
	// number of sample frames.
	BlockSize int
	// Command is the nibble added to every 12-bit code.
	Command uint16
	// LimitToData stops after the header's data size instead of at EOF.
	LimitToData bool
	Logger      logrus.FieldLogger

	block []byte
}

// NewPlayer returns a player with the default block size, spin pacing and
// channel A command.
func NewPlayer(bus Bus) *Player {
	return &Player{
		Bus:       bus,
		Waiter:    SpinWaiter{},
		BlockSize: DefaultBlockSize,
		Command:   ChannelSelectA,
		Logger:    logrus.StandardLogger(),
	}
}

// Play reads the header from r and streams the samples that follow until r is
// drained. Errors are terminal, nothing is retried. ctx is checked between
// samples.
func (p *Player) Play(ctx context.Context, r io.Reader) (*Stats, error) {
	stats := &Stats{State: AwaitHeader}
	start := time.Now()

	err := p.play(ctx, r, stats)

	stats.Elapsed = time.Since(start)
	if err != nil {
		stats.State = Failed
		return stats, err
	}

	stats.State = Drained

	return stats, nil
}

func (p *Player) play(ctx context.Context, r io.Reader, stats *Stats) error {
	if p.Bus == nil {
		return fmt.Errorf("%w: no bus", ErrBusInit)
	}

	h, err := ReadHeader(r)
	if err != nil {
		return err
	}

	stats.Header = h

	log := p.logger()
	interval := h.Interval()

	log.WithFields(logrus.Fields{
		"sample_rate":     h.SampleRate,
		"byte_rate":       h.ByteRate,
		"bits_per_sample": h.BitsPerSample,
		"channels":        h.Channels(),
		"length":          h.ChunkSize,
		"gap":             interval,
	}).Info("playing wav")

	if !h.Canonical() {
		log.WithFields(logrus.Fields{
			"fmt_id":  string(h.FmtID[:]),
			"data_id": string(h.DataID[:]),
		}).Warn("non canonical header, trailing chunks may be played as samples")
	}

	if h.Channels() > 1 {
		log.Debug("only the first channel is sent to the DAC")
	}

	encode, err := frameEncodeFunc(int(h.BitsPerSample), p.Command)
	if err != nil {
		return err
	}

	stride := h.Stride()
	bps := h.BytesPerSample()

	block, err := p.audioBlock(stride)
	if err != nil {
		return err
	}

	if p.LimitToData {
		r = io.LimitReader(r, int64(h.DataSize))
	}

	waiter := p.Waiter
	if waiter == nil {
		waiter = SpinWaiter{}
	}

	tx := make([]byte, len(Frame{}))
	rx := make([]byte, len(Frame{}))
	done := ctx.Done()

	stats.State = Streaming

	for {
		n, readErr := io.ReadFull(r, block)
		if readErr != nil && !errors.Is(readErr, io.EOF) && !errors.Is(readErr, io.ErrUnexpectedEOF) {
			return fmt.Errorf("%w: failed to read samples: %w", ErrIO, readErr)
		}

		if n <= 0 {
			return nil
		}

		stats.Blocks++
		stats.BytesRead += int64(n)

		log.WithFields(logrus.Fields{"block": stats.Blocks, "bytes": n}).Debug("block read")

		j := 0
		for ; j+stride <= n; j += stride {
			select {
			case <-done:
				return ctx.Err()
			default:
			}

			frame := encode(block[j : j+bps])
			tx[0], tx[1] = frame[0], frame[1]

			err := p.Bus.Transfer(tx, rx)
			if err != nil {
				if !errors.Is(err, ErrTransfer) {
					err = fmt.Errorf("%w: %w", ErrTransfer, err)
				}

				return fmt.Errorf("frame %d: %w", stats.Frames, err)
			}

			stats.Frames++

			waiter.Wait(interval)
		}

		stats.DroppedBytes += n - j

		if readErr != nil {
			return nil
		}
	}
}

// audioBlock returns the reusable block, sized to a whole number of strides.
func (p *Player) audioBlock(stride int) ([]byte, error) {
	size := p.BlockSize
	if size <= 0 || size > MaxBlockSize {
		return nil, fmt.Errorf("%w: block size %d out of range (1..%d)", ErrResourceExhausted, size, MaxBlockSize)
	}

	size -= size % stride
	if size == 0 {
		return nil, fmt.Errorf("%w: block size %d smaller than one %d byte frame", ErrResourceExhausted, p.BlockSize, stride)
	}

	if cap(p.block) < size {
		p.block = make([]byte, size)
	}

	return p.block[:size], nil
}

func (p *Player) logger() logrus.FieldLogger {
	if p.Logger == nil {
		return logrus.StandardLogger()
	}

	return p.Logger
}
