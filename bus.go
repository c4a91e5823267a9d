package wavdac

import (
	"bufio"
	"fmt"
	"io"
)

// Bus is the link to the DAC. Transfer is a synchronous duplex exchange of
// len(tx) bytes; rx may be nil when the caller doesn't care about the
// returned bytes. Close tears the bus down and must be called exactly once.
type Bus interface {
	Transfer(tx, rx []byte) error
	Close() error
}

// BCM2835CoreClock is the clock the SPI divider applies to on a Raspberry Pi.
const BCM2835CoreClock = 250_000_000

// BusConfig describes how the SPI peripheral is driven.
type BusConfig struct {
	// Device overrides the spidev node derived from ChipSelect.
	Device string `toml:"device"`
	// BitOrder is "msb" or "lsb".
	BitOrder string `toml:"bit_order"`
	// Mode is the SPI clock mode, 0 to 3.
	Mode int `toml:"mode"`
	// ClockDivider divides BCM2835CoreClock, must be a power of two.
	ClockDivider int `toml:"clock_divider"`
	ChipSelect   int `toml:"chip_select"`
	// CSPolarity is the active level of the chip select line, "low" or "high".
	CSPolarity string `toml:"cs_polarity"`
}

// DefaultBusConfig matches the MCP4921 wiring on the Pi's SPI0 header pins.
func DefaultBusConfig() BusConfig {
	return BusConfig{
		BitOrder:     "msb",
		Mode:         0,
		ClockDivider: 64,
		ChipSelect:   0,
		CSPolarity:   "low",
	}
}

// DevicePath returns the spidev node to open.
func (c BusConfig) DevicePath() string {
	if c.Device != "" {
		return c.Device
	}

	return fmt.Sprintf("/dev/spidev0.%d", c.ChipSelect)
}

// SpeedHz is the resulting SPI clock.
func (c BusConfig) SpeedHz() uint32 {
	if c.ClockDivider <= 0 {
		return 0
	}

	return uint32(BCM2835CoreClock / c.ClockDivider)
}

// Validate reports the first invalid field.
func (c BusConfig) Validate() error {
	if c.BitOrder != "msb" && c.BitOrder != "lsb" {
		return fmt.Errorf("%w: bit order %q", ErrConfig, c.BitOrder)
	}

	if c.Mode < 0 || c.Mode > 3 {
		return fmt.Errorf("%w: spi mode %d", ErrConfig, c.Mode)
	}

	if c.ClockDivider < 2 || c.ClockDivider > 65536 || c.ClockDivider&(c.ClockDivider-1) != 0 {
		return fmt.Errorf("%w: clock divider %d", ErrConfig, c.ClockDivider)
	}

	if c.ChipSelect < 0 || c.ChipSelect > 1 {
		return fmt.Errorf("%w: chip select %d", ErrConfig, c.ChipSelect)
	}

	if c.CSPolarity != "low" && c.CSPolarity != "high" {
		return fmt.Errorf("%w: chip select polarity %q", ErrConfig, c.CSPolarity)
	}

	return nil
}

// FrameWriter is a Bus that records every transmitted byte to a writer
// instead of driving hardware. Received bytes are always zero.
type FrameWriter struct {
	w      *bufio.Writer
	closer io.Closer
	frames int
}

// NewFrameWriter wraps w. If w is also an io.Closer it is closed by Close.
func NewFrameWriter(w io.Writer) *FrameWriter {
	fw := &FrameWriter{w: bufio.NewWriter(w)}
	if c, ok := w.(io.Closer); ok {
		fw.closer = c
	}

	return fw
}

// Transfer implements Bus.
func (f *FrameWriter) Transfer(tx, rx []byte) error {
	_, err := f.w.Write(tx)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrTransfer, err)
	}

	clear(rx)

	f.frames++

	return nil
}

// Frames returns the number of transfers so far.
func (f *FrameWriter) Frames() int {
	return f.frames
}

// Close implements Bus.
func (f *FrameWriter) Close() error {
	err := f.w.Flush()
	if err != nil {
		return fmt.Errorf("failed to flush frames: %w", err)
	}

	if f.closer != nil {
		return f.closer.Close()
	}

	return nil
}
