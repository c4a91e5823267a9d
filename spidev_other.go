//go:build !linux

package wavdac

import "fmt"

// SPIDev is only available on Linux.
type SPIDev struct{}

// OpenSPI always fails outside Linux.
func OpenSPI(cfg BusConfig) (*SPIDev, error) {
	return nil, fmt.Errorf("%w: spidev %s requires linux", ErrBusInit, cfg.DevicePath())
}

// Transfer implements Bus.
func (d *SPIDev) Transfer(tx, rx []byte) error {
	return ErrTransfer
}

// Close implements Bus.
func (d *SPIDev) Close() error {
	return nil
}
