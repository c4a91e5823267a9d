//go:build linux

package wavdac

import (
	"errors"
	"fmt"
	"runtime"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Bits of the spidev mode byte, see linux/spi/spi.h.
const (
	spiCPHA     = 0x01
	spiCPOL     = 0x02
	spiCSHigh   = 0x04
	spiLSBFirst = 0x08

	spiIOCMagic = 'k'
)

// spiIOCTransfer mirrors struct spi_ioc_transfer.
type spiIOCTransfer struct {
	txBuf          uint64
	rxBuf          uint64
	len            uint32
	speedHz        uint32
	delayUsecs     uint16
	bitsPerWord    uint8
	csChange       uint8
	txNbits        uint8
	rxNbits        uint8
	wordDelayUsecs uint8
	pad            uint8
}

// iocW encodes a write ioctl request number (asm-generic/ioctl.h).
func iocW(nr, size uintptr) uintptr {
	return 1<<30 | size<<16 | spiIOCMagic<<8 | nr
}

var (
	spiIOCWrMode        = iocW(1, 1)
	spiIOCWrBitsPerWord = iocW(3, 1)
	spiIOCWrMaxSpeedHz  = iocW(4, 4)
	spiIOCMessage1      = iocW(0, unsafe.Sizeof(spiIOCTransfer{}))
)

// SPIDev drives the DAC through the kernel spidev driver.
type SPIDev struct {
	fd      int
	path    string
	speedHz uint32
	scratch []byte
}

// OpenSPI opens and configures the spidev node described by cfg.
func OpenSPI(cfg BusConfig) (*SPIDev, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBusInit, err)
	}

	path := cfg.DevicePath()

	fd, err := unix.Open(path, unix.O_RDWR|unix.O_CLOEXEC, 0)
	if err != nil {
		if errors.Is(err, unix.EACCES) || errors.Is(err, unix.EPERM) {
			return nil, fmt.Errorf("%w: failed to open %s, are you running as root? %w", ErrBusInit, path, err)
		}

		return nil, fmt.Errorf("%w: failed to open %s: %w", ErrBusInit, path, err)
	}

	dev := &SPIDev{fd: fd, path: path, speedHz: cfg.SpeedHz()}

	err = dev.configure(cfg)
	if err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("%w: failed to configure %s: %w", ErrBusInit, path, err)
	}

	return dev, nil
}

func (d *SPIDev) configure(cfg BusConfig) error {
	mode := uint8(cfg.Mode) & (spiCPHA | spiCPOL)
	if cfg.CSPolarity == "high" {
		mode |= spiCSHigh
	}

	if cfg.BitOrder == "lsb" {
		mode |= spiLSBFirst
	}

	err := d.ioctl(spiIOCWrMode, unsafe.Pointer(&mode))
	if err != nil {
		return fmt.Errorf("set mode: %w", err)
	}

	bitsPerWord := uint8(8)

	err = d.ioctl(spiIOCWrBitsPerWord, unsafe.Pointer(&bitsPerWord))
	if err != nil {
		return fmt.Errorf("set bits per word: %w", err)
	}

	speed := d.speedHz

	err = d.ioctl(spiIOCWrMaxSpeedHz, unsafe.Pointer(&speed))
	if err != nil {
		return fmt.Errorf("set max speed: %w", err)
	}

	return nil
}

// Transfer implements Bus.
func (d *SPIDev) Transfer(tx, rx []byte) error {
	if len(tx) == 0 {
		return nil
	}

	if len(rx) < len(tx) {
		if cap(d.scratch) < len(tx) {
			d.scratch = make([]byte, len(tx))
		}

		rx = d.scratch[:len(tx)]
	}

	msg := spiIOCTransfer{
		txBuf:       uint64(uintptr(unsafe.Pointer(&tx[0]))),
		rxBuf:       uint64(uintptr(unsafe.Pointer(&rx[0]))),
		len:         uint32(len(tx)),
		speedHz:     d.speedHz,
		bitsPerWord: 8,
	}

	err := d.ioctl(spiIOCMessage1, unsafe.Pointer(&msg))

	runtime.KeepAlive(tx)
	runtime.KeepAlive(rx)

	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrTransfer, d.path, err)
	}

	return nil
}

// Close implements Bus.
func (d *SPIDev) Close() error {
	if d.fd < 0 {
		return nil
	}

	err := unix.Close(d.fd)
	d.fd = -1

	return err
}

func (d *SPIDev) ioctl(req uintptr, arg unsafe.Pointer) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(d.fd), req, uintptr(arg))
	if errno != 0 {
		return errno
	}

	return nil
}
