// This tool streams a wav file to an MCP4921 DAC wired to the SPI bus.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/cwbudde/wavdac"
	"github.com/sirupsen/logrus"
)

const (
	exitOK          = 0
	exitUsage       = 1
	exitBusInit     = 2
	exitIO          = 3
	exitFormat      = 4
	exitInterrupted = 130
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := run(ctx, os.Args[1:], os.Stdout)

	stop()

	if err != nil && !errors.Is(err, flag.ErrHelp) {
		logrus.WithError(err).Error("wavdac failed")
	}

	os.Exit(exitCode(err))
}

func exitCode(err error) int {
	switch {
	case err == nil, errors.Is(err, flag.ErrHelp):
		return exitOK
	case errors.Is(err, context.Canceled):
		return exitInterrupted
	case errors.Is(err, wavdac.ErrBusInit):
		return exitBusInit
	case errors.Is(err, wavdac.ErrUnsupportedFormat):
		return exitFormat
	case errors.Is(err, wavdac.ErrIO),
		errors.Is(err, wavdac.ErrResourceExhausted),
		errors.Is(err, wavdac.ErrTransfer):
		return exitIO
	default:
		return exitUsage
	}
}

func run(ctx context.Context, args []string, out io.Writer) (err error) {
	flagSet := flag.NewFlagSet("wavdac", flag.ContinueOnError)

	configPath := flagSet.String("config", "", "TOML configuration file")
	path := flagSet.String("path", "", "wav file to play, overrides the config")
	device := flagSet.String("device", "", "spidev node, overrides the config")
	pacing := flagSet.String("pacing", "", "spin or sleep, overrides the config")
	logLevel := flagSet.String("log-level", "", "log level, overrides the config")
	dump := flagSet.String("dump", "", "write the DAC frames to this file instead of the SPI bus")
	check := flagSet.Bool("check", false, "print the wav header and exit without touching the bus")

	err = flagSet.Parse(args)
	if err != nil {
		return err
	}

	cfg := wavdac.DefaultConfig()
	if *configPath != "" {
		cfg, err = wavdac.LoadConfig(*configPath)
		if err != nil {
			return err
		}
	}

	if flagSet.NArg() > 0 {
		cfg.Path = flagSet.Arg(0)
	}

	if *path != "" {
		cfg.Path = *path
	}

	if *device != "" {
		cfg.Bus.Device = *device
	}

	if *pacing != "" {
		cfg.Playback.Pacing = *pacing
	}

	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}

	err = cfg.Validate()
	if err != nil {
		return err
	}

	logger, err := cfg.NewLogger()
	if err != nil {
		return err
	}

	file, err := os.Open(cfg.Path)
	if err != nil {
		return fmt.Errorf("%w: %w", wavdac.ErrIO, err)
	}
	defer file.Close()

	if *check {
		return printHeader(file, out)
	}

	bus, err := openBus(cfg, *dump)
	if err != nil {
		return err
	}

	defer func() {
		closeErr := bus.Close()
		if closeErr != nil && err == nil {
			err = fmt.Errorf("%w: failed to release bus: %w", wavdac.ErrIO, closeErr)
		}
	}()

	player, err := cfg.NewPlayer(bus, logger)
	if err != nil {
		return err
	}

	stats, err := player.Play(ctx, file)
	if err != nil {
		return fmt.Errorf("%s: %w", cfg.Path, err)
	}

	logger.WithFields(logrus.Fields{
		"frames":  stats.Frames,
		"blocks":  stats.Blocks,
		"dropped": stats.DroppedBytes,
		"elapsed": stats.Elapsed,
	}).Info("playback drained")

	return nil
}

func openBus(cfg *wavdac.Config, dump string) (wavdac.Bus, error) {
	if dump != "" {
		f, err := os.Create(dump)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", wavdac.ErrBusInit, err)
		}

		return wavdac.NewFrameWriter(f), nil
	}

	dev, err := wavdac.OpenSPI(cfg.Bus)
	if err != nil {
		return nil, err
	}

	return dev, nil
}

func printHeader(r io.Reader, out io.Writer) error {
	h, err := wavdac.ReadHeader(r)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "SampleRate: %d\n", h.SampleRate)
	fmt.Fprintf(out, "ByteRate: %d\n", h.ByteRate)
	fmt.Fprintf(out, "BitsPerSample: %d\n", h.BitsPerSample)
	fmt.Fprintf(out, "Channels: %d\n", h.Channels())
	fmt.Fprintf(out, "Length: %d\n", h.ChunkSize)
	fmt.Fprintf(out, "DataSize: %d\n", h.DataSize)
	fmt.Fprintf(out, "Gap: %s\n", h.Interval())
	fmt.Fprintf(out, "Duration: %s\n", h.Duration())
	fmt.Fprintf(out, "Canonical: %t\n", h.Canonical())

	return nil
}
