package wavdac

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml"
	"github.com/sirupsen/logrus"
)

// DefaultPath is the input used when neither the config nor the command line
// names one.
const DefaultPath = "/home/pi/8.wav"

// PlaybackConfig tunes the playback loop.
type PlaybackConfig struct {
	BlockSize int `toml:"block_size"`
	// Pacing is "spin" or "sleep".
	Pacing      string `toml:"pacing"`
	Buffered    bool   `toml:"buffered"`
	Gain1x      bool   `toml:"gain_1x"`
	LimitToData bool   `toml:"limit_to_data"`
}

// LogConfig configures logrus.
type LogConfig struct {
	Level string `toml:"level"`
	// Format is "text" or "json".
	Format string `toml:"format"`
}

// Config is the player configuration file.
type Config struct {
	Path     string         `toml:"path"`
	Bus      BusConfig      `toml:"bus"`
	Playback PlaybackConfig `toml:"playback"`
	Log      LogConfig      `toml:"log"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Path: DefaultPath,
		Bus:  DefaultBusConfig(),
		Playback: PlaybackConfig{
			BlockSize: DefaultBlockSize,
			Pacing:    "spin",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// LoadConfig decodes the TOML file at path on top of DefaultConfig.
func LoadConfig(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfig, err)
	}
	defer f.Close()

	cfg := DefaultConfig()

	err = toml.NewDecoder(f).Decode(cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrConfig, path, err)
	}

	return cfg, cfg.Validate()
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.Path == "" {
		return fmt.Errorf("%w: empty input path", ErrConfig)
	}

	err := c.Bus.Validate()
	if err != nil {
		return err
	}

	if c.Playback.BlockSize <= 0 || c.Playback.BlockSize > MaxBlockSize {
		return fmt.Errorf("%w: block size %d", ErrConfig, c.Playback.BlockSize)
	}

	_, err = NewWaiter(c.Playback.Pacing)
	if err != nil {
		return err
	}

	_, err = logrus.ParseLevel(c.Log.Level)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrConfig, err)
	}

	if c.Log.Format != "text" && c.Log.Format != "json" {
		return fmt.Errorf("%w: log format %q", ErrConfig, c.Log.Format)
	}

	return nil
}

// Command returns the DAC command nibble selected by the playback settings.
func (c *Config) Command() uint16 {
	return Command(c.Playback.Buffered, c.Playback.Gain1x)
}

// NewLogger builds a logrus logger from the log settings.
func (c *Config) NewLogger() (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(c.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfig, err)
	}

	logger := logrus.New()
	logger.SetLevel(level)

	if c.Log.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	return logger, nil
}

// NewPlayer builds a player for bus from the playback settings.
func (c *Config) NewPlayer(bus Bus, logger logrus.FieldLogger) (*Player, error) {
	waiter, err := NewWaiter(c.Playback.Pacing)
	if err != nil {
		return nil, err
	}

	p := NewPlayer(bus)
	p.Waiter = waiter
	p.BlockSize = c.Playback.BlockSize
	p.Command = c.Command()
	p.LimitToData = c.Playback.LimitToData

	if logger != nil {
		p.Logger = logger
	}

	return p, nil
}
