package wavdac

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "wavdac.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	return path
}

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	require.Equal(t, DefaultPath, cfg.Path)
	require.Equal(t, uint16(ChannelSelectA), cfg.Command())
}

func TestLoadConfigOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
path = "/tmp/tone.wav"

[bus]
clock_divider = 32
chip_select = 1

[playback]
pacing = "sleep"
buffered = true
limit_to_data = true

[log]
level = "debug"
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, "/tmp/tone.wav", cfg.Path)
	require.Equal(t, 32, cfg.Bus.ClockDivider)
	require.Equal(t, 1, cfg.Bus.ChipSelect)
	require.Equal(t, "msb", cfg.Bus.BitOrder)
	require.Equal(t, "low", cfg.Bus.CSPolarity)
	require.Equal(t, DefaultBlockSize, cfg.Playback.BlockSize)
	require.Equal(t, "sleep", cfg.Playback.Pacing)
	require.True(t, cfg.Playback.LimitToData)
	require.Equal(t, uint16(0x5000), cfg.Command())
	require.Equal(t, "debug", cfg.Log.Level)
	require.Equal(t, "text", cfg.Log.Format)
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"syntax", "path = "},
		{"wrong type", "[bus]\nclock_divider = \"fast\"\n"},
		{"bad divider", "[bus]\nclock_divider = 48\n"},
		{"bad pacing", "[playback]\npacing = \"nap\"\n"},
		{"bad block size", "[playback]\nblock_size = 0\n"},
		{"bad level", "[log]\nlevel = \"chatty\"\n"},
		{"bad format", "[log]\nformat = \"xml\"\n"},
		{"empty path", "path = \"\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.body))
			require.ErrorIs(t, err, ErrConfig)
		})
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	require.ErrorIs(t, err, ErrConfig)
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestConfigNewLogger(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Log.Level = "warn"
	cfg.Log.Format = "json"

	logger, err := cfg.NewLogger()
	require.NoError(t, err)
	require.Equal(t, logrus.WarnLevel, logger.GetLevel())
	require.IsType(t, &logrus.JSONFormatter{}, logger.Formatter)

	cfg.Log.Format = "text"
	logger, err = cfg.NewLogger()
	require.NoError(t, err)
	require.IsType(t, &logrus.TextFormatter{}, logger.Formatter)
}

func TestConfigNewPlayer(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Playback.Pacing = "sleep"
	cfg.Playback.BlockSize = 4096
	cfg.Playback.Gain1x = true
	cfg.Playback.LimitToData = true

	logger := quietLogger()
	bus := &countingBus{}

	p, err := cfg.NewPlayer(bus, logger)
	require.NoError(t, err)
	require.Equal(t, bus, p.Bus)
	require.Equal(t, SleepWaiter{}, p.Waiter)
	require.Equal(t, 4096, p.BlockSize)
	require.Equal(t, uint16(0x3000), p.Command)
	require.True(t, p.LimitToData)
	require.Equal(t, logger, p.Logger)

	p, err = cfg.NewPlayer(bus, nil)
	require.NoError(t, err)
	require.Equal(t, logrus.StandardLogger(), p.Logger)

	cfg.Playback.Pacing = "nap"
	_, err = cfg.NewPlayer(bus, nil)
	require.ErrorIs(t, err, ErrConfig)
}
