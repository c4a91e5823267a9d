// Package wavdac plays PCM WAV files through an MCP4921 12-bit DAC wired to
// the SPI pins of a single-board computer.
//
// Playback is synchronous: the Player reads the 44 byte canonical header,
// then refills one audio block at a time and, for each sample of the first
// channel, builds a 16-bit DAC word (command nibble + 12-bit code), transfers
// it over the Bus and waits one sample interval. Only 8 and 16-bit PCM with
// one or two channels is accepted.
//
// The package also carries the pieces needed to get files into that shape:
//
//   - Encoder writes canonical 8/16-bit files.
//   - LoadPCM reads WAV files with arbitrary chunk layouts and AIFF files.
//   - Reduce converts decoded samples to a playable depth and channel count.
package wavdac
