package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cwbudde/wavdac"
)

func readHeader(t *testing.T, path string) (*wavdac.Header, int64) {
	t.Helper()

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open generated file: %v", err)
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		t.Fatalf("stat generated file: %v", err)
	}

	h, err := wavdac.ReadHeader(f)
	if err != nil {
		t.Fatalf("generated file is not playable: %v", err)
	}

	return h, fi.Size()
}

func TestRunGeneratesWavFile(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "sine.wav")

	err := run([]string{"-output", outPath, "-length", "0.01", "-frequency", "220"})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	h, size := readHeader(t, outPath)

	if h.SampleRate != 8000 {
		t.Fatalf("sample rate=%d, want 8000", h.SampleRate)
	}

	if h.BitsPerSample != 16 {
		t.Fatalf("bit depth=%d, want 16", h.BitsPerSample)
	}

	if h.Channels() != 1 {
		t.Fatalf("channels=%d, want 1", h.Channels())
	}

	// 0.01 sec * 8000 Hz = 80 samples
	if h.DataSize != 160 {
		t.Fatalf("data size=%d, want 160", h.DataSize)
	}

	if size != wavdac.HeaderSize+160 {
		t.Fatalf("file size=%d, want %d", size, wavdac.HeaderSize+160)
	}
}

func TestRunEightBitStereo(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "sine8.wav")

	err := run([]string{"-output", outPath, "-length", "0.005", "-bits", "8", "-channels", "2", "-rate", "16000"})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	h, _ := readHeader(t, outPath)

	if h.BitsPerSample != 8 || h.Channels() != 2 {
		t.Fatalf("got %d bits, %d channels, want 8 bits, 2 channels", h.BitsPerSample, h.Channels())
	}

	// 0.005 sec * 16000 Hz = 80 frames of 2 bytes
	if h.DataSize != 160 {
		t.Fatalf("data size=%d, want 160", h.DataSize)
	}
}

func TestRunFlagParseError(t *testing.T) {
	err := run([]string{"-length", "not-a-number"})
	if err == nil {
		t.Fatalf("expected failure for invalid flag value")
	}
}

func TestRunUnsupportedDepth(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "sine24.wav")

	err := run([]string{"-output", outPath, "-length", "0.001", "-bits", "24"})
	if err == nil {
		t.Fatal("expected error for 24-bit output")
	}
}

func TestRunInvalidOutputPath(t *testing.T) {
	err := run([]string{"-output", "/nonexistent/dir/file.wav", "-length", "0.001"})
	if err == nil {
		t.Fatal("expected error for invalid output path")
	}
}
