// This tool converts a PCM wav (any chunk layout, any integer depth) or aiff
// file into the canonical 8 or 16-bit wav layout the player streams, and
// stores it next to the source unless -output is given.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/user"
	"path/filepath"
	"strings"

	"github.com/cwbudde/wavdac"
)

var errMissingPath = errors.New("you must set the -path flag")

func main() {
	err := run(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}
}

func run(args []string) error {
	flagSet := flag.NewFlagSet("wavprep", flag.ContinueOnError)

	flagPath := flagSet.String("path", "", "The path to the wav or aiff file to convert")
	output := flagSet.String("output", "", "destination, defaults to <source>.dac.wav")
	bitDepth := flagSet.Int("bits", 16, "bits per sample of the output, 8 or 16")
	mono := flagSet.Bool("mono", false, "average all channels into one")

	err := flagSet.Parse(args)
	if err != nil {
		return err
	}

	if *flagPath == "" {
		return errMissingPath
	}

	sourcePath, err := expandHome(*flagPath)
	if err != nil {
		return err
	}

	file, err := os.Open(sourcePath)
	if err != nil {
		return fmt.Errorf("invalid path %s: %w", sourcePath, err)
	}
	defer file.Close()

	buf, err := wavdac.LoadPCM(file)
	if err != nil {
		return fmt.Errorf("%s: %w", sourcePath, err)
	}

	reduced, err := wavdac.Reduce(buf, *bitDepth, *mono)
	if err != nil {
		return err
	}

	outPath := *output
	if outPath == "" {
		outPath = sourcePath[:len(sourcePath)-len(filepath.Ext(sourcePath))] + ".dac.wav"
	}

	outFile, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", outPath, err)
	}
	defer outFile.Close()

	encoder := wavdac.NewEncoder(outFile, reduced.Format.SampleRate, *bitDepth, reduced.Format.NumChannels)

	err = encoder.Write(reduced)
	if err != nil {
		return err
	}

	err = encoder.Close()
	if err != nil {
		return err
	}

	log.Printf("%s converted to %s (%d Hz, %d bits, %d channel(s))",
		sourcePath, outPath, reduced.Format.SampleRate, *bitDepth, reduced.Format.NumChannels)

	return nil
}

func expandHome(path string) (string, error) {
	if !strings.HasPrefix(path, "~/") {
		return path, nil
	}

	usr, err := user.Current()
	if err != nil {
		return "", fmt.Errorf("failed to get the user home directory: %w", err)
	}

	return strings.Replace(path, "~", usr.HomeDir, 1), nil
}
