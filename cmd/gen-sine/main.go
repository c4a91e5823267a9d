// This tool writes a sine test tone in the canonical wav layout the player
// reads.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"math"
	"os"

	"github.com/cwbudde/wavdac"
)

var errInvalidParams = errors.New("invalid parameters")

func main() {
	err := run(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}
}

func run(args []string) error {
	flagSet := flag.NewFlagSet("gen-sine", flag.ContinueOnError)

	output := flagSet.String("output", "output.wav", "filename to write to")
	frequency := flagSet.Float64("frequency", 440, "frequency in hertz to generate")
	length := flagSet.Float64("length", 5, "length in seconds of output file")
	sampleRate := flagSet.Int("rate", 8000, "sample rate in hertz")
	bitDepth := flagSet.Int("bits", 16, "bits per sample, 8 or 16")
	channels := flagSet.Int("channels", 1, "number of channels, 1 or 2")

	err := flagSet.Parse(args)
	if err != nil {
		return err
	}

	if *sampleRate <= 0 || *length < 0 {
		return fmt.Errorf("%w: rate %d, length %f", errInvalidParams, *sampleRate, *length)
	}

	log.Printf("generating a %f sec sine wav at %f hz", *length, *frequency)

	file, err := os.Create(*output)
	if err != nil {
		return fmt.Errorf("error creating %s: %w", *output, err)
	}
	defer file.Close()

	wavOut := wavdac.NewEncoder(file, *sampleRate, *bitDepth, *channels)
	numSamples := int(float64(*sampleRate) * *length)

	for i := range numSamples {
		fv := math.Sin(float64(i) / float64(*sampleRate) * *frequency * 2 * math.Pi)
		v := wavdac.PCMFromFloat(float32(fv), *bitDepth)

		for range *channels {
			err := wavOut.WriteFrame(v)
			if err != nil {
				return err
			}
		}
	}

	return wavOut.Close()
}
