// Command blitrender renders a band-limited waveform to a WAV file or raw PCM.
//
// Usage:
//
//	blitrender -freq 220 -harmonics 16 -duration 2s -out tone.wav
//	blitrender -wave saw -freq 110 -unison 5 -detune 12 -tail 500ms -out pad.wav
//	blitrender -freq 110 -freq-file lfo.wav -freq-depth 50 -out sweep.wav
//	blitrender -script glide.lua -format pcm -out - | aplay -f S16_LE -r 44100
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/term"

	"github.com/porres/blit/pcm"
	"github.com/porres/blit/wav"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("blitrender: ")

	var c renderConfig
	flag.IntVar(&c.rate, "rate", 44100, "sample rate in Hz")
	flag.Float64Var(&c.freq, "freq", 220, "fundamental frequency in Hz (center frequency when modulated)")
	flag.Float64Var(&c.harmonics, "harmonics", 0, "requested harmonic count, 0 for as many as the rate allows")
	flag.Float64Var(&c.polarity, "polarity", 1, "train polarity, >= 0 unipolar, < 0 bipolar")
	flag.DurationVar(&c.duration, "duration", 2*time.Second, "length of the rendered audio")
	flag.StringVar(&c.wave, "wave", "blit", "waveform: blit, saw, square, triangle or sine")
	flag.StringVar(&c.tracking, "tracking", "phase-locked", "harmonic tracking: phase-locked or per-sample")
	flag.StringVar(&c.freqFile, "freq-file", "", "audio file modulating the frequency (wav, flac, ogg, mp3)")
	flag.Float64Var(&c.freqDepth, "freq-depth", 0, "modulation depth in Hz for -freq-file")
	flag.StringVar(&c.script, "script", "", "Lua script defining control(t) that returns the frequency")
	flag.StringVar(&c.out, "out", "out.wav", "output file, - for stdout")
	flag.StringVar(&c.format, "format", "wav", "output format: wav or pcm")
	flag.IntVar(&c.precision, "precision", 2, "bytes per sample: 1, 2 or 3")
	flag.Float64Var(&c.volume, "volume", -1, "volume, gain is 2^volume")
	flag.IntVar(&c.unison, "unison", 1, "number of fixed-frequency voices mixed together")
	flag.Float64Var(&c.detune, "detune", 10, "spread of the unison voices in cents")
	flag.DurationVar(&c.tail, "tail", 0, "silence appended after the sound")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: blitrender [options]\n\nOptions:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if err := c.validate(); err != nil {
		log.Fatal(err)
	}
	if err := render(&c); err != nil {
		log.Fatal(err)
	}
}

func render(c *renderConfig) error {
	s, closer, err := c.source()
	if err != nil {
		return err
	}
	if closer != nil {
		defer closer.Close()
	}

	format := c.outputFormat()
	if c.out == "-" {
		if term.IsTerminal(int(os.Stdout.Fd())) {
			return errors.New("refusing to write binary audio to a terminal")
		}
		return pcm.Encode(os.Stdout, s, format)
	}

	f, err := os.Create(c.out)
	if err != nil {
		return err
	}
	switch c.format {
	case "wav":
		err = wav.Encode(f, s, format)
	case "pcm":
		err = pcm.Encode(f, s, format)
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}
	log.Printf("wrote %v of %s at %d Hz to %s", c.duration, c.wave, c.rate, c.out)
	return nil
}
