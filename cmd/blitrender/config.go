package main

import (
	"io"
	"math"
	"os"
	"time"

	"github.com/pkg/errors"

	"github.com/porres/blit"
	"github.com/porres/blit/control"
	"github.com/porres/blit/effects"
	"github.com/porres/blit/generators"
)

var waves = map[string]bool{
	"blit":     true,
	"saw":      true,
	"square":   true,
	"triangle": true,
	"sine":     true,
}

// renderConfig collects the command line flags.
type renderConfig struct {
	rate      int
	freq      float64
	harmonics float64
	polarity  float64
	duration  time.Duration
	wave      string
	tracking  string
	freqFile  string
	freqDepth float64
	script    string
	out       string
	format    string
	precision int
	volume    float64
	unison    int
	detune    float64
	tail      time.Duration
}

func (c *renderConfig) validate() error {
	if c.rate <= 0 {
		return errors.Errorf("invalid sample rate: %d", c.rate)
	}
	if c.duration <= 0 {
		return errors.Errorf("invalid duration: %v", c.duration)
	}
	if !waves[c.wave] {
		return errors.Errorf("unknown wave %q", c.wave)
	}
	if _, err := blit.ParseTracking(c.tracking); err != nil {
		return err
	}
	if c.format != "wav" && c.format != "pcm" {
		return errors.Errorf("unknown output format %q", c.format)
	}
	if c.precision < 1 || c.precision > 3 {
		return errors.Errorf("invalid precision: %d bytes", c.precision)
	}
	if c.format == "wav" && c.out == "-" {
		return errors.New("wav output needs a seekable file, use -format pcm to write to stdout")
	}
	if c.freqFile != "" && c.script != "" {
		return errors.New("-freq-file and -script are mutually exclusive")
	}
	if c.tail < 0 {
		return errors.Errorf("invalid tail: %v", c.tail)
	}
	if c.unison < 1 || c.detune < 0 {
		return errors.Errorf("invalid unison %d with detune %v cents", c.unison, c.detune)
	}

	modulated := c.freqFile != "" || c.script != ""
	if modulated && c.unison > 1 {
		return errors.New("-unison needs a fixed frequency")
	}
	switch c.wave {
	case "saw", "square", "triangle":
		if modulated {
			return errors.Errorf("wave %s only renders a fixed frequency", c.wave)
		}
		fallthrough
	case "sine":
		if !modulated && (c.freq <= 0 || c.freq >= float64(c.rate)/2) {
			return errors.Errorf("frequency %v Hz is outside (0, %d)", c.freq, c.rate/2)
		}
	}
	return nil
}

func (c *renderConfig) sampleRate() blit.SampleRate {
	return blit.SampleRate(c.rate)
}

func (c *renderConfig) frames() int {
	return c.sampleRate().N(c.duration)
}

// frequency builds the frequency control: a constant, a looped recording scaled around freq, or
// a Lua script.
func (c *renderConfig) frequency(freq float64) (blit.Streamer, io.Closer, error) {
	switch {
	case c.freqFile != "":
		return control.File(c.freqFile, c.sampleRate(), freq, c.freqDepth, true)
	case c.script != "":
		src, err := os.ReadFile(c.script)
		if err != nil {
			return nil, nil, errors.Wrap(err, "read script")
		}
		s, err := control.Script(string(src), c.sampleRate())
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	}
	return control.Const(freq), nil, nil
}

// voice builds one unlimited voice of the configured wave at freq Hz. The returned Closer is
// nil when nothing needs releasing.
func (c *renderConfig) voice(freq float64) (blit.Streamer, io.Closer, error) {
	sr := c.sampleRate()

	var (
		s      blit.Streamer
		closer io.Closer
		err    error
	)
	switch c.wave {
	case "blit":
		var fs blit.Streamer
		fs, closer, err = c.frequency(freq)
		if err != nil {
			return nil, nil, err
		}
		tracking, _ := blit.ParseTracking(c.tracking)
		g := blit.New()
		g.Configure(sr)
		g.SetTracking(tracking)
		s = blit.NewOscillator(g, fs, control.Const(c.harmonics), control.Const(c.polarity))
	case "sine":
		if c.freqFile == "" && c.script == "" {
			s, err = generators.SineTone(sr, freq)
			break
		}
		var fs blit.Streamer
		fs, closer, err = c.frequency(freq)
		if err == nil {
			s = generators.Sinusoid(sr, fs)
		}
	case "saw":
		s, err = generators.SawtoothTone(sr, freq, c.harmonics)
	case "square":
		s, err = generators.SquareTone(sr, freq, c.harmonics)
	case "triangle":
		s, err = generators.TriangleTone(sr, freq, c.harmonics)
	}
	if err != nil {
		return nil, nil, err
	}
	return s, closer, nil
}

// source builds the streamer to render: the unison voices spread evenly across ±detune cents
// and mixed at equal loudness, limited to the configured duration and followed by the silent
// tail. The returned Closer is nil when nothing needs releasing.
func (c *renderConfig) source() (blit.Streamer, io.Closer, error) {
	if c.unison <= 1 {
		s, closer, err := c.voice(c.freq)
		if err != nil {
			return nil, nil, err
		}
		return c.finish(s, 0), closer, nil
	}

	voices := make([]blit.Streamer, c.unison)
	for i := range voices {
		cents := c.detune * (2*float64(i)/float64(c.unison-1) - 1)
		s, _, err := c.voice(c.freq * math.Exp2(cents/1200))
		if err != nil {
			return nil, nil, err
		}
		voices[i] = s
	}
	return c.finish(blit.Mix(voices...), math.Log2(float64(c.unison))), nil, nil
}

// finish applies the volume, lowered by attenuation on the 2^volume scale, and the length.
func (c *renderConfig) finish(s blit.Streamer, attenuation float64) blit.Streamer {
	vol := &effects.Volume{Streamer: s, Base: 2, Volume: c.volume - attenuation}
	out := blit.Take(c.frames(), vol)
	if c.tail > 0 {
		out = blit.Seq(out, blit.Silence(c.sampleRate().N(c.tail)))
	}
	return out
}

func (c *renderConfig) outputFormat() blit.Format {
	return blit.Format{SampleRate: c.sampleRate(), NumChannels: 1, Precision: c.precision}
}
