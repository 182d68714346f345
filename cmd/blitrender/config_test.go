package main

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/porres/blit"
	"github.com/porres/blit/wav"
)

func defaultConfig() renderConfig {
	return renderConfig{
		rate:      8000,
		freq:      200,
		polarity:  1,
		duration:  100 * time.Millisecond,
		wave:      "blit",
		tracking:  "phase-locked",
		format:    "wav",
		precision: 2,
		out:       "out.wav",
		unison:    1,
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(c *renderConfig)
		ok     bool
	}{
		{"defaults", func(c *renderConfig) {}, true},
		{"zero rate", func(c *renderConfig) { c.rate = 0 }, false},
		{"negative duration", func(c *renderConfig) { c.duration = -time.Second }, false},
		{"unknown wave", func(c *renderConfig) { c.wave = "noise" }, false},
		{"unknown tracking", func(c *renderConfig) { c.tracking = "sometimes" }, false},
		{"unknown format", func(c *renderConfig) { c.format = "aiff" }, false},
		{"precision", func(c *renderConfig) { c.precision = 4 }, false},
		{"wav to stdout", func(c *renderConfig) { c.out = "-" }, false},
		{"pcm to stdout", func(c *renderConfig) { c.out, c.format = "-", "pcm" }, true},
		{"two modulators", func(c *renderConfig) { c.freqFile, c.script = "a.wav", "b.lua" }, false},
		{"modulated square", func(c *renderConfig) { c.wave, c.script = "square", "b.lua" }, false},
		{"modulated sine", func(c *renderConfig) { c.wave, c.script = "sine", "b.lua" }, true},
		{"saw above nyquist", func(c *renderConfig) { c.wave, c.freq = "saw", 4000 }, false},
		{"blit above nyquist", func(c *renderConfig) { c.freq = 12000 }, true},
		{"negative tail", func(c *renderConfig) { c.tail = -time.Second }, false},
		{"zero unison", func(c *renderConfig) { c.unison = 0 }, false},
		{"negative detune", func(c *renderConfig) { c.unison, c.detune = 3, -5 }, false},
		{"modulated unison", func(c *renderConfig) { c.unison, c.freqFile = 3, "a.wav" }, false},
		{"unison", func(c *renderConfig) { c.unison, c.detune = 3, 15 }, true},
	}
	for _, tt := range tests {
		c := defaultConfig()
		tt.modify(&c)
		err := c.validate()
		if tt.ok && err != nil {
			t.Errorf("%s: unexpected error: %v", tt.name, err)
		}
		if !tt.ok && err == nil {
			t.Errorf("%s: expected an error", tt.name)
		}
	}
}

func TestSourceLength(t *testing.T) {
	for wave := range waves {
		c := defaultConfig()
		c.wave = wave
		s, closer, err := c.source()
		if err != nil {
			t.Fatalf("%s: %v", wave, err)
		}
		if closer != nil {
			t.Fatalf("%s: constant source returned a closer", wave)
		}

		total := 0
		buf := make([][2]float64, 300)
		for {
			n, ok := s.Stream(buf)
			if !ok {
				break
			}
			for _, f := range buf[:n] {
				if math.IsNaN(f[0]) || math.Abs(f[0]) > 2 {
					t.Fatalf("%s: sample %v out of range", wave, f[0])
				}
			}
			total += n
		}
		if total != 800 {
			t.Fatalf("%s: rendered %d frames, want 800", wave, total)
		}
	}
}

// drain streams s to the end and returns the left channel.
func drain(t *testing.T, s blit.Streamer) []float64 {
	t.Helper()

	var out []float64
	buf := make([][2]float64, 300)
	for {
		n, ok := s.Stream(buf)
		if !ok {
			return out
		}
		for _, f := range buf[:n] {
			out = append(out, f[0])
		}
	}
}

func TestSourceTail(t *testing.T) {
	c := defaultConfig()
	c.tail = 50 * time.Millisecond
	s, _, err := c.source()
	if err != nil {
		t.Fatal(err)
	}
	got := drain(t, s)
	if len(got) != 1200 {
		t.Fatalf("rendered %d frames, want 800 plus a 400 frame tail", len(got))
	}
	for i, v := range got[800:] {
		if v != 0 {
			t.Fatalf("tail frame %d = %v, want silence", i, v)
		}
	}
}

func TestSourceUnison(t *testing.T) {
	single := defaultConfig()
	single.wave = "saw"
	s, _, err := single.source()
	if err != nil {
		t.Fatal(err)
	}
	want := drain(t, s)

	// undetuned voices are identical, so their normalized mix is the single voice
	c := single
	c.unison, c.detune = 4, 0
	s, _, err = c.source()
	if err != nil {
		t.Fatal(err)
	}
	got := drain(t, s)
	if len(got) != len(want) {
		t.Fatalf("unison rendered %d frames, want %d", len(got), len(want))
	}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Fatalf("frame %d: unison %v, single voice %v", i, got[i], want[i])
		}
	}

	c.detune = 20
	s, _, err = c.source()
	if err != nil {
		t.Fatal(err)
	}
	detuned := drain(t, s)
	same := true
	for i := range want {
		if math.Abs(detuned[i]-want[i]) > 1e-6 {
			same = false
			break
		}
	}
	if same {
		t.Fatal("detuned unison matches the single voice")
	}
}

func TestRenderScriptedWav(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "glide.lua")
	if err := os.WriteFile(script, []byte("function control(t) return 100 + 1000 * t end"), 0o644); err != nil {
		t.Fatal(err)
	}

	c := defaultConfig()
	c.script = script
	c.out = filepath.Join(dir, "glide.wav")
	if err := c.validate(); err != nil {
		t.Fatal(err)
	}
	if err := render(&c); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(c.out)
	if err != nil {
		t.Fatal(err)
	}
	s, format, err := wav.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	if format.SampleRate != blit.SampleRate(8000) || format.NumChannels != 1 || format.Precision != 2 {
		t.Fatalf("format = %+v", format)
	}
	if s.Len() != 800 {
		t.Fatalf("rendered %d frames, want 800", s.Len())
	}
}
