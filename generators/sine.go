package generators

import (
	"math"

	"github.com/porres/blit"
)

type sineGenerator struct {
	dt float64
	t  float64
}

// SineTone creates a streamer which will produce an infinite sine wave with the given frequency.
// Use other wrappers of this package to change amplitude or add time limit.
// sampleRate must be at least two times greater than frequency, otherwise this function will
// return an error.
func SineTone(sr blit.SampleRate, freq float64) (blit.Streamer, error) {
	if err := checkTone(sr, freq); err != nil {
		return nil, err
	}
	return &sineGenerator{dt: freq / float64(sr)}, nil
}

func (g *sineGenerator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		v := math.Sin(g.t * 2.0 * math.Pi)
		samples[i][0] = v
		samples[i][1] = v
		_, g.t = math.Modf(g.t + g.dt)
	}
	return len(samples), true
}

func (*sineGenerator) Err() error {
	return nil
}

// Sine returns a Streamer which streams the sine of every sample of in, channel by channel.
// The input is taken in radians. Errors of in are propagated.
func Sine(in blit.Streamer) blit.Streamer {
	return &mapper{s: in, f: math.Sin}
}

// Cosine is like Sine, but streams the cosine.
func Cosine(in blit.Streamer) blit.Streamer {
	return &mapper{s: in, f: math.Cos}
}

type mapper struct {
	s blit.Streamer
	f func(float64) float64
}

func (m *mapper) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = m.s.Stream(samples)
	for i := range samples[:n] {
		samples[i][0] = m.f(samples[i][0])
		samples[i][1] = m.f(samples[i][1])
	}
	return n, ok
}

func (m *mapper) Err() error {
	return m.s.Err()
}

// Sinusoid returns a Streamer which streams a sine wave whose frequency in Hz is read from the
// left channel of freq, one value per frame. Negative frequencies run the phase backwards.
// The Streamer drains together with freq and propagates its errors.
func Sinusoid(sr blit.SampleRate, freq blit.Streamer) blit.Streamer {
	return &sinusoid{freq: freq, incr: 2 * math.Pi / float64(sr)}
}

type sinusoid struct {
	freq  blit.Streamer
	incr  float64
	phase float64
}

func (s *sinusoid) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = s.freq.Stream(samples)
	for i := range samples[:n] {
		v := math.Sin(s.phase)
		s.phase += samples[i][0] * s.incr
		if s.phase >= twoPi || s.phase < 0 {
			s.phase = wrap(s.phase)
		}
		samples[i] = [2]float64{v, v}
	}
	return n, ok
}

func (s *sinusoid) Err() error {
	return s.freq.Err()
}
