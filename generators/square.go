package generators

import "github.com/porres/blit"

type squareGenerator struct {
	t      *train
	period float64
	s      float64
}

// SquareTone creates a streamer which will produce an infinite band-limited square wave with the
// given frequency. The wave integrates a bipolar impulse train running at twice the frequency,
// whose alternating impulses mark the two edges of each cycle.
// harmonics <= 0 uses as many harmonics as the sample rate allows.
// sampleRate must be at least two times greater than frequency, otherwise this function will
// return an error.
func SquareTone(sr blit.SampleRate, freq, harmonics float64) (blit.Streamer, error) {
	if err := checkTone(sr, freq); err != nil {
		return nil, err
	}
	return newSquare(sr, freq, harmonics), nil
}

func newSquare(sr blit.SampleRate, freq, harmonics float64) *squareGenerator {
	return &squareGenerator{
		t:      newTrain(sr, 2*freq, harmonics, -1),
		period: float64(sr) / freq,
	}
}

// next returns the following m <= block samples of the square wave in the train's buffer.
func (g *squareGenerator) next(m int) []float64 {
	// an edge carries period/(2k), so a swing of 2 needs 4k/period
	gain := 4 * float64(g.t.order()) / g.period
	out := g.t.next(m)
	for i, x := range out {
		g.s = leak*g.s + x
		out[i] = gain * g.s
	}
	return out
}

func (g *squareGenerator) Stream(samples [][2]float64) (n int, ok bool) {
	for n < len(samples) {
		m := min(len(samples)-n, block)
		fill(samples[n:], g.next(m))
		n += m
	}
	return n, true
}

func (*squareGenerator) Err() error {
	return nil
}
