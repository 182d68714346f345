package generators

import "github.com/porres/blit"

// dcPole is the pole of the DC blocker after the second integrator.
const dcPole = 0.995

type triangleGenerator struct {
	sq     *squareGenerator
	period float64
	s      float64
	x1, y1 float64
}

// TriangleTone creates a streamer which will produce an infinite band-limited triangle wave with
// the given frequency, built by integrating the band-limited square wave once more.
// harmonics <= 0 uses as many harmonics as the sample rate allows.
// sampleRate must be at least two times greater than frequency, otherwise this function will
// return an error.
func TriangleTone(sr blit.SampleRate, freq, harmonics float64) (blit.Streamer, error) {
	if err := checkTone(sr, freq); err != nil {
		return nil, err
	}
	return &triangleGenerator{
		sq:     newSquare(sr, freq, harmonics),
		period: float64(sr) / freq,
	}, nil
}

func (g *triangleGenerator) Stream(samples [][2]float64) (n int, ok bool) {
	gain := 4 / g.period
	for n < len(samples) {
		m := min(len(samples)-n, block)
		for i, x := range g.sq.next(m) {
			g.s = leak*g.s + x
			// y[n] = x[n] - x[n-1] + R*y[n-1]
			y := g.s - g.x1 + dcPole*g.y1
			g.x1, g.y1 = g.s, y
			v := gain * y
			samples[n+i] = [2]float64{v, v}
		}
		n += m
	}
	return n, true
}

func (*triangleGenerator) Err() error {
	return nil
}
