package generators

import "github.com/porres/blit"

// leak keeps the integrators stable; anything the train adds in DC decays away.
const leak = 0.999

type sawGenerator struct {
	t       *train
	period  float64
	s       float64
	reverse bool
}

// SawtoothTone creates a streamer which will produce an infinite band-limited sawtooth wave with
// the given frequency, rising from -1 to 1.
// The wave is a unipolar impulse train with its DC removed, run through a leaky integrator.
// harmonics <= 0 uses as many harmonics as the sample rate allows.
// sampleRate must be at least two times greater than frequency, otherwise this function will
// return an error.
func SawtoothTone(sr blit.SampleRate, freq, harmonics float64) (blit.Streamer, error) {
	return newSaw(sr, freq, harmonics, false)
}

// SawtoothToneReversed is like SawtoothTone, but the slope is negative.
func SawtoothToneReversed(sr blit.SampleRate, freq, harmonics float64) (blit.Streamer, error) {
	return newSaw(sr, freq, harmonics, true)
}

func newSaw(sr blit.SampleRate, freq, harmonics float64, reverse bool) (blit.Streamer, error) {
	if err := checkTone(sr, freq); err != nil {
		return nil, err
	}
	return &sawGenerator{
		t:       newTrain(sr, freq, harmonics, 1),
		period:  float64(sr) / freq,
		reverse: reverse,
	}, nil
}

func (g *sawGenerator) Stream(samples [][2]float64) (n int, ok bool) {
	for n < len(samples) {
		m := min(len(samples)-n, block)
		k := float64(g.t.order())
		// each impulse carries period/k, the train's mean is 1/k
		gain := -2 * k / g.period
		if g.reverse {
			gain = -gain
		}
		for i, x := range g.t.next(m) {
			g.s = leak*g.s + x - 1/k
			v := gain * g.s
			samples[n+i] = [2]float64{v, v}
		}
		n += m
	}
	return n, true
}

func (*sawGenerator) Err() error {
	return nil
}
