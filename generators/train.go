package generators

import (
	"math"

	"github.com/pkg/errors"

	"github.com/porres/blit"
)

const (
	block = 512
	twoPi = 2 * math.Pi
)

// train runs a Generator with fixed controls, one block at a time.
type train struct {
	g    *blit.Generator
	freq [block]float64
	harm [block]float64
	pol  [block]float64
	out  [block]float64
}

// newTrain returns a train at freq Hz. A harmonics value <= 0 requests the full non-aliasing
// bound. The train is advanced to its first phase wrap, so the first sample it produces already
// sums its harmonics.
func newTrain(sr blit.SampleRate, freq, harmonics, polarity float64) *train {
	if harmonics <= 0 {
		harmonics = float64(sr)
	}
	t := &train{g: blit.New()}
	t.g.Configure(sr)
	// the square wave needs every other impulse negative, including one landing on π
	t.g.SetExactLimit(true)
	for i := 0; i < block; i++ {
		t.freq[i], t.harm[i], t.pol[i] = freq, harmonics, polarity
	}

	limit := 2*int(float64(sr)/freq) + 2
	for i := 0; i < limit && t.g.Harmonics() == 0; i++ {
		t.g.Process(t.out[:1], t.freq[:1], t.harm[:1], t.pol[:1])
	}
	return t
}

// next returns the following n <= block samples. The slice is reused by the next call.
func (t *train) next(n int) []float64 {
	t.g.Process(t.out[:n], t.freq[:n], t.harm[:n], t.pol[:n])
	return t.out[:n]
}

// order returns the kernel order currently summed.
func (t *train) order() int {
	return blit.KernelOrder(t.g.Harmonics(), t.pol[0])
}

// checkTone validates a tone frequency against the sample rate.
func checkTone(sr blit.SampleRate, freq float64) error {
	if sr <= 0 {
		return errors.New("generators: samplerate must be positive")
	}
	if freq <= 0 {
		return errors.New("generators: frequency must be positive")
	}
	if freq/float64(sr) >= 1.0/2.0 {
		return errors.New("generators: samplerate must be at least 2 times greater than frequency")
	}
	return nil
}

// wrap folds phase into [0, 2π).
func wrap(phase float64) float64 {
	phase -= twoPi * math.Floor(phase/twoPi)
	// a tiny negative phase lands on 2π itself after rounding
	if phase < 0 {
		phase += twoPi
	}
	if phase >= twoPi {
		phase = 0
	}
	return phase
}

// fill writes v to both channels of samples.
func fill(samples [][2]float64, v []float64) {
	for i, x := range v {
		samples[i] = [2]float64{x, x}
	}
}
