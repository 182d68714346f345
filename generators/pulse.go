package generators

import "github.com/porres/blit"

type pulseGenerator struct {
	t *train
}

// PulseTone creates a streamer producing an infinite unipolar band-limited impulse train at freq
// Hz with a peak of 1. harmonics is the requested harmonic count; a value <= 0 uses as many
// harmonics as the sample rate allows.
// sampleRate must be at least two times greater than frequency, otherwise this function will
// return an error.
func PulseTone(sr blit.SampleRate, freq, harmonics float64) (blit.Streamer, error) {
	if err := checkTone(sr, freq); err != nil {
		return nil, err
	}
	return &pulseGenerator{newTrain(sr, freq, harmonics, 1)}, nil
}

func (g *pulseGenerator) Stream(samples [][2]float64) (n int, ok bool) {
	for n < len(samples) {
		m := min(len(samples)-n, block)
		fill(samples[n:], g.t.next(m))
		n += m
	}
	return n, true
}

func (*pulseGenerator) Err() error {
	return nil
}
