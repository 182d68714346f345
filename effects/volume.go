// Package effects holds Streamer wrappers applied after an oscillator.
package effects

import (
	"math"

	"github.com/porres/blit"
)

// Volume adjusts the volume of the wrapped Streamer in a human-natural way. Human's perception
// of volume is roughly logarithmic, so the gain is Base raised to Volume.
//
// With Base 2, a Volume of 0 leaves the signal untouched, 1 doubles its amplitude and -1 halves
// it. Silent mutes the Streamer without losing the Volume setting.
type Volume struct {
	Streamer blit.Streamer
	Base     float64
	Volume   float64
	Silent   bool
}

// Gain returns the factor every sample is currently multiplied by.
func (v *Volume) Gain() float64 {
	if v.Silent {
		return 0
	}
	return math.Pow(v.Base, v.Volume)
}

// Stream streams the wrapped Streamer with the volume adjusted.
func (v *Volume) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = v.Streamer.Stream(samples)
	gain := v.Gain()
	for i := range samples[:n] {
		samples[i][0] *= gain
		samples[i][1] *= gain
	}
	return n, ok
}

// Err propagates the wrapped Streamer's errors.
func (v *Volume) Err() error {
	return v.Streamer.Err()
}
