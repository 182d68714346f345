// Package control provides signal sources that drive oscillator inputs.
//
// Every source is a blit.Streamer carrying the control value in the left channel (the right
// channel holds the same value). Any audio stream can serve as a control, which is what makes
// frequency or harmonic modulation at audio rate possible.
package control

import "github.com/porres/blit"

// Const returns an infinite Streamer holding v.
func Const(v float64) blit.Streamer {
	return blit.StreamerFunc(func(samples [][2]float64) (n int, ok bool) {
		for i := range samples {
			samples[i] = [2]float64{v, v}
		}
		return len(samples), true
	})
}

// Ramp returns an infinite Streamer sweeping linearly from from to to across n frames and
// holding to afterwards.
func Ramp(from, to float64, n int) blit.Streamer {
	pos := 0
	return blit.StreamerFunc(func(samples [][2]float64) (int, bool) {
		for i := range samples {
			v := to
			if pos < n-1 {
				v = from + (to-from)*float64(pos)/float64(n-1)
			}
			samples[i] = [2]float64{v, v}
			pos++
		}
		return len(samples), true
	})
}

// Scale maps every value x of s to offset + depth*x, turning a normalized audio signal into a
// control in the units the oscillator expects, for example Hz.
//
// The returned Streamer propagates s's errors.
func Scale(s blit.Streamer, offset, depth float64) blit.Streamer {
	return &scale{s: s, offset: offset, depth: depth}
}

type scale struct {
	s      blit.Streamer
	offset float64
	depth  float64
}

func (sc *scale) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = sc.s.Stream(samples)
	for i := range samples[:n] {
		v := sc.offset + sc.depth*samples[i][0]
		samples[i] = [2]float64{v, v}
	}
	return n, ok
}

func (sc *scale) Err() error {
	return sc.s.Err()
}
