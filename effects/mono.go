package effects

import "github.com/porres/blit"

// Mono downmixes the wrapped Streamer by averaging its channels into both of them. A stereo
// recording used as a control is read from the left channel, so downmixing first lets both
// channels of the recording contribute.
//
// The returned Streamer propagates s's errors through Err.
func Mono(s blit.Streamer) blit.Streamer {
	return &mono{s}
}

type mono struct {
	s blit.Streamer
}

func (m *mono) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = m.s.Stream(samples)
	for i, f := range samples[:n] {
		avg := (f[0] + f[1]) / 2
		samples[i] = [2]float64{avg, avg}
	}
	return n, ok
}

func (m *mono) Err() error {
	return m.s.Err()
}
