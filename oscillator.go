package blit

// controlBlock is the largest number of frames an Oscillator pulls from its controls at once.
const controlBlock = 512

// Oscillator streams a Generator driven by three control Streamers. The left channel of each
// control carries its value; the generated train is written to both output channels.
//
// The Oscillator is drained as soon as any of its controls is drained. Errors of the controls
// are propagated through Err.
type Oscillator struct {
	Generator *Generator
	Frequency Streamer
	Harmonics Streamer
	Polarity  Streamer

	tmp  [controlBlock][2]float64
	ctl  [3][controlBlock]float64
	out  [controlBlock]float64
	err  error
	done bool
}

// NewOscillator returns an Oscillator running g with the given controls.
func NewOscillator(g *Generator, frequency, harmonics, polarity Streamer) *Oscillator {
	return &Oscillator{
		Generator: g,
		Frequency: frequency,
		Harmonics: harmonics,
		Polarity:  polarity,
	}
}

// Stream pulls the controls in chunks and runs the generator over them.
func (o *Oscillator) Stream(samples [][2]float64) (n int, ok bool) {
	if o.done {
		return 0, false
	}
	for len(samples) > 0 {
		m := len(samples)
		if m > controlBlock {
			m = controlBlock
		}
		want := m
		for c, s := range [...]Streamer{o.Frequency, o.Harmonics, o.Polarity} {
			m = o.pull(c, s, m)
		}
		if m == 0 {
			o.done = true
			break
		}

		o.Generator.Process(o.out[:m], o.ctl[0][:m], o.ctl[1][:m], o.ctl[2][:m])
		for i, v := range o.out[:m] {
			samples[i] = [2]float64{v, v}
		}
		samples = samples[m:]
		n += m
		if m < want {
			o.done = true
			break
		}
	}
	return n, n > 0
}

// pull reads at most m frames of control c and returns how many arrived.
func (o *Oscillator) pull(c int, s Streamer, m int) int {
	got := 0
	for got < m {
		sn, sok := s.Stream(o.tmp[got:m])
		if !sok {
			if err := s.Err(); err != nil && o.err == nil {
				o.err = err
			}
			break
		}
		if sn == 0 {
			break
		}
		got += sn
	}
	for i := range o.tmp[:got] {
		o.ctl[c][i] = o.tmp[i][0]
	}
	return got
}

// Err returns the first error reported by a control.
func (o *Oscillator) Err() error {
	return o.err
}
