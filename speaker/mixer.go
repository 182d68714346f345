package speaker

import "github.com/porres/blit"

const chunk = 512

// mixer sums the playing Streamers. It streams silence when nothing plays and never drains.
// Streamers which drain or fail are removed.
type mixer struct {
	streamers []blit.Streamer
	tmp       [chunk][2]float64
}

func (m *mixer) add(s ...blit.Streamer) {
	m.streamers = append(m.streamers, s...)
}

func (m *mixer) clear() {
	for i := range m.streamers {
		m.streamers[i] = nil
	}
	m.streamers = m.streamers[:0]
}

func (m *mixer) len() int {
	return len(m.streamers)
}

func (m *mixer) Stream(samples [][2]float64) (n int, ok bool) {
	for len(samples) > 0 {
		toStream := min(len(samples), chunk)
		for i := range samples[:toStream] {
			samples[i] = [2]float64{}
		}

		for si := 0; si < len(m.streamers); si++ {
			sn, sok := m.streamers[si].Stream(m.tmp[:toStream])
			for i := range m.tmp[:sn] {
				samples[i][0] += m.tmp[i][0]
				samples[i][1] += m.tmp[i][1]
			}
			if !sok || sn < toStream {
				// remove the drained Streamer without keeping a reference in the backing array
				last := len(m.streamers) - 1
				m.streamers[si] = m.streamers[last]
				m.streamers[last] = nil
				m.streamers = m.streamers[:last]
				si--
			}
		}

		samples = samples[toStream:]
		n += toStream
	}
	return n, true
}

func (m *mixer) Err() error {
	return nil
}
