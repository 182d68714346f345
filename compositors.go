package blit

// Take returns a Streamer which streams at most n samples from s.
//
// The returned Streamer propagates s's errors through Err.
func Take(n int, s Streamer) Streamer {
	return &take{
		s:          s,
		numSamples: n,
	}
}

type take struct {
	s          Streamer
	currSample int
	numSamples int
}

func (t *take) Stream(samples [][2]float64) (n int, ok bool) {
	if t.currSample >= t.numSamples {
		return 0, false
	}
	if toStream := t.numSamples - t.currSample; len(samples) > toStream {
		samples = samples[:toStream]
	}
	n, ok = t.s.Stream(samples)
	t.currSample += n
	return n, ok
}

func (t *take) Err() error {
	return t.s.Err()
}

// Loop takes a StreamSeeker and plays it count times. If count is negative, s is looped
// infinitely. Looping a decoded recording turns it into an endless control signal.
//
// The returned Streamer propagates s's errors.
func Loop(count int, s StreamSeeker) Streamer {
	return &loop{
		s:       s,
		remains: count,
	}
}

type loop struct {
	s       StreamSeeker
	remains int
}

func (l *loop) Stream(samples [][2]float64) (n int, ok bool) {
	if l.remains == 0 || l.s.Err() != nil {
		return 0, false
	}
	for len(samples) > 0 {
		sn, sok := l.s.Stream(samples)
		if !sok || sn == 0 {
			if l.remains > 0 {
				l.remains--
			}
			if l.remains == 0 || l.s.Err() != nil || l.s.Len() == 0 {
				break
			}
			if err := l.s.Seek(0); err != nil {
				break
			}
			continue
		}
		samples = samples[sn:]
		n += sn
	}
	return n, n > 0
}

func (l *loop) Err() error {
	return l.s.Err()
}

// Seq takes zero or more Streamers and returns a Streamer which streams them one by one without
// pauses.
//
// Seq does not propagate errors from the Streamers.
func Seq(s ...Streamer) Streamer {
	i := 0
	return StreamerFunc(func(samples [][2]float64) (n int, ok bool) {
		for i < len(s) && len(samples) > 0 {
			sn, sok := s[i].Stream(samples)
			samples = samples[sn:]
			n, ok = n+sn, ok || sok
			if !sok {
				i++
			}
		}
		return n, ok
	})
}

// Mix takes zero or more Streamers and returns a Streamer which streams them summed together,
// for example several voices sharing one output.
//
// Mix does not propagate errors from the Streamers.
func Mix(s ...Streamer) Streamer {
	return &mix{s: s}
}

type mix struct {
	s   []Streamer
	tmp [controlBlock][2]float64
}

func (m *mix) Stream(samples [][2]float64) (n int, ok bool) {
	for len(samples) > 0 {
		toStream := len(samples)
		if toStream > len(m.tmp) {
			toStream = len(m.tmp)
		}
		for i := range samples[:toStream] {
			samples[i] = [2]float64{}
		}

		snMax := 0
		for _, st := range m.s {
			sn, sok := st.Stream(m.tmp[:toStream])
			if sn > snMax {
				snMax = sn
			}
			ok = ok || sok
			for i := range m.tmp[:sn] {
				samples[i][0] += m.tmp[i][0]
				samples[i][1] += m.tmp[i][1]
			}
		}

		n += snMax
		if snMax < toStream {
			break
		}
		samples = samples[snMax:]
	}
	return n, ok
}

func (m *mix) Err() error {
	return nil
}
