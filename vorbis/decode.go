// Package vorbis implements audio data decoding in oggvorbis format.
package vorbis

import (
	"io"

	"github.com/jfreymuth/oggvorbis"
	"github.com/pkg/errors"

	"github.com/porres/blit"
)

// precision reported for decoded streams; vorbis itself has no bit depth
const precision = 2

// Decode takes a ReadCloser containing audio data in ogg/vorbis format and returns a
// StreamSeekCloser, which streams that audio. Mono files are streamed to both channels.
//
// Do not close the supplied ReadCloser, instead, use the Close method of the returned
// StreamSeekCloser when you want to release the resources.
func Decode(rc io.ReadCloser) (s blit.StreamSeekCloser, format blit.Format, err error) {
	defer func() {
		if err != nil {
			rc.Close()
			err = errors.Wrap(err, "ogg/vorbis")
		}
	}()
	r, err := oggvorbis.NewReader(rc)
	if err != nil {
		return nil, blit.Format{}, err
	}
	if r.Channels() < 1 {
		return nil, blit.Format{}, errors.New("no channels")
	}
	format = blit.Format{
		SampleRate:  blit.SampleRate(r.SampleRate()),
		NumChannels: r.Channels(),
		Precision:   precision,
	}
	return &decoder{closer: rc, r: r, channels: r.Channels()}, format, nil
}

type decoder struct {
	closer   io.Closer
	r        *oggvorbis.Reader
	channels int
	tmp      []float32
	err      error
}

func (d *decoder) Stream(samples [][2]float64) (n int, ok bool) {
	if d.err != nil {
		return 0, false
	}
	if want := len(samples) * d.channels; cap(d.tmp) < want {
		d.tmp = make([]float32, want)
	}
	for n < len(samples) {
		tmp := d.tmp[:(len(samples)-n)*d.channels]
		dn, err := d.r.Read(tmp)
		frames := dn / d.channels
		for i := 0; i < frames; i++ {
			frame := tmp[i*d.channels:]
			l, r := float64(frame[0]), float64(frame[0])
			if d.channels >= 2 {
				r = float64(frame[1])
			}
			samples[n+i] = [2]float64{l, r}
		}
		n += frames
		if err == io.EOF {
			break
		}
		if err != nil {
			d.err = errors.Wrap(err, "ogg/vorbis")
			break
		}
		if dn == 0 {
			break
		}
	}
	return n, n > 0
}

func (d *decoder) Err() error {
	return d.err
}

func (d *decoder) Len() int {
	return int(d.r.Length())
}

func (d *decoder) Position() int {
	return int(d.r.Position())
}

func (d *decoder) Seek(p int) error {
	if err := d.r.SetPosition(int64(p)); err != nil {
		return errors.Wrap(err, "ogg/vorbis")
	}
	return nil
}

func (d *decoder) Close() error {
	if err := d.closer.Close(); err != nil {
		return errors.Wrap(err, "ogg/vorbis")
	}
	return nil
}
