// Package flac implements audio data decoding in FLAC format.
package flac

import (
	"io"

	"github.com/mewkiz/flac"
	"github.com/pkg/errors"

	"github.com/porres/blit"
)

// Decode takes a ReadCloser containing audio data in FLAC format and returns a StreamSeekCloser,
// which streams that audio. Seeking is not supported by the underlying decoder and always
// returns an error.
//
// Do not close the supplied ReadCloser, instead, use the Close method of the returned
// StreamSeekCloser when you want to release the resources.
func Decode(rc io.ReadCloser) (s blit.StreamSeekCloser, format blit.Format, err error) {
	d := decoder{rc: rc}
	defer func() { // always close rc if an error occurred
		if err != nil {
			d.rc.Close()
		}
	}()
	d.stream, err = flac.New(rc)
	if err != nil {
		return nil, blit.Format{}, errors.Wrap(err, "flac")
	}
	info := d.stream.Info
	if info.BitsPerSample == 0 || info.BitsPerSample > 32 {
		return nil, blit.Format{}, errors.Errorf("flac: unsupported bits per sample: %d", info.BitsPerSample)
	}
	format = blit.Format{
		SampleRate:  blit.SampleRate(info.SampleRate),
		NumChannels: int(info.NChannels),
		Precision:   int(info.BitsPerSample+7) / 8,
	}
	d.scale = 1 / float64(uint64(1)<<(info.BitsPerSample-1))
	return &d, format, nil
}

type decoder struct {
	rc     io.ReadCloser
	stream *flac.Stream
	scale  float64
	buf    [][2]float64
	pos    int
	err    error
}

func (d *decoder) Stream(samples [][2]float64) (n int, ok bool) {
	if d.err != nil {
		return 0, false
	}
	for n < len(samples) {
		if len(d.buf) == 0 {
			if err := d.refill(); err != nil {
				if err != io.EOF {
					d.err = errors.Wrap(err, "flac")
				}
				break
			}
		}
		c := copy(samples[n:], d.buf)
		d.buf = d.buf[c:]
		n += c
	}
	d.pos += n
	return n, n > 0
}

// refill decodes the next audio frame into the buffer.
func (d *decoder) refill() error {
	frame, err := d.stream.ParseNext()
	if err != nil {
		return err
	}
	n := len(frame.Subframes[0].Samples)
	if cap(d.buf) < n {
		d.buf = make([][2]float64, n)
	}
	d.buf = d.buf[:n]

	left := frame.Subframes[0].Samples
	right := left
	if len(frame.Subframes) >= 2 {
		right = frame.Subframes[1].Samples
	}
	for i := 0; i < n; i++ {
		d.buf[i] = [2]float64{float64(left[i]) * d.scale, float64(right[i]) * d.scale}
	}
	return nil
}

func (d *decoder) Err() error {
	return d.err
}

func (d *decoder) Len() int {
	return int(d.stream.Info.NSamples)
}

func (d *decoder) Position() int {
	return d.pos
}

func (d *decoder) Seek(p int) error {
	return errors.New("flac: seek: not supported")
}

func (d *decoder) Close() error {
	if err := d.rc.Close(); err != nil {
		return errors.Wrap(err, "flac")
	}
	return nil
}
