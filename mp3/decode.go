// Package mp3 implements audio data decoding in MP3 format.
package mp3

import (
	"io"

	gomp3 "github.com/hajimehoshi/go-mp3"
	"github.com/pkg/errors"

	"github.com/porres/blit"
)

// go-mp3 always produces 16-bit little-endian stereo.
const (
	numChannels   = 2
	precision     = 2
	bytesPerFrame = numChannels * precision
)

// Decode takes a ReadCloser containing audio data in MP3 format and returns a StreamSeekCloser,
// which streams that audio. The Seek method fails if rc is not io.Seeker.
//
// Do not close the supplied ReadCloser, instead, use the Close method of the returned
// StreamSeekCloser when you want to release the resources.
func Decode(rc io.ReadCloser) (s blit.StreamSeekCloser, format blit.Format, err error) {
	defer func() {
		if err != nil {
			rc.Close()
			err = errors.Wrap(err, "mp3")
		}
	}()
	d, err := gomp3.NewDecoder(rc)
	if err != nil {
		return nil, blit.Format{}, err
	}
	format = blit.Format{
		SampleRate:  blit.SampleRate(d.SampleRate()),
		NumChannels: numChannels,
		Precision:   precision,
	}
	return &decoder{closer: rc, d: d, f: format}, format, nil
}

type decoder struct {
	closer io.Closer
	d      *gomp3.Decoder
	f      blit.Format
	buf    []byte
	pos    int
	err    error
}

func (d *decoder) Stream(samples [][2]float64) (n int, ok bool) {
	if d.err != nil {
		return 0, false
	}
	if want := len(samples) * bytesPerFrame; cap(d.buf) < want {
		d.buf = make([]byte, want)
	}
	p := d.buf[:len(samples)*bytesPerFrame]
	nb, err := io.ReadFull(d.d, p)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		d.err = errors.Wrap(err, "mp3")
	}
	n = nb / bytesPerFrame
	for i := 0; i < n; i++ {
		samples[i], _ = d.f.DecodeSigned(p[i*bytesPerFrame:])
	}
	d.pos += n * bytesPerFrame
	return n, n > 0
}

func (d *decoder) Err() error {
	return d.err
}

func (d *decoder) Len() int {
	return int(d.d.Length()) / bytesPerFrame
}

func (d *decoder) Position() int {
	return d.pos / bytesPerFrame
}

func (d *decoder) Seek(p int) error {
	if p < 0 || d.Len() < p {
		return errors.Errorf("mp3: seek position %v out of range [%v, %v]", p, 0, d.Len())
	}
	if _, err := d.d.Seek(int64(p)*bytesPerFrame, io.SeekStart); err != nil {
		return errors.Wrap(err, "mp3: seek error")
	}
	d.pos = p * bytesPerFrame
	return nil
}

func (d *decoder) Close() error {
	if err := d.closer.Close(); err != nil {
		return errors.Wrap(err, "mp3")
	}
	return nil
}
