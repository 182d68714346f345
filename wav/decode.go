// Package wav implements audio data decoding and encoding in the WAVE format.
package wav

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/pkg/errors"

	"github.com/porres/blit"
)

const (
	formatPCM      = 1
	riffHeaderSize = 12
	chunkHeadSize  = 8
)

type riffHeader struct {
	RiffMark [4]byte
	FileSize int32
	WaveMark [4]byte
}

type chunkHeader struct {
	ID   [4]byte
	Size int32
}

type fmtChunk struct {
	FormatType    int16
	NumChans      int16
	SampleRate    int32
	ByteRate      int32
	BytesPerFrame int16
	BitsPerSample int16
}

// Decode takes a ReadCloser containing audio data in WAVE format and returns a StreamSeekCloser,
// which streams that audio. Chunks other than "fmt " and "data" are skipped. The Seek method
// will panic if rc is not io.Seeker.
//
// Do not close the supplied ReadCloser, instead, use the Close method of the returned
// StreamSeekCloser when you want to release the resources.
func Decode(rc io.ReadCloser) (s blit.StreamSeekCloser, format blit.Format, err error) {
	d := decoder{rc: rc}
	defer func() { // always close rc if an error occurred
		if err != nil {
			d.rc.Close()
			err = errors.Wrap(err, "wav")
		}
	}()

	var riff riffHeader
	if err := binary.Read(rc, binary.LittleEndian, &riff); err != nil {
		return nil, blit.Format{}, err
	}
	if string(riff.RiffMark[:]) != "RIFF" {
		return nil, blit.Format{}, errors.New("missing RIFF at the beginning")
	}
	if string(riff.WaveMark[:]) != "WAVE" {
		return nil, blit.Format{}, errors.New("unsupported file type")
	}

	var (
		fc      fmtChunk
		haveFmt bool
		offset  int64 = riffHeaderSize
	)
	for {
		var ch chunkHeader
		if err := binary.Read(rc, binary.LittleEndian, &ch); err != nil {
			return nil, blit.Format{}, errors.Wrap(err, "missing data chunk")
		}
		offset += chunkHeadSize
		if ch.Size < 0 {
			return nil, blit.Format{}, errors.Errorf("invalid size of chunk %q", ch.ID[:])
		}

		if string(ch.ID[:]) == "data" {
			if !haveFmt {
				return nil, blit.Format{}, errors.New("data chunk before format chunk")
			}
			d.dataStart = offset
			d.dataSize = int64(ch.Size)
			break
		}

		skip := int64(ch.Size) + int64(ch.Size&1)
		if string(ch.ID[:]) == "fmt " {
			if ch.Size < 16 {
				return nil, blit.Format{}, errors.New("format chunk too short")
			}
			if err := binary.Read(rc, binary.LittleEndian, &fc); err != nil {
				return nil, blit.Format{}, err
			}
			haveFmt = true
			skip -= 16
		}
		if _, err := io.CopyN(io.Discard, rc, skip); err != nil {
			return nil, blit.Format{}, err
		}
		offset += int64(ch.Size) + int64(ch.Size&1)
	}

	if fc.FormatType != formatPCM {
		return nil, blit.Format{}, errors.New("unsupported format type")
	}
	if fc.NumChans <= 0 {
		return nil, blit.Format{}, errors.New("invalid number of channels (less than 1)")
	}
	switch fc.BitsPerSample {
	case 8, 16, 24, 32:
	default:
		return nil, blit.Format{}, errors.Errorf("unsupported number of bits per sample: %d", fc.BitsPerSample)
	}
	if fc.SampleRate <= 0 {
		return nil, blit.Format{}, errors.Errorf("invalid sample rate: %d", fc.SampleRate)
	}

	d.format = blit.Format{
		SampleRate:  blit.SampleRate(fc.SampleRate),
		NumChannels: int(fc.NumChans),
		Precision:   int(fc.BitsPerSample / 8),
	}
	return &d, d.format, nil
}

type decoder struct {
	rc        io.ReadCloser
	format    blit.Format
	dataStart int64
	dataSize  int64
	pos       int64
	buf       []byte
	err       error
}

func (d *decoder) Stream(samples [][2]float64) (n int, ok bool) {
	width := int64(d.format.Width())
	if d.err != nil || d.dataSize-d.pos < width {
		return 0, false
	}
	numBytes := int64(len(samples)) * width
	if rem := d.dataSize - d.pos; numBytes > rem {
		numBytes = rem - rem%width
	}
	if int64(cap(d.buf)) < numBytes {
		d.buf = make([]byte, numBytes)
	}
	p := d.buf[:numBytes]

	nb, err := io.ReadFull(d.rc, p)
	switch {
	case err == io.EOF || err == io.ErrUnexpectedEOF:
		// truncated file, the data chunk ends where the bytes do
		d.dataSize = d.pos + int64(nb)
	case err != nil:
		d.err = errors.Wrap(err, "wav")
	}

	n = nb / int(width)
	for i := 0; i < n; i++ {
		frame := p[i*int(width):]
		if d.format.Precision == 1 {
			samples[i], _ = d.format.DecodeUnsigned(frame)
		} else {
			samples[i], _ = d.format.DecodeSigned(frame)
		}
	}
	d.pos += int64(n) * width
	return n, n > 0
}

func (d *decoder) Err() error {
	return d.err
}

func (d *decoder) Len() int {
	return int(d.dataSize / int64(d.format.Width()))
}

func (d *decoder) Position() int {
	return int(d.pos / int64(d.format.Width()))
}

func (d *decoder) Seek(p int) error {
	seeker, ok := d.rc.(io.Seeker)
	if !ok {
		panic(fmt.Errorf("wav: seek: resource is not io.Seeker"))
	}
	if p < 0 || d.Len() < p {
		return fmt.Errorf("wav: seek position %v out of range [%v, %v]", p, 0, d.Len())
	}
	pos := int64(p) * int64(d.format.Width())
	if _, err := seeker.Seek(d.dataStart+pos, io.SeekStart); err != nil {
		return errors.Wrap(err, "wav: seek error")
	}
	d.pos = pos
	return nil
}

func (d *decoder) Close() error {
	err := d.rc.Close()
	if err != nil {
		return errors.Wrap(err, "wav")
	}
	return nil
}
