package wav

import (
	"bufio"
	"encoding/binary"
	"io"

	"github.com/pkg/errors"

	"github.com/porres/blit"
)

// header is the canonical 44 byte header written by Encode.
type header struct {
	RiffMark      [4]byte
	FileSize      int32
	WaveMark      [4]byte
	FmtMark       [4]byte
	FormatSize    int32
	FormatType    int16
	NumChans      int16
	SampleRate    int32
	ByteRate      int32
	BytesPerFrame int16
	BitsPerSample int16
	DataMark      [4]byte
	DataSize      int32
}

const headerSize = 44

// Encode writes all audio streamed from s to w in WAVE format. The sizes in the header are
// patched once s is drained, which is why w has to be an io.WriteSeeker.
//
// Format precision must be 1, 2 or 3 bytes.
func Encode(w io.WriteSeeker, s blit.Streamer, format blit.Format) (err error) {
	defer func() {
		if err != nil {
			err = errors.Wrap(err, "wav")
		}
	}()

	if format.NumChannels <= 0 {
		return errors.New("invalid number of channels (less than 1)")
	}
	if format.Precision < 1 || format.Precision > 3 {
		return errors.New("unsupported precision, 1, 2 or 3 is supported")
	}
	if format.SampleRate <= 0 {
		return errors.Errorf("invalid sample rate: %d", format.SampleRate)
	}

	h := header{
		RiffMark:      [4]byte{'R', 'I', 'F', 'F'},
		FileSize:      -1, // patched below
		WaveMark:      [4]byte{'W', 'A', 'V', 'E'},
		FmtMark:       [4]byte{'f', 'm', 't', ' '},
		FormatSize:    16,
		FormatType:    formatPCM,
		NumChans:      int16(format.NumChannels),
		SampleRate:    int32(format.SampleRate),
		ByteRate:      int32(int(format.SampleRate) * format.Width()),
		BytesPerFrame: int16(format.Width()),
		BitsPerSample: int16(format.Precision) * 8,
		DataMark:      [4]byte{'d', 'a', 't', 'a'},
		DataSize:      -1, // patched below
	}
	if err := binary.Write(w, binary.LittleEndian, &h); err != nil {
		return err
	}

	bw := bufio.NewWriter(w)
	written, err := encodeFrames(bw, s, format)
	if err != nil {
		return err
	}
	if err := bw.Flush(); err != nil {
		return err
	}
	if err := s.Err(); err != nil {
		return errors.Wrap(err, "streamer failed")
	}

	h.FileSize = int32(headerSize - 8 + written)
	h.DataSize = int32(written)
	if _, err := w.Seek(0, io.SeekStart); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, &h); err != nil {
		return err
	}
	if _, err := w.Seek(0, io.SeekEnd); err != nil {
		return err
	}
	return nil
}

// encodeFrames drains s into w and returns the number of bytes written. 8-bit WAVE data is
// unsigned, everything wider is signed.
func encodeFrames(w io.Writer, s blit.Streamer, format blit.Format) (written int, err error) {
	var (
		samples = make([][2]float64, 512)
		buffer  = make([]byte, len(samples)*format.Width())
	)
	encode := format.EncodeSigned
	if format.Precision == 1 {
		encode = format.EncodeUnsigned
	}
	for {
		n, ok := s.Stream(samples)
		if !ok {
			return written, nil
		}
		buf := buffer
		for _, sample := range samples[:n] {
			buf = buf[encode(buf, sample):]
		}
		nn, err := w.Write(buffer[:n*format.Width()])
		written += nn
		if err != nil {
			return written, err
		}
	}
}
