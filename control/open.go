package control

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/porres/blit"
	"github.com/porres/blit/effects"
	"github.com/porres/blit/flac"
	"github.com/porres/blit/mp3"
	"github.com/porres/blit/vorbis"
	"github.com/porres/blit/wav"
)

type decodeFunc func(io.ReadCloser) (blit.StreamSeekCloser, blit.Format, error)

var decoders = map[string]decodeFunc{
	".wav":  wav.Decode,
	".wave": wav.Decode,
	".flac": flac.Decode,
	".ogg":  vorbis.Decode,
	".oga":  vorbis.Decode,
	".mp3":  mp3.Decode,
}

// Open decodes the audio file at path, choosing the decoder by the file extension.
//
// The caller must Close the returned StreamSeekCloser.
func Open(path string) (blit.StreamSeekCloser, blit.Format, error) {
	decode, ok := decoders[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return nil, blit.Format{}, errors.Errorf("control: %s: unsupported file type", path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, blit.Format{}, errors.Wrap(err, "control")
	}
	s, format, err := decode(f)
	if err != nil {
		return nil, blit.Format{}, errors.Wrapf(err, "control: %s", path)
	}
	return s, format, nil
}

// File opens path as a control for a voice running at sr. Each frame of the recording is
// downmixed to x and becomes offset + depth*x. With loop set the recording repeats forever,
// otherwise the control drains with the file.
//
// File does not resample: the recording must already be at sr. The returned Closer releases
// the file.
func File(path string, sr blit.SampleRate, offset, depth float64, loop bool) (blit.Streamer, io.Closer, error) {
	s, format, err := Open(path)
	if err != nil {
		return nil, nil, err
	}
	if format.SampleRate != sr {
		s.Close()
		return nil, nil, errors.Errorf("control: %s: sample rate %d does not match %d", path, format.SampleRate, sr)
	}
	var src blit.Streamer = s
	if loop {
		src = blit.Loop(-1, s)
	}
	return Scale(effects.Mono(src), offset, depth), s, nil
}
