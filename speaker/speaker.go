// Package speaker implements playback of blit.Streamer values through physical speakers.
package speaker

import (
	"io"
	"sync"

	"github.com/ebitengine/oto/v3"
	"github.com/pkg/errors"

	"github.com/porres/blit"
)

const (
	channelCount    = 2
	bitDepthInBytes = 2
	bytesPerSample  = bitDepthInBytes * channelCount
)

var (
	mu      sync.Mutex
	mix     mixer
	context *oto.Context
	player  *oto.Player
)

// Init initializes audio playback through speaker. Must be called before using this package.
//
// The bufferSize argument specifies the number of samples of the speaker's buffer. Bigger
// bufferSize means lower CPU usage and more reliable playback. Lower bufferSize means better
// responsiveness and less delay.
func Init(sampleRate blit.SampleRate, bufferSize int) error {
	if context != nil {
		return errors.New("speaker: cannot be initialized more than once")
	}
	if sampleRate <= 0 || bufferSize <= 0 {
		return errors.Errorf("speaker: invalid sample rate %d or buffer size %d", sampleRate, bufferSize)
	}

	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   int(sampleRate),
		ChannelCount: channelCount,
		Format:       oto.FormatSignedInt16LE,
		BufferSize:   sampleRate.D(bufferSize),
	})
	if err != nil {
		return errors.Wrap(err, "speaker: failed to initialize")
	}
	<-ready
	context = ctx

	player = context.NewPlayer(newSampleReader(&mix, sampleRate))
	player.SetBufferSize(bufferSize * bytesPerSample)
	player.Play()
	return nil
}

// Close stops the playback and removes every playing Streamer. oto keeps its context alive until
// the process exits, so Init cannot be called again after Close.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if player == nil {
		return nil
	}
	err := player.Close()
	player = nil
	mix.clear()
	return errors.Wrap(err, "speaker: close")
}

// Lock locks the speaker. While locked, speaker won't pull new data from the playing Streamers.
// Lock if you want to modify any currently playing Streamers to avoid race conditions.
//
// Always lock speaker for as little time as possible, to avoid playback glitches.
func Lock() {
	mu.Lock()
}

// Unlock unlocks the speaker. Call after modifying any currently playing Streamer.
func Unlock() {
	mu.Unlock()
}

// Play starts playing all provided Streamers through the speaker.
func Play(s ...blit.Streamer) {
	mu.Lock()
	mix.add(s...)
	mu.Unlock()
}

// Clear removes all currently playing Streamers from the speaker.
func Clear() {
	mu.Lock()
	mix.clear()
	mu.Unlock()
}

// Playing returns the number of Streamers still playing.
func Playing() int {
	mu.Lock()
	defer mu.Unlock()
	return mix.len()
}

// sampleReader encodes a Streamer as signed 16-bit little-endian stereo for oto.
type sampleReader struct {
	s      blit.Streamer
	format blit.Format
	buf    [][2]float64
}

func newSampleReader(s blit.Streamer, sr blit.SampleRate) *sampleReader {
	return &sampleReader{
		s:      s,
		format: blit.Format{SampleRate: sr, NumChannels: channelCount, Precision: bitDepthInBytes},
	}
}

// Read pulls samples under the speaker lock and fills buf with the encoded samples. The size of
// buf must be divisible by the size of a frame.
func (r *sampleReader) Read(buf []byte) (n int, err error) {
	if len(buf)%bytesPerSample != 0 {
		return 0, errors.New("speaker: requested number of bytes do not align with the samples")
	}
	ns := len(buf) / bytesPerSample
	if len(r.buf) < ns {
		r.buf = make([][2]float64, ns)
	}

	mu.Lock()
	ns, ok := r.s.Stream(r.buf[:ns])
	mu.Unlock()
	if !ok {
		if err := r.s.Err(); err != nil {
			return 0, errors.Wrap(err, "speaker: streamer failed")
		}
		if ns == 0 {
			return 0, io.EOF
		}
	}

	for _, sample := range r.buf[:ns] {
		n += r.format.EncodeSigned(buf[n:], sample)
	}
	return n, nil
}
