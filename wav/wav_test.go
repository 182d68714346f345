package wav_test

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/porres/blit"
	"github.com/porres/blit/wav"
)

func randomFrames(n int) [][2]float64 {
	data := make([][2]float64, n)
	for i := range data {
		data[i] = [2]float64{rand.Float64()*2 - 1, rand.Float64()*2 - 1}
	}
	return data
}

func sliceStreamer(data [][2]float64) blit.Streamer {
	return blit.StreamerFunc(func(samples [][2]float64) (n int, ok bool) {
		if len(data) == 0 {
			return 0, false
		}
		n = copy(samples, data)
		data = data[n:]
		return n, true
	})
}

func collect(s blit.Streamer) [][2]float64 {
	var (
		result [][2]float64
		buf    [333][2]float64
	)
	for {
		n, ok := s.Stream(buf[:])
		if !ok {
			return result
		}
		result = append(result, buf[:n]...)
	}
}

func TestEncodeDecode(t *testing.T) {
	dir := t.TempDir()
	for _, format := range []blit.Format{
		{SampleRate: 44100, NumChannels: 2, Precision: 2},
		{SampleRate: 48000, NumChannels: 1, Precision: 2},
		{SampleRate: 22050, NumChannels: 2, Precision: 1},
		{SampleRate: 96000, NumChannels: 2, Precision: 3},
	} {
		data := randomFrames(3001)
		path := filepath.Join(dir, "out.wav")
		f, err := os.Create(path)
		if err != nil {
			t.Fatal(err)
		}
		if err := wav.Encode(f, sliceStreamer(data), format); err != nil {
			t.Fatal(err)
		}
		f.Close()

		rf, err := os.Open(path)
		if err != nil {
			t.Fatal(err)
		}
		s, got, err := wav.Decode(rf)
		if err != nil {
			t.Fatal(err)
		}
		if got != format {
			t.Fatalf("decoded format = %+v, want %+v", got, format)
		}
		if s.Len() != len(data) {
			t.Fatalf("Len() = %d, want %d", s.Len(), len(data))
		}

		frames := collect(s)
		if len(frames) != len(data) {
			t.Fatalf("decoded %d frames, want %d", len(frames), len(data))
		}
		deviation := 2.0 / (math.Pow(2, float64(format.Precision)*8) - 2)
		for i := range data {
			want := data[i]
			if format.NumChannels == 1 {
				m := (want[0] + want[1]) / 2
				want = [2]float64{m, m}
			}
			if math.Abs(frames[i][0]-want[0]) > deviation || math.Abs(frames[i][1]-want[1]) > deviation {
				t.Fatalf("%+v frame %d: got %v, want %v", format, i, frames[i], want)
			}
		}
		if err := s.Close(); err != nil {
			t.Fatal(err)
		}
	}
}

func TestEncodeRejectsInvalidFormat(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "bad.wav"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	for _, format := range []blit.Format{
		{SampleRate: 44100, NumChannels: 0, Precision: 2},
		{SampleRate: 44100, NumChannels: 2, Precision: 4},
		{SampleRate: 0, NumChannels: 2, Precision: 2},
	} {
		if err := wav.Encode(f, blit.Silence(10), format); err == nil {
			t.Fatalf("Encode accepted %+v", format)
		}
	}
}

// chunked builds a mono 16-bit file with a LIST chunk of odd size between "fmt " and "data".
func chunked(values []int16) []byte {
	var b bytes.Buffer
	le := binary.LittleEndian
	data := new(bytes.Buffer)
	for _, v := range values {
		binary.Write(data, le, v)
	}
	list := []byte("INFOx")

	b.WriteString("RIFF")
	binary.Write(&b, le, int32(4+8+16+8+len(list)+1+8+data.Len()))
	b.WriteString("WAVE")
	b.WriteString("fmt ")
	binary.Write(&b, le, int32(16))
	binary.Write(&b, le, int16(1))
	binary.Write(&b, le, int16(1))
	binary.Write(&b, le, int32(8000))
	binary.Write(&b, le, int32(16000))
	binary.Write(&b, le, int16(2))
	binary.Write(&b, le, int16(16))
	b.WriteString("LIST")
	binary.Write(&b, le, int32(len(list)))
	b.Write(list)
	b.WriteByte(0) // pad to even size
	b.WriteString("data")
	binary.Write(&b, le, int32(data.Len()))
	b.Write(data.Bytes())
	return b.Bytes()
}

func TestDecodeSkipsUnknownChunks(t *testing.T) {
	values := []int16{0, 32767, -32767, 16384}
	s, format, err := wav.Decode(io.NopCloser(bytes.NewReader(chunked(values))))
	if err != nil {
		t.Fatal(err)
	}
	if format.SampleRate != 8000 || format.NumChannels != 1 || format.Precision != 2 {
		t.Fatalf("unexpected format %+v", format)
	}
	frames := collect(s)
	if len(frames) != len(values) {
		t.Fatalf("decoded %d frames, want %d", len(frames), len(values))
	}
	for i, v := range values {
		want := float64(v) / (1<<15 - 1)
		if frames[i][0] != want || frames[i][1] != want {
			t.Fatalf("frame %d = %v, want %v", i, frames[i], want)
		}
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	for _, data := range [][]byte{
		[]byte("not a wave file at all, definitely not"),
		[]byte("RIFF\x00\x00\x00\x00AVI "),
		[]byte("RIFF\x04\x00\x00\x00WAVE"),
	} {
		if _, _, err := wav.Decode(io.NopCloser(bytes.NewReader(data))); err == nil {
			t.Fatalf("Decode accepted %q", data)
		}
	}
}

func TestDecodeSeek(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seek.wav")
	if err := os.WriteFile(path, chunked([]int16{100, 200, 300, 400, 500}), 0o644); err != nil {
		t.Fatal(err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	s, _, err := wav.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	collect(s)
	if err := s.Seek(3); err != nil {
		t.Fatal(err)
	}
	if s.Position() != 3 {
		t.Fatalf("Position() = %d, want 3", s.Position())
	}
	frames := collect(s)
	if len(frames) != 2 || frames[0][0] != 400.0/(1<<15-1) {
		t.Fatalf("frames after seek = %v", frames)
	}
	if err := s.Seek(6); err == nil {
		t.Fatal("expected an error seeking past the end")
	}
}
