package control_test

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/porres/blit"
	"github.com/porres/blit/control"
	"github.com/porres/blit/wav"
)

// left drains s and returns its left channel.
func left(s blit.Streamer) []float64 {
	var (
		result []float64
		buf    [211][2]float64
	)
	for {
		n, ok := s.Stream(buf[:])
		if !ok {
			return result
		}
		for _, f := range buf[:n] {
			result = append(result, f[0])
		}
	}
}

func TestConst(t *testing.T) {
	got := left(blit.Take(1000, control.Const(440)))
	want := make([]float64, 1000)
	for i := range want {
		want[i] = 440
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Const (-want +got):\n%s", diff)
	}
}

func TestRamp(t *testing.T) {
	got := left(blit.Take(8, control.Ramp(1, 4, 4)))
	want := []float64{1, 2, 3, 4, 4, 4, 4, 4}
	if diff := cmp.Diff(want, got, cmpopts.EquateApprox(0, 1e-12)); diff != "" {
		t.Fatalf("Ramp (-want +got):\n%s", diff)
	}

	got = left(blit.Take(3, control.Ramp(1, 9, 1)))
	if diff := cmp.Diff([]float64{9, 9, 9}, got); diff != "" {
		t.Fatalf("single frame Ramp (-want +got):\n%s", diff)
	}
}

func TestScale(t *testing.T) {
	got := left(blit.Take(4, control.Scale(control.Ramp(-1, 1, 3), 100, 50)))
	want := []float64{50, 100, 150, 150}
	if diff := cmp.Diff(want, got, cmpopts.EquateApprox(0, 1e-12)); diff != "" {
		t.Fatalf("Scale (-want +got):\n%s", diff)
	}
}

func writeWav(t *testing.T, sr blit.SampleRate, values []float64) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "control.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	pos := 0
	s := blit.StreamerFunc(func(samples [][2]float64) (n int, ok bool) {
		if pos >= len(values) {
			return 0, false
		}
		for n < len(samples) && pos < len(values) {
			samples[n] = [2]float64{values[pos], values[pos]}
			n++
			pos++
		}
		return n, true
	})
	if err := wav.Encode(f, s, blit.Format{SampleRate: sr, NumChannels: 1, Precision: 2}); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestFile(t *testing.T) {
	path := writeWav(t, 8000, []float64{0, 0.5, -0.5, 1})

	s, closer, err := control.File(path, 8000, 100, 50, false)
	if err != nil {
		t.Fatal(err)
	}
	defer closer.Close()
	got := left(s)
	want := []float64{100, 125, 75, 150}
	if diff := cmp.Diff(want, got, cmpopts.EquateApprox(0, 0.01)); diff != "" {
		t.Fatalf("File (-want +got):\n%s", diff)
	}
}

func TestFileLoop(t *testing.T) {
	path := writeWav(t, 8000, []float64{0, 1})

	s, closer, err := control.File(path, 8000, 0, 1, true)
	if err != nil {
		t.Fatal(err)
	}
	defer closer.Close()
	got := left(blit.Take(7, s))
	want := []float64{0, 1, 0, 1, 0, 1, 0}
	if diff := cmp.Diff(want, got, cmpopts.EquateApprox(0, 1e-4)); diff != "" {
		t.Fatalf("looped File (-want +got):\n%s", diff)
	}
}

func TestFileErrors(t *testing.T) {
	path := writeWav(t, 8000, []float64{0, 1})
	if _, _, err := control.File(path, 44100, 0, 1, false); err == nil {
		t.Fatal("expected a sample rate mismatch error")
	}
	if _, _, err := control.File(filepath.Join(t.TempDir(), "x.aiff"), 8000, 0, 1, false); err == nil {
		t.Fatal("expected an unsupported file type error")
	}
	if _, _, err := control.Open(filepath.Join(t.TempDir(), "missing.wav")); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}

func TestScript(t *testing.T) {
	s, err := control.Script(`
function control(t)
	if t >= 1 then
		return nil
	end
	return 100 + 10 * t
end`, 10)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	got := left(s)
	want := make([]float64, 10)
	for i := range want {
		want[i] = 100 + float64(i)
	}
	if diff := cmp.Diff(want, got, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Fatalf("Script (-want +got):\n%s", diff)
	}
	if s.Err() != nil {
		t.Fatalf("unexpected error: %v", s.Err())
	}
}

func TestScriptMath(t *testing.T) {
	s, err := control.Script(`function control(t) return math.sin(t) end`, 4)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	got := left(blit.Take(4, s))
	for i, v := range got {
		if want := math.Sin(float64(i) / 4); math.Abs(v-want) > 1e-12 {
			t.Fatalf("frame %d = %v, want %v", i, v, want)
		}
	}
}

func TestScriptErrors(t *testing.T) {
	for name, src := range map[string]string{
		"syntax":  `function control(t) return`,
		"missing": `x = 1`,
	} {
		if _, err := control.Script(src, 44100); err == nil {
			t.Fatalf("%s: expected an error", name)
		}
	}

	for name, src := range map[string]string{
		"type":    `function control(t) return "loud" end`,
		"runtime": `function control(t) return os.time() end`,
	} {
		s, err := control.Script(src, 44100)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if n, ok := s.Stream(make([][2]float64, 8)); n != 0 || ok {
			t.Fatalf("%s: Stream returned (%d, %v), want (0, false)", name, n, ok)
		}
		if s.Err() == nil {
			t.Fatalf("%s: expected a streaming error", name)
		}
		s.Close()
	}
}

func TestControlsDriveOscillator(t *testing.T) {
	const n = 4800
	g := blit.New()
	g.Configure(48000)
	osc := blit.NewOscillator(g, control.Const(1000), control.Ramp(1, 100, n), control.Const(1))

	out := make([][2]float64, 100)
	for total := 0; total < n; total += len(out) {
		if _, ok := osc.Stream(out); !ok {
			t.Fatal("oscillator drained")
		}
		if g.Harmonics() > 48 {
			t.Fatalf("h = %d exceeds the non-aliasing bound 48", g.Harmonics())
		}
	}
	if g.Harmonics() != 48 {
		t.Fatalf("h = %d at the end of the sweep, want 48", g.Harmonics())
	}
}
