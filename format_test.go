package blit_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/porres/blit"
)

func TestFormatEncodeDecode(t *testing.T) {
	formats := make(chan blit.Format)
	go func() {
		defer close(formats)
		for _, sampleRate := range []blit.SampleRate{100, 2347, 44100, 48000} {
			for _, numChannels := range []int{1, 2, 3, 4} {
				for _, precision := range []int{1, 2, 3, 4, 5, 6} {
					formats <- blit.Format{
						SampleRate:  sampleRate,
						NumChannels: numChannels,
						Precision:   precision,
					}
				}
			}
		}
	}()

	for format := range formats {
		deviation := 2.0 / (math.Pow(2, float64(format.Precision)*8) - 2)
		for i := 0; i < 20; i++ {
			sample := [2]float64{rand.Float64()*2 - 1, rand.Float64()*2 - 1}
			tmp := make([]byte, format.Width())

			format.EncodeSigned(tmp, sample)
			decoded, _ := format.DecodeSigned(tmp)
			checkDecoded(t, "signed", format, sample, decoded, deviation)

			format.EncodeUnsigned(tmp, sample)
			decoded, _ = format.DecodeUnsigned(tmp)
			checkDecoded(t, "unsigned", format, sample, decoded, deviation)
		}
	}
}

func checkDecoded(t *testing.T, kind string, format blit.Format, sample, decoded [2]float64, deviation float64) {
	t.Helper()
	if format.NumChannels == 1 {
		if math.Abs((sample[0]+sample[1])/2-decoded[0]) > deviation || decoded[0] != decoded[1] {
			t.Fatalf("%s decoded sample is too different: %v -> %v (deviation: %v)", kind, sample, decoded, deviation)
		}
		return
	}
	if math.Abs(sample[0]-decoded[0]) > deviation || math.Abs(sample[1]-decoded[1]) > deviation {
		t.Fatalf("%s decoded sample is too different: %v -> %v (deviation: %v)", kind, sample, decoded, deviation)
	}
}

func TestFormatEncodeClamps(t *testing.T) {
	format := blit.Format{SampleRate: 44100, NumChannels: 2, Precision: 2}
	tmp := make([]byte, format.Width())
	format.EncodeSigned(tmp, [2]float64{3, -3})
	decoded, _ := format.DecodeSigned(tmp)
	if decoded != [2]float64{1, -1} {
		t.Fatalf("out of range sample was not clamped: got %v", decoded)
	}
}

func TestSampleRateDuration(t *testing.T) {
	sr := blit.SampleRate(48000)
	if got := sr.N(sr.D(4800)); got != 4800 {
		t.Fatalf("N(D(4800)) = %d, want 4800", got)
	}
	if got := sr.Period(); got != 1.0/48000 {
		t.Fatalf("Period() = %v, want %v", got, 1.0/48000)
	}
}
