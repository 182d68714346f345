// Package blit generates band-limited impulse trains and the oscillators built on top of them.
//
// A Generator evaluates a closed-form Dirichlet kernel once per sample. The number of summed
// harmonics is bounded by the sample rate and the current fundamental, so the train never
// aliases. Controls are per-sample signals rather than fixed parameters: every call to Process
// consumes one frequency, one harmonic request and one polarity value per output frame.
package blit

import (
	"fmt"
	"math"
)

const twoPi = 2 * math.Pi

// Tracking selects when a Generator recomputes its harmonic count.
type Tracking int

const (
	// PhaseLocked recomputes the harmonic count only when the phase wraps, so a change takes
	// effect exactly at an impulse boundary.
	PhaseLocked Tracking = iota

	// PerSample recomputes the harmonic count after every sample.
	PerSample
)

// String returns the name of the tracking mode.
func (t Tracking) String() string {
	switch t {
	case PhaseLocked:
		return "phase-locked"
	case PerSample:
		return "per-sample"
	default:
		return "unknown"
	}
}

// ParseTracking parses the name returned by Tracking.String.
func ParseTracking(s string) (Tracking, error) {
	switch s {
	case "phase-locked", "locked":
		return PhaseLocked, nil
	case "per-sample", "sample":
		return PerSample, nil
	}
	return 0, fmt.Errorf("blit: unknown tracking mode %q", s)
}

// Generator is the state of a single band-limited impulse train voice.
//
// The zero value is a silent voice at phase 0 with no harmonics. It must be configured with a
// sample rate before it produces any movement. A Generator is owned by exactly one voice and is
// not safe for concurrent use.
type Generator struct {
	sampleRate SampleRate
	period     float64

	phase float64
	h     int
	maxH  int

	tracking Tracking
	exactPi  bool
}

// New returns a fresh voice with phase, harmonic count and harmonic bound set to zero.
func New() *Generator {
	return &Generator{}
}

// Configure sets the sample rate. The phase and harmonic state are kept, so a rate change in
// the middle of a stream does not jump.
//
// Configure panics if sr is not positive.
func (g *Generator) Configure(sr SampleRate) {
	if sr <= 0 {
		panic(fmt.Errorf("blit: configure: invalid sample rate: %d", sr))
	}
	g.sampleRate = sr
	g.period = 1 / float64(sr)
}

// SetTracking selects when the harmonic count is recomputed. The default is PhaseLocked.
func (g *Generator) SetTracking(t Tracking) {
	g.tracking = t
}

// Tracking returns the current tracking mode.
func (g *Generator) Tracking() Tracking {
	return g.tracking
}

// SetExactLimit selects what the kernel evaluates to at φ = π. By default it is 1 for both
// polarities. With exact set it is the true limit of the kernel, -1 for a bipolar train, so
// consecutive bipolar impulses alternate in sign even when a sample lands exactly on π.
func (g *Generator) SetExactLimit(exact bool) {
	g.exactPi = exact
}

// ExactLimit reports whether the exact limit at φ = π is used.
func (g *Generator) ExactLimit() bool {
	return g.exactPi
}

// SampleRate returns the configured sample rate, or 0 if Configure was never called.
func (g *Generator) SampleRate() SampleRate {
	return g.sampleRate
}

// Phase returns the current phase in radians, always in [0, 2π).
func (g *Generator) Phase() float64 {
	return g.phase
}

// Harmonics returns the number of harmonics currently summed.
func (g *Generator) Harmonics() int {
	return g.h
}

// MaxHarmonics returns the non-aliasing harmonic bound computed at the last update.
func (g *Generator) MaxHarmonics() int {
	return g.maxH
}

// Process fills out with len(out) samples of the impulse train. The i-th sample is driven by
// frequency[i] (Hz), harmonics[i] (the requested harmonic count, doubled internally) and
// polarity[i] (non-negative selects a unipolar train, negative a bipolar one).
//
// Process does not allocate. It panics if any control slice is shorter than out.
func (g *Generator) Process(out, frequency, harmonics, polarity []float64) {
	n := len(out)
	if len(frequency) < n || len(harmonics) < n || len(polarity) < n {
		panic(fmt.Errorf("blit: process: control blocks shorter than %d frames", n))
	}

	kernel := Kernel
	if g.exactPi {
		kernel = ExactKernel
	}
	phase, h, maxH := g.phase, g.h, g.maxH
	for i := range out {
		freq := frequency[i]
		out[i] = kernel(phase, h, polarity[i])

		phase += freq * math.Pi * g.period
		switch {
		case phase >= twoPi, phase < 0:
			h, maxH = g.bound(freq, harmonics[i])
			phase = wrap(phase)
		case g.tracking == PerSample:
			h, maxH = g.bound(freq, harmonics[i])
		}
	}
	g.phase, g.h, g.maxH = phase, h, maxH
}

// ProcessBlock is like Process, but allocates and returns an output block of n samples.
func (g *Generator) ProcessBlock(frequency, harmonics, polarity []float64, n int) []float64 {
	out := make([]float64, n)
	g.Process(out, frequency, harmonics, polarity)
	return out
}

// bound computes the harmonic count requested by request and the non-aliasing bound for freq,
// with the count clamped to the bound.
func (g *Generator) bound(freq, request float64) (h, maxH int) {
	if freq != 0 {
		maxH = int(math.Min(math.Round(float64(g.sampleRate)/math.Abs(freq)), math.MaxInt32))
	} else {
		maxH = int(g.sampleRate)
	}
	hf := 2 * math.Abs(request)
	if !(hf < float64(maxH)) {
		return maxH, maxH
	}
	return int(hf), maxH
}

// wrap folds phase into [0, 2π), whichever direction it left the range in.
func wrap(phase float64) float64 {
	phase -= twoPi * math.Floor(phase/twoPi)
	// the quotient may round across an integer, leaving a residue one ulp outside the range
	if phase < 0 {
		phase += twoPi
	}
	if phase >= twoPi {
		phase = 0
	}
	return phase
}

// Kernel evaluates the normalized Dirichlet kernel sin(kφ)/(k·sin φ) at phase, where the
// order k is h or h-1 depending on polarity and the parity of h.
//
// A unipolar train (polarity >= 0) uses an odd order and a bipolar train an even order, so the
// impulse at φ = π has the same or the opposite sign as the impulse at φ = 0. The peak is always
// normalized to 1.
//
// At φ = 0 and φ = π Kernel returns 1 whatever h is, so a bipolar sample landing exactly on π
// keeps a positive sign (ExactKernel does not). Otherwise it returns 0 when h == 0.
func Kernel(phase float64, h int, polarity float64) float64 {
	switch {
	case phase == 0 || phase == math.Pi:
		return 1
	case h == 0:
		return 0
	}
	return dirichlet(phase, KernelOrder(h, polarity))
}

// ExactKernel is like Kernel, but at φ = π with h > 0 it returns the limit of the kernel: 1 for
// an odd order and -1 for an even one. With h == 0 it returns 1 there, as Kernel does.
func ExactKernel(phase float64, h int, polarity float64) float64 {
	if phase != math.Pi || h == 0 {
		return Kernel(phase, h, polarity)
	}
	if KernelOrder(h, polarity)%2 == 0 {
		return -1
	}
	return 1
}

func dirichlet(phase float64, k int) float64 {
	return math.Sin(phase*float64(k)) / math.Sin(phase) / float64(k)
}

// KernelOrder returns the order of the kernel Kernel evaluates for h harmonics. It is odd for a
// unipolar train and, once h exceeds 1, even for a bipolar one.
func KernelOrder(h int, polarity float64) int {
	if h > 1 && (polarity >= 0) == (h%2 == 0) {
		return h - 1
	}
	return h
}
