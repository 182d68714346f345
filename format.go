package blit

import "fmt"

// Format is the format of an encoded stream of samples.
type Format struct {
	// SampleRate is the number of samples per second.
	SampleRate SampleRate

	// NumChannels is the number of channels. The value of 1 is mono, the value of 2 is stereo.
	// The samples are always interleaved.
	NumChannels int

	// Precision is the number of bytes used to encode a single sample.
	Precision int
}

// Width returns the number of bytes per one frame (all channels).
func (f Format) Width() int {
	return f.NumChannels * f.Precision
}

// EncodeSigned encodes a single frame in f.Width() bytes to p in signed format.
func (f Format) EncodeSigned(p []byte, sample [2]float64) (n int) {
	return f.encode(true, p, sample)
}

// EncodeUnsigned encodes a single frame in f.Width() bytes to p in unsigned format.
func (f Format) EncodeUnsigned(p []byte, sample [2]float64) (n int) {
	return f.encode(false, p, sample)
}

// DecodeSigned decodes a single frame encoded in f.Width() bytes from p in signed format.
func (f Format) DecodeSigned(p []byte) (sample [2]float64, n int) {
	return f.decode(true, p)
}

// DecodeUnsigned decodes a single frame encoded in f.Width() bytes from p in unsigned format.
func (f Format) DecodeUnsigned(p []byte) (sample [2]float64, n int) {
	return f.decode(false, p)
}

func (f Format) encode(signed bool, p []byte, sample [2]float64) (n int) {
	if f.NumChannels < 1 {
		panic(fmt.Errorf("format: encode: invalid number of channels: %d", f.NumChannels))
	}
	if f.NumChannels == 1 {
		encodeFloat(signed, p, f.Precision, clamp((sample[0]+sample[1])/2))
		return f.Width()
	}
	for c := 0; c < f.NumChannels; c++ {
		x := 0.0
		if c < len(sample) {
			x = clamp(sample[c])
		}
		encodeFloat(signed, p[c*f.Precision:], f.Precision, x)
	}
	return f.Width()
}

func (f Format) decode(signed bool, p []byte) (sample [2]float64, n int) {
	if f.NumChannels < 1 {
		panic(fmt.Errorf("format: decode: invalid number of channels: %d", f.NumChannels))
	}
	if f.NumChannels == 1 {
		x := decodeFloat(signed, p, f.Precision)
		return [2]float64{x, x}, f.Width()
	}
	for c := range sample {
		sample[c] = decodeFloat(signed, p[c*f.Precision:], f.Precision)
	}
	return sample, f.Width()
}

// encodeFloat writes x as a little-endian integer of precision bytes.
func encodeFloat(signed bool, p []byte, precision int, x float64) {
	var u uint64
	if signed {
		u = uint64(int64(x * float64(uint64(1)<<uint(precision*8-1)-1)))
	} else {
		u = uint64((x + 1) / 2 * float64(uint64(1)<<uint(precision*8)-1))
	}
	for i := 0; i < precision; i++ {
		p[i] = byte(u)
		u >>= 8
	}
}

func decodeFloat(signed bool, p []byte, precision int) float64 {
	var u uint64
	for i := precision - 1; i >= 0; i-- {
		u = u<<8 | uint64(p[i])
	}
	if !signed {
		return float64(u)/float64(uint64(1)<<uint(precision*8)-1)*2 - 1
	}
	// sign-extend from the top bit of the encoded width
	shift := uint(64 - precision*8)
	return float64(int64(u<<shift)>>shift) / float64(uint64(1)<<uint(precision*8-1)-1)
}

func clamp(x float64) float64 {
	if x < -1 {
		return -1
	}
	if x > +1 {
		return +1
	}
	return x
}
