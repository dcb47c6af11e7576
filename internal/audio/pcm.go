package audio

import "math"

// Canonical stream parameters expected by the caption model.
const (
	SampleRate     = 16000
	Channels       = 1
	BitsPerSample  = 16
	BlockAlign     = Channels * BitsPerSample / 8
	ByteRate       = SampleRate * BlockAlign
	wavHeaderBytes = 44
)

// PCMBuffer holds signed 16-bit mono samples at SampleRate.
type PCMBuffer []int16

// DurationSeconds returns the buffer length in seconds.
func (b PCMBuffer) DurationSeconds() float64 {
	return float64(len(b)) / SampleRate
}

// Quantize converts float samples in [-1, 1] to 16-bit integers. Values are
// clamped, scaled by 32768 when negative and 32767 otherwise, and truncated
// toward zero. No dither or noise shaping is applied.
func Quantize(samples []float32) PCMBuffer {
	out := make(PCMBuffer, len(samples))
	for i, s := range samples {
		out[i] = quantizeSample(s)
	}
	return out
}

func quantizeSample(s float32) int16 {
	v := float64(s)
	switch {
	case math.IsNaN(v):
		return 0
	case v > 1:
		v = 1
	case v < -1:
		v = -1
	}
	if v < 0 {
		return int16(v * 32768)
	}
	return int16(v * 32767)
}
