// Package audio implements the decode-agnostic preprocessing stage: any
// supported sample encoding, any channel count, any sample rate goes in;
// a mono, peak-normalized signal at the canonical rate comes out.
package audio

import "math"

// Signal is a preprocessed, mono, peak-normalized audio buffer.
type Signal struct {
	Samples    []float64
	SampleRate int
}

// DurationSeconds reports the signal's length in seconds.
func (s Signal) DurationSeconds() float64 {
	if s.SampleRate == 0 {
		return 0
	}
	return float64(len(s.Samples)) / float64(s.SampleRate)
}

// Downmix averages interleaved multi-channel samples down to mono. channels
// must be >= 1; channels == 1 returns the input unchanged.
func Downmix(interleaved []float64, channels int) []float64 {
	if channels <= 1 {
		out := make([]float64, len(interleaved))
		copy(out, interleaved)
		return out
	}
	n := len(interleaved) / channels
	mono := make([]float64, n)
	for i := 0; i < n; i++ {
		var sum float64
		for c := 0; c < channels; c++ {
			sum += interleaved[i*channels+c]
		}
		mono[i] = sum / float64(channels)
	}
	return mono
}

// Normalize peak-normalizes mono so that max(|x|) == 1, or leaves it
// unchanged if the signal is silent (max(|x|) == 0).
func Normalize(mono []float64) []float64 {
	var peak float64
	for _, v := range mono {
		if a := math.Abs(v); a > peak {
			peak = a
		}
	}
	out := make([]float64, len(mono))
	if peak == 0 {
		copy(out, mono)
		return out
	}
	for i, v := range mono {
		out[i] = v / peak
	}
	return out
}

// Preprocess runs the full contract from a decoded, possibly multi-channel,
// possibly off-rate buffer to a canonical-rate, mono, peak-normalized Signal.
func Preprocess(interleaved []float64, channels, sampleRate, targetRate int) Signal {
	mono := Downmix(interleaved, channels)
	if sampleRate != targetRate {
		mono = Resample(mono, sampleRate, targetRate)
	}
	mono = Normalize(mono)
	return Signal{Samples: mono, SampleRate: targetRate}
}
