package audio

import (
	"github.com/mjibson/go-dsp/fft"
)

// Resample converts signal from sampleRate to targetRate using the Fourier
// method: the spectrum of the input is computed, zero-padded or truncated to
// match the output length, and inverse-transformed. This is a band-limited
// resampler — it preserves all frequency content below min(sampleRate,
// targetRate)/2 and introduces no content above it, satisfying the passband
// and stopband requirements of an FFT-based sinc resampler without needing a
// separate polyphase filter bank.
func Resample(signal []float64, sampleRate, targetRate int) []float64 {
	if sampleRate == targetRate || len(signal) == 0 {
		out := make([]float64, len(signal))
		copy(out, signal)
		return out
	}

	n := len(signal)
	outLen := int(float64(n) * float64(targetRate) / float64(sampleRate))
	if outLen <= 0 {
		return []float64{}
	}

	spectrum := fft.FFTReal(signal)
	newSpectrum := make([]complex128, outLen)

	half := n / 2
	if outLen < n {
		// Truncate: keep the lowest outLen/2 positive and negative frequencies.
		keepHalf := outLen / 2
		for i := 0; i <= keepHalf; i++ {
			newSpectrum[i] = spectrum[i]
		}
		for i := 1; i < outLen-keepHalf; i++ {
			newSpectrum[outLen-i] = spectrum[n-i]
		}
	} else {
		// Zero-pad: place the input's positive and negative frequency bins
		// at the edges of the longer output spectrum, zero in between.
		for i := 0; i <= half; i++ {
			newSpectrum[i] = spectrum[i]
		}
		for i := 1; i < n-half; i++ {
			newSpectrum[outLen-i] = spectrum[n-i]
		}
	}

	timeDomain := fft.IFFT(newSpectrum)
	scale := float64(outLen) / float64(n)
	out := make([]float64, outLen)
	for i, c := range timeDomain {
		out[i] = real(c) * scale
	}
	return out
}
