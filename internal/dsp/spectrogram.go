package dsp

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// Spectrogram is a (freq_bins, frames) matrix of log-power values in
// decibels, indexed as Data[freqBin][frame].
type Spectrogram struct {
	Data      [][]float64
	FreqBins  int
	Frames    int
	HopSize   int
	SampleRate int
}

const logEpsilon = 1e-10

// Compute slides a window of size windowSize over signal in steps of
// hopSize, windows each frame with the cached Hann window, takes its real
// FFT, and returns the magnitude-squared spectrum in decibels.
func Compute(signal []float64, sampleRate, windowSize, hopSize int) Spectrogram {
	n := len(signal)
	if n < windowSize {
		return Spectrogram{
			Data:       make([][]float64, windowSize/2+1),
			FreqBins:   windowSize/2 + 1,
			Frames:     0,
			HopSize:    hopSize,
			SampleRate: sampleRate,
		}
	}

	numFrames := (n-windowSize)/hopSize + 1
	freqBins := windowSize/2 + 1
	window := HannWindow(windowSize)

	data := make([][]float64, freqBins)
	for i := range data {
		data[i] = make([]float64, numFrames)
	}

	frame := make([]float64, windowSize)
	for t := 0; t < numFrames; t++ {
		start := t * hopSize
		for i := 0; i < windowSize; i++ {
			frame[i] = signal[start+i] * window[i]
		}
		spectrum := fft.FFTReal(frame)
		for f := 0; f < freqBins; f++ {
			mag := cmplx.Abs(spectrum[f])
			power := mag * mag
			data[f][t] = 10 * math.Log10(power+logEpsilon)
		}
	}

	return Spectrogram{
		Data:       data,
		FreqBins:   freqBins,
		Frames:     numFrames,
		HopSize:    hopSize,
		SampleRate: sampleRate,
	}
}
