// Package dsp implements the STFT stage: windowing and the FFT-based
// spectrogram that feeds the peak picker.
package dsp

import (
	"math"
	"sync"
)

var (
	hannMu    sync.Mutex
	hannCache = map[int][]float64{}
)

// HannWindow returns a cached Hann window of length n, computing it once per
// distinct length. The source this was distilled from memoized windows in a
// module-level mutable map with no synchronization; this keeps the cache but
// guards it and builds entries lazily at first use rather than eagerly at
// import time, since in practice exactly one window size (the canonical
// WindowSize) is ever requested per process.
func HannWindow(n int) []float64 {
	hannMu.Lock()
	defer hannMu.Unlock()
	if w, ok := hannCache[n]; ok {
		return w
	}
	w := make([]float64, n)
	if n == 1 {
		w[0] = 1
	} else {
		for i := 0; i < n; i++ {
			w[i] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(n-1))
		}
	}
	hannCache[n] = w
	return w
}
