package dsp

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHannWindowEndpointsNearZero(t *testing.T) {
	w := HannWindow(64)
	require.Len(t, w, 64)
	assert.InDelta(t, 0, w[0], 1e-9)
	assert.InDelta(t, 0, w[len(w)-1], 1e-9)
	// The window peaks at its center.
	assert.InDelta(t, 1.0, w[len(w)/2], 0.01)
}

func TestHannWindowCachedAcrossCalls(t *testing.T) {
	a := HannWindow(32)
	b := HannWindow(32)
	assert.Equal(t, a, b)
}

func TestComputeShapeMatchesFrameFormula(t *testing.T) {
	windowSize, hopSize := 64, 16
	n := 256
	signal := make([]float64, n)
	for i := range signal {
		signal[i] = math.Sin(2 * math.Pi * float64(i) / 8)
	}

	spec := Compute(signal, 11025, windowSize, hopSize)
	wantFrames := (n-windowSize)/hopSize + 1
	assert.Equal(t, windowSize/2+1, spec.FreqBins)
	assert.Equal(t, wantFrames, spec.Frames)
	assert.Len(t, spec.Data, spec.FreqBins)
	for _, row := range spec.Data {
		assert.Len(t, row, wantFrames)
	}
}

func TestComputeShorterThanWindowHasZeroFrames(t *testing.T) {
	spec := Compute(make([]float64, 32), 11025, 64, 16)
	assert.Equal(t, 0, spec.Frames)
}

func TestComputeIsFiniteOnSilence(t *testing.T) {
	spec := Compute(make([]float64, 256), 11025, 64, 16)
	for _, row := range spec.Data {
		for _, v := range row {
			assert.False(t, math.IsNaN(v))
			assert.False(t, math.IsInf(v, 0))
		}
	}
}
