package peaks

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zfogg/echoprint/internal/dsp"
)

func flatSpectrogram(freqBins, frames int, fill float64) dsp.Spectrogram {
	data := make([][]float64, freqBins)
	for f := range data {
		data[f] = make([]float64, frames)
		for t := range data[f] {
			data[f][t] = fill
		}
	}
	return dsp.Spectrogram{Data: data, FreqBins: freqBins, Frames: frames}
}

func TestPickEmptySpectrogramReturnsNoPeaks(t *testing.T) {
	peaks := Pick(dsp.Spectrogram{}, DefaultConfig())
	assert.Empty(t, peaks)
}

func TestPickFlatSpectrogramReturnsNoPeaks(t *testing.T) {
	// In a uniform field every cell equals its neighborhood's dilation, but
	// none exceeds Sensitivity times its box mean (5 > 2*5 is false).
	spec := flatSpectrogram(40, 40, 5)
	peaks := Pick(spec, Config{NeighborhoodBins: 5, NeighborhoodTime: 5, Sensitivity: 2.0, PerFrameCap: 8})
	assert.Empty(t, peaks)
}

func TestPickSingleSpikeIsDetected(t *testing.T) {
	spec := flatSpectrogram(21, 21, 5)
	spec.Data[10][10] = 50
	got := Pick(spec, Config{NeighborhoodBins: 5, NeighborhoodTime: 5, Sensitivity: 2.0, PerFrameCap: 8})

	require.Len(t, got, 1)
	assert.Equal(t, 10, got[0].Frame)
	assert.Equal(t, 10, got[0].Bin)
}

func TestPickResultsAreLexicographicallySorted(t *testing.T) {
	spec := flatSpectrogram(21, 21, 5)
	spec.Data[5][3] = 50
	spec.Data[2][8] = 60
	spec.Data[15][1] = 70

	got := Pick(spec, Config{NeighborhoodBins: 5, NeighborhoodTime: 5, Sensitivity: 2.0, PerFrameCap: 8})
	sorted := make([]Peak, len(got))
	copy(sorted, got)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Frame != sorted[j].Frame {
			return sorted[i].Frame < sorted[j].Frame
		}
		return sorted[i].Bin < sorted[j].Bin
	})
	assert.Equal(t, sorted, got)
}

func TestPickRespectsPerFrameCap(t *testing.T) {
	frames, bins := 1, 30
	spec := flatSpectrogram(bins, frames, 5)
	for f := 0; f < bins; f += 2 {
		spec.Data[f][0] = 50 + float64(f)
	}
	cfg := Config{NeighborhoodBins: 3, NeighborhoodTime: 1, Sensitivity: 2.0, PerFrameCap: 3}
	got := Pick(spec, cfg)
	assert.LessOrEqual(t, len(got), 3)
}

func TestReflectIndexWithinBounds(t *testing.T) {
	assert.Equal(t, 0, reflectIndex(-1, 10))
	assert.Equal(t, 9, reflectIndex(10, 10))
	assert.Equal(t, 5, reflectIndex(5, 10))
	assert.Equal(t, 0, reflectIndex(0, 1))
}
