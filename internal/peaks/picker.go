// Package peaks implements adaptive local-maximum peak picking over a
// spectrogram: a box-mean sensitivity threshold combined with a grey
// dilation local-maximum test, capped per time frame.
package peaks

import (
	"sort"

	"github.com/zfogg/echoprint/internal/dsp"
)

// Peak is a (time_frame, freq_bin) location in a spectrogram.
type Peak struct {
	Frame int
	Bin   int
}

// Config holds the tunables for picking. Zero values are not valid; use
// DefaultConfig.
type Config struct {
	NeighborhoodBins int
	NeighborhoodTime int
	Sensitivity      float64
	PerFrameCap      int
}

func DefaultConfig() Config {
	return Config{
		NeighborhoodBins: 25,
		NeighborhoodTime: 25,
		Sensitivity:      2.0,
		PerFrameCap:      8,
	}
}

// Pick runs the full algorithm over spec and returns peaks sorted
// lexicographically by (time_frame, freq_bin).
func Pick(spec dsp.Spectrogram, cfg Config) []Peak {
	if spec.Frames == 0 || spec.FreqBins == 0 {
		return nil
	}

	mean := boxMean(spec.Data, cfg.NeighborhoodBins, cfg.NeighborhoodTime)
	dilated := greyDilate(spec.Data, cfg.NeighborhoodBins, cfg.NeighborhoodTime)

	byFrame := make(map[int][]Peak, spec.Frames)
	for f := 0; f < spec.FreqBins; f++ {
		for t := 0; t < spec.Frames; t++ {
			v := spec.Data[f][t]
			if v > cfg.Sensitivity*mean[f][t] && v == dilated[f][t] {
				byFrame[t] = append(byFrame[t], Peak{Frame: t, Bin: f})
			}
		}
	}

	var out []Peak
	for t, candidates := range byFrame {
		sort.Slice(candidates, func(i, j int) bool {
			vi, vj := spec.Data[candidates[i].Bin][t], spec.Data[candidates[j].Bin][t]
			if vi != vj {
				return vi > vj
			}
			return candidates[i].Bin < candidates[j].Bin
		})
		if len(candidates) > cfg.PerFrameCap {
			candidates = candidates[:cfg.PerFrameCap]
		}
		out = append(out, candidates...)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Frame != out[j].Frame {
			return out[i].Frame < out[j].Frame
		}
		return out[i].Bin < out[j].Bin
	})
	return out
}

// reflectIndex maps an out-of-range index back into [0, n) by reflection,
// the boundary policy this algorithm uses for neighborhoods near the edges
// of the spectrogram. Indexing and query time must agree on this policy.
func reflectIndex(i, n int) int {
	if n == 1 {
		return 0
	}
	for i < 0 || i >= n {
		if i < 0 {
			i = -i - 1
		}
		if i >= n {
			i = 2*n - i - 1
		}
	}
	return i
}

func boxMean(data [][]float64, nBins, nTime int) [][]float64 {
	freqBins := len(data)
	if freqBins == 0 {
		return nil
	}
	frames := len(data[0])
	halfB, halfT := nBins/2, nTime/2

	out := make([][]float64, freqBins)
	for f := 0; f < freqBins; f++ {
		out[f] = make([]float64, frames)
		for t := 0; t < frames; t++ {
			var sum float64
			count := 0
			for db := -halfB; db <= halfB; db++ {
				fb := reflectIndex(f+db, freqBins)
				for dt := -halfT; dt <= halfT; dt++ {
					ft := reflectIndex(t+dt, frames)
					sum += data[fb][ft]
					count++
				}
			}
			out[f][t] = sum / float64(count)
		}
	}
	return out
}

func greyDilate(data [][]float64, nBins, nTime int) [][]float64 {
	freqBins := len(data)
	if freqBins == 0 {
		return nil
	}
	frames := len(data[0])
	halfB, halfT := nBins/2, nTime/2

	out := make([][]float64, freqBins)
	for f := 0; f < freqBins; f++ {
		out[f] = make([]float64, frames)
		for t := 0; t < frames; t++ {
			max := data[f][t]
			for db := -halfB; db <= halfB; db++ {
				fb := reflectIndex(f+db, freqBins)
				for dt := -halfT; dt <= halfT; dt++ {
					ft := reflectIndex(t+dt, frames)
					if data[fb][ft] > max {
						max = data[fb][ft]
					}
				}
			}
			out[f][t] = max
		}
	}
	return out
}
