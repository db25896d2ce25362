package fingerprint

import "github.com/zfogg/echoprint/internal/peaks"

// BuilderConfig controls the combinatorial pairing stage.
type BuilderConfig struct {
	Fanout        int
	MinFrameDelta int
	MaxFrameDelta int // inclusive, derived from a millisecond ceiling by the caller
}

func DefaultBuilderConfig(hopSize, sampleRate int) BuilderConfig {
	maxDeltaMs := 1500
	maxFrames := maxDeltaMs * sampleRate / hopSize / 1000
	return BuilderConfig{
		Fanout:        8,
		MinFrameDelta: 0,
		MaxFrameDelta: maxFrames,
	}
}

// Build pairs each peak (the anchor) with up to Fanout later peaks (the
// targets) in sort order, emitting a Fingerprint for every pair whose frame
// delta falls within [MinFrameDelta, MaxFrameDelta].
func Build(sortedPeaks []peaks.Peak, hopSize, sampleRate int, cfg BuilderConfig) []Fingerprint {
	var out []Fingerprint
	for i, anchor := range sortedPeaks {
		limit := i + cfg.Fanout
		if limit > len(sortedPeaks)-1 {
			limit = len(sortedPeaks) - 1
		}
		for j := i + 1; j <= limit; j++ {
			target := sortedPeaks[j]
			deltaT := target.Frame - anchor.Frame
			if deltaT < cfg.MinFrameDelta || deltaT > cfg.MaxFrameDelta {
				continue
			}
			anchorTimeMs := int64(anchor.Frame) * int64(hopSize) * 1000 / int64(sampleRate)
			out = append(out, Fingerprint{
				Hash:         Pack(anchor.Bin, target.Bin, deltaT),
				AnchorTimeMs: anchorTimeMs,
			})
		}
	}
	return out
}
