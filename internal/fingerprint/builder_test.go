package fingerprint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zfogg/echoprint/internal/peaks"
)

func TestBuildEmitsWithinFanoutAndDeltaRange(t *testing.T) {
	sorted := []peaks.Peak{
		{Frame: 0, Bin: 10},
		{Frame: 1, Bin: 20},
		{Frame: 2, Bin: 30},
		{Frame: 3, Bin: 40},
	}
	cfg := BuilderConfig{Fanout: 2, MinFrameDelta: 0, MaxFrameDelta: 10}
	fps := Build(sorted, 512, 11025, cfg)

	// Anchor 0 pairs with targets 1 and 2 (fanout 2); anchor 1 pairs with 2
	// and 3; anchor 2 pairs with 3 only (fewer than fanout successors remain).
	require.Len(t, fps, 5)
	for _, fp := range fps {
		_, _, deltaT := Unpack(fp.Hash)
		assert.GreaterOrEqual(t, deltaT, cfg.MinFrameDelta)
		assert.LessOrEqual(t, deltaT, cfg.MaxFrameDelta)
	}
}

func TestBuildSkipsDeltasOutsideRange(t *testing.T) {
	sorted := []peaks.Peak{
		{Frame: 0, Bin: 10},
		{Frame: 20, Bin: 20},
	}
	cfg := BuilderConfig{Fanout: 8, MinFrameDelta: 0, MaxFrameDelta: 5}
	fps := Build(sorted, 512, 11025, cfg)
	assert.Empty(t, fps)
}

func TestBuildAnchorTimeMsDerivedFromHopAndRate(t *testing.T) {
	sorted := []peaks.Peak{
		{Frame: 10, Bin: 1},
		{Frame: 11, Bin: 2},
	}
	cfg := BuilderConfig{Fanout: 8, MinFrameDelta: 0, MaxFrameDelta: 100}
	fps := Build(sorted, 512, 11025, cfg)
	require.Len(t, fps, 1)
	wantMs := int64(10) * 512 * 1000 / 11025
	assert.Equal(t, wantMs, fps[0].AnchorTimeMs)
}

func TestBuildEmptyPeaksProducesNoFingerprints(t *testing.T) {
	fps := Build(nil, 512, 11025, DefaultBuilderConfig(512, 11025))
	assert.Empty(t, fps)
}

func TestDefaultBuilderConfigMaxDeltaIs1500Ms(t *testing.T) {
	cfg := DefaultBuilderConfig(512, 11025)
	wantFrames := 1500 * 11025 / 512 / 1000
	assert.Equal(t, wantFrames, cfg.MaxFrameDelta)
	assert.Equal(t, 8, cfg.Fanout)
	assert.Equal(t, 0, cfg.MinFrameDelta)
}
