package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zfogg/echoprint/internal/audio"
	"github.com/zfogg/echoprint/internal/index"
)

type nilStore struct{}

func (nilStore) FindPostings(hashes []uint32) ([]index.PostingMatch, error) { return nil, nil }

func TestCeilSecondsCollapsesSubSecondValues(t *testing.T) {
	// Preserved open-question behavior: any sub-second chunk_time_ms
	// collapses to a full second, per §9's documented ceiling.
	assert.Equal(t, 1, ceilSeconds(300))
	assert.Equal(t, 1, ceilSeconds(1000))
	assert.Equal(t, 2, ceilSeconds(1001))
	assert.Equal(t, 0, ceilSeconds(0))
}

func TestRequiredBytesExactlyOneChunk(t *testing.T) {
	cfg := DefaultConfig(44100, audio.FormatFloat32)
	cfg.ChunkTimeMs = 1000
	cfg.StrideMs = 300
	s := New(cfg, nilStore{})

	data := make([]byte, s.requiredBytes)
	require.NoError(t, s.PushBytes(data))
	assert.Equal(t, s.requiredBytes-s.strideBytes, len(s.buffer))
}

func TestNoOverlapWhenStrideEqualsChunk(t *testing.T) {
	cfg := DefaultConfig(44100, audio.FormatFloat32)
	cfg.ChunkTimeMs = 1000
	cfg.StrideMs = 1000
	s := New(cfg, nilStore{})
	assert.Equal(t, s.requiredBytes, s.strideBytes)

	data := make([]byte, s.requiredBytes*2)
	require.NoError(t, s.PushBytes(data))
	assert.Equal(t, 0, len(s.buffer))
}

func TestPendingByDefault(t *testing.T) {
	cfg := DefaultConfig(44100, audio.FormatFloat32)
	s := New(cfg, nilStore{})
	assert.Equal(t, Pending, s.Verdict().Kind)
}

func TestSilenceNeverProducesFound(t *testing.T) {
	cfg := DefaultConfig(11025, audio.FormatInt16)
	cfg.ChunkTimeMs = 1000
	cfg.StrideMs = 1000
	s := New(cfg, nilStore{})

	silence := make([]byte, s.requiredBytes*3)
	require.NoError(t, s.PushBytes(silence))
	assert.Equal(t, Pending, s.Verdict().Kind)
}

func TestTimeoutFromPending(t *testing.T) {
	cfg := DefaultConfig(44100, audio.FormatFloat32)
	s := New(cfg, nilStore{})
	s.Timeout()
	assert.Equal(t, TimedOut, s.Verdict().Kind)
}

func TestDiscardedAfterVerdict(t *testing.T) {
	cfg := DefaultConfig(44100, audio.FormatFloat32)
	s := New(cfg, nilStore{})
	s.Timeout()
	before := len(s.buffer)
	require.NoError(t, s.PushBytes(make([]byte, 1024)))
	assert.Equal(t, before, len(s.buffer))
}

func TestCheckVerdictPromotesOnHighScore(t *testing.T) {
	s := &Session{scores: map[int64]int{1: 31}, verdict: Verdict{Kind: Pending}}
	s.checkVerdict()
	assert.Equal(t, Found, s.Verdict().Kind)
	assert.Equal(t, int64(1), s.Verdict().SongID)
}

func TestCheckVerdictPromotesOnMarginThreshold(t *testing.T) {
	s := &Session{scores: map[int64]int{1: 25, 2: 10}, verdict: Verdict{Kind: Pending}}
	s.checkVerdict()
	assert.Equal(t, Found, s.Verdict().Kind)
	assert.Equal(t, int64(1), s.Verdict().SongID)
}

func TestCheckVerdictStaysPendingWhenClose(t *testing.T) {
	s := &Session{scores: map[int64]int{1: 22, 2: 18}, verdict: Verdict{Kind: Pending}}
	s.checkVerdict()
	assert.Equal(t, Pending, s.Verdict().Kind)
}
