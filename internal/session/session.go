// Package session implements the streaming identification state machine: a
// sliding chunk/stride buffer that runs the matching pipeline on overlapping
// windows of PCM and accumulates scores until a verdict can be reached.
package session

import (
	"github.com/zfogg/echoprint/internal/audio"
	"github.com/zfogg/echoprint/internal/config"
	"github.com/zfogg/echoprint/internal/dsp"
	"github.com/zfogg/echoprint/internal/fingerprint"
	"github.com/zfogg/echoprint/internal/match"
	"github.com/zfogg/echoprint/internal/peaks"
)

// VerdictKind is the session's terminal-state tag. Modeling the verdict as
// an explicit tagged variant (rather than a boolean "found" flag alongside a
// separate score map) means the session can never be in an ambiguous state:
// SongID is only meaningful when Kind == Found.
type VerdictKind int

const (
	Pending VerdictKind = iota
	Found
	TimedOut
)

// Verdict is the session's current terminal-state value.
type Verdict struct {
	Kind   VerdictKind
	SongID int64
}

// Config configures one streaming session. Channels defaults to 1 (mono
// input); set it for interleaved multi-channel PCM.
type Config struct {
	InputSampleRate  int
	TargetSampleRate int
	Format           audio.Format
	Channels         int
	TopN             int
	ChunkTimeMs      int
	StrideMs         int
}

func DefaultConfig(inputSampleRate int, format audio.Format) Config {
	return Config{
		InputSampleRate:  inputSampleRate,
		TargetSampleRate: config.TargetSampleRate,
		Format:           format,
		Channels:         1,
		TopN:             config.DefaultTopN,
		ChunkTimeMs:      config.DefaultChunkTimeMs,
		StrideMs:         config.DefaultStrideMs,
	}
}

// Session is a per-query, stateful PCM consumer. Discarded at verdict or
// timeout; never reused.
type Session struct {
	cfg       Config
	store     match.PostingSource
	buffer    []byte
	scores    map[int64]int
	verdict   Verdict
	requiredBytes int
	strideBytes   int
}

// New builds a Pending session. The chunk and stride byte sizes are computed
// from InputSampleRate, before each chunk is resampled to TargetSampleRate;
// the resampled chunk is truncated to a whole number of samples, so for
// InputSampleRate != TargetSampleRate its duration can drift slightly from
// ChunkTimeMs.
func New(cfg Config, store match.PostingSource) *Session {
	sampleSize := cfg.Format.SampleSize()
	requiredBytes := ceilSeconds(cfg.ChunkTimeMs) * cfg.InputSampleRate * sampleSize
	strideBytes := ceilSeconds(cfg.StrideMs) * cfg.InputSampleRate * sampleSize

	return &Session{
		cfg:           cfg,
		store:         store,
		scores:        make(map[int64]int),
		verdict:       Verdict{Kind: Pending},
		requiredBytes: requiredBytes,
		strideBytes:   strideBytes,
	}
}

// ceilSeconds implements ⌈ms / 1000⌉ exactly as specified, including its
// collapse of any sub-second value to one second. This is preserved
// deliberately rather than "fixed" — see the session tests documenting it.
func ceilSeconds(ms int) int {
	if ms <= 0 {
		return 0
	}
	return (ms + 999) / 1000
}

// Verdict returns the session's current terminal-state value.
func (s *Session) Verdict() Verdict { return s.verdict }

// PushBytes appends data to the session buffer and runs the matching
// pipeline on every complete chunk the buffer now contains. Discarded
// entirely if the session has already reached a non-Pending verdict.
func (s *Session) PushBytes(data []byte) error {
	if s.verdict.Kind != Pending {
		return nil
	}
	s.buffer = append(s.buffer, data...)

	for len(s.buffer) >= s.requiredBytes && s.requiredBytes > 0 {
		chunk := s.buffer[:s.requiredBytes]
		if s.strideBytes > 0 && s.strideBytes <= len(s.buffer) {
			s.buffer = s.buffer[s.strideBytes:]
		} else {
			s.buffer = s.buffer[len(s.buffer):]
		}

		if err := s.processChunk(chunk); err != nil {
			// match.Match already reports a failed storage lookup as "no
			// postings", so an error here comes from decoding the chunk; the
			// chunk is skipped and the session keeps running.
			continue
		}
		s.checkVerdict()
		if s.verdict.Kind != Pending {
			return nil
		}
	}
	return nil
}

func (s *Session) processChunk(chunk []byte) error {
	samples, err := s.cfg.Format.Decode(chunk)
	if err != nil {
		return err
	}

	sig := audio.Preprocess(samples, s.cfg.Channels, s.cfg.InputSampleRate, s.cfg.TargetSampleRate)

	spec := dsp.Compute(sig.Samples, sig.SampleRate, config.WindowSize, config.HopSize)
	picked := peaks.Pick(spec, peaks.DefaultConfig())
	fps := fingerprint.Build(picked, config.HopSize, sig.SampleRate, fingerprint.DefaultBuilderConfig(config.HopSize, sig.SampleRate))

	results, err := match.Match(s.store, fps, s.cfg.TopN)
	if err != nil {
		return err
	}
	for _, r := range results {
		s.scores[r.SongID] += r.Score
	}
	return nil
}

// checkVerdict promotes Pending to Found when the top cumulative score
// clears either of the two thresholds; otherwise the session stays Pending.
func (s *Session) checkVerdict() {
	var topSongID int64
	var s1, s2 int
	first := true
	for songID, score := range s.scores {
		if first || score > s1 {
			s2 = s1
			s1 = score
			topSongID = songID
			first = false
		} else if score > s2 {
			s2 = score
		}
	}

	if match.ClearsVerdictThreshold(s1, s2) {
		s.verdict = Verdict{Kind: Found, SongID: topSongID}
	}
}

// Timeout transitions a Pending session to TimedOut. The wall-clock budget
// is enforced by the owning streaming server, not the session itself.
func (s *Session) Timeout() {
	if s.verdict.Kind == Pending {
		s.verdict = Verdict{Kind: TimedOut}
	}
}
