// Package api implements the one-shot HTTP identification endpoint, the
// non-streaming counterpart to the websocket protocol in internal/streaming.
package api

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/zfogg/echoprint/internal/audio"
	"github.com/zfogg/echoprint/internal/config"
	"github.com/zfogg/echoprint/internal/dsp"
	"github.com/zfogg/echoprint/internal/fingerprint"
	"github.com/zfogg/echoprint/internal/index"
	"github.com/zfogg/echoprint/internal/logger"
	"github.com/zfogg/echoprint/internal/match"
	"github.com/zfogg/echoprint/internal/peaks"
	"github.com/zfogg/echoprint/internal/streaming"
)

const maxUploadBytes = 64 << 20 // 64MB

// IdentifyHandler serves POST /api/v1/identify: a multipart file blob plus
// declared sample rate and sample type, answering with the same verdict
// JSON shape the streaming protocol sends.
type IdentifyHandler struct {
	store *index.Store
}

func NewIdentifyHandler(store *index.Store) *IdentifyHandler {
	return &IdentifyHandler{store: store}
}

func (h *IdentifyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, "failed to parse multipart form", http.StatusBadRequest)
		return
	}

	sampleRate, err := strconv.Atoi(r.FormValue("sample_rate"))
	if err != nil {
		http.Error(w, "sample_rate form field must be a decimal integer", http.StatusBadRequest)
		return
	}
	format, err := audio.ParseFormat(r.FormValue("sample_type"))
	if err != nil {
		http.Error(w, "sample_type form field must be float32 or int16", http.StatusBadRequest)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file form field is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "failed to read uploaded file", http.StatusBadRequest)
		return
	}

	samples, err := format.Decode(data)
	if err != nil {
		logger.Log.Warn("failed to decode uploaded samples", zap.Error(err))
		writeJSON(w, streaming.NewFailureVerdict("decode_error"))
		return
	}

	sig := audio.Preprocess(samples, 1, sampleRate, config.TargetSampleRate)
	spec := dsp.Compute(sig.Samples, sig.SampleRate, config.WindowSize, config.HopSize)
	picked := peaks.Pick(spec, peaks.DefaultConfig())
	fps := fingerprint.Build(picked, config.HopSize, sig.SampleRate, fingerprint.DefaultBuilderConfig(config.HopSize, sig.SampleRate))

	results, err := match.Match(h.store, fps, 2)
	if err != nil || len(results) == 0 {
		writeJSON(w, streaming.NewFailureVerdict("no_match"))
		return
	}
	runnerUp := 0
	if len(results) > 1 {
		runnerUp = results[1].Score
	}
	if !match.ClearsVerdictThreshold(results[0].Score, runnerUp) {
		writeJSON(w, streaming.NewFailureVerdict("no_match"))
		return
	}

	song, err := h.store.LookupSong(results[0].SongID)
	if err != nil || song == nil {
		writeJSON(w, streaming.NewFailureVerdict("no_match"))
		return
	}

	writeJSON(w, streaming.NewSuccessVerdict(song.ID, song.Title, song.Artist, song.Album))
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Log.Error("failed to encode identify response", zap.Error(err))
	}
}
