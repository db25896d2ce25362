// Package indexing walks a directory tree, fingerprints every recognized
// audio file, and writes the results into the index store using a worker
// pool sized to the host, following the same jobs/results channel pattern
// the reference CLI module uses for its own concurrent file processing.
package indexing

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/zfogg/echoprint/internal/audio"
	"github.com/zfogg/echoprint/internal/config"
	"github.com/zfogg/echoprint/internal/dsp"
	fperrors "github.com/zfogg/echoprint/internal/errors"
	"github.com/zfogg/echoprint/internal/fingerprint"
	"github.com/zfogg/echoprint/internal/index"
	"github.com/zfogg/echoprint/internal/logger"
	"github.com/zfogg/echoprint/internal/metrics"
	"github.com/zfogg/echoprint/internal/peaks"
)

var recognizedExtensions = map[string]bool{
	".mp3":  true,
	".m4a":  true,
	".flac": true,
	".ogg":  true,
	".wav":  true,
}

// Outcome is one file's indexing result, aggregated by the CLI into the
// summary counts and optional table it prints.
type Outcome struct {
	Path          string
	Title         string
	Artist        string
	SongID        int64
	Fingerprints  int
	Skipped       bool
	SkipReason    string
	Err           error
}

// Options configures a walk.
type Options struct {
	MaxDurationSec float64 // 0 disables the limit
	Workers        int
}

func DefaultOptions() Options {
	workers := runtime.NumCPU()
	if workers < 1 {
		workers = 1
	}
	return Options{Workers: workers}
}

// Walk finds every recognized audio file under root and indexes it into
// store, fanning work out across opts.Workers goroutines. A single bad file
// never halts the walk; its failure is captured in its Outcome.
func Walk(root string, store *index.Store, opts Options) ([]Outcome, error) {
	paths, err := discover(root)
	if err != nil {
		return nil, fperrors.Wrap(fperrors.StorageError, "failed to walk directory", err)
	}
	if len(paths) == 0 {
		return nil, nil
	}

	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > len(paths) {
		workers = len(paths)
	}

	jobs := make(chan string, len(paths))
	results := make(chan Outcome, len(paths))

	for w := 0; w < workers; w++ {
		go func() {
			for path := range jobs {
				results <- indexFile(path, store, opts)
			}
		}()
	}
	for _, p := range paths {
		jobs <- p
	}
	close(jobs)

	outcomes := make([]Outcome, 0, len(paths))
	for range paths {
		outcomes = append(outcomes, <-results)
	}
	return outcomes, nil
}

func discover(root string) ([]string, error) {
	var paths []string
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		if recognizedExtensions[strings.ToLower(filepath.Ext(path))] {
			paths = append(paths, path)
		}
		return nil
	})
	return paths, err
}

func indexFile(path string, store *index.Store, opts Options) Outcome {
	jobID := uuid.New().String()
	out := Outcome{Path: path}

	decoded, err := audio.DecodeWAV(path)
	if err != nil {
		out.Err = fperrors.Wrap(fperrors.DecodeError, "failed to decode audio file", err)
		logger.Log.Warn("failed to decode audio file", logger.WithJobID(jobID), logger.WithFilePath(path), zap.Error(err))
		return out
	}

	title := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	artist := "unknown"
	out.Title = title
	out.Artist = artist

	durationSec := float64(len(decoded.Interleaved)) / float64(decoded.Channels) / float64(decoded.SampleRate)
	if opts.MaxDurationSec > 0 && durationSec > opts.MaxDurationSec {
		out.Skipped = true
		out.SkipReason = "too_long"
		out.Err = fperrors.New(fperrors.TooLong, "file exceeds max duration")
		return out
	}

	if existingID, found, err := store.FindSongID(title, artist, ""); err != nil {
		out.Err = err
		return out
	} else if found {
		out.Skipped = true
		out.SkipReason = "duplicate"
		out.SongID = existingID
		return out
	}

	sig := audio.Preprocess(decoded.Interleaved, decoded.Channels, decoded.SampleRate, config.TargetSampleRate)
	spec := dsp.Compute(sig.Samples, sig.SampleRate, config.WindowSize, config.HopSize)
	picked := peaks.Pick(spec, peaks.DefaultConfig())
	fps := fingerprint.Build(picked, config.HopSize, sig.SampleRate, fingerprint.DefaultBuilderConfig(config.HopSize, sig.SampleRate))

	metrics.Get().PeaksPicked.Add(float64(len(picked)))
	metrics.Get().FingerprintsGenerated.Add(float64(len(fps)))

	songID, err := store.InsertSong(&index.Song{
		Title:       title,
		Artist:      artist,
		FilePath:    path,
		DurationSec: durationSec,
		SampleRate:  decoded.SampleRate,
	})
	if err != nil {
		out.Err = err
		return out
	}

	pairs := make([]index.HashOffset, len(fps))
	for i, fp := range fps {
		pairs[i] = index.HashOffset{Hash: fp.Hash, TimeOffsetMsec: fp.AnchorTimeMs}
	}
	if err := store.BulkInsertFingerprints(songID, pairs); err != nil {
		out.Err = err
		return out
	}

	out.SongID = songID
	out.Fingerprints = len(fps)
	return out
}
