// Package match implements time-offset histogram voting: the statistical
// core that turns a noisy set of candidate postings into a ranked list of
// song matches.
package match

import (
	"sort"

	"github.com/zfogg/echoprint/internal/fingerprint"
	"github.com/zfogg/echoprint/internal/index"
)

const BinSizeMs = 3

// PostingSource is the subset of the index store the matcher needs, kept
// narrow so tests can supply a fake without standing up a database.
type PostingSource interface {
	FindPostings(hashes []uint32) ([]index.PostingMatch, error)
}

// Result is one (song_id, score) pair, where score is the tallest column of
// that song's offset histogram.
type Result struct {
	SongID int64
	Score  int
}

// Match runs the one-shot algorithm: build query_time[hash], fetch postings
// for those hashes, bin (db_time - query_time) per song into a single flat
// map[bin]count reused and cleared across songs, and return the top_n songs
// by peak histogram column, ties broken by smallest song_id.
func Match(store PostingSource, fingerprints []fingerprint.Fingerprint, topN int) ([]Result, error) {
	if len(fingerprints) == 0 {
		return nil, nil
	}

	queryTime := make(map[uint32]int64, len(fingerprints))
	hashes := make([]uint32, 0, len(fingerprints))
	for _, fp := range fingerprints {
		if _, exists := queryTime[fp.Hash]; !exists {
			hashes = append(hashes, fp.Hash)
		}
		queryTime[fp.Hash] = fp.AnchorTimeMs
	}

	postings, err := store.FindPostings(hashes)
	if err != nil || len(postings) == 0 {
		return nil, nil
	}

	// Group postings by song first so the histogram itself stays a single
	// flat map[bin]count, reused and cleared per song, rather than a
	// map-of-maps holding every song's histogram at once.
	bySong := make(map[int64][]int64)
	for _, p := range postings {
		qt, ok := queryTime[p.Hash]
		if !ok {
			continue
		}
		delta := p.TimeOffsetMsec - qt
		bin := (delta / BinSizeMs) * BinSizeMs
		bySong[p.SongID] = append(bySong[p.SongID], bin)
	}

	results := make([]Result, 0, len(bySong))
	histogram := make(map[int64]int)
	for songID, bins := range bySong {
		for k := range histogram {
			delete(histogram, k)
		}
		best := 0
		for _, bin := range bins {
			histogram[bin]++
			if histogram[bin] > best {
				best = histogram[bin]
			}
		}
		results = append(results, Result{SongID: songID, Score: best})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].SongID < results[j].SongID
	})

	if topN > 0 && len(results) > topN {
		results = results[:topN]
	}
	return results, nil
}

// ClearsVerdictThreshold applies the same "is this a confident match" test
// the streaming session uses between chunks (§4.6.2) to a single set of
// cumulative scores: the top score must either clear an absolute floor, or
// clear a lower floor while leading the runner-up by a wide enough margin.
// Shared so the one-shot endpoint and the streaming session apply one rule.
func ClearsVerdictThreshold(top, runnerUp int) bool {
	return top > 30 || (top > 20 && top-runnerUp > 10)
}
