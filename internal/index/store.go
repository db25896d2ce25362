package index

import (
	"errors"
	"time"

	"gorm.io/gorm"

	fperrors "github.com/zfogg/echoprint/internal/errors"
	"github.com/zfogg/echoprint/internal/metrics"
)

// Store is the persisted catalog: song metadata plus the hash→postings
// multimap, backed by any gorm.Dialector (Postgres in production, sqlite
// in-memory in tests, mirroring the reference backend's test setup for its
// own GORM-backed clients).
type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// CreateSchema is idempotent: AutoMigrate both tables, which also creates
// the covering index on Posting.Hash declared in the struct tag.
func (s *Store) CreateSchema() error {
	if err := s.db.AutoMigrate(&Song{}, &Posting{}); err != nil {
		return fperrors.Wrap(fperrors.StorageError, "failed to migrate schema", err)
	}
	return nil
}

// InsertSong inserts a new song record and returns its assigned id.
func (s *Store) InsertSong(song *Song) (int64, error) {
	if err := s.db.Create(song).Error; err != nil {
		return 0, fperrors.Wrap(fperrors.StorageError, "failed to insert song", err)
	}
	return song.ID, nil
}

// LookupSong fetches song metadata by id. Returns (nil, nil) if absent.
func (s *Store) LookupSong(songID int64) (*Song, error) {
	var song Song
	err := s.db.First(&song, "id = ?", songID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fperrors.Wrap(fperrors.StorageError, "failed to look up song", err)
	}
	return &song, nil
}

// FindSongID probes for a song with the given identity triple, used by the
// indexer to skip re-indexing a file it has already catalogued.
func (s *Store) FindSongID(title, artist, album string) (int64, bool, error) {
	var song Song
	err := s.db.Where("title = ? AND artist = ? AND album = ?", title, artist, album).First(&song).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fperrors.Wrap(fperrors.StorageError, "failed to probe song identity", err)
	}
	return song.ID, true, nil
}

// CountSongs returns the number of catalogued songs.
func (s *Store) CountSongs() (int64, error) {
	var count int64
	if err := s.db.Model(&Song{}).Count(&count).Error; err != nil {
		return 0, fperrors.Wrap(fperrors.StorageError, "failed to count songs", err)
	}
	return count, nil
}

// HashOffset is one (hash, time_offset_ms) fingerprint pair queued for bulk
// insertion against a single song.
type HashOffset struct {
	Hash           uint32
	TimeOffsetMsec int64
}

const bulkInsertBatchSize = 500

// BulkInsertFingerprints writes every (hash, time_offset) pair for songID in
// batches, substantially faster than inserting one row at a time.
func (s *Store) BulkInsertFingerprints(songID int64, pairs []HashOffset) error {
	if len(pairs) == 0 {
		return nil
	}
	postings := make([]Posting, len(pairs))
	for i, p := range pairs {
		postings[i] = Posting{Hash: p.Hash, TimeOffsetMsec: p.TimeOffsetMsec, SongID: songID}
	}
	if err := s.db.CreateInBatches(postings, bulkInsertBatchSize).Error; err != nil {
		return fperrors.Wrap(fperrors.StorageError, "failed to bulk insert fingerprints", err)
	}
	return nil
}

// PostingMatch is one row returned by FindPostings.
type PostingMatch struct {
	Hash           uint32
	TimeOffsetMsec int64
	SongID         int64
}

// FindPostings returns every posting whose hash is in hashes. Order is
// unspecified. A storage failure surfaces as StorageError; the matcher
// treats that (or an empty result) as "no postings."
func (s *Store) FindPostings(hashes []uint32) ([]PostingMatch, error) {
	if len(hashes) == 0 {
		return nil, nil
	}
	m := metrics.Get()
	m.IndexLookupsTotal.Inc()
	start := time.Now()
	defer func() { m.IndexLookupDuration.Observe(time.Since(start).Seconds()) }()

	var rows []Posting
	if err := s.db.Where("hash IN ?", hashes).Find(&rows).Error; err != nil {
		return nil, fperrors.Wrap(fperrors.StorageError, "failed to look up postings", err)
	}
	out := make([]PostingMatch, len(rows))
	for i, r := range rows {
		out[i] = PostingMatch{Hash: r.Hash, TimeOffsetMsec: r.TimeOffsetMsec, SongID: r.SongID}
	}
	return out, nil
}
