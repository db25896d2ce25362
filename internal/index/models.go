// Package index implements the persisted hash→postings multimap and song
// metadata table, following the same GORM-over-Postgres conventions the
// reference backend's internal/database package uses for connection setup
// and migrations.
package index

// Song is the catalog entry for one indexed audio file. Immutable once
// inserted: identity for dedup is the (Title, Artist, Album) triple.
type Song struct {
	ID         int64  `gorm:"primaryKey;autoIncrement"`
	Title      string `gorm:"not null;index:idx_song_identity"`
	Artist     string `gorm:"index:idx_song_identity"`
	Album      string `gorm:"index:idx_song_identity"`
	FilePath   string
	DurationSec float64
	SampleRate int
}

func (Song) TableName() string { return "songs" }

// Posting is one (hash, time_offset, song) fact. Postings are append-only;
// a given (SongID, Hash) pair may repeat.
type Posting struct {
	ID              int64 `gorm:"primaryKey;autoIncrement"`
	Hash            uint32 `gorm:"index:idx_posting_hash"`
	TimeOffsetMsec  int64
	SongID          int64 `gorm:"index"`
}

func (Posting) TableName() string { return "fingerprints" }
