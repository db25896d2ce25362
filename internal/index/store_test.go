package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTestDB opens an in-memory sqlite database for the store tests, the
// same approach the reference backend uses to exercise its own GORM-backed
// clients without a live Postgres instance. Unlike the reference backend's
// tables, Song and Posting use plain integer primary keys, so AutoMigrate
// (rather than hand-written SQLite DDL) is sufficient here.
func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	require.NoError(t, err)
	return db
}

func TestCreateSchemaIdempotent(t *testing.T) {
	db := setupTestDB(t)
	store := New(db)

	require.NoError(t, store.CreateSchema())
	require.NoError(t, store.CreateSchema())
}

func TestInsertAndLookupSong(t *testing.T) {
	db := setupTestDB(t)
	store := New(db)
	require.NoError(t, store.CreateSchema())

	id, err := store.InsertSong(&Song{Title: "Test Song", Artist: "Artist", Album: "Album", SampleRate: 44100})
	require.NoError(t, err)
	assert.Greater(t, id, int64(0))

	song, err := store.LookupSong(id)
	require.NoError(t, err)
	require.NotNil(t, song)
	assert.Equal(t, "Test Song", song.Title)
}

func TestLookupSongMissing(t *testing.T) {
	db := setupTestDB(t)
	store := New(db)
	require.NoError(t, store.CreateSchema())

	song, err := store.LookupSong(999)
	require.NoError(t, err)
	assert.Nil(t, song)
}

func TestFindSongIDDedup(t *testing.T) {
	db := setupTestDB(t)
	store := New(db)
	require.NoError(t, store.CreateSchema())

	id, err := store.InsertSong(&Song{Title: "Dup", Artist: "A", Album: "B"})
	require.NoError(t, err)

	found, ok, err := store.FindSongID("Dup", "A", "B")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, id, found)

	_, ok, err = store.FindSongID("Dup", "A", "Other Album")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCountSongs(t *testing.T) {
	db := setupTestDB(t)
	store := New(db)
	require.NoError(t, store.CreateSchema())

	count, err := store.CountSongs()
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	_, err = store.InsertSong(&Song{Title: "A"})
	require.NoError(t, err)
	_, err = store.InsertSong(&Song{Title: "B"})
	require.NoError(t, err)

	count, err = store.CountSongs()
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestBulkInsertAndFindPostings(t *testing.T) {
	db := setupTestDB(t)
	store := New(db)
	require.NoError(t, store.CreateSchema())

	songID, err := store.InsertSong(&Song{Title: "Song"})
	require.NoError(t, err)

	pairs := []HashOffset{
		{Hash: 1, TimeOffsetMsec: 100},
		{Hash: 2, TimeOffsetMsec: 200},
		{Hash: 1, TimeOffsetMsec: 300},
	}
	require.NoError(t, store.BulkInsertFingerprints(songID, pairs))

	matches, err := store.FindPostings([]uint32{1})
	require.NoError(t, err)
	assert.Len(t, matches, 2)
	for _, m := range matches {
		assert.Equal(t, uint32(1), m.Hash)
		assert.Equal(t, songID, m.SongID)
	}

	none, err := store.FindPostings([]uint32{999})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestFindPostingsEmptyHashSet(t *testing.T) {
	db := setupTestDB(t)
	store := New(db)
	require.NoError(t, store.CreateSchema())

	matches, err := store.FindPostings(nil)
	require.NoError(t, err)
	assert.Empty(t, matches)
}
