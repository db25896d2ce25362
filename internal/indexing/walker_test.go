package indexing

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscoverFindsRecognizedExtensionsCaseInsensitive(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"one.wav", "two.MP3", "three.txt", "four.flac"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}
	subdir := filepath.Join(dir, "nested")
	require.NoError(t, os.Mkdir(subdir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(subdir, "five.OGG"), []byte("x"), 0o644))

	paths, err := discover(dir)
	require.NoError(t, err)

	var names []string
	for _, p := range paths {
		names = append(names, filepath.Base(p))
	}
	assert.ElementsMatch(t, []string{"one.wav", "two.MP3", "four.flac", "five.OGG"}, names)
}

func TestDiscoverEmptyDirectory(t *testing.T) {
	dir := t.TempDir()
	paths, err := discover(dir)
	require.NoError(t, err)
	assert.Empty(t, paths)
}
