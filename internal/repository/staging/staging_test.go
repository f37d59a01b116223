package staging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveWritesFileWithOriginalExtension(t *testing.T) {
	store := New(t.TempDir())

	staged, err := store.Save([]byte("jpeg bytes"), "scan.jpg")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(filepath.Base(staged.Path), "prescription-"))
	assert.Equal(t, ".jpg", filepath.Ext(staged.Path))

	data, err := os.ReadFile(staged.Path)
	require.NoError(t, err)
	assert.Equal(t, []byte("jpeg bytes"), data)
}

func TestSaveGeneratesUniqueNames(t *testing.T) {
	store := New(t.TempDir())

	first, err := store.Save([]byte("a"), "rx.png")
	require.NoError(t, err)
	second, err := store.Save([]byte("b"), "rx.png")
	require.NoError(t, err)

	assert.NotEqual(t, first.Path, second.Path)
}

func TestSaveCreatesMissingDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "staging", "prescriptions")
	store := New(dir)

	staged, err := store.Save([]byte("x"), "rx.webp")
	require.NoError(t, err)
	assert.FileExists(t, staged.Path)
}

func TestReadRoundTrip(t *testing.T) {
	store := New(t.TempDir())

	staged, err := store.Save([]byte{0xFF, 0xD8, 0x01, 0x02}, "rx.jpeg")
	require.NoError(t, err)

	data, err := store.Read(staged.Path)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xFF, 0xD8, 0x01, 0x02}, data)
}

func TestReadMissingFileFails(t *testing.T) {
	store := New(t.TempDir())

	_, err := store.Read(filepath.Join(store.Dir(), "gone.jpg"))
	assert.Error(t, err)
}

func TestRemoveIsIdempotent(t *testing.T) {
	store := New(t.TempDir())

	staged, err := store.Save([]byte("x"), "rx.gif")
	require.NoError(t, err)

	require.NoError(t, store.Remove(staged.Path))
	assert.NoFileExists(t, staged.Path)

	// Second removal of the same path must not fail.
	assert.NoError(t, store.Remove(staged.Path))
}
