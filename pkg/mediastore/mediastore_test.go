package mediastore

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 16)...)

func TestStore(t *testing.T) {
	t.Parallel()

	s, err := New(t.TempDir())
	require.NoError(t, err)

	t.Run("writes the file and returns a relative URL", func(tt *testing.T) {
		url, err := s.Store("books/1", "cover", bytes.NewReader(pngBytes))
		require.NoError(tt, err)
		assert.Equal(tt, "/media/books/1/cover.png", url)

		_, err = os.Stat(filepath.Join(s.Root(), "books", "1", "cover.png"))
		assert.NoError(tt, err)
	})

	t.Run("keeps an existing extension", func(tt *testing.T) {
		url, err := s.Store("books/1", "fig.png", bytes.NewReader(pngBytes))
		require.NoError(tt, err)
		assert.Equal(tt, "/media/books/1/fig.png", url)
	})

	t.Run("rejects non-image payloads before writing", func(tt *testing.T) {
		_, err := s.Store("books/2", "cover", bytes.NewReader([]byte("plain text")))
		require.Error(tt, err)
		assert.Contains(tt, err.Error(), "must be an image")

		_, statErr := os.Stat(filepath.Join(s.Root(), "books", "2"))
		assert.True(tt, os.IsNotExist(statErr))
	})
}

func TestRemove(t *testing.T) {
	t.Parallel()

	s, err := New(t.TempDir())
	require.NoError(t, err)

	url, err := s.Store("books/3", "cover", bytes.NewReader(pngBytes))
	require.NoError(t, err)

	require.NoError(t, s.Remove(url))
	_, err = os.Stat(filepath.Join(s.Root(), "books", "3", "cover.png"))
	assert.True(t, os.IsNotExist(err))

	// Removing it again is fine.
	assert.NoError(t, s.Remove(url))
}

func TestRemoveScope(t *testing.T) {
	t.Parallel()

	s, err := New(t.TempDir())
	require.NoError(t, err)

	_, err = s.Store("books/4/chapters/1", "a", bytes.NewReader(pngBytes))
	require.NoError(t, err)
	_, err = s.Store("books/4/chapters/1", "b", bytes.NewReader(pngBytes))
	require.NoError(t, err)

	require.NoError(t, s.RemoveScope("books/4"))
	_, err = os.Stat(filepath.Join(s.Root(), "books", "4"))
	assert.True(t, os.IsNotExist(err))
}
