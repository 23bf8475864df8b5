package ffio

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBase(t *testing.T) {
	tables := []struct {
		path string
		want string
	}{
		{"image.ff", "image.ff"},
		{"image.ff.zst", "image.ff"},
		{"image.ff.bz2", "image.ff"},
		{"image.ff.gz", "image.ff"},
		{"image.FF.ZST", "image.FF"},
		{"image.png", "image.png"},
		{"archive.zst", "archive"},
	}

	for _, table := range tables {
		t.Run(table.path, func(t *testing.T) {
			assert.Equal(t, table.want, Base(table.path))
		})
	}
}

func TestRoundTrip(t *testing.T) {
	payload := []byte("farbfeld\x00\x00\x00\x00\x00\x00\x00\x00")

	for _, name := range []string{"image.ff", "image.ff.zst", "image.ff.gz"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)

			w, err := Create(path)
			require.NoError(t, err)
			_, err = w.Write(payload)
			require.NoError(t, err)
			require.NoError(t, w.Close())

			r, err := Open(path)
			require.NoError(t, err)
			b, err := io.ReadAll(r)
			require.NoError(t, err)
			require.NoError(t, r.Close())

			assert.Equal(t, payload, b)
		})
	}
}

func TestCompressedOnDisk(t *testing.T) {
	payload := []byte("farbfeld\x00\x00\x00\x00\x00\x00\x00\x00")
	path := filepath.Join(t.TempDir(), "image.ff.zst")

	w, err := Create(path)
	require.NoError(t, err)
	_, err = w.Write(payload)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotEqual(t, payload, raw, "file contents should be compressed")
}

func TestCreateBzip2(t *testing.T) {
	_, err := Create(filepath.Join(t.TempDir(), "image.ff.bz2"))
	assert.Error(t, err)
}

func TestOpenMissing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.ff"))
	assert.Error(t, err)
}
