package blob

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDiskStore(t *testing.T, baseURL string) (*DiskStore, string) {
	t.Helper()

	dir := t.TempDir()
	logger := zerolog.Nop()
	d, err := NewDiskStore(dir, baseURL, &logger)
	require.NoError(t, err)
	return d, dir
}

func TestSaveWritesFileAndReturnsURL(t *testing.T) {
	d, dir := newDiskStore(t, "")

	url, err := d.Save(context.Background(), "notes.txt", strings.NewReader("hello"))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(url, "/uploads/"), url)
	assert.True(t, strings.HasSuffix(url, "-notes.txt"), url)

	data, err := os.ReadFile(filepath.Join(dir, strings.TrimPrefix(url, "/uploads/")))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestSavePrefixesPublicBaseURL(t *testing.T) {
	d, _ := newDiskStore(t, "https://chat.example.com/")

	url, err := d.Save(context.Background(), "x.png", bytes.NewReader([]byte{1, 2, 3}))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "https://chat.example.com/uploads/"), url)
}

func TestSaveSniffsExtensionWhenMissing(t *testing.T) {
	d, _ := newDiskStore(t, "")

	// Minimal PNG signature.
	png := []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}
	url, err := d.Save(context.Background(), "screenshot", bytes.NewReader(png))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(url, ".png"), url)
}

func TestSaveSanitizesHostilePaths(t *testing.T) {
	d, dir := newDiskStore(t, "")

	url, err := d.Save(context.Background(), "../../etc/passwd", strings.NewReader("nope"))
	require.NoError(t, err)
	assert.NotContains(t, url, "..")

	// Nothing escaped the upload directory.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].Name(), "passwd")
}
