package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T) *LocalStorage {
	t.Helper()
	s, err := NewLocalStorage(t.TempDir(), "http://localhost:8080/uploads")
	require.NoError(t, err)
	return s
}

func TestLocalStorage_UploadDownloadRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)

	path, err := s.Upload(ctx, strings.NewReader("photo-bytes"), "attendance/2025-03-10/u1-checkin.jpg", "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("attendance", "2025-03-10", "u1-checkin.jpg"), path)

	rc, err := s.Download(ctx, path)
	require.NoError(t, err)
	defer rc.Close()

	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "photo-bytes", string(data))
}

func TestLocalStorage_DownloadMissingFile(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)

	_, err := s.Download(ctx, "attendance/nope.jpg")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "file not found")
}

func TestLocalStorage_Exists(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)

	ok, err := s.Exists(ctx, "attendance/a.jpg")
	require.NoError(t, err)
	assert.False(t, ok)

	path, err := s.Upload(ctx, strings.NewReader("x"), "attendance/a.jpg", "image/jpeg")
	require.NoError(t, err)

	ok, err = s.Exists(ctx, path)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLocalStorage_Delete(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)

	path, err := s.Upload(ctx, strings.NewReader("x"), "attendance/b.jpg", "image/jpeg")
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, path))

	ok, err := s.Exists(ctx, path)
	require.NoError(t, err)
	assert.False(t, ok)

	// Deleting an already-removed file is not an error
	require.NoError(t, s.Delete(ctx, path))
}

func TestLocalStorage_GetURL(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)

	url, err := s.GetURL(ctx, "attendance/2025-03-10/u1-checkin.jpg", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/uploads/attendance/2025-03-10/u1-checkin.jpg", url)
}

func TestLocalStorage_RejectsPathTraversal(t *testing.T) {
	ctx := context.Background()
	base := t.TempDir()
	s, err := NewLocalStorage(base, "http://localhost:8080/uploads")
	require.NoError(t, err)

	outside := filepath.Join(base, "..", "escape.txt")
	require.NoError(t, os.WriteFile(outside, []byte("secret"), 0600))

	_, err = s.Upload(ctx, strings.NewReader("x"), "../escape.txt", "text/plain")
	assert.Error(t, err)

	_, err = s.Download(ctx, "../escape.txt")
	assert.Error(t, err)

	err = s.Delete(ctx, "../escape.txt")
	assert.Error(t, err)
}
