package file

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"io"
	"testing"
	"time"

	"github.com/geoattend/attendance-backend-go/internal/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFileService(t *testing.T) (FileService, *storage.LocalStorage) {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir(), "http://localhost:8080/uploads")
	require.NoError(t, err)
	return NewFileService(store), store
}

// testJPEG encodes a small solid-color image as JPEG bytes
func testJPEG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 64, 48))
	for y := 0; y < 48; y++ {
		for x := 0; x < 64; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 120, B: 40, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}))
	return buf.Bytes()
}

func TestUploadAttendancePhoto_StoresCompressedJPEG(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestFileService(t)

	date := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	path, err := svc.UploadAttendancePhoto(ctx, "user-1", date, bytes.NewReader(testJPEG(t)), "selfie.jpg", "checkin")
	require.NoError(t, err)
	assert.Contains(t, path, "attendance/2025-03-10/")
	assert.Contains(t, path, "user-1-checkin-")

	rc, err := store.Download(ctx, path)
	require.NoError(t, err)
	defer rc.Close()

	stored, err := io.ReadAll(rc)
	require.NoError(t, err)
	_, err = jpeg.Decode(bytes.NewReader(stored))
	require.NoError(t, err)
}

func TestUploadAttendancePhoto_RejectsUnsupportedExtension(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestFileService(t)

	_, err := svc.UploadAttendancePhoto(ctx, "user-1", time.Now(), bytes.NewReader(testJPEG(t)), "selfie.gif", "checkin")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid file type")
}

func TestUploadAttendancePhoto_RejectsOversizedUpload(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestFileService(t)

	huge := bytes.NewReader(make([]byte, MaxPhotoSize+1))
	_, err := svc.UploadAttendancePhoto(ctx, "user-1", time.Now(), huge, "selfie.jpg", "checkin")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "maximum size")
}

func TestDeleteFile(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestFileService(t)

	path, err := svc.UploadAttendancePhoto(ctx, "user-1", time.Now(), bytes.NewReader(testJPEG(t)), "selfie.jpg", "checkout")
	require.NoError(t, err)

	require.NoError(t, svc.DeleteFile(ctx, path))

	exists, err := store.Exists(ctx, path)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestGetFileURL(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestFileService(t)

	url, err := svc.GetFileURL(ctx, "attendance/2025-03-10/user-1-checkin-1.jpg", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/uploads/attendance/2025-03-10/user-1-checkin-1.jpg", url)
}
