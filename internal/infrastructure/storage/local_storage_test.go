package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLocalStorage(t *testing.T) *LocalObjectStorage {
	t.Helper()
	storage, err := NewLocalObjectStorage(t.TempDir(), "/api/v1/media")
	require.NoError(t, err)
	return storage
}

func TestNewLocalObjectStorage(t *testing.T) {
	t.Run("empty root directory returns error", func(t *testing.T) {
		_, err := NewLocalObjectStorage("", "/media")
		require.Error(t, err)
	})

	t.Run("default base URL is /media", func(t *testing.T) {
		storage, err := NewLocalObjectStorage(t.TempDir(), "")
		require.NoError(t, err)

		url, _, err := storage.GenerateDownloadURL(context.Background(), "products/a.jpg", time.Hour)
		require.NoError(t, err)
		assert.Equal(t, "/media/products/a.jpg", url)
	})
}

func TestLocalObjectStorage_UploadAndRead(t *testing.T) {
	storage := newLocalStorage(t)
	ctx := context.Background()

	err := storage.Upload(ctx, "products/p1/photo.jpg", []byte("image-bytes"), "image/jpeg")
	require.NoError(t, err)

	exists, err := storage.ObjectExists(ctx, "products/p1/photo.jpg")
	require.NoError(t, err)
	assert.True(t, exists)

	data, err := storage.Open("products/p1/photo.jpg")
	require.NoError(t, err)
	assert.Equal(t, []byte("image-bytes"), data)
}

func TestLocalObjectStorage_Delete(t *testing.T) {
	storage := newLocalStorage(t)
	ctx := context.Background()

	require.NoError(t, storage.Upload(ctx, "a/b.png", []byte("x"), "image/png"))
	require.NoError(t, storage.DeleteObject(ctx, "a/b.png"))

	exists, err := storage.ObjectExists(ctx, "a/b.png")
	require.NoError(t, err)
	assert.False(t, exists)

	t.Run("deleting missing object succeeds", func(t *testing.T) {
		assert.NoError(t, storage.DeleteObject(ctx, "a/missing.png"))
	})
}

func TestLocalObjectStorage_PathTraversal(t *testing.T) {
	storage := newLocalStorage(t)
	ctx := context.Background()

	// Cleaned keys stay under the root even with traversal attempts
	err := storage.Upload(ctx, "../../etc/passwd", []byte("x"), "text/plain")
	require.NoError(t, err)

	exists, err := storage.ObjectExists(ctx, "etc/passwd")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestLocalObjectStorage_URLs(t *testing.T) {
	storage := newLocalStorage(t)
	ctx := context.Background()

	t.Run("upload URL points at the direct-upload endpoint", func(t *testing.T) {
		url, expiresAt, err := storage.GenerateUploadURL(ctx, "products/k.jpg", "image/jpeg", 10*time.Minute)
		require.NoError(t, err)
		assert.Equal(t, "/api/v1/media/upload/products/k.jpg", url)
		assert.True(t, expiresAt.After(time.Now()))
	})

	t.Run("empty key is rejected", func(t *testing.T) {
		_, _, err := storage.GenerateUploadURL(ctx, "", "image/jpeg", 0)
		require.Error(t, err)
		_, _, err = storage.GenerateDownloadURL(ctx, "", 0)
		require.Error(t, err)
	})
}
