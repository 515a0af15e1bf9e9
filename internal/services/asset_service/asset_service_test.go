package services

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"photo_commerce/internal/storage/objectstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T, ttl time.Duration) (*AssetService, objectstore.BlobStorage) {
	t.Helper()

	blob, err := objectstore.NewLocalObjectStorage(t.TempDir())
	require.NoError(t, err)

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	svc := NewAssetService(log, "test-signing-secret", ttl, "http://localhost:8080", blob)

	return svc, blob
}

func TestAssetService_SignAndResolve(t *testing.T) {
	svc, _ := newTestService(t, time.Hour)

	url, err := svc.SignedURL("gal/thumbnails/a.jpg", PurposeThumbnail)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(url, "http://localhost:8080/api/v1/assets/"))

	token := strings.TrimPrefix(url, "http://localhost:8080/api/v1/assets/")
	path, err := svc.Resolve(token)
	require.NoError(t, err)
	assert.Equal(t, "gal/thumbnails/a.jpg", path)
}

func TestAssetService_ExpiredTokenRejected(t *testing.T) {
	svc, _ := newTestService(t, -time.Minute)

	url, err := svc.SignedURL("gal/thumbnails/a.jpg", PurposeThumbnail)
	require.NoError(t, err)

	token := strings.TrimPrefix(url, "http://localhost:8080/api/v1/assets/")
	_, err = svc.Resolve(token)
	assert.ErrorIs(t, err, ErrInvalidAssetToken)
}

func TestAssetService_TamperedTokenRejected(t *testing.T) {
	svc, _ := newTestService(t, time.Hour)

	url, err := svc.SignedURL("gal/thumbnails/a.jpg", PurposeThumbnail)
	require.NoError(t, err)

	token := strings.TrimPrefix(url, "http://localhost:8080/api/v1/assets/")
	_, err = svc.Resolve(token + "x")
	assert.ErrorIs(t, err, ErrInvalidAssetToken)
}

func TestAssetService_FreshMintAfterExpiry(t *testing.T) {
	// An expired URL is not an error state: the next render pass simply
	// mints a new one that resolves again.
	expired, _ := newTestService(t, -time.Minute)
	fresh, _ := newTestService(t, time.Hour)
	fresh.secret = expired.secret

	staleURL, err := expired.SignedURL("gal/thumbnails/a.jpg", PurposeThumbnail)
	require.NoError(t, err)
	staleToken := strings.TrimPrefix(staleURL, "http://localhost:8080/api/v1/assets/")
	_, err = fresh.Resolve(staleToken)
	require.ErrorIs(t, err, ErrInvalidAssetToken)

	newURL, err := fresh.SignedURL("gal/thumbnails/a.jpg", PurposeThumbnail)
	require.NoError(t, err)
	assert.NotEqual(t, staleURL, newURL)

	newToken := strings.TrimPrefix(newURL, "http://localhost:8080/api/v1/assets/")
	path, err := fresh.Resolve(newToken)
	require.NoError(t, err)
	assert.Equal(t, "gal/thumbnails/a.jpg", path)
}

func TestAssetService_BatchMintKeepsOrder(t *testing.T) {
	svc, _ := newTestService(t, time.Hour)

	paths := []string{
		"gal/thumbnails/a.jpg",
		"gal/thumbnails/b.jpg",
		"gal/thumbnails/c.jpg",
	}
	urls := svc.SignedURLs(paths, PurposeThumbnail)
	require.Len(t, urls, 3)

	for i, u := range urls {
		token := strings.TrimPrefix(u, "http://localhost:8080/api/v1/assets/")
		path, err := svc.Resolve(token)
		require.NoError(t, err)
		assert.Equal(t, paths[i], path)
	}
}

func TestAssetService_OpenStreamsObject(t *testing.T) {
	svc, blob := newTestService(t, time.Hour)
	ctx := context.Background()

	_, err := blob.Put(ctx, "gal/originals/a.jpg", strings.NewReader("raw bytes"))
	require.NoError(t, err)

	url, err := svc.SignedURL("gal/originals/a.jpg", PurposeOriginal)
	require.NoError(t, err)
	token := strings.TrimPrefix(url, "http://localhost:8080/api/v1/assets/")

	rc, err := svc.Open(ctx, token)
	require.NoError(t, err)
	defer rc.Close()

	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "raw bytes", string(data))
}
