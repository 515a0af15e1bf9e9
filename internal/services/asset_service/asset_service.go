package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"photo_commerce/internal/lib/logger/sl"
	"photo_commerce/internal/metrics"
	"photo_commerce/internal/storage/objectstore"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidAssetToken = errors.New("invalid or expired asset token")

// Purposes of a signed URL. They are carried in the token so a thumbnail
// link can never be replayed against an original.
const (
	PurposeThumbnail   = "thumbnail"
	PurposeWatermarked = "watermarked"
	PurposeOriginal    = "original"
)

// AssetService is the access broker: the backing store stays private and
// every display or download goes through a short-lived signed URL. URLs are
// never persisted, they are re-minted on every render pass, so expiry just
// means the next page load signs again.
type AssetService struct {
	log     *slog.Logger
	secret  []byte
	ttl     time.Duration
	baseURL string
	blob    objectstore.BlobStorage
}

func NewAssetService(log *slog.Logger, secret string, ttl time.Duration, baseURL string, blob objectstore.BlobStorage) *AssetService {
	return &AssetService{
		log:     log,
		secret:  []byte(secret),
		ttl:     ttl,
		baseURL: baseURL,
		blob:    blob,
	}
}

// SignedURL mints a URL for one private object, valid for the configured
// window (1h by default).
func (s *AssetService) SignedURL(objectPath, purpose string) (string, error) {
	const op = "service.AssetService.SignedURL"

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"path":    objectPath,
		"purpose": purpose,
		"exp":     time.Now().Add(s.ttl).Unix(),
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	metrics.SignedURLsIssuedTotal.Inc()

	return s.baseURL + "/api/v1/assets/" + signed, nil
}

// SignedURLs mints URLs for a whole render pass concurrently; the requests
// are independent and idempotent so there is no reason to serialize them.
// A failed mint yields an empty string at that index and the caller shows a
// placeholder instead of failing the page.
func (s *AssetService) SignedURLs(paths []string, purpose string) []string {
	urls := make([]string, len(paths))

	var wg sync.WaitGroup
	for i, p := range paths {
		wg.Add(1)
		go func(i int, p string) {
			defer wg.Done()
			url, err := s.SignedURL(p, purpose)
			if err != nil {
				s.log.Warn("failed to sign asset url",
					slog.String("path", p),
					sl.Err(err),
				)
				return
			}
			urls[i] = url
		}(i, p)
	}
	wg.Wait()

	return urls
}

// Resolve verifies a token and returns the object path it grants access to.
// Expired or tampered tokens are rejected; signature and exp checks come
// from the JWT parser.
func (s *AssetService) Resolve(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return "", ErrInvalidAssetToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidAssetToken
	}

	path, ok := claims["path"].(string)
	if !ok || path == "" {
		return "", ErrInvalidAssetToken
	}

	return path, nil
}

// Open verifies the token and streams the underlying object.
func (s *AssetService) Open(ctx context.Context, tokenString string) (io.ReadCloser, error) {
	const op = "service.AssetService.Open"

	path, err := s.Resolve(tokenString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rc, err := s.blob.Open(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return rc, nil
}
