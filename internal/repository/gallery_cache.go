package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"photo_commerce/internal/domain/models"
	"photo_commerce/internal/storage"
	redisapp "photo_commerce/internal/storage/redis"

	"github.com/redis/go-redis/v9"
)

// RedisGalleryCache keeps published galleries behind their slug for a short
// TTL. Stale pricing is bounded by the TTL; writes invalidate eagerly.
type RedisGalleryCache struct {
	Client *redisapp.Client
	TTL    time.Duration
}

func NewRedisGalleryCache(client *redisapp.Client, ttl time.Duration) *RedisGalleryCache {
	return &RedisGalleryCache{Client: client, TTL: ttl}
}

func (c *RedisGalleryCache) GetBySlug(ctx context.Context, slug string) (*models.Gallery, error) {
	data, err := c.Client.Get(ctx, gallerySlugKey(slug)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, storage.ErrCacheMiss
	}
	if err != nil {
		return nil, err
	}

	var gallery models.Gallery
	if err := json.Unmarshal(data, &gallery); err != nil {
		// A corrupt entry behaves like a miss; the next Set overwrites it.
		return nil, storage.ErrCacheMiss
	}

	return &gallery, nil
}

func (c *RedisGalleryCache) SetBySlug(ctx context.Context, gallery *models.Gallery) error {
	data, err := json.Marshal(gallery)
	if err != nil {
		return err
	}
	return c.Client.Set(ctx, gallerySlugKey(gallery.Slug), data, c.TTL).Err()
}

func (c *RedisGalleryCache) Invalidate(ctx context.Context, slug string) error {
	return c.Client.Del(ctx, gallerySlugKey(slug)).Err()
}

func gallerySlugKey(slug string) string {
	return "gallery:slug:" + slug
}
