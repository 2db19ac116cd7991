package objectstore

import (
	"context"
	"time"

	redisapp "lensdrop/internal/storage/redis"

	"github.com/redis/go-redis/v9"
)

const urlCacheMargin = 5 * time.Minute

// URLCache keeps presigned download URLs in Redis, keyed by storage key.
// Entries expire well before the presign validity does, so a cached URL is
// always still usable when served.
type URLCache struct {
	client *redisapp.Client
	ttl    time.Duration
}

// NewURLCache derives the cache TTL from the presign validity minus a safety
// margin. Validities at or below the margin disable caching-by-TTL tricks and
// just use half the validity.
func NewURLCache(client *redisapp.Client, presignTTL time.Duration) *URLCache {
	ttl := presignTTL - urlCacheMargin
	if ttl <= 0 {
		ttl = presignTTL / 2
	}
	return &URLCache{client: client, ttl: ttl}
}

func (c *URLCache) Get(ctx context.Context, key string) (string, bool) {
	val, err := c.client.Get(ctx, cacheKey(key)).Result()
	if err == redis.Nil {
		return "", false
	}
	if err != nil {
		// redis failures degrade to a miss
		return "", false
	}
	return val, true
}

func (c *URLCache) Set(ctx context.Context, key, url string) {
	_ = c.client.Set(ctx, cacheKey(key), url, c.ttl).Err()
}

func cacheKey(storageKey string) string {
	return "presign:download:" + storageKey
}
