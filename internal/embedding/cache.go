package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/text/unicode/norm"
)

const cacheKeyPrefix = "embed:v1"

// CachedEmbedder wraps an Embedder with a Redis-backed cache keyed by a
// stable SHA-256 hash of the NFC-normalized input text, mirroring the
// teacher's TextEmbeddingService cache-key/TTL pattern but against the
// Cold Redis tier rather than a single shared instance.
type CachedEmbedder struct {
	inner  Embedder
	redis  *redis.Client
	ttl    time.Duration
	logger *logrus.Logger
}

func NewCachedEmbedder(inner Embedder, redisClient *redis.Client, ttl time.Duration, logger *logrus.Logger) *CachedEmbedder {
	return &CachedEmbedder{inner: inner, redis: redisClient, ttl: ttl, logger: logger}
}

func (c *CachedEmbedder) Dimensions() int { return c.inner.Dimensions() }

func (c *CachedEmbedder) Embed(ctx context.Context, text string) (Vector, error) {
	key := cacheKey(text)

	if c.redis != nil {
		if cached, ok := c.get(ctx, key); ok {
			return cached, nil
		}
	}

	v, err := c.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	if c.redis != nil {
		c.set(ctx, key, v)
	}
	return v, nil
}

func cacheKey(text string) string {
	normalized := norm.NFC.String(text)
	sum := sha256.Sum256([]byte(normalized))
	return fmt.Sprintf("%s:%x", cacheKeyPrefix, sum)
}

func (c *CachedEmbedder) get(ctx context.Context, key string) (Vector, bool) {
	raw, err := c.redis.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}

	var v Vector
	if err := json.Unmarshal(raw, &v); err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("embedding cache: corrupt entry, ignoring")
		return nil, false
	}
	return v, true
}

func (c *CachedEmbedder) set(ctx context.Context, key string, v Vector) {
	raw, err := json.Marshal(v)
	if err != nil {
		c.logger.WithError(err).Warn("embedding cache: failed to marshal vector")
		return
	}
	if err := c.redis.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("embedding cache: failed to write entry")
	}
}
