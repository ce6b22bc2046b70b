package companion

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/julianstephens/bloomlet/internal/models"
)

// ResultCache memoizes analysis results by entry content.
type ResultCache interface {
	Get(ctx context.Context, content string) (models.Analysis, bool, error)
	Set(ctx context.Context, content string, a models.Analysis) error
}

// RedisCache stores analyses under the SHA-256 of the analyzed content.
type RedisCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

var _ ResultCache = (*RedisCache)(nil)

// NewRedisCache connects to redisURL. A zero ttl keeps results forever.
func NewRedisCache(redisURL string, ttl time.Duration) (*RedisCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return NewRedisCacheWithClient(client, ttl), nil
}

// NewRedisCacheWithClient creates a cache from an existing Redis client
func NewRedisCacheWithClient(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{
		client: client,
		prefix: "bloomlet:analysis:",
		ttl:    ttl,
	}
}

func (c *RedisCache) key(content string) string {
	sum := sha256.Sum256([]byte(content))
	return c.prefix + hex.EncodeToString(sum[:])
}

func (c *RedisCache) Get(ctx context.Context, content string) (models.Analysis, bool, error) {
	data, err := c.client.Get(ctx, c.key(content)).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.Analysis{}, false, nil
	}
	if err != nil {
		return models.Analysis{}, false, fmt.Errorf("lookup analysis: %w", err)
	}

	var a models.Analysis
	if err := json.Unmarshal(data, &a); err != nil {
		return models.Analysis{}, false, fmt.Errorf("unmarshal analysis: %w", err)
	}
	return a, true, nil
}

func (c *RedisCache) Set(ctx context.Context, content string, a models.Analysis) error {
	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("marshal analysis: %w", err)
	}
	if err := c.client.Set(ctx, c.key(content), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("save analysis: %w", err)
	}
	return nil
}

// Ping checks if Redis is reachable
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}
