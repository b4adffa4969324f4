package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"catalog-backend/models"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	treeKeyPrefix = "categories:tree:"
	treeGenKey    = "categories:tree:gen"

	DefaultTreeTTL = 10 * time.Minute
)

// Connect parses a redis:// URL and verifies the server answers a ping.
func Connect(url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

// TreeCache keeps serialized category forests in redis. A nil *TreeCache is
// valid and caches nothing. Redis failures are logged and treated as misses.
type TreeCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

func NewTreeCache(client *redis.Client, ttl time.Duration, log *zap.Logger) *TreeCache {
	if client == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = DefaultTreeTTL
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &TreeCache{client: client, ttl: ttl, log: log}
}

// treeKey names the cached forest for one generation. Invalidate bumps the
// generation, so a fill computed before a mutation lands under a key that
// is never read again and simply expires.
func treeKey(gen int64, onlyActive bool) string {
	variant := "all"
	if onlyActive {
		variant = "active"
	}
	return fmt.Sprintf("%s%d:%s", treeKeyPrefix, gen, variant)
}

func (c *TreeCache) generation(ctx context.Context) (int64, error) {
	gen, err := c.client.Get(ctx, treeGenKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

// GetTree returns the cached forest and the generation it was looked up
// under. The generation must be passed back to SetTree on a miss; it is -1
// when the cache cannot be used.
func (c *TreeCache) GetTree(ctx context.Context, onlyActive bool) ([]*models.Category, int64, bool) {
	if c == nil {
		return nil, -1, false
	}
	gen, err := c.generation(ctx)
	if err != nil {
		c.log.Warn("tree cache generation read failed", zap.Error(err))
		return nil, -1, false
	}

	key := treeKey(gen, onlyActive)
	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, gen, false
	}
	if err != nil {
		c.log.Warn("tree cache get failed", zap.String("key", key), zap.Error(err))
		return nil, -1, false
	}

	var roots []*models.Category
	if err := json.Unmarshal(raw, &roots); err != nil {
		c.log.Warn("tree cache entry unreadable", zap.String("key", key), zap.Error(err))
		return nil, gen, false
	}
	return roots, gen, true
}

func (c *TreeCache) SetTree(ctx context.Context, onlyActive bool, gen int64, roots []*models.Category) {
	if c == nil || gen < 0 {
		return
	}
	key := treeKey(gen, onlyActive)
	raw, err := json.Marshal(roots)
	if err != nil {
		c.log.Warn("tree cache encode failed", zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.log.Warn("tree cache set failed", zap.String("key", key), zap.Error(err))
	}
}

// Invalidate starts a new generation; entries of older generations are
// left to expire.
func (c *TreeCache) Invalidate(ctx context.Context) {
	if c == nil {
		return
	}
	gen, err := c.client.Incr(ctx, treeGenKey).Result()
	if err != nil {
		c.log.Warn("tree cache invalidate failed", zap.Error(err))
		return
	}
	c.log.Debug("tree cache invalidated", zap.Int64("generation", gen))
}
