package infrastructure

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"fanhunt/domain/entities"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

const (
	// LeaderboardCachePrefix prefixes every snapshot key
	LeaderboardCachePrefix = "fanhunt:leaderboard:top"
	// LeaderboardGenerationKey is bumped on every invalidation. Snapshots
	// written under an older generation are never read again and expire
	// on their own TTL.
	LeaderboardGenerationKey = "fanhunt:leaderboard:generation"

	defaultLeaderboardCacheTTL = 30 * time.Second
)

// RedisOptions configures the Redis connection
type RedisOptions struct {
	Addr         string
	Password     string
	DB           int
	PoolSize     int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// NewRedisClient connects to Redis and verifies the connection
func NewRedisClient(ctx context.Context, opts RedisOptions) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		DB:           opts.DB,
		PoolSize:     opts.PoolSize,
		DialTimeout:  opts.DialTimeout,
		ReadTimeout:  opts.ReadTimeout,
		WriteTimeout: opts.WriteTimeout,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", opts.Addr, err)
	}

	log.WithField("addr", opts.Addr).Info("Connected to Redis")
	return client, nil
}

// RedisLeaderboardCache stores one JSON snapshot per (generation, limit)
// key, each written with its own expiry. Snapshots are plain JSON so the
// database ordering (points, then user ID) is preserved exactly.
type RedisLeaderboardCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisLeaderboardCache creates a cache whose snapshots expire after ttl
func NewRedisLeaderboardCache(client *redis.Client, ttl time.Duration) *RedisLeaderboardCache {
	if ttl <= 0 {
		ttl = defaultLeaderboardCacheTTL
	}
	return &RedisLeaderboardCache{
		client: client,
		ttl:    ttl,
	}
}

// LeaderboardSnapshotKey names the snapshot for limit under generation
func LeaderboardSnapshotKey(generation int64, limit int) string {
	return fmt.Sprintf("%s:%d:%d", LeaderboardCachePrefix, generation, limit)
}

func (c *RedisLeaderboardCache) generation(ctx context.Context) (int64, error) {
	gen, err := c.client.Get(ctx, LeaderboardGenerationKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read leaderboard cache generation: %w", err)
	}
	return gen, nil
}

// Get returns the snapshot for limit, if one is cached
func (c *RedisLeaderboardCache) Get(ctx context.Context, limit int) ([]*entities.LeaderboardEntry, bool, error) {
	gen, err := c.generation(ctx)
	if err != nil {
		return nil, false, err
	}

	data, err := c.client.Get(ctx, LeaderboardSnapshotKey(gen, limit)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read leaderboard cache: %w", err)
	}

	var entries []*entities.LeaderboardEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached leaderboard: %w", err)
	}
	return entries, true, nil
}

// Set stores the snapshot for limit under the current generation
func (c *RedisLeaderboardCache) Set(ctx context.Context, limit int, entries []*entities.LeaderboardEntry) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to encode leaderboard: %w", err)
	}

	gen, err := c.generation(ctx)
	if err != nil {
		return err
	}

	if err := c.client.Set(ctx, LeaderboardSnapshotKey(gen, limit), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write leaderboard cache: %w", err)
	}
	return nil
}

// Invalidate retires every cached snapshot by bumping the generation
func (c *RedisLeaderboardCache) Invalidate(ctx context.Context) error {
	gen, err := c.client.Incr(ctx, LeaderboardGenerationKey).Result()
	if err != nil {
		return fmt.Errorf("failed to invalidate leaderboard cache: %w", err)
	}
	log.WithField("generation", gen).Debug("Leaderboard cache invalidated")
	return nil
}
