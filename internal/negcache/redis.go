package negcache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/iconidentify/learnvid/internal/config"
	"github.com/iconidentify/learnvid/internal/domain"
)

// RedisStore persists entries in a single Redis hash keyed by video ID.
type RedisStore struct {
	rdb     *goredis.Client
	key     string
	timeout time.Duration
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(ctx context.Context, cfg config.NegativeCacheConfig) (*RedisStore, error) {
	if cfg.RedisAddr == "" {
		return nil, fmt.Errorf("missing redis address")
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        cfg.RedisAddr,
		Password:    cfg.RedisPassword,
		DB:          cfg.RedisDB,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return newRedisStore(rdb, cfg), nil
}

func newRedisStore(rdb *goredis.Client, cfg config.NegativeCacheConfig) *RedisStore {
	key := cfg.Key
	if key == "" {
		key = "learnvid:negative-cache"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &RedisStore{rdb: rdb, key: key, timeout: timeout}
}

// Load reads every persisted entry. Malformed values are skipped.
func (s *RedisStore) Load(ctx context.Context) ([]Entry, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	raw, err := s.rdb.HGetAll(ctx, s.key).Result()
	if err != nil {
		return nil, fmt.Errorf("load negative cache: %w", err)
	}
	entries := make([]Entry, 0, len(raw))
	for id, val := range raw {
		var e Entry
		if err := json.Unmarshal([]byte(val), &e); err != nil {
			continue
		}
		e.VideoID = domain.VideoID(id)
		entries = append(entries, e)
	}
	return entries, nil
}

// Save writes one entry. HSETNX keeps the first recorded reason.
func (s *RedisStore) Save(ctx context.Context, entry Entry) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal entry: %w", err)
	}
	return s.rdb.HSetNX(ctx, s.key, entry.VideoID.String(), data).Err()
}

// Clear deletes the hash.
func (s *RedisStore) Clear(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.rdb.Del(ctx, s.key).Err()
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.rdb.Close()
}
