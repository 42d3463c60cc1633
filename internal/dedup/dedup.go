// Package dedup suppresses repeated webhook deliveries of the same update.
package dedup

import (
	"context"
	"fmt"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

const (
	DefaultTTL  = 24 * time.Hour
	DefaultSize = 4096

	keyPrefix = "starbot:update:"
)

// Store claims update ids. Claim is true only for the first delivery of an id.
type Store interface {
	Claim(ctx context.Context, updateID int64) (bool, error)
	Close() error
}

// Redis keeps claims in redis so restarts and parallel instances share them.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedis(client *redis.Client, ttl time.Duration) *Redis {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Redis{client: client, ttl: ttl}
}

func (r *Redis) Claim(ctx context.Context, updateID int64) (bool, error) {
	ok, err := r.client.SetNX(ctx, fmt.Sprintf("%s%d", keyPrefix, updateID), 1, r.ttl).Result()
	if err != nil {
		return false, errors.Wrap(err, "claim update")
	}
	return ok, nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}

// Memory remembers the most recent update ids of this process only.
type Memory struct {
	cache *lru.Cache[int64, struct{}]
}

func NewMemory(size int) (*Memory, error) {
	if size <= 0 {
		size = DefaultSize
	}
	cache, err := lru.New[int64, struct{}](size)
	if err != nil {
		return nil, errors.Wrap(err, "create lru")
	}
	return &Memory{cache: cache}, nil
}

func (m *Memory) Claim(_ context.Context, updateID int64) (bool, error) {
	seen, _ := m.cache.ContainsOrAdd(updateID, struct{}{})
	return !seen, nil
}

func (m *Memory) Close() error {
	m.cache.Purge()
	return nil
}

// Open uses redis when redisURL is set and the in-memory store otherwise.
func Open(ctx context.Context, redisURL string) (Store, error) {
	entry := log.WithField("object", "Dedup").WithField("method", "Open")
	if strings.TrimSpace(redisURL) == "" {
		entry.Debug("using in-memory dedup")
		return NewMemory(DefaultSize)
	}
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, errors.Wrap(err, "parse redis url")
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrap(err, "ping redis")
	}
	entry.Debug("using redis dedup")
	return NewRedis(client, DefaultTTL), nil
}
