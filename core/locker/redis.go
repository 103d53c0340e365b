package locker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
)

// RedisLocker implements Locker on top of redislock. The lease lives in
// Redis, so mutual exclusion holds across every process sharing the same
// Redis instance.
type RedisLocker struct {
	client *redislock.Client
	prefix string
}

// NewRedisLocker connects to Redis and verifies the connection.
func NewRedisLocker(cfg Config) (*RedisLocker, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisLocker{
		client: redislock.New(rdb),
		prefix: cfg.KeyPrefix,
	}, nil
}

// Obtain acquires the lease for key or fails with ErrNotObtained.
func (l *RedisLocker) Obtain(ctx context.Context, key string, ttl time.Duration) (Lease, error) {
	lock, err := l.client.Obtain(ctx, l.prefix+key, ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, ErrNotObtained
	}
	if err != nil {
		return nil, fmt.Errorf("failed to obtain lock for %s: %w", key, err)
	}
	return &redisLease{lock: lock}, nil
}

type redisLease struct {
	lock *redislock.Lock
}

func (r *redisLease) Release(ctx context.Context) error {
	return r.lock.Release(ctx)
}

func (r *redisLease) Refresh(ctx context.Context, ttl time.Duration) error {
	return r.lock.Refresh(ctx, ttl, nil)
}

var _ Locker = (*RedisLocker)(nil)
