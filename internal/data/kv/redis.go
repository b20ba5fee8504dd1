package kv

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/studypath/internal/platform/logger"
)

type RedisStore struct {
	log    *logger.Logger
	client *goredis.Client
}

// NewRedisStore connects and pings addr before returning.
func NewRedisStore(log *logger.Logger, addr string) (*RedisStore, error) {
	if addr == "" {
		return nil, fmt.Errorf("redis store: empty address")
	}
	if log == nil {
		log = logger.Nop()
	}
	client := goredis.NewClient(&goredis.Options{Addr: addr})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return &RedisStore{log: log.With("service", "RedisStore"), client: client}, nil
}

// NewRedisStoreFromClient wraps an existing client.
func NewRedisStoreFromClient(log *logger.Logger, client *goredis.Client) *RedisStore {
	if log == nil {
		log = logger.Nop()
	}
	return &RedisStore{log: log.With("service", "RedisStore"), client: client}
}

func (r *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (r *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	return r.client.Set(ctx, key, value, 0).Err()
}

func (r *RedisStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return r.client.Del(ctx, keys...).Err()
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}
