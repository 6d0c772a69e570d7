package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisPrefix = "parliament:response:"

type redisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisStore shares entries between server instances through Redis
func NewRedisStore(rdb *redis.Client, ttl time.Duration) Store {
	return &redisStore{rdb: rdb, ttl: ttl}
}

// Connect opens a Redis client from a redis:// URL, or a bare host:port
func Connect(ctx context.Context, rawURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(rawURL)
	if err != nil {
		opt = &redis.Options{Addr: rawURL}
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return rdb, nil
}

func (s *redisStore) Get(ctx context.Context, key string) (*Entry, bool, error) {
	raw, err := s.rdb.Get(ctx, redisPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var e Entry
	if err := json.Unmarshal(raw, &e); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached response: %w", err)
	}
	return &e, true, nil
}

func (s *redisStore) Set(ctx context.Context, key string, e *Entry) error {
	raw, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, redisPrefix+key, raw, s.ttl).Err()
}

func (s *redisStore) Flush(ctx context.Context) error {
	iter := s.rdb.Scan(ctx, 0, redisPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := s.rdb.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}
