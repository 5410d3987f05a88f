package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis is a UsernameCache shared by every server instance.
type Redis struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisClient connects and pings so a bad address fails at startup.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return client, nil
}

func NewRedis(client *redis.Client, ttl time.Duration) *Redis {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Redis{
		client: client,
		prefix: "vidhub:username:",
		ttl:    ttl,
	}
}

func (r *Redis) key(id string) string {
	return r.prefix + id
}

func (r *Redis) GetMany(ctx context.Context, ids []string) (map[string]string, error) {
	found := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return found, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = r.key(id)
	}
	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("mget usernames: %w", err)
	}
	for i, v := range values {
		if s, ok := v.(string); ok {
			found[ids[i]] = s
		}
	}
	return found, nil
}

func (r *Redis) SetMany(ctx context.Context, names map[string]string) error {
	if len(names) == 0 {
		return nil
	}
	pipe := r.client.Pipeline()
	for id, name := range names {
		pipe.Set(ctx, r.key(id), name, r.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("set usernames: %w", err)
	}
	return nil
}

var _ UsernameCache = (*Redis)(nil)
