package progress

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	redisKeyPrefix = "quizmaster:progress:"
	redisIndexKey  = "quizmaster:progress:index"
)

// RedisBackend stores each snapshot under its own key with a TTL equal to
// the retention window, plus a set indexing the quiz ids. Index entries
// whose key has expired are pruned by All.
type RedisBackend struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisClient parses url, connects and pings the server.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}
	return client, nil
}

// NewRedisBackend returns a backend using client.
func NewRedisBackend(client *redis.Client) *RedisBackend {
	return &RedisBackend{client: client, ttl: RetentionWindow}
}

func (r *RedisBackend) Put(ctx context.Context, quizID string, data []byte) error {
	_, err := r.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, redisKeyPrefix+quizID, data, r.ttl)
		p.SAdd(ctx, redisIndexKey, quizID)
		return nil
	})
	return err
}

func (r *RedisBackend) Get(ctx context.Context, quizID string) ([]byte, error) {
	b, err := r.client.Get(ctx, redisKeyPrefix+quizID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	return b, err
}

func (r *RedisBackend) All(ctx context.Context) (map[string][]byte, error) {
	ids, err := r.client.SMembers(ctx, redisIndexKey).Result()
	if err != nil {
		return nil, err
	}
	out := make(map[string][]byte, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = redisKeyPrefix + id
	}
	vals, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	var stale []any
	for i, v := range vals {
		s, ok := v.(string)
		if !ok {
			stale = append(stale, ids[i])
			continue
		}
		out[ids[i]] = []byte(s)
	}
	if len(stale) > 0 {
		if err := r.client.SRem(ctx, redisIndexKey, stale...).Err(); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *RedisBackend) Delete(ctx context.Context, quizID string) error {
	_, err := r.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, redisKeyPrefix+quizID)
		p.SRem(ctx, redisIndexKey, quizID)
		return nil
	})
	return err
}
