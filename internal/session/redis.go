package session

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "examcoach:session:"

// Hash fields. Each is written on its own so Touch never rewrites the
// cursor.
const (
	fieldNumber       = "number"
	fieldTotal        = "total"
	fieldLastActivity = "last_activity"
)

// RedisStore keeps sessions in Redis hashes so several server instances can
// share them. Keys expire after the TTL; Save and Touch extend it.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore connects to Redis at addr and verifies the connection.
func NewRedisStore(ctx context.Context, addr, password string, ttl time.Duration) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisStore{client: client, ttl: ttl}, nil
}

func (r *RedisStore) Get(ctx context.Context, id string) (*Session, error) {
	fields, err := r.client.HGetAll(ctx, redisKeyPrefix+id).Result()
	if err != nil {
		return nil, fmt.Errorf("redis hgetall: %w", err)
	}
	// A hash left with only last_activity lost its cursor to expiry.
	if _, ok := fields[fieldNumber]; !ok {
		return nil, ErrNotFound
	}

	s := &Session{ID: id}
	if s.Number, err = strconv.Atoi(fields[fieldNumber]); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", id, err)
	}
	if s.Total, err = strconv.Atoi(fields[fieldTotal]); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", id, err)
	}
	if s.LastActivity, err = time.Parse(time.RFC3339Nano, fields[fieldLastActivity]); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", id, err)
	}
	return s, nil
}

func (r *RedisStore) Save(ctx context.Context, s *Session) error {
	key := redisKeyPrefix + s.ID
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key,
			fieldNumber, s.Number,
			fieldTotal, s.Total,
			fieldLastActivity, s.LastActivity.UTC().Format(time.RFC3339Nano),
		)
		pipe.Expire(ctx, key, r.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis save: %w", err)
	}
	return nil
}

func (r *RedisStore) Touch(ctx context.Context, id string, at time.Time) error {
	key := redisKeyPrefix + id
	n, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("redis exists: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, fieldLastActivity, at.UTC().Format(time.RFC3339Nano))
		pipe.Expire(ctx, key, r.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis touch: %w", err)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, redisKeyPrefix+id).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (r *RedisStore) Close() error {
	return r.client.Close()
}
