// internal/session/redis_store.go
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	xerrors "leadscope-service/internal/pkg/errors"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "call:session:"

// RedisStore keeps call sessions in redis with a hard TTL as a backstop in
// addition to the explicit sweep.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Get(ctx context.Context, id string) (*CallSession, error) {
	raw, err := s.client.Get(ctx, keyPrefix+id).Result()
	if err == redis.Nil {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get call session: %w", err)
	}

	var sess CallSession
	if err := json.Unmarshal([]byte(raw), &sess); err != nil {
		return nil, fmt.Errorf("failed to decode call session: %w", err)
	}
	return &sess, nil
}

func (s *RedisStore) Put(ctx context.Context, sess *CallSession) error {
	raw, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to encode call session: %w", err)
	}
	if err := s.client.Set(ctx, keyPrefix+sess.ID, raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store call session: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, keyPrefix+id).Err(); err != nil {
		return fmt.Errorf("failed to delete call session: %w", err)
	}
	return nil
}

// Sweep scans for sessions whose last activity is older than maxAge and
// evicts them. Redis TTL already caps the absolute lifetime; the sweep
// catches calls abandoned mid-way.
func (s *RedisStore) Sweep(ctx context.Context, maxAge time.Duration) (int, error) {
	cutoff := time.Now().Add(-maxAge)
	evicted := 0

	iter := s.client.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		raw, err := s.client.Get(ctx, key).Result()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			return evicted, fmt.Errorf("failed to read session during sweep: %w", err)
		}

		var sess CallSession
		if err := json.Unmarshal([]byte(raw), &sess); err != nil {
			// Unreadable entries are evicted rather than left to rot.
			_ = s.client.Del(ctx, key).Err()
			evicted++
			continue
		}
		if sess.LastActivity.Before(cutoff) {
			if err := s.client.Del(ctx, key).Err(); err != nil {
				return evicted, fmt.Errorf("failed to evict session: %w", err)
			}
			evicted++
		}
	}
	if err := iter.Err(); err != nil {
		return evicted, fmt.Errorf("session sweep scan failed: %w", err)
	}
	return evicted, nil
}
