package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore persists sessions in Redis with optimistic locking: Save watches
// the key and fails with ErrVersionConflict if another writer got there first.
type RedisStore struct {
	client redis.UniversalClient
	cfg    *storeConfig
}

func NewRedisStore(client redis.UniversalClient, opts ...StoreOption) (*RedisStore, error) {
	if client == nil {
		return nil, errors.New("redis client is required")
	}
	cfg := applyStoreOptions(opts)
	if cfg.ttl < 0 {
		return nil, errors.New("ttl must be >= 0")
	}
	return &RedisStore{client: client, cfg: cfg}, nil
}

func (s *RedisStore) Load(ctx context.Context, sessionID string) (*Session, error) {
	key, err := sessionKey(s.cfg.keyPrefix, sessionID)
	if err != nil {
		return nil, err
	}

	val, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrStateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get session: %w", err)
	}

	st, err := decodeSession(val)
	if err != nil {
		return nil, err
	}

	// Sliding expiry: an active conversation never times out mid-flow.
	if s.cfg.ttl > 0 {
		_ = s.client.Expire(ctx, key, s.cfg.ttl).Err()
	}
	return st, nil
}

func (s *RedisStore) Save(ctx context.Context, st *Session) error {
	if err := st.Validate(); err != nil {
		return err
	}
	key, err := sessionKey(s.cfg.keyPrefix, st.SessionID)
	if err != nil {
		return err
	}

	next := *st
	err = s.client.Watch(ctx, func(tx *redis.Tx) error {
		val, err := tx.Get(ctx, key).Bytes()
		switch {
		case errors.Is(err, redis.Nil):
		case err != nil:
			return err
		default:
			var stored Session
			if err := json.Unmarshal(val, &stored); err != nil {
				return fmt.Errorf("unmarshal stored session: %w", err)
			}
			if stored.Version != st.Version {
				return ErrVersionConflict
			}
		}

		next.Version = st.Version + 1
		next.UpdatedAt = s.cfg.now().UTC()
		if next.CreatedAt.IsZero() {
			next.CreatedAt = next.UpdatedAt
		}
		payload, err := json.Marshal(next)
		if err != nil {
			return fmt.Errorf("marshal session: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, s.cfg.ttl)
			return nil
		})
		return err
	}, key)
	if errors.Is(err, redis.TxFailedErr) {
		return ErrVersionConflict
	}
	if err != nil {
		return err
	}

	*st = next
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, sessionID string) error {
	key, err := sessionKey(s.cfg.keyPrefix, sessionID)
	if err != nil {
		return err
	}
	return s.client.Del(ctx, key).Err()
}
