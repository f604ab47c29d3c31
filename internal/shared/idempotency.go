package shared

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// IdempotencyHeader carries the client-chosen key on submission routes.
const IdempotencyHeader = "Idempotency-Key"

// ErrIdempotencyConflict indicates a duplicate key.
var ErrIdempotencyConflict = Conflict("request already processed")

// IdempotencyStore remembers processed submission keys in redis.
type IdempotencyStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewIdempotencyStore constructs the store.
func NewIdempotencyStore(client *redis.Client, ttl time.Duration) *IdempotencyStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &IdempotencyStore{client: client, ttl: ttl}
}

// CheckAndInsert claims key for module. An empty key is a no-op so clients
// that do not send the header are unaffected.
func (s *IdempotencyStore) CheckAndInsert(ctx context.Context, key, module string) error {
	if s == nil || key == "" {
		return nil
	}
	if module == "" {
		return errors.New("idempotency module required")
	}
	ok, err := s.client.SetNX(ctx, s.redisKey(module, key), time.Now().UTC().Format(time.RFC3339), s.ttl).Result()
	if err != nil {
		return err
	}
	if !ok {
		return ErrIdempotencyConflict
	}
	return nil
}

// Delete releases a key, typically used to roll back failed processing.
func (s *IdempotencyStore) Delete(ctx context.Context, key, module string) error {
	if s == nil || key == "" {
		return nil
	}
	return s.client.Del(ctx, s.redisKey(module, key)).Err()
}

func (s *IdempotencyStore) redisKey(module, key string) string {
	return "idem:" + module + ":" + key
}
