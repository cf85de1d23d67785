package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// IdempotencyStore remembers the first response per (caller, key) so a
// retried assignment mutation replays instead of double-binding a driver.
type IdempotencyStore struct {
	client *goredis.Client
	ttl    time.Duration
}

func NewIdempotencyStore(client *goredis.Client, ttlSeconds int) *IdempotencyStore {
	return &IdempotencyStore{
		client: client,
		ttl:    time.Duration(ttlSeconds) * time.Second,
	}
}

func (s *IdempotencyStore) Check(ctx context.Context, caller, key string) ([]byte, bool, error) {
	cached, err := s.client.Get(ctx, idempotencyKey(caller, key)).Bytes()
	if err == goredis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("check idempotency key: %w", err)
	}
	return cached, true, nil
}

// Set records the response under NX semantics: a concurrent duplicate keeps
// whichever response landed first.
func (s *IdempotencyStore) Set(ctx context.Context, caller, key string, response []byte) error {
	if _, err := s.client.SetNX(ctx, idempotencyKey(caller, key), response, s.ttl).Result(); err != nil {
		return fmt.Errorf("set idempotency key: %w", err)
	}
	return nil
}

func idempotencyKey(caller, key string) string {
	return fmt.Sprintf("dispatch:idem:%s:%s", caller, key)
}
