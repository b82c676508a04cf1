package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const idempotencyKeyPrefix = "idempotency:"

// CachedResponse is the record kept per idempotency key. While the first
// request is still running the record is Pending and carries no response.
type CachedResponse struct {
	Pending     bool   `json:"pending,omitempty"`
	RequestHash string `json:"requestHash"`
	Status      int    `json:"status,omitempty"`
	ContentType string `json:"contentType,omitempty"`
	Body        []byte `json:"body,omitempty"`
}

// IdempotencyStore keeps the first successful response per idempotency key.
type IdempotencyStore struct {
	redis *Redis
}

// NewIdempotencyStore builds a store on top of the shared Redis client.
func NewIdempotencyStore(r *Redis) *IdempotencyStore {
	return &IdempotencyStore{redis: r}
}

// Reserve claims key for a request with the given fingerprint. It reports
// false when the key is already claimed or completed.
func (s *IdempotencyStore) Reserve(ctx context.Context, key, requestHash string, ttl time.Duration) (bool, error) {
	if !s.redis.Enabled() {
		return false, ErrRedisDisabled
	}
	raw, err := json.Marshal(CachedResponse{Pending: true, RequestHash: requestHash})
	if err != nil {
		return false, err
	}
	return s.redis.Client.SetNX(ctx, idempotencyKeyPrefix+key, raw, ttl).Result()
}

// Lookup returns the stored record, or nil when the key is unknown.
func (s *IdempotencyStore) Lookup(ctx context.Context, key string) (*CachedResponse, error) {
	if !s.redis.Enabled() {
		return nil, ErrRedisDisabled
	}
	raw, err := s.redis.Client.Get(ctx, idempotencyKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var resp CachedResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("decode cached response: %w", err)
	}
	return &resp, nil
}

// Complete replaces the pending claim with the final response.
func (s *IdempotencyStore) Complete(ctx context.Context, key string, resp CachedResponse, ttl time.Duration) error {
	if !s.redis.Enabled() {
		return ErrRedisDisabled
	}
	resp.Pending = false
	raw, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	return s.redis.Client.Set(ctx, idempotencyKeyPrefix+key, raw, ttl).Err()
}

// Release drops a claim so the key can be retried.
func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	if !s.redis.Enabled() {
		return ErrRedisDisabled
	}
	return s.redis.Client.Del(ctx, idempotencyKeyPrefix+key).Err()
}
