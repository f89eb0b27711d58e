// Package idempotency caches the first response to a mutation carrying an
// Idempotency-Key header, so retries return the original response instead of
// re-running the mutation (spec.md §4.5 step 4, §6 "Idempotency-Key").
package idempotency

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
)

// ErrMismatch is returned by Store.Put when a key is replayed with a
// different request body than the one it was first recorded against.
var ErrMismatch = errors.New("idempotency: key reused with a different request body")

// Record is the cached first response for one (tenant, idempotency key)
// pair, plus a hash of the request body it was recorded against.
type Record struct {
	RequestHash string            `json:"request_hash"`
	StatusCode  int               `json:"status_code"`
	Headers     map[string]string `json:"headers"`
	Body        []byte            `json:"body"`
}

// HashRequestBody hashes a request body for Record.RequestHash comparisons.
func HashRequestBody(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}

// Store persists idempotency records, scoped per tenant so one tenant's key
// namespace never collides with another's.
type Store interface {
	// Get returns the cached record for (tenantID, key), if any.
	Get(ctx context.Context, tenantID, key string) (*Record, error)
	// Put records rec for (tenantID, key) if no record exists yet. If one
	// already exists with a different RequestHash, it returns ErrMismatch
	// without overwriting the stored record.
	Put(ctx context.Context, tenantID, key string, rec Record, ttl time.Duration) error
}

// RedisStore is a Store backed by a redis.Client.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore wraps client as a Store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func cacheKey(tenantID, key string) string {
	return "idis:idempotency:" + tenantID + ":" + key
}

// Get implements Store.
func (s *RedisStore) Get(ctx context.Context, tenantID, key string) (*Record, error) {
	raw, err := s.client.Get(ctx, cacheKey(tenantID, key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Put implements Store. It uses SETNX so two concurrent requests racing to
// record the same key can never both win: the loser reads back the winner's
// record and compares hashes instead of clobbering it.
func (s *RedisStore) Put(ctx context.Context, tenantID, key string, rec Record, ttl time.Duration) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	ck := cacheKey(tenantID, key)
	ok, err := s.client.SetNX(ctx, ck, raw, ttl).Result()
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	existing, err := s.Get(ctx, tenantID, key)
	if err != nil {
		return err
	}
	if existing != nil && existing.RequestHash != rec.RequestHash {
		return ErrMismatch
	}
	return nil
}
