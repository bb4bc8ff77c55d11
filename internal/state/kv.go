// Package state persists terminal session state (filters, UI preferences)
// under a single root key, split into named segments. Older deployments
// wrote some fields directly at the root; segments shadow those fields and
// keep them in sync for readers that still expect them there.
package state

import (
	"context"
	"sync"

	"github.com/redis/go-redis/v9"
)

// KV is the minimal persistence contract. Get returns (nil, nil) when the
// key is absent.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// RedisKV stores state in Redis without expiry.
type RedisKV struct {
	rdb *redis.Client
}

func NewRedisKV(rdb *redis.Client) *RedisKV { return &RedisKV{rdb: rdb} }

func (kv *RedisKV) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := kv.rdb.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	return data, err
}

func (kv *RedisKV) Set(ctx context.Context, key string, value []byte) error {
	return kv.rdb.Set(ctx, key, value, 0).Err()
}

// MemoryKV is the in-memory implementation used by tests.
type MemoryKV struct {
	mu   sync.Mutex
	data map[string][]byte
}

func NewMemoryKV() *MemoryKV { return &MemoryKV{data: make(map[string][]byte)} }

func (kv *MemoryKV) Get(_ context.Context, key string) ([]byte, error) {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	value, ok := kv.data[key]
	if !ok {
		return nil, nil
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

func (kv *MemoryKV) Set(_ context.Context, key string, value []byte) error {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	stored := make([]byte, len(value))
	copy(stored, value)
	kv.data[key] = stored
	return nil
}
