package datastore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"smartstore/pkg/platform/sentinel"
)

const scanBatch = 200

// Redis stores entries as plain string keys under a namespace so several
// deployments can share one Redis database.
type Redis struct {
	client    *redis.Client
	namespace string
}

// RedisOption configures a Redis store.
type RedisOption func(*Redis)

// WithNamespace sets the key namespace (default "smartstore:").
func WithNamespace(ns string) RedisOption {
	return func(r *Redis) {
		if ns != "" {
			r.namespace = ns
		}
	}
}

// NewRedis wraps an already connected client.
func NewRedis(client *redis.Client, opts ...RedisOption) *Redis {
	r := &Redis{client: client, namespace: "smartstore:"}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

func (r *Redis) key(k string) string {
	return r.namespace + k
}

func (r *Redis) Put(ctx context.Context, key string, value []byte) error {
	if err := r.client.Set(ctx, r.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("redis put %s: %w", key, err)
	}
	return nil
}

// PutAll writes every entry inside MULTI/EXEC.
func (r *Redis) PutAll(ctx context.Context, entries map[string][]byte) error {
	if len(entries) == 0 {
		return nil
	}
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for k, v := range entries {
			pipe.Set(ctx, r.key(k), v, 0)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis put batch: %w", err)
	}
	return nil
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := r.client.Get(ctx, r.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return v, nil
}

func (r *Redis) ContainsKey(ctx context.Context, key string) (bool, error) {
	n, err := r.client.Exists(ctx, r.key(key)).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists %s: %w", key, err)
	}
	return n > 0, nil
}

func (r *Redis) Remove(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.key(key)).Err(); err != nil {
		return fmt.Errorf("redis remove %s: %w", key, err)
	}
	return nil
}

// Keys scans for keys under prefix and returns them without the namespace.
func (r *Redis) Keys(ctx context.Context, prefix string) ([]string, error) {
	raw, err := r.scan(ctx, r.key(prefix)+"*")
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(raw))
	for _, k := range raw {
		keys = append(keys, strings.TrimPrefix(k, r.namespace))
	}
	return keys, nil
}

func (r *Redis) Size(ctx context.Context) (int, error) {
	raw, err := r.scan(ctx, r.namespace+"*")
	if err != nil {
		return 0, err
	}
	return len(raw), nil
}

// Clear deletes the namespace only; other keys in the database are left alone.
func (r *Redis) Clear(ctx context.Context) error {
	raw, err := r.scan(ctx, r.namespace+"*")
	if err != nil {
		return err
	}
	for start := 0; start < len(raw); start += scanBatch {
		end := min(start+scanBatch, len(raw))
		if err := r.client.Del(ctx, raw[start:end]...).Err(); err != nil {
			return fmt.Errorf("redis clear: %w", err)
		}
	}
	return nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}

func (r *Redis) scan(ctx context.Context, match string) ([]string, error) {
	var keys []string
	iter := r.client.Scan(ctx, 0, match, scanBatch).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("redis scan %s: %w", match, err)
	}
	return keys, nil
}
