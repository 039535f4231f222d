// Package datastore provides the key-value store the smart store engine
// persists its top-level records into.
//
// Values are opaque bytes (JSON documents in practice). Backends are swappable
// without touching the engine: InMemory for tests and single-process runs,
// Redis and Postgres for shared deployments.
package datastore

//go:generate mockgen -source=datastore.go -destination=mocks/mocks.go -package=mocks DataStore

import (
	"context"
	"encoding/json"
	"fmt"
)

// DataStore is the key-value contract. Get returns sentinel.ErrNotFound for
// absent keys. PutAll writes every entry or none.
type DataStore interface {
	Put(ctx context.Context, key string, value []byte) error
	PutAll(ctx context.Context, entries map[string][]byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	ContainsKey(ctx context.Context, key string) (bool, error)
	Remove(ctx context.Context, key string) error
	Keys(ctx context.Context, prefix string) ([]string, error)
	Size(ctx context.Context) (int, error)
	Clear(ctx context.Context) error
	Close() error
}

// Key prefixes of the records the engine persists.
const (
	PrefixStores    = "stores/"
	PrefixProducts  = "products/"
	PrefixCustomers = "customers/"
	PrefixBaskets   = "baskets/"
	PrefixUsers     = "users/"
)

// Key joins a prefix and an id.
func Key(prefix, id string) string {
	return prefix + id
}

// Encode marshals v for storage.
func Encode(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode value: %w", err)
	}
	return b, nil
}

// Decode unmarshals a stored value into v.
func Decode(b []byte, v any) error {
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("decode value: %w", err)
	}
	return nil
}

// LoadAll decodes every value under prefix through fn.
func LoadAll(ctx context.Context, ds DataStore, prefix string, fn func(key string, value []byte) error) error {
	keys, err := ds.Keys(ctx, prefix)
	if err != nil {
		return fmt.Errorf("list %s: %w", prefix, err)
	}
	for _, k := range keys {
		v, err := ds.Get(ctx, k)
		if err != nil {
			return fmt.Errorf("load %s: %w", k, err)
		}
		if err := fn(k, v); err != nil {
			return err
		}
	}
	return nil
}
