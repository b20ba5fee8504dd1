// Package kv is the storage engine behind the persistence adapter: a plain
// byte-valued get/set map with several backends.
package kv

import "context"

// Store is a flat key-value map. Get reports ok=false for missing keys.
// Values are copied on the way in and out.
type Store interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, keys ...string) error
}
