// Package metadata implements the durable key/value Session Store used by
// the client. One key holds the bearer token and another the install
// fingerprint; the store has no other tenants.
package metadata

import (
	"context"
)

// Repository is a small key/value surface. Get returns (nil, nil) for an
// absent key.
//
// CompareAndDelete removes key only while it still holds expected and
// reports whether it did. It is the compare-and-clear primitive the session
// manager relies on when a slow validation wants to discard a token that a
// concurrent flow may already have replaced.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	CompareAndDelete(ctx context.Context, key string, expected []byte) (bool, error)
	// SetIfAbsent stores value unless key already exists and returns what
	// the store holds afterwards.
	SetIfAbsent(ctx context.Context, key string, value []byte) ([]byte, error)
}
