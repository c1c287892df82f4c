// Package storage provides the opaque key-value blob store behind
// session persistence.
//
// The desktop core never interprets blob contents; keys are flat
// strings with "/" used as an informal namespace separator. Two
// implementations are provided: an in-memory store for tests and a
// file-backed store with gzip compression.
package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a key has no blob
var ErrNotFound = errors.New("blob not found")

// Store is an opaque key-value blob store
type Store interface {
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
	List(ctx context.Context, prefix string) ([]string, error)
}
