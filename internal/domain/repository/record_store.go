// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import (
	"context"
	"errors"
)

// ErrRecordNotFound is returned when no record exists under a key.
var ErrRecordNotFound = errors.New("record not found")

// RecordStore is a flat key-value store of opaque serialised records.
// Writes overwrite the whole record; there is no atomicity across keys.
type RecordStore interface {
	// Get returns the bytes stored under key, or ErrRecordNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put overwrites the record stored under key.
	Put(ctx context.Context, key string, value []byte) error

	// Delete removes the record; deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}
