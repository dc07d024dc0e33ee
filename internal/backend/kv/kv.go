// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package kv

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned by Get when the key does not exist.
	ErrNotFound = errors.New("key not found")
	// ErrQuotaExceeded is returned by Put when the store's capacity would be
	// exceeded. The previously stored value is left untouched.
	ErrQuotaExceeded = errors.New("storage quota exceeded")
	// ErrConflict is returned by PutIf when the stored value changed since it
	// was read.
	ErrConflict = errors.New("write conflict")
)

// Store is a flat key/value store. Put replaces the whole value in one
// atomic write; readers see either the old or the new value, never a mix.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	String() string
}

// Versioned is implemented by stores that can guard a read-modify-write with
// an optimistic token. An empty token means "the key must not exist".
type Versioned interface {
	GetVersioned(ctx context.Context, key string) ([]byte, string, error)
	PutIf(ctx context.Context, key string, value []byte, token string) error
}

// Closer is implemented by stores holding connections.
type Closer interface {
	Close() error
}

// CheckQuota returns ErrQuotaExceeded when writing size bytes on top of used
// bytes passes quota. A quota <= 0 means unlimited.
func CheckQuota(quota, used, size int64) error {
	if quota <= 0 || used+size <= quota {
		return nil
	}
	return fmt.Errorf("%w: %d bytes needed, %d of %d available", ErrQuotaExceeded, size, max(quota-used, 0), quota)
}

// Token derives a content token for stores without native revisions.
func Token(value []byte) string {
	sum := sha256.Sum256(value)
	return hex.EncodeToString(sum[:])
}
