// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package memory

import (
	"context"
	"strconv"
	"sync"

	"github.com/apex/log"

	"github.com/staranto/theoryctl/internal/backend/kv"
)

// BackendMemory keeps values in process memory. It is the store used by tests
// and by --backend memory, where nothing outlives the process.
type BackendMemory struct {
	mu      sync.Mutex
	data    map[string][]byte
	revs    map[string]int64
	Quota   int64
	FailErr error
}

// BackendMemoryOption configures a BackendMemory.
type BackendMemoryOption = func(be *BackendMemory) error

// NewBackendMemory returns an empty store.
func NewBackendMemory(options ...BackendMemoryOption) (*BackendMemory, error) {
	be := &BackendMemory{
		data: map[string][]byte{},
		revs: map[string]int64{},
	}
	for _, opt := range options {
		if err := opt(be); err != nil {
			return nil, err
		}
	}
	return be, nil
}

// WithQuota caps the total bytes held across all keys.
func WithQuota(bytes int64) BackendMemoryOption {
	return func(be *BackendMemory) error {
		be.Quota = bytes
		return nil
	}
}

// WithFailure makes every write fail with err.
func WithFailure(err error) BackendMemoryOption {
	return func(be *BackendMemory) error {
		be.FailErr = err
		return nil
	}
}

func (be *BackendMemory) Get(_ context.Context, key string) ([]byte, error) {
	be.mu.Lock()
	defer be.mu.Unlock()

	v, ok := be.data[key]
	if !ok {
		return nil, kv.ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (be *BackendMemory) Put(_ context.Context, key string, value []byte) error {
	be.mu.Lock()
	defer be.mu.Unlock()
	return be.put(key, value)
}

func (be *BackendMemory) Delete(_ context.Context, key string) error {
	be.mu.Lock()
	defer be.mu.Unlock()

	if be.FailErr != nil {
		return be.FailErr
	}
	delete(be.data, key)
	return nil
}

// GetVersioned returns the value with its revision number as token.
func (be *BackendMemory) GetVersioned(_ context.Context, key string) ([]byte, string, error) {
	be.mu.Lock()
	defer be.mu.Unlock()

	v, ok := be.data[key]
	if !ok {
		return nil, "", kv.ErrNotFound
	}
	return append([]byte(nil), v...), strconv.FormatInt(be.revs[key], 10), nil
}

// PutIf writes only when the current revision still matches token.
func (be *BackendMemory) PutIf(_ context.Context, key string, value []byte, token string) error {
	be.mu.Lock()
	defer be.mu.Unlock()

	_, exists := be.data[key]
	current := ""
	if exists {
		current = strconv.FormatInt(be.revs[key], 10)
	}
	if current != token {
		log.Debugf("memory conflict: key=%s have=%s want=%s", key, current, token)
		return kv.ErrConflict
	}
	return be.put(key, value)
}

func (be *BackendMemory) String() string {
	return "backend-memory"
}

// Used returns the bytes currently held.
func (be *BackendMemory) Used() int64 {
	be.mu.Lock()
	defer be.mu.Unlock()
	return be.usedExcept("")
}

func (be *BackendMemory) put(key string, value []byte) error {
	if be.FailErr != nil {
		return be.FailErr
	}
	if err := kv.CheckQuota(be.Quota, be.usedExcept(key), int64(len(key)+len(value))); err != nil {
		return err
	}
	be.data[key] = append([]byte(nil), value...)
	be.revs[key]++
	return nil
}

func (be *BackendMemory) usedExcept(key string) int64 {
	var n int64
	for k, v := range be.data {
		if k != key {
			n += int64(len(k) + len(v))
		}
	}
	return n
}
