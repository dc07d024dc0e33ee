// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package local

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/gofrs/flock"

	"github.com/staranto/theoryctl/internal/backend/kv"
)

// lockWait bounds how long PutIf waits for another writer's lock.
const lockWait = 2 * time.Second

// BackendLocal stores each key as one file below RootDir.
type BackendLocal struct {
	Ctx     context.Context
	RootDir string
	Quota   int64
}

func (be *BackendLocal) Get(_ context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(be.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, kv.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return data, nil
}

// Put writes to a temp file in the same directory and renames it over the
// target so the previous value survives any failure.
func (be *BackendLocal) Put(_ context.Context, key string, value []byte) error {
	if err := be.checkQuota(key, value); err != nil {
		return err
	}

	target := be.path(key)
	tmp, err := os.CreateTemp(be.RootDir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck

	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", key, mapDiskFull(err))
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync %s: %w", key, mapDiskFull(err))
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", key, err)
	}

	if err := os.Rename(tmp.Name(), target); err != nil {
		return fmt.Errorf("failed to replace %s: %w", key, err)
	}
	log.Debugf("local put: key=%s bytes=%d", key, len(value))
	return nil
}

func (be *BackendLocal) Delete(_ context.Context, key string) error {
	err := os.Remove(be.path(key))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// GetVersioned uses a content hash as the token.
func (be *BackendLocal) GetVersioned(ctx context.Context, key string) ([]byte, string, error) {
	data, err := be.Get(ctx, key)
	if err != nil {
		return nil, "", err
	}
	return data, kv.Token(data), nil
}

// PutIf holds a file lock next to the key while it compares and writes, which
// also serializes writers from other processes.
func (be *BackendLocal) PutIf(ctx context.Context, key string, value []byte, token string) error {
	unlock, err := be.lock(ctx, key)
	if err != nil {
		return err
	}
	defer unlock()

	current := ""
	data, err := be.Get(ctx, key)
	switch {
	case err == nil:
		current = kv.Token(data)
	case !errors.Is(err, kv.ErrNotFound):
		return err
	}

	if current != token {
		return kv.ErrConflict
	}
	return be.Put(ctx, key, value)
}

func (be *BackendLocal) String() string {
	return "backend-local:" + be.RootDir
}

func (be *BackendLocal) path(key string) string {
	return filepath.Join(be.RootDir, url.PathEscape(key))
}

func (be *BackendLocal) checkQuota(key string, value []byte) error {
	if be.Quota <= 0 {
		return nil
	}

	var used int64
	skip := filepath.Base(be.path(key))
	entries, err := os.ReadDir(be.RootDir)
	if err != nil {
		return fmt.Errorf("failed to read store: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() || e.Name() == skip || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if info, err := e.Info(); err == nil {
			used += info.Size()
		}
	}
	return kv.CheckQuota(be.Quota, used, int64(len(value)))
}

// lock takes an advisory file lock beside key. The kernel drops the lock if
// the holder dies, so a crashed writer never blocks the next one.
func (be *BackendLocal) lock(ctx context.Context, key string) (func(), error) {
	fl := flock.New(filepath.Join(be.RootDir, "."+url.PathEscape(key)+".lock"))

	wctx, cancel := context.WithTimeout(ctx, lockWait)
	defer cancel()

	ok, err := fl.TryLockContext(wctx, 10*time.Millisecond)
	if ok {
		return func() {
			if err := fl.Unlock(); err != nil {
				log.Warnf("failed to unlock %s: %v", fl.Path(), err)
			}
		}, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if err == nil || errors.Is(err, context.DeadlineExceeded) {
		return nil, fmt.Errorf("%w: %s is locked", kv.ErrConflict, key)
	}
	return nil, fmt.Errorf("failed to lock %s: %w", key, err)
}

// mapDiskFull turns ENOSPC and EDQUOT into ErrQuotaExceeded.
func mapDiskFull(err error) error {
	if isDiskFull(err) {
		return fmt.Errorf("%w: %v", kv.ErrQuotaExceeded, err)
	}
	return err
}
