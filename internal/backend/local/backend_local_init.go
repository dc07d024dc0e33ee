// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package local

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/apex/log"
)

type BackendLocalOption = func(ctx context.Context, be *BackendLocal) error

// FromRootDir stores values below rootDir. Relative paths resolve against
// the working directory.
func FromRootDir(rootDir string) BackendLocalOption {
	return func(ctx context.Context, be *BackendLocal) error {
		if rootDir == "" {
			return nil
		}

		if filepath.IsAbs(rootDir) {
			be.RootDir = rootDir
		} else {
			cwd, _ := os.Getwd()
			be.RootDir = filepath.Join(cwd, rootDir)
		}

		log.Debugf("NewBackendLocal FromRootDir(): rootDir = %s", be.RootDir)
		return nil
	}
}

// NewBackendLocal returns a BackendLocal whose root directory exists.
func NewBackendLocal(ctx context.Context, options ...BackendLocalOption) (*BackendLocal, error) {
	options = append([]BackendLocalOption{WithDefaults()}, options...)

	be := &BackendLocal{Ctx: ctx}

	for _, opt := range options {
		if err := opt(ctx, be); err != nil {
			return nil, err
		}
	}

	if err := be.load(); err != nil {
		return nil, err
	}

	return be, nil
}

// WithDefaults places the store in the user config directory.
func WithDefaults() BackendLocalOption {
	return func(ctx context.Context, be *BackendLocal) error {
		dir, err := os.UserConfigDir()
		if err != nil {
			cwd, _ := os.Getwd()
			dir = cwd
		}
		be.RootDir = filepath.Join(dir, "theoryctl", "store")
		return nil
	}
}

// WithQuota caps the bytes stored across all keys.
func WithQuota(bytes int64) BackendLocalOption {
	return func(ctx context.Context, be *BackendLocal) error {
		be.Quota = bytes
		return nil
	}
}

// load makes sure the root directory exists and is a directory.
func (be *BackendLocal) load() error {
	if err := os.MkdirAll(be.RootDir, 0o755); err != nil { //nolint:mnd
		return fmt.Errorf("failed to create store directory: %w", err)
	}

	info, err := os.Stat(be.RootDir)
	if err != nil {
		return fmt.Errorf("failed to stat store directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("store path is not a directory: %s", be.RootDir)
	}
	return nil
}
