// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/apex/log"
)

type BackendSQLiteOption = func(ctx context.Context, be *BackendSQLite) error

// NewBackendSQLite opens (creating if needed) the database and its table.
func NewBackendSQLite(ctx context.Context, options ...BackendSQLiteOption) (*BackendSQLite, error) {
	options = append([]BackendSQLiteOption{WithDefaults()}, options...)

	be := &BackendSQLite{}
	for _, opt := range options {
		if err := opt(ctx, be); err != nil {
			return nil, err
		}
	}

	if err := os.MkdirAll(filepath.Dir(be.Path), 0o755); err != nil { //nolint:mnd
		return nil, fmt.Errorf("sqlite mkdir: %w", err)
	}

	db, err := sql.Open("sqlite", dsn(be.Path))
	if err != nil {
		return nil, fmt.Errorf("sqlite open: %w", err)
	}
	// One writer connection keeps transactions serialized within the process.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite schema: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite ping: %w", err)
	}

	be.db = db
	log.Debugf("NewBackendSQLite: %s", be)
	return be, nil
}

// dsn applies the pragmas on every connection and takes the write lock at
// BEGIN so concurrent processes fail fast instead of deadlocking.
func dsn(path string) string {
	q := url.Values{}
	q.Add("_pragma", "busy_timeout(10000)")
	q.Add("_pragma", "journal_mode(WAL)")
	q.Add("_pragma", "synchronous(NORMAL)")
	q.Set("_txlock", "immediate")
	return "file:" + path + "?" + q.Encode()
}

func WithDefaults() BackendSQLiteOption {
	return func(ctx context.Context, be *BackendSQLite) error {
		dir, err := os.UserConfigDir()
		if err != nil {
			dir, _ = os.Getwd()
		}
		be.Path = filepath.Join(dir, "theoryctl", "history.db")
		return nil
	}
}

func WithPath(path string) BackendSQLiteOption {
	return func(ctx context.Context, be *BackendSQLite) error {
		if path != "" {
			be.Path = path
		}
		return nil
	}
}

func WithQuota(bytes int64) BackendSQLiteOption {
	return func(ctx context.Context, be *BackendSQLite) error {
		be.Quota = bytes
		return nil
	}
}
