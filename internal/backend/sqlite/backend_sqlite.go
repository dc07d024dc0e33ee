// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/apex/log"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/staranto/theoryctl/internal/backend/kv"
)

const schema = `CREATE TABLE IF NOT EXISTS kv (
	key   TEXT PRIMARY KEY,
	value BLOB NOT NULL,
	rev   INTEGER NOT NULL DEFAULT 1
)`

// BackendSQLite keeps every key as one row. rev increases on each write and
// doubles as the compare-and-swap token.
type BackendSQLite struct {
	Path  string
	Quota int64

	db *sql.DB
}

func (be *BackendSQLite) Get(ctx context.Context, key string) ([]byte, error) {
	data, _, err := be.GetVersioned(ctx, key)
	return data, err
}

func (be *BackendSQLite) GetVersioned(ctx context.Context, key string) ([]byte, string, error) {
	var (
		data []byte
		rev  int64
	)
	err := be.db.QueryRowContext(ctx, `SELECT value, rev FROM kv WHERE key = ?`, key).Scan(&data, &rev)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", kv.ErrNotFound
	}
	if err != nil {
		return nil, "", fmt.Errorf("sqlite get %s: %w", key, err)
	}
	return data, strconv.FormatInt(rev, 10), nil
}

func (be *BackendSQLite) Put(ctx context.Context, key string, value []byte) error {
	return be.write(ctx, key, value, nil)
}

// PutIf writes only if the row's rev still equals token. An empty token
// requires that the row does not exist.
func (be *BackendSQLite) PutIf(ctx context.Context, key string, value []byte, token string) error {
	return be.write(ctx, key, value, &token)
}

func (be *BackendSQLite) write(ctx context.Context, key string, value []byte, token *string) error {
	tx, err := be.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if token != nil {
		current := ""
		var rev int64
		err := tx.QueryRowContext(ctx, `SELECT rev FROM kv WHERE key = ?`, key).Scan(&rev)
		switch {
		case errors.Is(err, sql.ErrNoRows):
		case err != nil:
			return fmt.Errorf("sqlite rev %s: %w", key, err)
		default:
			current = strconv.FormatInt(rev, 10)
		}
		if current != *token {
			return kv.ErrConflict
		}
	}

	if be.Quota > 0 {
		var used int64
		err := tx.QueryRowContext(ctx,
			`SELECT COALESCE(SUM(length(value)), 0) FROM kv WHERE key <> ?`, key).Scan(&used)
		if err != nil {
			return fmt.Errorf("sqlite usage: %w", err)
		}
		if err := kv.CheckQuota(be.Quota, used, int64(len(value))); err != nil {
			return err
		}
	}

	_, err = tx.ExecContext(ctx, `INSERT INTO kv (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, rev = kv.rev + 1`, key, value)
	if err != nil {
		return mapError("put", key, err)
	}

	if err := tx.Commit(); err != nil {
		return mapError("commit", key, err)
	}
	log.Debugf("sqlite put: key=%s bytes=%d", key, len(value))
	return nil
}

func (be *BackendSQLite) Delete(ctx context.Context, key string) error {
	if _, err := be.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key); err != nil {
		return fmt.Errorf("sqlite delete %s: %w", key, err)
	}
	return nil
}

func (be *BackendSQLite) String() string {
	return "backend-sqlite:" + be.Path
}

func (be *BackendSQLite) Close() error {
	if be.db == nil {
		return nil
	}
	return be.db.Close()
}

// mapError reports SQLITE_FULL as ErrQuotaExceeded and SQLITE_BUSY as
// ErrConflict.
func mapError(op, key string, err error) error {
	var se *sqlite.Error
	if errors.As(err, &se) {
		switch se.Code() & 0xff {
		case sqlite3.SQLITE_FULL:
			return fmt.Errorf("%w: %v", kv.ErrQuotaExceeded, err)
		case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
			return fmt.Errorf("%w: %v", kv.ErrConflict, err)
		}
	}
	return fmt.Errorf("sqlite %s %s: %w", op, key, err)
}
