// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staranto/theoryctl/internal/backend/kv"
)

func newTestBackend(t *testing.T, opts ...BackendSQLiteOption) *BackendSQLite {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", "history.db")
	be, err := NewBackendSQLite(context.Background(), append([]BackendSQLiteOption{WithPath(path)}, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { be.Close() })
	return be
}

func TestBackendSQLiteRoundTrip(t *testing.T) {
	ctx := context.Background()
	be := newTestBackend(t)

	_, err := be.Get(ctx, "log")
	assert.ErrorIs(t, err, kv.ErrNotFound)

	require.NoError(t, be.Put(ctx, "log", []byte(`[1]`)))
	require.NoError(t, be.Put(ctx, "log", []byte(`[1,2]`)))

	got, tok, err := be.GetVersioned(ctx, "log")
	require.NoError(t, err)
	assert.Equal(t, `[1,2]`, string(got))
	assert.Equal(t, "2", tok)

	require.NoError(t, be.Delete(ctx, "log"))
	require.NoError(t, be.Delete(ctx, "log"))
	_, err = be.Get(ctx, "log")
	assert.ErrorIs(t, err, kv.ErrNotFound)
}

func TestBackendSQLitePersistsAcrossOpen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "history.db")

	be, err := NewBackendSQLite(ctx, WithPath(path))
	require.NoError(t, err)
	require.NoError(t, be.Put(ctx, "log", []byte("kept")))
	require.NoError(t, be.Close())

	be, err = NewBackendSQLite(ctx, WithPath(path))
	require.NoError(t, err)
	defer be.Close()

	got, err := be.Get(ctx, "log")
	require.NoError(t, err)
	assert.Equal(t, "kept", string(got))
}

func TestBackendSQLiteQuota(t *testing.T) {
	ctx := context.Background()
	be := newTestBackend(t, WithQuota(8))

	require.NoError(t, be.Put(ctx, "a", []byte("12345")))
	assert.ErrorIs(t, be.Put(ctx, "b", []byte("1234")), kv.ErrQuotaExceeded)
	require.NoError(t, be.Put(ctx, "a", []byte("12345678")))

	got, err := be.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "12345678", string(got))
}

func TestBackendSQLitePutIf(t *testing.T) {
	ctx := context.Background()
	be := newTestBackend(t)

	require.NoError(t, be.PutIf(ctx, "log", []byte("a"), ""))
	assert.ErrorIs(t, be.PutIf(ctx, "log", []byte("b"), ""), kv.ErrConflict)

	_, tok, err := be.GetVersioned(ctx, "log")
	require.NoError(t, err)
	require.NoError(t, be.PutIf(ctx, "log", []byte("b"), tok))
	assert.ErrorIs(t, be.PutIf(ctx, "log", []byte("c"), tok), kv.ErrConflict)

	got, err := be.Get(ctx, "log")
	require.NoError(t, err)
	assert.Equal(t, "b", string(got))
}

func TestMapErrorPassThrough(t *testing.T) {
	base := errors.New("disk I/O error")
	err := mapError("put", "k", base)
	assert.ErrorIs(t, err, base)
	assert.NotErrorIs(t, err, kv.ErrQuotaExceeded)
}

func TestDSN(t *testing.T) {
	d := dsn("/tmp/h.db")
	assert.Contains(t, d, "file:/tmp/h.db?")
	assert.Contains(t, d, "_txlock=immediate")
	assert.Contains(t, d, "busy_timeout%2810000%29")
}
