// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package backend

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staranto/theoryctl/internal/backend/local"
	"github.com/staranto/theoryctl/internal/backend/memory"
	"github.com/staranto/theoryctl/internal/backend/sqlite"
	"github.com/staranto/theoryctl/internal/config"
)

func loadConfig(t *testing.T, body string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "theoryctl.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	t.Setenv("THEORYCTL_CFG_FILE", path)

	saved := config.Config
	config.Config = config.Type{}
	t.Cleanup(func() { config.Config = saved })

	_, err := config.Load()
	require.NoError(t, err)
}

func TestSettingsFromConfig(t *testing.T) {
	loadConfig(t, `
backend:
  type: s3
  quota: 4096
  s3:
    bucket: theory-history
    prefix: prod
    region: us-west-2
    endpoint: http://localhost:9000
    path_style: true
  redis:
    addr: cache:6379
    db: 3
`)

	s := SettingsFromConfig("")
	assert.Equal(t, "s3", s.Type)
	assert.Equal(t, int64(4096), s.Quota)
	assert.Equal(t, "theory-history", s.S3Bucket)
	assert.Equal(t, "prod", s.S3Prefix)
	assert.Equal(t, "us-west-2", s.S3Region)
	assert.Equal(t, "http://localhost:9000", s.S3Endpoint)
	assert.True(t, s.S3PathStyle)
	assert.Equal(t, "cache:6379", s.RedisAddr)
	assert.Equal(t, 3, s.RedisDB)

	assert.Equal(t, "memory", SettingsFromConfig("memory").Type)
}

func TestSettingsFromConfigDefaults(t *testing.T) {
	loadConfig(t, "data:\n  file: theories.json\n")

	s := SettingsFromConfig("")
	assert.Equal(t, "local", s.Type)
	assert.Zero(t, s.Quota)
	assert.False(t, s.S3PathStyle)
}

func TestNewBackend(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	tests := []struct {
		name     string
		settings Settings
		expect   any
	}{
		{"memory", Settings{Type: "memory", Quota: 10}, &memory.BackendMemory{}},
		{"local", Settings{Type: "local", LocalDir: filepath.Join(dir, "store")}, &local.BackendLocal{}},
		{"default is local", Settings{LocalDir: filepath.Join(dir, "store2")}, &local.BackendLocal{}},
		{"sqlite", Settings{Type: "SQLite", SQLitePath: filepath.Join(dir, "h.db")}, &sqlite.BackendSQLite{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st, err := NewBackend(ctx, tt.settings)
			require.NoError(t, err)
			assert.IsType(t, tt.expect, st)
			assert.NoError(t, Close(st))
		})
	}
}

func TestNewBackendUnknown(t *testing.T) {
	_, err := NewBackend(context.Background(), Settings{Type: "etcd"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "etcd")
}

func TestNewBackendS3NeedsBucket(t *testing.T) {
	_, err := NewBackend(context.Background(), Settings{Type: "s3"})
	assert.Error(t, err)
}

func TestStoresAreVersioned(t *testing.T) {
	ctx := context.Background()
	st, err := NewBackend(ctx, Settings{Type: "memory"})
	require.NoError(t, err)

	_, ok := st.(Versioned)
	assert.True(t, ok)
}
