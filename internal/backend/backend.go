// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package backend

import (
	"context"
	"fmt"
	"strings"

	"github.com/apex/log"

	"github.com/staranto/theoryctl/internal/backend/kv"
	"github.com/staranto/theoryctl/internal/backend/local"
	"github.com/staranto/theoryctl/internal/backend/memory"
	"github.com/staranto/theoryctl/internal/backend/redis"
	"github.com/staranto/theoryctl/internal/backend/s3"
	"github.com/staranto/theoryctl/internal/backend/sqlite"
	"github.com/staranto/theoryctl/internal/config"
)

type (
	Store     = kv.Store
	Versioned = kv.Versioned
	Closer    = kv.Closer
)

var (
	ErrNotFound      = kv.ErrNotFound
	ErrQuotaExceeded = kv.ErrQuotaExceeded
	ErrConflict      = kv.ErrConflict
)

// Types lists the accepted backend.type values.
var Types = []string{"local", "memory", "s3", "redis", "sqlite"}

// Settings selects and configures a backend.
type Settings struct {
	Type  string
	Quota int64

	LocalDir string

	S3Bucket    string
	S3Prefix    string
	S3Region    string
	S3Profile   string
	S3Endpoint  string
	S3PathStyle bool

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	SQLitePath string
}

// SettingsFromConfig reads the backend.* keys. A non-empty typ overrides
// backend.type.
func SettingsFromConfig(typ string) Settings {
	s := Settings{Type: typ}
	if s.Type == "" {
		s.Type, _ = config.GetString("backend.type", "local")
	}

	quota, _ := config.GetInt("backend.quota", 0)
	s.Quota = int64(quota)

	s.LocalDir, _ = config.GetString("backend.local.dir", "")

	s.S3Bucket, _ = config.GetString("backend.s3.bucket", "")
	s.S3Prefix, _ = config.GetString("backend.s3.prefix", "")
	s.S3Region, _ = config.GetString("backend.s3.region", "")
	s.S3Profile, _ = config.GetString("backend.s3.profile", "")
	s.S3Endpoint, _ = config.GetString("backend.s3.endpoint", "")
	s.S3PathStyle, _ = config.GetBool("backend.s3.path_style", false)

	s.RedisAddr, _ = config.GetString("backend.redis.addr", "")
	s.RedisPassword, _ = config.GetString("backend.redis.password", "")
	s.RedisDB, _ = config.GetInt("backend.redis.db", 0)

	s.SQLitePath, _ = config.GetString("backend.sqlite.path", "")
	return s
}

// NewBackend returns the Store named by s.Type.
func NewBackend(ctx context.Context, s Settings) (Store, error) {
	log.Debugf("NewBackend: type=%s", s.Type)

	switch strings.ToLower(s.Type) {
	case "", "local":
		return local.NewBackendLocal(ctx,
			local.FromRootDir(s.LocalDir),
			local.WithQuota(s.Quota),
		)
	case "memory":
		return memory.NewBackendMemory(memory.WithQuota(s.Quota))
	case "s3":
		return s3.NewBackendS3(ctx,
			s3.WithBucket(s.S3Bucket),
			s3.WithPrefix(s.S3Prefix),
			s3.WithRegion(s.S3Region),
			s3.WithProfile(s.S3Profile),
			s3.WithEndpoint(s.S3Endpoint, s.S3PathStyle),
		)
	case "redis":
		return redis.NewBackendRedis(ctx,
			redis.WithAddr(s.RedisAddr),
			redis.WithPassword(s.RedisPassword),
			redis.WithDB(s.RedisDB),
		)
	case "sqlite":
		return sqlite.NewBackendSQLite(ctx,
			sqlite.WithPath(s.SQLitePath),
			sqlite.WithQuota(s.Quota),
		)
	}

	return nil, fmt.Errorf("unknown backend type %q (want one of %s)", s.Type, strings.Join(Types, ", "))
}

// Close releases the store's connections if it holds any.
func Close(st Store) error {
	if c, ok := st.(Closer); ok {
		return c.Close()
	}
	return nil
}
