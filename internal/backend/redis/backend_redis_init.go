// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/apex/log"
	goredis "github.com/redis/go-redis/v9"
)

type BackendRedisOption = func(ctx context.Context, be *BackendRedis) error

// NewBackendRedis connects and pings the server before returning.
func NewBackendRedis(ctx context.Context, options ...BackendRedisOption) (*BackendRedis, error) {
	options = append([]BackendRedisOption{WithDefaults()}, options...)

	be := &BackendRedis{}
	for _, opt := range options {
		if err := opt(ctx, be); err != nil {
			return nil, err
		}
	}

	be.rdb = NewClient(be.Addr, be.password, be.DB)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := be.rdb.Ping(pingCtx).Err(); err != nil {
		_ = be.rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	log.Debugf("NewBackendRedis: %s", be)
	return be, nil
}

// NewClient builds the go-redis client shared by the backend and the
// notification channel.
func NewClient(addr, password string, db int) *goredis.Client {
	return goredis.NewClient(&goredis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
}

func WithDefaults() BackendRedisOption {
	return func(ctx context.Context, be *BackendRedis) error {
		be.Addr = "localhost:6379"
		be.Prefix = "theoryctl"
		return nil
	}
}

func WithAddr(addr string) BackendRedisOption {
	return func(ctx context.Context, be *BackendRedis) error {
		if addr != "" {
			be.Addr = addr
		}
		return nil
	}
}

func WithPassword(password string) BackendRedisOption {
	return func(ctx context.Context, be *BackendRedis) error {
		be.password = password
		return nil
	}
}

func WithDB(db int) BackendRedisOption {
	return func(ctx context.Context, be *BackendRedis) error {
		be.DB = db
		return nil
	}
}

func WithPrefix(prefix string) BackendRedisOption {
	return func(ctx context.Context, be *BackendRedis) error {
		be.Prefix = prefix
		return nil
	}
}
