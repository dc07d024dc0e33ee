// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/apex/log"
	goredis "github.com/redis/go-redis/v9"

	"github.com/staranto/theoryctl/internal/backend/kv"
)

// BackendRedis stores each key as a Redis string under Prefix.
type BackendRedis struct {
	Addr   string
	DB     int
	Prefix string

	password string
	rdb      *goredis.Client
}

func (be *BackendRedis) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := be.rdb.Get(ctx, be.redisKey(key)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, kv.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return data, nil
}

func (be *BackendRedis) Put(ctx context.Context, key string, value []byte) error {
	if err := be.rdb.Set(ctx, be.redisKey(key), value, 0).Err(); err != nil {
		return mapError("set", key, err)
	}
	log.Debugf("redis put: key=%s bytes=%d", be.redisKey(key), len(value))
	return nil
}

func (be *BackendRedis) Delete(ctx context.Context, key string) error {
	if err := be.rdb.Del(ctx, be.redisKey(key)).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

// GetVersioned uses a content hash as the token.
func (be *BackendRedis) GetVersioned(ctx context.Context, key string) ([]byte, string, error) {
	data, err := be.Get(ctx, key)
	if err != nil {
		return nil, "", err
	}
	return data, kv.Token(data), nil
}

// PutIf compares and writes inside WATCH/MULTI so a concurrent writer aborts
// the transaction.
func (be *BackendRedis) PutIf(ctx context.Context, key string, value []byte, token string) error {
	rk := be.redisKey(key)

	err := be.rdb.Watch(ctx, func(tx *goredis.Tx) error {
		current := ""
		data, err := tx.Get(ctx, rk).Bytes()
		switch {
		case errors.Is(err, goredis.Nil):
		case err != nil:
			return err
		default:
			current = kv.Token(data)
		}

		if current != token {
			return kv.ErrConflict
		}

		_, err = tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
			pipe.Set(ctx, rk, value, 0)
			return nil
		})
		return err
	}, rk)

	switch {
	case err == nil:
		return nil
	case errors.Is(err, kv.ErrConflict), errors.Is(err, goredis.TxFailedErr):
		return kv.ErrConflict
	}
	return mapError("cas", key, err)
}

func (be *BackendRedis) String() string {
	return fmt.Sprintf("backend-redis:%s/%d", be.Addr, be.DB)
}

func (be *BackendRedis) Close() error {
	if be.rdb == nil {
		return nil
	}
	return be.rdb.Close()
}

func (be *BackendRedis) redisKey(key string) string {
	if be.Prefix == "" {
		return key
	}
	return be.Prefix + ":" + key
}

// mapError reports maxmemory rejections as ErrQuotaExceeded.
func mapError(op, key string, err error) error {
	if isOOM(err) {
		return fmt.Errorf("%w: %v", kv.ErrQuotaExceeded, err)
	}
	return fmt.Errorf("redis %s %s: %w", op, key, err)
}

func isOOM(err error) bool {
	return err != nil && strings.HasPrefix(err.Error(), "OOM ")
}
