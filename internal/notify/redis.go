// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/apex/log"
	goredis "github.com/redis/go-redis/v9"

	backendredis "github.com/staranto/theoryctl/internal/backend/redis"
)

// DefaultChannel is the pub/sub channel events are published on.
const DefaultChannel = "theoryctl:theory_update"

// RedisConfig addresses the pub/sub server.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Channel  string
}

func (c RedisConfig) channel() string {
	if c.Channel == "" {
		return DefaultChannel
	}
	return c.Channel
}

type redisConn struct {
	rdb     *goredis.Client
	channel string
}

func (c *redisConn) Publish(ctx context.Context, ev Event) error {
	raw, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return c.rdb.Publish(ctx, c.channel, raw).Err()
}

func (c *redisConn) Close() error {
	return c.rdb.Close()
}

// RedisDialer returns a Dialer that connects and pings the server.
func RedisDialer(cfg RedisConfig) Dialer {
	return func(ctx context.Context) (Conn, error) {
		rdb := backendredis.NewClient(cfg.Addr, cfg.Password, cfg.DB)

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			_ = rdb.Close()
			return nil, fmt.Errorf("redis ping: %w", err)
		}
		return &redisConn{rdb: rdb, channel: cfg.channel()}, nil
	}
}

// Subscribe delivers messages from the channel to onMsg until ctx ends.
// Payloads that are not events are logged and skipped.
func Subscribe(ctx context.Context, cfg RedisConfig, onMsg func(Event)) error {
	if onMsg == nil {
		return errors.New("onMsg callback required")
	}

	rdb := backendredis.NewClient(cfg.Addr, cfg.Password, cfg.DB)
	defer rdb.Close()

	sub := rdb.Subscribe(ctx, cfg.channel())
	defer sub.Close()

	// ensures subscription actually started
	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("redis subscribe: %w", err)
	}

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case m, ok := <-ch:
			if !ok || m == nil {
				return nil
			}
			ev, err := Decode([]byte(m.Payload))
			if err != nil {
				log.Warnf("bad notify payload: %v", err)
				continue
			}
			onMsg(ev)
		}
	}
}

// Decode parses one wire message.
func Decode(payload []byte) (Event, error) {
	var ev Event
	if err := json.Unmarshal(payload, &ev); err != nil {
		return Event{}, err
	}
	if ev.Type == "" {
		return Event{}, errors.New("missing type")
	}
	return ev, nil
}
