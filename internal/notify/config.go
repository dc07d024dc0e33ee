// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package notify

import (
	"context"
	"time"

	"github.com/apex/log"

	"github.com/staranto/theoryctl/internal/config"
)

// Settings selects the channel. Type is "none" or "redis".
type Settings struct {
	Type    string
	Redis   RedisConfig
	Backoff time.Duration
}

// SettingsFromConfig reads the notify.* keys.
func SettingsFromConfig() Settings {
	var s Settings
	s.Type, _ = config.GetString("notify.type", "none")
	s.Redis.Addr, _ = config.GetString("notify.addr", "localhost:6379")
	s.Redis.Password, _ = config.GetString("notify.password", "")
	s.Redis.DB, _ = config.GetInt("notify.db", 0)
	s.Redis.Channel, _ = config.GetString("notify.channel", DefaultChannel)

	secs, _ := config.GetInt("notify.backoff", int(DefaultBackoff/time.Second))
	s.Backoff = time.Duration(secs) * time.Second
	return s
}

// Open returns the Sink for s and a function that shuts it down after
// giving queued events up to a second to go out.
func Open(ctx context.Context, s Settings) (Sink, func()) {
	switch s.Type {
	case "redis":
		n := New(ctx, RedisDialer(s.Redis), s.Backoff)
		return n, func() {
			fctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			n.Flush(fctx)
			_ = n.Close()
		}
	case "", "none":
	default:
		log.Warnf("unknown notify.type %q, notifications disabled", s.Type)
	}
	return Discard{}, func() {}
}
