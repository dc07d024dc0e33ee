// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/staranto/theoryctl/internal/meta"
	"github.com/staranto/theoryctl/internal/notify"
)

// printEvent writes one received event. Sync requests from peers are only
// logged.
func printEvent(w io.Writer, ev notify.Event) {
	switch ev.Type {
	case notify.TypeSyncRequest:
		log.Infof("sync request received")
		fmt.Fprintln(w, notify.TypeSyncRequest)
	case notify.TypeTheoryUpdate:
		fmt.Fprintf(w, "%s %s %s\n", ev.Type, ev.TheoryID, ev.Action)
	default:
		log.Debugf("ignoring event type %q", ev.Type)
	}
}

func watchCommandAction(ctx context.Context, cmd *cli.Command) error {
	settings := notify.SettingsFromConfig()
	if settings.Type != "redis" {
		return fmt.Errorf("watch needs notify.type redis, have %q", settings.Type)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	w := writer(cmd)
	fmt.Fprintf(w, "Watching %s on %s\n", settings.Redis.Channel, settings.Redis.Addr)
	return notify.Subscribe(ctx, settings.Redis, func(ev notify.Event) {
		printEvent(w, ev)
	})
}

func watchCommandBuilder(meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "watch",
		Usage:     "print change notifications from other editors",
		UsageText: "theoryctl watch",
		Metadata: map[string]any{
			"meta": meta,
		},
		Action: watchCommandAction,
	}
}
