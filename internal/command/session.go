// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/staranto/theoryctl/internal/backend"
	"github.com/staranto/theoryctl/internal/config"
	"github.com/staranto/theoryctl/internal/differ"
	"github.com/staranto/theoryctl/internal/editor"
	"github.com/staranto/theoryctl/internal/history"
	"github.com/staranto/theoryctl/internal/meta"
	"github.com/staranto/theoryctl/internal/notify"
	"github.com/staranto/theoryctl/internal/util"
)

// session is one opened data file with its version history and
// notification channel.
type session struct {
	Meta   meta.Meta
	Editor *editor.Editor

	store  backend.Store
	closer func()
}

// openSession resolves --data and --backend, opens the history store and
// loads the data file.
func openSession(ctx context.Context, cmd *cli.Command) (*session, error) {
	m := GetMeta(cmd)

	path, ns, err := util.ParseDataSpec(cmd.String("data"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse data spec (%s): %w", cmd.String("data"), err)
	}
	m.DataFile, m.Namespace = path, ns

	settings := backend.SettingsFromConfig(cmd.String("backend"))
	m.Backend = settings.Type

	st, err := backend.NewBackend(ctx, settings)
	if err != nil {
		return nil, err
	}

	key, _ := config.GetString("history.key", history.StorageKey)
	maxVersions, _ := config.GetInt("history.max_versions", history.MaxVersions)
	capacity, _ := config.GetInt("history.capacity", history.DefaultCapacity)

	hs := history.NewStore(st,
		history.WithKey(util.HistoryKey(key, ns)),
		history.WithMaxVersions(maxVersions),
		history.WithCapacity(int64(capacity)),
	)
	log.Debugf("session: data=%s history=%s", path, hs)

	sink, closeSink := notify.Open(ctx, notify.SettingsFromConfig())

	ed := editor.New(hs,
		editor.WithDiffEngine(differ.Engine{}),
		editor.WithSink(sink),
	)
	if err := ed.Load(ctx, path); err != nil {
		closeSink()
		_ = backend.Close(st)
		return nil, err
	}

	return &session{
		Meta:   m,
		Editor: ed,
		store:  st,
		closer: closeSink,
	}, nil
}

// Close flushes notifications and releases the backend.
func (s *session) Close() {
	s.closer()
	if err := backend.Close(s.store); err != nil {
		log.Debugf("backend close: %v", err)
	}
}
