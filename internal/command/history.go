// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"

	"github.com/staranto/theoryctl/internal/history"
	"github.com/staranto/theoryctl/internal/meta"
	"github.com/staranto/theoryctl/internal/svutil"
)

// versionRow is how one snapshot is listed.
type versionRow struct {
	Label       string `json:"label"`
	ID          int64  `json:"id"`
	Timestamp   string `json:"timestamp"`
	Description string `json:"description"`
	Count       int    `json:"count"`
	Current     bool   `json:"current"`
}

func versionRows(versions []history.Snapshot) []versionRow {
	rows := make([]versionRow, len(versions))
	for i, v := range versions {
		rows[i] = versionRow{
			Label:       history.Label(versions, i),
			ID:          v.ID,
			Timestamp:   v.Timestamp,
			Description: v.Description,
			Count:       v.TheoryCount,
			Current:     i == 0,
		}
	}
	return rows
}

func historyLsCommandAction(ctx context.Context, cmd *cli.Command) error {
	fetch := func(ctx context.Context, cmd *cli.Command) ([]versionRow, error) {
		s, err := openSession(ctx, cmd)
		if err != nil {
			return nil, err
		}
		defer s.Close()

		return versionRows(s.Editor.Versions()), nil
	}

	return NewQueryActionRunner(
		"history",
		reflect.TypeOf(versionRow{}),
		nil,
		[]string{"label,timestamp,description,count,id"},
		fetch,
	).Run(ctx, cmd)
}

func historySaveCommandAction(ctx context.Context, cmd *cli.Command) error {
	s, err := openSession(ctx, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	desc := cmd.String("message")
	if desc == "" {
		desc = history.DefaultDescription
	}

	out := s.Editor.SaveVersion(ctx, desc)
	if !out.Save.Success {
		return errors.New(out.Save.Error)
	}

	versions := s.Editor.Versions()
	fmt.Fprintf(writer(cmd), "Saved %s (%d): %s\n", history.Label(versions, 0), versions[0].ID, desc)
	return nil
}

// resolveStored returns the stored snapshot spec names.
func resolveStored(versions []history.Snapshot, spec string) (history.Snapshot, error) {
	got, err := svutil.Resolve(versions, nil, spec)
	if err != nil {
		return history.Snapshot{}, err
	}
	if got[0].ID <= svutil.FileID {
		return history.Snapshot{}, fmt.Errorf("%s is not a stored version", spec)
	}
	return got[0], nil
}

func historyRmCommandAction(ctx context.Context, cmd *cli.Command) error {
	spec := cmd.Args().First()
	if spec == "" {
		return fmt.Errorf("usage: theoryctl history rm <version>")
	}

	s, err := openSession(ctx, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	versions := s.Editor.Versions()
	v, err := resolveStored(versions, spec)
	if err != nil {
		return err
	}

	name := svutil.Name(versions, v)
	if !confirm(cmd, fmt.Sprintf("Delete version %s?", name)) {
		fmt.Fprintln(writer(cmd), "Aborted.")
		return nil
	}

	res, err := s.Editor.DeleteVersion(ctx, v.ID)
	if err != nil {
		return err
	}
	if !res.Success {
		return errors.New(res.Error)
	}
	fmt.Fprintf(writer(cmd), "Deleted version %s\n", name)
	return nil
}

func historyClearCommandAction(ctx context.Context, cmd *cli.Command) error {
	s, err := openSession(ctx, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	n := len(s.Editor.Versions())
	if !confirm(cmd, fmt.Sprintf("Delete all %d versions?", n)) {
		fmt.Fprintln(writer(cmd), "Aborted.")
		return nil
	}

	res := s.Editor.ClearHistory(ctx)
	if !res.Success {
		return errors.New(res.Error)
	}
	fmt.Fprintf(writer(cmd), "Cleared %d versions\n", n)
	return nil
}

func historyUsageCommandAction(ctx context.Context, cmd *cli.Command) error {
	s, err := openSession(ctx, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	u := s.Editor.Usage(ctx)
	w := writer(cmd)
	fmt.Fprintf(w, "Used:     %d bytes (%.1f KB, %s)\n", u.Used, u.UsedKB, u.Human)
	fmt.Fprintf(w, "Capacity: %s\n", humanize.IBytes(uint64(u.Capacity)))
	fmt.Fprintf(w, "Usage:    %.1f%%\n", u.Percentage)
	if u.Warn() {
		fmt.Fprintf(errWriter(cmd), "warning: version history uses %.1f%% of capacity, delete old versions\n", u.Percentage)
	}
	return nil
}

func historyCommandBuilder(meta meta.Meta) *cli.Command {
	ls := (&QueryCommandBuilder{
		Name:      "ls",
		Usage:     "list stored versions, newest first",
		UsageText: "theoryctl history ls [options]",
		Meta:      meta,
		Action:    historyLsCommandAction,
	}).Build()

	metadata := map[string]any{"meta": meta}
	cmd := &cli.Command{
		Name:      "history",
		Usage:     "manage the version history",
		UsageText: "theoryctl history [ls | save | rm | clear | usage]",
		Metadata:  metadata,
		Action:    historyLsCommandAction,
	}

	cmd.Commands = []*cli.Command{
		ls,
		{
			Name:      "save",
			Usage:     "snapshot the current data",
			UsageText: "theoryctl history save [-m description]",
			Metadata:  metadata,
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "message",
					Aliases: []string{"m"},
					Usage:   "snapshot description",
				},
			},
			Action: historySaveCommandAction,
		},
		{
			Name:      "rm",
			Usage:     "delete one version",
			UsageText: "theoryctl history rm <version>",
			Metadata:  metadata,
			Action:    historyRmCommandAction,
		},
		{
			Name:      "clear",
			Usage:     "delete every version",
			UsageText: "theoryctl history clear",
			Metadata:  metadata,
			Action:    historyClearCommandAction,
		},
		{
			Name:      "usage",
			Usage:     "show how much of the storage capacity the history uses",
			UsageText: "theoryctl history usage",
			Metadata:  metadata,
			Action:    historyUsageCommandAction,
		},
	}

	return cmd
}
