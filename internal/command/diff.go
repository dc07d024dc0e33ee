// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/staranto/theoryctl/internal/differ"
	"github.com/staranto/theoryctl/internal/history"
	"github.com/staranto/theoryctl/internal/meta"
	"github.com/staranto/theoryctl/internal/svutil"
)

// pickerChoices lists live first and then every stored version, newest
// first, so the picker order matches age.
func pickerChoices(versions []history.Snapshot, liveCount int) []differ.Choice {
	choices := []differ.Choice{{
		ID:    svutil.LiveSpec,
		Label: fmt.Sprintf("live  %d theories", liveCount),
	}}
	for i, v := range versions {
		label := history.Label(versions, i)
		choices = append(choices, differ.Choice{
			ID:    label,
			Label: fmt.Sprintf("%-4s %s  %s (%d theories)", label, v.Timestamp, v.Description, v.TheoryCount),
		})
	}
	return choices
}

// selectSpecs is swapped out by tests.
var selectSpecs = func(choices []differ.Choice) ([]string, error) {
	picked, err := differ.SelectTwo(choices)
	if err != nil || picked == nil {
		return nil, err
	}
	// Items are newest first, the comparison wants the older side first.
	return []string{picked[1].ID, picked[0].ID}, nil
}

func diffCommandAction(ctx context.Context, cmd *cli.Command) error {
	s, err := openSession(ctx, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	versions := s.Editor.Versions()
	live := s.Editor.Collection()

	specs := cmd.Args().Slice()
	if len(specs) == 1 && specs[0] == "+" {
		specs, err = selectSpecs(pickerChoices(versions, len(live.Theories)))
		if err != nil {
			return err
		}
		if specs == nil {
			log.Debugf("diff picker cancelled")
			return nil
		}
	}

	old, new, err := svutil.Pair(versions, &live, specs...)
	if err != nil {
		return err
	}

	w := writer(cmd)
	fmt.Fprintf(w, "Comparing %s with %s\n", svutil.Name(versions, old), svutil.Name(versions, new))
	return differ.Write(w, s.Editor.Diff(old.Data, new.Data), cmd.Bool("detail"), cmd.Bool("color"))
}

func diffCommandBuilder(meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "diff",
		Usage:     "compare two versions of the data",
		UsageText: "theoryctl diff [+ | version [version]] [--detail]",
		Metadata: map[string]any{
			"meta": meta,
		},
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "detail",
				Usage: "show a field level delta for every modified theory",
			},
			&cli.BoolFlag{
				Name:    "color",
				Aliases: []string{"c"},
				Usage:   "enable colored delta output",
			},
		},
		Action: diffCommandAction,
	}
}

func restoreCommandAction(ctx context.Context, cmd *cli.Command) error {
	spec := cmd.Args().First()
	if spec == "" {
		return fmt.Errorf("usage: theoryctl restore <version>")
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
	if !confirm(cmd, fmt.Sprintf("Restore %s? The current data is backed up first.", name)) {
		fmt.Fprintln(writer(cmd), "Aborted.")
		return nil
	}

	restored, out, err := s.Editor.Restore(ctx, v.ID)
	if err != nil {
		return err
	}
	fmt.Fprintf(writer(cmd), "Restored %s (%d theories)\n", name, restored.TheoryCount)
	warn(cmd, out)
	return nil
}

func restoreCommandBuilder(meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "restore",
		Usage:     "make a stored version the current data",
		UsageText: "theoryctl restore <version>",
		Metadata: map[string]any{
			"meta": meta,
		},
		Action: restoreCommandAction,
	}
}
