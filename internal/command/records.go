// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/staranto/theoryctl/internal/attrs"
	"github.com/staranto/theoryctl/internal/config"
	"github.com/staranto/theoryctl/internal/meta"
	"github.com/staranto/theoryctl/internal/record"
)

func lsCommandAction(ctx context.Context, cmd *cli.Command) error {
	config.Config.Namespace = "ls"

	fetch := func(ctx context.Context, cmd *cli.Command) ([]record.Record, error) {
		s, err := openSession(ctx, cmd)
		if err != nil {
			return nil, err
		}
		defer s.Close()

		return s.Editor.Search("", cmd.String("category")), nil
	}

	return NewQueryActionRunner(
		"ls",
		reflect.TypeOf(record.Record{}),
		attrs.Defaults(),
		nil,
		fetch,
	).Run(ctx, cmd)
}

func lsCommandBuilder(meta meta.Meta) *cli.Command {
	return (&QueryCommandBuilder{
		Name:      "ls",
		Usage:     "list theories",
		UsageText: "theoryctl ls [options]",
		Meta:      meta,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "search",
				Aliases: []string{"q"},
				Usage:   "free-text search over id, names, description and theorists",
			},
			&cli.StringFlag{
				Name:  "category",
				Usage: "only theories in this category key",
			},
		},
		Action: lsCommandAction,
	}).Build()
}

func showCommandAction(ctx context.Context, cmd *cli.Command) error {
	id := cmd.Args().First()
	if id == "" {
		return fmt.Errorf("usage: theoryctl show <id>")
	}

	s, err := openSession(ctx, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	r, err := s.Editor.Get(id)
	if err != nil {
		return err
	}

	var data []byte
	switch cmd.String("output") {
	case "yaml":
		data, err = yaml.Marshal(r)
	default:
		data, err = json.MarshalIndent(r, "", "  ")
		data = append(data, '\n')
	}
	if err != nil {
		return fmt.Errorf("failed to render %s: %w", id, err)
	}

	_, err = writer(cmd).Write(data)
	return err
}

func showCommandBuilder(meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "show one theory",
		UsageText: "theoryctl show <id> [--output json|yaml]",
		Metadata: map[string]any{
			"meta": meta,
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "output format (json or yaml)",
				Value:   "json",
				Validator: func(value string) error {
					if value != "json" && value != "yaml" {
						return fmt.Errorf("must be one of [json yaml]")
					}
					return nil
				},
			},
		},
		Action: showCommandAction,
	}
}

// applySets applies field=value pairs from --set to r.
func applySets(r *record.Record, sets []string) error {
	for _, set := range sets {
		field, value, ok := strings.Cut(set, "=")
		if !ok {
			return fmt.Errorf("expected field=value, got %q", set)
		}
		if err := r.Set(strings.TrimSpace(field), value); err != nil {
			return err
		}
	}
	return nil
}

func saveRecord(ctx context.Context, cmd *cli.Command, s *session, r record.Record) error {
	saved, out, err := s.Editor.SaveRecord(ctx, r)
	if err != nil {
		return err
	}
	log.Debugf("saved %s with %d snapshot(s)", saved.ID, len(out.Snapshots))

	fmt.Fprintf(writer(cmd), "Saved %s\n", saved.ID)
	warn(cmd, out)
	return nil
}

func addCommandAction(ctx context.Context, cmd *cli.Command) error {
	s, err := openSession(ctx, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	r := record.New(s.Editor.NextID())
	if err := applySets(&r, cmd.StringSlice("set")); err != nil {
		return err
	}
	return saveRecord(ctx, cmd, s, r)
}

func editCommandAction(ctx context.Context, cmd *cli.Command) error {
	id := cmd.Args().First()
	if id == "" {
		return fmt.Errorf("usage: theoryctl edit <id> --set field=value")
	}

	s, err := openSession(ctx, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	r, err := s.Editor.Get(id)
	if err != nil {
		return err
	}
	if err := applySets(&r, cmd.StringSlice("set")); err != nil {
		return err
	}
	return saveRecord(ctx, cmd, s, r)
}

func newSetFlag() *cli.StringSliceFlag {
	return &cli.StringSliceFlag{
		Name:  "set",
		Usage: "field=value to assign, repeatable. List fields take ';' separated values",
		Validator: func(values []string) error {
			return FlagValidators(values, SetValidator)
		},
	}
}

func addCommandBuilder(meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "add",
		Usage:     "add a theory",
		UsageText: "theoryctl add --set name=... --set category=... [--set field=value ...]",
		Metadata: map[string]any{
			"meta": meta,
		},
		Flags:  []cli.Flag{newSetFlag()},
		Action: addCommandAction,
	}
}

func editCommandBuilder(meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "edit",
		Usage:     "change fields of a theory",
		UsageText: "theoryctl edit <id> --set field=value [--set field=value ...]",
		Metadata: map[string]any{
			"meta": meta,
		},
		Flags:  []cli.Flag{newSetFlag()},
		Action: editCommandAction,
	}
}

func rmCommandAction(ctx context.Context, cmd *cli.Command) error {
	id := cmd.Args().First()
	if id == "" {
		return fmt.Errorf("usage: theoryctl rm <id>")
	}

	s, err := openSession(ctx, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	r, err := s.Editor.Get(id)
	if err != nil {
		return err
	}
	if !confirm(cmd, fmt.Sprintf("Delete %s (%s)?", r.ID, r.DisplayName())) {
		fmt.Fprintln(writer(cmd), "Aborted.")
		return nil
	}

	out, err := s.Editor.DeleteRecord(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintf(writer(cmd), "Deleted %s\n", id)
	warn(cmd, out)
	return nil
}

func rmCommandBuilder(meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "rm",
		Usage:     "delete a theory",
		UsageText: "theoryctl rm <id>",
		Metadata: map[string]any{
			"meta": meta,
		},
		Action: rmCommandAction,
	}
}
