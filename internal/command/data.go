// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"github.com/staranto/theoryctl/internal/meta"
	"github.com/staranto/theoryctl/internal/record"
	"github.com/staranto/theoryctl/internal/util"
)

func importCommandAction(ctx context.Context, cmd *cli.Command) error {
	file := cmd.Args().First()
	if file == "" {
		return fmt.Errorf("usage: theoryctl import <file>")
	}

	c, err := record.ReadFile(file)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", file, err)
	}

	s, err := openSession(ctx, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	if n := len(s.Editor.Records()); n > 0 &&
		!confirm(cmd, fmt.Sprintf("Replace %d theories with the contents of %s?", n, filepath.Base(file))) {
		fmt.Fprintln(writer(cmd), "Aborted.")
		return nil
	}

	out, err := s.Editor.Import(ctx, c, file)
	if err != nil {
		return err
	}
	fmt.Fprintf(writer(cmd), "Imported %d theories from %s\n", len(c.Theories), filepath.Base(file))
	warn(cmd, out)
	return nil
}

func importCommandBuilder(meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "replace the data file with a collection document",
		UsageText: "theoryctl import <file>",
		Metadata: map[string]any{
			"meta": meta,
		},
		Action: importCommandAction,
	}
}

func exportCommandAction(ctx context.Context, cmd *cli.Command) error {
	s, err := openSession(ctx, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	var w io.Writer = writer(cmd)
	file := cmd.Args().First()
	if file != "" && file != "-" {
		f, err := os.Create(file)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", file, err)
		}
		defer f.Close()
		w = f
	}

	out, err := s.Editor.Export(ctx, w)
	if err != nil {
		return err
	}
	if file != "" && file != "-" {
		fmt.Fprintf(writer(cmd), "Exported %d theories to %s\n", len(s.Editor.Records()), file)
	}
	warn(cmd, out)
	return nil
}

func exportCommandBuilder(meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "export",
		Usage:     "write the collection with export metadata",
		UsageText: "theoryctl export [file]",
		Metadata: map[string]any{
			"meta": meta,
		},
		Action: exportCommandAction,
	}
}

// validateCollection collects import-level and per-record problems.
func validateCollection(c record.Collection, strict bool) []string {
	var problems []string

	var ve *record.ValidationError
	if err := record.ValidateImport(c); errors.As(err, &ve) {
		for _, fe := range ve.Errors {
			problems = append(problems, fe.Error())
		}
	}

	for _, r := range c.Theories {
		if err := record.Validate(r); errors.As(err, &ve) {
			for _, fe := range ve.Errors {
				problems = append(problems, fmt.Sprintf("%s: %s", r.ID, fe.Error()))
			}
		}
		if strict && r.ID != "" && !record.ValidID(r.ID) {
			problems = append(problems, fmt.Sprintf("%s: id does not match %sNNN", r.ID, record.IDPrefix))
		}
	}

	return problems
}

func validateCommandAction(ctx context.Context, cmd *cli.Command) error {
	file := cmd.Args().First()
	if file == "" {
		path, _, err := util.ParseDataSpec(cmd.String("data"))
		if err != nil {
			return err
		}
		file = path
	}

	c, err := record.ReadFile(file)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", file, err)
	}

	problems := validateCollection(c, cmd.Bool("strict"))
	for _, p := range problems {
		fmt.Fprintln(writer(cmd), p)
	}
	if len(problems) > 0 {
		return fmt.Errorf("%s: %d problem(s) found", filepath.Base(file), len(problems))
	}

	fmt.Fprintf(writer(cmd), "%s: %d theories OK\n", filepath.Base(file), len(c.Theories))
	return nil
}

func validateCommandBuilder(meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Usage:     "check a collection document",
		UsageText: "theoryctl validate [file] [--strict]",
		Metadata: map[string]any{
			"meta": meta,
		},
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "strict",
				Usage: "also require theory-NNN ids",
			},
		},
		Action: validateCommandAction,
	}
}
