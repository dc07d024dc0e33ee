// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/staranto/theoryctl/internal/config"
	"github.com/staranto/theoryctl/internal/meta"
)

func InitApp(ctx context.Context, args []string) (*cli.Command, error) {

	// Save the CWD at startup and then defer restoring it so we're tidy.
	sd, _ := os.Getwd()
	defer func() {
		if err := os.Chdir(sd); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to restore directory: %v\n", err)
		}
	}()

	// The arg[1] immediately following the binary (arg[0]) is the theoryctl
	// subcommand and also represents the namespace key to be used when
	// retrieving config values. arg[1] could be -h/--help, so ignore it if it
	// appears to be a flag.
	var ns string
	if len(args) > 1 && !strings.HasPrefix(args[1], "-") {
		ns = args[1]
	}

	// A missing config file is fine; every key has a default.
	cfg, _ := config.Load(ns) //nolint
	meta := meta.Meta{
		Args:        args,
		Config:      cfg,
		Context:     ctx,
		StartingDir: sd,
	}

	app := &cli.Command{
		Name:                      "theoryctl",
		Usage:                     "Educational theory catalogue editor",
		DisableSliceFlagSeparator: true,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "version",
				Aliases:     []string{"v"},
				Usage:       "theoryctl version info",
				HideDefault: true,
			},
			NewDataFlag(ns, cfg.Source),
			NewBackendFlag(ns, cfg.Source),
			NewYesFlag(),
		},
	}

	app.Commands = append(app.Commands,
		lsCommandBuilder(meta),
		showCommandBuilder(meta),
		addCommandBuilder(meta),
		editCommandBuilder(meta),
		rmCommandBuilder(meta),
		importCommandBuilder(meta),
		exportCommandBuilder(meta),
		validateCommandBuilder(meta),
		historyCommandBuilder(meta),
		diffCommandBuilder(meta),
		restoreCommandBuilder(meta),
		watchCommandBuilder(meta),
		consoleCommandBuilder(meta),
		completionCommandBuilder(meta),
	)

	prepareCommands(app.Commands)

	return app, nil
}

// prepareCommands sorts every command's flags for the --help text and turns
// off comma splitting of slice flags. cli reads the separator setting from
// each command as it runs, so the root's value alone does not carry down.
func prepareCommands(cmds []*cli.Command) {
	for _, cmd := range cmds {
		cmd.DisableSliceFlagSeparator = true
		sort.Slice(cmd.Flags, func(i, j int) bool {
			return cmd.Flags[i].Names()[0] < cmd.Flags[j].Names()[0]
		})
		prepareCommands(cmd.Commands)
	}
}
