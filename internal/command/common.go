// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"reflect"
	"slices"
	"strings"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/staranto/theoryctl/internal/attrs"
	"github.com/staranto/theoryctl/internal/editor"
	"github.com/staranto/theoryctl/internal/meta"
	"github.com/staranto/theoryctl/internal/output"
)

// BuildAttrs constructs an AttrList from base and defaults plus any extras
// from --attrs, then applies the global transform spec.
func BuildAttrs(cmd *cli.Command, base attrs.AttrList, defaults ...string) (al attrs.AttrList) {
	al = slices.Clone(base)
	//nolint:errcheck
	{
		for _, d := range defaults {
			al.Set(d)
		}
		if extras := cmd.String("attrs"); extras != "" {
			al.Set(extras)
		}
		al.SetGlobalTransformSpec()
	}
	return
}

// DumpSchemaIfRequested writes the schema for the provided type to the
// command's writer when --schema is set, and returns true if it handled the
// request.
func DumpSchemaIfRequested(cmd *cli.Command, t reflect.Type) bool {
	if cmd.Bool("schema") {
		output.DumpSchema("", t, writer(cmd))
		return true
	}
	return false
}

// EmitSlice marshals results as a JSON array and passes it to the common
// output routine.
func EmitSlice(results any, al attrs.AttrList, cmd *cli.Command) error {
	data, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	return output.SliceDiceSpit(*bytes.NewBuffer(data), al, cmd, "", writer(cmd), nil)
}

// GetMeta returns the meta.Meta stored in the command's Metadata. If missing
// or of an unexpected type, it returns the zero value.
func GetMeta(cmd *cli.Command) meta.Meta {
	if cmd == nil || cmd.Metadata == nil {
		return meta.Meta{}
	}
	if m, ok := cmd.Metadata["meta"].(meta.Meta); ok {
		return m
	}
	return meta.Meta{}
}

// ShortCircuitTLDR checks the --tldr flag and, if present and available,
// runs `tldr theoryctl <subcmd>` and returns true so the caller can exit early.
func ShortCircuitTLDR(ctx context.Context, cmd *cli.Command, subcmd string) bool {
	if cmd.Bool("tldr") {
		if _, err := exec.LookPath("tldr"); err == nil {
			c := exec.CommandContext(ctx, "tldr", "theoryctl", subcmd)
			c.Stdout = os.Stdout
			c.Stderr = os.Stderr
			_ = c.Run()
		}
		return true
	}
	return false
}

// confirm asks prompt on the terminal. --yes, or stdin not being a terminal,
// answers for the user.
func confirm(cmd *cli.Command, prompt string) bool {
	if cmd.Bool("yes") || !term.IsTerminal(int(os.Stdin.Fd())) {
		return true
	}

	fmt.Fprintf(writer(cmd), "%s [y/N] ", prompt)
	line, _ := bufio.NewReader(reader(cmd)).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

// warn prints the snapshot warning of an outcome, if there is one.
func warn(cmd *cli.Command, out editor.Outcome) {
	if msg := out.Warning(); msg != "" {
		fmt.Fprintf(errWriter(cmd), "warning: %s\n", msg)
	}
}

func writer(cmd *cli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}

func errWriter(cmd *cli.Command) io.Writer {
	if w := cmd.Root().ErrWriter; w != nil {
		return w
	}
	return os.Stderr
}

func reader(cmd *cli.Command) io.Reader {
	if r := cmd.Root().Reader; r != nil {
		return r
	}
	return os.Stdin
}
