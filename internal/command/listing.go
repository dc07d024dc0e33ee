// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"reflect"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/staranto/theoryctl/internal/attrs"
	"github.com/staranto/theoryctl/internal/meta"
)

// QueryCommandBuilder assembles a listing command (ls, history ls). Every
// listing carries --tldr, --schema and the output flags, and validates them
// before the action runs.
type QueryCommandBuilder struct {
	Name      string
	Usage     string
	UsageText string
	Flags     []cli.Flag
	Action    func(context.Context, *cli.Command) error
	Meta      meta.Meta
}

// Build returns the cli.Command.
func (qcb *QueryCommandBuilder) Build() *cli.Command {
	flags := make([]cli.Flag, 0, len(qcb.Flags)+8)
	flags = append(flags, qcb.Flags...)
	flags = append(flags, tldrFlag, schemaFlag)
	flags = append(flags, NewGlobalFlags(qcb.Name)...)

	return &cli.Command{
		Name:      qcb.Name,
		Usage:     qcb.Usage,
		UsageText: qcb.UsageText,
		Metadata:  map[string]any{"meta": qcb.Meta},
		Flags:     flags,
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			return ctx, GlobalFlagsValidator(ctx, c)
		},
		Action: qcb.Action,
	}
}

// QueryActionRunner is the action shared by listings. FetchFn produces the
// rows; the runner handles --tldr, --schema, --attrs and output.
type QueryActionRunner[T any] struct {
	CommandName  string
	SchemaType   reflect.Type
	BaseAttrs    attrs.AttrList
	DefaultAttrs []string
	FetchFn      func(context.Context, *cli.Command) ([]T, error)
}

// NewQueryActionRunner returns a runner for rows of type T.
func NewQueryActionRunner[T any](
	commandName string,
	schemaType reflect.Type,
	baseAttrs attrs.AttrList,
	defaultAttrs []string,
	fetchFn func(context.Context, *cli.Command) ([]T, error),
) *QueryActionRunner[T] {
	return &QueryActionRunner[T]{
		CommandName:  commandName,
		SchemaType:   schemaType,
		BaseAttrs:    baseAttrs,
		DefaultAttrs: defaultAttrs,
		FetchFn:      fetchFn,
	}
}

// Run is a cli ActionFunc.
func (qar *QueryActionRunner[T]) Run(ctx context.Context, cmd *cli.Command) error {
	if m := GetMeta(cmd); len(m.Args) > 1 {
		log.Debugf("%s args: %v", qar.CommandName, m.Args[1:])
	}

	if ShortCircuitTLDR(ctx, cmd, qar.CommandName) || DumpSchemaIfRequested(cmd, qar.SchemaType) {
		return nil
	}

	al := BuildAttrs(cmd, qar.BaseAttrs, qar.DefaultAttrs...)
	log.Debugf("%s attrs: %v", qar.CommandName, al)

	rows, err := qar.FetchFn(ctx, cmd)
	if err != nil {
		return err
	}
	if rows == nil {
		rows = []T{}
	}

	return EmitSlice(rows, al, cmd)
}
