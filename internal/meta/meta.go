// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package meta

import (
	"context"

	"github.com/staranto/theoryctl/internal/config"
)

// DataSpec is the resolved data file and optional history namespace.
type DataSpec struct {
	DataFile  string
	Namespace string
}

// Meta contains runtime metadata shared by commands. It is stored in the
// root command's Metadata under "meta".
type Meta struct {
	Args    []string
	Config  config.Type
	Context context.Context
	DataSpec
	Backend     string
	StartingDir string
}
