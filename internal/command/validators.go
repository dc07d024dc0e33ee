// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/staranto/theoryctl/internal/backend"
)

type FlagValidatorType func(any) error

func FlagValidators(value any, validators ...FlagValidatorType) error {
	for _, v := range validators {
		if err := v(value); err != nil {
			return err
		}
	}
	return nil
}

// GlobalFlagsValidator rejects flag combinations no single flag validator can
// see.
func GlobalFlagsValidator(ctx context.Context, c *cli.Command) error {
	if c.String("output") == "raw" && c.String("sort") != "" {
		return fmt.Errorf("--sort has no effect with --output raw")
	}
	return nil
}

func OutputValidator(value any) error {
	var validOutputFlagValues = []string{"text", "json", "raw", "yaml"}
	valid := false
	for _, v := range validOutputFlagValues {
		if v == value {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("must be one of %v", validOutputFlagValues)
	}
	return nil
}

// BackendValidator accepts the backend types the factory knows and empty,
// which defers to the config file.
func BackendValidator(value any) error {
	s, _ := value.(string)
	if s == "" || slices.Contains(backend.Types, strings.ToLower(s)) {
		return nil
	}
	return fmt.Errorf("must be one of %v", backend.Types)
}

// SetValidator checks the field=value shape of --set entries.
func SetValidator(value any) error {
	values, _ := value.([]string)
	for _, v := range values {
		if k, _, ok := strings.Cut(v, "="); !ok || strings.TrimSpace(k) == "" {
			return fmt.Errorf("expected field=value, got %q", v)
		}
	}
	return nil
}
