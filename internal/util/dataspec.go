// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package util

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var namespaceRE = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// ParseDataSpec splits a "path::namespace" data spec into an absolute file
// path and an optional history namespace. The file does not need to exist
// yet, but it must not be a directory.
func ParseDataSpec(spec string) (string, string, error) {
	if spec == "" {
		return "", "", os.ErrInvalid
	}

	path, ns, _ := strings.Cut(spec, "::")
	if path == "" {
		return "", "", fmt.Errorf("%w: missing data file in %q", os.ErrInvalid, spec)
	}
	if ns != "" && !namespaceRE.MatchString(ns) {
		return "", "", fmt.Errorf("%w: bad namespace %q", os.ErrInvalid, ns)
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return "", "", err
		}
		path = filepath.Join(cwd, path)
	}

	info, err := os.Stat(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return "", "", err
	case info.IsDir():
		return "", "", fmt.Errorf("%w: %s is a directory", os.ErrInvalid, path)
	}

	return path, ns, nil
}

// HistoryKey scopes the base storage key by namespace.
func HistoryKey(base, namespace string) string {
	if namespace == "" {
		return base
	}
	return base + ":" + namespace
}
