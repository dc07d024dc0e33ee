// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package svutil

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/staranto/theoryctl/internal/history"
	"github.com/staranto/theoryctl/internal/record"
)

const (
	// LiveID marks the pseudo snapshot wrapping the current data file.
	LiveID int64 = -1
	// FileID marks a pseudo snapshot read from a collection file.
	FileID int64 = 0

	LiveSpec = "live"
)

var (
	ErrNoVersions = errors.New("no versions stored")
	ErrOutOfRange = errors.New("version index out of range")
	ErrNotFound   = errors.New("version not found")
	ErrNoLive     = errors.New("live collection not available")
)

// Resolve takes the version log plus specs and returns the snapshots that
// match them. The log is newest first. A spec can be -
//
//	empty   - the newest snapshot.
//	~N      - N back from the newest, ~0 being the newest.
//	vN      - the snapshot labelled vN in listings.
//	id      - the snapshot with that id, or the first whose id starts with it.
//	<= 0    - a relative index, -1 being the second newest.
//	live    - the current data file.
//	file    - a collection document on disk.
//
// live may be nil when there is no current collection to offer.
func Resolve(versions []history.Snapshot, live *record.Collection, specs ...string) ([]history.Snapshot, error) {
	if len(specs) == 0 {
		specs = []string{"~0"}
	}

	result := []history.Snapshot{}
	for _, spec := range specs {
		s, _, err := resolveSpec(spec, versions, live)
		if err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	return result, nil
}

// Pair resolves the two sides of a comparison, older first.
//
// With no specs the second newest snapshot is compared with the newest, or
// the only snapshot with live. With one spec the snapshot is compared with the
// next newer one, and the newest with live. Two specs are taken as given.
func Pair(versions []history.Snapshot, live *record.Collection, specs ...string) (history.Snapshot, history.Snapshot, error) {
	switch len(specs) {
	case 0:
		switch {
		case len(versions) >= 2:
			return versions[1], versions[0], nil
		case len(versions) == 1 && live != nil:
			return versions[0], Live(*live), nil
		case len(versions) == 1:
			return history.Snapshot{}, history.Snapshot{}, fmt.Errorf("%w: need two versions to compare", ErrOutOfRange)
		default:
			return history.Snapshot{}, history.Snapshot{}, ErrNoVersions
		}

	case 1:
		s, i, err := resolveSpec(specs[0], versions, live)
		if err != nil {
			return history.Snapshot{}, history.Snapshot{}, err
		}
		if i > 0 {
			return s, versions[i-1], nil
		}
		if live == nil {
			return history.Snapshot{}, history.Snapshot{}, ErrNoLive
		}
		return s, Live(*live), nil

	case 2:
		got, err := Resolve(versions, live, specs...)
		if err != nil {
			return history.Snapshot{}, history.Snapshot{}, err
		}
		return got[0], got[1], nil
	}

	return history.Snapshot{}, history.Snapshot{}, fmt.Errorf("expected at most 2 versions, got %d", len(specs))
}

// Live wraps the current collection as a pseudo snapshot.
func Live(c record.Collection) history.Snapshot {
	return history.Snapshot{
		ID:          LiveID,
		Description: "live",
		TheoryCount: len(c.Theories),
		Data:        c.Clone(),
	}
}

// Name is how a resolved snapshot is shown in headers.
func Name(versions []history.Snapshot, s history.Snapshot) string {
	switch s.ID {
	case LiveID:
		return LiveSpec
	case FileID:
		return s.Description
	}
	if i := history.Find(versions, s.ID); i >= 0 {
		return fmt.Sprintf("%s (%d)", history.Label(versions, i), s.ID)
	}
	return strconv.FormatInt(s.ID, 10)
}

// resolveSpec returns the snapshot for spec and its index in versions, or -1
// when it is not a stored snapshot.
func resolveSpec(spec string, versions []history.Snapshot, live *record.Collection) (history.Snapshot, int, error) {
	spec = strings.TrimSpace(spec)

	switch {
	case strings.EqualFold(spec, LiveSpec):
		if live == nil {
			return history.Snapshot{}, -1, ErrNoLive
		}
		return Live(*live), -1, nil

	case strings.HasPrefix(spec, "~"):
		return resolveRelative(spec[1:], versions)

	case isLabel(spec):
		return resolveLabel(spec, versions)

	case isNumeric(spec):
		return resolveNumeric(spec, versions)

	case isFilePath(spec):
		s, err := resolveFile(spec)
		return s, -1, err

	default:
		return resolveIDPrefix(spec, versions)
	}
}

// resolveRelative handles ~N specs.
func resolveRelative(n string, versions []history.Snapshot) (history.Snapshot, int, error) {
	index, err := strconv.Atoi(n)
	if err != nil {
		return history.Snapshot{}, -1, fmt.Errorf("invalid version index: %s", n)
	}
	return at(index, versions)
}

// resolveLabel handles vN specs, the inverse of history.Label.
func resolveLabel(spec string, versions []history.Snapshot) (history.Snapshot, int, error) {
	n, _ := strconv.Atoi(spec[1:])
	if n < 1 || n > len(versions) {
		return history.Snapshot{}, -1, fmt.Errorf("%w: %s with %d versions", ErrOutOfRange, spec, len(versions))
	}
	return at(len(versions)-n, versions)
}

// resolveNumeric handles ids and zero or negative relative indexes.
func resolveNumeric(spec string, versions []history.Snapshot) (history.Snapshot, int, error) {
	i, _ := strconv.ParseInt(spec, 10, 64)

	if i <= 0 {
		return at(int(-i), versions)
	}

	if idx := history.Find(versions, i); idx >= 0 {
		return versions[idx], idx, nil
	}
	return resolveIDPrefix(spec, versions)
}

// resolveFile reads a collection document from disk.
func resolveFile(path string) (history.Snapshot, error) {
	c, err := record.ReadFile(path)
	if err != nil {
		return history.Snapshot{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return history.Snapshot{
		ID:          FileID,
		Description: path,
		TheoryCount: len(c.Theories),
		Data:        c,
	}, nil
}

// resolveIDPrefix finds the newest snapshot whose id starts with spec.
func resolveIDPrefix(spec string, versions []history.Snapshot) (history.Snapshot, int, error) {
	if spec != "" {
		for i, v := range versions {
			if strings.HasPrefix(strconv.FormatInt(v.ID, 10), spec) {
				return v, i, nil
			}
		}
	}
	return history.Snapshot{}, -1, fmt.Errorf("%w: %s", ErrNotFound, spec)
}

func at(index int, versions []history.Snapshot) (history.Snapshot, int, error) {
	if len(versions) == 0 {
		return history.Snapshot{}, -1, ErrNoVersions
	}
	if index < 0 || index > len(versions)-1 {
		return history.Snapshot{}, -1, fmt.Errorf("%w: index %d for versions of length %d", ErrOutOfRange, index, len(versions))
	}
	return versions[index], index, nil
}

// isLabel checks for the vN form.
func isLabel(s string) bool {
	if len(s) < 2 || (s[0] != 'v' && s[0] != 'V') {
		return false
	}
	_, err := strconv.Atoi(s[1:])
	return err == nil
}

// isNumeric checks if a string is a numeric value.
func isNumeric(s string) bool {
	_, err := strconv.ParseInt(s, 10, 64)
	return err == nil
}

// isFilePath checks if a string names an existing regular file.
func isFilePath(s string) bool {
	fi, err := os.Stat(s)
	return err == nil && !fi.IsDir()
}
