// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package differ

import (
	"fmt"
	"slices"
	"strings"

	"github.com/staranto/theoryctl/internal/record"
)

// NoChanges is what Format returns for an empty diff.
const NoChanges = "No changes."

// Change is one record present on both sides with different content.
type Change struct {
	Old           record.Record `json:"old"`
	New           record.Record `json:"new"`
	ChangedFields []string      `json:"changedFields"`
}

// Result holds the three mutually exclusive buckets.
type Result struct {
	Added    []record.Record `json:"added"`
	Removed  []record.Record `json:"removed"`
	Modified []Change        `json:"modified"`
}

// Stats is the arithmetic summary of a Result.
type Stats struct {
	AddedCount    int `json:"addedCount"`
	RemovedCount  int `json:"removedCount"`
	ModifiedCount int `json:"modifiedCount"`
	TotalChanges  int `json:"totalChanges"`
}

// Empty reports whether all three buckets are empty.
func (r Result) Empty() bool {
	return len(r.Added) == 0 && len(r.Removed) == 0 && len(r.Modified) == 0
}

// index maps ids to their last occurrence and keeps the order in which each
// id was first seen.
type index struct {
	order []string
	byID  map[string]record.Record
}

func newIndex(records []record.Record) index {
	idx := index{byID: make(map[string]record.Record, len(records))}
	for _, r := range records {
		if _, seen := idx.byID[r.ID]; !seen {
			idx.order = append(idx.order, r.ID)
		}
		idx.byID[r.ID] = r
	}
	return idx
}

// Compute compares old and new by id. Nil input counts as empty. Added keeps
// new's order, removed keeps old's order and modified keeps new's order.
func Compute(old, new []record.Record) Result {
	oldIdx := newIndex(old)
	newIdx := newIndex(new)

	result := Result{
		Added:    []record.Record{},
		Removed:  []record.Record{},
		Modified: []Change{},
	}

	for _, id := range newIdx.order {
		if _, ok := oldIdx.byID[id]; !ok {
			result.Added = append(result.Added, newIdx.byID[id])
		}
	}

	for _, id := range oldIdx.order {
		if _, ok := newIdx.byID[id]; !ok {
			result.Removed = append(result.Removed, oldIdx.byID[id])
		}
	}

	for _, id := range newIdx.order {
		o, ok := oldIdx.byID[id]
		if !ok {
			continue
		}
		n := newIdx.byID[id]
		if o.Equal(n) {
			continue
		}
		result.Modified = append(result.Modified, Change{
			Old:           o,
			New:           n,
			ChangedFields: ChangedFields(o, n),
		})
	}

	return result
}

// ChangedFields lists the compared fields whose values differ, in the fixed
// order of record.ScalarFields followed by record.ListFields. Fields outside
// those sets are never reported.
func ChangedFields(old, new record.Record) []string {
	changes := []string{}

	for _, f := range record.ScalarFields {
		o, _ := old.Field(f)
		n, _ := new.Field(f)
		if o != n {
			changes = append(changes, f)
		}
	}

	for _, f := range record.ListFields {
		o, _ := old.Field(f)
		n, _ := new.Field(f)
		if !slices.Equal(o.([]string), n.([]string)) {
			changes = append(changes, f)
		}
	}

	return changes
}

// ComputeStats counts each bucket.
func ComputeStats(r Result) Stats {
	s := Stats{
		AddedCount:    len(r.Added),
		RemovedCount:  len(r.Removed),
		ModifiedCount: len(r.Modified),
	}
	s.TotalChanges = s.AddedCount + s.RemovedCount + s.ModifiedCount
	return s
}

// Format renders r as line oriented text. The output depends only on r.
func Format(r Result) string {
	var lines []string

	if len(r.Added) > 0 {
		lines = append(lines, fmt.Sprintf("Added: %d", len(r.Added)))
		for _, t := range r.Added {
			lines = append(lines, fmt.Sprintf("  + %s: %s", t.ID, t.DisplayName()))
		}
	}

	if len(r.Removed) > 0 {
		lines = append(lines, fmt.Sprintf("Removed: %d", len(r.Removed)))
		for _, t := range r.Removed {
			lines = append(lines, fmt.Sprintf("  - %s: %s", t.ID, t.DisplayName()))
		}
	}

	if len(r.Modified) > 0 {
		lines = append(lines, fmt.Sprintf("Modified: %d", len(r.Modified)))
		for _, m := range r.Modified {
			fields := m.ChangedFields
			if fields == nil {
				fields = ChangedFields(m.Old, m.New)
			}
			lines = append(lines, fmt.Sprintf("  ~ %s: %s (%s)", m.New.ID, m.New.DisplayName(), strings.Join(fields, ", ")))
		}
	}

	if len(lines) == 0 {
		return NoChanges
	}

	return strings.Join(lines, "\n")
}

// Engine exposes Compute as a value that can be injected.
type Engine struct{}

func (Engine) Compute(old, new []record.Record) Result { return Compute(old, new) }
