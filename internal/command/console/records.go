// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package console

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/staranto/theoryctl/internal/differ"
	"github.com/staranto/theoryctl/internal/driller"
	"github.com/staranto/theoryctl/internal/filters"
	"github.com/staranto/theoryctl/internal/history"
	"github.com/staranto/theoryctl/internal/record"
	"github.com/staranto/theoryctl/internal/svutil"
)

// path resolves a dotted path against the collection. The first segment may
// name a record id, in which case the rest is resolved against that record.
func (e *Engine) path(p string) string {
	doc := e.document()

	first, rest, _ := strings.Cut(p, ".")
	if i := e.Collection.Find(first); i >= 0 {
		data, err := json.Marshal(e.Collection.Theories[i])
		if err != nil {
			return fmt.Sprintf("Error: %s", err)
		}
		doc, p = string(data), rest
	}

	return formatResult(driller.Driller(doc, p))
}

func (e *Engine) diff(args []string) string {
	live := e.Collection
	old, new, err := svutil.Pair(e.Versions, &live, args...)
	if err != nil {
		return fmt.Sprintf("Error: %s", err)
	}

	compute := e.Compute
	if compute == nil {
		compute = differ.Compute
	}
	r := compute(old.Data.Theories, new.Data.Theories)

	return fmt.Sprintf("Comparing %s with %s\n%s",
		svutil.Name(e.Versions, old), svutil.Name(e.Versions, new), differ.Format(r))
}

func formatResult(r gjson.Result) string {
	if !r.Exists() {
		return ""
	}
	if r.IsObject() || r.IsArray() {
		var buf bytes.Buffer
		if err := json.Indent(&buf, []byte(r.Raw), "", "  "); err == nil {
			return buf.String()
		}
		return r.Raw
	}
	return r.String()
}

func search(records []record.Record, q string) []record.Record {
	var out []record.Record
	for _, r := range records {
		data, err := json.Marshal(r)
		if err != nil {
			continue
		}
		if filters.MatchText(gjson.ParseBytes(data), q) {
			out = append(out, r)
		}
	}
	return out
}

// byCategory matches a category key exactly or its label ignoring case.
func byCategory(records []record.Record, cat string) []record.Record {
	var out []record.Record
	for _, r := range records {
		if r.Category == cat || strings.EqualFold(record.CategoryLabel(r.Category), cat) {
			out = append(out, r)
		}
	}
	return out
}

func listRecords(records []record.Record) string {
	lines := make([]string, 0, len(records))
	for _, r := range records {
		lines = append(lines, fmt.Sprintf("%s  %s  [%s]", r.ID, r.DisplayName(), r.Category))
	}
	return strings.Join(lines, "\n")
}

func categorySummary(records []record.Record) string {
	counts := map[string]int{}
	for _, r := range records {
		counts[r.Category]++
	}

	var lines []string
	for _, cat := range record.UsedCategories(records) {
		lines = append(lines, fmt.Sprintf("%s (%s): %d", cat, record.CategoryLabel(cat), counts[cat]))
	}
	return strings.Join(lines, "\n")
}

func listVersions(versions []history.Snapshot) string {
	lines := make([]string, 0, len(versions))
	for i, v := range versions {
		lines = append(lines, fmt.Sprintf("%-4s %d  %s  %s (%d theories)",
			history.Label(versions, i), v.ID, v.Timestamp, v.Description, v.TheoryCount))
	}
	return strings.Join(lines, "\n")
}
