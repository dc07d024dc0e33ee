// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package differ

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/apex/log"
	"github.com/yudai/gojsondiff"
	"github.com/yudai/gojsondiff/formatter"

	"github.com/staranto/theoryctl/internal/record"
)

// Detail renders a structural JSON delta between two versions of a record.
// It returns "" when the records serialize identically.
func Detail(old, new record.Record, coloring bool) (string, error) {
	left, err := json.Marshal(old)
	if err != nil {
		return "", fmt.Errorf("failed to marshal record: %w", err)
	}
	right, err := json.Marshal(new)
	if err != nil {
		return "", fmt.Errorf("failed to marshal record: %w", err)
	}

	delta, err := gojsondiff.New().Compare(left, right)
	if err != nil {
		return "", fmt.Errorf("failed to compare records: %w", err)
	}

	if !delta.Modified() {
		return "", nil
	}

	var jdoc map[string]interface{}
	if err := json.Unmarshal(left, &jdoc); err != nil {
		return "", fmt.Errorf("failed to unmarshal record: %w", err)
	}

	config := formatter.AsciiFormatterConfig{
		ShowArrayIndex: false,
		Coloring:       coloring,
	}

	return formatter.NewAsciiFormatter(jdoc, config).Format(delta)
}

// Write prints the summary of r to w and, with detail set, a JSON delta for
// every modified record.
func Write(w io.Writer, r Result, detail bool, coloring bool) error {
	log.Debugf("diff stats: %+v", ComputeStats(r))

	fmt.Fprintln(w, Format(r))

	if !detail {
		return nil
	}

	for _, m := range r.Modified {
		d, err := Detail(m.Old, m.New, coloring)
		if err != nil {
			return err
		}
		if d == "" {
			continue
		}
		fmt.Fprintf(w, "\n%s %s\n", m.New.ID, strings.Repeat("-", 40))
		fmt.Fprint(w, d)
	}

	return nil
}
