// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package record

import (
	"encoding/json"
	"fmt"
	"os"
)

// Collection is the whole document: free-form metadata plus the ordered
// record list.
type Collection struct {
	Metadata map[string]any `json:"metadata" yaml:"metadata"`
	Theories []Record       `json:"theories" yaml:"theories"`
}

// Clone returns a deep copy. A nil Metadata becomes an empty map and a nil
// record list an empty one so snapshots always carry both keys.
func (c Collection) Clone() Collection {
	out := Collection{
		Metadata: CloneMap(c.Metadata),
		Theories: make([]Record, len(c.Theories)),
	}
	if out.Metadata == nil {
		out.Metadata = map[string]any{}
	}
	for i, r := range c.Theories {
		out.Theories[i] = r.Clone()
	}
	return out
}

// Find returns the index of the record with id, or -1.
func (c Collection) Find(id string) int {
	for i, r := range c.Theories {
		if r.ID == id {
			return i
		}
	}
	return -1
}

// Parse decodes a collection document. A missing theories array is reported
// by Validate, not here.
func Parse(data []byte) (Collection, error) {
	var c Collection
	if err := json.Unmarshal(data, &c); err != nil {
		return Collection{}, fmt.Errorf("failed to parse collection: %w", err)
	}
	if c.Metadata == nil {
		c.Metadata = map[string]any{}
	}
	return c, nil
}

// ReadFile loads a collection document from disk.
func ReadFile(path string) (Collection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Collection{}, err
	}
	return Parse(data)
}

// Marshal renders the document with two space indentation.
func (c Collection) Marshal() ([]byte, error) {
	if c.Metadata == nil {
		c.Metadata = map[string]any{}
	}
	if c.Theories == nil {
		c.Theories = []Record{}
	}
	return json.MarshalIndent(c, "", "  ")
}

// CloneMap deep copies a JSON-shaped map.
func CloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return CloneMap(t)
	case []any:
		if t == nil {
			return t
		}
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	case []string:
		if t == nil {
			return t
		}
		return append([]string(nil), t...)
	default:
		return v
	}
}
