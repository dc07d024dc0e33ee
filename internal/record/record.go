// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package record

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"slices"
	"sort"
	"strings"
)

// Record is one catalogued theory. Keys the struct does not know about are
// kept in Extra so they survive a load/save cycle untouched.
type Record struct {
	ID            string   `json:"id" yaml:"id"`
	Name          string   `json:"name" yaml:"name"`
	NameJa        string   `json:"name_ja" yaml:"name_ja"`
	Category      string   `json:"category" yaml:"category"`
	Priority      int      `json:"priority" yaml:"priority"`
	Theorists     []string `json:"theorists" yaml:"theorists"`
	Description   string   `json:"description" yaml:"description"`
	DescriptionJa string   `json:"description_ja" yaml:"description_ja"`
	KeyPrinciples []string `json:"key_principles" yaml:"key_principles"`
	Applications  []string `json:"applications" yaml:"applications"`
	Strengths     []string `json:"strengths" yaml:"strengths"`
	Limitations   []string `json:"limitations" yaml:"limitations"`

	Extra map[string]any `json:"-" yaml:"-"`
}

// plain has the same JSON shape as Record without its methods.
type plain Record

var knownKeys = func() map[string]bool {
	keys := map[string]bool{}
	t := reflect.TypeOf(plain{})
	for i := 0; i < t.NumField(); i++ {
		name, _, _ := strings.Cut(t.Field(i).Tag.Get("json"), ",")
		if name != "" && name != "-" {
			keys[name] = true
		}
	}
	return keys
}()

// UnmarshalJSON decodes the known fields and collects any others into Extra.
func (r *Record) UnmarshalJSON(data []byte) error {
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	for k, v := range raw {
		if knownKeys[k] {
			continue
		}
		var val any
		if err := json.Unmarshal(v, &val); err != nil {
			return fmt.Errorf("field %s: %w", k, err)
		}
		if p.Extra == nil {
			p.Extra = map[string]any{}
		}
		p.Extra[k] = val
	}

	*r = Record(p)
	return nil
}

// MarshalJSON writes the known fields in declaration order, lists as [] when
// empty, followed by Extra keys in sorted order.
func (r Record) MarshalJSON() ([]byte, error) {
	p := plain(r)
	p.Theorists = nonNil(p.Theorists)
	p.KeyPrinciples = nonNil(p.KeyPrinciples)
	p.Applications = nonNil(p.Applications)
	p.Strengths = nonNil(p.Strengths)
	p.Limitations = nonNil(p.Limitations)

	out, err := json.Marshal(p)
	if err != nil || len(r.Extra) == 0 {
		return out, err
	}

	keys := make([]string, 0, len(r.Extra))
	for k := range r.Extra {
		if !knownKeys[k] {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	buf.Write(out[:len(out)-1])
	for _, k := range keys {
		kb, _ := json.Marshal(k)
		vb, err := json.Marshal(r.Extra[k])
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", k, err)
		}
		buf.WriteByte(',')
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// DisplayName prefers the English name and falls back to the Japanese one.
func (r Record) DisplayName() string {
	if r.Name != "" {
		return r.Name
	}
	return r.NameJa
}

// Clone returns a fully independent copy. Nil lists stay nil.
func (r Record) Clone() Record {
	c := r
	c.Theorists = slices.Clone(r.Theorists)
	c.KeyPrinciples = slices.Clone(r.KeyPrinciples)
	c.Applications = slices.Clone(r.Applications)
	c.Strengths = slices.Clone(r.Strengths)
	c.Limitations = slices.Clone(r.Limitations)
	if r.Extra != nil {
		c.Extra = CloneMap(r.Extra)
	}
	return c
}

// Equal reports whether two records hold the same content. Lists compare
// element-wise and in order; a nil list equals an empty one.
func (r Record) Equal(o Record) bool {
	if r.ID != o.ID || r.Name != o.Name || r.NameJa != o.NameJa ||
		r.Category != o.Category || r.Priority != o.Priority ||
		r.Description != o.Description || r.DescriptionJa != o.DescriptionJa {
		return false
	}
	if !slices.Equal(r.Theorists, o.Theorists) ||
		!slices.Equal(r.KeyPrinciples, o.KeyPrinciples) ||
		!slices.Equal(r.Applications, o.Applications) ||
		!slices.Equal(r.Strengths, o.Strengths) ||
		!slices.Equal(r.Limitations, o.Limitations) {
		return false
	}
	if len(r.Extra) == 0 && len(o.Extra) == 0 {
		return true
	}
	return reflect.DeepEqual(r.Extra, o.Extra)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
