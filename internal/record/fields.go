// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package record

import (
	"fmt"
	"strconv"
	"strings"
)

// ScalarFields and ListFields are the compared fields, in display order.
var (
	ScalarFields = []string{"name", "name_ja", "description", "description_ja", "category", "priority"}
	ListFields   = []string{"theorists", "key_principles", "applications", "strengths", "limitations"}
)

// ListDelim separates list elements in a single Set value.
const ListDelim = ";"

// fieldValue returns the value of a named field as string, int or []string.
func fieldValue(r Record, name string) (any, bool) {
	switch name {
	case "id":
		return r.ID, true
	case "name":
		return r.Name, true
	case "name_ja":
		return r.NameJa, true
	case "category":
		return r.Category, true
	case "priority":
		return r.Priority, true
	case "description":
		return r.Description, true
	case "description_ja":
		return r.DescriptionJa, true
	case "theorists":
		return r.Theorists, true
	case "key_principles":
		return r.KeyPrinciples, true
	case "applications":
		return r.Applications, true
	case "strengths":
		return r.Strengths, true
	case "limitations":
		return r.Limitations, true
	}
	return nil, false
}

// Field exposes fieldValue for callers outside the package.
func (r Record) Field(name string) (any, bool) {
	return fieldValue(r, name)
}

// Set assigns a field from its textual form. List fields split on ListDelim
// and drop blank elements. Unknown names go to Extra as strings.
func (r *Record) Set(name, value string) error {
	value = strings.TrimSpace(value)
	list := func() []string {
		var out []string
		for part := range strings.SplitSeq(value, ListDelim) {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
		return out
	}

	switch name {
	case "id":
		return fmt.Errorf("%w: id cannot be set", ErrInvalid)
	case "name":
		r.Name = value
	case "name_ja":
		r.NameJa = value
	case "category":
		r.Category = value
	case "priority":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%w: priority must be a number: %s", ErrInvalid, value)
		}
		r.Priority = n
	case "description":
		r.Description = value
	case "description_ja":
		r.DescriptionJa = value
	case "theorists":
		r.Theorists = list()
	case "key_principles":
		r.KeyPrinciples = list()
	case "applications":
		r.Applications = list()
	case "strengths":
		r.Strengths = list()
	case "limitations":
		r.Limitations = list()
	default:
		if name == "" {
			return fmt.Errorf("%w: empty field name", ErrInvalid)
		}
		if r.Extra == nil {
			r.Extra = map[string]any{}
		}
		r.Extra[name] = value
	}
	return nil
}

// New returns an empty record with the defaults a freshly added theory gets.
func New(id string) Record {
	return Record{
		ID:            id,
		Priority:      4,
		Theorists:     []string{},
		KeyPrinciples: []string{},
		Applications:  []string{},
		Strengths:     []string{},
		Limitations:   []string{},
	}
}
