// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package record

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid")

// FieldError names the offending field.
type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) Error() string {
	return e.Field + ": " + e.Message
}

// ValidationError collects every problem found in one record or document.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		parts[i] = fe.Error()
	}
	return "invalid: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrInvalid }

// Validate checks a single record: id, at least one name, and a category.
func Validate(r Record) error {
	var errs []FieldError
	if r.ID == "" {
		errs = append(errs, FieldError{"id", "id is required"})
	}
	if r.Name == "" && r.NameJa == "" {
		errs = append(errs, FieldError{"name", "name or name_ja is required"})
	}
	if r.Category == "" {
		errs = append(errs, FieldError{"category", "category is required"})
	}
	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}
	return nil
}

// ValidateImport checks a document before it replaces the live collection.
// The theories list must be non-empty, every item needs an id and a name, and
// ids must be unique.
func ValidateImport(c Collection) error {
	if len(c.Theories) == 0 {
		return &ValidationError{Errors: []FieldError{{"theories", "theories array is missing or empty"}}}
	}

	var errs []FieldError
	seen := map[string]bool{}
	for i, r := range c.Theories {
		field := fmt.Sprintf("theories[%d]", i)
		switch {
		case r.ID == "":
			errs = append(errs, FieldError{field, "id is required"})
		case seen[r.ID]:
			errs = append(errs, FieldError{field, "duplicate id " + r.ID})
		}
		seen[r.ID] = true
		if r.Name == "" && r.NameJa == "" {
			errs = append(errs, FieldError{field, "name or name_ja is required"})
		}
	}
	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}
	return nil
}

// MissingFields returns the named fields that are empty on r. Lists count as
// empty when every element is blank.
func MissingFields(r Record, fields ...string) []string {
	var missing []string
	for _, f := range fields {
		v, ok := fieldValue(r, f)
		if !ok {
			missing = append(missing, f)
			continue
		}
		switch t := v.(type) {
		case string:
			if strings.TrimSpace(t) == "" {
				missing = append(missing, f)
			}
		case []string:
			blank := true
			for _, s := range t {
				if strings.TrimSpace(s) != "" {
					blank = false
					break
				}
			}
			if blank {
				missing = append(missing, f)
			}
		}
	}
	return missing
}
