// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package console

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/staranto/theoryctl/internal/differ"
	"github.com/staranto/theoryctl/internal/history"
	"github.com/staranto/theoryctl/internal/record"
)

// NoResults is printed when a query matched nothing.
const NoResults = "No results found."

// Engine answers console queries over one collection and its version log.
type Engine struct {
	Collection record.Collection
	Versions   []history.Snapshot
	// Compute is the diff engine, differ.Compute when nil.
	Compute func(old, new []record.Record) differ.Result

	doc string
}

// New returns an Engine over copies of c and versions.
func New(c record.Collection, versions []history.Snapshot) *Engine {
	return &Engine{Collection: c.Clone(), Versions: versions}
}

// Process routes a query to its handler based on syntax and returns the
// text to show.
func (e *Engine) Process(query string) string {
	query = strings.TrimSpace(query)
	if query == "" {
		return ""
	}

	// Function evaluation mode.
	if strings.HasPrefix(query, "/") {
		return evaluateFunction(strings.TrimPrefix(query, "/"), e.Collection, e.Versions)
	}

	// Path mode.
	if strings.HasPrefix(query, ".") {
		return orNone(e.path(strings.TrimPrefix(query, ".")))
	}

	verb, arg, _ := strings.Cut(query, " ")
	arg = strings.TrimSpace(arg)

	switch strings.ToLower(verb) {
	case "help":
		return Help()
	case "ls", "list":
		return orNone(listRecords(e.Collection.Theories))
	case "show":
		return e.show(arg)
	case "search", "find":
		return orNone(listRecords(search(e.Collection.Theories, arg)))
	case "cat", "category":
		if arg == "" {
			return orNone(categorySummary(e.Collection.Theories))
		}
		return orNone(listRecords(byCategory(e.Collection.Theories, arg)))
	case "history", "versions":
		return orNone(listVersions(e.Versions))
	case "diff":
		return e.diff(strings.Fields(arg))
	case "count":
		return fmt.Sprintf("%d", len(e.Collection.Theories))
	}

	if hasBalancedParens(query) {
		return evaluateFunction(query, e.Collection, e.Versions)
	}

	// A bare record id shows that record.
	if e.Collection.Find(query) >= 0 {
		return e.show(query)
	}

	return fmt.Sprintf("Error: unknown command %q. Type 'help' for syntax.", verb)
}

func (e *Engine) show(id string) string {
	if id == "" {
		return "Error: show needs a record id"
	}
	i := e.Collection.Find(id)
	if i < 0 {
		return fmt.Sprintf("Error: record %s not found", id)
	}
	return toJSON(e.Collection.Theories[i])
}

// document is the collection rendered once for path queries.
func (e *Engine) document() string {
	if e.doc == "" {
		data, err := json.Marshal(e.Collection)
		if err != nil {
			return "{}"
		}
		e.doc = string(data)
	}
	return e.doc
}

// hasBalancedParens checks if a string has balanced parentheses
func hasBalancedParens(s string) bool {
	openCount := 0
	closeCount := 0

	for _, char := range s {
		switch char {
		case '(':
			openCount++
		case ')':
			closeCount++
		}
	}

	return openCount > 0 && openCount == closeCount
}

func orNone(s string) string {
	if s == "" {
		return NoResults
	}
	return s
}

func toJSON(v interface{}) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("Error formatting JSON: %s", err)
	}
	return string(data)
}

// Help returns the help text as a string
func Help() string {
	return `Query syntax:
  Commands
     ls                               - List every record
     show theory-001                  - Record as JSON (a bare id works too)
     search flow                      - Free-text search over id, names, description, theorists
     cat                              - Record counts per category
     cat motivation                   - Records in one category
     count                            - Number of records
     history                          - Stored versions, newest first
     diff                             - Second newest version against the newest
     diff v3                          - A version against the next newer one
     diff v1 live                     - Any two versions, 'live' being the current data

  Paths (queries starting with '.')
     .metadata                        - Collection metadata
     .theories[0].name                - Indexed record field
     .theory-002.theorists            - Field of the record with that id

  Functions (queries starting with '/', or containing balanced parens)
     /length(theories)                - Number of records
     /upper(theories[0].name)         - Convert to uppercase
     /[for t in theories : t.id if t.priority < 3]
     /keys(categories)                - Category keys in use

  Navigation:
     ↑/↓ arrows                       - Navigate command history
     exit, Ctrl+C                     - Exit`
}
