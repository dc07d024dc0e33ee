// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package history

import (
	"fmt"
	"sync"
	"time"

	"github.com/staranto/theoryctl/internal/record"
)

const (
	// MaxVersions is the default retention limit.
	MaxVersions = 50
	// DefaultDescription labels snapshots saved without one.
	DefaultDescription = "auto-save"

	timestampLayout = "2006-01-02T15:04:05.000Z"
)

// Snapshot is one entry of the version log. Data is owned by the snapshot
// and never shares memory with the live collection.
type Snapshot struct {
	ID          int64             `json:"id"`
	Timestamp   string            `json:"timestamp"`
	Description string            `json:"description"`
	TheoryCount int               `json:"theoryCount"`
	Data        record.Collection `json:"data"`
}

// Time parses Timestamp, falling back to the id's millisecond clock.
func (s Snapshot) Time() time.Time {
	if t, err := time.Parse(timestampLayout, s.Timestamp); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339Nano, s.Timestamp); err == nil {
		return t
	}
	return time.UnixMilli(s.ID).UTC()
}

// IDGenerator issues strictly increasing millisecond ids. When the clock has
// not advanced past the last id (same millisecond or a step backwards) the
// next id is last+1.
type IDGenerator struct {
	Now func() time.Time

	mu   sync.Mutex
	last int64
}

// Next returns a new id.
func (g *IDGenerator) Next() int64 {
	now := time.Now
	if g.Now != nil {
		now = g.Now
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	id := now().UnixMilli()
	if id <= g.last {
		id = g.last + 1
	}
	g.last = id
	return id
}

// Observe raises the floor so later ids sort after id. Used with ids read
// back from storage that another process may have issued.
func (g *IDGenerator) Observe(id int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if id > g.last {
		g.last = id
	}
}

var defaultIDs = &IDGenerator{}

// CreateVersion builds a snapshot of c with the process wide id generator.
func CreateVersion(c record.Collection, description string) Snapshot {
	return defaultIDs.Create(c, description)
}

// Create builds a snapshot of c. It deep copies c and does not touch any
// stored log.
func (g *IDGenerator) Create(c record.Collection, description string) Snapshot {
	if description == "" {
		description = DefaultDescription
	}
	id := g.Next()
	return Snapshot{
		ID:          id,
		Timestamp:   time.UnixMilli(id).UTC().Format(timestampLayout),
		Description: description,
		TheoryCount: len(c.Theories),
		Data:        c.Clone(),
	}
}

// EnforceVersionLimit keeps the first limit entries of a newest-first log.
// A limit <= 0 means MaxVersions. The result never aliases spare capacity
// of versions.
func EnforceVersionLimit(versions []Snapshot, limit int) []Snapshot {
	if versions == nil {
		return []Snapshot{}
	}
	if limit <= 0 {
		limit = MaxVersions
	}
	if len(versions) <= limit {
		return versions
	}
	return versions[:limit:limit]
}

// RemoveVersion returns a new log without any entry whose id is id.
func RemoveVersion(versions []Snapshot, id int64) []Snapshot {
	out := make([]Snapshot, 0, len(versions))
	for _, v := range versions {
		if v.ID != id {
			out = append(out, v)
		}
	}
	return out
}

// Prepend puts s at the head of the log and applies the limit.
func Prepend(versions []Snapshot, s Snapshot, limit int) []Snapshot {
	out := make([]Snapshot, 0, len(versions)+1)
	out = append(out, s)
	out = append(out, versions...)
	return EnforceVersionLimit(out, limit)
}

// Find returns the index of the snapshot with id, or -1.
func Find(versions []Snapshot, id int64) int {
	for i, v := range versions {
		if v.ID == id {
			return i
		}
	}
	return -1
}

// Label is the display name of versions[i]: v<N> with N counting up from the
// oldest retained snapshot.
func Label(versions []Snapshot, i int) string {
	return fmt.Sprintf("v%d", len(versions)-i)
}
