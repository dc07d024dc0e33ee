// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package history

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math"

	"github.com/apex/log"
	"github.com/dustin/go-humanize"

	"github.com/staranto/theoryctl/internal/backend/kv"
	"github.com/staranto/theoryctl/internal/record"
)

const (
	// StorageKey is the default key the log is stored under.
	StorageKey = "tenjin_theory_versions"
	// DefaultCapacity is the assumed storage ceiling for usage reports.
	DefaultCapacity = 5 * 1024 * 1024
	// WarnPercentage is the usage level above which callers should warn.
	WarnPercentage = 80.0

	QuotaMessage    = "storage capacity insufficient: delete old versions"
	ConflictMessage = "version history changed concurrently: try again"
	FailureMessage  = "failed to save version history"

	defaultRetries = 5
)

// SaveResult reports the outcome of a write. Error is empty on success.
type SaveResult struct {
	Success  bool   `json:"success"`
	Error    string `json:"error,omitempty"`
	Quota    bool   `json:"quota,omitempty"`
	Conflict bool   `json:"conflict,omitempty"`
}

// ClearResult reports the outcome of Clear.
type ClearResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Usage describes how much of the assumed capacity the stored log uses.
// UsedKB and Percentage are rounded to one decimal.
type Usage struct {
	Used       int64   `json:"used"`
	UsedKB     float64 `json:"usedKB"`
	Percentage float64 `json:"percentage"`
	Capacity   int64   `json:"capacity"`
	Human      string  `json:"human"`
}

// Warn reports whether usage passed WarnPercentage.
func (u Usage) Warn() bool {
	return u.Percentage > WarnPercentage
}

// Store persists the version log in a kv.Store.
type Store struct {
	kv          kv.Store
	key         string
	capacity    int64
	maxVersions int
	retries     int
	ids         *IDGenerator
}

type StoreOption func(*Store)

// NewStore returns a Store over st with the default key, capacity and
// retention limit.
func NewStore(st kv.Store, opts ...StoreOption) *Store {
	s := &Store{
		kv:          st,
		key:         StorageKey,
		capacity:    DefaultCapacity,
		maxVersions: MaxVersions,
		retries:     defaultRetries,
		ids:         defaultIDs,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func WithKey(key string) StoreOption {
	return func(s *Store) {
		if key != "" {
			s.key = key
		}
	}
}

func WithCapacity(bytes int64) StoreOption {
	return func(s *Store) {
		if bytes > 0 {
			s.capacity = bytes
		}
	}
}

func WithMaxVersions(n int) StoreOption {
	return func(s *Store) {
		if n > 0 {
			s.maxVersions = n
		}
	}
}

func WithIDGenerator(g *IDGenerator) StoreOption {
	return func(s *Store) { s.ids = g }
}

// WithRetries bounds how often Update retries after a write conflict.
func WithRetries(n int) StoreOption {
	return func(s *Store) {
		if n >= 0 {
			s.retries = n
		}
	}
}

func (s *Store) Key() string      { return s.key }
func (s *Store) MaxVersions() int { return s.maxVersions }
func (s *Store) String() string   { return s.kv.String() + "#" + s.key }

// Save writes the whole log in one Put. The prior value stays in place when
// the write fails.
func (s *Store) Save(ctx context.Context, versions []Snapshot) SaveResult {
	data, err := encode(versions)
	if err != nil {
		return failure(err)
	}
	if err := s.kv.Put(ctx, s.key, data); err != nil {
		return failure(err)
	}
	return SaveResult{Success: true}
}

// Load returns the stored log. Missing, unreadable or malformed data all
// yield an empty log.
func (s *Store) Load(ctx context.Context) []Snapshot {
	data, err := s.kv.Get(ctx, s.key)
	if err != nil {
		if !errors.Is(err, kv.ErrNotFound) {
			log.WithError(err).Warnf("failed to read version history %s", s.key)
		}
		return []Snapshot{}
	}
	return decode(data)
}

// Clear deletes the stored log. Clearing an empty store succeeds.
func (s *Store) Clear(ctx context.Context) ClearResult {
	if err := s.kv.Delete(ctx, s.key); err != nil {
		return ClearResult{Error: err.Error()}
	}
	return ClearResult{Success: true}
}

// Usage measures the serialized log against the capacity.
func (s *Store) Usage(ctx context.Context) Usage {
	var used int64
	if data, err := s.kv.Get(ctx, s.key); err == nil {
		used = int64(len(data))
	}

	return Usage{
		Used:       used,
		UsedKB:     round1(float64(used) / 1024),
		Percentage: round1(float64(used) / float64(s.capacity) * 100),
		Capacity:   s.capacity,
		Human:      humanize.IBytes(uint64(used)),
	}
}

// Update applies fn to the stored log and writes the result back, trimmed
// to the retention limit. Stores that implement kv.Versioned get an
// optimistic read-modify-write that is retried on conflict. The returned
// log is the attempted state even when the write failed.
func (s *Store) Update(ctx context.Context, fn func([]Snapshot) ([]Snapshot, error)) ([]Snapshot, SaveResult) {
	vs, ok := s.kv.(kv.Versioned)
	if !ok {
		next, err := fn(s.Load(ctx))
		if err != nil {
			return nil, failure(err)
		}
		next = EnforceVersionLimit(next, s.maxVersions)
		return next, s.Save(ctx, next)
	}

	var next []Snapshot
	for attempt := 0; ; attempt++ {
		current, token := s.loadVersioned(ctx, vs)

		var err error
		next, err = fn(current)
		if err != nil {
			return nil, failure(err)
		}
		next = EnforceVersionLimit(next, s.maxVersions)

		data, err := encode(next)
		if err != nil {
			return next, failure(err)
		}

		err = vs.PutIf(ctx, s.key, data, token)
		if err == nil {
			return next, SaveResult{Success: true}
		}
		if !errors.Is(err, kv.ErrConflict) || attempt >= s.retries {
			return next, failure(err)
		}
		log.Debugf("history update conflict on %s, attempt %d", s.key, attempt+1)
	}
}

// Append snapshots c and puts it at the head of the stored log.
func (s *Store) Append(ctx context.Context, c record.Collection, description string) (Snapshot, []Snapshot, SaveResult) {
	var snap Snapshot
	versions, res := s.Update(ctx, func(current []Snapshot) ([]Snapshot, error) {
		if len(current) > 0 {
			s.ids.Observe(current[0].ID)
		}
		snap = s.ids.Create(c, description)
		return Prepend(current, snap, s.maxVersions), nil
	})
	return snap, versions, res
}

// Remove deletes the snapshot with id from the stored log.
func (s *Store) Remove(ctx context.Context, id int64) ([]Snapshot, SaveResult) {
	return s.Update(ctx, func(current []Snapshot) ([]Snapshot, error) {
		return RemoveVersion(current, id), nil
	})
}

// loadVersioned reads the log and its token. A corrupt value still yields
// its token so the next write can replace it.
func (s *Store) loadVersioned(ctx context.Context, vs kv.Versioned) ([]Snapshot, string) {
	data, token, err := vs.GetVersioned(ctx, s.key)
	if err != nil {
		if !errors.Is(err, kv.ErrNotFound) {
			log.WithError(err).Warnf("failed to read version history %s", s.key)
		}
		return []Snapshot{}, ""
	}
	return decode(data), token
}

func encode(versions []Snapshot) ([]byte, error) {
	if versions == nil {
		versions = []Snapshot{}
	}
	return json.Marshal(versions)
}

func decode(data []byte) []Snapshot {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		if len(trimmed) > 0 {
			log.Warnf("version history is not a list, ignoring %d bytes", len(data))
		}
		return []Snapshot{}
	}

	var versions []Snapshot
	if err := json.Unmarshal(trimmed, &versions); err != nil {
		log.WithError(err).Warn("version history is corrupt, ignoring it")
		return []Snapshot{}
	}
	if versions == nil {
		return []Snapshot{}
	}
	return versions
}

func failure(err error) SaveResult {
	switch {
	case errors.Is(err, kv.ErrQuotaExceeded):
		return SaveResult{Error: QuotaMessage, Quota: true}
	case errors.Is(err, kv.ErrConflict):
		return SaveResult{Error: ConflictMessage, Conflict: true}
	}
	log.WithError(err).Debug("history save failed")
	return SaveResult{Error: FailureMessage + ": " + err.Error()}
}

func round1(f float64) float64 {
	return math.Round(f*10) / 10
}
