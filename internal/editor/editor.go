// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package editor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/apex/log"

	"github.com/staranto/theoryctl/internal/differ"
	"github.com/staranto/theoryctl/internal/history"
	"github.com/staranto/theoryctl/internal/notify"
	"github.com/staranto/theoryctl/internal/record"
)

var (
	ErrNotFound        = errors.New("record not found")
	ErrVersionNotFound = errors.New("version not found")
)

// VersionStore is the persistence the editor needs from the version log.
type VersionStore interface {
	Append(ctx context.Context, c record.Collection, description string) (history.Snapshot, []history.Snapshot, history.SaveResult)
	Remove(ctx context.Context, id int64) ([]history.Snapshot, history.SaveResult)
	Load(ctx context.Context) []history.Snapshot
	Clear(ctx context.Context) history.ClearResult
	Usage(ctx context.Context) history.Usage
}

// DiffEngine compares two record lists.
type DiffEngine interface {
	Compute(old, new []record.Record) differ.Result
}

// Outcome describes the snapshots a mutation wrote. Save carries the last
// failed write if any.
type Outcome struct {
	Snapshots []history.Snapshot
	Save      history.SaveResult
}

// Warning is the message to show when a snapshot could not be stored. The
// mutation itself has been applied regardless.
func (o Outcome) Warning() string {
	if o.Save.Success {
		return ""
	}
	return o.Save.Error
}

// Editor is the state container for one data file.
type Editor struct {
	Path string

	store VersionStore
	diff  DiffEngine
	sink  notify.Sink
	now   func() time.Time

	live     record.Collection
	versions []history.Snapshot
}

type Option func(*Editor)

func WithDiffEngine(d DiffEngine) Option { return func(e *Editor) { e.diff = d } }
func WithSink(s notify.Sink) Option       { return func(e *Editor) { e.sink = s } }
func WithClock(now func() time.Time) Option {
	return func(e *Editor) { e.now = now }
}

// New returns an Editor with an empty collection.
func New(store VersionStore, opts ...Option) *Editor {
	e := &Editor{
		store:    store,
		diff:     differ.Engine{},
		sink:     notify.Discard{},
		now:      time.Now,
		live:     record.Collection{Metadata: map[string]any{}, Theories: []record.Record{}},
		versions: []history.Snapshot{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Load reads the data file at path and the stored version log. A missing
// file starts an empty collection.
func (e *Editor) Load(ctx context.Context, path string) error {
	e.Path = path

	c, err := record.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		log.Debugf("data file %s does not exist, starting empty", path)
		c = record.Collection{Metadata: map[string]any{}, Theories: []record.Record{}}
	case err != nil:
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	if c.Theories == nil {
		c.Theories = []record.Record{}
	}

	e.live = c
	e.versions = e.store.Load(ctx)
	return nil
}

// Collection returns a deep copy of the live collection.
func (e *Editor) Collection() record.Collection {
	return e.live.Clone()
}

// Records returns copies of the live records.
func (e *Editor) Records() []record.Record {
	return e.live.Clone().Theories
}

// Versions returns the version log as last loaded or written.
func (e *Editor) Versions() []history.Snapshot {
	return slices.Clone(e.versions)
}

// Get returns a copy of the record with id.
func (e *Editor) Get(id string) (record.Record, error) {
	i := e.live.Find(id)
	if i < 0 {
		return record.Record{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return e.live.Theories[i].Clone(), nil
}

// NextID is the id a new record would get.
func (e *Editor) NextID() string {
	return record.NextID(e.live.Theories)
}

// SaveRecord creates r, or replaces the record with the same id. An empty
// id is assigned the next free one.
func (e *Editor) SaveRecord(ctx context.Context, r record.Record) (record.Record, Outcome, error) {
	if r.ID == "" {
		r.ID = e.NextID()
	}
	if err := record.Validate(r); err != nil {
		return record.Record{}, Outcome{}, err
	}

	r = r.Clone()
	next := e.live
	next.Theories = slices.Clone(e.live.Theories)
	action := notify.Update
	if i := next.Find(r.ID); i >= 0 {
		next.Theories[i] = r
	} else {
		action = notify.Create
		next.Theories = append(next.Theories, r)
	}

	out, err := e.commit(ctx, next, "Saved "+r.ID)
	if err != nil {
		return r, out, err
	}
	e.sink.Notify(notify.Event{Type: notify.TypeTheoryUpdate, TheoryID: r.ID, Action: action})
	return r, out, nil
}

// DeleteRecord removes the record with id.
func (e *Editor) DeleteRecord(ctx context.Context, id string) (Outcome, error) {
	i := e.live.Find(id)
	if i < 0 {
		return Outcome{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	next := e.live
	next.Theories = slices.Delete(slices.Clone(e.live.Theories), i, i+1)

	out, err := e.commit(ctx, next, "Deleted "+id)
	if err != nil {
		return out, err
	}
	e.sink.Notify(notify.Event{Type: notify.TypeTheoryUpdate, TheoryID: id, Action: notify.Delete})
	return out, nil
}

// Import replaces the live collection with c after validating it. A non-empty
// collection is snapshotted first.
func (e *Editor) Import(ctx context.Context, c record.Collection, name string) (Outcome, error) {
	if err := record.ValidateImport(c); err != nil {
		return Outcome{}, err
	}

	var out Outcome
	if len(e.live.Theories) > 0 {
		out = e.snapshot(ctx, "Backup before import")
	}

	next, err := e.commit(ctx, c.Clone(), fmt.Sprintf("Imported %s (%d records)", filepath.Base(name), len(c.Theories)))
	return merge(out, next), err
}

// Export snapshots the live collection and writes it to w with
// metadata.total_theories and metadata.last_updated stamped.
func (e *Editor) Export(ctx context.Context, w io.Writer) (Outcome, error) {
	out := e.snapshot(ctx, "Snapshot at export")

	doc := e.live.Clone()
	doc.Metadata["total_theories"] = len(doc.Theories)
	doc.Metadata["last_updated"] = e.now().UTC().Format(time.RFC3339)

	data, err := doc.Marshal()
	if err != nil {
		return out, err
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return out, fmt.Errorf("failed to write export: %w", err)
	}
	return out, nil
}

// Restore makes the snapshot with id the live collection after backing up
// the current state. History is only ever added to.
func (e *Editor) Restore(ctx context.Context, id int64) (history.Snapshot, Outcome, error) {
	i := history.Find(e.versions, id)
	if i < 0 {
		return history.Snapshot{}, Outcome{}, fmt.Errorf("%w: %d", ErrVersionNotFound, id)
	}
	target := e.versions[i]

	out := e.snapshot(ctx, "Backup before restore")
	next := target.Data.Clone()
	if err := e.writeFile(next); err != nil {
		return target, out, err
	}
	e.live = next
	return target, out, nil
}

// SaveVersion snapshots the live collection as is.
func (e *Editor) SaveVersion(ctx context.Context, description string) Outcome {
	return e.snapshot(ctx, description)
}

// DeleteVersion drops one snapshot from the log.
func (e *Editor) DeleteVersion(ctx context.Context, id int64) (history.SaveResult, error) {
	if history.Find(e.versions, id) < 0 {
		return history.SaveResult{}, fmt.Errorf("%w: %d", ErrVersionNotFound, id)
	}
	versions, res := e.store.Remove(ctx, id)
	if versions != nil {
		e.versions = versions
	}
	return res, nil
}

// ClearHistory deletes the whole log.
func (e *Editor) ClearHistory(ctx context.Context) history.ClearResult {
	res := e.store.Clear(ctx)
	if res.Success {
		e.versions = []history.Snapshot{}
	}
	return res
}

func (e *Editor) Usage(ctx context.Context) history.Usage {
	return e.store.Usage(ctx)
}

// Diff compares two collections with the injected engine.
func (e *Editor) Diff(old, new record.Collection) differ.Result {
	return e.diff.Compute(old.Theories, new.Theories)
}

// Search returns the live records matching query and category. The query is
// matched case-insensitively against id, names, description and theorists;
// an empty query or category matches everything.
func (e *Editor) Search(query, category string) []record.Record {
	return Search(e.live.Theories, query, category)
}

// Search filters records the same way Editor.Search does.
func Search(records []record.Record, query, category string) []record.Record {
	q := strings.ToLower(strings.TrimSpace(query))
	out := []record.Record{}
	for _, r := range records {
		if category != "" && r.Category != category {
			continue
		}
		if q != "" && !matches(r, q) {
			continue
		}
		out = append(out, r.Clone())
	}
	return out
}

func matches(r record.Record, q string) bool {
	for _, s := range []string{r.ID, r.Name, r.NameJa, r.Description} {
		if strings.Contains(strings.ToLower(s), q) {
			return true
		}
	}
	for _, t := range r.Theorists {
		if strings.Contains(strings.ToLower(t), q) {
			return true
		}
	}
	return false
}

// commit writes next to the data file, makes it the live collection and
// snapshots it. When the write fails the live collection is unchanged.
func (e *Editor) commit(ctx context.Context, next record.Collection, description string) (Outcome, error) {
	if err := e.writeFile(next); err != nil {
		return Outcome{Save: history.SaveResult{Success: true}}, err
	}
	e.live = next
	return e.snapshot(ctx, description), nil
}

func (e *Editor) snapshot(ctx context.Context, description string) Outcome {
	snap, versions, res := e.store.Append(ctx, e.live, description)
	if versions != nil {
		e.versions = versions
	}
	if !res.Success {
		log.Debugf("snapshot %q not stored: %s", description, res.Error)
	}
	return Outcome{Snapshots: []history.Snapshot{snap}, Save: res}
}

// writeFile replaces the data file with c atomically. Without a path the
// editor is memory only.
func (e *Editor) writeFile(c record.Collection) error {
	if e.Path == "" {
		return nil
	}

	data, err := c.Marshal()
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(e.Path), ".theories-*.json")
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", e.Path, err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", e.Path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", e.Path, err)
	}
	if err := os.Rename(tmp.Name(), e.Path); err != nil {
		return fmt.Errorf("failed to write %s: %w", e.Path, err)
	}
	return nil
}

func merge(a, b Outcome) Outcome {
	out := Outcome{
		Snapshots: append(slices.Clone(a.Snapshots), b.Snapshots...),
		Save:      b.Save,
	}
	if len(a.Snapshots) > 0 && !a.Save.Success && b.Save.Success {
		out.Save = a.Save
	}
	return out
}
