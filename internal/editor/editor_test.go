// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package editor

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staranto/theoryctl/internal/backend/memory"
	"github.com/staranto/theoryctl/internal/differ"
	"github.com/staranto/theoryctl/internal/history"
	"github.com/staranto/theoryctl/internal/notify"
	"github.com/staranto/theoryctl/internal/record"
)

type recordingSink struct {
	mu     sync.Mutex
	events []notify.Event
}

func (s *recordingSink) Notify(ev notify.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
}

func theory(id, name, category string) record.Record {
	r := record.New(id)
	r.Name = name
	r.Category = category
	return r
}

const seed = `{
  "metadata": {"version": "1.0"},
  "theories": [
    {"id": "theory-001", "name": "Flow", "category": "learning", "theorists": ["Csikszentmihalyi"]},
    {"id": "theory-002", "name": "Scaffolding", "name_ja": "足場かけ", "category": "social", "description": "Support by a mentor"}
  ]
}`

func setup(t *testing.T, opts ...memory.BackendMemoryOption) (*Editor, *recordingSink, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "theories.json")
	require.NoError(t, os.WriteFile(path, []byte(seed), 0o600))

	be, err := memory.NewBackendMemory(opts...)
	require.NoError(t, err)

	sink := &recordingSink{}
	e := New(history.NewStore(be), WithSink(sink))
	require.NoError(t, e.Load(context.Background(), path))
	return e, sink, path
}

func onDisk(t *testing.T, path string) record.Collection {
	t.Helper()
	c, err := record.ReadFile(path)
	require.NoError(t, err)
	return c
}

func assertSameRecords(t *testing.T, want, got []record.Record) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		assert.True(t, want[i].Equal(got[i]), "record %d: want %+v, got %+v", i, want[i], got[i])
	}
}

func TestLoadMissingFile(t *testing.T) {
	be, err := memory.NewBackendMemory()
	require.NoError(t, err)

	e := New(history.NewStore(be))
	require.NoError(t, e.Load(context.Background(), filepath.Join(t.TempDir(), "nope.json")))
	assert.Empty(t, e.Records())
	assert.Empty(t, e.Versions())
}

func TestLoadInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o600))

	be, err := memory.NewBackendMemory()
	require.NoError(t, err)
	assert.Error(t, New(history.NewStore(be)).Load(context.Background(), path))
}

func TestSaveRecordCreate(t *testing.T) {
	ctx := context.Background()
	e, sink, path := setup(t)

	r, out, err := e.SaveRecord(ctx, theory("", "Constructivism", "learning"))
	require.NoError(t, err)
	assert.Equal(t, "theory-003", r.ID)
	assert.Empty(t, out.Warning())

	require.Len(t, out.Snapshots, 1)
	assert.Equal(t, "Saved theory-003", out.Snapshots[0].Description)
	assert.Equal(t, 3, out.Snapshots[0].TheoryCount)

	assert.Len(t, onDisk(t, path).Theories, 3)
	assert.Len(t, e.Versions(), 1)
	assert.Equal(t, []notify.Event{{Type: notify.TypeTheoryUpdate, TheoryID: "theory-003", Action: notify.Create}}, sink.events)
}

func TestSaveRecordUpdate(t *testing.T) {
	ctx := context.Background()
	e, sink, path := setup(t)

	r, err := e.Get("theory-001")
	require.NoError(t, err)
	r.Name = "Flow theory"

	_, _, err = e.SaveRecord(ctx, r)
	require.NoError(t, err)

	c := onDisk(t, path)
	require.Len(t, c.Theories, 2)
	assert.Equal(t, "Flow theory", c.Theories[0].Name)
	assert.Equal(t, notify.Update, sink.events[0].Action)
}

func TestSaveRecordInvalid(t *testing.T) {
	e, sink, _ := setup(t)

	_, _, err := e.SaveRecord(context.Background(), theory("theory-009", "", "learning"))
	assert.ErrorIs(t, err, record.ErrInvalid)
	assert.Len(t, e.Records(), 2)
	assert.Empty(t, e.Versions())
	assert.Empty(t, sink.events)
}

func TestGetReturnsCopy(t *testing.T) {
	e, _, _ := setup(t)

	r, err := e.Get("theory-001")
	require.NoError(t, err)
	r.Theorists[0] = "changed"

	again, err := e.Get("theory-001")
	require.NoError(t, err)
	assert.Equal(t, "Csikszentmihalyi", again.Theorists[0])

	_, err = e.Get("theory-404")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteRecord(t *testing.T) {
	ctx := context.Background()
	e, sink, path := setup(t)

	out, err := e.DeleteRecord(ctx, "theory-001")
	require.NoError(t, err)
	assert.Equal(t, "Deleted theory-001", out.Snapshots[0].Description)
	assert.Len(t, onDisk(t, path).Theories, 1)
	assert.Equal(t, notify.Delete, sink.events[0].Action)

	_, err = e.DeleteRecord(ctx, "theory-001")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestWriteFailureLeavesLiveUntouched(t *testing.T) {
	e, sink, _ := setup(t)
	before := e.Records()
	versions := len(e.Versions())

	// CreateTemp fails when the directory is gone.
	e.Path = filepath.Join(t.TempDir(), "gone", "theories.json")

	_, _, err := e.SaveRecord(context.Background(), theory("", "Connectivism", "learning"))
	require.Error(t, err)
	_, _, err = e.SaveRecord(context.Background(), theory("theory-001", "Flow state", "learning"))
	require.Error(t, err)
	_, err = e.DeleteRecord(context.Background(), "theory-002")
	require.Error(t, err)
	_, err = e.Import(context.Background(), record.Collection{
		Metadata: map[string]any{},
		Theories: []record.Record{theory("theory-009", "Other", "learning")},
	}, "other.json")
	require.Error(t, err)

	assertSameRecords(t, before, e.Records())
	assert.Equal(t, "theory-003", e.NextID())
	assert.Empty(t, sink.events)
	// Only the import backup was taken.
	assert.Len(t, e.Versions(), versions+1)
}

func TestSnapshotFailureKeepsMutation(t *testing.T) {
	e, sink, path := setup(t, memory.WithQuota(16))

	_, out, err := e.SaveRecord(context.Background(), theory("", "Constructivism", "learning"))
	require.NoError(t, err)
	assert.True(t, out.Save.Quota)
	assert.Equal(t, history.QuotaMessage, out.Warning())
	assert.Len(t, onDisk(t, path).Theories, 3)
	assert.Len(t, sink.events, 1)
}

func TestImport(t *testing.T) {
	ctx := context.Background()
	e, _, path := setup(t)

	in := record.Collection{
		Metadata: map[string]any{"source": "test"},
		Theories: []record.Record{theory("X1", "Imported", "learning")},
	}
	out, err := e.Import(ctx, in, "/tmp/in.json")
	require.NoError(t, err)

	require.Len(t, out.Snapshots, 2)
	assert.Equal(t, "Backup before import", out.Snapshots[0].Description)
	assert.Equal(t, 2, out.Snapshots[0].TheoryCount)
	assert.Equal(t, "Imported in.json (1 records)", out.Snapshots[1].Description)

	assert.Equal(t, "Imported in.json (1 records)", e.Versions()[0].Description)
	assertSameRecords(t, in.Theories, onDisk(t, path).Theories)
}

func TestImportRejectsInvalid(t *testing.T) {
	e, _, _ := setup(t)

	_, err := e.Import(context.Background(), record.Collection{}, "empty.json")
	assert.ErrorIs(t, err, record.ErrInvalid)
	assert.Len(t, e.Records(), 2)
	assert.Empty(t, e.Versions())
}

func TestImportIntoEmptySkipsBackup(t *testing.T) {
	be, err := memory.NewBackendMemory()
	require.NoError(t, err)
	e := New(history.NewStore(be))

	out, err := e.Import(context.Background(), record.Collection{
		Theories: []record.Record{theory("X1", "Imported", "learning")},
	}, "in.json")
	require.NoError(t, err)
	assert.Len(t, out.Snapshots, 1)
}

func TestExport(t *testing.T) {
	e, _, path := setup(t)
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	e.now = func() time.Time { return at }

	var buf bytes.Buffer
	out, err := e.Export(context.Background(), &buf)
	require.NoError(t, err)
	assert.Equal(t, "Snapshot at export", out.Snapshots[0].Description)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	meta := doc["metadata"].(map[string]any)
	assert.Equal(t, "1.0", meta["version"])
	assert.EqualValues(t, 2, meta["total_theories"])
	assert.Equal(t, "2026-03-01T12:00:00Z", meta["last_updated"])

	// live metadata is not stamped
	_, ok := onDisk(t, path).Metadata["total_theories"]
	assert.False(t, ok)
	_, ok = e.Collection().Metadata["total_theories"]
	assert.False(t, ok)
}

func TestRestore(t *testing.T) {
	ctx := context.Background()
	e, _, path := setup(t)

	_, err := e.DeleteRecord(ctx, "theory-002")
	require.NoError(t, err)
	_, _, err = e.SaveRecord(ctx, theory("", "Behaviorism", "learning"))
	require.NoError(t, err)

	// newest first: Saved theory-002, Deleted theory-002
	target := e.Versions()[1]
	require.Equal(t, "Deleted theory-002", target.Description)

	got, out, err := e.Restore(ctx, target.ID)
	require.NoError(t, err)
	assert.Equal(t, target.ID, got.ID)
	assert.Equal(t, "Backup before restore", out.Snapshots[0].Description)
	assert.Equal(t, 2, out.Snapshots[0].TheoryCount)

	assert.Len(t, e.Versions(), 3)
	assertSameRecords(t, target.Data.Theories, onDisk(t, path).Theories)
	assertSameRecords(t, target.Data.Theories, e.Records())

	_, _, err = e.Restore(ctx, 42)
	assert.ErrorIs(t, err, ErrVersionNotFound)
}

func TestRestoreIsolatesSnapshot(t *testing.T) {
	ctx := context.Background()
	e, _, _ := setup(t)

	out := e.SaveVersion(ctx, "manual")
	require.True(t, out.Save.Success)

	_, _, err := e.Restore(ctx, out.Snapshots[0].ID)
	require.NoError(t, err)

	r, err := e.Get("theory-001")
	require.NoError(t, err)
	r.Name = "mutated"
	_, _, err = e.SaveRecord(ctx, r)
	require.NoError(t, err)

	i := history.Find(e.Versions(), out.Snapshots[0].ID)
	require.GreaterOrEqual(t, i, 0)
	assert.Equal(t, "Flow", e.Versions()[i].Data.Theories[0].Name)
}

func TestDeleteVersionAndClear(t *testing.T) {
	ctx := context.Background()
	e, _, _ := setup(t)

	a := e.SaveVersion(ctx, "a").Snapshots[0]
	e.SaveVersion(ctx, "b")

	res, err := e.DeleteVersion(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, res.Success)
	require.Len(t, e.Versions(), 1)
	assert.Equal(t, "b", e.Versions()[0].Description)

	_, err = e.DeleteVersion(ctx, a.ID)
	assert.ErrorIs(t, err, ErrVersionNotFound)

	assert.True(t, e.ClearHistory(ctx).Success)
	assert.Empty(t, e.Versions())
	assert.Zero(t, e.Usage(ctx).Used)
}

type countingEngine struct{ calls int }

func (c *countingEngine) Compute(old, new []record.Record) differ.Result {
	c.calls++
	return differ.Compute(old, new)
}

func TestDiffUsesInjectedEngine(t *testing.T) {
	be, err := memory.NewBackendMemory()
	require.NoError(t, err)
	eng := &countingEngine{}
	e := New(history.NewStore(be), WithDiffEngine(eng))

	old := record.Collection{Theories: []record.Record{theory("theory-101", "A", "x")}}
	cur := record.Collection{Theories: []record.Record{theory("theory-101", "B", "x"), theory("theory-102", "C", "x")}}

	res := e.Diff(old, cur)
	assert.Equal(t, 1, eng.calls)
	assert.Len(t, res.Added, 1)
	assert.Len(t, res.Modified, 1)
}

func TestSearch(t *testing.T) {
	e, _, _ := setup(t)

	tests := []struct {
		query    string
		category string
		want     []string
	}{
		{"", "", []string{"theory-001", "theory-002"}},
		{"FLOW", "", []string{"theory-001"}},
		{"csik", "", []string{"theory-001"}},
		{"足場", "", []string{"theory-002"}},
		{"mentor", "", []string{"theory-002"}},
		{"theory-00", "social", []string{"theory-002"}},
		{"nothing", "", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.query+"/"+tt.category, func(t *testing.T) {
			ids := []string{}
			for _, r := range e.Search(tt.query, tt.category) {
				ids = append(ids, r.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}
