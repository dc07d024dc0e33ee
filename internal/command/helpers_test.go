// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package command

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"github.com/staranto/theoryctl/internal/command/console"
	"github.com/staranto/theoryctl/internal/config"
	"github.com/staranto/theoryctl/internal/history"
	"github.com/staranto/theoryctl/internal/notify"
	"github.com/staranto/theoryctl/internal/record"
)

func TestValidators(t *testing.T) {
	assert.NoError(t, OutputValidator("json"))
	assert.Error(t, OutputValidator("xml"))

	assert.NoError(t, BackendValidator(""))
	assert.NoError(t, BackendValidator("SQLite"))
	assert.Error(t, BackendValidator("floppy"))

	assert.NoError(t, SetValidator([]string{"name=A", "description=x=y"}))
	assert.Error(t, SetValidator([]string{"name"}))
	assert.Error(t, SetValidator([]string{"=value"}))

	assert.NoError(t, FlagValidators("text", OutputValidator))
	assert.NoError(t, FlagValidators("redis", BackendValidator))
	// Validators run in order and the first failure wins.
	assert.Error(t, FlagValidators("text", OutputValidator, BackendValidator))
	assert.Error(t, FlagValidators("xml", OutputValidator, BackendValidator))
}

func TestSliceFlagsKeepCommasOnEveryCommand(t *testing.T) {
	saved := config.Config
	t.Cleanup(func() { config.Config = saved })

	app, err := InitApp(context.Background(), []string{"theoryctl", "add"})
	require.NoError(t, err)

	var walk func(cmds []*cli.Command)
	walk = func(cmds []*cli.Command) {
		for _, cmd := range cmds {
			assert.True(t, cmd.DisableSliceFlagSeparator, cmd.Name)
			walk(cmd.Commands)
		}
	}
	assert.True(t, app.DisableSliceFlagSeparator)
	walk(app.Commands)
}

func TestApplySets(t *testing.T) {
	r := record.New("theory-001")
	require.NoError(t, applySets(&r, []string{
		"name=Flow",
		"theorists=A; B ;",
		"description=uses = signs",
		"custom_key=kept",
	}))

	assert.Equal(t, "Flow", r.Name)
	assert.Equal(t, []string{"A", "B"}, r.Theorists)
	assert.Equal(t, "uses = signs", r.Description)
	assert.Equal(t, "kept", r.Extra["custom_key"])

	assert.Error(t, applySets(&r, []string{"id=theory-009"}))
	assert.Error(t, applySets(&r, []string{"missing"}))
}

func testVersions() []history.Snapshot {
	return []history.Snapshot{
		{ID: 300, Timestamp: "2026-01-03T00:00:00.000Z", Description: "Saved theory-003", TheoryCount: 3},
		{ID: 200, Timestamp: "2026-01-02T00:00:00.000Z", Description: "Saved theory-002", TheoryCount: 2},
	}
}

func TestVersionRows(t *testing.T) {
	rows := versionRows(testVersions())

	require.Len(t, rows, 2)
	assert.Equal(t, versionRow{
		Label: "v2", ID: 300, Timestamp: "2026-01-03T00:00:00.000Z",
		Description: "Saved theory-003", Count: 3, Current: true,
	}, rows[0])
	assert.Equal(t, "v1", rows[1].Label)
	assert.False(t, rows[1].Current)

	assert.Empty(t, versionRows(nil))
}

func TestPickerChoices(t *testing.T) {
	choices := pickerChoices(testVersions(), 4)

	require.Len(t, choices, 3)
	assert.Equal(t, "live", choices[0].ID)
	assert.Equal(t, "live  4 theories", choices[0].Label)
	assert.Equal(t, "v2", choices[1].ID)
	assert.Equal(t, "v2   2026-01-03T00:00:00.000Z  Saved theory-003 (3 theories)", choices[1].Label)
	assert.Equal(t, "v1", choices[2].ID)
}

func TestResolveStored(t *testing.T) {
	v, err := resolveStored(testVersions(), "v1")
	require.NoError(t, err)
	assert.Equal(t, int64(200), v.ID)

	_, err = resolveStored(testVersions(), "v5")
	assert.Error(t, err)

	file := filepath.Join(t.TempDir(), "snap.json")
	require.NoError(t, os.WriteFile(file, []byte(`{"theories":[]}`), 0o600))
	_, err = resolveStored(testVersions(), file)
	assert.ErrorContains(t, err, "not a stored version")
}

func TestPrintEvent(t *testing.T) {
	var buf bytes.Buffer

	printEvent(&buf, notify.Event{Type: notify.TypeTheoryUpdate, TheoryID: "theory-004", Action: notify.Create})
	printEvent(&buf, notify.Event{Type: notify.TypeSyncRequest})
	printEvent(&buf, notify.Event{Type: "other"})

	assert.Equal(t, "theory_update theory-004 create\nsync_request\n", buf.String())
}

func keyEnter() tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyEnter} }
func keyUp() tea.KeyMsg    { return tea.KeyMsg{Type: tea.KeyUp} }
func keyDown() tea.KeyMsg  { return tea.KeyMsg{Type: tea.KeyDown} }

func typeQuery(m consoleModel, q string) consoleModel {
	m.input.SetValue(q)
	next, _ := m.Update(keyEnter())
	return next.(consoleModel)
}

func TestConsoleModel(t *testing.T) {
	histFile := filepath.Join(t.TempDir(), "history")
	require.NoError(t, os.WriteFile(histFile, []byte("ls\n\ncount\n"), 0o600))

	c := record.Collection{Theories: []record.Record{{ID: "theory-001", Name: "Flow Theory", Category: "motivation"}}}
	m := initialConsoleModel(console.New(c, nil), histFile)

	assert.Equal(t, []string{"ls", "count"}, m.history)
	assert.Equal(t, "Theory console loaded. 1 theories, 0 versions.", m.output[0])

	m = typeQuery(m, "count")
	m = typeQuery(m, "   ")
	assert.Equal(t, []string{"count"}, m.sessionHistory)
	assert.Equal(t, "1", m.output[len(m.output)-1])

	view := m.View()
	assert.Contains(t, view, "count\n1")

	saved, err := os.ReadFile(histFile)
	require.NoError(t, err)
	assert.Equal(t, "ls\ncount\ncount\n", string(saved))

	// Up walks back through the history, down returns to an empty line.
	next, _ := m.Update(keyUp())
	m = next.(consoleModel)
	assert.Equal(t, "count", m.input.Value())
	next, _ = m.Update(keyUp())
	m = next.(consoleModel)
	assert.Equal(t, "count", m.input.Value())
	next, _ = m.Update(keyUp())
	m = next.(consoleModel)
	assert.Equal(t, "ls", m.input.Value())
	next, _ = m.Update(keyDown())
	m = next.(consoleModel)
	assert.Equal(t, "count", m.input.Value())
	next, _ = m.Update(keyDown())
	m = next.(consoleModel)
	next, _ = m.Update(keyDown())
	m = next.(consoleModel)
	assert.Equal(t, "", m.input.Value())

	m.input.SetValue("exit")
	_, cmd := m.Update(keyEnter())
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestSaveConsoleHistoryKeepsTail(t *testing.T) {
	histFile := filepath.Join(t.TempDir(), "history")

	var entries []string
	for i := 0; i < maxConsoleHistory+5; i++ {
		entries = append(entries, strings.Repeat("x", i%7+1))
	}
	saveConsoleHistory(histFile, entries)

	loaded := loadConsoleHistory(histFile)
	assert.Len(t, loaded, maxConsoleHistory)
	assert.Equal(t, entries[5:], loaded)
}

func TestGetConsoleHistoryFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	assert.Equal(t, filepath.Join(home, ".theoryctl_console_history"), getConsoleHistoryFile())
}
