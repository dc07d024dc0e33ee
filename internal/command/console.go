// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/staranto/theoryctl/internal/command/console"
	"github.com/staranto/theoryctl/internal/config"
	"github.com/staranto/theoryctl/internal/meta"
)

const maxConsoleHistory = 1000

func consoleCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	if len(m.Args) > 1 {
		log.Debugf("Executing action for %v", m.Args[1:])
	}

	config.Config.Namespace = "console"

	s, err := openSession(ctx, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	engine := console.New(s.Editor.Collection(), s.Editor.Versions())
	p := tea.NewProgram(initialConsoleModel(engine, getConsoleHistoryFile()))
	_, err = p.Run()
	return err
}

// consoleModel represents the Bubble Tea model for the console command
type consoleModel struct {
	input          textinput.Model
	engine         *console.Engine
	historyFile    string
	history        []string // Full history for navigation (includes file history)
	sessionHistory []string // Only commands from this session (matches with outputs)
	histIndex      int
	output         []string
}

func initialConsoleModel(engine *console.Engine, historyFile string) consoleModel {
	ti := textinput.New()
	ti.Placeholder = ""
	ti.Focus()
	ti.CharLimit = 2048
	ti.Width = 999
	ti.Prompt = ""
	ti.Cursor.SetMode(cursor.CursorBlink)

	output := []string{
		fmt.Sprintf("Theory console loaded. %d theories, %d versions.",
			len(engine.Collection.Theories), len(engine.Versions)),
		"Type 'help' for syntax, 'exit' or Ctrl+C to quit.",
	}

	return consoleModel{
		input:          ti,
		engine:         engine,
		historyFile:    historyFile,
		history:        loadConsoleHistory(historyFile),
		sessionHistory: []string{},
		histIndex:      -1,
		output:         output,
	}
}

func (m consoleModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m consoleModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "enter":
			entry := strings.TrimSpace(m.input.Value())
			if entry != "" {
				if entry == "exit" || entry == "quit" {
					return m, tea.Quit
				}

				m.history = append(m.history, entry)
				m.sessionHistory = append(m.sessionHistory, entry)
				m.histIndex = -1
				m.output = append(m.output, m.engine.Process(entry))
				saveConsoleHistory(m.historyFile, m.history)
			}
			m.input.SetValue("")
			return m, nil

		case "up":
			if len(m.history) == 0 {
				return m, nil
			}
			if m.histIndex == -1 {
				m.histIndex = len(m.history) - 1
			} else if m.histIndex > 0 {
				m.histIndex--
			}
			m.input.SetValue(m.history[m.histIndex])
			m.input.CursorEnd()
			return m, nil

		case "down":
			if len(m.history) == 0 {
				return m, nil
			}
			if m.histIndex >= 0 && m.histIndex < len(m.history)-1 {
				m.histIndex++
				m.input.SetValue(m.history[m.histIndex])
				m.input.CursorEnd()
			} else {
				m.histIndex = -1
				m.input.SetValue("")
			}
			return m, nil

		case "ctrl+c", "esc":
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m consoleModel) View() string {
	promptStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#2E8B57"))

	var lines []string

	// Welcome lines first.
	if len(m.output) >= 2 {
		lines = append(lines, m.output[0], m.output[1])
	}

	// Each query of this session followed by its answer.
	for i := 0; i < len(m.sessionHistory); i++ {
		lines = append(lines, promptStyle.Render("> ")+m.sessionHistory[i])
		if (i + 2) < len(m.output) {
			lines = append(lines, m.output[i+2])
		}
	}

	lines = append(lines, promptStyle.Render("> ")+m.input.View())

	return strings.Join(lines, "\n")
}

// getConsoleHistoryFile returns the path to the console history file
func getConsoleHistoryFile() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".theoryctl_console_history"
	}
	return filepath.Join(homeDir, ".theoryctl_console_history")
}

func loadConsoleHistory(filename string) []string {
	var history []string

	file, err := os.Open(filename)
	if err != nil {
		return history
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			history = append(history, line)
		}
	}

	return history
}

// saveConsoleHistory keeps the last maxConsoleHistory entries. Failures are
// only logged.
func saveConsoleHistory(filename string, history []string) {
	start := 0
	if len(history) > maxConsoleHistory {
		start = len(history) - maxConsoleHistory
	}

	file, err := os.Create(filename)
	if err != nil {
		log.Debugf("console history not saved: %v", err)
		return
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	for i := start; i < len(history); i++ {
		fmt.Fprintln(writer, history[i])
	}
	writer.Flush()
}

// consoleCommandBuilder constructs the cli.Command for "console".
func consoleCommandBuilder(meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "console",
		Usage:     "interactive query console",
		UsageText: "theoryctl console",
		Metadata: map[string]any{
			"meta": meta,
		},
		Action: consoleCommandAction,
	}
}
