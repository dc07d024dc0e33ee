// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package differ

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// Choice is one selectable row in the picker.
type Choice struct {
	ID    string
	Label string
}

// SelectTwo runs an interactive picker and returns the two chosen entries in
// the order they appear in items, or nil when the user quits.
func SelectTwo(items []Choice, opts ...tea.ProgramOption) ([]Choice, error) {
	p := tea.NewProgram(model{items: items}, opts...)
	m, err := p.Run()
	if err != nil {
		return nil, err
	}
	return m.(model).ordered(), nil
}

type model struct {
	items    []Choice
	cursor   int
	selected []Choice
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "q", "esc", "ctrl+c":
			m.selected = nil
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.items)-1 {
				m.cursor++
			}
		case " ":
			if len(m.items) == 0 {
				return m, nil
			}
			if i := indexOf(m.selected, m.items[m.cursor]); i >= 0 {
				m.selected = append(m.selected[:i:i], m.selected[i+1:]...)
			} else if len(m.selected) < 2 {
				m.selected = append(m.selected, m.items[m.cursor])
			}
		case "enter":
			if len(m.selected) == 2 {
				return m, tea.Quit
			}
		}
	}
	return m, nil
}

func (m model) View() string {
	s := "Select two snapshots:\n\n"
	for i, c := range m.items {
		cursor := " "
		if m.cursor == i {
			cursor = ">"
		}
		mark := " "
		if indexOf(m.selected, c) >= 0 {
			mark = "x"
		}
		s += fmt.Sprintf("%s [%s] %s\n", cursor, mark, c.Label)
	}
	return s + "\nSPACE: toggle, ENTER: go, Q/ESCAPE: quit\n"
}

// ordered returns the selection sorted by position in items, so callers get
// (newer, older) for a newest-first list.
func (m model) ordered() []Choice {
	if len(m.selected) != 2 {
		return nil
	}
	a, b := m.selected[0], m.selected[1]
	if indexOf(m.items, a) > indexOf(m.items, b) {
		a, b = b, a
	}
	return []Choice{a, b}
}

func indexOf(list []Choice, c Choice) int {
	for i, v := range list {
		if v.ID == c.ID {
			return i
		}
	}
	return -1
}
