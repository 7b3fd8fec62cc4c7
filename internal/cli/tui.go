package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/tierviz/pkg/integrations/coeqwal"
)

var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// ScenarioPicker - Interactive scenario selection
// =============================================================================

// ScenarioPicker is the bubbletea model behind "scenarios --pick". Typing
// "/" focuses a filter that matches scenario ids and names.
type ScenarioPicker struct {
	Scenarios []coeqwal.Scenario
	Selected  *coeqwal.Scenario

	filter   textinput.Model
	filtered []int
	cursor   int
	offset   int
	height   int
}

// NewScenarioPicker creates a picker over scenarios, in the given order.
func NewScenarioPicker(scenarios []coeqwal.Scenario) ScenarioPicker {
	fi := textinput.New()
	fi.Placeholder = "filter by id or name"
	fi.Prompt = "/ "
	fi.CharLimit = 40
	fi.Width = 30

	m := ScenarioPicker{
		Scenarios: scenarios,
		filter:    fi,
		height:    15,
	}
	m.applyFilter()
	return m
}

func (m ScenarioPicker) Init() tea.Cmd {
	return nil
}

func (m ScenarioPicker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.height = max(msg.Height-8, 5)
		m.scroll()
		return m, nil

	case tea.KeyMsg:
		if m.filter.Focused() {
			switch msg.String() {
			case "esc":
				m.filter.SetValue("")
				m.filter.Blur()
				m.applyFilter()
				return m, nil
			case "enter":
				m.filter.Blur()
				return m, nil
			case "ctrl+c":
				return m, tea.Quit
			}
			var cmd tea.Cmd
			m.filter, cmd = m.filter.Update(msg)
			m.applyFilter()
			return m, cmd
		}

		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "/":
			cmd := m.filter.Focus()
			return m, cmd
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.filtered)-1 {
				m.cursor++
			}
		case "enter":
			if len(m.filtered) == 0 {
				return m, nil
			}
			s := m.Scenarios[m.filtered[m.cursor]]
			m.Selected = &s
			return m, tea.Quit
		}
		m.scroll()
	}
	return m, nil
}

// applyFilter recomputes the visible rows and resets the cursor.
func (m *ScenarioPicker) applyFilter() {
	q := strings.ToLower(strings.TrimSpace(m.filter.Value()))
	m.filtered = make([]int, 0, len(m.Scenarios))
	for i, s := range m.Scenarios {
		if q == "" ||
			strings.Contains(strings.ToLower(s.ID), q) ||
			strings.Contains(strings.ToLower(s.Name), q) {
			m.filtered = append(m.filtered, i)
		}
	}
	m.cursor = 0
	m.offset = 0
}

func (m *ScenarioPicker) scroll() {
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+m.height {
		m.offset = m.cursor - m.height + 1
	}
}

// Visible returns the scenarios passing the current filter.
func (m ScenarioPicker) Visible() []coeqwal.Scenario {
	out := make([]coeqwal.Scenario, len(m.filtered))
	for i, idx := range m.filtered {
		out[i] = m.Scenarios[idx]
	}
	return out
}

func (m ScenarioPicker) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Scenario"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  / filter  ⏎ select  q quit"))
	b.WriteString("\n")
	if m.filter.Focused() || m.filter.Value() != "" {
		b.WriteString(m.filter.View())
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if len(m.filtered) == 0 {
		b.WriteString(listDimStyle.Render("  no matching scenarios"))
		b.WriteString("\n")
		return b.String()
	}

	end := min(m.offset+m.height, len(m.filtered))
	var rows [][]string
	for i := m.offset; i < end; i++ {
		s := m.Scenarios[m.filtered[i]]
		cursor := "  "
		if i == m.cursor {
			cursor = "▸ "
		}
		name := s.Name
		if name == "" || name == s.ID {
			name = "-"
		}
		rows = append(rows, []string{cursor, s.ID, name, truncate(s.Description, 48)})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Scenario", "Name", "Description").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			if m.offset+row == m.cursor {
				return listSelectedStyle
			}
			if col == 3 {
				return listDimStyle
			}
			return listNormalStyle
		})
	b.WriteString(t.String())
	b.WriteString("\n")

	if len(m.filtered) > m.height {
		b.WriteString(listDimStyle.Render(fmt.Sprintf("  %d–%d of %d", m.offset+1, end, len(m.filtered))))
		b.WriteString("\n")
	}
	return b.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
