package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/tierviz/pkg/integrations/coeqwal"
)

func testScenarios() []coeqwal.Scenario {
	return []coeqwal.Scenario{
		{ID: "s0011", Name: "Baseline", Description: "Existing conditions"},
		{ID: "s0020", Name: "Delta conveyance", Description: "Adds a tunnel"},
		{ID: "s0027", Name: "Groundwater recharge"},
	}
}

func press(m tea.Model, keys ...string) tea.Model {
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEscape}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		case "up":
			msg = tea.KeyMsg{Type: tea.KeyUp}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		m, _ = m.Update(msg)
	}
	return m
}

func TestScenarioPickerSelect(t *testing.T) {
	m := press(NewScenarioPicker(testScenarios()), "down", "j", "k", "enter")
	picked := m.(ScenarioPicker).Selected
	if picked == nil || picked.ID != "s0020" {
		t.Fatalf("selected = %+v, want s0020", picked)
	}
}

func TestScenarioPickerCursorBounds(t *testing.T) {
	m := press(NewScenarioPicker(testScenarios()), "up", "down", "down", "down", "down", "enter")
	if got := m.(ScenarioPicker).Selected; got == nil || got.ID != "s0027" {
		t.Fatalf("selected = %+v, want last scenario", got)
	}
}

func TestScenarioPickerFilter(t *testing.T) {
	m := press(NewScenarioPicker(testScenarios()), "/", "g", "r", "o", "u", "n", "d")
	p := m.(ScenarioPicker)
	if visible := p.Visible(); len(visible) != 1 || visible[0].ID != "s0027" {
		t.Fatalf("visible = %+v, want only s0027", visible)
	}
	if !strings.Contains(p.View(), "s0027") || strings.Contains(p.View(), "s0011") {
		t.Errorf("view does not reflect the filter:\n%s", p.View())
	}

	// enter leaves the filter, the second enter selects.
	m = press(m, "enter", "enter")
	if got := m.(ScenarioPicker).Selected; got == nil || got.ID != "s0027" {
		t.Fatalf("selected = %+v, want s0027", got)
	}
}

func TestScenarioPickerFilterByID(t *testing.T) {
	m := press(NewScenarioPicker(testScenarios()), "/", "0", "0", "2")
	if visible := m.(ScenarioPicker).Visible(); len(visible) != 2 {
		t.Errorf("visible = %+v, want s0020 and s0027", visible)
	}
}

func TestScenarioPickerEscClearsFilter(t *testing.T) {
	m := press(NewScenarioPicker(testScenarios()), "/", "z", "z", "z")
	if n := len(m.(ScenarioPicker).Visible()); n != 0 {
		t.Fatalf("visible = %d, want 0", n)
	}
	if !strings.Contains(m.View(), "no matching scenarios") {
		t.Errorf("empty view:\n%s", m.View())
	}
	m = press(m, "enter")
	if m.(ScenarioPicker).Selected != nil {
		t.Error("enter on an empty list should not select")
	}

	m = press(m, "/", "esc")
	if n := len(m.(ScenarioPicker).Visible()); n != 3 {
		t.Errorf("visible after esc = %d, want 3", n)
	}
}

func TestScenarioPickerQuit(t *testing.T) {
	msgs := map[string]tea.KeyMsg{
		"q":      {Type: tea.KeyRunes, Runes: []rune("q")},
		"esc":    {Type: tea.KeyEscape},
		"ctrl+c": {Type: tea.KeyCtrlC},
	}
	for name, msg := range msgs {
		m, cmd := NewScenarioPicker(testScenarios()).Update(msg)
		if cmd == nil {
			t.Errorf("%s: expected quit command", name)
			continue
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Errorf("%s: command is not quit", name)
		}
		if m.(ScenarioPicker).Selected != nil {
			t.Errorf("%s: quitting should not select", name)
		}
	}
}

func TestScenarioPickerScrolls(t *testing.T) {
	var many []coeqwal.Scenario
	for _, id := range []string{"s01", "s02", "s03", "s04", "s05", "s06", "s07", "s08"} {
		many = append(many, coeqwal.Scenario{ID: id})
	}
	m, _ := NewScenarioPicker(many).Update(tea.WindowSizeMsg{Width: 80, Height: 13})
	for range 6 {
		m = press(m, "down")
	}
	view := m.View()
	if !strings.Contains(view, "s07") || strings.Contains(view, "s01") {
		t.Errorf("view did not scroll to the cursor:\n%s", view)
	}
	if !strings.Contains(view, "of 8") {
		t.Errorf("view lacks position footer:\n%s", view)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"much too long", 5, "much…"},
		{"ääääää", 3, "ää…"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.n); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}
