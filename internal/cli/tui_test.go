package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/spotfinder/pkg/geom"
)

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func send(m CandidateListModel, keys ...string) CandidateListModel {
	for _, k := range keys {
		next, _ := m.Update(key(k))
		m = next.(CandidateListModel)
	}
	return m
}

var testCandidates = []geom.Vec3{
	geom.V(0.8, 0.55, 1.02),
	geom.V(4.05, 0.55, 1.02),
	geom.V(0.8, 4.3, 1.02),
}

func TestCandidateListSelect(t *testing.T) {
	m := send(NewCandidateListModel(testCandidates), "down", "j", "enter")

	if m.Selected == nil {
		t.Fatal("Selected is nil after enter")
	}
	if *m.Selected != testCandidates[2] {
		t.Errorf("Selected = %v, want %v", *m.Selected, testCandidates[2])
	}
}

func TestCandidateListCursorBounds(t *testing.T) {
	m := send(NewCandidateListModel(testCandidates), "up", "k")
	if m.Cursor != 0 {
		t.Errorf("Cursor = %d after moving up from the top, want 0", m.Cursor)
	}

	m = send(m, "down", "down", "down", "down")
	if m.Cursor != len(testCandidates)-1 {
		t.Errorf("Cursor = %d after moving past the end, want %d", m.Cursor, len(testCandidates)-1)
	}
}

func TestCandidateListQuit(t *testing.T) {
	m := NewCandidateListModel(testCandidates)
	next, cmd := m.Update(key("q"))
	if cmd == nil {
		t.Fatal("q should return a quit command")
	}
	if next.(CandidateListModel).Selected != nil {
		t.Error("quitting should not select a candidate")
	}
}

func TestCandidateListScrolls(t *testing.T) {
	many := make([]geom.Vec3, 20)
	for i := range many {
		many[i] = geom.V(float64(i), 0, 1)
	}
	m := NewCandidateListModel(many)
	m.Height = 5

	for range 7 {
		m = send(m, "down")
	}
	if m.Cursor != 7 {
		t.Fatalf("Cursor = %d, want 7", m.Cursor)
	}
	if m.Offset != 3 {
		t.Errorf("Offset = %d, want 3 to keep the cursor visible", m.Offset)
	}
}

func TestCandidateListView(t *testing.T) {
	view := NewCandidateListModel(testCandidates).View()

	for _, want := range []string{"Select Placement", "4.050", "0.550", "[1/3]"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q", want)
		}
	}
}
