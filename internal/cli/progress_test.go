package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestRenderBar(t *testing.T) {
	tests := []struct {
		done, total, width int
		wantFilled         int
	}{
		{0, 10, 10, 0},
		{5, 10, 10, 5},
		{10, 10, 10, 10},
		{12, 10, 10, 10},
		{3, 0, 10, 0},
	}
	for _, tt := range tests {
		bar := renderBar(tt.done, tt.total, tt.width)
		if got := strings.Count(bar, "█"); got != tt.wantFilled {
			t.Errorf("renderBar(%d, %d) filled = %d, want %d", tt.done, tt.total, got, tt.wantFilled)
		}
		if got := strings.Count(bar, "█") + strings.Count(bar, "░"); got != tt.width {
			t.Errorf("renderBar(%d, %d) width = %d, want %d", tt.done, tt.total, got, tt.width)
		}
	}
}

func TestProgressModel(t *testing.T) {
	var m tea.Model = progressModel{total: 4}

	m, _ = m.Update(progressMsg{done: 3, total: 4})
	m, _ = m.Update(progressMsg{done: 2, total: 4})
	if got := m.(progressModel).done; got != 3 {
		t.Errorf("done = %d, want 3 (out-of-order messages must not go backwards)", got)
	}
	if !strings.Contains(m.View(), "3/4") {
		t.Errorf("View() = %q", m.View())
	}

	m, cmd := m.Update(progressDoneMsg{})
	if cmd == nil {
		t.Fatal("done message should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("done message did not return tea.Quit")
	}
	if m.View() != "" {
		t.Errorf("finished View() = %q, want empty", m.View())
	}
}
