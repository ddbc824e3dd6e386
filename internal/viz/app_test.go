package viz

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/blockfall/internal/blocks"
	"github.com/san-kum/blockfall/internal/config"
	"github.com/san-kum/blockfall/internal/session"
)

func newTestModel(t *testing.T) Model {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Rows, cfg.Cols = 6, 6
	cfg.Seed = 3
	s, err := session.New(cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	return NewModel(s, "")
}

func press(t *testing.T, m Model, keys ...string) (Model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		var next tea.Model
		next, cmd = m.Update(msg)
		m = next.(Model)
	}
	return m, cmd
}

func TestStartStop(t *testing.T) {
	m := newTestModel(t)
	if m.Init() != nil {
		t.Error("stopped model should not schedule a tick")
	}

	m, cmd := press(t, m, " ")
	if !m.sess.Running() {
		t.Fatal("space should start the simulation")
	}
	if cmd == nil {
		t.Error("start should schedule a tick")
	}
	if !strings.Contains(m.View(), "RUNNING") {
		t.Error("view should show RUNNING")
	}

	m, cmd = press(t, m, " ")
	if m.sess.Running() || cmd != nil {
		t.Error("second space should stop without a tick")
	}
	if !strings.Contains(m.View(), "STOPPED") {
		t.Error("view should show STOPPED")
	}
}

func TestStaleTickDropped(t *testing.T) {
	m := newTestModel(t)
	m, _ = press(t, m, " ")
	epoch := m.sess.Epoch()

	next, cmd := m.Update(TickMsg{Epoch: epoch - 1})
	m = next.(Model)
	if m.sess.Generation() != 0 || cmd != nil {
		t.Fatalf("stale tick advanced the grid: gen=%d", m.sess.Generation())
	}

	next, cmd = m.Update(TickMsg{Epoch: epoch})
	m = next.(Model)
	if m.sess.Generation() != 1 {
		t.Errorf("expected generation 1, got %d", m.sess.Generation())
	}
	if cmd == nil {
		t.Error("current tick should schedule the next one")
	}
}

func TestIntervalRestartsDriver(t *testing.T) {
	m := newTestModel(t)
	m, _ = press(t, m, " ")
	old := m.sess.Epoch()

	m, cmd := press(t, m, "+")
	if got := m.sess.Interval(); got != config.DefaultInterval+intervalStep {
		t.Errorf("interval = %v", got)
	}
	if cmd == nil {
		t.Error("interval change while running should reschedule")
	}

	next, _ := m.Update(TickMsg{Epoch: old})
	if next.(Model).sess.Generation() != 0 {
		t.Error("tick from before the interval change should be dropped")
	}

	m, _ = press(t, m, "-", "-", "-", "-", "-")
	if got := m.sess.Interval(); got != config.MinInterval {
		t.Errorf("interval should clamp to %v, got %v", config.MinInterval, got)
	}
}

func TestToggleWhileRunning(t *testing.T) {
	m := newTestModel(t)
	m, _ = press(t, m, "x")
	if got := m.sess.Cell(0, 0).Type; got != blocks.Blue {
		t.Fatalf("toggle: got %v", got)
	}

	m, _ = press(t, m, " ", "x")
	if !errors.Is(m.err, session.ErrRunning) {
		t.Fatalf("expected ErrRunning, got %v", m.err)
	}
	if !strings.Contains(m.View(), session.ErrRunning.Error()) {
		t.Error("view should show the refusal")
	}
	if got := m.sess.Cell(0, 0).Type; got != blocks.Blue {
		t.Errorf("cell changed while running: %v", got)
	}

	m, _ = press(t, m, "n")
	if !errors.Is(m.err, session.ErrRunning) {
		t.Errorf("step while running: %v", m.err)
	}
}

func TestCursorStaysInside(t *testing.T) {
	m := newTestModel(t)
	m, _ = press(t, m, "k", "h")
	if m.row != 0 || m.col != 0 {
		t.Errorf("cursor left the grid: %d,%d", m.row, m.col)
	}

	for i := 0; i < 10; i++ {
		m, _ = press(t, m, "j", "l")
	}
	if m.row != 5 || m.col != 5 {
		t.Errorf("cursor = %d,%d, want 5,5", m.row, m.col)
	}

	m, _ = press(t, m, "[", "{")
	if m.sess.Rows() != 5 || m.sess.Cols() != 5 {
		t.Fatalf("size = %dx%d", m.sess.Rows(), m.sess.Cols())
	}
	if m.row != 4 || m.col != 4 {
		t.Errorf("cursor not clamped after shrink: %d,%d", m.row, m.col)
	}

	m, _ = press(t, m, "[")
	if !errors.Is(m.err, config.ErrSizeOutOfRange) {
		t.Errorf("expected ErrSizeOutOfRange, got %v", m.err)
	}
}

func TestPatternAndClear(t *testing.T) {
	m := newTestModel(t)
	m, _ = press(t, m, "p")
	if m.patterns[m.pattern] != blocks.DefaultPattern {
		t.Errorf("first pattern = %q", m.patterns[m.pattern])
	}
	if m.sess.Census().Green == 0 {
		t.Error("pattern should place a green floor")
	}

	m, _ = press(t, m, " ", "c")
	if m.sess.Running() {
		t.Error("clear should stop the simulation")
	}
	if m.sess.Census().Empty != 36 {
		t.Errorf("clear left %d empty cells", m.sess.Census().Empty)
	}
}

func TestThemeAndHelp(t *testing.T) {
	m := newTestModel(t)
	m, _ = press(t, m, "t")
	if m.theme.Name != ThemeRetro.Name {
		t.Errorf("theme = %q", m.theme.Name)
	}
	m, _ = press(t, m, "?")
	if !strings.Contains(m.View(), "KEYBOARD SHORTCUTS") {
		t.Error("help overlay missing")
	}
}

func TestQuit(t *testing.T) {
	m := newTestModel(t)
	_, cmd := press(t, m, "q")
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestSparkline(t *testing.T) {
	if got := Sparkline(nil, 3); got != "───" {
		t.Errorf("empty sparkline = %q", got)
	}
	if got := Sparkline([]float64{0, 7, 0, 7}, 2); got != "▁█" {
		t.Errorf("sparkline = %q", got)
	}
	if Chart([]blocks.Census{{}}, 10, 3) != "" {
		t.Error("chart needs two points")
	}
}
