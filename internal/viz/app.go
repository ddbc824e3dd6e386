package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/blockfall/internal/blocks"
	"github.com/san-kum/blockfall/internal/session"
)

const intervalStep = 100 * time.Millisecond

// TickMsg asks for one generation. Ticks from an older session epoch are
// dropped, which is how a running driver is restarted.
type TickMsg struct {
	Epoch int
}

// Model is the bubbletea model around a session: it owns the cursor,
// the theme and the last error, and forwards every edit to the session.
type Model struct {
	sess          *session.Session
	row, col      int
	theme         Theme
	patterns      []string
	pattern       int
	showHelp      bool
	err           error
	width, height int
}

func NewModel(s *session.Session, theme string) Model {
	return Model{
		sess:     s,
		theme:    GetTheme(theme),
		patterns: blocks.Patterns(),
		pattern:  -1,
		width:    80,
		height:   24,
	}
}

// Run starts the interactive program and blocks until the user quits.
func Run(s *session.Session, theme string) error {
	_, err := tea.NewProgram(NewModel(s, theme), tea.WithAltScreen()).Run()
	return err
}

func (m Model) Init() tea.Cmd {
	if m.sess.Running() {
		return m.tick()
	}
	return nil
}

func (m Model) tick() tea.Cmd {
	epoch := m.sess.Epoch()
	return tea.Tick(m.sess.Interval(), func(time.Time) tea.Msg { return TickMsg{Epoch: epoch} })
}

// Update handles keys and driver ticks.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	case TickMsg:
		if msg.Epoch != m.sess.Epoch() || !m.sess.Running() {
			return m, nil
		}
		m.sess.Step()
		return m, m.tick()
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	m.err = nil
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case " ":
		if m.sess.Running() {
			m.sess.Stop()
			return m, nil
		}
		m.sess.Start()
		return m, m.tick()
	case "n":
		if m.sess.Running() {
			m.err = session.ErrRunning
		} else {
			m.sess.Step()
		}
	case "up", "k":
		m.row = max(m.row-1, 0)
	case "down", "j":
		m.row = min(m.row+1, m.sess.Rows()-1)
	case "left", "h":
		m.col = max(m.col-1, 0)
	case "right", "l":
		m.col = min(m.col+1, m.sess.Cols()-1)
	case "enter", "x":
		m.err = m.sess.Toggle(m.row, m.col)
	case "c":
		m.sess.Clear()
	case "p":
		m.pattern = (m.pattern + 1) % len(m.patterns)
		m.err = m.sess.LoadPattern(m.patterns[m.pattern])
	case "+", "=":
		return m.setInterval(m.sess.Interval() + intervalStep)
	case "-", "_":
		return m.setInterval(m.sess.Interval() - intervalStep)
	case "]":
		m.resize(m.sess.Rows()+1, m.sess.Cols())
	case "[":
		m.resize(m.sess.Rows()-1, m.sess.Cols())
	case "}":
		m.resize(m.sess.Rows(), m.sess.Cols()+1)
	case "{":
		m.resize(m.sess.Rows(), m.sess.Cols()-1)
	case "t":
		names := ThemeNames()
		for i, name := range names {
			if name == m.theme.Name {
				m.theme = GetTheme(names[(i+1)%len(names)])
				break
			}
		}
	case "?":
		m.showHelp = !m.showHelp
	}
	return m, nil
}

func (m Model) setInterval(d time.Duration) (Model, tea.Cmd) {
	before := m.sess.Epoch()
	m.sess.SetInterval(d)
	if m.sess.Running() && m.sess.Epoch() != before {
		return m, m.tick()
	}
	return m, nil
}

func (m *Model) resize(rows, cols int) {
	if m.err = m.sess.Resize(rows, cols); m.err != nil {
		return
	}
	m.row = min(m.row, rows-1)
	m.col = min(m.col, cols-1)
}

// View renders the grid next to the stats panel.
func (m Model) View() string {
	t := m.theme
	header := lipgloss.NewStyle().Foreground(t.Accent).Bold(true).MarginBottom(1)
	label := labelStyle.Foreground(t.Muted)
	value := lipgloss.NewStyle().Foreground(t.Text)
	muted := lipgloss.NewStyle().Foreground(t.Muted)

	row := -1
	if !m.sess.Running() {
		row = m.row
	}
	gridView := gridStyle.Render(t.renderGrid(m.sess.Snapshot(), row, m.col))

	var s strings.Builder
	s.WriteString(header.Render("BLOCKFALL") + "\n")
	status := "STOPPED"
	if m.sess.Running() {
		status = "RUNNING"
	}
	s.WriteString(value.Render(status) + "\n\n")

	census := m.sess.Census()
	for _, kv := range []struct {
		k, v string
	}{
		{"Generation", fmt.Sprint(m.sess.Generation())},
		{"Size", fmt.Sprintf("%d x %d", m.sess.Rows(), m.sess.Cols())},
		{"Interval", m.sess.Interval().String()},
		{"Cursor", fmt.Sprintf("%d,%d", m.row, m.col)},
		{"Blue", fmt.Sprint(census.Blue)},
		{"Red", fmt.Sprint(census.Red)},
		{"Green", fmt.Sprint(census.Green)},
		{"Falling", fmt.Sprint(census.Falling)},
		{"Settled", fmt.Sprint(census.Settled)},
	} {
		s.WriteString(label.Render(kv.k) + value.Render(kv.v) + "\n")
	}

	history := m.sess.History()
	if chart := Chart(history, 30, 5); chart != "" {
		s.WriteString("\n" + lipgloss.NewStyle().Foreground(t.Accent).Render(chart) + "\n")
		falling := make([]float64, len(history))
		for i, c := range history {
			falling[i] = float64(c.Falling)
		}
		s.WriteString(label.Render("Trend") + value.Render(Sparkline(falling, 30)) + "\n")
	}

	if m.err != nil {
		s.WriteString("\n" + lipgloss.NewStyle().Foreground(t.Error).Render(m.err.Error()) + "\n")
	}
	s.WriteString(muted.Render("\n─────────────────────\nSP:Start/Stop N:Step Q:Quit\nX:Toggle C:Clear P:Pattern\n+-:Speed ?:Help  T:" + t.Name))

	mainView := lipgloss.JoinHorizontal(lipgloss.Top, gridView, panelStyle.BorderForeground(t.Muted).Render(s.String()))
	if m.showHelp {
		return helpText + "\n\n" + mainView
	}
	return mainView
}

const helpText = `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  Space     - Start/Stop simulation   ║
║  N         - Single step (stopped)   ║
║  Arrows/hjkl - Move cursor           ║
║  Enter/X   - Toggle cell             ║
║  C         - Clear grid              ║
║  P         - Load next pattern       ║
║  + / -     - Interval +/-100ms       ║
║  ] / [     - Rows +/-1               ║
║  } / {     - Cols +/-1               ║
║  T         - Cycle themes            ║
║  ?         - Toggle this help        ║
║  Q         - Quit                    ║
╚══════════════════════════════════════╝`
