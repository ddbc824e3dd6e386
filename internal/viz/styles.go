package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/blockfall/internal/blocks"
)

const (
	stableGlyph  = "██"
	fallingGlyph = "▓▓"
	emptyGlyph   = "··"
	cursorGlyph  = "[]"
)

var (
	gridStyle  = lipgloss.NewStyle().Padding(1, 2)
	panelStyle = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).Padding(1, 2).Width(44)
	labelStyle = lipgloss.NewStyle().Width(12)
)

func (t Theme) cellColor(ct blocks.CellType) lipgloss.Color {
	switch ct {
	case blocks.Blue:
		return t.Blue
	case blocks.Red:
		return t.Red
	case blocks.Green:
		return t.Green
	}
	return t.Empty
}

// renderCell draws one cell as two terminal columns.
func (t Theme) renderCell(c blocks.Cell, cursor bool) string {
	style := lipgloss.NewStyle().Foreground(t.cellColor(c.Type))
	glyph := emptyGlyph
	switch {
	case c.Type == blocks.Empty:
	case c.Stable:
		glyph = stableGlyph
	default:
		glyph = fallingGlyph
	}
	if cursor {
		style = style.Foreground(t.Cursor).Background(t.cellColor(c.Type))
		glyph = cursorGlyph
	}
	return style.Render(glyph)
}

// renderGrid draws g with the cursor at (row, col); a negative row hides it.
func (t Theme) renderGrid(g blocks.Grid, row, col int) string {
	var b strings.Builder
	for i, cells := range g {
		for j, c := range cells {
			b.WriteString(t.renderCell(c, i == row && j == col))
		}
		if i < len(g)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// Chart plots the falling and settled block counts of each recorded
// generation.
func Chart(history []blocks.Census, width, height int) string {
	if len(history) < 2 {
		return ""
	}
	falling := make([]float64, len(history))
	settled := make([]float64, len(history))
	for i, c := range history {
		falling[i] = float64(c.Falling)
		settled[i] = float64(c.Settled)
	}
	return asciigraph.PlotMany([][]float64{falling, settled},
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption("falling / settled"))
}

// Sparkline renders values scaled to the eight block heights.
func Sparkline(values []float64, width int) string {
	if len(values) == 0 || width <= 0 {
		return strings.Repeat("─", max(width, 0))
	}
	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	lo, hi := values[0], values[0]
	for _, v := range values {
		lo, hi = min(lo, v), max(hi, v)
	}
	span := hi - lo
	if span == 0 {
		span = 1
	}

	// Keep the most recent values that fit.
	if len(values) > width {
		values = values[len(values)-width:]
	}
	var b strings.Builder
	for _, v := range values {
		idx := int((v - lo) / span * float64(len(chars)-1))
		b.WriteRune(chars[idx])
	}
	return b.String()
}
