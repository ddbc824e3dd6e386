package export

import (
	"fmt"
	"strings"

	"github.com/san-kum/blockfall/internal/blocks"
	"github.com/san-kum/blockfall/internal/viz"
)

// GridToSVG draws every cell as a square of side scale. Falling cells are
// drawn at half opacity.
func GridToSVG(g blocks.Grid, theme viz.Theme, scale float64) string {
	if g.Rows() == 0 {
		return ""
	}

	width := float64(g.Cols()) * scale
	height := float64(g.Rows()) * scale

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height))

	colors := map[blocks.CellType]string{
		blocks.Blue:  string(theme.Blue),
		blocks.Red:   string(theme.Red),
		blocks.Green: string(theme.Green),
	}
	inset := scale * 0.05
	for i, row := range g {
		for j, c := range row {
			fill, ok := colors[c.Type]
			if !ok {
				continue
			}
			opacity := 1.0
			if c.Falling() {
				opacity = 0.5
			}
			sb.WriteString(fmt.Sprintf(`<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s" fill-opacity="%.1f"><title>%s</title></rect>
`, float64(j)*scale+inset, float64(i)*scale+inset, scale-2*inset, scale-2*inset, fill, opacity, c))
		}
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// HistoryToSVG plots the falling count of each recorded generation as a
// polyline.
func HistoryToSVG(history []blocks.Census, width, height int, strokeColor string) string {
	if len(history) < 2 {
		return ""
	}

	maxY := 1
	for _, c := range history {
		maxY = max(maxY, c.Falling)
	}
	stepX := float64(width) / float64(len(history)-1)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		width, height, width, height, strokeColor))

	for i, c := range history {
		x := float64(i) * stepX
		y := float64(height) - float64(c.Falling)/float64(maxY)*float64(height)
		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		}
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}
