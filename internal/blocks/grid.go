package blocks

import "strings"

// Grid stores cells row-major: g[row][col].
type Grid [][]Cell

// NewGrid allocates an all-Empty, unstable grid with ids numbered
// row-major from 1.
func NewGrid(rows, cols int) Grid {
	rows, cols = clampDims(rows, cols)
	g := make(Grid, rows)
	id := 1
	for i := range g {
		row := make([]Cell, cols)
		for j := range row {
			row[j] = Cell{ID: id}
			id++
		}
		g[i] = row
	}
	return g
}

func clampDims(rows, cols int) (int, int) {
	if rows < 1 {
		rows = 1
	}
	if cols < 1 {
		cols = 1
	}
	return rows, cols
}

func (g Grid) Rows() int { return len(g) }

func (g Grid) Cols() int {
	if len(g) == 0 {
		return 0
	}
	return len(g[0])
}

// In reports whether (row, col) addresses a cell of g.
func (g Grid) In(row, col int) bool {
	return row >= 0 && row < g.Rows() && col >= 0 && col < g.Cols()
}

// Clone returns a deep copy that shares no rows with g.
func (g Grid) Clone() Grid {
	c := make(Grid, len(g))
	for i, row := range g {
		c[i] = make([]Cell, len(row))
		copy(c[i], row)
	}
	return c
}

// Census tallies the grid by cell type and motion.
type Census struct {
	Empty   int `json:"empty"`
	Blue    int `json:"blue"`
	Red     int `json:"red"`
	Green   int `json:"green"`
	Falling int `json:"falling"`
	Settled int `json:"settled"`
}

func (c Census) Total() int {
	return c.Empty + c.Blue + c.Red + c.Green
}

func (g Grid) Census() Census {
	var c Census
	for _, row := range g {
		for _, cell := range row {
			switch cell.Type {
			case Empty:
				c.Empty++
			case Blue:
				c.Blue++
			case Red:
				c.Red++
			case Green:
				c.Green++
			}
			if cell.Type.Falls() {
				if cell.Stable {
					c.Settled++
				} else {
					c.Falling++
				}
			}
		}
	}
	return c
}

var glyphs = map[CellType][2]byte{
	Empty: {'.', '.'},
	Blue:  {'b', 'B'},
	Red:   {'r', 'R'},
	Green: {'g', 'G'},
}

// String renders one line per row. Upper case marks stable cells.
func (g Grid) String() string {
	var b strings.Builder
	b.Grow(g.Rows() * (g.Cols() + 1))
	for _, row := range g {
		for _, cell := range row {
			glyph := glyphs[cell.Type]
			if cell.Stable {
				b.WriteByte(glyph[1])
			} else {
				b.WriteByte(glyph[0])
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}
