package blocks

import (
	"fmt"
	"sort"
)

// DefaultPattern is the layout LoadPattern applies.
const DefaultPattern = "blocks"

// Pattern paints a layout onto a freshly cleared engine.
type Pattern func(e *Engine)

var patterns = map[string]Pattern{}

// RegisterPattern adds a layout under name. Empty names and nil patterns
// are ignored.
func RegisterPattern(name string, p Pattern) {
	if name == "" || p == nil {
		return
	}
	patterns[name] = p
}

// Patterns lists registered layout names in sorted order.
func Patterns() []string {
	names := make([]string, 0, len(patterns))
	for name := range patterns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LoadPattern clears the grid and applies the default layout: green top
// and bottom rows with partially settled blue and red blocks between them.
func (e *Engine) LoadPattern() Grid {
	g, _ := e.LoadNamedPattern(DefaultPattern)
	return g
}

func (e *Engine) LoadNamedPattern(name string) (Grid, error) {
	p, ok := patterns[name]
	if !ok {
		return e.grid, fmt.Errorf("%w: %q", ErrUnknownPattern, name)
	}
	e.Clear()
	p(e)
	return e.grid, nil
}

func (e *Engine) fillRow(row int, t CellType, stable bool) {
	for j := range e.grid[row] {
		e.grid[row][j].Type, e.grid[row][j].Stable = t, stable
	}
}

type block struct {
	rows []int
	cols []int
	typ  CellType
}

var defaultBlocks = []block{
	{rows: []int{2, 3, 4}, cols: []int{1, 2, 4, 5}, typ: Blue},
	{rows: []int{2, 3, 4}, cols: []int{6, 8, 9}, typ: Red},
	{rows: []int{5, 6, 7}, cols: []int{3, 4, 5, 7}, typ: Blue},
	{rows: []int{5, 6, 7}, cols: []int{8, 9}, typ: Red},
	{rows: []int{8, 9, 10}, cols: []int{1, 3, 6, 8}, typ: Blue},
	{rows: []int{8, 9, 10}, cols: []int{2, 4, 7, 9}, typ: Red},
}

func blocksPattern(e *Engine) {
	e.fillRow(0, Green, true)
	e.fillRow(e.rows-1, Green, true)
	for _, b := range defaultBlocks {
		for _, i := range b.rows {
			for _, j := range b.cols {
				// The green floor is never overwritten.
				if i >= e.rows-1 || j >= e.cols {
					continue
				}
				c := &e.grid[i][j]
				c.Type, c.Stable = b.typ, e.chance(e.rules.Settled)
			}
		}
	}
}

func floorPattern(e *Engine) {
	e.fillRow(0, Green, true)
	e.fillRow(e.rows-1, Green, true)
}

func rainPattern(e *Engine) {
	e.fillRow(e.rows-1, Green, true)
	if e.rows < 3 {
		return
	}
	t := Blue
	for j := 0; j < e.cols; j += 2 {
		e.grid[1][j].Type, e.grid[1][j].Stable = t, false
		if t == Blue {
			t = Red
		} else {
			t = Blue
		}
	}
}

func init() {
	RegisterPattern(DefaultPattern, blocksPattern)
	RegisterPattern("floor", floorPattern)
	RegisterPattern("rain", rainPattern)
}
