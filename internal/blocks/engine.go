package blocks

// Engine owns a grid of falling blocks and advances it one generation at
// a time. It is not safe for concurrent use.
type Engine struct {
	rows, cols int
	grid       Grid
	generation int
	rules      Rules
	rng        Rand
}

// New returns an engine with an empty rows x cols grid. Dimensions below
// 1 are clamped to 1. A nil rng is replaced by a time-seeded source.
func New(rows, cols int, rng Rand) *Engine {
	if rng == nil {
		rng = NewRand(0)
	}
	rows, cols = clampDims(rows, cols)
	return &Engine{
		rows:  rows,
		cols:  cols,
		grid:  NewGrid(rows, cols),
		rules: DefaultRules(),
		rng:   rng,
	}
}

func (e *Engine) Rows() int       { return e.rows }
func (e *Engine) Cols() int       { return e.cols }
func (e *Engine) Generation() int { return e.generation }
func (e *Engine) Rules() Rules    { return e.rules }

// Grid returns the live grid. The engine mutates it on the next call, so
// callers that keep it across calls should use Snapshot.
func (e *Engine) Grid() Grid { return e.grid }

// Snapshot returns a deep copy of the current grid.
func (e *Engine) Snapshot() Grid { return e.grid.Clone() }

// SetRules replaces the probability gates. Invalid rules leave the
// current ones in place.
func (e *Engine) SetRules(r Rules) error {
	if err := r.Validate(); err != nil {
		return err
	}
	e.rules = r
	return nil
}

// SetGridSize rebuilds the grid at the new dimensions, keeping the type
// and stability of every cell inside the overlap of old and new bounds.
func (e *Engine) SetGridSize(rows, cols int) Grid {
	rows, cols = clampDims(rows, cols)
	next := NewGrid(rows, cols)
	keepRows, keepCols := min(e.rows, rows), min(e.cols, cols)
	for i := 0; i < keepRows; i++ {
		for j := 0; j < keepCols; j++ {
			old := e.grid[i][j]
			next[i][j] = Cell{ID: i*cols + j + 1, Type: old.Type, Stable: old.Stable}
		}
	}
	e.rows, e.cols = rows, cols
	e.grid = next
	return e.grid
}

// ToggleCell advances the cell at (row, col) through the toggle cycle.
// Green lands stable; Empty is left unstable like a freshly built cell, so
// four toggles of a fresh cell give back Empty/unstable. Coordinates
// outside the grid are ignored.
func (e *Engine) ToggleCell(row, col int) Grid {
	if !e.grid.In(row, col) {
		return e.grid
	}
	c := &e.grid[row][col]
	c.Type = c.Type.Next()
	c.Stable = c.Type == Green
	return e.grid
}

func (e *Engine) Clear() Grid {
	e.grid = NewGrid(e.rows, e.cols)
	e.generation = 0
	return e.grid
}

// NextGeneration advances the simulation by one generation.
//
// prev is the grid as of the last call and is only read. next starts as a
// deep copy of prev and receives every write; the fall sweep reads next so
// a block can drop through a column of empties it cleared earlier in the
// same sweep.
func (e *Engine) NextGeneration() Grid {
	prev := e.grid
	next := prev.Clone()

	e.spawnGreen(next)
	e.keepFloor(prev, next)
	e.settle(next)
	e.spawnFalling(next)
	e.jitter(next)

	e.grid = next
	e.generation++
	return e.grid
}

func (e *Engine) chance(p float64) bool {
	return e.rng.Float64() < p
}

func (e *Engine) spawnGreen(next Grid) {
	if !e.chance(e.rules.GreenPass) {
		return
	}
	top := next[0]
	for j := range top {
		if e.chance(e.rules.GreenCell) && top[j].Type == Empty {
			top[j].Type, top[j].Stable = Green, true
		}
	}
}

// keepFloor restores green floor cells that the previous generation had.
func (e *Engine) keepFloor(prev, next Grid) {
	last := e.rows - 1
	for j, c := range prev[last] {
		if c.Type == Green {
			next[last][j].Type, next[last][j].Stable = Green, true
		}
	}
}

func (e *Engine) settle(next Grid) {
	for i := e.rows - 2; i >= 0; i-- {
		for j := 0; j < e.cols; j++ {
			c := &next[i][j]
			if !c.Falling() {
				continue
			}
			below := &next[i+1][j]
			if below.Type == Empty {
				below.Type, below.Stable = c.Type, false
				c.Type, c.Stable = Empty, false
				continue
			}
			c.Stable = true
		}
	}
}

func (e *Engine) spawnFalling(next Grid) {
	if !e.chance(e.rules.SpawnPass) {
		return
	}
	top := next[0]
	for j := range top {
		if !e.chance(e.rules.SpawnCell) || top[j].Type != Empty {
			continue
		}
		t := Red
		if e.chance(e.rules.BlueBias) {
			t = Blue
		}
		top[j].Type, top[j].Stable = t, false
	}
}

// jitter recolors resting blocks. A cell matches at most one branch, so it
// flips at most once per pass.
func (e *Engine) jitter(next Grid) {
	if !e.chance(e.rules.JitterPass) {
		return
	}
	for i := range next {
		for j := range next[i] {
			c := &next[i][j]
			if !c.Stable {
				continue
			}
			switch {
			case c.Type == Blue && e.chance(e.rules.JitterCell):
				c.Type = Red
			case c.Type == Red && e.chance(e.rules.JitterCell):
				c.Type = Blue
			}
		}
	}
}
