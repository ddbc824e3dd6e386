package blocks

import "fmt"

type CellType uint8

// Toggle order. Next walks this list and wraps.
const (
	Empty CellType = iota
	Blue
	Red
	Green

	numCellTypes = 4
)

var cellTypeNames = [numCellTypes]string{"empty", "blue", "red", "green"}

func (t CellType) String() string {
	if int(t) < len(cellTypeNames) {
		return cellTypeNames[t]
	}
	return fmt.Sprintf("celltype(%d)", uint8(t))
}

// Next returns the successor of t in the toggle cycle.
func (t CellType) Next() CellType {
	return (t + 1) % numCellTypes
}

// Falls reports whether cells of this type are subject to gravity.
func (t CellType) Falls() bool {
	return t == Blue || t == Red
}

func ParseCellType(s string) (CellType, error) {
	for i, name := range cellTypeNames {
		if name == s {
			return CellType(i), nil
		}
	}
	return Empty, fmt.Errorf("%w: %q", ErrUnknownCellType, s)
}

// Cell is one grid position. ID is derived from the position and is
// recomputed whenever the grid is resized.
type Cell struct {
	ID     int
	Type   CellType
	Stable bool
}

// Falling reports whether the cell is a Blue or Red block still in motion.
func (c Cell) Falling() bool {
	return c.Type.Falls() && !c.Stable
}

func (c Cell) String() string {
	state := "falling"
	if c.Stable {
		state = "stable"
	}
	return fmt.Sprintf("Cell %d: %s (%s)", c.ID, c.Type, state)
}
