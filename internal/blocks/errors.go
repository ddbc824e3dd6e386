package blocks

import "errors"

var (
	// ErrProbability indicates a rule probability outside [0, 1].
	ErrProbability = errors.New("blocks: probability out of range [0,1]")

	// ErrUnknownPattern indicates a pattern name with no registered layout.
	ErrUnknownPattern = errors.New("blocks: unknown pattern")

	// ErrUnknownCellType indicates a cell type name that does not parse.
	ErrUnknownCellType = errors.New("blocks: unknown cell type")
)
