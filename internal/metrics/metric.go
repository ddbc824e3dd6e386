package metrics

import (
	"errors"
	"fmt"

	"github.com/san-kum/blockfall/internal/blocks"
)

var ErrUnknownMetric = errors.New("metrics: unknown metric")

// Metric accumulates a value over the grids of consecutive generations.
type Metric interface {
	Name() string
	Observe(g blocks.Grid)
	Value() float64
	Reset()
}

// Default returns a fresh set of the metrics reported by the runner.
func Default() []Metric {
	return []Metric{NewOccupancy(), NewSettleRatio(), NewChurn(), NewPeakFalling()}
}

func ObserveAll(ms []Metric, g blocks.Grid) {
	for _, m := range ms {
		m.Observe(g)
	}
}

// New returns a fresh metric by name.
func New(name string) (Metric, error) {
	for _, m := range Default() {
		if m.Name() == name {
			return m, nil
		}
	}
	return nil, fmt.Errorf("%w: %q (available: %v)", ErrUnknownMetric, name, Names())
}

func Names() []string {
	ms := Default()
	names := make([]string, len(ms))
	for i, m := range ms {
		names[i] = m.Name()
	}
	return names
}
