package metrics

import "github.com/san-kum/blockfall/internal/blocks"

// Churn is the mean number of cells whose type or resting state changed
// between consecutive observations. A size change restarts the
// comparison.
type Churn struct {
	name    string
	prev    blocks.Grid
	changed int
	samples int
}

func NewChurn() *Churn {
	return &Churn{name: "churn"}
}

func (c *Churn) Name() string { return c.name }

func (c *Churn) Observe(g blocks.Grid) {
	if c.prev != nil && c.prev.Rows() == g.Rows() && c.prev.Cols() == g.Cols() {
		for i := range g {
			for j := range g[i] {
				a, b := c.prev[i][j], g[i][j]
				if a.Type != b.Type || a.Stable != b.Stable {
					c.changed++
				}
			}
		}
		c.samples++
	}
	c.prev = g.Clone()
}

func (c *Churn) Value() float64 {
	if c.samples == 0 {
		return 0
	}
	return float64(c.changed) / float64(c.samples)
}

func (c *Churn) Reset() {
	c.prev = nil
	c.changed = 0
	c.samples = 0
}

// PeakFalling is the largest number of falling cells seen at once.
type PeakFalling struct {
	name string
	peak int
}

func NewPeakFalling() *PeakFalling {
	return &PeakFalling{name: "peak_falling"}
}

func (p *PeakFalling) Name() string { return p.name }

func (p *PeakFalling) Observe(g blocks.Grid) {
	p.peak = max(p.peak, g.Census().Falling)
}

func (p *PeakFalling) Value() float64 { return float64(p.peak) }

func (p *PeakFalling) Reset() { p.peak = 0 }
