package metrics

import "github.com/san-kum/blockfall/internal/blocks"

// Occupancy is the mean fraction of non-empty cells.
type Occupancy struct {
	name    string
	sum     float64
	samples int
}

func NewOccupancy() *Occupancy {
	return &Occupancy{name: "occupancy"}
}

func (o *Occupancy) Name() string { return o.name }

func (o *Occupancy) Observe(g blocks.Grid) {
	c := g.Census()
	if c.Total() == 0 {
		return
	}
	o.sum += float64(c.Total()-c.Empty) / float64(c.Total())
	o.samples++
}

func (o *Occupancy) Value() float64 {
	if o.samples == 0 {
		return 0
	}
	return o.sum / float64(o.samples)
}

func (o *Occupancy) Reset() {
	o.sum = 0
	o.samples = 0
}

// SettleRatio is the mean share of blue and red cells that are resting.
// Generations without any blue or red cell are skipped.
type SettleRatio struct {
	name    string
	sum     float64
	samples int
}

func NewSettleRatio() *SettleRatio {
	return &SettleRatio{name: "settle_ratio"}
}

func (s *SettleRatio) Name() string { return s.name }

func (s *SettleRatio) Observe(g blocks.Grid) {
	c := g.Census()
	n := c.Falling + c.Settled
	if n == 0 {
		return
	}
	s.sum += float64(c.Settled) / float64(n)
	s.samples++
}

func (s *SettleRatio) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return s.sum / float64(s.samples)
}

func (s *SettleRatio) Reset() {
	s.sum = 0
	s.samples = 0
}
