package blocks

import (
	"fmt"
	"math/rand/v2"
	"time"
)

// Rand is the randomness the engine consumes. *rand.Rand satisfies it.
type Rand interface {
	Float64() float64
}

// NewRand returns a PCG-backed source. A zero seed is replaced by the
// current time.
func NewRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewPCG(uint64(seed), 0))
}

// Rules holds the probability gates of one generation and of the
// default pattern.
type Rules struct {
	GreenPass  float64
	GreenCell  float64
	SpawnPass  float64
	SpawnCell  float64
	BlueBias   float64
	JitterPass float64
	JitterCell float64
	Settled    float64
}

func DefaultRules() Rules {
	return Rules{
		GreenPass:  0.3,
		GreenCell:  0.1,
		SpawnPass:  0.4,
		SpawnCell:  0.15,
		BlueBias:   0.5,
		JitterPass: 0.2,
		JitterCell: 0.1,
		Settled:    0.7,
	}
}

func (r Rules) Validate() error {
	fields := []struct {
		name string
		v    float64
	}{
		{"green_pass", r.GreenPass},
		{"green_cell", r.GreenCell},
		{"spawn_pass", r.SpawnPass},
		{"spawn_cell", r.SpawnCell},
		{"blue_bias", r.BlueBias},
		{"jitter_pass", r.JitterPass},
		{"jitter_cell", r.JitterCell},
		{"settled", r.Settled},
	}
	for _, f := range fields {
		if f.v < 0 || f.v > 1 {
			return fmt.Errorf("%s=%g: %w", f.name, f.v, ErrProbability)
		}
	}
	return nil
}
