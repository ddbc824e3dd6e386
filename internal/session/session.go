package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/san-kum/blockfall/internal/blocks"
	"github.com/san-kum/blockfall/internal/config"
	"github.com/san-kum/blockfall/internal/logging"
)

const historyCapacity = 600

// ErrRunning is returned for edits attempted while the driver is active.
var ErrRunning = errors.New("session: stop the simulation first")

// Frame is one rendered step of the simulation.
type Frame struct {
	Generation int
	Grid       blocks.Grid
	Census     blocks.Census
}

// Session drives a blocks.Engine for a UI. It validates sizes and locks
// edits while the simulation runs.
type Session struct {
	engine   *blocks.Engine
	logger   *slog.Logger
	running  bool
	interval time.Duration
	epoch    int
	history  []blocks.Census
}

func New(cfg *config.Config, logger *slog.Logger) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.Discard()
	}

	engine := blocks.New(cfg.Rows, cfg.Cols, blocks.NewRand(cfg.Seed))
	if err := engine.SetRules(cfg.Rules.Rules()); err != nil {
		return nil, err
	}
	s := &Session{
		engine:   engine,
		logger:   logger,
		interval: cfg.Interval,
		history:  make([]blocks.Census, 0, historyCapacity),
	}
	if cfg.Pattern != "" {
		if _, err := engine.LoadNamedPattern(cfg.Pattern); err != nil {
			return nil, err
		}
	}
	s.record()
	logger.Info("session created", "rows", cfg.Rows, "cols", cfg.Cols, "interval", cfg.Interval, "pattern", cfg.Pattern)
	return s, nil
}

func (s *Session) Rows() int               { return s.engine.Rows() }
func (s *Session) Cols() int               { return s.engine.Cols() }
func (s *Session) Generation() int         { return s.engine.Generation() }
func (s *Session) Running() bool           { return s.running }
func (s *Session) Interval() time.Duration { return s.interval }
func (s *Session) Rules() blocks.Rules     { return s.engine.Rules() }
func (s *Session) Census() blocks.Census   { return s.engine.Grid().Census() }
func (s *Session) Snapshot() blocks.Grid   { return s.engine.Snapshot() }

// Cell returns the live cell at (row, col), which must be inside the grid.
func (s *Session) Cell(row, col int) blocks.Cell { return s.engine.Grid()[row][col] }

// Epoch changes whenever the driver has to be restarted: on start, stop
// and interval changes. Ticks scheduled under an older epoch are stale.
func (s *Session) Epoch() int { return s.epoch }

// History returns the census of each recorded generation, oldest first.
func (s *Session) History() []blocks.Census {
	h := make([]blocks.Census, len(s.history))
	copy(h, s.history)
	return h
}

func (s *Session) Frame() Frame {
	g := s.engine.Snapshot()
	return Frame{Generation: s.engine.Generation(), Grid: g, Census: g.Census()}
}

func (s *Session) Start() {
	if s.running {
		return
	}
	s.running = true
	s.epoch++
	s.logger.Info("simulation started", "generation", s.Generation(), "interval", s.interval)
}

func (s *Session) Stop() {
	if !s.running {
		return
	}
	s.running = false
	s.epoch++
	s.logger.Info("simulation stopped", "generation", s.Generation())
}

// SetInterval changes the tick period, clamped to config.MinInterval, and
// returns the period in effect.
func (s *Session) SetInterval(d time.Duration) time.Duration {
	if d < config.MinInterval {
		d = config.MinInterval
	}
	if d == s.interval {
		return d
	}
	s.interval = d
	s.epoch++
	s.logger.Info("interval changed", "interval", d, "running", s.running)
	return d
}

// Resize changes the grid dimensions and restarts the history, since
// censuses of different sizes do not compare.
func (s *Session) Resize(rows, cols int) error {
	if s.running {
		return ErrRunning
	}
	if !config.ValidSize(rows, cols) {
		return fmt.Errorf("session: resize %dx%d: %w", rows, cols, config.ErrSizeOutOfRange)
	}
	s.engine.SetGridSize(rows, cols)
	s.resetHistory()
	s.logger.Info("grid resized", "rows", rows, "cols", cols)
	return nil
}

// SetRules replaces the probability gates; invalid rules leave the old
// ones in place.
func (s *Session) SetRules(r blocks.Rules) error {
	if err := s.engine.SetRules(r); err != nil {
		return err
	}
	s.logger.Info("rules changed", "rules", r)
	return nil
}

// Toggle cycles the cell at (row, col). Coordinates outside the grid are
// ignored by the engine.
func (s *Session) Toggle(row, col int) error {
	if s.running {
		return ErrRunning
	}
	s.engine.ToggleCell(row, col)
	s.logger.Debug("cell toggled", "row", row, "col", col)
	return nil
}

// Step advances one generation and records its census.
func (s *Session) Step() Frame {
	s.engine.NextGeneration()
	census := s.record()
	s.logger.Debug("generation", "n", s.Generation(), "falling", census.Falling, "settled", census.Settled)
	return Frame{Generation: s.Generation(), Grid: s.engine.Snapshot(), Census: census}
}

func (s *Session) Clear() {
	s.Stop()
	s.engine.Clear()
	s.resetHistory()
	s.logger.Info("grid cleared")
}

// LoadPattern stops the driver and loads the named layout. An empty name
// loads blocks.DefaultPattern.
func (s *Session) LoadPattern(name string) error {
	if name == "" {
		name = blocks.DefaultPattern
	}
	s.Stop()
	if _, err := s.engine.LoadNamedPattern(name); err != nil {
		return err
	}
	s.resetHistory()
	s.logger.Info("pattern loaded", "pattern", name)
	return nil
}

// Advance steps n generations back to back without waiting.
func (s *Session) Advance(n int, onStep func(Frame)) {
	for i := 0; i < n; i++ {
		f := s.Step()
		if onStep != nil {
			onStep(f)
		}
	}
}

// Run drives the engine on a ticker at the current interval until
// generations steps have run (0 means no limit) or ctx is done.
func (s *Session) Run(ctx context.Context, generations int, onStep func(Frame)) error {
	s.Start()
	defer s.Stop()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for n := 0; generations <= 0 || n < generations; n++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
		f := s.Step()
		if onStep != nil {
			onStep(f)
		}
	}
	return nil
}

func (s *Session) record() blocks.Census {
	c := s.engine.Grid().Census()
	if len(s.history) == historyCapacity {
		copy(s.history, s.history[1:])
		s.history[len(s.history)-1] = c
		return c
	}
	s.history = append(s.history, c)
	return c
}

func (s *Session) resetHistory() {
	s.history = s.history[:0]
	s.record()
}
