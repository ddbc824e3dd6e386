package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/san-kum/blockfall/internal/blocks"
	"gopkg.in/yaml.v3"
)

const (
	DefaultRows     = 20
	DefaultCols     = 10
	DefaultInterval = 300 * time.Millisecond

	MinSize     = 5
	MaxSize     = 50
	MinInterval = 100 * time.Millisecond
)

var (
	ErrSizeOutOfRange = fmt.Errorf("config: grid size must be within [%d,%d]", MinSize, MaxSize)
	ErrInterval       = fmt.Errorf("config: interval must be at least %s", MinInterval)
	ErrUnknownPreset  = errors.New("config: unknown preset")
	ErrUnknownRule    = errors.New("config: unknown rule")
)

type Config struct {
	Rows     int           `yaml:"rows" json:"rows"`
	Cols     int           `yaml:"cols" json:"cols"`
	Interval time.Duration `yaml:"interval" json:"interval"`
	Seed     int64         `yaml:"seed" json:"seed"`
	Pattern  string        `yaml:"pattern" json:"pattern"`
	Rules    RulesConfig   `yaml:"rules" json:"rules"`
}

type RulesConfig struct {
	GreenPass  float64 `yaml:"green_pass" json:"green_pass"`
	GreenCell  float64 `yaml:"green_cell" json:"green_cell"`
	SpawnPass  float64 `yaml:"spawn_pass" json:"spawn_pass"`
	SpawnCell  float64 `yaml:"spawn_cell" json:"spawn_cell"`
	BlueBias   float64 `yaml:"blue_bias" json:"blue_bias"`
	JitterPass float64 `yaml:"jitter_pass" json:"jitter_pass"`
	JitterCell float64 `yaml:"jitter_cell" json:"jitter_cell"`
	Settled    float64 `yaml:"settled" json:"settled"`
}

func FromRules(r blocks.Rules) RulesConfig {
	return RulesConfig{
		GreenPass:  r.GreenPass,
		GreenCell:  r.GreenCell,
		SpawnPass:  r.SpawnPass,
		SpawnCell:  r.SpawnCell,
		BlueBias:   r.BlueBias,
		JitterPass: r.JitterPass,
		JitterCell: r.JitterCell,
		Settled:    r.Settled,
	}
}

func (r RulesConfig) Rules() blocks.Rules {
	return blocks.Rules{
		GreenPass:  r.GreenPass,
		GreenCell:  r.GreenCell,
		SpawnPass:  r.SpawnPass,
		SpawnCell:  r.SpawnCell,
		BlueBias:   r.BlueBias,
		JitterPass: r.JitterPass,
		JitterCell: r.JitterCell,
		Settled:    r.Settled,
	}
}

// Set assigns the rule named by its yaml key.
func (r *RulesConfig) Set(name string, v float64) error {
	fields := map[string]*float64{
		"green_pass":  &r.GreenPass,
		"green_cell":  &r.GreenCell,
		"spawn_pass":  &r.SpawnPass,
		"spawn_cell":  &r.SpawnCell,
		"blue_bias":   &r.BlueBias,
		"jitter_pass": &r.JitterPass,
		"jitter_cell": &r.JitterCell,
		"settled":     &r.Settled,
	}
	f, ok := fields[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownRule, name)
	}
	*f = v
	return nil
}

func DefaultConfig() *Config {
	return &Config{
		Rows:     DefaultRows,
		Cols:     DefaultCols,
		Interval: DefaultInterval,
		Rules:    FromRules(blocks.DefaultRules()),
	}
}

// Load reads a yaml file on top of the defaults, so keys missing from the
// file keep their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := cfg.Marshal()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// ValidSize reports whether rows x cols is a grid size the controller
// accepts.
func ValidSize(rows, cols int) bool {
	return rows >= MinSize && rows <= MaxSize && cols >= MinSize && cols <= MaxSize
}

func (c *Config) Validate() error {
	if !ValidSize(c.Rows, c.Cols) {
		return fmt.Errorf("%dx%d: %w", c.Rows, c.Cols, ErrSizeOutOfRange)
	}
	if c.Interval < MinInterval {
		return fmt.Errorf("%s: %w", c.Interval, ErrInterval)
	}
	if err := c.Rules.Rules().Validate(); err != nil {
		return fmt.Errorf("config: rules: %w", err)
	}
	if c.Pattern != "" {
		known := false
		for _, name := range blocks.Patterns() {
			if name == c.Pattern {
				known = true
				break
			}
		}
		if !known {
			return fmt.Errorf("config: %w: %q", blocks.ErrUnknownPattern, c.Pattern)
		}
	}
	return nil
}
