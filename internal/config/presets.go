package config

import (
	"fmt"
	"sort"
	"time"
)

var Presets = map[string]*Config{
	"classic": {
		Rows: 20, Cols: 10, Interval: 300 * time.Millisecond,
		Pattern: "blocks",
		Rules: RulesConfig{
			GreenPass: 0.3, GreenCell: 0.1, SpawnPass: 0.4, SpawnCell: 0.15,
			BlueBias: 0.5, JitterPass: 0.2, JitterCell: 0.1, Settled: 0.7,
		},
	},
	"calm": {
		Rows: 20, Cols: 10, Interval: 500 * time.Millisecond,
		Pattern: "floor",
		Rules: RulesConfig{
			GreenPass: 0.05, GreenCell: 0.05, SpawnPass: 0.2, SpawnCell: 0.1,
			BlueBias: 0.5, JitterPass: 0.05, JitterCell: 0.05, Settled: 0.9,
		},
	},
	"storm": {
		Rows: 30, Cols: 30, Interval: 100 * time.Millisecond,
		Pattern: "rain",
		Rules: RulesConfig{
			GreenPass: 0.5, GreenCell: 0.2, SpawnPass: 0.9, SpawnCell: 0.4,
			BlueBias: 0.5, JitterPass: 0.6, JitterCell: 0.3, Settled: 0.3,
		},
	},
	"mono": {
		Rows: 20, Cols: 10, Interval: 300 * time.Millisecond,
		Pattern: "floor",
		Rules: RulesConfig{
			GreenPass: 0, GreenCell: 0, SpawnPass: 0.4, SpawnCell: 0.15,
			BlueBias: 1, JitterPass: 0, JitterCell: 0, Settled: 0.7,
		},
	},
}

// GetPreset returns a copy of the named preset.
func GetPreset(name string) (*Config, error) {
	p, ok := Presets[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %v)", ErrUnknownPreset, name, ListPresets())
	}
	cfg := *p
	return &cfg, nil
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
