package optim

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/san-kum/blockfall/internal/blocks"
	"github.com/san-kum/blockfall/internal/config"
	"github.com/san-kum/blockfall/internal/metrics"
)

func TestParseParam(t *testing.T) {
	tests := []struct {
		in      string
		want    Param
		wantErr bool
	}{
		{"spawn_cell=0.1,0.2", Param{Name: "spawn_cell", Values: []float64{0.1, 0.2}}, false},
		{" settled = 1 ", Param{Name: "settled", Values: []float64{1}}, false},
		{"spawn_cell", Param{}, true},
		{"=0.1", Param{}, true},
		{"spawn_cell=x", Param{}, true},
	}

	for _, tt := range tests {
		got, err := ParseParam(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrParam) {
				t.Errorf("ParseParam(%q): expected ErrParam, got %v", tt.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseParam(%q): %v", tt.in, err)
			continue
		}
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("ParseParam(%q) (-want +got):\n%s", tt.in, diff)
		}
	}
}

func baseConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Rows, cfg.Cols = 8, 8
	return cfg
}

func TestSearchCombinations(t *testing.T) {
	g := NewGridSearch(baseConfig(), []Param{
		{Name: "spawn_pass", Values: []float64{0, 1}},
		{Name: "spawn_cell", Values: []float64{0, 0.5, 1}},
	})
	trials, err := g.Search(context.Background(), SearchConfig{
		Generations: 10, Seeds: 2, Metric: "peak_falling", Maximize: true, Workers: 3,
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(trials) != 6 {
		t.Fatalf("expected 6 trials, got %d", len(trials))
	}
	for i := 1; i < len(trials); i++ {
		if trials[i].Value > trials[i-1].Value {
			t.Fatalf("trials not sorted: %v", trials)
		}
	}
	best := trials[0]
	if best.Params["spawn_pass"] != 1 || best.Params["spawn_cell"] != 1 {
		t.Errorf("best = %v", best.Params)
	}
	if last := trials[len(trials)-1]; last.Value != 0 {
		t.Errorf("no spawning should give no falling cells, got %v", last)
	}
}

func TestSearchErrors(t *testing.T) {
	ctx := context.Background()

	g := NewGridSearch(baseConfig(), []Param{{Name: "gravity", Values: []float64{1}}})
	if _, err := g.Search(ctx, SearchConfig{Generations: 1, Metric: "churn"}); !errors.Is(err, config.ErrUnknownRule) {
		t.Errorf("expected ErrUnknownRule, got %v", err)
	}

	g = NewGridSearch(baseConfig(), []Param{{Name: "settled", Values: []float64{2}}})
	if _, err := g.Search(ctx, SearchConfig{Generations: 1, Metric: "churn"}); !errors.Is(err, blocks.ErrProbability) {
		t.Errorf("expected ErrProbability, got %v", err)
	}

	if _, err := g.Search(ctx, SearchConfig{Metric: "entropy"}); !errors.Is(err, metrics.ErrUnknownMetric) {
		t.Errorf("expected ErrUnknownMetric, got %v", err)
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	g = NewGridSearch(baseConfig(), []Param{{Name: "settled", Values: []float64{0.5}}})
	if _, err := g.Search(cancelled, SearchConfig{Generations: 1, Metric: "churn"}); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
