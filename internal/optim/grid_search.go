package optim

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sort"
	"strconv"
	"strings"

	"github.com/san-kum/blockfall/internal/config"
	"github.com/san-kum/blockfall/internal/metrics"
	"github.com/san-kum/blockfall/internal/session"
	"golang.org/x/sync/errgroup"
)

var ErrParam = errors.New("optim: bad parameter")

// Param is one rule and the values to try for it.
type Param struct {
	Name   string
	Values []float64
}

// ParseParam reads "name=v1,v2,...".
func ParseParam(s string) (Param, error) {
	name, list, ok := strings.Cut(s, "=")
	if !ok || name == "" || list == "" {
		return Param{}, fmt.Errorf("%w: %q, want name=v1,v2", ErrParam, s)
	}
	p := Param{Name: strings.TrimSpace(name)}
	for _, f := range strings.Split(list, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return Param{}, fmt.Errorf("%w: %q: %v", ErrParam, s, err)
		}
		p.Values = append(p.Values, v)
	}
	return p, nil
}

type SearchConfig struct {
	Generations int
	Seeds       int
	Metric      string
	Maximize    bool
	Workers     int
}

// Trial is the metric for one rule combination, averaged over seeds.
type Trial struct {
	Params map[string]float64
	Value  float64
}

type GridSearch struct {
	base   *config.Config
	params []Param
}

func NewGridSearch(base *config.Config, params []Param) *GridSearch {
	return &GridSearch{base: base, params: params}
}

// Search runs every combination of the parameter values once per seed
// and returns the trials best first.
func (g *GridSearch) Search(ctx context.Context, sc SearchConfig) ([]Trial, error) {
	if _, err := metrics.New(sc.Metric); err != nil {
		return nil, err
	}
	if sc.Seeds < 1 {
		sc.Seeds = 1
	}
	if sc.Workers < 1 {
		sc.Workers = runtime.NumCPU()
	}

	var combos []map[string]float64
	g.searchRecursive(0, map[string]float64{}, &combos)

	values := make([][]float64, len(combos))
	for i := range values {
		values[i] = make([]float64, sc.Seeds)
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(sc.Workers)
	for i, params := range combos {
		for s := 0; s < sc.Seeds; s++ {
			eg.Go(func() error {
				if err := ctx.Err(); err != nil {
					return err
				}
				v, err := g.runTrial(params, int64(s+1), sc)
				values[i][s] = v
				return err
			})
		}
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	trials := make([]Trial, len(combos))
	for i, params := range combos {
		sum := 0.0
		for _, v := range values[i] {
			sum += v
		}
		trials[i] = Trial{Params: params, Value: sum / float64(sc.Seeds)}
	}
	sort.SliceStable(trials, func(a, b int) bool {
		if sc.Maximize {
			return trials[a].Value > trials[b].Value
		}
		return trials[a].Value < trials[b].Value
	})
	return trials, nil
}

func (g *GridSearch) searchRecursive(depth int, current map[string]float64, out *[]map[string]float64) {
	if depth == len(g.params) {
		*out = append(*out, current)
		return
	}
	p := g.params[depth]
	for _, val := range p.Values {
		next := make(map[string]float64, len(current)+1)
		for k, v := range current {
			next[k] = v
		}
		next[p.Name] = val
		g.searchRecursive(depth+1, next, out)
	}
}

func (g *GridSearch) runTrial(params map[string]float64, seed int64, sc SearchConfig) (float64, error) {
	cfg := *g.base
	cfg.Seed = seed
	for name, v := range params {
		if err := cfg.Rules.Set(name, v); err != nil {
			return 0, err
		}
	}
	sess, err := session.New(&cfg, nil)
	if err != nil {
		return 0, err
	}
	m, err := metrics.New(sc.Metric)
	if err != nil {
		return 0, err
	}
	sess.Advance(sc.Generations, func(f session.Frame) { m.Observe(f.Grid) })
	return m.Value(), nil
}
