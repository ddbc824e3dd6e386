package automation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/san-kum/blockfall/internal/blocks"
	"github.com/san-kum/blockfall/internal/config"
	"github.com/san-kum/blockfall/internal/session"
	"gopkg.in/yaml.v3"
)

var (
	ErrStep        = errors.New("automation: invalid step")
	ErrExpectation = errors.New("automation: expectation failed")
)

// Scenario is a scripted sequence of edits and generations run against a
// fresh session.
type Scenario struct {
	Name        string        `yaml:"name"`
	Description string        `yaml:"description"`
	Config      config.Config `yaml:"config"`
	Steps       []Step        `yaml:"steps"`
}

// Step holds one action; exactly one of its fields may be set.
type Step struct {
	Pattern string             `yaml:"pattern,omitempty"`
	Toggle  [][]int            `yaml:"toggle,omitempty"`
	Rules   map[string]float64 `yaml:"rules,omitempty"`
	Resize  []int              `yaml:"resize,omitempty"`
	Advance int                `yaml:"advance,omitempty"`
	Clear   bool               `yaml:"clear,omitempty"`
	Expect  *Expect            `yaml:"expect,omitempty"`
}

// Expect checks the census and generation after the previous steps. Unset
// fields are not checked. Type and Stable apply to the cell at Cell.
type Expect struct {
	Generation *int `yaml:"generation"`
	Empty      *int `yaml:"empty"`
	Blue       *int `yaml:"blue"`
	Red        *int `yaml:"red"`
	Green      *int `yaml:"green"`
	Falling    *int `yaml:"falling"`
	Settled    *int `yaml:"settled"`

	Cell   []int  `yaml:"cell"`
	Type   string `yaml:"type"`
	Stable *bool  `yaml:"stable"`
}

// Result is the session state after one step.
type Result struct {
	Step   int
	Action string
	Frame  session.Frame
}

// LoadScenario loads a scenario from a YAML file. The config section is
// applied over the defaults.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseScenario(data)
}

func ParseScenario(data []byte) (*Scenario, error) {
	scenario := Scenario{Config: *config.DefaultConfig()}
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("automation: parse scenario: %w", err)
	}
	return &scenario, nil
}

// RunScenario executes all steps in order and stops at the first failing
// step. Results for the steps that ran are returned either way.
func RunScenario(ctx context.Context, scenario *Scenario, logger *slog.Logger) ([]Result, error) {
	cfg := scenario.Config
	sess, err := session.New(&cfg, logger)
	if err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(scenario.Steps))
	for i, step := range scenario.Steps {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		action, err := apply(sess, step)
		if err != nil {
			return results, fmt.Errorf("step %d (%s): %w", i+1, action, err)
		}
		results = append(results, Result{Step: i + 1, Action: action, Frame: sess.Frame()})
	}
	return results, nil
}

func (s Step) actions() int {
	n := 0
	for _, set := range []bool{
		s.Pattern != "",
		len(s.Toggle) > 0,
		len(s.Rules) > 0,
		s.Resize != nil,
		s.Advance > 0,
		s.Clear,
		s.Expect != nil,
	} {
		if set {
			n++
		}
	}
	return n
}

func apply(sess *session.Session, step Step) (string, error) {
	if n := step.actions(); n > 1 {
		return "mixed", fmt.Errorf("%w: %d actions in one step", ErrStep, n)
	}
	switch {
	case step.Pattern != "":
		return "pattern " + step.Pattern, sess.LoadPattern(step.Pattern)
	case len(step.Toggle) > 0:
		for _, rc := range step.Toggle {
			if len(rc) != 2 {
				return "toggle", fmt.Errorf("%w: toggle wants [row, col], got %v", ErrStep, rc)
			}
			if err := sess.Toggle(rc[0], rc[1]); err != nil {
				return "toggle", err
			}
		}
		return fmt.Sprintf("toggle %d cells", len(step.Toggle)), nil
	case len(step.Rules) > 0:
		rc := config.FromRules(sess.Rules())
		for name, v := range step.Rules {
			if err := rc.Set(name, v); err != nil {
				return "rules", err
			}
		}
		return "rules", sess.SetRules(rc.Rules())
	case step.Resize != nil:
		if len(step.Resize) != 2 {
			return "resize", fmt.Errorf("%w: resize wants [rows, cols], got %v", ErrStep, step.Resize)
		}
		return fmt.Sprintf("resize %dx%d", step.Resize[0], step.Resize[1]), sess.Resize(step.Resize[0], step.Resize[1])
	case step.Advance > 0:
		sess.Advance(step.Advance, nil)
		return fmt.Sprintf("advance %d", step.Advance), nil
	case step.Clear:
		sess.Clear()
		return "clear", nil
	case step.Expect != nil:
		return "expect", check(sess, step.Expect)
	}
	return "empty", fmt.Errorf("%w: no action set", ErrStep)
}

func check(sess *session.Session, want *Expect) error {
	c := sess.Census()
	var failed []string
	for _, f := range []struct {
		name string
		want *int
		got  int
	}{
		{"generation", want.Generation, sess.Generation()},
		{"empty", want.Empty, c.Empty},
		{"blue", want.Blue, c.Blue},
		{"red", want.Red, c.Red},
		{"green", want.Green, c.Green},
		{"falling", want.Falling, c.Falling},
		{"settled", want.Settled, c.Settled},
	} {
		if f.want != nil && *f.want != f.got {
			failed = append(failed, fmt.Sprintf("%s = %d, want %d", f.name, f.got, *f.want))
		}
	}
	cellFailed, err := checkCell(sess, want)
	if err != nil {
		return err
	}
	failed = append(failed, cellFailed...)
	if len(failed) > 0 {
		return fmt.Errorf("%w: %s", ErrExpectation, strings.Join(failed, "; "))
	}
	return nil
}

func checkCell(sess *session.Session, want *Expect) ([]string, error) {
	if want.Cell == nil {
		if want.Type != "" || want.Stable != nil {
			return nil, fmt.Errorf("%w: type and stable need a cell", ErrStep)
		}
		return nil, nil
	}
	if len(want.Cell) != 2 {
		return nil, fmt.Errorf("%w: cell wants [row, col], got %v", ErrStep, want.Cell)
	}
	r, c := want.Cell[0], want.Cell[1]
	if r < 0 || r >= sess.Rows() || c < 0 || c >= sess.Cols() {
		return nil, fmt.Errorf("%w: cell %v outside %dx%d grid", ErrStep, want.Cell, sess.Rows(), sess.Cols())
	}
	got := sess.Cell(r, c)

	var failed []string
	if want.Type != "" {
		ct, err := blocks.ParseCellType(want.Type)
		if err != nil {
			return nil, err
		}
		if got.Type != ct {
			failed = append(failed, fmt.Sprintf("cell %d,%d type = %s, want %s", r, c, got.Type, ct))
		}
	}
	if want.Stable != nil && got.Stable != *want.Stable {
		failed = append(failed, fmt.Sprintf("cell %d,%d stable = %t, want %t", r, c, got.Stable, *want.Stable))
	}
	return failed, nil
}

// Census is shorthand for building expectations in code.
func Census(c blocks.Census) *Expect {
	return &Expect{
		Empty:   &c.Empty,
		Blue:    &c.Blue,
		Red:     &c.Red,
		Green:   &c.Green,
		Falling: &c.Falling,
		Settled: &c.Settled,
	}
}
