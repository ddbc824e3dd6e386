package export

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/san-kum/blockfall/internal/blocks"
	"github.com/san-kum/blockfall/internal/config"
	"github.com/san-kum/blockfall/internal/metrics"
)

// Report summarizes a headless run. It is not meant to be loaded back.
type Report struct {
	Config     *config.Config     `json:"config"`
	Generation int                `json:"generation"`
	Final      blocks.Census      `json:"final"`
	History    []blocks.Census    `json:"history"`
	Metrics    map[string]float64 `json:"metrics"`
	Grid       []string           `json:"grid"`
}

func NewReport(cfg *config.Config, generation int, g blocks.Grid, history []blocks.Census, ms []metrics.Metric) Report {
	r := Report{
		Config:     cfg,
		Generation: generation,
		Final:      g.Census(),
		History:    history,
		Metrics:    make(map[string]float64, len(ms)),
	}
	for _, m := range ms {
		r.Metrics[m.Name()] = m.Value()
	}
	r.Grid = strings.Split(strings.TrimSuffix(g.String(), "\n"), "\n")
	return r
}

func ExportJSON(w io.Writer, r Report) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(r)
}
