package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/san-kum/blockfall/internal/automation"
	"github.com/san-kum/blockfall/internal/blocks"
	"github.com/san-kum/blockfall/internal/config"
	"github.com/san-kum/blockfall/internal/export"
	"github.com/san-kum/blockfall/internal/logging"
	"github.com/san-kum/blockfall/internal/metrics"
	"github.com/san-kum/blockfall/internal/optim"
	"github.com/san-kum/blockfall/internal/session"
	"github.com/san-kum/blockfall/internal/viz"
	"github.com/spf13/cobra"
)

type options struct {
	configFile string
	logLevel   string
	logFormat  string
	logFile    string

	rows     int
	cols     int
	interval time.Duration
	seed     int64
	pattern  string
	preset   string
	theme    string

	generations int
	fast        bool
	plot        bool
	quiet       bool
	svgGrid     string
	svgChart    string
	jsonReport  string

	params           []string
	metric           string
	trialGenerations int
	seeds            int
	workers          int
	maximize         bool
	top              int
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "blockfall",
		Short:         "falling blocks cellular simulation",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, opts)
		},
	}
	rootCmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&opts.logFormat, "log-format", "text", "log format (text, json)")
	rootCmd.PersistentFlags().StringVar(&opts.logFile, "log-file", "", "append logs to this file")
	addSimFlags(rootCmd, opts)
	addThemeFlag(rootCmd, opts)

	tuiCmd := &cobra.Command{
		Use:   "tui",
		Short: "interactive terminal view",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, opts)
		},
	}
	addSimFlags(tuiCmd, opts)
	addThemeFlag(tuiCmd, opts)

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run the simulation headless and print the final grid",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHeadless(cmd, opts)
		},
	}
	addSimFlags(runCmd, opts)
	runCmd.Flags().IntVar(&opts.generations, "generations", 50, "generations to run (0 = until interrupted)")
	runCmd.Flags().BoolVar(&opts.fast, "fast", false, "step without waiting for the interval")
	runCmd.Flags().BoolVar(&opts.plot, "plot", false, "plot falling and settled counts")
	runCmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "suppress per-generation output")
	runCmd.Flags().StringVar(&opts.svgGrid, "svg", "", "write the final grid as svg")
	runCmd.Flags().StringVar(&opts.svgChart, "svg-chart", "", "write the falling count history as svg")
	runCmd.Flags().StringVar(&opts.jsonReport, "json", "", "write a json run report (- for stdout)")
	addThemeFlag(runCmd, opts)

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "grid search rule values against a metric",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSweep(cmd, opts)
		},
	}
	sweepCmd.Example = "  blockfall sweep --param spawn_cell=0.05,0.15,0.3 --param jitter_cell=0,0.1 --metric occupancy --maximize"
	addSimFlags(sweepCmd, opts)
	sweepCmd.Flags().StringArrayVar(&opts.params, "param", nil, "rule values to try, name=v1,v2 (repeatable)")
	sweepCmd.Flags().StringVar(&opts.metric, "metric", "occupancy", "metric ("+strings.Join(metrics.Names(), ", ")+")")
	sweepCmd.Flags().IntVar(&opts.trialGenerations, "generations", 200, "generations per trial")
	sweepCmd.Flags().IntVar(&opts.seeds, "seeds", 3, "seeds per combination")
	sweepCmd.Flags().IntVar(&opts.workers, "workers", 0, "parallel trials (0 = number of CPUs)")
	sweepCmd.Flags().BoolVar(&opts.maximize, "maximize", false, "rank the highest values first")
	sweepCmd.Flags().IntVar(&opts.top, "top", 10, "rows to print (0 = all)")

	scriptCmd := &cobra.Command{
		Use:   "script [file]",
		Short: "run a yaml scenario of edits, generations and checks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScript(cmd, opts, args[0])
		},
	}
	scriptCmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "only print failures")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list rule presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tSIZE\tINTERVAL\tPATTERN\tSPAWN")
			for _, name := range config.ListPresets() {
				p, _ := config.GetPreset(name)
				fmt.Fprintf(w, "%s\t%dx%d\t%s\t%s\t%.2f\n", name, p.Rows, p.Cols, p.Interval, p.Pattern, p.Rules.SpawnCell)
			}
			return w.Flush()
		},
	}

	patternsCmd := &cobra.Command{
		Use:   "patterns",
		Short: "list starting patterns",
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range blocks.Patterns() {
				marker := " "
				if name == blocks.DefaultPattern {
					marker = "*"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", marker, name)
			}
		},
	}

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, opts)
			if err != nil {
				return err
			}
			data, err := cfg.Marshal()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
	addSimFlags(configCmd, opts)

	configInitCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "write the default configuration file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("config: %s already exists", path)
			}
			if err := config.Save(path, config.DefaultConfig()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}
	configCmd.AddCommand(configInitCmd)

	rootCmd.AddCommand(tuiCmd, runCmd, sweepCmd, scriptCmd, presetsCmd, patternsCmd, configCmd)
	return rootCmd
}

func addSimFlags(cmd *cobra.Command, opts *options) {
	cmd.Flags().IntVar(&opts.rows, "rows", config.DefaultRows, "grid rows")
	cmd.Flags().IntVar(&opts.cols, "cols", config.DefaultCols, "grid columns")
	cmd.Flags().DurationVar(&opts.interval, "interval", config.DefaultInterval, "tick interval")
	cmd.Flags().Int64Var(&opts.seed, "seed", 0, "random seed (0 = from clock)")
	cmd.Flags().StringVar(&opts.pattern, "pattern", "", "starting pattern")
	cmd.Flags().StringVar(&opts.preset, "preset", "", "use preset configuration")
}

func addThemeFlag(cmd *cobra.Command, opts *options) {
	cmd.Flags().StringVar(&opts.theme, "theme", viz.ThemeClassic.Name, "color theme ("+strings.Join(viz.ThemeNames(), ", ")+")")
}

// resolveConfig applies the preset, then the config file, then any flag
// set on the command line.
func resolveConfig(cmd *cobra.Command, opts *options) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if opts.preset != "" {
		p, err := config.GetPreset(opts.preset)
		if err != nil {
			return nil, err
		}
		cfg = p
	}
	if opts.configFile != "" {
		c, err := config.Load(opts.configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = c
	}

	flags := cmd.Flags()
	if flags.Changed("rows") {
		cfg.Rows = opts.rows
	}
	if flags.Changed("cols") {
		cfg.Cols = opts.cols
	}
	if flags.Changed("interval") {
		cfg.Interval = opts.interval
	}
	if flags.Changed("seed") {
		cfg.Seed = opts.seed
	}
	if flags.Changed("pattern") {
		cfg.Pattern = opts.pattern
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// openLogger writes to the log file when one is set and to fallback
// otherwise.
func openLogger(opts *options, fallback io.Writer) (*slog.Logger, func() error, error) {
	w, closeFn := fallback, func() error { return nil }
	if opts.logFile != "" {
		f, err := os.OpenFile(opts.logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return nil, nil, err
		}
		w, closeFn = f, f.Close
	}
	logger, err := logging.New(w, opts.logLevel, opts.logFormat)
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	return logger, closeFn, nil
}

func runTUI(cmd *cobra.Command, opts *options) error {
	cfg, err := resolveConfig(cmd, opts)
	if err != nil {
		return err
	}
	// The alternate screen owns stdout, so logs only go to --log-file.
	logger, closeLog, err := openLogger(opts, io.Discard)
	if err != nil {
		return err
	}
	defer closeLog()

	sess, err := session.New(cfg, logger)
	if err != nil {
		return err
	}
	return viz.Run(sess, opts.theme)
}

func runHeadless(cmd *cobra.Command, opts *options) error {
	cfg, err := resolveConfig(cmd, opts)
	if err != nil {
		return err
	}
	logger, closeLog, err := openLogger(opts, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer closeLog()

	sess, err := session.New(cfg, logger)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	ms := metrics.Default()
	onStep := func(f session.Frame) {
		metrics.ObserveAll(ms, f.Grid)
		if opts.quiet {
			return
		}
		fmt.Fprintf(out, "gen %5d  falling %4d  settled %4d  green %4d\n",
			f.Generation, f.Census.Falling, f.Census.Settled, f.Census.Green)
	}

	if opts.fast {
		if opts.generations <= 0 {
			return errors.New("run: --fast needs --generations > 0")
		}
		sess.Advance(opts.generations, onStep)
	} else {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()
		if err := sess.Run(ctx, opts.generations, onStep); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
	}

	fmt.Fprintf(out, "\ngeneration %d (%dx%d)\n", sess.Generation(), sess.Rows(), sess.Cols())
	fmt.Fprint(out, sess.Snapshot().String())

	c := sess.Census()
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "\nEMPTY\tBLUE\tRED\tGREEN\tFALLING\tSETTLED")
	fmt.Fprintf(w, "%d\t%d\t%d\t%d\t%d\t%d\n", c.Empty, c.Blue, c.Red, c.Green, c.Falling, c.Settled)
	fmt.Fprintln(w, "\nMETRIC\tVALUE")
	for _, m := range ms {
		fmt.Fprintf(w, "%s\t%.3f\n", m.Name(), m.Value())
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if opts.plot {
		if chart := viz.Chart(sess.History(), 60, 10); chart != "" {
			fmt.Fprintln(out, "\n"+chart)
		}
	}

	theme := viz.GetTheme(opts.theme)
	if opts.svgGrid != "" {
		if err := os.WriteFile(opts.svgGrid, []byte(export.GridToSVG(sess.Snapshot(), theme, 20)), 0644); err != nil {
			return err
		}
		logger.Info("wrote grid svg", "path", opts.svgGrid)
	}
	if opts.svgChart != "" {
		svg := export.HistoryToSVG(sess.History(), 600, 200, string(theme.Accent))
		if svg == "" {
			return errors.New("run: not enough generations for a chart")
		}
		if err := os.WriteFile(opts.svgChart, []byte(svg), 0644); err != nil {
			return err
		}
		logger.Info("wrote chart svg", "path", opts.svgChart)
	}
	if opts.jsonReport != "" {
		report := export.NewReport(cfg, sess.Generation(), sess.Snapshot(), sess.History(), ms)
		if opts.jsonReport == "-" {
			return export.ExportJSON(out, report)
		}
		f, err := os.Create(opts.jsonReport)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := export.ExportJSON(f, report); err != nil {
			return err
		}
		logger.Info("wrote report", "path", opts.jsonReport)
	}
	return nil
}

func runSweep(cmd *cobra.Command, opts *options) error {
	if len(opts.params) == 0 {
		return errors.New("sweep: at least one --param is required")
	}
	cfg, err := resolveConfig(cmd, opts)
	if err != nil {
		return err
	}
	logger, closeLog, err := openLogger(opts, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer closeLog()

	params := make([]optim.Param, 0, len(opts.params))
	for _, s := range opts.params {
		p, err := optim.ParseParam(s)
		if err != nil {
			return err
		}
		params = append(params, p)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	start := time.Now()
	trials, err := optim.NewGridSearch(cfg, params).Search(ctx, optim.SearchConfig{
		Generations: opts.trialGenerations,
		Seeds:       opts.seeds,
		Metric:      opts.metric,
		Maximize:    opts.maximize,
		Workers:     opts.workers,
	})
	if err != nil {
		return err
	}
	logger.Info("sweep finished", "trials", len(trials), "elapsed", time.Since(start))

	if opts.top > 0 && len(trials) > opts.top {
		trials = trials[:opts.top]
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	for _, p := range params {
		fmt.Fprintf(w, "%s\t", strings.ToUpper(p.Name))
	}
	fmt.Fprintln(w, strings.ToUpper(opts.metric))
	for _, t := range trials {
		for _, p := range params {
			fmt.Fprintf(w, "%g\t", t.Params[p.Name])
		}
		fmt.Fprintf(w, "%.3f\n", t.Value)
	}
	return w.Flush()
}

func runScript(cmd *cobra.Command, opts *options, path string) error {
	scenario, err := automation.LoadScenario(path)
	if err != nil {
		return err
	}
	logger, closeLog, err := openLogger(opts, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer closeLog()

	out := cmd.OutOrStdout()
	if !opts.quiet {
		fmt.Fprintf(out, "scenario %s: %s\n", scenario.Name, scenario.Description)
	}
	results, err := automation.RunScenario(cmd.Context(), scenario, logger)
	if !opts.quiet {
		for _, r := range results {
			fmt.Fprintf(out, "%3d  %-20s gen %4d  falling %4d  settled %4d\n",
				r.Step, r.Action, r.Frame.Generation, r.Frame.Census.Falling, r.Frame.Census.Settled)
		}
		if len(results) > 0 {
			fmt.Fprint(out, "\n"+results[len(results)-1].Frame.Grid.String())
		}
	}
	if err != nil {
		return err
	}
	if !opts.quiet {
		fmt.Fprintf(out, "ok: %d steps\n", len(results))
	}
	return nil
}
