package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/dalzilio/rudd"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/pdrpinto/symsearch"
	"github.com/pdrpinto/symsearch/bdd"
	"github.com/pdrpinto/symsearch/explicit"
	"github.com/pdrpinto/symsearch/internal/telemetry"
	"github.com/pdrpinto/symsearch/task"
)

// Set via ldflags at build time
var (
	version = "dev"
	commit  = "none"
)

// Exit statuses.
const (
	exitOK           = 0
	exitUsage        = 1
	exitNoSolution   = 2
	exitInconsistent = 3
)

type globalFlags struct {
	configPath string
	backend    string
	logLevel   string
	logFormat  string
	metrics    bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(exitCode(err))
	}
	os.Exit(exitOK)
}

func newRootCmd() *cobra.Command {
	var flags globalFlags

	rootCmd := &cobra.Command{
		Use:           "symsearch",
		Short:         "Bidirectional symbolic search for finite-domain planning tasks",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.Version = version
	if commit != "none" {
		rootCmd.Version = fmt.Sprintf("%s (%s)", version, commit)
	}
	rootCmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "YAML config file")
	rootCmd.PersistentFlags().StringVar(&flags.backend, "backend", "", "State-set backend: explicit or bdd")
	rootCmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&flags.logFormat, "log-format", "", "Log format: text or json")
	rootCmd.PersistentFlags().BoolVar(&flags.metrics, "metrics", false, "Print search metrics to stderr")

	rootCmd.AddCommand(planCmd(&flags))
	rootCmd.AddCommand(opsCmd(&flags))
	rootCmd.AddCommand(heuristicCmd(&flags))
	rootCmd.AddCommand(validateCmd())
	return rootCmd
}

func exitCode(err error) int {
	switch {
	case symsearch.IsFatal(err):
		return exitInconsistent
	case errors.Is(err, symsearch.ErrNoSolution):
		return exitNoSolution
	default:
		return exitUsage
	}
}

func (f *globalFlags) config() (Config, error) {
	c, err := loadConfig(f.configPath)
	if err != nil {
		return c, err
	}
	if f.backend != "" {
		c.Backend = f.backend
	}
	if f.logLevel != "" {
		c.Log.Level = f.logLevel
	}
	if f.logFormat != "" {
		c.Log.Format = f.logFormat
	}
	return c, c.validate()
}

// mode selects what a command reports after the search.
type mode int

const (
	modePlan mode = iota
	modeOperators
	modeHeuristic
)

func planCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "plan TASK",
		Short: "Find a cheapest plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return execute(cmd, flags, args[0], modePlan)
		},
	}
}

func opsCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "ops TASK",
		Short: "List the actions used by some cheapest plan through the meeting point",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return execute(cmd, flags, args[0], modeOperators)
		},
	}
}

func heuristicCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "heuristic TASK",
		Short: "Build heuristics from both closed lists and evaluate the initial state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return execute(cmd, flags, args[0], modeHeuristic)
		},
	}
}

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate TASK",
		Short: "Load and validate a task file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := task.Load(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d variables, %d actions, %d goal facts\n",
				t.Name, len(t.Variables), len(t.Operators), len(t.Goal))
			return nil
		},
	}
}

func execute(cmd *cobra.Command, flags *globalFlags, path string, m mode) error {
	cfg, err := flags.config()
	if err != nil {
		return err
	}
	logger, err := cfg.logger()
	if err != nil {
		return err
	}
	t, err := task.Load(path)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	collector, err := telemetry.NewCollector(reg)
	if err != nil {
		return err
	}
	opts := []symsearch.Option{
		symsearch.WithLogger(logger),
		symsearch.WithMetrics(collector),
		symsearch.WithMergeLimits(cfg.Merge.MaxSets, cfg.Merge.MaxNodes),
	}

	out := cmd.OutOrStdout()
	switch cfg.Backend {
	case "explicit":
		model, err := explicit.New(t)
		if err != nil {
			return err
		}
		err = run[*roaring.Bitmap](cmd.Context(), out, t, model, m, opts)
		if err != nil {
			return err
		}
	default:
		model, err := bdd.New(t, bdd.WithNodeSize(cfg.BDD.NodeSize), bdd.WithCacheSize(cfg.BDD.CacheSize))
		if err != nil {
			return err
		}
		err = run[rudd.Node](cmd.Context(), out, t, model, m, opts)
		if err != nil {
			return err
		}
	}

	if flags.metrics {
		return telemetry.Write(cmd.ErrOrStderr(), reg)
	}
	return nil
}

func run[S any](ctx context.Context, out io.Writer, t *task.Task, problem symsearch.Problem[S], m mode, opts []symsearch.Option) error {
	result, err := symsearch.Search(ctx, problem, opts...)
	if err != nil {
		return err
	}

	switch m {
	case modePlan:
		for _, a := range result.Plan {
			fmt.Fprintf(out, "%s (%d)\n", a.Name(), a.Cost())
		}
		fmt.Fprintf(out, "; cost = %d, length = %d, expansions = %d\n", result.Cost, len(result.Plan), result.Expansions)

	case modeOperators:
		ops := make(symsearch.ActionSet)
		if err := result.Solution.OptimalOperators(ops); err != nil {
			return err
		}
		for _, a := range ops.Sorted() {
			fmt.Fprintln(out, a.Name())
		}
		fmt.Fprintf(out, "; %d of %d actions, cost = %d\n", len(ops), len(t.Operators), result.Cost)

	case modeHeuristic:
		initial := problem.Initial()
		for _, closed := range []*symsearch.ClosedList[S]{result.Forward, result.Backward} {
			var series symsearch.HeuristicSeries[S]
			stats := closed.Stats()
			fmt.Fprintf(out, "%s: buckets=%d max=%d not_closed=%d states=%g avg_h=%.2f\n",
				closed.Direction(), stats.Buckets, stats.MaxCost, stats.NotClosed, stats.States, closed.AverageHValue())
			if !series.Collect(closed) {
				fmt.Fprintf(out, "%s: no heuristic\n", closed.Direction())
				continue
			}
			if h, ok := series.Estimate(initial); ok {
				fmt.Fprintf(out, "%s: h(initial) = %d\n", closed.Direction(), h)
			} else {
				fmt.Fprintf(out, "%s: h(initial) unknown\n", closed.Direction())
			}
		}
		vf, err := result.Solution.ValueFunction()
		if err != nil {
			return err
		}
		if h, ok := vf.Estimate(initial); ok {
			fmt.Fprintf(out, "plan: h(initial) = %d over %d states\n", h, len(vf.Terms()))
		}
	}
	return nil
}
