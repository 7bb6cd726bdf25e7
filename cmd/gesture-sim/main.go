// gesture-sim replays synthetic motion scenarios against a running
// tactile service and checks how many gestures fired.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okian/tactile/internal/simulate"
	"github.com/okian/tactile/pkg/logger"
	"github.com/spf13/cobra"
)

const defaultRunTimeout = 5 * time.Minute

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "gesture-sim",
		Short: "Synthetic motion generator for the tactile service",
		Long: `gesture-sim renders named motion scenarios (shake, twist, tap, flip,
idle, or your own YAML) into samples, posts them to a running tactile
service and compares the fired counter with the scenario's expectation.`,
		SilenceUsage: true,
	}
	root.AddCommand(newRunCmd(), newListCmd())
	return root
}

type runFlags struct {
	url      string
	scenario string
	file     string
	rate     int
	batch    int
	seed     uint64
	timeout  time.Duration
	realtime bool
	verbose  bool
}

func newRunCmd() *cobra.Command {
	var f runFlags
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Replay a scenario against the service",
		Example: `  gesture-sim run --scenario shake
  gesture-sim run --file ./wave.yaml --rate 100 --realtime`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), cmd, &f)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.url, "url", simulate.DefaultBaseURL, "base URL of the service")
	flags.StringVar(&f.scenario, "scenario", "shake", "built-in scenario name")
	flags.StringVar(&f.file, "file", "", "YAML scenario file; overrides --scenario")
	flags.IntVar(&f.rate, "rate", 0, "tick rate in Hz (default: the scenario's)")
	flags.IntVar(&f.batch, "batch", 1, "samples per request")
	flags.Uint64Var(&f.seed, "seed", 0, "jitter seed (default: derived from the run ID)")
	flags.DurationVar(&f.timeout, "timeout", simulate.DefaultTimeout, "HTTP request timeout")
	flags.BoolVar(&f.realtime, "realtime", false, "pace requests at the tick rate")
	flags.BoolVar(&f.verbose, "verbose", false, "log at debug level")
	return cmd
}

func run(ctx context.Context, cmd *cobra.Command, f *runFlags) error {
	if err := logger.Init(logger.WithWriter(cmd.ErrOrStderr())); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	if f.verbose {
		_ = logger.SetLevelString("debug")
	}

	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	ctx, cancelRun := context.WithTimeout(ctx, defaultRunTimeout)
	defer cancelRun()

	reg, err := simulate.NewRegistry()
	if err != nil {
		return err
	}

	var s *simulate.Scenario
	if f.file != "" {
		s, err = reg.LoadFile(f.file)
	} else {
		s, err = reg.Get(f.scenario)
	}
	if err != nil {
		return err
	}

	report, err := simulate.Run(ctx, &simulate.Config{
		BaseURL:  f.url,
		Scenario: s,
		RateHz:   f.rate,
		Batch:    f.batch,
		Timeout:  f.timeout,
		Seed:     f.seed,
		Realtime: f.realtime,
	})
	if report != nil {
		printReport(cmd, report)
	}
	return err
}

func printReport(cmd *cobra.Command, r *simulate.Report) {
	verdict := "PASS"
	if !r.Passed() {
		verdict = "FAIL"
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "run       %s\n", r.RunID)
	fmt.Fprintf(out, "scenario  %s\n", r.Scenario)
	fmt.Fprintf(out, "samples   %d (accepted %d, rejected %d)\n", r.Samples, r.Accepted, r.Rejected)
	fmt.Fprintf(out, "fired     %d (expected >= %d)\n", r.Fired, r.Expected)
	fmt.Fprintf(out, "duration  %s\n", r.Duration.Round(time.Millisecond))
	fmt.Fprintf(out, "result    %s\n", verdict)
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List built-in scenarios",
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, err := simulate.NewRegistry()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, s := range reg.List() {
				fmt.Fprintf(out, "  %-8s %-6s expect %d  %s\n", s.Name, s.Duration(), s.Expect, s.Description)
			}
			return nil
		},
	}
}
