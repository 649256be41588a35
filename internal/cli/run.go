package cli

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/epinet/internal/config"
	"github.com/roach88/epinet/internal/sim"
	"github.com/roach88/epinet/internal/store"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Database string
	CSV      string

	// IDGenerator allows overriding the run id generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	IDGenerator sim.RunIDGenerator
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <config.cue>",
		Short: "Run a simulation from a CUE definition",
		Long: `Run a simulation from a CUE definition.

The engine compiles the definition, builds the initial population, and
advances the bookkeeping step by step: attribute synchronization,
demographic turnover, coefficient recalibration, and stratified
prevalence output. Edge dynamics come from an external network model;
without one the contact graph is held static and only the bookkeeping
around it runs.

Prevalence output is appended to the SQLite database given by --db, and
optionally written as CSV.

Example:
  epinet run --db ./epinet.db ./sim.cue
  epinet run --db /tmp/test.db ./sim.cue --csv out.csv --verbose`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulation(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	cmd.Flags().StringVar(&opts.CSV, "csv", "", "also write the prevalence table as CSV to this path")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runSimulation(opts *RunOptions, configPath string, cmd *cobra.Command) error {
	logLevel := slog.LevelInfo
	if opts.Verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	slog.Info("compiling configuration", "path", configPath)
	cfg, err := config.Compile(configPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to compile configuration", err)
	}

	slog.Info("opening database", "path", opts.Database)
	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	simOpts := []sim.Option{sim.WithLogger(logger)}
	if opts.IDGenerator != nil {
		simOpts = append(simOpts, sim.WithRunID(opts.IDGenerator))
	}
	s, err := sim.New(cfg, sim.StaticEvolver{}, simOpts...)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to initialize simulation", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := st.WriteRun(ctx, store.Run{
		ID:      s.RunID(),
		Disease: cfg.Disease.String(),
		Modes:   cfg.Modes,
		Steps:   cfg.Steps,
		Seed:    cfg.Seed,
	}); err != nil {
		return WrapExitError(ExitCommandError, "failed to record run", err)
	}

	table, err := s.Run(ctx)
	if err != nil {
		return WrapExitError(ExitFailure, "simulation failed", err)
	}

	if err := st.WriteTable(ctx, s.RunID(), table); err != nil {
		return WrapExitError(ExitCommandError, "failed to persist prevalence output", err)
	}

	if opts.CSV != "" {
		f, err := os.Create(opts.CSV)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to create CSV file", err)
		}
		defer f.Close()
		if err := table.WriteCSV(f); err != nil {
			return WrapExitError(ExitCommandError, "failed to write CSV", err)
		}
	}

	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
	return formatter.Success(runSummary{
		RunID: s.RunID(),
		Steps: len(table.Rows),
	})
}

type runSummary struct {
	RunID string `json:"run_id"`
	Steps int    `json:"steps"`
}

func (s runSummary) String() string {
	return fmt.Sprintf("run %s completed: %d steps recorded", s.RunID, s.Steps)
}
