package cli

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/epinet/internal/store"
)

// ExportOptions holds flags for the export command.
type ExportOptions struct {
	*RootOptions
	Database string
	Output   string
	List     bool
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "export [run-id]",
		Short: "Export a stored prevalence table",
		Long: `Export a run's prevalence table from the database.

Without a run id, the most recent run is exported. Text format writes
CSV; json writes the table as a JSON document. Use --list to enumerate
stored runs instead.

Example:
  epinet export --db ./epinet.db
  epinet export --db ./epinet.db 0191f0ab-... --out prevalence.csv
  epinet export --db ./epinet.db --list`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			runID := ""
			if len(args) == 1 {
				runID = args[0]
			}
			return runExport(opts, runID, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	cmd.Flags().StringVar(&opts.Output, "out", "", "write to this path instead of stdout")
	cmd.Flags().BoolVar(&opts.List, "list", false, "list stored runs instead of exporting")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runExport(opts *ExportOptions, runID string, cmd *cobra.Command) error {
	if _, err := os.Stat(opts.Database); err != nil {
		return WrapExitError(ExitCommandError, "database not found", err)
	}
	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	ctx := cmd.Context()

	if opts.List {
		runs, err := st.ListRuns(ctx)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to list runs", err)
		}
		formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
		if opts.Format == "json" {
			return formatter.Success(runs)
		}
		for _, r := range runs {
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  modes=%d steps=%d seed=%d\n",
				r.ID, r.Disease, r.Modes, r.Steps, r.Seed)
		}
		return nil
	}

	if runID == "" {
		runs, err := st.ListRuns(ctx)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to list runs", err)
		}
		if len(runs) == 0 {
			return NewExitError(ExitCommandError, "database contains no runs")
		}
		// UUIDv7 ids sort by creation time, so the last is the newest.
		runID = runs[len(runs)-1].ID
	} else if _, err := st.ReadRun(ctx, runID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return NewExitError(ExitCommandError, fmt.Sprintf("run %s not found", runID))
		}
		return WrapExitError(ExitCommandError, "failed to read run", err)
	}

	table, err := st.ReadTable(ctx, runID)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read prevalence table", err)
	}

	var w io.Writer = cmd.OutOrStdout()
	if opts.Output != "" {
		f, err := os.Create(opts.Output)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to create output file", err)
		}
		defer f.Close()
		w = f
	}

	if opts.Format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(table)
	}
	return table.WriteCSV(w)
}
