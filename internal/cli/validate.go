package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/epinet/internal/config"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}

func (r ValidationResult) String() string {
	if r.Valid {
		return "configuration is valid"
	}
	out := "configuration is invalid:"
	for _, e := range r.Errors {
		out += "\n  " + e
	}
	return out
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <config.cue>",
		Short: "Validate a simulation definition without running it",
		Long: `Validate a CUE simulation definition without running it.

Compiles the definition and runs all cross-field consistency checks:
disease/structure compatibility, coefficient/term parity, rate bounds,
attribute references. No population is built and no database is touched.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, configPath string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	cfg, err := config.Compile(configPath)
	if err != nil {
		result := ValidationResult{Valid: false, Errors: []string{err.Error()}}
		var ce *config.CompileError
		if errors.As(err, &ce) {
			result.Errors = []string{fmt.Sprintf("%s: %s", ce.Field, ce.Message)}
		}
		if outErr := formatter.Success(result); outErr != nil {
			return outErr
		}
		return NewExitError(ExitFailure, "validation failed")
	}

	formatter.VerboseLog("compiled %s: %s over %d steps, population %d",
		configPath, cfg.Disease, cfg.Steps, cfg.Population.N+cfg.Population.M2)
	return formatter.Success(ValidationResult{Valid: true})
}
