package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/epinet/internal/calibrate"
	"github.com/roach88/epinet/internal/formula"
)

// CoefsOptions holds flags for the coefs command.
type CoefsOptions struct {
	*RootOptions
	Formula  string
	Duration float64
	ExitRate float64
}

// NewCoefsCommand creates the coefs command, a standalone dissolution
// coefficient calculator.
func NewCoefsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CoefsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "coefs",
		Short: "Compute dissolution coefficients for a target edge duration",
		Long: `Compute dissolution model coefficients for a target mean edge duration.

The crude coefficient is ln(duration - 1). With a nonzero exit rate the
coefficient is additionally adjusted for the competing risk of exit, so
partnerships dissolved by mortality do not count toward the target
duration.

Example:
  epinet coefs --duration 60
  epinet coefs --duration 60 --exit-rate 0.001 --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCoefs(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Formula, "formula", "~offset(edges)", "dissolution formula (edges-only)")
	cmd.Flags().Float64Var(&opts.Duration, "duration", 0, "target mean edge duration in steps (required)")
	cmd.Flags().Float64Var(&opts.ExitRate, "exit-rate", 0, "per-step node exit probability")
	_ = cmd.MarkFlagRequired("duration")

	return cmd
}

func runCoefs(opts *CoefsOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	f, err := formula.Parse(opts.Formula)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to parse formula", err)
	}

	d, err := calibrate.DissolutionCoefs(f, opts.Duration, opts.ExitRate)
	if err != nil {
		if calibrate.IsInfeasibleAdjustment(err) {
			if outErr := formatter.Error(ErrCodeCalibration, err.Error(), nil); outErr != nil {
				return outErr
			}
			return NewExitError(ExitFailure, "calibration infeasible")
		}
		return WrapExitError(ExitCommandError, "failed to compute coefficients", err)
	}

	return formatter.Success(coefsSummary{
		Formula:  f.String(),
		Duration: d.Duration,
		ExitRate: d.ExitRate,
		Crude:    d.Crude,
		Adjusted: d.Adjusted,
	})
}

type coefsSummary struct {
	Formula  string  `json:"formula"`
	Duration float64 `json:"duration"`
	ExitRate float64 `json:"exit_rate"`
	Crude    float64 `json:"crude"`
	Adjusted float64 `json:"adjusted"`
}

func (s coefsSummary) String() string {
	return fmt.Sprintf("formula:  %s\nduration: %g\nexit rate: %g\ncrude:    %.6f\nadjusted: %.6f",
		s.Formula, s.Duration, s.ExitRate, s.Crude, s.Adjusted)
}
