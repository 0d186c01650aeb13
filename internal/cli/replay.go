package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/aigo/internal/rc"
	"github.com/roach88/aigo/internal/session"
	"github.com/roach88/aigo/internal/store"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database  string
	RunID     string // optional - specific run only
	Tolerance float64
	Parallel  int
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Re-answer logged queries and verify determinism",
		Long: `Re-answer every logged query against the stored canonical model and
compare each posterior and error code with the log.

Nothing is written to the database. A negative --tolerance requires
bit-for-bit equal posteriors.

Exit codes:
  0 - Every query reproduced
  1 - Determinism verification failed (differences detected)
  2 - Command error (database not found, etc.)

Examples:
  aigo replay --db ./aigo.db
  aigo replay --db ./aigo.db --run 0190a5b2-...
  aigo replay --db ./aigo.db --tolerance -1 --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", rootOpts.Defaults().DB, "path to SQLite database (required unless AIGO_DB is set)")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "replay a specific run only")
	cmd.Flags().Float64Var(&opts.Tolerance, "tolerance", 1e-9, "allowed absolute difference per probability (negative = exact)")
	cmd.Flags().IntVar(&opts.Parallel, "parallel", rootOpts.Defaults().Parallel, "concurrent component sums (0 = sequential)")

	return cmd
}

func runReplay(opts *ReplayOptions, cmd *cobra.Command) error {
	ctx := context.Background()
	formatter := newFormatter(opts.RootOptions, cmd)

	st, err := openExistingStore(opts.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	var engineOpts []rc.Option
	if opts.Parallel > 0 {
		engineOpts = append(engineOpts, rc.WithParallel(opts.Parallel))
	}

	report, err := session.Replay(ctx, st, store.QueryFilter{RunID: opts.RunID}, opts.Tolerance, engineOpts...)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to replay query log", err)
	}

	if opts.Format == "json" {
		return outputReplayJSON(formatter, report)
	}
	return outputReplayText(formatter, report)
}

// outputReplayJSON outputs the replay result as JSON.
func outputReplayJSON(formatter *OutputFormatter, report session.ReplayReport) error {
	response := CLIResponse{Status: "ok", Data: report}
	if !report.Deterministic {
		response.Status = "error"
		response.Error = &CLIError{
			Code:    "E_DETERMINISM",
			Message: "determinism verification failed",
		}
	}

	if err := formatter.JSON(response); err != nil {
		return err
	}

	if !report.Deterministic {
		// Determinism failure = exit code 1
		return NewExitError(ExitFailure, "determinism verification failed")
	}
	return nil
}

// outputReplayText outputs the replay result as text.
func outputReplayText(formatter *OutputFormatter, report session.ReplayReport) error {
	w := formatter.Writer

	if report.Queries == 0 {
		fmt.Fprintln(w, "No queries found in database.")
		return nil
	}

	fmt.Fprintf(w, "Replay Summary: %d query(ies) against %d model(s)\n", report.Queries, report.Models)
	fmt.Fprintln(w)

	for _, m := range report.Mismatches {
		fmt.Fprintln(w, formatter.Fail(fmt.Sprintf("[%d] %s: %s", m.Seq, m.Variable, m.Reason)))
		if formatter.Verbose {
			fmt.Fprintf(w, "  %s\n", formatter.Dim(m.QueryID))
		}
	}

	if report.Deterministic {
		fmt.Fprintln(w, formatter.OK("All queries verified deterministic"))
		return nil
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, formatter.Fail("Determinism verification failed"))
	// Determinism failure = exit code 1
	return NewExitError(ExitFailure, "determinism verification failed")
}
