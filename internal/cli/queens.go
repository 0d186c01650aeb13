package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/aigo/internal/csp"
)

// QueensResult is the output of the queens command.
type QueensResult struct {
	N         int   `json:"n"`
	Solved    bool  `json:"solved"`
	Columns   []int `json:"columns,omitempty"` // column of the queen in each row
	Splits    int   `json:"splits"`
	Revisions int   `json:"revisions"`
}

// NewQueensCommand creates the queens command.
func NewQueensCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "queens <n>",
		Short: "Place n queens by arc consistency and domain splitting",
		Long: `Solve the n-queens problem as a constraint satisfaction problem.

Domains are pruned to generalized arc consistency, then split in half
until every row has one column left.

Exit codes:
  0 - Solution found
  1 - No solution exists (n = 2 or 3)
  2 - Command error (n is not a positive integer)`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQueens(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runQueens(opts *RootOptions, arg string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	n, err := strconv.Atoi(arg)
	if err != nil {
		return WrapExitError(ExitCommandError, fmt.Sprintf("invalid n %q", arg), err)
	}
	problem, err := csp.NQueens(n)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid n", err)
	}

	solver := csp.NewSolver(problem, opts.Logger(cmd.ErrOrStderr()))
	sol, ok := solver.Solve()

	result := QueensResult{N: n, Solved: ok, Splits: solver.Stats.Splits, Revisions: solver.Stats.Revisions}
	if ok {
		result.Columns = make([]int, n)
		for i := range n {
			result.Columns[i] = sol[csp.QueenVar(i)]
		}
	}

	if opts.Format == "json" {
		if !ok {
			if err := formatter.JSON(CLIResponse{
				Status: "error",
				Data:   result,
				Error:  &CLIError{Code: "E_NO_SOLUTION", Message: fmt.Sprintf("no solution for %d queens", n)},
			}); err != nil {
				return err
			}
			return NewExitError(ExitFailure, "no solution")
		}
		return formatter.Success(result)
	}
	return outputQueensText(formatter, result)
}

func outputQueensText(formatter *OutputFormatter, result QueensResult) error {
	w := formatter.Writer
	if !result.Solved {
		fmt.Fprintln(w, formatter.Fail(fmt.Sprintf("No solution for %d queens", result.N)))
		return NewExitError(ExitFailure, "no solution")
	}

	fmt.Fprintln(w, formatter.OK(fmt.Sprintf("%d queens placed", result.N)))
	for _, col := range result.Columns {
		row := make([]string, result.N)
		for c := range row {
			row[c] = "."
		}
		row[col] = "Q"
		fmt.Fprintf(w, "  %s\n", strings.Join(row, " "))
	}
	fmt.Fprintln(w, formatter.Dim(fmt.Sprintf("%d split(s), %d arc revision(s)", result.Splits, result.Revisions)))
	return nil
}
