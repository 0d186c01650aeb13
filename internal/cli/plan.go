package cli

import (
	"errors"
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/aigo/internal/search"
	"github.com/roach88/aigo/internal/strips"
)

// PlanOptions holds flags for the plan command.
type PlanOptions struct {
	*RootOptions
	Regression    bool
	Bound         float64
	MaxExpansions int
}

// PlanResult is the output of the plan command.
type PlanResult struct {
	Problem  string   `json:"problem"`
	Planner  string   `json:"planner"`
	Search   string   `json:"search"`
	Found    bool     `json:"found"`
	Steps    []string `json:"steps"`
	Cost     float64  `json:"cost"`
	Expanded int      `json:"expanded"`
}

// NewPlanCommand creates the plan command.
func NewPlanCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PlanOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "plan <problem>",
		Short: "Solve an example STRIPS planning problem",
		Long: fmt.Sprintf(`Solve an example STRIPS planning problem by search.

The forward planner searches states from the initial state; --regression
searches subgoals back from the goal. A* is used unless --bound is given,
in which case depth-first branch and bound looks for plans cheaper than
the bound.

Problems: %v

Exit codes:
  0 - Plan found
  1 - No plan exists (within the bound)
  2 - Command error (unknown problem, expansion limit exceeded)

Examples:
  aigo plan delivery1
  aigo plan blocks2 --regression
  aigo plan delivery2 --bound 10`, problemNames()),
		Args:          cobra.ExactArgs(1),
		ValidArgs:     problemNames(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlan(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Regression, "regression", false, "regression planning instead of forward")
	cmd.Flags().Float64Var(&opts.Bound, "bound", 0, "use branch and bound with this initial cost bound")
	cmd.Flags().IntVar(&opts.MaxExpansions, "max-expansions", 100000, "stop after this many expansions (0 = unlimited)")

	return cmd
}

func problemNames() []string {
	names := make([]string, 0)
	for name := range strips.Problems() {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func runPlan(opts *PlanOptions, name string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	factory, ok := strips.Problems()[name]
	if !ok {
		return NewExitError(ExitCommandError, fmt.Sprintf("unknown problem %q: must be one of %v", name, problemNames()))
	}
	if opts.MaxExpansions < 0 {
		return NewExitError(ExitCommandError, fmt.Sprintf("--max-expansions must be non-negative, got %d", opts.MaxExpansions))
	}
	problem := factory()

	searchOpts := []search.Option{
		search.WithMaxExpansions(opts.MaxExpansions),
		search.WithLogger(opts.Logger(cmd.ErrOrStderr())),
	}

	result := PlanResult{Problem: name, Planner: "forward", Search: "astar"}
	if opts.Bound > 0 {
		result.Search = "branch-and-bound"
	}

	var (
		res  search.Result[strips.Assignment]
		plan func(*search.Path[strips.Assignment]) []string
		err  error
	)
	if opts.Regression {
		result.Planner = "regression"
		rp := strips.Regression(problem, nil)
		res, err = runSearch(rp, opts.Bound, searchOpts)
		plan = rp.Plan
	} else {
		fp := strips.Forward(problem, nil)
		res, err = runSearch(fp, opts.Bound, searchOpts)
		plan = fp.Plan
	}
	if err != nil {
		code := "E_SEARCH"
		if errors.Is(err, search.ErrLimitExceeded) {
			code = "E_LIMIT"
		}
		_ = formatter.Error(code, err.Error(), nil)
		return WrapExitError(ExitCommandError, "search failed", err)
	}

	result.Expanded = res.Expanded
	result.Steps = []string{}
	if res.Found() {
		result.Found = true
		result.Steps = plan(res.Path)
		result.Cost = res.Path.Cost()
	}

	if opts.Format == "json" {
		if !result.Found {
			if err := formatter.JSON(CLIResponse{
				Status: "error",
				Data:   result,
				Error:  &CLIError{Code: "E_NO_PLAN", Message: "no plan found"},
			}); err != nil {
				return err
			}
			return NewExitError(ExitFailure, "no plan found")
		}
		return formatter.Success(result)
	}
	return outputPlanText(formatter, result)
}

func runSearch(p search.Problem[strips.Assignment], bound float64, opts []search.Option) (search.Result[strips.Assignment], error) {
	if bound > 0 {
		return search.BranchAndBound(p, bound, opts...)
	}
	return search.AStar(p, opts...)
}

func outputPlanText(formatter *OutputFormatter, result PlanResult) error {
	w := formatter.Writer
	header := fmt.Sprintf("%s (%s, %s)", result.Problem, result.Planner, result.Search)
	if !result.Found {
		fmt.Fprintln(w, formatter.Fail(header+": no plan found"))
		fmt.Fprintln(w, formatter.Dim(fmt.Sprintf("%d node(s) expanded", result.Expanded)))
		return NewExitError(ExitFailure, "no plan found")
	}

	fmt.Fprintln(w, formatter.OK(fmt.Sprintf("%s: %d step(s), cost %g", header, len(result.Steps), result.Cost)))
	for i, step := range result.Steps {
		fmt.Fprintf(w, "  %d. %s\n", i+1, step)
	}
	fmt.Fprintln(w, formatter.Dim(fmt.Sprintf("%d node(s) expanded", result.Expanded)))
	return nil
}
