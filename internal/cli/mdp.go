package cli

import (
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/aigo/internal/mdp"
)

// MDPOptions holds flags for the mdp command.
type MDPOptions struct {
	*RootOptions
	Iterations int
	Discount   float64
	Width      int
	Height     int
	Async      bool
	Seed       uint64
}

// StateValue is one state's value and greedy action.
type StateValue struct {
	State  string             `json:"state"`
	Value  float64            `json:"value"`
	Action string             `json:"action"`
	Q      map[string]float64 `json:"q"`
}

// MDPResult is the output of the mdp command.
type MDPResult struct {
	Name       string       `json:"name"`
	Method     string       `json:"method"`
	Iterations int          `json:"iterations"`
	Discount   float64      `json:"discount"`
	States     []StateValue `json:"states"`
}

var mdpNames = []string{"party", "tiny", "grid"}

// NewMDPCommand creates the mdp command.
func NewMDPCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &MDPOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "mdp <party|tiny|grid>",
		Short: "Solve an example MDP by value iteration",
		Long: `Solve an example Markov decision process by value iteration and print
each state's value and greedy action.

With --async, Q values are updated one random (state, action) pair at a
time; --seed makes the run reproducible.

Examples:
  aigo mdp party --iterations 100
  aigo mdp grid --width 10 --height 10 --iterations 50
  aigo mdp tiny --async --iterations 10000 --seed 7`,
		Args:          cobra.ExactArgs(1),
		ValidArgs:     mdpNames,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMDP(opts, args[0], cmd)
		},
	}

	cmd.Flags().IntVar(&opts.Iterations, "iterations", 100, "sweeps (or single updates with --async)")
	cmd.Flags().Float64Var(&opts.Discount, "discount", 0.9, "discount factor in [0, 1]")
	cmd.Flags().IntVar(&opts.Width, "width", 10, "grid width")
	cmd.Flags().IntVar(&opts.Height, "height", 10, "grid height")
	cmd.Flags().BoolVar(&opts.Async, "async", false, "asynchronous value iteration")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", 1, "random seed for --async")

	return cmd
}

func runMDP(opts *MDPOptions, name string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	var (
		result MDPResult
		err    error
	)
	switch name {
	case "party":
		result, err = solveMDP[string](mdp.NewParty(opts.Discount), opts)
	case "tiny":
		result, err = solveMDP[mdp.Cell](mdp.NewTiny(opts.Discount), opts)
	case "grid":
		g, gerr := mdp.NewGrid(opts.Discount, opts.Width, opts.Height)
		if gerr != nil {
			return WrapExitError(ExitCommandError, "invalid grid", gerr)
		}
		result, err = solveMDP[mdp.Cell](g, opts)
	default:
		return NewExitError(ExitCommandError, fmt.Sprintf("unknown MDP %q: must be one of %v", name, mdpNames))
	}
	if err != nil {
		_ = formatter.Error("E_MDP", err.Error(), nil)
		return WrapExitError(ExitCommandError, "value iteration failed", err)
	}
	result.Name = name

	if opts.Format == "json" {
		return formatter.Success(result)
	}
	return outputMDPText(formatter, result)
}

func solveMDP[S comparable](m mdp.MDP[S], opts *MDPOptions) (MDPResult, error) {
	if err := mdp.Validate(m); err != nil {
		return MDPResult{}, err
	}
	result := MDPResult{Iterations: opts.Iterations, Discount: m.Discount()}

	var q mdp.QValues[S]
	if opts.Async {
		result.Method = "async"
		var err error
		q, err = mdp.AsyncValueIteration(m, opts.Iterations, rand.New(rand.NewPCG(opts.Seed, opts.Seed)))
		if err != nil {
			return MDPResult{}, err
		}
	} else {
		result.Method = "sync"
		var err error
		q, _, _, err = mdp.ValueIteration(m, opts.Iterations, nil)
		if err != nil {
			return MDPResult{}, err
		}
	}

	v := q.Values()
	pi := mdp.Greedy(m, q)
	for _, s := range m.States() {
		result.States = append(result.States, StateValue{
			State:  fmt.Sprint(s),
			Value:  v[s],
			Action: pi[s],
			Q:      q[s],
		})
	}
	return result, nil
}

func outputMDPText(formatter *OutputFormatter, result MDPResult) error {
	w := formatter.Writer
	fmt.Fprintf(w, "%s: %s value iteration, %d iteration(s), discount %g\n",
		result.Name, result.Method, result.Iterations, result.Discount)
	fmt.Fprintln(w)

	width := 0
	for _, sv := range result.States {
		width = max(width, len(sv.State))
	}
	for _, sv := range result.States {
		actions := make([]string, 0, len(sv.Q))
		for a := range sv.Q {
			actions = append(actions, a)
		}
		slices.Sort(actions)
		fmt.Fprintf(w, "  %-*s  V=%10.4f  %-6s\n", width, sv.State, sv.Value, sv.Action)
		if formatter.Verbose {
			for _, a := range actions {
				fmt.Fprintf(w, "  %*s    %s\n", width, "", formatter.Dim(fmt.Sprintf("Q(%s)=%.4f", a, sv.Q[a])))
			}
		}
	}
	return nil
}
