package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/aigo/internal/rc"
	"github.com/roach88/aigo/internal/session"
	"github.com/roach88/aigo/internal/store"
)

// QueryOptions holds flags for the query command.
type QueryOptions struct {
	*RootOptions
	Variable string
	Evidence []string
	Order    []string
	Network  string
	Database string
	RunID    string
	Parallel int

	// RunGenerator allows overriding the run ID generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	RunGenerator store.RunIDGenerator
}

// Outcome is one domain value's posterior probability.
type Outcome struct {
	Value string  `json:"value"`
	Prob  float64 `json:"prob"`
}

// QueryResult is the output of the query command.
type QueryResult struct {
	Model     string            `json:"model"`
	Hash      string            `json:"hash"`
	RunID     string            `json:"run_id"`
	ID        string            `json:"id"`
	Seq       int64             `json:"seq"`
	Variable  string            `json:"variable"`
	Evidence  map[string]string `json:"evidence,omitempty"`
	Posterior []Outcome         `json:"posterior"`
	CacheHits int64             `json:"cache_hits"`
	CacheSize int               `json:"cache_size"`
	Logged    bool              `json:"logged"`
}

// NewQueryCommand creates the query command.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "query <model.cue|dir|example>",
		Short: "Compute a posterior by recursive conditioning",
		Long: `Compute P(variable | evidence) exactly by recursive conditioning.

The model is a CUE file or directory defining networks under "network",
or the name of a built-in example (chain, fire_alarm, sprinkler).
With --db every query is logged to SQLite for history and replay.

Exit codes:
  0 - Posterior computed
  1 - Query failed (unknown variable, invalid evidence, zero probability)
  2 - Command error (model not found, compile error, database error)

Examples:
  aigo query fire_alarm --var Fire --evidence Report=true
  aigo query ./networks --network chain --var C --evidence A=true
  aigo query ./chain.cue --var A --evidence C=true --order C,B,A --db ./aigo.db`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Variable, "var", "", "query variable (required)")
	_ = cmd.MarkFlagRequired("var")
	cmd.Flags().StringArrayVarP(&opts.Evidence, "evidence", "e", nil, "observation Name=value (repeatable)")
	cmd.Flags().StringSliceVar(&opts.Order, "order", nil, "elimination order, comma separated")
	cmd.Flags().StringVar(&opts.Network, "network", "", "network to query when the CUE defines several")
	cmd.Flags().StringVar(&opts.Database, "db", rootOpts.Defaults().DB, "log the query to this SQLite database")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "run ID for logged queries (default: new UUIDv7)")
	cmd.Flags().IntVar(&opts.Parallel, "parallel", rootOpts.Defaults().Parallel, "concurrent component sums (0 = sequential)")

	return cmd
}

func runQuery(opts *QueryOptions, modelPath string, cmd *cobra.Command) error {
	ctx := context.Background()
	formatter := newFormatter(opts.RootOptions, cmd)

	if opts.Parallel < 0 {
		return NewExitError(ExitCommandError, fmt.Sprintf("--parallel must be non-negative, got %d", opts.Parallel))
	}
	evidence, err := parseEvidence(opts.Evidence)
	if err != nil {
		_ = formatter.Error(string(rc.ErrCodeInvalidEvidence), err.Error(), nil)
		return WrapExitError(ExitCommandError, "invalid evidence", err)
	}

	m, err := loadModel(modelPath, opts.Network)
	if err != nil {
		code, msg := loadErrorCode(err)
		_ = formatter.Error(code, msg, nil)
		return WrapExitError(ExitCommandError, "failed to load model", err)
	}
	formatter.VerboseLog("Loaded network %s from %s", m.Name(), modelPath)

	gen := opts.RunGenerator
	if gen == nil {
		gen = store.UUIDv7Generator{}
	}
	sessOpts := []session.Option{
		session.WithLogger(opts.Logger(cmd.ErrOrStderr())),
		session.WithRunIDGenerator(gen),
	}
	if opts.RunID != "" {
		sessOpts = append(sessOpts, session.WithRunID(opts.RunID))
	}
	if opts.Parallel > 0 {
		sessOpts = append(sessOpts, session.WithEngineOptions(rc.WithParallel(opts.Parallel)))
	}
	if opts.Database != "" {
		st, err := store.Open(opts.Database)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open database", err)
		}
		defer st.Close()
		sessOpts = append(sessOpts, session.WithStore(st))
	}

	s, err := session.New(ctx, m, sessOpts...)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to start session", err)
	}

	ans, err := s.Ask(ctx, session.Query{Variable: opts.Variable, Evidence: evidence, Order: opts.Order})
	if err != nil {
		var qerr *rc.QueryError
		if !errors.As(err, &qerr) {
			return WrapExitError(ExitCommandError, "failed to log query", err)
		}
		details := map[string]any{"query": formatQuery(opts.Variable, evidence)}
		if qerr.Variable != "" {
			details["variable"] = qerr.Variable
		}
		_ = formatter.Error(string(qerr.Code), qerr.Message, details)
		return WrapExitError(ExitFailure, "query failed", err)
	}

	result := QueryResult{
		Model:     m.Name(),
		Hash:      s.Hash(),
		RunID:     s.RunID(),
		ID:        ans.ID,
		Seq:       ans.Seq,
		Variable:  opts.Variable,
		Evidence:  evidence,
		CacheHits: ans.Stats.Hits,
		CacheSize: ans.Stats.Entries,
		Logged:    opts.Database != "",
	}
	for i, p := range ans.Distribution.Probs {
		result.Posterior = append(result.Posterior, Outcome{Value: ans.Distribution.Variable.Value(i), Prob: p})
	}

	if opts.Format == "json" {
		resp := CLIResponse{Status: "ok", Data: result}
		if result.Logged {
			resp.TraceID = result.RunID
		}
		return formatter.JSON(resp)
	}
	return outputQueryText(formatter, result)
}

func outputQueryText(formatter *OutputFormatter, result QueryResult) error {
	w := formatter.Writer
	fmt.Fprintf(w, "%s %s\n", formatQuery(result.Variable, result.Evidence), formatter.Dim("["+result.Model+"]"))
	for _, o := range result.Posterior {
		fmt.Fprintf(w, "  %-12s %.6f\n", o.Value, o.Prob)
	}
	fmt.Fprintln(w, formatter.Dim(fmt.Sprintf("cache: %d hit(s), %d entries", result.CacheHits, result.CacheSize)))
	if result.Logged {
		fmt.Fprintln(w, formatter.Dim(fmt.Sprintf("logged as seq %d in run %s", result.Seq, result.RunID)))
	}
	return nil
}
