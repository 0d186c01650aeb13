package cli

import (
	"context"
	"fmt"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/aigo/internal/ir"
	"github.com/roach88/aigo/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Database  string
	RunID     string // optional - filter to one run
	ModelHash string // optional - filter to one model
	Limit     int
}

// HistoryEntry is one logged query in the timeline.
type HistoryEntry struct {
	Seq          int64              `json:"seq"`
	ID           string             `json:"id"`
	RunID        string             `json:"run_id"`
	Model        string             `json:"model"`
	Variable     string             `json:"variable"`
	Evidence     map[string]string  `json:"evidence,omitempty"`
	Order        []string           `json:"order,omitempty"`
	Distribution map[string]float64 `json:"distribution,omitempty"`
	ErrorCode    string             `json:"error_code,omitempty"`
	CacheHits    int64              `json:"cache_hits"`
}

// HistoryStats holds summary statistics for the history.
type HistoryStats struct {
	Queries int `json:"queries"`
	Failed  int `json:"failed"`
	Runs    int `json:"runs"`
	Models  int `json:"models"`
}

// HistoryResult holds the complete history output.
type HistoryResult struct {
	Timeline []HistoryEntry `json:"timeline"`
	Stats    HistoryStats   `json:"stats"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List logged queries",
		Long: `List the queries logged to a SQLite database in logical-clock order.

Failed queries are listed with their error code.

Examples:
  aigo history --db ./aigo.db
  aigo history --db ./aigo.db --run 0190a5b2-... --limit 20
  aigo history --db ./aigo.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", rootOpts.Defaults().DB, "path to SQLite database (required unless AIGO_DB is set)")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "only queries from this run")
	cmd.Flags().StringVar(&opts.ModelHash, "model", "", "only queries against this model hash")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "maximum number of queries (0 = all)")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	ctx := context.Background()
	formatter := newFormatter(opts.RootOptions, cmd)

	st, err := openExistingStore(opts.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	if opts.Limit < 0 {
		return NewExitError(ExitCommandError, fmt.Sprintf("--limit must be non-negative, got %d", opts.Limit))
	}
	records, err := st.ReadQueries(ctx, store.QueryFilter{RunID: opts.RunID, ModelHash: opts.ModelHash, Limit: opts.Limit})
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read query log", err)
	}
	models, err := st.ReadModels(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read models", err)
	}
	names := make(map[string]string, len(models))
	for _, m := range models {
		names[m.Hash] = m.Name
	}

	result := buildHistory(records, names)

	if opts.Format == "json" {
		return formatter.Success(result)
	}
	return outputHistoryText(formatter, result)
}

// openExistingStore opens the database at path, refusing to create one.
func openExistingStore(path string) (*store.Store, error) {
	if path == "" {
		return nil, NewExitError(ExitCommandError, "--db is required (or set AIGO_DB)")
	}
	if _, err := os.Stat(path); err != nil {
		return nil, WrapExitError(ExitCommandError, "database not found", err)
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	return st, nil
}

// buildHistory converts query records to timeline entries.
func buildHistory(records []ir.QueryRecord, modelNames map[string]string) HistoryResult {
	result := HistoryResult{Timeline: make([]HistoryEntry, 0, len(records))}
	var runs, hashes []string
	for _, rec := range records {
		name := modelNames[rec.ModelHash]
		if name == "" {
			name = shortHash(rec.ModelHash)
		}
		result.Timeline = append(result.Timeline, HistoryEntry{
			Seq:          rec.Seq,
			ID:           rec.ID,
			RunID:        rec.RunID,
			Model:        name,
			Variable:     rec.Variable,
			Evidence:     rec.Evidence,
			Order:        rec.ElimOrder,
			Distribution: rec.Distribution,
			ErrorCode:    rec.ErrorCode,
			CacheHits:    rec.CacheHits,
		})
		if rec.ErrorCode != "" {
			result.Stats.Failed++
		}
		if !slices.Contains(runs, rec.RunID) {
			runs = append(runs, rec.RunID)
		}
		if !slices.Contains(hashes, rec.ModelHash) {
			hashes = append(hashes, rec.ModelHash)
		}
	}
	result.Stats.Queries = len(records)
	result.Stats.Runs = len(runs)
	result.Stats.Models = len(hashes)
	return result
}

// outputHistoryText outputs the history timeline as text.
func outputHistoryText(formatter *OutputFormatter, result HistoryResult) error {
	w := formatter.Writer
	if len(result.Timeline) == 0 {
		fmt.Fprintln(w, "No queries found.")
		return nil
	}

	for _, e := range result.Timeline {
		line := fmt.Sprintf("[%d] %s %s", e.Seq, formatQuery(e.Variable, e.Evidence), formatter.Dim("["+e.Model+"]"))
		if e.ErrorCode != "" {
			fmt.Fprintln(w, formatter.Fail(line+" "+e.ErrorCode))
			continue
		}
		fmt.Fprintln(w, formatter.OK(line+" = "+formatDistribution(e.Distribution)))
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "queries: %d, failed: %d, runs: %d, models: %d\n",
		result.Stats.Queries, result.Stats.Failed, result.Stats.Runs, result.Stats.Models)
	return nil
}

// formatDistribution renders {v1: p1, v2: p2} in value order.
func formatDistribution(dist map[string]float64) string {
	vals := make([]string, 0, len(dist))
	for v := range dist {
		vals = append(vals, v)
	}
	slices.Sort(vals)
	out := "{"
	for i, v := range vals {
		if i > 0 {
			out += ", "
		}
		out += fmt.Sprintf("%s: %.6f", v, dist[v])
	}
	return out + "}"
}
