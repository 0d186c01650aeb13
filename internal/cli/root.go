package cli

import (
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/aigo/internal/config"
	"github.com/roach88/aigo/internal/ir"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"

	// Config supplies defaults for flags that can also come from the
	// environment (database path, parallelism, log level).
	Config *config.Config
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the aigo CLI.
// Flag defaults come from AIGO_* environment variables.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{Config: config.LoadFromEnv()}

	cmd := &cobra.Command{
		Use:   "aigo",
		Short: "aigo - exact inference and classic AI search",
		Long: `Exact probabilistic inference by recursive conditioning over belief
networks written in CUE, with value iteration for MDPs, STRIPS planning,
and constraint satisfaction alongside.`,
		Version:       ir.EngineVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Validate format flag
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			opts.Config.Format = opts.Format
			if err := opts.Config.Validate(); err != nil {
				return WrapExitError(ExitCommandError, "environment", err)
			}
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", opts.Config.Format, "output format (json|text)")

	// Add subcommands
	cmd.AddCommand(NewQueryCommand(opts))
	cmd.AddCommand(NewCompileCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))
	cmd.AddCommand(NewReplayCommand(opts))
	cmd.AddCommand(NewMDPCommand(opts))
	cmd.AddCommand(NewPlanCommand(opts))
	cmd.AddCommand(NewQueensCommand(opts))

	return cmd
}

// Defaults returns the environment defaults, or the built-in ones when
// none were loaded.
func (o *RootOptions) Defaults() *config.Config {
	if o.Config == nil {
		return config.Default()
	}
	return o.Config
}

// Logger returns a text logger on w. --verbose forces Debug; otherwise the
// level comes from AIGO_LOG_LEVEL.
func (o *RootOptions) Logger(w io.Writer) *slog.Logger {
	level := o.Defaults().SlogLevel()
	if o.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
