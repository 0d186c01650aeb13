package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/aigo/internal/compiler"
	"github.com/roach88/aigo/internal/ir"
	"github.com/roach88/aigo/internal/model"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Output string // output file path
}

// CompiledNetwork summarizes one compiled network.
type CompiledNetwork struct {
	Name      string   `json:"name"`
	Hash      string   `json:"hash"`
	Variables []string `json:"variables"`
	Factors   int      `json:"factors"`
}

// CompilationResult holds the compiled networks.
type CompilationResult struct {
	Networks []CompiledNetwork `json:"networks"`
	Files    int               `json:"files"`
	Output   string            `json:"output,omitempty"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <path>",
		Short: "Compile CUE belief networks to canonical form",
		Long: `Compile CUE belief networks to their canonical JSON form.

The compiler loads a .cue file or a directory of them, compiles every
network under the top-level "network" field, and reports each network's
content hash. With --output the canonical models are written to a file.

All compile errors are reported, not just the first.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")

	return cmd
}

func runCompile(opts *CompileOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	loadResult, loadErrors := compiler.LoadNetworks(path, compiler.LoadModeCollectAll)

	// Handle load errors (path not found, no files, etc.)
	if loadResult == nil && len(loadErrors) > 0 {
		code, msg := loadErrorCode(loadErrors[0])
		return outputCompileError(formatter, code, msg)
	}

	formatter.VerboseLog("Found %d CUE file(s) in %s", loadResult.FileCount, path)
	for _, m := range loadResult.Models {
		formatter.VerboseLog("Compiled network: %s", m.Name())
	}

	if len(loadErrors) > 0 {
		return outputCompileErrors(formatter, loadErrors)
	}

	result := CompilationResult{Files: loadResult.FileCount}
	for _, m := range loadResult.Models {
		summary, err := summarize(m)
		if err != nil {
			return outputCompileError(formatter, compiler.ErrCodeGeneric, err.Error())
		}
		result.Networks = append(result.Networks, summary)
	}

	if opts.Output != "" {
		if err := writeModels(loadResult.Models, opts.Output); err != nil {
			return outputCompileError(formatter, compiler.ErrCodeWriteFailed, fmt.Sprintf("writing output file: %v", err))
		}
		result.Output = opts.Output
	}

	return outputCompileSuccess(formatter, result)
}

func summarize(m *model.Model) (CompiledNetwork, error) {
	hash, err := m.Hash()
	if err != nil {
		return CompiledNetwork{}, fmt.Errorf("hashing %s: %w", m.Name(), err)
	}
	vars := m.Variables()
	names := make([]string, len(vars))
	for i, v := range vars {
		names[i] = v.Name()
	}
	return CompiledNetwork{
		Name:      m.Name(),
		Hash:      hash,
		Variables: names,
		Factors:   len(m.Factors()),
	}, nil
}

// outputCompileSuccess outputs successful compilation results.
func outputCompileSuccess(formatter *OutputFormatter, result CompilationResult) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	w := formatter.Writer
	fmt.Fprintln(w, formatter.OK(fmt.Sprintf("Compiled %d network(s) from %d file(s)", len(result.Networks), result.Files)))
	fmt.Fprintln(w)
	for _, n := range result.Networks {
		fmt.Fprintf(w, "  %s: %d variable(s), %d factor(s) %s\n",
			n.Name, len(n.Variables), n.Factors, formatter.Dim(shortHash(n.Hash)))
	}
	if result.Output != "" {
		fmt.Fprintf(w, "\nWrote canonical models to %s\n", result.Output)
	}
	return nil
}

// outputCompileError outputs a single compilation error.
func outputCompileError(formatter *OutputFormatter, code, message string) error {
	_ = formatter.Error(code, message, nil)
	// Compilation errors are command-level errors (exit code 2)
	return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message))
}

// outputCompileErrors outputs multiple compilation errors.
func outputCompileErrors(formatter *OutputFormatter, errs []error) error {
	if formatter.Format == "json" {
		cliErrors := make([]CLIError, len(errs))
		for i, err := range errs {
			code, message := loadErrorCode(err)
			cliErrors[i] = CLIError{Code: code, Message: message}
		}
		if err := formatter.JSON(CLIResponse{
			Status: "error",
			Error:  &cliErrors[0],
			Data:   cliErrors, // Include all errors in data
		}); err != nil {
			return err
		}
		return NewExitError(ExitCommandError, fmt.Sprintf("compilation failed with %d error(s)", len(errs)))
	}

	w := formatter.Writer
	fmt.Fprintln(w, formatter.Fail("Compilation failed"))
	fmt.Fprintln(w)
	for _, err := range errs {
		code, message := loadErrorCode(err)
		var loadErr *compiler.LoadError
		if errors.As(err, &loadErr) && loadErr.Pos.IsValid() {
			fmt.Fprintf(w, "%s:%d:%d\n", loadErr.Pos.Filename(), loadErr.Pos.Line(), loadErr.Pos.Column())
		}
		fmt.Fprintf(w, "  %s: %s\n\n", code, message)
	}

	// Compilation errors are command-level errors (exit code 2)
	return NewExitError(ExitCommandError, fmt.Sprintf("compilation failed with %d error(s)", len(errs)))
}

// writeModels writes the canonical form of every model, in load order.
func writeModels(models []*model.Model, filename string) error {
	arr := make(ir.IRArray, len(models))
	for i, m := range models {
		arr[i] = m.Canonical()
	}
	data, err := ir.MarshalCanonical(ir.IRObject{"models": arr})
	if err != nil {
		return fmt.Errorf("marshaling models: %w", err)
	}
	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}
	return nil
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
