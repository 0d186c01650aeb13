package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/aigo/internal/compiler"
	"github.com/roach88/aigo/internal/model"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid    bool                       `json:"valid"`
	Networks int                        `json:"networks"`
	Errors   []compiler.ValidationError `json:"errors,omitempty"`
	Warnings []compiler.CycleWarning    `json:"warnings,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <path>",
		Short: "Lint CUE belief networks",
		Long: `Validate CUE belief networks without writing output.

Compiles every network, then checks structural rules the compiler does
not enforce: every variable appears in a factor, each variable of a
belief network has exactly one CPT, names are usable as evidence, and no
factor is all zero. Cycles in the parent graph are reported as warnings.

Exit codes:
  0 - All networks valid (warnings allowed)
  1 - Validation findings
  2 - Command error (path not found, no CUE files, etc.)`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	loadResult, loadErrors := compiler.LoadNetworks(path, compiler.LoadModeCollectAll)

	// Handle load errors (path not found, no files, etc.)
	if loadResult == nil && len(loadErrors) > 0 {
		code, msg := loadErrorCode(loadErrors[0])
		_ = formatter.Error(code, msg, nil)
		// Load errors are command-level errors (exit code 2)
		return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, msg))
	}

	formatter.VerboseLog("Found %d CUE file(s) in %s", loadResult.FileCount, path)

	result := validateModels(loadResult.Models, formatter)

	// Compile errors become validation findings
	for _, err := range loadErrors {
		code, msg := loadErrorCode(err)
		result.Errors = append(result.Errors, compiler.ValidationError{
			Field:   "load",
			Message: msg,
			Code:    code,
		})
	}
	result.Valid = len(result.Errors) == 0

	if !result.Valid {
		return outputValidationErrors(formatter, result)
	}
	return outputValidateSuccess(formatter, result)
}

// validateModels lints every model and collects cycle warnings.
func validateModels(models []*model.Model, formatter *OutputFormatter) ValidationResult {
	result := ValidationResult{Networks: len(models)}
	for _, m := range models {
		formatter.VerboseLog("Validating network: %s", m.Name())
		for _, verr := range compiler.Validate(m) {
			verr.Field = "network." + m.Name() + "." + verr.Field
			result.Errors = append(result.Errors, verr)
		}
		result.Warnings = append(result.Warnings, compiler.AnalyzeCycles(m)...)
	}
	return result
}

// outputValidateSuccess outputs successful validation results.
func outputValidateSuccess(formatter *OutputFormatter, result ValidationResult) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	w := formatter.Writer
	fmt.Fprintln(w, formatter.OK(fmt.Sprintf("All %d network(s) valid", result.Networks)))
	writeWarnings(formatter, result.Warnings)
	return nil
}

func writeWarnings(formatter *OutputFormatter, warnings []compiler.CycleWarning) {
	for _, warn := range warnings {
		fmt.Fprintln(formatter.Writer, formatter.Warn(warn.Message))
	}
}

// outputValidationErrors outputs multiple validation errors.
func outputValidationErrors(formatter *OutputFormatter, result ValidationResult) error {
	errs := result.Errors
	if formatter.Format == "json" {
		if err := formatter.JSON(CLIResponse{
			Status: "error",
			Data:   result,
			Error: &CLIError{
				Code:    errs[0].Code,
				Message: errs[0].Message,
			},
		}); err != nil {
			return err
		}

		// Validation failures = exit code 1 (test/validation failure)
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
	}

	w := formatter.Writer
	fmt.Fprintln(w, formatter.Fail("Validation failed"))
	fmt.Fprintln(w)
	for _, err := range errs {
		fmt.Fprintf(w, "  %s: %s: %s\n", err.Code, err.Field, err.Message)
	}
	if len(result.Warnings) > 0 {
		fmt.Fprintln(w)
		writeWarnings(formatter, result.Warnings)
	}

	// Validation failures = exit code 1 (test/validation failure)
	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
}
