package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"

	"github.com/spf13/cobra"

	"github.com/roach88/trustlab/internal/catalog"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid   bool                      `json:"valid"`
	Catalog *CatalogSummary           `json:"catalog,omitempty"`
	Errors  []catalog.ValidationError `json:"errors,omitempty"`
}

// CatalogSummary describes a valid catalog.
type CatalogSummary struct {
	Source          string   `json:"source"`
	ID              string   `json:"id"`
	Title           string   `json:"title"`
	Questions       int      `json:"questions"`
	PhaseSplitIndex int      `json:"phaseSplitIndex"`
	Framings        []string `json:"framings"`
	Fingerprint     string   `json:"fingerprint"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [catalog]",
		Short: "Validate a catalog file",
		Long: `Validate a catalog file (.yaml, .yml, .json or .cue) against the catalog
schema and content rules: unique ids and labels, recommendations that name
an option, and an explanation for every framing.

Without an argument, the --catalog file (or the built-in catalog) is
validated.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			path := rootOpts.Catalog
			if len(args) == 1 {
				path = args[0]
			}
			return runValidate(rootOpts, path, cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	var (
		cat *catalog.Catalog
		err error
	)
	source := path
	if path == "" {
		source = "built-in"
		cat = catalog.Default()
		if errs := catalog.Validate(cat); len(errs) > 0 {
			err = catalog.ValidationErrors(errs)
		}
	} else {
		formatter.VerboseLog("Validating %s", path)
		cat, err = catalog.LoadFile(path)
	}

	if err != nil {
		var verrs catalog.ValidationErrors
		if errors.As(err, &verrs) {
			return outputValidationErrors(formatter, verrs)
		}
		if errors.Is(err, fs.ErrNotExist) {
			return outputValidateError(formatter, ErrCodeNotFound, fmt.Sprintf("catalog not found: %s", path), nil)
		}
		return outputValidateError(formatter, ErrCodeGeneric, err.Error(), nil)
	}

	fingerprint, err := cat.Fingerprint()
	if err != nil {
		return outputValidateError(formatter, ErrCodeGeneric, err.Error(), nil)
	}

	// Output success
	return outputValidateSuccess(formatter, &CatalogSummary{
		Source:          source,
		ID:              cat.Experiment.ID,
		Title:           cat.Experiment.Title,
		Questions:       len(cat.Questions),
		PhaseSplitIndex: cat.Experiment.PhaseSplitIndex,
		Framings:        cat.FramingKeys(),
		Fingerprint:     fingerprint,
	})
}

// outputValidateSuccess outputs successful validation results.
func outputValidateSuccess(formatter *OutputFormatter, summary *CatalogSummary) error {
	if formatter.Format == "json" {
		result := ValidationResult{Valid: true, Catalog: summary}
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "✓ Catalog %s valid (%s)\n", summary.ID, summary.Source)
	fmt.Fprintf(formatter.Writer, "  %d questions, phase split %d, framings %v, fingerprint %s\n",
		summary.Questions, summary.PhaseSplitIndex, summary.Framings, summary.Fingerprint)
	return nil
}

// outputValidateError outputs a single validation error.
func outputValidateError(formatter *OutputFormatter, code, message string, details interface{}) error {
	_ = formatter.Error(code, message, details)
	// Unreadable catalogs are command-level errors (exit code 2)
	return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message))
}

// outputValidationErrors outputs multiple validation errors.
func outputValidationErrors(formatter *OutputFormatter, errs []catalog.ValidationError) error {
	if formatter.Format == "json" {
		result := ValidationResult{
			Valid:  false,
			Errors: errs,
		}

		response := CLIResponse{
			Status: "error",
			Data:   result,
			Error: &CLIError{
				Code:    errs[0].Code,
				Message: errs[0].Message,
			},
		}

		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}

		// Validation failures = exit code 1 (test/validation failure)
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
	}

	// Text format
	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)

	for _, err := range errs {
		if err.Line > 0 {
			fmt.Fprintf(formatter.Writer, "line %d\n", err.Line)
		}
		fmt.Fprintf(formatter.Writer, "  %s: %s: %s\n\n", err.Code, err.Field, err.Message)
	}

	// Validation failures = exit code 1 (test/validation failure)
	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
}
