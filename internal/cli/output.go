package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/trustlab/internal/session"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Rejected input or failed check (wrong view, invalid catalog, failed scenarios)
	ExitCommandError = 2 // Command error (unreadable catalog, database not available, etc.)
)

// CLI error codes (E001-E099). Catalog problems use the catalog package's
// E2xx codes and session errors map to E3xx.
const (
	ErrCodeGeneric    = "E001" // Generic/unknown error
	ErrCodeCatalog    = "E002" // Catalog could not be loaded
	ErrCodeDatabase   = "E003" // Database could not be opened
	ErrCodeExport     = "E004" // Export could not be written
	ErrCodeNotFound   = "E005" // Path not found
	ErrCodeEphemeral  = "E006" // Command needs the database but ephemeral mode is on
	ErrCodeTestFailed = "E_TEST_FAILED"
)

// sessionErrorCodes maps session error codes to CLI error codes.
var sessionErrorCodes = map[session.ErrorCode]string{
	session.ErrCodeEmptyCatalog:        "E301",
	session.ErrCodeNoSession:           "E302",
	session.ErrCodeCorruptRecord:       "E303",
	session.ErrCodeParticipantRequired: "E304",
	session.ErrCodeParticipantEmpty:    "E305",
	session.ErrCodeWrongView:           "E306",
	session.ErrCodeIndexOutOfRange:     "E307",
	session.ErrCodeUnknownFraming:      "E308",
	session.ErrCodeInvalidChoice:       "E309",
	session.ErrCodeNoChoice:            "E310",
	session.ErrCodeNoFeedbackPending:   "E311",
	session.ErrCodeMissingContent:      "E312",
}

// ExitError represents an error with a specific exit code.
// Use this to return errors with meaningful exit codes from CLI commands.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)
	Reason  string // CLI error code reported in output (optional, defaults to E001)
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // Separate writer for verbose/diagnostic output (defaults to Writer)
	Verbose   bool
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status string      `json:"status"`          // "ok" or "error"
	Data   interface{} `json:"data,omitempty"`  // success payload
	Error  *CLIError   `json:"error,omitempty"` // error details
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string      `json:"code"`              // "E001", "E306", etc.
	Message string      `json:"message"`           // human-readable message
	Details interface{} `json:"details,omitempty"` // additional context
}

// newFormatter builds the formatter for a command from the global flags.
func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}
}

// Success outputs a successful result in the configured format.
func (f *OutputFormatter) Success(data interface{}) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "ok",
			Data:   data,
		})
	}

	// Human-readable text output
	fmt.Fprintln(f.Writer, data)
	return nil
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details interface{}) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error: &CLIError{
				Code:    code,
				Message: message,
				Details: details,
			},
		})
	}

	// Human-readable error
	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

// Fail reports err and returns the error the command should exit with.
//
// Session errors are the participant's mistakes (exit 1, E3xx code);
// ExitErrors keep their code and reason; anything else is a command error.
func (f *OutputFormatter) Fail(err error) error {
	var se *session.Error
	if errors.As(err, &se) {
		code, ok := sessionErrorCodes[se.Code]
		if !ok {
			code = ErrCodeGeneric
		}
		_ = f.Error(code, se.Message, map[string]string{"reason": string(se.Code)})
		return &ExitError{Code: ExitFailure, Message: code, Err: err, Reason: code}
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		reason := exitErr.Reason
		if reason == "" {
			reason = ErrCodeGeneric
		}
		_ = f.Error(reason, exitErr.Error(), nil)
		return exitErr
	}

	_ = f.Error(ErrCodeGeneric, err.Error(), nil)
	return &ExitError{Code: ExitCommandError, Message: ErrCodeGeneric, Err: err, Reason: ErrCodeGeneric}
}

// VerboseLog outputs a message only if verbose mode is enabled.
// Uses ErrWriter if set, otherwise falls back to Writer.
// When format is JSON, verbose logs go to ErrWriter to avoid corrupting JSON output.
func (f *OutputFormatter) VerboseLog(format string, args ...interface{}) {
	if !f.Verbose {
		return
	}
	w := f.ErrWriter
	if w == nil {
		w = f.Writer
	}
	fmt.Fprintf(w, format+"\n", args...)
}
