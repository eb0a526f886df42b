package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/trustlab/internal/config"
	"github.com/roach88/trustlab/internal/session"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
	DB      string
	Catalog string // "" selects the built-in catalog

	// Config carries the environment defaults. Nil means config.Defaults().
	Config *config.Config

	// Clock and IDs override time and session ids (for testing).
	Clock session.Clock
	IDs   session.IDGenerator
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the trustlab CLI.
// cfg supplies flag defaults; nil uses config.Defaults().
func NewRootCommand(cfg *config.Config) *cobra.Command {
	if cfg == nil {
		cfg = config.Defaults()
	}
	opts := &RootOptions{Config: cfg}

	cmd := &cobra.Command{
		Use:   "trustlab",
		Short: "trustlab - AI guidance survey instrument",
		Long: `A single-participant survey of twenty decision scenarios with AI-style
guidance, hindsight feedback for the first phase, and JSON/CSV export.

Each session command loads the stored session, applies one input and saves
it again, so a session can be driven step by step from scripts. Use "run"
for the interactive terminal UI.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Validate format flag
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			setupLogging(opts.Verbose, cmd.ErrOrStderr())
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.DB, "db", cfg.DBPath, "path to SQLite database")
	cmd.PersistentFlags().StringVar(&opts.Catalog, "catalog", cfg.CatalogPath, "catalog file (.yaml, .json or .cue); empty uses the built-in catalog")

	// Session inputs
	cmd.AddCommand(NewStartCommand(opts))
	cmd.AddCommand(NewResumeCommand(opts))
	cmd.AddCommand(NewParticipantCommand(opts))
	cmd.AddCommand(NewFramingCommand(opts))
	cmd.AddCommand(NewShowCommand(opts))
	cmd.AddCommand(NewAnswerCommand(opts))
	cmd.AddCommand(NewContinueCommand(opts))
	cmd.AddCommand(NewBackCommand(opts))
	cmd.AddCommand(NewResetCommand(opts))
	cmd.AddCommand(NewStatusCommand(opts))

	// Export and tooling
	cmd.AddCommand(NewExportCommand(opts))
	cmd.AddCommand(NewExportsCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))
	cmd.AddCommand(NewRunCommand(opts))

	return cmd
}

// setupLogging installs the default slog handler. Logs go to w so they
// never mix with JSON output.
func setupLogging(verbose bool, w io.Writer) {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))
}

func (o *RootOptions) config() *config.Config {
	if o.Config == nil {
		return config.Defaults()
	}
	return o.Config
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
