package cli

import (
	"context"
	"errors"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/roach88/trustlab/internal/tui"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Out string // export directory

	// ProgramOptions are appended to the bubbletea program options (for testing).
	ProgramOptions []tea.ProgramOption
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the interactive survey",
		Long: `Run the survey in the terminal.

The session is loaded from the database (or created) and opens on the
intro view. Keys: s start, r resume, p participant id, 1-9 or up/down to
choose, f framing, enter continue, b back, j/c export JSON/CSV,
R restart, q quit.

Example:
  trustlab run --db ./trustlab.db
  trustlab run --catalog ./pilot.yaml --verbose`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSurvey(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Out, "out", rootOpts.config().ExportDir, "export directory")

	return cmd
}

func runSurvey(opts *RunOptions, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd)

	w, err := openWorkspace(opts.RootOptions, memoryOK)
	if err != nil {
		return f.Fail(err)
	}
	defer w.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if err := w.machine.Boot(ctx); err != nil {
		return f.Fail(WrapExitError(ExitCommandError, "failed to load session", err))
	}
	slog.Debug("session ready", "experiment", w.cat.Experiment.ID, "session_id", w.machine.Session().Meta.SessionID)

	model := tui.New(w.machine, tui.Config{
		ExportDir: opts.Out,
		Log:       w.backend,
		Clock:     w.clock,
	})

	programOpts := []tea.ProgramOption{
		tea.WithContext(ctx),
		tea.WithInput(cmd.InOrStdin()),
		tea.WithOutput(cmd.OutOrStdout()),
		tea.WithAltScreen(),
	}
	programOpts = append(programOpts, opts.ProgramOptions...)

	if _, err := tea.NewProgram(model, programOpts...).Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return f.Fail(WrapExitError(ExitFailure, "terminal UI error", err))
	}
	return nil
}
