package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/roach88/trustlab/internal/session"
)

// entry selects how a command loads the stored session.
type entry int

const (
	// entryOpen keeps the stored view, continuing the previous command.
	entryOpen entry = iota
	// entryBoot lands on the intro view, as a fresh page load would.
	entryBoot
)

// runSession opens the workspace, loads the session, applies act and
// prints the resulting view.
func runSession(opts *RootOptions, cmd *cobra.Command, how entry, act func(ctx context.Context, m *session.Machine) error) error {
	f := newFormatter(opts, cmd)

	w, err := openWorkspace(opts, durableOnly)
	if err != nil {
		return f.Fail(err)
	}
	defer w.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	load := w.machine.Open
	if how == entryBoot {
		load = w.machine.Boot
	}
	if err := load(ctx); err != nil {
		return f.Fail(err)
	}
	if act != nil {
		if err := act(ctx, w.machine); err != nil {
			return f.Fail(err)
		}
	}

	view, err := renderView(ctx, w.machine)
	if err != nil {
		return f.Fail(err)
	}
	return f.Success(view)
}

// NewStartCommand creates the start command.
func NewStartCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the survey at the first question",
		Long: `Start the survey from the intro view at the first question.

Fails when the catalog requires a participant id and none was recorded
(set one with "trustlab participant <id>").`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSession(rootOpts, cmd, entryBoot, func(ctx context.Context, m *session.Machine) error {
				return m.Start(ctx)
			})
		},
	}
}

// NewResumeCommand creates the resume command.
func NewResumeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "resume",
		Short:         "Resume at the first unanswered question",
		Long:          `Resume the stored session at its first unanswered question, or show the completion view when every question is answered.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSession(rootOpts, cmd, entryBoot, func(ctx context.Context, m *session.Machine) error {
				return m.Resume(ctx)
			})
		},
	}
}

// NewParticipantCommand creates the participant command.
func NewParticipantCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "participant <id>",
		Short:         "Record the participant id",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSession(rootOpts, cmd, entryBoot, func(ctx context.Context, m *session.Machine) error {
				return m.SetParticipant(ctx, args[0])
			})
		},
	}
}

// NewFramingCommand creates the framing command.
func NewFramingCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "framing <key>",
		Short:         "Switch the AI explanation framing",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSession(rootOpts, cmd, entryOpen, func(ctx context.Context, m *session.Machine) error {
				return m.SetFraming(ctx, args[0])
			})
		},
	}
}

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "show",
		Short:         "Show the current view",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSession(rootOpts, cmd, entryOpen, nil)
		},
	}
}

// NewAnswerCommand creates the answer command.
func NewAnswerCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "answer <label>",
		Short: "Choose an option for the current question",
		Long: `Choose an option for the current question.

Answering again before continuing replaces the previous choice, its time
and the framing it was made under.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSession(rootOpts, cmd, entryOpen, func(ctx context.Context, m *session.Machine) error {
				return m.Answer(ctx, args[0])
			})
		},
	}
}

// NewContinueCommand creates the continue command.
func NewContinueCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "continue",
		Short: "Move past the answered question",
		Long: `Move past the answered question.

In the first phase, continuing shows hindsight feedback; continuing again
acknowledges it and moves to the next question.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSession(rootOpts, cmd, entryOpen, func(ctx context.Context, m *session.Machine) error {
				if _, pending := m.PendingFeedback(); pending {
					return m.AcknowledgeFeedback(ctx)
				}
				_, err := m.Continue(ctx)
				return err
			})
		},
	}
}

// NewBackCommand creates the back command.
func NewBackCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "back",
		Short:         "Return to the previous question",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSession(rootOpts, cmd, entryOpen, func(ctx context.Context, m *session.Machine) error {
				return m.Back(ctx)
			})
		},
	}
}

// NewResetCommand creates the reset command.
func NewResetCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "reset",
		Short:         "Discard the session and start over",
		Long:          `Discard the stored session and create a fresh one in the intro view. The export log is kept.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSession(rootOpts, cmd, entryOpen, func(ctx context.Context, m *session.Machine) error {
				return m.Reset(ctx)
			})
		},
	}
}
