package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/trustlab/internal/session"
)

// StatusReport summarizes the stored session.
type StatusReport struct {
	ExperimentID string             `json:"experimentId"`
	SessionID    string             `json:"sessionId"`
	Participant  string             `json:"participantId,omitempty"`
	View         string             `json:"view"`
	Index        int                `json:"idx"`
	StartedAt    string             `json:"startedAt"`
	CompletedAt  string             `json:"completedAt,omitempty"`
	Answered     int                `json:"answered"`
	Total        int                `json:"total"`
	ProgressText string             `json:"progressText"`
	Compliance   session.Compliance `json:"compliance"`

	// Stored lists every experiment with a session record in the database.
	Stored []string `json:"stored"`
}

// NewStatusCommand creates the status command.
func NewStatusCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show progress and AI follow rates",
		Long: `Show the stored session's progress and how often the participant's choice
matched the AI recommendation, overall and per phase.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(rootOpts, cmd)
		},
	}
}

func runStatus(opts *RootOptions, cmd *cobra.Command) error {
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
	if err := w.machine.Open(ctx); err != nil {
		return f.Fail(err)
	}

	s := w.machine.Session()
	p := w.machine.Progress()
	report := &StatusReport{
		ExperimentID: s.Meta.ExperimentID,
		SessionID:    s.Meta.SessionID,
		View:         string(s.State.View),
		Index:        s.State.Index,
		StartedAt:    s.Meta.StartedAt.String(),
		Answered:     p.Answered,
		Total:        p.Total,
		ProgressText: w.machine.ProgressText(),
		Compliance:   w.machine.ComplianceStats(),
	}
	if s.Meta.ParticipantID != nil {
		report.Participant = *s.Meta.ParticipantID
	}
	if s.Meta.CompletedAt != nil {
		report.CompletedAt = s.Meta.CompletedAt.String()
	}

	keys, err := w.backend.Keys(ctx)
	if err != nil {
		return f.Fail(&ExitError{Code: ExitCommandError, Message: "failed to list sessions", Err: err, Reason: ErrCodeDatabase})
	}
	report.Stored = []string{}
	for _, k := range keys {
		if id, ok := session.ExperimentFromKey(k); ok {
			report.Stored = append(report.Stored, id)
		}
	}
	return f.Success(report)
}

// String renders the report for the text format.
func (r *StatusReport) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Experiment:  %s\n", r.ExperimentID)
	fmt.Fprintf(&b, "Session:     %s\n", r.SessionID)
	participant := r.Participant
	if participant == "" {
		participant = "(none)"
	}
	fmt.Fprintf(&b, "Participant: %s\n", participant)
	fmt.Fprintf(&b, "View:        %s (question %d)\n", r.View, r.Index+1)
	fmt.Fprintf(&b, "Started:     %s\n", r.StartedAt)
	if r.CompletedAt != "" {
		fmt.Fprintf(&b, "Completed:   %s\n", r.CompletedAt)
	}
	if len(r.Stored) > 1 {
		fmt.Fprintf(&b, "Stored:      %s\n", strings.Join(r.Stored, ", "))
	}
	fmt.Fprintf(&b, "%s (%d answered)\n", r.ProgressText, r.Answered)
	writeCompliance(&b, r.Compliance)
	return strings.TrimRight(b.String(), "\n")
}
