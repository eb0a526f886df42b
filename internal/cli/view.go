package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/roach88/trustlab/internal/catalog"
	"github.com/roach88/trustlab/internal/session"
)

// SessionView is what a presentation shows after an input.
type SessionView struct {
	View        string                `json:"view"`
	Index       int                   `json:"idx"`
	Framing     string                `json:"framing"`
	Progress    string                `json:"progress"`
	Participant string                `json:"participantId,omitempty"`
	Intro       *catalog.Instructions `json:"intro,omitempty"`
	Question    *QuestionView         `json:"question,omitempty"`
	Feedback    *session.Feedback     `json:"feedback,omitempty"`
	Compliance  *session.Compliance   `json:"compliance,omitempty"`
}

// QuestionView is the displayed content of the current question.
type QuestionView struct {
	ID          string           `json:"id"`
	Position    int              `json:"position"` // 1-based
	Total       int              `json:"total"`
	Title       string           `json:"title"`
	Scenario    string           `json:"scenario"`
	Prompt      string           `json:"prompt"`
	Options     []catalog.Option `json:"options"`
	Recommended string           `json:"recommended"`
	Explanation string           `json:"explanation"`
	Choice      string           `json:"choice,omitempty"`
}

// renderView builds the view of the machine's session. Rendering a
// question counts as displaying it: shownAt is recorded and the active
// framing is marked as seen. A pending feedback step covers the question,
// so nothing is recorded then.
func renderView(ctx context.Context, m *session.Machine) (*SessionView, error) {
	s := m.Session()
	v := &SessionView{
		View:     string(s.State.View),
		Index:    s.State.Index,
		Framing:  s.State.Framing,
		Progress: m.ProgressText(),
	}
	if s.Meta.ParticipantID != nil {
		v.Participant = *s.Meta.ParticipantID
	}

	switch s.State.View {
	case session.ViewIntro:
		v.Intro = m.Catalog().Instructions
	case session.ViewQuestion:
		var (
			q   *catalog.Question
			err error
		)
		if fb, ok := m.PendingFeedback(); ok {
			v.Feedback = fb
			q, _, err = m.CurrentQuestion()
		} else {
			q, err = m.Show(ctx)
		}
		if err != nil {
			return nil, err
		}
		rec := s.Current()
		qv := &QuestionView{
			ID:          q.ID,
			Position:    s.State.Index + 1,
			Total:       len(s.Questions),
			Title:       q.Title,
			Scenario:    q.Scenario,
			Prompt:      q.Prompt,
			Options:     q.Options,
			Recommended: q.AI.Recommended,
			Explanation: q.Explanation(s.State.Framing),
		}
		if rec.Choice != nil {
			qv.Choice = *rec.Choice
		}
		v.Question = qv
	case session.ViewComplete:
		c := m.ComplianceStats()
		v.Compliance = &c
	}
	return v, nil
}

// String renders the view for the text format.
func (v *SessionView) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s  framing: %s", v.View, v.Progress, v.Framing)
	if v.Participant != "" {
		fmt.Fprintf(&b, "  participant: %s", v.Participant)
	}
	b.WriteString("\n")

	switch {
	case v.Intro != nil:
		fmt.Fprintf(&b, "\n%s\n%s\n", v.Intro.ConsentTitle, v.Intro.ConsentText)
	case v.Feedback != nil:
		fb := v.Feedback
		verdict := "did not follow"
		if fb.Followed {
			verdict = "followed"
		}
		fmt.Fprintf(&b, "\nFeedback on %s\n%s\n", fb.QuestionID, fb.Text)
		fmt.Fprintf(&b, "You chose %s; the AI recommended %s (%s).\n", fb.Choice, fb.Recommended, verdict)
		b.WriteString("Run \"trustlab continue\" to go on.\n")
	case v.Question != nil:
		q := v.Question
		fmt.Fprintf(&b, "\nQuestion %d of %d: %s\n", q.Position, q.Total, q.Title)
		fmt.Fprintf(&b, "%s\n\n%s\n", q.Scenario, q.Prompt)
		for _, o := range q.Options {
			marker := " "
			if o.Label == q.Choice {
				marker = "*"
			}
			fmt.Fprintf(&b, " %s %s) %s - %s\n", marker, o.Label, o.Title, o.Desc)
		}
		fmt.Fprintf(&b, "\nAI recommends %s: %s\n", q.Recommended, q.Explanation)
	case v.Compliance != nil:
		b.WriteString("\nThank you. The session is complete.\n")
		writeCompliance(&b, *v.Compliance)
	}
	return strings.TrimRight(b.String(), "\n")
}

func writeCompliance(b *strings.Builder, c session.Compliance) {
	fmt.Fprintf(b, "Followed AI: %d/%d overall, %d/%d phase 1, %d/%d phase 2\n",
		c.Overall.Followed, c.Overall.Total,
		c.Phase1.Followed, c.Phase1.Total,
		c.Phase2.Followed, c.Phase2.Total)
}
