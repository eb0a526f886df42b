package harness

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/trustlab/internal/session"
)

// AssertionError is returned when an assertion fails.
// It includes the step trace to help debug the failure.
type AssertionError struct {
	Type     string      // Assertion type for categorization
	Expected string      // Human-readable expected outcome
	Actual   string      // Human-readable actual outcome
	Trace    []StepEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for _, ev := range e.Trace {
			fmt.Fprintf(&buf, "  [%d] %s -> %s (%s #%d)\n", ev.Step+1, ev.Action, ev.Outcome, ev.View, ev.Index)
		}
	}

	return buf.String()
}

func fail(r *Result, typ, expected, actual string) error {
	return &AssertionError{Type: typ, Expected: expected, Actual: actual, Trace: r.Trace}
}

func assertView(r *Result, a Assertion) error {
	st := r.Session.State
	if string(st.View) != a.View {
		return fail(r, AssertView, "view "+a.View, "view "+string(st.View))
	}
	if a.Index != nil && st.Index != *a.Index {
		return fail(r, AssertView, fmt.Sprintf("index %d", *a.Index), fmt.Sprintf("index %d", st.Index))
	}
	return nil
}

func assertProgress(r *Result, a Assertion) error {
	if got := r.Session.Answered(); got != *a.Answered {
		return fail(r, AssertProgress, fmt.Sprintf("%d answered", *a.Answered), fmt.Sprintf("%d answered", got))
	}
	return nil
}

func assertCompliance(r *Result, a Assertion) error {
	c := r.Session.Compliance(r.Catalog.Experiment.PhaseSplitIndex)
	var tally session.Tally
	switch a.Phase {
	case "overall":
		tally = c.Overall
	case "phase1":
		tally = c.Phase1
	case "phase2":
		tally = c.Phase2
	}
	if a.Followed != nil && tally.Followed != *a.Followed {
		return fail(r, AssertCompliance,
			fmt.Sprintf("%s followed %d", a.Phase, *a.Followed),
			fmt.Sprintf("%s followed %d", a.Phase, tally.Followed))
	}
	if a.Total != nil && tally.Total != *a.Total {
		return fail(r, AssertCompliance,
			fmt.Sprintf("%s total %d", a.Phase, *a.Total),
			fmt.Sprintf("%s total %d", a.Phase, tally.Total))
	}
	return nil
}

func assertRecord(r *Result, a Assertion) error {
	var rec *session.QuestionRecord
	for i := range r.Session.Questions {
		if r.Session.Questions[i].ID == a.Question {
			rec = &r.Session.Questions[i]
			break
		}
	}
	if rec == nil {
		return fail(r, AssertRecord, "record "+a.Question, "not found")
	}

	if a.Unanswered && rec.Choice != nil {
		return fail(r, AssertRecord, a.Question+" unanswered", "choice "+*rec.Choice)
	}
	if a.Choice != nil && (rec.Choice == nil || *rec.Choice != *a.Choice) {
		return fail(r, AssertRecord, a.Question+" choice "+*a.Choice, "choice "+display(rec.Choice))
	}
	if a.Framing != "" && (rec.FramingUsed == nil || *rec.FramingUsed != a.Framing) {
		return fail(r, AssertRecord, a.Question+" framing "+a.Framing, "framing "+display(rec.FramingUsed))
	}
	if a.Seen != nil {
		var seen []string
		for k, v := range rec.AITextSeen {
			if v {
				seen = append(seen, k)
			}
		}
		slices.Sort(seen)
		want := slices.Clone(a.Seen)
		slices.Sort(want)
		if !slices.Equal(seen, want) {
			return fail(r, AssertRecord,
				fmt.Sprintf("%s seen %v", a.Question, want),
				fmt.Sprintf("seen %v", seen))
		}
	}
	if a.ResponseMs != nil && (rec.ResponseTimeMs == nil || *rec.ResponseTimeMs != *a.ResponseMs) {
		got := "null"
		if rec.ResponseTimeMs != nil {
			got = fmt.Sprint(*rec.ResponseTimeMs)
		}
		return fail(r, AssertRecord, fmt.Sprintf("%s response_ms %d", a.Question, *a.ResponseMs), "response_ms "+got)
	}
	return nil
}

func assertCompleted(r *Result, a Assertion) error {
	got := r.Session.Meta.CompletedAt != nil
	if got != *a.Completed {
		return fail(r, AssertCompleted, fmt.Sprintf("completed=%t", *a.Completed), fmt.Sprintf("completed=%t", got))
	}
	return nil
}

func display(p *string) string {
	if p == nil {
		return "null"
	}
	return *p
}

// EvaluateAssertions evaluates all assertions against the result's final
// session and returns the failure messages.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		if result.Session == nil {
			errors = append(errors, fmt.Sprintf("assertion[%d]: no session", i))
			continue
		}

		switch assertion.Type {
		case AssertView:
			err = assertView(result, assertion)
		case AssertProgress:
			err = assertProgress(result, assertion)
		case AssertCompliance:
			err = assertCompliance(result, assertion)
		case AssertRecord:
			err = assertRecord(result, assertion)
		case AssertCompleted:
			err = assertCompleted(result, assertion)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}
