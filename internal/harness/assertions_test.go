package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/trustlab/internal/catalog"
	"github.com/roach88/trustlab/internal/session"
	"github.com/roach88/trustlab/internal/testutil"
)

func resultFor(t *testing.T) *Result {
	t.Helper()
	cat := catalog.Default()
	s, err := session.Init(cat, testutil.DefaultEpoch, testutil.NewFixedIDGenerator(), session.Env{}, nil)
	require.NoError(t, err)

	a, c := "A", "C"
	ms := int64(1200)
	s.Questions[0].Choice = &a
	s.Questions[0].FramingUsed = ptr("simple")
	s.Questions[0].AITextSeen = map[string]bool{"simple": true, "comparative": true}
	s.Questions[0].ResponseTimeMs = &ms
	s.Questions[10].Choice = &c

	r := NewResult()
	r.Session = s
	r.Catalog = cat
	r.Trace = []StepEvent{{Step: 0, Action: ActionStart, Outcome: "ok", View: "question"}}
	return r
}

func TestEvaluateAssertions_Passing(t *testing.T) {
	r := resultFor(t)
	assertions := []Assertion{
		{Type: AssertView, View: "intro", Index: ptr(0)},
		{Type: AssertProgress, Answered: ptr(2)},
		{Type: AssertCompliance, Phase: "overall", Followed: ptr(1), Total: ptr(20)},
		{Type: AssertCompliance, Phase: "phase1", Followed: ptr(1), Total: ptr(10)},
		{Type: AssertCompliance, Phase: "phase2", Followed: ptr(0)},
		{Type: AssertRecord, Question: "Q1", Choice: ptr("A"), Framing: "simple",
			Seen: []string{"simple", "comparative"}, ResponseMs: ptr(int64(1200))},
		{Type: AssertRecord, Question: "Q2", Unanswered: true},
		{Type: AssertCompleted, Completed: ptr(false)},
	}

	assert.Empty(t, EvaluateAssertions(r, assertions))
}

func TestEvaluateAssertions_Failures(t *testing.T) {
	r := resultFor(t)

	tests := []struct {
		name      string
		assertion Assertion
		want      string
	}{
		{"view", Assertion{Type: AssertView, View: "complete"}, "Expected: view complete"},
		{"index", Assertion{Type: AssertView, View: "intro", Index: ptr(3)}, "Expected: index 3"},
		{"progress", Assertion{Type: AssertProgress, Answered: ptr(5)}, "Actual: 2 answered"},
		{"compliance followed", Assertion{Type: AssertCompliance, Phase: "phase2", Followed: ptr(1)}, "phase2 followed 0"},
		{"compliance total", Assertion{Type: AssertCompliance, Phase: "phase1", Total: ptr(9)}, "phase1 total 10"},
		{"record missing", Assertion{Type: AssertRecord, Question: "Q99"}, "not found"},
		{"record choice", Assertion{Type: AssertRecord, Question: "Q2", Choice: ptr("B")}, "choice null"},
		{"record unanswered", Assertion{Type: AssertRecord, Question: "Q1", Unanswered: true}, "choice A"},
		{"record framing", Assertion{Type: AssertRecord, Question: "Q11", Framing: "evidence"}, "framing null"},
		{"record seen", Assertion{Type: AssertRecord, Question: "Q1", Seen: []string{"simple"}}, "seen [comparative simple]"},
		{"record latency", Assertion{Type: AssertRecord, Question: "Q2", ResponseMs: ptr(int64(1))}, "response_ms null"},
		{"completed", Assertion{Type: AssertCompleted, Completed: ptr(true)}, "completed=false"},
		{"unknown", Assertion{Type: "vibes"}, "unknown assertion type"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := EvaluateAssertions(r, []Assertion{tt.assertion})
			require.Len(t, errs, 1)
			assert.Contains(t, errs[0], tt.want)
		})
	}
}

func TestEvaluateAssertions_NoSession(t *testing.T) {
	errs := EvaluateAssertions(NewResult(), []Assertion{{Type: AssertProgress, Answered: ptr(0)}})
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "no session")
}

func TestAssertionError_IncludesTrace(t *testing.T) {
	err := &AssertionError{
		Type:     AssertView,
		Expected: "view complete",
		Actual:   "view intro",
		Trace:    []StepEvent{{Step: 0, Action: ActionStart, Outcome: "PARTICIPANT_REQUIRED", View: "intro"}},
	}
	msg := err.Error()
	assert.Contains(t, msg, "Assertion failed: view")
	assert.Contains(t, msg, "[1] start -> PARTICIPANT_REQUIRED (intro #0)")
}
