package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/roach88/trustlab/internal/catalog"
	"github.com/roach88/trustlab/internal/session"
	"github.com/roach88/trustlab/internal/store"
	"github.com/roach88/trustlab/internal/testutil"
)

// Harness drives a session machine through a scenario's steps.
type Harness struct {
	store   *store.Store
	cat     *catalog.Catalog
	clock   *testutil.FakeClock
	ids     *testutil.FixedIDGenerator
	logger  *slog.Logger
	machine *session.Machine
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
// Execution flow:
// 1. Load the catalog and create a fresh in-memory database
// 2. Boot a session (and set the participant, if given)
// 3. Apply steps, checking expected errors and feedback
// 4. Evaluate expectations against the final session
func Run(scenario *Scenario) (*Result, error) {
	cat := catalog.Default()
	if scenario.Catalog != "" {
		var err error
		cat, err = catalog.LoadFile(scenario.Catalog)
		if err != nil {
			return nil, fmt.Errorf("failed to load catalog: %w", err)
		}
	}

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	ids := testutil.NewFixedIDGenerator()
	if scenario.SessionID != "" {
		ids = testutil.NewFixedIDGenerator(scenario.SessionID)
	}

	h := &Harness{
		store:  st,
		cat:    cat,
		clock:  testutil.NewFakeClock(time.Time{}),
		ids:    ids,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)), // Suppress logs in tests
	}

	ctx := context.Background()
	if err := h.boot(ctx); err != nil {
		return nil, err
	}
	if scenario.Participant != "" {
		if err := h.machine.SetParticipant(ctx, scenario.Participant); err != nil {
			return nil, fmt.Errorf("failed to set participant: %w", err)
		}
	}

	result := NewResult()
	if err := h.executeSteps(ctx, scenario.Steps, result); err != nil {
		return nil, fmt.Errorf("failed to execute steps: %w", err)
	}

	result.Session = h.machine.Session()
	result.Catalog = cat
	for _, msg := range EvaluateAssertions(result, scenario.Expect) {
		result.AddError(msg)
	}

	return result, nil
}

// boot starts a new machine over the same store, as a fresh process would.
func (h *Harness) boot(ctx context.Context) error {
	h.machine = session.New(h.cat, h.store,
		session.WithClock(h.clock),
		session.WithIDGenerator(h.ids),
		session.WithEnv(session.Env{UserAgent: "trustlab-harness", Timezone: "UTC"}),
		// Keep catalog order so randomized catalogs stay reproducible.
		session.WithShuffle(func(int, func(i, j int)) {}),
		session.WithLogger(h.logger),
	)
	if err := h.machine.Boot(ctx); err != nil {
		return fmt.Errorf("failed to boot session: %w", err)
	}
	return nil
}

// executeSteps applies each step and records its outcome.
//
// Session errors are compared with the step's expected error code.
// Any other error (storage failure) aborts the run.
func (h *Harness) executeSteps(ctx context.Context, steps []Step, result *Result) error {
	for i, step := range steps {
		fb, err := h.apply(ctx, step)
		if err != nil && !session.IsUserError(err) {
			return fmt.Errorf("step %d (%s): %w", i, step.Action, err)
		}

		outcome := "ok"
		if code := session.CodeOf(err); code != "" {
			outcome = string(code)
		}
		s := h.machine.Session()
		result.Trace = append(result.Trace, StepEvent{
			Step:    i,
			Action:  step.Action,
			Outcome: outcome,
			View:    string(s.State.View),
			Index:   s.State.Index,
		})

		want := "ok"
		if step.Error != "" {
			want = string(step.Error)
		}
		if outcome != want {
			result.AddError(fmt.Sprintf("step %d (%s): expected %s, got %s", i, step.Action, want, outcome))
		}
		if step.Feedback != nil && err == nil && *step.Feedback != (fb != nil) {
			result.AddError(fmt.Sprintf("step %d (%s): expected feedback=%t, got %t", i, step.Action, *step.Feedback, fb != nil))
		}

		h.logger.Debug("step applied", "step", i, "action", step.Action, "outcome", outcome)
	}
	return nil
}

func (h *Harness) apply(ctx context.Context, step Step) (*session.Feedback, error) {
	m := h.machine
	switch step.Action {
	case ActionStart:
		return nil, m.Start(ctx)
	case ActionResume:
		return nil, m.Resume(ctx)
	case ActionParticipant:
		return nil, m.SetParticipant(ctx, step.ID)
	case ActionFraming:
		return nil, m.SetFraming(ctx, step.Framing)
	case ActionShow:
		_, err := m.Show(ctx)
		return nil, err
	case ActionWait:
		h.clock.Advance(time.Duration(step.Ms) * time.Millisecond)
		return nil, nil
	case ActionAnswer:
		return nil, m.Answer(ctx, step.Choice)
	case ActionContinue:
		return m.Continue(ctx)
	case ActionAck:
		return nil, m.AcknowledgeFeedback(ctx)
	case ActionBack:
		return nil, m.Back(ctx)
	case ActionAdvance:
		return nil, m.Advance(ctx)
	case ActionReset:
		return nil, m.Reset(ctx)
	case ActionReload:
		return nil, h.boot(ctx)
	}
	return nil, fmt.Errorf("unknown action %q", step.Action)
}
