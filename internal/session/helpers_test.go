package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/roach88/trustlab/internal/catalog"
	"github.com/roach88/trustlab/internal/store"
	"github.com/roach88/trustlab/internal/testutil"
)

type fixture struct {
	m     *Machine
	store *store.Memory
	clock *testutil.FakeClock
	cat   *catalog.Catalog
}

// smallCatalog trims the default catalog to four questions split 2/2 with no
// participant requirement.
func smallCatalog() *catalog.Catalog {
	cat := catalog.Default()
	cat.Questions = cat.Questions[:4]
	cat.Experiment.TotalQuestions = 4
	cat.Experiment.PhaseSplitIndex = 2
	cat.Experiment.RequireParticipantID = false
	return cat
}

func newFixture(t *testing.T, cat *catalog.Catalog, opts ...Option) *fixture {
	t.Helper()
	f := &fixture{
		store: store.NewMemory(),
		clock: testutil.NewFakeClock(time.Time{}),
		cat:   cat,
	}
	base := []Option{
		WithClock(f.clock),
		WithIDGenerator(testutil.NewFixedIDGenerator("sess-1", "sess-2", "sess-3")),
		WithEnv(Env{UserAgent: "trustlab-test", Timezone: "America/New_York"}),
	}
	f.m = New(cat, f.store, append(base, opts...)...)
	require.NoError(t, f.m.Boot(context.Background()))
	return f
}

// started boots a small catalog and enters the first question.
func started(t *testing.T) *fixture {
	t.Helper()
	f := newFixture(t, smallCatalog())
	require.NoError(t, f.m.Start(context.Background()))
	return f
}

// answerAndMoveOn shows, answers with label and leaves the current question,
// acknowledging feedback when the question has it.
func (f *fixture) answerAndMoveOn(t *testing.T, label string) {
	t.Helper()
	ctx := context.Background()
	_, err := f.m.Show(ctx)
	require.NoError(t, err)
	f.clock.Advance(time.Second)
	require.NoError(t, f.m.Answer(ctx, label))
	fb, err := f.m.Continue(ctx)
	require.NoError(t, err)
	if fb != nil {
		require.NoError(t, f.m.AcknowledgeFeedback(ctx))
	}
}

// stored decodes the persisted record.
func (f *fixture) stored(t *testing.T) *Session {
	t.Helper()
	raw, found, err := f.store.Load(context.Background(), StorageKey(f.cat.Experiment.ID))
	require.NoError(t, err)
	require.True(t, found)
	s, err := Decode(raw, f.cat)
	require.NoError(t, err)
	return s
}

// persist writes the in-memory session to the store, bypassing the machine.
func (f *fixture) persist(t *testing.T) {
	t.Helper()
	raw, err := Encode(f.m.Session())
	require.NoError(t, err)
	require.NoError(t, f.store.Save(context.Background(), StorageKey(f.cat.Experiment.ID), raw))
}

func reverseShuffle(n int, swap func(i, j int)) {
	for i := 0; i < n/2; i++ {
		swap(i, n-1-i)
	}
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
