package session

import (
	"math/rand"
	"time"

	"github.com/roach88/trustlab/internal/catalog"
)

// ShuffleFunc permutes n elements through swap, like rand.Shuffle.
type ShuffleFunc func(n int, swap func(i, j int))

// Env describes the client a session is created on.
type Env struct {
	UserAgent string
	Timezone  string
}

// Init creates a fresh session in the intro view with one empty record per
// catalog question. With randomizeWithinPhases set, records are shuffled
// inside each phase so phase membership is preserved.
func Init(cat *catalog.Catalog, now time.Time, ids IDGenerator, env Env, shuffle ShuffleFunc) (*Session, error) {
	if cat == nil || len(cat.Questions) == 0 {
		return nil, ErrEmptyCatalog
	}
	if shuffle == nil {
		shuffle = rand.Shuffle
	}

	records := make([]QuestionRecord, len(cat.Questions))
	for i, q := range cat.Questions {
		rec := QuestionRecord{
			ID:         q.ID,
			AITextSeen: map[string]bool{},
		}
		if q.AI.Recommended != "" {
			rec.AIRecommended = strPtr(q.AI.Recommended)
		}
		records[i] = rec
	}

	if cat.Experiment.RandomizeWithinPhases {
		split := min(max(cat.Experiment.PhaseSplitIndex, 0), len(records))
		p1, p2 := records[:split], records[split:]
		shuffle(len(p1), func(i, j int) { p1[i], p1[j] = p1[j], p1[i] })
		shuffle(len(p2), func(i, j int) { p2[i], p2[j] = p2[j], p2[i] })
	}

	s := &Session{
		Meta: Meta{
			ExperimentID:     cat.Experiment.ID,
			StartedAt:        *NewTimestamp(now),
			SessionID:        ids.Generate(),
			UserAgent:        env.UserAgent,
			OfflineAfterLoad: true,
		},
		State: State{
			View:    ViewIntro,
			Index:   0,
			Framing: cat.DefaultFraming(),
		},
		Questions: records,
	}
	if env.Timezone != "" {
		s.Meta.Timezone = strPtr(env.Timezone)
	}
	return s, nil
}
