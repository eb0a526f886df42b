package session

import (
	"encoding/json"
	"fmt"
	"time"
)

// View is the top-level screen of the survey.
type View string

const (
	ViewIntro    View = "intro"
	ViewQuestion View = "question"
	ViewComplete View = "complete"
)

// Valid reports whether v is a known view.
func (v View) Valid() bool {
	switch v {
	case ViewIntro, ViewQuestion, ViewComplete:
		return true
	}
	return false
}

// TimestampLayout renders UTC instants with millisecond precision.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// Timestamp is a wall-clock instant serialized as ISO-8601 UTC with
// milliseconds.
type Timestamp struct {
	time.Time
}

// NewTimestamp returns a Timestamp for t in UTC.
func NewTimestamp(t time.Time) *Timestamp {
	return &Timestamp{Time: t.UTC()}
}

// String formats the timestamp with TimestampLayout.
func (t Timestamp) String() string {
	return t.UTC().Format(TimestampLayout)
}

// MarshalJSON implements json.Marshaler.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}
	parsed, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}
	t.Time = parsed.UTC()
	return nil
}

// Meta identifies the session and the client it ran on.
type Meta struct {
	ExperimentID     string     `json:"experimentId"`
	StartedAt        Timestamp  `json:"startedAt"`
	CompletedAt      *Timestamp `json:"completedAt"`
	SessionID        string     `json:"sessionId"`
	ParticipantID    *string    `json:"participantId"`
	UserAgent        string     `json:"userAgent"`
	Timezone         *string    `json:"timezone"`
	OfflineAfterLoad bool       `json:"offlineAfterLoad"`
}

// State is the navigation state.
type State struct {
	View    View   `json:"view"`
	Index   int    `json:"idx"`
	Framing string `json:"framing"`

	// AwaitingFeedback is set while the phase-1 hindsight step is displayed.
	AwaitingFeedback bool `json:"awaitingFeedback,omitempty"`
}

// QuestionRecord holds the participant's response to one question.
// Nil fields serialize as null until set.
type QuestionRecord struct {
	ID             string          `json:"id"`
	ShownAt        *Timestamp      `json:"shownAt"`
	AnsweredAt     *Timestamp      `json:"answeredAt"`
	Choice         *string         `json:"choice"`
	AIRecommended  *string         `json:"aiRecommended"`
	FramingUsed    *string         `json:"framingUsed"`
	AITextSeen     map[string]bool `json:"aiTextSeen"`
	ResponseTimeMs *int64          `json:"responseTimeMs"`
}

// Answered reports whether a choice has been recorded.
func (r *QuestionRecord) Answered() bool {
	return r.Choice != nil
}

// Followed reports whether the recorded choice equals the AI recommendation.
// ok is false when either side is absent.
func (r *QuestionRecord) Followed() (followed, ok bool) {
	if r.Choice == nil || r.AIRecommended == nil {
		return false, false
	}
	return *r.Choice == *r.AIRecommended, true
}

// Seen reports whether the framing key was displayed for this question.
func (r *QuestionRecord) Seen(framing string) bool {
	return r.AITextSeen[framing]
}

// Session is the complete mutable record of one participant's run.
type Session struct {
	Meta      Meta             `json:"meta"`
	State     State            `json:"state"`
	Questions []QuestionRecord `json:"questions"`
}

// Current returns the record at the current index, or nil when the index is
// out of range.
func (s *Session) Current() *QuestionRecord {
	if s.State.Index < 0 || s.State.Index >= len(s.Questions) {
		return nil
	}
	return &s.Questions[s.State.Index]
}

// Feedback is the hindsight step shown after a phase-1 answer.
type Feedback struct {
	QuestionID  string `json:"questionId"`
	Text        string `json:"text"`
	Choice      string `json:"choice"`
	Recommended string `json:"recommended"`
	Followed    bool   `json:"followed"`
}

func strPtr(s string) *string {
	return &s
}
