package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/roach88/trustlab/internal/catalog"
)

// DefaultFeedbackText is shown when a phase-1 question has no feedback.
const DefaultFeedbackText = "Hindsight: No additional information was available."

// Machine drives one Session through its views.
//
// Thread-safety: Machine is not safe for concurrent use. A presentation
// layer owns exactly one Machine.
type Machine struct {
	cat     *catalog.Catalog
	store   Store
	clock   Clock
	ids     IDGenerator
	env     Env
	shuffle ShuffleFunc
	logger  *slog.Logger

	sess *Session

	// timers holds the monotonic start of each question shown in this
	// process, keyed by record index.
	timers map[int]time.Time
}

// Option configures a Machine.
type Option func(*Machine)

// WithClock overrides the system clock.
func WithClock(c Clock) Option {
	return func(m *Machine) { m.clock = c }
}

// WithIDGenerator overrides UUIDv7 session ids.
func WithIDGenerator(g IDGenerator) Option {
	return func(m *Machine) { m.ids = g }
}

// WithEnv sets the client descriptors captured into new sessions.
func WithEnv(env Env) Option {
	return func(m *Machine) { m.env = env }
}

// WithShuffle overrides the in-phase shuffle source.
func WithShuffle(fn ShuffleFunc) Option {
	return func(m *Machine) { m.shuffle = fn }
}

// WithLogger sets the logger used for transitions and recovery.
func WithLogger(l *slog.Logger) Option {
	return func(m *Machine) { m.logger = l }
}

// New creates a Machine over cat and st. Call Boot or Open before any
// other operation.
func New(cat *catalog.Catalog, st Store, opts ...Option) *Machine {
	m := &Machine{
		cat:    cat,
		store:  st,
		clock:  SystemClock{},
		ids:    UUIDv7Generator{},
		logger: slog.Default(),
		timers: make(map[int]time.Time),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Catalog returns the catalog the machine runs.
func (m *Machine) Catalog() *catalog.Catalog {
	return m.cat
}

// Session returns the live session. Callers must treat it as read-only.
func (m *Machine) Session() *Session {
	return m.sess
}

func (m *Machine) key() string {
	return StorageKey(m.cat.Experiment.ID)
}

// Boot loads the stored session, or creates a fresh one when none exists
// or the stored record is unreadable, then forces the intro view.
func (m *Machine) Boot(ctx context.Context) error {
	if err := m.load(ctx); err != nil {
		return err
	}
	m.sess.State.View = ViewIntro
	m.sess.State.AwaitingFeedback = false
	return m.save(ctx)
}

// Open loads the stored session like Boot but keeps its view. Per-action
// command surfaces use it to continue where the previous action stopped.
func (m *Machine) Open(ctx context.Context) error {
	if err := m.load(ctx); err != nil {
		return err
	}
	return m.save(ctx)
}

func (m *Machine) load(ctx context.Context) error {
	raw, found, err := m.store.Load(ctx, m.key())
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	if found {
		sess, err := Decode(raw, m.cat)
		if err == nil {
			m.sess = sess
			m.timers = make(map[int]time.Time)
			m.logger.Debug("session loaded",
				"session_id", sess.Meta.SessionID,
				"view", sess.State.View,
				"idx", sess.State.Index)
			return nil
		}
		m.logger.Warn("discarding unreadable session record", "key", m.key(), "error", err)
	}
	return m.fresh()
}

func (m *Machine) fresh() error {
	sess, err := Init(m.cat, m.clock.Now(), m.ids, m.env, m.shuffle)
	if err != nil {
		return err
	}
	m.sess = sess
	m.timers = make(map[int]time.Time)
	m.logger.Debug("session created", "session_id", sess.Meta.SessionID)
	return nil
}

func (m *Machine) save(ctx context.Context) error {
	raw, err := Encode(m.sess)
	if err != nil {
		return err
	}
	if err := m.store.Save(ctx, m.key(), raw); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (m *Machine) require(views ...View) error {
	if m.sess == nil {
		return ErrNoSession
	}
	for _, v := range views {
		if m.sess.State.View == v {
			return nil
		}
	}
	return newError(ErrCodeWrongView, "not available in the %s view", m.sess.State.View)
}

func (m *Machine) transition(to View) {
	from := m.sess.State.View
	m.sess.State.View = to
	if from != to {
		m.logger.Debug("session transition", "from", from, "to", to, "idx", m.sess.State.Index)
	}
}

// Reset clears the stored record and starts over in the intro view.
func (m *Machine) Reset(ctx context.Context) error {
	if err := m.store.Clear(ctx, m.key()); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	if err := m.fresh(); err != nil {
		return err
	}
	return m.save(ctx)
}

// SetParticipant records the participant id, trimmed of surrounding space.
func (m *Machine) SetParticipant(ctx context.Context, id string) error {
	if err := m.require(ViewIntro); err != nil {
		return err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrParticipantEmpty
	}
	m.sess.Meta.ParticipantID = strPtr(id)
	return m.save(ctx)
}

func (m *Machine) checkParticipant() error {
	if m.cat.Experiment.RequireParticipantID && m.sess.Meta.ParticipantID == nil {
		return ErrParticipantRequired
	}
	return nil
}

// Start enters the first question.
func (m *Machine) Start(ctx context.Context) error {
	if err := m.require(ViewIntro); err != nil {
		return err
	}
	if err := m.checkParticipant(); err != nil {
		return err
	}
	m.sess.State.Index = 0
	m.sess.State.AwaitingFeedback = false
	m.transition(ViewQuestion)
	return m.save(ctx)
}

// Resume enters the first unanswered question, or the complete view when
// every question is answered.
func (m *Machine) Resume(ctx context.Context) error {
	if err := m.require(ViewIntro); err != nil {
		return err
	}
	if err := m.checkParticipant(); err != nil {
		return err
	}
	m.sess.State.AwaitingFeedback = false
	next := -1
	for i := range m.sess.Questions {
		if !m.sess.Questions[i].Answered() {
			next = i
			break
		}
	}
	if next < 0 {
		m.complete()
	} else {
		m.sess.State.Index = next
		m.transition(ViewQuestion)
	}
	return m.save(ctx)
}

func (m *Machine) complete() {
	if m.sess.Meta.CompletedAt == nil {
		m.sess.Meta.CompletedAt = NewTimestamp(m.clock.Now())
	}
	m.transition(ViewComplete)
}

// CurrentQuestion returns the catalog content and record for the current
// index.
func (m *Machine) CurrentQuestion() (*catalog.Question, *QuestionRecord, error) {
	if m.sess == nil {
		return nil, nil, ErrNoSession
	}
	rec := m.sess.Current()
	if rec == nil {
		return nil, nil, ErrIndexOutOfRange
	}
	q, ok := m.cat.Question(rec.ID)
	if !ok {
		return nil, rec, newError(ErrCodeMissingContent, "no content for question %q", rec.ID)
	}
	return q, rec, nil
}

// Show records that the current question is displayed and marks the active
// framing as seen.
func (m *Machine) Show(ctx context.Context) (*catalog.Question, error) {
	if err := m.require(ViewQuestion); err != nil {
		return nil, err
	}
	q, rec, err := m.CurrentQuestion()
	if err != nil {
		return nil, err
	}
	m.markShown(m.sess.State.Index, rec)
	rec.AITextSeen[m.sess.State.Framing] = true
	if err := m.save(ctx); err != nil {
		return nil, err
	}
	return q, nil
}

// RecordShown sets shownAt for idx if unset and starts its timer. Later
// calls are no-ops.
func (m *Machine) RecordShown(ctx context.Context, idx int) error {
	if m.sess == nil {
		return ErrNoSession
	}
	if idx < 0 || idx >= len(m.sess.Questions) {
		return newError(ErrCodeIndexOutOfRange, "index %d out of range [0,%d)", idx, len(m.sess.Questions))
	}
	if !m.markShown(idx, &m.sess.Questions[idx]) {
		return nil
	}
	return m.save(ctx)
}

func (m *Machine) markShown(idx int, rec *QuestionRecord) bool {
	if rec.ShownAt != nil {
		return false
	}
	now := m.clock.Now()
	rec.ShownAt = NewTimestamp(now)
	m.timers[idx] = now
	return true
}

// SetFraming switches the active framing. In the question view the framing
// is also added to the current record's seen set.
func (m *Machine) SetFraming(ctx context.Context, key string) error {
	if m.sess == nil {
		return ErrNoSession
	}
	if !m.cat.HasFraming(key) {
		return newError(ErrCodeUnknownFraming, "unknown framing %q (have %s)",
			key, strings.Join(m.cat.FramingKeys(), ", "))
	}
	m.sess.State.Framing = key
	if m.sess.State.View == ViewQuestion {
		if rec := m.sess.Current(); rec != nil {
			rec.AITextSeen[key] = true
		}
	}
	return m.save(ctx)
}

// Answer records label as the choice for the current question. Answering
// again before advancing overwrites choice, answeredAt, framingUsed and
// responseTimeMs. Continue stamps the last three again when the participant
// moves on.
func (m *Machine) Answer(ctx context.Context, label string) error {
	if err := m.require(ViewQuestion); err != nil {
		return err
	}
	q, rec, err := m.CurrentQuestion()
	if err != nil {
		return err
	}
	if !q.HasOption(label) {
		return newError(ErrCodeInvalidChoice, "%q is not an option of %s", label, q.ID)
	}

	idx := m.sess.State.Index
	if m.markShown(idx, rec) {
		rec.AITextSeen[m.sess.State.Framing] = true
	}
	rec.Choice = strPtr(label)
	m.stampAnswer(idx, rec)
	m.sess.State.AwaitingFeedback = false

	m.logger.Debug("answer recorded", "question", rec.ID, "choice", label, "response_ms", *rec.ResponseTimeMs)
	return m.save(ctx)
}

// stampAnswer sets answeredAt, framingUsed and responseTimeMs from the
// current clock and framing. Latency runs from the in-process timer, or
// from shownAt when the record was loaded from storage.
func (m *Machine) stampAnswer(idx int, rec *QuestionRecord) {
	now := m.clock.Now()
	var elapsed time.Duration
	if start, ok := m.timers[idx]; ok {
		elapsed = now.Sub(start)
	} else if rec.ShownAt != nil {
		elapsed = now.Sub(rec.ShownAt.Time)
	}
	ms := max(elapsed.Round(time.Millisecond).Milliseconds(), 0)

	rec.AnsweredAt = NewTimestamp(now)
	rec.FramingUsed = strPtr(m.sess.State.Framing)
	rec.ResponseTimeMs = &ms
}

// Continue finalizes the answered current question, stamping answeredAt,
// framingUsed and responseTimeMs at this moment, then moves past it.
// Phase-1 questions enter the feedback step and return it; other questions
// advance and return nil. Continuing again while feedback is displayed
// returns the same feedback without restamping.
func (m *Machine) Continue(ctx context.Context) (*Feedback, error) {
	if err := m.require(ViewQuestion); err != nil {
		return nil, err
	}
	q, rec, err := m.CurrentQuestion()
	if err != nil {
		return nil, err
	}
	if !rec.Answered() {
		return nil, ErrNoChoice
	}
	feedback := HasFeedback(m.sess.State.Index, m.cat.Experiment.PhaseSplitIndex)
	if feedback && m.sess.State.AwaitingFeedback {
		return feedbackFor(q, rec), nil
	}

	m.stampAnswer(m.sess.State.Index, rec)
	m.logger.Debug("answer finalized", "question", rec.ID, "framing", *rec.FramingUsed, "response_ms", *rec.ResponseTimeMs)

	if feedback {
		m.sess.State.AwaitingFeedback = true
		if err := m.save(ctx); err != nil {
			return nil, err
		}
		return feedbackFor(q, rec), nil
	}
	return nil, m.Advance(ctx)
}

// PendingFeedback returns the feedback step being displayed, if any.
func (m *Machine) PendingFeedback() (*Feedback, bool) {
	if m.sess == nil || m.sess.State.View != ViewQuestion || !m.sess.State.AwaitingFeedback {
		return nil, false
	}
	q, rec, err := m.CurrentQuestion()
	if err != nil || !rec.Answered() {
		return nil, false
	}
	return feedbackFor(q, rec), true
}

func feedbackFor(q *catalog.Question, rec *QuestionRecord) *Feedback {
	text := strings.TrimSpace(q.Feedback)
	if text == "" {
		text = DefaultFeedbackText
	}
	fb := &Feedback{
		QuestionID: q.ID,
		Text:       text,
		Choice:     *rec.Choice,
	}
	if rec.AIRecommended != nil {
		fb.Recommended = *rec.AIRecommended
	}
	fb.Followed, _ = rec.Followed()
	return fb
}

// AcknowledgeFeedback leaves the feedback step and advances.
func (m *Machine) AcknowledgeFeedback(ctx context.Context) error {
	if err := m.require(ViewQuestion); err != nil {
		return err
	}
	if !m.sess.State.AwaitingFeedback {
		return ErrNoFeedbackPending
	}
	return m.Advance(ctx)
}

// Advance moves to the next question, or to the complete view after the
// last one. Presentation layers call it once per answered question.
func (m *Machine) Advance(ctx context.Context) error {
	if err := m.require(ViewQuestion); err != nil {
		return err
	}
	m.sess.State.AwaitingFeedback = false
	if m.sess.State.Index >= len(m.sess.Questions)-1 {
		m.complete()
	} else {
		m.sess.State.Index++
	}
	return m.save(ctx)
}

// Back returns to the previous question. It is a no-op on the first one.
func (m *Machine) Back(ctx context.Context) error {
	if err := m.require(ViewQuestion); err != nil {
		return err
	}
	if m.sess.State.Index == 0 && !m.sess.State.AwaitingFeedback {
		return nil
	}
	m.sess.State.AwaitingFeedback = false
	if m.sess.State.Index > 0 {
		m.sess.State.Index--
	}
	return m.save(ctx)
}

// Progress returns answered and total counts.
func (m *Machine) Progress() Progress {
	if m.sess == nil {
		return Progress{Total: m.cat.Experiment.TotalQuestions}
	}
	return Progress{Answered: m.sess.Answered(), Total: m.cat.Experiment.TotalQuestions}
}

// ComplianceStats returns follow rates split by phase.
func (m *Machine) ComplianceStats() Compliance {
	if m.sess == nil {
		return Compliance{}
	}
	return m.sess.Compliance(m.cat.Experiment.PhaseSplitIndex)
}

// ProgressText is the status line for the current view.
func (m *Machine) ProgressText() string {
	if m.sess == nil {
		return "Not started"
	}
	return m.sess.ProgressText(m.cat.Experiment.TotalQuestions)
}

// IsUserError reports whether err is a recoverable session error that
// should be shown to the participant rather than treated as a failure.
func IsUserError(err error) bool {
	var se *Error
	return errors.As(err, &se) && se.Code != ErrCodeCorruptRecord
}
