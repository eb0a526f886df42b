package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/roach88/trustlab/internal/catalog"
	"github.com/roach88/trustlab/internal/export"
	"github.com/roach88/trustlab/internal/session"
)

// noticeTimeout is how long export confirmations stay on screen.
const noticeTimeout = 5 * time.Second

// Config wires the model to its surroundings.
type Config struct {
	// ExportDir receives export files.
	ExportDir string

	// Log records exports. May be nil.
	Log export.Log

	// Clock stamps exports. Defaults to the system clock.
	Clock session.Clock
}

// Model is the root bubbletea model for the survey.
type Model struct {
	machine *session.Machine
	cfg     Config
	ctx     context.Context

	// Participant id entry on the intro view
	editing bool
	input   string

	// Messages
	errorMessage string
	notice       string
	noticeSeq    int

	// UI state
	width  int
	height int
}

// New creates a Model over a booted machine.
func New(m *session.Machine, cfg Config) Model {
	if cfg.Clock == nil {
		cfg.Clock = session.SystemClock{}
	}
	model := Model{
		machine: m,
		cfg:     cfg,
		ctx:     context.Background(),
	}
	model.display()
	return model
}

// Init has nothing to start; the session is already loaded.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update processes messages and returns the updated model and any commands.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case ClearNoticeMsg:
		if msg.Seq == m.noticeSeq {
			m.notice = ""
		}
		return m, nil
	}

	return m, nil
}

// handleKey processes key presses.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == KeyCtrlC {
		return m, tea.Quit
	}
	if m.editing {
		return m.handleInput(msg)
	}

	m.errorMessage = ""
	s := m.machine.Session()

	switch key {
	case KeyQuit:
		return m, tea.Quit
	case KeyExportJSON:
		return m.export(export.FormatJSON)
	case KeyExportCSV:
		return m.export(export.FormatCSV)
	case KeyRestart:
		m.apply(m.machine.Reset(m.ctx))
		return m, nil
	case KeyFraming:
		m.apply(m.machine.SetFraming(m.ctx, m.nextFraming()))
		return m, nil
	}

	switch s.State.View {
	case session.ViewIntro:
		switch key {
		case KeyStart:
			m.apply(m.machine.Start(m.ctx))
		case KeyResume:
			m.apply(m.machine.Resume(m.ctx))
		case KeyParticipant:
			m.editing = true
			m.input = ""
			if s.Meta.ParticipantID != nil {
				m.input = *s.Meta.ParticipantID
			}
		}

	case session.ViewQuestion:
		if _, pending := m.machine.PendingFeedback(); pending {
			switch key {
			case KeyContinue:
				m.apply(m.machine.AcknowledgeFeedback(m.ctx))
			case KeyBack:
				m.apply(m.machine.Back(m.ctx))
			}
			return m, nil
		}
		switch key {
		case KeyContinue:
			_, err := m.machine.Continue(m.ctx)
			m.apply(err)
		case KeyBack:
			m.apply(m.machine.Back(m.ctx))
		case KeyUp:
			m.pickRelative(-1)
		case KeyDown:
			m.pickRelative(1)
		default:
			if n, err := strconv.Atoi(key); err == nil && n >= 1 && n <= 9 {
				m.pick(n - 1)
			}
		}
	}

	return m, nil
}

// handleInput edits the participant id.
func (m Model) handleInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.editing = false
		m.errorMessage = ""
		m.apply(m.machine.SetParticipant(m.ctx, m.input))
	case tea.KeyEsc:
		m.editing = false
	case tea.KeyBackspace:
		if r := []rune(m.input); len(r) > 0 {
			m.input = string(r[:len(r)-1])
		}
	case tea.KeyRunes, tea.KeySpace:
		m.input += string(msg.Runes)
	}
	return m, nil
}

// apply shows err inline and records the display of whatever is now on
// screen.
func (m *Model) apply(err error) {
	if err != nil {
		if !session.IsUserError(err) {
			slog.Error("session update failed", "error", err)
		}
		m.errorMessage = err.Error()
		return
	}
	m.display()
}

// display records that the current question is on screen. A pending
// feedback step covers the question, so nothing is recorded then.
func (m *Model) display() {
	s := m.machine.Session()
	if s == nil || s.State.View != session.ViewQuestion {
		return
	}
	if _, pending := m.machine.PendingFeedback(); pending {
		return
	}
	if _, err := m.machine.Show(m.ctx); err != nil {
		m.errorMessage = err.Error()
	}
}

// pick answers the current question with the i-th option.
func (m *Model) pick(i int) {
	q, _, err := m.machine.CurrentQuestion()
	if err != nil {
		m.errorMessage = err.Error()
		return
	}
	if i < 0 || i >= len(q.Options) {
		return
	}
	m.apply(m.machine.Answer(m.ctx, q.Options[i].Label))
}

// pickRelative answers with the option next to the current choice.
func (m *Model) pickRelative(delta int) {
	q, rec, err := m.machine.CurrentQuestion()
	if err != nil {
		m.errorMessage = err.Error()
		return
	}
	i := -1
	if delta < 0 {
		i = len(q.Options)
	}
	if rec.Choice != nil {
		i = optionIndex(q, *rec.Choice)
	}
	i = max(0, min(len(q.Options)-1, i+delta))
	m.pick(i)
}

func optionIndex(q *catalog.Question, label string) int {
	for i, o := range q.Options {
		if o.Label == label {
			return i
		}
	}
	return -1
}

// nextFraming returns the framing after the active one, wrapping around.
func (m Model) nextFraming() string {
	keys := m.machine.Catalog().FramingKeys()
	current := m.machine.Session().State.Framing
	for i, k := range keys {
		if k == current {
			return keys[(i+1)%len(keys)]
		}
	}
	return keys[0]
}

// export writes the session and shows where it went.
func (m Model) export(f export.Format) (tea.Model, tea.Cmd) {
	res, err := export.WriteFile(m.ctx, m.cfg.ExportDir, f, m.machine.Session(), m.machine.Catalog(), m.cfg.Clock.Now(), m.cfg.Log)
	if err != nil {
		slog.Error("export failed", "format", f, "error", err)
		m.errorMessage = err.Error()
		return m, nil
	}
	m.noticeSeq++
	m.notice = fmt.Sprintf("Exported %s to %s", strings.ToUpper(string(f)), res.Path)
	seq := m.noticeSeq
	return m, tea.Tick(noticeTimeout, func(time.Time) tea.Msg {
		return ClearNoticeMsg{Seq: seq}
	})
}

// View renders the current screen.
func (m Model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	var sections []string

	// Header
	sections = append(sections, m.renderHeader())

	// Divider
	sections = append(sections, DividerStyle.Render(strings.Repeat("─", m.width)))

	// Body
	s := m.machine.Session()
	switch s.State.View {
	case session.ViewIntro:
		sections = append(sections, m.renderIntro())
	case session.ViewQuestion:
		if fb, pending := m.machine.PendingFeedback(); pending {
			sections = append(sections, m.renderFeedback(fb))
		} else {
			sections = append(sections, m.renderQuestion())
		}
	case session.ViewComplete:
		sections = append(sections, m.renderComplete())
	}

	// Divider
	sections = append(sections, DividerStyle.Render(strings.Repeat("─", m.width)))

	// Error bar
	if m.errorMessage != "" {
		sections = append(sections, ErrorStyle.Render("Error: ")+ErrorTextStyle.Render(m.errorMessage))
	}
	if m.notice != "" {
		sections = append(sections, NoticeStyle.Render(m.notice))
	}

	// Footer
	sections = append(sections, m.renderFooter())

	return strings.Join(sections, "\n")
}

func (m Model) renderHeader() string {
	cat := m.machine.Catalog()
	s := m.machine.Session()
	title := TitleStyle.Render(cat.Experiment.Title)
	status := StatusStyle.Render(fmt.Sprintf("  %s  framing: %s", m.machine.ProgressText(), s.State.Framing))
	return title + status
}

func (m Model) renderIntro() string {
	var lines []string
	if in := m.machine.Catalog().Instructions; in != nil {
		lines = append(lines, HeadingStyle.Render(in.ConsentTitle), "")
		lines = append(lines, wrapText(in.ConsentText, m.textWidth())...)
		lines = append(lines, "")
	}

	s := m.machine.Session()
	switch {
	case m.editing:
		lines = append(lines, "Participant ID: "+InputStyle.Render(m.input+"▌"))
		lines = append(lines, DimStyle.Render("Enter to save, Esc to cancel"))
	case s.Meta.ParticipantID != nil:
		lines = append(lines, "Participant ID: "+SelectedStyle.Render(*s.Meta.ParticipantID))
	default:
		label := "Participant ID: (not set)"
		if m.machine.Catalog().Experiment.RequireParticipantID {
			label += " required"
		}
		lines = append(lines, DimStyle.Render(label))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderQuestion() string {
	q, rec, err := m.machine.CurrentQuestion()
	if err != nil {
		return ErrorTextStyle.Render(err.Error())
	}
	s := m.machine.Session()
	width := m.textWidth()

	var lines []string
	lines = append(lines, HeadingStyle.Render(fmt.Sprintf("Question %d of %d: %s", s.State.Index+1, len(s.Questions), q.Title)))
	lines = append(lines, "")
	lines = append(lines, wrapText(q.Scenario, width)...)
	lines = append(lines, "")
	lines = append(lines, wrapText(q.Prompt, width)...)
	lines = append(lines, "")

	for i, o := range q.Options {
		text := fmt.Sprintf("%d. %s) %s", i+1, o.Label, o.Title)
		if rec.Choice != nil && *rec.Choice == o.Label {
			lines = append(lines, SelectedStyle.Render("> "+text))
		} else {
			lines = append(lines, OptionStyle.Render("  "+text))
		}
		for _, wl := range wrapText(o.Desc, max(10, width-5)) {
			lines = append(lines, DimStyle.Render("     "+wl))
		}
	}
	lines = append(lines, "")

	guidance := GuidanceLabelStyle.Render("AI recommends "+q.AI.Recommended) + "\n" +
		strings.Join(wrapText(q.Explanation(s.State.Framing), max(10, width-4)), "\n")
	lines = append(lines, GuidanceBoxStyle.Render(guidance))

	return strings.Join(lines, "\n")
}

func (m Model) renderFeedback(fb *session.Feedback) string {
	width := m.textWidth()
	var lines []string
	lines = append(lines, HeadingStyle.Render("Feedback on "+fb.QuestionID), "")
	lines = append(lines, wrapText(fb.Text, max(10, width-4))...)
	lines = append(lines, "")
	verdict := DivergedStyle.Render(fmt.Sprintf("You chose %s; the AI recommended %s.", fb.Choice, fb.Recommended))
	if fb.Followed {
		verdict = FollowedStyle.Render(fmt.Sprintf("You chose %s, as the AI recommended.", fb.Choice))
	}
	lines = append(lines, verdict)
	return FeedbackBoxStyle.Render(strings.Join(lines, "\n"))
}

func (m Model) renderComplete() string {
	c := m.machine.ComplianceStats()
	lines := []string{
		HeadingStyle.Render("Thank you. The session is complete."),
		"",
		fmt.Sprintf("Followed AI overall: %d/%d", c.Overall.Followed, c.Overall.Total),
		fmt.Sprintf("Phase 1 (with feedback): %d/%d", c.Phase1.Followed, c.Phase1.Total),
		fmt.Sprintf("Phase 2 (no feedback): %d/%d", c.Phase2.Followed, c.Phase2.Total),
		"",
		DimStyle.Render("Export the results with j (JSON) or c (CSV)."),
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderFooter() string {
	var parts []string
	hint := func(key, desc string) {
		parts = append(parts, FooterKeyStyle.Render(key)+FooterDescStyle.Render(" "+desc))
	}

	s := m.machine.Session()
	_, pending := m.machine.PendingFeedback()
	switch {
	case m.editing:
		hint("Enter", "Save")
		hint("Esc", "Cancel")
		return strings.Join(parts, "  ")
	case s.State.View == session.ViewIntro:
		hint("s", "Start")
		hint("r", "Resume")
		hint("p", "Participant")
		hint("f", "Framing")
	case s.State.View == session.ViewQuestion && pending:
		hint("Enter", "Continue")
		hint("b", "Back")
	case s.State.View == session.ViewQuestion:
		hint("1-9/↑↓", "Choose")
		hint("f", "Framing")
		hint("Enter", "Continue")
		hint("b", "Back")
	}
	hint("j/c", "Export")
	hint("R", "Restart")
	hint("q", "Quit")

	return strings.Join(parts, "  ")
}

// Helpers

func (m Model) textWidth() int {
	return max(20, m.width-2)
}

func wrapText(text string, width int) []string {
	if width <= 0 {
		return []string{text}
	}

	var lines []string
	for _, paragraph := range strings.Split(text, "\n") {
		var current string
		for _, word := range strings.Fields(paragraph) {
			if current == "" {
				current = word
			} else if lipgloss.Width(current)+1+lipgloss.Width(word) <= width {
				current += " " + word
			} else {
				lines = append(lines, current)
				current = word
			}
		}
		lines = append(lines, current)
	}
	if len(lines) == 0 {
		return []string{""}
	}
	return lines
}
