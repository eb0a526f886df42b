package catalog

import "fmt"

const (
	defaultScenario = "A fast-moving tropical storm has triggered flooding across Miami. " +
		"Multiple neighborhoods report power loss, blocked roads, and rising water levels. " +
		"You have limited crews and uncertain reports from the field."

	defaultPrompt = "Given incomplete information and time pressure, what is your best next action?"

	defaultFeedback = "Hindsight: Conditions evolved unpredictably. A different allocation could have " +
		"helped some areas, but tradeoffs were unavoidable."

	defaultConsent = `You will complete 20 decisions in a simulated disaster-response setting.
These decisions are intentionally ambiguous; there are no objectively correct answers.
We measure whether and when you follow AI guidance.

- Questions 1-10 include AI guidance + hindsight feedback.
- Questions 11-20 include AI guidance only (no feedback).

Answer as if you are the incident commander making real-time choices.`
)

// Default returns the built-in MIAMIRESCUE catalog: twenty field-operations
// decisions, recommendations rotating A, B, C, and hindsight feedback on the
// first ten. Each call returns a fresh copy.
func Default() *Catalog {
	const total = 20
	cat := &Catalog{
		Experiment: Experiment{
			ID:              "miamirescue-trust-v2",
			Title:           "MIAMIRESCUE Disaster Response Simulation",
			TotalQuestions:  total,
			PhaseSplitIndex: 10,
			OptionLabels:    []string{"A", "B", "C"},
			Framings: []Framing{
				{Key: "simple", Label: "Simple"},
				{Key: "evidence", Label: "Evidence-based"},
				{Key: "comparative", Label: "Comparative"},
			},
			RequireParticipantID:  true,
			RandomizeWithinPhases: false,
		},
		Instructions: &Instructions{
			ConsentTitle: "Instructions",
			ConsentText:  defaultConsent,
		},
		Questions: make([]Question, 0, total),
	}

	for i := 1; i <= total; i++ {
		rec := []string{"C", "A", "B"}[i%3]
		q := Question{
			ID:       fmt.Sprintf("Q%d", i),
			Title:    fmt.Sprintf("Decision %d: Field Operations", i),
			Scenario: defaultScenario,
			Prompt:   defaultPrompt,
			Options: []Option{
				{Label: "A", Title: "Concentrate resources", Desc: "Send the largest team to the densest area with the most reported calls."},
				{Label: "B", Title: "Distribute coverage", Desc: "Split teams across multiple areas to reduce risk of missing critical incidents."},
				{Label: "C", Title: "Hold for verification", Desc: "Pause dispatch briefly to validate reports and reduce misallocation."},
			},
			AI: Guidance{
				Recommended: rec,
				Explanation: map[string]string{
					"simple":      fmt.Sprintf("Choose option %s.", rec),
					"evidence":    fmt.Sprintf("Choose option %s. It best balances speed and risk based on typical disaster triage patterns and uncertainty handling.", rec),
					"comparative": fmt.Sprintf("Choose option %s. The alternatives either overcommit too early or delay action when uncertainty is unavoidable.", rec),
				},
			},
		}
		if i <= cat.Experiment.PhaseSplitIndex {
			q.Feedback = defaultFeedback
		}
		cat.Questions = append(cat.Questions, q)
	}

	return cat
}
