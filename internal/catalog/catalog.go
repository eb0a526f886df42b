package catalog

// Framing is one alternative phrasing of the AI recommendation.
type Framing struct {
	Key   string `json:"key" yaml:"key"`
	Label string `json:"label" yaml:"label"`
}

// Experiment is the static experiment configuration.
type Experiment struct {
	ID             string `json:"id" yaml:"id"`
	Title          string `json:"title" yaml:"title"`
	TotalQuestions int    `json:"totalQuestions" yaml:"totalQuestions"`

	// PhaseSplitIndex is the number of questions in phase 1.
	PhaseSplitIndex int `json:"phaseSplitIndex" yaml:"phaseSplitIndex"`

	OptionLabels          []string  `json:"optionLabels,omitempty" yaml:"optionLabels,omitempty"`
	Framings              []Framing `json:"framings" yaml:"framings"`
	RequireParticipantID  bool      `json:"requireParticipantId" yaml:"requireParticipantId"`
	RandomizeWithinPhases bool      `json:"randomizeWithinPhases" yaml:"randomizeWithinPhases"`
}

// Instructions is the text shown on the intro view.
type Instructions struct {
	ConsentTitle string `json:"consentTitle" yaml:"consentTitle"`
	ConsentText  string `json:"consentText" yaml:"consentText"`
}

// Option is one answer choice.
type Option struct {
	Label string `json:"label" yaml:"label"`
	Title string `json:"title" yaml:"title"`
	Desc  string `json:"desc" yaml:"desc"`
}

// Guidance is the AI block of a question. The recommendation is the same
// under every framing; only the explanation text varies.
type Guidance struct {
	Recommended string            `json:"recommended" yaml:"recommended"`
	Explanation map[string]string `json:"explanation" yaml:"explanation"`
}

// Question is one decision scenario.
type Question struct {
	ID       string   `json:"id" yaml:"id"`
	Title    string   `json:"title" yaml:"title"`
	Scenario string   `json:"scenario" yaml:"scenario"`
	Prompt   string   `json:"prompt" yaml:"prompt"`
	Options  []Option `json:"options" yaml:"options"`
	AI       Guidance `json:"ai" yaml:"ai"`
	Feedback string   `json:"feedback,omitempty" yaml:"feedback,omitempty"`
}

// Catalog is the complete content dataset.
type Catalog struct {
	Experiment   Experiment    `json:"experiment" yaml:"experiment"`
	Instructions *Instructions `json:"instructions,omitempty" yaml:"instructions,omitempty"`
	Questions    []Question    `json:"questions" yaml:"questions"`
}

// Question returns the question with the given id.
func (c *Catalog) Question(id string) (*Question, bool) {
	for i := range c.Questions {
		if c.Questions[i].ID == id {
			return &c.Questions[i], true
		}
	}
	return nil, false
}

// FramingKeys returns the framing keys in configured order.
func (c *Catalog) FramingKeys() []string {
	keys := make([]string, len(c.Experiment.Framings))
	for i, f := range c.Experiment.Framings {
		keys[i] = f.Key
	}
	return keys
}

// HasFraming reports whether key is a configured framing.
func (c *Catalog) HasFraming(key string) bool {
	for _, f := range c.Experiment.Framings {
		if f.Key == key {
			return true
		}
	}
	return false
}

// DefaultFraming returns the first configured framing key, or "" if none.
func (c *Catalog) DefaultFraming() string {
	if len(c.Experiment.Framings) == 0 {
		return ""
	}
	return c.Experiment.Framings[0].Key
}

// Option returns the option with the given label.
func (q *Question) Option(label string) (*Option, bool) {
	for i := range q.Options {
		if q.Options[i].Label == label {
			return &q.Options[i], true
		}
	}
	return nil, false
}

// HasOption reports whether label is one of the question's option labels.
func (q *Question) HasOption(label string) bool {
	_, ok := q.Option(label)
	return ok
}

// Explanation returns the guidance text for a framing key, or "" if the
// question has none for that key.
func (q *Question) Explanation(framing string) string {
	return q.AI.Explanation[framing]
}
