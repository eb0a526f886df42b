package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/trustlab/internal/session"
)

// Scenario defines a scripted survey session.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Catalog is the path to a catalog file, relative to the scenario file.
	// Empty selects the built-in catalog.
	Catalog string `yaml:"catalog,omitempty"`

	// Participant, if set, is recorded right after boot.
	Participant string `yaml:"participant,omitempty"`

	// SessionID fixes the generated session id. Defaults to
	// "test-session-default".
	SessionID string `yaml:"session_id,omitempty"`

	// Steps are the participant inputs, applied in order.
	Steps []Step `yaml:"steps"`

	// Expect validates the final session.
	Expect []Assertion `yaml:"expect"`
}

// Step is one participant input.
type Step struct {
	// Action is one of the Action* constants.
	Action string `yaml:"action"`

	// Choice is the option label for "answer".
	Choice string `yaml:"choice,omitempty"`

	// Framing is the framing key for "framing".
	Framing string `yaml:"framing,omitempty"`

	// ID is the participant id for "participant".
	ID string `yaml:"id,omitempty"`

	// Ms is the clock advance for "wait".
	Ms int64 `yaml:"ms,omitempty"`

	// Error is the expected session error code, if the step should fail.
	Error session.ErrorCode `yaml:"error,omitempty"`

	// Feedback, for "continue", asserts whether a feedback step was shown.
	Feedback *bool `yaml:"feedback,omitempty"`
}

// Step actions.
const (
	ActionStart       = "start"
	ActionResume      = "resume"
	ActionParticipant = "participant"
	ActionFraming     = "framing"
	ActionShow        = "show"
	ActionWait        = "wait"
	ActionAnswer      = "answer"
	ActionContinue    = "continue"
	ActionAck         = "ack"
	ActionBack        = "back"
	ActionAdvance     = "advance"
	ActionReset       = "reset"
	ActionReload      = "reload"
)

var knownActions = map[string]bool{
	ActionStart: true, ActionResume: true, ActionParticipant: true,
	ActionFraming: true, ActionShow: true, ActionWait: true,
	ActionAnswer: true, ActionContinue: true, ActionAck: true,
	ActionBack: true, ActionAdvance: true, ActionReset: true,
	ActionReload: true,
}

// Assertion validates the final session.
type Assertion struct {
	// Type specifies the assertion type:
	// - "view": final view, and index when given
	// - "progress": answered count
	// - "compliance": followed/total for a phase
	// - "record": fields of one question record
	// - "completed": whether completedAt is set
	Type string `yaml:"type"`

	View  string `yaml:"view,omitempty"`
	Index *int   `yaml:"index,omitempty"`

	Answered *int `yaml:"answered,omitempty"`

	// Phase is "overall", "phase1" or "phase2" (used by compliance).
	Phase    string `yaml:"phase,omitempty"`
	Followed *int   `yaml:"followed,omitempty"`
	Total    *int   `yaml:"total,omitempty"`

	// Question is the record id (used by record).
	Question   string   `yaml:"question,omitempty"`
	Choice     *string  `yaml:"choice,omitempty"`
	Unanswered bool     `yaml:"unanswered,omitempty"`
	Framing    string   `yaml:"framing,omitempty"`
	Seen       []string `yaml:"seen,omitempty"`
	ResponseMs *int64   `yaml:"response_ms,omitempty"`

	Completed *bool `yaml:"completed,omitempty"`
}

// Assertion type constants.
const (
	AssertView       = "view"
	AssertProgress   = "progress"
	AssertCompliance = "compliance"
	AssertRecord     = "record"
	AssertCompleted  = "completed"
)

// LoadScenario reads and parses a scenario YAML file. The catalog path is
// resolved relative to the scenario file's directory.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	return LoadScenarioWithBasePath(path, filepath.Dir(path))
}

// LoadScenarioWithBasePath reads and parses a scenario YAML file,
// resolving the catalog path relative to basePath.
func LoadScenarioWithBasePath(path, basePath string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict field validation catches typos like "steps:" vs "step:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.Catalog != "" && !filepath.IsAbs(scenario.Catalog) && basePath != "" {
		scenario.Catalog = filepath.Join(basePath, scenario.Catalog)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// LoadDir loads every *.yaml scenario in dir, sorted by file name.
func LoadDir(dir string) ([]*Scenario, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("list scenarios: %w", err)
	}
	out := make([]*Scenario, 0, len(paths))
	for _, p := range paths {
		sc, err := LoadScenario(p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(p), err)
		}
		out = append(out, sc)
	}
	return out, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	if len(s.Expect) == 0 {
		return fmt.Errorf("expect list is required and must be non-empty")
	}

	if s.Catalog != "" {
		if _, err := os.Stat(s.Catalog); os.IsNotExist(err) {
			return fmt.Errorf("catalog file not found: %s", s.Catalog)
		}
	}

	for i, step := range s.Steps {
		if err := validateStep(i, step); err != nil {
			return err
		}
	}

	for i := range s.Expect {
		if err := validateAssertion(i, &s.Expect[i]); err != nil {
			return err
		}
	}

	return nil
}

func validateStep(i int, step Step) error {
	if step.Action == "" {
		return fmt.Errorf("steps[%d]: action is required", i)
	}
	if !knownActions[step.Action] {
		return fmt.Errorf("steps[%d]: unknown action %q", i, step.Action)
	}
	switch step.Action {
	case ActionAnswer:
		if step.Choice == "" {
			return fmt.Errorf("steps[%d]: answer requires choice", i)
		}
	case ActionFraming:
		if step.Framing == "" {
			return fmt.Errorf("steps[%d]: framing requires framing", i)
		}
	case ActionParticipant:
		if step.ID == "" {
			return fmt.Errorf("steps[%d]: participant requires id", i)
		}
	case ActionWait:
		if step.Ms <= 0 {
			return fmt.Errorf("steps[%d]: wait requires ms > 0", i)
		}
	}
	if step.Feedback != nil && step.Action != ActionContinue {
		return fmt.Errorf("steps[%d]: feedback is only valid on continue", i)
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("expect[%d]: type is required", index)
	}

	switch a.Type {
	case AssertView:
		if !session.View(a.View).Valid() {
			return fmt.Errorf("expect[%d]: view must be intro, question or complete", index)
		}
	case AssertProgress:
		if a.Answered == nil {
			return fmt.Errorf("expect[%d]: progress requires answered", index)
		}
	case AssertCompliance:
		switch a.Phase {
		case "overall", "phase1", "phase2":
		default:
			return fmt.Errorf("expect[%d]: compliance phase must be overall, phase1 or phase2", index)
		}
		if a.Followed == nil && a.Total == nil {
			return fmt.Errorf("expect[%d]: compliance requires followed or total", index)
		}
	case AssertRecord:
		if a.Question == "" {
			return fmt.Errorf("expect[%d]: record requires question", index)
		}
		if a.Unanswered && a.Choice != nil {
			return fmt.Errorf("expect[%d]: record cannot set both choice and unanswered", index)
		}
	case AssertCompleted:
		if a.Completed == nil {
			return fmt.Errorf("expect[%d]: completed requires completed", index)
		}
	default:
		return fmt.Errorf("expect[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
