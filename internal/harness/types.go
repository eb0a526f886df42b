package harness

import (
	"github.com/roach88/trustlab/internal/catalog"
	"github.com/roach88/trustlab/internal/session"
)

// StepEvent records how one step ended.
type StepEvent struct {
	Step    int    `json:"step"`
	Action  string `json:"action"`
	Outcome string `json:"outcome"` // "ok" or the session error code
	View    string `json:"view"`
	Index   int    `json:"idx"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall test success.
	Pass bool `json:"pass"`

	// Trace holds one event per executed step.
	Trace []StepEvent `json:"trace"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Session is the final session state.
	Session *session.Session `json:"-"`

	// Catalog is the catalog the scenario ran against.
	Catalog *catalog.Catalog `json:"-"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []StepEvent{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
