package catalog

import (
	"fmt"
	"strings"
)

// Validation error codes (E200-E299).
const (
	ErrCodeSchema            = "E201" // structural schema violation
	ErrCodeExperimentID      = "E202" // experiment id missing
	ErrCodeNoQuestions       = "E203" // catalog has no questions
	ErrCodeQuestionCount     = "E204" // totalQuestions disagrees with question list
	ErrCodePhaseSplit        = "E205" // phaseSplitIndex out of range
	ErrCodeFramings          = "E206" // no framings or duplicate framing key
	ErrCodeDuplicateQuestion = "E207" // duplicate question id
	ErrCodeOptionLabel       = "E208" // empty, duplicate or unknown option label
	ErrCodeRecommendation    = "E209" // ai.recommended is not an option label
	ErrCodeExplanation       = "E210" // explanation missing for a framing key
	ErrCodeParse             = "E211" // file could not be decoded
)

// ValidationError describes one problem with a catalog.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", e.Code, e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// ValidationErrors is returned by the loaders when a catalog is rejected.
type ValidationErrors []ValidationError

// Error implements the error interface.
func (errs ValidationErrors) Error() string {
	if len(errs) == 1 {
		return "invalid catalog: " + errs[0].Error()
	}
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.Error()
	}
	return fmt.Sprintf("invalid catalog (%d problems): %s", len(errs), strings.Join(msgs, "; "))
}
