package catalog

import (
	"fmt"
	"slices"
	"strings"
)

// DefaultOptionLabels is the option alphabet used when a catalog does not
// declare one.
var DefaultOptionLabels = []string{"A", "B", "C"}

// Validate checks the cross-field rules the schema cannot express.
// Returns all problems found (does not fail fast).
func Validate(cat *Catalog) []ValidationError {
	var errs []ValidationError
	exp := cat.Experiment

	if strings.TrimSpace(exp.ID) == "" {
		errs = append(errs, ValidationError{
			Field:   "experiment.id",
			Message: "experiment id is required",
			Code:    ErrCodeExperimentID,
		})
	}

	if len(cat.Questions) == 0 {
		errs = append(errs, ValidationError{
			Field:   "questions",
			Message: "at least one question is required",
			Code:    ErrCodeNoQuestions,
		})
	} else if exp.TotalQuestions != len(cat.Questions) {
		errs = append(errs, ValidationError{
			Field:   "experiment.totalQuestions",
			Message: fmt.Sprintf("totalQuestions is %d but %d questions are defined", exp.TotalQuestions, len(cat.Questions)),
			Code:    ErrCodeQuestionCount,
		})
	}

	if exp.PhaseSplitIndex < 0 || exp.PhaseSplitIndex > exp.TotalQuestions {
		errs = append(errs, ValidationError{
			Field:   "experiment.phaseSplitIndex",
			Message: fmt.Sprintf("phaseSplitIndex %d outside [0, %d]", exp.PhaseSplitIndex, exp.TotalQuestions),
			Code:    ErrCodePhaseSplit,
		})
	}

	if len(exp.Framings) == 0 {
		errs = append(errs, ValidationError{
			Field:   "experiment.framings",
			Message: "at least one framing is required",
			Code:    ErrCodeFramings,
		})
	}
	framingSeen := make(map[string]bool)
	for i, f := range exp.Framings {
		if framingSeen[f.Key] {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("experiment.framings[%d].key", i),
				Message: fmt.Sprintf("duplicate framing key %q", f.Key),
				Code:    ErrCodeFramings,
			})
		}
		framingSeen[f.Key] = true
	}

	alphabet := exp.OptionLabels
	if len(alphabet) == 0 {
		alphabet = DefaultOptionLabels
	}

	idSeen := make(map[string]bool)
	for i, q := range cat.Questions {
		errs = append(errs, validateQuestion(i, q, alphabet, exp.Framings, idSeen)...)
	}

	return errs
}

func validateQuestion(i int, q Question, alphabet []string, framings []Framing, idSeen map[string]bool) []ValidationError {
	var errs []ValidationError
	field := fmt.Sprintf("questions[%d]", i)

	if idSeen[q.ID] {
		errs = append(errs, ValidationError{
			Field:   field + ".id",
			Message: fmt.Sprintf("duplicate question id %q", q.ID),
			Code:    ErrCodeDuplicateQuestion,
		})
	}
	idSeen[q.ID] = true

	labelSeen := make(map[string]bool)
	for j, opt := range q.Options {
		optField := fmt.Sprintf("%s.options[%d].label", field, j)
		switch {
		case opt.Label == "":
			errs = append(errs, ValidationError{Field: optField, Message: "option label is required", Code: ErrCodeOptionLabel})
		case labelSeen[opt.Label]:
			errs = append(errs, ValidationError{Field: optField, Message: fmt.Sprintf("duplicate option label %q", opt.Label), Code: ErrCodeOptionLabel})
		case !slices.Contains(alphabet, opt.Label):
			errs = append(errs, ValidationError{Field: optField, Message: fmt.Sprintf("option label %q not in %v", opt.Label, alphabet), Code: ErrCodeOptionLabel})
		}
		labelSeen[opt.Label] = true
	}

	if !labelSeen[q.AI.Recommended] {
		errs = append(errs, ValidationError{
			Field:   field + ".ai.recommended",
			Message: fmt.Sprintf("recommended option %q is not one of the question's option labels", q.AI.Recommended),
			Code:    ErrCodeRecommendation,
		})
	}

	for _, f := range framings {
		if _, ok := q.AI.Explanation[f.Key]; !ok {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("%s.ai.explanation.%s", field, f.Key),
				Message: fmt.Sprintf("explanation missing for framing %q", f.Key),
				Code:    ErrCodeExplanation,
			})
		}
	}

	return errs
}
