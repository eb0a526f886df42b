package session

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/trustlab/internal/catalog"
)

// Encode serializes a session to its stored JSON form.
func Encode(s *Session) (string, error) {
	if s == nil {
		return "", ErrNoSession
	}
	data, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("encode session: %w", err)
	}
	return string(data), nil
}

// Decode parses a stored record and checks it against the catalog.
//
// A record that does not belong to cat's experiment, has no question
// records, or carries an unknown view or out-of-range index is rejected
// with ErrCorruptRecord. Unknown framings are reset to the catalog default.
func Decode(raw string, cat *catalog.Catalog) (*Session, error) {
	var s Session
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return nil, newError(ErrCodeCorruptRecord, "decode: %v", err)
	}
	if s.Meta.ExperimentID != cat.Experiment.ID {
		return nil, newError(ErrCodeCorruptRecord, "experiment id %q does not match %q",
			s.Meta.ExperimentID, cat.Experiment.ID)
	}
	if len(s.Questions) == 0 {
		return nil, newError(ErrCodeCorruptRecord, "no question records")
	}
	if !s.State.View.Valid() {
		return nil, newError(ErrCodeCorruptRecord, "unknown view %q", s.State.View)
	}
	if s.State.Index < 0 || s.State.Index >= len(s.Questions) {
		return nil, newError(ErrCodeCorruptRecord, "index %d out of range [0,%d)",
			s.State.Index, len(s.Questions))
	}
	if !cat.HasFraming(s.State.Framing) {
		s.State.Framing = cat.DefaultFraming()
	}
	for i := range s.Questions {
		if s.Questions[i].AITextSeen == nil {
			s.Questions[i].AITextSeen = map[string]bool{}
		}
	}
	return &s, nil
}
