package session

import "fmt"

// Progress counts answered records.
type Progress struct {
	Answered int
	Total    int
}

// Tally is a followed/total pair.
type Tally struct {
	Followed int `json:"followed"`
	Total    int `json:"total"`
}

// Compliance breaks down how often the participant chose the AI
// recommendation.
type Compliance struct {
	Overall Tally `json:"overall"`
	Phase1  Tally `json:"phase1"`
	Phase2  Tally `json:"phase2"`
}

// Answered returns the number of records with a choice.
func (s *Session) Answered() int {
	n := 0
	for i := range s.Questions {
		if s.Questions[i].Answered() {
			n++
		}
	}
	return n
}

// Compliance computes follow counts with phase totals taken from the record
// positions relative to split.
func (s *Session) Compliance(split int) Compliance {
	var c Compliance
	for i := range s.Questions {
		followed, ok := s.Questions[i].Followed()
		hit := 0
		if ok && followed {
			hit = 1
		}
		c.Overall.Total++
		c.Overall.Followed += hit
		if Phase(i, split) == 1 {
			c.Phase1.Total++
			c.Phase1.Followed += hit
		} else {
			c.Phase2.Total++
			c.Phase2.Followed += hit
		}
	}
	return c
}

// ProgressText is the one-line status shown in the header.
func (s *Session) ProgressText(total int) string {
	switch s.State.View {
	case ViewIntro:
		return "Not started"
	case ViewComplete:
		return "Completed"
	default:
		return fmt.Sprintf("Progress: %d/%d", s.Answered(), total)
	}
}
