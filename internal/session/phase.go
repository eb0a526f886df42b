package session

// Phase returns 1 for indices before split and 2 otherwise.
func Phase(idx, split int) int {
	if idx < split {
		return 1
	}
	return 2
}

// HasFeedback reports whether the question at idx gets the hindsight step.
func HasFeedback(idx, split int) bool {
	return Phase(idx, split) == 1
}
