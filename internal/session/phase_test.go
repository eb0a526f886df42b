package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPhase(t *testing.T) {
	tests := []struct {
		idx, split int
		phase      int
		feedback   bool
	}{
		{idx: 0, split: 10, phase: 1, feedback: true},
		{idx: 9, split: 10, phase: 1, feedback: true},
		{idx: 10, split: 10, phase: 2, feedback: false},
		{idx: 19, split: 10, phase: 2, feedback: false},
		{idx: 0, split: 0, phase: 2, feedback: false},
		{idx: 19, split: 20, phase: 1, feedback: true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.phase, Phase(tt.idx, tt.split), "Phase(%d, %d)", tt.idx, tt.split)
		assert.Equal(t, tt.feedback, HasFeedback(tt.idx, tt.split), "HasFeedback(%d, %d)", tt.idx, tt.split)
	}
}

func TestPhase_EveryIndexOfDefaultSplit(t *testing.T) {
	for i := 0; i < 20; i++ {
		want := 2
		if i < 10 {
			want = 1
		}
		assert.Equal(t, want, Phase(i, 10), "index %d", i)
	}
}
