package tui

// ClearNoticeMsg clears the notice line after a timeout. Seq identifies
// the notice it was scheduled for, so a newer notice survives.
type ClearNoticeMsg struct {
	Seq int
}
