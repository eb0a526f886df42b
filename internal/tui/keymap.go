package tui

// Key binding constants used in handleKey.
const (
	KeyQuit        = "q"
	KeyCtrlC       = "ctrl+c"
	KeyStart       = "s"
	KeyResume      = "r"
	KeyParticipant = "p"
	KeyFraming     = "f"
	KeyUp          = "up"
	KeyDown        = "down"
	KeyContinue    = "enter"
	KeyBack        = "b"
	KeyExportJSON  = "j"
	KeyExportCSV   = "c"
	KeyRestart     = "R"
	KeyCancel      = "esc"
	KeyBackspace   = "backspace"
)
