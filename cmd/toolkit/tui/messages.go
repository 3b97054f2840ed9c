package tui

// ExternalChangeMsg is sent when the registry or the shared active profile
// changed outside the program. The next render reflects it.
type ExternalChangeMsg struct{}

// PromptCloseMsg is emitted when the name prompt is dismissed.
type PromptCloseMsg struct {
	Value     string // trimmed input, empty on cancel
	Confirmed bool   // true = Enter, false = Esc
}
