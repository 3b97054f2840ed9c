package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// StatusBar renders the bottom row: which authority the selector uses,
// how many profiles exist, the last error, and the key hints.
type StatusBar struct {
	mode      string
	count     int
	err       string
	canCreate bool
	width     int
}

// NewStatusBar returns a status bar for the given mode label.
func NewStatusBar(mode string, canCreate bool) StatusBar {
	return StatusBar{mode: mode, canCreate: canCreate}
}

// SetWidth sets the available width for rendering.
func (s *StatusBar) SetWidth(w int) {
	s.width = w
}

// Update refreshes the profile count and error text. An empty errText
// clears a previous error.
func (s *StatusBar) Update(count int, errText string) {
	s.count = count
	s.err = errText
}

// View renders the status bar.
func (s StatusBar) View() string {
	noun := "profiles"
	if s.count == 1 {
		noun = "profile"
	}
	left := fmt.Sprintf("%d %s · %s", s.count, noun, s.mode)
	if s.err != "" {
		left += " · " + StatusBarErrorStyle.Render(s.err)
	}

	shortcuts := []string{StatusBarKeyStyle.Render("Enter") + ": open"}
	if s.canCreate {
		shortcuts = append(shortcuts, StatusBarKeyStyle.Render("+")+": new")
	}
	shortcuts = append(shortcuts, StatusBarKeyStyle.Render("q")+": quit")
	right := strings.Join(shortcuts, " · ")

	gap := s.width - 2 - ansi.StringWidth(left) - ansi.StringWidth(right)
	if gap < 1 {
		gap = 1
	}
	return StatusBarStyle.Width(s.width).Render(left + strings.Repeat(" ", gap) + right)
}
