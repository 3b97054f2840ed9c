package tui

import (
	catppuccin "github.com/catppuccin/go"
	"github.com/charmbracelet/lipgloss"
)

// Catppuccin Mocha palette.
var flavor = catppuccin.Mocha

var (
	colorBase     = lipgloss.Color(flavor.Base().Hex)
	colorMantle   = lipgloss.Color(flavor.Mantle().Hex)
	colorSurface0 = lipgloss.Color(flavor.Surface0().Hex)
	colorSurface1 = lipgloss.Color(flavor.Surface1().Hex)
	colorText     = lipgloss.Color(flavor.Text().Hex)
	colorSubtext0 = lipgloss.Color(flavor.Subtext0().Hex)
	colorBlue     = lipgloss.Color(flavor.Blue().Hex)
	colorGreen    = lipgloss.Color(flavor.Green().Hex)
	colorRed      = lipgloss.Color(flavor.Red().Hex)
	colorYellow   = lipgloss.Color(flavor.Yellow().Hex)
	colorMauve    = lipgloss.Color(flavor.Mauve().Hex)
	colorOverlay0 = lipgloss.Color(flavor.Overlay0().Hex)
)

// Header styles.
var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(colorBlue).
			Bold(true)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(colorSubtext0)

	// ModeTagStyle marks whether the selector is bound to the shared session.
	ModeTagStyle = lipgloss.NewStyle().
			Foreground(colorMauve).
			Italic(true)
)

// Selector styles.
var (
	// SelectorLabelStyle is the dim "Profile" caption before the trigger.
	SelectorLabelStyle = lipgloss.NewStyle().
				Foreground(colorSubtext0)

	// TriggerStyle is the closed dropdown showing the resolved profile.
	TriggerStyle = lipgloss.NewStyle().
			Foreground(colorText).
			Background(colorSurface0).
			Padding(0, 1)

	// TriggerOpenStyle is the trigger while the menu is open.
	TriggerOpenStyle = lipgloss.NewStyle().
				Foreground(colorBase).
				Background(colorBlue).
				Padding(0, 1).
				Bold(true)

	// MenuRowStyle is an unfocused menu row.
	MenuRowStyle = lipgloss.NewStyle().
			Foreground(colorText).
			Background(colorMantle).
			Padding(0, 1)

	// MenuCursorStyle is the row under the cursor.
	MenuCursorStyle = lipgloss.NewStyle().
			Foreground(colorBlue).
			Background(colorSurface1).
			Padding(0, 1).
			Bold(true)

	// MenuNoneStyle renders the None row.
	MenuNoneStyle = lipgloss.NewStyle().
			Foreground(colorOverlay0).
			Italic(true)

	// MenuCreateStyle renders the create-new row.
	MenuCreateStyle = lipgloss.NewStyle().
			Foreground(colorGreen)

	// SelectedMarkStyle is the check mark next to the resolved row.
	SelectedMarkStyle = lipgloss.NewStyle().
				Foreground(colorGreen).
				Bold(true)
)

// Status bar styles.
var (
	StatusBarStyle = lipgloss.NewStyle().
			Foreground(colorSubtext0).
			Background(colorSurface0).
			Padding(0, 1)

	StatusBarKeyStyle = lipgloss.NewStyle().
				Foreground(colorYellow).
				Background(colorSurface0).
				Bold(true)

	StatusBarErrorStyle = lipgloss.NewStyle().
				Foreground(colorRed).
				Background(colorSurface0)
)

// Prompt styles.
var (
	PromptStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBlue).
			Background(colorMantle).
			Foreground(colorText).
			Padding(1, 2)

	PromptTitleStyle = lipgloss.NewStyle().
				Foreground(colorBlue).
				Bold(true)

	PromptHintStyle = lipgloss.NewStyle().
			Foreground(colorOverlay0)

	PromptErrorStyle = lipgloss.NewStyle().
				Foreground(colorRed)
)
