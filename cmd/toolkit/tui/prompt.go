package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
)

// Prompt is a centered single-line input box used to name a new profile.
type Prompt struct {
	title    string
	input    textinput.Model
	validate func(string) error
	errMsg   string
	active   bool
}

// NewPrompt returns an active prompt. validate, when non-nil, runs on
// Enter; a non-nil error is shown inline and the prompt stays open.
func NewPrompt(title, placeholder string, validate func(string) error) Prompt {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Focus()
	ti.CharLimit = 64
	ti.Width = 30
	return Prompt{
		title:    title,
		input:    ti,
		validate: validate,
		active:   true,
	}
}

// Active reports whether the prompt is shown.
func (p Prompt) Active() bool {
	return p.active
}

// Value returns the current input.
func (p Prompt) Value() string {
	return p.input.Value()
}

// Err returns the inline validation message, if any.
func (p Prompt) Err() string {
	return p.errMsg
}

// Update handles key messages. Enter and Esc close the prompt with a
// PromptCloseMsg; everything else goes to the text input.
func (p Prompt) Update(msg tea.Msg) (Prompt, tea.Cmd) {
	if !p.active {
		return p, nil
	}

	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "esc":
			p.active = false
			return p, func() tea.Msg {
				return PromptCloseMsg{Confirmed: false}
			}
		case "enter":
			value := strings.TrimSpace(p.input.Value())
			if value == "" {
				return p, nil
			}
			if p.validate != nil {
				if err := p.validate(value); err != nil {
					p.errMsg = err.Error()
					return p, nil
				}
			}
			p.active = false
			return p, func() tea.Msg {
				return PromptCloseMsg{Value: value, Confirmed: true}
			}
		}
	}

	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	if _, ok := msg.(tea.KeyMsg); ok {
		p.errMsg = ""
	}
	return p, cmd
}

// SetWidth sizes the input to fit a box of width w.
func (p *Prompt) SetWidth(w int) {
	inputWidth := w - 6 // border and padding
	if inputWidth < 20 {
		inputWidth = 20
	}
	p.input.Width = inputWidth
}

// View renders the boxed prompt, or "" when inactive.
func (p Prompt) View() string {
	if !p.active {
		return ""
	}

	var b strings.Builder
	b.WriteString(PromptTitleStyle.Render(p.title))
	b.WriteString("\n\n")
	b.WriteString(p.input.View())
	b.WriteString("\n\n")
	if p.errMsg != "" {
		b.WriteString(PromptErrorStyle.Render(p.errMsg))
		b.WriteString("\n")
	}
	b.WriteString(PromptHintStyle.Render("Enter: create  Esc: cancel"))
	return PromptStyle.Render(b.String())
}

// PromptWidth clamps the prompt box to two thirds of the terminal,
// between 40 and 60 columns.
func PromptWidth(termWidth int) int {
	w := termWidth * 2 / 3
	if w < 40 {
		w = 40
	}
	if w > 60 {
		w = 60
	}
	return w
}

// Composite draws box centered over background. Both may contain ANSI
// sequences; the background columns left and right of the box survive.
func Composite(background, box string, totalWidth, totalHeight int) string {
	if box == "" {
		return background
	}

	bgLines := strings.Split(background, "\n")
	for len(bgLines) < totalHeight {
		bgLines = append(bgLines, "")
	}

	boxLines := strings.Split(box, "\n")
	boxWidth := 0
	for _, line := range boxLines {
		if w := ansi.StringWidth(line); w > boxWidth {
			boxWidth = w
		}
	}

	startRow := max(0, (totalHeight-len(boxLines))/2)
	startCol := max(0, (totalWidth-boxWidth)/2)

	for i, boxLine := range boxLines {
		row := startRow + i
		if row >= len(bgLines) {
			break
		}
		bg := bgLines[row]
		bgWidth := ansi.StringWidth(bg)

		left := ansi.Truncate(bg, startCol, "")
		if bgWidth < startCol {
			left += strings.Repeat(" ", startCol-bgWidth)
		}

		right := ""
		if end := startCol + ansi.StringWidth(boxLine); end < bgWidth {
			right = ansi.TruncateLeft(bg, end, "")
		}

		bgLines[row] = left + boxLine + right
	}

	if totalHeight > 0 && len(bgLines) > totalHeight {
		bgLines = bgLines[:totalHeight]
	}
	return strings.Join(bgLines, "\n")
}
