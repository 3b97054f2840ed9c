package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/ruminaider/toolkit/internal/profiles"
	"github.com/ruminaider/toolkit/internal/session"
)

// Screen position of the selector: below the title, subtitle and a blank
// line, indented two columns.
const (
	selectorX = 2
	selectorY = 3
)

// ProfileCatalog is the profile set plus the ability to add to it.
type ProfileCatalog interface {
	ProfileSource
	Create(name string) (profiles.Profile, error)
}

// Model is the root bubbletea model hosting a single ProfileSelector.
// It owns the pointer dispatcher the selector mounts on and, in local
// mode, the selected id the selector displays.
type Model struct {
	catalog  ProfileCatalog
	selector *ProfileSelector
	pointer  *PointerDispatcher
	logger   *zap.Logger

	statusBar StatusBar
	prompt    Prompt
	lastErr   string

	width, height int
	ready         bool
	quitting      bool

	// Local mode result, read by the CLI after the program exits.
	picked  *profiles.Profile
	didPick bool
}

// NewGlobalModel returns a host whose selector reads and writes the
// shared active profile in store.
func NewGlobalModel(catalog ProfileCatalog, store session.ActiveStore, logger *zap.Logger) *Model {
	m := newModel(catalog, logger)
	m.selector = NewGlobalProfileSelector(catalog, store, m.selectorOptions()...)
	m.finish("global session")
	return m
}

// NewLocalModel returns a host that owns the selection itself, starting
// at selectedID. The shared active profile is never read or written.
func NewLocalModel(catalog ProfileCatalog, selectedID string, logger *zap.Logger) *Model {
	m := newModel(catalog, logger)
	m.selector = NewLocalProfileSelector(catalog, selectedID, m.applyLocalPick, m.selectorOptions()...)
	m.finish("local selection")
	return m
}

func newModel(catalog ProfileCatalog, logger *zap.Logger) *Model {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Model{
		catalog: catalog,
		pointer: NewPointerDispatcher(),
		logger:  logger,
	}
}

func (m *Model) selectorOptions() []SelectorOption {
	return []SelectorOption{
		WithCreateNew(m.openPrompt),
		WithSelectorLogger(m.logger.Named("selector")),
	}
}

func (m *Model) finish(mode string) {
	m.selector.SetOrigin(selectorX, selectorY)
	m.selector.Mount(m.pointer)
	m.statusBar = NewStatusBar(mode, m.selector.CanCreateNew())
	m.syncStatusBar()
}

// applyLocalPick is the local selector's callback. The host records the
// pick and feeds it back as the selected id.
func (m *Model) applyLocalPick(p *profiles.Profile) {
	id := ""
	if p != nil {
		cp := *p
		m.picked = &cp
		id = p.ID
	} else {
		m.picked = nil
	}
	m.didPick = true
	if err := m.selector.SetSelectedProfileID(id); err != nil {
		m.logger.Error("apply local pick", zap.Error(err))
	}
}

// Selector returns the hosted selector.
func (m *Model) Selector() *ProfileSelector {
	return m.selector
}

// Pointer returns the dispatcher the selector is mounted on.
func (m *Model) Pointer() *PointerDispatcher {
	return m.pointer
}

// LocalChoice returns the last pick made in local mode. ok is false when
// the user made none; p is nil when they picked None.
func (m *Model) LocalChoice() (p *profiles.Profile, ok bool) {
	return m.picked, m.didPick
}

// Close unmounts the selector. Call it once the program has exited.
func (m *Model) Close() {
	m.selector.Unmount()
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.statusBar.SetWidth(msg.Width)
		m.prompt.SetWidth(PromptWidth(msg.Width))
		return m, nil

	case ExternalChangeMsg:
		m.logger.Debug("external change", zap.String("resolved", m.selector.ResolvedProfileID()))
		m.syncStatusBar()
		return m, nil

	case tea.MouseMsg:
		m.pointer.Dispatch(msg)
		if !m.prompt.Active() {
			m.selector.Update(msg)
		}
		return m, nil
	}

	if m.prompt.Active() {
		return m.updatePrompt(msg)
	}

	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "ctrl+c":
			return m.quit()
		case "q", "esc":
			if !m.selector.IsOpen() {
				return m.quit()
			}
		case "+":
			if m.selector.CanCreateNew() {
				m.selector.CreateNew()
				return m, nil
			}
		}
		m.selector.Update(key)
	}
	return m, nil
}

func (m *Model) quit() (tea.Model, tea.Cmd) {
	m.quitting = true
	return m, tea.Quit
}

// openPrompt is the selector's create-new callback.
func (m *Model) openPrompt() {
	m.lastErr = ""
	m.prompt = NewPrompt("New profile", "e.g. Acme", func(name string) error {
		return profiles.CheckName(m.catalog.Profiles(), name)
	})
	m.prompt.SetWidth(PromptWidth(m.width))
	m.syncStatusBar()
}

func (m *Model) updatePrompt(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.prompt, cmd = m.prompt.Update(msg)

	// The closing cmd only produces a PromptCloseMsg; handle it here
	// instead of a round trip through the event loop.
	if !m.prompt.Active() && cmd != nil {
		if closeMsg := extractPromptClose(cmd); closeMsg != nil {
			m.handlePromptClose(*closeMsg)
			return m, nil
		}
	}
	return m, cmd
}

func (m *Model) handlePromptClose(msg PromptCloseMsg) {
	if !msg.Confirmed {
		return
	}
	p, err := m.catalog.Create(msg.Value)
	if err != nil {
		m.logger.Error("create profile", zap.String("name", msg.Value), zap.Error(err))
		m.lastErr = err.Error()
		m.syncStatusBar()
		return
	}
	m.logger.Info("profile created", zap.String("id", p.ID), zap.String("name", p.Name))
	m.selector.Select(&p)
	m.syncStatusBar()
}

func extractPromptClose(cmd tea.Cmd) *PromptCloseMsg {
	if cmd == nil {
		return nil
	}
	if msg, ok := cmd().(PromptCloseMsg); ok {
		return &msg
	}
	return nil
}

func (m *Model) syncStatusBar() {
	m.statusBar.Update(len(m.catalog.Profiles()), m.lastErr)
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Loading..."
	}

	subtitle := "Active profile shared by every session"
	if !m.selector.Global() {
		subtitle = "Profile for this run only"
	}

	var b strings.Builder
	b.WriteString(TitleStyle.Render("toolkit") + " " + ModeTagStyle.Render("["+m.statusBar.mode+"]"))
	b.WriteString("\n")
	b.WriteString(SubtitleStyle.Render(subtitle))
	b.WriteString("\n\n")
	b.WriteString(lipgloss.NewStyle().PaddingLeft(selectorX).Render(m.selector.View()))

	body := b.String()
	statusView := m.statusBar.View()
	gap := m.height - lipgloss.Height(body) - lipgloss.Height(statusView) + 1
	if gap < 1 {
		gap = 1
	}
	screen := body + strings.Repeat("\n", gap) + statusView

	if m.prompt.Active() {
		return Composite(screen, m.prompt.View(), m.width, m.height)
	}
	return screen
}
