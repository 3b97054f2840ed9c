package tui

import (
	"errors"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/ruminaider/toolkit/internal/profiles"
	"github.com/ruminaider/toolkit/internal/session"
)

// ErrGlobalSelector is returned when a host pushes a selected id into a
// selector that is bound to the shared active profile.
var ErrGlobalSelector = errors.New("selector is bound to the shared active profile")

// CreateNewLabel is the menu row that starts profile creation.
const CreateNewLabel = "+ New profile"

// ProfileSource supplies the current profile set. It is read on every
// render and never mutated.
type ProfileSource interface {
	Profiles() []profiles.Profile
}

// authority is the one place a selector resolves its selection from and
// writes it to.
type authority interface {
	resolve() string
	choose(p *profiles.Profile)
	mode() string
}

// localAuthority holds the host's selected id and reports choices back
// to the host. It never sees a store.
type localAuthority struct {
	selectedID string
	onSelect   func(*profiles.Profile)
}

func (a *localAuthority) resolve() string { return a.selectedID }
func (a *localAuthority) mode() string    { return "local" }

func (a *localAuthority) choose(p *profiles.Profile) {
	if a.onSelect != nil {
		a.onSelect(p)
	}
}

// globalAuthority reads and writes the shared active profile.
type globalAuthority struct {
	store session.ActiveStore
}

func (a globalAuthority) resolve() string { return a.store.ActiveProfileID() }
func (a globalAuthority) mode() string    { return "global" }

func (a globalAuthority) choose(p *profiles.Profile) {
	id := ""
	if p != nil {
		id = p.ID
	}
	a.store.SetActiveProfileID(id)
}

type rowKind int

const (
	rowNone rowKind = iota
	rowProfile
	rowCreate
)

type menuRow struct {
	kind    rowKind
	profile profiles.Profile
}

// ProfileSelector is a dropdown that shows which client profile is in
// effect and lets the user pick another one, None, or start creating a
// new profile.
type ProfileSelector struct {
	source      ProfileSource
	auth        authority
	onCreateNew func()
	logger      *zap.Logger

	open    bool
	cursor  int
	originX int
	originY int
	release func()
}

// SelectorOption configures a ProfileSelector.
type SelectorOption func(*ProfileSelector)

// WithCreateNew adds the create-new row; fn runs when it is activated.
// A nil fn leaves the row out.
func WithCreateNew(fn func()) SelectorOption {
	return func(s *ProfileSelector) { s.onCreateNew = fn }
}

// WithSelectorLogger sets the logger. The default discards.
func WithSelectorLogger(l *zap.Logger) SelectorOption {
	return func(s *ProfileSelector) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewLocalProfileSelector returns a selector whose selection is owned by
// the host: it displays selectedID and reports picks through onSelect
// (nil for None). The host applies a pick with SetSelectedProfileID.
func NewLocalProfileSelector(source ProfileSource, selectedID string, onSelect func(*profiles.Profile), opts ...SelectorOption) *ProfileSelector {
	return newSelector(source, &localAuthority{selectedID: selectedID, onSelect: onSelect}, opts)
}

// NewGlobalProfileSelector returns a selector bound to the shared active
// profile held by store.
func NewGlobalProfileSelector(source ProfileSource, store session.ActiveStore, opts ...SelectorOption) *ProfileSelector {
	return newSelector(source, globalAuthority{store: store}, opts)
}

func newSelector(source ProfileSource, auth authority, opts []SelectorOption) *ProfileSelector {
	s := &ProfileSelector{
		source: source,
		auth:   auth,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Global reports whether the selector is bound to the shared store.
func (s *ProfileSelector) Global() bool {
	_, ok := s.auth.(globalAuthority)
	return ok
}

// SetSelectedProfileID updates the host-owned selection of a local
// selector. A global selector ignores it and returns ErrGlobalSelector.
func (s *ProfileSelector) SetSelectedProfileID(id string) error {
	local, ok := s.auth.(*localAuthority)
	if !ok {
		s.logger.Warn("selected id pushed into global selector", zap.String("id", id))
		return ErrGlobalSelector
	}
	local.selectedID = id
	return nil
}

// ResolvedProfileID returns the id currently in effect, "" for none. It
// may name a profile that no longer exists.
func (s *ProfileSelector) ResolvedProfileID() string {
	return s.auth.resolve()
}

// Selected returns the resolved profile when it is in the current set.
func (s *ProfileSelector) Selected() (profiles.Profile, bool) {
	return profiles.Lookup(s.source.Profiles(), s.auth.resolve())
}

// Label is the text shown on the trigger: the resolved profile's name or
// None.
func (s *ProfileSelector) Label() string {
	return profiles.DisplayName(s.source.Profiles(), s.auth.resolve())
}

// CanCreateNew reports whether the create-new row is offered.
func (s *ProfileSelector) CanCreateNew() bool {
	return s.onCreateNew != nil
}

// IsOpen reports whether the menu is shown.
func (s *ProfileSelector) IsOpen() bool {
	return s.open
}

// OpenMenu shows the menu with the cursor on the resolved row.
func (s *ProfileSelector) OpenMenu() {
	s.open = true
	s.cursor = resolvedRow(s.rows(s.source.Profiles()), s.auth.resolve())
}

// CloseMenu hides the menu.
func (s *ProfileSelector) CloseMenu() {
	s.open = false
}

// Toggle opens a closed menu and closes an open one.
func (s *ProfileSelector) Toggle() {
	if s.open {
		s.CloseMenu()
		return
	}
	s.OpenMenu()
}

// Select applies a pick (nil for None) to the selector's authority and
// closes the menu. A global selector writes the store and never calls
// the host callback; a local one calls the callback and never writes.
func (s *ProfileSelector) Select(p *profiles.Profile) {
	id := ""
	if p != nil {
		id = p.ID
	}
	s.logger.Debug("profile selected", zap.String("mode", s.auth.mode()), zap.String("id", id))
	s.auth.choose(p)
	s.open = false
}

// CreateNew runs the create-new callback once and closes the menu. It is
// a no-op when no callback was configured.
func (s *ProfileSelector) CreateNew() {
	if s.onCreateNew == nil {
		return
	}
	s.logger.Debug("create new profile requested", zap.String("mode", s.auth.mode()))
	s.open = false
	s.onCreateNew()
}

// Mount registers the outside-press listener with d. Mounting an already
// mounted selector does nothing.
func (s *ProfileSelector) Mount(d *PointerDispatcher) {
	if s.release != nil {
		return
	}
	s.release = d.Listen(s.dismissOutside)
}

// Unmount releases the listener and closes the menu. Safe to call more
// than once.
func (s *ProfileSelector) Unmount() {
	if s.release != nil {
		s.release()
		s.release = nil
	}
	s.open = false
}

// Mounted reports whether the outside-press listener is registered.
func (s *ProfileSelector) Mounted() bool {
	return s.release != nil
}

// SetOrigin records the screen cell where the host draws View.
func (s *ProfileSelector) SetOrigin(x, y int) {
	s.originX, s.originY = x, y
}

// Contains reports whether the screen cell (x, y) falls inside the
// currently rendered selector, menu included.
func (s *ProfileSelector) Contains(x, y int) bool {
	v := s.View()
	w, h := lipgloss.Width(v), lipgloss.Height(v)
	return x >= s.originX && x < s.originX+w && y >= s.originY && y < s.originY+h
}

func (s *ProfileSelector) dismissOutside(msg tea.MouseMsg) {
	if s.open && !s.Contains(msg.X, msg.Y) {
		s.logger.Debug("menu dismissed by outside press", zap.Int("x", msg.X), zap.Int("y", msg.Y))
		s.open = false
	}
}

// Update handles keys while the selector has focus and left presses
// inside it. Presses outside are handled by the mounted listener.
func (s *ProfileSelector) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		s.handleKey(msg)
	case tea.MouseMsg:
		s.handleMouse(msg)
	}
	return nil
}

func (s *ProfileSelector) handleKey(msg tea.KeyMsg) {
	if !s.open {
		switch msg.String() {
		case "enter", " ", "down", "j":
			s.OpenMenu()
		}
		return
	}

	rows := s.rows(s.source.Profiles())
	switch msg.String() {
	case "up", "k":
		if s.cursor > 0 {
			s.cursor--
		}
	case "down", "j":
		if s.cursor < len(rows)-1 {
			s.cursor++
		}
	case "enter", " ":
		s.activate(rows, s.cursor)
	case "esc":
		s.CloseMenu()
	}
}

func (s *ProfileSelector) handleMouse(msg tea.MouseMsg) {
	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return
	}
	if !s.Contains(msg.X, msg.Y) {
		return
	}

	line := msg.Y - s.originY
	if line == 0 {
		s.Toggle()
		return
	}
	if !s.open {
		return
	}
	rows := s.rows(s.source.Profiles())
	if i := line - 1; i < len(rows) {
		s.cursor = i
		s.activate(rows, i)
	}
}

func (s *ProfileSelector) activate(rows []menuRow, i int) {
	if len(rows) == 0 {
		return
	}
	i = clamp(i, len(rows))
	switch row := rows[i]; row.kind {
	case rowNone:
		s.Select(nil)
	case rowProfile:
		p := row.profile
		s.Select(&p)
	case rowCreate:
		s.CreateNew()
	}
}

func (s *ProfileSelector) rows(set []profiles.Profile) []menuRow {
	rows := make([]menuRow, 0, len(set)+2)
	rows = append(rows, menuRow{kind: rowNone})
	for _, p := range set {
		rows = append(rows, menuRow{kind: rowProfile, profile: p})
	}
	if s.onCreateNew != nil {
		rows = append(rows, menuRow{kind: rowCreate})
	}
	return rows
}

// resolvedRow is the index of the row matching id, or the None row.
func resolvedRow(rows []menuRow, id string) int {
	if id == "" {
		return 0
	}
	for i, r := range rows {
		if r.kind == rowProfile && r.profile.ID == id {
			return i
		}
	}
	return 0
}

func clamp(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// View renders the trigger line and, when open, one line per menu row.
func (s *ProfileSelector) View() string {
	set := s.source.Profiles()
	id := s.auth.resolve()
	label := profiles.DisplayName(set, id)

	caption := SelectorLabelStyle.Render("Profile ")
	if !s.open {
		return caption + TriggerStyle.Render(label+" ▾")
	}
	trigger := caption + TriggerOpenStyle.Render(label+" ▴")

	rows := s.rows(set)
	marked := resolvedRow(rows, id)
	cursor := clamp(s.cursor, len(rows))

	texts := make([]string, len(rows))
	width := 0
	for i, r := range rows {
		mark := "  "
		if i == marked && r.kind != rowCreate {
			mark = SelectedMarkStyle.Render("✓ ")
		}
		var text string
		switch r.kind {
		case rowNone:
			text = MenuNoneStyle.Render(profiles.NoneLabel)
		case rowProfile:
			text = r.profile.Name
		case rowCreate:
			text = MenuCreateStyle.Render(CreateNewLabel)
		}
		texts[i] = mark + text
		width = max(width, lipgloss.Width(texts[i]))
	}

	lines := make([]string, 0, len(rows)+1)
	lines = append(lines, trigger)
	for i, text := range texts {
		style := MenuRowStyle
		if i == cursor {
			style = MenuCursorStyle
		}
		pad := strings.Repeat(" ", width-lipgloss.Width(text))
		lines = append(lines, style.Render(text+pad))
	}
	return strings.Join(lines, "\n")
}
