package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ruminaider/toolkit/internal/profiles"
	"github.com/ruminaider/toolkit/internal/session"
)

// staticSource is a fixed profile set.
type staticSource []profiles.Profile

func (s staticSource) Profiles() []profiles.Profile { return s }

// recordingStore is an ActiveStore that records every access.
type recordingStore struct {
	id    string
	reads int
	sets  []string
}

func (s *recordingStore) ActiveProfileID() string {
	s.reads++
	return s.id
}

func (s *recordingStore) SetActiveProfileID(id string) {
	s.sets = append(s.sets, id)
	s.id = id
}

var acmeGlobex = staticSource{
	{ID: "a", Name: "Acme"},
	{ID: "b", Name: "Globex"},
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(x, y int) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft}
}

func TestGlobalSelector_FollowsStore(t *testing.T) {
	store := &recordingStore{id: "b"}
	s := NewGlobalProfileSelector(acmeGlobex, store)

	assert.True(t, s.Global())
	assert.Equal(t, "b", s.ResolvedProfileID())
	assert.Equal(t, "Globex", s.Label())
	assert.Contains(t, s.View(), "Globex")

	store.id = "a"
	assert.Equal(t, "Acme", s.Label())
	assert.Contains(t, s.View(), "Acme")
}

func TestGlobalSelector_IgnoresPushedID(t *testing.T) {
	store := &recordingStore{id: "b"}
	s := NewGlobalProfileSelector(acmeGlobex, store)

	err := s.SetSelectedProfileID("a")
	require.ErrorIs(t, err, ErrGlobalSelector)
	assert.Equal(t, "Globex", s.Label())
	assert.Empty(t, store.sets)
}

func TestLocalSelector_IgnoresStore(t *testing.T) {
	store := session.NewStore("b")
	var picks []*profiles.Profile
	s := NewLocalProfileSelector(acmeGlobex, "a", func(p *profiles.Profile) { picks = append(picks, p) })

	assert.False(t, s.Global())
	assert.Equal(t, "Acme", s.Label())

	store.SetActiveProfileID("")
	assert.Equal(t, "Acme", s.Label())

	require.NoError(t, s.SetSelectedProfileID("b"))
	assert.Equal(t, "b", s.ResolvedProfileID())
	assert.Equal(t, "Globex", s.Label())
	assert.Empty(t, picks)
	assert.Equal(t, "", store.ActiveProfileID())
}

func TestGlobalSelector_SelectWritesStoreOnly(t *testing.T) {
	store := &recordingStore{}
	s := NewGlobalProfileSelector(acmeGlobex, store)
	s.OpenMenu()

	p := acmeGlobex[1]
	s.Select(&p)

	assert.Equal(t, []string{"b"}, store.sets)
	assert.False(t, s.IsOpen())
}

func TestLocalSelector_SelectCallsHostOnly(t *testing.T) {
	var picks []*profiles.Profile
	s := NewLocalProfileSelector(acmeGlobex, "", func(p *profiles.Profile) { picks = append(picks, p) })
	s.OpenMenu()

	p := acmeGlobex[0]
	s.Select(&p)

	require.Len(t, picks, 1)
	require.NotNil(t, picks[0])
	assert.Equal(t, acmeGlobex[0], *picks[0])
	assert.False(t, s.IsOpen())
	// The host owns the prop; a pick alone does not change the label.
	assert.Equal(t, profiles.NoneLabel, s.Label())
}

func TestSelectNone(t *testing.T) {
	t.Run("global", func(t *testing.T) {
		store := &recordingStore{id: "a"}
		s := NewGlobalProfileSelector(acmeGlobex, store)
		s.Select(nil)
		assert.Equal(t, []string{""}, store.sets)
		assert.Equal(t, profiles.NoneLabel, s.Label())
	})

	t.Run("local", func(t *testing.T) {
		called := 0
		var got *profiles.Profile = &profiles.Profile{}
		s := NewLocalProfileSelector(acmeGlobex, "a", func(p *profiles.Profile) {
			called++
			got = p
		})
		s.Select(nil)
		assert.Equal(t, 1, called)
		assert.Nil(t, got)
	})
}

func TestStaleIDRendersNone(t *testing.T) {
	tests := []struct {
		name string
		set  staticSource
		id   string
	}{
		{"unknown id", acmeGlobex, "zzz"},
		{"absent id", acmeGlobex, ""},
		{"empty set", staticSource{}, "a"},
		{"nil set", nil, "a"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewGlobalProfileSelector(tt.set, &recordingStore{id: tt.id})
			assert.Equal(t, tt.id, s.ResolvedProfileID(), "the stale id is still resolved")
			assert.NotPanics(t, func() {
				assert.Equal(t, profiles.NoneLabel, s.Label())
				s.OpenMenu()
				assert.Contains(t, s.View(), profiles.NoneLabel)
			})
			_, ok := s.Selected()
			assert.False(t, ok)
		})
	}
}

func TestKeyboardNavigation(t *testing.T) {
	store := &recordingStore{id: "a"}
	s := NewGlobalProfileSelector(acmeGlobex, store)

	s.Update(key("enter"))
	require.True(t, s.IsOpen())
	assert.Equal(t, 1, s.cursor, "cursor starts on the resolved row")

	s.Update(key("j"))
	s.Update(key("down"))
	assert.Equal(t, 2, s.cursor, "cursor stops at the last row")

	s.Update(key("k"))
	s.Update(key("up"))
	s.Update(key("up"))
	assert.Equal(t, 0, s.cursor)

	s.Update(key("esc"))
	assert.False(t, s.IsOpen())
	assert.Empty(t, store.sets)

	s.Update(key(" "))
	require.True(t, s.IsOpen())
	s.Update(key("down"))
	s.Update(key(" "))
	assert.Equal(t, []string{"b"}, store.sets)
	assert.False(t, s.IsOpen())
}

func TestCreateNew_Absent(t *testing.T) {
	s := NewGlobalProfileSelector(acmeGlobex, &recordingStore{})
	s.OpenMenu()

	assert.False(t, s.CanCreateNew())
	assert.NotContains(t, s.View(), CreateNewLabel)
	assert.NotPanics(t, s.CreateNew)
	assert.Len(t, strings.Split(s.View(), "\n"), 4)
}

func TestCreateNew_Present(t *testing.T) {
	calls := 0
	store := &recordingStore{}
	s := NewGlobalProfileSelector(acmeGlobex, store, WithCreateNew(func() { calls++ }))
	s.OpenMenu()

	assert.True(t, s.CanCreateNew())
	assert.Contains(t, s.View(), CreateNewLabel)

	s.Update(key("down"))
	s.Update(key("down"))
	s.Update(key("down"))
	s.Update(key("enter"))

	assert.Equal(t, 1, calls)
	assert.False(t, s.IsOpen())
	assert.Empty(t, store.sets)
}

func TestCreateNew_ClosedLabelOnly(t *testing.T) {
	s := NewGlobalProfileSelector(acmeGlobex, &recordingStore{}, WithCreateNew(func() {}))
	assert.NotContains(t, s.View(), CreateNewLabel)
}

func TestMouse_TriggerAndRows(t *testing.T) {
	store := &recordingStore{id: "b"}
	s := NewGlobalProfileSelector(acmeGlobex, store)
	s.SetOrigin(2, 3)

	// Trigger line toggles.
	s.Update(press(3, 3))
	require.True(t, s.IsOpen())
	s.Update(press(3, 3))
	require.False(t, s.IsOpen())

	// Rows follow the trigger: None, Acme, Globex.
	s.Update(press(3, 3))
	s.Update(press(3, 5))
	assert.Equal(t, []string{"a"}, store.sets)
	assert.False(t, s.IsOpen())
}

func TestMouse_IgnoresNonLeftAndOutside(t *testing.T) {
	store := &recordingStore{}
	s := NewGlobalProfileSelector(acmeGlobex, store)

	s.Update(tea.MouseMsg{X: 0, Y: 0, Action: tea.MouseActionPress, Button: tea.MouseButtonWheelDown})
	s.Update(tea.MouseMsg{X: 0, Y: 0, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})
	assert.False(t, s.IsOpen())

	s.Update(press(500, 500))
	assert.False(t, s.IsOpen())
}

func TestContains_GrowsWithMenu(t *testing.T) {
	s := NewGlobalProfileSelector(acmeGlobex, &recordingStore{})
	s.SetOrigin(4, 1)

	assert.True(t, s.Contains(4, 1))
	assert.False(t, s.Contains(3, 1))
	assert.False(t, s.Contains(4, 2))

	s.OpenMenu()
	assert.True(t, s.Contains(4, 2))
	assert.True(t, s.Contains(4, 4))
	assert.False(t, s.Contains(4, 5))
}

func TestOutsidePressDismisses(t *testing.T) {
	d := NewPointerDispatcher()
	s := NewGlobalProfileSelector(acmeGlobex, &recordingStore{})
	s.SetOrigin(0, 0)
	s.Mount(d)

	s.OpenMenu()
	d.Dispatch(press(0, 1))
	assert.True(t, s.IsOpen(), "press inside keeps the menu open")

	d.Dispatch(press(200, 40))
	assert.False(t, s.IsOpen(), "press outside closes the menu")

	s.OpenMenu()
	d.Dispatch(tea.MouseMsg{X: 200, Y: 40, Action: tea.MouseActionMotion, Button: tea.MouseButtonNone})
	assert.True(t, s.IsOpen(), "motion is not a pointer-down")
}

func TestMountUnmount_NoLeaks(t *testing.T) {
	d := NewPointerDispatcher()
	s := NewGlobalProfileSelector(acmeGlobex, &recordingStore{})

	for i := 0; i < 50; i++ {
		s.Mount(d)
		s.Mount(d)
		assert.True(t, s.Mounted())
		assert.Equal(t, 1, d.Len())
		s.Unmount()
		s.Unmount()
		assert.False(t, s.Mounted())
		assert.Equal(t, 0, d.Len())
	}
}

func TestUnmountClosesMenu(t *testing.T) {
	d := NewPointerDispatcher()
	s := NewGlobalProfileSelector(acmeGlobex, &recordingStore{})
	s.Mount(d)
	s.OpenMenu()

	s.Unmount()
	assert.False(t, s.IsOpen())

	// A stale press after unmount reaches no one.
	assert.True(t, d.Dispatch(press(100, 100)))
}

func TestViewReadsButNeverWrites(t *testing.T) {
	store := &recordingStore{id: "a"}
	var picks int
	g := NewGlobalProfileSelector(acmeGlobex, store, WithCreateNew(func() { t.Fatal("create-new during render") }))
	l := NewLocalProfileSelector(acmeGlobex, "a", func(*profiles.Profile) { picks++ })

	for i := 0; i < 3; i++ {
		g.View()
		l.View()
		g.OpenMenu()
		l.OpenMenu()
		g.View()
		l.View()
	}
	assert.Empty(t, store.sets)
	assert.Zero(t, picks)
	assert.Positive(t, store.reads)
}

func TestOpenMarksResolvedRow(t *testing.T) {
	s := NewGlobalProfileSelector(acmeGlobex, &recordingStore{id: "b"})
	s.OpenMenu()

	lines := strings.Split(s.View(), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[3], "✓")
	assert.NotContains(t, lines[1], "✓")
	assert.NotContains(t, lines[2], "✓")
}

// Scenario: GLOBAL selector over Acme/Globex with Globex active, an
// external reset to absent, then a click on Acme.
func TestScenario_AcmeGlobex(t *testing.T) {
	store := session.NewStore("b")
	s := NewGlobalProfileSelector(acmeGlobex, store)
	s.SetOrigin(0, 0)
	d := NewPointerDispatcher()
	s.Mount(d)
	defer s.Unmount()

	assert.Contains(t, s.View(), "Globex")

	store.SetActiveProfileID("")
	assert.Contains(t, s.View(), profiles.NoneLabel)
	assert.NotContains(t, s.View(), "Globex")

	var writes []string
	unsubscribe := store.Subscribe(func(id string) { writes = append(writes, id) })
	defer unsubscribe()

	s.Update(press(0, 0))
	require.True(t, s.IsOpen())
	d.Dispatch(press(0, 2))
	s.Update(press(0, 2))

	assert.Equal(t, []string{"a"}, writes)
	assert.Equal(t, "a", store.ActiveProfileID())
	assert.Contains(t, s.View(), "Acme")
	assert.False(t, s.IsOpen())
}
