package tui

import (
	"sort"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// PointerListener receives pointer-down events.
type PointerListener func(msg tea.MouseMsg)

// PointerDispatcher fans pointer-down events out to the components that
// are currently mounted. It is driven from the program's Update and is
// not safe for concurrent use.
type PointerDispatcher struct {
	listeners map[int]PointerListener
	next      int
}

// NewPointerDispatcher returns a dispatcher with no listeners.
func NewPointerDispatcher() *PointerDispatcher {
	return &PointerDispatcher{listeners: make(map[int]PointerListener)}
}

// Listen registers fn until the returned release func is called.
// Release may be called any number of times, including from fn itself.
func (d *PointerDispatcher) Listen(fn PointerListener) (release func()) {
	key := d.next
	d.next++
	d.listeners[key] = fn

	var once sync.Once
	return func() {
		once.Do(func() { delete(d.listeners, key) })
	}
}

// Len returns the number of registered listeners.
func (d *PointerDispatcher) Len() int {
	return len(d.listeners)
}

// Dispatch delivers msg to every listener when it is a pointer-down event
// and reports whether it was one. Listeners run in registration order; one
// released by an earlier listener during the same dispatch is skipped.
func (d *PointerDispatcher) Dispatch(msg tea.Msg) bool {
	mouse, ok := msg.(tea.MouseMsg)
	if !ok || !IsPointerDown(mouse) {
		return false
	}

	keys := make([]int, 0, len(d.listeners))
	for k := range d.listeners {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	for _, k := range keys {
		if fn, live := d.listeners[k]; live {
			fn(mouse)
		}
	}
	return true
}

// IsPointerDown reports whether msg is a button press. Wheel, motion and
// release events are not.
func IsPointerDown(msg tea.MouseMsg) bool {
	if msg.Action != tea.MouseActionPress {
		return false
	}
	switch msg.Button {
	case tea.MouseButtonLeft, tea.MouseButtonMiddle, tea.MouseButtonRight:
		return true
	}
	return false
}
