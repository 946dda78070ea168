package inspector

import "github.com/chrisuehlinger/domdebug/dom"

// Mode is the controller state derived from State.
type Mode int

const (
	Inactive Mode = iota
	ActiveNoSelection
	ActiveSelected
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case Inactive:
		return "inactive"
	case ActiveNoSelection:
		return "active-no-selection"
	case ActiveSelected:
		return "active-selected"
	}
	return "unknown"
}

// State is the on/off flag and the selected element. A selection exists
// only while active.
type State struct {
	active   bool
	selected *dom.Element
}

// Activate turns inspection on. The selection is left alone.
func (s *State) Activate() {
	s.active = true
}

// Deactivate turns inspection off and clears the selection.
func (s *State) Deactivate() {
	s.active = false
	s.selected = nil
}

// Select replaces the selection. It is ignored while inactive.
func (s *State) Select(el *dom.Element) {
	if !s.active || el == nil {
		return
	}
	s.selected = el
}

// Active reports whether inspection is on.
func (s *State) Active() bool {
	return s.active
}

// Selected returns the selected element, or nil.
func (s *State) Selected() *dom.Element {
	return s.selected
}

// Mode returns the current mode.
func (s *State) Mode() Mode {
	switch {
	case !s.active:
		return Inactive
	case s.selected == nil:
		return ActiveNoSelection
	}
	return ActiveSelected
}
