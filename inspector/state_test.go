package inspector

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/chrisuehlinger/domdebug/dom"
)

func TestStateTransitions(t *testing.T) {
	doc := dom.NewDocument()
	el := doc.CreateElement("div")
	var s State

	assert.Equal(t, Inactive, s.Mode())
	s.Select(el)
	assert.Nil(t, s.Selected(), "selection requires an active state")

	s.Activate()
	assert.Equal(t, ActiveNoSelection, s.Mode())
	s.Select(nil)
	assert.Equal(t, ActiveNoSelection, s.Mode())

	s.Select(el)
	assert.Equal(t, ActiveSelected, s.Mode())
	assert.Same(t, el, s.Selected())

	s.Activate()
	assert.Same(t, el, s.Selected(), "activating again keeps the selection")

	s.Deactivate()
	assert.Equal(t, Inactive, s.Mode())
	assert.Nil(t, s.Selected())
}

func TestModeString(t *testing.T) {
	assert.Equal(t, "inactive", Inactive.String())
	assert.Equal(t, "active-no-selection", ActiveNoSelection.String())
	assert.Equal(t, "active-selected", ActiveSelected.String())
	assert.Equal(t, "unknown", Mode(42).String())
}
