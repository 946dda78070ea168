// Package inspector implements an in-page element inspector: a toggle,
// hover and selection highlight overlays, and a side panel that binds a
// fixed list of style properties of the selected element to editable
// fields.
//
// The inspector attaches its own nodes to the document it inspects and
// reads and writes styles and geometry through a Host, so the same code
// runs against the live page engine and against fakes in tests.
package inspector

import (
	"errors"

	"github.com/chrisuehlinger/domdebug/dom"
)

// Host gives the inspector access to the rendering engine behind a
// document.
type Host interface {
	// InlineStyle returns the element's own inline value for prop, or "".
	InlineStyle(el *dom.Element, prop string) string
	// ComputedStyle returns the effective value of prop.
	ComputedStyle(el *dom.Element, prop string) string
	// SetInlineStyle writes prop to the element's inline style as given.
	SetInlineStyle(el *dom.Element, prop, value string)
	// StyleAttribute returns the literal style attribute and whether the
	// element has one.
	StyleAttribute(el *dom.Element) (string, bool)
	// ClientRect returns the element's border box relative to the viewport.
	ClientRect(el *dom.Element) dom.DOMRect
	// ScrollOffset returns the document scroll position.
	ScrollOffset() (x, y float64)
	// IsConnected reports whether el is still in the document.
	IsConnected(el *dom.Element) bool
}

var (
	// ErrNoHost is returned by Attach when Options.Host is nil.
	ErrNoHost = errors.New("inspector: no host")
	// ErrNoBody is returned when the document has no head or body to
	// attach the inspector to.
	ErrNoBody = errors.New("inspector: document has no body")
	// ErrNotMounted is returned before the inspector's nodes exist, while
	// the document is still loading.
	ErrNotMounted = errors.New("inspector: not mounted")
	// ErrNotConnected is returned for elements outside the document.
	ErrNotConnected = errors.New("inspector: element is not connected")
	// ErrInactive is returned for operations that need inspection on.
	ErrInactive = errors.New("inspector: inspection is not active")
	// ErrNoSelection is returned for operations that need a selection.
	ErrNoSelection = errors.New("inspector: no element selected")
	// ErrOwnElement is returned when asked to select the inspector's UI.
	ErrOwnElement = errors.New("inspector: element belongs to the inspector")
	// ErrUnknownProperty is returned for properties outside the panel.
	ErrUnknownProperty = errors.New("inspector: property is not bound")
	// ErrBusy is returned by Activate, Select and Apply when called from
	// inside an inspector event handler.
	ErrBusy = errors.New("inspector: called from an event handler")
	// ErrClipboardDenied is returned by clipboards that refuse writes.
	ErrClipboardDenied = errors.New("inspector: clipboard access denied")
)
