package inspector

import "github.com/chrisuehlinger/domdebug/dom"

// BoundingBox is an element's border box in document coordinates.
type BoundingBox struct {
	Top    float64
	Left   float64
	Width  float64
	Height float64
}

// Tracker measures elements. Nothing is cached: every call asks the host.
type Tracker struct {
	host  Host
	state *State
}

// NewTracker creates a tracker that only measures while state is active.
func NewTracker(host Host, state *State) *Tracker {
	return &Tracker{host: host, state: state}
}

// Measure returns the element's viewport box shifted by the scroll offset.
// It reports false for a nil element, while inspection is off, and for
// elements no longer in the document.
func (t *Tracker) Measure(el *dom.Element) (BoundingBox, bool) {
	if el == nil || !t.state.Active() || !t.host.IsConnected(el) {
		return BoundingBox{}, false
	}
	r := t.host.ClientRect(el)
	sx, sy := t.host.ScrollOffset()
	return BoundingBox{
		Top:    r.Top() + sy,
		Left:   r.Left() + sx,
		Width:  r.Width,
		Height: r.Height,
	}, true
}
