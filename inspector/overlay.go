package inspector

import (
	"strconv"

	"github.com/chrisuehlinger/domdebug/dom"
)

// Overlay is a highlight rectangle backed by an absolutely positioned
// element. Its stylesheet makes it transparent to the pointer.
type Overlay struct {
	el      *dom.Element
	host    Host
	box     BoundingBox
	visible bool
}

func newOverlay(el *dom.Element, host Host) *Overlay {
	return &Overlay{el: el, host: host}
}

// Render shows the overlay over box, or hides it when ok is false.
func (o *Overlay) Render(box BoundingBox, ok bool) {
	if !ok {
		o.Hide()
		return
	}
	o.host.SetInlineStyle(o.el, "display", "block")
	o.host.SetInlineStyle(o.el, "top", px(box.Top))
	o.host.SetInlineStyle(o.el, "left", px(box.Left))
	o.host.SetInlineStyle(o.el, "width", px(box.Width))
	o.host.SetInlineStyle(o.el, "height", px(box.Height))
	o.box, o.visible = box, true
}

// Hide removes the overlay from rendering.
func (o *Overlay) Hide() {
	o.host.SetInlineStyle(o.el, "display", "none")
	o.box, o.visible = BoundingBox{}, false
}

// Visible reports whether the overlay is shown.
func (o *Overlay) Visible() bool {
	return o.visible
}

// Box returns the rectangle the overlay covers and whether it is shown.
func (o *Overlay) Box() (BoundingBox, bool) {
	return o.box, o.visible
}

// Element returns the overlay's node.
func (o *Overlay) Element() *dom.Element {
	return o.el
}

func px(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "px"
}
