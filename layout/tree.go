package layout

import (
	"sort"

	"github.com/chrisuehlinger/domdebug/css"
	"github.com/chrisuehlinger/domdebug/dom"
)

// Tree is the result of laying out a document.
type Tree struct {
	Root *LayoutBox

	viewportWidth  float64
	viewportHeight float64
	boxes          map[*dom.Element]*LayoutBox
	paintOrder     []*LayoutBox
}

// Layout lays out doc for its current viewport using precomputed styles.
func Layout(doc *dom.Document, styles map[*dom.Element]*css.ComputedStyle) *Tree {
	view := doc.View()
	return NewLayoutContext(view.Width, view.Height).Layout(doc, styles)
}

// Layout builds and lays out the box tree of doc.
func (lc *LayoutContext) Layout(doc *dom.Document, styles map[*dom.Element]*css.ComputedStyle) *Tree {
	t := &Tree{
		viewportWidth:  lc.ViewportWidth,
		viewportHeight: lc.ViewportHeight,
		boxes:          make(map[*dom.Element]*LayoutBox),
	}
	root := doc.DocumentElement()
	if root == nil {
		return t
	}
	t.Root = lc.buildTree(root, styles, nil)
	if t.Root == nil {
		return t
	}
	viewport := Rect{Width: lc.ViewportWidth, Height: lc.ViewportHeight}
	lc.layoutBox(t.Root, viewport, 0, 0, unconstrained)
	lc.layoutPending()

	t.index(t.Root)
	t.paintOrder = paintOrder(t.Root)
	return t
}

func (t *Tree) index(b *LayoutBox) {
	if b.Element != nil {
		t.boxes[b.Element] = b
	}
	for _, c := range b.Children {
		t.index(c)
	}
}

// Box returns the box generated by el, or nil if el is not rendered.
func (t *Tree) Box(el *dom.Element) *LayoutBox {
	return t.boxes[el]
}

// PaintOrder returns every box in the order it is painted, back to front.
func (t *Tree) PaintOrder() []*LayoutBox {
	return t.paintOrder
}

// paintOrder sorts boxes by stacking layer. Positioned boxes paint above
// the normal flow of the same z-index; descendants share the layer of
// their nearest positioned ancestor. Tree order breaks ties.
func paintOrder(root *LayoutBox) []*LayoutBox {
	type entry struct {
		box        *LayoutBox
		z          int
		positioned bool
	}
	var entries []entry
	var walk func(b *LayoutBox, z int, positioned bool)
	walk = func(b *LayoutBox, z int, positioned bool) {
		if b.IsStackingContext {
			positioned = true
			if b.ComputedStyle.Keyword("z-index") != "auto" {
				z = b.ZIndex
			}
		}
		entries = append(entries, entry{b, z, positioned})
		for _, c := range b.Children {
			walk(c, z, positioned)
		}
	}
	walk(root, 0, false)

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].z != entries[j].z {
			return entries[i].z < entries[j].z
		}
		return !entries[i].positioned && entries[j].positioned
	})
	out := make([]*LayoutBox, len(entries))
	for i, e := range entries {
		out[i] = e.box
	}
	return out
}

// HitTest returns the topmost element under the viewport point (x, y).
// Boxes with pointer-events: none or visibility: hidden are transparent to
// the pointer. Points inside the viewport that hit nothing resolve to the
// root element; points outside it resolve to nil.
func (t *Tree) HitTest(x, y, scrollX, scrollY float64) *dom.Element {
	if t.Root == nil || x < 0 || y < 0 || x >= t.viewportWidth || y >= t.viewportHeight {
		return nil
	}
	for i := len(t.paintOrder) - 1; i >= 0; i-- {
		b := t.paintOrder[i]
		if b.BoxType == AnonymousBox {
			continue
		}
		cs := b.ComputedStyle
		if cs.Keyword("pointer-events") == "none" || cs.Keyword("visibility") == "hidden" {
			continue
		}
		px, py := x, y
		if !b.Fixed {
			px += scrollX
			py += scrollY
		}
		for _, r := range b.Rects() {
			if r.Contains(px, py) {
				return owningElement(b)
			}
		}
	}
	return t.Root.Element
}

func owningElement(b *LayoutBox) *dom.Element {
	for ; b != nil; b = b.Parent {
		if b.Element != nil {
			return b.Element
		}
	}
	return nil
}

// ApplyGeometry writes each element's border box into the document.
// Elements that generated no box get nil geometry.
func (t *Tree) ApplyGeometry(doc *dom.Document) {
	dom.WalkElements(doc.AsNode(), func(el *dom.Element) bool {
		el.SetGeometry(nil)
		return true
	})
	for el, b := range t.boxes {
		r := b.BorderRect()
		el.SetGeometry(&dom.ElementGeometry{
			X:      r.X,
			Y:      r.Y,
			Width:  r.Width,
			Height: r.Height,
			Fixed:  b.Fixed,
		})
	}
}

// ContentSize returns the scrollable size of the document: the extent of
// every box that scrolls with it, and never less than the viewport.
func (t *Tree) ContentSize() (float64, float64) {
	w, h := t.viewportWidth, t.viewportHeight
	var walk func(b *LayoutBox)
	walk = func(b *LayoutBox) {
		if b.Fixed {
			return
		}
		for _, r := range b.Rects() {
			w = max(w, r.X+r.Width)
			h = max(h, r.Y+r.Height)
		}
		if b.BoxType != InlineBox && b.BoxType != TextBox {
			mb := b.Dimensions.MarginBox()
			w = max(w, mb.X+mb.Width)
			h = max(h, mb.Y+mb.Height)
		}
		for _, c := range b.Children {
			walk(c)
		}
	}
	if t.Root != nil {
		walk(t.Root)
	}
	return w, h
}
