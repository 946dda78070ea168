package layout

import "math"

// containingAncestor returns the nearest positioned ancestor box.
func containingAncestor(b *LayoutBox) *LayoutBox {
	for p := b.Parent; p != nil; p = p.Parent {
		if p.Positioned() {
			return p
		}
	}
	return nil
}

// layoutPending lays out absolutely and fixed positioned boxes once the
// normal flow is done. Boxes found while laying these out are appended to
// the queue and handled in the same loop.
func (lc *LayoutContext) layoutPending() {
	for i := 0; i < len(lc.pending); i++ {
		lc.layoutPositioned(lc.pending[i])
	}
	lc.pending = nil
}

func (lc *LayoutContext) layoutPositioned(p pendingBox) {
	b := p.box
	cs := b.ComputedStyle
	viewport := Rect{Width: lc.ViewportWidth, Height: lc.ViewportHeight}

	cb := viewport
	fixed := b.Position() == "fixed"
	if !fixed {
		if anc := containingAncestor(b); anc != nil {
			cb = anc.BorderRect()
			if anc.BoxType != InlineBox {
				cb = anc.Dimensions.PaddingBox()
			}
			fixed = anc.Fixed
		}
	}

	resolveEdges(b, cb.Width)
	d := &b.Dimensions
	hEdges := horizontalEdges(d)
	vEdges := verticalEdges(d)

	offset := func(prop string, base float64) (float64, bool) {
		if cs.IsAuto(prop) {
			return 0, false
		}
		return cs.Px(prop, base), true
	}
	left, hasLeft := offset("left", cb.Width)
	right, hasRight := offset("right", cb.Width)
	top, hasTop := offset("top", cb.Height)
	bottom, hasBottom := offset("bottom", cb.Height)

	width, ok := specifiedWidth(b, cb.Width)
	switch {
	case ok:
	case hasLeft && hasRight:
		width = math.Max(0, cb.Width-left-right-hEdges)
	default:
		avail := cb.Width - hEdges
		if hasLeft {
			avail -= left
		}
		if hasRight {
			avail -= right
		}
		width = math.Min(lc.maxContentWidth(b), math.Max(0, avail))
	}
	width = clampSize(b, width, "width", cb.Width)

	height := -1.0
	if h, ok := specifiedHeight(b, cb.Height); ok {
		height = h
	} else if hasTop && hasBottom {
		height = math.Max(0, cb.Height-top-bottom-vEdges)
	}

	staticX := p.parent.Dimensions.Content.X + p.relX
	staticY := p.parent.Dimensions.Content.Y + p.relY
	x, y := staticX, staticY
	switch {
	case hasLeft:
		x = cb.X + left
	case hasRight:
		x = cb.X + cb.Width - right - (width + hEdges)
	}
	if hasTop {
		y = cb.Y + top
	}

	lc.layoutBox(b, cb, x, y, sizing{width: width, height: height})
	if !hasTop && hasBottom {
		mb := d.MarginBox()
		shift(b, 0, cb.Y+cb.Height-bottom-(mb.Y+mb.Height))
	}
	if fixed {
		markFixed(b)
	}
}
