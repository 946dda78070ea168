package layout

import (
	"math"
	"strings"
)

// sizing carries constraints a parent imposes on a child's content box.
// Negative width or height means unconstrained.
type sizing struct {
	shrink bool
	width  float64
	height float64
}

var unconstrained = sizing{width: -1, height: -1}

// resolveEdges computes margin, border and padding. Percentages resolve
// against the containing block width.
func resolveEdges(b *LayoutBox, cbWidth float64) {
	d := &b.Dimensions
	if b.Element == nil {
		d.Margin, d.Border, d.Padding = EdgeSizes{}, EdgeSizes{}, EdgeSizes{}
		return
	}
	base := math.Max(cbWidth, 0)
	cs := b.ComputedStyle
	edge := func(prefix, suffix string) EdgeSizes {
		return EdgeSizes{
			Top:    cs.Px(prefix+"top"+suffix, base),
			Right:  cs.Px(prefix+"right"+suffix, base),
			Bottom: cs.Px(prefix+"bottom"+suffix, base),
			Left:   cs.Px(prefix+"left"+suffix, base),
		}
	}
	d.Margin = edge("margin-", "")
	d.Border = edge("border-", "-width")
	d.Padding = edge("padding-", "")
}

func horizontalEdges(d *Dimensions) float64 {
	return d.Margin.Left + d.Margin.Right + d.Border.Left + d.Border.Right + d.Padding.Left + d.Padding.Right
}

func verticalEdges(d *Dimensions) float64 {
	return d.Margin.Top + d.Margin.Bottom + d.Border.Top + d.Border.Bottom + d.Padding.Top + d.Padding.Bottom
}

// specifiedWidth returns the content width the style asks for. Edges must
// already be resolved.
func specifiedWidth(b *LayoutBox, cbWidth float64) (float64, bool) {
	if b.Element == nil {
		return 0, false
	}
	cs := b.ComputedStyle
	if cs.IsAuto("width") {
		return intrinsicWidth(b)
	}
	if strings.HasSuffix(cs.Keyword("width"), "%") && cbWidth < 0 {
		return 0, false
	}
	w := cs.Px("width", cbWidth)
	if cs.Keyword("box-sizing") == "border-box" {
		d := b.Dimensions
		w -= d.Padding.Left + d.Padding.Right + d.Border.Left + d.Border.Right
	}
	return math.Max(w, 0), true
}

func specifiedHeight(b *LayoutBox, cbHeight float64) (float64, bool) {
	if b.Element == nil {
		return 0, false
	}
	cs := b.ComputedStyle
	if cs.IsAuto("height") {
		if replaced(b.Element) {
			return intrinsicHeight(b)
		}
		return 0, false
	}
	if strings.HasSuffix(cs.Keyword("height"), "%") && cbHeight < 0 {
		return 0, false
	}
	h := cs.Px("height", cbHeight)
	if cs.Keyword("box-sizing") == "border-box" {
		d := b.Dimensions
		h -= d.Padding.Top + d.Padding.Bottom + d.Border.Top + d.Border.Bottom
	}
	return math.Max(h, 0), true
}

func clampSize(b *LayoutBox, v float64, axis string, base float64) float64 {
	if b.Element == nil {
		return v
	}
	cs := b.ComputedStyle
	maxProp, minProp := "max-"+axis, "min-"+axis
	percentOK := func(prop string) bool {
		return base >= 0 || !strings.HasSuffix(cs.Keyword(prop), "%")
	}
	if !cs.IsAuto(maxProp) && percentOK(maxProp) {
		v = math.Min(v, cs.Px(maxProp, base))
	}
	if percentOK(minProp) {
		v = math.Max(v, cs.Px(minProp, base))
	}
	return v
}

// layoutBox lays out b with its margin box's top-left corner at (x, y)
// inside the containing block cb. A negative cb.Height means the
// containing block height is not known.
func (lc *LayoutContext) layoutBox(b *LayoutBox, cb Rect, x, y float64, sz sizing) {
	d := &b.Dimensions
	resolveEdges(b, cb.Width)
	edges := horizontalEdges(d)

	width := sz.width
	if width < 0 {
		if w, ok := specifiedWidth(b, cb.Width); ok {
			width = w
		} else if sz.shrink {
			width = math.Min(lc.maxContentWidth(b), math.Max(0, cb.Width-edges))
		} else {
			width = math.Max(0, cb.Width-edges)
		}
		width = clampSize(b, width, "width", cb.Width)
	}

	if !sz.shrink && b.BoxType == BlockBox && b.Element != nil && cb.Width >= 0 {
		cs := b.ComputedStyle
		if free := cb.Width - edges - width; free > 0 && cs.IsAuto("margin-left") && cs.IsAuto("margin-right") {
			d.Margin.Left += free / 2
			d.Margin.Right += free / 2
		}
	}

	d.Content.Width = width
	d.Content.X = x + d.Margin.Left + d.Border.Left + d.Padding.Left
	d.Content.Y = y + d.Margin.Top + d.Border.Top + d.Padding.Top

	height := sz.height
	if height < 0 {
		if h, ok := specifiedHeight(b, cb.Height); ok {
			height = clampSize(b, h, "height", cb.Height)
		}
	}
	b.definiteHeight = height >= 0
	d.Content.Height = math.Max(height, 0)

	used := lc.layoutContents(b, height)
	if height < 0 {
		height = clampSize(b, used, "height", cb.Height)
	}
	d.Content.Height = height
}

// layoutContents lays out the children of b and returns the height they
// occupy.
func (lc *LayoutContext) layoutContents(b *LayoutBox, definiteHeight float64) float64 {
	if h, ok := intrinsicHeight(b); ok {
		return h
	}
	if b.flex {
		return lc.layoutFlex(b, definiteHeight)
	}
	for _, c := range b.Children {
		if c.blockLevel() {
			return lc.layoutBlockChildren(b)
		}
	}
	return lc.layoutInlineChildren(b)
}

func (lc *LayoutContext) containingRect(b *LayoutBox) Rect {
	c := b.Dimensions.Content
	if !b.definiteHeight {
		c.Height = -1
	}
	return c
}

func (lc *LayoutContext) deferPositioned(b, parent *LayoutBox, x, y float64) {
	lc.pending = append(lc.pending, pendingBox{
		box:    b,
		parent: parent,
		relX:   x - parent.Dimensions.Content.X,
		relY:   y - parent.Dimensions.Content.Y,
	})
}

// layoutBlockChildren stacks block-level children vertically. Adjacent
// sibling margins collapse to the larger of the two.
func (lc *LayoutContext) layoutBlockChildren(b *LayoutBox) float64 {
	content := b.Dimensions.Content
	cb := lc.containingRect(b)
	cursor := content.Y
	prevMargin := 0.0
	for _, c := range b.Children {
		if c.OutOfFlow() {
			lc.deferPositioned(c, b, content.X, cursor)
			continue
		}
		resolveEdges(c, cb.Width)
		overlap := math.Max(0, math.Min(prevMargin, c.Dimensions.Margin.Top))
		lc.layoutBox(c, cb, content.X, cursor-overlap, unconstrained)
		mb := c.Dimensions.MarginBox()
		cursor = mb.Y + mb.Height
		prevMargin = c.Dimensions.Margin.Bottom
	}
	return cursor - content.Y
}

// maxContentWidth estimates the content width b needs to avoid wrapping.
func (lc *LayoutContext) maxContentWidth(b *LayoutBox) float64 {
	if b.BoxType == TextBox {
		return TextWidth(collapseSpace(b.TextContent), b.ComputedStyle.Px("font-size", 0))
	}
	if w, ok := specifiedWidth(b, -1); ok {
		return w
	}
	var widest, run float64
	for _, c := range b.Children {
		if c.OutOfFlow() {
			continue
		}
		resolveEdges(c, 0)
		w := lc.maxContentWidth(c) + horizontalEdges(&c.Dimensions)
		if c.blockLevel() && !(b.flex && !isColumn(b)) {
			widest = math.Max(widest, w)
		} else {
			run += w
		}
	}
	return math.Max(widest, run)
}

func collapseSpace(s string) string {
	var sb strings.Builder
	space := false
	for _, r := range s {
		if r == ' ' || r == '\n' || r == '\t' || r == '\r' || r == '\f' {
			space = true
			continue
		}
		if space {
			sb.WriteByte(' ')
			space = false
		}
		sb.WriteRune(r)
	}
	if space {
		sb.WriteByte(' ')
	}
	return sb.String()
}
