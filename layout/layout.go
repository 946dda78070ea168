// Package layout handles the layout/box model calculations.
//
// The engine turns a styled document into a tree of boxes with
// document-coordinate geometry. It covers block flow with sibling margin
// collapsing, inline line breaking with a fixed-advance font model,
// inline-block, single-line flexbox and absolute/fixed positioning. The
// result feeds element geometry, hit testing and painting.
package layout

import (
	"strings"
	"unicode/utf8"

	"github.com/chrisuehlinger/domdebug/css"
	"github.com/chrisuehlinger/domdebug/dom"
)

// Dimensions represents the dimensions of a layout box.
type Dimensions struct {
	Content Rect
	Padding EdgeSizes
	Border  EdgeSizes
	Margin  EdgeSizes
}

// Rect represents a rectangular area.
type Rect struct {
	X, Y, Width, Height float64
}

// EdgeSizes represents the sizes of edges (top, right, bottom, left).
type EdgeSizes struct {
	Top, Right, Bottom, Left float64
}

// BoxType represents the type of layout box.
type BoxType int

const (
	BlockBox BoxType = iota
	InlineBox
	InlineBlockBox
	TextBox
	// AnonymousBox wraps runs of inline content that sit between block
	// siblings. It has no element and no edges of its own.
	AnonymousBox
)

// String returns a short name for the box type.
func (bt BoxType) String() string {
	switch bt {
	case BlockBox:
		return "block"
	case InlineBox:
		return "inline"
	case InlineBlockBox:
		return "inline-block"
	case TextBox:
		return "text"
	case AnonymousBox:
		return "anonymous"
	}
	return "unknown"
}

// LayoutBox represents a box in the layout tree.
type LayoutBox struct {
	Dimensions Dimensions
	BoxType    BoxType

	// Element is nil for text and anonymous boxes.
	Element *dom.Element
	// ComputedStyle is the element's style; text and anonymous boxes carry
	// the style of the element they belong to.
	ComputedStyle *css.ComputedStyle
	// TextContent is set for text boxes only.
	TextContent string

	Parent   *LayoutBox
	Children []*LayoutBox

	// Fragments are the per-line rectangles of inline and text boxes.
	Fragments []Rect
	// FragmentText holds the text painted in each fragment of a text box.
	FragmentText []string

	// Fixed marks boxes laid out against the viewport rather than the
	// document; their coordinates do not move with scrolling.
	Fixed bool

	ZIndex            int
	IsStackingContext bool

	flex           bool
	lineBreak      bool
	definiteHeight bool
}

// NewLayoutContext creates a context for a viewport of the given size.
func NewLayoutContext(viewportWidth, viewportHeight float64) *LayoutContext {
	return &LayoutContext{
		ViewportWidth:  viewportWidth,
		ViewportHeight: viewportHeight,
	}
}

// LayoutContext holds the state of a single layout pass.
type LayoutContext struct {
	ViewportWidth  float64
	ViewportHeight float64

	pending []pendingBox
}

// pendingBox is an absolutely or fixed positioned box waiting for the
// normal flow to finish. Its static position is kept relative to the
// content origin of the box that encountered it, so later shifts of that
// box carry over.
type pendingBox struct {
	box    *LayoutBox
	parent *LayoutBox
	relX   float64
	relY   float64
}

// charAdvance is the advance of one character as a fraction of the font
// size. The engine has no font metrics.
const charAdvance = 0.5

// TextWidth returns the width of s in the engine's font model.
func TextWidth(s string, fontSize float64) float64 {
	return float64(utf8.RuneCountInString(s)) * fontSize * charAdvance
}

// PaddingBox returns the area covered by content and padding.
func (d *Dimensions) PaddingBox() Rect {
	return d.Content.ExpandedBy(d.Padding)
}

// BorderBox returns the area covered by content, padding, and border.
func (d *Dimensions) BorderBox() Rect {
	return d.PaddingBox().ExpandedBy(d.Border)
}

// MarginBox returns the area covered by content, padding, border, and margin.
func (d *Dimensions) MarginBox() Rect {
	return d.BorderBox().ExpandedBy(d.Margin)
}

// ExpandedBy returns a rectangle expanded by the given edge sizes.
func (r Rect) ExpandedBy(edge EdgeSizes) Rect {
	return Rect{
		X:      r.X - edge.Left,
		Y:      r.Y - edge.Top,
		Width:  r.Width + edge.Left + edge.Right,
		Height: r.Height + edge.Top + edge.Bottom,
	}
}

// Contains reports whether the point lies inside r. The right and bottom
// edges are exclusive.
func (r Rect) Contains(x, y float64) bool {
	return r.Width > 0 && r.Height > 0 &&
		x >= r.X && x < r.X+r.Width && y >= r.Y && y < r.Y+r.Height
}

// Union returns the smallest rectangle covering r and o. Empty rectangles
// are ignored.
func (r Rect) Union(o Rect) Rect {
	if r.Width <= 0 && r.Height <= 0 {
		return o
	}
	if o.Width <= 0 && o.Height <= 0 {
		return r
	}
	x0, y0 := min(r.X, o.X), min(r.Y, o.Y)
	x1 := max(r.X+r.Width, o.X+o.Width)
	y1 := max(r.Y+r.Height, o.Y+o.Height)
	return Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

// Translate returns r moved by dx, dy.
func (r Rect) Translate(dx, dy float64) Rect {
	r.X += dx
	r.Y += dy
	return r
}

// Rects returns the rectangles the box covers: its border box, or its line
// fragments for inline and text boxes.
func (b *LayoutBox) Rects() []Rect {
	if b.BoxType == InlineBox || b.BoxType == TextBox {
		return b.Fragments
	}
	return []Rect{b.Dimensions.BorderBox()}
}

// BorderRect returns the bounding border box of the box.
func (b *LayoutBox) BorderRect() Rect {
	if b.BoxType == InlineBox || b.BoxType == TextBox {
		var r Rect
		for i, f := range b.Fragments {
			if i == 0 {
				r = f
				continue
			}
			r = r.Union(f)
		}
		return r
	}
	return b.Dimensions.BorderBox()
}

// Position returns the computed position keyword of the box.
func (b *LayoutBox) Position() string {
	if b.Element == nil || b.ComputedStyle == nil {
		return "static"
	}
	return b.ComputedStyle.Keyword("position")
}

// Positioned reports whether the box has a position other than static.
func (b *LayoutBox) Positioned() bool {
	p := b.Position()
	return p != "static" && p != ""
}

// OutOfFlow reports whether the box is absolutely or fixed positioned.
func (b *LayoutBox) OutOfFlow() bool {
	p := b.Position()
	return p == "absolute" || p == "fixed"
}

func (b *LayoutBox) blockLevel() bool {
	return (b.BoxType == BlockBox || b.BoxType == AnonymousBox) && !b.OutOfFlow()
}

func (b *LayoutBox) isWhitespace() bool {
	return b.BoxType == TextBox && strings.TrimSpace(b.TextContent) == ""
}

// shift moves the box and its whole subtree.
func shift(b *LayoutBox, dx, dy float64) {
	if dx == 0 && dy == 0 {
		return
	}
	b.Dimensions.Content = b.Dimensions.Content.Translate(dx, dy)
	for i := range b.Fragments {
		b.Fragments[i] = b.Fragments[i].Translate(dx, dy)
	}
	for _, c := range b.Children {
		shift(c, dx, dy)
	}
}

func markFixed(b *LayoutBox) {
	b.Fixed = true
	for _, c := range b.Children {
		if !c.OutOfFlow() {
			markFixed(c)
		}
	}
}
