// Package page assembles a parsed document, the style resolver and the
// layout engine into a live page: computed styles, geometry that follows
// DOM mutations, scrolling, resizing and synthetic pointer input.
package page

import (
	"image"
	"image/color"
	"math"
	"sync"

	"go.uber.org/zap"

	"github.com/chrisuehlinger/domdebug/css"
	"github.com/chrisuehlinger/domdebug/dom"
	"github.com/chrisuehlinger/domdebug/layout"
	"github.com/chrisuehlinger/domdebug/render"
)

// Page is a document together with its styles and current layout.
// Layout is recomputed lazily: any DOM mutation or viewport resize marks
// it stale and the next geometry query lays the document out again.
type Page struct {
	doc      *dom.Document
	resolver *css.StyleResolver
	logger   *zap.Logger

	mu      sync.Mutex
	tree    *layout.Tree
	styles  map[*dom.Element]*css.ComputedStyle
	version uint64
	width   float64
	height  float64
	valid   bool
}

// New wraps doc. A nil resolver gets the default one; a nil logger
// discards output.
func New(doc *dom.Document, resolver *css.StyleResolver, logger *zap.Logger) *Page {
	if resolver == nil {
		resolver = css.NewStyleResolver()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	view := doc.View()
	resolver.SetViewport(view.Width, view.Height)
	return &Page{
		doc:      doc,
		resolver: resolver,
		logger:   logger.Named("page"),
	}
}

// Document returns the page's document.
func (p *Page) Document() *dom.Document {
	return p.doc
}

// Resolver returns the style resolver used for the page.
func (p *Page) Resolver() *css.StyleResolver {
	return p.resolver
}

// Invalidate forces the next query to recompute styles and layout, for
// changes the document cannot see such as a linked stylesheet arriving.
func (p *Page) Invalidate() {
	p.mu.Lock()
	p.valid = false
	p.mu.Unlock()
}

// Layout returns the current layout tree, recomputing it if stale.
func (p *Page) Layout() *layout.Tree {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ensureLayout()
}

func (p *Page) ensureLayout() *layout.Tree {
	view := p.doc.View()
	if p.valid && p.version == p.doc.Version() && p.width == view.Width && p.height == view.Height {
		return p.tree
	}
	p.styles = p.resolver.ComputeTree(p.doc)
	p.tree = layout.NewLayoutContext(view.Width, view.Height).Layout(p.doc, p.styles)
	p.tree.ApplyGeometry(p.doc)
	p.version = p.doc.Version()
	p.width, p.height = view.Width, view.Height
	p.valid = true
	p.logger.Debug("Relayout",
		zap.Uint64("version", p.version),
		zap.Float64("viewport_width", view.Width),
		zap.Float64("viewport_height", view.Height))
	return p.tree
}

// ContentSize returns the scrollable size of the document.
func (p *Page) ContentSize() (float64, float64) {
	return p.Layout().ContentSize()
}

// InlineStyle returns the element's own inline value for prop.
func (p *Page) InlineStyle(el *dom.Element, prop string) string {
	return el.Style().GetPropertyValue(prop)
}

// ComputedStyle returns the computed value of prop, or "" for elements
// outside the rendered document.
func (p *Page) ComputedStyle(el *dom.Element, prop string) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ensureLayout()
	cs, ok := p.styles[el]
	if !ok {
		return ""
	}
	return cs.Value(prop)
}

// SetInlineStyle writes prop to the element's inline style. The value is
// stored as given; an empty value removes the declaration.
func (p *Page) SetInlineStyle(el *dom.Element, prop, value string) {
	el.Style().SetProperty(prop, value)
}

// StyleAttribute returns the literal style attribute.
func (p *Page) StyleAttribute(el *dom.Element) (string, bool) {
	if !el.HasAttribute("style") {
		return "", false
	}
	return el.GetAttribute("style"), true
}

// ClientRect returns the element's border box relative to the viewport.
// Disconnected elements report a zero rect.
func (p *Page) ClientRect(el *dom.Element) dom.DOMRect {
	if !p.IsConnected(el) {
		return dom.DOMRect{}
	}
	p.Layout()
	return el.GetBoundingClientRect()
}

// ScrollOffset returns the document scroll position.
func (p *Page) ScrollOffset() (float64, float64) {
	view := p.doc.View()
	return view.ScrollX, view.ScrollY
}

// IsConnected reports whether el is still part of the page's document.
func (p *Page) IsConnected(el *dom.Element) bool {
	return el != nil && el.IsConnected() && el.AsNode().OwnerDocument() == p.doc
}

// ScrollTo scrolls the document, clamped to its content, and fires a
// scroll event on the document when the position changed.
func (p *Page) ScrollTo(x, y float64) {
	cw, ch := p.ContentSize()
	view := p.doc.View()
	x = math.Max(0, math.Min(x, cw-view.Width))
	y = math.Max(0, math.Min(y, ch-view.Height))
	if x == view.ScrollX && y == view.ScrollY {
		return
	}
	p.doc.SetScroll(x, y)
	p.doc.AsNode().DispatchEvent(dom.NewEvent("scroll"))
}

// ScrollBy scrolls relative to the current position.
func (p *Page) ScrollBy(dx, dy float64) {
	x, y := p.ScrollOffset()
	p.ScrollTo(x+dx, y+dy)
}

// Resize changes the viewport and fires a resize event on the document.
func (p *Page) Resize(width, height float64) {
	view := p.doc.View()
	if width == view.Width && height == view.Height {
		return
	}
	p.doc.SetViewportSize(width, height)
	p.resolver.SetViewport(width, height)
	p.Invalidate()

	cw, ch := p.ContentSize()
	x := math.Max(0, math.Min(view.ScrollX, cw-width))
	y := math.Max(0, math.Min(view.ScrollY, ch-height))
	p.doc.SetScroll(x, y)
	p.doc.AsNode().DispatchEvent(dom.NewEvent("resize"))
}

// ElementAt returns the topmost element under the viewport point.
func (p *Page) ElementAt(x, y float64) *dom.Element {
	tree := p.Layout()
	sx, sy := p.ScrollOffset()
	return tree.HitTest(x, y, sx, sy)
}

// PointerMove fires mousemove at the element under the viewport point.
func (p *Page) PointerMove(x, y float64) *dom.Element {
	target := p.ElementAt(x, y)
	if target == nil {
		return nil
	}
	target.AsNode().DispatchEvent(dom.NewMouseEvent("mousemove", x, y))
	return target
}

// Click fires click at the element under the viewport point. It reports
// whether the default action was allowed to run.
func (p *Page) Click(x, y float64) bool {
	target := p.ElementAt(x, y)
	if target == nil {
		return true
	}
	return target.AsNode().DispatchEvent(dom.NewMouseEvent("click", x, y))
}

// Type replaces the value of a form control and fires input on it.
func (p *Page) Type(el *dom.Element, value string) {
	el.SetAttribute("value", value)
	ev := dom.NewEvent("input")
	ev.Data = value
	el.AsNode().DispatchEvent(ev)
}

// Paint draws the visible part of the page onto c.
func (p *Page) Paint(c *render.Canvas) {
	tree := p.Layout()
	sx, sy := p.ScrollOffset()
	c.Clear(color.White)
	c.Paint(tree, sx, sy)
}

// Snapshot paints the viewport into a new image.
func (p *Page) Snapshot() *image.RGBA {
	view := p.doc.View()
	c := render.NewCanvas(int(math.Ceil(view.Width)), int(math.Ceil(view.Height)))
	p.Paint(c)
	return c.Image()
}
