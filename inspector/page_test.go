package inspector_test

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chrisuehlinger/domdebug/css"
	"github.com/chrisuehlinger/domdebug/dom"
	"github.com/chrisuehlinger/domdebug/inspector"
	"github.com/chrisuehlinger/domdebug/page"
)

const cardHTML = `<!DOCTYPE html>
<html><head><title>cards</title></head>
<body style="margin: 0">
<div id="spacer" style="height: 100px"></div>
<div id="main" class="card featured" style="width: 200px; height: 50px; margin-left: 30px">Hello</div>
<div id="rest" style="height: 2000px"></div>
</body></html>`

func query(t *testing.T, doc *dom.Document, selector string) *dom.Element {
	t.Helper()
	el, err := css.QuerySelector(doc.AsNode(), selector)
	require.NoError(t, err)
	require.NotNil(t, el, selector)
	return el
}

func TestInspectLivePage(t *testing.T) {
	doc, err := dom.ParseHTML(cardHTML)
	require.NoError(t, err)
	doc.SetViewportSize(800, 600)
	p := page.New(doc, nil, nil)

	clip := &inspector.MemoryClipboard{}
	clock := clockwork.NewFakeClock()
	c, err := inspector.Attach(doc, inspector.Options{Host: p, Clipboard: clip, Clock: clock})
	require.NoError(t, err)

	main := doc.GetElementById("main")
	toggle := query(t, doc, ".dom-debug-toggle")

	// The toggle sits fixed in the top right corner.
	require.Same(t, toggle, p.ElementAt(750, 50))
	assert.True(t, p.Click(750, 50))
	assert.Equal(t, inspector.ActiveNoSelection, c.Mode())

	assert.Same(t, main, p.PointerMove(100, 120))
	s := c.Snapshot()
	assert.True(t, s.HoverVisible)
	assert.Equal(t, inspector.BoundingBox{Top: 100, Left: 30, Width: 200, Height: 50}, s.Hover)

	// Overlays do not intercept the pointer.
	assert.Same(t, main, p.ElementAt(100, 120))

	var pageClicks int
	main.AsNode().AddEventListener("click", func(*dom.Event) { pageClicks++ }, dom.ListenerOptions{})
	assert.False(t, p.Click(100, 120), "the inspection click is cancelled")
	assert.Zero(t, pageClicks)

	s = c.Snapshot()
	assert.Equal(t, inspector.ActiveSelected, s.Mode)
	assert.Equal(t, "div#main.card.featured", s.Header)
	assert.Equal(t, s.Hover, s.Selection)
	assert.Equal(t, "width: 200px; height: 50px; margin-left: 30px", s.Applied)

	field := query(t, doc, `input[data-property="backgroundColor"]`)
	assert.Equal(t, "rgba(0, 0, 0, 0)", field.GetAttribute("value"))
	p.Type(field, "#ff0000")

	assert.Equal(t, "#ff0000", p.InlineStyle(main, "background-color"))
	assert.Equal(t, "rgb(255, 0, 0)", p.ComputedStyle(main, "backgroundColor"))
	px := p.Snapshot().RGBAAt(130, 125)
	assert.Greater(t, px.R, uint8(200), "main is painted red under the overlays")
	assert.Less(t, px.G, uint8(60))

	query(t, doc, ".copy-styles-btn").AsNode().DispatchEvent(dom.NewMouseEvent("click", 0, 0))
	assert.Equal(t, "width: 200px; height: 50px; margin-left: 30px; background-color: #ff0000", clip.Text())
	assert.Equal(t, "✅ Copied!", c.Snapshot().CopyLabel)
	clock.Advance(inspector.DefaultCopyResetDelay)
	assert.Eventually(t, func() bool {
		return c.Snapshot().CopyLabel == "📋 Copy Applied Styles"
	}, time.Second, time.Millisecond)

	// Scrolling hides the hover box; the selection keeps its document position.
	p.ScrollTo(0, 60)
	s = c.Snapshot()
	assert.False(t, s.HoverVisible)
	assert.True(t, s.SelectionVisible)
	assert.Equal(t, 100.0, s.Selection.Top)
	assert.Equal(t, 40.0, p.ClientRect(main).Y)

	main.Remove()
	require.NotPanics(t, func() { p.Resize(640, 480) })
	s = c.Snapshot()
	assert.Equal(t, inspector.Inactive, s.Mode)
	assert.False(t, s.HoverVisible)
	assert.False(t, s.SelectionVisible)
}

func TestInspectorIgnoresItsOwnUI(t *testing.T) {
	doc, err := dom.ParseHTML(cardHTML)
	require.NoError(t, err)
	doc.SetViewportSize(800, 600)
	p := page.New(doc, nil, nil)
	c, err := inspector.Attach(doc, inspector.Options{Host: p, Clock: clockwork.NewFakeClock()})
	require.NoError(t, err)

	require.NoError(t, c.Activate())
	require.NoError(t, c.Select(doc.GetElementById("main")))

	// The open panel covers part of the viewport.
	panel := query(t, doc, ".dom-debug-panel")
	r := p.ClientRect(panel)
	require.Positive(t, r.Width)
	inside := p.ElementAt(r.X+r.Width/2, r.Y+r.Height/2)
	require.NotNil(t, inside)
	assert.NotNil(t, inside.Closest(".dom-debug-panel"))

	p.PointerMove(r.X+r.Width/2, r.Y+r.Height/2)
	p.Click(r.X+r.Width/2, r.Y+r.Height/2)
	s := c.Snapshot()
	assert.Same(t, doc.GetElementById("main"), s.Selected)
	assert.False(t, s.HoverVisible)
}
