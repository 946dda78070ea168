package inspector

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/chrisuehlinger/domdebug/dom"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const fixtureHTML = `<!DOCTYPE html>
<html><head><title>fixture</title></head>
<body>
<div id="main" class="card featured" style="padding: 4px">Main</div>
<p id="other" style="color:red;;  margin : 0">Other</p>
<a id="link" href="#">Link</a>
</body></html>`

// fakeHost serves geometry from a table and computed values from a map.
type fakeHost struct {
	rects            map[*dom.Element]dom.DOMRect
	computed         map[string]string
	scrollX, scrollY float64
}

func newFakeHost() *fakeHost {
	return &fakeHost{
		rects: make(map[*dom.Element]dom.DOMRect),
		computed: map[string]string{
			"backgroundColor": "rgba(0, 0, 0, 0)",
			"color":           "rgb(0, 0, 0)",
			"fontSize":        "16px",
			"padding":         "0px",
			"border":          "0px none rgb(0, 0, 0)",
			"borderRadius":    "0px",
		},
	}
}

func (h *fakeHost) InlineStyle(el *dom.Element, prop string) string {
	return el.Style().GetPropertyValue(prop)
}

func (h *fakeHost) ComputedStyle(_ *dom.Element, prop string) string {
	return h.computed[prop]
}

func (h *fakeHost) SetInlineStyle(el *dom.Element, prop, value string) {
	el.Style().SetProperty(prop, value)
}

func (h *fakeHost) StyleAttribute(el *dom.Element) (string, bool) {
	return el.GetAttribute("style"), el.HasAttribute("style")
}

func (h *fakeHost) ClientRect(el *dom.Element) dom.DOMRect {
	return h.rects[el]
}

func (h *fakeHost) ScrollOffset() (float64, float64) {
	return h.scrollX, h.scrollY
}

func (h *fakeHost) IsConnected(el *dom.Element) bool {
	return el.IsConnected()
}

type fixture struct {
	doc   *dom.Document
	host  *fakeHost
	clip  *MemoryClipboard
	clock clockwork.FakeClock
	c     *Controller

	main, other, link *dom.Element
}

func newFixture(t *testing.T, configure ...func(*Options)) *fixture {
	t.Helper()
	doc, err := dom.ParseHTML(fixtureHTML)
	require.NoError(t, err)

	f := &fixture{
		doc:   doc,
		host:  newFakeHost(),
		clip:  &MemoryClipboard{},
		clock: clockwork.NewFakeClock(),
		main:  doc.GetElementById("main"),
		other: doc.GetElementById("other"),
		link:  doc.GetElementById("link"),
	}
	f.host.rects[f.main] = dom.DOMRect{X: 10, Y: 20, Width: 200, Height: 50}
	f.host.rects[f.other] = dom.DOMRect{X: 10, Y: 90, Width: 300, Height: 18}
	f.host.rects[f.link] = dom.DOMRect{X: 10, Y: 120, Width: 32, Height: 18}

	opts := Options{Host: f.host, Clipboard: f.clip, Clock: f.clock}
	for _, fn := range configure {
		fn(&opts)
	}
	f.c, err = Attach(doc, opts)
	require.NoError(t, err)
	return f
}

// uiElements returns every node the inspector added to the body.
func (f *fixture) uiElements() []*dom.Element {
	m := f.c.markup
	out := []*dom.Element{m.toggle, m.panel, m.closeBtn, m.elementTag, m.editor, m.copyBtn, m.hover, m.selection}
	return append(out, m.inputs...)
}

func TestAttachAddsMarkup(t *testing.T) {
	f := newFixture(t)

	styles := f.doc.Head().QuerySelectorAll("style")
	require.Len(t, styles, 1)
	assert.Equal(t, "dom-debug-styles", styles[0].Id())
	assert.Contains(t, styles[0].TextContent(), ".dom-debug-highlight {")
	assert.NotContains(t, styles[0].TextContent(), "{p}")

	children := f.doc.Body().Children()
	require.GreaterOrEqual(t, len(children), 4)
	tail := children[len(children)-4:]
	assert.True(t, tail[0].ClassList().Contains("dom-debug-toggle"))
	assert.True(t, tail[1].ClassList().Contains("dom-debug-panel"))
	assert.True(t, tail[2].ClassList().Contains("dom-debug-highlight"))
	assert.True(t, tail[3].ClassList().Contains("dom-debug-active-highlight"))

	assert.Equal(t, placeholderText, f.c.Panel().Header())
	assert.Equal(t, copyLabel, f.c.Panel().CopyLabel())
	assert.Equal(t, Inactive, f.c.Mode())
	assert.True(t, f.c.Mounted())

	var labels []string
	for _, l := range f.c.markup.panel.QuerySelectorAll("label") {
		labels = append(labels, l.TextContent())
	}
	assert.Equal(t, []string{"Background Color", "Color", "Font Size", "Padding", "Border", "Border Radius"}, labels)
}

func TestAttachIsIdempotent(t *testing.T) {
	f := newFixture(t)

	again, err := Attach(f.doc, Options{Host: newFakeHost(), Prefix: "other"})
	require.NoError(t, err)
	assert.Same(t, f.c, again)
	assert.Len(t, f.doc.Head().QuerySelectorAll("style"), 1)
	assert.Len(t, f.doc.Body().QuerySelectorAll(".dom-debug-panel"), 1)

	found, ok := Lookup(f.doc)
	assert.True(t, ok)
	assert.Same(t, f.c, found)
}

func TestAttachErrors(t *testing.T) {
	doc, err := dom.ParseHTML("<p>x</p>")
	require.NoError(t, err)
	_, err = Attach(doc, Options{})
	assert.ErrorIs(t, err, ErrNoHost)

	empty := dom.NewDocument()
	_, err = Attach(empty, Options{Host: newFakeHost()})
	assert.ErrorIs(t, err, ErrNoBody)
	_, ok := Lookup(empty)
	assert.False(t, ok, "a failed attach must not be registered")
}

func TestAttachDeferredWhileLoading(t *testing.T) {
	doc, err := dom.ParseHTMLLoading(strings.NewReader(fixtureHTML))
	require.NoError(t, err)

	c, err := Attach(doc, Options{Host: newFakeHost()})
	require.NoError(t, err)
	assert.False(t, c.Mounted())
	assert.Empty(t, doc.Head().QuerySelectorAll("style"))

	c.Toggle()
	assert.Equal(t, Inactive, c.Mode(), "events before mount are dropped")
	assert.ErrorIs(t, c.Activate(), ErrNotMounted)

	doc.FinishParsing()
	assert.True(t, c.Mounted())
	assert.Len(t, doc.Head().QuerySelectorAll("style"), 1)
}

func TestToggleOnOffResets(t *testing.T) {
	f := newFixture(t)
	c := f.c

	c.Toggle()
	assert.Equal(t, ActiveNoSelection, c.Mode())
	assert.True(t, c.markup.toggle.ClassList().Contains("active"))
	assert.Equal(t, "crosshair", f.doc.Body().Style().GetPropertyValue("cursor"))

	c.PointerMove(f.other, 0, 0)
	c.Click(f.main, 0, 0)
	require.Equal(t, ActiveSelected, c.Mode())

	c.Toggle()
	c.Toggle()
	c.Toggle()

	assert.Equal(t, Inactive, c.Mode())
	assert.Nil(t, c.Selected())
	assert.Nil(t, c.HoverTarget())
	assert.False(t, c.HoverOverlay().Visible())
	assert.False(t, c.SelectionOverlay().Visible())
	assert.Equal(t, "none", c.HoverOverlay().Element().Style().GetPropertyValue("display"))
	assert.Equal(t, "none", c.SelectionOverlay().Element().Style().GetPropertyValue("display"))
	assert.Equal(t, placeholderText, c.Panel().Header())
	assert.Equal(t, "none", c.markup.editor.Style().GetPropertyValue("display"))
	assert.False(t, c.markup.toggle.ClassList().Contains("active"))
	assert.False(t, c.markup.panel.ClassList().Contains("active"))
	assert.False(t, f.doc.Body().HasAttribute("style"), "cursor must be restored")
}

func TestCloseDeactivates(t *testing.T) {
	f := newFixture(t)
	f.c.Toggle()
	f.c.Click(f.main, 0, 0)

	f.c.markup.closeBtn.AsNode().DispatchEvent(dom.NewMouseEvent("click", 0, 0))

	assert.Equal(t, Inactive, f.c.Mode())
	assert.Equal(t, placeholderText, f.c.Panel().Header())
}

func TestClickSelectsAndPositionsOverlay(t *testing.T) {
	f := newFixture(t)
	f.host.scrollX, f.host.scrollY = 5, 100
	f.c.Toggle()

	for _, el := range []*dom.Element{f.main, f.other, f.link} {
		f.c.Click(el, 0, 0)
		assert.Same(t, el, f.c.Selected())
		assert.Equal(t, ActiveSelected, f.c.Mode())

		want, ok := f.c.Tracker().Measure(el)
		require.True(t, ok)
		got, visible := f.c.SelectionOverlay().Box()
		assert.True(t, visible)
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("selection overlay mismatch for %s (-want +got):\n%s", Describe(el), diff)
		}
	}

	box, _ := f.c.SelectionOverlay().Box()
	assert.Equal(t, BoundingBox{Top: 220, Left: 15, Width: 32, Height: 18}, box)
	overlay := f.c.SelectionOverlay().Element().Style()
	assert.Equal(t, "block", overlay.GetPropertyValue("display"))
	assert.Equal(t, "220px", overlay.GetPropertyValue("top"))
	assert.Equal(t, "15px", overlay.GetPropertyValue("left"))
	assert.Equal(t, "32px", overlay.GetPropertyValue("width"))
	assert.Equal(t, "18px", overlay.GetPropertyValue("height"))
}

func TestClickWhileInactiveIsIgnored(t *testing.T) {
	f := newFixture(t)
	f.c.Click(f.main, 0, 0)
	assert.Nil(t, f.c.Selected())
	assert.Equal(t, placeholderText, f.c.Panel().Header())
}

func TestCapturedClickIsHiddenFromPage(t *testing.T) {
	f := newFixture(t)
	var pageClicks int
	f.link.AsNode().AddEventListener("click", func(*dom.Event) { pageClicks++ }, dom.ListenerOptions{})
	f.doc.AsNode().AddEventListener("click", func(*dom.Event) { pageClicks++ }, dom.ListenerOptions{})

	allowed := f.link.AsNode().DispatchEvent(dom.NewMouseEvent("click", 1, 1))
	assert.True(t, allowed)
	assert.Equal(t, 2, pageClicks)

	f.c.Toggle()
	allowed = f.link.AsNode().DispatchEvent(dom.NewMouseEvent("click", 1, 1))
	assert.False(t, allowed, "default action must be suppressed")
	assert.Equal(t, 2, pageClicks, "page listeners must not run")
	assert.Same(t, f.link, f.c.Selected())
	assert.True(t, f.c.markup.panel.ClassList().Contains("active"))
}

func TestToggleButtonClick(t *testing.T) {
	f := newFixture(t)
	toggle := f.c.markup.toggle.AsNode()

	toggle.DispatchEvent(dom.NewMouseEvent("click", 0, 0))
	assert.Equal(t, ActiveNoSelection, f.c.Mode())

	toggle.DispatchEvent(dom.NewMouseEvent("click", 0, 0))
	assert.Equal(t, Inactive, f.c.Mode())
	assert.Nil(t, f.c.Selected())
}

func TestLoadThenExportIsVerbatim(t *testing.T) {
	f := newFixture(t)
	f.c.Toggle()

	for _, el := range []*dom.Element{f.main, f.other, f.link} {
		before, _ := f.host.StyleAttribute(el)
		f.c.Panel().Load(el)
		assert.Equal(t, before, f.c.Panel().ExportAppliedStyles(), "export of %s", Describe(el))
	}
	assert.Equal(t, "color:red;;  margin : 0", func() string {
		f.c.Panel().Load(f.other)
		return f.c.Panel().ExportAppliedStyles()
	}())
	f.c.Panel().Load(f.link)
	assert.Equal(t, "", f.c.Panel().ExportAppliedStyles())
}

func TestPanelLoadFallsBackToComputed(t *testing.T) {
	f := newFixture(t)
	f.c.Toggle()
	f.c.Click(f.main, 0, 0)

	want := []FieldValue{
		{Property: "backgroundColor", Label: "Background Color", Value: "rgba(0, 0, 0, 0)"},
		{Property: "color", Label: "Color", Value: "rgb(0, 0, 0)"},
		{Property: "fontSize", Label: "Font Size", Value: "16px"},
		{Property: "padding", Label: "Padding", Value: "4px"},
		{Property: "border", Label: "Border", Value: "0px none rgb(0, 0, 0)"},
		{Property: "borderRadius", Label: "Border Radius", Value: "0px"},
	}
	if diff := cmp.Diff(want, f.c.Panel().Fields()); diff != "" {
		t.Errorf("fields mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "block", f.c.markup.editor.Style().GetPropertyValue("display"))
}

func TestPanelLoadsUppercaseInlineStyle(t *testing.T) {
	f := newFixture(t)
	f.main.SetAttribute("style", "COLOR:Red")
	f.c.Toggle()
	f.c.Click(f.main, 0, 0)

	assert.Equal(t, FieldValue{Property: "color", Label: "Color", Value: "Red"}, f.c.Panel().Fields()[1])
	assert.Equal(t, "COLOR:Red", f.c.Panel().ExportAppliedStyles())
}

func TestApplyIsIdempotent(t *testing.T) {
	f := newFixture(t)
	f.c.Toggle()
	f.c.Click(f.main, 0, 0)

	f.c.Input("color", "blue")
	once := f.main.GetAttribute("style")
	f.c.Input("color", "blue")

	assert.Equal(t, once, f.main.GetAttribute("style"))
	assert.Equal(t, "padding: 4px; color: blue", once)
}

func TestApplyLoadRoundTrip(t *testing.T) {
	f := newFixture(t)
	f.c.Toggle()
	f.c.Click(f.main, 0, 0)

	for _, prop := range DefaultProperties {
		value := "1px solid #123456"
		require.NoError(t, f.c.Apply(prop, value))
		f.c.Panel().Load(f.main)
		assert.Equal(t, value, f.c.Panel().Field(prop), prop)
	}
}

func TestApplyRemeasuresSelection(t *testing.T) {
	f := newFixture(t)
	f.c.Toggle()
	f.c.Click(f.main, 0, 0)

	// The fake host does no layout; move the element as a layout would.
	f.host.rects[f.main] = dom.DOMRect{X: 10, Y: 20, Width: 200, Height: 80}
	f.c.Input("padding", "19px")

	box, ok := f.c.SelectionOverlay().Box()
	assert.True(t, ok)
	assert.Equal(t, 80.0, box.Height)
	assert.Equal(t, "19px", f.main.Style().GetPropertyValue("padding"))
}

func TestInvalidValuesPassThrough(t *testing.T) {
	f := newFixture(t)
	f.c.Toggle()
	f.c.Click(f.main, 0, 0)

	f.c.Input("fontSize", "very big")
	assert.Equal(t, "very big", f.main.Style().GetPropertyValue("font-size"))
	assert.Equal(t, ActiveSelected, f.c.Mode())
}

func TestSelfExclusion(t *testing.T) {
	f := newFixture(t)
	f.c.Toggle()
	f.c.Click(f.main, 0, 0)
	require.False(t, f.c.HoverOverlay().Visible())

	for _, el := range f.uiElements() {
		f.c.PointerMove(el, 0, 0)
		f.c.Click(el, 0, 0)
		assert.Same(t, f.main, f.c.Selected(), "selection changed by %s", el.ClassName())
		assert.False(t, f.c.HoverOverlay().Visible(), "hover shown for %s", el.ClassName())
		assert.Nil(t, f.c.HoverTarget())
	}
	assert.ErrorIs(t, f.c.Select(f.c.markup.panel), ErrOwnElement)
}

func TestHoverTracksPointer(t *testing.T) {
	f := newFixture(t)

	f.c.PointerMove(f.main, 0, 0)
	assert.False(t, f.c.HoverOverlay().Visible(), "no hover while inactive")

	f.c.Toggle()
	f.c.PointerMove(f.main, 0, 0)
	box, ok := f.c.HoverOverlay().Box()
	require.True(t, ok)
	assert.Equal(t, BoundingBox{Top: 20, Left: 10, Width: 200, Height: 50}, box)
	assert.Same(t, f.main, f.c.HoverTarget())

	f.c.PointerMove(f.other, 0, 0)
	box, _ = f.c.HoverOverlay().Box()
	assert.Equal(t, 90.0, box.Top)

	// Leaving the document keeps the last box.
	f.c.PointerMove(nil, -1, -1)
	assert.True(t, f.c.HoverOverlay().Visible())

	// Moving onto the inspector hides it.
	f.c.PointerMove(f.c.markup.closeBtn, 0, 0)
	assert.False(t, f.c.HoverOverlay().Visible())
}

func TestMouseMoveThroughDOM(t *testing.T) {
	f := newFixture(t)
	f.c.Toggle()

	f.other.AsNode().DispatchEvent(dom.NewMouseEvent("mousemove", 12, 95))
	assert.Same(t, f.other, f.c.HoverTarget())
	assert.True(t, f.c.HoverOverlay().Visible())
}

func TestScrollAndResize(t *testing.T) {
	f := newFixture(t)
	f.c.Toggle()
	f.c.PointerMove(f.other, 0, 0)
	f.c.Click(f.main, 0, 0)
	require.True(t, f.c.HoverOverlay().Visible())

	// Scrolling by 30 moves the client rect up by 30.
	f.host.scrollY = 30
	f.host.rects[f.main] = dom.DOMRect{X: 10, Y: -10, Width: 200, Height: 50}
	f.doc.AsNode().DispatchEvent(dom.NewEvent("scroll"))

	assert.False(t, f.c.HoverOverlay().Visible())
	assert.Nil(t, f.c.HoverTarget())
	box, ok := f.c.SelectionOverlay().Box()
	require.True(t, ok)
	assert.Equal(t, 20.0, box.Top, "document position is unchanged by scrolling")

	f.c.PointerMove(f.other, 0, 0)
	f.c.Resize()
	assert.False(t, f.c.HoverOverlay().Visible())
	assert.True(t, f.c.SelectionOverlay().Visible())
}

func TestResizeWhileInactive(t *testing.T) {
	f := newFixture(t)
	f.c.Resize()
	f.c.Scroll()
	assert.Equal(t, Inactive, f.c.Mode())
	assert.False(t, f.c.SelectionOverlay().Visible())
}

func TestRemovedSelectionThenResize(t *testing.T) {
	f := newFixture(t)
	f.c.Toggle()
	f.c.PointerMove(f.main, 0, 0)
	f.c.Click(f.main, 0, 0)

	f.main.Remove()
	require.NotPanics(t, func() {
		f.doc.AsNode().DispatchEvent(dom.NewEvent("resize"))
	})

	assert.False(t, f.c.HoverOverlay().Visible())
	assert.False(t, f.c.SelectionOverlay().Visible())
	assert.Nil(t, f.c.Selected())
	assert.Equal(t, Inactive, f.c.Mode())
	assert.Equal(t, placeholderText, f.c.Panel().Header())
}

func TestStaleSelectionOnEdit(t *testing.T) {
	f := newFixture(t)
	f.c.Toggle()
	f.c.Click(f.main, 0, 0)
	f.main.Remove()

	f.c.Input("color", "red")
	assert.Equal(t, Inactive, f.c.Mode())
	assert.Equal(t, "padding: 4px", f.main.GetAttribute("style"))

	f.c.Copy(context.Background())
	assert.Zero(t, f.clip.Writes())
}

func TestMeasure(t *testing.T) {
	f := newFixture(t)
	tr := f.c.Tracker()

	_, ok := tr.Measure(f.main)
	assert.False(t, ok, "inactive")

	f.c.Toggle()
	_, ok = tr.Measure(nil)
	assert.False(t, ok, "nil element")

	detached := f.doc.CreateElement("div")
	_, ok = tr.Measure(detached)
	assert.False(t, ok, "detached element")

	f.host.scrollX, f.host.scrollY = 3, 7
	box, ok := tr.Measure(f.main)
	assert.True(t, ok)
	assert.Equal(t, BoundingBox{Top: 27, Left: 13, Width: 200, Height: 50}, box)

	f.host.rects[f.main] = dom.DOMRect{X: 0, Y: 0, Width: 1, Height: 1}
	box, _ = tr.Measure(f.main)
	assert.Equal(t, 1.0, box.Width, "measurements are never cached")
}

func TestCopyScenario(t *testing.T) {
	f := newFixture(t)
	c := f.c

	c.Toggle()
	c.PointerMove(f.main, 0, 0)
	hover, _ := c.HoverOverlay().Box()
	want, _ := c.Tracker().Measure(f.main)
	assert.Equal(t, want, hover)

	c.Click(f.main, 0, 0)
	assert.Equal(t, "div#main.card.featured", c.Panel().Header())

	field := c.markup.inputs[0]
	require.Equal(t, "backgroundColor", field.GetAttribute("data-property"))
	field.SetAttribute("value", "#ff0000")
	field.AsNode().DispatchEvent(dom.NewEvent("input"))
	assert.Equal(t, "#ff0000", f.main.Style().GetPropertyValue("background-color"))
	assert.Equal(t, "padding: 4px; background-color: #ff0000", f.main.GetAttribute("style"))

	c.markup.copyBtn.AsNode().DispatchEvent(dom.NewMouseEvent("click", 0, 0))
	assert.Equal(t, f.main.GetAttribute("style"), f.clip.Text())
	assert.Equal(t, copiedLabel, c.Snapshot().CopyLabel)

	f.clock.Advance(DefaultCopyResetDelay - time.Millisecond)
	assert.Equal(t, copiedLabel, c.Snapshot().CopyLabel)

	f.clock.Advance(time.Millisecond)
	assert.Eventually(t, func() bool {
		return c.Snapshot().CopyLabel == copyLabel
	}, time.Second, time.Millisecond)
}

func TestCopyRestartsResetTimer(t *testing.T) {
	f := newFixture(t, func(o *Options) { o.CopyResetDelay = 100 * time.Millisecond })
	f.c.Toggle()
	f.c.Click(f.main, 0, 0)

	f.c.Copy(context.Background())
	f.clock.Advance(60 * time.Millisecond)
	f.c.Copy(context.Background())
	f.clock.Advance(60 * time.Millisecond)
	assert.Equal(t, copiedLabel, f.c.Snapshot().CopyLabel, "the first timer was stopped")
	assert.Equal(t, 2, f.clip.Writes())

	f.clock.Advance(40 * time.Millisecond)
	assert.Eventually(t, func() bool {
		return f.c.Snapshot().CopyLabel == copyLabel
	}, time.Second, time.Millisecond)
}

func TestCopyWithoutSelection(t *testing.T) {
	f := newFixture(t)
	f.c.Copy(context.Background())
	f.c.Toggle()
	f.c.Copy(context.Background())
	assert.Zero(t, f.clip.Writes())
	assert.Equal(t, copyLabel, f.c.Panel().CopyLabel())
}

func TestCopyDenied(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	f := newFixture(t, func(o *Options) {
		o.Clipboard = DeniedClipboard{}
		o.Logger = zap.New(core)
	})
	f.c.Toggle()
	f.c.Click(f.main, 0, 0)

	f.c.Copy(context.Background())

	assert.Equal(t, copyLabel, f.c.Panel().CopyLabel())
	entries := logs.FilterMessage("Clipboard write failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, "inspector", entries[0].LoggerName)
}

func TestCopyCancelledContext(t *testing.T) {
	f := newFixture(t)
	f.c.Toggle()
	f.c.Click(f.main, 0, 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	f.c.Copy(ctx)
	assert.Zero(t, f.clip.Writes())
	assert.Equal(t, copyLabel, f.c.Panel().CopyLabel())
}

func TestProgrammaticAPI(t *testing.T) {
	f := newFixture(t)
	c := f.c

	assert.ErrorIs(t, c.Select(f.main), ErrInactive)
	assert.ErrorIs(t, c.Apply("color", "red"), ErrNoSelection)

	require.NoError(t, c.Activate())
	require.NoError(t, c.Activate())
	assert.Equal(t, ActiveNoSelection, c.Mode())

	assert.ErrorIs(t, c.Select(f.doc.CreateElement("div")), ErrNotConnected)
	assert.ErrorIs(t, c.Select(nil), ErrNotConnected)
	require.NoError(t, c.Select(f.other))
	assert.Same(t, f.other, c.Selected())

	assert.ErrorIs(t, c.Apply("margin", "0"), ErrUnknownProperty)
	require.NoError(t, c.Apply("borderRadius", "6px"))
	assert.Equal(t, "6px", c.Panel().Field("borderRadius"))

	f.other.Remove()
	err := c.Apply("color", "red")
	assert.True(t, errors.Is(err, ErrNoSelection))
	assert.Equal(t, Inactive, c.Mode())
}

func TestOnChange(t *testing.T) {
	f := newFixture(t)
	var modes []Mode
	var headers []string
	f.c.OnChange(func(s Snapshot) {
		modes = append(modes, s.Mode)
		headers = append(headers, s.Header)
	})

	f.c.Toggle()
	f.c.Click(f.link, 0, 0)
	f.c.Close()

	assert.Equal(t, []Mode{ActiveNoSelection, ActiveSelected, Inactive}, modes)
	assert.Equal(t, []string{placeholderText, "a#link", placeholderText}, headers)
}

func TestCustomPrefixAndProperties(t *testing.T) {
	f := newFixture(t, func(o *Options) {
		o.Prefix = "qa"
		o.Properties = []string{"color", "width"}
	})

	assert.NotNil(t, f.doc.GetElementById("qa-styles"))
	assert.Len(t, f.doc.Body().QuerySelectorAll(".qa-ui"), 2)
	assert.Equal(t, []string{"color", "width"}, f.c.Panel().Properties())

	f.c.Toggle()
	f.c.Click(f.main, 0, 0)
	assert.Equal(t, "", f.c.Panel().Field("backgroundColor"))
	assert.Len(t, f.c.Panel().Fields(), 2)
}

func TestDescribe(t *testing.T) {
	doc := dom.NewDocument()
	el := doc.CreateElement("SECTION")
	assert.Equal(t, "section", Describe(el))
	el.SetId("top")
	assert.Equal(t, "section#top", Describe(el))
	el.SetClassName("  a b  a ")
	assert.Equal(t, "section#top.a.b", Describe(el))
}

func TestLabel(t *testing.T) {
	tests := map[string]string{
		"backgroundColor": "Background Color",
		"color":           "Color",
		"borderTopWidth":  "Border Top Width",
		"":                "",
	}
	for in, want := range tests {
		assert.Equal(t, want, Label(in), in)
	}
}

func TestInputIgnoresUnboundProperty(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.c.Activate())
	require.NoError(t, f.c.Select(f.main))

	f.c.Input("margin", "40px")
	assert.Equal(t, "padding: 4px", f.main.GetAttribute("style"))

	f.c.Input("padding", "9px")
	assert.Equal(t, "padding: 9px", f.main.GetAttribute("style"))
}

func TestCallsInsideDoRunImmediately(t *testing.T) {
	f := newFixture(t)
	var (
		early, activate, sel error
		mode                 Mode
	)
	f.c.Do(func() {
		early = f.c.Select(f.main)
		activate = f.c.Activate()
		sel = f.c.Select(f.main)
		mode = f.c.Mode()
	})

	assert.ErrorIs(t, early, ErrInactive)
	assert.NoError(t, activate)
	assert.NoError(t, sel)
	assert.Equal(t, ActiveSelected, mode)
	assert.Same(t, f.main, f.c.Selected())
}

func TestCallsFromObserverAreBusy(t *testing.T) {
	f := newFixture(t)
	var errs []error
	f.c.OnChange(func(s Snapshot) {
		assert.Equal(t, s.Mode, f.c.Mode())
		errs = append(errs, f.c.Select(f.main))
	})

	require.NoError(t, f.c.Activate())
	f.c.Toggle()

	require.Len(t, errs, 2)
	for _, err := range errs {
		assert.ErrorIs(t, err, ErrBusy)
	}
	assert.Equal(t, Inactive, f.c.Mode())
	assert.Nil(t, f.c.Selected())
}

func TestDeactivate(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.c.Activate())
	require.NoError(t, f.c.Select(f.main))

	require.NoError(t, f.c.Deactivate())
	snap := f.c.Snapshot()
	assert.Equal(t, Inactive, snap.Mode)
	assert.False(t, snap.SelectionVisible)
	assert.Equal(t, placeholderText, snap.Header)
}

func TestFailedDeferredMountIsForgotten(t *testing.T) {
	doc, err := dom.ParseHTMLLoading(strings.NewReader(fixtureHTML))
	require.NoError(t, err)
	c, err := Attach(doc, Options{Host: newFakeHost()})
	require.NoError(t, err)

	html := doc.DocumentElement().AsNode()
	_, err = html.RemoveChild(doc.Body().AsNode())
	require.NoError(t, err)
	doc.FinishParsing()

	assert.False(t, c.Mounted())
	_, ok := Lookup(doc)
	assert.False(t, ok)
}
