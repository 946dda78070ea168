package inspector

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/chrisuehlinger/domdebug/dom"
)

// Defaults for Options.
const (
	DefaultPrefix         = "dom-debug"
	DefaultCopyResetDelay = 1500 * time.Millisecond
)

// Options configure an inspector.
type Options struct {
	// Host is required.
	Host Host
	// Clipboard receives exported styles. Defaults to a MemoryClipboard.
	Clipboard Clipboard
	// Clock drives the copy label reset. Defaults to the real clock.
	Clock  clockwork.Clock
	Logger *zap.Logger
	// Prefix namespaces every class and id the inspector adds.
	Prefix string
	// Properties are the style properties shown in the panel, in camelCase.
	Properties     []string
	CopyResetDelay time.Duration
}

func (o Options) withDefaults() Options {
	if o.Clipboard == nil {
		o.Clipboard = &MemoryClipboard{}
	}
	if o.Clock == nil {
		o.Clock = clockwork.NewRealClock()
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	if o.Prefix == "" {
		o.Prefix = DefaultPrefix
	}
	if len(o.Properties) == 0 {
		o.Properties = DefaultProperties
	}
	if o.CopyResetDelay <= 0 {
		o.CopyResetDelay = DefaultCopyResetDelay
	}
	return o
}

// Snapshot is a copy of the inspector's visible state.
type Snapshot struct {
	Mode             Mode
	Selected         *dom.Element
	Header           string
	Fields           []FieldValue
	Applied          string
	CopyLabel        string
	Hover            BoundingBox
	HoverVisible     bool
	Selection        BoundingBox
	SelectionVisible bool
}

// Controller is the inspector state machine. Every input becomes an event
// on its dispatcher; state is only touched by event handlers.
type Controller struct {
	doc        *dom.Document
	opts       Options
	logger     *zap.Logger
	dispatcher *Dispatcher

	// Set once mounted.
	markup    *markup
	state     State
	tracker   *Tracker
	hover     *Overlay
	selection *Overlay
	panel     *Panel

	hoverTarget *dom.Element
	copyTimer   clockwork.Timer
	notifying   bool

	obsMu     sync.Mutex
	observers []func(Snapshot)
}

func newController(doc *dom.Document, opts Options) *Controller {
	opts = opts.withDefaults()
	logger := opts.Logger.Named("inspector")
	c := &Controller{
		doc:        doc,
		opts:       opts,
		logger:     logger,
		dispatcher: NewDispatcher(logger),
	}
	c.on(EventToggle, c.handleToggle)
	c.on(EventClose, func(Event) { c.deactivate() })
	c.on(EventPointerMove, c.handlePointerMove)
	c.on(EventClick, c.handleClick)
	c.on(EventInput, c.handleInput)
	c.on(EventCopy, c.handleCopy)
	c.on(EventTick, c.handleTick)
	c.on(EventResize, c.handleViewportChange)
	c.on(EventScroll, c.handleViewportChange)
	return c
}

// on installs h, skipping events that arrive before the inspector is
// mounted, and notifies observers afterwards.
func (c *Controller) on(name string, h Handler) {
	c.dispatcher.On(name, func(ev Event) {
		if c.markup == nil {
			c.logger.Debug("Event before mount", zap.String("event", ev.Name))
			return
		}
		h(ev)
		c.notify()
	})
}

// mount builds the inspector's nodes and wires them to the dispatcher.
func (c *Controller) mount() error {
	if c.markup != nil {
		return nil
	}
	m, err := buildMarkup(c.doc, c.opts.Prefix, c.opts.Properties)
	if err != nil {
		return err
	}
	c.markup = m
	c.tracker = NewTracker(c.opts.Host, &c.state)
	c.hover = newOverlay(m.hover, c.opts.Host)
	c.selection = newOverlay(m.selection, c.opts.Host)
	c.panel = newPanel(c.opts.Host, m, c.opts.Properties, c.refreshSelection)
	c.listen()
	c.logger.Info("Inspector attached",
		zap.String("url", c.doc.URL()),
		zap.String("prefix", c.opts.Prefix),
		zap.Strings("properties", c.opts.Properties))
	return nil
}

// listen turns DOM events into dispatcher events.
func (c *Controller) listen() {
	m := c.markup
	doc := c.doc.AsNode()
	click := func(name string) dom.Listener {
		return func(*dom.Event) {
			c.dispatcher.Dispatch(Event{Name: name, Ctx: context.Background()})
		}
	}
	m.toggle.AsNode().AddEventListener("click", click(EventToggle), dom.ListenerOptions{})
	m.closeBtn.AsNode().AddEventListener("click", click(EventClose), dom.ListenerOptions{})
	m.copyBtn.AsNode().AddEventListener("click", click(EventCopy), dom.ListenerOptions{})

	// The page must never see an inspection click, so the decision to
	// swallow it is made here, during capture, before any page listener.
	doc.AddEventListener("click", func(ev *dom.Event) {
		target := ev.TargetElement()
		if target == nil || !c.state.Active() || c.isOwn(target) {
			return
		}
		ev.PreventDefault()
		ev.StopPropagation()
		c.dispatcher.Dispatch(Event{Name: EventClick, Target: target, X: ev.ClientX, Y: ev.ClientY})
	}, dom.ListenerOptions{Capture: true})

	doc.AddEventListener("mousemove", func(ev *dom.Event) {
		c.dispatcher.Dispatch(Event{Name: EventPointerMove, Target: ev.TargetElement(), X: ev.ClientX, Y: ev.ClientY})
	}, dom.ListenerOptions{})

	for i, input := range m.inputs {
		prop := c.opts.Properties[i]
		input.AsNode().AddEventListener("input", func(*dom.Event) {
			c.dispatcher.Dispatch(Event{Name: EventInput, Target: input, Property: prop, Value: input.GetAttribute("value")})
		}, dom.ListenerOptions{})
	}

	doc.AddEventListener("resize", func(*dom.Event) {
		c.dispatcher.Dispatch(Event{Name: EventResize})
	}, dom.ListenerOptions{})
	doc.AddEventListener("scroll", func(*dom.Event) {
		c.dispatcher.Dispatch(Event{Name: EventScroll})
	}, dom.ListenerOptions{})
}

// isOwn reports whether el is part of the inspector's own UI.
func (c *Controller) isOwn(el *dom.Element) bool {
	if c.markup == nil || el == nil {
		return false
	}
	if el.Closest("."+c.opts.Prefix+"-ui") != nil {
		return true
	}
	for e := el; e != nil; e = e.ParentElement() {
		if _, ok := c.markup.created[e.AsNode()]; ok {
			return true
		}
	}
	return false
}

func (c *Controller) handleToggle(Event) {
	if c.state.Active() {
		c.deactivate()
		return
	}
	c.state.Activate()
	c.markup.toggle.ClassList().Add("active")
	if body := c.doc.Body(); body != nil {
		c.opts.Host.SetInlineStyle(body, "cursor", "crosshair")
	}
	c.logger.Debug("Inspection on")
}

// deactivate is the reset path for every state.
func (c *Controller) deactivate() {
	wasActive := c.state.Active()
	c.state.Deactivate()
	c.markup.toggle.ClassList().Remove("active")
	c.markup.panel.ClassList().Remove("active")
	if body := c.doc.Body(); body != nil {
		c.opts.Host.SetInlineStyle(body, "cursor", "")
	}
	c.hoverTarget = nil
	c.hover.Hide()
	c.selection.Hide()
	c.panel.Reset()
	if wasActive {
		c.logger.Debug("Inspection off")
	}
}

func (c *Controller) handlePointerMove(ev Event) {
	if !c.state.Active() || ev.Target == nil {
		return
	}
	if c.isOwn(ev.Target) {
		c.hoverTarget = nil
		c.hover.Hide()
		return
	}
	c.hoverTarget = ev.Target
	c.hover.Render(c.tracker.Measure(ev.Target))
}

func (c *Controller) handleClick(ev Event) {
	if !c.state.Active() || ev.Target == nil || c.isOwn(ev.Target) {
		return
	}
	c.selectElement(ev.Target)
}

func (c *Controller) selectElement(el *dom.Element) {
	c.state.Select(el)
	c.markup.panel.ClassList().Add("active")
	c.panel.Load(el)
	c.refreshSelection()
	c.logger.Debug("Element selected", zap.String("element", Describe(el)))
}

// refreshSelection re-measures the selection and moves its overlay. A
// selection that left the document turns inspection off.
func (c *Controller) refreshSelection() {
	sel := c.state.Selected()
	if sel == nil {
		c.selection.Hide()
		return
	}
	if !c.opts.Host.IsConnected(sel) {
		c.logger.Debug("Selected element left the document")
		c.deactivate()
		return
	}
	c.selection.Render(c.tracker.Measure(sel))
}

// liveSelection returns the selection, deactivating if it went stale.
func (c *Controller) liveSelection() *dom.Element {
	sel := c.state.Selected()
	if sel == nil {
		return nil
	}
	if !c.opts.Host.IsConnected(sel) {
		c.logger.Debug("Selected element left the document")
		c.deactivate()
		return nil
	}
	return sel
}

func (c *Controller) handleInput(ev Event) {
	if !c.panel.Bound(ev.Property) {
		c.logger.Debug("Input for unbound property", zap.String("property", ev.Property))
		return
	}
	if c.liveSelection() == nil {
		return
	}
	c.panel.Apply(ev.Property, ev.Value)
}

func (c *Controller) handleCopy(ev Event) {
	if c.liveSelection() == nil {
		return
	}
	ctx := ev.Ctx
	if ctx == nil {
		ctx = context.Background()
	}
	text := c.panel.ExportAppliedStyles()
	if err := c.opts.Clipboard.WriteText(ctx, text); err != nil {
		c.logger.Debug("Clipboard write failed", zap.Error(err))
		return
	}
	c.panel.setCopyLabel(copiedLabel)
	if c.copyTimer != nil {
		c.copyTimer.Stop()
	}
	c.copyTimer = c.opts.Clock.AfterFunc(c.opts.CopyResetDelay, func() {
		c.dispatcher.Dispatch(Event{Name: EventTick})
	})
}

func (c *Controller) handleTick(Event) {
	c.copyTimer = nil
	c.panel.setCopyLabel(copyLabel)
}

func (c *Controller) handleViewportChange(Event) {
	if !c.state.Active() {
		return
	}
	c.hoverTarget = nil
	c.hover.Hide()
	c.refreshSelection()
}

func (c *Controller) snapshot() Snapshot {
	s := Snapshot{Mode: c.state.Mode(), Selected: c.state.Selected()}
	if c.markup == nil {
		return s
	}
	s.Header = c.panel.Header()
	s.Fields = c.panel.Fields()
	s.Applied = c.panel.ExportAppliedStyles()
	s.CopyLabel = c.panel.CopyLabel()
	s.Hover, s.HoverVisible = c.hover.Box()
	s.Selection, s.SelectionVisible = c.selection.Box()
	return s
}

func (c *Controller) notify() {
	c.obsMu.Lock()
	observers := append([]func(Snapshot){}, c.observers...)
	c.obsMu.Unlock()
	if len(observers) == 0 {
		return
	}
	s := c.snapshot()
	c.notifying = true
	defer func() { c.notifying = false }()
	for _, fn := range observers {
		fn(s)
	}
}

// OnChange registers fn to receive a snapshot after every handled event.
// fn runs inside event handling; it may read the controller but its
// Activate, Select and Apply calls fail with ErrBusy.
func (c *Controller) OnChange(fn func(Snapshot)) {
	c.obsMu.Lock()
	defer c.obsMu.Unlock()
	c.observers = append(c.observers, fn)
}

// Toggle switches inspection on or off.
func (c *Controller) Toggle() {
	c.dispatcher.Dispatch(Event{Name: EventToggle})
}

// Close closes the panel, which turns inspection off.
func (c *Controller) Close() {
	c.dispatcher.Dispatch(Event{Name: EventClose})
}

// PointerMove reports the pointer over target.
func (c *Controller) PointerMove(target *dom.Element, x, y float64) {
	c.dispatcher.Dispatch(Event{Name: EventPointerMove, Target: target, X: x, Y: y})
}

// Click reports a captured click on target.
func (c *Controller) Click(target *dom.Element, x, y float64) {
	c.dispatcher.Dispatch(Event{Name: EventClick, Target: target, X: x, Y: y})
}

// Input reports value typed into the field of prop.
func (c *Controller) Input(prop, value string) {
	c.dispatcher.Dispatch(Event{Name: EventInput, Property: prop, Value: value})
}

// Copy copies the selection's applied styles to the clipboard.
func (c *Controller) Copy(ctx context.Context) {
	c.dispatcher.Dispatch(Event{Name: EventCopy, Ctx: ctx})
}

// Resize reports a viewport resize.
func (c *Controller) Resize() {
	c.dispatcher.Dispatch(Event{Name: EventResize})
}

// Scroll reports a document scroll.
func (c *Controller) Scroll() {
	c.dispatcher.Dispatch(Event{Name: EventScroll})
}

// Do runs fn between events. Code that drives the page from more than one
// goroutine routes its work through Do.
func (c *Controller) Do(fn func()) {
	c.dispatcher.Post("run", fn)
}

// call runs fn between events and returns its error. Called from a
// function passed to Do, such as a page script reacting to a click or a
// timer, fn runs at once. Called from an event handler or an OnChange
// observer it fails with ErrBusy since handlers never nest.
func (c *Controller) call(name string, fn func() error) error {
	run := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				c.logger.Error("Inspector call panicked", zap.String("call", name), zap.Any("panic", r))
				err = fmt.Errorf("inspector: %s panicked: %v", name, r)
			}
		}()
		err = fn()
		c.notify()
		return err
	}

	if ev, ok := c.dispatcher.Current(); ok {
		if ev.Run == nil || c.notifying {
			return fmt.Errorf("%s during %s: %w", name, ev.Name, ErrBusy)
		}
		return run()
	}
	done := make(chan error, 1)
	c.dispatcher.Post(name, func() { done <- run() })
	return <-done
}

// Activate turns inspection on if it is off.
func (c *Controller) Activate() error {
	return c.call("activate", func() error {
		if c.markup == nil {
			return ErrNotMounted
		}
		if !c.state.Active() {
			c.handleToggle(Event{})
		}
		return nil
	})
}

// Deactivate turns inspection off, clearing any selection.
func (c *Controller) Deactivate() error {
	return c.call("deactivate", func() error {
		if c.markup == nil {
			return ErrNotMounted
		}
		c.deactivate()
		return nil
	})
}

// Select selects el as if it had been clicked.
func (c *Controller) Select(el *dom.Element) error {
	return c.call("select", func() error {
		switch {
		case c.markup == nil:
			return ErrNotMounted
		case !c.state.Active():
			return ErrInactive
		case el == nil || !c.opts.Host.IsConnected(el):
			return ErrNotConnected
		case c.isOwn(el):
			return ErrOwnElement
		}
		c.selectElement(el)
		return nil
	})
}

// Apply edits a bound property of the selection.
func (c *Controller) Apply(prop, value string) error {
	return c.call("apply", func() error {
		if c.markup == nil {
			return ErrNotMounted
		}
		if !c.panel.Bound(prop) {
			return ErrUnknownProperty
		}
		if c.liveSelection() == nil {
			return ErrNoSelection
		}
		c.panel.Apply(prop, value)
		return nil
	})
}

// Snapshot returns the current visible state.
func (c *Controller) Snapshot() Snapshot {
	var s Snapshot
	c.dispatcher.Inspect(func() { s = c.snapshot() })
	return s
}

// Mode returns the current mode.
func (c *Controller) Mode() Mode {
	var m Mode
	c.dispatcher.Inspect(func() { m = c.state.Mode() })
	return m
}

// Selected returns the selected element, or nil.
func (c *Controller) Selected() *dom.Element {
	var el *dom.Element
	c.dispatcher.Inspect(func() { el = c.state.Selected() })
	return el
}

// HoverTarget returns the element under the hover overlay, or nil.
func (c *Controller) HoverTarget() *dom.Element {
	var el *dom.Element
	c.dispatcher.Inspect(func() { el = c.hoverTarget })
	return el
}

// Panel returns the style panel, or nil before mount.
func (c *Controller) Panel() *Panel {
	return c.panel
}

// HoverOverlay returns the hover overlay, or nil before mount.
func (c *Controller) HoverOverlay() *Overlay {
	return c.hover
}

// SelectionOverlay returns the selection overlay, or nil before mount.
func (c *Controller) SelectionOverlay() *Overlay {
	return c.selection
}

// Tracker returns the geometry tracker, or nil before mount.
func (c *Controller) Tracker() *Tracker {
	return c.tracker
}

// Mounted reports whether the inspector's nodes are in the document.
func (c *Controller) Mounted() bool {
	var ok bool
	c.dispatcher.Inspect(func() { ok = c.markup != nil })
	return ok
}

// Document returns the inspected document.
func (c *Controller) Document() *dom.Document {
	return c.doc
}

// Prefix returns the class prefix.
func (c *Controller) Prefix() string {
	return c.opts.Prefix
}
