package inspector

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/chrisuehlinger/domdebug/dom"
)

// Event names understood by the controller.
const (
	EventToggle      = "toggle"
	EventClose       = "close"
	EventPointerMove = "pointermove"
	EventClick       = "click"
	EventInput       = "input"
	EventCopy        = "copy"
	EventResize      = "resize"
	EventScroll      = "scroll"
	EventTick        = "tick"
)

// Event is one input to the controller.
type Event struct {
	Name     string
	Target   *dom.Element
	Property string
	Value    string
	X, Y     float64
	Ctx      context.Context

	// Run, when set, is called in place of the named handlers.
	Run func()
}

// Handler handles an event.
type Handler func(Event)

// Dispatcher runs named handlers one event at a time. Handlers for an
// event run in installation order and finish before the next event
// starts. Events raised while a dispatch is in progress, from a handler
// or from another goroutine, are queued and run by the dispatch already
// underway.
//
// While an event is delivered only the delivering goroutine may call
// Inspect or Current. Other goroutines reach the state behind a
// dispatcher through Dispatch and Post.
type Dispatcher struct {
	logger *zap.Logger

	mu       sync.Mutex
	handlers map[string][]Handler
	queue    []Event
	draining bool
	current  *Event

	// run is held while handlers execute.
	run sync.Mutex
}

// NewDispatcher creates an empty dispatcher.
func NewDispatcher(logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		logger:   logger,
		handlers: make(map[string][]Handler),
	}
}

// On installs h for events called name.
func (d *Dispatcher) On(name string, h Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[name] = append(d.handlers[name], h)
}

// Dispatch queues ev and, unless a dispatch is already running, runs the
// queue to completion on the calling goroutine.
func (d *Dispatcher) Dispatch(ev Event) {
	d.mu.Lock()
	d.queue = append(d.queue, ev)
	if d.draining {
		d.mu.Unlock()
		return
	}
	d.draining = true
	d.mu.Unlock()
	d.drain()
}

// Post schedules fn to run between events. It is the way for timers and
// other goroutines to touch inspector state.
func (d *Dispatcher) Post(name string, fn func()) {
	d.Dispatch(Event{Name: name, Run: fn})
}

// Inspect runs fn while no other handler is executing. From inside a
// handler or a posted function fn runs right away.
func (d *Dispatcher) Inspect(fn func()) {
	if _, ok := d.Current(); ok {
		fn()
		return
	}
	d.run.Lock()
	defer d.run.Unlock()
	fn()
}

// Current returns the event being delivered, if any.
func (d *Dispatcher) Current() (Event, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.current == nil {
		return Event{}, false
	}
	return *d.current, true
}

func (d *Dispatcher) setCurrent(ev *Event) {
	d.mu.Lock()
	d.current = ev
	d.mu.Unlock()
}

func (d *Dispatcher) drain() {
	for {
		d.mu.Lock()
		if len(d.queue) == 0 {
			d.draining = false
			d.mu.Unlock()
			return
		}
		ev := d.queue[0]
		d.queue = d.queue[1:]
		handlers := d.handlers[ev.Name]
		d.mu.Unlock()

		d.run.Lock()
		d.setCurrent(&ev)
		d.deliver(ev, handlers)
		d.setCurrent(nil)
		d.run.Unlock()
	}
}

func (d *Dispatcher) deliver(ev Event, handlers []Handler) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("Event handler panicked", zap.String("event", ev.Name), zap.Any("panic", r))
		}
	}()
	if ev.Run != nil {
		ev.Run()
		return
	}
	for _, h := range handlers {
		h(ev)
	}
}
