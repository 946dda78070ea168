package dom

import (
	"sync"
)

// EventPhase represents the phase of event dispatch.
type EventPhase int

const (
	EventPhaseNone      EventPhase = 0
	EventPhaseCapturing EventPhase = 1
	EventPhaseAtTarget  EventPhase = 2
	EventPhaseBubbling  EventPhase = 3
)

// Event is a DOM event. Pointer events carry viewport coordinates in
// ClientX and ClientY; Data carries text for input events.
type Event struct {
	Type       string
	Bubbles    bool
	Cancelable bool

	ClientX float64
	ClientY float64
	Data    string

	Target        *Node
	CurrentTarget *Node
	Phase         EventPhase

	defaultPrevented bool
	stopPropagation  bool
	stopImmediate    bool
}

// NewEvent creates an event of the given type. Pointer and input events
// bubble and are cancelable.
func NewEvent(eventType string) *Event {
	ev := &Event{Type: eventType}
	switch eventType {
	case "click", "mousemove", "mousedown", "mouseup", "input", "change", "keydown":
		ev.Bubbles = true
		ev.Cancelable = true
	}
	return ev
}

// NewMouseEvent creates a bubbling, cancelable pointer event at (x, y).
func NewMouseEvent(eventType string, x, y float64) *Event {
	ev := NewEvent(eventType)
	ev.Bubbles = true
	ev.Cancelable = true
	ev.ClientX, ev.ClientY = x, y
	return ev
}

// TargetElement returns the event target as an element, or nil.
func (e *Event) TargetElement() *Element {
	if e.Target == nil || e.Target.nodeType != ElementNode {
		return nil
	}
	return (*Element)(e.Target)
}

// PreventDefault cancels the event's default action if it is cancelable.
func (e *Event) PreventDefault() {
	if e.Cancelable {
		e.defaultPrevented = true
	}
}

// DefaultPrevented reports whether PreventDefault was called.
func (e *Event) DefaultPrevented() bool {
	return e.defaultPrevented
}

// StopPropagation stops the event from reaching further nodes.
func (e *Event) StopPropagation() {
	e.stopPropagation = true
}

// StopImmediatePropagation also skips the remaining listeners on the
// current node.
func (e *Event) StopImmediatePropagation() {
	e.stopPropagation = true
	e.stopImmediate = true
}

// PropagationStopped reports whether StopPropagation was called.
func (e *Event) PropagationStopped() bool {
	return e.stopPropagation
}

// Listener handles an event.
type Listener func(*Event)

// ListenerOptions are the addEventListener options.
type ListenerOptions struct {
	Capture bool
	Once    bool
}

// ListenerID identifies a registered listener for removal.
type ListenerID int

type eventListener struct {
	id       ListenerID
	callback Listener
	options  ListenerOptions
}

type listenerSet struct {
	mu        sync.RWMutex
	listeners map[string][]eventListener
}

var nextListenerID struct {
	sync.Mutex
	n ListenerID
}

func newListenerID() ListenerID {
	nextListenerID.Lock()
	defer nextListenerID.Unlock()
	nextListenerID.n++
	return nextListenerID.n
}

// AddEventListener registers fn for eventType on this node.
func (n *Node) AddEventListener(eventType string, fn Listener, opts ListenerOptions) ListenerID {
	if n.listeners == nil {
		n.listeners = &listenerSet{listeners: make(map[string][]eventListener)}
	}
	ls := n.listeners
	ls.mu.Lock()
	defer ls.mu.Unlock()

	id := newListenerID()
	ls.listeners[eventType] = append(ls.listeners[eventType], eventListener{id: id, callback: fn, options: opts})
	return id
}

// RemoveEventListener unregisters the listener with the given id.
func (n *Node) RemoveEventListener(eventType string, id ListenerID) {
	if n.listeners == nil {
		return
	}
	n.listeners.remove(eventType, id)
}

// HasEventListeners reports whether any listener is registered for eventType.
func (n *Node) HasEventListeners(eventType string) bool {
	if n.listeners == nil {
		return false
	}
	n.listeners.mu.RLock()
	defer n.listeners.mu.RUnlock()
	return len(n.listeners.listeners[eventType]) > 0
}

func (ls *listenerSet) remove(eventType string, id ListenerID) {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	list := ls.listeners[eventType]
	for i, l := range list {
		if l.id == id {
			ls.listeners[eventType] = append(list[:i:i], list[i+1:]...)
			return
		}
	}
}

// DispatchEvent dispatches ev at n through the capture, target and bubble
// phases. It returns false if a listener prevented the default action.
func (n *Node) DispatchEvent(ev *Event) bool {
	ev.Target = n

	var path []*Node
	for p := n.parentNode; p != nil; p = p.parentNode {
		path = append(path, p)
	}

	for i := len(path) - 1; i >= 0 && !ev.stopPropagation; i-- {
		path[i].invoke(ev, EventPhaseCapturing)
	}
	if !ev.stopPropagation {
		n.invoke(ev, EventPhaseAtTarget)
	}
	if ev.Bubbles {
		for _, p := range path {
			if ev.stopPropagation {
				break
			}
			p.invoke(ev, EventPhaseBubbling)
		}
	}

	ev.CurrentTarget = nil
	ev.Phase = EventPhaseNone
	return !ev.defaultPrevented
}

func (n *Node) invoke(ev *Event, phase EventPhase) {
	if n.listeners == nil {
		return
	}
	ls := n.listeners
	ls.mu.RLock()
	listeners := make([]eventListener, len(ls.listeners[ev.Type]))
	copy(listeners, ls.listeners[ev.Type])
	ls.mu.RUnlock()

	ev.CurrentTarget = n
	ev.Phase = phase
	for _, l := range listeners {
		if phase == EventPhaseCapturing && !l.options.Capture {
			continue
		}
		if phase == EventPhaseBubbling && l.options.Capture {
			continue
		}
		if l.options.Once {
			ls.remove(ev.Type, l.id)
		}
		l.callback(ev)
		if ev.stopImmediate {
			break
		}
	}
}
