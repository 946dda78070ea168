package js

import (
	"slices"

	"github.com/dop251/goja"

	"github.com/chrisuehlinger/domdebug/dom"
)

// scriptListener is a script function registered on a DOM node. The DOM
// only knows the wrapping listener; value is kept so removeEventListener
// can find it again.
type scriptListener struct {
	id      dom.ListenerID
	value   goja.Value
	capture bool
}

type listenerKey struct {
	node      *dom.Node
	eventType string
}

// listenerRegistry tracks script listeners per node and event type.
type listenerRegistry struct {
	entries map[listenerKey][]scriptListener
}

func newListenerRegistry() *listenerRegistry {
	return &listenerRegistry{entries: make(map[listenerKey][]scriptListener)}
}

func (lr *listenerRegistry) find(key listenerKey, value goja.Value, capture bool) int {
	return slices.IndexFunc(lr.entries[key], func(l scriptListener) bool {
		return l.capture == capture && l.value.SameAs(value)
	})
}

func (lr *listenerRegistry) add(key listenerKey, l scriptListener) {
	lr.entries[key] = append(lr.entries[key], l)
}

func (lr *listenerRegistry) remove(key listenerKey, value goja.Value, capture bool) (dom.ListenerID, bool) {
	i := lr.find(key, value, capture)
	if i < 0 {
		return 0, false
	}
	id := lr.entries[key][i].id
	lr.entries[key] = slices.Delete(lr.entries[key], i, i+1)
	if len(lr.entries[key]) == 0 {
		delete(lr.entries, key)
	}
	return id, true
}

func (lr *listenerRegistry) forget(key listenerKey, id dom.ListenerID) {
	lr.entries[key] = slices.DeleteFunc(lr.entries[key], func(l scriptListener) bool {
		return l.id == id
	})
	if len(lr.entries[key]) == 0 {
		delete(lr.entries, key)
	}
}

// parseListenerOptions reads the third addEventListener argument, either a
// capture boolean or an options object.
func parseListenerOptions(v goja.Value) dom.ListenerOptions {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return dom.ListenerOptions{}
	}
	obj, ok := v.(*goja.Object)
	if !ok {
		return dom.ListenerOptions{Capture: v.ToBoolean()}
	}
	var opts dom.ListenerOptions
	if c := obj.Get("capture"); c != nil {
		opts.Capture = c.ToBoolean()
	}
	if o := obj.Get("once"); o != nil {
		opts.Once = o.ToBoolean()
	}
	return opts
}

// bindEventTarget adds addEventListener, removeEventListener and
// dispatchEvent to obj, all acting on node.
func (b *DOMBinder) bindEventTarget(obj *goja.Object, node *dom.Node) {
	vm := b.runtime.vm

	obj.Set("addEventListener", func(call goja.FunctionCall) goja.Value {
		eventType := call.Argument(0).String()
		value := call.Argument(1)
		fn, ok := goja.AssertFunction(value)
		if !ok {
			return goja.Undefined()
		}
		opts := parseListenerOptions(call.Argument(2))
		key := listenerKey{node: node, eventType: eventType}
		if b.listeners.find(key, value, opts.Capture) >= 0 {
			return goja.Undefined()
		}

		var id dom.ListenerID
		id = node.AddEventListener(eventType, func(ev *dom.Event) {
			if opts.Once {
				b.listeners.forget(key, id)
			}
			b.runtime.call(fn, obj, b.BindEvent(ev))
		}, opts)
		b.listeners.add(key, scriptListener{id: id, value: value, capture: opts.Capture})
		return goja.Undefined()
	})

	obj.Set("removeEventListener", func(call goja.FunctionCall) goja.Value {
		eventType := call.Argument(0).String()
		opts := parseListenerOptions(call.Argument(2))
		key := listenerKey{node: node, eventType: eventType}
		if id, ok := b.listeners.remove(key, call.Argument(1), opts.Capture); ok {
			node.RemoveEventListener(eventType, id)
		}
		return goja.Undefined()
	})

	obj.Set("dispatchEvent", func(call goja.FunctionCall) goja.Value {
		ev := b.goEvent(call.Argument(0))
		if ev == nil {
			b.runtime.throw("dispatchEvent: argument is not an Event")
		}
		return vm.ToValue(node.DispatchEvent(ev))
	})
}

// BindEvent wraps a DOM event. Accessors read through to ev, so flags set
// by one listener are seen by the next.
func (b *DOMBinder) BindEvent(ev *dom.Event) *goja.Object {
	vm := b.runtime.vm
	obj := vm.NewObject()
	obj.DefineDataProperty("_goEvent", vm.ToValue(ev), goja.FLAG_FALSE, goja.FLAG_FALSE, goja.FLAG_FALSE)

	readOnly := func(name string, fn func() goja.Value) {
		obj.DefineAccessorProperty(name, vm.ToValue(func(goja.FunctionCall) goja.Value {
			return fn()
		}), nil, goja.FLAG_FALSE, goja.FLAG_TRUE)
	}
	readOnly("type", func() goja.Value { return vm.ToValue(ev.Type) })
	readOnly("bubbles", func() goja.Value { return vm.ToValue(ev.Bubbles) })
	readOnly("cancelable", func() goja.Value { return vm.ToValue(ev.Cancelable) })
	readOnly("eventPhase", func() goja.Value { return vm.ToValue(int(ev.Phase)) })
	readOnly("clientX", func() goja.Value { return vm.ToValue(ev.ClientX) })
	readOnly("clientY", func() goja.Value { return vm.ToValue(ev.ClientY) })
	readOnly("data", func() goja.Value { return vm.ToValue(ev.Data) })
	readOnly("defaultPrevented", func() goja.Value { return vm.ToValue(ev.DefaultPrevented()) })
	readOnly("target", func() goja.Value { return b.nodeValue(ev.Target) })
	readOnly("currentTarget", func() goja.Value { return b.nodeValue(ev.CurrentTarget) })

	obj.Set("preventDefault", func(goja.FunctionCall) goja.Value {
		ev.PreventDefault()
		return goja.Undefined()
	})
	obj.Set("stopPropagation", func(goja.FunctionCall) goja.Value {
		ev.StopPropagation()
		return goja.Undefined()
	})
	obj.Set("stopImmediatePropagation", func(goja.FunctionCall) goja.Value {
		ev.StopImmediatePropagation()
		return goja.Undefined()
	})

	return obj
}

// goEvent returns the DOM event behind a script event object, or nil.
func (b *DOMBinder) goEvent(v goja.Value) *dom.Event {
	obj, ok := v.(*goja.Object)
	if !ok {
		return nil
	}
	v = obj.Get("_goEvent")
	if v == nil {
		return nil
	}
	ev, _ := v.Export().(*dom.Event)
	return ev
}

// setupEventConstructors defines Event and MouseEvent.
func (b *DOMBinder) setupEventConstructors() {
	vm := b.runtime.vm
	construct := func(mouse bool) func(goja.ConstructorCall) *goja.Object {
		return func(call goja.ConstructorCall) *goja.Object {
			if goja.IsUndefined(call.Argument(0)) {
				b.runtime.throw("Event constructor: type is required")
			}
			ev := &dom.Event{Type: call.Argument(0).String()}
			if init, ok := call.Argument(1).(*goja.Object); ok {
				ev.Bubbles = init.Get("bubbles") != nil && init.Get("bubbles").ToBoolean()
				ev.Cancelable = init.Get("cancelable") != nil && init.Get("cancelable").ToBoolean()
				if mouse {
					if x := init.Get("clientX"); x != nil {
						ev.ClientX = x.ToFloat()
					}
					if y := init.Get("clientY"); y != nil {
						ev.ClientY = y.ToFloat()
					}
				}
			}
			return b.BindEvent(ev)
		}
	}
	vm.Set("Event", construct(false))
	vm.Set("MouseEvent", construct(true))
}
