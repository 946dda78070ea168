package js

import (
	"strings"

	"github.com/dop251/goja"

	"github.com/chrisuehlinger/domdebug/css"
	"github.com/chrisuehlinger/domdebug/dom"
	"github.com/chrisuehlinger/domdebug/inspector"
)

// scroller is implemented by hosts that can scroll the viewport.
type scroller interface {
	ScrollTo(x, y float64)
	ScrollBy(dx, dy float64)
}

// DOMBinder provides methods to bind DOM objects to JavaScript.
type DOMBinder struct {
	runtime   *Runtime
	document  *dom.Document
	host      inspector.Host
	nodeMap   map[*dom.Node]*goja.Object // same JS object for the same node
	listeners *listenerRegistry
	docObj    *goja.Object
}

// NewDOMBinder creates a binder for doc. Geometry and computed styles are
// read through host.
func NewDOMBinder(runtime *Runtime, doc *dom.Document, host inspector.Host) *DOMBinder {
	b := &DOMBinder{
		runtime:   runtime,
		document:  doc,
		host:      host,
		nodeMap:   make(map[*dom.Node]*goja.Object),
		listeners: newListenerRegistry(),
	}
	b.setupEventConstructors()
	return b
}

// Document returns the bound document.
func (b *DOMBinder) Document() *dom.Document {
	return b.document
}

// Host returns the host the binder measures through.
func (b *DOMBinder) Host() inspector.Host {
	return b.host
}

// BindDocument exposes the document as the document global and adds the
// window members that depend on it.
func (b *DOMBinder) BindDocument() *goja.Object {
	if b.docObj != nil {
		return b.docObj
	}
	vm := b.runtime.vm
	doc := b.document
	jsDoc := vm.NewObject()
	b.docObj = jsDoc
	b.nodeMap[doc.AsNode()] = jsDoc

	jsDoc.Set("nodeType", int(dom.DocumentNode))
	jsDoc.Set("nodeName", "#document")
	b.accessor(jsDoc, "readyState", func() goja.Value { return vm.ToValue(doc.ReadyState()) })
	b.accessor(jsDoc, "URL", func() goja.Value { return vm.ToValue(doc.URL()) })
	b.accessor(jsDoc, "title", func() goja.Value { return vm.ToValue(doc.Title()) })
	b.accessor(jsDoc, "documentElement", func() goja.Value { return b.elementValue(doc.DocumentElement()) })
	b.accessor(jsDoc, "head", func() goja.Value { return b.elementValue(doc.Head()) })
	b.accessor(jsDoc, "body", func() goja.Value { return b.elementValue(doc.Body()) })
	jsDoc.Set("defaultView", b.runtime.window)

	jsDoc.Set("getElementById", func(call goja.FunctionCall) goja.Value {
		return b.elementValue(doc.GetElementById(call.Argument(0).String()))
	})
	jsDoc.Set("createElement", func(call goja.FunctionCall) goja.Value {
		if goja.IsUndefined(call.Argument(0)) {
			b.runtime.throw("createElement: tag name is required")
		}
		return b.BindElement(doc.CreateElement(call.Argument(0).String()))
	})
	jsDoc.Set("createTextNode", func(call goja.FunctionCall) goja.Value {
		return b.nodeValue(doc.CreateTextNode(call.Argument(0).String()))
	})
	b.bindQueries(jsDoc, doc.AsNode())
	b.bindEventTarget(jsDoc, doc.AsNode())

	b.runtime.vm.Set("document", jsDoc)
	b.bindWindow()
	b.bindLocation(jsDoc)
	return jsDoc
}

// bindWindow adds viewport and style members to the global object. Window
// listeners are registered on the document node, where the page fires
// resize and scroll.
func (b *DOMBinder) bindWindow() {
	vm := b.runtime.vm
	window := b.runtime.window
	doc := b.document

	b.accessor(window, "innerWidth", func() goja.Value { return vm.ToValue(doc.View().Width) })
	b.accessor(window, "innerHeight", func() goja.Value { return vm.ToValue(doc.View().Height) })
	b.accessor(window, "scrollX", func() goja.Value { return vm.ToValue(doc.View().ScrollX) })
	b.accessor(window, "scrollY", func() goja.Value { return vm.ToValue(doc.View().ScrollY) })
	b.accessor(window, "pageXOffset", func() goja.Value { return vm.ToValue(doc.View().ScrollX) })
	b.accessor(window, "pageYOffset", func() goja.Value { return vm.ToValue(doc.View().ScrollY) })

	window.Set("scrollTo", func(call goja.FunctionCall) goja.Value {
		if s, ok := b.host.(scroller); ok {
			s.ScrollTo(call.Argument(0).ToFloat(), call.Argument(1).ToFloat())
		}
		return goja.Undefined()
	})
	window.Set("scrollBy", func(call goja.FunctionCall) goja.Value {
		if s, ok := b.host.(scroller); ok {
			s.ScrollBy(call.Argument(0).ToFloat(), call.Argument(1).ToFloat())
		}
		return goja.Undefined()
	})
	window.Set("getComputedStyle", func(call goja.FunctionCall) goja.Value {
		el := b.GoElement(call.Argument(0))
		if el == nil {
			b.runtime.throw("getComputedStyle: argument is not an Element")
		}
		return vm.NewDynamicObject(&styleObject{binder: b, el: el, computed: true})
	})
	b.bindEventTarget(window, doc.AsNode())
}

func (b *DOMBinder) accessor(obj *goja.Object, name string, get func() goja.Value) {
	vm := b.runtime.vm
	obj.DefineAccessorProperty(name, vm.ToValue(func(goja.FunctionCall) goja.Value {
		return get()
	}), nil, goja.FLAG_FALSE, goja.FLAG_TRUE)
}

func (b *DOMBinder) property(obj *goja.Object, name string, get func() goja.Value, set func(goja.Value)) {
	vm := b.runtime.vm
	obj.DefineAccessorProperty(name, vm.ToValue(func(goja.FunctionCall) goja.Value {
		return get()
	}), vm.ToValue(func(call goja.FunctionCall) goja.Value {
		set(call.Argument(0))
		return goja.Undefined()
	}), goja.FLAG_FALSE, goja.FLAG_TRUE)
}

// bindQueries adds querySelector and querySelectorAll scoped to root.
// Invalid selectors throw.
func (b *DOMBinder) bindQueries(obj *goja.Object, root *dom.Node) {
	obj.Set("querySelector", func(call goja.FunctionCall) goja.Value {
		el, err := css.QuerySelector(root, call.Argument(0).String())
		if err != nil {
			b.runtime.throw("querySelector: %v", err)
		}
		return b.elementValue(el)
	})
	obj.Set("querySelectorAll", func(call goja.FunctionCall) goja.Value {
		els, err := css.QuerySelectorAll(root, call.Argument(0).String())
		if err != nil {
			b.runtime.throw("querySelectorAll: %v", err)
		}
		return b.elementList(els)
	})
}

// BindElement creates or returns the JavaScript object for el.
func (b *DOMBinder) BindElement(el *dom.Element) *goja.Object {
	if el == nil {
		return nil
	}
	node := el.AsNode()
	if jsObj, ok := b.nodeMap[node]; ok {
		return jsObj
	}

	vm := b.runtime.vm
	jsEl := vm.NewObject()
	b.nodeMap[node] = jsEl
	jsEl.DefineDataProperty("_goElement", vm.ToValue(el), goja.FLAG_FALSE, goja.FLAG_FALSE, goja.FLAG_FALSE)

	jsEl.Set("nodeType", int(dom.ElementNode))
	b.accessor(jsEl, "nodeName", func() goja.Value { return vm.ToValue(el.TagName()) })
	b.accessor(jsEl, "tagName", func() goja.Value { return vm.ToValue(el.TagName()) })
	b.accessor(jsEl, "localName", func() goja.Value { return vm.ToValue(el.LocalName()) })
	b.property(jsEl, "id",
		func() goja.Value { return vm.ToValue(el.Id()) },
		func(v goja.Value) { el.SetId(v.String()) })
	b.property(jsEl, "className",
		func() goja.Value { return vm.ToValue(el.ClassName()) },
		func(v goja.Value) { el.SetClassName(v.String()) })
	b.property(jsEl, "textContent",
		func() goja.Value { return vm.ToValue(el.TextContent()) },
		func(v goja.Value) { el.SetTextContent(v.String()) })
	b.property(jsEl, "value",
		func() goja.Value { return vm.ToValue(el.GetAttribute("value")) },
		func(v goja.Value) { el.SetAttribute("value", v.String()) })
	b.accessor(jsEl, "classList", func() goja.Value { return b.bindTokenList(el.ClassList()) })
	b.accessor(jsEl, "style", func() goja.Value {
		return vm.NewDynamicObject(&styleObject{binder: b, el: el})
	})
	b.accessor(jsEl, "isConnected", func() goja.Value { return vm.ToValue(el.IsConnected()) })
	b.accessor(jsEl, "parentElement", func() goja.Value { return b.elementValue(el.ParentElement()) })
	b.accessor(jsEl, "parentNode", func() goja.Value { return b.nodeValue(node.ParentNode()) })
	b.accessor(jsEl, "children", func() goja.Value { return b.elementList(el.Children()) })
	b.accessor(jsEl, "childElementCount", func() goja.Value { return vm.ToValue(len(el.Children())) })

	jsEl.Set("getAttribute", func(call goja.FunctionCall) goja.Value {
		name := call.Argument(0).String()
		if !el.HasAttribute(name) {
			return goja.Null()
		}
		return vm.ToValue(el.GetAttribute(name))
	})
	jsEl.Set("setAttribute", func(call goja.FunctionCall) goja.Value {
		el.SetAttribute(call.Argument(0).String(), call.Argument(1).String())
		return goja.Undefined()
	})
	jsEl.Set("hasAttribute", func(call goja.FunctionCall) goja.Value {
		return vm.ToValue(el.HasAttribute(call.Argument(0).String()))
	})
	jsEl.Set("removeAttribute", func(call goja.FunctionCall) goja.Value {
		el.RemoveAttribute(call.Argument(0).String())
		return goja.Undefined()
	})

	jsEl.Set("appendChild", func(call goja.FunctionCall) goja.Value {
		child := b.goNode(call.Argument(0))
		if child == nil {
			b.runtime.throw("appendChild: argument is not a Node")
		}
		if _, err := node.AppendChildWithError(child); err != nil {
			b.runtime.throw("appendChild: %v", err)
		}
		return call.Argument(0)
	})
	jsEl.Set("removeChild", func(call goja.FunctionCall) goja.Value {
		child := b.goNode(call.Argument(0))
		if child == nil {
			b.runtime.throw("removeChild: argument is not a Node")
		}
		if _, err := node.RemoveChild(child); err != nil {
			b.runtime.throw("removeChild: %v", err)
		}
		return call.Argument(0)
	})
	jsEl.Set("remove", func(goja.FunctionCall) goja.Value {
		el.Remove()
		return goja.Undefined()
	})
	jsEl.Set("contains", func(call goja.FunctionCall) goja.Value {
		other := b.goNode(call.Argument(0))
		return vm.ToValue(other != nil && node.Contains(other))
	})

	b.bindQueries(jsEl, node)
	jsEl.Set("matches", func(call goja.FunctionCall) goja.Value {
		sl, err := css.ParseSelector(call.Argument(0).String())
		if err != nil {
			b.runtime.throw("matches: %v", err)
		}
		ok, _ := sl.Match(el)
		return vm.ToValue(ok)
	})
	jsEl.Set("closest", func(call goja.FunctionCall) goja.Value {
		sl, err := css.ParseSelector(call.Argument(0).String())
		if err != nil {
			b.runtime.throw("closest: %v", err)
		}
		for cur := el; cur != nil; cur = cur.ParentElement() {
			if ok, _ := sl.Match(cur); ok {
				return b.BindElement(cur)
			}
		}
		return goja.Null()
	})

	jsEl.Set("getBoundingClientRect", func(goja.FunctionCall) goja.Value {
		return b.bindRect(b.host.ClientRect(el))
	})
	// click fires a synthetic click at the centre of the element's box.
	jsEl.Set("click", func(goja.FunctionCall) goja.Value {
		r := b.host.ClientRect(el)
		node.DispatchEvent(dom.NewMouseEvent("click", r.X+r.Width/2, r.Y+r.Height/2))
		return goja.Undefined()
	})
	jsEl.Set("focus", func(goja.FunctionCall) goja.Value { return goja.Undefined() })
	jsEl.Set("blur", func(goja.FunctionCall) goja.Value { return goja.Undefined() })

	b.bindEventTarget(jsEl, node)
	return jsEl
}

// bindText wraps a text or comment node.
func (b *DOMBinder) bindText(node *dom.Node) *goja.Object {
	if jsObj, ok := b.nodeMap[node]; ok {
		return jsObj
	}
	vm := b.runtime.vm
	obj := vm.NewObject()
	b.nodeMap[node] = obj
	obj.DefineDataProperty("_goNode", vm.ToValue(node), goja.FLAG_FALSE, goja.FLAG_FALSE, goja.FLAG_FALSE)
	obj.Set("nodeType", int(node.NodeType()))
	obj.Set("nodeName", node.NodeName())
	b.property(obj, "textContent",
		func() goja.Value { return vm.ToValue(node.TextContent()) },
		func(v goja.Value) { node.SetTextContent(v.String()) })
	b.property(obj, "data",
		func() goja.Value { return vm.ToValue(node.NodeValue()) },
		func(v goja.Value) { node.SetTextContent(v.String()) })
	b.accessor(obj, "parentNode", func() goja.Value { return b.nodeValue(node.ParentNode()) })
	b.accessor(obj, "parentElement", func() goja.Value { return b.elementValue(node.ParentElement()) })
	return obj
}

// nodeValue converts a DOM node of any type to a JavaScript value.
func (b *DOMBinder) nodeValue(node *dom.Node) goja.Value {
	if node == nil {
		return goja.Null()
	}
	switch node.NodeType() {
	case dom.ElementNode:
		return b.BindElement((*dom.Element)(node))
	case dom.DocumentNode:
		if node == b.document.AsNode() {
			return b.BindDocument()
		}
		return goja.Null()
	default:
		return b.bindText(node)
	}
}

func (b *DOMBinder) elementValue(el *dom.Element) goja.Value {
	if el == nil {
		return goja.Null()
	}
	return b.BindElement(el)
}

// elementList returns a static array of elements.
func (b *DOMBinder) elementList(els []*dom.Element) goja.Value {
	items := make([]any, len(els))
	for i, el := range els {
		items[i] = b.BindElement(el)
	}
	return b.runtime.vm.NewArray(items...)
}

// GoElement returns the element behind a bound JavaScript object, or nil.
func (b *DOMBinder) GoElement(v goja.Value) *dom.Element {
	node := b.goNode(v)
	if node == nil || node.NodeType() != dom.ElementNode {
		return nil
	}
	return (*dom.Element)(node)
}

func (b *DOMBinder) goNode(v goja.Value) *dom.Node {
	obj, ok := v.(*goja.Object)
	if !ok {
		return nil
	}
	if raw := obj.Get("_goElement"); raw != nil {
		if el, ok := raw.Export().(*dom.Element); ok {
			return el.AsNode()
		}
	}
	if raw := obj.Get("_goNode"); raw != nil {
		if node, ok := raw.Export().(*dom.Node); ok {
			return node
		}
	}
	if obj == b.docObj {
		return b.document.AsNode()
	}
	return nil
}

func (b *DOMBinder) bindRect(r dom.DOMRect) *goja.Object {
	obj := b.runtime.vm.NewObject()
	obj.Set("x", r.X)
	obj.Set("y", r.Y)
	obj.Set("width", r.Width)
	obj.Set("height", r.Height)
	obj.Set("top", r.Top())
	obj.Set("left", r.Left())
	obj.Set("right", r.Right())
	obj.Set("bottom", r.Bottom())
	return obj
}

func (b *DOMBinder) bindTokenList(list *dom.DOMTokenList) *goja.Object {
	vm := b.runtime.vm
	obj := vm.NewObject()
	b.accessor(obj, "length", func() goja.Value { return vm.ToValue(list.Length()) })
	b.accessor(obj, "value", func() goja.Value {
		return vm.ToValue(strings.Join(list.Values(), " "))
	})
	obj.Set("item", func(call goja.FunctionCall) goja.Value {
		values := list.Values()
		i := int(call.Argument(0).ToInteger())
		if i < 0 || i >= len(values) {
			return goja.Null()
		}
		return vm.ToValue(values[i])
	})
	obj.Set("contains", func(call goja.FunctionCall) goja.Value {
		return vm.ToValue(list.Contains(call.Argument(0).String()))
	})
	obj.Set("add", func(call goja.FunctionCall) goja.Value {
		for _, arg := range call.Arguments {
			list.Add(arg.String())
		}
		return goja.Undefined()
	})
	obj.Set("remove", func(call goja.FunctionCall) goja.Value {
		for _, arg := range call.Arguments {
			list.Remove(arg.String())
		}
		return goja.Undefined()
	})
	obj.Set("toggle", func(call goja.FunctionCall) goja.Value {
		token := call.Argument(0).String()
		if force := call.Argument(1); !goja.IsUndefined(force) {
			list.Set(token, force.ToBoolean())
			return vm.ToValue(force.ToBoolean())
		}
		return vm.ToValue(list.Toggle(token))
	})
	return obj
}

// ClearCache drops every cached node wrapper.
func (b *DOMBinder) ClearCache() {
	b.nodeMap = make(map[*dom.Node]*goja.Object)
	b.docObj = nil
}

// styleObject is an element's style declaration, or its computed style
// when computed is set. Properties are accepted in camelCase or kebab-case.
type styleObject struct {
	binder   *DOMBinder
	el       *dom.Element
	computed bool
}

func (s *styleObject) value(prop string) string {
	if s.computed {
		return s.binder.host.ComputedStyle(s.el, dom.CamelCasePropertyName(dom.NormalizePropertyName(prop)))
	}
	return s.binder.host.InlineStyle(s.el, prop)
}

func (s *styleObject) Get(key string) goja.Value {
	vm := s.binder.runtime.vm
	decl := s.el.Style()
	switch key {
	case "cssText":
		if s.computed {
			return vm.ToValue("")
		}
		return vm.ToValue(decl.CSSText())
	case "length":
		if s.computed {
			return vm.ToValue(0)
		}
		return vm.ToValue(decl.Length())
	case "getPropertyValue":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			return vm.ToValue(s.value(call.Argument(0).String()))
		})
	case "setProperty":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			if !s.computed {
				value := ""
				if v := call.Argument(1); !goja.IsUndefined(v) && !goja.IsNull(v) {
					value = v.String()
				}
				s.binder.host.SetInlineStyle(s.el, call.Argument(0).String(), value)
			}
			return goja.Undefined()
		})
	case "removeProperty":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			if s.computed {
				return vm.ToValue("")
			}
			return vm.ToValue(decl.RemoveProperty(call.Argument(0).String()))
		})
	case "item":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			return vm.ToValue(decl.Item(int(call.Argument(0).ToInteger())))
		})
	}
	return vm.ToValue(s.value(key))
}

func (s *styleObject) Set(key string, val goja.Value) bool {
	if s.computed {
		return false
	}
	value := ""
	if !goja.IsUndefined(val) && !goja.IsNull(val) {
		value = val.String()
	}
	if key == "cssText" {
		s.el.Style().SetCSSText(value)
		return true
	}
	s.binder.host.SetInlineStyle(s.el, key, value)
	return true
}

func (s *styleObject) Has(key string) bool {
	switch key {
	case "cssText", "length", "getPropertyValue", "setProperty", "removeProperty", "item":
		return true
	}
	return s.value(key) != ""
}

func (s *styleObject) Delete(key string) bool {
	if s.computed {
		return false
	}
	s.el.Style().RemoveProperty(key)
	return true
}

func (s *styleObject) Keys() []string {
	if s.computed {
		return nil
	}
	names := s.el.Style().PropertyNames()
	keys := make([]string, len(names))
	for i, name := range names {
		keys[i] = dom.CamelCasePropertyName(name)
	}
	return keys
}
