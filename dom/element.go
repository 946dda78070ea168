package dom

import (
	"strings"
)

// Element represents a DOM element.
type Element Node

// Attr is a single name/value attribute pair.
type Attr struct {
	Name  string
	Value string
}

// AsNode returns the element as a *Node.
func (e *Element) AsNode() *Node {
	return (*Node)(e)
}

// TagName returns the uppercase tag name of the element.
func (e *Element) TagName() string {
	return e.nodeName
}

// LocalName returns the lowercase local name of the element.
func (e *Element) LocalName() string {
	return e.elementData.localName
}

// Id returns the element's id attribute.
func (e *Element) Id() string {
	return e.GetAttribute("id")
}

// SetId sets the element's id attribute.
func (e *Element) SetId(id string) {
	e.SetAttribute("id", id)
}

// ClassName returns the element's class attribute.
func (e *Element) ClassName() string {
	return e.GetAttribute("class")
}

// SetClassName sets the element's class attribute.
func (e *Element) SetClassName(className string) {
	e.SetAttribute("class", className)
}

// ClassList returns the live token list backed by the class attribute.
func (e *Element) ClassList() *DOMTokenList {
	if e.elementData.classList == nil {
		e.elementData.classList = newDOMTokenList(e, "class")
	}
	return e.elementData.classList
}

// Attributes returns a copy of the element's attributes in source order.
func (e *Element) Attributes() []Attr {
	attrs := make([]Attr, len(e.elementData.attributes))
	copy(attrs, e.elementData.attributes)
	return attrs
}

func (e *Element) attrIndex(name string) int {
	name = strings.ToLower(name)
	for i, a := range e.elementData.attributes {
		if a.Name == name {
			return i
		}
	}
	return -1
}

// GetAttribute returns the value of the named attribute, or "" if absent.
func (e *Element) GetAttribute(name string) string {
	if i := e.attrIndex(name); i >= 0 {
		return e.elementData.attributes[i].Value
	}
	return ""
}

// HasAttribute returns true if the element has the named attribute.
func (e *Element) HasAttribute(name string) bool {
	return e.attrIndex(name) >= 0
}

// SetAttribute sets the value of the named attribute.
func (e *Element) SetAttribute(name, value string) {
	e.setAttributeRaw(name, value)
	if strings.EqualFold(name, "style") && e.elementData.styleDeclaration != nil {
		e.elementData.styleDeclaration.RefreshFromAttribute()
	}
}

// setAttributeRaw writes the attribute without re-parsing the inline style.
func (e *Element) setAttributeRaw(name, value string) {
	e.AsNode().touch()
	if i := e.attrIndex(name); i >= 0 {
		e.elementData.attributes[i].Value = value
		return
	}
	e.elementData.attributes = append(e.elementData.attributes, Attr{Name: strings.ToLower(name), Value: value})
}

// RemoveAttribute removes the named attribute.
func (e *Element) RemoveAttribute(name string) {
	e.removeAttributeRaw(name)
	if strings.EqualFold(name, "style") && e.elementData.styleDeclaration != nil {
		e.elementData.styleDeclaration.RefreshFromAttribute()
	}
}

func (e *Element) removeAttributeRaw(name string) {
	if i := e.attrIndex(name); i >= 0 {
		e.AsNode().touch()
		attrs := e.elementData.attributes
		e.elementData.attributes = append(attrs[:i], attrs[i+1:]...)
	}
}

// Style returns the CSSStyleDeclaration for this element's inline styles.
func (e *Element) Style() *CSSStyleDeclaration {
	if e.elementData.styleDeclaration == nil {
		e.elementData.styleDeclaration = NewCSSStyleDeclaration(e)
	}
	return e.elementData.styleDeclaration
}

// Geometry returns the element's layout geometry, or nil before layout.
func (e *Element) Geometry() *ElementGeometry {
	return e.elementData.geometry
}

// SetGeometry sets the element's layout geometry. Passing nil marks the
// element as not rendered.
func (e *Element) SetGeometry(g *ElementGeometry) {
	e.elementData.geometry = g
}

// GetBoundingClientRect returns the element's border box relative to the
// viewport. Elements without layout report a zero rect.
func (e *Element) GetBoundingClientRect() DOMRect {
	geom := e.Geometry()
	if geom == nil {
		return DOMRect{}
	}
	if geom.Fixed || e.ownerDoc == nil {
		return DOMRect{X: geom.X, Y: geom.Y, Width: geom.Width, Height: geom.Height}
	}
	view := e.ownerDoc.View()
	return DOMRect{
		X:      geom.X - view.ScrollX,
		Y:      geom.Y - view.ScrollY,
		Width:  geom.Width,
		Height: geom.Height,
	}
}

// Children returns the element children of this element.
func (e *Element) Children() []*Element {
	return elementChildren(e.AsNode())
}

func elementChildren(n *Node) []*Element {
	var out []*Element
	for c := n.firstChild; c != nil; c = c.nextSibling {
		if c.nodeType == ElementNode {
			out = append(out, (*Element)(c))
		}
	}
	return out
}

// ParentElement returns the parent element, or nil.
func (e *Element) ParentElement() *Element {
	return e.AsNode().ParentElement()
}

// IsConnected reports whether the element is attached to a document.
func (e *Element) IsConnected() bool {
	return e.AsNode().IsConnected()
}

// Contains returns true if other is this element or one of its descendants.
func (e *Element) Contains(other *Element) bool {
	if other == nil {
		return false
	}
	return e.AsNode().Contains(other.AsNode())
}

// Append appends the given nodes as the last children of this element.
func (e *Element) Append(nodes ...*Node) {
	for _, n := range nodes {
		e.AsNode().AppendChild(n)
	}
}

// AppendElement is a convenience wrapper for appending an element child.
func (e *Element) AppendElement(child *Element) *Element {
	e.AsNode().AppendChild(child.AsNode())
	return child
}

// Remove detaches the element from its parent.
func (e *Element) Remove() {
	if p := e.parentNode; p != nil {
		p.unlink(e.AsNode())
	}
}

// TextContent returns the concatenated text of the element's descendants.
func (e *Element) TextContent() string {
	return e.AsNode().TextContent()
}

// SetTextContent replaces the element's children with a single text node.
func (e *Element) SetTextContent(text string) {
	e.AsNode().SetTextContent(text)
}

// Matches reports whether the element matches a compound selector such as
// "div", "#main", ".card.featured" or "button.panel-close". A comma-separated
// list matches if any entry does. Combinators are not supported here; the css
// package provides full selector matching.
func (e *Element) Matches(selector string) bool {
	for _, part := range strings.Split(selector, ",") {
		if e.matchesCompound(strings.TrimSpace(part)) {
			return true
		}
	}
	return false
}

func (e *Element) matchesCompound(selector string) bool {
	if selector == "" {
		return false
	}
	tag, rest := splitTag(selector)
	if tag != "" && tag != "*" && !strings.EqualFold(tag, e.LocalName()) {
		return false
	}
	for rest != "" {
		kind := rest[0]
		rest = rest[1:]
		end := strings.IndexAny(rest, ".#")
		if end < 0 {
			end = len(rest)
		}
		name := rest[:end]
		rest = rest[end:]
		switch kind {
		case '.':
			if !e.ClassList().Contains(name) {
				return false
			}
		case '#':
			if e.Id() != name {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func splitTag(selector string) (string, string) {
	i := strings.IndexAny(selector, ".#")
	if i < 0 {
		return selector, ""
	}
	return selector[:i], selector[i:]
}

// Closest returns the closest ancestor element (or self) matching the selector.
func (e *Element) Closest(selector string) *Element {
	for current := e; current != nil; current = current.ParentElement() {
		if current.Matches(selector) {
			return current
		}
	}
	return nil
}

// QuerySelectorAll returns descendants matching a compound selector, in
// document order.
func (e *Element) QuerySelectorAll(selector string) []*Element {
	var out []*Element
	walkElements(e.AsNode(), func(el *Element) bool {
		if el != e && el.Matches(selector) {
			out = append(out, el)
		}
		return true
	})
	return out
}

// QuerySelector returns the first descendant matching a compound selector.
func (e *Element) QuerySelector(selector string) *Element {
	var found *Element
	walkElements(e.AsNode(), func(el *Element) bool {
		if el != e && el.Matches(selector) {
			found = el
			return false
		}
		return true
	})
	return found
}

// walkElements visits element descendants of n (including n itself when it
// is an element) in document order until fn returns false.
func walkElements(n *Node, fn func(*Element) bool) bool {
	if n.nodeType == ElementNode {
		if !fn((*Element)(n)) {
			return false
		}
	}
	for c := n.firstChild; c != nil; c = c.nextSibling {
		if !walkElements(c, fn) {
			return false
		}
	}
	return true
}

// WalkElements visits every element in the subtree rooted at n in document
// order until fn returns false.
func WalkElements(n *Node, fn func(*Element) bool) {
	walkElements(n, fn)
}
