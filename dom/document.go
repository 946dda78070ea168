package dom

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Document is the root of a parsed page. It shares Node's layout so a
// *Document and its *Node convert freely.
type Document Node

// ReadyState values, in the order a document passes through them.
const (
	ReadyStateLoading     = "loading"
	ReadyStateInteractive = "interactive"
	ReadyStateComplete    = "complete"
)

// View describes the viewport the document is displayed in. Width and Height
// are in CSS pixels; ScrollX and ScrollY are the document scroll offsets.
type View struct {
	Width   float64
	Height  float64
	ScrollX float64
	ScrollY float64
}

// DefaultView is the viewport assigned to new documents.
var DefaultView = View{Width: 1024, Height: 768}

type documentData struct {
	url        string
	readyState string
	view       View
	version    uint64
}

// NewDocument creates an empty document whose parsing is already complete.
func NewDocument() *Document {
	node := newNode(DocumentNode, "#document", nil)
	node.documentData = &documentData{
		readyState: ReadyStateComplete,
		view:       DefaultView,
	}
	doc := (*Document)(node)
	node.ownerDoc = doc
	return doc
}

func (d *Document) AsNode() *Node { return (*Node)(d) }

// URL is "about:blank" until SetURL.
func (d *Document) URL() string {
	if d.documentData.url == "" {
		return "about:blank"
	}
	return d.documentData.url
}

func (d *Document) SetURL(url string) { d.documentData.url = url }

// ReadyState returns "loading", "interactive" or "complete".
func (d *Document) ReadyState() string {
	return d.documentData.readyState
}

// FinishParsing moves a loading document to "interactive", fires
// DOMContentLoaded, then moves it to "complete". It is a no-op for
// documents that are not loading.
func (d *Document) FinishParsing() {
	if d.documentData.readyState != ReadyStateLoading {
		return
	}
	d.setReadyState(ReadyStateInteractive)
	d.AsNode().DispatchEvent(NewEvent("DOMContentLoaded"))
	d.setReadyState(ReadyStateComplete)
}

func (d *Document) setReadyState(state string) {
	d.documentData.readyState = state
	d.AsNode().DispatchEvent(NewEvent("readystatechange"))
}

// OnContentLoaded runs fn once DOMContentLoaded fires. If the document has
// finished loading already, fn runs immediately.
func (d *Document) OnContentLoaded(fn func()) {
	if d.ReadyState() != ReadyStateLoading {
		fn()
		return
	}
	d.AsNode().AddEventListener("DOMContentLoaded", func(*Event) { fn() }, ListenerOptions{Once: true})
}

// Version returns a counter that changes whenever the tree, an attribute
// or character data changes. Layout caches compare it to detect staleness.
func (d *Document) Version() uint64 {
	return d.documentData.version
}

// View returns the current viewport.
func (d *Document) View() View {
	return d.documentData.view
}

// SetViewportSize updates the viewport dimensions.
func (d *Document) SetViewportSize(width, height float64) {
	d.documentData.view.Width = width
	d.documentData.view.Height = height
}

// SetScroll updates the document scroll offsets.
func (d *Document) SetScroll(x, y float64) {
	d.documentData.view.ScrollX = x
	d.documentData.view.ScrollY = y
}

// DocumentElement is the <html> element, or nil for an empty document.
func (d *Document) DocumentElement() *Element {
	for child := d.firstChild; child != nil; child = child.nextSibling {
		if child.nodeType == ElementNode {
			return (*Element)(child)
		}
	}
	return nil
}

func (d *Document) rootChild(tag atom.Atom) *Element {
	root := d.DocumentElement()
	if root == nil {
		return nil
	}
	for _, el := range root.Children() {
		if el.LocalName() == tag.String() {
			return el
		}
	}
	return nil
}

func (d *Document) Head() *Element { return d.rootChild(atom.Head) }
func (d *Document) Body() *Element { return d.rootChild(atom.Body) }

// Title is the trimmed text of the first <title> in <head>.
func (d *Document) Title() string {
	if head := d.Head(); head != nil {
		if t := head.QuerySelector("title"); t != nil {
			return strings.TrimSpace(t.TextContent())
		}
	}
	return ""
}

// CreateElement makes a detached element. Tag names are case-insensitive.
func (d *Document) CreateElement(tagName string) *Element {
	localName := strings.ToLower(tagName)
	node := newNode(ElementNode, strings.ToUpper(localName), d)
	node.elementData = &elementData{localName: localName}
	return (*Element)(node)
}

func (d *Document) CreateTextNode(data string) *Node {
	return d.characterData(TextNode, "#text", data)
}

func (d *Document) CreateComment(data string) *Node {
	return d.characterData(CommentNode, "#comment", data)
}

func (d *Document) characterData(t NodeType, name, data string) *Node {
	n := newNode(t, name, d)
	n.textData = &data
	return n
}

// GetElementById returns the first element in document order with the id.
func (d *Document) GetElementById(id string) *Element {
	if id == "" {
		return nil
	}
	var found *Element
	walkElements(d.AsNode(), func(el *Element) bool {
		if el.Id() == id {
			found = el
			return false
		}
		return true
	})
	return found
}

// QuerySelector returns the first element matching a compound selector.
func (d *Document) QuerySelector(selector string) *Element {
	if root := d.DocumentElement(); root != nil {
		if root.Matches(selector) {
			return root
		}
		return root.QuerySelector(selector)
	}
	return nil
}

// QuerySelectorAll returns all elements matching a compound selector.
func (d *Document) QuerySelectorAll(selector string) []*Element {
	root := d.DocumentElement()
	if root == nil {
		return nil
	}
	var out []*Element
	if root.Matches(selector) {
		out = append(out, root)
	}
	return append(out, root.QuerySelectorAll(selector)...)
}

// ParseHTML parses a complete HTML document.
func ParseHTML(htmlContent string) (*Document, error) {
	return parse(strings.NewReader(htmlContent), ReadyStateComplete)
}

// ParseHTMLLoading parses r into a document that stays in the "loading"
// state until FinishParsing is called, which lets scripts run first.
func ParseHTMLLoading(r io.Reader) (*Document, error) {
	return parse(r, ReadyStateLoading)
}

func parse(r io.Reader, state string) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	doc := NewDocument()
	doc.documentData.readyState = state
	doc.importNodes(doc.AsNode(), root)
	return doc, nil
}

// importNodes appends a copy of every child of src to parent. Only
// elements, text, comments and doctypes are kept.
func (d *Document) importNodes(parent *Node, src *html.Node) {
	for c := src.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.ElementNode:
			el := d.CreateElement(c.Data)
			for _, a := range c.Attr {
				el.setAttributeRaw(a.Key, a.Val)
			}
			parent.AppendChild(el.AsNode())
			d.importNodes(el.AsNode(), c)
		case html.TextNode:
			parent.AppendChild(d.CreateTextNode(c.Data))
		case html.CommentNode:
			parent.AppendChild(d.CreateComment(c.Data))
		case html.DoctypeNode:
			parent.AppendChild(newNode(DocumentTypeNode, c.Data, d))
		}
	}
}
