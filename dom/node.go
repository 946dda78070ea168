package dom

import (
	"strings"
)

// Node represents a node in the DOM tree. Element and Document are defined
// as Node so the same pointer can be viewed through either type.
type Node struct {
	nodeType NodeType
	nodeName string
	ownerDoc *Document

	parentNode  *Node
	firstChild  *Node
	lastChild   *Node
	prevSibling *Node
	nextSibling *Node

	// Type-specific data (only one will be non-nil based on nodeType)
	elementData  *elementData
	textData     *string
	documentData *documentData

	listeners *listenerSet
}

// ElementGeometry holds computed layout geometry for an element.
// The layout engine writes it; GetBoundingClientRect reads it.
type ElementGeometry struct {
	// Border box in document coordinates. For fixed elements X and Y are
	// relative to the viewport instead.
	X, Y, Width, Height float64

	// Fixed is set for position: fixed boxes, which do not move with scrolling.
	Fixed bool
}

// elementData holds data specific to Element nodes.
type elementData struct {
	localName        string
	attributes       []Attr
	classList        *DOMTokenList
	styleDeclaration *CSSStyleDeclaration

	// Layout geometry - set during layout computation
	geometry *ElementGeometry
}

// newNode creates a new node with the given type and name.
func newNode(nodeType NodeType, nodeName string, ownerDoc *Document) *Node {
	return &Node{
		nodeType: nodeType,
		nodeName: nodeName,
		ownerDoc: ownerDoc,
	}
}

// NodeType, NodeName and the tree accessors below mirror the DOM
// attributes of the same names. Elements report an uppercase NodeName,
// text nodes "#text" and documents "#document".
func (n *Node) NodeType() NodeType     { return n.nodeType }
func (n *Node) NodeName() string       { return n.nodeName }
func (n *Node) ParentNode() *Node      { return n.parentNode }
func (n *Node) FirstChild() *Node      { return n.firstChild }
func (n *Node) LastChild() *Node       { return n.lastChild }
func (n *Node) PreviousSibling() *Node { return n.prevSibling }
func (n *Node) NextSibling() *Node     { return n.nextSibling }
func (n *Node) HasChildNodes() bool    { return n.firstChild != nil }

// OwnerDocument is nil for documents themselves.
func (n *Node) OwnerDocument() *Document {
	if n.nodeType == DocumentNode {
		return nil
	}
	return n.ownerDoc
}

// ParentElement is nil when the parent is the document.
func (n *Node) ParentElement() *Element {
	if p := n.parentNode; p != nil && p.nodeType == ElementNode {
		return (*Element)(p)
	}
	return nil
}

// ChildNodes returns a copy, so callers may mutate the tree while ranging.
func (n *Node) ChildNodes() []*Node {
	var out []*Node
	for c := n.firstChild; c != nil; c = c.nextSibling {
		out = append(out, c)
	}
	return out
}

// IsConnected reports whether the node's tree is rooted at a document.
// Removed inspector targets are detected this way.
func (n *Node) IsConnected() bool {
	return n.GetRootNode().nodeType == DocumentNode
}

// GetRootNode walks parent links to the top of the tree.
func (n *Node) GetRootNode() *Node {
	for n.parentNode != nil {
		n = n.parentNode
	}
	return n
}

// Contains is inclusive: n.Contains(n) is true.
func (n *Node) Contains(other *Node) bool {
	for node := other; node != nil; node = node.parentNode {
		if node == n {
			return true
		}
	}
	return false
}

// NodeValue is the character data of text and comment nodes.
func (n *Node) NodeValue() string {
	if n.textData != nil {
		return *n.textData
	}
	return ""
}

// TextContent concatenates descendant text. It is "" for documents and
// doctypes.
func (n *Node) TextContent() string {
	switch n.nodeType {
	case DocumentNode, DocumentTypeNode:
		return ""
	case TextNode, CommentNode:
		return n.NodeValue()
	default:
		var sb strings.Builder
		n.appendText(&sb)
		return sb.String()
	}
}

func (n *Node) appendText(sb *strings.Builder) {
	for child := n.firstChild; child != nil; child = child.nextSibling {
		switch child.nodeType {
		case TextNode:
			sb.WriteString(child.NodeValue())
		case ElementNode:
			child.appendText(sb)
		}
	}
}

// SetTextContent replaces all children with a single text node.
func (n *Node) SetTextContent(value string) {
	switch n.nodeType {
	case DocumentNode, DocumentTypeNode:
		return
	case TextNode, CommentNode:
		n.textData = &value
		n.touch()
	default:
		for n.firstChild != nil {
			n.unlink(n.firstChild)
		}
		if value != "" {
			n.link(n.ownerDoc.CreateTextNode(value), nil)
		}
	}
}

// AppendChild ignores invalid insertions and returns nil for them.
func (n *Node) AppendChild(child *Node) *Node {
	result, _ := n.AppendChildWithError(child)
	return result
}

// AppendChildWithError is AppendChild with the failure reason.
func (n *Node) AppendChildWithError(child *Node) (*Node, error) {
	return n.InsertBeforeWithError(child, nil)
}

// InsertBeforeWithError inserts newChild before refChild, or at the end
// when refChild is nil.
func (n *Node) InsertBeforeWithError(newChild, refChild *Node) (*Node, error) {
	if newChild == nil {
		return nil, hierarchyRequest("node to insert is nil")
	}
	if !n.acceptsChildren() {
		return nil, hierarchyRequest("parent cannot have children")
	}
	if newChild.nodeType == DocumentNode {
		return nil, hierarchyRequest("a document cannot be inserted")
	}
	if newChild.Contains(n) {
		return nil, hierarchyRequest("the new child is an ancestor of the parent")
	}
	if refChild != nil && refChild.parentNode != n {
		return nil, notFound("the reference node is not a child of this node")
	}
	if refChild == newChild {
		refChild = newChild.nextSibling
	}
	if newChild.parentNode != nil {
		newChild.parentNode.unlink(newChild)
	}
	n.link(newChild, refChild)
	return newChild, nil
}

// RemoveChild detaches child and returns it.
func (n *Node) RemoveChild(child *Node) (*Node, error) {
	if child == nil || child.parentNode != n {
		return nil, notFound("the node to be removed is not a child of this node")
	}
	n.unlink(child)
	return child, nil
}

func (n *Node) acceptsChildren() bool {
	return n.nodeType == ElementNode || n.nodeType == DocumentNode
}

func (n *Node) link(newChild, refChild *Node) {
	newChild.parentNode = n
	adoptNode(newChild, n.document())
	n.touch()

	if refChild == nil {
		newChild.prevSibling = n.lastChild
		newChild.nextSibling = nil
		if n.lastChild != nil {
			n.lastChild.nextSibling = newChild
		} else {
			n.firstChild = newChild
		}
		n.lastChild = newChild
		return
	}

	newChild.nextSibling = refChild
	newChild.prevSibling = refChild.prevSibling
	if refChild.prevSibling != nil {
		refChild.prevSibling.nextSibling = newChild
	} else {
		n.firstChild = newChild
	}
	refChild.prevSibling = newChild
}

func (n *Node) unlink(child *Node) {
	n.touch()
	if child.prevSibling != nil {
		child.prevSibling.nextSibling = child.nextSibling
	} else {
		n.firstChild = child.nextSibling
	}
	if child.nextSibling != nil {
		child.nextSibling.prevSibling = child.prevSibling
	} else {
		n.lastChild = child.prevSibling
	}
	child.parentNode = nil
	child.prevSibling = nil
	child.nextSibling = nil
}

func (n *Node) document() *Document {
	if n.nodeType == DocumentNode {
		return (*Document)(n)
	}
	return n.ownerDoc
}

// touch marks the document dirty so layout and repaint run again.
func (n *Node) touch() {
	if doc := n.document(); doc != nil && doc.documentData != nil {
		doc.documentData.version++
	}
}

// adoptNode sets the owner of every node in the subtree.
func adoptNode(node *Node, doc *Document) {
	if node.ownerDoc == doc {
		return
	}
	node.ownerDoc = doc
	for c := node.firstChild; c != nil; c = c.nextSibling {
		adoptNode(c, doc)
	}
}
