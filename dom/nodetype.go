// Package dom provides the document tree the inspector attaches to.
// https://dom.spec.whatwg.org/
package dom

import "fmt"

// NodeType is the numeric nodeType exposed to scripts. Only the kinds the
// HTML parser produces exist here.
type NodeType uint16

const (
	ElementNode      NodeType = 1
	TextNode         NodeType = 3
	CommentNode      NodeType = 8
	DocumentNode     NodeType = 9
	DocumentTypeNode NodeType = 10
)

var nodeTypeNames = map[NodeType]string{
	ElementNode:      "ELEMENT_NODE",
	TextNode:         "TEXT_NODE",
	CommentNode:      "COMMENT_NODE",
	DocumentNode:     "DOCUMENT_NODE",
	DocumentTypeNode: "DOCUMENT_TYPE_NODE",
}

// String returns the script constant name, e.g. "ELEMENT_NODE".
func (nt NodeType) String() string {
	if name, ok := nodeTypeNames[nt]; ok {
		return name
	}
	return fmt.Sprintf("NodeType(%d)", uint16(nt))
}
