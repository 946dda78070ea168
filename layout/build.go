package layout

import (
	"strconv"

	"github.com/chrisuehlinger/domdebug/css"
	"github.com/chrisuehlinger/domdebug/dom"
)

// buildTree creates the box for el and its descendants. Elements with
// display: none (or without a computed style) generate no box.
func (lc *LayoutContext) buildTree(el *dom.Element, styles map[*dom.Element]*css.ComputedStyle, parent *LayoutBox) *LayoutBox {
	cs := styles[el]
	if cs == nil || cs.Keyword("display") == "none" {
		return nil
	}
	box := &LayoutBox{Element: el, ComputedStyle: cs, Parent: parent}

	display := cs.Keyword("display")
	switch display {
	case "inline", "contents":
		box.BoxType = InlineBox
	case "inline-block", "inline-flex":
		box.BoxType = InlineBlockBox
	default:
		box.BoxType = BlockBox
	}
	if box.BoxType == InlineBox && replaced(el) {
		box.BoxType = InlineBlockBox
	}
	if box.OutOfFlow() || parent == nil {
		box.BoxType = BlockBox
	}
	box.flex = display == "flex" || display == "inline-flex"
	box.lineBreak = el.LocalName() == "br"

	if box.Positioned() {
		box.IsStackingContext = true
		if z, err := strconv.Atoi(cs.Keyword("z-index")); err == nil {
			box.ZIndex = z
		}
	}

	for c := el.AsNode().FirstChild(); c != nil; c = c.NextSibling() {
		switch c.NodeType() {
		case dom.ElementNode:
			if child := lc.buildTree((*dom.Element)(c), styles, box); child != nil {
				box.Children = append(box.Children, child)
			}
		case dom.TextNode:
			if text := c.NodeValue(); text != "" {
				box.Children = append(box.Children, &LayoutBox{
					BoxType:       TextBox,
					TextContent:   text,
					ComputedStyle: cs,
					Parent:        box,
				})
			}
		}
	}

	// An inline element holding block-level content is treated as a block.
	if box.BoxType == InlineBox {
		for _, c := range box.Children {
			if c.blockLevel() {
				box.BoxType = BlockBox
				break
			}
		}
	}
	box.Children = normalizeChildren(box)
	return box
}

// normalizeChildren makes the children of a container uniform: either all
// block-level or all inline-level. Flex containers turn every child into a
// block-level item.
func normalizeChildren(box *LayoutBox) []*LayoutBox {
	if box.BoxType == InlineBox || box.BoxType == TextBox {
		return box.Children
	}
	if box.flex {
		for _, c := range box.Children {
			if c.BoxType == InlineBox || c.BoxType == InlineBlockBox {
				c.BoxType = BlockBox
				c.Children = normalizeChildren(c)
			}
		}
	} else {
		hasBlock := false
		for _, c := range box.Children {
			if c.blockLevel() {
				hasBlock = true
				break
			}
		}
		if !hasBlock {
			return box.Children
		}
	}

	var out, run []*LayoutBox
	flush := func() {
		defer func() { run = nil }()
		if len(run) == 0 {
			return
		}
		onlySpace := true
		for _, r := range run {
			if !r.isWhitespace() {
				onlySpace = false
				break
			}
		}
		if onlySpace {
			return
		}
		anon := &LayoutBox{BoxType: AnonymousBox, ComputedStyle: box.ComputedStyle, Parent: box, Children: run}
		for _, r := range run {
			r.Parent = anon
		}
		out = append(out, anon)
	}
	for _, c := range box.Children {
		if c.blockLevel() || c.OutOfFlow() {
			flush()
			out = append(out, c)
			continue
		}
		run = append(run, c)
	}
	flush()
	return out
}

// replaced reports whether el is a form control or image whose size does
// not come from its children.
func replaced(el *dom.Element) bool {
	switch el.LocalName() {
	case "input", "textarea", "select", "img":
		return true
	}
	return false
}

// intrinsicWidth returns the default content width of replaced elements.
func intrinsicWidth(b *LayoutBox) (float64, bool) {
	if b.Element == nil || !replaced(b.Element) {
		return 0, false
	}
	switch b.Element.LocalName() {
	case "input":
		return 150, true
	case "textarea":
		return 180, true
	case "select":
		return 100, true
	}
	if w, err := strconv.ParseFloat(b.Element.GetAttribute("width"), 64); err == nil {
		return w, true
	}
	return 0, true
}

func intrinsicHeight(b *LayoutBox) (float64, bool) {
	if b.Element == nil || !replaced(b.Element) {
		return 0, false
	}
	switch b.Element.LocalName() {
	case "input", "select":
		return b.ComputedStyle.LineHeight(), true
	case "textarea":
		return b.ComputedStyle.LineHeight() * 2, true
	}
	if h, err := strconv.ParseFloat(b.Element.GetAttribute("height"), 64); err == nil {
		return h, true
	}
	return 0, true
}
