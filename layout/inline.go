package layout

import (
	"math"
	"strings"
)

// lineState tracks the current line while inline content is placed.
type lineState struct {
	left, right float64
	x, y        float64
	height      float64
	line        int
	hasContent  bool
	space       bool

	placed []placedRect
}

type placedRect struct {
	rect Rect
	line int
}

func (ls *lineState) newLine(minHeight float64) {
	h := ls.height
	if h == 0 {
		h = minHeight
	}
	ls.y += h
	ls.x = ls.left
	ls.height = 0
	ls.line++
	ls.hasContent = false
	ls.space = false
}

func (ls *lineState) place(r Rect) {
	ls.placed = append(ls.placed, placedRect{rect: r, line: ls.line})
	ls.height = math.Max(ls.height, r.Height)
	ls.hasContent = true
}

// layoutInlineChildren flows the inline-level children of b into lines and
// returns the total height of those lines.
func (lc *LayoutContext) layoutInlineChildren(b *LayoutBox) float64 {
	content := b.Dimensions.Content
	ls := &lineState{
		left:  content.X,
		right: content.X + content.Width,
		x:     content.X,
		y:     content.Y,
	}
	for _, c := range b.Children {
		lc.placeInline(b, c, ls)
	}
	if ls.hasContent {
		ls.y += ls.height
	}
	return ls.y - content.Y
}

func (lc *LayoutContext) placeInline(container, b *LayoutBox, ls *lineState) {
	if b.OutOfFlow() {
		lc.deferPositioned(b, container, ls.x, ls.y)
		return
	}
	switch b.BoxType {
	case TextBox:
		lc.placeText(b, ls)
	case InlineBox:
		lc.placeInlineBox(b, ls)
	default:
		lc.placeInlineBlock(b, ls)
	}
}

func (lc *LayoutContext) placeText(b *LayoutBox, ls *lineState) {
	cs := b.ComputedStyle
	fontSize := cs.Px("font-size", 0)
	lineHeight := cs.LineHeight()
	spaceWidth := TextWidth(" ", fontSize)
	b.Fragments = b.Fragments[:0]
	b.FragmentText = b.FragmentText[:0]

	emit := func(word string) {
		w := TextWidth(word, fontSize)
		gap := 0.0
		if ls.space && ls.hasContent {
			gap = spaceWidth
		}
		if ls.hasContent && ls.x+gap+w > ls.right {
			ls.newLine(lineHeight)
			gap = 0
		}
		r := Rect{X: ls.x + gap, Y: ls.y, Width: w, Height: lineHeight}
		if n := len(b.Fragments); n > 0 && b.Fragments[n-1].Y == r.Y {
			b.Fragments[n-1] = b.Fragments[n-1].Union(r)
			if gap > 0 {
				b.FragmentText[n-1] += " "
			}
			b.FragmentText[n-1] += word
		} else {
			b.Fragments = append(b.Fragments, r)
			b.FragmentText = append(b.FragmentText, word)
		}
		ls.place(r)
		ls.x += gap + w
		ls.space = false
	}

	if strings.HasPrefix(cs.Keyword("white-space"), "pre") {
		for i, line := range strings.Split(b.TextContent, "\n") {
			if i > 0 {
				ls.newLine(lineHeight)
			}
			if line != "" {
				emit(line)
			}
		}
		return
	}

	text := b.TextContent
	if strings.TrimSpace(text) == "" {
		ls.space = true
		return
	}
	if strings.TrimLeft(text, " \t\n\r\f") != text {
		ls.space = true
	}
	words := strings.Fields(text)
	for i, word := range words {
		if i > 0 {
			ls.space = true
		}
		emit(word)
	}
	if strings.TrimRight(text, " \t\n\r\f") != text {
		ls.space = true
	}
}

// placeInlineBox flows the children of an inline element and derives its
// fragments from what they placed: one rectangle per line, widened by the
// element's own padding and border.
func (lc *LayoutContext) placeInlineBox(b *LayoutBox, ls *lineState) {
	cs := b.ComputedStyle
	lineHeight := cs.LineHeight()
	if b.lineBreak {
		ls.newLine(lineHeight)
		b.Fragments = []Rect{{X: ls.x, Y: ls.y, Height: lineHeight}}
		return
	}
	resolveEdges(b, ls.right-ls.left)
	d := &b.Dimensions
	startEdge := d.Margin.Left + d.Border.Left + d.Padding.Left
	endEdge := d.Margin.Right + d.Border.Right + d.Padding.Right

	if ls.space && ls.hasContent {
		ls.x += TextWidth(" ", cs.Px("font-size", 0))
		ls.space = false
	}
	ls.x += startEdge
	startX, startLine, startY := ls.x, ls.line, ls.y
	first := len(ls.placed)
	for _, c := range b.Children {
		lc.placeInline(b, c, ls)
	}
	ls.x += endEdge

	byLine := map[int]Rect{}
	var lines []int
	for _, p := range ls.placed[first:] {
		r, ok := byLine[p.line]
		if !ok {
			lines = append(lines, p.line)
			byLine[p.line] = p.rect
			continue
		}
		byLine[p.line] = r.Union(p.rect)
	}
	if len(lines) == 0 {
		lines = []int{startLine}
		byLine[startLine] = Rect{X: startX, Y: startY, Height: lineHeight}
	}
	b.Fragments = b.Fragments[:0]
	for i, line := range lines {
		r := byLine[line]
		r.Y -= d.Border.Top + d.Padding.Top
		r.Height = math.Max(r.Height, lineHeight) + d.Border.Top + d.Padding.Top + d.Border.Bottom + d.Padding.Bottom
		if i == 0 {
			r.X -= d.Border.Left + d.Padding.Left
			r.Width += d.Border.Left + d.Padding.Left
			if line == startLine && ls.line == startLine {
				r.Width = math.Max(r.Width, ls.x-endEdge-r.X)
			}
		}
		if i == len(lines)-1 {
			r.Width += d.Border.Right + d.Padding.Right
		}
		b.Fragments = append(b.Fragments, r)
	}
	// Contribute the element's own box so enclosing inline boxes cover
	// its padding and border.
	for i, f := range b.Fragments {
		ls.placed = append(ls.placed, placedRect{rect: f, line: lines[i]})
	}
	if ls.line == startLine {
		ls.hasContent = true
	}
}

func (lc *LayoutContext) placeInlineBlock(b *LayoutBox, ls *lineState) {
	avail := ls.right - ls.left
	resolveEdges(b, avail)
	edges := horizontalEdges(&b.Dimensions)
	width, ok := specifiedWidth(b, avail)
	if !ok {
		width = math.Min(lc.maxContentWidth(b), math.Max(0, avail-edges))
	}
	width = clampSize(b, width, "width", avail)

	gap := 0.0
	if ls.space && ls.hasContent {
		gap = TextWidth(" ", b.ComputedStyle.Px("font-size", 0))
	}
	if ls.hasContent && ls.x+gap+width+edges > ls.right {
		ls.newLine(0)
		gap = 0
	}
	cb := Rect{X: ls.left, Y: ls.y, Width: avail, Height: -1}
	lc.layoutBox(b, cb, ls.x+gap, ls.y, sizing{width: width, height: -1})
	mb := b.Dimensions.MarginBox()
	ls.place(mb)
	ls.x = mb.X + mb.Width
	ls.space = false
}
