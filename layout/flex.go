package layout

import (
	"math"
	"strings"
)

// Flex layout covers a single line of items: no wrapping, no shrinking,
// flex-grow distribution, justify-content along the main axis and
// align-items across it.

func isColumn(b *LayoutBox) bool {
	return b.ComputedStyle != nil && strings.HasPrefix(b.ComputedStyle.Keyword("flex-direction"), "column")
}

func (lc *LayoutContext) flexItems(b *LayoutBox) []*LayoutBox {
	content := b.Dimensions.Content
	var items []*LayoutBox
	for _, c := range b.Children {
		if c.OutOfFlow() {
			lc.deferPositioned(c, b, content.X, content.Y)
			continue
		}
		items = append(items, c)
	}
	return items
}

func (lc *LayoutContext) layoutFlex(b *LayoutBox, definiteHeight float64) float64 {
	items := lc.flexItems(b)
	if len(items) == 0 {
		return 0
	}
	if isColumn(b) {
		return lc.layoutFlexColumn(b, items, definiteHeight)
	}
	return lc.layoutFlexRow(b, items, definiteHeight)
}

func flexGrow(b *LayoutBox) float64 {
	if b.Element == nil {
		return 0
	}
	return math.Max(0, b.ComputedStyle.Number("flex-grow"))
}

// justify returns the leading offset and the gap between items for the
// given free space.
func justify(mode string, free float64, n int) (float64, float64) {
	switch mode {
	case "flex-end", "end", "right":
		return free, 0
	case "center":
		return free / 2, 0
	}
	if free <= 0 {
		return 0, 0
	}
	switch mode {
	case "space-between":
		if n > 1 {
			return 0, free / float64(n-1)
		}
	case "space-around":
		return free / float64(n) / 2, free / float64(n)
	case "space-evenly":
		return free / float64(n+1), free / float64(n+1)
	}
	return 0, 0
}

func (lc *LayoutContext) layoutFlexRow(b *LayoutBox, items []*LayoutBox, definiteHeight float64) float64 {
	cs := b.ComputedStyle
	content := b.Dimensions.Content
	cb := Rect{X: content.X, Y: content.Y, Width: content.Width, Height: definiteHeight}

	widths := make([]float64, len(items))
	var used, grow float64
	for i, item := range items {
		resolveEdges(item, content.Width)
		edges := horizontalEdges(&item.Dimensions)
		w, ok := specifiedWidth(item, content.Width)
		if !ok {
			w = lc.maxContentWidth(item)
		}
		widths[i] = clampSize(item, w, "width", content.Width)
		used += widths[i] + edges
		grow += flexGrow(item)
	}

	free := content.Width - used
	if free > 0 && grow > 0 {
		for i, item := range items {
			widths[i] += free * flexGrow(item) / grow
		}
		free = 0
	}
	offset, gap := justify(cs.Keyword("justify-content"), free, len(items))

	x := content.X + offset
	var lineHeight float64
	for i, item := range items {
		lc.layoutBox(item, cb, x, content.Y, sizing{width: widths[i], height: -1})
		mb := item.Dimensions.MarginBox()
		x = mb.X + mb.Width + gap
		lineHeight = math.Max(lineHeight, mb.Height)
	}

	cross := lineHeight
	if definiteHeight >= 0 {
		cross = definiteHeight
	}
	align := cs.Keyword("align-items")
	for _, item := range items {
		mb := item.Dimensions.MarginBox()
		switch align {
		case "center":
			shift(item, 0, (cross-mb.Height)/2)
		case "flex-end", "end":
			shift(item, 0, cross-mb.Height)
		case "stretch", "normal":
			if _, ok := specifiedHeight(item, definiteHeight); !ok {
				item.Dimensions.Content.Height += cross - mb.Height
			}
		}
	}
	return lineHeight
}

func (lc *LayoutContext) layoutFlexColumn(b *LayoutBox, items []*LayoutBox, definiteHeight float64) float64 {
	cs := b.ComputedStyle
	content := b.Dimensions.Content
	cb := Rect{X: content.X, Y: content.Y, Width: content.Width, Height: definiteHeight}
	align := cs.Keyword("align-items")
	stretch := align == "stretch" || align == "normal"

	y := content.Y
	var grow float64
	for _, item := range items {
		lc.layoutBox(item, cb, content.X, y, sizing{shrink: !stretch, width: -1, height: -1})
		mb := item.Dimensions.MarginBox()
		y = mb.Y + mb.Height
		grow += flexGrow(item)
	}
	used := y - content.Y

	if !stretch {
		for _, item := range items {
			mb := item.Dimensions.MarginBox()
			switch align {
			case "center":
				shift(item, (content.Width-mb.Width)/2, 0)
			case "flex-end", "end":
				shift(item, content.Width-mb.Width, 0)
			}
		}
	}

	if definiteHeight < 0 {
		return used
	}
	free := definiteHeight - used
	if free > 0 && grow > 0 {
		var moved float64
		for _, item := range items {
			shift(item, 0, moved)
			extra := free * flexGrow(item) / grow
			item.Dimensions.Content.Height += extra
			moved += extra
		}
		return definiteHeight
	}
	offset, gap := justify(cs.Keyword("justify-content"), free, len(items))
	for i, item := range items {
		shift(item, 0, offset+gap*float64(i))
	}
	return used
}
