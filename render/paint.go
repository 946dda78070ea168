package render

import (
	"image/color"
	"math"
	"strconv"

	"github.com/chrisuehlinger/domdebug/css"
	"github.com/chrisuehlinger/domdebug/layout"
)

// DisplayCommand represents a single painting operation.
type DisplayCommand interface {
	Execute(c *Canvas)
}

// SolidColorCommand paints a solid color rectangle.
type SolidColorCommand struct {
	Color color.NRGBA
	Rect  layout.Rect
}

// Execute paints the solid color rectangle.
func (cmd *SolidColorCommand) Execute(c *Canvas) {
	x, y, w, h := pixelRect(cmd.Rect)
	c.FillRect(x, y, w, h, cmd.Color)
}

// BorderCommand paints the four border edges of a border box.
type BorderCommand struct {
	Rect   layout.Rect
	Widths layout.EdgeSizes
	// Colors and Styles are ordered top, right, bottom, left.
	Colors [4]color.NRGBA
	Styles [4]string
}

// Execute paints the borders.
func (cmd *BorderCommand) Execute(c *Canvas) {
	x, y, w, h := pixelRect(cmd.Rect)
	top := int(math.Round(cmd.Widths.Top))
	right := int(math.Round(cmd.Widths.Right))
	bottom := int(math.Round(cmd.Widths.Bottom))
	left := int(math.Round(cmd.Widths.Left))

	if top > 0 {
		c.drawBorderEdge(x, y, w, top, cmd.Colors[0], cmd.Styles[0], true)
	}
	if right > 0 {
		c.drawBorderEdge(x+w-right, y, right, h, cmd.Colors[1], cmd.Styles[1], false)
	}
	if bottom > 0 {
		c.drawBorderEdge(x, y+h-bottom, w, bottom, cmd.Colors[2], cmd.Styles[2], true)
	}
	if left > 0 {
		c.drawBorderEdge(x, y, left, h, cmd.Colors[3], cmd.Styles[3], false)
	}
}

func (c *Canvas) drawBorderEdge(x, y, width, height int, col color.NRGBA, style string, horizontal bool) {
	switch style {
	case "dashed":
		c.drawSegments(x, y, width, height, col, 6, 3, horizontal)
	case "dotted":
		c.drawSegments(x, y, width, height, col, 2, 2, horizontal)
	case "double":
		if horizontal {
			line := max(height/3, 1)
			c.FillRect(x, y, width, line, col)
			c.FillRect(x, y+height-line, width, line, col)
		} else {
			line := max(width/3, 1)
			c.FillRect(x, y, line, height, col)
			c.FillRect(x+width-line, y, line, height, col)
		}
	default:
		c.FillRect(x, y, width, height, col)
	}
}

// drawSegments draws a dashed or dotted edge as runs of on and off pixels.
func (c *Canvas) drawSegments(x, y, width, height int, col color.NRGBA, on, off int, horizontal bool) {
	if horizontal {
		for px := x; px < x+width; px += on + off {
			c.FillRect(px, y, min(on, x+width-px), height, col)
		}
		return
	}
	for py := y; py < y+height; py += on + off {
		c.FillRect(x, py, width, min(on, y+height-py), col)
	}
}

// TextCommand paints one line of text.
type TextCommand struct {
	Text       string
	X, Y       float64
	LineHeight float64
	FontSize   float64
	Bold       bool
	Color      color.NRGBA
}

// Execute paints the text.
func (cmd *TextCommand) Execute(c *Canvas) {
	c.DrawText(cmd.Text, cmd.X, cmd.Y, cmd.LineHeight, cmd.FontSize, cmd.Bold, cmd.Color)
}

// Paint renders the part of the layout tree visible in the viewport. The
// canvas is the viewport; boxes that scroll with the document are offset
// by the scroll position.
func (c *Canvas) Paint(tree *layout.Tree, scrollX, scrollY float64) {
	if tree == nil || tree.Root == nil {
		return
	}
	for _, cmd := range BuildDisplayList(tree, scrollX, scrollY) {
		cmd.Execute(c)
	}
}

// BuildDisplayList turns the tree's paint order into drawing commands in
// viewport coordinates.
func BuildDisplayList(tree *layout.Tree, scrollX, scrollY float64) []DisplayCommand {
	var list []DisplayCommand
	for _, box := range tree.PaintOrder() {
		if box.BoxType == layout.AnonymousBox || box.ComputedStyle == nil {
			continue
		}
		cs := box.ComputedStyle
		if cs.Keyword("visibility") == "hidden" {
			continue
		}
		dx, dy := -scrollX, -scrollY
		if box.Fixed {
			dx, dy = 0, 0
		}
		alpha := opacity(box)
		if alpha == 0 {
			continue
		}

		if box.BoxType == layout.TextBox {
			fontSize := cs.Px("font-size", 0)
			for i, f := range box.Fragments {
				list = append(list, &TextCommand{
					Text:       box.FragmentText[i],
					X:          f.X + dx,
					Y:          f.Y + dy,
					LineHeight: f.Height,
					FontSize:   fontSize,
					Bold:       isBold(cs),
					Color:      toNRGBA(cs.Color("color"), alpha),
				})
			}
			continue
		}

		bg := toNRGBA(cs.Color("background-color"), alpha)
		for _, r := range box.Rects() {
			r = r.Translate(dx, dy)
			if bg.A > 0 {
				list = append(list, &SolidColorCommand{Color: bg, Rect: r})
			}
			if cmd := borderCommand(box, r, alpha); cmd != nil {
				list = append(list, cmd)
			}
		}
	}
	return list
}

func borderCommand(box *layout.LayoutBox, r layout.Rect, alpha float64) *BorderCommand {
	w := box.Dimensions.Border
	if w.Top == 0 && w.Right == 0 && w.Bottom == 0 && w.Left == 0 {
		return nil
	}
	cmd := &BorderCommand{Rect: r, Widths: w}
	for i, side := range [4]string{"top", "right", "bottom", "left"} {
		cmd.Colors[i] = toNRGBA(box.ComputedStyle.Color("border-"+side+"-color"), alpha)
		cmd.Styles[i] = box.ComputedStyle.Keyword("border-" + side + "-style")
	}
	return cmd
}

// opacity multiplies the opacity of the box and its ancestors.
func opacity(box *layout.LayoutBox) float64 {
	alpha := 1.0
	for b := box; b != nil; b = b.Parent {
		if b.Element != nil && b.ComputedStyle != nil {
			alpha *= b.ComputedStyle.Number("opacity")
		}
	}
	return alpha
}

func isBold(cs *css.ComputedStyle) bool {
	switch w := cs.Keyword("font-weight"); w {
	case "bold", "bolder":
		return true
	default:
		n, err := strconv.Atoi(w)
		return err == nil && n >= 600
	}
}

func toNRGBA(c css.Color, alpha float64) color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: uint8(math.Round(float64(c.A) * alpha))}
}

func pixelRect(r layout.Rect) (int, int, int, int) {
	x := int(math.Round(r.X))
	y := int(math.Round(r.Y))
	return x, y, int(math.Round(r.X+r.Width)) - x, int(math.Round(r.Y+r.Height)) - y
}
