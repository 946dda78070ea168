// Package render handles painting/rendering of the layout tree.
// Reference: https://www.w3.org/TR/CSS2/zindex.html for painting order
package render

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// Canvas represents the rendering surface.
type Canvas struct {
	img   *image.RGBA
	fonts *fontCache
}

// NewCanvas creates a new white canvas with the given dimensions.
func NewCanvas(width, height int) *Canvas {
	c := &Canvas{
		img:   image.NewRGBA(image.Rect(0, 0, max(width, 0), max(height, 0))),
		fonts: newFontCache(),
	}
	c.Clear(color.White)
	return c
}

// Width returns the canvas width in pixels.
func (c *Canvas) Width() int { return c.img.Bounds().Dx() }

// Height returns the canvas height in pixels.
func (c *Canvas) Height() int { return c.img.Bounds().Dy() }

// Image returns the canvas pixels.
func (c *Canvas) Image() *image.RGBA { return c.img }

// Clear fills the whole canvas with col, replacing what was there.
func (c *Canvas) Clear(col color.Color) {
	draw.Draw(c.img, c.img.Bounds(), image.NewUniform(col), image.Point{}, draw.Src)
}

// GetPixel returns the color at (x, y), or transparent outside the canvas.
func (c *Canvas) GetPixel(x, y int) color.RGBA {
	if !(image.Point{X: x, Y: y}).In(c.img.Bounds()) {
		return color.RGBA{}
	}
	return c.img.RGBAAt(x, y)
}

// FillRect composites col over the rectangle, clipped to the canvas.
func (c *Canvas) FillRect(x, y, width, height int, col color.Color) {
	r := image.Rect(x, y, x+width, y+height).Intersect(c.img.Bounds())
	if r.Empty() {
		return
	}
	draw.Draw(c.img, r, image.NewUniform(col), image.Point{}, draw.Over)
}

// Scaled returns a copy of the canvas resized to width x height.
func (c *Canvas) Scaled(width, height int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), c.img, c.img.Bounds(), draw.Src, nil)
	return dst
}
