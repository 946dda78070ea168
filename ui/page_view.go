package ui

import (
	"image"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
)

// PageView shows the painted viewport and reports pointer input in page
// coordinates.
type PageView struct {
	widget.BaseWidget

	image *canvas.Image
	size  fyne.Size

	OnPointerMove func(x, y float64)
	OnTap         func(x, y float64)
	OnScroll      func(dx, dy float64)
	OnResize      func(width, height float64)
}

var (
	_ desktop.Hoverable = (*PageView)(nil)
	_ fyne.Tappable     = (*PageView)(nil)
	_ fyne.Scrollable   = (*PageView)(nil)
)

// NewPageView creates a view whose minimum size is the page viewport.
func NewPageView(width, height float32) *PageView {
	img := canvas.NewImageFromImage(image.NewRGBA(image.Rect(0, 0, int(width), int(height))))
	img.FillMode = canvas.ImageFillOriginal
	img.ScaleMode = canvas.ImageScalePixels
	v := &PageView{image: img, size: fyne.NewSize(width, height)}
	v.ExtendBaseWidget(v)
	return v
}

// SetImage replaces the painted page. Call it on the fyne goroutine.
func (v *PageView) SetImage(img image.Image) {
	v.image.Image = img
	v.image.Refresh()
}

// Image returns the last painted page.
func (v *PageView) Image() image.Image {
	return v.image.Image
}

// CreateRenderer implements fyne.Widget.
func (v *PageView) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(v.image)
}

// MinSize is the viewport the page was opened with.
func (v *PageView) MinSize() fyne.Size {
	return v.size
}

// Resize reports the new viewport when the window changes size.
func (v *PageView) Resize(size fyne.Size) {
	old := v.Size()
	v.BaseWidget.Resize(size)
	if size.Width < 1 || size.Height < 1 || size == old {
		return
	}
	if v.OnResize != nil {
		v.OnResize(float64(size.Width), float64(size.Height))
	}
}

// MouseIn implements desktop.Hoverable.
func (v *PageView) MouseIn(ev *desktop.MouseEvent) {
	v.MouseMoved(ev)
}

// MouseMoved implements desktop.Hoverable.
func (v *PageView) MouseMoved(ev *desktop.MouseEvent) {
	if v.OnPointerMove != nil {
		v.OnPointerMove(float64(ev.Position.X), float64(ev.Position.Y))
	}
}

// MouseOut implements desktop.Hoverable. The last hover box stays where
// it was.
func (v *PageView) MouseOut() {}

// Tapped implements fyne.Tappable.
func (v *PageView) Tapped(ev *fyne.PointEvent) {
	if v.OnTap != nil {
		v.OnTap(float64(ev.Position.X), float64(ev.Position.Y))
	}
}

// Scrolled implements fyne.Scrollable. Wheel deltas point the way the
// content moves, so they are negated into a page scroll.
func (v *PageView) Scrolled(ev *fyne.ScrollEvent) {
	if v.OnScroll != nil {
		v.OnScroll(-float64(ev.Scrolled.DX), -float64(ev.Scrolled.DY))
	}
}
