package dom

import (
	"testing"
)

func TestDOMRect_Edges(t *testing.T) {
	rect := DOMRect{X: 10, Y: 20, Width: 100, Height: 50}
	if rect.Top() != 20 {
		t.Errorf("Expected Top=20, got %v", rect.Top())
	}
	if rect.Left() != 10 {
		t.Errorf("Expected Left=10, got %v", rect.Left())
	}
	if rect.Right() != 110 {
		t.Errorf("Expected Right=110, got %v", rect.Right())
	}
	if rect.Bottom() != 70 {
		t.Errorf("Expected Bottom=70, got %v", rect.Bottom())
	}
}

func TestDOMRect_NegativeSize(t *testing.T) {
	rect := DOMRect{X: 100, Y: 100, Width: -50, Height: -30}
	if rect.Left() != 50 || rect.Right() != 100 {
		t.Errorf("Expected horizontal edges 50..100, got %v..%v", rect.Left(), rect.Right())
	}
	if rect.Top() != 70 || rect.Bottom() != 100 {
		t.Errorf("Expected vertical edges 70..100, got %v..%v", rect.Top(), rect.Bottom())
	}
}

func TestDOMRect_ContainsPoint(t *testing.T) {
	rect := DOMRect{X: 0, Y: 0, Width: 10, Height: 10}
	if !rect.ContainsPoint(0, 0) || !rect.ContainsPoint(9.5, 9.5) {
		t.Error("Expected interior points to be contained")
	}
	if rect.ContainsPoint(10, 5) {
		t.Error("Expected right edge to be exclusive")
	}
}

func TestElement_Geometry(t *testing.T) {
	doc := NewDocument()
	el := doc.CreateElement("div")

	if el.Geometry() != nil {
		t.Error("Expected nil geometry before layout")
	}
	if rect := el.GetBoundingClientRect(); rect != (DOMRect{}) {
		t.Errorf("Expected zero rect before layout, got %+v", rect)
	}

	el.SetGeometry(&ElementGeometry{X: 40, Y: 100, Width: 200, Height: 50})
	doc.SetScroll(0, 30)

	rect := el.GetBoundingClientRect()
	if rect.X != 40 || rect.Y != 70 {
		t.Errorf("Expected viewport position (40, 70), got (%v, %v)", rect.X, rect.Y)
	}
	if rect.Width != 200 || rect.Height != 50 {
		t.Errorf("Expected size 200x50, got %vx%v", rect.Width, rect.Height)
	}
}

func TestElement_FixedGeometryIgnoresScroll(t *testing.T) {
	doc := NewDocument()
	el := doc.CreateElement("div")
	el.SetGeometry(&ElementGeometry{X: 10, Y: 20, Width: 5, Height: 5, Fixed: true})
	doc.SetScroll(100, 200)

	rect := el.GetBoundingClientRect()
	if rect.X != 10 || rect.Y != 20 {
		t.Errorf("Expected fixed element at (10, 20), got (%v, %v)", rect.X, rect.Y)
	}
}

func TestDocument_View(t *testing.T) {
	doc := NewDocument()
	if doc.View() != DefaultView {
		t.Errorf("Expected default view, got %+v", doc.View())
	}
	doc.SetViewportSize(800, 600)
	doc.SetScroll(5, 6)
	want := View{Width: 800, Height: 600, ScrollX: 5, ScrollY: 6}
	if doc.View() != want {
		t.Errorf("Expected %+v, got %+v", want, doc.View())
	}
}
