package dom

// DOMRect is a rectangle in viewport coordinates, as returned by
// GetBoundingClientRect. Width and Height may be negative, in which case
// X and Y name the right or bottom edge.
type DOMRect struct {
	X, Y          float64
	Width, Height float64
}

func (r DOMRect) Left() float64   { return min(r.X, r.X+r.Width) }
func (r DOMRect) Right() float64  { return max(r.X, r.X+r.Width) }
func (r DOMRect) Top() float64    { return min(r.Y, r.Y+r.Height) }
func (r DOMRect) Bottom() float64 { return max(r.Y, r.Y+r.Height) }

// ContainsPoint is half-open: the right and bottom edges are outside.
func (r DOMRect) ContainsPoint(x, y float64) bool {
	return x >= r.Left() && x < r.Right() && y >= r.Top() && y < r.Bottom()
}
