package lanes

import "fmt"

// Rect is an axis-aligned rectangle in container coordinates.
// Right and Bottom are exclusive.
type Rect struct {
	Left   int `json:"left"`
	Top    int `json:"top"`
	Right  int `json:"right"`
	Bottom int `json:"bottom"`
}

// Width returns the horizontal extent of the rectangle.
func (r Rect) Width() int { return r.Right - r.Left }

// Height returns the vertical extent of the rectangle.
func (r Rect) Height() int { return r.Bottom - r.Top }

// Empty reports whether the rectangle covers no area.
func (r Rect) Empty() bool { return r.Left >= r.Right || r.Top >= r.Bottom }

// Intersects reports whether r and o overlap. Rectangles that only share an
// edge do not intersect. A rectangle collapsed along one axis still
// intersects a rectangle that strictly straddles it, so a collapsed lane
// blocks frames crossing its edge.
func (r Rect) Intersects(o Rect) bool {
	return r.Left < o.Right && o.Left < r.Right && r.Top < o.Bottom && o.Top < r.Bottom
}

// Offset returns r translated by (dx, dy).
func (r Rect) Offset(dx, dy int) Rect {
	return Rect{Left: r.Left + dx, Top: r.Top + dy, Right: r.Right + dx, Bottom: r.Bottom + dy}
}

// OffsetTo returns r moved so its top-left corner is at (x, y).
func (r Rect) OffsetTo(x, y int) Rect {
	return r.Offset(x-r.Left, y-r.Top)
}

func (r Rect) String() string {
	return fmt.Sprintf("[%d,%d %d,%d]", r.Left, r.Top, r.Right, r.Bottom)
}
