package lanes

import "fmt"

// NoLane is returned when no lane can take an item.
const NoLane = -1

// Direction selects the edge new content is placed against.
type Direction int

const (
	// Start is the leading edge (top or left); used when scrolling backward.
	Start Direction = iota
	// End is the trailing edge (bottom or right); used when scrolling forward.
	End
)

func (d Direction) String() string {
	switch d {
	case Start:
		return "start"
	case End:
		return "end"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// Orientation is the scroll axis of the container.
type Orientation int

const (
	// Vertical scrolls along y; lanes are columns.
	Vertical Orientation = iota
	// Horizontal scrolls along x; lanes are rows.
	Horizontal
)

// Orientation names accepted by ParseOrientation.
const (
	OrientationVertical   = "vertical"
	OrientationHorizontal = "horizontal"
)

func (o Orientation) String() string {
	if o == Horizontal {
		return OrientationHorizontal
	}
	return OrientationVertical
}

// MarshalText encodes the orientation by name.
func (o Orientation) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText decodes an orientation name.
func (o *Orientation) UnmarshalText(b []byte) error {
	v, err := ParseOrientation(string(b))
	if err != nil {
		return err
	}
	*o = v
	return nil
}

// ParseOrientation converts "vertical" or "horizontal" to an Orientation.
// The empty string selects Vertical.
func ParseOrientation(s string) (Orientation, error) {
	switch s {
	case "", OrientationVertical:
		return Vertical, nil
	case OrientationHorizontal:
		return Horizontal, nil
	default:
		return Vertical, fmt.Errorf("invalid orientation: %q (must be one of: vertical, horizontal)", s)
	}
}

// MainStart returns the leading main-axis coordinate of r.
func (o Orientation) MainStart(r Rect) int {
	if o == Vertical {
		return r.Top
	}
	return r.Left
}

// MainEnd returns the trailing main-axis coordinate of r.
func (o Orientation) MainEnd(r Rect) int {
	if o == Vertical {
		return r.Bottom
	}
	return r.Right
}

// MainSize returns the extent of r along the scroll axis.
func (o Orientation) MainSize(r Rect) int {
	return o.MainEnd(r) - o.MainStart(r)
}

// Translate moves r by delta along the scroll axis.
func (o Orientation) Translate(r Rect, delta int) Rect {
	if o == Vertical {
		return r.Offset(0, delta)
	}
	return r.Offset(delta, 0)
}
