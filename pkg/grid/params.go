package grid

import (
	"fmt"

	errs "github.com/matzehuels/spangrid/pkg/errors"
	"github.com/matzehuels/spangrid/pkg/lanes"
)

// DefaultSpan is the span of an item that does not request one.
const DefaultSpan = 1

// Default lane counts when a configuration leaves them unset.
const (
	DefaultColumns = 3
	DefaultRows    = 3
)

// SizeMode says how an item sizes itself on one axis.
type SizeMode int

const (
	// MatchParent fills the budget the grid offers for the item's spans.
	MatchParent SizeMode = iota
	// WrapContent sizes the item to its content. Grid items cannot use it.
	WrapContent
)

func (m SizeMode) String() string {
	if m == WrapContent {
		return "wrap_content"
	}
	return "match_parent"
}

// MarshalText implements encoding.TextMarshaler.
func (m SizeMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *SizeMode) UnmarshalText(b []byte) error {
	switch string(b) {
	case "", "match_parent":
		*m = MatchParent
	case "wrap_content":
		*m = WrapContent
	default:
		return fmt.Errorf("invalid size mode: %q (must be one of: match_parent, wrap_content)", b)
	}
	return nil
}

// Params is the per-item layout configuration.
type Params struct {
	Width   SizeMode `json:"width" toml:"width"`
	Height  SizeMode `json:"height" toml:"height"`
	ColSpan int      `json:"col_span" toml:"col_span"`
	RowSpan int      `json:"row_span" toml:"row_span"`
}

// DefaultParams returns fill-parent params spanning a single cell.
func DefaultParams() Params {
	return Params{Width: MatchParent, Height: MatchParent, ColSpan: DefaultSpan, RowSpan: DefaultSpan}
}

// LaneSpan returns the span that runs across lanes: the column span when
// scrolling vertically, the row span when scrolling horizontally.
func LaneSpan(o lanes.Orientation, colSpan, rowSpan int) int {
	if o == lanes.Vertical {
		return colSpan
	}
	return rowSpan
}

// ResolveSpan returns the spans p occupies in a grid of laneCount lanes.
// The cross-axis span is clamped to [1, laneCount]; the main-axis span is
// only floored at 1.
func ResolveSpan(p Params, o lanes.Orientation, laneCount int) (colSpan, rowSpan int) {
	colSpan = max(DefaultSpan, p.ColSpan)
	rowSpan = max(DefaultSpan, p.RowSpan)
	if o == lanes.Vertical {
		colSpan = min(colSpan, max(laneCount, 1))
	} else {
		rowSpan = min(rowSpan, max(laneCount, 1))
	}
	return colSpan, rowSpan
}

// CheckParams reports whether p can be laid out as is. Items must fill their
// budget on both axes and request spans the grid can hold; anything else
// must be replaced with GenerateParams first.
func CheckParams(p Params, o lanes.Orientation, laneCount int) error {
	if p.Width != MatchParent || p.Height != MatchParent {
		return errs.New(errs.ErrCodeInvalidParams, "items must use match_parent on both axes (got %s x %s)", p.Width, p.Height)
	}
	if p.ColSpan < 1 || p.RowSpan < 1 {
		return errs.New(errs.ErrCodeInvalidParams, "spans must be at least 1 (got col_span=%d row_span=%d)", p.ColSpan, p.RowSpan)
	}
	if span := LaneSpan(o, p.ColSpan, p.RowSpan); span > laneCount {
		return errs.New(errs.ErrCodeInvalidParams, "span %d exceeds %d lanes", span, laneCount)
	}
	return nil
}

// GenerateParams converts p into params CheckParams accepts: both axes fill
// the parent and spans are resolved with ResolveSpan.
func GenerateParams(p Params, o lanes.Orientation, laneCount int) Params {
	col, row := ResolveSpan(p, o, laneCount)
	return Params{Width: MatchParent, Height: MatchParent, ColSpan: col, RowSpan: row}
}
