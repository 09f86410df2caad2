package grid

import (
	"math"

	"github.com/matzehuels/spangrid/pkg/lanes"
)

// FindLane finds the first lane of a span-lane block of width x height placed
// in direction dir, and the frame the block takes there.
//
// Each candidate starting lane l in [0, count-span] offers the edge at which
// the block could start in lanes [l, l+span): the furthest trailing edge of
// those lanes for End, the furthest leading edge for Start. Candidates are
// visited in ascending order; one whose edge is strictly further back than
// the best so far anchors a scan for the lowest lane where the block fits at
// that edge without intersecting placed content. The result is the furthest
// back anchor that admits the block, lowest lane first on ties.
//
// FindLane returns lanes.NoLane when no candidate fits. It reads l but never
// modifies it, so the same state always yields the same lane.
func FindLane(l *lanes.Lanes, width, height int, dir lanes.Direction, span int) (int, lanes.Rect) {
	if span < 1 || span > l.Count() {
		return lanes.NoLane, lanes.Rect{}
	}

	lane := lanes.NoLane
	var frame lanes.Rect

	target := math.MaxInt
	if dir == lanes.Start {
		target = math.MinInt
	}

	count := l.Count() - span + 1
	for c := 0; c < count; c++ {
		edge := blockStart(l, width, height, c, dir, span)
		if !furtherBack(edge, target, dir) {
			continue
		}
		if fit, f := laneThatFits(l, width, height, edge, dir, span); fit != lanes.NoLane {
			target, lane, frame = edge, fit, f
		}
	}
	return lane, frame
}

// blockStart returns the main-axis start of a block placed against lanes
// [lane, lane+span) in direction dir.
func blockStart(l *lanes.Lanes, width, height, lane int, dir lanes.Direction, span int) int {
	o := l.Orientation()
	start := o.MainStart(l.ChildFrame(width, height, lane, dir))
	for i := lane + 1; i < lane+span; i++ {
		s := o.MainStart(l.ChildFrame(width, height, i, dir))
		if dir == lanes.End {
			start = max(start, s)
		} else {
			start = min(start, s)
		}
	}
	return start
}

func laneThatFits(l *lanes.Lanes, width, height, anchor int, dir lanes.Direction, span int) (int, lanes.Rect) {
	vertical := l.Orientation() == lanes.Vertical
	count := l.Count() - span + 1
	for c := 0; c < count; c++ {
		f := l.ChildFrame(width, height, c, dir)
		if vertical {
			f = f.OffsetTo(f.Left, anchor)
		} else {
			f = f.OffsetTo(anchor, f.Top)
		}
		if !l.Intersects(c, span, f) {
			return c, f
		}
	}
	return lanes.NoLane, lanes.Rect{}
}

func furtherBack(edge, target int, dir lanes.Direction) bool {
	if dir == lanes.End {
		return edge < target
	}
	return edge > target
}

// BlockFrame returns the frame a block of span lanes starting at lane takes
// when placed in direction dir: the lane's child frame moved to the block's
// start across all lanes it covers. For span 1 it equals the lane's child
// frame.
func BlockFrame(l *lanes.Lanes, width, height, lane int, dir lanes.Direction, span int) lanes.Rect {
	f := l.ChildFrame(width, height, lane, dir)
	if span <= 1 {
		return f
	}
	start := blockStart(l, width, height, lane, dir, span)
	if l.Orientation() == lanes.Vertical {
		return f.OffsetTo(f.Left, start)
	}
	return f.OffsetTo(start, f.Top)
}
