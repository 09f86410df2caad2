package lanes

import "fmt"

// Lanes holds the occupancy of every lane in a grid.
//
// Lanes is not safe for concurrent use; a layout pass owns it exclusively.
type Lanes struct {
	orientation Orientation
	laneSize    int
	rects       []Rect
	undo        [][]undoEntry
}

// undoEntry remembers the edge a push replaced.
type undoEntry struct {
	edge  Direction
	frame Rect
	prev  int
}

// New creates count empty lanes of laneSize units each, laid out across the
// axis perpendicular to o. All lanes start collapsed at main-axis offset 0.
func New(o Orientation, count, laneSize int) (*Lanes, error) {
	if count < 1 {
		return nil, fmt.Errorf("lane count must be at least 1, got %d", count)
	}
	if laneSize < 1 {
		return nil, fmt.Errorf("lane size must be at least 1, got %d", laneSize)
	}
	l := &Lanes{
		orientation: o,
		laneSize:    laneSize,
		rects:       make([]Rect, count),
		undo:        make([][]undoEntry, count),
	}
	for i := range l.rects {
		lo, hi := i*laneSize, (i+1)*laneSize
		if o == Vertical {
			l.rects[i] = Rect{Left: lo, Right: hi}
		} else {
			l.rects[i] = Rect{Top: lo, Bottom: hi}
		}
	}
	return l, nil
}

// NewForSize creates count lanes that evenly divide crossSize. Any remainder
// is left unused at the far side of the container.
func NewForSize(o Orientation, count, crossSize int) (*Lanes, error) {
	if count < 1 {
		return nil, fmt.Errorf("lane count must be at least 1, got %d", count)
	}
	return New(o, count, crossSize/count)
}

// Orientation returns the scroll axis the lanes were built for.
func (l *Lanes) Orientation() Orientation { return l.orientation }

// Count returns the number of lanes.
func (l *Lanes) Count() int { return len(l.rects) }

// LaneSize returns the cross-axis size of one lane.
func (l *Lanes) LaneSize() int { return l.laneSize }

// Lane returns the current extent of lane i.
func (l *Lanes) Lane(i int) Rect { return l.rects[i] }

// Snapshot returns a copy of every lane's extent.
func (l *Lanes) Snapshot() []Rect {
	out := make([]Rect, len(l.rects))
	copy(out, l.rects)
	return out
}

// Edge returns lane i's main-axis edge on the given side.
func (l *Lanes) Edge(i int, dir Direction) int {
	if dir == End {
		return l.orientation.MainEnd(l.rects[i])
	}
	return l.orientation.MainStart(l.rects[i])
}

// EdgeRange returns the smallest and largest edge on the given side across
// all lanes.
func (l *Lanes) EdgeRange(dir Direction) (lo, hi int) {
	lo, hi = l.Edge(0, dir), l.Edge(0, dir)
	for i := 1; i < len(l.rects); i++ {
		e := l.Edge(i, dir)
		lo, hi = min(lo, e), max(hi, e)
	}
	return lo, hi
}

// ChildFrame returns the frame a width x height child would take when placed
// against lane's edge in direction dir. The frame's cross-axis origin is the
// lane's origin, so a child wider than one lane extends into the following
// lanes.
func (l *Lanes) ChildFrame(width, height, lane int, dir Direction) Rect {
	r := l.rects[lane]
	var left, top int
	if l.orientation == Vertical {
		left = r.Left
		if dir == End {
			top = r.Bottom
		} else {
			top = r.Top - height
		}
	} else {
		top = r.Top
		if dir == End {
			left = r.Right
		} else {
			left = r.Left - width
		}
	}
	return Rect{Left: left, Top: top, Right: left + width, Bottom: top + height}
}

// Intersects reports whether frame overlaps the occupied extent of any lane
// in [lane, lane+span). A range that falls outside the grid counts as
// occupied.
func (l *Lanes) Intersects(lane, span int, frame Rect) bool {
	if lane < 0 || span < 1 || lane+span > len(l.rects) {
		return true
	}
	for i := lane; i < lane+span; i++ {
		if l.rects[i].Intersects(frame) {
			return true
		}
	}
	return false
}

// ExtremeLane returns the lane whose edge in direction dir is furthest back:
// the smallest trailing edge for End, the largest leading edge for Start.
// Ties go to the lowest index.
func (l *Lanes) ExtremeLane(dir Direction) int {
	best := 0
	for i := 1; i < len(l.rects); i++ {
		e := l.Edge(i, dir)
		if (dir == End && e < l.Edge(best, dir)) || (dir == Start && e > l.Edge(best, dir)) {
			best = i
		}
	}
	return best
}

// Push extends the dir edge of every lane in [start, end) to frame's edge on
// the same side.
func (l *Lanes) Push(start, end int, dir Direction, frame Rect) {
	far := l.farEdge(frame, dir)
	for i := max(start, 0); i < min(end, len(l.rects)); i++ {
		l.undo[i] = append(l.undo[i], undoEntry{edge: dir, frame: frame, prev: l.Edge(i, dir)})
		l.setEdge(i, dir, far)
	}
}

// Pop retracts the dir edge of every lane in [start, end) past frame.
//
// When frame is the most recent push on that edge and the edge has not moved
// since, the edge returns to exactly where it was before the push. Otherwise
// it is moved to frame's opposite side. Any remembered pushes of frame are
// forgotten either way.
func (l *Lanes) Pop(start, end int, dir Direction, frame Rect) {
	for i := max(start, 0); i < min(end, len(l.rects)); i++ {
		if prev, ok := l.restorable(i, dir, frame); ok {
			l.setEdge(i, dir, prev)
		} else {
			l.setEdge(i, dir, l.farEdge(frame, opposite(dir)))
		}
		l.forget(i, frame)
		l.collapse(i, dir)
	}
}

// Reset collapses every lane to an empty extent at main-axis offset.
func (l *Lanes) Reset(offset int) {
	for i := range l.rects {
		l.setEdge(i, Start, offset)
		l.setEdge(i, End, offset)
		l.undo[i] = nil
	}
}

// ResetTo collapses every lane onto its dir edge, keeping that edge where it
// is. ResetTo(End) is used before filling forward from the current trailing
// edges.
func (l *Lanes) ResetTo(dir Direction) {
	for i := range l.rects {
		l.setEdge(i, opposite(dir), l.Edge(i, dir))
		l.undo[i] = nil
	}
}

// Offset moves every lane, and every remembered push, by delta along the
// scroll axis.
func (l *Lanes) Offset(delta int) {
	if delta == 0 {
		return
	}
	for i := range l.rects {
		l.rects[i] = l.orientation.Translate(l.rects[i], delta)
		for j := range l.undo[i] {
			u := &l.undo[i][j]
			u.frame = l.orientation.Translate(u.frame, delta)
			u.prev += delta
		}
	}
}

func (l *Lanes) restorable(i int, dir Direction, frame Rect) (int, bool) {
	entries := l.undo[i]
	for j := len(entries) - 1; j >= 0; j-- {
		if entries[j].edge != dir {
			continue
		}
		if entries[j].frame != frame || l.Edge(i, dir) != l.farEdge(frame, dir) {
			return 0, false
		}
		return entries[j].prev, true
	}
	return 0, false
}

func (l *Lanes) forget(i int, frame Rect) {
	kept := l.undo[i][:0]
	for _, u := range l.undo[i] {
		if u.frame != frame {
			kept = append(kept, u)
		}
	}
	l.undo[i] = kept
}

// collapse keeps a lane from inverting after its dir edge was retracted.
func (l *Lanes) collapse(i int, dir Direction) {
	if l.Edge(i, Start) <= l.Edge(i, End) {
		return
	}
	l.setEdge(i, opposite(dir), l.Edge(i, dir))
}

func (l *Lanes) farEdge(frame Rect, dir Direction) int {
	if dir == End {
		return l.orientation.MainEnd(frame)
	}
	return l.orientation.MainStart(frame)
}

func (l *Lanes) setEdge(i int, dir Direction, v int) {
	r := &l.rects[i]
	switch {
	case l.orientation == Vertical && dir == End:
		r.Bottom = v
	case l.orientation == Vertical:
		r.Top = v
	case dir == End:
		r.Right = v
	default:
		r.Left = v
	}
}

func opposite(dir Direction) Direction {
	if dir == End {
		return Start
	}
	return End
}
