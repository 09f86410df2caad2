package grid

import "github.com/matzehuels/spangrid/pkg/lanes"

// SyncOp selects which half of a cross-lane sync runs.
type SyncOp int

const (
	// SyncAttach extends the cross lanes after the primary push.
	SyncAttach SyncOp = iota
	// SyncDetach retracts them after the primary pop.
	SyncDetach
)

// Strategy supplies the placement decisions the Engine does not make itself.
type Strategy interface {
	// ResolveSpan returns the spans an item with params p occupies.
	ResolveSpan(p Params, o lanes.Orientation, laneCount int) (colSpan, rowSpan int)

	// FindLane picks the lane and frame for an item that has no entry yet.
	FindLane(l *lanes.Lanes, width, height int, dir lanes.Direction, span int) (int, lanes.Rect)

	// CacheEntry stores e for position and returns the stored entry.
	CacheEntry(c *EntryCache, position int, e Entry) Entry

	// SyncFrame propagates a primary-lane push or pop to the other lanes the
	// item spans.
	SyncFrame(l *lanes.Lanes, op SyncOp, lane, span int, dir lanes.Direction, frame lanes.Rect)
}

// SpanStrategy places items across as many lanes as their params request.
type SpanStrategy struct{}

// ResolveSpan clamps the spans in p to the lane count.
func (SpanStrategy) ResolveSpan(p Params, o lanes.Orientation, laneCount int) (int, int) {
	return ResolveSpan(p, o, laneCount)
}

// FindLane scans for the furthest-back block of span lanes that fits.
func (SpanStrategy) FindLane(l *lanes.Lanes, width, height int, dir lanes.Direction, span int) (int, lanes.Rect) {
	return FindLane(l, width, height, dir, span)
}

// CacheEntry keeps the first entry stored for position.
func (SpanStrategy) CacheEntry(c *EntryCache, position int, e Entry) Entry {
	return c.Put(position, e)
}

// SyncFrame pushes or pops frame on the lanes after the primary one.
func (SpanStrategy) SyncFrame(l *lanes.Lanes, op SyncOp, lane, span int, dir lanes.Direction, frame lanes.Rect) {
	if op == SyncAttach {
		AttachSpan(l, lane, span, dir, frame)
	} else {
		DetachSpan(l, lane, span, dir, frame)
	}
}

// SingleLaneStrategy lays every item into one lane: the lane whose edge is
// furthest back in the fill direction. Spans are ignored.
type SingleLaneStrategy struct{}

// ResolveSpan always returns one lane by one.
func (SingleLaneStrategy) ResolveSpan(Params, lanes.Orientation, int) (int, int) {
	return DefaultSpan, DefaultSpan
}

// FindLane returns the lane whose dir edge is furthest back.
func (SingleLaneStrategy) FindLane(l *lanes.Lanes, width, height int, dir lanes.Direction, _ int) (int, lanes.Rect) {
	lane := l.ExtremeLane(dir)
	return lane, l.ChildFrame(width, height, lane, dir)
}

// CacheEntry keeps the first entry stored for position.
func (SingleLaneStrategy) CacheEntry(c *EntryCache, position int, e Entry) Entry {
	return c.Put(position, e)
}

// SyncFrame does nothing; single-lane items have no cross lanes.
func (SingleLaneStrategy) SyncFrame(*lanes.Lanes, SyncOp, int, int, lanes.Direction, lanes.Rect) {}

var (
	_ Strategy = SpanStrategy{}
	_ Strategy = SingleLaneStrategy{}
)
