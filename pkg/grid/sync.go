package grid

import "github.com/matzehuels/spangrid/pkg/lanes"

// AttachSpan extends the lanes after the primary one, [lane+1, lane+span), to
// frame. The primary lane is pushed by the caller. It does nothing for
// single-lane items.
func AttachSpan(l *lanes.Lanes, lane, span int, dir lanes.Direction, frame lanes.Rect) {
	if span <= 1 {
		return
	}
	l.Push(lane+1, lane+span, dir, frame)
}

// DetachSpan retracts exactly the lanes AttachSpan extended for the same
// lane, span and frame.
func DetachSpan(l *lanes.Lanes, lane, span int, dir lanes.Direction, frame lanes.Rect) {
	if span <= 1 {
		return
	}
	l.Pop(lane+1, lane+span, dir, frame)
}
