// Package lanes tracks the occupied extent of each lane in a lane-based grid.
//
// A lane is one of several parallel tracks (columns when scrolling
// vertically, rows when scrolling horizontally). Each lane records a single
// [Rect] whose main-axis edges are the leading and trailing extent reached by
// the content placed in it. Placement code never creates lanes; it only
// reads their edges and moves them through [Lanes.Push], [Lanes.Pop],
// [Lanes.Reset], [Lanes.ResetTo] and [Lanes.Offset].
//
// # Directions
//
// [End] is the trailing edge (bottom or right) that content is appended
// toward while scrolling forward. [Start] is the leading edge (top or left)
// that content is prepended toward while scrolling backward. Push and Pop
// take the edge they move: Push(..., End, f) extends the trailing edge to f,
// Pop(..., End, f) retracts it again.
//
// # Undo Log
//
// Every push remembers the edge it replaced. Popping the same frame from the
// same edge, with nothing pushed on top of it, restores that edge exactly.
// This keeps attach/detach of a multi-lane item a true round trip even for
// lanes whose edge sat short of the frame before the push.
package lanes
