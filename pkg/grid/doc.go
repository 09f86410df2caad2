// Package grid places items that span several lanes into a virtualized,
// lane-based grid and keeps each placement stable across layout passes.
//
// # Overview
//
// The [Engine] is driven by a host that scrolls a window over an ordered item
// sequence. Each time an item enters the window the host calls
// [Engine.Attach]; when it leaves, [Engine.Detach]. For an item seen for the
// first time the engine:
//
//  1. resolves its spans from its [Params] ([ResolveSpan])
//  2. measures it against the lane-derived budget with scrolling suspended
//     ([ScrollGate])
//  3. finds the lane whose edge lets the spanned block start earliest
//     without overlapping placed content ([FindLane])
//  4. records the result in the [EntryCache]
//  5. pushes the frame into the primary lane and, through [AttachSpan], into
//     every other lane the item covers
//
// An item seen before skips steps 1 and 3: its cached [Entry] pins it to the
// same lane no matter which direction the host is scrolling.
//
// # Jumping
//
// [Engine.MoveToPosition] rebuilds lane occupancy from scratch up to a target
// position, replaying cached entries and materializing only unseen items, and
// then shifts all lanes so the target starts at a requested offset. It is
// used to restore a scroll position without scrolling there item by item.
//
// # Strategies
//
// The engine delegates span resolution, lane search, entry caching and
// cross-lane sync to a [Strategy]. [SpanStrategy] is the spanning grid;
// [SingleLaneStrategy] ignores spans and is the baseline every span-1 layout
// must reproduce.
//
// # Concurrency
//
// An Engine is single-threaded: every call runs to completion inside one
// layout or scroll callback and no locking is done. Use one engine per
// goroutine.
package grid
