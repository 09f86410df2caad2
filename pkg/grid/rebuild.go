package grid

import (
	"context"
	"errors"
	"time"

	errs "github.com/matzehuels/spangrid/pkg/errors"
	"github.com/matzehuels/spangrid/pkg/lanes"
	"github.com/matzehuels/spangrid/pkg/observability"
)

// MoveToPosition rebuilds lane occupancy from empty up to target and shifts
// the lanes so the target's block starts at offset along the scroll axis.
// It is used for direct jumps, such as restoring a saved scroll position,
// instead of scrolling incrementally from the first item.
//
// Positions before target are replayed from their cached entries where one
// exists and materialized through provider otherwise. They only advance the
// lanes and are not attached afterwards; every item attached before the call
// is dropped. The host attaches target next, against the End edge.
//
// A provider failure aborts the rebuild with a MATERIALIZE_FAILED error. The
// lanes are then in an unspecified state, which the next call resets.
func (e *Engine) MoveToPosition(ctx context.Context, target, offset int, provider ItemProvider) (err error) {
	if target < 0 {
		return errs.New(errs.ErrCodeInvalidInput, "target position must be non-negative, got %d", target)
	}

	started := time.Now()
	replayed := 0
	observability.Layout().OnRebuildStart(ctx, target)
	defer func() {
		observability.Layout().OnRebuildComplete(ctx, target, replayed, time.Since(started), err)
	}()

	clear(e.attached)
	e.lanes.Reset(0)

	targetLane, targetSpan := lanes.NoLane, 0
	for i := 0; i <= target; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		entry, cached := e.entries.Get(i)
		var frame lanes.Rect
		if cached {
			replayed++
			span := entry.Span(e.cfg.Orientation)
			frame = BlockFrame(e.lanes, e.childWidth(entry.ColSpan), e.childHeight(entry.RowSpan), entry.Lane, lanes.End, span)
		} else {
			var perr error
			entry, frame, perr = e.place(ctx, i, provider)
			switch {
			case errors.Is(perr, ErrUnplaceable) && i != target:
				e.logger.Debug("skipping unplaceable item during rebuild", "position", i)
				continue
			case errors.Is(perr, ErrUnplaceable):
				return errs.Wrap(errs.ErrCodeInvalidState, perr, "target position %d", target)
			case perr != nil:
				return perr
			}
		}

		span := entry.Span(e.cfg.Orientation)
		if i == target {
			targetLane, targetSpan = entry.Lane, span
			break
		}
		e.lanes.Push(entry.Lane, entry.Lane+span, lanes.End, frame)
	}

	// The target attaches at its block start, which may lie past its own
	// lane's edge when a later lane of the block reaches further.
	edge := blockStart(e.lanes, e.lanes.LaneSize(), e.lanes.LaneSize(), targetLane, lanes.End, targetSpan)
	e.lanes.ResetTo(lanes.End)
	e.lanes.Offset(offset - edge)

	e.logger.Info("moved to position", "target", target, "lane", targetLane, "offset", offset, "replayed", replayed, "elapsed", time.Since(started))
	return nil
}

// place materializes the item at position, finds its lane against the End
// edge and caches the result. It does not touch the lanes.
func (e *Engine) place(ctx context.Context, position int, provider ItemProvider) (Entry, lanes.Rect, error) {
	item, err := provider.ItemForPosition(ctx, position)
	if err != nil {
		return Entry{}, lanes.Rect{}, errs.Wrap(errs.ErrCodeMaterialize, err, "materialize position %d", position)
	}
	if item == nil {
		return Entry{}, lanes.Rect{}, errs.New(errs.ErrCodeMaterialize, "provider returned no item for position %d", position)
	}

	o, count := e.cfg.Orientation, e.lanes.Count()
	col, row := e.strategy.ResolveSpan(item.Params, o, count)
	span := LaneSpan(o, col, row)
	width, height := e.measure(item, col, row)

	lane, frame := e.strategy.FindLane(e.lanes, width, height, lanes.End, span)
	if lane == lanes.NoLane {
		observability.Layout().OnUnplaceable(position, span)
		return Entry{}, lanes.Rect{}, ErrUnplaceable
	}
	entry := e.strategy.CacheEntry(e.entries, position, Entry{Lane: lane, ColSpan: col, RowSpan: row})
	return entry, frame, nil
}
