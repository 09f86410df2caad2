package layout

import (
	"context"
	"errors"

	"github.com/charmbracelet/log"

	errs "github.com/matzehuels/spangrid/pkg/errors"
	"github.com/matzehuels/spangrid/pkg/grid"
	"github.com/matzehuels/spangrid/pkg/lanes"
)

// Viewport drives an engine the way a scrolling container does. It keeps a
// contiguous range of positions attached that covers [0, size) along the
// scroll axis, attaching at the edge content is revealed on and detaching
// items that scroll fully out of view.
type Viewport struct {
	engine   *grid.Engine
	provider grid.ItemProvider
	count    int
	size     int
	logger   *log.Logger

	// first and last bound the attached range; last < first when empty.
	first, last int
	unplaceable int
}

// NewViewport creates a viewport over count items served by provider.
// Items whose params the engine rejects are given generated params, as a
// container does when it adopts a child with foreign layout params.
func NewViewport(e *grid.Engine, provider grid.ItemProvider, count int, logger *log.Logger) *Viewport {
	if logger == nil {
		logger = log.Default()
	}
	return &Viewport{
		engine:   e,
		provider: &paramsFixer{inner: provider, engine: e, logger: logger},
		count:    count,
		size:     e.Config().MainSize(),
		logger:   logger,
		first:    0,
		last:     -1,
	}
}

// Engine returns the engine the viewport drives.
func (v *Viewport) Engine() *grid.Engine { return v.engine }

// Provider returns the provider items are bound through.
func (v *Viewport) Provider() grid.ItemProvider { return v.provider }

// Unplaceable returns how many positions were skipped because no lane fit.
func (v *Viewport) Unplaceable() int { return v.unplaceable }

// Range returns the attached positions, or ok false when none are.
func (v *Viewport) Range() (first, last int, ok bool) {
	return v.first, v.last, v.last >= v.first
}

// Fill attaches items at both edges until the viewport is covered or the
// items run out.
func (v *Viewport) Fill(ctx context.Context) error {
	if err := v.fillForward(ctx, v.size); err != nil {
		return err
	}
	return v.fillBackward(ctx, 0)
}

// FillAll attaches every remaining item at the trailing edge.
func (v *Viewport) FillAll(ctx context.Context) error {
	for v.last+1 < v.count {
		if err := v.attachNext(ctx); err != nil {
			return err
		}
	}
	return nil
}

// JumpTo rebuilds the lanes so target starts at offset, then fills the
// viewport around it.
func (v *Viewport) JumpTo(ctx context.Context, target, offset int) error {
	if err := errs.ValidatePosition(target, v.count); err != nil {
		return err
	}
	if err := v.engine.MoveToPosition(ctx, target, offset, v.provider); err != nil {
		return err
	}
	v.first, v.last = target, target-1
	return v.Fill(ctx)
}

// Scroll moves the content by delta along the scroll axis; positive delta
// reveals later items. Scrolling stops at the first and last item. Scroll
// returns the distance actually scrolled.
func (v *Viewport) Scroll(ctx context.Context, delta int) (int, error) {
	switch {
	case delta > 0:
		if err := v.fillForward(ctx, v.size+delta); err != nil {
			return 0, err
		}
		if v.last == v.count-1 {
			_, bottom := v.extent()
			delta = min(delta, max(bottom-v.size, 0))
		}
	case delta < 0:
		if err := v.fillBackward(ctx, delta); err != nil {
			return 0, err
		}
		if v.first == 0 {
			top, _ := v.extent()
			delta = max(delta, min(top, 0))
		}
	}
	if delta == 0 {
		return 0, nil
	}

	v.engine.ScrollBy(-delta)
	if err := v.recycle(); err != nil {
		return delta, err
	}
	return delta, v.Fill(ctx)
}

func (v *Viewport) fillForward(ctx context.Context, limit int) error {
	for v.last+1 < v.count {
		if lo, _ := v.engine.Lanes().EdgeRange(lanes.End); lo >= limit {
			return nil
		}
		if err := v.attachNext(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (v *Viewport) fillBackward(ctx context.Context, limit int) error {
	for v.first > 0 {
		if _, hi := v.engine.Lanes().EdgeRange(lanes.Start); hi <= limit {
			return nil
		}
		if err := v.attachPrev(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (v *Viewport) attachNext(ctx context.Context) error {
	v.last++
	return v.attach(ctx, v.last, lanes.End)
}

func (v *Viewport) attachPrev(ctx context.Context) error {
	v.first--
	return v.attach(ctx, v.first, lanes.Start)
}

// attach binds and attaches position. A position no lane fits is skipped.
func (v *Viewport) attach(ctx context.Context, position int, dir lanes.Direction) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	item, err := v.provider.ItemForPosition(ctx, position)
	if err != nil {
		return errs.Wrap(errs.ErrCodeMaterialize, err, "bind position %d", position)
	}
	if err := v.engine.Attach(item, dir); err != nil {
		if errors.Is(err, grid.ErrUnplaceable) {
			v.unplaceable++
			v.logger.Warn("skipping unplaceable item", "position", position, "direction", dir)
			return nil
		}
		return err
	}
	return nil
}

// recycle detaches items that lie entirely outside [0, size). Leading items
// go in ascending and trailing items in descending position order, so each
// lane is unwound in the order it was built.
func (v *Viewport) recycle() error {
	o := v.engine.Config().Orientation
	attached := v.engine.Attached()

	var leading, trailing []int
	for _, item := range attached {
		switch {
		case o.MainEnd(item.Frame) <= 0:
			leading = append(leading, item.Position)
		case o.MainStart(item.Frame) >= v.size:
			trailing = append(trailing, item.Position)
		}
	}
	for _, pos := range leading {
		if err := v.engine.Detach(pos, lanes.Start); err != nil {
			return err
		}
	}
	for i := len(trailing) - 1; i >= 0; i-- {
		if err := v.engine.Detach(trailing[i], lanes.End); err != nil {
			return err
		}
	}
	if len(leading)+len(trailing) > 0 {
		v.logger.Debug("recycled items", "leading", len(leading), "trailing", len(trailing))
	}
	v.resync()
	return nil
}

// resync moves the range bounds onto the attached positions. Unplaceable
// positions never attach, so the range can be wider than what is attached.
func (v *Viewport) resync() {
	first, last, ok := v.engine.AttachedRange()
	if !ok {
		// Keep the scroll position: the next fill starts where the content was.
		v.first = v.last + 1
		return
	}
	v.first, v.last = first, last
}

// extent returns the main-axis span covered by the attached frames.
func (v *Viewport) extent() (top, bottom int) {
	o := v.engine.Config().Orientation
	for i, item := range v.engine.Attached() {
		s, e := o.MainStart(item.Frame), o.MainEnd(item.Frame)
		if i == 0 {
			top, bottom = s, e
			continue
		}
		top, bottom = min(top, s), max(bottom, e)
	}
	return top, bottom
}

// paramsFixer replaces params the engine rejects with generated ones.
type paramsFixer struct {
	inner  grid.ItemProvider
	engine *grid.Engine
	logger *log.Logger
}

func (p *paramsFixer) ItemForPosition(ctx context.Context, position int) (*grid.Item, error) {
	item, err := p.inner.ItemForPosition(ctx, position)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, errs.New(errs.ErrCodeMaterialize, "provider returned no item for position %d", position)
	}
	if err := p.engine.CheckParams(item.Params); err != nil {
		p.logger.Warn("replacing item params", "position", position, "err", err)
		item.Params = p.engine.GenerateParams(item.Params)
	}
	return item, nil
}
