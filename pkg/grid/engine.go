package grid

import (
	"errors"
	"fmt"
	"io"
	"maps"
	"math"
	"slices"

	"github.com/charmbracelet/log"

	errs "github.com/matzehuels/spangrid/pkg/errors"
	"github.com/matzehuels/spangrid/pkg/lanes"
	"github.com/matzehuels/spangrid/pkg/observability"
)

// ErrUnplaceable is returned by Attach when no lane can take an item in the
// current pass. It is not fatal: the host skips the item and may retry once
// occupancy has changed.
var ErrUnplaceable = errors.New("no lane fits item")

// Config describes the container the engine lays out into.
type Config struct {
	Orientation lanes.Orientation `json:"orientation"`

	// Lanes is the number of columns (vertical) or rows (horizontal).
	// Zero selects DefaultColumns or DefaultRows.
	Lanes int `json:"lanes"`

	// Width and Height are the container size. The cross-axis size divided
	// by Lanes gives the lane size.
	Width  int `json:"width"`
	Height int `json:"height"`
}

// SetDefaults fills zero fields with their defaults.
func (c *Config) SetDefaults() {
	if c.Lanes == 0 {
		if c.Orientation == lanes.Vertical {
			c.Lanes = DefaultColumns
		} else {
			c.Lanes = DefaultRows
		}
	}
}

// Validate checks that the container can hold at least one unit-sized lane.
func (c Config) Validate() error {
	if c.Lanes < 1 {
		return errs.New(errs.ErrCodeInvalidInput, "lanes must be at least 1, got %d", c.Lanes)
	}
	if c.Width < 1 || c.Height < 1 {
		return errs.New(errs.ErrCodeInvalidInput, "container size must be positive, got %dx%d", c.Width, c.Height)
	}
	if c.crossSize()/c.Lanes < 1 {
		return errs.New(errs.ErrCodeInvalidInput, "%d lanes do not fit in %d units", c.Lanes, c.crossSize())
	}
	return nil
}

// MainSize returns the container's extent along the scroll axis.
func (c Config) MainSize() int {
	if c.Orientation == lanes.Vertical {
		return c.Height
	}
	return c.Width
}

func (c Config) crossSize() int {
	if c.Orientation == lanes.Vertical {
		return c.Width
	}
	return c.Height
}

// attachment is an item the engine currently holds in the lanes.
type attachment struct {
	item   *Item
	span   int
	synced bool
}

// Engine lays items into lanes one at a time as the host attaches and
// detaches them, delegating placement decisions to a Strategy.
type Engine struct {
	cfg      Config
	lanes    *lanes.Lanes
	entries  *EntryCache
	strategy Strategy
	measurer Measurer
	gate     ScrollGate
	logger   *log.Logger
	attached map[int]*attachment
}

// Option configures an Engine.
type Option func(*Engine)

// WithStrategy replaces the default SpanStrategy.
func WithStrategy(s Strategy) Option {
	return func(e *Engine) { e.strategy = s }
}

// WithMeasurer replaces the default FillMeasurer.
func WithMeasurer(m Measurer) Option {
	return func(e *Engine) { e.measurer = m }
}

// WithLogger sets the logger for placement events. Placements are logged at
// debug level.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithEntries starts the engine from an existing cache, for example one
// restored from a SavedState.
func WithEntries(c *EntryCache) Option {
	return func(e *Engine) { e.entries = c }
}

// NewEngine creates an engine for cfg with empty lanes.
func NewEngine(cfg Config, opts ...Option) (*Engine, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	l, err := lanes.NewForSize(cfg.Orientation, cfg.Lanes, cfg.crossSize())
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "create lanes")
	}

	e := &Engine{
		cfg:      cfg,
		lanes:    l,
		strategy: SpanStrategy{},
		measurer: FillMeasurer{},
		attached: make(map[int]*attachment),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.entries == nil {
		e.entries = NewEntryCache()
	}
	if e.logger == nil {
		e.logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return e, nil
}

// Config returns the engine's container configuration with defaults applied.
func (e *Engine) Config() Config { return e.cfg }

// Lanes returns the lane occupancy the engine maintains.
func (e *Engine) Lanes() *lanes.Lanes { return e.lanes }

// Entries returns the engine's placement cache.
func (e *Engine) Entries() *EntryCache { return e.entries }

// CanScrollVertically reports whether the container may scroll vertically
// right now. It is false while an item is being measured.
func (e *Engine) CanScrollVertically() bool {
	return e.cfg.Orientation == lanes.Vertical && !e.gate.Held()
}

// CanScrollHorizontally reports whether the container may scroll
// horizontally right now. It is false while an item is being measured.
func (e *Engine) CanScrollHorizontally() bool {
	return e.cfg.Orientation == lanes.Horizontal && !e.gate.Held()
}

// CheckParams reports whether p can be laid out in this grid.
func (e *Engine) CheckParams(p Params) error {
	return CheckParams(p, e.cfg.Orientation, e.lanes.Count())
}

// GenerateParams returns a corrected copy of p that CheckParams accepts.
func (e *Engine) GenerateParams(p Params) Params {
	return GenerateParams(p, e.cfg.Orientation, e.lanes.Count())
}

// LaneForPosition returns the cached lane of position, or lanes.NoLane.
func (e *Engine) LaneForPosition(position int) int {
	return e.entries.LaneOf(position)
}

// CacheEntry records lane as the placement of the item at position, with the
// spans its params resolve to, unless the position already has an entry.
func (e *Engine) CacheEntry(position, lane int, p Params) Entry {
	col, row := e.strategy.ResolveSpan(p, e.cfg.Orientation, e.lanes.Count())
	return e.strategy.CacheEntry(e.entries, position, Entry{Lane: lane, ColSpan: col, RowSpan: row})
}

// Attach places item against the dir edge of the lanes and commits its
// frame. The item's Lane and Frame are updated in place.
//
// Attach returns an INVALID_PARAMS error for params CheckParams rejects and
// ErrUnplaceable when no lane fits; in both cases the lanes are unchanged.
func (e *Engine) Attach(item *Item, dir lanes.Direction) error {
	if item == nil {
		return errs.New(errs.ErrCodeInvalidInput, "attach nil item")
	}
	if _, ok := e.attached[item.Position]; ok {
		return errs.New(errs.ErrCodeInvalidInput, "position %d is already attached", item.Position)
	}
	if err := e.CheckParams(item.Params); err != nil {
		return fmt.Errorf("position %d: %w", item.Position, err)
	}

	o, count := e.cfg.Orientation, e.lanes.Count()
	entry, cached := e.entries.Get(item.Position)
	col, row := entry.ColSpan, entry.RowSpan
	if !cached {
		col, row = e.strategy.ResolveSpan(item.Params, o, count)
	}
	span := LaneSpan(o, col, row)
	width, height := e.measure(item, col, row)

	var (
		lane  int
		frame lanes.Rect
	)
	if cached && entry.Lane != lanes.NoLane {
		lane = entry.Lane
		frame = BlockFrame(e.lanes, width, height, lane, dir, span)
	} else {
		lane, frame = e.strategy.FindLane(e.lanes, width, height, dir, span)
		if lane == lanes.NoLane {
			e.logger.Debug("item unplaceable", "position", item.Position, "span", span, "direction", dir)
			observability.Layout().OnUnplaceable(item.Position, span)
			return fmt.Errorf("position %d: %w", item.Position, ErrUnplaceable)
		}
		e.strategy.CacheEntry(e.entries, item.Position, Entry{Lane: lane, ColSpan: col, RowSpan: row})
	}

	e.lanes.Push(lane, lane+1, dir, frame)
	a := &attachment{item: item, span: span}
	if !item.Removed {
		e.strategy.SyncFrame(e.lanes, SyncAttach, lane, span, dir, frame)
		a.synced = true
	}
	item.Lane, item.Frame = lane, frame
	e.attached[item.Position] = a

	e.logger.Debug("placed item", "position", item.Position, "lane", lane, "span", span, "frame", frame, "cached", cached)
	observability.Layout().OnPlace(item.Position, lane, span, cached)
	return nil
}

// Detach retracts the lanes the item at position holds on the dir edge and
// forgets the item. Its entry stays cached.
func (e *Engine) Detach(position int, dir lanes.Direction) error {
	a, ok := e.attached[position]
	if !ok {
		return errs.New(errs.ErrCodeItemNotFound, "position %d is not attached", position)
	}
	lane, frame := a.item.Lane, a.item.Frame
	e.lanes.Pop(lane, lane+1, dir, frame)
	if a.synced {
		e.strategy.SyncFrame(e.lanes, SyncDetach, lane, a.span, dir, frame)
	}
	delete(e.attached, position)

	e.logger.Debug("detached item", "position", position, "lane", lane, "direction", dir)
	return nil
}

// Attached returns the attached items ordered by position.
func (e *Engine) Attached() []*Item {
	out := make([]*Item, 0, len(e.attached))
	for _, pos := range slices.Sorted(maps.Keys(e.attached)) {
		out = append(out, e.attached[pos].item)
	}
	return out
}

// AttachedRange returns the lowest and highest attached positions.
func (e *Engine) AttachedRange() (first, last int, ok bool) {
	if len(e.attached) == 0 {
		return 0, 0, false
	}
	first, last = math.MaxInt, math.MinInt
	for pos := range e.attached {
		first, last = min(first, pos), max(last, pos)
	}
	return first, last, true
}

// ScrollBy moves the lanes and every attached frame by delta along the
// scroll axis.
func (e *Engine) ScrollBy(delta int) {
	if delta == 0 {
		return
	}
	e.lanes.Offset(delta)
	for _, a := range e.attached {
		a.item.Frame = e.cfg.Orientation.Translate(a.item.Frame, delta)
	}
}

// measure sizes item with scrolling suspended for exactly the duration of
// the call.
func (e *Engine) measure(item *Item, colSpan, rowSpan int) (int, int) {
	release := e.gate.Suspend()
	defer release()
	return e.measurer.Measure(item, e.childWidth(colSpan), e.childHeight(rowSpan))
}

func (e *Engine) childWidth(colSpan int) int {
	return e.lanes.LaneSize() * colSpan
}

func (e *Engine) childHeight(rowSpan int) int {
	return e.lanes.LaneSize() * rowSpan
}
