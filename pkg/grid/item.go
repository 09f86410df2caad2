package grid

import (
	"context"

	"github.com/matzehuels/spangrid/pkg/lanes"
)

// Item is one element of the sequence being laid out.
type Item struct {
	Position int    `json:"position"`
	Label    string `json:"label,omitempty"`
	Params   Params `json:"params"`

	// Removed marks an item that is animating out of the data set. It still
	// takes its primary lane but does not hold the lanes it spans.
	Removed bool `json:"removed,omitempty"`

	// Lane and Frame are set by the engine while the item is attached.
	Lane  int        `json:"lane"`
	Frame lanes.Rect `json:"frame"`
}

// ItemProvider materializes the item at a position, creating or reusing it.
type ItemProvider interface {
	ItemForPosition(ctx context.Context, position int) (*Item, error)
}

// ItemProviderFunc adapts a function to ItemProvider.
type ItemProviderFunc func(ctx context.Context, position int) (*Item, error)

// ItemForPosition calls f(ctx, position).
func (f ItemProviderFunc) ItemForPosition(ctx context.Context, position int) (*Item, error) {
	return f(ctx, position)
}

// Measurer resolves an item's size against the budget its spans give it.
type Measurer interface {
	Measure(item *Item, maxWidth, maxHeight int) (width, height int)
}

// MeasurerFunc adapts a function to Measurer.
type MeasurerFunc func(item *Item, maxWidth, maxHeight int) (int, int)

// Measure calls f(item, maxWidth, maxHeight).
func (f MeasurerFunc) Measure(item *Item, maxWidth, maxHeight int) (int, int) {
	return f(item, maxWidth, maxHeight)
}

// FillMeasurer sizes every item to its full budget, which is what
// match_parent items resolve to.
type FillMeasurer struct{}

// Measure returns the budget unchanged.
func (FillMeasurer) Measure(_ *Item, maxWidth, maxHeight int) (int, int) {
	return maxWidth, maxHeight
}
