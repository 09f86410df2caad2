package grid

import (
	"maps"
	"slices"

	"github.com/matzehuels/spangrid/pkg/lanes"
)

// Entry records where the item at one position was placed.
type Entry struct {
	Lane    int `json:"lane"`
	ColSpan int `json:"col_span"`
	RowSpan int `json:"row_span"`
}

// Span returns the entry's cross-axis span for orientation o.
func (e Entry) Span(o lanes.Orientation) int {
	return LaneSpan(o, e.ColSpan, e.RowSpan)
}

// EntryCache maps item positions to their placement. Entries are written once
// and never changed, so the cache can be consulted at any point of any pass.
type EntryCache struct {
	entries map[int]Entry
}

// NewEntryCache returns an empty cache.
func NewEntryCache() *EntryCache {
	return &EntryCache{entries: make(map[int]Entry)}
}

// Get returns the entry for position, if one was stored.
func (c *EntryCache) Get(position int) (Entry, bool) {
	e, ok := c.entries[position]
	return e, ok
}

// Put stores e for position unless an entry already exists, and returns the
// entry the cache holds afterwards. The first write wins.
func (c *EntryCache) Put(position int, e Entry) Entry {
	if existing, ok := c.entries[position]; ok {
		return existing
	}
	c.entries[position] = e
	return e
}

// LaneOf returns the cached lane of position, or lanes.NoLane.
func (c *EntryCache) LaneOf(position int) int {
	if e, ok := c.entries[position]; ok {
		return e.Lane
	}
	return lanes.NoLane
}

// Len returns the number of cached positions.
func (c *EntryCache) Len() int { return len(c.entries) }

// Positions returns the cached positions in ascending order.
func (c *EntryCache) Positions() []int {
	return slices.Sorted(maps.Keys(c.entries))
}

// Clear drops every entry. Hosts call it when the item sequence changes.
func (c *EntryCache) Clear() {
	clear(c.entries)
}
