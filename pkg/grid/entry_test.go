package grid

import (
	"slices"
	"testing"

	"github.com/matzehuels/spangrid/pkg/lanes"
)

func TestEntryCacheFirstWriteWins(t *testing.T) {
	c := NewEntryCache()
	first := c.Put(4, Entry{Lane: 1, ColSpan: 2, RowSpan: 1})
	second := c.Put(4, Entry{Lane: 0, ColSpan: 3, RowSpan: 1})

	if second != first {
		t.Errorf("second Put() = %+v, want stored %+v", second, first)
	}
	if got, _ := c.Get(4); got != first {
		t.Errorf("Get() = %+v, want %+v", got, first)
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
}

func TestEntryCacheLookup(t *testing.T) {
	c := NewEntryCache()
	if _, ok := c.Get(0); ok {
		t.Error("Get() on empty cache should miss")
	}
	if got := c.LaneOf(0); got != lanes.NoLane {
		t.Errorf("LaneOf() on empty cache = %d, want NoLane", got)
	}

	c.Put(7, Entry{Lane: 2, ColSpan: 1, RowSpan: 1})
	c.Put(1, Entry{Lane: 0, ColSpan: 1, RowSpan: 1})
	c.Put(3, Entry{Lane: 1, ColSpan: 1, RowSpan: 1})

	if got := c.LaneOf(7); got != 2 {
		t.Errorf("LaneOf(7) = %d, want 2", got)
	}
	if got, want := c.Positions(), []int{1, 3, 7}; !slices.Equal(got, want) {
		t.Errorf("Positions() = %v, want %v", got, want)
	}

	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Len() after Clear = %d, want 0", c.Len())
	}
}

func TestEntrySpan(t *testing.T) {
	e := Entry{Lane: 0, ColSpan: 2, RowSpan: 3}
	if got := e.Span(lanes.Vertical); got != 2 {
		t.Errorf("Span(Vertical) = %d, want 2", got)
	}
	if got := e.Span(lanes.Horizontal); got != 3 {
		t.Errorf("Span(Horizontal) = %d, want 3", got)
	}
}
