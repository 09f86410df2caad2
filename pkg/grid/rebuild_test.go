package grid

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	errs "github.com/matzehuels/spangrid/pkg/errors"
	"github.com/matzehuels/spangrid/pkg/lanes"
	"github.com/matzehuels/spangrid/pkg/observability"
)

var rebuildSpans = []int{2, 1, 3, 1, 1, 2, 1, 3, 2, 1}

func spanProvider(spans []int) ItemProvider {
	return ItemProviderFunc(func(_ context.Context, pos int) (*Item, error) {
		return newItem(pos, spans[pos], 1), nil
	})
}

func failingProvider(t *testing.T) ItemProvider {
	return ItemProviderFunc(func(_ context.Context, pos int) (*Item, error) {
		t.Errorf("unexpected materialization of position %d", pos)
		return nil, errors.New("unexpected")
	})
}

func TestMoveToPositionMatchesIncremental(t *testing.T) {
	const target, offset = 7, 40

	incremental := newEngine(t, lanes.Vertical)
	for pos := 0; pos < target; pos++ {
		mustAttach(t, incremental, newItem(pos, rebuildSpans[pos], 1), lanes.End)
	}
	want := newItem(target, rebuildSpans[target], 1)
	mustAttach(t, incremental, want, lanes.End)

	rebuilt := newEngine(t, lanes.Vertical)
	if err := rebuilt.MoveToPosition(context.Background(), target, offset, spanProvider(rebuildSpans)); err != nil {
		t.Fatalf("MoveToPosition() error: %v", err)
	}
	got := newItem(target, rebuildSpans[target], 1)
	mustAttach(t, rebuilt, got, lanes.End)

	if diff := cmp.Diff(incremental.Entries().entries, rebuilt.Entries().entries); diff != "" {
		t.Errorf("entries differ (-incremental +rebuilt):\n%s", diff)
	}

	delta := offset - want.Frame.Top
	if got.Frame.Top != offset {
		t.Errorf("target top = %d, want %d", got.Frame.Top, offset)
	}
	if got.Lane != want.Lane || got.Frame != want.Frame.Offset(0, delta) {
		t.Errorf("target at lane %d %v, want lane %d %v", got.Lane, got.Frame, want.Lane, want.Frame.Offset(0, delta))
	}
	for i := 0; i < 3; i++ {
		if g, w := rebuilt.Lanes().Edge(i, lanes.End), incremental.Lanes().Edge(i, lanes.End)+delta; g != w {
			t.Errorf("lane %d end = %d, want %d", i, g, w)
		}
	}
}

func TestMoveToPositionAlignsBlockStart(t *testing.T) {
	// Lanes end at [300, 100, 200] before the target, so the two-lane target
	// lands in lane 1 but starts at lane 2's edge.
	rows := []int{3, 1, 2, 1}
	cols := []int{1, 1, 1, 2}
	provider := ItemProviderFunc(func(_ context.Context, pos int) (*Item, error) {
		return newItem(pos, cols[pos], rows[pos]), nil
	})

	e := newEngine(t, lanes.Vertical)
	if err := e.MoveToPosition(context.Background(), 3, 40, provider); err != nil {
		t.Fatalf("MoveToPosition() error: %v", err)
	}
	target := newItem(3, 2, 1)
	mustAttach(t, e, target, lanes.End)

	if target.Lane != 1 {
		t.Errorf("target lane = %d, want 1", target.Lane)
	}
	if want := (lanes.Rect{Left: 100, Top: 40, Right: 300, Bottom: 140}); target.Frame != want {
		t.Errorf("target frame = %v, want %v", target.Frame, want)
	}
}

func TestMoveToPositionReplaysCache(t *testing.T) {
	e := newEngine(t, lanes.Vertical)
	ctx := context.Background()
	if err := e.MoveToPosition(ctx, 7, 0, spanProvider(rebuildSpans)); err != nil {
		t.Fatalf("MoveToPosition() error: %v", err)
	}

	if err := e.MoveToPosition(ctx, 5, 0, failingProvider(t)); err != nil {
		t.Fatalf("MoveToPosition() replay error: %v", err)
	}
	item := newItem(5, rebuildSpans[5], 1)
	mustAttach(t, e, item, lanes.End)

	if want := (lanes.Rect{Left: 0, Top: 0, Right: 200, Bottom: 100}); item.Frame != want {
		t.Errorf("target frame = %v, want %v", item.Frame, want)
	}
	if got := e.Lanes().Edge(2, lanes.End); got != -100 {
		t.Errorf("lane 2 end = %d, want -100", got)
	}
}

func TestMoveToPositionDropsAttached(t *testing.T) {
	e := newEngine(t, lanes.Vertical)
	mustAttach(t, e, newItem(0, 1, 1), lanes.End)
	mustAttach(t, e, newItem(1, 1, 1), lanes.End)

	if err := e.MoveToPosition(context.Background(), 1, 0, failingProvider(t)); err != nil {
		t.Fatalf("MoveToPosition() error: %v", err)
	}
	if n := len(e.Attached()); n != 0 {
		t.Errorf("Attached() has %d items after rebuild, want 0", n)
	}
}

func TestMoveToPositionErrors(t *testing.T) {
	boom := errors.New("boom")
	failAt := func(bad int) ItemProvider {
		return ItemProviderFunc(func(_ context.Context, pos int) (*Item, error) {
			if pos == bad {
				return nil, boom
			}
			return newItem(pos, 1, 1), nil
		})
	}
	cancelled, cancel := context.WithCancel(context.Background())
	cancel()

	tests := []struct {
		name     string
		ctx      context.Context
		target   int
		provider ItemProvider
		check    func(error) bool
	}{
		{
			name: "provider failure", ctx: context.Background(), target: 5, provider: failAt(3),
			check: func(err error) bool { return errs.Is(err, errs.ErrCodeMaterialize) && errors.Is(err, boom) },
		},
		{
			name: "nil item", ctx: context.Background(), target: 2,
			provider: ItemProviderFunc(func(context.Context, int) (*Item, error) { return nil, nil }),
			check:    func(err error) bool { return errs.Is(err, errs.ErrCodeMaterialize) },
		},
		{
			name: "cancelled", ctx: cancelled, target: 3, provider: failAt(-1),
			check: func(err error) bool { return errors.Is(err, context.Canceled) },
		},
		{
			name: "negative target", ctx: context.Background(), target: -1, provider: failAt(-1),
			check: func(err error) bool { return errs.Is(err, errs.ErrCodeInvalidInput) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEngine(t, lanes.Vertical)
			err := e.MoveToPosition(tt.ctx, tt.target, 0, tt.provider)
			if !tt.check(err) {
				t.Errorf("MoveToPosition() error = %v", err)
			}
		})
	}
}

func TestMoveToPositionUnplaceable(t *testing.T) {
	ctx := context.Background()

	t.Run("skips earlier item", func(t *testing.T) {
		e := newEngine(t, lanes.Vertical, WithStrategy(&refusingStrategy{refuse: map[int]bool{0: true}}))
		if err := e.MoveToPosition(ctx, 2, 0, spanProvider(rebuildSpans)); err != nil {
			t.Fatalf("MoveToPosition() error: %v", err)
		}
		if e.LaneForPosition(0) != lanes.NoLane {
			t.Error("unplaceable position 0 should not be cached")
		}
		if e.LaneForPosition(2) == lanes.NoLane {
			t.Error("target should be cached")
		}
	})

	t.Run("fails on target", func(t *testing.T) {
		e := newEngine(t, lanes.Vertical, WithStrategy(&refusingStrategy{refuse: map[int]bool{2: true}}))
		err := e.MoveToPosition(ctx, 2, 0, spanProvider(rebuildSpans))
		if !errs.Is(err, errs.ErrCodeInvalidState) || !errors.Is(err, ErrUnplaceable) {
			t.Errorf("MoveToPosition() error = %v, want INVALID_STATE wrapping ErrUnplaceable", err)
		}
	})
}

type rebuildRecorder struct {
	observability.NoopLayoutHooks
	started  []int
	replayed int
	err      error
}

func (r *rebuildRecorder) OnRebuildStart(_ context.Context, target int) {
	r.started = append(r.started, target)
}

func (r *rebuildRecorder) OnRebuildComplete(_ context.Context, _ int, replayed int, _ time.Duration, err error) {
	r.replayed, r.err = replayed, err
}

func TestMoveToPositionHooks(t *testing.T) {
	rec := &rebuildRecorder{}
	observability.SetLayoutHooks(rec)
	t.Cleanup(observability.Reset)

	e := newEngine(t, lanes.Vertical)
	ctx := context.Background()
	if err := e.MoveToPosition(ctx, 4, 0, spanProvider(rebuildSpans)); err != nil {
		t.Fatalf("MoveToPosition() error: %v", err)
	}
	if rec.replayed != 0 {
		t.Errorf("first rebuild replayed %d entries, want 0", rec.replayed)
	}

	if err := e.MoveToPosition(ctx, 3, 0, failingProvider(t)); err != nil {
		t.Fatalf("MoveToPosition() error: %v", err)
	}
	if rec.replayed != 4 || rec.err != nil {
		t.Errorf("second rebuild replayed %d (err %v), want 4", rec.replayed, rec.err)
	}
	if diff := cmp.Diff([]int{4, 3}, rec.started); diff != "" {
		t.Errorf("rebuild starts mismatch (-want +got):\n%s", diff)
	}
}
