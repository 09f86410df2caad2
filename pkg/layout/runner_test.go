package layout

import (
	"context"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/spangrid/pkg/cache"
	"github.com/matzehuels/spangrid/pkg/observability"
)

type cacheRecorder struct {
	observability.NoopCacheHooks
	mu                sync.Mutex
	hits, misses, set int
}

func (r *cacheRecorder) OnCacheHit(context.Context, string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hits++
}

func (r *cacheRecorder) OnCacheMiss(context.Context, string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.misses++
}

func (r *cacheRecorder) OnCacheSet(context.Context, string, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.set++
}

func newFileRunner(t *testing.T) *Runner {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache() error: %v", err)
	}
	return NewRunner(c, nil, nil)
}

func TestRunnerCachesLayout(t *testing.T) {
	rec := &cacheRecorder{}
	observability.SetCacheHooks(rec)
	t.Cleanup(observability.Reset)

	ctx := context.Background()
	r := newFileRunner(t)
	m := tiles(t, 30)

	first, hit, err := r.Layout(ctx, m, Options{})
	if err != nil {
		t.Fatalf("Layout() error: %v", err)
	}
	if hit {
		t.Error("first Layout() should miss")
	}

	second, hit, err := r.Layout(ctx, m, Options{})
	if err != nil {
		t.Fatalf("Layout() error: %v", err)
	}
	if !hit {
		t.Error("second Layout() should hit")
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("cached result differs (-first +second):\n%s", diff)
	}

	if _, hit, _ := r.Layout(ctx, m, Options{Refresh: true}); hit {
		t.Error("Layout() with Refresh should not hit")
	}
	if _, hit, _ := r.Layout(ctx, m, Options{All: true}); hit {
		t.Error("Layout() with different options should not hit")
	}

	if rec.hits != 1 || rec.misses != 2 || rec.set != 3 {
		t.Errorf("hooks = %d hits, %d misses, %d sets; want 1, 2, 3", rec.hits, rec.misses, rec.set)
	}
}

func TestRunnerCachesJump(t *testing.T) {
	ctx := context.Background()
	r := newFileRunner(t)
	m := tiles(t, 30)

	if _, hit, err := r.Jump(ctx, m, Options{Target: 10}); err != nil || hit {
		t.Fatalf("first Jump() = hit %v, err %v", hit, err)
	}
	if _, hit, err := r.Jump(ctx, m, Options{Target: 10}); err != nil || !hit {
		t.Errorf("second Jump() = hit %v, err %v; want a hit", hit, err)
	}
	if _, hit, err := r.Jump(ctx, m, Options{Target: 10, Offset: 5}); err != nil || hit {
		t.Errorf("Jump() with another offset = hit %v, err %v; want a miss", hit, err)
	}

	full, _, err := r.Layout(ctx, m, Options{All: true})
	if err != nil {
		t.Fatalf("Layout() error: %v", err)
	}
	for range 2 {
		if _, hit, err := r.Jump(ctx, m, Options{Target: 10, State: &full.State}); err != nil || hit {
			t.Errorf("Jump() from state = hit %v, err %v; want an uncached run", hit, err)
		}
	}
}

func TestRunnerInvalidOptions(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	if _, _, err := r.Layout(context.Background(), tiles(t, 3), Options{Lanes: 500}); err == nil {
		t.Error("Layout() with more lanes than pixels should fail")
	}
}
