package layout

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/spangrid/pkg/cache"
	"github.com/matzehuels/spangrid/pkg/manifest"
	"github.com/matzehuels/spangrid/pkg/observability"
)

// Runner runs layouts and jumps with caching.
// Both CLI and API use it so caching behaves the same everywhere.
//
// The Runner holds no results itself; multiple goroutines can share one.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: logger}
}

// Layout computes the layout of m, reporting whether it came from the cache.
func (r *Runner) Layout(ctx context.Context, m *manifest.Manifest, opts Options) (*Result, bool, error) {
	r.applyLogger(&opts)
	if err := opts.prepare(m); err != nil {
		return nil, false, fmt.Errorf("invalid options: %w", err)
	}
	key := r.Keyer.LayoutKey(m.Hash(), opts.LayoutKeyOpts())
	return r.cached(ctx, key, cache.TTLLayout, opts.Refresh, func() (*Result, error) {
		return Compute(ctx, m, opts)
	})
}

// Jump jumps to opts.Target in m, reporting whether the result came from
// the cache. Jumps seeded from a saved state are never cached.
func (r *Runner) Jump(ctx context.Context, m *manifest.Manifest, opts Options) (*Result, bool, error) {
	r.applyLogger(&opts)
	if err := opts.prepare(m); err != nil {
		return nil, false, fmt.Errorf("invalid options: %w", err)
	}
	if opts.State != nil {
		res, err := Jump(ctx, m, opts)
		return res, false, err
	}
	key := r.Keyer.JumpKey(m.Hash(), opts.JumpKeyOpts())
	return r.cached(ctx, key, cache.TTLJump, opts.Refresh, func() (*Result, error) {
		return Jump(ctx, m, opts)
	})
}

func (r *Runner) cached(ctx context.Context, key string, ttl time.Duration, refresh bool, compute func() (*Result, error)) (*Result, bool, error) {
	hooks := observability.Cache()
	if !refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			var res Result
			if err := json.Unmarshal(data, &res); err == nil {
				hooks.OnCacheHit(ctx, key)
				r.Logger.Debug("cache hit", "key", key)
				return &res, true, nil
			}
		} else if err != nil {
			r.Logger.Warn("cache read failed", "key", key, "err", err)
		}
		hooks.OnCacheMiss(ctx, key)
	}

	res, err := compute()
	if err != nil {
		return nil, false, err
	}
	if data, err := json.Marshal(res); err == nil {
		if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
			r.Logger.Warn("cache write failed", "key", key, "err", err)
		} else {
			hooks.OnCacheSet(ctx, key, len(data))
		}
	}
	return res, false, nil
}

// applyLogger hands the runner's logger to runs that did not set one.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
