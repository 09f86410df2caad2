package layout

import (
	"context"
	"time"

	"github.com/matzehuels/spangrid/pkg/grid"
	"github.com/matzehuels/spangrid/pkg/manifest"
)

// Compute lays out m from its first item. Without opts.All it stops once the
// viewport is covered, as a container would on first display.
func Compute(ctx context.Context, m *manifest.Manifest, opts Options) (*Result, error) {
	v, err := newViewport(m, &opts)
	if err != nil {
		return nil, err
	}
	started := time.Now()
	if opts.All {
		err = v.FillAll(ctx)
	} else {
		err = v.Fill(ctx)
	}
	if err != nil {
		return nil, err
	}
	res := newResult(m.Name, v, m.Len(), started)
	opts.Logger.Info("computed layout", "manifest", m.Name, "attached", res.Stats.Attached, "duration", res.Stats.Elapsed)
	return res, nil
}

// Jump lays out m as if scrolled directly to opts.Target, with the target's
// block starting at opts.Offset. Entries in opts.State are reused so a
// restored session lands items in the lanes they had before.
func Jump(ctx context.Context, m *manifest.Manifest, opts Options) (*Result, error) {
	v, err := newViewport(m, &opts)
	if err != nil {
		return nil, err
	}
	if opts.State != nil {
		if err := v.Engine().Restore(*opts.State); err != nil {
			return nil, err
		}
	}
	started := time.Now()
	if err := v.JumpTo(ctx, opts.Target, opts.Offset); err != nil {
		return nil, err
	}
	res := newResult(m.Name, v, m.Len(), started)
	opts.Logger.Info("jumped to position", "manifest", m.Name, "target", opts.Target, "attached", res.Stats.Attached, "duration", res.Stats.Elapsed)
	return res, nil
}

// NewEngineViewport prepares opts against m and returns a viewport over a
// fresh engine. Interactive hosts use it to keep scrolling after the first
// fill.
func NewEngineViewport(m *manifest.Manifest, opts *Options) (*Viewport, error) {
	return newViewport(m, opts)
}

func newViewport(m *manifest.Manifest, opts *Options) (*Viewport, error) {
	if err := opts.prepare(m); err != nil {
		return nil, err
	}
	cfg, err := opts.GridConfig()
	if err != nil {
		return nil, err
	}
	engineOpts := []grid.Option{grid.WithLogger(opts.Logger)}
	if opts.Measurer != nil {
		engineOpts = append(engineOpts, grid.WithMeasurer(opts.Measurer))
	}
	e, err := grid.NewEngine(cfg, engineOpts...)
	if err != nil {
		return nil, err
	}
	return NewViewport(e, m, m.Len(), opts.Logger), nil
}
