// Package layout runs the grid engine over a manifest the way a scrolling
// container would: it fills a viewport, scrolls it, recycles items that
// leave it and jumps straight to a position.
//
// Both the CLI and the HTTP API go through this package, usually through a
// [Runner] so results are cached:
//
//	runner := layout.NewRunner(c, nil, logger)
//	res, hit, err := runner.Layout(ctx, m, layout.Options{Lanes: 3})
package layout

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/spangrid/pkg/cache"
	errs "github.com/matzehuels/spangrid/pkg/errors"
	"github.com/matzehuels/spangrid/pkg/grid"
	"github.com/matzehuels/spangrid/pkg/lanes"
	"github.com/matzehuels/spangrid/pkg/manifest"
)

// Defaults for options the manifest and the caller leave unset.
const (
	DefaultWidth  = 300
	DefaultHeight = 600
)

// Options configures a layout or jump run. It is the body of API requests.
type Options struct {
	Orientation string `json:"orientation,omitempty"`
	Lanes       int    `json:"lanes,omitempty"`
	Width       int    `json:"width,omitempty"`
	Height      int    `json:"height,omitempty"`

	// All lays out every item instead of only those that fill the viewport.
	All bool `json:"all,omitempty"`

	// Target and Offset are the position to jump to and where its frame
	// should start along the scroll axis.
	Target int `json:"target,omitempty"`
	Offset int `json:"offset,omitempty"`

	// Refresh skips cached results.
	Refresh bool `json:"refresh,omitempty"`

	// State, when set, seeds the engine's entries before a jump.
	State *grid.SavedState `json:"-"`

	Logger   *log.Logger   `json:"-"`
	Measurer grid.Measurer `json:"-"`
}

// ApplyManifest fills unset grid options from the manifest header.
func (o *Options) ApplyManifest(m *manifest.Manifest) {
	if o.Orientation == "" {
		o.Orientation = m.Orientation
	}
	if o.Lanes == 0 {
		o.Lanes = m.Lanes
	}
	if o.Width == 0 {
		o.Width = m.Width
	}
	if o.Height == 0 {
		o.Height = m.Height
	}
}

// SetDefaults fills the remaining unset options.
func (o *Options) SetDefaults() {
	if o.Orientation == "" {
		o.Orientation = lanes.OrientationVertical
	}
	if o.Lanes == 0 {
		o.Lanes = grid.DefaultColumns
	}
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// Validate checks the options after defaults are applied.
func (o *Options) Validate() error {
	if _, err := lanes.ParseOrientation(o.Orientation); err != nil {
		return errs.Wrap(errs.ErrCodeInvalidOrientation, err, "options")
	}
	if o.Target < 0 {
		return errs.New(errs.ErrCodeInvalidInput, "target must not be negative, got %d", o.Target)
	}
	_, err := o.GridConfig()
	return err
}

// GridConfig converts the options to an engine configuration.
func (o *Options) GridConfig() (grid.Config, error) {
	orientation, err := lanes.ParseOrientation(o.Orientation)
	if err != nil {
		return grid.Config{}, errs.Wrap(errs.ErrCodeInvalidOrientation, err, "options")
	}
	cfg := grid.Config{Orientation: orientation, Lanes: o.Lanes, Width: o.Width, Height: o.Height}
	cfg.SetDefaults()
	return cfg, cfg.Validate()
}

// LayoutKeyOpts returns the cache key options of a layout run.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Orientation: o.Orientation,
		Lanes:       o.Lanes,
		Width:       o.Width,
		Height:      o.Height,
		All:         o.All,
	}
}

// JumpKeyOpts returns the cache key options of a jump run.
func (o *Options) JumpKeyOpts() cache.JumpKeyOpts {
	return cache.JumpKeyOpts{LayoutKeyOpts: o.LayoutKeyOpts(), Target: o.Target, Offset: o.Offset}
}

func (o *Options) prepare(m *manifest.Manifest) error {
	o.ApplyManifest(m)
	o.SetDefaults()
	return o.Validate()
}
