// Package manifest reads the item lists that spangrid lays out.
//
// A manifest names the grid it targets and lists its items in order. Each
// item may request column and row spans and may be repeated:
//
//	name = "gallery"
//	orientation = "vertical"
//	lanes = 3
//	width = 300
//	height = 600
//
//	[[items]]
//	label = "hero"
//	col_span = 2
//
//	[[items]]
//	label = "thumb"
//	repeat = 8
//
// Manifests are TOML or JSON, selected by file extension.
package manifest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/spangrid/pkg/cache"
	errs "github.com/matzehuels/spangrid/pkg/errors"
	"github.com/matzehuels/spangrid/pkg/grid"
	"github.com/matzehuels/spangrid/pkg/lanes"
)

// MaxItems bounds the expanded item count of one manifest.
const MaxItems = 100_000

// Format is a manifest encoding.
type Format string

const (
	FormatTOML Format = "toml"
	FormatJSON Format = "json"
)

// FormatFromPath picks the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	if err := errs.ValidateManifestPath(path); err != nil {
		return "", err
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON, nil
	}
	return FormatTOML, nil
}

// ItemSpec is one [[items]] entry.
type ItemSpec struct {
	Label   string        `json:"label,omitempty" toml:"label"`
	Width   grid.SizeMode `json:"width,omitempty" toml:"width"`
	Height  grid.SizeMode `json:"height,omitempty" toml:"height"`
	ColSpan int           `json:"col_span,omitempty" toml:"col_span"`
	RowSpan int           `json:"row_span,omitempty" toml:"row_span"`
	Removed bool          `json:"removed,omitempty" toml:"removed"`

	// Repeat expands the entry into that many consecutive items. Zero and
	// one both mean a single item.
	Repeat int `json:"repeat,omitempty" toml:"repeat"`
}

// Params returns the layout params the entry requests. Unset spans default
// to grid.DefaultSpan.
func (s ItemSpec) Params() grid.Params {
	p := grid.Params{Width: s.Width, Height: s.Height, ColSpan: s.ColSpan, RowSpan: s.RowSpan}
	if p.ColSpan == 0 {
		p.ColSpan = grid.DefaultSpan
	}
	if p.RowSpan == 0 {
		p.RowSpan = grid.DefaultSpan
	}
	return p
}

// Manifest is a parsed manifest with its items expanded.
type Manifest struct {
	Name        string     `json:"name,omitempty" toml:"name"`
	Orientation string     `json:"orientation,omitempty" toml:"orientation"`
	Lanes       int        `json:"lanes,omitempty" toml:"lanes"`
	Width       int        `json:"width,omitempty" toml:"width"`
	Height      int        `json:"height,omitempty" toml:"height"`
	Specs       []ItemSpec `json:"items" toml:"items"`

	items []grid.Item
}

// Parse decodes data in the given format, validates it and expands repeats.
func Parse(data []byte, format Format) (*Manifest, error) {
	var m Manifest
	switch format {
	case FormatTOML:
		md, err := toml.Decode(string(data), &m)
		if err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidManifest, err, "parse toml manifest")
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, errs.New(errs.ErrCodeInvalidManifest, "unknown manifest keys: %v", undecoded)
		}
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&m); err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidManifest, err, "parse json manifest")
		}
	default:
		return nil, errs.New(errs.ErrCodeUnsupported, "unsupported manifest format %q", format)
	}
	if err := m.init(); err != nil {
		return nil, err
	}
	return &m, nil
}

// ParseFile reads and parses the manifest at path.
func ParseFile(path string) (*Manifest, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeNotFound, err, "read manifest %s", path)
	}
	m, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if m.Name == "" {
		m.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return m, nil
}

// init validates the header and expands the specs into items.
func (m *Manifest) init() error {
	if _, err := lanes.ParseOrientation(m.Orientation); err != nil {
		return errs.Wrap(errs.ErrCodeInvalidOrientation, err, "manifest orientation")
	}
	if m.Lanes < 0 || m.Width < 0 || m.Height < 0 {
		return errs.New(errs.ErrCodeInvalidManifest, "lanes and size must not be negative")
	}

	total := 0
	for i, s := range m.Specs {
		if err := errs.ValidateLabel(s.Label); err != nil {
			return fmt.Errorf("item %d: %w", i, err)
		}
		if s.Repeat < 0 || s.ColSpan < 0 || s.RowSpan < 0 {
			return errs.New(errs.ErrCodeInvalidManifest, "item %d: repeat and spans must not be negative", i)
		}
		total += max(s.Repeat, 1)
		if total > MaxItems {
			return errs.New(errs.ErrCodeInvalidManifest, "manifest expands to more than %d items", MaxItems)
		}
	}

	m.items = make([]grid.Item, 0, total)
	for _, s := range m.Specs {
		for r := 0; r < max(s.Repeat, 1); r++ {
			label := s.Label
			if s.Repeat > 1 {
				label = fmt.Sprintf("%s %d", s.Label, r+1)
			}
			m.items = append(m.items, grid.Item{
				Position: len(m.items),
				Label:    strings.TrimSpace(label),
				Params:   s.Params(),
				Removed:  s.Removed,
				Lane:     lanes.NoLane,
			})
		}
	}
	return nil
}

// Len returns the number of items after expansion.
func (m *Manifest) Len() int { return len(m.items) }

// Item returns a copy of the item at position.
func (m *Manifest) Item(position int) (grid.Item, error) {
	if err := errs.ValidatePosition(position, len(m.items)); err != nil {
		return grid.Item{}, errs.Wrap(errs.ErrCodeItemNotFound, err, "manifest %s", m.Name)
	}
	return m.items[position], nil
}

// ItemForPosition implements grid.ItemProvider. Each call returns a fresh
// item, as a host would bind a recycled view.
func (m *Manifest) ItemForPosition(_ context.Context, position int) (*grid.Item, error) {
	item, err := m.Item(position)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// Hash returns a content hash of the expanded items and grid header, used to
// key cached layouts.
func (m *Manifest) Hash() string {
	data, _ := json.Marshal(struct {
		Orientation string      `json:"orientation"`
		Lanes       int         `json:"lanes"`
		Width       int         `json:"width"`
		Height      int         `json:"height"`
		Items       []grid.Item `json:"items"`
	}{m.Orientation, m.Lanes, m.Width, m.Height, m.items})
	return cache.Hash(data)
}

// Encode writes m back out in the given format.
func (m *Manifest) Encode(format Format) ([]byte, error) {
	var buf bytes.Buffer
	switch format {
	case FormatTOML:
		if err := toml.NewEncoder(&buf).Encode(m); err != nil {
			return nil, err
		}
	case FormatJSON:
		enc := json.NewEncoder(&buf)
		enc.SetIndent("", "  ")
		if err := enc.Encode(m); err != nil {
			return nil, err
		}
	default:
		return nil, errs.New(errs.ErrCodeUnsupported, "unsupported manifest format %q", format)
	}
	return buf.Bytes(), nil
}

var _ grid.ItemProvider = (*Manifest)(nil)
