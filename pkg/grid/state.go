package grid

import (
	"encoding/binary"
	"fmt"

	errs "github.com/matzehuels/spangrid/pkg/errors"
	"github.com/matzehuels/spangrid/pkg/lanes"
)

// savedStateVersion is the first byte of every encoded SavedState.
const savedStateVersion byte = 1

const (
	stateHeaderSize = 1 + 1 + 4*4 + 4
	stateEntrySize  = 4 * 4
)

// SavedEntry is one cached placement in a SavedState.
type SavedEntry struct {
	Position int `json:"position"`
	Entry
}

// SavedState is the part of an engine that survives the container being torn
// down: the grid shape the entries were computed for, the anchor to jump
// back to, and every cached placement.
type SavedState struct {
	Orientation lanes.Orientation `json:"orientation"`
	LaneCount   int               `json:"lane_count"`
	LaneSize    int               `json:"lane_size"`

	// AnchorPosition and AnchorOffset are the first attached position and the
	// main-axis offset of its frame when the state was saved.
	AnchorPosition int `json:"anchor_position"`
	AnchorOffset   int `json:"anchor_offset"`

	Entries []SavedEntry `json:"entries"`
}

// SavedState captures the engine's entries and its current anchor. With
// nothing attached the anchor is position 0 at offset 0.
func (e *Engine) SavedState() SavedState {
	s := SavedState{
		Orientation: e.cfg.Orientation,
		LaneCount:   e.lanes.Count(),
		LaneSize:    e.lanes.LaneSize(),
	}
	if first, _, ok := e.AttachedRange(); ok {
		s.AnchorPosition = first
		s.AnchorOffset = e.cfg.Orientation.MainStart(e.attached[first].item.Frame)
	}
	for _, pos := range e.entries.Positions() {
		entry, _ := e.entries.Get(pos)
		s.Entries = append(s.Entries, SavedEntry{Position: pos, Entry: entry})
	}
	return s
}

// Restore loads the entries of s into the engine's cache. Positions that are
// already cached keep their entry. The state must have been saved from a
// grid with the same orientation and lane count.
func (e *Engine) Restore(s SavedState) error {
	if s.Orientation != e.cfg.Orientation || s.LaneCount != e.lanes.Count() {
		return errs.New(errs.ErrCodeInvalidState,
			"state was saved for %d %s lanes, grid has %d %s lanes",
			s.LaneCount, s.Orientation, e.lanes.Count(), e.cfg.Orientation)
	}
	if err := s.Validate(); err != nil {
		return err
	}
	for _, se := range s.Entries {
		e.entries.Put(se.Position, se.Entry)
	}
	e.logger.Debug("restored state", "entries", len(s.Entries), "anchor", s.AnchorPosition)
	return nil
}

// Validate checks that every entry fits the grid the state describes.
func (s SavedState) Validate() error {
	if s.LaneCount < 1 || s.LaneSize < 1 {
		return errs.New(errs.ErrCodeInvalidState, "invalid grid %d lanes of %d", s.LaneCount, s.LaneSize)
	}
	if s.AnchorPosition < 0 {
		return errs.New(errs.ErrCodeInvalidState, "negative anchor position %d", s.AnchorPosition)
	}
	for _, se := range s.Entries {
		span := se.Span(s.Orientation)
		if se.Position < 0 || se.ColSpan < 1 || se.RowSpan < 1 || se.Lane < 0 || se.Lane+span > s.LaneCount {
			return errs.New(errs.ErrCodeInvalidState,
				"entry for position %d (lane %d, span %dx%d) does not fit %d lanes",
				se.Position, se.Lane, se.ColSpan, se.RowSpan, s.LaneCount)
		}
	}
	return nil
}

// MarshalBinary encodes s as a version byte, an orientation byte, the lane
// count, lane size, anchor position, anchor offset and entry count, followed
// by position, lane, column span and row span per entry. Integers are
// big-endian and 32 bits wide.
func (s SavedState) MarshalBinary() ([]byte, error) {
	b := make([]byte, 0, stateHeaderSize+len(s.Entries)*stateEntrySize)
	b = append(b, savedStateVersion, byte(s.Orientation))
	b = binary.BigEndian.AppendUint32(b, uint32(int32(s.LaneCount)))
	b = binary.BigEndian.AppendUint32(b, uint32(int32(s.LaneSize)))
	b = binary.BigEndian.AppendUint32(b, uint32(int32(s.AnchorPosition)))
	b = binary.BigEndian.AppendUint32(b, uint32(int32(s.AnchorOffset)))
	b = binary.BigEndian.AppendUint32(b, uint32(len(s.Entries)))
	for _, se := range s.Entries {
		for _, v := range [...]int{se.Position, se.Lane, se.ColSpan, se.RowSpan} {
			b = binary.BigEndian.AppendUint32(b, uint32(int32(v)))
		}
	}
	return b, nil
}

// UnmarshalBinary decodes data written by MarshalBinary and validates it.
func (s *SavedState) UnmarshalBinary(data []byte) error {
	if len(data) < stateHeaderSize {
		return errs.New(errs.ErrCodeInvalidState, "saved state too short: %d bytes", len(data))
	}
	if data[0] != savedStateVersion {
		return errs.New(errs.ErrCodeInvalidState, "unsupported saved state version %d", data[0])
	}
	o := lanes.Orientation(data[1])
	if o != lanes.Vertical && o != lanes.Horizontal {
		return errs.New(errs.ErrCodeInvalidOrientation, "invalid orientation byte %d", data[1])
	}

	r := reader{buf: data[2:]}
	out := SavedState{
		Orientation:    o,
		LaneCount:      r.int(),
		LaneSize:       r.int(),
		AnchorPosition: r.int(),
		AnchorOffset:   r.int(),
	}
	n := int(binary.BigEndian.Uint32(r.next()))
	if want := stateHeaderSize + n*stateEntrySize; len(data) != want {
		return errs.New(errs.ErrCodeInvalidState, "saved state has %d bytes, want %d for %d entries", len(data), want, n)
	}
	out.Entries = make([]SavedEntry, n)
	for i := range out.Entries {
		out.Entries[i] = SavedEntry{
			Position: r.int(),
			Entry:    Entry{Lane: r.int(), ColSpan: r.int(), RowSpan: r.int()},
		}
	}
	if err := out.Validate(); err != nil {
		return err
	}
	*s = out
	return nil
}

func (s SavedState) String() string {
	return fmt.Sprintf("%s grid, %d lanes of %d, %d entries, anchor %d@%d",
		s.Orientation, s.LaneCount, s.LaneSize, len(s.Entries), s.AnchorPosition, s.AnchorOffset)
}

// reader walks big-endian 32-bit words. Callers check the length up front.
type reader struct {
	buf []byte
}

func (r *reader) next() []byte {
	w := r.buf[:4]
	r.buf = r.buf[4:]
	return w
}

func (r *reader) int() int {
	return int(int32(binary.BigEndian.Uint32(r.next())))
}
