package state

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/matzehuels/spangrid/pkg/grid"
)

// record is the stored form of a Snapshot. The grid state is kept in its
// binary encoding so every backend stores the same bytes.
type record struct {
	ID           string    `json:"id"`
	Manifest     string    `json:"manifest"`
	ManifestHash string    `json:"manifest_hash"`
	State        []byte    `json:"state"`
	CreatedAt    time.Time `json:"created_at"`
	ExpiresAt    time.Time `json:"expires_at"`
}

func encode(s *Snapshot) ([]byte, error) {
	state, err := s.State.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("encode grid state: %w", err)
	}
	return json.MarshalIndent(record{
		ID:           s.ID,
		Manifest:     s.Manifest,
		ManifestHash: s.ManifestHash,
		State:        state,
		CreatedAt:    s.CreatedAt,
		ExpiresAt:    s.ExpiresAt,
	}, "", "  ")
}

func decode(data []byte) (*Snapshot, error) {
	var r record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parse snapshot: %w", err)
	}
	var gs grid.SavedState
	if err := gs.UnmarshalBinary(r.State); err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", r.ID, err)
	}
	return &Snapshot{
		ID:           r.ID,
		Manifest:     r.Manifest,
		ManifestHash: r.ManifestHash,
		State:        gs,
		CreatedAt:    r.CreatedAt,
		ExpiresAt:    r.ExpiresAt,
	}, nil
}
