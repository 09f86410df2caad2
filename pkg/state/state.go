// Package state persists saved grid states so a layout can be resumed at the
// position it was left.
//
// A [Snapshot] wraps a grid.SavedState with the manifest it belongs to and an
// expiry. Snapshots are identified by a random UUID. Two backends are
// provided:
//   - [FileStore] keeps one file per snapshot, for the CLI;
//   - [RedisStore] shares snapshots between API servers.
package state

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	errs "github.com/matzehuels/spangrid/pkg/errors"
	"github.com/matzehuels/spangrid/pkg/grid"
)

// ErrNotFound is returned when a snapshot does not exist or has expired.
var ErrNotFound = errors.New("state not found")

// DefaultTTL is how long a snapshot is kept unless the caller says otherwise.
const DefaultTTL = 30 * 24 * time.Hour

// Snapshot is a saved grid state together with what it was computed from.
type Snapshot struct {
	ID           string          `json:"id"`
	Manifest     string          `json:"manifest"`
	ManifestHash string          `json:"manifest_hash"`
	State        grid.SavedState `json:"state"`
	CreatedAt    time.Time       `json:"created_at"`
	ExpiresAt    time.Time       `json:"expires_at"`
}

// New creates a snapshot with a fresh ID that expires after ttl.
func New(manifest, manifestHash string, s grid.SavedState, ttl time.Duration) *Snapshot {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	now := time.Now().UTC()
	return &Snapshot{
		ID:           uuid.NewString(),
		Manifest:     manifest,
		ManifestHash: manifestHash,
		State:        s,
		CreatedAt:    now,
		ExpiresAt:    now.Add(ttl),
	}
}

// IsExpired reports whether the snapshot has passed its expiry.
func (s *Snapshot) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// Store is implemented by snapshot backends.
type Store interface {
	// Get returns the snapshot with id. It returns an error matching
	// ErrNotFound when the snapshot is missing or expired.
	Get(ctx context.Context, id string) (*Snapshot, error)

	// Set stores s, replacing any snapshot with the same ID.
	Set(ctx context.Context, s *Snapshot) error

	// Delete removes the snapshot with id. Deleting a missing snapshot is
	// not an error.
	Delete(ctx context.Context, id string) error

	// List returns the stored snapshots, oldest first.
	List(ctx context.Context) ([]*Snapshot, error)

	Close() error
}

// ValidateID checks that id is a snapshot ID issued by New.
func ValidateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return errs.Wrap(errs.ErrCodeInvalidInput, err, "invalid state id %q", id)
	}
	return nil
}

func notFound(id string) error {
	return errs.Wrap(errs.ErrCodeStateNotFound, ErrNotFound, "state %s", id)
}
