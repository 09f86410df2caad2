package state

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	errs "github.com/matzehuels/spangrid/pkg/errors"
	"github.com/matzehuels/spangrid/pkg/grid"
	"github.com/matzehuels/spangrid/pkg/lanes"
)

func sampleState() grid.SavedState {
	return grid.SavedState{
		Orientation:    lanes.Vertical,
		LaneCount:      3,
		LaneSize:       100,
		AnchorPosition: 4,
		AnchorOffset:   -20,
		Entries: []grid.SavedEntry{
			{Position: 0, Entry: grid.Entry{Lane: 0, ColSpan: 2, RowSpan: 1}},
			{Position: 1, Entry: grid.Entry{Lane: 2, ColSpan: 1, RowSpan: 2}},
		},
	}
}

func newStore(t *testing.T) *FileStore {
	t.Helper()
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore() error: %v", err)
	}
	return s
}

func TestNew(t *testing.T) {
	snap := New("gallery.toml", "abc", sampleState(), 0)
	if err := ValidateID(snap.ID); err != nil {
		t.Errorf("New() produced invalid id %q: %v", snap.ID, err)
	}
	if got := snap.ExpiresAt.Sub(snap.CreatedAt); got != DefaultTTL {
		t.Errorf("default ttl = %v, want %v", got, DefaultTTL)
	}
	if snap.IsExpired() {
		t.Error("new snapshot should not be expired")
	}
	if other := New("gallery.toml", "abc", sampleState(), time.Hour); other.ID == snap.ID {
		t.Error("snapshot ids should be unique")
	}
}

func TestCodecRoundTrip(t *testing.T) {
	snap := New("gallery.toml", "abc", sampleState(), time.Hour)
	data, err := encode(snap)
	if err != nil {
		t.Fatalf("encode() error: %v", err)
	}
	got, err := decode(data)
	if err != nil {
		t.Fatalf("decode() error: %v", err)
	}
	if diff := cmp.Diff(snap, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeRejectsBadState(t *testing.T) {
	if _, err := decode([]byte(`{"id":"x","state":"AQ=="}`)); !errs.Is(err, errs.ErrCodeInvalidState) {
		t.Errorf("decode() error = %v, want %s", err, errs.ErrCodeInvalidState)
	}
	if _, err := decode([]byte(`not json`)); err == nil {
		t.Error("decode() should reject invalid JSON")
	}
}

func TestFileStore(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	snap := New("gallery.toml", "abc", sampleState(), time.Hour)

	if err := s.Set(ctx, snap); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	got, err := s.Get(ctx, snap.ID)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if diff := cmp.Diff(snap, got); diff != "" {
		t.Errorf("Get() mismatch (-want +got):\n%s", diff)
	}

	if err := s.Delete(ctx, snap.ID); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if _, err := s.Get(ctx, snap.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() after Delete error = %v, want ErrNotFound", err)
	}
	if err := s.Delete(ctx, snap.ID); err != nil {
		t.Errorf("Delete() of missing snapshot error: %v", err)
	}
}

func TestFileStoreNotFound(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	_, err := s.Get(ctx, New("", "", sampleState(), 0).ID)
	if !errors.Is(err, ErrNotFound) || !errs.Is(err, errs.ErrCodeStateNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound with %s", err, errs.ErrCodeStateNotFound)
	}
}

func TestFileStoreInvalidID(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	for _, id := range []string{"", "../../etc/passwd", "not-a-uuid"} {
		if _, err := s.Get(ctx, id); !errs.Is(err, errs.ErrCodeInvalidInput) {
			t.Errorf("Get(%q) error = %v, want %s", id, err, errs.ErrCodeInvalidInput)
		}
	}
}

func TestFileStoreExpired(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	snap := New("gallery.toml", "abc", sampleState(), time.Hour)
	snap.ExpiresAt = time.Now().Add(-time.Minute)
	if err := s.Set(ctx, snap); err != nil {
		t.Fatalf("Set() error: %v", err)
	}

	if _, err := s.Get(ctx, snap.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
	if _, err := os.Stat(s.path(snap.ID)); !os.IsNotExist(err) {
		t.Error("expired snapshot should be removed")
	}
}

func TestFileStoreList(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	first := New("a.toml", "a", sampleState(), time.Hour)
	second := New("b.toml", "b", sampleState(), time.Hour)
	second.CreatedAt = first.CreatedAt.Add(time.Second)
	expired := New("c.toml", "c", sampleState(), time.Hour)
	expired.ExpiresAt = time.Now().Add(-time.Minute)

	for _, snap := range []*Snapshot{second, expired, first} {
		if err := s.Set(ctx, snap); err != nil {
			t.Fatalf("Set() error: %v", err)
		}
	}
	if err := os.WriteFile(s.path("garbage"), []byte("{"), 0o600); err != nil {
		t.Fatal(err)
	}

	got, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	var ids []string
	for _, snap := range got {
		ids = append(ids, snap.ID)
	}
	if diff := cmp.Diff([]string{first.ID, second.ID}, ids); diff != "" {
		t.Errorf("List() ids mismatch (-want +got):\n%s", diff)
	}
}

func TestRedisStoreKey(t *testing.T) {
	s := NewRedisStoreFromClient(nil, DefaultRedisPrefix)
	if got := s.key("abc"); got != "spangrid:state:abc" {
		t.Errorf("key() = %q", got)
	}
	if _, err := s.Get(context.Background(), "bad id"); !errs.Is(err, errs.ErrCodeInvalidInput) {
		t.Errorf("Get() with invalid id error = %v, want %s", err, errs.ErrCodeInvalidInput)
	}
}
