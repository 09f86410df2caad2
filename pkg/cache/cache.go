// Package cache stores computed layouts so repeated runs over the same
// manifest and options can skip the engine.
//
// Three backends are provided: [FileCache] for the CLI, [RedisCache] for a
// shared deployment of the HTTP API, and [NullCache] when caching is off.
// Keys come from a [Keyer] so callers never build them by hand.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with optional expiry.
type Cache interface {
	// Get returns the value for key and whether it was found. A missing or
	// expired key is a miss, not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero keeps it until deleted.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	Close() error
}

// Default lifetimes for cached values.
const (
	TTLLayout = 7 * 24 * time.Hour
	TTLJump   = 24 * time.Hour
)

// LayoutKeyOpts are the options that change the result of a layout run.
type LayoutKeyOpts struct {
	Orientation string `json:"orientation"`
	Lanes       int    `json:"lanes"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	All         bool   `json:"all,omitempty"`
}

// JumpKeyOpts are the extra options of a jump run.
type JumpKeyOpts struct {
	LayoutKeyOpts
	Target int `json:"target"`
	Offset int `json:"offset"`
}

// Keyer builds cache keys.
type Keyer interface {
	// LayoutKey returns the key of a layout computed from the manifest with
	// the given content hash.
	LayoutKey(manifestHash string, opts LayoutKeyOpts) string

	// JumpKey returns the key of a jump computed from the manifest with the
	// given content hash.
	JumpKey(manifestHash string, opts JumpKeyOpts) string
}

// DefaultKeyer hashes the options into the key.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the keyer used unless a caller scopes keys.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

func (DefaultKeyer) LayoutKey(manifestHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", manifestHash, opts)
}

func (DefaultKeyer) JumpKey(manifestHash string, opts JumpKeyOpts) string {
	return hashKey("jump", manifestHash, opts)
}
