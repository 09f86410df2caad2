package state

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/matzehuels/spangrid/pkg/cache"
)

// DefaultRedisPrefix namespaces snapshot keys.
const DefaultRedisPrefix = "spangrid:state:"

// RedisStore keeps snapshots in Redis with their expiry as the key TTL.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisStore connects to addr and checks that the server answers.
func NewRedisStore(ctx context.Context, addr string) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis at %s: %w", addr, err)
	}
	return NewRedisStoreFromClient(client, DefaultRedisPrefix), nil
}

// NewRedisStoreFromClient wraps an existing client. The store closes it on
// Close.
func NewRedisStoreFromClient(client redis.UniversalClient, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) key(id string) string { return s.prefix + id }

func (s *RedisStore) Get(ctx context.Context, id string) (*Snapshot, error) {
	if err := ValidateID(id); err != nil {
		return nil, err
	}
	var data []byte
	err := cache.RetryWithBackoff(ctx, func() error {
		v, err := s.client.Get(ctx, s.key(id)).Bytes()
		data = v
		return cache.ClassifyNetwork(err)
	})
	if errors.Is(err, redis.Nil) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("get state %s: %w", id, err)
	}
	return decode(data)
}

func (s *RedisStore) Set(ctx context.Context, snap *Snapshot) error {
	if err := ValidateID(snap.ID); err != nil {
		return err
	}
	ttl := time.Until(snap.ExpiresAt)
	if ttl <= 0 {
		return s.Delete(ctx, snap.ID)
	}
	data, err := encode(snap)
	if err != nil {
		return err
	}
	return cache.RetryWithBackoff(ctx, func() error {
		return cache.ClassifyNetwork(s.client.Set(ctx, s.key(snap.ID), data, ttl).Err())
	})
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := ValidateID(id); err != nil {
		return err
	}
	return cache.RetryWithBackoff(ctx, func() error {
		return cache.ClassifyNetwork(s.client.Del(ctx, s.key(id)).Err())
	})
}

// List scans the key space under the store's prefix.
func (s *RedisStore) List(ctx context.Context) ([]*Snapshot, error) {
	var out []*Snapshot
	iter := s.client.Scan(ctx, 0, s.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		id := strings.TrimPrefix(iter.Val(), s.prefix)
		snap, err := s.Get(ctx, id)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, snap)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scan states: %w", err)
	}
	slices.SortFunc(out, func(a, b *Snapshot) int {
		return cmp.Compare(a.CreatedAt.UnixNano(), b.CreatedAt.UnixNano())
	})
	return out, nil
}

func (s *RedisStore) Close() error { return s.client.Close() }

var _ Store = (*RedisStore)(nil)
