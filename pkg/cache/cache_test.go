package cache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}
	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit || data != nil {
		t.Errorf("NullCache.Get = (%q, %v), want miss", data, hit)
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(filepath.Join(t.TempDir(), "layouts"))
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}

	if _, hit, err := c.Get(ctx, "missing"); hit || err != nil {
		t.Errorf("Get(missing) = hit %v, err %v; want miss", hit, err)
	}

	if err := c.Set(ctx, "k", []byte(`{"lanes":3}`), time.Hour); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	data, hit, err := c.Get(ctx, "k")
	if err != nil || !hit {
		t.Fatalf("Get(k) = hit %v, err %v; want hit", hit, err)
	}
	if string(data) != `{"lanes":3}` {
		t.Errorf("Get(k) = %s", data)
	}

	if err := c.Delete(ctx, "k"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Errorf("Delete of missing key error: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("Get after Delete should miss")
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}

	if err := c.Set(ctx, "old", []byte("x"), time.Nanosecond); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	time.Sleep(time.Millisecond)
	if _, hit, _ := c.Get(ctx, "old"); hit {
		t.Error("expired entry should miss")
	}
	if _, err := os.Stat(c.path("old")); !os.IsNotExist(err) {
		t.Error("expired entry should be removed from disk")
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}
	if err := c.Set(ctx, "k", []byte("x"), 0); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	if err := os.WriteFile(c.path("k"), []byte("not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, hit, err := c.Get(ctx, "k"); hit || err != nil {
		t.Errorf("corrupt entry: hit %v, err %v; want miss", hit, err)
	}
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}
	for _, k := range []string{"a", "b", "c"} {
		if err := c.Set(ctx, k, []byte(k), 0); err != nil {
			t.Fatalf("Set(%s) error: %v", k, err)
		}
	}

	n, err := c.Clear()
	if err != nil {
		t.Fatalf("Clear error: %v", err)
	}
	if n != 3 {
		t.Errorf("Clear removed %d entries, want 3", n)
	}
	if _, hit, _ := c.Get(ctx, "a"); hit {
		t.Error("Get after Clear should miss")
	}
}

func TestHash(t *testing.T) {
	h1, h2, h3 := Hash([]byte("hello")), Hash([]byte("hello")), Hash([]byte("world"))
	if h1 != h2 {
		t.Error("Hash should be deterministic")
	}
	if h1 == h3 {
		t.Error("different inputs should hash differently")
	}
	if len(h1) != 64 {
		t.Errorf("Hash length = %d, want 64", len(h1))
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()
	base := LayoutKeyOpts{Orientation: "vertical", Lanes: 3, Width: 300, Height: 600}

	tests := []struct {
		name string
		a, b string
		same bool
	}{
		{name: "same options", a: k.LayoutKey("m1", base), b: k.LayoutKey("m1", base), same: true},
		{name: "different manifest", a: k.LayoutKey("m1", base), b: k.LayoutKey("m2", base)},
		{name: "different lanes", a: k.LayoutKey("m1", base), b: k.LayoutKey("m1", LayoutKeyOpts{Orientation: "vertical", Lanes: 4, Width: 300, Height: 600})},
		{name: "different target", a: k.JumpKey("m1", JumpKeyOpts{LayoutKeyOpts: base, Target: 3}), b: k.JumpKey("m1", JumpKeyOpts{LayoutKeyOpts: base, Target: 4})},
		{name: "jump vs layout", a: k.LayoutKey("m1", base), b: k.JumpKey("m1", JumpKeyOpts{LayoutKeyOpts: base})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if (tt.a == tt.b) != tt.same {
				t.Errorf("keys %q and %q: same = %v, want %v", tt.a, tt.b, tt.a == tt.b, tt.same)
			}
		})
	}

	if key := k.LayoutKey("m1", base); !strings.HasPrefix(key, "layout:") {
		t.Errorf("LayoutKey = %q, want layout: prefix", key)
	}
}

func TestScopedKeyer(t *testing.T) {
	scoped := NewScopedKeyer(nil, "staging:")
	key := scoped.JumpKey("m1", JumpKeyOpts{Target: 2})
	if !strings.HasPrefix(key, "staging:jump:") {
		t.Errorf("JumpKey = %q, want staging:jump: prefix", key)
	}
	if want := "staging:" + NewDefaultKeyer().LayoutKey("m1", LayoutKeyOpts{}); scoped.LayoutKey("m1", LayoutKeyOpts{}) != want {
		t.Errorf("LayoutKey = %q, want %q", scoped.LayoutKey("m1", LayoutKeyOpts{}), want)
	}
}

func TestRetryableError(t *testing.T) {
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should return nil")
	}
	err := Retryable(ErrNetwork)
	if !IsRetryable(err) {
		t.Error("IsRetryable should report wrapped errors")
	}
	if !errors.Is(err, ErrNetwork) {
		t.Error("wrapped error should unwrap to ErrNetwork")
	}
	if IsRetryable(errors.New("plain")) {
		t.Error("plain errors are not retryable")
	}
}

func TestRetryWithBackoff(t *testing.T) {
	old := backoff
	backoff = time.Millisecond
	t.Cleanup(func() { backoff = old })

	ctx := context.Background()
	plain := errors.New("plain")

	tests := []struct {
		name      string
		failures  int
		err       error
		wantCalls int
		wantErr   error
	}{
		{name: "success", wantCalls: 1},
		{name: "non-retryable stops", failures: 5, err: plain, wantCalls: 1, wantErr: plain},
		{name: "retry then succeed", failures: 1, err: Retryable(ErrNetwork), wantCalls: 2},
		{name: "gives up after three", failures: 5, err: Retryable(ErrNetwork), wantCalls: 3, wantErr: ErrNetwork},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := RetryWithBackoff(ctx, func() error {
				calls++
				if calls <= tt.failures {
					return tt.err
				}
				return nil
			})
			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
			if tt.wantErr == nil && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRetryWithBackoffContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := RetryWithBackoff(ctx, func() error { return Retryable(ErrNetwork) })
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestClassifyNetwork(t *testing.T) {
	if err := ClassifyNetwork(nil); err != nil {
		t.Errorf("ClassifyNetwork(nil) = %v", err)
	}
	if err := ClassifyNetwork(redis.Nil); err != redis.Nil {
		t.Errorf("ClassifyNetwork(redis.Nil) = %v, want redis.Nil", err)
	}
	if err := ClassifyNetwork(timeoutErr{}); !IsRetryable(err) || !errors.Is(err, ErrNetwork) {
		t.Errorf("ClassifyNetwork(timeout) = %v, want retryable network error", err)
	}
	if err := ClassifyNetwork(errors.New("WRONGTYPE")); IsRetryable(err) {
		t.Errorf("ClassifyNetwork(server error) = %v, should not retry", err)
	}
}
