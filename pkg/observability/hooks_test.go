package observability

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

type testLayoutHooks struct{ NoopLayoutHooks }
type testCacheHooks struct{ NoopCacheHooks }
type testHTTPHooks struct{ NoopHTTPHooks }

func TestRegistryDefaults(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	if _, ok := Layout().(NoopLayoutHooks); !ok {
		t.Errorf("Layout() = %T, want NoopLayoutHooks", Layout())
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Errorf("Cache() = %T, want NoopCacheHooks", Cache())
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Errorf("HTTP() = %T, want NoopHTTPHooks", HTTP())
	}
}

func TestRegistrySet(t *testing.T) {
	t.Cleanup(Reset)

	l, c, h := &testLayoutHooks{}, &testCacheHooks{}, &testHTTPHooks{}
	SetLayoutHooks(l)
	SetCacheHooks(c)
	SetHTTPHooks(h)

	if Layout() != l || Cache() != c || HTTP() != h {
		t.Fatal("registered hooks not returned")
	}

	SetLayoutHooks(nil)
	if Layout() != l {
		t.Error("SetLayoutHooks(nil) replaced registered hooks")
	}

	Reset()
	if _, ok := Layout().(NoopLayoutHooks); !ok {
		t.Error("Reset() did not restore layout hooks")
	}
}

func TestLogHooks(t *testing.T) {
	t.Cleanup(Reset)

	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})
	hooks := NewLogHooks(logger)
	hooks.Install()

	ctx := context.Background()
	Layout().OnPlace(4, 1, 2, true)
	Layout().OnUnplaceable(7, 3)
	Layout().OnRebuildStart(ctx, 12)
	Layout().OnRebuildComplete(ctx, 12, 11, time.Millisecond, nil)
	Layout().OnRebuildComplete(ctx, 12, 3, time.Millisecond, errors.New("boom"))
	Cache().OnCacheHit(ctx, "layout")
	Cache().OnCacheMiss(ctx, "jump")
	Cache().OnCacheSet(ctx, "layout", 512)
	HTTP().OnRequest(ctx, "POST", "/v1/layout")
	HTTP().OnResponse(ctx, "POST", "/v1/layout", 200, time.Second)

	out := buf.String()
	for _, want := range []string{
		"place", "unplaceable", "rebuild start", "rebuild complete", "rebuild failed",
		"cache hit", "cache miss", "cache set", "request", "response", "trace",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}

func TestLogHooksQuietAboveDebug(t *testing.T) {
	var buf bytes.Buffer
	hooks := NewLogHooks(log.NewWithOptions(&buf, log.Options{Level: log.InfoLevel}))
	hooks.OnPlace(0, 0, 1, false)
	hooks.OnCacheHit(context.Background(), "layout")

	if buf.Len() != 0 {
		t.Errorf("info-level logger wrote debug events: %q", buf.String())
	}
}
