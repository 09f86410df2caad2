package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks writes every event to a logger at debug level. It implements
// LayoutHooks, CacheHooks and HTTPHooks.
type LogHooks struct {
	Logger *log.Logger
}

// NewLogHooks returns hooks that log through l, or the default logger if l
// is nil.
func NewLogHooks(l *log.Logger) *LogHooks {
	if l == nil {
		l = log.Default()
	}
	return &LogHooks{Logger: l.WithPrefix("trace")}
}

// Install registers h for every event category.
func (h *LogHooks) Install() {
	SetLayoutHooks(h)
	SetCacheHooks(h)
	SetHTTPHooks(h)
}

func (h *LogHooks) OnPlace(position, lane, span int, cached bool) {
	h.Logger.Debug("place", "position", position, "lane", lane, "span", span, "cached", cached)
}

func (h *LogHooks) OnUnplaceable(position, span int) {
	h.Logger.Debug("unplaceable", "position", position, "span", span)
}

func (h *LogHooks) OnRebuildStart(_ context.Context, target int) {
	h.Logger.Debug("rebuild start", "target", target)
}

func (h *LogHooks) OnRebuildComplete(_ context.Context, target, replayed int, d time.Duration, err error) {
	if err != nil {
		h.Logger.Debug("rebuild failed", "target", target, "replayed", replayed, "elapsed", d, "err", err)
		return
	}
	h.Logger.Debug("rebuild complete", "target", target, "replayed", replayed, "elapsed", d)
}

func (h *LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.Logger.Debug("cache hit", "type", keyType)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.Logger.Debug("cache miss", "type", keyType)
}

func (h *LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.Logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h *LogHooks) OnRequest(_ context.Context, method, path string) {
	h.Logger.Debug("request", "method", method, "path", path)
}

func (h *LogHooks) OnResponse(_ context.Context, method, path string, status int, d time.Duration) {
	h.Logger.Debug("response", "method", method, "path", path, "status", status, "elapsed", d)
}
