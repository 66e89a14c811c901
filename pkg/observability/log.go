package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks reports every event to a logger at debug level, and failures at
// error level. It implements all three hook interfaces.
type LogHooks struct {
	logger *log.Logger
}

// NewLogHooks returns hooks writing to logger.
func NewLogHooks(logger *log.Logger) *LogHooks {
	return &LogHooks{logger: logger.WithPrefix("hooks")}
}

func (h *LogHooks) done(msg string, err error, keyvals ...any) {
	if err != nil {
		h.logger.Error(msg, append(keyvals, "err", err)...)
		return
	}
	h.logger.Debug(msg, keyvals...)
}

func (h *LogHooks) OnLoadStart(_ context.Context, source string) {
	h.logger.Debug("load start", "source", source)
}

func (h *LogHooks) OnLoadComplete(_ context.Context, source string, vertices, edges int, d time.Duration, err error) {
	h.done("load complete", err, "source", source, "vertices", vertices, "edges", edges, "took", d)
}

func (h *LogHooks) OnBuildStart(_ context.Context, vertices int) {
	h.logger.Debug("build start", "vertices", vertices)
}

func (h *LogHooks) OnBuildComplete(_ context.Context, components int, d time.Duration, err error) {
	h.done("build complete", err, "components", components, "took", d)
}

func (h *LogHooks) OnExportStart(_ context.Context, formats []string) {
	h.logger.Debug("export start", "formats", formats)
}

func (h *LogHooks) OnExportComplete(_ context.Context, formats []string, artifacts int, d time.Duration, err error) {
	h.done("export complete", err, "formats", formats, "artifacts", artifacts, "took", d)
}

func (h *LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h *LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h *LogHooks) OnRequest(_ context.Context, method, route string) {
	h.logger.Debug("request", "method", method, "route", route)
}

func (h *LogHooks) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	h.logger.Info("response", "method", method, "route", route, "status", status, "took", d)
}

func (h *LogHooks) OnError(_ context.Context, method, route string, err error) {
	h.logger.Error("request failed", "method", method, "route", route, "err", err)
}

var (
	_ PipelineHooks = (*LogHooks)(nil)
	_ CacheHooks    = (*LogHooks)(nil)
	_ HTTPHooks     = (*LogHooks)(nil)
)
