// Package http provides http transport for the admin surface
package http

import (
	stdhttp "net/http"

	"sleuth/internal/modkit/httpkit"
	svc "sleuth/internal/services/admin/service"
)

// Register mounts admin endpoints on the given router
func Register(r httpkit.Router, s *svc.Svc) {
	h := &handlers{svc: s}

	httpkit.Get(r, "/metrics", h.metrics)
	httpkit.Get(r, "/queue", h.queueStatus)
	httpkit.Get(r, "/cache", h.cacheStats)

	httpkit.Post(r, "/cache/clear", h.clearCache)
	httpkit.Post(r, "/queue/clear", h.clearQueue)
	httpkit.Post(r, "/metrics/reset", h.resetMetrics)
}

type handlers struct{ svc *svc.Svc }

func (h *handlers) metrics(*stdhttp.Request) (any, error) {
	return h.svc.Metrics(), nil
}

func (h *handlers) queueStatus(*stdhttp.Request) (any, error) {
	return h.svc.QueueStatus(), nil
}

func (h *handlers) cacheStats(*stdhttp.Request) (any, error) {
	return h.svc.CacheStats(), nil
}

func (h *handlers) clearCache(*stdhttp.Request) (any, error) {
	return h.svc.ClearCache(), nil
}

func (h *handlers) clearQueue(*stdhttp.Request) (any, error) {
	return h.svc.ClearQueue(), nil
}

func (h *handlers) resetMetrics(*stdhttp.Request) (any, error) {
	h.svc.ResetMetrics()
	return httpkit.NoContent(), nil
}
