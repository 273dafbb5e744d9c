// Package service exposes operational introspection and controls
package service

import (
	"time"

	"sleuth/internal/platform/cache"
	"sleuth/internal/platform/metrics"
	"sleuth/internal/platform/queue"
	"sleuth/internal/services/detect/domain"
)

// MetricsSummary is the aggregate operational view
type MetricsSummary struct {
	TotalRequests   int            `json:"total_requests"`
	SuccessRate     float64        `json:"success_rate"`
	AvgProcessingMs float64        `json:"avg_processing_ms"`
	Queue           queue.Snapshot `json:"queue"`
	Cache           cache.Stats    `json:"cache"`
	UptimeSeconds   int64          `json:"uptime_seconds"`
}

// ClearResult reports how many entries an operator wiped
type ClearResult struct {
	Cleared int `json:"cleared"`
}

// Svc implements the admin workflows against the live engine internals
type Svc struct {
	queue *queue.Queue
	cache *cache.Cache[domain.ResultSet]
	rec   *metrics.Recorder

	started time.Time
	now     func() time.Time
}

// New constructs an admin service
func New(q *queue.Queue, c *cache.Cache[domain.ResultSet], rec *metrics.Recorder) *Svc {
	if q == nil || c == nil || rec == nil {
		panic("admin.Service requires queue, cache and recorder")
	}
	return &Svc{queue: q, cache: c, rec: rec, started: time.Now(), now: time.Now}
}

// Metrics summarizes request counts, success rate and latency.
// Success rate is computed per sample so each tag combination counts once
func (s *Svc) Metrics() MetricsSummary {
	total := int(s.rec.Aggregate("analysis.requests", metrics.OpCount))

	rate := 0.0
	if total > 0 {
		successes := s.rec.CountWhere("analysis.requests", map[string]string{"status": "success"})
		rate = float64(successes) / float64(total) * 100
	}

	return MetricsSummary{
		TotalRequests:   total,
		SuccessRate:     rate,
		AvgProcessingMs: s.rec.Aggregate("analysis.processing_time", metrics.OpAvg),
		Queue:           s.queue.Snapshot(),
		Cache:           s.cache.Stats(),
		UptimeSeconds:   int64(s.now().Sub(s.started) / time.Second),
	}
}

// QueueStatus returns the live queue snapshot
func (s *Svc) QueueStatus() queue.Snapshot { return s.queue.Snapshot() }

// CacheStats returns the live cache counters
func (s *Svc) CacheStats() cache.Stats { return s.cache.Stats() }

// ClearCache drops all cached result sets, counters survive
func (s *Svc) ClearCache() ClearResult { return ClearResult{Cleared: s.cache.Clear()} }

// ClearQueue cancels all pending jobs; waiters get an unavailable error
func (s *Svc) ClearQueue() ClearResult { return ClearResult{Cleared: s.queue.Clear()} }

// ResetMetrics wipes every recorded series
func (s *Svc) ResetMetrics() { s.rec.Reset() }
