// Package domain holds the detection types shared by strategies and transports
package domain

import (
	"time"
)

// Kind is the payload family an analysis request belongs to
type Kind string

const (
	// KindText is a text analysis request
	KindText Kind = "text"

	// KindVideo is a video analysis request
	KindVideo Kind = "video"
)

// Priorities accepted in Config.Priority
const (
	PriorityLow    = "low"
	PriorityNormal = "normal"
	PriorityHigh   = "high"
)

// Defaults applied when Config leaves a knob unset
const (
	DefaultTimeout    = 30 * time.Second
	DefaultMaxRetries = 3
)

// TextPayload is an inbound text analysis request
type TextPayload struct {
	Content     string
	Title       string
	Description string
	Metadata    map[string]any
	UserID      string
	RequestID   string
}

// VideoPayload is an inbound video analysis request
type VideoPayload struct {
	FileURL         string
	Title           string
	DurationSeconds float64
	Metadata        map[string]any
	UserID          string
	RequestID       string
}

// Result is one provider's verdict. Immutable once created
type Result struct {
	Provider      string         `json:"provider"`
	Confidence    float64        `json:"confidence"`
	IsAIGenerated bool           `json:"is_ai_generated"`
	Details       map[string]any `json:"details,omitempty"`
	ProcessingMs  int64          `json:"processing_time_ms"`
	Timestamp     time.Time      `json:"timestamp"`
	RequestID     string         `json:"request_id"`
}

// ResultSet is the ordered list of verdicts one analyze call produces
type ResultSet []Result

// CacheSize approximates the memory footprint of the set for cache stats
func (rs ResultSet) CacheSize() int {
	size := 0
	for _, r := range rs {
		size += 96 + len(r.Provider) + len(r.RequestID)
		for k, v := range r.Details {
			size += len(k) + 16
			if s, ok := v.(string); ok {
				size += len(s)
			}
		}
	}
	return size
}

// Config is the caller-supplied per request tuning.
// Zero values mean "use the default"; pointer fields distinguish unset from false/zero
type Config struct {
	CacheResults *bool
	Priority     string
	Timeout      time.Duration
	MaxRetries   *int
}

// CacheEnabled reports whether results should be read from and written to the cache
func (c *Config) CacheEnabled() bool {
	if c == nil || c.CacheResults == nil {
		return true
	}
	return *c.CacheResults
}

// EffectiveTimeout is the caller wait bound for queued analyses
func (c *Config) EffectiveTimeout() time.Duration {
	if c == nil || c.Timeout <= 0 {
		return DefaultTimeout
	}
	return c.Timeout
}

// EffectiveMaxRetries is the retry budget; 0 disables fallback and surfaces the error
func (c *Config) EffectiveMaxRetries() int {
	if c == nil || c.MaxRetries == nil {
		return DefaultMaxRetries
	}
	return *c.MaxRetries
}

// Inline reports whether the request skips the queue entirely
func (c *Config) Inline() bool {
	return c != nil && c.Priority == PriorityHigh
}

// QueuePriority maps the named priority to the queue's integer ordering
func (c *Config) QueuePriority() int {
	if c != nil && c.Priority == PriorityLow {
		return 0
	}
	return 1
}
