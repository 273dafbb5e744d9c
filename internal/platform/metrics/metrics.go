// Package metrics is an in-process recorder for counters and timings.
// Samples live in per-series ring buffers for the lifetime of the process;
// nothing is exported, the admin surface reads aggregates on demand
package metrics

import (
	"sort"
	"strings"
	"sync"
	"time"
)

// DefaultCapacity bounds each series ring buffer
const DefaultCapacity = 1000

// Sample is a single recorded observation
type Sample struct {
	Name  string
	Value float64
	Tags  map[string]string
	At    time.Time
}

// AggregateOp selects how Aggregate folds matching samples
type AggregateOp string

const (
	OpSum   AggregateOp = "sum"
	OpAvg   AggregateOp = "avg"
	OpMin   AggregateOp = "min"
	OpMax   AggregateOp = "max"
	OpCount AggregateOp = "count"
)

type series struct {
	name    string
	tags    map[string]string
	samples []Sample // ring
	next    int
	full    bool
}

// Recorder collects samples keyed by metric name plus tag set.
// All methods are safe for concurrent use and never block on I/O
type Recorder struct {
	mu       sync.Mutex
	capacity int
	series   map[string]*series
	now      func() time.Time
}

// Option configures a Recorder
type Option func(*Recorder)

// WithCapacity overrides the per-series ring size
func WithCapacity(n int) Option {
	return func(r *Recorder) {
		if n > 0 {
			r.capacity = n
		}
	}
}

// WithNow overrides the clock, for tests
func WithNow(now func() time.Time) Option {
	return func(r *Recorder) { r.now = now }
}

// NewRecorder builds an empty recorder
func NewRecorder(opts ...Option) *Recorder {
	r := &Recorder{
		capacity: DefaultCapacity,
		series:   make(map[string]*series),
		now:      time.Now,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Record appends a sample to the series for name+tags, evicting the oldest
// sample once the ring is full
func (r *Recorder) Record(name string, value float64, tags map[string]string) {
	key := seriesKey(name, tags)

	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.series[key]
	if !ok {
		s = &series{
			name:    name,
			tags:    cloneTags(tags),
			samples: make([]Sample, r.capacity),
		}
		r.series[key] = s
	}

	s.samples[s.next] = Sample{Name: name, Value: value, Tags: s.tags, At: r.now()}
	s.next = (s.next + 1) % len(s.samples)
	if s.next == 0 {
		s.full = true
	}
}

// Incr records a counter-style sample of value 1
func (r *Recorder) Incr(name string, tags map[string]string) {
	r.Record(name, 1, tags)
}

// Timing records a duration sample in milliseconds
func (r *Recorder) Timing(name string, d time.Duration, tags map[string]string) {
	r.Record(name, float64(d)/float64(time.Millisecond), tags)
}

// Query returns the samples for an exact name+tags series, oldest first.
// A missing series yields an empty slice
func (r *Recorder) Query(name string, tags map[string]string) []Sample {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.series[seriesKey(name, tags)]
	if !ok {
		return nil
	}
	return s.ordered()
}

// Aggregate folds every sample whose metric name starts with prefix.
// An empty match set returns 0 for every op, including avg and min
func (r *Recorder) Aggregate(prefix string, op AggregateOp) float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	var (
		sum   float64
		n     int
		minV  float64
		maxV  float64
		first = true
	)
	for _, s := range r.series {
		if !strings.HasPrefix(s.name, prefix) {
			continue
		}
		for _, sm := range s.ordered() {
			sum += sm.Value
			n++
			if first || sm.Value < minV {
				minV = sm.Value
			}
			if first || sm.Value > maxV {
				maxV = sm.Value
			}
			first = false
		}
	}
	if n == 0 {
		return 0
	}

	switch op {
	case OpSum:
		return sum
	case OpAvg:
		return sum / float64(n)
	case OpMin:
		return minV
	case OpMax:
		return maxV
	case OpCount:
		return float64(n)
	default:
		return 0
	}
}

// CountWhere counts samples of the named metric whose tags contain every
// key/value pair in subset. Extra tags on the series are ignored
func (r *Recorder) CountWhere(name string, subset map[string]string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	total := 0
	for _, s := range r.series {
		if s.name != name || !tagsContain(s.tags, subset) {
			continue
		}
		if s.full {
			total += len(s.samples)
		} else {
			total += s.next
		}
	}
	return total
}

// Reset drops every series
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.series = make(map[string]*series)
}

// SeriesCount reports how many distinct name+tag series exist
func (r *Recorder) SeriesCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.series)
}

func (s *series) ordered() []Sample {
	if !s.full {
		out := make([]Sample, s.next)
		copy(out, s.samples[:s.next])
		return out
	}
	out := make([]Sample, 0, len(s.samples))
	out = append(out, s.samples[s.next:]...)
	out = append(out, s.samples[:s.next]...)
	return out
}

func seriesKey(name string, tags map[string]string) string {
	if len(tags) == 0 {
		return name
	}
	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(name)
	for _, k := range keys {
		b.WriteByte('|')
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(tags[k])
	}
	return b.String()
}

func cloneTags(tags map[string]string) map[string]string {
	if len(tags) == 0 {
		return nil
	}
	out := make(map[string]string, len(tags))
	for k, v := range tags {
		out[k] = v
	}
	return out
}

func tagsContain(tags, subset map[string]string) bool {
	for k, v := range subset {
		if tags[k] != v {
			return false
		}
	}
	return true
}
