package service

import (
	"context"
	"math/rand"
	"sync"
	"testing"
	"time"

	"sleuth/internal/platform/cache"
	"sleuth/internal/platform/errors"
	"sleuth/internal/platform/metrics"
	"sleuth/internal/platform/queue"
	"sleuth/internal/services/detect/domain"
)

// stubCompleter counts calls and delegates to fn
type stubCompleter struct {
	mu    sync.Mutex
	calls int
	fn    func(ctx context.Context, prompt string) (string, error)
}

func (s *stubCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	return s.fn(ctx, prompt)
}

func (s *stubCompleter) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func okCompleter() *stubCompleter {
	return &stubCompleter{fn: func(context.Context, string) (string, error) {
		return `{"is_ai_generated": true, "confidence": 87.5, "reasoning": "uniform phrasing"}`, nil
	}}
}

func failCompleter() *stubCompleter {
	return &stubCompleter{fn: func(context.Context, string) (string, error) {
		return "", errors.Unavailablef("analyzer down")
	}}
}

type engineFixture struct {
	engine *Engine
	comp   *stubCompleter
	cache  *cache.Cache[domain.ResultSet]
	queue  *queue.Queue
	rec    *metrics.Recorder
}

func newFixture(comp *stubCompleter, opts ...EngineOption) engineFixture {
	c := cache.New[domain.ResultSet]()
	q := queue.New(queue.WithConcurrency(3))
	rec := metrics.NewRecorder()
	mock := NewMock(WithRand(rand.New(rand.NewSource(1))), WithSleep(noSleep))

	all := append([]EngineOption{WithRetrySleep(noSleep)}, opts...)
	e := NewEngine(comp, mock, c, q, rec, all...)
	return engineFixture{engine: e, comp: comp, cache: c, queue: q, rec: rec}
}

func intPtr(v int) *int    { return &v }
func boolPtr(v bool) *bool { return &v }

func TestAnalyzeTextSuccessViaQueue(t *testing.T) {
	f := newFixture(okCompleter())

	rs, err := f.engine.AnalyzeText(context.Background(), domain.TextPayload{Content: "is this written by a machine or a person, one wonders."}, nil)
	if err != nil {
		t.Fatalf("AnalyzeText: %v", err)
	}
	if len(rs) != 1 {
		t.Fatalf("got %d results, want 1", len(rs))
	}
	if rs[0].Provider != "llm-analyzer" || !rs[0].IsAIGenerated || rs[0].Confidence != 87.5 {
		t.Fatalf("unexpected result: %+v", rs[0])
	}
	if got := f.rec.CountWhere("analysis.requests", map[string]string{"status": "success"}); got != 1 {
		t.Fatalf("success count = %d, want 1", got)
	}
}

func TestFallbackGuarantee(t *testing.T) {
	f := newFixture(failCompleter())

	rs, err := f.engine.AnalyzeText(context.Background(), domain.TextPayload{Content: "plain human text about nothing in particular."}, nil)
	if err != nil {
		t.Fatalf("fallback must not surface the analyzer error, got %v", err)
	}
	if len(rs) == 0 {
		t.Fatalf("fallback must return heuristic results")
	}
	for _, r := range rs {
		if r.Provider == "llm-analyzer" {
			t.Fatalf("fallback results must come from pseudo providers, got %q", r.Provider)
		}
	}
	if got := f.rec.CountWhere("analysis.requests", map[string]string{"status": "error"}); got != 1 {
		t.Fatalf("error count = %d, want 1", got)
	}
}

func TestFailFastOptOut(t *testing.T) {
	f := newFixture(failCompleter())

	cfg := &domain.Config{MaxRetries: intPtr(0)}
	_, err := f.engine.AnalyzeText(context.Background(), domain.TextPayload{Content: "some text"}, cfg)
	if err == nil {
		t.Fatalf("MaxRetries=0 must surface the error")
	}
	if !errors.IsCode(err, errors.ErrorCodeUnavailable) {
		t.Fatalf("expected unavailable error, got %v", err)
	}
}

func TestCacheHitSkipsAnalyzer(t *testing.T) {
	f := newFixture(okCompleter())
	p := domain.TextPayload{Content: "hello world, this is a test"}

	first, err := f.engine.AnalyzeText(context.Background(), p, &domain.Config{CacheResults: boolPtr(true)})
	if err != nil {
		t.Fatalf("first call: %v", err)
	}
	second, err := f.engine.AnalyzeText(context.Background(), p, &domain.Config{CacheResults: boolPtr(true)})
	if err != nil {
		t.Fatalf("second call: %v", err)
	}

	if f.comp.callCount() != 1 {
		t.Fatalf("analyzer invoked %d times, want exactly 1", f.comp.callCount())
	}
	if len(first) != len(second) || first[0].RequestID != second[0].RequestID {
		t.Fatalf("cache hit must return the stored result set")
	}
	// cache hits are not requests for success-rate purposes
	if got := f.rec.Aggregate("analysis.requests", metrics.OpCount); got != 1 {
		t.Fatalf("request count = %f, want 1", got)
	}
}

func TestCacheDisabledCallsAnalyzerTwice(t *testing.T) {
	f := newFixture(okCompleter())
	p := domain.TextPayload{Content: "hello world, this is a test"}
	cfg := &domain.Config{CacheResults: boolPtr(false)}

	for i := 0; i < 2; i++ {
		if _, err := f.engine.AnalyzeText(context.Background(), p, cfg); err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
	}
	if f.comp.callCount() != 2 {
		t.Fatalf("analyzer invoked %d times, want 2", f.comp.callCount())
	}
}

func TestHighPriorityBypassesQueue(t *testing.T) {
	f := newFixture(okCompleter())

	_, err := f.engine.AnalyzeText(context.Background(), domain.TextPayload{Content: "urgent text"}, &domain.Config{Priority: domain.PriorityHigh})
	if err != nil {
		t.Fatalf("AnalyzeText: %v", err)
	}
	if snap := f.queue.Snapshot(); snap.Total != 0 {
		t.Fatalf("high priority must never touch the queue, total = %d", snap.Total)
	}
}

func TestTimeoutSurfaces(t *testing.T) {
	slow := &stubCompleter{fn: func(ctx context.Context, _ string) (string, error) {
		select {
		case <-time.After(time.Second):
			return `{"is_ai_generated": false, "confidence": 1}`, nil
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}}
	f := newFixture(slow)

	cfg := &domain.Config{Timeout: 10 * time.Millisecond, MaxRetries: intPtr(0)}
	start := time.Now()
	_, err := f.engine.AnalyzeText(context.Background(), domain.TextPayload{Content: "slow"}, cfg)
	elapsed := time.Since(start)

	if !errors.IsTimeout(err) {
		t.Fatalf("expected timeout error, got %v", err)
	}
	if elapsed > 200*time.Millisecond {
		t.Fatalf("timeout took %s, should fire near the configured 10ms", elapsed)
	}
}

func TestRetryBackoffSchedule(t *testing.T) {
	var mu sync.Mutex
	var delays []time.Duration

	f := newFixture(failCompleter(), WithRetrySleep(func(d time.Duration) {
		mu.Lock()
		delays = append(delays, d)
		mu.Unlock()
	}))

	cfg := &domain.Config{Priority: domain.PriorityHigh, MaxRetries: intPtr(0)}
	if _, err := f.engine.AnalyzeText(context.Background(), domain.TextPayload{Content: "x y z"}, cfg); err == nil {
		t.Fatalf("expected failure")
	}

	mu.Lock()
	defer mu.Unlock()
	want := []time.Duration{2 * time.Second, 4 * time.Second}
	if len(delays) != len(want) {
		t.Fatalf("backoff sleeps = %v, want %v", delays, want)
	}
	for i := range want {
		if delays[i] != want[i] {
			t.Fatalf("backoff sleeps = %v, want %v", delays, want)
		}
	}
	if f.comp.callCount() != 3 {
		t.Fatalf("analyzer attempts = %d, want 3", f.comp.callCount())
	}
}

func TestValidationRejectsBeforeQueue(t *testing.T) {
	f := newFixture(okCompleter())

	_, err := f.engine.AnalyzeText(context.Background(), domain.TextPayload{Content: "   "}, nil)
	if !errors.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if snap := f.queue.Snapshot(); snap.Total != 0 {
		t.Fatalf("validation failures must not reach the queue")
	}
	if f.comp.callCount() != 0 {
		t.Fatalf("validation failures must not reach the analyzer")
	}
}

func TestAnalyzeVideoDelegatesToHeuristics(t *testing.T) {
	f := newFixture(okCompleter())

	rs, err := f.engine.AnalyzeVideo(context.Background(), domain.VideoPayload{
		FileURL:         "https://cdn.example.com/clip.mp4",
		DurationSeconds: 45,
	}, nil)
	if err != nil {
		t.Fatalf("AnalyzeVideo: %v", err)
	}
	if len(rs) == 0 {
		t.Fatalf("expected heuristic video results")
	}
	reqID := rs[0].RequestID
	for _, r := range rs {
		if r.RequestID != reqID {
			t.Fatalf("all results must share one request id")
		}
	}
	if f.comp.callCount() != 0 {
		t.Fatalf("video analysis must not call the text analyzer")
	}
	if got := f.rec.CountWhere("analysis.requests", map[string]string{"type": "video", "status": "success"}); got != 1 {
		t.Fatalf("video success count = %d, want 1", got)
	}
}

func TestAnalyzeVideoRejectsRelativeURL(t *testing.T) {
	f := newFixture(okCompleter())
	_, err := f.engine.AnalyzeVideo(context.Background(), domain.VideoPayload{FileURL: "uploads/clip.mp4"}, nil)
	if !errors.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestParseVerdictToleratesProse(t *testing.T) {
	v, err := parseVerdict("Sure! Here is the verdict:\n```json\n{\"is_ai_generated\": true, \"confidence\": 66, \"reasoning\": \"ok\"}\n```")
	if err != nil {
		t.Fatalf("parseVerdict: %v", err)
	}
	if !v.IsAIGenerated || v.Confidence != 66 {
		t.Fatalf("unexpected verdict: %+v", v)
	}

	if _, err := parseVerdict("no json here"); err == nil {
		t.Fatalf("expected parse failure")
	}
}
