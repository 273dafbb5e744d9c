// Package service implements the detection strategies: the heuristic Mock and
// the Engine, which fronts the external analyzer with cache, queue, retry and
// fallback
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"sleuth/internal/core/fingerprint"
	"sleuth/internal/platform/cache"
	"sleuth/internal/platform/errors"
	"sleuth/internal/platform/logger"
	"sleuth/internal/platform/metrics"
	"sleuth/internal/platform/queue"
	"sleuth/internal/services/detect/domain"
)

// MaxTextChars bounds inbound text payloads
const MaxTextChars = 100_000

// DefaultCacheTTL is how long computed results stay valid
const DefaultCacheTTL = time.Hour

// jobPayload is what the engine puts on the queue
type jobPayload struct {
	Kind    domain.Kind
	Text    domain.TextPayload
	Video   domain.VideoPayload
	CacheOK bool
}

// Engine is the primary strategy. It consults the cache, decides inline vs
// queued execution, calls the external analyzer with retry, and degrades to
// the Mock strategy when the analyzer cannot answer
type Engine struct {
	completer domain.Completer
	mock      *Mock
	cache     *cache.Cache[domain.ResultSet]
	queue     *queue.Queue
	rec       *metrics.Recorder
	retry     retryPolicy
	provider  string
	cacheTTL  time.Duration
	log       *logger.Logger
}

// EngineOption configures an Engine
type EngineOption func(*Engine)

// WithProviderName sets the provider tag stamped on analyzer results
func WithProviderName(name string) EngineOption {
	return func(e *Engine) { e.provider = name }
}

// WithCacheTTL overrides how long computed results are cached
func WithCacheTTL(ttl time.Duration) EngineOption {
	return func(e *Engine) {
		if ttl > 0 {
			e.cacheTTL = ttl
		}
	}
}

// WithRetrySleep replaces the backoff sleep, for tests
func WithRetrySleep(fn func(time.Duration)) EngineOption {
	return func(e *Engine) { e.retry.sleep = fn }
}

// NewEngine wires the primary strategy and registers its queue handler
func NewEngine(
	completer domain.Completer,
	mock *Mock,
	c *cache.Cache[domain.ResultSet],
	q *queue.Queue,
	rec *metrics.Recorder,
	opts ...EngineOption,
) *Engine {
	e := &Engine{
		completer: completer,
		mock:      mock,
		cache:     c,
		queue:     q,
		rec:       rec,
		retry:     defaultRetryPolicy(),
		provider:  "llm-analyzer",
		cacheTTL:  DefaultCacheTTL,
		log:       logger.Named("detect.engine"),
	}
	for _, o := range opts {
		o(e)
	}
	q.SetHandler(e.handle)
	return e
}

var _ domain.Detector = (*Engine)(nil)

// AnalyzeText runs the full orchestration for a text payload
func (e *Engine) AnalyzeText(ctx context.Context, p domain.TextPayload, cfg *domain.Config) (domain.ResultSet, error) {
	if err := validateText(p); err != nil {
		return nil, err
	}

	key := fingerprint.Text(p.Content)
	if cfg.CacheEnabled() {
		if rs, ok := e.cache.Get(key); ok {
			e.log.Debug().Str("key", key).Msg("cache hit")
			return rs, nil
		}
	}

	rs, err := e.runText(ctx, p, cfg)
	if err != nil {
		e.rec.Incr("analysis.requests", map[string]string{
			"status":   "error",
			"type":     "text",
			"provider": e.provider,
		})
		if cfg.EffectiveMaxRetries() == 0 {
			return nil, err
		}
		e.log.Warn().Err(err).Msg("analyzer unavailable, falling back to heuristics")
		return e.mock.AnalyzeText(ctx, p, cfg)
	}
	return rs, nil
}

// AnalyzeVideo delegates to the heuristic strategy; there is no real video
// backend yet. Results get a fresh timestamp and request id so the contract
// matches text analysis
func (e *Engine) AnalyzeVideo(ctx context.Context, p domain.VideoPayload, cfg *domain.Config) (domain.ResultSet, error) {
	if err := validateVideo(p); err != nil {
		return nil, err
	}

	start := time.Now()
	rs, err := e.mock.AnalyzeVideo(ctx, p, cfg)
	if err != nil {
		e.rec.Incr("analysis.requests", map[string]string{
			"status":   "error",
			"type":     "video",
			"provider": "heuristic",
		})
		return nil, err
	}

	now := time.Now()
	reqID := requestID(p.RequestID)
	for i := range rs {
		rs[i].Timestamp = now
		rs[i].RequestID = reqID
	}

	e.rec.Timing("analysis.processing_time", time.Since(start), map[string]string{
		"provider": "heuristic",
		"type":     "video",
	})
	e.rec.Incr("analysis.requests", map[string]string{
		"status":   "success",
		"type":     "video",
		"provider": "heuristic",
	})
	return rs, nil
}

// runText picks the execution path: inline for high priority, queued otherwise
func (e *Engine) runText(ctx context.Context, p domain.TextPayload, cfg *domain.Config) (domain.ResultSet, error) {
	if cfg.Inline() {
		return e.processText(ctx, p, cfg.CacheEnabled())
	}

	_, done := e.queue.Submit(jobPayload{
		Kind:    domain.KindText,
		Text:    p,
		CacheOK: cfg.CacheEnabled(),
	}, cfg.QueuePriority(), 0)

	wait := cfg.EffectiveTimeout()
	select {
	case out := <-done:
		if out.Err != nil {
			return nil, out.Err
		}
		rs, ok := out.Result.(domain.ResultSet)
		if !ok {
			return nil, errors.Internalf("unexpected job result type %T", out.Result)
		}
		return rs, nil
	case <-time.After(wait):
		// the job keeps running in the background; only the wait expires
		return nil, errors.Timeoutf("analysis timed out after %s", wait)
	case <-ctx.Done():
		return nil, errors.Wrap(ctx.Err(), errors.ErrorCodeTimeout, "analysis wait cancelled")
	}
}

// handle is the queue dispatch target
func (e *Engine) handle(ctx context.Context, job *queue.Job) (any, error) {
	pl, ok := job.Payload.(jobPayload)
	if !ok {
		return nil, errors.Internalf("unexpected job payload type %T", job.Payload)
	}
	switch pl.Kind {
	case domain.KindText:
		return e.processText(ctx, pl.Text, pl.CacheOK)
	case domain.KindVideo:
		return e.mock.AnalyzeVideo(ctx, pl.Video, nil)
	default:
		return nil, errors.Internalf("unknown job kind %q", pl.Kind)
	}
}

// llmVerdict is the JSON shape the analyzer is prompted to return
type llmVerdict struct {
	IsAIGenerated bool    `json:"is_ai_generated"`
	Confidence    float64 `json:"confidence"`
	Reasoning     string  `json:"reasoning"`
}

// processText calls the external analyzer with retry, assembles the result,
// records metrics and caches the verdict
func (e *Engine) processText(ctx context.Context, p domain.TextPayload, cacheOK bool) (domain.ResultSet, error) {
	start := time.Now()

	prompt := buildTextPrompt(p)
	var completion string
	err := e.retry.do(ctx, func() error {
		out, cerr := e.completer.Complete(ctx, prompt)
		if cerr != nil {
			return cerr
		}
		completion = out
		return nil
	})
	if err != nil {
		return nil, err
	}

	verdict, err := parseVerdict(completion)
	if err != nil {
		return nil, err
	}

	elapsed := time.Since(start)
	res := domain.Result{
		Provider:      e.provider,
		Confidence:    clamp(verdict.Confidence),
		IsAIGenerated: verdict.IsAIGenerated,
		Details: map[string]any{
			"reasoning": verdict.Reasoning,
		},
		ProcessingMs: elapsed.Milliseconds(),
		Timestamp:    time.Now(),
		RequestID:    requestID(p.RequestID),
	}
	set := domain.ResultSet{res}

	e.rec.Timing("analysis.processing_time", elapsed, map[string]string{
		"provider": e.provider,
		"type":     "text",
	})
	e.rec.Incr("analysis.requests", map[string]string{
		"status":   "success",
		"type":     "text",
		"provider": e.provider,
	})

	if cacheOK {
		e.cache.Put(fingerprint.Text(p.Content), set, e.cacheTTL)
	}
	return set, nil
}

func buildTextPrompt(p domain.TextPayload) string {
	var b strings.Builder
	b.WriteString("You are an AI-content detector. Analyze the text below and respond with ONLY a JSON object of the form ")
	b.WriteString(`{"is_ai_generated": bool, "confidence": number 0-100, "reasoning": short string}.`)
	if p.Title != "" {
		fmt.Fprintf(&b, "\nTitle: %s", p.Title)
	}
	b.WriteString("\n\nText:\n")
	b.WriteString(p.Content)
	return b.String()
}

// parseVerdict extracts the JSON object from the completion, tolerating
// surrounding prose or code fences
func parseVerdict(completion string) (llmVerdict, error) {
	var v llmVerdict
	open := strings.Index(completion, "{")
	end := strings.LastIndex(completion, "}")
	if open < 0 || end <= open {
		return v, errors.Unavailablef("analyzer returned no JSON verdict")
	}
	if err := json.Unmarshal([]byte(completion[open:end+1]), &v); err != nil {
		return v, errors.Wrap(err, errors.ErrorCodeUnavailable, "analyzer verdict unparseable")
	}
	return v, nil
}

func validateText(p domain.TextPayload) error {
	trimmed := strings.TrimSpace(p.Content)
	if trimmed == "" {
		return errors.WithField(errors.Validationf("text_content is required"), "text_content")
	}
	if utf8.RuneCountInString(p.Content) > MaxTextChars {
		return errors.WithField(
			errors.Validationf("text_content exceeds %d characters", MaxTextChars), "text_content")
	}
	return nil
}

func validateVideo(p domain.VideoPayload) error {
	if strings.TrimSpace(p.FileURL) == "" {
		return errors.WithField(errors.Validationf("file_url is required"), "file_url")
	}
	u, err := url.Parse(p.FileURL)
	if err != nil || !u.IsAbs() {
		return errors.WithField(errors.Validationf("file_url must be an absolute URL"), "file_url")
	}
	return nil
}
