package service

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"sleuth/internal/core/heuristics"
	"sleuth/internal/platform/logger"
	"sleuth/internal/services/detect/domain"
)

// pseudoProvider describes one simulated verdict source.
// jitter spreads the base score so providers disagree a little,
// threshold is the per-provider AI cutoff
type pseudoProvider struct {
	name      string
	jitter    float64
	threshold float64
}

var textProviders = []pseudoProvider{
	{name: "gptzero-sim", jitter: 8, threshold: 65},
	{name: "originality-sim", jitter: 10, threshold: 60},
	{name: "winston-sim", jitter: 6, threshold: 70},
	{name: "copyleaks-sim", jitter: 12, threshold: 55},
}

var videoProviders = []pseudoProvider{
	{name: "deepware-sim", jitter: 9, threshold: 60},
	{name: "sensity-sim", jitter: 7, threshold: 65},
	{name: "reality-defender-sim", jitter: 11, threshold: 55},
}

// Mock is the heuristic fallback strategy. It fans a deterministic base score
// out across pseudo providers with per-provider jitter and thresholds.
// Deterministic under a fixed seed; production uses time entropy
type Mock struct {
	mu    sync.Mutex
	rnd   *rand.Rand
	sleep func(time.Duration)
	log   *logger.Logger
}

// MockOption configures a Mock
type MockOption func(*Mock)

// WithRand pins the random source, for tests
func WithRand(r *rand.Rand) MockOption {
	return func(m *Mock) { m.rnd = r }
}

// WithSleep replaces the latency simulation sleep, for tests
func WithSleep(fn func(time.Duration)) MockOption {
	return func(m *Mock) { m.sleep = fn }
}

// NewMock builds the heuristic strategy
func NewMock(opts ...MockOption) *Mock {
	m := &Mock{
		rnd:   rand.New(rand.NewSource(time.Now().UnixNano())),
		sleep: time.Sleep,
		log:   logger.Named("detect.mock"),
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

var _ domain.Detector = (*Mock)(nil)

// AnalyzeText scores the text heuristically and synthesizes provider verdicts
func (m *Mock) AnalyzeText(ctx context.Context, p domain.TextPayload, _ *domain.Config) (domain.ResultSet, error) {
	start := time.Now()
	base, feats := heuristics.ScoreText(p.Content)

	m.mu.Lock()
	delay := time.Duration(300+m.rnd.Intn(500)) * time.Millisecond
	m.mu.Unlock()
	m.sleep(delay)

	reqID := requestID(p.RequestID)
	out := make(domain.ResultSet, 0, len(textProviders))
	for _, pr := range textProviders {
		m.mu.Lock()
		conf := clamp(base + pr.jitter*(m.rnd.Float64()*2-1))
		m.mu.Unlock()

		out = append(out, domain.Result{
			Provider:      pr.name,
			Confidence:    round1(conf),
			IsAIGenerated: conf >= pr.threshold,
			Details:       textDetails(pr.name, feats),
			ProcessingMs:  time.Since(start).Milliseconds(),
			Timestamp:     time.Now(),
			RequestID:     reqID,
		})
	}
	m.log.Debug().Str("request_id", reqID).Float64("base_score", base).Msg("heuristic text analysis")
	return out, nil
}

// AnalyzeVideo scores video metadata heuristically
func (m *Mock) AnalyzeVideo(ctx context.Context, p domain.VideoPayload, _ *domain.Config) (domain.ResultSet, error) {
	start := time.Now()
	base, feats := heuristics.ScoreVideo(p.FileURL, p.DurationSeconds)

	m.mu.Lock()
	delay := time.Duration(500+m.rnd.Intn(1000)) * time.Millisecond
	m.mu.Unlock()
	m.sleep(delay)

	reqID := requestID(p.RequestID)
	out := make(domain.ResultSet, 0, len(videoProviders))
	for _, pr := range videoProviders {
		m.mu.Lock()
		conf := clamp(base + pr.jitter*(m.rnd.Float64()*2-1))
		m.mu.Unlock()

		out = append(out, domain.Result{
			Provider:      pr.name,
			Confidence:    round1(conf),
			IsAIGenerated: conf >= pr.threshold,
			Details: map[string]any{
				"filename":         feats.Filename,
				"suspect_keywords": feats.SuspectKeywords,
				"duration_seconds": feats.DurationSeconds,
			},
			ProcessingMs: time.Since(start).Milliseconds(),
			Timestamp:    time.Now(),
			RequestID:    reqID,
		})
	}
	m.log.Debug().Str("request_id", reqID).Float64("base_score", base).Msg("heuristic video analysis")
	return out, nil
}

// textDetails synthesizes a provider flavored diagnostic bag.
// Fields per provider are fixed so consumers can rely on them
func textDetails(provider string, f heuristics.TextFeatures) map[string]any {
	switch provider {
	case "gptzero-sim":
		return map[string]any{
			"word_count":       f.WordCount,
			"sentence_count":   f.SentenceCount,
			"avg_sentence_len": round1(f.AvgSentenceLen),
		}
	case "originality-sim":
		return map[string]any{
			"lexical_diversity": round1(f.LexicalDiversity * 100),
			"repetition_ratio":  round1(f.RepetitionRatio * 100),
		}
	case "winston-sim":
		return map[string]any{
			"formality_markers": f.FormalityMarkers,
			"language":          "en",
		}
	default:
		return map[string]any{
			"model":      "copyleaks-sim-v2",
			"word_count": f.WordCount,
		}
	}
}

func requestID(existing string) string {
	if existing != "" {
		return existing
	}
	return uuid.NewString()
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func round1(v float64) float64 {
	return float64(int(v*10+0.5)) / 10
}
