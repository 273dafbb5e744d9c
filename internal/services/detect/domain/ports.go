package domain

import "context"

// Detector is the capability surface both strategies implement
type Detector interface {
	AnalyzeText(ctx context.Context, p TextPayload, cfg *Config) (ResultSet, error)
	AnalyzeVideo(ctx context.Context, p VideoPayload, cfg *Config) (ResultSet, error)
}

// Completer is the external analyzer seam: one idempotent text completion call
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Ports are dependencies other modules may pull from the detect module
type Ports struct {
	Detector Detector
}
