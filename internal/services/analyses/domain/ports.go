package domain

import (
	"context"

	detectdom "sleuth/internal/services/detect/domain"
)

// ServicePort is what other modules use to persist and read analyses
type ServicePort interface {
	Create(ctx context.Context, in NewAnalysis) (Analysis, error)
	Get(ctx context.Context, id string) (Analysis, error)
	ListRecent(ctx context.Context, in ListInput) ([]Analysis, error)
	SetResults(ctx context.Context, id string, results detectdom.ResultSet, status string) error
}
