// Package service contains analysis record workflows
package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"sleuth/internal/modkit/repokit"
	perr "sleuth/internal/platform/errors"
	str "sleuth/internal/platform/strings"
	"sleuth/internal/services/analyses/domain"
	"sleuth/internal/services/analyses/repo"
	detectdom "sleuth/internal/services/detect/domain"
)

// DefaultListLimit caps ListRecent when the caller sends no limit
const DefaultListLimit = 20

// Service defines the analyses service contract
type Service interface {
	domain.ServicePort
}

// Svc implements the analyses service
type Svc struct {
	Repo   repo.Repo
	binder repokit.Binder[repo.Repo]
	db     repokit.TxRunner

	now func() time.Time
}

// New constructs an analyses service
func New(db repokit.TxRunner, binder repokit.Binder[repo.Repo]) *Svc {
	if db == nil {
		panic("analyses.Service requires a non nil TxRunner")
	}
	if binder == nil {
		panic("analyses.Service requires a non nil Repo binder")
	}
	return &Svc{Repo: binder.Bind(db), binder: binder, db: db, now: time.Now}
}

// Create implements domain.ServicePort
func (s *Svc) Create(ctx context.Context, in domain.NewAnalysis) (domain.Analysis, error) {
	if in.Kind != string(detectdom.KindText) && in.Kind != string(detectdom.KindVideo) {
		return domain.Analysis{}, perr.Validationf("kind must be text or video, got %q", in.Kind)
	}
	if in.ContentHash == "" {
		return domain.Analysis{}, perr.Validationf("content hash is required")
	}

	a := domain.Analysis{
		ID:          uuid.NewString(),
		Kind:        in.Kind,
		ContentHash: in.ContentHash,
		Title:       in.Title,
		Status:      domain.StatusPending,
		UserID:      str.Ptr(in.UserID),
		CreatedAt:   s.now().UTC(),
	}
	if err := s.Repo.Insert(ctx, a); err != nil {
		return domain.Analysis{}, err
	}
	return a, nil
}

// Get implements domain.ServicePort
func (s *Svc) Get(ctx context.Context, id string) (domain.Analysis, error) {
	if _, err := uuid.Parse(id); err != nil {
		return domain.Analysis{}, perr.Validationf("invalid analysis id %q", id)
	}
	return s.Repo.Get(ctx, id)
}

// ListRecent implements domain.ServicePort
func (s *Svc) ListRecent(ctx context.Context, in domain.ListInput) ([]domain.Analysis, error) {
	limit := in.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	offset := in.Offset
	if offset < 0 {
		offset = 0
	}
	return s.Repo.Recent(ctx, limit, offset)
}

// SetResults implements domain.ServicePort.
// Confidence is summarized as the highest provider confidence in the set
func (s *Svc) SetResults(ctx context.Context, id string, results detectdom.ResultSet, status string) error {
	if status != domain.StatusCompleted && status != domain.StatusFailed {
		return perr.Validationf("status must be completed or failed, got %q", status)
	}

	var confidence *float64
	for _, r := range results {
		if confidence == nil || r.Confidence > *confidence {
			c := r.Confidence
			confidence = &c
		}
	}
	return s.Repo.SetResults(ctx, id, results, confidence, status, s.now().UTC())
}
