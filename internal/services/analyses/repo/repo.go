// Package repo provides the analyses repository implementation
package repo

import (
	"context"
	"encoding/json"
	stderrs "errors"
	"time"

	"github.com/jackc/pgx/v5"

	"sleuth/internal/modkit/repokit"
	perr "sleuth/internal/platform/errors"
	"sleuth/internal/services/analyses/domain"
	detectdom "sleuth/internal/services/detect/domain"
)

type (
	pg     struct{ q repokit.Queryer }
	binder struct{}
)

// NewPG constructs a new repo binder for Postgres
func NewPG() repokit.Binder[Repo] { return binder{} }

// Bind implements repokit.Binder
func (binder) Bind(q repokit.Queryer) Repo { return &pg{q: q} }

// Repo defines the analyses repository
type Repo interface {
	Insert(ctx context.Context, a domain.Analysis) error
	Get(ctx context.Context, id string) (domain.Analysis, error)
	Recent(ctx context.Context, limit, offset int) ([]domain.Analysis, error)
	SetResults(ctx context.Context, id string, results detectdom.ResultSet, confidence *float64, status string, completedAt time.Time) error
}

const selectCols = `
	id::text, kind, content_hash, COALESCE(title, ''), status,
	COALESCE(results, '[]'::jsonb), confidence, user_id, created_at, completed_at`

// Insert implements Repo
func (s *pg) Insert(ctx context.Context, a domain.Analysis) error {
	_, err := s.q.Exec(ctx, `
		INSERT INTO analyses (id, kind, content_hash, title, status, user_id, created_at)
		VALUES ($1::uuid, $2, $3, NULLIF($4, ''), $5, $6, $7)`,
		a.ID, a.Kind, a.ContentHash, a.Title, a.Status, a.UserID, a.CreatedAt,
	)
	return perr.FromPostgres(err, "insert analysis")
}

// Get implements Repo
func (s *pg) Get(ctx context.Context, id string) (domain.Analysis, error) {
	row := s.q.QueryRow(ctx, `
		SELECT `+selectCols+`
		FROM analyses WHERE id = $1::uuid`, id)

	a, err := scanAnalysis(row)
	if err != nil {
		if stderrs.Is(err, pgx.ErrNoRows) {
			return domain.Analysis{}, perr.NotFoundf("analysis %s not found", id)
		}
		return domain.Analysis{}, perr.FromPostgres(err, "get analysis")
	}
	return a, nil
}

// Recent implements Repo
func (s *pg) Recent(ctx context.Context, limit, offset int) ([]domain.Analysis, error) {
	rows, err := s.q.Query(ctx, `
		SELECT `+selectCols+`
		FROM analyses
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, perr.FromPostgres(err, "list analyses")
	}
	defer rows.Close()

	out := make([]domain.Analysis, 0, limit)
	for rows.Next() {
		a, err := scanAnalysis(rows)
		if err != nil {
			return nil, perr.FromPostgres(err, "scan analysis")
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// SetResults implements Repo
func (s *pg) SetResults(
	ctx context.Context,
	id string,
	results detectdom.ResultSet,
	confidence *float64,
	status string,
	completedAt time.Time,
) error {
	payload, err := json.Marshal(results)
	if err != nil {
		return perr.JSONErrf("encode results: %v", err)
	}

	tag, err := s.q.Exec(ctx, `
		UPDATE analyses
		SET results = $2::jsonb, confidence = $3, status = $4, completed_at = $5
		WHERE id = $1::uuid`,
		id, payload, confidence, status, completedAt,
	)
	if err != nil {
		return perr.FromPostgres(err, "set analysis results")
	}
	if tag.RowsAffected() == 0 {
		return perr.NotFoundf("analysis %s not found", id)
	}
	return nil
}

// scanner covers both Row and Rows
type scanner interface{ Scan(dest ...any) error }

func scanAnalysis(sc scanner) (domain.Analysis, error) {
	var (
		a   domain.Analysis
		raw []byte
	)
	if err := sc.Scan(
		&a.ID, &a.Kind, &a.ContentHash, &a.Title, &a.Status,
		&raw, &a.Confidence, &a.UserID, &a.CreatedAt, &a.CompletedAt,
	); err != nil {
		return domain.Analysis{}, err
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &a.Results); err != nil {
			return domain.Analysis{}, perr.JSONErrf("decode results: %v", err)
		}
	}
	return a, nil
}
