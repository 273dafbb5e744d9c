//go:build integration_pg
// +build integration_pg

package repo

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	perr "sleuth/internal/platform/errors"
	"sleuth/internal/platform/store"
	"sleuth/internal/services/analyses/domain"
	detectdom "sleuth/internal/services/detect/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS analyses (
	id           UUID PRIMARY KEY,
	kind         TEXT NOT NULL,
	content_hash TEXT NOT NULL,
	title        TEXT,
	status       TEXT NOT NULL,
	results      JSONB,
	confidence   DOUBLE PRECISION,
	user_id      TEXT,
	created_at   TIMESTAMPTZ NOT NULL,
	completed_at TIMESTAMPTZ
)`

// startPostgres launches a disposable Postgres and returns DSN + stop func
func startPostgres(t *testing.T) (dsn string, stop func()) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)

	req := tc.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "postgres",
			"POSTGRES_PASSWORD": "postgres",
			"POSTGRES_DB":       "postgres",
		},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort("5432/tcp"),
			wait.ForLog("database system is ready to accept connections"),
		).WithDeadline(2 * time.Minute),
	}
	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		cancel()
		t.Fatalf("failed to start postgres container: %v", err)
	}

	host, err := c.Host(ctx)
	if err != nil {
		_ = c.Terminate(context.Background())
		cancel()
		t.Fatalf("failed to get container host: %v", err)
	}
	mp, err := c.MappedPort(ctx, "5432/tcp")
	if err != nil {
		_ = c.Terminate(context.Background())
		cancel()
		t.Fatalf("failed to get mapped port: %v", err)
	}

	dsn = fmt.Sprintf("postgres://postgres:postgres@%s:%s/postgres?sslmode=disable", host, mp.Port())
	stop = func() {
		_ = c.Terminate(context.Background())
		cancel()
	}
	return dsn, stop
}

func openRepo(t *testing.T, ctx context.Context, dsn string) Repo {
	t.Helper()

	st, err := store.Open(ctx, store.Config{
		PG: store.PGConfig{Enabled: true, URL: dsn, MaxConns: 2},
	}, store.WithLogger(zerolog.New(io.Discard)))
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { _ = st.Close(context.Background()) })

	if _, err := st.PG.Exec(ctx, schema); err != nil {
		t.Fatalf("create schema: %v", err)
	}
	return NewPG().Bind(st.PG)
}

func TestAnalysesRepo_Integration_RoundTrip(t *testing.T) {
	dsn, stop := startPostgres(t)
	defer stop()

	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	r := openRepo(t, ctx, dsn)

	user := "u-7"
	a := domain.Analysis{
		ID:          uuid.NewString(),
		Kind:        "text",
		ContentHash: "hash-1",
		Title:       "sample",
		Status:      domain.StatusPending,
		UserID:      &user,
		CreatedAt:   time.Now().UTC().Truncate(time.Millisecond),
	}
	if err := r.Insert(ctx, a); err != nil {
		t.Fatalf("insert: %v", err)
	}

	got, err := r.Get(ctx, a.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ID != a.ID || got.Kind != "text" || got.Title != "sample" || got.Status != domain.StatusPending {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	if got.UserID == nil || *got.UserID != "u-7" {
		t.Fatalf("user id lost: %+v", got.UserID)
	}
	if got.CompletedAt != nil || got.Confidence != nil {
		t.Fatalf("pending record must have nil completion fields: %+v", got)
	}

	conf := 91.5
	rs := detectdom.ResultSet{{Provider: "llm-analyzer", Confidence: conf, IsAIGenerated: true}}
	if err := r.SetResults(ctx, a.ID, rs, &conf, domain.StatusCompleted, time.Now().UTC()); err != nil {
		t.Fatalf("set results: %v", err)
	}

	got, err = r.Get(ctx, a.ID)
	if err != nil {
		t.Fatalf("get after update: %v", err)
	}
	if got.Status != domain.StatusCompleted || got.CompletedAt == nil {
		t.Fatalf("not completed: %+v", got)
	}
	if got.Confidence == nil || *got.Confidence != conf {
		t.Fatalf("confidence = %v, want %v", got.Confidence, conf)
	}
	if len(got.Results) != 1 || got.Results[0].Provider != "llm-analyzer" || !got.Results[0].IsAIGenerated {
		t.Fatalf("results round trip mismatch: %+v", got.Results)
	}
}

func TestAnalysesRepo_Integration_RecentAndNotFound(t *testing.T) {
	dsn, stop := startPostgres(t)
	defer stop()

	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	r := openRepo(t, ctx, dsn)

	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		a := domain.Analysis{
			ID:          uuid.NewString(),
			Kind:        "text",
			ContentHash: fmt.Sprintf("hash-%d", i),
			Status:      domain.StatusPending,
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
		}
		if err := r.Insert(ctx, a); err != nil {
			t.Fatalf("insert %d: %v", i, err)
		}
	}

	page, err := r.Recent(ctx, 3, 0)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(page) != 3 {
		t.Fatalf("page size = %d, want 3", len(page))
	}
	if page[0].ContentHash != "hash-4" {
		t.Fatalf("newest first expected, got %+v", page[0])
	}

	rest, err := r.Recent(ctx, 10, 3)
	if err != nil {
		t.Fatalf("recent offset: %v", err)
	}
	if len(rest) != 2 {
		t.Fatalf("offset page size = %d, want 2", len(rest))
	}

	if _, err := r.Get(ctx, uuid.NewString()); !perr.IsCode(err, perr.ErrorCodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	missing := uuid.NewString()
	if err := r.SetResults(ctx, missing, nil, nil, domain.StatusFailed, time.Now()); !perr.IsCode(err, perr.ErrorCodeNotFound) {
		t.Fatalf("expected not found on update, got %v", err)
	}
}
