// Package http provides http transport for detection
package http

import (
	"context"
	stdhttp "net/http"

	"github.com/google/uuid"

	"sleuth/internal/core/fingerprint"
	"sleuth/internal/modkit/httpkit"
	"sleuth/internal/platform/logger"
	pnet "sleuth/internal/platform/net"
	andom "sleuth/internal/services/analyses/domain"
	"sleuth/internal/services/detect/domain"
)

// Register mounts detection endpoints on the given router.
// records may be nil when persistence is disabled
func Register(r httpkit.Router, d domain.Detector, records andom.ServicePort) {
	h := &handlers{detector: d, records: records}

	httpkit.PostJSON[domain.TextRequest](r, "/text", h.text)
	httpkit.PostJSON[domain.VideoRequest](r, "/video", h.video)
}

type handlers struct {
	detector domain.Detector
	records  andom.ServicePort
}

func (h *handlers) text(r *stdhttp.Request, in domain.TextRequest) (any, error) {
	reqID := uuid.NewString()
	ctx := pnet.WithAnalysis(r.Context(), reqID)

	rec := h.createRecord(ctx, andom.NewAnalysis{
		Kind:        string(domain.KindText),
		ContentHash: fingerprint.Text(in.TextContent),
		Title:       in.Title,
		UserID:      in.UserID,
	})

	rs, err := h.detector.AnalyzeText(ctx, in.Payload(reqID), in.Config.Domain())
	if err != nil {
		h.finishRecord(ctx, rec, nil, andom.StatusFailed)
		return nil, err
	}
	h.finishRecord(ctx, rec, rs, andom.StatusCompleted)

	return domain.AnalysisResponse{AnalysisID: rec, RequestID: reqID, Results: rs}, nil
}

func (h *handlers) video(r *stdhttp.Request, in domain.VideoRequest) (any, error) {
	reqID := uuid.NewString()
	ctx := pnet.WithAnalysis(r.Context(), reqID)

	rec := h.createRecord(ctx, andom.NewAnalysis{
		Kind:        string(domain.KindVideo),
		ContentHash: fingerprint.Video(in.FileURL),
		Title:       in.Title,
		UserID:      in.UserID,
	})

	rs, err := h.detector.AnalyzeVideo(ctx, in.Payload(reqID), in.Config.Domain())
	if err != nil {
		h.finishRecord(ctx, rec, nil, andom.StatusFailed)
		return nil, err
	}
	h.finishRecord(ctx, rec, rs, andom.StatusCompleted)

	return domain.AnalysisResponse{AnalysisID: rec, RequestID: reqID, Results: rs}, nil
}

// createRecord persists the pending analysis, returning "" when persistence
// is off or the insert fails; detection proceeds either way
func (h *handlers) createRecord(ctx context.Context, in andom.NewAnalysis) string {
	if h.records == nil {
		return ""
	}
	a, err := h.records.Create(ctx, in)
	if err != nil {
		logger.C(ctx).Warn().Err(err).Msg("analysis record insert failed")
		return ""
	}
	return a.ID
}

func (h *handlers) finishRecord(ctx context.Context, id string, rs domain.ResultSet, status string) {
	if h.records == nil || id == "" {
		return
	}
	if err := h.records.SetResults(ctx, id, rs, status); err != nil {
		logger.C(ctx).Warn().Err(err).Str("analysis_db_id", id).Msg("analysis record update failed")
	}
}
