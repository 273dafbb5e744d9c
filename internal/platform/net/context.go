// Package net provides utilities for working with request contexts
package net

import (
	"context"

	chimw "github.com/go-chi/chi/v5/middleware"

	"sleuth/internal/platform/logger"
)

// ctxKey is an unexported key type for context values
type ctxKey string

const keyAnalysisID ctxKey = "analysis_id"

// WithRequest annotates context with the request id
func WithRequest(ctx context.Context, reqID string) context.Context {
	if reqID != "" {
		// set chi RequestID so chimw.GetReqID can retrieve it
		ctx = context.WithValue(ctx, chimw.RequestIDKey, reqID)
		ctx = logger.WithRequest(ctx, reqID)
	}
	return ctx
}

// WithAnalysis annotates context with the analysis id being processed
func WithAnalysis(ctx context.Context, analysisID string) context.Context {
	if analysisID != "" {
		ctx = context.WithValue(ctx, keyAnalysisID, analysisID)
		ctx = logger.WithAnalysis(ctx, analysisID)
	}
	return ctx
}

// RequestID returns the request id on the context if present
func RequestID(ctx context.Context) string {
	return chimw.GetReqID(ctx)
}

// AnalysisID returns the analysis id on the context if present
func AnalysisID(ctx context.Context) string {
	if v, ok := ctx.Value(keyAnalysisID).(string); ok {
		return v
	}
	return ""
}
