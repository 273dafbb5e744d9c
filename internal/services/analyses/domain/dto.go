// Package domain holds analysis record types
package domain

import (
	"time"

	detectdom "sleuth/internal/services/detect/domain"
)

// Analysis statuses
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Analysis is one persisted detection request and its outcome
type Analysis struct {
	ID          string              `json:"id"`
	Kind        string              `json:"kind"`
	ContentHash string              `json:"content_hash"`
	Title       string              `json:"title,omitempty"`
	Status      string              `json:"status"`
	Results     detectdom.ResultSet `json:"results,omitempty"`
	Confidence  *float64            `json:"confidence,omitempty"`
	UserID      *string             `json:"user_id,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
	CompletedAt *time.Time          `json:"completed_at,omitempty"`
}

// NewAnalysis is the input for creating a record
type NewAnalysis struct {
	Kind        string
	ContentHash string
	Title       string
	UserID      string
}

// ListInput filters the recent listing
type ListInput struct {
	Limit  int `json:"limit" validate:"omitempty,min=1,max=200"`
	Offset int `json:"offset" validate:"omitempty,min=0"`
}
