package domain

import "time"

// RequestConfig is the wire form of Config
type RequestConfig struct {
	CacheResults *bool  `json:"cache_results,omitempty"`
	Priority     string `json:"priority,omitempty" validate:"omitempty,oneof=low normal high"`
	TimeoutMs    int    `json:"timeout_ms,omitempty" validate:"omitempty,min=0,max=300000"`
	MaxRetries   *int   `json:"max_retries,omitempty" validate:"omitempty,min=0,max=10"`
}

// Domain converts the wire config to the engine's Config, nil stays nil
func (rc *RequestConfig) Domain() *Config {
	if rc == nil {
		return nil
	}
	return &Config{
		CacheResults: rc.CacheResults,
		Priority:     rc.Priority,
		Timeout:      time.Duration(rc.TimeoutMs) * time.Millisecond,
		MaxRetries:   rc.MaxRetries,
	}
}

// TextRequest is the POST /detect/text body
type TextRequest struct {
	TextContent string         `json:"text_content" validate:"required,min=1,max=100000"`
	Title       string         `json:"title,omitempty" validate:"omitempty,max=500"`
	Description string         `json:"description,omitempty" validate:"omitempty,max=2000"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	UserID      string         `json:"user_id,omitempty" validate:"omitempty,max=128"`
	Config      *RequestConfig `json:"config,omitempty"`
}

// Payload converts the request to the engine payload
func (in TextRequest) Payload(requestID string) TextPayload {
	return TextPayload{
		Content:     in.TextContent,
		Title:       in.Title,
		Description: in.Description,
		Metadata:    in.Metadata,
		UserID:      in.UserID,
		RequestID:   requestID,
	}
}

// VideoRequest is the POST /detect/video body
type VideoRequest struct {
	FileURL         string         `json:"file_url" validate:"required,url"`
	Title           string         `json:"title,omitempty" validate:"omitempty,max=500"`
	DurationSeconds float64        `json:"duration_seconds,omitempty" validate:"omitempty,min=0"`
	Metadata        map[string]any `json:"metadata,omitempty"`
	UserID          string         `json:"user_id,omitempty" validate:"omitempty,max=128"`
	Config          *RequestConfig `json:"config,omitempty"`
}

// Payload converts the request to the engine payload
func (in VideoRequest) Payload(requestID string) VideoPayload {
	return VideoPayload{
		FileURL:         in.FileURL,
		Title:           in.Title,
		DurationSeconds: in.DurationSeconds,
		Metadata:        in.Metadata,
		UserID:          in.UserID,
		RequestID:       requestID,
	}
}

// AnalysisResponse is the reply for both detect endpoints
type AnalysisResponse struct {
	AnalysisID string    `json:"analysis_id,omitempty"`
	RequestID  string    `json:"request_id"`
	Results    ResultSet `json:"results"`
}
