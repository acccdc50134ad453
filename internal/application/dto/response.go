package dto

import (
	"encoding/json"
	"time"
)

// ErrorResponse is the body of every error returned by the service
// @Description Error response; detail is a human readable description
type ErrorResponse struct {
	Detail string `json:"detail" example:"Timeout calling node index.js --json" validate:"required"`
}

// SnapshotResponse represents the response from /api/v1/tbtc/last
// @Description Last market document successfully obtained from the upstream process
type SnapshotResponse struct {
	FetchedAt  time.Time       `json:"fetched_at" example:"2024-05-01T10:30:00Z" validate:"required"` // When the upstream process returned the document
	AgeSeconds float64         `json:"age_seconds" example:"12.5"`                                     // Seconds elapsed since fetched_at
	Stale      bool            `json:"stale" example:"false"`                                          // True when the snapshot is older than one minute
	DurationMs float64         `json:"duration_ms" example:"843.2"`                                    // Upstream process wall-clock duration
	Data       json.RawMessage `json:"data" swaggertype:"object"`                                      // Market document exactly as emitted
}

// HealthResponse represents the health check response with service status
// @Description Health check response with service status
type HealthResponse struct {
	Status    string            `json:"status" example:"healthy" validate:"required" enums:"healthy,degraded,unhealthy"` // Overall service status
	Timestamp time.Time         `json:"timestamp" example:"2023-12-01T10:30:00Z" validate:"required"`                    // When the health check was performed
	Services  map[string]string `json:"services,omitempty" example:"upstream:healthy,cache:healthy"`                     // Individual service statuses
}

// Stream frame types sent on /ws/tbtc
const (
	StreamTypeMarket = "market"
	StreamTypeError  = "error"
)

// StreamMessage is one frame sent to a /ws/tbtc client
// @Description WebSocket reply frame
type StreamMessage struct {
	Type   string          `json:"type" example:"market" enums:"market,error"`
	Data   json.RawMessage `json:"data,omitempty" swaggertype:"object"`
	Status int             `json:"status,omitempty" example:"504"`
	Detail string          `json:"detail,omitempty" example:"Timeout calling node index.js --json"`
}

// NewErrorResponse creates a new error response
func NewErrorResponse(detail string) *ErrorResponse {
	return &ErrorResponse{Detail: detail}
}

// NewHealthResponse creates a health check response
func NewHealthResponse(status string, services map[string]string) *HealthResponse {
	return &HealthResponse{
		Status:    status,
		Timestamp: time.Now(),
		Services:  services,
	}
}

// NewMarketMessage wraps a market document in a stream frame
func NewMarketMessage(doc []byte) *StreamMessage {
	return &StreamMessage{
		Type: StreamTypeMarket,
		Data: json.RawMessage(doc),
	}
}

// NewErrorMessage builds an error stream frame carrying the HTTP-equivalent status
func NewErrorMessage(status int, detail string) *StreamMessage {
	return &StreamMessage{
		Type:   StreamTypeError,
		Status: status,
		Detail: detail,
	}
}
