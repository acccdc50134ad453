package entities

import (
	"encoding/json"
	"time"
)

// ProcessResult es el resultado de una única invocación del proceso upstream
type ProcessResult struct {
	ExitCode int           `json:"exit_code"`
	Stdout   string        `json:"stdout"`
	Stderr   string        `json:"stderr"`
	Duration time.Duration `json:"duration"`
}

// Succeeded reports whether the process exited with status zero
func (r *ProcessResult) Succeeded() bool {
	return r.ExitCode == 0
}

// MarketDocument is the opaque JSON value emitted by the upstream process.
// The raw bytes are kept so the document can be forwarded without re-encoding.
type MarketDocument struct {
	Raw json.RawMessage
}

func NewMarketDocument(raw []byte) *MarketDocument {
	return &MarketDocument{Raw: json.RawMessage(raw)}
}

// Bytes returns the document exactly as the upstream process printed it
func (d *MarketDocument) Bytes() []byte {
	return []byte(d.Raw)
}

// MarketSnapshot es el último documento obtenido con éxito
type MarketSnapshot struct {
	Document  json.RawMessage `json:"document"`
	FetchedAt time.Time       `json:"fetched_at"`
	Duration  time.Duration   `json:"duration"`
}

func NewMarketSnapshot(doc *MarketDocument, fetchedAt time.Time, duration time.Duration) *MarketSnapshot {
	return &MarketSnapshot{
		Document:  doc.Raw,
		FetchedAt: fetchedAt,
		Duration:  duration,
	}
}

// Age returns how long ago the snapshot was taken
func (s *MarketSnapshot) Age() time.Duration {
	return time.Since(s.FetchedAt)
}
