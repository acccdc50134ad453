package dto

import (
	"time"

	"tbtc-market-service/internal/domain/entities"
	"tbtc-market-service/pkg/utils"
)

// SnapshotStaleAfter is the age past which a snapshot is flagged as stale
const SnapshotStaleAfter = time.Minute

// SnapshotMapper maneja la conversión entre snapshots del dominio y DTOs
type SnapshotMapper struct {
	now func() time.Time
}

// NewSnapshotMapper crea una nueva instancia del mapper
func NewSnapshotMapper() *SnapshotMapper {
	return &SnapshotMapper{now: time.Now}
}

// ToSnapshotResponse convierte un snapshot del dominio al DTO de respuesta
func (m *SnapshotMapper) ToSnapshotResponse(snapshot *entities.MarketSnapshot) *SnapshotResponse {
	now := m.now()
	age := now.Sub(snapshot.FetchedAt)
	if age < 0 {
		age = 0
	}

	return &SnapshotResponse{
		FetchedAt:  snapshot.FetchedAt.UTC(),
		AgeSeconds: utils.RoundSeconds(age),
		Stale:      utils.IsStaleAt(snapshot.FetchedAt, now, SnapshotStaleAfter),
		DurationMs: float64(snapshot.Duration.Microseconds()) / 1000,
		Data:       snapshot.Document,
	}
}
