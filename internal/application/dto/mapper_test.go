package dto

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tbtc-market-service/internal/domain/entities"
)

func TestSnapshotMapper_ToSnapshotResponse(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)
	mapper := &SnapshotMapper{now: func() time.Time { return now }}

	tests := []struct {
		name      string
		fetchedAt time.Time
		age       float64
		stale     bool
	}{
		{"reciente", now.Add(-12500 * time.Millisecond), 12.5, false},
		{"justo en el límite", now.Add(-time.Minute), 60, false},
		{"antiguo", now.Add(-5 * time.Minute), 300, true},
		{"reloj desfasado hacia el futuro", now.Add(time.Second), 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := entities.NewMarketDocument([]byte(`{"market_id":14}`))
			snapshot := entities.NewMarketSnapshot(doc, tt.fetchedAt, 843200*time.Microsecond)

			resp := mapper.ToSnapshotResponse(snapshot)

			assert.Equal(t, tt.age, resp.AgeSeconds)
			assert.Equal(t, tt.stale, resp.Stale)
			assert.Equal(t, 843.2, resp.DurationMs)
			assert.JSONEq(t, `{"market_id":14}`, string(resp.Data))
		})
	}
}

func TestStreamMessage_JSON(t *testing.T) {
	market, err := json.Marshal(NewMarketMessage([]byte(`{"price":42000}`)))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"market","data":{"price":42000}}`, string(market))

	failure, err := json.Marshal(NewErrorMessage(504, "Timeout calling node index.js --json"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"error","status":504,"detail":"Timeout calling node index.js --json"}`, string(failure))
}
