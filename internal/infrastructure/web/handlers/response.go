package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"tbtc-market-service/internal/application/dto"
	"tbtc-market-service/internal/domain/entities"
)

// StatusForError maps an error returned by the market service to an HTTP status
func StatusForError(err error) int {
	switch {
	case errors.Is(err, entities.ErrUpstreamTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, entities.ErrEmptyUpstreamResponse),
		errors.Is(err, entities.ErrMalformedUpstreamResponse):
		return http.StatusBadGateway
	case errors.Is(err, entities.ErrSnapshotNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// DetailForError returns the client-facing detail for an error
func DetailForError(err error) string {
	var upstreamErr *entities.UpstreamError
	if errors.As(err, &upstreamErr) {
		return upstreamErr.Detail
	}
	if errors.Is(err, entities.ErrSnapshotNotFound) {
		return "No market snapshot available"
	}
	return err.Error()
}

// writeJSON escribe una respuesta JSON codificando data
func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	body, err := json.Marshal(data)
	if err != nil {
		writeRawJSON(w, http.StatusInternalServerError, []byte(`{"detail":"Failed to encode response"}`))
		return
	}
	writeRawJSON(w, statusCode, body)
}

// writeRawJSON escribe bytes que ya son JSON válido
func writeRawJSON(w http.ResponseWriter, statusCode int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_, _ = w.Write(body)
}

// writeError escribe {"detail": ...} con el status correspondiente al error
func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, StatusForError(err), dto.NewErrorResponse(DetailForError(err)))
}
