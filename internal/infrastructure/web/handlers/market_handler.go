package handlers

import (
	"errors"
	"net/http"

	"tbtc-market-service/internal/application/dto"
	"tbtc-market-service/internal/domain/entities"
	"tbtc-market-service/internal/domain/interfaces"
	"tbtc-market-service/internal/infrastructure/logging"
)

// MarketHandler handles requests for the tBTC market document
type MarketHandler struct {
	marketService interfaces.MarketService
	mapper        *dto.SnapshotMapper
	logger        logging.HTTPLogger
}

// NewMarketHandler creates a new instance of the market handler
func NewMarketHandler(marketService interfaces.MarketService, logger logging.HTTPLogger) *MarketHandler {
	if logger == nil {
		logger = logging.HTTP()
	}
	return &MarketHandler{
		marketService: marketService,
		mapper:        dto.NewSnapshotMapper(),
		logger:        logger,
	}
}

// GetMarket godoc
// @Summary Live tBTC market data
// @Description Runs the market script once and returns the JSON document it printed, unmodified.
// @Tags market
// @Produce json
// @Success 200 {object} object "Market document as emitted by the script"
// @Failure 500 {object} dto.ErrorResponse "Script exited with a non-zero status"
// @Failure 502 {object} dto.ErrorResponse "Script printed nothing or invalid JSON"
// @Failure 504 {object} dto.ErrorResponse "Script did not finish within the timeout"
// @Router /tbtc [get]
func (h *MarketHandler) GetMarket(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	doc, err := h.marketService.FetchMarket(ctx)
	if err != nil {
		status := StatusForError(err)
		h.logger.WarnWithError(ctx, "Market request failed", err, logging.Fields{
			logging.FieldStatusCode: status,
		})
		writeError(w, err)
		return
	}

	writeRawJSON(w, http.StatusOK, doc.Bytes())
}

// GetLastSnapshot godoc
// @Summary Last successful tBTC market document
// @Description Returns the document of the last successful invocation with its age. Never runs the script.
// @Tags market
// @Produce json
// @Success 200 {object} dto.SnapshotResponse "Last snapshot"
// @Failure 404 {object} dto.ErrorResponse "No snapshot recorded yet"
// @Failure 500 {object} dto.ErrorResponse "Snapshot store error"
// @Router /api/v1/tbtc/last [get]
func (h *MarketHandler) GetLastSnapshot(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	snapshot, err := h.marketService.LastSnapshot(ctx)
	if err != nil {
		if !errors.Is(err, entities.ErrSnapshotNotFound) {
			h.logger.ErrorWithError(ctx, "Failed to read market snapshot", err, nil)
		}
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, h.mapper.ToSnapshotResponse(snapshot))
}
