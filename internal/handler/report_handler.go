package handler

import (
	"net/http"
	"strconv"

	"kebutuhan-pln/internal/model"
	"kebutuhan-pln/internal/service"

	"github.com/rs/zerolog"
)

// ReportHandler serves order analytics.
type ReportHandler struct {
	service service.ReportService
	logger  zerolog.Logger
}

// NewReportHandler creates a new report handler.
func NewReportHandler(service service.ReportService, logger zerolog.Logger) *ReportHandler {
	return &ReportHandler{
		service: service,
		logger:  logger.With().Str("handler", "report").Logger(),
	}
}

// Analytics handles GET /api/order/analytics requests.
func (h *ReportHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	actor, err := principal(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	var year int
	if raw := r.URL.Query().Get("year"); raw != "" {
		year, err = strconv.Atoi(raw)
		if err != nil {
			writeError(w, r, model.NewInvalidDateError(raw), h.logger)
			return
		}
	}

	stats, err := h.service.Stats(r.Context(), actor, year)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}
