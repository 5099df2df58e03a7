package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/octobees/crm-automations/api/internal/service"
)

// StatsHandler exposes the dashboard aggregates endpoint.
type StatsHandler struct {
	service *service.StatsService
}

// NewStatsHandler creates a new handler instance.
func NewStatsHandler(service *service.StatsService) *StatsHandler {
	return &StatsHandler{service: service}
}

// Get handles GET /stats requests.
func (h *StatsHandler) Get(c echo.Context) error {
	stats, err := h.service.Snapshot(c.Request().Context())
	if err != nil {
		return Error(c, http.StatusInternalServerError, "failed to compute stats")
	}
	return Success(c, http.StatusOK, "stats computed", stats)
}
