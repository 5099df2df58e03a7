package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/octobees/crm-automations/api/internal/dto"
	"github.com/octobees/crm-automations/api/internal/repository"
	"github.com/octobees/crm-automations/api/internal/service"
)

// LeadsHandler exposes the lead CRUD endpoints.
type LeadsHandler struct {
	service *service.LeadService
}

// NewLeadsHandler creates a new handler instance.
func NewLeadsHandler(service *service.LeadService) *LeadsHandler {
	return &LeadsHandler{service: service}
}

// Create handles POST /leads requests.
func (h *LeadsHandler) Create(c echo.Context) error {
	var req dto.CreateLeadRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	lead, err := h.service.Create(c.Request().Context(), req)
	if err != nil {
		if service.IsValidationError(err) {
			return Error(c, http.StatusBadRequest, err.Error())
		}
		return Error(c, http.StatusInternalServerError, "failed to create lead")
	}

	return Success(c, http.StatusCreated, "lead created", lead)
}

// Get handles GET /leads/:id requests.
func (h *LeadsHandler) Get(c echo.Context) error {
	lead, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrLeadNotFound) {
			return Error(c, http.StatusNotFound, "lead not found")
		}
		return Error(c, http.StatusInternalServerError, "failed to fetch lead")
	}
	return Success(c, http.StatusOK, "lead retrieved", lead)
}

// List handles GET /leads requests.
func (h *LeadsHandler) List(c echo.Context) error {
	filter := dto.LeadFilter{
		Q:          strings.TrimSpace(c.QueryParam("q")),
		AssignedTo: strings.TrimSpace(c.QueryParam("assigned_to")),
		Unassigned: c.QueryParam("unassigned") == "true",
		Page:       parseIntDefault(c.QueryParam("page"), 1),
		PerPage:    parseIntDefault(c.QueryParam("per_page"), 20),
	}

	if statusParam := strings.TrimSpace(c.QueryParam("status")); statusParam != "" {
		for _, status := range strings.Split(statusParam, ",") {
			if status = strings.TrimSpace(status); status != "" {
				filter.Statuses = append(filter.Statuses, status)
			}
		}
	}

	if updatedBeforeStr := strings.TrimSpace(c.QueryParam("updated_before")); updatedBeforeStr != "" {
		parsed, err := time.Parse(time.RFC3339, updatedBeforeStr)
		if err != nil {
			return Error(c, http.StatusBadRequest, "invalid updated_before (use RFC3339)")
		}
		filter.UpdatedBefore = &parsed
	}

	leads, total, err := h.service.List(c.Request().Context(), filter)
	if err != nil {
		return Error(c, http.StatusInternalServerError, "failed to list leads")
	}

	return Success(c, http.StatusOK, "leads retrieved", map[string]any{
		"leads": leads,
		"total": total,
		"page":  filter.Page,
	})
}

// Update handles PATCH /leads/:id requests.
func (h *LeadsHandler) Update(c echo.Context) error {
	var req dto.UpdateLeadRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	lead, err := h.service.Update(c.Request().Context(), c.Param("id"), req)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrLeadNotFound):
			return Error(c, http.StatusNotFound, "lead not found")
		case errors.Is(err, repository.ErrVersionConflict):
			return Error(c, http.StatusConflict, "lead was modified concurrently, reload and retry")
		case service.IsValidationError(err):
			return Error(c, http.StatusBadRequest, err.Error())
		default:
			return Error(c, http.StatusInternalServerError, "failed to update lead")
		}
	}

	return Success(c, http.StatusOK, "lead updated", lead)
}

// ClearAll handles DELETE /admin/leads requests.
func (h *LeadsHandler) ClearAll(c echo.Context) error {
	removed, err := h.service.ClearAll(c.Request().Context())
	if err != nil {
		return Error(c, http.StatusInternalServerError, "failed to clear leads")
	}
	return Success(c, http.StatusOK, "leads cleared", map[string]int{"removed": removed})
}

func parseIntDefault(input string, fallback int) int {
	if input == "" {
		return fallback
	}
	if value, err := strconv.Atoi(input); err == nil {
		return value
	}
	return fallback
}
