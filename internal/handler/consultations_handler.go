package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/octobees/crm-automations/api/internal/dto"
	"github.com/octobees/crm-automations/api/internal/repository"
	"github.com/octobees/crm-automations/api/internal/service"
)

// ConsultationsHandler exposes the booking endpoints.
type ConsultationsHandler struct {
	service *service.ConsultationService
}

// NewConsultationsHandler creates a new handler instance.
func NewConsultationsHandler(service *service.ConsultationService) *ConsultationsHandler {
	return &ConsultationsHandler{service: service}
}

// Create handles POST /consultations requests. Public endpoint.
func (h *ConsultationsHandler) Create(c echo.Context) error {
	var req dto.CreateConsultationRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	consultation, err := h.service.Create(c.Request().Context(), req)
	if err != nil {
		if service.IsValidationError(err) {
			return Error(c, http.StatusBadRequest, err.Error())
		}
		return Error(c, http.StatusInternalServerError, "failed to create consultation")
	}

	return Success(c, http.StatusCreated, "consultation request received", consultation)
}

// List handles GET /consultations requests.
func (h *ConsultationsHandler) List(c echo.Context) error {
	consultations, err := h.service.List(c.Request().Context(), strings.TrimSpace(c.QueryParam("status")))
	if err != nil {
		if service.IsValidationError(err) {
			return Error(c, http.StatusBadRequest, err.Error())
		}
		return Error(c, http.StatusInternalServerError, "failed to list consultations")
	}
	return Success(c, http.StatusOK, "consultations retrieved", consultations)
}

// UpdateStatus handles PATCH /consultations/:id/status requests.
func (h *ConsultationsHandler) UpdateStatus(c echo.Context) error {
	var req dto.UpdateConsultationStatusRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	consultation, err := h.service.UpdateStatus(c.Request().Context(), c.Param("id"), req.Status)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrConsultationNotFound):
			return Error(c, http.StatusNotFound, "consultation not found")
		case service.IsValidationError(err):
			return Error(c, http.StatusBadRequest, err.Error())
		default:
			return Error(c, http.StatusInternalServerError, "failed to update consultation")
		}
	}

	return Success(c, http.StatusOK, "consultation updated", consultation)
}
