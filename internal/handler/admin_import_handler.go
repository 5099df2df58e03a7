package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/octobees/crm-automations/api/internal/service"
)

// AdminImportHandler handles CSV lead ingestion for administrators.
type AdminImportHandler struct {
	leadService *service.LeadService
}

// NewAdminImportHandler wires a handler backed by the lead service.
func NewAdminImportHandler(leadService *service.LeadService) *AdminImportHandler {
	return &AdminImportHandler{leadService: leadService}
}

// ImportCSV handles POST /admin/leads/import-csv requests.
func (h *AdminImportHandler) ImportCSV(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return Error(c, http.StatusBadRequest, "missing csv file")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return Error(c, http.StatusBadRequest, "unable to open file")
	}
	defer file.Close()

	summary, err := h.leadService.ImportCSV(c.Request().Context(), file)
	if err != nil {
		var validationErr service.CSVValidationError
		if errors.As(err, &validationErr) {
			return Error(c, http.StatusBadRequest, validationErr.Error())
		}
		return Error(c, http.StatusInternalServerError, "failed to process csv")
	}

	return Success(c, http.StatusOK, "leads CSV processed", summary)
}
