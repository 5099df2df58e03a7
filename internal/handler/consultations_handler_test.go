package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/octobees/crm-automations/api/internal/dto"
	"github.com/octobees/crm-automations/api/internal/repository"
	"github.com/octobees/crm-automations/api/internal/service"
)

func newConsultationsFixture() (*ConsultationsHandler, *service.ConsultationService) {
	svc := service.NewConsultationService(repository.NewMemoryConsultationsRepository(), "US")
	return NewConsultationsHandler(svc), svc
}

func TestConsultationsHandler_Create(t *testing.T) {
	handler, _ := newConsultationsFixture()
	e := echo.New()

	req, rec := jsonRequest(http.MethodPost, "/consultations", `{
		"name": "Ada Lovelace",
		"email": "ada@acme.com",
		"message": "Looking for a discovery call"
	}`)
	c := e.NewContext(req, rec)

	if err := handler.Create(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var payload struct {
		Data struct {
			Reference string `json:"reference"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if payload.Data.Reference == "" {
		t.Fatalf("expected a booking reference in the response")
	}
}

func TestConsultationsHandler_Create_Invalid(t *testing.T) {
	handler, _ := newConsultationsFixture()
	e := echo.New()

	req, rec := jsonRequest(http.MethodPost, "/consultations", `{"email": "ada@acme.com"}`)
	c := e.NewContext(req, rec)

	_ = handler.Create(c)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestConsultationsHandler_UpdateStatus(t *testing.T) {
	handler, svc := newConsultationsFixture()
	e := echo.New()
	ctx := context.Background()

	consultation, err := svc.Create(ctx, dto.CreateConsultationRequest{Name: "Ada", Email: "ada@acme.com"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	req, rec := jsonRequest(http.MethodPatch, "/consultations/x/status", `{"status": "confirmed"}`)
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(consultation.ID.String())

	if err := handler.UpdateStatus(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestConsultationsHandler_UpdateStatus_NotFound(t *testing.T) {
	handler, _ := newConsultationsFixture()
	e := echo.New()

	req, rec := jsonRequest(http.MethodPatch, "/consultations/x/status", `{"status": "confirmed"}`)
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("0b4db3f8-0000-0000-0000-000000000000")

	_ = handler.UpdateStatus(c)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestConsultationsHandler_List(t *testing.T) {
	handler, svc := newConsultationsFixture()
	e := echo.New()

	if _, err := svc.Create(context.Background(), dto.CreateConsultationRequest{Name: "Ada", Email: "ada@acme.com"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/consultations?status=pending", nil)
	rec := httptest.NewRecorder()
	if err := handler.List(e.NewContext(req, rec)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
