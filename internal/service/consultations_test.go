package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/octobees/crm-automations/api/internal/dto"
	"github.com/octobees/crm-automations/api/internal/entity"
	"github.com/octobees/crm-automations/api/internal/repository"
)

func TestConsultationService_Create(t *testing.T) {
	svc := NewConsultationService(repository.NewMemoryConsultationsRepository(), "US")

	consultation, err := svc.Create(context.Background(), dto.CreateConsultationRequest{
		Name:    "Ada Lovelace",
		Email:   "Ada@Acme.COM",
		Phone:   "(415) 555-2671",
		Message: "  Looking for a discovery call.  ",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if consultation.Status != entity.ConsultationStatusPending {
		t.Fatalf("expected pending status, got %s", consultation.Status)
	}
	if !strings.HasPrefix(consultation.Reference, "CONS-") {
		t.Fatalf("expected a CONS reference, got %q", consultation.Reference)
	}
	if consultation.Email != "ada@acme.com" {
		t.Fatalf("expected normalized email, got %q", consultation.Email)
	}
	if consultation.Message != "Looking for a discovery call." {
		t.Fatalf("expected trimmed message, got %q", consultation.Message)
	}
}

func TestConsultationService_Create_Validation(t *testing.T) {
	svc := NewConsultationService(repository.NewMemoryConsultationsRepository(), "US")

	cases := map[string]dto.CreateConsultationRequest{
		"missing name":  {Email: "a@b.com"},
		"missing email": {Name: "Ada"},
		"bad phone":     {Name: "Ada", Email: "a@b.com", Phone: "12"},
	}

	for name, req := range cases {
		if _, err := svc.Create(context.Background(), req); !IsValidationError(err) {
			t.Fatalf("%s: expected validation error, got %v", name, err)
		}
	}
}

func TestConsultationService_UpdateStatus(t *testing.T) {
	svc := NewConsultationService(repository.NewMemoryConsultationsRepository(), "US")
	ctx := context.Background()

	consultation, err := svc.Create(ctx, dto.CreateConsultationRequest{Name: "Ada", Email: "a@b.com"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	updated, err := svc.UpdateStatus(ctx, consultation.ID.String(), "confirmed")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Status != entity.ConsultationStatusConfirmed {
		t.Fatalf("expected confirmed, got %s", updated.Status)
	}

	if _, err := svc.UpdateStatus(ctx, consultation.ID.String(), "snoozed"); !IsValidationError(err) {
		t.Fatalf("expected validation error for unknown status, got %v", err)
	}

	_, err = svc.UpdateStatus(ctx, "0b4db3f8-0000-0000-0000-000000000000", "confirmed")
	if !errors.Is(err, repository.ErrConsultationNotFound) {
		t.Fatalf("expected ErrConsultationNotFound, got %v", err)
	}
}
