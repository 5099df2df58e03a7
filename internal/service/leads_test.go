package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/octobees/crm-automations/api/internal/dto"
	"github.com/octobees/crm-automations/api/internal/entity"
	"github.com/octobees/crm-automations/api/internal/repository"
)

func newLeadService() (*LeadService, *repository.MemoryLeadsRepository) {
	repo := repository.NewMemoryLeadsRepository()
	svc := NewLeadService(repo, "US")
	return svc, repo
}

func TestLeadService_Create(t *testing.T) {
	svc, _ := newLeadService()

	lead, err := svc.Create(context.Background(), dto.CreateLeadRequest{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "Ada@Acme.COM",
		Company:   "Acme",
		Phone:     "(415) 555-2671",
		Source:    "Website",
		Industry:  "Technology",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if lead.Email != "ada@acme.com" {
		t.Fatalf("expected normalized email, got %q", lead.Email)
	}
	if lead.Phone == nil || *lead.Phone != "+14155552671" {
		t.Fatalf("expected E.164 phone, got %v", lead.Phone)
	}
	if lead.Status != entity.LeadStatusNew {
		t.Fatalf("expected status NEW, got %s", lead.Status)
	}
	// Company, target industry and website source must all contribute.
	if lead.Score <= 0 {
		t.Fatalf("expected a positive score, got %d", lead.Score)
	}
}

func TestLeadService_Create_Validation(t *testing.T) {
	svc, _ := newLeadService()

	cases := map[string]dto.CreateLeadRequest{
		"missing name":  {Email: "a@b.com"},
		"missing email": {FirstName: "Ada"},
		"bad email":     {FirstName: "Ada", Email: "nope"},
		"bad phone":     {FirstName: "Ada", Email: "a@b.com", Phone: "12"},
	}

	for name, req := range cases {
		if _, err := svc.Create(context.Background(), req); !IsValidationError(err) {
			t.Fatalf("%s: expected validation error, got %v", name, err)
		}
	}
}

func TestLeadService_Update_RecomputesScore(t *testing.T) {
	svc, _ := newLeadService()
	ctx := context.Background()

	lead, err := svc.Create(ctx, dto.CreateLeadRequest{FirstName: "Ada", Email: "ada@acme.com"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	baseline := lead.Score

	company := "Acme"
	industry := "Technology"
	updated, err := svc.Update(ctx, lead.ID.String(), dto.UpdateLeadRequest{
		Company:  &company,
		Industry: &industry,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Score <= baseline {
		t.Fatalf("expected score to rise after firmographic enrichment: %d -> %d", baseline, updated.Score)
	}
	if updated.Version != lead.Version+1 {
		t.Fatalf("expected version bump, got %d", updated.Version)
	}
}

func TestLeadService_Update_VersionConflict(t *testing.T) {
	svc, _ := newLeadService()
	ctx := context.Background()

	lead, err := svc.Create(ctx, dto.CreateLeadRequest{FirstName: "Ada", Email: "ada@acme.com"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	status := "CONTACTED"
	if _, err := svc.Update(ctx, lead.ID.String(), dto.UpdateLeadRequest{Status: &status}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stale := lead.Version
	other := "QUALIFIED"
	_, err = svc.Update(ctx, lead.ID.String(), dto.UpdateLeadRequest{Status: &other, Version: &stale})
	if !errors.Is(err, repository.ErrVersionConflict) {
		t.Fatalf("expected ErrVersionConflict, got %v", err)
	}
}

func TestLeadService_Update_RejectsUnknownStatus(t *testing.T) {
	svc, _ := newLeadService()
	ctx := context.Background()

	lead, err := svc.Create(ctx, dto.CreateLeadRequest{FirstName: "Ada", Email: "ada@acme.com"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	bogus := "ARCHIVED"
	if _, err := svc.Update(ctx, lead.ID.String(), dto.UpdateLeadRequest{Status: &bogus}); !IsValidationError(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestLeadService_Update_NotFound(t *testing.T) {
	svc, _ := newLeadService()

	status := "CONTACTED"
	_, err := svc.Update(context.Background(), "0b4db3f8-0000-0000-0000-000000000000", dto.UpdateLeadRequest{Status: &status})
	if !errors.Is(err, repository.ErrLeadNotFound) {
		t.Fatalf("expected ErrLeadNotFound, got %v", err)
	}

	_, err = svc.Update(context.Background(), "not-a-uuid", dto.UpdateLeadRequest{Status: &status})
	if !errors.Is(err, repository.ErrLeadNotFound) {
		t.Fatalf("expected ErrLeadNotFound for malformed id, got %v", err)
	}
}

func TestLeadService_ListAndCount(t *testing.T) {
	svc, _ := newLeadService()
	ctx := context.Background()

	for _, email := range []string{"a@x.com", "b@x.com", "c@x.com"} {
		if _, err := svc.Create(ctx, dto.CreateLeadRequest{FirstName: "L", Email: email}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	leads, total, err := svc.List(ctx, dto.LeadFilter{Page: 1, PerPage: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(leads) != 2 || total != 3 {
		t.Fatalf("expected page of 2 with total 3, got %d/%d", len(leads), total)
	}
}

func TestLeadService_Import_SkipsInvalidRows(t *testing.T) {
	svc, _ := newLeadService()

	summary, err := svc.Import(context.Background(), []dto.CreateLeadRequest{
		{FirstName: "Ada", Email: "ada@acme.com"},
		{FirstName: "Broken", Email: "nope"},
		{FirstName: "Grace", Email: "grace@nav.mil"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Imported != 2 || summary.Rejected != 1 {
		t.Fatalf("expected 2 imported / 1 rejected, got %+v", summary)
	}
	if len(summary.Errors) != 1 {
		t.Fatalf("expected one row error, got %v", summary.Errors)
	}
}

func TestLeadService_ClearAll(t *testing.T) {
	svc, _ := newLeadService()
	ctx := context.Background()

	if _, err := svc.Create(ctx, dto.CreateLeadRequest{FirstName: "Ada", Email: "ada@acme.com"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	removed, err := svc.ClearAll(ctx)
	if err != nil || removed != 1 {
		t.Fatalf("expected 1 removed, got %d (%v)", removed, err)
	}
}

func TestLeadService_ClockInjection(t *testing.T) {
	svc, _ := newLeadService()
	frozen := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	svc.SetClock(func() time.Time { return frozen })

	lead, err := svc.Create(context.Background(), dto.CreateLeadRequest{FirstName: "Ada", Email: "ada@acme.com", Company: "Acme"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	again, err := svc.Create(context.Background(), dto.CreateLeadRequest{FirstName: "Ada", Email: "ada2@acme.com", Company: "Acme"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lead.Score != again.Score {
		t.Fatalf("expected identical scores under a frozen clock, got %d and %d", lead.Score, again.Score)
	}
}
