package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/octobees/crm-automations/api/internal/dto"
	"github.com/octobees/crm-automations/api/internal/repository"
	"github.com/octobees/crm-automations/api/internal/service"
)

func newTasksFixture() (*TasksHandler, *service.TaskService) {
	svc := service.NewTaskService(repository.NewMemoryTasksRepository(), repository.NewMemoryLeadsRepository())
	return NewTasksHandler(svc), svc
}

func TestTasksHandler_Create(t *testing.T) {
	handler, _ := newTasksFixture()
	e := echo.New()

	req, rec := jsonRequest(http.MethodPost, "/tasks", `{"title": "Call Ada", "priority": "high"}`)
	c := e.NewContext(req, rec)

	if err := handler.Create(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestTasksHandler_Create_Invalid(t *testing.T) {
	handler, _ := newTasksFixture()
	e := echo.New()

	req, rec := jsonRequest(http.MethodPost, "/tasks", `{"priority": "high"}`)
	c := e.NewContext(req, rec)

	_ = handler.Create(c)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestTasksHandler_Update_NotFound(t *testing.T) {
	handler, _ := newTasksFixture()
	e := echo.New()

	req, rec := jsonRequest(http.MethodPatch, "/tasks/x", `{"status": "done"}`)
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("0b4db3f8-0000-0000-0000-000000000000")

	_ = handler.Update(c)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestTasksHandler_ListAndDelete(t *testing.T) {
	handler, svc := newTasksFixture()
	e := echo.New()
	ctx := context.Background()

	task, err := svc.Create(ctx, dto.CreateTaskRequest{Title: "Prepare deck"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/tasks?status=open", nil)
	rec := httptest.NewRecorder()
	if err := handler.List(e.NewContext(req, rec)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodDelete, "/tasks/"+task.ID.String(), nil)
	rec = httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(task.ID.String())

	_ = handler.Delete(c)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
