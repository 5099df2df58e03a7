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

// TasksHandler exposes follow-up task endpoints.
type TasksHandler struct {
	service *service.TaskService
}

// NewTasksHandler creates a new handler instance.
func NewTasksHandler(service *service.TaskService) *TasksHandler {
	return &TasksHandler{service: service}
}

// Create handles POST /tasks requests.
func (h *TasksHandler) Create(c echo.Context) error {
	var req dto.CreateTaskRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	task, err := h.service.Create(c.Request().Context(), req)
	if err != nil {
		if service.IsValidationError(err) {
			return Error(c, http.StatusBadRequest, err.Error())
		}
		return Error(c, http.StatusInternalServerError, "failed to create task")
	}

	return Success(c, http.StatusCreated, "task created", task)
}

// List handles GET /tasks requests.
func (h *TasksHandler) List(c echo.Context) error {
	tasks, err := h.service.List(c.Request().Context(), strings.TrimSpace(c.QueryParam("status")))
	if err != nil {
		if service.IsValidationError(err) {
			return Error(c, http.StatusBadRequest, err.Error())
		}
		return Error(c, http.StatusInternalServerError, "failed to list tasks")
	}
	return Success(c, http.StatusOK, "tasks retrieved", tasks)
}

// Update handles PATCH /tasks/:id requests.
func (h *TasksHandler) Update(c echo.Context) error {
	var req dto.UpdateTaskRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	task, err := h.service.Update(c.Request().Context(), c.Param("id"), req)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrTaskNotFound):
			return Error(c, http.StatusNotFound, "task not found")
		case service.IsValidationError(err):
			return Error(c, http.StatusBadRequest, err.Error())
		default:
			return Error(c, http.StatusInternalServerError, "failed to update task")
		}
	}

	return Success(c, http.StatusOK, "task updated", task)
}

// Delete handles DELETE /tasks/:id requests.
func (h *TasksHandler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), c.Param("id")); err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return Error(c, http.StatusNotFound, "task not found")
		}
		return Error(c, http.StatusInternalServerError, "failed to delete task")
	}
	return Success(c, http.StatusOK, "task deleted", nil)
}
