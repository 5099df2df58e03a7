package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/octobees/crm-automations/api/internal/service/automation"
)

// AutomationHandler exposes the scheduler-facing sweep endpoints.
type AutomationHandler struct {
	runner *automation.Runner
}

// NewAutomationHandler creates a new handler instance.
func NewAutomationHandler(runner *automation.Runner) *AutomationHandler {
	return &AutomationHandler{runner: runner}
}

// RefreshScores handles GET /cron/refresh-scores requests.
func (h *AutomationHandler) RefreshScores(c echo.Context) error {
	return h.runSweep(c, "scores refreshed", h.runner.RefreshScores)
}

// FollowUps handles GET /cron/follow-ups requests.
func (h *AutomationHandler) FollowUps(c echo.Context) error {
	return h.runSweep(c, "follow-up sweep completed", h.runner.RunFollowUps)
}

// Escalations handles GET /cron/escalations requests.
func (h *AutomationHandler) Escalations(c echo.Context) error {
	return h.runSweep(c, "escalation sweep completed", h.runner.RunEscalations)
}

// AssignOwners handles GET /cron/assign-owners requests.
func (h *AutomationHandler) AssignOwners(c echo.Context) error {
	return h.runSweep(c, "owner assignment completed", h.runner.AssignOwners)
}

// runSweep executes one sweep. Only a store-level failure surfaces as 500;
// per-lead problems ride back inside the summary.
func (h *AutomationHandler) runSweep(c echo.Context, message string, sweep func(ctx context.Context) (*automation.SweepResult, error)) error {
	result, err := sweep(c.Request().Context())
	if err != nil {
		return Error(c, http.StatusInternalServerError, "sweep failed")
	}
	return Success(c, http.StatusOK, message, result)
}
