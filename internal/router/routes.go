package router

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/octobees/crm-automations/api/internal/auth"
	"github.com/octobees/crm-automations/api/internal/config"
	"github.com/octobees/crm-automations/api/internal/handler"
	middlewarepkg "github.com/octobees/crm-automations/api/internal/middleware"
)

// Handlers aggregates HTTP handlers used by the router.
type Handlers struct {
	Auth          *handler.AuthHandler
	Users         *handler.UserAdminHandler
	Leads         *handler.LeadsHandler
	Tasks         *handler.TasksHandler
	Consultations *handler.ConsultationsHandler
	Stats         *handler.StatsHandler
	Automation    *handler.AutomationHandler
	AdminImport   *handler.AdminImportHandler
}

// Register wires all HTTP routes for the API.
func Register(e *echo.Echo, cfg *config.Config, jwtManager *auth.JWTManager, handlers Handlers) {
	e.GET("/healthz", func(c echo.Context) error {
		return handler.Success(c, http.StatusOK, "service healthy", map[string]any{"status": "ok"})
	})

	e.POST("/auth/register", handlers.Auth.Register)
	e.POST("/auth/login", handlers.Auth.Login)

	// Public intake endpoint, throttled to keep bots from flooding the pipeline.
	e.POST("/consultations", handlers.Consultations.Create, middlewarepkg.IntakeRateLimiter(cfg.RateLimitIntake))

	secured := e.Group("")
	secured.Use(middlewarepkg.JWT(jwtManager))

	secured.POST("/leads", handlers.Leads.Create)
	secured.GET("/leads", handlers.Leads.List)
	secured.GET("/leads/:id", handlers.Leads.Get)
	secured.PATCH("/leads/:id", handlers.Leads.Update)

	secured.POST("/tasks", handlers.Tasks.Create)
	secured.GET("/tasks", handlers.Tasks.List)
	secured.PATCH("/tasks/:id", handlers.Tasks.Update)
	secured.DELETE("/tasks/:id", handlers.Tasks.Delete)

	secured.GET("/consultations", handlers.Consultations.List)
	secured.PATCH("/consultations/:id/status", handlers.Consultations.UpdateStatus)

	secured.GET("/stats", handlers.Stats.Get)

	admin := secured.Group("/admin", middlewarepkg.RequireRole("admin"))
	admin.DELETE("/leads", handlers.Leads.ClearAll)
	admin.POST("/leads/import-csv", handlers.AdminImport.ImportCSV)
	admin.GET("/users", handlers.Users.List)
	admin.POST("/users", handlers.Users.Create)
	admin.PATCH("/users/:id", handlers.Users.Update)
	admin.DELETE("/users/:id", handlers.Users.Delete)

	cron := e.Group("/cron", middlewarepkg.CronAuth(cfg.CronSecret))
	cron.GET("/refresh-scores", handlers.Automation.RefreshScores)
	cron.GET("/follow-ups", handlers.Automation.FollowUps)
	cron.GET("/escalations", handlers.Automation.Escalations)
	cron.GET("/assign-owners", handlers.Automation.AssignOwners)
}
