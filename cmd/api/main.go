package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/octobees/crm-automations/api/internal/auth"
	"github.com/octobees/crm-automations/api/internal/config"
	"github.com/octobees/crm-automations/api/internal/database"
	"github.com/octobees/crm-automations/api/internal/handler"
	"github.com/octobees/crm-automations/api/internal/mailer"
	middlewarepkg "github.com/octobees/crm-automations/api/internal/middleware"
	"github.com/octobees/crm-automations/api/internal/notifier"
	"github.com/octobees/crm-automations/api/internal/repository"
	"github.com/octobees/crm-automations/api/internal/router"
	"github.com/octobees/crm-automations/api/internal/service"
	"github.com/octobees/crm-automations/api/internal/service/automation"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	var (
		usersRepo         repository.UsersRepository
		leadsRepo         repository.LeadsRepository
		tasksRepo         repository.TasksRepository
		consultationsRepo repository.ConsultationsRepository
	)

	if cfg.DatabaseURL == "" {
		log.Printf("DATABASE_URL not set, using in-memory stores")
		usersRepo = repository.NewMemoryUsersRepository()
		leadsRepo = repository.NewMemoryLeadsRepository()
		tasksRepo = repository.NewMemoryTasksRepository()
		consultationsRepo = repository.NewMemoryConsultationsRepository()
	} else {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		pool, err := database.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("failed to connect database: %v", err)
		}
		defer pool.Close()

		usersRepo = repository.NewPGXUsersRepository(pool)
		leadsRepo = repository.NewPGXLeadsRepository(pool)
		tasksRepo = repository.NewPGXTasksRepository(pool)
		consultationsRepo = repository.NewPGXConsultationsRepository(pool)
	}

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)

	mailSender := mailer.NewSMTPSender(cfg.Mail.Host, cfg.Mail.Port, cfg.Mail.User, cfg.Mail.Pass, cfg.Mail.From)

	var ops notifier.Poster
	if cfg.OpsWebhookURL != "" {
		ops = notifier.NewWebhookClient(nil, cfg.OpsWebhookURL)
	}

	authService := service.NewAuthService(usersRepo, jwtManager)
	userService := service.NewUserService(usersRepo)
	leadService := service.NewLeadService(leadsRepo, cfg.PhoneRegion)
	taskService := service.NewTaskService(tasksRepo, leadsRepo)
	consultationService := service.NewConsultationService(consultationsRepo, cfg.PhoneRegion)
	statsService := service.NewStatsService(leadsRepo, tasksRepo, consultationsRepo)
	runner := automation.NewRunner(leadsRepo, mailSender, ops, cfg.Automation)

	handlers := router.Handlers{
		Auth:          handler.NewAuthHandler(authService),
		Users:         handler.NewUserAdminHandler(userService),
		Leads:         handler.NewLeadsHandler(leadService),
		Tasks:         handler.NewTasksHandler(taskService),
		Consultations: handler.NewConsultationsHandler(consultationService),
		Stats:         handler.NewStatsHandler(statsService),
		Automation:    handler.NewAutomationHandler(runner),
		AdminImport:   handler.NewAdminImportHandler(leadService),
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middlewarepkg.RequestID())
	e.Use(middlewarepkg.Logging())
	e.Use(echoMiddleware.Recover())

	router.Register(e, cfg, jwtManager, handlers)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- e.Start(":" + cfg.Port)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Printf("received signal %s, shutting down", sig)
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
		return
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}
}
