package app

import (
	"context"

	"fieldops/config"
	"fieldops/internal/database"
	"fieldops/internal/handlers/middleware"
	"fieldops/internal/jobs"
	"fieldops/internal/repositories"
	"fieldops/internal/services"

	logger "github.com/Bparsons0904/goLogger"
)

type App struct {
	Database   database.DB
	Middleware middleware.Middleware
	Config     config.Config

	// Services
	TransactionService    *services.TransactionService
	ShiftService          *services.ShiftService
	ChecklistService      *services.ChecklistService
	PendencyProcessor     *services.PendencyProcessor
	ReconciliationService *services.ReconciliationService
	SchedulerService      *services.SchedulerService

	// Repositories
	Repository repositories.Repository
}

func New() (*App, error) {
	log := logger.New("app").Function("New")

	config, err := config.InitConfig()
	if err != nil {
		return &App{}, log.Err("failed to initialize config", err)
	}

	db, err := database.New(config)
	if err != nil {
		return &App{}, log.Err("failed to create database", err)
	}

	// Initialize repositories
	repos := repositories.New(db)

	// Initialize services
	transactionService := services.NewTransactionService(db)
	checklistService := services.NewChecklistService(repos.Checklist)

	// Post-commit consumers each get their own queue so delivery and
	// ordering semantics stay visible in the code.
	pendencyProcessor := services.NewPendencyProcessor(
		repos.Pendency,
		repos.Checklist,
		config.PendencyQueueSize,
	)
	reconciliationService := services.NewReconciliationService(
		repos.Reconciliation,
		config.PendencyQueueSize,
	)

	shiftService := services.NewShiftService(
		transactionService,
		repos.Resource,
		repos.Shift,
		checklistService,
		pendencyProcessor,
		reconciliationService,
		config.ShiftTxTimeout(),
	)

	schedulerService := services.NewSchedulerService()

	// Register jobs with scheduler if enabled
	if config.SchedulerEnabled {
		pendencySweepJob := jobs.NewPendencySweepJob(
			repos.Checklist,
			pendencyProcessor,
			services.Hourly,
		)
		if err := schedulerService.AddJob(pendencySweepJob); err != nil {
			return &App{}, log.Err("failed to register pendency sweep job", err)
		}
		log.Info("Registered pendency sweep job with scheduler")
	}

	middleware := middleware.New(db, config)

	app := &App{
		Database:              db,
		Middleware:            middleware,
		Config:                config,
		TransactionService:    transactionService,
		ShiftService:          shiftService,
		ChecklistService:      checklistService,
		PendencyProcessor:     pendencyProcessor,
		ReconciliationService: reconciliationService,
		SchedulerService:      schedulerService,
		Repository:            repos,
	}

	log.Info("App initialized")
	return app, nil
}

// Close drains the post-commit consumers before the database goes away
// so queued side effects get their chance to land.
func (a *App) Close() error {
	log := logger.New("app").Function("Close")

	if a.SchedulerService != nil && a.SchedulerService.IsRunning() {
		if err := a.SchedulerService.Stop(context.Background()); err != nil {
			log.Er("failed to stop scheduler", err)
		}
	}

	if a.PendencyProcessor != nil {
		a.PendencyProcessor.Close()
	}

	if a.ReconciliationService != nil {
		a.ReconciliationService.Close()
	}

	log.Info("App closed")
	return nil
}
