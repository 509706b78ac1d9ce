package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"pira-rental-backend/internal/collaborator"
	"pira-rental-backend/internal/config"
	"pira-rental-backend/internal/jobs"
	"pira-rental-backend/internal/logger"
	"pira-rental-backend/internal/repository/postgres"
	"pira-rental-backend/internal/scheduler"
	"pira-rental-backend/internal/service"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	runOnce := flag.String("run-once", "", "Run a specific job once and exit (e.g., 'resume-contracts', 'all')")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Pira Cronjob Runner...", "log_level", cfg.Log.Level)

	// Initialize Database
	logger.Info("Connecting to database...", "host", cfg.Database.Host, "port", cfg.Database.Port)
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Test database connection
	if err := db.Ping(); err != nil {
		logger.Error("Failed to ping database", "error", err)
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	// Initialize Repositories
	store := postgres.NewStore(db)

	// Initialize Collaborators
	contracts, err := collaborator.NewContractClient(cfg.Contract.BaseURL, cfg.Contract.Timeout())
	if err != nil {
		log.Fatalf("Failed to initialize contract client: %v", err)
	}
	refunds, err := collaborator.NewSettlementClient(cfg.Settlement.BaseURL, cfg.Settlement.Timeout())
	if err != nil {
		log.Fatalf("Failed to initialize settlement client: %v", err)
	}

	// Initialize Services
	var emailSvc service.EmailService
	if cfg.SendGrid.APIKey != "" {
		emailSvc = service.NewEmailService(cfg.SendGrid.APIKey, cfg.SendGrid.From, cfg.SendGrid.FromName)
	}
	notifier := service.NewNotifier(store.NotificationRepository, store.UserRepository, emailSvc)
	confirmSvc := service.NewOrderConfirmationService(
		store.SubOrderRepository,
		store.MasterOrderRepository,
		contracts,
		notifier,
		service.SystemClock{Location: cfg.Rental.Location()},
	)

	jobServices := &jobs.Services{
		Confirmation: confirmSvc,
		Refunds:      refunds,
	}

	// Initialize Job Runner
	jobRunner := jobs.NewJobRunner(store.SubOrderRepository, store.SettlementRepository, jobServices, cfg)

	// Check if running a single job
	if *runOnce != "" {
		logger.Info("Running job once", "job", *runOnce)
		runJobOnce(jobRunner, *runOnce)
		logger.Info("Job execution completed", "job", *runOnce)
		return
	}

	// Initialize Scheduler
	cronScheduler := scheduler.NewScheduler(jobRunner)

	// Start scheduler
	cronScheduler.Start()
	logger.Info("Cronjob scheduler is running. Press Ctrl+C to stop.", "started_at", time.Now().UTC())

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	// Graceful shutdown
	logger.Info("Shutting down cronjob scheduler...")
	cronScheduler.Stop()
	logger.Info("Cronjob scheduler stopped. Goodbye!")
}

// runJobOnce runs a specific job once and exits
func runJobOnce(jobRunner *jobs.JobRunner, jobName string) {
	switch jobName {
	case "resume-contracts":
		jobRunner.ResumeContracts()
	case "dispatch-settlements":
		jobRunner.DispatchSettlements()
	case "sweep-rejected":
		jobRunner.SweepRejected()
	case "all":
		jobRunner.RunAll()
	default:
		logger.Error("Unknown job name", "job", jobName)
		fmt.Printf("Available jobs:\n")
		fmt.Printf("  - resume-contracts\n")
		fmt.Printf("  - dispatch-settlements\n")
		fmt.Printf("  - sweep-rejected\n")
		fmt.Printf("  - all\n")
		os.Exit(1)
	}
}
