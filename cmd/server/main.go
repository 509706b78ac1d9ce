package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	api "pira-rental-backend/internal/api/grpc"
	httpapi "pira-rental-backend/internal/api/http"
	"pira-rental-backend/internal/collaborator"
	"pira-rental-backend/internal/config"
	"pira-rental-backend/internal/logger"
	"pira-rental-backend/internal/repository/postgres"
	"pira-rental-backend/internal/security"
	"pira-rental-backend/internal/service"
	"pira-rental-backend/internal/utils"

	_ "github.com/lib/pq"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Pira Rental Backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress(), "grpc_address", cfg.GetGRPCAddress())
	logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)
	logger.Info("Collaborators", "contract_url", cfg.Contract.BaseURL, "settlement_url", cfg.Settlement.BaseURL)

	// Initialize Database
	logger.Debug("Connecting to database...", "connection_string", fmt.Sprintf("%s@%s:%d/%s", cfg.Database.User, cfg.Database.Host, cfg.Database.Port, cfg.Database.Database))
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

	// Initialize Security
	tokenManager := security.NewTokenManager(cfg.JWT.Secret, time.Duration(cfg.JWT.AccessTokenExpiry)*time.Minute)

	// Initialize Collaborators
	contracts, err := collaborator.NewContractClient(cfg.Contract.BaseURL, cfg.Contract.Timeout())
	if err != nil {
		log.Fatalf("Failed to initialize contract client: %v", err)
	}

	// Initialize Email Service
	var emailSvc service.EmailService
	if cfg.SendGrid.APIKey != "" {
		emailSvc = service.NewEmailService(cfg.SendGrid.APIKey, cfg.SendGrid.From, cfg.SendGrid.FromName)
	} else {
		logger.Info("SendGrid API key not set, email notifications disabled")
	}

	// Initialize Services
	clock := service.SystemClock{Location: cfg.Rental.Location()}
	rules := utils.RentalRules{CutoffHour: cfg.Rental.Cutoff(), MinDays: cfg.Rental.MinDays, MaxDays: cfg.Rental.MaxDays}
	notifier := service.NewNotifier(store.NotificationRepository, store.UserRepository, emailSvc)

	confirmSvc := service.NewOrderConfirmationService(
		store.SubOrderRepository,
		store.MasterOrderRepository,
		contracts,
		notifier,
		clock,
	)
	decisionSvc := service.NewRenterDecisionService(
		store.SubOrderRepository,
		store.MasterOrderRepository,
		contracts,
		notifier,
	)
	cartSvc := service.NewCartService(store.AvailabilityRepository, rules, clock)
	noteSvc := service.NewNotificationService(store.NotificationRepository)

	// Set up HTTP server
	handler := httpapi.NewHandler(confirmSvc, decisionSvc, cartSvc, noteSvc, db)
	httpServer := &http.Server{
		Addr:              cfg.GetServerAddress(),
		Handler:           httpapi.NewRouter(handler, tokenManager),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Set up gRPC health server
	health := api.NewHealthServer(db)
	if addr := cfg.GetGRPCAddress(); addr != "" {
		lis, err := net.Listen("tcp", addr)
		if err != nil {
			logger.Error("Failed to listen", "error", err, "address", addr)
			log.Fatalf("Failed to listen: %v", err)
		}
		grpcServer := api.NewServer(health)
		go health.Watch(ctx, 15*time.Second)
		go func() {
			logger.Info("gRPC health server listening", "address", addr)
			if err := grpcServer.Serve(lis); err != nil {
				logger.Error("gRPC server error", "error", err)
			}
		}()
		defer grpcServer.GracefulStop()
	}

	go func() {
		logger.Info("HTTP server listening", "address", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Failed to serve HTTP", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	// Graceful shutdown
	logger.Info("Shutting down server...")
	health.Shutdown()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP shutdown error", "error", err)
	}
	logger.Info("Server stopped. Goodbye!")
}
