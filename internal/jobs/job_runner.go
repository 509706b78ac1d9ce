package jobs

import (
	"context"
	"time"

	"pira-rental-backend/internal/config"
	"pira-rental-backend/internal/logger"
	"pira-rental-backend/internal/repository"
	"pira-rental-backend/internal/service"
)

// jobTimeout bounds a single run so a hung collaborator cannot stall the next tick.
const jobTimeout = 2 * time.Minute

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	subOrders   repository.SubOrderRepository
	settlements repository.SettlementRepository
	services    *Services
	config      *config.Config
}

// Services holds all service dependencies needed by jobs
type Services struct {
	Confirmation service.OrderConfirmationService
	Refunds      service.RefundExecutor
}

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(subOrders repository.SubOrderRepository, settlements repository.SettlementRepository, services *Services, cfg *config.Config) *JobRunner {
	return &JobRunner{
		subOrders:   subOrders,
		settlements: settlements,
		services:    services,
		config:      cfg,
	}
}

// Config exposes the configuration the scheduler reads its cron specs from
func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// runWithRecovery wraps job execution with panic recovery
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func(ctx context.Context)) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panicked", "job", jobName, "panic", r)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()
	ctx = logger.WithRequestID(ctx, "job:"+jobName)

	logger.Info("Starting job", "job", jobName)
	jobFunc(ctx)
	logger.Info("Job completed", "job", jobName)
}

func (jr *JobRunner) batchSize() int {
	if jr.config == nil || jr.config.Settlement.BatchSize <= 0 {
		return 50
	}
	return jr.config.Settlement.BatchSize
}

// RunAll runs every job once (for manual execution)
func (jr *JobRunner) RunAll() {
	jr.SweepRejected()
	jr.ResumeContracts()
	jr.DispatchSettlements()
}
