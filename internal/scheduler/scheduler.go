package scheduler

import (
	"time"

	"github.com/robfig/cron/v3"
	"pira-rental-backend/internal/jobs"
	"pira-rental-backend/internal/logger"
)

// Scheduler manages cron job scheduling
type Scheduler struct {
	cron *cron.Cron
	jobs *jobs.JobRunner
}

// NewScheduler creates a new scheduler with the provided job runner
func NewScheduler(jobRunner *jobs.JobRunner) *Scheduler {
	// Create cron with UTC timezone and seconds precision.
	// A job still running at its next tick is skipped.
	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithSeconds(),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)

	s := &Scheduler{
		cron: c,
		jobs: jobRunner,
	}

	s.registerJobs()
	return s
}

// registerJobs registers all scheduled jobs with the cron scheduler
func (s *Scheduler) registerJobs() {
	cfg := s.jobs.Config().Scheduler

	// Auto-cancel sub-orders the owner rejected entirely
	_, err := s.cron.AddFunc(cfg.SweepRejected, s.jobs.SweepRejected)
	if err != nil {
		logger.Error("Failed to register SweepRejected job", "error", err)
	}

	// Retry contract generation
	_, err = s.cron.AddFunc(cfg.ResumeContracts, s.jobs.ResumeContracts)
	if err != nil {
		logger.Error("Failed to register ResumeContracts job", "error", err)
	}

	// Hand refunds to the payment service
	_, err = s.cron.AddFunc(cfg.DispatchSettlements, s.jobs.DispatchSettlements)
	if err != nil {
		logger.Error("Failed to register DispatchSettlements job", "error", err)
	}

	logger.Info("All cron jobs registered", "count", len(s.cron.Entries()))
}

// Start begins the cron scheduler
func (s *Scheduler) Start() {
	logger.Info("Starting cron scheduler...")
	s.cron.Start()
	logger.Info("Cron scheduler started successfully")
}

// Stop gracefully stops the cron scheduler
func (s *Scheduler) Stop() {
	logger.Info("Stopping cron scheduler...")
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Info("Cron scheduler stopped")
}

// IsRunning returns true if the scheduler is running
func (s *Scheduler) IsRunning() bool {
	return len(s.cron.Entries()) > 0
}
