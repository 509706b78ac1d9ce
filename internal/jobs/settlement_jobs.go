package jobs

import (
	"context"
	"errors"

	"pira-rental-backend/internal/collaborator"
	"pira-rental-backend/internal/logger"
)

// DispatchSettlements hands recorded refunds to the payment service. The
// idempotency key travels with every attempt, so a retry after an unknown
// outcome cannot pay twice.
func (jr *JobRunner) DispatchSettlements() {
	jr.runWithRecovery("DispatchSettlements", func(ctx context.Context) {
		maxAttempts := 5
		if jr.config != nil && jr.config.Settlement.MaxAttempts > 0 {
			maxAttempts = jr.config.Settlement.MaxAttempts
		}

		pending, err := jr.settlements.ListPending(ctx, jr.batchSize(), maxAttempts)
		if err != nil {
			logger.Error("Failed to list pending settlements", "error", err)
			return
		}

		dispatched, failed := 0, 0
		for _, s := range pending {
			if err := jr.services.Refunds.Execute(ctx, s); err != nil {
				failed++
				logSettlementFailure(s.ID, s.Attempts+1, maxAttempts, err)
				if err := jr.settlements.MarkFailed(ctx, s.ID, err.Error()); err != nil {
					logger.Error("Failed to record settlement failure", "settlement_id", s.ID, "error", err)
				}
				continue
			}
			if err := jr.settlements.MarkDispatched(ctx, s.ID); err != nil {
				// The payment service deduplicates on the key, so the next run is safe.
				logger.Error("Failed to mark settlement dispatched", "settlement_id", s.ID, "error", err)
				continue
			}
			dispatched++
			logger.RefundIssued(s.SubOrderID, s.Refund.TotalCents, "settlement_id", s.ID, "key", s.IdempotencyKey)
		}

		logger.Info("Dispatched settlements", "found", len(pending), "dispatched", dispatched, "failed", failed)
	})
}

func logSettlementFailure(id int64, attempt int32, maxAttempts int, err error) {
	var se *collaborator.StatusError
	if errors.As(err, &se) && !se.Retryable() {
		logger.Error("Settlement rejected by payment service", "settlement_id", id, "status", se.StatusCode, "error", err)
		return
	}
	if int(attempt) >= maxAttempts {
		logger.Error("Settlement attempts exhausted", "settlement_id", id, "attempts", attempt, "error", err)
		return
	}
	logger.Warn("Settlement dispatch failed, will retry", "settlement_id", id, "attempt", attempt, "error", err)
}
