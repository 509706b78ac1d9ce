package jobs

import (
	"context"

	"pira-rental-backend/internal/domain"
	"pira-rental-backend/internal/logger"
)

// ResumeContracts retries contract generation for sub-orders whose items
// are settled but whose contract request failed.
func (jr *JobRunner) ResumeContracts() {
	jr.runWithRecovery("ResumeContracts", func(ctx context.Context) {
		subs, err := jr.subOrders.ListContractPending(ctx, jr.batchSize())
		if err != nil {
			logger.Error("Failed to list contract-pending sub-orders", "error", err)
			return
		}

		resumed, failed := 0, 0
		for _, sub := range subs {
			ref, err := jr.services.Confirmation.ResumeContract(ctx, 0, sub.ID)
			if err != nil {
				failed++
				logger.Warn("Contract still pending", "sub_order_id", sub.ID, "error", err)
				continue
			}
			resumed++
			logger.Debug("Contract attached", "sub_order_id", sub.ID, "contract_id", ref.ID)
		}

		logger.Info("Resumed contract generation", "found", len(subs), "resumed", resumed, "failed", failed)
	})
}

// SweepRejected finishes sub-orders left in OWNER_REJECTED when the inline
// auto-cancel did not complete.
func (jr *JobRunner) SweepRejected() {
	jr.runWithRecovery("SweepRejected", func(ctx context.Context) {
		subs, err := jr.subOrders.ListByStatus(ctx, domain.SubOrderStatusOwnerRejected, jr.batchSize())
		if err != nil {
			logger.Error("Failed to list rejected sub-orders", "error", err)
			return
		}

		cancelled := 0
		for _, sub := range subs {
			refund, err := jr.services.Confirmation.AutoCancelRejected(ctx, sub.ID)
			if err != nil {
				logger.Error("Failed to auto-cancel rejected sub-order", "sub_order_id", sub.ID, "error", err)
				continue
			}
			cancelled++
			logger.Debug("Auto-cancelled rejected sub-order", "sub_order_id", sub.ID, "refund_cents", refund.TotalCents)
		}

		logger.Info("Swept rejected sub-orders", "found", len(subs), "cancelled", cancelled)
	})
}
