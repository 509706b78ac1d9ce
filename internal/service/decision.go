package service

import (
	"context"
	"fmt"

	"pira-rental-backend/internal/domain"
	"pira-rental-backend/internal/logger"
	"pira-rental-backend/internal/order"
	"pira-rental-backend/internal/repository"
)

type decisionService struct {
	workflow
}

func NewRenterDecisionService(
	subRepo repository.SubOrderRepository,
	masterRepo repository.MasterOrderRepository,
	contracts ContractGenerator,
	notifier Notifier,
) RenterDecisionService {
	return &decisionService{
		workflow: workflow{subs: subRepo, masters: masterRepo, contracts: contracts, notifier: notifier},
	}
}

func (s *decisionService) CancelAll(ctx context.Context, renterID int32, subOrderID, reason string) (*domain.RefundOutcome, error) {
	const method = "RenterDecisionService.CancelAll"
	logger.EnterMethod(method, "renterID", renterID, "subOrderID", subOrderID)

	cur, err := s.loadForRenter(ctx, renterID, subOrderID)
	if err != nil {
		exitWith(method, err)
		return nil, err
	}
	next, refund, err := order.CancelAll(*cur, reason)
	if err != nil {
		exitWith(method, err)
		return nil, err
	}

	change := s.decisionChange(&next, domain.RenterDecisionCancelAll, next.CancelReason, domain.SettlementTypeFullRefund, refund)
	fresh, err := s.save(ctx, cur.Status, change)
	if err != nil {
		exitWith(method, err)
		return nil, err
	}

	s.notifier.Notify(ctx, fresh.OwnerID, domain.NotificationOrderCancelled, fresh.ID,
		fmt.Sprintf("The renter cancelled the order: %s", fresh.CancelReason))
	s.notifier.Notify(ctx, fresh.RenterID, domain.NotificationOrderCancelled, fresh.ID,
		fmt.Sprintf("Your order was cancelled. You will be refunded %d.", refund.TotalCents))
	s.refreshMaster(ctx, fresh.MasterOrderID)

	exitWith(method, nil, "subOrderID", subOrderID, "refund", refund.TotalCents)
	return &refund, nil
}

func (s *decisionService) AcceptPartial(ctx context.Context, renterID int32, subOrderID string) (*domain.RefundOutcome, *domain.ContractRef, error) {
	const method = "RenterDecisionService.AcceptPartial"
	logger.EnterMethod(method, "renterID", renterID, "subOrderID", subOrderID)

	cur, err := s.loadForRenter(ctx, renterID, subOrderID)
	if err != nil {
		exitWith(method, err)
		return nil, nil, err
	}
	next, refund, err := order.AcceptPartial(*cur)
	if err != nil {
		exitWith(method, err)
		return nil, nil, err
	}

	change := s.decisionChange(&next, domain.RenterDecisionContinuePartial, "", domain.SettlementTypePartialRefund, refund)
	fresh, err := s.save(ctx, cur.Status, change)
	if err != nil {
		exitWith(method, err)
		return nil, nil, err
	}
	s.notifier.Notify(ctx, fresh.OwnerID, domain.NotificationPartialAccepted, fresh.ID,
		fmt.Sprintf("The renter will continue with %d confirmed items for a total of %d.", len(fresh.Items), order.PricingTotal(fresh.Pricing)))

	// The decision and refund are committed; contract failure leaves the
	// sub-order contract-pending for the resume job.
	var ref *domain.ContractRef
	if _, r, err := s.requestContract(ctx, fresh); err != nil {
		logger.Warn("Contract generation pending", "subOrderID", subOrderID, "error", err)
	} else {
		ref = r
	}
	s.refreshMaster(ctx, fresh.MasterOrderID)

	exitWith(method, nil, "subOrderID", subOrderID, "refund", refund.TotalCents, "contractPending", ref == nil)
	return &refund, ref, nil
}

func (s *decisionService) CancelPending(ctx context.Context, renterID int32, subOrderID, reason string) (*domain.RefundOutcome, error) {
	const method = "RenterDecisionService.CancelPending"
	logger.EnterMethod(method, "renterID", renterID, "subOrderID", subOrderID)

	cur, err := s.loadForRenter(ctx, renterID, subOrderID)
	if err != nil {
		exitWith(method, err)
		return nil, err
	}
	next, refund, err := order.CancelPending(*cur, reason)
	if err != nil {
		exitWith(method, err)
		return nil, err
	}

	change := repository.SubOrderChange{
		SubOrder:   &next,
		Settlement: s.settlement(&next, actionCancelPending, domain.SettlementTypeFullRefund, refund),
	}
	fresh, err := s.save(ctx, cur.Status, change)
	if err != nil {
		exitWith(method, err)
		return nil, err
	}
	s.notifier.Notify(ctx, fresh.OwnerID, domain.NotificationOrderCancelled, fresh.ID,
		fmt.Sprintf("The renter withdrew the order before confirmation: %s", fresh.CancelReason))
	s.refreshMaster(ctx, fresh.MasterOrderID)

	exitWith(method, nil, "subOrderID", subOrderID, "refund", refund.TotalCents)
	return &refund, nil
}

func (s *decisionService) PreviewRefund(ctx context.Context, renterID int32, subOrderID string, decision domain.RenterDecision) (*domain.RefundOutcome, error) {
	cur, err := s.loadForRenter(ctx, renterID, subOrderID)
	if err != nil {
		return nil, err
	}
	refund, err := order.PreviewRefund(*cur, decision)
	if err != nil {
		return nil, err
	}
	return &refund, nil
}

// decisionChange bundles the sub-order update with the one-time decision row
// and its settlement so they commit together.
func (s *decisionService) decisionChange(next *domain.SubOrder, decision domain.RenterDecision, reason string,
	kind domain.SettlementType, refund domain.RefundOutcome) repository.SubOrderChange {
	key := IdempotencyKey(next.ID, string(decision))
	return repository.SubOrderChange{
		SubOrder: next,
		Decision: &domain.DecisionRecord{
			SubOrderID:     next.ID,
			RenterID:       next.RenterID,
			Decision:       decision,
			IdempotencyKey: key,
			Reason:         reason,
		},
		Settlement: s.settlement(next, string(decision), kind, refund),
	}
}

func (s *decisionService) settlement(sub *domain.SubOrder, action string, kind domain.SettlementType, refund domain.RefundOutcome) *domain.Settlement {
	return &domain.Settlement{
		SubOrderID:     sub.ID,
		RenterID:       sub.RenterID,
		IdempotencyKey: IdempotencyKey(sub.ID, action),
		Type:           kind,
		Refund:         refund,
		Status:         domain.SettlementStatusPending,
	}
}
