package service

import (
	"context"
	"fmt"
	"time"

	"pira-rental-backend/internal/domain"
	"pira-rental-backend/internal/logger"
	"pira-rental-backend/internal/order"
	"pira-rental-backend/internal/repository"
)

type confirmationService struct {
	workflow
	clock Clock
}

func NewOrderConfirmationService(
	subRepo repository.SubOrderRepository,
	masterRepo repository.MasterOrderRepository,
	contracts ContractGenerator,
	notifier Notifier,
	clock Clock,
) OrderConfirmationService {
	return &confirmationService{
		workflow: workflow{subs: subRepo, masters: masterRepo, contracts: contracts, notifier: notifier},
		clock:    clock,
	}
}

func (s *confirmationService) GetSubOrder(ctx context.Context, userID int32, subOrderID string) (*domain.SubOrder, error) {
	sub, err := s.load(ctx, subOrderID)
	if err != nil {
		return nil, err
	}
	if sub.OwnerID != userID && sub.RenterID != userID {
		return nil, fmt.Errorf("user %d is not a party to sub-order %s: %w", userID, subOrderID, domain.ErrUnauthorized)
	}
	return sub, nil
}

func (s *confirmationService) ConfirmLineItem(ctx context.Context, ownerID int32, subOrderID, itemID string) (*domain.SubOrder, error) {
	const method = "OrderConfirmationService.ConfirmLineItem"
	logger.EnterMethod(method, "ownerID", ownerID, "subOrderID", subOrderID, "itemID", itemID)

	sub, _, err := s.ownerAction(ctx, ownerID, subOrderID, func(cur domain.SubOrder) (domain.SubOrder, error) {
		return order.ConfirmItem(cur, itemID)
	})
	exitWith(method, err, "subOrderID", subOrderID)
	return sub, err
}

func (s *confirmationService) RejectLineItem(ctx context.Context, ownerID int32, subOrderID, itemID, reason string) (*domain.SubOrder, error) {
	const method = "OrderConfirmationService.RejectLineItem"
	logger.EnterMethod(method, "ownerID", ownerID, "subOrderID", subOrderID, "itemID", itemID)

	sub, _, err := s.ownerAction(ctx, ownerID, subOrderID, func(cur domain.SubOrder) (domain.SubOrder, error) {
		return order.RejectItem(cur, itemID, reason)
	})
	exitWith(method, err, "subOrderID", subOrderID)
	return sub, err
}

func (s *confirmationService) BulkPartialConfirm(ctx context.Context, ownerID int32, subOrderID string, confirmedItemIDs []string) (*domain.SubOrder, *domain.ContractRef, error) {
	const method = "OrderConfirmationService.BulkPartialConfirm"
	logger.EnterMethod(method, "ownerID", ownerID, "subOrderID", subOrderID, "confirmed", len(confirmedItemIDs))

	sub, ref, err := s.ownerAction(ctx, ownerID, subOrderID, func(cur domain.SubOrder) (domain.SubOrder, error) {
		return order.BulkPartialConfirm(cur, confirmedItemIDs)
	})
	exitWith(method, err, "subOrderID", subOrderID)
	return sub, ref, err
}

// ownerAction applies a pure owner-phase mutation, persists it when it changed
// anything and then runs the follow-up rules on the stored result.
func (s *confirmationService) ownerAction(ctx context.Context, ownerID int32, subOrderID string,
	apply func(domain.SubOrder) (domain.SubOrder, error)) (*domain.SubOrder, *domain.ContractRef, error) {
	cur, err := s.loadForOwner(ctx, ownerID, subOrderID)
	if err != nil {
		return nil, nil, err
	}
	next, err := apply(*cur)
	if err != nil {
		return nil, nil, err
	}
	if unchanged(*cur, next) {
		logger.Debug("Owner action changed nothing", "subOrderID", subOrderID)
		return cur, nil, nil
	}

	fresh, err := s.save(ctx, cur.Status, repository.SubOrderChange{SubOrder: &next})
	if err != nil {
		return nil, nil, err
	}
	sub, ref := s.afterOwnerAction(ctx, fresh)
	return sub, ref, nil
}

func (s *confirmationService) ResumeContract(ctx context.Context, ownerID int32, subOrderID string) (*domain.ContractRef, error) {
	const method = "OrderConfirmationService.ResumeContract"
	logger.EnterMethod(method, "ownerID", ownerID, "subOrderID", subOrderID)

	var sub *domain.SubOrder
	var err error
	if ownerID == 0 {
		sub, err = s.load(ctx, subOrderID)
	} else {
		sub, err = s.loadForOwner(ctx, ownerID, subOrderID)
	}
	if err != nil {
		exitWith(method, err)
		return nil, err
	}
	if !sub.Status.ContractEligible() {
		err = fmt.Errorf("%w: sub-order %s is %s", domain.ErrInvalidStateTransition, subOrderID, sub.Status)
		exitWith(method, err)
		return nil, err
	}

	_, ref, err := s.requestContract(ctx, sub)
	if err != nil {
		exitWith(method, err)
		return nil, err
	}
	exitWith(method, nil, "contractID", ref.ID)
	return ref, nil
}

func (s *confirmationService) MarkContractSigned(ctx context.Context, userID int32, subOrderID string) (*domain.SubOrder, error) {
	const method = "OrderConfirmationService.MarkContractSigned"
	logger.EnterMethod(method, "userID", userID, "subOrderID", subOrderID)

	cur, err := s.GetSubOrder(ctx, userID, subOrderID)
	if err != nil {
		exitWith(method, err)
		return nil, err
	}
	party := domain.SigningPartyRenter
	if cur.OwnerID == userID {
		party = domain.SigningPartyOwner
	}

	next, err := order.MarkSigned(*cur, party, s.clock.Now().UTC())
	if err != nil {
		exitWith(method, err)
		return nil, err
	}
	if unchanged(*cur, next) {
		exitWith(method, nil, "subOrderID", subOrderID, "changed", false)
		return cur, nil
	}

	fresh, err := s.save(ctx, cur.Status, repository.SubOrderChange{SubOrder: &next})
	if err != nil {
		exitWith(method, err)
		return nil, err
	}
	if fresh.Status == domain.SubOrderStatusContractSigned {
		for _, uid := range []int32{fresh.OwnerID, fresh.RenterID} {
			s.notifier.Notify(ctx, uid, domain.NotificationContractSigned, fresh.ID, "The rental contract has been signed by both parties.")
		}
		s.refreshMaster(ctx, fresh.MasterOrderID)
	}
	exitWith(method, nil, "subOrderID", subOrderID, "party", party)
	return fresh, nil
}

func (s *confirmationService) AutoCancelRejected(ctx context.Context, subOrderID string) (*domain.RefundOutcome, error) {
	const method = "OrderConfirmationService.AutoCancelRejected"
	logger.EnterMethod(method, "subOrderID", subOrderID)

	sub, err := s.load(ctx, subOrderID)
	if err != nil {
		exitWith(method, err)
		return nil, err
	}
	fresh, refund, err := s.autoCancel(ctx, sub)
	if err != nil {
		exitWith(method, err)
		return nil, err
	}
	s.refreshMaster(ctx, fresh.MasterOrderID)
	exitWith(method, nil, "subOrderID", subOrderID, "refund", refund.TotalCents)
	return refund, nil
}

// unchanged reports whether a mutation left the persisted fields untouched.
func unchanged(a, b domain.SubOrder) bool {
	if a.Status != b.Status || len(a.Items) != len(b.Items) {
		return false
	}
	for i := range a.Items {
		if a.Items[i].Status != b.Items[i].Status || a.Items[i].RejectionReason != b.Items[i].RejectionReason {
			return false
		}
	}
	return sameTime(a.OwnerSignedOn, b.OwnerSignedOn) && sameTime(a.RenterSignedOn, b.RenterSignedOn) &&
		(a.ContractID == nil) == (b.ContractID == nil)
}

func sameTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
