package service

import (
	"context"
	"errors"
	"fmt"

	"pira-rental-backend/internal/domain"
	"pira-rental-backend/internal/logger"
	"pira-rental-backend/internal/order"
	"pira-rental-backend/internal/repository"

	"github.com/google/uuid"
)

// settlementNamespace scopes the name-based UUIDs used as refund idempotency keys.
var settlementNamespace = uuid.MustParse("6f1c3a52-8f0e-4d55-b1f4-2d9a7c3e5b10")

// Settlement actions that are not renter decisions.
const (
	actionAutoCancel    = "AUTO_CANCEL"
	actionCancelPending = "CANCEL_PENDING"
)

// IdempotencyKey derives the refund key for one action on one sub-order.
// The same sub-order and action always give the same key.
func IdempotencyKey(subOrderID, action string) string {
	return uuid.NewSHA1(settlementNamespace, []byte(subOrderID+":"+action)).String()
}

// workflow holds the persistence and collaborator steps shared by the owner
// and renter services.
type workflow struct {
	subs      repository.SubOrderRepository
	masters   repository.MasterOrderRepository
	contracts ContractGenerator
	notifier  Notifier
}

func (w *workflow) load(ctx context.Context, subOrderID string) (*domain.SubOrder, error) {
	sub, err := w.subs.GetByID(ctx, subOrderID)
	if err != nil {
		return nil, err
	}
	return sub, nil
}

func (w *workflow) loadForOwner(ctx context.Context, ownerID int32, subOrderID string) (*domain.SubOrder, error) {
	sub, err := w.load(ctx, subOrderID)
	if err != nil {
		return nil, err
	}
	if sub.OwnerID != ownerID {
		return nil, fmt.Errorf("user %d does not own sub-order %s: %w", ownerID, subOrderID, domain.ErrUnauthorized)
	}
	return sub, nil
}

func (w *workflow) loadForRenter(ctx context.Context, renterID int32, subOrderID string) (*domain.SubOrder, error) {
	sub, err := w.load(ctx, subOrderID)
	if err != nil {
		return nil, err
	}
	if sub.RenterID != renterID {
		return nil, fmt.Errorf("user %d is not the renter of sub-order %s: %w", renterID, subOrderID, domain.ErrUnauthorized)
	}
	return sub, nil
}

// save persists the change and returns the sub-order as the server now holds it.
func (w *workflow) save(ctx context.Context, before domain.SubOrderStatus, change repository.SubOrderChange) (*domain.SubOrder, error) {
	if next := change.SubOrder.Status; !order.CanTransition(before, next) {
		return nil, fmt.Errorf("%w: sub-order %s cannot move from %s to %s",
			domain.ErrInvalidStateTransition, change.SubOrder.ID, before, next)
	}
	if err := w.subs.Save(ctx, change); err != nil {
		return nil, err
	}
	if s := change.SubOrder; s.Status != before {
		logger.StatusTransition(s.ID, string(before), string(s.Status))
	}
	if st := change.Settlement; st != nil {
		logger.RefundIssued(st.SubOrderID, st.Refund.TotalCents, "type", st.Type, "idempotencyKey", st.IdempotencyKey)
	}
	return w.load(ctx, change.SubOrder.ID)
}

// afterOwnerAction runs the server-side rules that follow any owner action on
// a freshly read sub-order. It returns the sub-order as finally stored.
func (w *workflow) afterOwnerAction(ctx context.Context, sub *domain.SubOrder) (*domain.SubOrder, *domain.ContractRef) {
	var ref *domain.ContractRef
	switch {
	case sub.Status == domain.SubOrderStatusOwnerRejected:
		cancelled, _, err := w.autoCancel(ctx, sub)
		if err != nil {
			logger.Warn("Auto-cancel deferred to sweep", "subOrderID", sub.ID, "error", err)
		} else {
			sub = cancelled
		}
	case sub.Status == domain.SubOrderStatusPartiallyConfirmed:
		preview := order.PartialRefund(*sub)
		w.notifier.Notify(ctx, sub.RenterID, domain.NotificationPartiallyConfirmed, sub.ID,
			fmt.Sprintf("Some items could not be confirmed. Continue with the rest for a refund of %d, or cancel everything.", preview.TotalCents))
	case sub.ContractPending():
		w.notifier.Notify(ctx, sub.RenterID, domain.NotificationOwnerConfirmed, sub.ID, "The owner confirmed every item in your order.")
		updated, r, err := w.requestContract(ctx, sub)
		if err != nil {
			logger.Warn("Contract generation pending", "subOrderID", sub.ID, "error", err)
		} else {
			sub, ref = updated, r
		}
	}
	w.refreshMaster(ctx, sub.MasterOrderID)
	return sub, ref
}

// autoCancel cancels a sub-order whose items were all rejected, with a full refund.
func (w *workflow) autoCancel(ctx context.Context, sub *domain.SubOrder) (*domain.SubOrder, *domain.RefundOutcome, error) {
	cancelled, refund, err := order.AutoCancelRejected(*sub)
	if err != nil {
		return nil, nil, err
	}
	settlement := &domain.Settlement{
		SubOrderID:     sub.ID,
		RenterID:       sub.RenterID,
		IdempotencyKey: IdempotencyKey(sub.ID, actionAutoCancel),
		Type:           domain.SettlementTypeFullRefund,
		Refund:         refund,
		Status:         domain.SettlementStatusPending,
	}
	fresh, err := w.save(ctx, sub.Status, repository.SubOrderChange{SubOrder: &cancelled, Settlement: settlement})
	if err != nil {
		return nil, nil, err
	}
	w.notifier.Notify(ctx, sub.RenterID, domain.NotificationOwnerRejected, sub.ID,
		fmt.Sprintf("The owner could not fulfil any item. You will be refunded %d in full.", refund.TotalCents))
	return fresh, &refund, nil
}

// requestContract generates and attaches the contract. On failure the
// sub-order stays contract-pending and the error wraps domain.ErrContractPending.
func (w *workflow) requestContract(ctx context.Context, sub *domain.SubOrder) (*domain.SubOrder, *domain.ContractRef, error) {
	if sub.ContractID != nil {
		return sub, &domain.ContractRef{ID: *sub.ContractID}, nil
	}

	logger.ExternalServiceCall("contract", "Generate", "subOrderID", sub.ID)
	ref, err := w.contracts.Generate(ctx, sub)
	logger.ExternalServiceResult("contract", "Generate", err, "subOrderID", sub.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", domain.ErrContractPending, err)
	}

	attached, err := order.AttachContract(*sub, *ref)
	if err != nil {
		return nil, nil, err
	}
	fresh, err := w.save(ctx, sub.Status, repository.SubOrderChange{SubOrder: &attached})
	if errors.Is(err, domain.ErrStaleSubOrder) {
		// Another request attached a contract first.
		current, lerr := w.load(ctx, sub.ID)
		if lerr == nil && current.ContractID != nil {
			return current, &domain.ContractRef{ID: *current.ContractID}, nil
		}
	}
	if err != nil {
		return nil, nil, err
	}

	for _, uid := range []int32{fresh.OwnerID, fresh.RenterID} {
		w.notifier.Notify(ctx, uid, domain.NotificationContractReady, fresh.ID, "Your rental contract is ready to sign.")
	}
	return fresh, ref, nil
}

// refreshMaster recomputes the renter-facing order status. Failures are only
// logged; the next sub-order change recomputes it again.
func (w *workflow) refreshMaster(ctx context.Context, masterOrderID string) {
	if masterOrderID == "" || w.masters == nil {
		return
	}
	subs, err := w.subs.ListByMasterOrder(ctx, masterOrderID)
	if err != nil {
		logger.Warn("Master order refresh failed", "masterOrderID", masterOrderID, "error", err)
		return
	}
	master, err := w.masters.GetByID(ctx, masterOrderID)
	if err != nil {
		logger.Warn("Master order refresh failed", "masterOrderID", masterOrderID, "error", err)
		return
	}
	status := order.DeriveMasterStatus(subs)
	if status == master.Status {
		return
	}
	if err := w.masters.UpdateStatus(ctx, masterOrderID, status); err != nil {
		logger.Warn("Master order refresh failed", "masterOrderID", masterOrderID, "error", err)
		return
	}
	logger.Info("Master order status changed", "masterOrderID", masterOrderID, "from", master.Status, "to", status)
}

// exitWith logs the method outcome at the level the error class deserves.
func exitWith(method string, err error, args ...any) {
	switch {
	case err == nil:
		logger.ExitMethod(method, args...)
	case domain.IsValidation(err), domain.IsStateConflict(err),
		errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrUnauthorized),
		errors.Is(err, domain.ErrItemNotFound):
		logger.ExitMethodRejected(method, err, args...)
	default:
		logger.ExitMethodWithError(method, err, args...)
	}
}
