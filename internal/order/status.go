package order

import (
	"fmt"
	"time"

	"pira-rental-backend/internal/domain"
)

// AutoCancelReason is recorded when the owner rejected every line item.
const AutoCancelReason = "all items rejected by owner"

var validTransitions = map[domain.SubOrderStatus][]domain.SubOrderStatus{
	domain.SubOrderStatusPendingConfirmation: {
		domain.SubOrderStatusOwnerConfirmed,
		domain.SubOrderStatusPartiallyConfirmed,
		domain.SubOrderStatusOwnerRejected,
		domain.SubOrderStatusCancelled,
	},
	domain.SubOrderStatusPartiallyConfirmed: {
		domain.SubOrderStatusReadyForContract,
		domain.SubOrderStatusCancelled,
	},
	domain.SubOrderStatusOwnerRejected: {
		domain.SubOrderStatusCancelled,
	},
	domain.SubOrderStatusOwnerConfirmed: {
		domain.SubOrderStatusReadyForContract,
	},
	domain.SubOrderStatusReadyForContract: {
		domain.SubOrderStatusContractSigned,
	},
}

// CanTransition reports whether the lifecycle allows moving from one status to another.
// Staying in the same status is always allowed; terminal statuses go nowhere else.
func CanTransition(from, to domain.SubOrderStatus) bool {
	if from == to {
		return true
	}
	if from.Terminal() {
		return false
	}
	for _, s := range validTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// DeriveStatus maps the multiset of item statuses to the owner-phase aggregate.
// It depends only on the counts, never on the order in which items were acted on.
func DeriveStatus(items []domain.LineItem) domain.SubOrderStatus {
	c := CountStatuses(items)
	switch {
	case len(items) == 0, c.Pending > 0:
		return domain.SubOrderStatusPendingConfirmation
	case c.Confirmed == len(items):
		return domain.SubOrderStatusOwnerConfirmed
	case c.Rejected == len(items):
		return domain.SubOrderStatusOwnerRejected
	default:
		return domain.SubOrderStatusPartiallyConfirmed
	}
}

// Recompute refreshes the aggregate status while the sub-order is still in
// the owner phase. Later statuses are driven by the renter and contract flow.
func Recompute(sub domain.SubOrder) domain.SubOrder {
	if !sub.Status.InOwnerPhase() {
		return sub
	}
	sub.Status = DeriveStatus(sub.Items)
	return sub
}

// AutoCancelRejected settles a sub-order whose items were all rejected: it is
// cancelled with a full refund and never offered to the renter for a decision.
func AutoCancelRejected(sub domain.SubOrder) (domain.SubOrder, domain.RefundOutcome, error) {
	if sub.Status != domain.SubOrderStatusOwnerRejected {
		return sub, domain.RefundOutcome{}, fmt.Errorf("%w: sub-order %s is %s", domain.ErrInvalidStateTransition, sub.ID, sub.Status)
	}
	refund := FullRefund(sub)
	out := clone(sub)
	out.Status = domain.SubOrderStatusCancelled
	out.CancelReason = AutoCancelReason
	return out, refund, nil
}

// AttachContract records the generated contract on a contract-eligible sub-order.
// A fully confirmed sub-order moves to READY_FOR_CONTRACT with it.
func AttachContract(sub domain.SubOrder, ref domain.ContractRef) (domain.SubOrder, error) {
	if !sub.Status.ContractEligible() {
		return sub, fmt.Errorf("%w: sub-order %s is %s", domain.ErrInvalidStateTransition, sub.ID, sub.Status)
	}
	if sub.ContractID != nil {
		return sub, nil
	}
	out := clone(sub)
	id := ref.ID
	out.ContractID = &id
	if out.Status == domain.SubOrderStatusOwnerConfirmed {
		out.Status = domain.SubOrderStatusReadyForContract
	}
	return out, nil
}

// MarkSigned records one party's signature. The sub-order becomes
// CONTRACT_SIGNED once owner and renter have both signed.
func MarkSigned(sub domain.SubOrder, party domain.SigningParty, at time.Time) (domain.SubOrder, error) {
	if sub.Status == domain.SubOrderStatusContractSigned {
		return sub, nil
	}
	if !sub.Status.ContractEligible() || sub.ContractID == nil {
		return sub, fmt.Errorf("%w: sub-order %s has no contract to sign", domain.ErrInvalidStateTransition, sub.ID)
	}

	out := clone(sub)
	switch party {
	case domain.SigningPartyOwner:
		if out.OwnerSignedOn == nil {
			out.OwnerSignedOn = &at
		}
	case domain.SigningPartyRenter:
		if out.RenterSignedOn == nil {
			out.RenterSignedOn = &at
		}
	default:
		return sub, fmt.Errorf("unknown signing party %q", party)
	}
	if out.OwnerSignedOn != nil && out.RenterSignedOn != nil {
		out.Status = domain.SubOrderStatusContractSigned
	}
	return out, nil
}

// DeriveMasterStatus aggregates the renter-facing order status from its sub-orders.
func DeriveMasterStatus(subs []domain.SubOrder) domain.MasterOrderStatus {
	if len(subs) == 0 {
		return domain.MasterOrderStatusPendingConfirmation
	}

	var cancelled, undecided int
	reduced := false
	for _, s := range subs {
		switch s.Status {
		case domain.SubOrderStatusCancelled, domain.SubOrderStatusOwnerRejected:
			cancelled++
		case domain.SubOrderStatusPendingConfirmation, domain.SubOrderStatusPartiallyConfirmed:
			undecided++
		case domain.SubOrderStatusOwnerConfirmed,
			domain.SubOrderStatusReadyForContract,
			domain.SubOrderStatusContractSigned:
			if s.Decision != nil && *s.Decision == domain.RenterDecisionContinuePartial {
				reduced = true
			}
		default:
			undecided++
		}
	}

	switch {
	case undecided > 0:
		return domain.MasterOrderStatusPendingConfirmation
	case cancelled == len(subs):
		return domain.MasterOrderStatusCancelled
	case cancelled > 0, reduced:
		return domain.MasterOrderStatusPartiallyCancelled
	default:
		return domain.MasterOrderStatusConfirmed
	}
}
