package order

import (
	"fmt"
	"strings"

	"pira-rental-backend/internal/domain"
)

// NeedsDecision reports whether the renter must choose between cancelling
// everything and continuing with the confirmed items.
func NeedsDecision(sub domain.SubOrder) bool {
	return sub.Status == domain.SubOrderStatusPartiallyConfirmed && sub.Decision == nil
}

// CancelAll cancels a partially confirmed sub-order with a full refund.
func CancelAll(sub domain.SubOrder, reason string) (domain.SubOrder, domain.RefundOutcome, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return sub, domain.RefundOutcome{}, domain.ErrReasonRequired
	}
	if err := checkDecidable(sub); err != nil {
		return sub, domain.RefundOutcome{}, err
	}

	refund := FullRefund(sub)
	out := clone(sub)
	d := domain.RenterDecisionCancelAll
	out.Decision = &d
	out.Status = domain.SubOrderStatusCancelled
	out.CancelReason = reason
	return out, refund, nil
}

// AcceptPartial continues with the confirmed items only. The refund is computed
// before rejected items are dropped from the sub-order.
func AcceptPartial(sub domain.SubOrder) (domain.SubOrder, domain.RefundOutcome, error) {
	if err := checkDecidable(sub); err != nil {
		return sub, domain.RefundOutcome{}, err
	}

	refund := PartialRefund(sub)
	retained := Retained(sub)

	out := clone(sub)
	kept := out.Items[:0]
	for _, it := range out.Items {
		if it.Status == domain.ItemStatusConfirmed {
			kept = append(kept, it)
		}
	}
	out.Items = kept
	out.Pricing = retained
	d := domain.RenterDecisionContinuePartial
	out.Decision = &d
	out.Status = domain.SubOrderStatusReadyForContract
	return out, refund, nil
}

// CancelPending lets the renter withdraw before the owner has settled every
// item. The refund is always the full amount.
func CancelPending(sub domain.SubOrder, reason string) (domain.SubOrder, domain.RefundOutcome, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return sub, domain.RefundOutcome{}, domain.ErrReasonRequired
	}
	if sub.Status != domain.SubOrderStatusPendingConfirmation {
		return sub, domain.RefundOutcome{}, fmt.Errorf("%w: sub-order %s is %s", domain.ErrInvalidStateTransition, sub.ID, sub.Status)
	}

	refund := FullRefund(sub)
	out := clone(sub)
	out.Status = domain.SubOrderStatusCancelled
	out.CancelReason = reason
	return out, refund, nil
}

// PreviewRefund returns the refund a renter action would produce without
// applying it. A pending sub-order can only be previewed for cancellation.
func PreviewRefund(sub domain.SubOrder, decision domain.RenterDecision) (domain.RefundOutcome, error) {
	if !decision.Valid() {
		return domain.RefundOutcome{}, fmt.Errorf("%w: %q", domain.ErrInvalidDecision, decision)
	}
	if sub.Status == domain.SubOrderStatusPendingConfirmation && decision == domain.RenterDecisionCancelAll {
		return FullRefund(sub), nil
	}
	if err := checkDecidable(sub); err != nil {
		return domain.RefundOutcome{}, err
	}
	switch decision {
	case domain.RenterDecisionCancelAll:
		return FullRefund(sub), nil
	case domain.RenterDecisionContinuePartial:
		return PartialRefund(sub), nil
	}
	return domain.RefundOutcome{}, fmt.Errorf("%w: %q", domain.ErrInvalidDecision, decision)
}

func checkDecidable(sub domain.SubOrder) error {
	if sub.Decision != nil {
		return fmt.Errorf("%w: sub-order %s chose %s", domain.ErrDecisionAlreadyMade, sub.ID, *sub.Decision)
	}
	if sub.Status != domain.SubOrderStatusPartiallyConfirmed {
		return fmt.Errorf("%w: sub-order %s is %s", domain.ErrDecisionNotAllowed, sub.ID, sub.Status)
	}
	return nil
}
