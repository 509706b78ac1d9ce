// Package order holds the pure confirmation, batching, refund and decision
// rules for rental sub-orders. Every function takes a sub-order snapshot and
// returns a new value; inputs are never mutated.
package order

import (
	"fmt"
	"strings"

	"pira-rental-backend/internal/domain"
)

// DefaultBulkRejectionReason is stored on items left out of a bulk confirmation.
const DefaultBulkRejectionReason = "not selected by owner"

type StatusCounts struct {
	Pending   int
	Confirmed int
	Rejected  int
}

func (c StatusCounts) Total() int {
	return c.Pending + c.Confirmed + c.Rejected
}

// CountStatuses tallies item statuses. Unrecognised statuses count as pending
// so they can never settle a sub-order.
func CountStatuses(items []domain.LineItem) StatusCounts {
	var c StatusCounts
	for _, it := range items {
		switch it.Status {
		case domain.ItemStatusConfirmed:
			c.Confirmed++
		case domain.ItemStatusRejected:
			c.Rejected++
		default:
			c.Pending++
		}
	}
	return c
}

// ConfirmItem marks one line item CONFIRMED. Confirming an item that is
// already CONFIRMED returns the sub-order unchanged.
func ConfirmItem(sub domain.SubOrder, itemID string) (domain.SubOrder, error) {
	idx := indexOfItem(sub.Items, itemID)
	if idx < 0 {
		return sub, fmt.Errorf("%w: %s", domain.ErrItemNotFound, itemID)
	}
	if sub.Items[idx].Status == domain.ItemStatusConfirmed {
		return sub, nil
	}
	if err := checkItemActionable(sub, sub.Items[idx]); err != nil {
		return sub, err
	}

	out := clone(sub)
	out.Items[idx].Status = domain.ItemStatusConfirmed
	out.Items[idx].RejectionReason = ""
	return Recompute(out), nil
}

// RejectItem marks one line item REJECTED with a mandatory reason. Rejecting an
// already REJECTED item with the same reason returns the sub-order unchanged.
func RejectItem(sub domain.SubOrder, itemID, reason string) (domain.SubOrder, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return sub, domain.ErrReasonRequired
	}
	idx := indexOfItem(sub.Items, itemID)
	if idx < 0 {
		return sub, fmt.Errorf("%w: %s", domain.ErrItemNotFound, itemID)
	}
	item := sub.Items[idx]
	if item.Status == domain.ItemStatusRejected && item.RejectionReason == reason {
		return sub, nil
	}
	if err := checkItemActionable(sub, item); err != nil {
		return sub, err
	}

	out := clone(sub)
	out.Items[idx].Status = domain.ItemStatusRejected
	out.Items[idx].RejectionReason = reason
	return Recompute(out), nil
}

// BulkPartialConfirm confirms the listed items and rejects every other pending
// item with DefaultBulkRejectionReason.
func BulkPartialConfirm(sub domain.SubOrder, confirmedIDs []string) (domain.SubOrder, error) {
	if len(confirmedIDs) == 0 {
		return sub, domain.ErrNoItemsSelected
	}
	if !sub.Status.InOwnerPhase() {
		return sub, fmt.Errorf("%w: sub-order %s is %s", domain.ErrInvalidStateTransition, sub.ID, sub.Status)
	}

	selected := make(map[string]struct{}, len(confirmedIDs))
	for _, id := range confirmedIDs {
		idx := indexOfItem(sub.Items, id)
		if idx < 0 {
			return sub, fmt.Errorf("%w: %s", domain.ErrItemNotFound, id)
		}
		if sub.Items[idx].Status == domain.ItemStatusRejected {
			return sub, fmt.Errorf("%w: item %s is already %s", domain.ErrInvalidStateTransition, id, domain.ItemStatusRejected)
		}
		selected[id] = struct{}{}
	}

	out := clone(sub)
	for i := range out.Items {
		if out.Items[i].Status != domain.ItemStatusPending {
			continue
		}
		if _, ok := selected[out.Items[i].ID]; ok {
			out.Items[i].Status = domain.ItemStatusConfirmed
			out.Items[i].RejectionReason = ""
		} else {
			out.Items[i].Status = domain.ItemStatusRejected
			out.Items[i].RejectionReason = DefaultBulkRejectionReason
		}
	}
	return Recompute(out), nil
}

func checkItemActionable(sub domain.SubOrder, item domain.LineItem) error {
	if !sub.Status.InOwnerPhase() {
		return fmt.Errorf("%w: sub-order %s is %s", domain.ErrInvalidStateTransition, sub.ID, sub.Status)
	}
	if item.Status != domain.ItemStatusPending {
		return fmt.Errorf("%w: item %s is %s", domain.ErrInvalidStateTransition, item.ID, item.Status)
	}
	return nil
}

func indexOfItem(items []domain.LineItem, id string) int {
	for i := range items {
		if items[i].ID == id {
			return i
		}
	}
	return -1
}

func clone(sub domain.SubOrder) domain.SubOrder {
	out := sub
	out.Items = append([]domain.LineItem(nil), sub.Items...)
	out.DeliveryBatches = append([]domain.DeliveryBatchFee(nil), sub.DeliveryBatches...)
	return out
}
