package order

import "pira-rental-backend/internal/domain"

// ShippingRefund is all-or-nothing per trip: a batch with any confirmed item
// still ships, so its fee is kept.
func ShippingRefund(b domain.DeliveryBatch) int64 {
	if len(b.ConfirmedIDs) == 0 {
		return b.FinalFeeCents
	}
	return 0
}

// PartialRefund is the refund owed for rejected items when the rest of the
// sub-order goes ahead.
func PartialRefund(sub domain.SubOrder) domain.RefundOutcome {
	var out domain.RefundOutcome
	for _, it := range sub.Items {
		if it.Status != domain.ItemStatusRejected {
			continue
		}
		out.RentalRefundCents += it.TotalRentalCents
		out.DepositRefundCents += it.TotalDepositCents
	}
	for _, b := range RecalculateBatches(sub.Items, sub.DeliveryBatches) {
		out.ShippingRefundCents += ShippingRefund(b)
	}
	return withTotal(out)
}

// Retained is what the renter keeps paying for: confirmed items plus the fee
// of every batch that still ships.
func Retained(sub domain.SubOrder) domain.Pricing {
	var p domain.Pricing
	for _, it := range sub.Items {
		if it.Status != domain.ItemStatusConfirmed {
			continue
		}
		p.RentalCents += it.TotalRentalCents
		p.DepositCents += it.TotalDepositCents
	}
	for _, b := range RecalculateBatches(sub.Items, sub.DeliveryBatches) {
		p.ShippingCents += b.FinalFeeCents - ShippingRefund(b)
	}
	return p
}

// FullRefund returns everything the renter paid for the sub-order regardless
// of item status. Every cancellation path (cancel all, cancel pending, owner
// rejected everything) goes through here.
func FullRefund(sub domain.SubOrder) domain.RefundOutcome {
	var out domain.RefundOutcome
	for _, it := range sub.Items {
		out.RentalRefundCents += it.TotalRentalCents
		out.DepositRefundCents += it.TotalDepositCents
	}
	for _, fee := range FeeTable(sub.DeliveryBatches) {
		out.ShippingRefundCents += fee
	}
	return withTotal(out)
}

// PricingTotal sums rental, deposit and shipping.
func PricingTotal(p domain.Pricing) int64 {
	return p.RentalCents + p.DepositCents + p.ShippingCents
}

func withTotal(r domain.RefundOutcome) domain.RefundOutcome {
	r.TotalCents = r.RentalRefundCents + r.DepositRefundCents + r.ShippingRefundCents
	return r
}
