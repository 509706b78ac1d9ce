package order

import (
	"testing"

	"pira-rental-backend/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestPartialRefund(t *testing.T) {
	t.Run("Mixed batch keeps its shipping fee", func(t *testing.T) {
		sub := mustReject(mustConfirm(mustConfirm(threeItemSubOrder(), "A"), "B"), "C", "unavailable")

		refund := PartialRefund(sub)
		assert.Equal(t, int64(150), refund.RentalRefundCents)
		assert.Equal(t, int64(20), refund.DepositRefundCents)
		assert.Zero(t, refund.ShippingRefundCents)
		assert.Equal(t, int64(170), refund.TotalCents)

		kept := Retained(sub)
		assert.Equal(t, int64(350), kept.RentalCents+kept.DepositCents)
		assert.Equal(t, int64(30), kept.ShippingCents)
		assert.Equal(t, int64(550), PricingTotal(kept)+refund.TotalCents)
	})

	t.Run("Batch with no confirmed items refunds its fee", func(t *testing.T) {
		sub := domain.SubOrder{
			ID: "sub-2",
			Items: []domain.LineItem{
				item("A", "2026-11-02", 100, 10),
				item("B", "2026-11-09", 80, 5),
			},
			DeliveryBatches: []domain.DeliveryBatchFee{
				{DeliveryDate: "2026-11-02", FinalFeeCents: 30},
				{DeliveryDate: "2026-11-09", FinalFeeCents: 45},
			},
			Status: domain.SubOrderStatusPendingConfirmation,
		}
		sub = mustReject(mustConfirm(sub, "A"), "B", "booked elsewhere")

		refund := PartialRefund(sub)
		assert.Equal(t, int64(80), refund.RentalRefundCents)
		assert.Equal(t, int64(5), refund.DepositRefundCents)
		assert.Equal(t, int64(45), refund.ShippingRefundCents)
		assert.Equal(t, int64(130), refund.TotalCents)
	})
}

func TestShippingRefundMonotonicity(t *testing.T) {
	b := domain.DeliveryBatch{DeliveryDate: "2026-11-02", FinalFeeCents: 30}

	b.RejectedIDs = []string{"A", "B"}
	assert.Equal(t, int64(30), ShippingRefund(b))

	b.ConfirmedIDs = []string{"C"}
	assert.Zero(t, ShippingRefund(b))
}

func TestFullRefund(t *testing.T) {
	t.Run("Counts every item and every batch fee", func(t *testing.T) {
		sub := mustReject(mustConfirm(threeItemSubOrder(), "A"), "C", "unavailable")
		refund := FullRefund(sub)
		assert.Equal(t, int64(450), refund.RentalRefundCents)
		assert.Equal(t, int64(70), refund.DepositRefundCents)
		assert.Equal(t, int64(30), refund.ShippingRefundCents)
		assert.Equal(t, int64(550), refund.TotalCents)
	})

	t.Run("Items without a start date still refund rental and deposit", func(t *testing.T) {
		sub := domain.SubOrder{Items: []domain.LineItem{item("A", "", 40, 60)}}
		assert.Equal(t, int64(100), FullRefund(sub).TotalCents)
	})

	t.Run("Full refund dominates partial refund when anything is confirmed", func(t *testing.T) {
		sub := mustReject(mustConfirm(mustConfirm(threeItemSubOrder(), "A"), "B"), "C", "unavailable")
		assert.GreaterOrEqual(t, FullRefund(sub).TotalCents, PartialRefund(sub).TotalCents)
	})
}
