package order

import (
	"testing"
	"time"

	"pira-rental-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveStatus(t *testing.T) {
	mk := func(statuses ...domain.ItemStatus) []domain.LineItem {
		items := make([]domain.LineItem, len(statuses))
		for i, s := range statuses {
			items[i] = domain.LineItem{ID: string(rune('A' + i)), Status: s}
		}
		return items
	}
	p, c, r := domain.ItemStatusPending, domain.ItemStatusConfirmed, domain.ItemStatusRejected

	tests := []struct {
		name  string
		items []domain.LineItem
		want  domain.SubOrderStatus
	}{
		{"empty", nil, domain.SubOrderStatusPendingConfirmation},
		{"any pending", mk(c, p, r), domain.SubOrderStatusPendingConfirmation},
		{"all confirmed", mk(c, c), domain.SubOrderStatusOwnerConfirmed},
		{"all rejected", mk(r, r), domain.SubOrderStatusOwnerRejected},
		{"mixed", mk(c, r, c), domain.SubOrderStatusPartiallyConfirmed},
		{"mixed reordered", mk(r, c, c), domain.SubOrderStatusPartiallyConfirmed},
		{"unknown status never settles", mk(c, "LOST"), domain.SubOrderStatusPendingConfirmation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveStatus(tt.items))
		})
	}
}

func TestRecomputeLeavesLaterStatusesAlone(t *testing.T) {
	sub := threeItemSubOrder()
	sub.Status = domain.SubOrderStatusReadyForContract
	assert.Equal(t, domain.SubOrderStatusReadyForContract, Recompute(sub).Status)
}

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(domain.SubOrderStatusPendingConfirmation, domain.SubOrderStatusOwnerRejected))
	assert.True(t, CanTransition(domain.SubOrderStatusPartiallyConfirmed, domain.SubOrderStatusReadyForContract))
	assert.True(t, CanTransition(domain.SubOrderStatusOwnerRejected, domain.SubOrderStatusCancelled))
	assert.False(t, CanTransition(domain.SubOrderStatusOwnerRejected, domain.SubOrderStatusReadyForContract))
	assert.False(t, CanTransition(domain.SubOrderStatusCancelled, domain.SubOrderStatusPendingConfirmation))
	assert.False(t, CanTransition(domain.SubOrderStatusContractSigned, domain.SubOrderStatusCancelled))
	assert.True(t, CanTransition(domain.SubOrderStatusOwnerConfirmed, domain.SubOrderStatusReadyForContract))
	assert.False(t, CanTransition(domain.SubOrderStatusOwnerConfirmed, domain.SubOrderStatusContractSigned))
	assert.True(t, CanTransition(domain.SubOrderStatusReadyForContract, domain.SubOrderStatusContractSigned))
	assert.True(t, CanTransition(domain.SubOrderStatusPendingConfirmation, domain.SubOrderStatusPendingConfirmation))
}

func TestAllRejectedAutoCancel(t *testing.T) {
	sub := domain.SubOrder{
		ID: "sub-9",
		Items: []domain.LineItem{
			item("A", "2026-11-02", 100, 50),
			item("B", "2026-11-02", 60, 0),
		},
		DeliveryBatches: []domain.DeliveryBatchFee{{DeliveryDate: "2026-11-02", FinalFeeCents: 30}},
		Status:          domain.SubOrderStatusPendingConfirmation,
	}
	sub = mustReject(mustReject(sub, "A", "x"), "B", "y")
	require.Equal(t, domain.SubOrderStatusOwnerRejected, sub.Status)
	assert.False(t, NeedsDecision(sub))

	out, refund, err := AutoCancelRejected(sub)
	require.NoError(t, err)
	assert.Equal(t, domain.SubOrderStatusCancelled, out.Status)
	assert.Equal(t, AutoCancelReason, out.CancelReason)
	assert.Equal(t, int64(240), refund.TotalCents)

	_, _, err = AutoCancelRejected(out)
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)
}

func TestContractSigning(t *testing.T) {
	sub := threeItemSubOrder()
	for _, id := range []string{"A", "B", "C"} {
		sub = mustConfirm(sub, id)
	}

	_, err := MarkSigned(sub, domain.SigningPartyOwner, time.Now())
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)

	sub, err = AttachContract(sub, domain.ContractRef{ID: "contract-1"})
	require.NoError(t, err)
	require.NotNil(t, sub.ContractID)
	assert.Equal(t, domain.SubOrderStatusReadyForContract, sub.Status)
	assert.False(t, sub.ContractPending())

	again, err := AttachContract(sub, domain.ContractRef{ID: "contract-2"})
	require.NoError(t, err)
	assert.Equal(t, "contract-1", *again.ContractID)

	sub, err = MarkSigned(sub, domain.SigningPartyOwner, time.Now())
	require.NoError(t, err)
	assert.Equal(t, domain.SubOrderStatusReadyForContract, sub.Status)

	sub, err = MarkSigned(sub, domain.SigningPartyRenter, time.Now())
	require.NoError(t, err)
	assert.Equal(t, domain.SubOrderStatusContractSigned, sub.Status)
}

func TestDeriveMasterStatus(t *testing.T) {
	partial := domain.RenterDecisionContinuePartial
	sub := func(s domain.SubOrderStatus, d *domain.RenterDecision) domain.SubOrder {
		return domain.SubOrder{Status: s, Decision: d}
	}

	tests := []struct {
		name string
		subs []domain.SubOrder
		want domain.MasterOrderStatus
	}{
		{"no sub-orders", nil, domain.MasterOrderStatusPendingConfirmation},
		{"waiting on an owner", []domain.SubOrder{
			sub(domain.SubOrderStatusOwnerConfirmed, nil),
			sub(domain.SubOrderStatusPendingConfirmation, nil),
		}, domain.MasterOrderStatusPendingConfirmation},
		{"waiting on the renter", []domain.SubOrder{
			sub(domain.SubOrderStatusPartiallyConfirmed, nil),
		}, domain.MasterOrderStatusPendingConfirmation},
		{"all confirmed", []domain.SubOrder{
			sub(domain.SubOrderStatusOwnerConfirmed, nil),
			sub(domain.SubOrderStatusContractSigned, nil),
		}, domain.MasterOrderStatusConfirmed},
		{"one cancelled", []domain.SubOrder{
			sub(domain.SubOrderStatusOwnerConfirmed, nil),
			sub(domain.SubOrderStatusCancelled, nil),
		}, domain.MasterOrderStatusPartiallyCancelled},
		{"partial acceptance", []domain.SubOrder{
			sub(domain.SubOrderStatusReadyForContract, &partial),
		}, domain.MasterOrderStatusPartiallyCancelled},
		{"everything cancelled", []domain.SubOrder{
			sub(domain.SubOrderStatusCancelled, nil),
			sub(domain.SubOrderStatusOwnerRejected, nil),
		}, domain.MasterOrderStatusCancelled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveMasterStatus(tt.subs))
		})
	}
}
