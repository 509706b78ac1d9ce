package postgres_test

import (
	"context"
	"testing"
	"time"

	"pira-rental-backend/internal/domain"
	"pira-rental-backend/internal/repository"
	"pira-rental-backend/internal/repository/postgres"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var subOrderCols = []string{"id", "master_order_id", "owner_id", "renter_id", "status", "contract_id", "decision", "cancel_reason",
	"rental_cents", "deposit_cents", "shipping_cents", "owner_signed_on", "renter_signed_on", "version", "updated_on"}

var itemCols = []string{"id", "product_id", "quantity", "start_date", "end_date", "duration_days",
	"total_rental_cents", "total_deposit_cents", "status", "rejection_reason"}

func TestSubOrderRepository_GetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewSubOrderRepository(db)
	ctx := context.Background()
	start := time.Date(2026, 11, 2, 0, 0, 0, 0, time.UTC)

	t.Run("Success", func(t *testing.T) {
		mock.ExpectQuery("SELECT s.id, s.master_order_id").
			WithArgs("sub-1").
			WillReturnRows(sqlmock.NewRows(subOrderCols).AddRow(
				"sub-1", "master-1", 10, 20, "PARTIALLY_CONFIRMED", nil, "CONTINUE_PARTIAL", "",
				300, 50, 30, nil, nil, 4, start))
		mock.ExpectQuery("FROM line_items WHERE sub_order_id").
			WithArgs("sub-1").
			WillReturnRows(sqlmock.NewRows(itemCols).
				AddRow("A", "p-1", 1, start, start.AddDate(0, 0, 2), 2, 100, 50, "CONFIRMED", "").
				AddRow("C", "p-3", 1, nil, nil, 0, 150, 20, "REJECTED", "damaged"))
		mock.ExpectQuery("FROM delivery_batches").
			WithArgs("sub-1").
			WillReturnRows(sqlmock.NewRows([]string{"delivery_date", "final_fee_cents"}).AddRow("2026-11-02", 30))

		sub, err := repo.GetByID(ctx, "sub-1")
		require.NoError(t, err)
		assert.Equal(t, domain.SubOrderStatusPartiallyConfirmed, sub.Status)
		require.NotNil(t, sub.Decision)
		assert.Equal(t, domain.RenterDecisionContinuePartial, *sub.Decision)
		assert.Nil(t, sub.ContractID)
		assert.Equal(t, int32(4), sub.Version)
		require.Len(t, sub.Items, 2)
		assert.Equal(t, start, sub.Items[0].Period.StartDate)
		assert.True(t, sub.Items[1].Period.StartDate.IsZero())
		assert.Equal(t, "damaged", sub.Items[1].RejectionReason)
		assert.Equal(t, []domain.DeliveryBatchFee{{DeliveryDate: "2026-11-02", FinalFeeCents: 30}}, sub.DeliveryBatches)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectQuery("SELECT s.id, s.master_order_id").
			WithArgs("missing").
			WillReturnRows(sqlmock.NewRows(subOrderCols))

		_, err := repo.GetByID(ctx, "missing")
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestSubOrderRepository_Save(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewSubOrderRepository(db)
	ctx := context.Background()

	newSub := func() *domain.SubOrder {
		return &domain.SubOrder{
			ID:       "sub-1",
			RenterID: 20,
			Status:   domain.SubOrderStatusCancelled,
			Items: []domain.LineItem{
				{ID: "A", Status: domain.ItemStatusConfirmed},
				{ID: "C", Status: domain.ItemStatusRejected, RejectionReason: "damaged"},
			},
			CancelReason: "changed plans",
			Version:      3,
		}
	}

	t.Run("Success_WithDecisionAndSettlement", func(t *testing.T) {
		sub := newSub()
		decision := &domain.DecisionRecord{SubOrderID: "sub-1", RenterID: 20, Decision: domain.RenterDecisionCancelAll, IdempotencyKey: "key-1", Reason: "changed plans"}
		settlement := &domain.Settlement{SubOrderID: "sub-1", RenterID: 20, IdempotencyKey: "key-1", Type: domain.SettlementTypeFullRefund,
			Refund: domain.RefundOutcome{RentalRefundCents: 250, DepositRefundCents: 70, ShippingRefundCents: 30, TotalCents: 350}}

		mock.ExpectBegin()
		mock.ExpectExec("UPDATE sub_orders SET").
			WithArgs(domain.SubOrderStatusCancelled, nil, "changed plans", int64(0), int64(0), int64(0), nil, nil, sqlmock.AnyArg(), "sub-1", int32(3)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE line_items SET status").
			WithArgs(domain.ItemStatusConfirmed, "", "A", "sub-1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE line_items SET status").
			WithArgs(domain.ItemStatusRejected, "damaged", "C", "sub-1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE line_items SET dropped").
			WithArgs("sub-1", sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("INSERT INTO renter_decisions").
			WithArgs("sub-1", int32(20), domain.RenterDecisionCancelAll, "key-1", "changed plans", sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectQuery("INSERT INTO settlement_ledger").
			WithArgs("sub-1", int32(20), "key-1", domain.SettlementTypeFullRefund, int64(250), int64(70), int64(30), int64(350),
				domain.SettlementStatusPending, sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(77))
		mock.ExpectCommit()

		err := repo.Save(ctx, repository.SubOrderChange{SubOrder: sub, Decision: decision, Settlement: settlement})
		require.NoError(t, err)
		assert.Equal(t, int32(4), sub.Version)
		assert.Equal(t, int64(77), settlement.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("StaleVersion", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("UPDATE sub_orders SET").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		sub := newSub()
		err := repo.Save(ctx, repository.SubOrderChange{SubOrder: sub})
		assert.ErrorIs(t, err, domain.ErrStaleSubOrder)
		assert.True(t, domain.IsStateConflict(err))
		assert.Equal(t, int32(3), sub.Version)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("SecondDecision", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("UPDATE sub_orders SET").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE line_items SET status").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE line_items SET status").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE line_items SET dropped").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("INSERT INTO renter_decisions").WillReturnError(&pq.Error{Code: "23505"})
		mock.ExpectRollback()

		err := repo.Save(ctx, repository.SubOrderChange{
			SubOrder: newSub(),
			Decision: &domain.DecisionRecord{SubOrderID: "sub-1", Decision: domain.RenterDecisionCancelAll, IdempotencyKey: "key-1"},
		})
		assert.ErrorIs(t, err, domain.ErrDecisionAlreadyMade)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("SettlementAlreadyRecorded", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("UPDATE sub_orders SET").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE line_items SET status").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE line_items SET status").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE line_items SET dropped").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery("INSERT INTO settlement_ledger").WillReturnRows(sqlmock.NewRows([]string{"id"}))
		mock.ExpectCommit()

		settlement := &domain.Settlement{SubOrderID: "sub-1", IdempotencyKey: "key-1", Type: domain.SettlementTypeFullRefund}
		err := repo.Save(ctx, repository.SubOrderChange{SubOrder: newSub(), Settlement: settlement})
		assert.NoError(t, err)
		assert.Zero(t, settlement.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestSubOrderRepository_ListContractPending(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewSubOrderRepository(db)
	now := time.Now()

	mock.ExpectQuery("SELECT id FROM sub_orders WHERE status = ANY").
		WithArgs(sqlmock.AnyArg(), 10).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("sub-7"))
	mock.ExpectQuery("SELECT s.id, s.master_order_id").
		WithArgs("sub-7").
		WillReturnRows(sqlmock.NewRows(subOrderCols).AddRow(
			"sub-7", "master-2", 10, 20, "OWNER_CONFIRMED", nil, nil, "", 100, 0, 0, nil, nil, 2, now))
	mock.ExpectQuery("FROM line_items WHERE sub_order_id").WithArgs("sub-7").WillReturnRows(sqlmock.NewRows(itemCols))
	mock.ExpectQuery("FROM delivery_batches").WithArgs("sub-7").WillReturnRows(sqlmock.NewRows([]string{"delivery_date", "final_fee_cents"}))

	subs, err := repo.ListContractPending(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.True(t, subs[0].ContractPending())
	assert.NoError(t, mock.ExpectationsWereMet())
}
