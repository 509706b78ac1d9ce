package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"pira-rental-backend/internal/domain"
	"pira-rental-backend/internal/logger"
	"pira-rental-backend/internal/repository"

	"github.com/lib/pq"
)

// uniqueViolation is the Postgres SQLSTATE for a unique constraint failure.
const uniqueViolation = "23505"

type subOrderRepository struct {
	db *sql.DB
}

func NewSubOrderRepository(db *sql.DB) repository.SubOrderRepository {
	return &subOrderRepository{db: db}
}

func (r *subOrderRepository) GetByID(ctx context.Context, id string) (*domain.SubOrder, error) {
	query := `SELECT s.id, s.master_order_id, s.owner_id, s.renter_id, s.status, s.contract_id, d.decision, COALESCE(s.cancel_reason, ''),
	          s.rental_cents, s.deposit_cents, s.shipping_cents, s.owner_signed_on, s.renter_signed_on, s.version, s.updated_on
	          FROM sub_orders s LEFT JOIN renter_decisions d ON d.sub_order_id = s.id WHERE s.id = $1`
	logger.DatabaseCall("SELECT", "sub_orders", "subOrderID", id)

	sub := &domain.SubOrder{}
	var contractID, decision sql.NullString
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&sub.ID, &sub.MasterOrderID, &sub.OwnerID, &sub.RenterID, &sub.Status, &contractID, &decision, &sub.CancelReason,
		&sub.Pricing.RentalCents, &sub.Pricing.DepositCents, &sub.Pricing.ShippingCents,
		&sub.OwnerSignedOn, &sub.RenterSignedOn, &sub.Version, &sub.UpdatedOn,
	)
	if errors.Is(err, sql.ErrNoRows) {
		logger.DatabaseResult("SELECT", 0, nil, "subOrderID", id)
		return nil, fmt.Errorf("sub-order %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		logger.DatabaseResult("SELECT", 0, err, "subOrderID", id)
		return nil, err
	}
	if contractID.Valid {
		sub.ContractID = &contractID.String
	}
	if decision.Valid {
		d := domain.RenterDecision(decision.String)
		sub.Decision = &d
	}

	if sub.Items, err = r.listItems(ctx, id); err != nil {
		return nil, err
	}
	if sub.DeliveryBatches, err = r.listBatchFees(ctx, id); err != nil {
		return nil, err
	}
	logger.DatabaseResult("SELECT", int64(len(sub.Items)), nil, "subOrderID", id)
	return sub, nil
}

func (r *subOrderRepository) listItems(ctx context.Context, subOrderID string) ([]domain.LineItem, error) {
	query := `SELECT id, product_id, quantity, start_date, end_date, duration_days, total_rental_cents, total_deposit_cents,
	          status, COALESCE(rejection_reason, '')
	          FROM line_items WHERE sub_order_id = $1 AND dropped = FALSE ORDER BY position`
	rows, err := r.db.QueryContext(ctx, query, subOrderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.LineItem
	for rows.Next() {
		var it domain.LineItem
		var start, end sql.NullTime
		if err := rows.Scan(&it.ID, &it.ProductID, &it.Quantity, &start, &end, &it.Period.DurationDays,
			&it.TotalRentalCents, &it.TotalDepositCents, &it.Status, &it.RejectionReason); err != nil {
			return nil, err
		}
		if start.Valid {
			it.Period.StartDate = start.Time
		}
		if end.Valid {
			it.Period.EndDate = end.Time
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *subOrderRepository) listBatchFees(ctx context.Context, subOrderID string) ([]domain.DeliveryBatchFee, error) {
	query := `SELECT delivery_date, final_fee_cents FROM delivery_batches WHERE sub_order_id = $1 ORDER BY delivery_date`
	rows, err := r.db.QueryContext(ctx, query, subOrderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var fees []domain.DeliveryBatchFee
	for rows.Next() {
		var f domain.DeliveryBatchFee
		if err := rows.Scan(&f.DeliveryDate, &f.FinalFeeCents); err != nil {
			return nil, err
		}
		fees = append(fees, f)
	}
	return fees, rows.Err()
}

func (r *subOrderRepository) Save(ctx context.Context, change repository.SubOrderChange) error {
	sub := change.SubOrder
	logger.EnterMethod("subOrderRepository.Save", "subOrderID", sub.ID, "version", sub.Version, "status", sub.Status)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		logger.ExitMethodWithError("subOrderRepository.Save", err, "reason", "begin tx")
		return err
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	query := `UPDATE sub_orders SET status=$1, contract_id=$2, cancel_reason=$3, rental_cents=$4, deposit_cents=$5, shipping_cents=$6,
	          owner_signed_on=$7, renter_signed_on=$8, version=version+1, updated_on=$9
	          WHERE id=$10 AND version=$11`
	logger.DatabaseCall("UPDATE", "sub_orders", "subOrderID", sub.ID, "version", sub.Version)
	res, err := tx.ExecContext(ctx, query, sub.Status, sub.ContractID, sub.CancelReason,
		sub.Pricing.RentalCents, sub.Pricing.DepositCents, sub.Pricing.ShippingCents,
		sub.OwnerSignedOn, sub.RenterSignedOn, now, sub.ID, sub.Version)
	if err != nil {
		logger.DatabaseResult("UPDATE", 0, err, "subOrderID", sub.ID)
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	logger.DatabaseResult("UPDATE", n, nil, "subOrderID", sub.ID)
	if n == 0 {
		err := fmt.Errorf("sub-order %s at version %d: %w", sub.ID, sub.Version, domain.ErrStaleSubOrder)
		logger.ExitMethodRejected("subOrderRepository.Save", err)
		return err
	}

	ids := make([]string, 0, len(sub.Items))
	for _, it := range sub.Items {
		if _, err := tx.ExecContext(ctx, `UPDATE line_items SET status=$1, rejection_reason=$2 WHERE id=$3 AND sub_order_id=$4`,
			it.Status, it.RejectionReason, it.ID, sub.ID); err != nil {
			return err
		}
		ids = append(ids, it.ID)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE line_items SET dropped = TRUE WHERE sub_order_id = $1 AND NOT (id = ANY($2))`,
		sub.ID, pq.Array(ids)); err != nil {
		return err
	}

	if d := change.Decision; d != nil {
		if d.CreatedOn.IsZero() {
			d.CreatedOn = now
		}
		_, err := tx.ExecContext(ctx, `INSERT INTO renter_decisions (sub_order_id, renter_id, decision, idempotency_key, reason, created_on)
		          VALUES ($1, $2, $3, $4, $5, $6)`, d.SubOrderID, d.RenterID, d.Decision, d.IdempotencyKey, d.Reason, d.CreatedOn)
		if err != nil {
			var pqErr *pq.Error
			if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
				err = fmt.Errorf("sub-order %s: %w", sub.ID, domain.ErrDecisionAlreadyMade)
				logger.ExitMethodRejected("subOrderRepository.Save", err)
				return err
			}
			logger.ExitMethodWithError("subOrderRepository.Save", err, "reason", "insert decision")
			return err
		}
	}

	if s := change.Settlement; s != nil {
		if err := insertSettlement(ctx, tx, s, now); err != nil {
			logger.ExitMethodWithError("subOrderRepository.Save", err, "reason", "insert settlement")
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		logger.ExitMethodWithError("subOrderRepository.Save", err, "reason", "commit")
		return err
	}
	sub.Version++
	sub.UpdatedOn = now
	logger.ExitMethod("subOrderRepository.Save", "subOrderID", sub.ID, "version", sub.Version)
	return nil
}

// insertSettlement writes a pending refund. A row with the same idempotency key
// means the refund was already recorded and is left untouched.
func insertSettlement(ctx context.Context, tx *sql.Tx, s *domain.Settlement, now time.Time) error {
	query := `INSERT INTO settlement_ledger (sub_order_id, renter_id, idempotency_key, type, rental_refund_cents, deposit_refund_cents,
	          shipping_refund_cents, total_cents, status, attempts, created_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 0, $10)
	          ON CONFLICT (idempotency_key) DO NOTHING RETURNING id`
	if s.Status == "" {
		s.Status = domain.SettlementStatusPending
	}
	s.CreatedOn = now
	err := tx.QueryRowContext(ctx, query, s.SubOrderID, s.RenterID, s.IdempotencyKey, s.Type,
		s.Refund.RentalRefundCents, s.Refund.DepositRefundCents, s.Refund.ShippingRefundCents, s.Refund.TotalCents,
		s.Status, now).Scan(&s.ID)
	if errors.Is(err, sql.ErrNoRows) {
		logger.Warn("Settlement already recorded", "idempotencyKey", s.IdempotencyKey, "subOrderID", s.SubOrderID)
		return nil
	}
	return err
}

func (r *subOrderRepository) ListByMasterOrder(ctx context.Context, masterOrderID string) ([]domain.SubOrder, error) {
	return r.loadMany(ctx, `SELECT id FROM sub_orders WHERE master_order_id = $1 ORDER BY id`, masterOrderID)
}

func (r *subOrderRepository) ListContractPending(ctx context.Context, limit int) ([]domain.SubOrder, error) {
	query := `SELECT id FROM sub_orders WHERE status = ANY($1) AND contract_id IS NULL ORDER BY updated_on LIMIT $2`
	statuses := []string{string(domain.SubOrderStatusOwnerConfirmed), string(domain.SubOrderStatusReadyForContract)}
	return r.loadMany(ctx, query, pq.Array(statuses), limit)
}

func (r *subOrderRepository) ListByStatus(ctx context.Context, status domain.SubOrderStatus, limit int) ([]domain.SubOrder, error) {
	return r.loadMany(ctx, `SELECT id FROM sub_orders WHERE status = $1 ORDER BY updated_on LIMIT $2`, status, limit)
}

func (r *subOrderRepository) loadMany(ctx context.Context, query string, args ...interface{}) ([]domain.SubOrder, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, err
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	subs := make([]domain.SubOrder, 0, len(ids))
	for _, id := range ids {
		sub, err := r.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		subs = append(subs, *sub)
	}
	return subs, nil
}
