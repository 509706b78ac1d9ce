package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"pira-rental-backend/internal/domain"
	"pira-rental-backend/internal/logger"
	"pira-rental-backend/internal/repository"
)

type settlementRepository struct {
	db *sql.DB
}

func NewSettlementRepository(db *sql.DB) repository.SettlementRepository {
	return &settlementRepository{db: db}
}

const settlementColumns = `id, sub_order_id, renter_id, idempotency_key, type, rental_refund_cents, deposit_refund_cents,
	shipping_refund_cents, total_cents, status, attempts, COALESCE(last_error, ''), created_on, dispatched_on`

func scanSettlements(rows *sql.Rows) ([]domain.Settlement, error) {
	var out []domain.Settlement
	for rows.Next() {
		var s domain.Settlement
		if err := rows.Scan(&s.ID, &s.SubOrderID, &s.RenterID, &s.IdempotencyKey, &s.Type,
			&s.Refund.RentalRefundCents, &s.Refund.DepositRefundCents, &s.Refund.ShippingRefundCents, &s.Refund.TotalCents,
			&s.Status, &s.Attempts, &s.LastError, &s.CreatedOn, &s.DispatchedOn); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// ListPending returns refunds not yet handed to the payment service, oldest
// first, skipping rows that exhausted their attempts.
func (r *settlementRepository) ListPending(ctx context.Context, limit, maxAttempts int) ([]domain.Settlement, error) {
	query := `SELECT ` + settlementColumns + ` FROM settlement_ledger
	          WHERE status IN ('PENDING', 'FAILED') AND attempts < $1 ORDER BY created_on LIMIT $2`
	logger.DatabaseCall("SELECT", "settlement_ledger", "limit", limit)
	rows, err := r.db.QueryContext(ctx, query, maxAttempts, limit)
	if err != nil {
		logger.DatabaseResult("SELECT", 0, err)
		return nil, err
	}
	defer rows.Close()
	out, err := scanSettlements(rows)
	logger.DatabaseResult("SELECT", int64(len(out)), err)
	return out, err
}

func (r *settlementRepository) MarkDispatched(ctx context.Context, id int64) error {
	query := `UPDATE settlement_ledger SET status = 'DISPATCHED', attempts = attempts + 1, last_error = NULL, dispatched_on = $1 WHERE id = $2`
	return r.exec(ctx, "MarkDispatched", query, time.Now().UTC(), id)
}

func (r *settlementRepository) MarkFailed(ctx context.Context, id int64, reason string) error {
	query := `UPDATE settlement_ledger SET status = 'FAILED', attempts = attempts + 1, last_error = $1 WHERE id = $2`
	return r.exec(ctx, "MarkFailed", query, reason, id)
}

func (r *settlementRepository) exec(ctx context.Context, op, query string, args ...interface{}) error {
	logger.DatabaseCall("UPDATE", "settlement_ledger", "op", op)
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		logger.DatabaseResult("UPDATE", 0, err, "op", op)
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	logger.DatabaseResult("UPDATE", n, nil, "op", op)
	if n == 0 {
		return fmt.Errorf("settlement: %w", domain.ErrNotFound)
	}
	return nil
}
