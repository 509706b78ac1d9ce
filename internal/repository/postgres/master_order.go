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
)

type masterOrderRepository struct {
	db *sql.DB
}

func NewMasterOrderRepository(db *sql.DB) repository.MasterOrderRepository {
	return &masterOrderRepository{db: db}
}

func (r *masterOrderRepository) GetByID(ctx context.Context, id string) (*domain.MasterOrder, error) {
	m := &domain.MasterOrder{}
	query := `SELECT id, renter_id, status, created_on, updated_on FROM master_orders WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(&m.ID, &m.RenterID, &m.Status, &m.CreatedOn, &m.UpdatedOn)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("master order %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (r *masterOrderRepository) UpdateStatus(ctx context.Context, id string, status domain.MasterOrderStatus) error {
	query := `UPDATE master_orders SET status = $1, updated_on = $2 WHERE id = $3`
	logger.DatabaseCall("UPDATE", "master_orders", "masterOrderID", id, "status", status)
	res, err := r.db.ExecContext(ctx, query, status, time.Now().UTC(), id)
	if err != nil {
		logger.DatabaseResult("UPDATE", 0, err, "masterOrderID", id)
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	logger.DatabaseResult("UPDATE", n, nil, "masterOrderID", id)
	if n == 0 {
		return fmt.Errorf("master order %s: %w", id, domain.ErrNotFound)
	}
	return nil
}
