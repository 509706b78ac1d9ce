package postgres

import (
	"context"
	"database/sql"
	"time"

	"pira-rental-backend/internal/domain"
	"pira-rental-backend/internal/logger"
	"pira-rental-backend/internal/repository"
)

type availabilityRepository struct {
	db *sql.DB
}

func NewAvailabilityRepository(db *sql.DB) repository.AvailabilityRepository {
	return &availabilityRepository{db: db}
}

func (r *availabilityRepository) GetCalendar(ctx context.Context, productID string, from, to time.Time) ([]domain.AvailabilityDay, error) {
	query := `SELECT day, total_quantity, booked_quantity, available_quantity, is_fully_booked
	          FROM availability_calendar WHERE product_id = $1 AND day BETWEEN $2 AND $3 ORDER BY day`
	fromKey, toKey := from.Format(domain.DateLayout), to.Format(domain.DateLayout)
	logger.DatabaseCall("SELECT", "availability_calendar", "productID", productID, "from", fromKey, "to", toKey)

	rows, err := r.db.QueryContext(ctx, query, productID, fromKey, toKey)
	if err != nil {
		logger.DatabaseResult("SELECT", 0, err, "productID", productID)
		return nil, err
	}
	defer rows.Close()

	var days []domain.AvailabilityDay
	for rows.Next() {
		var d domain.AvailabilityDay
		var day time.Time
		if err := rows.Scan(&day, &d.TotalQuantity, &d.BookedQuantity, &d.AvailableQuantity, &d.IsFullyBooked); err != nil {
			return nil, err
		}
		d.Date = day.Format(domain.DateLayout)
		days = append(days, d)
	}
	logger.DatabaseResult("SELECT", int64(len(days)), rows.Err(), "productID", productID)
	return days, rows.Err()
}
