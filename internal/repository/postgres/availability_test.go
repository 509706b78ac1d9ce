package postgres_test

import (
	"context"
	"testing"
	"time"

	"pira-rental-backend/internal/repository/postgres"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAvailabilityRepository_GetCalendar(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewAvailabilityRepository(db)
	from := time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery("FROM availability_calendar").
		WithArgs("p-1", "2026-11-01", "2026-11-02").
		WillReturnRows(sqlmock.NewRows([]string{"day", "total_quantity", "booked_quantity", "available_quantity", "is_fully_booked"}).
			AddRow(from, 5, 2, 3, false).
			AddRow(from.AddDate(0, 0, 1), 5, 5, 0, true))

	days, err := repo.GetCalendar(context.Background(), "p-1", from, from.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.Len(t, days, 2)
	assert.Equal(t, "2026-11-01", days[0].Date)
	assert.Equal(t, int32(3), days[0].AvailableQuantity)
	assert.True(t, days[1].IsFullyBooked)
	assert.NoError(t, mock.ExpectationsWereMet())
}
