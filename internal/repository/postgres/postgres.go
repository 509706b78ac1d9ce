package postgres

import (
	"database/sql"

	"pira-rental-backend/internal/repository"

	_ "github.com/lib/pq"
)

type Store struct {
	db *sql.DB
	repository.SubOrderRepository
	repository.MasterOrderRepository
	repository.SettlementRepository
	repository.AvailabilityRepository
	repository.NotificationRepository
	repository.UserRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                     db,
		SubOrderRepository:     NewSubOrderRepository(db),
		MasterOrderRepository:  NewMasterOrderRepository(db),
		SettlementRepository:   NewSettlementRepository(db),
		AvailabilityRepository: NewAvailabilityRepository(db),
		NotificationRepository: NewNotificationRepository(db),
		UserRepository:         NewUserRepository(db),
	}
}

// DB exposes the underlying pool for health checks.
func (s *Store) DB() *sql.DB {
	return s.db
}
