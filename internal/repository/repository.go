package repository

import (
	"context"
	"time"

	"pira-rental-backend/internal/domain"
)

// SubOrderChange is everything written when a sub-order moves. Decision and
// Settlement are optional and are committed in the same transaction as the
// sub-order itself.
type SubOrderChange struct {
	SubOrder   *domain.SubOrder
	Decision   *domain.DecisionRecord
	Settlement *domain.Settlement
}

type SubOrderRepository interface {
	GetByID(ctx context.Context, id string) (*domain.SubOrder, error)
	// Save persists the change if the stored version still matches
	// SubOrder.Version, otherwise it returns domain.ErrStaleSubOrder.
	Save(ctx context.Context, change SubOrderChange) error
	ListByMasterOrder(ctx context.Context, masterOrderID string) ([]domain.SubOrder, error)
	ListContractPending(ctx context.Context, limit int) ([]domain.SubOrder, error)
	ListByStatus(ctx context.Context, status domain.SubOrderStatus, limit int) ([]domain.SubOrder, error)
}

type MasterOrderRepository interface {
	GetByID(ctx context.Context, id string) (*domain.MasterOrder, error)
	UpdateStatus(ctx context.Context, id string, status domain.MasterOrderStatus) error
}

type SettlementRepository interface {
	ListPending(ctx context.Context, limit, maxAttempts int) ([]domain.Settlement, error)
	MarkDispatched(ctx context.Context, id int64) error
	MarkFailed(ctx context.Context, id int64, reason string) error
}

type AvailabilityRepository interface {
	// GetCalendar returns the stored days in [from, to], both inclusive.
	GetCalendar(ctx context.Context, productID string, from, to time.Time) ([]domain.AvailabilityDay, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, note *domain.Notification) error
	List(ctx context.Context, userID int32, limit, offset int32) ([]domain.Notification, int32, error)
	MarkAsRead(ctx context.Context, id, userID int32) error
}

type UserRepository interface {
	GetByID(ctx context.Context, id int32) (*domain.User, error)
}
