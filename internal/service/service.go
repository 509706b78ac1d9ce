package service

import (
	"context"
	"time"

	"pira-rental-backend/internal/domain"
)

// OrderConfirmationService covers the owner side of a sub-order.
type OrderConfirmationService interface {
	GetSubOrder(ctx context.Context, userID int32, subOrderID string) (*domain.SubOrder, error)
	ConfirmLineItem(ctx context.Context, ownerID int32, subOrderID, itemID string) (*domain.SubOrder, error)
	RejectLineItem(ctx context.Context, ownerID int32, subOrderID, itemID, reason string) (*domain.SubOrder, error)
	// BulkPartialConfirm confirms the listed items and rejects the rest. The
	// contract is nil while generation is pending or the renter must decide.
	BulkPartialConfirm(ctx context.Context, ownerID int32, subOrderID string, confirmedItemIDs []string) (*domain.SubOrder, *domain.ContractRef, error)
	// ResumeContract retries contract generation. ownerID 0 means a system caller.
	ResumeContract(ctx context.Context, ownerID int32, subOrderID string) (*domain.ContractRef, error)
	MarkContractSigned(ctx context.Context, userID int32, subOrderID string) (*domain.SubOrder, error)
	AutoCancelRejected(ctx context.Context, subOrderID string) (*domain.RefundOutcome, error)
}

// RenterDecisionService covers the renter side of a sub-order.
type RenterDecisionService interface {
	CancelAll(ctx context.Context, renterID int32, subOrderID, reason string) (*domain.RefundOutcome, error)
	AcceptPartial(ctx context.Context, renterID int32, subOrderID string) (*domain.RefundOutcome, *domain.ContractRef, error)
	CancelPending(ctx context.Context, renterID int32, subOrderID, reason string) (*domain.RefundOutcome, error)
	PreviewRefund(ctx context.Context, renterID int32, subOrderID string, decision domain.RenterDecision) (*domain.RefundOutcome, error)
}

type CartService interface {
	ValidateCheckout(ctx context.Context, productID string, quantity int32, start, end time.Time) (*domain.AvailabilityResult, error)
	GetAvailability(ctx context.Context, productID string, start, end time.Time) ([]domain.AvailabilityDay, *domain.AvailabilityResult, error)
}

type NotificationService interface {
	GetNotifications(ctx context.Context, userID int32, page, pageSize int32) ([]domain.Notification, int32, error)
	MarkAsRead(ctx context.Context, userID, notificationID int32) error
}

// Notifier delivers in-app and email notices. Delivery is best effort and
// never fails the operation that triggered it.
type Notifier interface {
	Notify(ctx context.Context, userID int32, kind domain.NotificationType, subOrderID, message string)
}

type EmailService interface {
	SendOrderUpdate(ctx context.Context, email, name, subject, body string) error
}

// ContractGenerator produces the rental contract for a contract-eligible sub-order.
type ContractGenerator interface {
	Generate(ctx context.Context, sub *domain.SubOrder) (*domain.ContractRef, error)
}

// RefundExecutor hands a recorded settlement to the payment service.
type RefundExecutor interface {
	Execute(ctx context.Context, s domain.Settlement) error
}

type Clock interface {
	Now() time.Time
}

// SystemClock reads wall time in a fixed location.
type SystemClock struct {
	Location *time.Location
}

func (c SystemClock) Now() time.Time {
	if c.Location == nil {
		return time.Now()
	}
	return time.Now().In(c.Location)
}
