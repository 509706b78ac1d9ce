package service

import (
	"context"

	"pira-rental-backend/internal/domain"
	"pira-rental-backend/internal/logger"
	"pira-rental-backend/internal/repository"
)

// defaultPageSize applies when a caller asks for a non-positive page size.
const defaultPageSize = 20

type notificationService struct {
	noteRepo repository.NotificationRepository
}

func NewNotificationService(noteRepo repository.NotificationRepository) NotificationService {
	return &notificationService{noteRepo: noteRepo}
}

func (s *notificationService) GetNotifications(ctx context.Context, userID int32, page, pageSize int32) ([]domain.Notification, int32, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	offset := (page - 1) * pageSize
	return s.noteRepo.List(ctx, userID, pageSize, offset)
}

func (s *notificationService) MarkAsRead(ctx context.Context, userID, notificationID int32) error {
	return s.noteRepo.MarkAsRead(ctx, notificationID, userID)
}

var notificationTitles = map[domain.NotificationType]string{
	domain.NotificationOrderCancelled:     "Order cancelled",
	domain.NotificationOwnerRejected:      "Items unavailable",
	domain.NotificationPartiallyConfirmed: "Order partially confirmed",
	domain.NotificationOwnerConfirmed:     "Order confirmed",
	domain.NotificationPartialAccepted:    "Partial order accepted",
	domain.NotificationContractReady:      "Contract ready",
	domain.NotificationContractSigned:     "Contract signed",
}

// notifier writes an in-app notification and, when the user has an address,
// sends the same text by email.
type notifier struct {
	noteRepo repository.NotificationRepository
	userRepo repository.UserRepository
	emailSvc EmailService
}

// NewNotifier builds the default Notifier. emailSvc may be nil to disable email.
func NewNotifier(noteRepo repository.NotificationRepository, userRepo repository.UserRepository, emailSvc EmailService) Notifier {
	return &notifier{noteRepo: noteRepo, userRepo: userRepo, emailSvc: emailSvc}
}

func (n *notifier) Notify(ctx context.Context, userID int32, kind domain.NotificationType, subOrderID, message string) {
	title := notificationTitles[kind]
	if title == "" {
		title = string(kind)
	}

	note := &domain.Notification{
		UserID:  userID,
		Type:    kind,
		Title:   title,
		Message: message,
		Attributes: map[string]string{
			"sub_order_id": subOrderID,
		},
	}
	if err := n.noteRepo.Create(ctx, note); err != nil {
		logger.Warn("Failed to store notification", "userID", userID, "type", kind, "error", err)
	}

	if n.emailSvc == nil {
		return
	}
	user, err := n.userRepo.GetByID(ctx, userID)
	if err != nil {
		logger.Warn("Failed to load notification recipient", "userID", userID, "error", err)
		return
	}
	if user.Email == "" {
		return
	}
	if err := n.emailSvc.SendOrderUpdate(ctx, user.Email, user.Name, title, message); err != nil {
		logger.Warn("Failed to email notification", "userID", userID, "type", kind, "error", err)
	}
}
