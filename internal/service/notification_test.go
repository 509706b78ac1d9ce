package service_test

import (
	"context"
	"errors"
	"testing"

	"pira-rental-backend/internal/domain"
	"pira-rental-backend/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestNotificationService_GetNotifications(t *testing.T) {
	noteRepo := new(MockNotificationRepo)
	svc := service.NewNotificationService(noteRepo)
	ctx := context.Background()

	t.Run("Paged", func(t *testing.T) {
		noteRepo.On("List", ctx, int32(20), int32(10), int32(20)).Return([]domain.Notification{{ID: 1}}, int32(21), nil).Once()

		notes, total, err := svc.GetNotifications(ctx, 20, 3, 10)
		require.NoError(t, err)
		assert.Len(t, notes, 1)
		assert.Equal(t, int32(21), total)
	})

	t.Run("Defaults", func(t *testing.T) {
		noteRepo.On("List", ctx, int32(20), int32(20), int32(0)).Return([]domain.Notification{}, int32(0), nil).Once()

		_, _, err := svc.GetNotifications(ctx, 20, 0, 0)
		require.NoError(t, err)
		noteRepo.AssertExpectations(t)
	})

	t.Run("MarkAsRead", func(t *testing.T) {
		noteRepo.On("MarkAsRead", ctx, int32(5), int32(20)).Return(nil).Once()
		assert.NoError(t, svc.MarkAsRead(ctx, 20, 5))
	})
}

func TestNotifier_Notify(t *testing.T) {
	ctx := context.Background()

	t.Run("StoresAndEmails", func(t *testing.T) {
		noteRepo := new(MockNotificationRepo)
		userRepo := new(MockUserRepo)
		emailSvc := new(MockEmailService)
		n := service.NewNotifier(noteRepo, userRepo, emailSvc)

		noteRepo.On("Create", ctx, mock.MatchedBy(func(note *domain.Notification) bool {
			return note.UserID == 20 &&
				note.Type == domain.NotificationContractReady &&
				note.Title == "Contract ready" &&
				note.Attributes["sub_order_id"] == "sub-1"
		})).Return(nil).Once()
		userRepo.On("GetByID", ctx, int32(20)).Return(&domain.User{ID: 20, Email: "renter@test.com", Name: "Renter"}, nil).Once()
		emailSvc.On("SendOrderUpdate", ctx, "renter@test.com", "Renter", "Contract ready", "sign it").Return(nil).Once()

		n.Notify(ctx, 20, domain.NotificationContractReady, "sub-1", "sign it")
		noteRepo.AssertExpectations(t)
		userRepo.AssertExpectations(t)
		emailSvc.AssertExpectations(t)
	})

	t.Run("FailuresAreSwallowed", func(t *testing.T) {
		noteRepo := new(MockNotificationRepo)
		userRepo := new(MockUserRepo)
		emailSvc := new(MockEmailService)
		n := service.NewNotifier(noteRepo, userRepo, emailSvc)

		noteRepo.On("Create", ctx, mock.Anything).Return(errors.New("db down")).Once()
		userRepo.On("GetByID", ctx, int32(20)).Return(&domain.User{ID: 20, Email: "renter@test.com", Name: "Renter"}, nil).Once()
		emailSvc.On("SendOrderUpdate", ctx, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("429")).Once()

		assert.NotPanics(t, func() {
			n.Notify(ctx, 20, domain.NotificationOrderCancelled, "sub-1", "refunded")
		})
		emailSvc.AssertExpectations(t)
	})

	t.Run("EmailDisabled", func(t *testing.T) {
		noteRepo := new(MockNotificationRepo)
		userRepo := new(MockUserRepo)
		n := service.NewNotifier(noteRepo, userRepo, nil)

		noteRepo.On("Create", ctx, mock.Anything).Return(nil).Once()

		n.Notify(ctx, 20, domain.NotificationOrderCancelled, "sub-1", "refunded")
		userRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})
}
