package service_test

import (
	"context"
	"time"

	"pira-rental-backend/internal/domain"
	"pira-rental-backend/internal/repository"

	"github.com/stretchr/testify/mock"
)

// MockSubOrderRepo
type MockSubOrderRepo struct {
	mock.Mock
}

func (m *MockSubOrderRepo) GetByID(ctx context.Context, id string) (*domain.SubOrder, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SubOrder), args.Error(1)
}
func (m *MockSubOrderRepo) Save(ctx context.Context, change repository.SubOrderChange) error {
	args := m.Called(ctx, change)
	return args.Error(0)
}
func (m *MockSubOrderRepo) ListByMasterOrder(ctx context.Context, masterOrderID string) ([]domain.SubOrder, error) {
	args := m.Called(ctx, masterOrderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SubOrder), args.Error(1)
}
func (m *MockSubOrderRepo) ListContractPending(ctx context.Context, limit int) ([]domain.SubOrder, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SubOrder), args.Error(1)
}
func (m *MockSubOrderRepo) ListByStatus(ctx context.Context, status domain.SubOrderStatus, limit int) ([]domain.SubOrder, error) {
	args := m.Called(ctx, status, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SubOrder), args.Error(1)
}

// MockMasterOrderRepo
type MockMasterOrderRepo struct {
	mock.Mock
}

func (m *MockMasterOrderRepo) GetByID(ctx context.Context, id string) (*domain.MasterOrder, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MasterOrder), args.Error(1)
}
func (m *MockMasterOrderRepo) UpdateStatus(ctx context.Context, id string, status domain.MasterOrderStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

// MockAvailabilityRepo
type MockAvailabilityRepo struct {
	mock.Mock
}

func (m *MockAvailabilityRepo) GetCalendar(ctx context.Context, productID string, from, to time.Time) ([]domain.AvailabilityDay, error) {
	args := m.Called(ctx, productID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AvailabilityDay), args.Error(1)
}

// MockNotificationRepo
type MockNotificationRepo struct {
	mock.Mock
}

func (m *MockNotificationRepo) Create(ctx context.Context, note *domain.Notification) error {
	args := m.Called(ctx, note)
	return args.Error(0)
}
func (m *MockNotificationRepo) List(ctx context.Context, userID int32, limit, offset int32) ([]domain.Notification, int32, error) {
	args := m.Called(ctx, userID, limit, offset)
	return args.Get(0).([]domain.Notification), args.Get(1).(int32), args.Error(2)
}
func (m *MockNotificationRepo) MarkAsRead(ctx context.Context, id, userID int32) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

// MockUserRepo
type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) GetByID(ctx context.Context, id int32) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

// MockEmailService
type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) SendOrderUpdate(ctx context.Context, email, name, subject, body string) error {
	args := m.Called(ctx, email, name, subject, body)
	return args.Error(0)
}

// MockContractGenerator
type MockContractGenerator struct {
	mock.Mock
}

func (m *MockContractGenerator) Generate(ctx context.Context, sub *domain.SubOrder) (*domain.ContractRef, error) {
	args := m.Called(ctx, sub)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ContractRef), args.Error(1)
}

// MockNotifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, userID int32, kind domain.NotificationType, subOrderID, message string) {
	m.Called(ctx, userID, kind, subOrderID, message)
}

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

func day(s string) time.Time {
	t, err := time.Parse(domain.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func pendingItem(id string, rental, deposit int64) domain.LineItem {
	return domain.LineItem{
		ID:                id,
		ProductID:         "product-" + id,
		Quantity:          1,
		TotalRentalCents:  rental,
		TotalDepositCents: deposit,
		Status:            domain.ItemStatusPending,
		Period: domain.RentalPeriod{
			StartDate:    day("2026-11-02"),
			EndDate:      day("2026-11-04"),
			DurationDays: 2,
		},
	}
}

// threeItemSubOrder is the A/B/C order sharing one delivery date with a fee of 30.
// It has no master order so the master refresh is skipped unless a test sets one.
func threeItemSubOrder() *domain.SubOrder {
	return &domain.SubOrder{
		ID:       "sub-1",
		OwnerID:  10,
		RenterID: 20,
		Items: []domain.LineItem{
			pendingItem("A", 100, 50),
			pendingItem("B", 200, 0),
			pendingItem("C", 150, 20),
		},
		DeliveryBatches: []domain.DeliveryBatchFee{{DeliveryDate: "2026-11-02", FinalFeeCents: 30}},
		Pricing:         domain.Pricing{RentalCents: 450, DepositCents: 70, ShippingCents: 30},
		Status:          domain.SubOrderStatusPendingConfirmation,
		Version:         1,
	}
}

func withItemStatus(sub *domain.SubOrder, status domain.SubOrderStatus, items map[string]domain.ItemStatus) *domain.SubOrder {
	sub.Status = status
	for i := range sub.Items {
		if st, ok := items[sub.Items[i].ID]; ok {
			sub.Items[i].Status = st
		}
	}
	return sub
}

// partiallyConfirmed has A and B confirmed and C rejected.
func partiallyConfirmed() *domain.SubOrder {
	return withItemStatus(threeItemSubOrder(), domain.SubOrderStatusPartiallyConfirmed, map[string]domain.ItemStatus{
		"A": domain.ItemStatusConfirmed,
		"B": domain.ItemStatusConfirmed,
		"C": domain.ItemStatusRejected,
	})
}

func changeFor(status domain.SubOrderStatus) interface{} {
	return mock.MatchedBy(func(c repository.SubOrderChange) bool {
		return c.SubOrder != nil && c.SubOrder.Status == status
	})
}
