package service

import (
	"context"
	"fmt"
	"time"

	"pira-rental-backend/internal/domain"
	"pira-rental-backend/internal/logger"
	"pira-rental-backend/internal/repository"
	"pira-rental-backend/internal/utils"
)

// RuleInvalidQuantity rejects a checkout line with a non-positive quantity.
const RuleInvalidQuantity = "INVALID_QUANTITY"

type cartService struct {
	availRepo repository.AvailabilityRepository
	rules     utils.RentalRules
	clock     Clock
}

func NewCartService(availRepo repository.AvailabilityRepository, rules utils.RentalRules, clock Clock) CartService {
	return &cartService{availRepo: availRepo, rules: rules, clock: clock}
}

func (s *cartService) ValidateCheckout(ctx context.Context, productID string, quantity int32, start, end time.Time) (*domain.AvailabilityResult, error) {
	const method = "CartService.ValidateCheckout"
	logger.EnterMethod(method, "productID", productID, "quantity", quantity)

	if quantity <= 0 {
		err := domain.NewValidationError(RuleInvalidQuantity, fmt.Sprintf("quantity must be positive, got %d", quantity))
		exitWith(method, err)
		return nil, err
	}
	if err := s.rules.ValidateRentalWindow(start, end, s.clock.Now()); err != nil {
		exitWith(method, err)
		return nil, err
	}

	_, res, err := s.aggregate(ctx, productID, start, end)
	if err != nil {
		exitWith(method, err)
		return nil, err
	}
	if !res.Known {
		err = fmt.Errorf("%w: product %s missing %v", domain.ErrAvailabilityUnknown, productID, res.MissingDays)
		exitWith(method, err)
		return res, err
	}
	if res.Available < quantity {
		err = fmt.Errorf("%w: product %s has %d, requested %d", domain.ErrInsufficientAvailability, productID, res.Available, quantity)
		exitWith(method, err)
		return res, err
	}

	exitWith(method, nil, "productID", productID, "available", res.Available)
	return res, nil
}

// GetAvailability returns one entry per day of the range for display, days
// with no calendar row rendered as fully booked, plus the aggregate. Ranges
// longer than the rules' MaxDays are rejected before any lookup.
func (s *cartService) GetAvailability(ctx context.Context, productID string, start, end time.Time) ([]domain.AvailabilityDay, *domain.AvailabilityResult, error) {
	if err := s.rules.CheckRange(start, end); err != nil {
		logger.Debug("Availability range rejected", "productID", productID, "error", err)
		return nil, nil, err
	}
	feed, res, err := s.aggregate(ctx, productID, start, end)
	if err != nil {
		return nil, nil, err
	}
	keys := utils.DaysInRange(start, end)
	days := make([]domain.AvailabilityDay, 0, len(keys))
	for _, key := range keys {
		days = append(days, utils.DayOrFullyBooked(feed, key))
	}
	return days, res, nil
}

func (s *cartService) aggregate(ctx context.Context, productID string, start, end time.Time) (utils.AvailabilityFeed, *domain.AvailabilityResult, error) {
	keys := utils.DaysInRange(start, end)
	first, err := time.Parse(domain.DateLayout, keys[0])
	if err != nil {
		return nil, nil, err
	}
	last, err := time.Parse(domain.DateLayout, keys[len(keys)-1])
	if err != nil {
		return nil, nil, err
	}

	days, err := s.availRepo.GetCalendar(ctx, productID, first, last)
	if err != nil {
		return nil, nil, err
	}

	feed := utils.NewAvailabilityFeed(days)
	res := utils.AggregateAvailability(feed, start, end)
	return feed, &res, nil
}
