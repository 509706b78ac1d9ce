package utils

import (
	"testing"

	"pira-rental-backend/internal/domain"

	"github.com/stretchr/testify/assert"
)

func feedOf(days ...domain.AvailabilityDay) AvailabilityFeed {
	return NewAvailabilityFeed(days)
}

func TestAggregateAvailability(t *testing.T) {
	feed := feedOf(
		domain.AvailabilityDay{Date: "2026-11-01", TotalQuantity: 5, BookedQuantity: 2, AvailableQuantity: 3},
		domain.AvailabilityDay{Date: "2026-11-02", TotalQuantity: 5, BookedQuantity: 4, AvailableQuantity: 1},
		domain.AvailabilityDay{Date: "2026-11-03", TotalQuantity: 5, AvailableQuantity: 5},
	)

	t.Run("Minimum across the range", func(t *testing.T) {
		res := AggregateAvailability(feed, at("2026-11-01 00:00"), at("2026-11-03 00:00"))
		assert.True(t, res.Known)
		assert.Equal(t, int32(1), res.Available)
		assert.Empty(t, res.MissingDays)
	})

	t.Run("End day is excluded", func(t *testing.T) {
		res := AggregateAvailability(feed, at("2026-11-03 00:00"), at("2026-11-04 00:00"))
		assert.True(t, res.Known)
		assert.Equal(t, int32(5), res.Available)
	})

	t.Run("Same start and end covers the start day", func(t *testing.T) {
		res := AggregateAvailability(feed, at("2026-11-01 00:00"), at("2026-11-01 00:00"))
		assert.True(t, res.Known)
		assert.Equal(t, int32(3), res.Available)
	})

	t.Run("Missing day is unknown, not zero", func(t *testing.T) {
		res := AggregateAvailability(feed, at("2026-11-02 00:00"), at("2026-11-06 00:00"))
		assert.False(t, res.Known)
		assert.Equal(t, []string{"2026-11-04", "2026-11-05"}, res.MissingDays)
		assert.Zero(t, res.Available)
	})

	t.Run("Fully booked day counts as zero", func(t *testing.T) {
		booked := feedOf(
			domain.AvailabilityDay{Date: "2026-11-01", AvailableQuantity: 2},
			domain.AvailabilityDay{Date: "2026-11-02", AvailableQuantity: 2, IsFullyBooked: true},
		)
		res := AggregateAvailability(booked, at("2026-11-01 00:00"), at("2026-11-03 00:00"))
		assert.True(t, res.Known)
		assert.Zero(t, res.Available)
	})
}

func TestDayOrFullyBooked(t *testing.T) {
	feed := feedOf(domain.AvailabilityDay{Date: "2026-11-01", AvailableQuantity: 3})

	assert.Equal(t, int32(3), DayOrFullyBooked(feed, "2026-11-01").AvailableQuantity)

	missing := DayOrFullyBooked(feed, "2026-11-09")
	assert.True(t, missing.IsFullyBooked)
	assert.Equal(t, "2026-11-09", missing.Date)
}

func TestDaysInRange(t *testing.T) {
	assert.Equal(t, []string{"2026-12-30", "2026-12-31", "2027-01-01"},
		DaysInRange(at("2026-12-30 00:00"), at("2027-01-02 00:00")))
}
