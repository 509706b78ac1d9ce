package utils

import (
	"time"

	"pira-rental-backend/internal/domain"
)

// AvailabilityFeed is a product's availability calendar keyed by YYYY-MM-DD.
type AvailabilityFeed map[string]domain.AvailabilityDay

// NewAvailabilityFeed indexes calendar rows by day, the later row winning on duplicates.
func NewAvailabilityFeed(days []domain.AvailabilityDay) AvailabilityFeed {
	feed := make(AvailabilityFeed, len(days))
	for _, d := range days {
		feed[d.Date] = d
	}
	return feed
}

// DaysInRange lists the calendar days in [start, end). When end is not after
// start the range is just the start day.
func DaysInRange(start, end time.Time) []string {
	s := TruncateToDay(start)
	e := TruncateToDay(end.In(start.Location()))
	if !e.After(s) {
		return []string{s.Format(domain.DateLayout)}
	}
	var days []string
	for d := s; d.Before(e); d = d.AddDate(0, 0, 1) {
		days = append(days, d.Format(domain.DateLayout))
	}
	return days
}

// AggregateAvailability returns the minimum available quantity across the range.
// A day with no calendar entry makes the result unknown rather than zero.
func AggregateAvailability(feed AvailabilityFeed, start, end time.Time) domain.AvailabilityResult {
	res := domain.AvailabilityResult{Known: true}
	first := true
	for _, key := range DaysInRange(start, end) {
		day, ok := feed[key]
		if !ok {
			res.Known = false
			res.MissingDays = append(res.MissingDays, key)
			continue
		}
		avail := day.AvailableQuantity
		if day.IsFullyBooked || avail < 0 {
			avail = 0
		}
		if first || avail < res.Available {
			res.Available = avail
			first = false
		}
	}
	if !res.Known {
		res.Available = 0
	}
	return res
}

// DayOrFullyBooked returns the calendar entry for date, rendering a missing
// entry as fully booked.
func DayOrFullyBooked(feed AvailabilityFeed, date string) domain.AvailabilityDay {
	if day, ok := feed[date]; ok {
		return day
	}
	return domain.AvailabilityDay{Date: date, IsFullyBooked: true}
}
