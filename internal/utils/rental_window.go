package utils

import (
	"fmt"
	"time"

	"pira-rental-backend/internal/domain"
)

// Rental window rule codes carried by the returned validation error.
const (
	RuleMissingDates        = "MISSING_DATES"
	RuleTooEarly            = "TOO_EARLY"
	RuleNonPositiveDuration = "NON_POSITIVE_DURATION"
	RuleBelowMinimum        = "BELOW_MINIMUM_DURATION"
	RuleRangeTooLong        = "RANGE_TOO_LONG"
)

// DefaultMaxRangeDays bounds availability lookups and rental periods.
const DefaultMaxRangeDays = 365

// DefaultCutoffHour is the local hour from which same-day rentals are no longer accepted.
const DefaultCutoffHour = 12

// RentalRules holds the tunable parts of rental window validation.
type RentalRules struct {
	CutoffHour int
	MinDays    int
	MaxDays    int
}

// DefaultRentalRules returns the noon cutoff with a one day minimum rental.
func DefaultRentalRules() RentalRules {
	return RentalRules{CutoffHour: DefaultCutoffHour, MinDays: 1, MaxDays: DefaultMaxRangeDays}
}

// CalendarDay returns midnight in loc of the calendar date t carries.
// The date is kept as written, whatever zone t was parsed in.
func CalendarDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// CheckRange rejects a date range spanning more days than MaxDays.
// A zero MaxDays leaves the range unbounded.
func (r RentalRules) CheckRange(start, end time.Time) error {
	if r.MaxDays <= 0 {
		return nil
	}
	if days := RentalDays(start, end); days > r.MaxDays {
		return domain.NewValidationError(RuleRangeTooLong,
			fmt.Sprintf("date range spans %d days, at most %d allowed", days, r.MaxDays))
	}
	return nil
}

// TruncateToDay drops the clock part of t in its own location.
func TruncateToDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// MinimumStartDate is today before the cutoff hour and tomorrow from the cutoff on.
func (r RentalRules) MinimumStartDate(now time.Time) time.Time {
	today := TruncateToDay(now)
	if now.Hour() < r.CutoffHour {
		return today
	}
	return today.AddDate(0, 0, 1)
}

// ValidateRentalWindow checks a rental period against the clock at now.
// start and end are calendar dates; they are read as dates in now's location.
func (r RentalRules) ValidateRentalWindow(start, end, now time.Time) error {
	if start.IsZero() || end.IsZero() {
		return domain.NewValidationError(RuleMissingDates, "start and end dates are required")
	}

	loc := now.Location()
	startDay := CalendarDay(start, loc)
	endDay := CalendarDay(end, loc)

	minStart := r.MinimumStartDate(now)
	if startDay.Before(minStart) {
		return domain.NewValidationError(RuleTooEarly,
			fmt.Sprintf("start date %s is before the earliest allowed date %s",
				startDay.Format(domain.DateLayout), minStart.Format(domain.DateLayout)))
	}

	days := RentalDays(startDay, endDay)
	if days < 1 {
		return domain.NewValidationError(RuleNonPositiveDuration,
			fmt.Sprintf("end date %s must be after start date %s",
				endDay.Format(domain.DateLayout), startDay.Format(domain.DateLayout)))
	}
	if days < r.MinDays {
		return domain.NewValidationError(RuleBelowMinimum,
			fmt.Sprintf("rental must last at least %d days, got %d", r.MinDays, days))
	}
	return r.CheckRange(startDay, endDay)
}

// MinimumStartDate applies the default noon cutoff.
func MinimumStartDate(now time.Time) time.Time {
	return DefaultRentalRules().MinimumStartDate(now)
}

// ValidateRentalWindow applies the default rules.
func ValidateRentalWindow(start, end, now time.Time) error {
	return DefaultRentalRules().ValidateRentalWindow(start, end, now)
}

// RentalDays counts calendar days from start to end, end exclusive.
func RentalDays(start, end time.Time) int {
	s := TruncateToDay(start)
	e := TruncateToDay(end.In(start.Location()))
	s = time.Date(s.Year(), s.Month(), s.Day(), 0, 0, 0, 0, time.UTC)
	e = time.Date(e.Year(), e.Month(), e.Day(), 0, 0, 0, 0, time.UTC)
	return int(e.Sub(s).Hours() / 24)
}
