package domain

// AvailabilityDay is one entry of a product's day-by-day availability calendar.
type AvailabilityDay struct {
	Date              string `json:"date"`
	TotalQuantity     int32  `json:"total_quantity"`
	BookedQuantity    int32  `json:"booked_quantity"`
	AvailableQuantity int32  `json:"available_quantity"`
	IsFullyBooked     bool   `json:"is_fully_booked"`
}

// AvailabilityResult is the aggregate availability over a date range. When
// Known is false at least one day had no calendar entry and Available is meaningless.
type AvailabilityResult struct {
	Known       bool     `json:"known"`
	Available   int32    `json:"available"`
	MissingDays []string `json:"missing_days,omitempty"`
}
