package order

import (
	"sort"
	"strings"
	"time"

	"pira-rental-backend/internal/domain"
)

// RecalculateBatches groups line items by the calendar date of their rental
// start. Membership always comes from the items; the persisted fee table is
// only consulted for each batch's FinalFeeCents, joined on the date key.
// Items without a start date are left out.
func RecalculateBatches(items []domain.LineItem, fees []domain.DeliveryBatchFee) []domain.DeliveryBatch {
	feeByDate := FeeTable(fees)

	byDate := make(map[string]*domain.DeliveryBatch)
	for _, it := range items {
		if it.Period.StartDate.IsZero() {
			continue
		}
		key := it.Period.StartDate.Format(domain.DateLayout)
		b, ok := byDate[key]
		if !ok {
			b = &domain.DeliveryBatch{DeliveryDate: key, FinalFeeCents: feeByDate[key]}
			byDate[key] = b
		}
		b.ItemIDs = append(b.ItemIDs, it.ID)
		switch it.Status {
		case domain.ItemStatusConfirmed:
			b.ConfirmedIDs = append(b.ConfirmedIDs, it.ID)
		case domain.ItemStatusRejected:
			b.RejectedIDs = append(b.RejectedIDs, it.ID)
		}
	}

	keys := make([]string, 0, len(byDate))
	for k := range byDate {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	batches := make([]domain.DeliveryBatch, 0, len(keys))
	for _, k := range keys {
		batches = append(batches, *byDate[k])
	}
	return batches
}

// FeeTable indexes persisted batch fees by normalised date key. When the
// table holds the same date twice the first entry wins.
func FeeTable(fees []domain.DeliveryBatchFee) map[string]int64 {
	table := make(map[string]int64, len(fees))
	for _, f := range fees {
		key, ok := NormalizeDateKey(f.DeliveryDate)
		if !ok {
			continue
		}
		if _, seen := table[key]; seen {
			continue
		}
		table[key] = f.FinalFeeCents
	}
	return table
}

// NormalizeDateKey reduces "2006-01-02", RFC 3339 timestamps and similar
// date-prefixed strings to the bare calendar date.
func NormalizeDateKey(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if len(s) < len(domain.DateLayout) {
		return "", false
	}
	key := s[:len(domain.DateLayout)]
	if _, err := time.Parse(domain.DateLayout, key); err != nil {
		return "", false
	}
	return key, true
}
