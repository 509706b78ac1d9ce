package order

import (
	"testing"

	"pira-rental-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecalculateBatches(t *testing.T) {
	t.Run("Groups by start date and splits statuses", func(t *testing.T) {
		items := []domain.LineItem{
			item("A", "2026-11-03", 100, 0),
			item("B", "2026-11-02", 100, 0),
			item("C", "2026-11-03", 100, 0),
		}
		items[0].Status = domain.ItemStatusConfirmed
		items[2].Status = domain.ItemStatusRejected
		fees := []domain.DeliveryBatchFee{
			{DeliveryDate: "2026-11-02", FinalFeeCents: 25},
			{DeliveryDate: "2026-11-03", FinalFeeCents: 40},
		}

		batches := RecalculateBatches(items, fees)
		require.Len(t, batches, 2)

		assert.Equal(t, "2026-11-02", batches[0].DeliveryDate)
		assert.Equal(t, []string{"B"}, batches[0].ItemIDs)
		assert.Empty(t, batches[0].ConfirmedIDs)
		assert.Equal(t, int64(25), batches[0].FinalFeeCents)

		assert.Equal(t, "2026-11-03", batches[1].DeliveryDate)
		assert.Equal(t, []string{"A", "C"}, batches[1].ItemIDs)
		assert.Equal(t, []string{"A"}, batches[1].ConfirmedIDs)
		assert.Equal(t, []string{"C"}, batches[1].RejectedIDs)
		assert.Equal(t, int64(40), batches[1].FinalFeeCents)
	})

	t.Run("Ignores stale persisted membership", func(t *testing.T) {
		// Fee table lists a date no item starts on any more.
		items := []domain.LineItem{item("A", "2026-11-05", 100, 0)}
		fees := []domain.DeliveryBatchFee{
			{DeliveryDate: "2026-11-04", FinalFeeCents: 99},
			{DeliveryDate: "2026-11-05T00:00:00Z", FinalFeeCents: 15},
		}

		batches := RecalculateBatches(items, fees)
		require.Len(t, batches, 1)
		assert.Equal(t, "2026-11-05", batches[0].DeliveryDate)
		assert.Equal(t, int64(15), batches[0].FinalFeeCents)
	})

	t.Run("Missing fee defaults to zero", func(t *testing.T) {
		batches := RecalculateBatches([]domain.LineItem{item("A", "2026-11-05", 1, 0)}, nil)
		require.Len(t, batches, 1)
		assert.Zero(t, batches[0].FinalFeeCents)
	})

	t.Run("Items without a start date are excluded", func(t *testing.T) {
		items := []domain.LineItem{item("A", "", 100, 0), item("B", "2026-11-05", 100, 0)}
		batches := RecalculateBatches(items, nil)
		require.Len(t, batches, 1)
		assert.Equal(t, []string{"B"}, batches[0].ItemIDs)
	})
}

func TestNormalizeDateKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"2026-11-05", "2026-11-05", true},
		{"2026-11-05T10:00:00+07:00", "2026-11-05", true},
		{" 2026-11-05 ", "2026-11-05", true},
		{"2026/11/05", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := NormalizeDateKey(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
