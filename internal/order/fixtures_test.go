package order

import (
	"time"

	"pira-rental-backend/internal/domain"
)

func day(s string) time.Time {
	t, err := time.Parse(domain.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func item(id, start string, rental, deposit int64) domain.LineItem {
	it := domain.LineItem{
		ID:                id,
		ProductID:         "product-" + id,
		Quantity:          1,
		TotalRentalCents:  rental,
		TotalDepositCents: deposit,
		Status:            domain.ItemStatusPending,
	}
	if start != "" {
		it.Period = domain.RentalPeriod{
			StartDate:    day(start),
			EndDate:      day(start).AddDate(0, 0, 2),
			DurationDays: 2,
		}
	}
	return it
}

// threeItemSubOrder is the A/B/C order sharing one delivery date with a fee of 30.
func threeItemSubOrder() domain.SubOrder {
	return domain.SubOrder{
		ID:            "sub-1",
		MasterOrderID: "master-1",
		OwnerID:       10,
		RenterID:      20,
		Items: []domain.LineItem{
			item("A", "2026-11-02", 100, 50),
			item("B", "2026-11-02", 200, 0),
			item("C", "2026-11-02", 150, 20),
		},
		DeliveryBatches: []domain.DeliveryBatchFee{{DeliveryDate: "2026-11-02", FinalFeeCents: 30}},
		Pricing:         domain.Pricing{RentalCents: 450, DepositCents: 70, ShippingCents: 30},
		Status:          domain.SubOrderStatusPendingConfirmation,
	}
}

func mustConfirm(sub domain.SubOrder, id string) domain.SubOrder {
	out, err := ConfirmItem(sub, id)
	if err != nil {
		panic(err)
	}
	return out
}

func mustReject(sub domain.SubOrder, id, reason string) domain.SubOrder {
	out, err := RejectItem(sub, id, reason)
	if err != nil {
		panic(err)
	}
	return out
}
