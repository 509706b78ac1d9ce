package http

import (
	"time"

	"pira-rental-backend/internal/domain"
	"pira-rental-backend/internal/order"
)

type RejectItemRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

type BulkConfirmRequest struct {
	ConfirmedItemIDs []string `json:"confirmed_item_ids" validate:"required,min=1,dive,required"`
}

type CancelRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

type ValidateCartRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int32  `json:"quantity"`
	StartDate string `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate   string `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
}

// SubOrderResponse is the sub-order as stored plus the views derived from it.
// Batches are recomputed from the items on every read.
type SubOrderResponse struct {
	*domain.SubOrder
	Batches         []domain.DeliveryBatch `json:"batches"`
	NeedsDecision   bool                   `json:"needs_decision"`
	ContractPending bool                   `json:"contract_pending"`
}

func newSubOrderResponse(sub *domain.SubOrder) SubOrderResponse {
	return SubOrderResponse{
		SubOrder:        sub,
		Batches:         order.RecalculateBatches(sub.Items, sub.DeliveryBatches),
		NeedsDecision:   order.NeedsDecision(*sub),
		ContractPending: sub.ContractPending(),
	}
}

type BulkConfirmResponse struct {
	SubOrder SubOrderResponse    `json:"sub_order"`
	Contract *domain.ContractRef `json:"contract,omitempty"`
}

type RefundResponse struct {
	SubOrderID string               `json:"sub_order_id"`
	Refund     domain.RefundOutcome `json:"refund"`
}

type AcceptPartialResponse struct {
	SubOrderID      string               `json:"sub_order_id"`
	Refund          domain.RefundOutcome `json:"refund"`
	Contract        *domain.ContractRef  `json:"contract,omitempty"`
	ContractPending bool                 `json:"contract_pending"`
}

type ContractResponse struct {
	SubOrderID string             `json:"sub_order_id"`
	Contract   domain.ContractRef `json:"contract"`
}

type AvailabilityResponse struct {
	ProductID string                    `json:"product_id"`
	Days      []domain.AvailabilityDay  `json:"days"`
	Aggregate domain.AvailabilityResult `json:"aggregate"`
}

type NotificationsResponse struct {
	Notifications []domain.Notification `json:"notifications"`
	Total         int32                 `json:"total"`
}

func parseDate(s string) (time.Time, error) {
	return time.Parse(domain.DateLayout, s)
}
