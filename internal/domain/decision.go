package domain

import "time"

// DecisionRecord is the persisted renter decision. At most one exists per sub-order.
type DecisionRecord struct {
	SubOrderID     string         `json:"sub_order_id"`
	RenterID       int32          `json:"renter_id"`
	Decision       RenterDecision `json:"decision"`
	IdempotencyKey string         `json:"idempotency_key"`
	Reason         string         `json:"reason,omitempty"`
	CreatedOn      time.Time      `json:"created_on"`
}
