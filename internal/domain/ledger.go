package domain

import "time"

type SettlementType string

const (
	SettlementTypeFullRefund    SettlementType = "FULL_REFUND"
	SettlementTypePartialRefund SettlementType = "PARTIAL_REFUND"
)

type SettlementStatus string

const (
	SettlementStatusPending    SettlementStatus = "PENDING"
	SettlementStatusDispatched SettlementStatus = "DISPATCHED"
	SettlementStatusFailed     SettlementStatus = "FAILED"
)

// Settlement is a refund handed to the payment collaborator. IdempotencyKey is
// unique per sub-order and action so a retried request never refunds twice.
type Settlement struct {
	ID             int64            `json:"id"`
	SubOrderID     string           `json:"sub_order_id"`
	RenterID       int32            `json:"renter_id"`
	IdempotencyKey string           `json:"idempotency_key"`
	Type           SettlementType   `json:"type"`
	Refund         RefundOutcome    `json:"refund"`
	Status         SettlementStatus `json:"status"`
	Attempts       int32            `json:"attempts"`
	LastError      string           `json:"last_error,omitempty"`
	CreatedOn      time.Time        `json:"created_on"`
	DispatchedOn   *time.Time       `json:"dispatched_on,omitempty"`
}
