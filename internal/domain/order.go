package domain

import "time"

// DateLayout is the calendar-date format used for rental periods and delivery batch keys.
const DateLayout = "2006-01-02"

type ItemStatus string

const (
	ItemStatusPending   ItemStatus = "PENDING"
	ItemStatusConfirmed ItemStatus = "CONFIRMED"
	ItemStatusRejected  ItemStatus = "REJECTED"
)

func (s ItemStatus) Valid() bool {
	switch s {
	case ItemStatusPending, ItemStatusConfirmed, ItemStatusRejected:
		return true
	}
	return false
}

type SubOrderStatus string

const (
	SubOrderStatusPendingConfirmation SubOrderStatus = "PENDING_CONFIRMATION"
	SubOrderStatusOwnerConfirmed      SubOrderStatus = "OWNER_CONFIRMED"
	SubOrderStatusPartiallyConfirmed  SubOrderStatus = "PARTIALLY_CONFIRMED"
	SubOrderStatusOwnerRejected       SubOrderStatus = "OWNER_REJECTED"
	SubOrderStatusReadyForContract    SubOrderStatus = "READY_FOR_CONTRACT"
	SubOrderStatusContractSigned      SubOrderStatus = "CONTRACT_SIGNED"
	SubOrderStatusCancelled           SubOrderStatus = "CANCELLED"
)

func (s SubOrderStatus) Valid() bool {
	switch s {
	case SubOrderStatusPendingConfirmation,
		SubOrderStatusOwnerConfirmed,
		SubOrderStatusPartiallyConfirmed,
		SubOrderStatusOwnerRejected,
		SubOrderStatusReadyForContract,
		SubOrderStatusContractSigned,
		SubOrderStatusCancelled:
		return true
	}
	return false
}

// InOwnerPhase reports whether line items may still be confirmed or rejected.
func (s SubOrderStatus) InOwnerPhase() bool {
	return s == SubOrderStatusPendingConfirmation || s == SubOrderStatusPartiallyConfirmed
}

// ContractEligible reports whether a contract can be generated for the sub-order.
func (s SubOrderStatus) ContractEligible() bool {
	return s == SubOrderStatusOwnerConfirmed || s == SubOrderStatusReadyForContract
}

// Terminal reports whether the sub-order lifecycle has ended.
func (s SubOrderStatus) Terminal() bool {
	return s == SubOrderStatusContractSigned || s == SubOrderStatusCancelled
}

type MasterOrderStatus string

const (
	MasterOrderStatusPendingConfirmation MasterOrderStatus = "PENDING_CONFIRMATION"
	MasterOrderStatusConfirmed           MasterOrderStatus = "CONFIRMED"
	MasterOrderStatusPartiallyCancelled  MasterOrderStatus = "PARTIALLY_CANCELLED"
	MasterOrderStatusCancelled           MasterOrderStatus = "CANCELLED"
)

type RenterDecision string

const (
	RenterDecisionCancelAll       RenterDecision = "CANCEL_ALL"
	RenterDecisionContinuePartial RenterDecision = "CONTINUE_PARTIAL"
)

func (d RenterDecision) Valid() bool {
	switch d {
	case RenterDecisionCancelAll, RenterDecisionContinuePartial:
		return true
	}
	return false
}

// RentalPeriod is the rented date range of a line item. A zero StartDate means
// the start could not be resolved.
type RentalPeriod struct {
	StartDate    time.Time `json:"start_date"`
	EndDate      time.Time `json:"end_date"`
	DurationDays int32     `json:"duration_days"`
}

type LineItem struct {
	ID                string       `json:"id"`
	ProductID         string       `json:"product_id"`
	Quantity          int32        `json:"quantity"`
	Period            RentalPeriod `json:"period"`
	TotalRentalCents  int64        `json:"total_rental_cents"`
	TotalDepositCents int64        `json:"total_deposit_cents"`
	Status            ItemStatus   `json:"status"`
	RejectionReason   string       `json:"rejection_reason,omitempty"`
}

// DeliveryBatchFee is one row of the persisted shipping fee table of a sub-order.
// Only FinalFeeCents is trusted; membership is always derived from line items.
type DeliveryBatchFee struct {
	DeliveryDate  string `json:"delivery_date"`
	FinalFeeCents int64  `json:"final_fee_cents"`
}

// DeliveryBatch is the derived grouping of line items sharing a rental start date.
type DeliveryBatch struct {
	DeliveryDate  string   `json:"delivery_date"`
	ItemIDs       []string `json:"item_ids"`
	ConfirmedIDs  []string `json:"confirmed_ids"`
	RejectedIDs   []string `json:"rejected_ids"`
	FinalFeeCents int64    `json:"final_fee_cents"`
}

type Pricing struct {
	RentalCents   int64 `json:"rental_cents"`
	DepositCents  int64 `json:"deposit_cents"`
	ShippingCents int64 `json:"shipping_cents"`
}

type SubOrder struct {
	ID              string             `json:"id"`
	MasterOrderID   string             `json:"master_order_id"`
	OwnerID         int32              `json:"owner_id"`
	RenterID        int32              `json:"renter_id"`
	Items           []LineItem         `json:"items"`
	DeliveryBatches []DeliveryBatchFee `json:"delivery_batches"`
	Pricing         Pricing            `json:"pricing"`
	ContractID      *string            `json:"contract_id,omitempty"`
	Status          SubOrderStatus     `json:"status"`
	Decision        *RenterDecision    `json:"decision,omitempty"`
	CancelReason    string             `json:"cancel_reason,omitempty"`
	OwnerSignedOn   *time.Time         `json:"owner_signed_on,omitempty"`
	RenterSignedOn  *time.Time         `json:"renter_signed_on,omitempty"`
	// Version is bumped on every persisted change and used to detect stale writes.
	Version   int32     `json:"version"`
	UpdatedOn time.Time `json:"updated_on"`
}

// ContractPending reports a sub-order whose items are settled but whose
// contract has not been generated yet.
func (s *SubOrder) ContractPending() bool {
	return s.Status.ContractEligible() && s.ContractID == nil
}

type MasterOrder struct {
	ID        string            `json:"id"`
	RenterID  int32             `json:"renter_id"`
	Status    MasterOrderStatus `json:"status"`
	SubOrders []SubOrder        `json:"sub_orders,omitempty"`
	CreatedOn time.Time         `json:"created_on"`
	UpdatedOn time.Time         `json:"updated_on"`
}

// RefundOutcome is the money returned to the renter for one action, in the
// smallest currency unit.
type RefundOutcome struct {
	DepositRefundCents  int64 `json:"deposit_refund_cents"`
	RentalRefundCents   int64 `json:"rental_refund_cents"`
	ShippingRefundCents int64 `json:"shipping_refund_cents"`
	TotalCents          int64 `json:"total_cents"`
}

// ContractRef points at a contract produced by the external contract service.
type ContractRef struct {
	ID  string `json:"id"`
	URL string `json:"url,omitempty"`
}

type SigningParty string

const (
	SigningPartyOwner  SigningParty = "OWNER"
	SigningPartyRenter SigningParty = "RENTER"
)
