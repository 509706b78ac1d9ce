package collaborator

import (
	"context"
	"time"

	"pira-rental-backend/internal/domain"
)

// SettlementClient hands recorded refunds to the payment service.
type SettlementClient struct {
	http *httpClient
}

type refundRequest struct {
	SubOrderID          string `json:"sub_order_id"`
	RenterID            int32  `json:"renter_id"`
	Type                string `json:"type"`
	RentalRefundCents   int64  `json:"rental_refund_cents"`
	DepositRefundCents  int64  `json:"deposit_refund_cents"`
	ShippingRefundCents int64  `json:"shipping_refund_cents"`
	TotalCents          int64  `json:"total_cents"`
}

func NewSettlementClient(baseURL string, timeout time.Duration) (*SettlementClient, error) {
	c, err := newHTTPClient("settlement", baseURL, timeout)
	if err != nil {
		return nil, err
	}
	return &SettlementClient{http: c}, nil
}

// Execute sends the refund with its ledger idempotency key, so a repeated
// dispatch of the same row is a no-op on the payment side.
func (c *SettlementClient) Execute(ctx context.Context, s domain.Settlement) error {
	req := refundRequest{
		SubOrderID:          s.SubOrderID,
		RenterID:            s.RenterID,
		Type:                string(s.Type),
		RentalRefundCents:   s.Refund.RentalRefundCents,
		DepositRefundCents:  s.Refund.DepositRefundCents,
		ShippingRefundCents: s.Refund.ShippingRefundCents,
		TotalCents:          s.Refund.TotalCents,
	}
	headers := map[string]string{"Idempotency-Key": s.IdempotencyKey}
	return c.http.postJSON(ctx, "/api/refunds", headers, req, nil)
}
