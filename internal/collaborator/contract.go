package collaborator

import (
	"context"
	"errors"
	"time"

	"pira-rental-backend/internal/domain"
)

// ContractClient asks the contract service to generate a rental contract.
type ContractClient struct {
	http *httpClient
}

type contractItem struct {
	ID                string `json:"id"`
	ProductID         string `json:"product_id"`
	Quantity          int32  `json:"quantity"`
	StartDate         string `json:"start_date,omitempty"`
	EndDate           string `json:"end_date,omitempty"`
	TotalRentalCents  int64  `json:"total_rental_cents"`
	TotalDepositCents int64  `json:"total_deposit_cents"`
}

type contractRequest struct {
	SubOrderID string         `json:"sub_order_id"`
	OwnerID    int32          `json:"owner_id"`
	RenterID   int32          `json:"renter_id"`
	Items      []contractItem `json:"items"`
	Pricing    domain.Pricing `json:"pricing"`
}

type contractResponse struct {
	ContractID string `json:"contract_id"`
	URL        string `json:"url"`
}

func NewContractClient(baseURL string, timeout time.Duration) (*ContractClient, error) {
	c, err := newHTTPClient("contract", baseURL, timeout)
	if err != nil {
		return nil, err
	}
	return &ContractClient{http: c}, nil
}

// Generate covers only the confirmed items. The sub-order id doubles as the
// idempotency key so a retried call returns the same contract.
func (c *ContractClient) Generate(ctx context.Context, sub *domain.SubOrder) (*domain.ContractRef, error) {
	req := contractRequest{
		SubOrderID: sub.ID,
		OwnerID:    sub.OwnerID,
		RenterID:   sub.RenterID,
		Pricing:    sub.Pricing,
	}
	for _, it := range sub.Items {
		if it.Status != domain.ItemStatusConfirmed {
			continue
		}
		ci := contractItem{
			ID:                it.ID,
			ProductID:         it.ProductID,
			Quantity:          it.Quantity,
			TotalRentalCents:  it.TotalRentalCents,
			TotalDepositCents: it.TotalDepositCents,
		}
		if !it.Period.StartDate.IsZero() {
			ci.StartDate = it.Period.StartDate.Format(domain.DateLayout)
		}
		if !it.Period.EndDate.IsZero() {
			ci.EndDate = it.Period.EndDate.Format(domain.DateLayout)
		}
		req.Items = append(req.Items, ci)
	}

	var resp contractResponse
	headers := map[string]string{"Idempotency-Key": sub.ID}
	if err := c.http.postJSON(ctx, "/api/contracts", headers, req, &resp); err != nil {
		return nil, err
	}
	if resp.ContractID == "" {
		return nil, errors.New("contract service returned an empty contract id")
	}
	return &domain.ContractRef{ID: resp.ContractID, URL: resp.URL}, nil
}
