// Package client talks to the rental REST API on behalf of an owner or
// renter and keeps a read-after-write view of their sub-orders.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"time"

	httpapi "pira-rental-backend/internal/api/http"
	"pira-rental-backend/internal/domain"
	"pira-rental-backend/internal/logger"
)

// APIError is a definitive answer from the server. It is never retried.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (%d): %s", e.Code, e.StatusCode, e.Message)
}

// StateConflict reports an error the caller resolves by refetching.
func (e *APIError) StateConflict() bool {
	return e.StatusCode == http.StatusConflict
}

// TransientError keeps the failed intent so the user can retry it by hand.
type TransientError struct {
	Op   string
	Args map[string]any
	Err  error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("%s failed, retry later: %v", e.Op, e.Err)
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// IsTransient reports whether err may succeed if the same call is repeated.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}

type HTTPClient struct {
	baseURL    *url.URL
	token      string
	httpClient *http.Client
}

func NewHTTPClient(baseURL, token string, timeout time.Duration) (*HTTPClient, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse api url: %w", err)
	}
	if !parsed.IsAbs() {
		return nil, fmt.Errorf("api url must be absolute")
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &HTTPClient{
		baseURL:    parsed,
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

func (c *HTTPClient) GetSubOrder(ctx context.Context, subOrderID string) (*httpapi.SubOrderResponse, error) {
	var out httpapi.SubOrderResponse
	err := c.do(ctx, "GetSubOrder", map[string]any{"sub_order_id": subOrderID},
		http.MethodGet, "/sub-orders/"+url.PathEscape(subOrderID), nil, nil, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) ConfirmItem(ctx context.Context, subOrderID, itemID string) (*httpapi.SubOrderResponse, error) {
	var out httpapi.SubOrderResponse
	err := c.do(ctx, "ConfirmItem", map[string]any{"sub_order_id": subOrderID, "item_id": itemID},
		http.MethodPost, "/sub-orders/"+url.PathEscape(subOrderID)+"/items/"+url.PathEscape(itemID)+"/confirm", nil, nil, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) RejectItem(ctx context.Context, subOrderID, itemID, reason string) (*httpapi.SubOrderResponse, error) {
	var out httpapi.SubOrderResponse
	err := c.do(ctx, "RejectItem", map[string]any{"sub_order_id": subOrderID, "item_id": itemID, "reason": reason},
		http.MethodPost, "/sub-orders/"+url.PathEscape(subOrderID)+"/items/"+url.PathEscape(itemID)+"/reject", nil,
		httpapi.RejectItemRequest{Reason: reason}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) BulkConfirm(ctx context.Context, subOrderID string, confirmedIDs []string) (*httpapi.BulkConfirmResponse, error) {
	var out httpapi.BulkConfirmResponse
	err := c.do(ctx, "BulkConfirm", map[string]any{"sub_order_id": subOrderID, "confirmed_item_ids": confirmedIDs},
		http.MethodPost, "/sub-orders/"+url.PathEscape(subOrderID)+"/bulk-confirm", nil,
		httpapi.BulkConfirmRequest{ConfirmedItemIDs: confirmedIDs}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) ResumeContract(ctx context.Context, subOrderID string) (*domain.ContractRef, error) {
	var out httpapi.ContractResponse
	err := c.do(ctx, "ResumeContract", map[string]any{"sub_order_id": subOrderID},
		http.MethodPost, "/sub-orders/"+url.PathEscape(subOrderID)+"/contract", nil, nil, &out)
	if err != nil {
		return nil, err
	}
	return &out.Contract, nil
}

func (c *HTTPClient) Sign(ctx context.Context, subOrderID string) (*httpapi.SubOrderResponse, error) {
	var out httpapi.SubOrderResponse
	err := c.do(ctx, "Sign", map[string]any{"sub_order_id": subOrderID},
		http.MethodPost, "/sub-orders/"+url.PathEscape(subOrderID)+"/sign", nil, nil, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) PreviewRefund(ctx context.Context, subOrderID string, decision domain.RenterDecision) (*domain.RefundOutcome, error) {
	var out httpapi.RefundResponse
	q := url.Values{"decision": {string(decision)}}
	err := c.do(ctx, "PreviewRefund", map[string]any{"sub_order_id": subOrderID, "decision": decision},
		http.MethodGet, "/sub-orders/"+url.PathEscape(subOrderID)+"/refund-preview", q, nil, &out)
	if err != nil {
		return nil, err
	}
	return &out.Refund, nil
}

func (c *HTTPClient) CancelAll(ctx context.Context, subOrderID, reason string) (*domain.RefundOutcome, error) {
	var out httpapi.RefundResponse
	err := c.do(ctx, "CancelAll", map[string]any{"sub_order_id": subOrderID, "reason": reason},
		http.MethodPost, "/sub-orders/"+url.PathEscape(subOrderID)+"/cancel-all", nil,
		httpapi.CancelRequest{Reason: reason}, &out)
	if err != nil {
		return nil, err
	}
	return &out.Refund, nil
}

func (c *HTTPClient) AcceptPartial(ctx context.Context, subOrderID string) (*httpapi.AcceptPartialResponse, error) {
	var out httpapi.AcceptPartialResponse
	err := c.do(ctx, "AcceptPartial", map[string]any{"sub_order_id": subOrderID},
		http.MethodPost, "/sub-orders/"+url.PathEscape(subOrderID)+"/accept-partial", nil, nil, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) CancelPending(ctx context.Context, subOrderID, reason string) (*domain.RefundOutcome, error) {
	var out httpapi.RefundResponse
	err := c.do(ctx, "CancelPending", map[string]any{"sub_order_id": subOrderID, "reason": reason},
		http.MethodPost, "/sub-orders/"+url.PathEscape(subOrderID)+"/cancel-pending", nil,
		httpapi.CancelRequest{Reason: reason}, &out)
	if err != nil {
		return nil, err
	}
	return &out.Refund, nil
}

func (c *HTTPClient) Availability(ctx context.Context, productID string, start, end time.Time) (*httpapi.AvailabilityResponse, error) {
	var out httpapi.AvailabilityResponse
	q := url.Values{
		"start": {start.Format(domain.DateLayout)},
		"end":   {end.Format(domain.DateLayout)},
	}
	err := c.do(ctx, "Availability", map[string]any{"product_id": productID, "start": start, "end": end},
		http.MethodGet, "/products/"+url.PathEscape(productID)+"/availability", q, nil, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) ValidateCart(ctx context.Context, productID string, quantity int32, start, end time.Time) (*domain.AvailabilityResult, error) {
	var out domain.AvailabilityResult
	req := httpapi.ValidateCartRequest{
		ProductID: productID,
		Quantity:  quantity,
		StartDate: start.Format(domain.DateLayout),
		EndDate:   end.Format(domain.DateLayout),
	}
	err := c.do(ctx, "ValidateCart", map[string]any{"product_id": productID, "quantity": quantity, "start": start, "end": end},
		http.MethodPost, "/cart/validate", nil, req, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// do performs one request. Network failures, 429 and 5xx come back as
// *TransientError, every other non-2xx answer as *APIError.
func (c *HTTPClient) do(ctx context.Context, op string, args map[string]any, method, endpointPath string, query url.Values, body, out any) error {
	endpoint := *c.baseURL
	endpoint.Path = path.Join(endpoint.Path, "/api/v1", endpointPath)
	endpoint.RawQuery = query.Encode()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if id := logger.RequestID(ctx); id != "" {
		req.Header.Set("X-Request-ID", id)
	}

	logger.ExternalServiceCall("rental-api", op)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.ExternalServiceResult("rental-api", op, err)
		return &TransientError{Op: op, Args: args, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		logger.ExternalServiceResult("rental-api", op, err)
		return &TransientError{Op: op, Args: args, Err: err}
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		logger.ExternalServiceResult("rental-api", op, nil, "status", resp.StatusCode)
		if out == nil || len(raw) == 0 {
			return nil
		}
		return json.Unmarshal(raw, out)
	default:
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var problem httpapi.ErrorResponse
		if json.Unmarshal(raw, &problem) == nil {
			apiErr.Code, apiErr.Message = problem.Code, problem.Message
		}
		logger.ExternalServiceResult("rental-api", op, apiErr)
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return &TransientError{Op: op, Args: args, Err: apiErr}
		}
		return apiErr
	}
}
