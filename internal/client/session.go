package client

import (
	"context"
	"errors"
	"net/http"
	"sync"

	httpapi "pira-rental-backend/internal/api/http"
	"pira-rental-backend/internal/domain"
	"pira-rental-backend/internal/order"
)

// ErrActionInFlight is returned when a mutation for the same sub-order has
// not finished yet.
var ErrActionInFlight = errors.New("an action for this sub-order is already in progress")

// API is the part of HTTPClient a Session drives.
type API interface {
	GetSubOrder(ctx context.Context, subOrderID string) (*httpapi.SubOrderResponse, error)
	ConfirmItem(ctx context.Context, subOrderID, itemID string) (*httpapi.SubOrderResponse, error)
	RejectItem(ctx context.Context, subOrderID, itemID, reason string) (*httpapi.SubOrderResponse, error)
	BulkConfirm(ctx context.Context, subOrderID string, confirmedIDs []string) (*httpapi.BulkConfirmResponse, error)
	ResumeContract(ctx context.Context, subOrderID string) (*domain.ContractRef, error)
	Sign(ctx context.Context, subOrderID string) (*httpapi.SubOrderResponse, error)
	PreviewRefund(ctx context.Context, subOrderID string, decision domain.RenterDecision) (*domain.RefundOutcome, error)
	CancelAll(ctx context.Context, subOrderID, reason string) (*domain.RefundOutcome, error)
	AcceptPartial(ctx context.Context, subOrderID string) (*httpapi.AcceptPartialResponse, error)
	CancelPending(ctx context.Context, subOrderID, reason string) (*domain.RefundOutcome, error)
}

// Session caches the sub-orders a user is looking at. The server is the only
// source of truth: every mutation is followed by a refetch whose answer
// replaces the cached entry wholesale.
type Session struct {
	api API

	mu       sync.Mutex
	cache    map[string]httpapi.SubOrderResponse
	inFlight map[string]struct{}
}

func NewSession(api API) *Session {
	return &Session{
		api:      api,
		cache:    make(map[string]httpapi.SubOrderResponse),
		inFlight: make(map[string]struct{}),
	}
}

// SubOrder returns the last server view of a sub-order.
func (s *Session) SubOrder(subOrderID string) (httpapi.SubOrderResponse, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub, ok := s.cache[subOrderID]
	return sub, ok
}

// Busy reports whether a mutation for the sub-order is running, so callers
// can disable the matching controls.
func (s *Session) Busy(subOrderID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.inFlight[subOrderID]
	return ok
}

// Refresh fetches the sub-order and replaces the cached copy.
func (s *Session) Refresh(ctx context.Context, subOrderID string) (httpapi.SubOrderResponse, error) {
	sub, err := s.api.GetSubOrder(ctx, subOrderID)
	if err != nil {
		if apiErr := new(APIError); errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			s.forget(subOrderID)
		}
		return httpapi.SubOrderResponse{}, err
	}
	s.mu.Lock()
	s.cache[subOrderID] = *sub
	s.mu.Unlock()
	return *sub, nil
}

// MasterStatus derives the master order status from the cached sub-orders
// that belong to it.
func (s *Session) MasterStatus(masterOrderID string) domain.MasterOrderStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	var subs []domain.SubOrder
	for _, sub := range s.cache {
		if sub.SubOrder != nil && sub.MasterOrderID == masterOrderID {
			subs = append(subs, *sub.SubOrder)
		}
	}
	return order.DeriveMasterStatus(subs)
}

func (s *Session) ConfirmItem(ctx context.Context, subOrderID, itemID string) (httpapi.SubOrderResponse, error) {
	return s.mutate(ctx, subOrderID, func() error {
		_, err := s.api.ConfirmItem(ctx, subOrderID, itemID)
		return err
	})
}

func (s *Session) RejectItem(ctx context.Context, subOrderID, itemID, reason string) (httpapi.SubOrderResponse, error) {
	return s.mutate(ctx, subOrderID, func() error {
		_, err := s.api.RejectItem(ctx, subOrderID, itemID, reason)
		return err
	})
}

func (s *Session) BulkConfirm(ctx context.Context, subOrderID string, confirmedIDs []string) (httpapi.SubOrderResponse, *domain.ContractRef, error) {
	var ref *domain.ContractRef
	sub, err := s.mutate(ctx, subOrderID, func() error {
		resp, err := s.api.BulkConfirm(ctx, subOrderID, confirmedIDs)
		if err == nil {
			ref = resp.Contract
		}
		return err
	})
	return sub, ref, err
}

func (s *Session) ResumeContract(ctx context.Context, subOrderID string) (httpapi.SubOrderResponse, *domain.ContractRef, error) {
	var ref *domain.ContractRef
	sub, err := s.mutate(ctx, subOrderID, func() error {
		r, err := s.api.ResumeContract(ctx, subOrderID)
		ref = r
		return err
	})
	return sub, ref, err
}

func (s *Session) Sign(ctx context.Context, subOrderID string) (httpapi.SubOrderResponse, error) {
	return s.mutate(ctx, subOrderID, func() error {
		_, err := s.api.Sign(ctx, subOrderID)
		return err
	})
}

// PreviewRefund asks the server for the refund a decision would produce.
// Nothing is cached.
func (s *Session) PreviewRefund(ctx context.Context, subOrderID string, decision domain.RenterDecision) (*domain.RefundOutcome, error) {
	return s.api.PreviewRefund(ctx, subOrderID, decision)
}

func (s *Session) CancelAll(ctx context.Context, subOrderID, reason string) (httpapi.SubOrderResponse, *domain.RefundOutcome, error) {
	var refund *domain.RefundOutcome
	sub, err := s.mutate(ctx, subOrderID, func() error {
		r, err := s.api.CancelAll(ctx, subOrderID, reason)
		refund = r
		return err
	})
	return sub, refund, err
}

func (s *Session) AcceptPartial(ctx context.Context, subOrderID string) (httpapi.SubOrderResponse, *httpapi.AcceptPartialResponse, error) {
	var out *httpapi.AcceptPartialResponse
	sub, err := s.mutate(ctx, subOrderID, func() error {
		r, err := s.api.AcceptPartial(ctx, subOrderID)
		out = r
		return err
	})
	return sub, out, err
}

func (s *Session) CancelPending(ctx context.Context, subOrderID, reason string) (httpapi.SubOrderResponse, *domain.RefundOutcome, error) {
	var refund *domain.RefundOutcome
	sub, err := s.mutate(ctx, subOrderID, func() error {
		r, err := s.api.CancelPending(ctx, subOrderID, reason)
		refund = r
		return err
	})
	return sub, refund, err
}

// mutate runs call under the per sub-order guard and then refetches. The
// refetch also runs after a state conflict, since the cached copy is what
// went stale. A transient failure leaves the cache untouched.
func (s *Session) mutate(ctx context.Context, subOrderID string, call func() error) (httpapi.SubOrderResponse, error) {
	if !s.acquire(subOrderID) {
		return httpapi.SubOrderResponse{}, ErrActionInFlight
	}
	defer s.release(subOrderID)

	callErr := call()
	if callErr != nil && IsTransient(callErr) {
		cached, _ := s.SubOrder(subOrderID)
		return cached, callErr
	}

	sub, err := s.Refresh(ctx, subOrderID)
	if callErr != nil {
		return sub, callErr
	}
	return sub, err
}

func (s *Session) acquire(subOrderID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inFlight[subOrderID]; busy {
		return false
	}
	s.inFlight[subOrderID] = struct{}{}
	return true
}

func (s *Session) release(subOrderID string) {
	s.mu.Lock()
	delete(s.inFlight, subOrderID)
	s.mu.Unlock()
}

func (s *Session) forget(subOrderID string) {
	s.mu.Lock()
	delete(s.cache, subOrderID)
	s.mu.Unlock()
}
