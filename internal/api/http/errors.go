package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"pira-rental-backend/internal/domain"
	"pira-rental-backend/internal/logger"

	"github.com/go-playground/validator/v10"
)

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

var sentinelCodes = []struct {
	err    error
	status int
	code   string
}{
	{domain.ErrReasonRequired, http.StatusBadRequest, "REASON_REQUIRED"},
	{domain.ErrNoItemsSelected, http.StatusBadRequest, "NO_ITEMS_SELECTED"},
	{domain.ErrInvalidDecision, http.StatusBadRequest, "INVALID_DECISION"},
	{domain.ErrItemNotFound, http.StatusNotFound, "ITEM_NOT_FOUND"},
	{domain.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
	{domain.ErrUnauthorized, http.StatusForbidden, "FORBIDDEN"},
	{domain.ErrInvalidStateTransition, http.StatusConflict, "INVALID_STATE_TRANSITION"},
	{domain.ErrDecisionAlreadyMade, http.StatusConflict, "DECISION_ALREADY_MADE"},
	{domain.ErrDecisionNotAllowed, http.StatusConflict, "DECISION_NOT_ALLOWED"},
	{domain.ErrStaleSubOrder, http.StatusConflict, "STALE_SUB_ORDER"},
	{domain.ErrAvailabilityUnknown, http.StatusConflict, "AVAILABILITY_UNKNOWN"},
	{domain.ErrInsufficientAvailability, http.StatusConflict, "INSUFFICIENT_AVAILABILITY"},
	{domain.ErrContractPending, http.StatusBadGateway, "CONTRACT_PENDING"},
	{ErrNoActor, http.StatusUnauthorized, "UNAUTHENTICATED"},
}

// statusFor maps a service error to its HTTP status and stable error code.
func statusFor(err error) (int, string) {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return http.StatusBadRequest, ve.Rule
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return http.StatusBadRequest, "INVALID_REQUEST"
	}
	for _, s := range sentinelCodes {
		if errors.Is(err, s.err) {
			return s.status, s.code
		}
	}
	return http.StatusInternalServerError, "INTERNAL"
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		logger.FromContext(r.Context()).Error("Request failed", "route", routeName(r), "error", err)
		msg = "internal error"
	}
	writeProblem(w, status, code, msg)
}

func writeProblem(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, ErrorResponse{Code: code, Message: msg})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Warn("Failed to encode response", "error", err)
	}
}
