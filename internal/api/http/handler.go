package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"pira-rental-backend/internal/domain"
	"pira-rental-backend/internal/service"
	"pira-rental-backend/internal/utils"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Handler struct {
	confirmSvc  service.OrderConfirmationService
	decisionSvc service.RenterDecisionService
	cartSvc     service.CartService
	noteSvc     service.NotificationService
	db          Pinger
	validate    *validator.Validate
}

func NewHandler(
	confirmSvc service.OrderConfirmationService,
	decisionSvc service.RenterDecisionService,
	cartSvc service.CartService,
	noteSvc service.NotificationService,
	db Pinger,
) *Handler {
	return &Handler{
		confirmSvc:  confirmSvc,
		decisionSvc: decisionSvc,
		cartSvc:     cartSvc,
		noteSvc:     noteSvc,
		db:          db,
		validate:    validator.New(),
	}
}

// decode reads a JSON body into dst and validates its tags.
func (h *Handler) decode(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return domain.NewValidationError("INVALID_JSON", err.Error())
	}
	return h.validate.Struct(dst)
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if h.db != nil {
		if err := h.db.PingContext(r.Context()); err != nil {
			writeProblem(w, http.StatusServiceUnavailable, "UNAVAILABLE", "database unreachable")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) GetSubOrder(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	sub, err := h.confirmSvc.GetSubOrder(r.Context(), userID, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newSubOrderResponse(sub))
}

func (h *Handler) ConfirmItem(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	vars := mux.Vars(r)
	sub, err := h.confirmSvc.ConfirmLineItem(r.Context(), userID, vars["id"], vars["itemId"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newSubOrderResponse(sub))
}

func (h *Handler) RejectItem(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req RejectItemRequest
	if err := h.decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	vars := mux.Vars(r)
	sub, err := h.confirmSvc.RejectLineItem(r.Context(), userID, vars["id"], vars["itemId"], req.Reason)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newSubOrderResponse(sub))
}

func (h *Handler) BulkConfirm(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req BulkConfirmRequest
	if err := h.decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	sub, ref, err := h.confirmSvc.BulkPartialConfirm(r.Context(), userID, mux.Vars(r)["id"], req.ConfirmedItemIDs)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, BulkConfirmResponse{SubOrder: newSubOrderResponse(sub), Contract: ref})
}

func (h *Handler) ResumeContract(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	id := mux.Vars(r)["id"]
	ref, err := h.confirmSvc.ResumeContract(r.Context(), userID, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ContractResponse{SubOrderID: id, Contract: *ref})
}

func (h *Handler) Sign(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	sub, err := h.confirmSvc.MarkContractSigned(r.Context(), userID, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newSubOrderResponse(sub))
}

func (h *Handler) RefundPreview(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	id := mux.Vars(r)["id"]
	decision := domain.RenterDecision(r.URL.Query().Get("decision"))
	refund, err := h.decisionSvc.PreviewRefund(r.Context(), userID, id, decision)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, RefundResponse{SubOrderID: id, Refund: *refund})
}

func (h *Handler) CancelAll(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req CancelRequest
	if err := h.decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	id := mux.Vars(r)["id"]
	refund, err := h.decisionSvc.CancelAll(r.Context(), userID, id, req.Reason)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, RefundResponse{SubOrderID: id, Refund: *refund})
}

func (h *Handler) AcceptPartial(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	id := mux.Vars(r)["id"]
	refund, ref, err := h.decisionSvc.AcceptPartial(r.Context(), userID, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, AcceptPartialResponse{SubOrderID: id, Refund: *refund, Contract: ref, ContractPending: ref == nil})
}

func (h *Handler) CancelPending(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req CancelRequest
	if err := h.decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	id := mux.Vars(r)["id"]
	refund, err := h.decisionSvc.CancelPending(r.Context(), userID, id, req.Reason)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, RefundResponse{SubOrderID: id, Refund: *refund})
}

func (h *Handler) Availability(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	start, err := parseDate(q.Get("start"))
	if err != nil {
		writeError(w, r, domain.NewValidationError("INVALID_DATE", fmt.Sprintf("start: %v", err)))
		return
	}
	end, err := parseDate(q.Get("end"))
	if err != nil {
		writeError(w, r, domain.NewValidationError("INVALID_DATE", fmt.Sprintf("end: %v", err)))
		return
	}
	productID := mux.Vars(r)["id"]
	days, agg, err := h.cartSvc.GetAvailability(r.Context(), productID, start, end)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, AvailabilityResponse{ProductID: productID, Days: days, Aggregate: *agg})
}

func (h *Handler) ValidateCart(w http.ResponseWriter, r *http.Request) {
	var req ValidateCartRequest
	if err := h.decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.StartDate == "" || req.EndDate == "" {
		writeError(w, r, domain.NewValidationError(utils.RuleMissingDates, "start_date and end_date are required"))
		return
	}
	start, err := parseDate(req.StartDate)
	if err != nil {
		writeError(w, r, domain.NewValidationError("INVALID_DATE", err.Error()))
		return
	}
	end, err := parseDate(req.EndDate)
	if err != nil {
		writeError(w, r, domain.NewValidationError("INVALID_DATE", err.Error()))
		return
	}
	res, err := h.cartSvc.ValidateCheckout(r.Context(), req.ProductID, req.Quantity, start, end)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))
	notes, total, err := h.noteSvc.GetNotifications(r.Context(), userID, int32(page), int32(pageSize))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, NotificationsResponse{Notifications: notes, Total: total})
}

func (h *Handler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 32)
	if err != nil {
		writeError(w, r, domain.NewValidationError("INVALID_ID", "notification id must be numeric"))
		return
	}
	if err := h.noteSvc.MarkAsRead(r.Context(), userID, int32(id)); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
