package http

import (
	"net/http"

	"pira-rental-backend/internal/security"

	"github.com/gorilla/mux"
)

// NewRouter registers every REST route. Route names key the security table
// in the config package.
func NewRouter(h *Handler, tm security.TokenManager) *mux.Router {
	r := mux.NewRouter()
	r.Use(RequestID, AccessLog)

	r.HandleFunc("/health", h.Health).Methods(http.MethodGet).Name("health")

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(NewAuthMiddleware(tm).Handler)

	// Catalog and cart
	api.HandleFunc("/products/{id}/availability", h.Availability).Methods(http.MethodGet).Name("product.availability")
	api.HandleFunc("/cart/validate", h.ValidateCart).Methods(http.MethodPost).Name("cart.validate")

	// Owner confirmation
	api.HandleFunc("/sub-orders/{id}", h.GetSubOrder).Methods(http.MethodGet).Name("suborder.get")
	api.HandleFunc("/sub-orders/{id}/items/{itemId}/confirm", h.ConfirmItem).Methods(http.MethodPost).Name("suborder.item.confirm")
	api.HandleFunc("/sub-orders/{id}/items/{itemId}/reject", h.RejectItem).Methods(http.MethodPost).Name("suborder.item.reject")
	api.HandleFunc("/sub-orders/{id}/bulk-confirm", h.BulkConfirm).Methods(http.MethodPost).Name("suborder.bulk_confirm")
	api.HandleFunc("/sub-orders/{id}/contract", h.ResumeContract).Methods(http.MethodPost).Name("suborder.contract")
	api.HandleFunc("/sub-orders/{id}/sign", h.Sign).Methods(http.MethodPost).Name("suborder.sign")

	// Renter decision
	api.HandleFunc("/sub-orders/{id}/refund-preview", h.RefundPreview).Methods(http.MethodGet).Name("suborder.refund_preview")
	api.HandleFunc("/sub-orders/{id}/cancel-all", h.CancelAll).Methods(http.MethodPost).Name("suborder.cancel_all")
	api.HandleFunc("/sub-orders/{id}/accept-partial", h.AcceptPartial).Methods(http.MethodPost).Name("suborder.accept_partial")
	api.HandleFunc("/sub-orders/{id}/cancel-pending", h.CancelPending).Methods(http.MethodPost).Name("suborder.cancel_pending")

	// Notifications
	api.HandleFunc("/notifications", h.ListNotifications).Methods(http.MethodGet).Name("notification.list")
	api.HandleFunc("/notifications/{id}/read", h.MarkNotificationRead).Methods(http.MethodPost).Name("notification.read")

	return r
}
