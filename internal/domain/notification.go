package domain

type NotificationType string

const (
	NotificationOrderCancelled     NotificationType = "ORDER_CANCELLED"
	NotificationOwnerRejected      NotificationType = "OWNER_REJECTED"
	NotificationPartiallyConfirmed NotificationType = "PARTIALLY_CONFIRMED"
	NotificationOwnerConfirmed     NotificationType = "OWNER_CONFIRMED"
	NotificationPartialAccepted    NotificationType = "PARTIAL_ACCEPTED"
	NotificationContractReady      NotificationType = "CONTRACT_READY"
	NotificationContractSigned     NotificationType = "CONTRACT_SIGNED"
)

type Notification struct {
	ID         int32             `json:"id"`
	UserID     int32             `json:"user_id"`
	Type       NotificationType  `json:"type"`
	Title      string            `json:"title"`
	Message    string            `json:"message"`
	IsRead     bool              `json:"is_read"`
	Attributes map[string]string `json:"attributes"`
	CreatedOn  string            `json:"created_on"`
}
