package model

type NotificationType string

const (
	NotificationTypeSignup       NotificationType = "signup"
	NotificationTypeTransaction  NotificationType = "transaction"
	NotificationTypeSystem       NotificationType = "system"
	NotificationTypeAlert        NotificationType = "alert"
	NotificationTypeDeletion     NotificationType = "deletion"
	NotificationTypeContact      NotificationType = "contact"
	NotificationTypeReferral     NotificationType = "referral"
	NotificationTypeRoleChange   NotificationType = "role_change"
	NotificationTypePayment      NotificationType = "payment"
	NotificationTypeRateInterest NotificationType = "rate_interest"

	NotificationTypeBuyRequest          NotificationType = "buy_request"
	NotificationTypeSellRequest         NotificationType = "sell_request"
	NotificationTypeBuyRequestAccepted  NotificationType = "buy_request_accepted"
	NotificationTypeBuyRequestDeclined  NotificationType = "buy_request_declined"
	NotificationTypeSellRequestAccepted NotificationType = "sell_request_accepted"
	NotificationTypeSellRequestDeclined NotificationType = "sell_request_declined"
)

func (t NotificationType) Valid() bool {
	switch t {
	case NotificationTypeSignup, NotificationTypeTransaction,
		NotificationTypeSystem, NotificationTypeAlert,
		NotificationTypeDeletion, NotificationTypeContact,
		NotificationTypeReferral, NotificationTypeRoleChange,
		NotificationTypePayment, NotificationTypeRateInterest,
		NotificationTypeBuyRequest, NotificationTypeSellRequest,
		NotificationTypeBuyRequestAccepted, NotificationTypeBuyRequestDeclined,
		NotificationTypeSellRequestAccepted, NotificationTypeSellRequestDeclined:
		return true
	}
	return false
}

// RequestNotificationType selects the outcome notification type for a
// processed request: 2 request types x accept/decline.
func RequestNotificationType(requestType RequestType, accepted bool) NotificationType {
	switch {
	case requestType == RequestTypeBuy && accepted:
		return NotificationTypeBuyRequestAccepted
	case requestType == RequestTypeBuy:
		return NotificationTypeBuyRequestDeclined
	case accepted:
		return NotificationTypeSellRequestAccepted
	default:
		return NotificationTypeSellRequestDeclined
	}
}

// Notification is an informational record surfaced to one viewer
// (RecipientID set) or to every viewer (RecipientID empty, used for
// admin-facing broadcasts).
type Notification struct {
	ID          string                 `json:"id"`
	Title       string                 `json:"title"`
	Message     string                 `json:"message"`
	Timestamp   Millis                 `json:"timestamp"`
	Read        bool                   `json:"read"`
	Type        NotificationType       `json:"type"`
	RecipientID string                 `json:"recipientId,omitempty"`
	Data        map[string]interface{} `json:"data,omitempty"`
}

// Global reports whether the notification is addressed to every viewer.
func (n *Notification) Global() bool {
	return n.RecipientID == ""
}

// VisibleTo reports whether the given viewer sees this notification.
func (n *Notification) VisibleTo(viewerID string) bool {
	return n.Global() || n.RecipientID == viewerID
}
