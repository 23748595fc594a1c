package api

import (
	"context"

	"github.com/auricmart/agent-api/internal/model"
)

// CreateRequestInput is the body for POST /requests.
type CreateRequestInput struct {
	ItemID         string            `json:"itemId"`
	RequestType    model.RequestType `json:"requestType"`
	Quantity       string            `json:"quantity,omitempty"`
	Message        string            `json:"message,omitempty"`
	CapturedAmount float64           `json:"capturedAmount"`
}

// CreateNotificationInput is the body for POST /notifications/create.
type CreateNotificationInput struct {
	RecipientID string                 `json:"recipientId,omitempty"`
	Title       string                 `json:"title"`
	Message     string                 `json:"message"`
	Type        model.NotificationType `json:"type"`
	Data        map[string]interface{} `json:"data,omitempty"`
	IsGlobal    bool                   `json:"isGlobal"`
	IsAdminOnly bool                   `json:"isAdminOnly"`
	Priority    string                 `json:"priority"`
}

// RequestAPI is the request lifecycle slice of the backend contract.
type RequestAPI interface {
	CreateRequest(ctx context.Context, input CreateRequestInput) (*model.Request, error)
	AcceptRequest(ctx context.Context, id string) (*model.Request, error)
	DeclineRequest(ctx context.Context, id string) (*model.Request, error)
	SellerRequests(ctx context.Context, status model.RequestStatus) ([]model.Request, error)
	CustomerRequests(ctx context.Context, status model.RequestStatus) ([]model.Request, error)
}

// NotificationAPI is the notification slice of the backend contract.
type NotificationAPI interface {
	CreateNotification(ctx context.Context, input CreateNotificationInput) error
	UserNotifications(ctx context.Context) ([]model.Notification, error)
	MarkNotificationRead(ctx context.Context, id string) error
	MarkAllNotificationsRead(ctx context.Context) error
	DeleteNotification(ctx context.Context, id string) error
}

// AuthAPI is the session slice of the backend contract.
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (*model.Session, error)
	Logout(ctx context.Context) error
}

// MarketAPI covers the rate board and seller inventory reads.
type MarketAPI interface {
	Rates(ctx context.Context) (*model.RateBoard, error)
	Items(ctx context.Context) ([]model.Item, error)
}
