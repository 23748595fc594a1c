package model

import "fmt"

type RequestType string

const (
	RequestTypeBuy  RequestType = "buy"
	RequestTypeSell RequestType = "sell"
)

func (t RequestType) Valid() bool {
	return t == RequestTypeBuy || t == RequestTypeSell
}

type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "pending"
	RequestStatusAccepted RequestStatus = "accepted"
	RequestStatusDeclined RequestStatus = "declined"
)

// Terminal reports whether the status can no longer change.
func (s RequestStatus) Terminal() bool {
	return s == RequestStatusAccepted || s == RequestStatusDeclined
}

// Request is a customer's buy or sell intent against a seller's
// inventory item. The backend assigns the id and owns the record; the
// client only caches it.
type Request struct {
	ID             string        `json:"id"`
	ItemID         string        `json:"itemId"`
	CustomerID     string        `json:"customerId"`
	SellerID       string        `json:"sellerId"`
	RequestType    RequestType   `json:"requestType"`
	Status         RequestStatus `json:"status"`
	Quantity       string        `json:"quantity,omitempty"`
	Message        string        `json:"message,omitempty"`
	CapturedAmount float64       `json:"capturedAmount"`
	CapturedAt     Millis        `json:"capturedAt"`
	CreatedAt      Millis        `json:"createdAt"`
	UpdatedAt      Millis        `json:"updatedAt"`

	// Denormalized display fields as returned by the backend's
	// populated list endpoints.
	CustomerName  string `json:"customerName,omitempty"`
	CustomerEmail string `json:"customerEmail,omitempty"`
	SellerName    string `json:"sellerName,omitempty"`
	ItemName      string `json:"itemName,omitempty"`
}

// CanTransition checks the pending-only transition rule. Terminal states
// never change again.
func (r *Request) CanTransition() error {
	if r.Status != RequestStatusPending {
		return fmt.Errorf("request %s already processed (status %s)", r.ID, r.Status)
	}
	return nil
}
