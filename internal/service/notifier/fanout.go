package notifier

import (
	"encoding/json"
	"fmt"

	"github.com/auricmart/agent-api/internal/api"
	"github.com/auricmart/agent-api/internal/model"
	"github.com/auricmart/agent-api/pkg/event"
)

// buildNotification maps one lifecycle event to the single notification
// its counterpart actor receives: creation notifies the seller, an
// outcome notifies the customer.
func buildNotification(ev *event.RequestEvent) (model.Notification, bool) {
	switch ev.Type {
	case event.RequestCreated:
		return createdNotification(ev), true
	case event.RequestAccepted:
		return outcomeNotification(ev, true), true
	case event.RequestDeclined:
		return outcomeNotification(ev, false), true
	default:
		return model.Notification{}, false
	}
}

func createdNotification(ev *event.RequestEvent) model.Notification {
	req := &ev.Request

	notifType := model.NotificationTypeBuyRequest
	verb := "buy"
	if req.RequestType == model.RequestTypeSell {
		notifType = model.NotificationTypeSellRequest
		verb = "sell"
	}

	message := fmt.Sprintf("%s wants to %s %s", ev.Customer.Name, verb, ev.Item.Name)
	if req.Quantity != "" {
		message = fmt.Sprintf("%s wants to %s %s x %s", ev.Customer.Name, verb, ev.Item.Name, req.Quantity)
	}

	return model.Notification{
		Title:       fmt.Sprintf("New %s request", verb),
		Message:     message,
		Timestamp:   ev.OccurredAt,
		Type:        notifType,
		RecipientID: ev.Seller.ID,
		Data: map[string]interface{}{
			"requestId":      req.ID,
			"requestType":    string(req.RequestType),
			"customerName":   ev.Customer.Name,
			"customerEmail":  ev.Customer.Email,
			"itemId":         ev.Item.ID,
			"itemName":       ev.Item.Name,
			"buyPremium":     ev.Item.BuyPremium,
			"sellPremium":    ev.Item.SellPremium,
			"capturedAmount": req.CapturedAmount,
			"quantity":       req.Quantity,
			"message":        req.Message,
		},
	}
}

func outcomeNotification(ev *event.RequestEvent, accepted bool) model.Notification {
	req := &ev.Request

	outcome := "accepted"
	if !accepted {
		outcome = "declined"
	}
	itemName := ev.Item.Name
	if itemName == "" {
		itemName = "your item"
	}
	sellerName := ev.Seller.Name
	if sellerName == "" {
		sellerName = "The seller"
	}

	return model.Notification{
		Title: fmt.Sprintf("Request %s", outcome),
		Message: fmt.Sprintf("%s %s your %s request for %s",
			sellerName, outcome, req.RequestType, itemName),
		Timestamp:   ev.OccurredAt,
		Type:        model.RequestNotificationType(req.RequestType, accepted),
		RecipientID: ev.Customer.ID,
		Data: map[string]interface{}{
			"requestId":      req.ID,
			"requestType":    string(req.RequestType),
			"status":         string(req.Status),
			"sellerName":     ev.Seller.Name,
			"itemId":         ev.Item.ID,
			"itemName":       ev.Item.Name,
			"capturedAmount": req.CapturedAmount,
		},
	}
}

// encodeCreateInput serializes a failed remote create for the journal.
func encodeCreateInput(input api.CreateNotificationInput) string {
	data, err := json.Marshal(input)
	if err != nil {
		return "{}"
	}
	return string(data)
}
