package api

import (
	"context"
	"net/url"

	"github.com/auricmart/agent-api/internal/model"
)

type notificationListResponse struct {
	envelope
	Notifications []model.Notification `json:"notifications"`
}

func (c *Client) CreateNotification(ctx context.Context, input CreateNotificationInput) error {
	var resp struct {
		envelope
	}
	if err := c.post(ctx, "create_notification", "/notifications/create", input, &resp); err != nil {
		return err
	}
	return checkEnvelope(resp.envelope)
}

// UserNotifications returns the viewer's full notification list. This
// endpoint predates the success envelope, so an absent success flag with
// a notifications array is still a valid answer.
func (c *Client) UserNotifications(ctx context.Context) ([]model.Notification, error) {
	var resp notificationListResponse
	if err := c.get(ctx, "user_notifications", "/notifications/user", &resp); err != nil {
		return nil, err
	}
	if resp.Notifications == nil && !resp.Success {
		if err := checkEnvelope(resp.envelope); err != nil {
			return nil, err
		}
	}
	return resp.Notifications, nil
}

func (c *Client) MarkNotificationRead(ctx context.Context, id string) error {
	var resp struct {
		envelope
	}
	path := "/notifications/" + url.PathEscape(id) + "/read"
	if err := c.patch(ctx, "mark_notification_read", path, nil, &resp); err != nil {
		return err
	}
	return nil
}

func (c *Client) MarkAllNotificationsRead(ctx context.Context) error {
	var resp struct {
		envelope
	}
	if err := c.patch(ctx, "mark_all_read", "/notifications/mark-all-read", nil, &resp); err != nil {
		return err
	}
	return nil
}

func (c *Client) DeleteNotification(ctx context.Context, id string) error {
	return c.delete(ctx, "delete_notification", "/notifications/"+url.PathEscape(id))
}
