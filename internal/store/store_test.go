package store

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/auricmart/agent-api/internal/model"
)

func sessionFor(id string) *model.Session {
	return &model.Session{User: model.User{ID: id}, Token: "t-" + id}
}

func TestUnreadCountDerivation(t *testing.T) {
	list := []model.Notification{
		{ID: "n1", Read: false},                      // global, unread
		{ID: "n2", Read: true},                       // global, read
		{ID: "n3", Read: false, RecipientID: "u1"},   // mine, unread
		{ID: "n4", Read: true, RecipientID: "u1"},    // mine, read
		{ID: "n5", Read: false, RecipientID: "else"}, // not mine
	}

	assert.Equal(t, 2, UnreadCount("u1", list))
	assert.Equal(t, 2, UnreadCount("else", list))
	assert.Equal(t, 1, UnreadCount("stranger", list))
	assert.Equal(t, 0, UnreadCount("u1", nil))
}

func TestStoreUnreadTracksMutations(t *testing.T) {
	s := New()
	s.SetSession(sessionFor("u1"))
	s.ReplaceNotifications([]model.Notification{
		{ID: "n1", RecipientID: "u1"},
		{ID: "n2"},
		{ID: "n3", RecipientID: "other"},
	})
	assert.Equal(t, 2, s.Unread())

	s.MarkNotificationRead("n1")
	assert.Equal(t, 1, s.Unread())

	// Marking an already-read notification changes nothing.
	s.MarkNotificationRead("n1")
	assert.Equal(t, 1, s.Unread())

	s.MarkNotificationRead("missing")
	assert.Equal(t, 1, s.Unread())

	s.RemoveNotification("n2")
	assert.Equal(t, 0, s.Unread())
}

func TestStoreMarkAllReadIdempotent(t *testing.T) {
	s := New()
	s.SetSession(sessionFor("u1"))
	s.ReplaceNotifications([]model.Notification{
		{ID: "n1", RecipientID: "u1"},
		{ID: "n2"},
		{ID: "n3", RecipientID: "other"},
	})

	s.MarkAllNotificationsRead()
	assert.Equal(t, 0, s.Unread())

	// Another viewer's notification stays untouched.
	for _, n := range s.AllNotifications() {
		if n.ID == "n3" {
			assert.False(t, n.Read)
		} else {
			assert.True(t, n.Read)
		}
	}

	s.MarkAllNotificationsRead()
	assert.Equal(t, 0, s.Unread())
}

func TestStoreNotificationsFilteredByViewer(t *testing.T) {
	s := New()
	s.SetSession(sessionFor("u1"))
	s.ReplaceNotifications([]model.Notification{
		{ID: "n1", RecipientID: "u1", Timestamp: 100},
		{ID: "n2", Timestamp: 300},
		{ID: "n3", RecipientID: "other", Timestamp: 200},
	})

	visible := s.Notifications()
	assert.Len(t, visible, 2)
	// Newest first.
	assert.Equal(t, "n2", visible[0].ID)
	assert.Equal(t, "n1", visible[1].ID)
}

func TestStoreViewerChangeRederivesUnread(t *testing.T) {
	s := New()
	s.SetSession(sessionFor("u1"))
	s.ReplaceNotifications([]model.Notification{
		{ID: "n1", RecipientID: "u1"},
		{ID: "n2", RecipientID: "u2"},
	})
	assert.Equal(t, 1, s.Unread())

	s.SetSession(sessionFor("u2"))
	assert.Equal(t, 1, s.Unread())

	s.ClearSession()
	assert.Equal(t, 0, s.Unread())
	assert.Empty(t, s.Notifications())
}

func TestStoreReplaceRequestsWholesale(t *testing.T) {
	s := New()
	s.ReplaceRequests([]model.Request{{ID: "r1"}, {ID: "r2"}})
	assert.Len(t, s.Requests(), 2)

	// A refresh replaces, never merges.
	s.ReplaceRequests([]model.Request{{ID: "r3"}})
	got := s.Requests()
	assert.Len(t, got, 1)
	assert.Equal(t, "r3", got[0].ID)

	_, ok := s.Request("r1")
	assert.False(t, ok)
}

func TestStoreUpsertRequest(t *testing.T) {
	s := New()
	s.UpsertRequest(model.Request{ID: "r1", Status: model.RequestStatusPending})
	s.UpsertRequest(model.Request{ID: "r1", Status: model.RequestStatusAccepted})

	got, ok := s.Request("r1")
	assert.True(t, ok)
	assert.Equal(t, model.RequestStatusAccepted, got.Status)
	assert.Len(t, s.Requests(), 1)
}

func TestStoreCopiesNotAliases(t *testing.T) {
	s := New()
	s.ReplaceRequests([]model.Request{{ID: "r1", Status: model.RequestStatusPending}})

	got := s.Requests()
	got[0].Status = model.RequestStatusDeclined

	fresh, _ := s.Request("r1")
	assert.Equal(t, model.RequestStatusPending, fresh.Status)
}
