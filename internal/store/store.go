// Package store holds the agent's local view of remote state: the
// signed-in session, the request cache, and the notification list. The
// cache is not authoritative; refreshes replace it wholesale and any
// snapshot a caller holds across a refresh is stale.
package store

import (
	"sort"
	"sync"

	"github.com/auricmart/agent-api/internal/model"
)

// UnreadCount is the pure derivation of the viewer's unread badge:
// unread notifications that are global or addressed to the viewer. It is
// recomputed from scratch after every mutation, never tracked
// incrementally, so the badge cannot drift from the list.
func UnreadCount(viewerID string, list []model.Notification) int {
	count := 0
	for i := range list {
		if !list[i].Read && list[i].VisibleTo(viewerID) {
			count++
		}
	}
	return count
}

// Store is the single shared mutable state of the agent. All access goes
// through the mutex; callers receive copies, never aliases into the
// internal slices.
type Store struct {
	mu            sync.RWMutex
	session       *model.Session
	requests      []model.Request
	notifications []model.Notification
	items         []model.Item
	unread        int
}

func New() *Store {
	return &Store{}
}

// --- session ---

func (s *Store) SetSession(sess *model.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = sess
	// Viewer change invalidates the derived badge.
	s.recalcUnread()
}

func (s *Store) ClearSession() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = nil
	s.requests = nil
	s.notifications = nil
	s.items = nil
	s.unread = 0
}

func (s *Store) Session() (*model.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return nil, false
	}
	sess := *s.session
	return &sess, true
}

// ViewerID returns the signed-in user's id, or "" when signed out.
func (s *Store) ViewerID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.viewerID()
}

func (s *Store) viewerID() string {
	if s.session == nil {
		return ""
	}
	return s.session.User.ID
}

func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return ""
	}
	return s.session.Token
}

// --- requests ---

// ReplaceRequests swaps the entire request cache for the server's result
// set. No merge or diff.
func (s *Store) ReplaceRequests(requests []model.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append([]model.Request(nil), requests...)
}

func (s *Store) UpsertRequest(r model.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.requests {
		if s.requests[i].ID == r.ID {
			s.requests[i] = r
			return
		}
	}
	s.requests = append(s.requests, r)
}

func (s *Store) Request(id string) (model.Request, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.requests {
		if s.requests[i].ID == id {
			return s.requests[i], true
		}
	}
	return model.Request{}, false
}

func (s *Store) Requests() []model.Request {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Request(nil), s.requests...)
}

// --- notifications ---

// ReplaceNotifications swaps the list for the server's current view,
// newest first, and rederives the unread badge.
func (s *Store) ReplaceNotifications(list []model.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = append([]model.Notification(nil), list...)
	sort.SliceStable(s.notifications, func(i, j int) bool {
		return s.notifications[i].Timestamp > s.notifications[j].Timestamp
	})
	s.recalcUnread()
}

func (s *Store) AddNotification(n model.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = append([]model.Notification{n}, s.notifications...)
	s.recalcUnread()
}

// MarkNotificationRead flips the read flag, false to true only.
func (s *Store) MarkNotificationRead(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.notifications {
		if s.notifications[i].ID == id {
			s.notifications[i].Read = true
			break
		}
	}
	s.recalcUnread()
}

// MarkAllNotificationsRead marks every notification visible to the
// current viewer in one pass.
func (s *Store) MarkAllNotificationsRead() {
	s.mu.Lock()
	defer s.mu.Unlock()
	viewer := s.viewerID()
	for i := range s.notifications {
		if s.notifications[i].VisibleTo(viewer) {
			s.notifications[i].Read = true
		}
	}
	s.recalcUnread()
}

func (s *Store) RemoveNotification(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.notifications {
		if s.notifications[i].ID == id {
			s.notifications = append(s.notifications[:i], s.notifications[i+1:]...)
			break
		}
	}
	s.recalcUnread()
}

// Notifications returns the notifications visible to the current viewer.
func (s *Store) Notifications() []model.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	viewer := s.viewerID()
	out := make([]model.Notification, 0, len(s.notifications))
	for i := range s.notifications {
		if s.notifications[i].VisibleTo(viewer) {
			out = append(out, s.notifications[i])
		}
	}
	return out
}

// AllNotifications returns the raw list regardless of addressing. Used
// by the snapshot persister.
func (s *Store) AllNotifications() []model.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Notification(nil), s.notifications...)
}

func (s *Store) Unread() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.unread
}

func (s *Store) recalcUnread() {
	s.unread = UnreadCount(s.viewerID(), s.notifications)
}

// --- items ---

func (s *Store) ReplaceItems(items []model.Item) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append([]model.Item(nil), items...)
}

func (s *Store) Item(id string) (model.Item, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.items {
		if s.items[i].ID == id {
			return s.items[i], true
		}
	}
	return model.Item{}, false
}

func (s *Store) Items() []model.Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Item(nil), s.items...)
}
