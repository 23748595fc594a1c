package notification

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auricmart/agent-api/internal/api"
	"github.com/auricmart/agent-api/internal/handler"
	"github.com/auricmart/agent-api/internal/model"
	"github.com/auricmart/agent-api/internal/service/notifier"
	"github.com/auricmart/agent-api/internal/store"
	apperrors "github.com/auricmart/agent-api/pkg/errors"
	"github.com/auricmart/agent-api/pkg/logger"
	"github.com/auricmart/agent-api/pkg/metrics"
)

type fakeNotificationAPI struct {
	remote  []model.Notification
	markErr error
}

func (f *fakeNotificationAPI) CreateNotification(ctx context.Context, input api.CreateNotificationInput) error {
	return nil
}

func (f *fakeNotificationAPI) UserNotifications(ctx context.Context) ([]model.Notification, error) {
	return f.remote, nil
}

func (f *fakeNotificationAPI) MarkNotificationRead(ctx context.Context, id string) error {
	return f.markErr
}

func (f *fakeNotificationAPI) MarkAllNotificationsRead(ctx context.Context) error {
	return f.markErr
}

func (f *fakeNotificationAPI) DeleteNotification(ctx context.Context, id string) error {
	return nil
}

func setupRouter(t *testing.T, fake *fakeNotificationAPI) (*gin.Engine, *store.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := logger.NewLogger(&logger.Config{Level: logger.ErrorLevel, Output: io.Discard})
	st := store.New()
	svc := notifier.NewService(fake, st, nil, log, metrics.NewTestMetrics())

	r := gin.New()
	group := r.Group("/api/v1")
	NewHandler(svc).RegisterRoutes(group)
	return r, st
}

func do(r *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp handler.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.True(t, resp.Success, resp.Error)
	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	return data
}

func TestListAndUnreadCount(t *testing.T) {
	router, st := setupRouter(t, &fakeNotificationAPI{})
	st.SetSession(&model.Session{User: model.User{ID: "u1"}})
	st.ReplaceNotifications([]model.Notification{
		{ID: "n1", RecipientID: "u1"},
		{ID: "n2"},
		{ID: "n3", RecipientID: "other"},
	})

	w := do(router, http.MethodGet, "/api/v1/notifications")
	require.Equal(t, http.StatusOK, w.Code)
	data := decodeData(t, w)
	assert.Len(t, data["notifications"], 2)
	assert.EqualValues(t, 2, data["unreadCount"])

	w = do(router, http.MethodGet, "/api/v1/notifications/unread-count")
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 2, decodeData(t, w)["unreadCount"])
}

func TestRefreshReplacesList(t *testing.T) {
	fake := &fakeNotificationAPI{
		remote: []model.Notification{{ID: "srv-1", RecipientID: "u1"}},
	}
	router, st := setupRouter(t, fake)
	st.SetSession(&model.Session{User: model.User{ID: "u1"}})
	st.ReplaceNotifications([]model.Notification{{ID: "stale", RecipientID: "u1"}})

	w := do(router, http.MethodPost, "/api/v1/notifications/refresh")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "srv-1")
	assert.NotContains(t, w.Body.String(), "stale")
}

func TestMarkReadAlwaysSucceeds(t *testing.T) {
	// Remote failure does not surface: the facade stays 200 and the
	// local badge still drops.
	fake := &fakeNotificationAPI{
		markErr: apperrors.NewUnavailable("server error, please try again later", nil),
	}
	router, st := setupRouter(t, fake)
	st.SetSession(&model.Session{User: model.User{ID: "u1"}})
	st.ReplaceNotifications([]model.Notification{{ID: "n1", RecipientID: "u1"}})

	w := do(router, http.MethodPatch, "/api/v1/notifications/n1/read")
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 0, decodeData(t, w)["unreadCount"])
}

func TestMarkAllAndDelete(t *testing.T) {
	router, st := setupRouter(t, &fakeNotificationAPI{})
	st.SetSession(&model.Session{User: model.User{ID: "u1"}})
	st.ReplaceNotifications([]model.Notification{
		{ID: "n1", RecipientID: "u1"},
		{ID: "n2"},
	})

	w := do(router, http.MethodPatch, "/api/v1/notifications/read-all")
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 0, decodeData(t, w)["unreadCount"])

	w = do(router, http.MethodDelete, "/api/v1/notifications/n1")
	require.Equal(t, http.StatusOK, w.Code)

	w = do(router, http.MethodGet, "/api/v1/notifications")
	assert.NotContains(t, w.Body.String(), `"n1"`)
}
