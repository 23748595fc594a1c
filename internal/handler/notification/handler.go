package notification

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/auricmart/agent-api/internal/handler"
	"github.com/auricmart/agent-api/internal/service/notifier"
	apperrors "github.com/auricmart/agent-api/pkg/errors"
)

type Handler struct {
	svc *notifier.Service
}

func NewHandler(svc *notifier.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	notifications := r.Group("/notifications")
	{
		notifications.GET("", h.List)
		notifications.GET("/unread-count", h.UnreadCount)
		notifications.POST("/refresh", h.Refresh)
		notifications.PATCH("/:id/read", h.MarkRead)
		notifications.PATCH("/read-all", h.MarkAllRead)
		notifications.DELETE("/:id", h.Delete)
	}
}

func (h *Handler) List(c *gin.Context) {
	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{
		"notifications": h.svc.Notifications(),
		"unreadCount":   h.svc.Unread(),
	}))
}

func (h *Handler) UnreadCount(c *gin.Context) {
	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"unreadCount": h.svc.Unread()}))
}

func (h *Handler) Refresh(c *gin.Context) {
	if err := h.svc.Refresh(c.Request.Context()); err != nil {
		c.JSON(http.StatusBadGateway, handler.NewErrorResponse(apperrors.Message(err)))
		return
	}
	h.List(c)
}

// MarkRead is best-effort against the backend; it always succeeds
// locally, so the facade always answers 200.
func (h *Handler) MarkRead(c *gin.Context) {
	h.svc.MarkRead(c.Request.Context(), c.Param("id"))
	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"unreadCount": h.svc.Unread()}))
}

func (h *Handler) MarkAllRead(c *gin.Context) {
	h.svc.MarkAllRead(c.Request.Context())
	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"unreadCount": h.svc.Unread()}))
}

func (h *Handler) Delete(c *gin.Context) {
	h.svc.Delete(c.Request.Context(), c.Param("id"))
	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"unreadCount": h.svc.Unread()}))
}
