package session

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/auricmart/agent-api/internal/handler"
	"github.com/auricmart/agent-api/internal/service/session"
	"github.com/auricmart/agent-api/internal/store"
	apperrors "github.com/auricmart/agent-api/pkg/errors"
)

type Handler struct {
	svc   *session.Service
	store *store.Store
}

func NewHandler(svc *session.Service, st *store.Store) *Handler {
	return &Handler{svc: svc, store: st}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	auth := r.Group("/session")
	{
		auth.POST("/login", h.Login)
		auth.POST("/logout", h.Logout)
		auth.GET("/me", h.Me)
	}
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("email and password are required"))
		return
	}

	sess, err := h.svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		status := http.StatusBadGateway
		if apperrors.Is(err, apperrors.ErrValidation) {
			status = http.StatusBadRequest
		} else if apperrors.Is(err, apperrors.ErrUnauthorized) {
			status = http.StatusUnauthorized
		}
		c.JSON(status, handler.NewErrorResponse(apperrors.Message(err)))
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"user": sess.User}))
}

func (h *Handler) Logout(c *gin.Context) {
	h.svc.Logout(c.Request.Context())
	c.JSON(http.StatusOK, handler.NewSuccessResponse(nil))
}

func (h *Handler) Me(c *gin.Context) {
	sess, ok := h.store.Session()
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("not signed in"))
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"user": sess.User}))
}
