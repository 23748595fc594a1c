package market

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/auricmart/agent-api/internal/api"
	"github.com/auricmart/agent-api/internal/handler"
	"github.com/auricmart/agent-api/internal/service/rates"
	"github.com/auricmart/agent-api/internal/store"
	apperrors "github.com/auricmart/agent-api/pkg/errors"
)

type Handler struct {
	rates  *rates.Service
	market api.MarketAPI
	store  *store.Store
}

func NewHandler(ratesSvc *rates.Service, marketAPI api.MarketAPI, st *store.Store) *Handler {
	return &Handler{rates: ratesSvc, market: marketAPI, store: st}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/rates", h.Rates)
	items := r.Group("/items")
	{
		items.GET("", h.Items)
		items.POST("/refresh", h.RefreshItems)
	}
}

func (h *Handler) Rates(c *gin.Context) {
	board, err := h.rates.Board(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, handler.NewErrorResponse(apperrors.Message(err)))
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(board))
}

// Items serves the cached inventory, filling the cache on first use.
func (h *Handler) Items(c *gin.Context) {
	items := h.store.Items()
	if len(items) == 0 {
		h.RefreshItems(c)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"items": items}))
}

func (h *Handler) RefreshItems(c *gin.Context) {
	items, err := h.market.Items(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, handler.NewErrorResponse(apperrors.Message(err)))
		return
	}
	h.store.ReplaceItems(items)
	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"items": items}))
}
