package request

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/auricmart/agent-api/internal/handler"
	"github.com/auricmart/agent-api/internal/model"
	requestService "github.com/auricmart/agent-api/internal/service/request"
	"github.com/auricmart/agent-api/internal/service/rates"
	"github.com/auricmart/agent-api/internal/store"
	apperrors "github.com/auricmart/agent-api/pkg/errors"
)

type Handler struct {
	svc   *requestService.Service
	rates *rates.Service
	store *store.Store
}

func NewHandler(svc *requestService.Service, ratesSvc *rates.Service, st *store.Store) *Handler {
	return &Handler{svc: svc, rates: ratesSvc, store: st}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	requests := r.Group("/requests")
	{
		requests.POST("", h.Create)
		requests.POST("/:id/accept", h.Accept)
		requests.POST("/:id/decline", h.Decline)
		requests.GET("", h.List)
	}
}

type createRequest struct {
	ItemID      string `json:"itemId" binding:"required"`
	RequestType string `json:"requestType" binding:"required,oneof=buy sell"`
	Quantity    string `json:"quantity"`
	Message     string `json:"message"`
}

// Create captures the live price for the item and submits the request.
// The captured amount is a snapshot of the board the customer saw, not a
// value the backend is obliged to honor unchecked.
func (h *Handler) Create(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("itemId and requestType (buy or sell) are required"))
		return
	}

	item, ok := h.store.Item(req.ItemID)
	if !ok {
		c.JSON(http.StatusNotFound, handler.NewErrorResponse("item not found, refresh inventory first"))
		return
	}

	requestType := model.RequestType(req.RequestType)
	amount, capturedAt, err := h.rates.Capture(c.Request.Context(), &item, requestType)
	if err != nil {
		c.JSON(http.StatusBadGateway, handler.NewErrorResponse(apperrors.Message(err)))
		return
	}

	result := h.svc.Create(c.Request.Context(), requestService.CreateInput{
		Item:           item,
		RequestType:    requestType,
		Quantity:       req.Quantity,
		Message:        req.Message,
		CapturedAmount: amount,
		CapturedAt:     capturedAt,
	})
	c.JSON(resultStatus(result), result)
}

func (h *Handler) Accept(c *gin.Context) {
	result := h.svc.Accept(c.Request.Context(), c.Param("id"))
	c.JSON(resultStatus(result), result)
}

func (h *Handler) Decline(c *gin.Context) {
	result := h.svc.Decline(c.Request.Context(), c.Param("id"))
	c.JSON(resultStatus(result), result)
}

// List refreshes the cache for the signed-in actor's view and returns
// it. Sellers see requests against their inventory, customers their own.
func (h *Handler) List(c *gin.Context) {
	sess, ok := h.store.Session()
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("not signed in"))
		return
	}

	status := model.RequestStatus(c.Query("status"))

	var (
		requests []model.Request
		err      error
	)
	if sess.User.Role == model.RoleSeller {
		requests, err = h.svc.RefreshSeller(c.Request.Context(), status)
	} else {
		requests, err = h.svc.RefreshCustomer(c.Request.Context(), status)
	}
	if err != nil {
		c.JSON(http.StatusBadGateway, handler.NewErrorResponse(apperrors.Message(err)))
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"requests": requests}))
}

// resultStatus maps a coordinator result to an HTTP status for the
// facade. The body always carries the structured result itself.
func resultStatus(result requestService.Result) int {
	if result.Success {
		return http.StatusOK
	}
	return http.StatusConflict
}
