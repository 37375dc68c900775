package api

import (
	"errors"
	"net/http"

	reqdto "class-sync/internal/handler/dto/request"
	resdto "class-sync/internal/handler/dto/response"
	"class-sync/internal/infra"
	"class-sync/internal/usecase/commands"
	"class-sync/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

type OrderHandler struct {
	orders        commands.OrderCommands
	subscriptions queries.SubscriptionQueries
}

func NewOrderHandler(orders commands.OrderCommands, subscriptions queries.SubscriptionQueries) *OrderHandler {
	return &OrderHandler{
		orders:        orders,
		subscriptions: subscriptions,
	}
}

// StatusChanged receives the storefront's order-status-changed hook. The
// response reports per-line outcomes; a non-qualifying status returns 200
// with processed=false so the storefront never retries it.
func (h *OrderHandler) StatusChanged(c *gin.Context) {
	var req reqdto.OrderStatusChangedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	result, err := h.orders.ProcessStatusChange(c.Request.Context(), req.ToCommand())
	if err != nil {
		switch {
		case errors.Is(err, commands.ErrIdentityLookupFailed),
			errors.Is(err, commands.ErrIdentityCreateFailed),
			errors.Is(err, commands.ErrIdentityNotResolved):
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Identity resolution failed",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
		}
		return
	}

	c.JSON(http.StatusOK, resdto.FromOrderResult(result))
}

// GetSubscription returns the subscription view for an order.
func (h *OrderHandler) GetSubscription(c *gin.Context) {
	var params struct {
		OrderID int64 `uri:"order_id" binding:"required"`
	}
	if err := c.ShouldBindUri(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid order ID format",
		})
		return
	}

	view, err := h.subscriptions.GetByOrderID(c.Request.Context(), params.OrderID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Subscription not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	resp, err := resdto.FromSubscriptionView(view)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}
	c.JSON(http.StatusOK, resp)
}
