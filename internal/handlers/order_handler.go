package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Jonas-spec/soko/internal/auth"
	"github.com/Jonas-spec/soko/internal/models"
	"github.com/Jonas-spec/soko/internal/orders"
)

// OrderHandler exposes the customer's order history.
type OrderHandler struct {
	svc *orders.Service
}

func NewOrderHandler(svc *orders.Service) *OrderHandler {
	return &OrderHandler{svc: svc}
}

// ListOrders returns the customer's committed orders, newest first. The open
// cart is not part of the history.
func (h *OrderHandler) ListOrders(c *gin.Context) {
	user := auth.CurrentUser(c)

	list, err := h.svc.CustomerOrders(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": list})
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	user := auth.CurrentUser(c)

	orderID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return
	}

	order, err := h.svc.CustomerOrderDetail(c.Request.Context(), user.ID, uint(orderID))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"order": order})
}

type CancelOrderRequest struct {
	Note string `json:"note"`
}

// CancelOrder lets a customer cancel their own order. Stock taken at
// checkout goes back.
func (h *OrderHandler) CancelOrder(c *gin.Context) {
	user := auth.CurrentUser(c)

	orderID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return
	}

	var req CancelOrderRequest
	_ = c.ShouldBindJSON(&req)

	actor := orders.Actor{UserID: user.ID}
	activity, err := h.svc.Transition(c.Request.Context(), actor, uint(orderID), models.OrderCancelled, req.Note)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "order cancelled", "activity": activity})
}
