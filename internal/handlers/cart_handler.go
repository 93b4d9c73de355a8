package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Jonas-spec/soko/internal/auth"
	"github.com/Jonas-spec/soko/internal/models"
	"github.com/Jonas-spec/soko/internal/notifier"
	"github.com/Jonas-spec/soko/internal/orders"
)

// CartHandler exposes the customer's cart and checkout.
type CartHandler struct {
	svc *orders.Service
}

func NewCartHandler(svc *orders.Service) *CartHandler {
	return &CartHandler{svc: svc}
}

func (h *CartHandler) GetCart(c *gin.Context) {
	user := auth.CurrentUser(c)

	order, err := h.svc.Cart(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"order": order, "cart_count": len(order.Items)})
}

type AddToCartRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  uint `json:"quantity"`
}

func (h *CartHandler) AddToCart(c *gin.Context) {
	user := auth.CurrentUser(c)

	var req AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	order, err := h.svc.AddItem(c.Request.Context(), user.ID, req.ProductID, req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "product added to cart",
		"order":      order,
		"cart_count": len(order.Items),
	})
}

type UpdateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

func (h *CartHandler) UpdateCartItem(c *gin.Context) {
	user := auth.CurrentUser(c)

	itemID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid item id"})
		return
	}

	var req UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	order, err := h.svc.UpdateItem(c.Request.Context(), user.ID, uint(itemID), req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "cart updated", "order": order})
}

func (h *CartHandler) RemoveFromCart(c *gin.Context) {
	user := auth.CurrentUser(c)

	itemID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid item id"})
		return
	}

	order, err := h.svc.RemoveItem(c.Request.Context(), user.ID, uint(itemID))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "item removed from cart", "order": order})
}

type CheckoutRequest struct {
	DeliveryAddress string `json:"delivery_address" binding:"required"`
	Phone           string `json:"phone" binding:"required"`
	PaymentToken    string `json:"payment_token" binding:"required"`
}

func (h *CartHandler) Checkout(c *gin.Context) {
	user := auth.CurrentUser(c)

	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "delivery_address, phone and payment_token are required"})
		return
	}

	order, err := h.svc.Checkout(c.Request.Context(), user.ID, req.DeliveryAddress, req.Phone, req.PaymentToken)
	if err != nil {
		respondError(c, err)
		return
	}

	go func(customer models.User, order models.Order) {

		if err := notifier.SendOrderSMS(order.Phone, order.ID, order.Total); err != nil {
			fmt.Printf("Failed to send SMS for order %d to %s: %v\n", order.ID, order.Phone, err)
		}
	}(*user, *order)

	go func(customer models.User, order models.Order) {

		if err := notifier.SendOrderEmail(customer.Email, customer.Name, order.ID, order.Total); err != nil {
			fmt.Printf("Failed to send email for order %d to %s: %v\n", order.ID, customer.Email, err)
		}
	}(*user, *order)

	c.JSON(http.StatusCreated, gin.H{"message": "payment processed successfully", "order": order})
}
