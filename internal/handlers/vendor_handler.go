package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Jonas-spec/soko/internal/auth"
	"github.com/Jonas-spec/soko/internal/models"
	"github.com/Jonas-spec/soko/internal/orders"
)

// VendorHandler exposes the vendor dashboard and the vendor's slice of the
// order book.
type VendorHandler struct {
	svc *orders.Service
}

func NewVendorHandler(svc *orders.Service) *VendorHandler {
	return &VendorHandler{svc: svc}
}

func (h *VendorHandler) Dashboard(c *gin.Context) {
	vendor := auth.CurrentVendor(c)

	stats, err := h.svc.VendorDashboard(c.Request.Context(), vendor.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"vendor": vendor, "stats": stats})
}

func (h *VendorHandler) ListOrders(c *gin.Context) {
	vendor := auth.CurrentVendor(c)

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "10"))

	filters := orders.VendorOrderFilters{
		Status:  models.OrderStatus(c.Query("status")),
		Query:   c.Query("q"),
		Page:    page,
		PerPage: perPage,
	}

	if filters.Status != "" && !filters.Status.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status filter"})
		return
	}

	result, err := h.svc.VendorOrders(c.Request.Context(), vendor.ID, filters)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *VendorHandler) GetOrder(c *gin.Context) {
	vendor := auth.CurrentVendor(c)

	orderID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return
	}

	order, err := h.svc.VendorOrderDetail(c.Request.Context(), vendor.ID, uint(orderID))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"order": order})
}

type UpdateOrderStatusRequest struct {
	Status models.OrderStatus `json:"status" binding:"required"`
	Note   string             `json:"note"`
}

// UpdateOrderStatus drives the vendor-side lifecycle (processing -> shipped
// -> delivered, cancellations, refunds). Every change appends an activity
// entry.
func (h *VendorHandler) UpdateOrderStatus(c *gin.Context) {
	user := auth.CurrentUser(c)
	vendor := auth.CurrentVendor(c)

	orderID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return
	}

	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status is required"})
		return
	}

	note := req.Note
	if note == "" {
		note = "Status updated by vendor"
	}

	actor := orders.Actor{UserID: user.ID, VendorID: vendor.ID, Staff: user.Staff}
	activity, err := h.svc.Transition(c.Request.Context(), actor, uint(orderID), req.Status, note)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "order status updated",
		"status":   req.Status,
		"activity": activity,
	})
}
