package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Jonas-spec/soko/internal/orders"
	"github.com/Jonas-spec/soko/internal/payment"
)

// respondError maps service errors onto HTTP statuses. Validation failures
// come back as structured results; only unknown errors become 500s.
func respondError(c *gin.Context, err error) {
	var decline *payment.DeclineError

	switch {
	case errors.Is(err, orders.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, orders.ErrAccessDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
	case errors.Is(err, orders.ErrNotAvailable):
		c.JSON(http.StatusConflict, gin.H{"error": "product is not available"})
	case errors.Is(err, orders.ErrInsufficientStock):
		c.JSON(http.StatusConflict, gin.H{"error": "insufficient stock"})
	case errors.Is(err, orders.ErrEmptyCart):
		c.JSON(http.StatusBadRequest, gin.H{"error": "cart is empty"})
	case errors.Is(err, orders.ErrInvalidTransition):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &decline):
		// the gateway's user-facing message, verbatim
		c.JSON(http.StatusPaymentRequired, gin.H{"error": decline.Message})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
