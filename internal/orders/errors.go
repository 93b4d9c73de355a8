package orders

import "errors"

var (
	// ErrNotAvailable means the product is not active or has zero stock.
	ErrNotAvailable = errors.New("product not available")
	// ErrInsufficientStock means the requested quantity exceeds current stock.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrEmptyCart means checkout was attempted with no line items.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrInvalidTransition means the target status is unknown or the edge is
	// not permitted from the order's current status.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrAccessDenied means the actor may not see or act on the order.
	ErrAccessDenied = errors.New("access denied")
	// ErrNotFound means the order, item or product does not exist.
	ErrNotFound = errors.New("not found")
)
