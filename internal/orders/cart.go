package orders

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Jonas-spec/soko/internal/metrics"
	"github.com/Jonas-spec/soko/internal/models"
)

// Cart returns the customer's pending order, creating it on first use.
func (s *Service) Cart(ctx context.Context, customerID uint) (*models.Order, error) {
	var order *models.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		order, err = pendingOrder(tx, customerID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.loadOrder(order.ID)
}

// AddItem puts quantity units of a product into the customer's cart.
//
// A first add fails with ErrInsufficientStock when the requested quantity
// exceeds stock. Re-adding an existing product increments the line item and
// clamps it to current stock instead of failing, matching the storefront's
// add-to-cart button semantics. The unit price is snapshotted only when the
// line item is created.
func (s *Service) AddItem(ctx context.Context, customerID, productID, quantity uint) (*models.Order, error) {
	if quantity == 0 {
		quantity = 1
	}

	var orderID uint
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var product models.Product
		if err := tx.First(&product, productID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		if !product.Available() {
			return ErrNotAvailable
		}

		order, err := pendingOrder(tx, customerID)
		if err != nil {
			return err
		}
		orderID = order.ID

		var item models.OrderItem
		err = tx.Where("order_id = ? AND product_id = ?", order.ID, product.ID).
			First(&item).Error

		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			if quantity > product.Stock {
				return ErrInsufficientStock
			}
			item = models.OrderItem{
				OrderID:   order.ID,
				ProductID: product.ID,
				Quantity:  quantity,
				Price:     product.Price,
			}
			if err := tx.Create(&item).Error; err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			item.Quantity += quantity
			if item.Quantity > product.Stock {
				item.Quantity = product.Stock
			}
			if err := tx.Save(&item).Error; err != nil {
				return err
			}
		}

		return recomputeTotal(tx, order.ID)
	})
	if err != nil {
		return nil, err
	}

	metrics.CartMutations.WithLabelValues("add").Inc()
	s.logger.Info("cart item added",
		zap.Uint("customer_id", customerID),
		zap.Uint("product_id", productID),
		zap.Uint("quantity", quantity))

	return s.loadOrder(orderID)
}

// UpdateItem sets a line item's quantity. Zero or negative quantity removes
// the item. A quantity above current stock fails with ErrInsufficientStock
// rather than clamping, so the customer is not surprised at checkout.
func (s *Service) UpdateItem(ctx context.Context, customerID, itemID uint, quantity int) (*models.Order, error) {
	var orderID uint
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		item, err := customerItem(tx, customerID, itemID)
		if err != nil {
			return err
		}
		orderID = item.OrderID

		if quantity <= 0 {
			if err := tx.Delete(&models.OrderItem{}, item.ID).Error; err != nil {
				return err
			}
			return recomputeTotal(tx, item.OrderID)
		}

		var product models.Product
		if err := tx.First(&product, item.ProductID).Error; err != nil {
			return err
		}
		if uint(quantity) > product.Stock {
			return ErrInsufficientStock
		}

		item.Quantity = uint(quantity)
		if err := tx.Save(item).Error; err != nil {
			return err
		}
		return recomputeTotal(tx, item.OrderID)
	})
	if err != nil {
		return nil, err
	}

	metrics.CartMutations.WithLabelValues("update").Inc()
	return s.loadOrder(orderID)
}

// RemoveItem deletes a line item from the customer's cart.
func (s *Service) RemoveItem(ctx context.Context, customerID, itemID uint) (*models.Order, error) {
	var orderID uint
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		item, err := customerItem(tx, customerID, itemID)
		if err != nil {
			return err
		}
		orderID = item.OrderID

		if err := tx.Delete(&models.OrderItem{}, item.ID).Error; err != nil {
			return err
		}
		return recomputeTotal(tx, item.OrderID)
	})
	if err != nil {
		return nil, err
	}

	metrics.CartMutations.WithLabelValues("remove").Inc()
	return s.loadOrder(orderID)
}

// customerItem loads a line item only if it sits in the customer's own
// pending order. Anything else is reported as not found, never acted on.
func customerItem(tx *gorm.DB, customerID, itemID uint) (*models.OrderItem, error) {
	var item models.OrderItem
	err := tx.Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("order_items.id = ? AND orders.customer_id = ? AND orders.status = ?",
			itemID, customerID, models.OrderPending).
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}
