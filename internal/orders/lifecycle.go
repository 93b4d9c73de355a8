package orders

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Jonas-spec/soko/internal/metrics"
	"github.com/Jonas-spec/soko/internal/models"
)

// transitions is the order state machine. pending is the open cart; every
// other status is a committed order.
var transitions = map[models.OrderStatus][]models.OrderStatus{
	models.OrderPending:    {models.OrderProcessing, models.OrderCancelled},
	models.OrderProcessing: {models.OrderShipped, models.OrderCancelled, models.OrderRefunded},
	models.OrderShipped:    {models.OrderDelivered, models.OrderRefunded},
	models.OrderDelivered:  {models.OrderRefunded},
	models.OrderCancelled:  {models.OrderRefunded},
}

func canTransition(from, to models.OrderStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Actor identifies who is driving a status transition. VendorID is zero for
// customers; Staff bypasses vendor scoping.
type Actor struct {
	UserID   uint
	VendorID uint
	Staff    bool
}

// Checkout captures payment for the customer's cart and commits it.
//
// In one transaction: every line item is revalidated against current stock
// with a guarded decrement (stock may have changed since add-time), delivery
// details are persisted, the charge is captured and the order moves to
// processing. Any failure, including a card decline, rolls the whole thing
// back; stock is never partially decremented.
func (s *Service) Checkout(ctx context.Context, customerID uint, address, phone, paymentToken string) (*models.Order, error) {
	var orderID uint
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order models.Order
		err := tx.Preload("Items").
			Where("customer_id = ? AND status = ?", customerID, models.OrderPending).
			First(&order).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEmptyCart
		}
		if err != nil {
			return err
		}
		if len(order.Items) == 0 {
			return ErrEmptyCart
		}
		orderID = order.ID

		// Guarded decrement: only succeeds while stock covers the quantity,
		// so two checkouts racing for the last unit cannot both pass.
		for _, item := range order.Items {
			res := tx.Model(&models.Product{}).
				Where("id = ? AND stock >= ?", item.ProductID, item.Quantity).
				UpdateColumn("stock", gorm.Expr("stock - ?", item.Quantity))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("%w: product %d", ErrInsufficientStock, item.ProductID)
			}
		}

		ref, err := s.charger.Charge(ctx, order.Total, "usd", paymentToken,
			fmt.Sprintf("Order #%d", order.ID))
		if err != nil {
			return err
		}

		updates := map[string]interface{}{
			"status":           models.OrderProcessing,
			"delivery_address": address,
			"phone":            phone,
			"payment_ref":      ref,
		}
		if err := tx.Model(&order).Updates(updates).Error; err != nil {
			return err
		}

		activity := models.OrderActivity{
			OrderID: order.ID,
			UserID:  customerID,
			Status:  models.OrderProcessing,
			Note:    "Payment captured",
		}
		return tx.Create(&activity).Error
	})
	if err != nil {
		metrics.Checkouts.WithLabelValues("failed").Inc()
		return nil, err
	}

	metrics.Checkouts.WithLabelValues("succeeded").Inc()
	s.logger.Info("order checked out",
		zap.Uint("order_id", orderID),
		zap.Uint("customer_id", customerID))

	return s.loadOrder(orderID)
}

// Transition moves an order to newStatus on behalf of an actor and appends an
// immutable activity entry.
//
// Vendors may only touch orders containing at least one of their own items.
// Customers may only cancel their own orders. Cancelling a paid order puts
// the decremented stock back in the same transaction.
func (s *Service) Transition(ctx context.Context, actor Actor, orderID uint, newStatus models.OrderStatus, note string) (*models.OrderActivity, error) {
	if !newStatus.Valid() {
		return nil, ErrInvalidTransition
	}

	var activity models.OrderActivity
	var from models.OrderStatus

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order models.Order
		err := tx.Preload("Items").First(&order, orderID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		if err := authorizeTransition(tx, actor, &order, newStatus); err != nil {
			return err
		}

		if !canTransition(order.Status, newStatus) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, order.Status, newStatus)
		}
		from = order.Status

		// Stock was taken at checkout; cancelling a paid order returns it.
		if newStatus == models.OrderCancelled && order.Status == models.OrderProcessing {
			for _, item := range order.Items {
				res := tx.Model(&models.Product{}).
					Where("id = ?", item.ProductID).
					UpdateColumn("stock", gorm.Expr("stock + ?", item.Quantity))
				if res.Error != nil {
					return res.Error
				}
			}
		}

		if err := tx.Model(&order).Update("status", newStatus).Error; err != nil {
			return err
		}

		activity = models.OrderActivity{
			OrderID: order.ID,
			UserID:  actor.UserID,
			Status:  newStatus,
			Note:    note,
		}
		return tx.Create(&activity).Error
	})
	if err != nil {
		return nil, err
	}

	metrics.Transitions.WithLabelValues(string(from), string(newStatus)).Inc()
	s.logger.Info("order status changed",
		zap.Uint("order_id", orderID),
		zap.String("from", string(from)),
		zap.String("to", string(newStatus)),
		zap.Uint("actor_id", actor.UserID))

	return &activity, nil
}

// authorizeTransition short-circuits before any mutation.
func authorizeTransition(tx *gorm.DB, actor Actor, order *models.Order, newStatus models.OrderStatus) error {
	if actor.Staff {
		return nil
	}

	if actor.VendorID != 0 {
		var count int64
		err := tx.Model(&models.OrderItem{}).
			Joins("JOIN products ON products.id = order_items.product_id").
			Where("order_items.order_id = ? AND products.vendor_id = ?", order.ID, actor.VendorID).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count == 0 {
			return ErrAccessDenied
		}
		return nil
	}

	// Customers may only cancel their own order.
	if order.CustomerID != actor.UserID || newStatus != models.OrderCancelled {
		return ErrAccessDenied
	}
	return nil
}
