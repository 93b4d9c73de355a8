package orders

import (
	"errors"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Jonas-spec/soko/internal/models"
	"github.com/Jonas-spec/soko/internal/payment"
)

// Service owns the cart, the order lifecycle and the vendor-scoped views.
// All mutations run inside a single transaction so a line-item change and its
// total recomputation, or a payment and its stock decrements, commit or roll
// back as one unit.
type Service struct {
	db      *gorm.DB
	charger payment.Charger
	logger  *zap.Logger
}

func NewService(gdb *gorm.DB, charger payment.Charger, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{db: gdb, charger: charger, logger: logger}
}

// pendingOrder finds or creates the customer's cart. The partial unique
// index on (customer_id) where status = 'pending' guarantees at most one; a
// create that loses a concurrent race falls back to reading the winner's row.
func pendingOrder(tx *gorm.DB, customerID uint) (*models.Order, error) {
	var order models.Order
	err := tx.Where("customer_id = ? AND status = ?", customerID, models.OrderPending).
		First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		order = models.Order{
			CustomerID: customerID,
			Status:     models.OrderPending,
			Total:      decimal.Zero,
		}
		if createErr := tx.Create(&order).Error; createErr != nil {
			err = tx.Where("customer_id = ? AND status = ?", customerID, models.OrderPending).
				First(&order).Error
			if err != nil {
				return nil, createErr
			}
		}
		return &order, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// recomputeTotal sets order.total to the sum of price*quantity over the
// order's line items. Must run in the same transaction as the item mutation.
func recomputeTotal(tx *gorm.DB, orderID uint) error {
	var items []models.OrderItem
	if err := tx.Where("order_id = ?", orderID).Find(&items).Error; err != nil {
		return err
	}

	total := decimal.Zero
	for i := range items {
		total = total.Add(items[i].Subtotal())
	}

	return tx.Model(&models.Order{}).Where("id = ?", orderID).
		Update("total", total).Error
}

// loadOrder returns the order with items and customer preloaded.
func (s *Service) loadOrder(orderID uint) (*models.Order, error) {
	var order models.Order
	err := s.db.Preload("Items").Preload("Items.Product").Preload("Customer").
		First(&order, orderID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}
