package orders

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Jonas-spec/soko/internal/models"
)

// VendorOrderFilters narrows a vendor's order list. Query matches the order
// id, the customer's email or the customer's name.
type VendorOrderFilters struct {
	Status  models.OrderStatus
	Query   string
	Page    int
	PerPage int
}

// OrderPage is one page of a vendor's order list.
type OrderPage struct {
	Orders  []models.Order `json:"orders"`
	Total   int64          `json:"total"`
	Page    int            `json:"page"`
	Pages   int            `json:"pages"`
	PerPage int            `json:"per_page"`
}

// VendorStats feeds the dashboard.
type VendorStats struct {
	TotalOrders   int64          `json:"total_orders"`
	TotalProducts int64          `json:"total_products"`
	RecentOrders  []models.Order `json:"recent_orders"`
}

const defaultPerPage = 10

// vendorOrderIDs selects ids of orders that contain at least one line item
// belonging to the vendor. Pending carts are excluded; a cart is not an order
// yet.
func vendorOrderIDs(tx *gorm.DB, vendorID uint) *gorm.DB {
	return tx.Model(&models.OrderItem{}).
		Select("order_items.order_id").
		Joins("JOIN products ON products.id = order_items.product_id").
		Where("products.vendor_id = ?", vendorID)
}

// VendorOrders lists the vendor's slice of the order book, newest first.
// Line items on the returned orders are restricted to the vendor's own
// products; a multi-vendor order never leaks another vendor's items.
func (s *Service) VendorOrders(ctx context.Context, vendorID uint, f VendorOrderFilters) (*OrderPage, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PerPage < 1 {
		f.PerPage = defaultPerPage
	}

	gdb := s.db.WithContext(ctx)

	q := gdb.Model(&models.Order{}).
		Where("orders.id IN (?)", vendorOrderIDs(gdb, vendorID)).
		Where("orders.status <> ?", models.OrderPending)

	if f.Status != "" {
		q = q.Where("orders.status = ?", f.Status)
	}
	if f.Query != "" {
		like := "%" + f.Query + "%"
		q = q.Joins("JOIN users ON users.id = orders.customer_id").
			Where("CAST(orders.id AS varchar) LIKE ? OR users.email LIKE ? OR users.name LIKE ?",
				like, like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, err
	}

	var list []models.Order
	err := q.Preload("Customer").
		Order("orders.created_at DESC").
		Offset((f.Page - 1) * f.PerPage).
		Limit(f.PerPage).
		Find(&list).Error
	if err != nil {
		return nil, err
	}

	if err := s.attachVendorItems(ctx, vendorID, list); err != nil {
		return nil, err
	}

	pages := int((total + int64(f.PerPage) - 1) / int64(f.PerPage))

	return &OrderPage{
		Orders:  list,
		Total:   total,
		Page:    f.Page,
		Pages:   pages,
		PerPage: f.PerPage,
	}, nil
}

// VendorOrderDetail returns one order with only the vendor's items and the
// activity history. A vendor with no items in the order is denied.
func (s *Service) VendorOrderDetail(ctx context.Context, vendorID, orderID uint) (*models.Order, error) {
	gdb := s.db.WithContext(ctx)

	var order models.Order
	err := gdb.Preload("Customer").
		Preload("Activities", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("order_activities.created_at DESC")
		}).
		Preload("Activities.User").
		First(&order, orderID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	items, err := s.vendorItems(ctx, vendorID, []uint{order.ID})
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrAccessDenied
	}
	order.Items = items

	return &order, nil
}

// VendorDashboard aggregates counts and the five most recent orders.
func (s *Service) VendorDashboard(ctx context.Context, vendorID uint) (*VendorStats, error) {
	gdb := s.db.WithContext(ctx)

	stats := &VendorStats{}

	err := gdb.Model(&models.Order{}).
		Where("id IN (?)", vendorOrderIDs(gdb, vendorID)).
		Where("status <> ?", models.OrderPending).
		Count(&stats.TotalOrders).Error
	if err != nil {
		return nil, err
	}

	err = gdb.Model(&models.Product{}).
		Where("vendor_id = ?", vendorID).
		Count(&stats.TotalProducts).Error
	if err != nil {
		return nil, err
	}

	err = gdb.Preload("Customer").
		Where("id IN (?)", vendorOrderIDs(gdb, vendorID)).
		Where("status <> ?", models.OrderPending).
		Order("created_at DESC").
		Limit(5).
		Find(&stats.RecentOrders).Error
	if err != nil {
		return nil, err
	}

	if err := s.attachVendorItems(ctx, vendorID, stats.RecentOrders); err != nil {
		return nil, err
	}

	return stats, nil
}

// CustomerOrders lists the customer's committed orders, newest first. The
// open cart is not part of the history.
func (s *Service) CustomerOrders(ctx context.Context, customerID uint) ([]models.Order, error) {
	var list []models.Order
	err := s.db.WithContext(ctx).
		Preload("Items").Preload("Items.Product").
		Where("customer_id = ? AND status <> ?", customerID, models.OrderPending).
		Order("created_at DESC").
		Find(&list).Error
	return list, err
}

// CustomerOrderDetail returns one of the customer's own orders with its
// activity history.
func (s *Service) CustomerOrderDetail(ctx context.Context, customerID, orderID uint) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).
		Preload("Items").Preload("Items.Product").
		Preload("Activities", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("order_activities.created_at DESC")
		}).
		Where("customer_id = ?", customerID).
		First(&order, orderID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// vendorItems loads line items for the given orders restricted to the
// vendor's own products.
func (s *Service) vendorItems(ctx context.Context, vendorID uint, orderIDs []uint) ([]models.OrderItem, error) {
	var items []models.OrderItem
	err := s.db.WithContext(ctx).
		Preload("Product").
		Joins("JOIN products ON products.id = order_items.product_id").
		Where("order_items.order_id IN ? AND products.vendor_id = ?", orderIDs, vendorID).
		Find(&items).Error
	return items, err
}

func (s *Service) attachVendorItems(ctx context.Context, vendorID uint, list []models.Order) error {
	if len(list) == 0 {
		return nil
	}

	ids := make([]uint, 0, len(list))
	for i := range list {
		ids = append(ids, list[i].ID)
	}

	items, err := s.vendorItems(ctx, vendorID, ids)
	if err != nil {
		return err
	}

	byOrder := make(map[uint][]models.OrderItem, len(list))
	for _, item := range items {
		byOrder[item.OrderID] = append(byOrder[item.OrderID], item)
	}
	for i := range list {
		list[i].Items = byOrder[list[i].ID]
	}
	return nil
}
