package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderPending    OrderStatus = "pending" // the customer's open cart
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
	OrderRefunded   OrderStatus = "refunded"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderProcessing, OrderShipped, OrderDelivered, OrderCancelled, OrderRefunded:
		return true
	}
	return false
}

type Order struct {
	ID uint `gorm:"primaryKey"`
	// The partial unique index enforces at most one open cart per customer
	// even under concurrent first adds.
	CustomerID      uint `gorm:"index;not null;uniqueIndex:uniq_customer_pending,where:status = 'pending'"`
	Customer        User
	Status          OrderStatus     `gorm:"type:varchar(10);index;not null;default:'pending'"`
	Total           decimal.Decimal `gorm:"type:decimal(10,2);not null"` // derived, kept in sync with items
	DeliveryAddress string
	Phone           string
	PaymentRef      string
	Items           []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Activities      []OrderActivity `gorm:"foreignKey:OrderID"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type OrderItem struct {
	ID        uint    `gorm:"primaryKey"`
	OrderID   uint    `gorm:"index;not null;uniqueIndex:uniq_order_product"`
	ProductID uint    `gorm:"index;not null;uniqueIndex:uniq_order_product"`
	Product   Product `gorm:"constraint:OnDelete:RESTRICT"` // never orphan historical pricing
	Quantity  uint    `gorm:"not null"`
	Price     decimal.Decimal `gorm:"type:decimal(10,2);not null"` // snapshotted at add time
	CreatedAt time.Time
}

// Subtotal is price at time of purchase times quantity.
func (i *OrderItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// OrderActivity is an append-only audit row written on every status change.
type OrderActivity struct {
	ID        uint `gorm:"primaryKey"`
	OrderID   uint `gorm:"index;not null"`
	UserID    uint `gorm:"index"`
	User      User
	Status    OrderStatus `gorm:"type:varchar(10);not null"`
	Note      string
	CreatedAt time.Time
}
