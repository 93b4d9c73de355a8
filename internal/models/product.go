package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type ProductStatus string

const (
	ProductActive   ProductStatus = "active"
	ProductInactive ProductStatus = "inactive"
	ProductDraft    ProductStatus = "draft"
)

func (s ProductStatus) Valid() bool {
	switch s {
	case ProductActive, ProductInactive, ProductDraft:
		return true
	}
	return false
}

type Product struct {
	ID          uint `gorm:"primaryKey"`
	VendorID    uint `gorm:"index;not null"`
	Vendor      Vendor
	CategoryID  uint `gorm:"index;not null"`
	Category    Category
	Name        string `gorm:"index;not null"`
	Description string
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Stock       uint            `gorm:"not null;default:0"`
	ImageKey    string          // object-store key, upload itself handled elsewhere
	Status      ProductStatus   `gorm:"type:varchar(10);index;not null;default:'draft'"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Available reports whether the product can be added to a cart.
func (p *Product) Available() bool {
	return p.Status == ProductActive && p.Stock > 0
}
