package models

import "time"

// Vendor is the canonical seller profile, one per vendor-role user. Products
// and order scoping key on Vendor.ID, never on the user id directly.
type Vendor struct {
	ID         uint `gorm:"primaryKey"`
	UserID     uint `gorm:"uniqueIndex;not null"`
	User       User
	ShopName   string `gorm:"not null"`
	Phone      string
	Address    string
	City       string
	PostalCode string
	Country    string
	Approved   bool `gorm:"not null;default:false"` // set by staff before the vendor may sell
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
