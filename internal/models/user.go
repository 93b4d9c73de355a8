package models

import "time"

type Role string

const (
	RoleCustomer Role = "customer"
	RoleVendor   Role = "vendor"
)

func (r Role) Valid() bool {
	return r == RoleCustomer || r == RoleVendor
}

type User struct {
	ID           uint   `gorm:"primaryKey"`
	Name         string `gorm:"not null"`
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null" json:"-"`
	Role         Role   `gorm:"type:varchar(10);index;not null;default:'customer'"`
	Phone        string
	Location     string
	OIDCID       string `gorm:"index"` // OpenID Connect subject, empty for password accounts
	Staff        bool   `gorm:"not null;default:false"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// RegistrationDraft holds the state of a multi-step signup. The token is
// handed back to the client after step one and exchanged, together with any
// role-specific details, to finalize the account. Drafts past ExpiresAt are
// rejected.
type RegistrationDraft struct {
	ID           uint   `gorm:"primaryKey"`
	Token        string `gorm:"uniqueIndex;not null"`
	Name         string `gorm:"not null"`
	Email        string `gorm:"not null"`
	PasswordHash string `gorm:"not null" json:"-"`
	Role         Role   `gorm:"type:varchar(10);not null"`
	Phone        string
	ExpiresAt    time.Time `gorm:"index;not null"`
	CreatedAt    time.Time
}

// PasswordReset is a single-use token mailed to the user.
type PasswordReset struct {
	ID        uint   `gorm:"primaryKey"`
	Token     string `gorm:"uniqueIndex;not null"`
	UserID    uint   `gorm:"index;not null"`
	User      User
	ExpiresAt time.Time `gorm:"index;not null"`
	UsedAt    *time.Time
	CreatedAt time.Time
}
