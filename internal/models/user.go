package models

import (
	"time"
)

// KycStatus is the overall verification state of a user
type KycStatus string

const (
	KycStatusPending  KycStatus = "pending"
	KycStatusVerified KycStatus = "verified"
	KycStatusRejected KycStatus = "rejected"
)

// User mirrors the identity issued by the external identity provider.
// Standardized: Go (PascalCase) -> DB (snake_case) -> JSON (camelCase)
type User struct {
	ID              string    `gorm:"primaryKey;type:varchar(255)" json:"id"`
	Email           *string   `gorm:"uniqueIndex" json:"email"`
	FirstName       *string   `json:"firstName"`
	LastName        *string   `json:"lastName"`
	ProfileImageURL *string   `gorm:"column:profile_image_url" json:"profileImageUrl"`
	CompanyName     *string   `json:"companyName"`
	KycStatus       KycStatus `gorm:"type:varchar(20);default:'pending'" json:"kycStatus"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName specifies the table name for User model
func (User) TableName() string {
	return "users"
}

// UserIdentity carries the claims used to sync a user from a session
type UserIdentity struct {
	ID              string
	Email           *string
	FirstName       *string
	LastName        *string
	ProfileImageURL *string
	CompanyName     *string
}
