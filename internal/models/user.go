package models

import "gorm.io/gorm"

// Roles a user account can hold.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// ShippingAddress is copied onto an order at creation time, so orders keep
// the address the user had when they checked out.
type ShippingAddress struct {
	FullName      string `json:"full_name" validate:"required,min=3,max=100"`
	StreetAddress string `json:"street_address" validate:"required,min=3,max=200"`
	City          string `json:"city" validate:"required,min=2,max=100"`
	PostalCode    string `json:"postal_code" validate:"required,min=2,max=20"`
	Country       string `json:"country" validate:"required,min=2,max=100"`
}

// User represents a customer or admin of the store.
type User struct {
	ID            string           `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Name          string           `json:"name" validate:"required,min=3,max=100"`
	Email         string           `json:"email" gorm:"uniqueIndex;type:varchar(255)" validate:"required,email"`
	Password      string           `gorm:"type:varchar(255)" validate:"required,min=6"` // No json tag for security
	Role          string           `json:"role" gorm:"type:varchar(20);default:user" validate:"omitempty,oneof=user admin"`
	Address       *ShippingAddress `json:"address,omitempty" gorm:"serializer:json"`
	PaymentMethod string           `json:"payment_method" gorm:"type:varchar(40)"`
	gorm.Model    // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}
