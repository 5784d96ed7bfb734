package model

import "time"

// Address is a delivery/contact address owned by a user.
// Temporary addresses are checkout-time entries not saved to the profile.
type Address struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	UserID     uint      `json:"userId" gorm:"not null;index"`
	Label      string    `json:"label" gorm:"size:100"`
	Street     string    `json:"street" gorm:"size:255;not null"`
	City       string    `json:"city" gorm:"size:100;not null"`
	PostalCode string    `json:"postalCode" gorm:"size:20"`
	Country    string    `json:"country" gorm:"size:100"`
	Phone      string    `json:"phone" gorm:"size:30"`
	Temporary  bool      `json:"temporary" gorm:"not null;default:false;index"`
	CreatedAt  time.Time `json:"createdAt" gorm:"index"`
	UpdatedAt  time.Time `json:"updatedAt"`
}
