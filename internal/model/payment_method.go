package model

import "time"

// PaymentMethodType distinguishes card and wallet methods.
type PaymentMethodType string

const (
	PaymentMethodCard   PaymentMethodType = "card"
	PaymentMethodPayPal PaymentMethodType = "paypal"
)

// PaymentMethod holds display-only payment info. The full card number is never stored.
type PaymentMethod struct {
	ID          uint              `json:"id" gorm:"primaryKey"`
	UserID      uint              `json:"userId" gorm:"not null;index"`
	Type        PaymentMethodType `json:"type" gorm:"size:20;not null"`
	CardNumber  string            `json:"cardNumber,omitempty" gorm:"size:19"` // masked, e.g. ****4242
	Last4       string            `json:"last4,omitempty" gorm:"size:4"`
	CardHolder  string            `json:"cardHolder,omitempty" gorm:"size:255"`
	Expiry      string            `json:"expiry,omitempty" gorm:"size:5"` // MM/YY
	Brand       string            `json:"brand,omitempty" gorm:"size:30"`
	PayPalEmail string            `json:"paypalEmail,omitempty" gorm:"column:paypal_email;size:255"`
	IsDefault   bool              `json:"isDefault" gorm:"not null;default:false"`
	Temporary   bool              `json:"temporary" gorm:"not null;default:false;index"`
	CreatedAt   time.Time         `json:"createdAt" gorm:"index"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}
