package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus represents the outcome of forwarding a payment intent to the provider.
type PaymentStatus string

const (
	PaymentStatusCreated PaymentStatus = "created"
	PaymentStatusFailed  PaymentStatus = "failed"
)

// Payment records one payment-intent request forwarded to the payment provider.
// Settlement happens at the provider.
type Payment struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	UserID      uint            `json:"userId" gorm:"not null;index"`
	OrderID     *uint           `json:"orderId" gorm:"index"`
	Provider    string          `json:"provider" gorm:"size:20;not null"`
	ProviderRef string          `json:"providerRef" gorm:"size:255;index"`
	Amount      decimal.Decimal `json:"amount" gorm:"type:decimal(10,2);not null"`
	Currency    string          `json:"currency" gorm:"size:3;not null"`
	Status      PaymentStatus   `json:"status" gorm:"size:20;not null;index"`
	Error       string          `json:"error,omitempty" gorm:"type:text"`
	CreatedAt   time.Time       `json:"createdAt"`
}
