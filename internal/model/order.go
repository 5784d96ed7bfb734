package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusPreparing OrderStatus = "preparing"
	OrderStatusReady     OrderStatus = "ready"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// AllowedStatuses lists every status an order may hold. Any member is
// reachable from any other; there is no transition ordering.
var AllowedStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusPreparing,
	OrderStatusReady,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

// Valid reports whether s is one of AllowedStatuses.
func (s OrderStatus) Valid() bool {
	for _, allowed := range AllowedStatuses {
		if s == allowed {
			return true
		}
	}
	return false
}

// AllowedStatusStrings returns AllowedStatuses as plain strings.
func AllowedStatusStrings() []string {
	out := make([]string, len(AllowedStatuses))
	for i, s := range AllowedStatuses {
		out[i] = string(s)
	}
	return out
}

const (
	// MinItemQuantity and MaxItemQuantity bound OrderItem.Quantity.
	MinItemQuantity = 1
	MaxItemQuantity = 20
)

// Order is the order aggregate header. Items are created with it and never mutated.
type Order struct {
	ID        uint            `json:"id" gorm:"primaryKey"`
	UserID    uint            `json:"userId" gorm:"not null;index"`
	AddressID *uint           `json:"addressId" gorm:"index"`
	Status    OrderStatus     `json:"status" gorm:"size:20;not null;default:'pending';index"`
	Total     decimal.Decimal `json:"total" gorm:"type:decimal(10,2);not null;default:0"`
	CreatedAt time.Time       `json:"createdAt" gorm:"index"`
	UpdatedAt time.Time       `json:"updatedAt"`

	User          *User               `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Address       *Address            `json:"address,omitempty" gorm:"foreignKey:AddressID;constraint:OnDelete:SET NULL"`
	Items         []OrderItem         `json:"items" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	StatusChanges []OrderStatusChange `json:"-" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

// OrderItem is one line of an order with the unit price captured at creation.
type OrderItem struct {
	ID         uint            `json:"id" gorm:"primaryKey"`
	OrderID    uint            `json:"orderId" gorm:"not null;index"`
	MenuItemID uint            `json:"menuItemId" gorm:"not null;index"`
	Quantity   int             `json:"quantity" gorm:"not null"`
	UnitPrice  decimal.Decimal `json:"unitPrice" gorm:"type:decimal(10,2);not null"`

	MenuItem *MenuItem `json:"menuItem,omitempty" gorm:"foreignKey:MenuItemID;constraint:OnDelete:RESTRICT"`
}

// OrderStatusChange is an audit row written with every status update.
type OrderStatusChange struct {
	ID         uint        `json:"id" gorm:"primaryKey"`
	OrderID    uint        `json:"orderId" gorm:"not null;index"`
	FromStatus OrderStatus `json:"fromStatus" gorm:"size:20;not null"`
	ToStatus   OrderStatus `json:"toStatus" gorm:"size:20;not null"`
	ChangedBy  uint        `json:"changedBy"`
	CreatedAt  time.Time   `json:"createdAt"`
}
