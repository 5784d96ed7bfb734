package events

import (
	"time"

	"github.com/shopspring/decimal"

	"bistro/internal/model"
)

// OrderEvent is the payload for order routing keys.
type OrderEvent struct {
	OrderID    uint              `json:"orderId"`
	UserID     uint              `json:"userId"`
	Status     model.OrderStatus `json:"status"`
	PrevStatus model.OrderStatus `json:"previousStatus,omitempty"`
	Total      decimal.Decimal   `json:"total"`
	ItemCount  int               `json:"itemCount"`
	OccurredAt time.Time         `json:"occurredAt"`
}

// NewOrderEvent snapshots order for publishing.
func NewOrderEvent(order *model.Order, prev model.OrderStatus) OrderEvent {
	count := 0
	for _, it := range order.Items {
		count += it.Quantity
	}
	return OrderEvent{
		OrderID:    order.ID,
		UserID:     order.UserID,
		Status:     order.Status,
		PrevStatus: prev,
		Total:      order.Total,
		ItemCount:  count,
		OccurredAt: time.Now().UTC(),
	}
}
