package events

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"bistro/internal/model"
)

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	assert.NoError(t, p.Publish(context.Background(), OrderCreated, map[string]int{"id": 1}))
	assert.NoError(t, p.Close())
}

func TestNewOrderEvent(t *testing.T) {
	order := &model.Order{
		ID:     4,
		UserID: 2,
		Status: model.OrderStatusReady,
		Total:  decimal.RequireFromString("30.97"),
		Items: []model.OrderItem{
			{Quantity: 2},
			{Quantity: 1},
		},
	}

	ev := NewOrderEvent(order, model.OrderStatusPreparing)
	assert.Equal(t, uint(4), ev.OrderID)
	assert.Equal(t, uint(2), ev.UserID)
	assert.Equal(t, model.OrderStatusReady, ev.Status)
	assert.Equal(t, model.OrderStatusPreparing, ev.PrevStatus)
	assert.Equal(t, 3, ev.ItemCount)
	assert.True(t, ev.Total.Equal(decimal.RequireFromString("30.97")))
	assert.False(t, ev.OccurredAt.IsZero())
}
