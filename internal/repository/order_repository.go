package repository

import (
	"context"

	"gorm.io/gorm"

	"bistro/internal/model"
)

// OrderListLimit caps per-user order listings.
const OrderListLimit = 50

// OrderRepository defines order persistence operations.
type OrderRepository interface {
	// Create inserts the order header and all of its Items atomically.
	Create(ctx context.Context, order *model.Order) error
	FindByID(ctx context.Context, id uint) (*model.Order, error)
	ListByUser(ctx context.Context, userID uint) ([]model.Order, error)
	ListAll(ctx context.Context) ([]model.Order, error)
	// UpdateStatus sets the status and records the change in one transaction.
	// It returns the reloaded order and the status it replaced.
	UpdateStatus(ctx context.Context, id uint, status model.OrderStatus, changedBy uint) (*model.Order, model.OrderStatus, error)
	// Delete removes the order with its items and status history.
	Delete(ctx context.Context, id uint) error
	StatusHistory(ctx context.Context, id uint) ([]model.OrderStatusChange, error)
}

type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository creates a new order repository.
func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(ctx context.Context, order *model.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		items := order.Items
		order.Items = nil
		if err := tx.Omit("User", "Address", "StatusChanges").Create(order).Error; err != nil {
			order.Items = items
			return err
		}
		for i := range items {
			items[i].OrderID = order.ID
		}
		order.Items = items
		if len(items) == 0 {
			return nil
		}
		return tx.Omit("MenuItem").Create(&order.Items).Error
	})
}

func (r *orderRepository) FindByID(ctx context.Context, id uint) (*model.Order, error) {
	var order model.Order
	if err := r.withDetails(r.db.WithContext(ctx)).Preload("User").
		First(&order, id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// ListByUser returns the user's newest orders.
func (r *orderRepository) ListByUser(ctx context.Context, userID uint) ([]model.Order, error) {
	var orders []model.Order
	if err := r.withDetails(r.db.WithContext(ctx)).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(OrderListLimit).
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// ListAll returns every order across all users with their owners, newest first.
func (r *orderRepository) ListAll(ctx context.Context) ([]model.Order, error) {
	var orders []model.Order
	if err := r.withDetails(r.db.WithContext(ctx)).Preload("User").
		Order("created_at DESC, id DESC").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *orderRepository) UpdateStatus(ctx context.Context, id uint, status model.OrderStatus, changedBy uint) (*model.Order, model.OrderStatus, error) {
	var prev model.OrderStatus
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current model.Order
		if err := tx.Select("id", "status").First(&current, id).Error; err != nil {
			return err
		}
		prev = current.Status
		if err := tx.Model(&model.Order{}).Where("id = ?", id).
			Update("status", status).Error; err != nil {
			return err
		}
		return tx.Create(&model.OrderStatusChange{
			OrderID:    id,
			FromStatus: current.Status,
			ToStatus:   status,
			ChangedBy:  changedBy,
		}).Error
	})
	if err != nil {
		return nil, "", err
	}
	order, err := r.FindByID(ctx, id)
	return order, prev, err
}

func (r *orderRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", id).Delete(&model.OrderStatusChange{}).Error; err != nil {
			return err
		}
		if err := tx.Where("order_id = ?", id).Delete(&model.OrderItem{}).Error; err != nil {
			return err
		}
		if err := tx.Where("order_id = ?", id).Model(&model.Payment{}).
			Update("order_id", nil).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.Order{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *orderRepository) StatusHistory(ctx context.Context, id uint) ([]model.OrderStatusChange, error) {
	var changes []model.OrderStatusChange
	if err := r.db.WithContext(ctx).Where("order_id = ?", id).
		Order("id ASC").Find(&changes).Error; err != nil {
		return nil, err
	}
	return changes, nil
}

func (r *orderRepository) withDetails(q *gorm.DB) *gorm.DB {
	return q.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("order_items.id ASC")
	}).Preload("Items.MenuItem").Preload("Address")
}
