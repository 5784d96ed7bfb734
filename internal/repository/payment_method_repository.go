package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"bistro/internal/model"
)

// PaymentMethodRepository defines payment method persistence operations.
type PaymentMethodRepository interface {
	Create(ctx context.Context, pm *model.PaymentMethod) error
	Update(ctx context.Context, pm *model.PaymentMethod) error
	Delete(ctx context.Context, id uint) error
	FindByID(ctx context.Context, id uint) (*model.PaymentMethod, error)
	ListByUser(ctx context.Context, userID uint, includeTemporary bool) ([]model.PaymentMethod, error)
	ClearDefault(ctx context.Context, userID uint, exceptID uint) error
	DeleteTemporaryBefore(ctx context.Context, cutoff time.Time) (int64, error)
	// Transaction methods
	WithTransaction(ctx context.Context, fn func(ctx context.Context, repo PaymentMethodRepository) error) error
}

type paymentMethodRepository struct {
	db *gorm.DB
}

// NewPaymentMethodRepository creates a new payment method repository.
func NewPaymentMethodRepository(db *gorm.DB) PaymentMethodRepository {
	return &paymentMethodRepository{db: db}
}

func (r *paymentMethodRepository) Create(ctx context.Context, pm *model.PaymentMethod) error {
	return r.db.WithContext(ctx).Create(pm).Error
}

func (r *paymentMethodRepository) Update(ctx context.Context, pm *model.PaymentMethod) error {
	return r.db.WithContext(ctx).Save(pm).Error
}

func (r *paymentMethodRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&model.PaymentMethod{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *paymentMethodRepository) FindByID(ctx context.Context, id uint) (*model.PaymentMethod, error) {
	var pm model.PaymentMethod
	if err := r.db.WithContext(ctx).First(&pm, id).Error; err != nil {
		return nil, err
	}
	return &pm, nil
}

func (r *paymentMethodRepository) ListByUser(ctx context.Context, userID uint, includeTemporary bool) ([]model.PaymentMethod, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if !includeTemporary {
		q = q.Where("temporary = ?", false)
	}
	var methods []model.PaymentMethod
	if err := q.Order("is_default DESC, created_at DESC").Find(&methods).Error; err != nil {
		return nil, err
	}
	return methods, nil
}

// ClearDefault unsets the default flag on every method of the user except exceptID.
func (r *paymentMethodRepository) ClearDefault(ctx context.Context, userID uint, exceptID uint) error {
	return r.db.WithContext(ctx).Model(&model.PaymentMethod{}).
		Where("user_id = ? AND id <> ? AND is_default = ?", userID, exceptID, true).
		Update("is_default", false).Error
}

// DeleteTemporaryBefore purges temporary payment methods created before cutoff.
func (r *paymentMethodRepository) DeleteTemporaryBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("temporary = ? AND created_at < ?", true, cutoff).
		Delete(&model.PaymentMethod{})
	return res.RowsAffected, res.Error
}

// WithTransaction executes a function within a database transaction.
func (r *paymentMethodRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context, repo PaymentMethodRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := &paymentMethodRepository{db: tx}
		return fn(ctx, txRepo)
	})
}
