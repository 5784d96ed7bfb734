package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"bistro/internal/model"
)

// AddressRepository defines address persistence operations.
type AddressRepository interface {
	Create(ctx context.Context, address *model.Address) error
	Update(ctx context.Context, address *model.Address) error
	Delete(ctx context.Context, id uint) error
	FindByID(ctx context.Context, id uint) (*model.Address, error)
	ListByUser(ctx context.Context, userID uint, includeTemporary bool) ([]model.Address, error)
	DeleteTemporaryBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type addressRepository struct {
	db *gorm.DB
}

// NewAddressRepository creates a new address repository.
func NewAddressRepository(db *gorm.DB) AddressRepository {
	return &addressRepository{db: db}
}

func (r *addressRepository) Create(ctx context.Context, address *model.Address) error {
	return r.db.WithContext(ctx).Create(address).Error
}

func (r *addressRepository) Update(ctx context.Context, address *model.Address) error {
	return r.db.WithContext(ctx).Save(address).Error
}

// Delete removes the address. Orders that referenced it keep a NULL address.
func (r *addressRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Order{}).Where("address_id = ?", id).
			Update("address_id", nil).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.Address{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *addressRepository) FindByID(ctx context.Context, id uint) (*model.Address, error) {
	var address model.Address
	if err := r.db.WithContext(ctx).First(&address, id).Error; err != nil {
		return nil, err
	}
	return &address, nil
}

func (r *addressRepository) ListByUser(ctx context.Context, userID uint, includeTemporary bool) ([]model.Address, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if !includeTemporary {
		q = q.Where("temporary = ?", false)
	}
	var addresses []model.Address
	if err := q.Order("created_at DESC").Find(&addresses).Error; err != nil {
		return nil, err
	}
	return addresses, nil
}

// DeleteTemporaryBefore purges temporary addresses created before cutoff.
func (r *addressRepository) DeleteTemporaryBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	var deleted int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		stale := tx.Model(&model.Address{}).Select("id").
			Where("temporary = ? AND created_at < ?", true, cutoff)
		if err := tx.Model(&model.Order{}).Where("address_id IN (?)", stale).
			Update("address_id", nil).Error; err != nil {
			return err
		}
		res := tx.Where("temporary = ? AND created_at < ?", true, cutoff).Delete(&model.Address{})
		deleted = res.RowsAffected
		return res.Error
	})
	return deleted, err
}
