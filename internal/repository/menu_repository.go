package repository

import (
	"context"

	"gorm.io/gorm"

	"bistro/internal/model"
)

// MenuRepository defines menu category and item persistence operations.
type MenuRepository interface {
	ListCategories(ctx context.Context) ([]model.MenuCategory, error)
	FindCategoryByID(ctx context.Context, id uint) (*model.MenuCategory, error)
	FindCategoryByName(ctx context.Context, name string) (*model.MenuCategory, error)
	CreateCategory(ctx context.Context, category *model.MenuCategory) error
	UpdateCategory(ctx context.Context, category *model.MenuCategory) error
	DeleteCategory(ctx context.Context, id uint) error

	ListItems(ctx context.Context) ([]model.MenuItem, error)
	FindItemByID(ctx context.Context, id uint) (*model.MenuItem, error)
	FindItemsByIDs(ctx context.Context, ids []uint) ([]model.MenuItem, error)
	CreateItem(ctx context.Context, item *model.MenuItem) error
	UpdateItem(ctx context.Context, item *model.MenuItem) error
	DeleteItem(ctx context.Context, id uint) error
	CountItemReferences(ctx context.Context, ids ...uint) (int64, error)
	CountCategoryReferences(ctx context.Context, categoryID uint) (int64, error)

	// Replace wipes every category and item and inserts categories with their items.
	Replace(ctx context.Context, categories []model.MenuCategory) error
}

type menuRepository struct {
	db *gorm.DB
}

// NewMenuRepository creates a new menu repository.
func NewMenuRepository(db *gorm.DB) MenuRepository {
	return &menuRepository{db: db}
}

func (r *menuRepository) ListCategories(ctx context.Context) ([]model.MenuCategory, error) {
	var categories []model.MenuCategory
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *menuRepository) FindCategoryByID(ctx context.Context, id uint) (*model.MenuCategory, error) {
	var category model.MenuCategory
	if err := r.db.WithContext(ctx).First(&category, id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *menuRepository) FindCategoryByName(ctx context.Context, name string) (*model.MenuCategory, error) {
	var category model.MenuCategory
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *menuRepository) CreateCategory(ctx context.Context, category *model.MenuCategory) error {
	return r.db.WithContext(ctx).Create(category).Error
}

func (r *menuRepository) UpdateCategory(ctx context.Context, category *model.MenuCategory) error {
	return r.db.WithContext(ctx).Model(category).Update("name", category.Name).Error
}

// DeleteCategory removes the category and its items.
func (r *menuRepository) DeleteCategory(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("category_id = ?", id).Delete(&model.MenuItem{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.MenuCategory{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// ListItems returns every item with its category, ordered by category then name.
func (r *menuRepository) ListItems(ctx context.Context) ([]model.MenuItem, error) {
	var items []model.MenuItem
	if err := r.db.WithContext(ctx).Preload("Category").
		Order("category_id ASC, name ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *menuRepository) FindItemByID(ctx context.Context, id uint) (*model.MenuItem, error) {
	var item model.MenuItem
	if err := r.db.WithContext(ctx).Preload("Category").First(&item, id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// FindItemsByIDs returns the subset of ids that exist. Order is unspecified.
func (r *menuRepository) FindItemsByIDs(ctx context.Context, ids []uint) ([]model.MenuItem, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var items []model.MenuItem
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *menuRepository) CreateItem(ctx context.Context, item *model.MenuItem) error {
	return r.db.WithContext(ctx).Omit("Category").Create(item).Error
}

func (r *menuRepository) UpdateItem(ctx context.Context, item *model.MenuItem) error {
	return r.db.WithContext(ctx).Omit("Category").Save(item).Error
}

func (r *menuRepository) DeleteItem(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&model.MenuItem{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CountItemReferences counts order items that point at any of ids.
// With no ids it counts every order item.
func (r *menuRepository) CountItemReferences(ctx context.Context, ids ...uint) (int64, error) {
	q := r.db.WithContext(ctx).Model(&model.OrderItem{})
	if len(ids) > 0 {
		q = q.Where("menu_item_id IN ?", ids)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

// CountCategoryReferences counts order items pointing at items of the category.
func (r *menuRepository) CountCategoryReferences(ctx context.Context, categoryID uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.OrderItem{}).
		Joins("JOIN menu_items ON menu_items.id = order_items.menu_item_id").
		Where("menu_items.category_id = ?", categoryID).
		Count(&n).Error
	return n, err
}

func (r *menuRepository) Replace(ctx context.Context, categories []model.MenuCategory) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&model.MenuItem{}).Error; err != nil {
			return err
		}
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&model.MenuCategory{}).Error; err != nil {
			return err
		}
		for i := range categories {
			if err := tx.Create(&categories[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
