package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"bistro/internal/cache"
	"bistro/internal/errors"
	"bistro/internal/model"
	"bistro/internal/repository"
)

const (
	menuCacheKey = "menu:all"
	menuCacheTTL = 5 * time.Minute
)

// MenuCategoryView is a category as served to clients. IDs are strings.
type MenuCategoryView struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// MenuItemView is an item as served to clients. IDs are strings.
type MenuItemView struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
}

// MenuView is the full public menu.
type MenuView struct {
	Categories []MenuCategoryView `json:"categories"`
	Items      []MenuItemView     `json:"items"`
}

// MenuItemInput is the writable part of a menu item.
type MenuItemInput struct {
	Name        string
	Description string
	Price       decimal.Decimal
	CategoryID  uint
}

// SeedResult reports what a menu seed inserted.
type SeedResult struct {
	Categories int `json:"categories"`
	Items      int `json:"items"`
}

// MenuService exposes menu browsing and administration.
type MenuService interface {
	GetMenu(ctx context.Context) (*MenuView, error)
	ListCategories(ctx context.Context) ([]model.MenuCategory, error)
	GetItem(ctx context.Context, id uint) (*model.MenuItem, error)
	CreateItem(ctx context.Context, in MenuItemInput) (*model.MenuItem, error)
	UpdateItem(ctx context.Context, id uint, in MenuItemInput) (*model.MenuItem, error)
	DeleteItem(ctx context.Context, id uint) error
	CreateCategory(ctx context.Context, name string) (*model.MenuCategory, error)
	UpdateCategory(ctx context.Context, id uint, name string) (*model.MenuCategory, error)
	DeleteCategory(ctx context.Context, id uint) error
	Seed(ctx context.Context) (*SeedResult, error)
}

type menuService struct {
	repo      repository.MenuRepository
	cache     *cache.Client
	log       *zap.Logger
	allowSeed bool
}

// NewMenuService builds a MenuService with repository and cache.
func NewMenuService(repo repository.MenuRepository, cache *cache.Client, log *zap.Logger, allowSeed bool) MenuService {
	return &menuService{repo: repo, cache: cache, log: log, allowSeed: allowSeed}
}

func (s *menuService) GetMenu(ctx context.Context) (*MenuView, error) {
	if data, _ := s.cache.Get(ctx, menuCacheKey); data != nil {
		var cached MenuView
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
	}

	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	items, err := s.repo.ListItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}

	view := &MenuView{
		Categories: make([]MenuCategoryView, 0, len(categories)),
		Items:      make([]MenuItemView, 0, len(items)),
	}
	for _, c := range categories {
		view.Categories = append(view.Categories, MenuCategoryView{ID: formatID(c.ID), Name: c.Name})
	}
	for _, it := range items {
		view.Items = append(view.Items, MenuItemView{
			ID:          formatID(it.ID),
			Name:        it.Name,
			Description: it.Description,
			Price:       it.Price,
			Category:    formatID(it.CategoryID),
		})
	}

	if payload, err := json.Marshal(view); err == nil {
		_ = s.cache.Set(ctx, menuCacheKey, payload, menuCacheTTL)
	}
	return view, nil
}

func (s *menuService) ListCategories(ctx context.Context) ([]model.MenuCategory, error) {
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

func (s *menuService) GetItem(ctx context.Context, id uint) (*model.MenuItem, error) {
	item, err := s.repo.FindItemByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "menu item")
	}
	return item, nil
}

func (s *menuService) CreateItem(ctx context.Context, in MenuItemInput) (*model.MenuItem, error) {
	if err := s.checkItemInput(ctx, &in); err != nil {
		return nil, err
	}
	item := &model.MenuItem{
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		CategoryID:  in.CategoryID,
	}
	if err := s.repo.CreateItem(ctx, item); err != nil {
		return nil, fmt.Errorf("create menu item: %w", err)
	}
	s.invalidate(ctx)
	return item, nil
}

func (s *menuService) UpdateItem(ctx context.Context, id uint, in MenuItemInput) (*model.MenuItem, error) {
	item, err := s.repo.FindItemByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "menu item")
	}
	if err := s.checkItemInput(ctx, &in); err != nil {
		return nil, err
	}
	item.Name = in.Name
	item.Description = in.Description
	item.Price = in.Price
	item.CategoryID = in.CategoryID
	item.Category = nil
	if err := s.repo.UpdateItem(ctx, item); err != nil {
		return nil, fmt.Errorf("update menu item: %w", err)
	}
	s.invalidate(ctx)
	return item, nil
}

// DeleteItem refuses to remove items that existing orders reference.
func (s *menuService) DeleteItem(ctx context.Context, id uint) error {
	refs, err := s.repo.CountItemReferences(ctx, id)
	if err != nil {
		return fmt.Errorf("count order references: %w", err)
	}
	if refs > 0 {
		return errors.Wrap(errors.ErrConflict, "menu item is referenced by %d order item(s)", refs)
	}
	if err := s.repo.DeleteItem(ctx, id); err != nil {
		return lookupErr(err, "menu item")
	}
	s.invalidate(ctx)
	return nil
}

func (s *menuService) CreateCategory(ctx context.Context, name string) (*model.MenuCategory, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.Wrap(errors.ErrInvalidRequest, "category name is required")
	}
	if err := s.ensureCategoryNameFree(ctx, name, 0); err != nil {
		return nil, err
	}
	category := &model.MenuCategory{Name: name}
	if err := s.repo.CreateCategory(ctx, category); err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	s.invalidate(ctx)
	return category, nil
}

func (s *menuService) UpdateCategory(ctx context.Context, id uint, name string) (*model.MenuCategory, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.Wrap(errors.ErrInvalidRequest, "category name is required")
	}
	category, err := s.repo.FindCategoryByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "category")
	}
	if err := s.ensureCategoryNameFree(ctx, name, id); err != nil {
		return nil, err
	}
	category.Name = name
	if err := s.repo.UpdateCategory(ctx, category); err != nil {
		return nil, fmt.Errorf("update category: %w", err)
	}
	s.invalidate(ctx)
	return category, nil
}

// DeleteCategory removes the category and its items unless orders reference them.
func (s *menuService) DeleteCategory(ctx context.Context, id uint) error {
	refs, err := s.repo.CountCategoryReferences(ctx, id)
	if err != nil {
		return fmt.Errorf("count order references: %w", err)
	}
	if refs > 0 {
		return errors.Wrap(errors.ErrConflict, "category items are referenced by %d order item(s)", refs)
	}
	if err := s.repo.DeleteCategory(ctx, id); err != nil {
		return lookupErr(err, "category")
	}
	s.invalidate(ctx)
	return nil
}

// Seed wipes the menu and inserts the default catalogue.
func (s *menuService) Seed(ctx context.Context) (*SeedResult, error) {
	if !s.allowSeed {
		return nil, errors.Wrap(errors.ErrForbidden, "menu seeding is disabled")
	}
	refs, err := s.repo.CountItemReferences(ctx)
	if err != nil {
		return nil, fmt.Errorf("count order references: %w", err)
	}
	if refs > 0 {
		return nil, errors.Wrap(errors.ErrConflict, "menu cannot be reseeded while orders reference it")
	}

	categories := SeedCatalogue()
	if err := s.repo.Replace(ctx, categories); err != nil {
		return nil, fmt.Errorf("seed menu: %w", err)
	}
	s.invalidate(ctx)

	res := &SeedResult{Categories: len(categories)}
	for _, c := range categories {
		res.Items += len(c.Items)
	}
	s.log.Info("menu seeded", zap.Int("categories", res.Categories), zap.Int("items", res.Items))
	return res, nil
}

func (s *menuService) checkItemInput(ctx context.Context, in *MenuItemInput) error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return errors.Wrap(errors.ErrInvalidRequest, "name is required")
	}
	if in.Price.IsNegative() {
		return errors.Wrap(errors.ErrInvalidRequest, "price must not be negative")
	}
	in.Price = in.Price.Round(2)
	if _, err := s.repo.FindCategoryByID(ctx, in.CategoryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.Wrap(errors.ErrInvalidRequest, "category %d does not exist", in.CategoryID)
		}
		return fmt.Errorf("find category: %w", err)
	}
	return nil
}

func (s *menuService) ensureCategoryNameFree(ctx context.Context, name string, selfID uint) error {
	existing, err := s.repo.FindCategoryByName(ctx, name)
	if err == nil && existing.ID != selfID {
		return errors.Wrap(errors.ErrConflict, "category %q already exists", name)
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("find category: %w", err)
	}
	return nil
}

func (s *menuService) invalidate(ctx context.Context) {
	_ = s.cache.Delete(ctx, menuCacheKey)
}

func formatID(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
