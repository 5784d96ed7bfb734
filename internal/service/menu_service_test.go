package service

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"bistro/internal/cache"
	"bistro/internal/errors"
	"bistro/internal/model"
	"bistro/internal/repository"
)

func newMenuFixture(t *testing.T, allowSeed bool) (MenuService, *miniredis.Miniredis, *repositoryHandles) {
	gdb := newTestDB(t)
	mr := miniredis.RunT(t)
	h := &repositoryHandles{
		menu:   repository.NewMenuRepository(gdb),
		orders: repository.NewOrderRepository(gdb),
		users:  repository.NewUserRepository(gdb),
	}
	svc := NewMenuService(h.menu, cache.New(mr.Addr(), "", 0), zap.NewNop(), allowSeed)
	return svc, mr, h
}

type repositoryHandles struct {
	menu   repository.MenuRepository
	orders repository.OrderRepository
	users  repository.UserRepository
}

func TestMenuService_SeedAndGetMenu(t *testing.T) {
	svc, mr, _ := newMenuFixture(t, true)
	ctx := context.Background()

	res, err := svc.Seed(ctx)
	require.NoError(t, err)
	assert.Equal(t, 9, res.Categories)
	assert.Equal(t, 46, res.Items)

	menu, err := svc.GetMenu(ctx)
	require.NoError(t, err)
	assert.Len(t, menu.Categories, 9)
	assert.Len(t, menu.Items, 46)
	assert.Equal(t, "Starters", menu.Categories[0].Name)
	assert.True(t, mr.Exists(menuCacheKey), "menu is cached after a read")

	first := menu.Items[0]
	assert.NotEmpty(t, first.ID)
	assert.NotEmpty(t, first.Category)

	again, err := svc.Seed(ctx)
	require.NoError(t, err, "reseeding an unreferenced menu is allowed")
	assert.Equal(t, 46, again.Items)
	assert.False(t, mr.Exists(menuCacheKey), "seeding invalidates the cache")
}

func TestMenuService_CachedMenuIsServed(t *testing.T) {
	svc, mr, _ := newMenuFixture(t, true)
	ctx := context.Background()

	require.NoError(t, mr.Set(menuCacheKey, `{"categories":[{"id":"1","name":"Cached"}],"items":[]}`))

	menu, err := svc.GetMenu(ctx)
	require.NoError(t, err)
	require.Len(t, menu.Categories, 1)
	assert.Equal(t, "Cached", menu.Categories[0].Name)
}

func TestMenuService_ItemCRUD(t *testing.T) {
	svc, mr, _ := newMenuFixture(t, true)
	ctx := context.Background()

	cat, err := svc.CreateCategory(ctx, " Pizza ")
	require.NoError(t, err)
	assert.Equal(t, "Pizza", cat.Name)

	_, err = svc.CreateCategory(ctx, "Pizza")
	assert.ErrorIs(t, err, errors.ErrConflict)

	_, err = svc.GetMenu(ctx)
	require.NoError(t, err)
	require.True(t, mr.Exists(menuCacheKey))

	item, err := svc.CreateItem(ctx, MenuItemInput{Name: "Margherita", Price: decimal.RequireFromString("9.5"), CategoryID: cat.ID})
	require.NoError(t, err)
	assert.False(t, mr.Exists(menuCacheKey), "writes invalidate the cache")

	_, err = svc.CreateItem(ctx, MenuItemInput{Name: "Ghost", Price: decimal.NewFromInt(1), CategoryID: 999})
	assert.ErrorIs(t, err, errors.ErrInvalidRequest)

	_, err = svc.CreateItem(ctx, MenuItemInput{Name: "Free money", Price: decimal.NewFromInt(-1), CategoryID: cat.ID})
	assert.ErrorIs(t, err, errors.ErrInvalidRequest)

	updated, err := svc.UpdateItem(ctx, item.ID, MenuItemInput{Name: "Margherita XL", Price: decimal.RequireFromString("12.00"), CategoryID: cat.ID})
	require.NoError(t, err)
	assert.Equal(t, "Margherita XL", updated.Name)

	got, err := svc.GetItem(ctx, item.ID)
	require.NoError(t, err)
	assert.True(t, got.Price.Equal(decimal.RequireFromString("12.00")))

	require.NoError(t, svc.DeleteItem(ctx, item.ID))
	_, err = svc.GetItem(ctx, item.ID)
	assert.ErrorIs(t, err, errors.ErrNotFound)
	assert.ErrorIs(t, svc.DeleteItem(ctx, item.ID), errors.ErrNotFound)
}

func TestMenuService_ReferencedItemsAreProtected(t *testing.T) {
	svc, _, h := newMenuFixture(t, true)
	ctx := context.Background()

	_, err := svc.Seed(ctx)
	require.NoError(t, err)
	items, err := h.menu.ListItems(ctx)
	require.NoError(t, err)

	user := &model.User{Name: "U", Email: "u@example.com", Role: model.RoleUser}
	require.NoError(t, h.users.Create(ctx, user))
	require.NoError(t, h.orders.Create(ctx, &model.Order{
		UserID: user.ID,
		Status: model.OrderStatusPending,
		Items:  []model.OrderItem{{MenuItemID: items[0].ID, Quantity: 1, UnitPrice: items[0].Price}},
	}))

	assert.ErrorIs(t, svc.DeleteItem(ctx, items[0].ID), errors.ErrConflict)
	assert.ErrorIs(t, svc.DeleteCategory(ctx, items[0].CategoryID), errors.ErrConflict)
	_, err = svc.Seed(ctx)
	assert.ErrorIs(t, err, errors.ErrConflict)
}

func TestMenuService_SeedDisabled(t *testing.T) {
	svc, _, _ := newMenuFixture(t, false)

	_, err := svc.Seed(context.Background())
	assert.ErrorIs(t, err, errors.ErrForbidden)
}

func TestSeedCatalogue(t *testing.T) {
	cats := SeedCatalogue()
	require.Len(t, cats, 9)
	names := map[string]bool{}
	for _, c := range cats {
		assert.NotEmpty(t, c.Items, c.Name)
		assert.False(t, names[c.Name], "duplicate category %s", c.Name)
		names[c.Name] = true
		for _, it := range c.Items {
			assert.True(t, it.Price.IsPositive(), it.Name)
		}
	}
}
