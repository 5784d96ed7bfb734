package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"bistro/internal/db"
	"bistro/internal/model"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := db.NewSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return gdb
}

func seedUser(t *testing.T, gdb *gorm.DB, email string) *model.User {
	t.Helper()
	u := &model.User{Name: "Test", Email: email, Role: model.RoleUser}
	require.NoError(t, NewUserRepository(gdb).Create(context.Background(), u))
	return u
}

func seedMenu(t *testing.T, gdb *gorm.DB) []model.MenuItem {
	t.Helper()
	repo := NewMenuRepository(gdb)
	require.NoError(t, repo.Replace(context.Background(), []model.MenuCategory{{
		Name: "Burgers",
		Items: []model.MenuItem{
			{Name: "Classic Burger", Price: decimal.RequireFromString("14.99")},
			{Name: "Veggie Burger", Price: decimal.RequireFromString("13.99")},
		},
	}}))
	items, err := repo.ListItems(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)
	return items
}

func TestOrderRepository_CreateAndFind(t *testing.T) {
	gdb := newTestDB(t)
	ctx := context.Background()
	user := seedUser(t, gdb, "a@example.com")
	items := seedMenu(t, gdb)
	repo := NewOrderRepository(gdb)

	order := &model.Order{
		UserID: user.ID,
		Status: model.OrderStatusPending,
		Total:  decimal.RequireFromString("43.97"),
		Items: []model.OrderItem{
			{MenuItemID: items[0].ID, Quantity: 2, UnitPrice: items[0].Price},
			{MenuItemID: items[1].ID, Quantity: 1, UnitPrice: items[1].Price},
		},
	}
	require.NoError(t, repo.Create(ctx, order))
	require.NotZero(t, order.ID)

	found, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, found.Items, 2)
	assert.Equal(t, 2, found.Items[0].Quantity)
	require.NotNil(t, found.Items[0].MenuItem)
	assert.Equal(t, items[0].Name, found.Items[0].MenuItem.Name)
	require.NotNil(t, found.User)
	assert.Equal(t, user.Email, found.User.Email)
}

func TestOrderRepository_CreateIsAtomic(t *testing.T) {
	gdb := newTestDB(t)
	ctx := context.Background()
	user := seedUser(t, gdb, "a@example.com")
	items := seedMenu(t, gdb)

	boom := errors.New("order items insert failed")
	require.NoError(t, gdb.Callback().Create().Before("gorm:create").Register("test:fail_order_items", func(tx *gorm.DB) {
		if tx.Statement.Table == "order_items" {
			_ = tx.AddError(boom)
		}
	}))

	err := NewOrderRepository(gdb).Create(ctx, &model.Order{
		UserID: user.ID,
		Status: model.OrderStatusPending,
		Items:  []model.OrderItem{{MenuItemID: items[0].ID, Quantity: 1, UnitPrice: items[0].Price}},
	})
	require.ErrorIs(t, err, boom)

	var orders, orderItems int64
	require.NoError(t, gdb.Model(&model.Order{}).Count(&orders).Error)
	require.NoError(t, gdb.Model(&model.OrderItem{}).Count(&orderItems).Error)
	assert.Zero(t, orders)
	assert.Zero(t, orderItems)
}

func TestOrderRepository_ListByUserNewestFirstAndCapped(t *testing.T) {
	gdb := newTestDB(t)
	ctx := context.Background()
	user := seedUser(t, gdb, "a@example.com")
	other := seedUser(t, gdb, "b@example.com")
	items := seedMenu(t, gdb)
	repo := NewOrderRepository(gdb)

	base := time.Now().Add(-time.Hour)
	for i := 0; i < OrderListLimit+5; i++ {
		require.NoError(t, repo.Create(ctx, &model.Order{
			UserID:    user.ID,
			Status:    model.OrderStatusPending,
			CreatedAt: base.Add(time.Duration(i) * time.Second),
			Items:     []model.OrderItem{{MenuItemID: items[0].ID, Quantity: 1, UnitPrice: items[0].Price}},
		}))
	}
	require.NoError(t, repo.Create(ctx, &model.Order{UserID: other.ID, Status: model.OrderStatusPending}))

	orders, err := repo.ListByUser(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, orders, OrderListLimit)
	for i := 1; i < len(orders); i++ {
		assert.False(t, orders[i].CreatedAt.After(orders[i-1].CreatedAt))
	}
	for _, o := range orders {
		assert.Equal(t, user.ID, o.UserID)
		assert.Len(t, o.Items, 1)
	}
}

func TestOrderRepository_ListAllIsUnrestricted(t *testing.T) {
	gdb := newTestDB(t)
	ctx := context.Background()
	users := []*model.User{seedUser(t, gdb, "a@example.com"), seedUser(t, gdb, "b@example.com")}
	items := seedMenu(t, gdb)
	repo := NewOrderRepository(gdb)

	total := OrderListLimit + 10
	base := time.Now().Add(-time.Hour)
	for i := 0; i < total; i++ {
		require.NoError(t, repo.Create(ctx, &model.Order{
			UserID:    users[i%2].ID,
			Status:    model.OrderStatusPending,
			CreatedAt: base.Add(time.Duration(i) * time.Second),
			Items:     []model.OrderItem{{MenuItemID: items[1].ID, Quantity: 1, UnitPrice: items[1].Price}},
		}))
	}

	orders, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, orders, total)
	for i := 1; i < len(orders); i++ {
		assert.False(t, orders[i].CreatedAt.After(orders[i-1].CreatedAt))
	}
	owners := map[uint]int{}
	for _, o := range orders {
		require.NotNil(t, o.User)
		owners[o.User.ID]++
	}
	assert.Equal(t, total/2, owners[users[0].ID])
	assert.Equal(t, total/2, owners[users[1].ID])
}

func TestOrderRepository_UpdateStatusWritesHistory(t *testing.T) {
	gdb := newTestDB(t)
	ctx := context.Background()
	user := seedUser(t, gdb, "a@example.com")
	repo := NewOrderRepository(gdb)

	order := &model.Order{UserID: user.ID, Status: model.OrderStatusPending}
	require.NoError(t, repo.Create(ctx, order))

	updated, prev, err := repo.UpdateStatus(ctx, order.ID, model.OrderStatusConfirmed, 99)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusConfirmed, updated.Status)
	assert.Equal(t, model.OrderStatusPending, prev)

	history, err := repo.StatusHistory(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, model.OrderStatusPending, history[0].FromStatus)
	assert.Equal(t, model.OrderStatusConfirmed, history[0].ToStatus)
	assert.Equal(t, uint(99), history[0].ChangedBy)

	_, _, err = repo.UpdateStatus(ctx, 12345, model.OrderStatusReady, 1)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestOrderRepository_DeleteCascades(t *testing.T) {
	gdb := newTestDB(t)
	ctx := context.Background()
	user := seedUser(t, gdb, "a@example.com")
	items := seedMenu(t, gdb)
	repo := NewOrderRepository(gdb)

	order := &model.Order{
		UserID: user.ID,
		Status: model.OrderStatusPending,
		Items:  []model.OrderItem{{MenuItemID: items[0].ID, Quantity: 1, UnitPrice: items[0].Price}},
	}
	require.NoError(t, repo.Create(ctx, order))
	_, _, err := repo.UpdateStatus(ctx, order.ID, model.OrderStatusCancelled, user.ID)
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, order.ID))

	var n int64
	require.NoError(t, gdb.Model(&model.OrderItem{}).Where("order_id = ?", order.ID).Count(&n).Error)
	assert.Zero(t, n)
	require.NoError(t, gdb.Model(&model.OrderStatusChange{}).Where("order_id = ?", order.ID).Count(&n).Error)
	assert.Zero(t, n)

	assert.ErrorIs(t, repo.Delete(ctx, order.ID), gorm.ErrRecordNotFound)
}

func TestMenuRepository_FindItemsByIDsAndReferences(t *testing.T) {
	gdb := newTestDB(t)
	ctx := context.Background()
	user := seedUser(t, gdb, "a@example.com")
	items := seedMenu(t, gdb)
	repo := NewMenuRepository(gdb)

	found, err := repo.FindItemsByIDs(ctx, []uint{items[0].ID, 999})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, items[0].ID, found[0].ID)

	require.NoError(t, NewOrderRepository(gdb).Create(ctx, &model.Order{
		UserID: user.ID,
		Status: model.OrderStatusPending,
		Items:  []model.OrderItem{{MenuItemID: items[1].ID, Quantity: 1, UnitPrice: items[1].Price}},
	}))

	n, err := repo.CountItemReferences(ctx, items[0].ID)
	require.NoError(t, err)
	assert.Zero(t, n)
	n, err = repo.CountItemReferences(ctx, items[1].ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestMenuRepository_DeleteCategoryRemovesItems(t *testing.T) {
	gdb := newTestDB(t)
	ctx := context.Background()
	items := seedMenu(t, gdb)
	repo := NewMenuRepository(gdb)

	require.NoError(t, repo.DeleteCategory(ctx, items[0].CategoryID))
	left, err := repo.ListItems(ctx)
	require.NoError(t, err)
	assert.Empty(t, left)
	assert.ErrorIs(t, repo.DeleteCategory(ctx, items[0].CategoryID), gorm.ErrRecordNotFound)
}

func TestAddressRepository_ListAndPurge(t *testing.T) {
	gdb := newTestDB(t)
	ctx := context.Background()
	user := seedUser(t, gdb, "a@example.com")
	repo := NewAddressRepository(gdb)

	old := time.Now().AddDate(0, 0, -40)
	require.NoError(t, repo.Create(ctx, &model.Address{UserID: user.ID, Street: "1 Main", City: "X"}))
	require.NoError(t, repo.Create(ctx, &model.Address{UserID: user.ID, Street: "2 Temp", City: "X", Temporary: true, CreatedAt: old}))
	require.NoError(t, repo.Create(ctx, &model.Address{UserID: user.ID, Street: "3 Temp", City: "X", Temporary: true}))

	saved, err := repo.ListByUser(ctx, user.ID, false)
	require.NoError(t, err)
	assert.Len(t, saved, 1)

	all, err := repo.ListByUser(ctx, user.ID, true)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	n, err := repo.DeleteTemporaryBefore(ctx, time.Now().AddDate(0, 0, -30))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	all, err = repo.ListByUser(ctx, user.ID, true)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestPaymentMethodRepository_ClearDefault(t *testing.T) {
	gdb := newTestDB(t)
	ctx := context.Background()
	user := seedUser(t, gdb, "a@example.com")
	repo := NewPaymentMethodRepository(gdb)

	first := &model.PaymentMethod{UserID: user.ID, Type: model.PaymentMethodCard, IsDefault: true}
	second := &model.PaymentMethod{UserID: user.ID, Type: model.PaymentMethodPayPal, IsDefault: true}
	require.NoError(t, repo.Create(ctx, first))

	err := repo.WithTransaction(ctx, func(ctx context.Context, tx PaymentMethodRepository) error {
		if err := tx.Create(ctx, second); err != nil {
			return err
		}
		return tx.ClearDefault(ctx, user.ID, second.ID)
	})
	require.NoError(t, err)

	reloaded, err := repo.FindByID(ctx, first.ID)
	require.NoError(t, err)
	assert.False(t, reloaded.IsDefault)

	methods, err := repo.ListByUser(ctx, user.ID, false)
	require.NoError(t, err)
	require.Len(t, methods, 2)
	assert.Equal(t, second.ID, methods[0].ID)
}

func TestUserRepository_DuplicateEmail(t *testing.T) {
	gdb := newTestDB(t)
	repo := NewUserRepository(gdb)
	seedUser(t, gdb, "dup@example.com")

	err := repo.Create(context.Background(), &model.User{Name: "Again", Email: "dup@example.com", Role: model.RoleUser})
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestUserRepository_TokenLookupsRespectExpiry(t *testing.T) {
	gdb := newTestDB(t)
	ctx := context.Background()
	repo := NewUserRepository(gdb)

	token := "verify-token"
	expires := time.Now().Add(time.Hour)
	u := &model.User{Name: "T", Email: "t@example.com", Role: model.RoleUser, VerificationToken: &token, VerificationExpires: &expires}
	require.NoError(t, repo.Create(ctx, u))

	found, err := repo.FindByVerificationToken(ctx, token, time.Now())
	require.NoError(t, err)
	assert.Equal(t, u.ID, found.ID)

	_, err = repo.FindByVerificationToken(ctx, token, time.Now().Add(2*time.Hour))
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	_, err = repo.FindByResetToken(ctx, token, time.Now())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
